// Package retry wraps collaborators with a caller-owned exponential backoff policy.
//
// The engine never retries on its own: a collaborator error terminates the session.
// Wrapping a collaborator here turns transient failures into a bounded series of
// attempts before the engine ever sees the error.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/voyage/internal/logging"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/ports"
	"github.com/cenkalti/backoff/v5"
)

// Policy configures the retry behaviour.
type Policy struct {
	MaxAttempts  uint          `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
}

// DefaultPolicy returns three attempts starting at 200ms.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Multiplier:   2,
	}
}

// Enabled reports whether the policy allows more than one attempt.
func (p Policy) Enabled() bool {
	return p.MaxAttempts > 1
}

func (p Policy) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if p.InitialDelay > 0 {
		b.InitialInterval = p.InitialDelay
	}
	if p.MaxDelay > 0 {
		b.MaxInterval = p.MaxDelay
	}
	if p.Multiplier > 0 {
		b.Multiplier = p.Multiplier
	}
	return b
}

// Option configures the wrappers.
type Option func(*retrier)

// WithLogger logs every retried attempt at Warn level.
func WithLogger(logger *slog.Logger) Option {
	return func(r *retrier) {
		if logger != nil {
			r.logger = logger
		}
	}
}

type retrier struct {
	policy Policy
	logger *slog.Logger
}

func newRetrier(p Policy, opts []Option) retrier {
	r := retrier{policy: p, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// do runs op under the policy. Errors that retrying cannot fix are marked permanent.
func do[T any](ctx context.Context, r retrier, name string, op func() (T, error)) (T, error) {
	attempts := r.policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	return backoff.Retry(ctx, func() (T, error) {
		v, err := op()
		if err != nil && !Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	},
		backoff.WithBackOff(r.policy.backOff()),
		backoff.WithMaxTries(attempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			r.logger.Warn("collaborator call failed, retrying",
				"collaborator", name,
				"next", next,
				"err", err,
			)
		}),
	)
}

// Retryable reports whether err is worth another attempt.
// Missing data and caller cancellation are final.
func Retryable(err error) bool {
	var notFound *domain.DataNotFoundError
	switch {
	case err == nil:
		return false
	case errors.As(err, &notFound):
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}
	return true
}

// Collaborators wraps every non-nil collaborator in c.
func Collaborators(c ports.Collaborators, p Policy, opts ...Option) ports.Collaborators {
	if !p.Enabled() {
		return c
	}
	r := newRetrier(p, opts)
	out := c
	if c.Extractor != nil {
		out.Extractor = &extractor{next: c.Extractor, r: r}
	}
	if c.Discovery != nil {
		out.Discovery = &discoverer{next: c.Discovery, r: r}
	}
	if c.Logistics != nil {
		out.Logistics = &logistics{next: c.Logistics, r: r}
	}
	if c.Composer != nil {
		out.Composer = &composer{next: c.Composer, r: r}
	}
	return out
}

// Extractor wraps a single extractor.
func Extractor(next ports.Extractor, p Policy, opts ...Option) ports.Extractor {
	return &extractor{next: next, r: newRetrier(p, opts)}
}

// Discoverer wraps a single discoverer.
func Discoverer(next ports.Discoverer, p Policy, opts ...Option) ports.Discoverer {
	return &discoverer{next: next, r: newRetrier(p, opts)}
}

// LogisticsSource wraps a single logistics source.
func LogisticsSource(next ports.LogisticsSource, p Policy, opts ...Option) ports.LogisticsSource {
	return &logistics{next: next, r: newRetrier(p, opts)}
}

// Composer wraps a single composer.
func Composer(next ports.Composer, p Policy, opts ...Option) ports.Composer {
	return &composer{next: next, r: newRetrier(p, opts)}
}

type extractor struct {
	next ports.Extractor
	r    retrier
}

func (e *extractor) Extract(ctx context.Context, text string, current domain.TripRequest) (domain.Extraction, error) {
	return do(ctx, e.r, "extractor", func() (domain.Extraction, error) {
		return e.next.Extract(ctx, text, current)
	})
}

type discoverer struct {
	next ports.Discoverer
	r    retrier
}

func (d *discoverer) Discover(ctx context.Context, q ports.DiscoveryQuery) (domain.Shortlist, error) {
	return do(ctx, d.r, "discovery", func() (domain.Shortlist, error) {
		return d.next.Discover(ctx, q)
	})
}

type logistics struct {
	next ports.LogisticsSource
	r    retrier
}

func (l *logistics) Source(ctx context.Context, q ports.LogisticsQuery) (domain.LogisticsPlan, error) {
	return do(ctx, l.r, "logistics", func() (domain.LogisticsPlan, error) {
		return l.next.Source(ctx, q)
	})
}

type composer struct {
	next ports.Composer
	r    retrier
}

func (c *composer) Compose(ctx context.Context, in ports.CompositionInput) (domain.Itinerary, error) {
	return do(ctx, c.r, "composer", func() (domain.Itinerary, error) {
		return c.next.Compose(ctx, in)
	})
}
