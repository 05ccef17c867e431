package voyage

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/aretw0/voyage/internal/audit"
	"github.com/aretw0/voyage/internal/config"
	"github.com/aretw0/voyage/internal/logging"
	"github.com/aretw0/voyage/internal/runtime"
	"github.com/aretw0/voyage/internal/validator"
	"github.com/aretw0/voyage/pkg/adapters/file"
	"github.com/aretw0/voyage/pkg/adapters/fixture"
	"github.com/aretw0/voyage/pkg/adapters/memory"
	"github.com/aretw0/voyage/pkg/adapters/redis"
	"github.com/aretw0/voyage/pkg/adapters/retry"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/observability"
	"github.com/aretw0/voyage/pkg/persistence/middleware"
	"github.com/aretw0/voyage/pkg/places"
	"github.com/aretw0/voyage/pkg/ports"
	"github.com/aretw0/voyage/pkg/session"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is the release of the voyage library and CLI.
const Version = "0.4.0"

// Planner is the high-level entry point: a configured engine plus its session manager.
// It satisfies ports.StatelessEngine, so it can be handed to any channel adapter.
type Planner struct {
	engine   *runtime.Engine
	sessions *session.Manager
	config   *config.Config
	metrics  *observability.Metrics
	registry *prometheus.Registry
	logger   *slog.Logger
	closers  []func() error

	collab ports.Collaborators
	store  ports.SessionStore
	hooks  []domain.LifecycleHooks
	now    func() time.Time
}

var _ ports.StatelessEngine = (*Planner)(nil)

// Option configures a Planner.
type Option func(*Planner)

// WithConfig uses cfg instead of loading config.DefaultPath.
func WithConfig(cfg *config.Config) Option {
	return func(p *Planner) { p.config = cfg }
}

// WithLogger sets the logger shared by the engine and the session manager.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) { p.logger = logger }
}

// WithCollaborators replaces the fixture collaborators with real providers.
// The configured retry policy still wraps them.
func WithCollaborators(c ports.Collaborators) Option {
	return func(p *Planner) { p.collab = c }
}

// WithStore overrides the store selected by the configuration.
func WithStore(store ports.SessionStore) Option {
	return func(p *Planner) { p.store = store }
}

// WithLifecycleHooks adds observability hooks next to the built-in metrics.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Planner) { p.hooks = append(p.hooks, hooks) }
}

// WithClock overrides the engine time source.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// New wires configuration, store, collaborators, retries and metrics into a Planner.
func New(opts ...Option) (*Planner, error) {
	p := &Planner{
		logger:   logging.NewNop(),
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.config == nil {
		cfg, err := config.Load(config.DefaultPath)
		if err != nil {
			return nil, err
		}
		p.config = cfg
	}
	cfg := p.config

	if p.collab.Extractor == nil {
		collab, err := fixtureCollaborators(cfg)
		if err != nil {
			return nil, err
		}
		p.collab = collab
	}
	collab := retry.Collaborators(p.collab, cfg.Retry, retry.WithLogger(p.logger))

	p.metrics = observability.NewMetrics(p.registry)
	hooks := append([]domain.LifecycleHooks{p.metrics.Hooks()}, p.hooks...)

	rates := cfg.RateTable()
	engineOpts := []runtime.Option{
		runtime.WithLogger(p.logger),
		runtime.WithLifecycleHooks(observability.Combine(hooks...)),
		runtime.WithValidator(validator.New(
			validator.WithStyles(cfg.Styles),
			validator.WithInterests(cfg.Interests),
			validator.WithDefaultCurrency(cfg.Currency),
			validator.WithRates(rates),
		)),
	}
	auditOpts := []audit.Option{audit.WithConverter(rates)}
	if p.now != nil {
		engineOpts = append(engineOpts, runtime.WithClock(p.now))
		auditOpts = append(auditOpts, audit.WithClock(p.now))
	}
	engineOpts = append(engineOpts, runtime.WithAuditor(audit.New(auditOpts...)))

	engine, err := runtime.NewEngine(collab, engineOpts...)
	if err != nil {
		return nil, err
	}
	p.engine = engine

	sessionOpts := []session.Option{session.WithLogger(p.logger)}
	if p.store == nil {
		store, locker, closer, err := openStore(cfg.Store)
		if err != nil {
			return nil, err
		}
		if store, err = wrapStore(store, cfg.Store); err != nil {
			if closer != nil {
				_ = closer()
			}
			return nil, err
		}
		p.store = store
		if locker != nil {
			sessionOpts = append(sessionOpts, session.WithLocker(locker))
		}
		if closer != nil {
			p.closers = append(p.closers, closer)
		}
	}
	p.sessions = session.NewManager(p.store, sessionOpts...)
	return p, nil
}

func fixtureCollaborators(cfg *config.Config) (ports.Collaborators, error) {
	var (
		catalog *fixture.Catalog
		err     error
	)
	if cfg.Catalog != "" {
		catalog, err = fixture.LoadCatalog(cfg.Catalog)
	} else {
		catalog, err = fixture.DefaultCatalog()
	}
	if err != nil {
		return ports.Collaborators{}, fmt.Errorf("failed to load catalog: %w", err)
	}
	return fixture.New(catalog, places.New(cfg.Places)).Ports(), nil
}

func openStore(sc config.StoreConfig) (ports.SessionStore, ports.DistributedLocker, func() error, error) {
	switch sc.Driver {
	case config.DriverMemory:
		return memory.NewStore(), nil, nil, nil
	case config.DriverFile:
		return file.New(sc.Path), nil, nil, nil
	case config.DriverRedis:
		store, err := redis.New(sc.RedisURL, redis.WithPrefix(sc.Prefix), redis.WithTTL(sc.TTL))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to open redis store: %w", err)
		}
		var locker ports.DistributedLocker
		if sc.Lock {
			locker = redis.NewLocker(store.Client(), store.Prefix())
		}
		return store, locker, store.Close, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store driver %q", sc.Driver)
}

// wrapStore applies the persistence middlewares. Redaction runs before sealing so
// the sealed snapshot never holds raw personal data.
func wrapStore(store ports.SessionStore, sc config.StoreConfig) (ports.SessionStore, error) {
	var mws []middleware.Middleware

	patterns := slices.Clone(sc.Redact)
	if sc.RedactPII {
		patterns = append(patterns, middleware.DefaultRedactions...)
	}
	if len(patterns) > 0 {
		redact, err := middleware.NewRedactionMiddleware(patterns)
		if err != nil {
			return nil, err
		}
		mws = append(mws, redact)
	}

	if sc.EncryptionKey != "" {
		enc := middleware.EncryptionConfig{}
		var err error
		if enc.ActiveKey, err = middleware.ParseKey(sc.EncryptionKey); err != nil {
			return nil, err
		}
		for _, k := range sc.FallbackKeys {
			key, err := middleware.ParseKey(k)
			if err != nil {
				return nil, fmt.Errorf("fallback key: %w", err)
			}
			enc.FallbackKeys = append(enc.FallbackKeys, key)
		}
		seal, err := middleware.NewEncryptionMiddleware(enc)
		if err != nil {
			return nil, err
		}
		mws = append(mws, seal)
	}
	return middleware.Chain(store, mws...), nil
}

// Start creates a session and runs it to the first suspend point. It does not persist it.
func (p *Planner) Start(ctx context.Context, sessionID, text string) (*domain.SessionState, error) {
	return p.engine.Start(ctx, sessionID, text)
}

// Render describes what a session shows and whether it waits for input.
func (p *Planner) Render(ctx context.Context, state *domain.SessionState) ([]domain.ActionRequest, bool, error) {
	return p.engine.Render(ctx, state)
}

// Navigate applies one answer to a session. It does not persist the result.
func (p *Planner) Navigate(ctx context.Context, state *domain.SessionState, input string) (*domain.SessionState, error) {
	return p.engine.Navigate(ctx, state, input)
}

// Engine returns the underlying stage pipeline.
func (p *Planner) Engine() *runtime.Engine { return p.engine }

// Sessions returns the manager guarding persisted sessions.
func (p *Planner) Sessions() *session.Manager { return p.sessions }

// Config returns the effective configuration.
func (p *Planner) Config() *config.Config { return p.config }

// Metrics returns the planner collectors.
func (p *Planner) Metrics() *observability.Metrics { return p.metrics }

// MetricsHandler serves the planner registry in the Prometheus text format.
func (p *Planner) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Close releases the store connection, if any.
func (p *Planner) Close() error {
	var firstErr error
	for _, c := range p.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	p.closers = nil
	return firstErr
}

// NewSessionID mints a random session identifier.
func NewSessionID() string {
	return uuid.NewString()
}
