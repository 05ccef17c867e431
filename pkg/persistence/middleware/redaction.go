package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/ports"
)

// Mask replaces every redacted match.
const Mask = "***"

// DefaultRedactions match e-mail addresses and phone numbers.
var DefaultRedactions = []string{
	`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
	`\+?\d[\d ]{8,}\d`,
}

type redactionMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewRedactionMiddleware masks matches of the patterns in the free-text parts of a
// session (rejection feedback, refinements and trail summaries) before it is stored.
// The in-memory state used by the engine is left untouched.
func NewRedactionMiddleware(patterns []string) (Middleware, error) {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		compiled[i] = re
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &redactionMiddleware{next: next, patterns: compiled}
	}, nil
}

func (m *redactionMiddleware) Save(ctx context.Context, sessionID string, state *domain.SessionState) error {
	cloned := state.Clone()
	for i, s := range cloned.Feedback {
		cloned.Feedback[i] = m.mask(s)
	}
	for i, s := range cloned.Refinements {
		cloned.Refinements[i] = m.mask(s)
	}
	for i := range cloned.Trail {
		cloned.Trail[i].Summary = m.mask(cloned.Trail[i].Summary)
	}
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *redactionMiddleware) mask(s string) string {
	for _, p := range m.patterns {
		s = p.ReplaceAllString(s, Mask)
	}
	return s
}

func (m *redactionMiddleware) Load(ctx context.Context, sessionID string) (*domain.SessionState, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactionMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
