// Package middleware wraps a SessionStore with behavior applied at the persistence
// boundary: encryption at rest and redaction of personal data in free-text answers.
package middleware

import "github.com/aretw0/voyage/pkg/ports"

// Middleware allows wrapping a SessionStore to add behavior.
type Middleware func(ports.SessionStore) ports.SessionStore

// Chain applies middlewares so the first one is the outermost.
func Chain(store ports.SessionStore, mws ...Middleware) ports.SessionStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
