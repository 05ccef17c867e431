package http

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/voyage/internal/logging"
	"github.com/aretw0/voyage/pkg/domain"
)

// streamBuffer is the number of diffs a slow subscriber may lag behind before drops.
const streamBuffer = 10

// StreamManager fans session diffs out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan *domain.SessionDiff]struct{} // SessionID -> set of channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager. A nil logger discards output.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan *domain.SessionDiff]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for a session. The returned func unregisters and closes it.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan *domain.SessionDiff, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan *domain.SessionDiff, streamBuffer)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan *domain.SessionDiff]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sessionID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sessionID)
				}
			}
		})
	}
}

// Subscribers reports how many clients follow a session.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// Broadcast sends a diff to every subscriber of its session. Nil diffs are ignored.
func (sm *StreamManager) Broadcast(diff *domain.SessionDiff) {
	if diff == nil {
		return
	}
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	subs := sm.subscribers[diff.SessionID]
	sm.logger.Debug("broadcasting diff", "session_id", diff.SessionID, "subscribers", len(subs))
	for ch := range subs {
		select {
		case ch <- diff:
		default:
			// Slow client.
			sm.logger.Warn("sse buffer full, dropping diff", "session_id", diff.SessionID)
		}
	}
}

// watchFilter selects which diff fields a subscriber cares about.
// An empty filter accepts everything.
type watchFilter map[string]bool

func parseWatch(raw string) watchFilter {
	f := watchFilter{}
	for _, field := range strings.Split(raw, ",") {
		if field = strings.ToLower(strings.TrimSpace(field)); field != "" {
			f[field] = true
		}
	}
	return f
}

func (f watchFilter) accepts(d *domain.SessionDiff) bool {
	if len(f) == 0 {
		return true
	}
	switch {
	case f["stage"] && d.Stage != nil:
		return true
	case f["status"] && d.Status != nil:
		return true
	case f["pending"] && d.Pending != nil:
		return true
	case f["trail"] && len(d.Trail) > 0:
		return true
	case f["artifacts"] && len(d.Artifacts) > 0:
		return true
	}
	return false
}
