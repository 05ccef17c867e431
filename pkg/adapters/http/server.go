package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/voyage/internal/logging"
	"github.com/aretw0/voyage/internal/presentation/report"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/ports"
	"github.com/aretw0/voyage/pkg/runner"
	"github.com/aretw0/voyage/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Server exposes planning sessions over HTTP.
type Server struct {
	Engine   ports.StatelessEngine
	Sessions *session.Manager
	Streams  *StreamManager

	logger  *slog.Logger
	metrics http.Handler
	version string
	newID   func() string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithIDGenerator overrides how session IDs are minted when a client omits one.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) { s.newID = fn }
}

// NewServer builds a Server over an engine and a session manager.
func NewServer(engine ports.StatelessEngine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Engine:   engine,
		Sessions: sessions,
		logger:   logging.NewNop(),
		version:  "dev",
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)
	return s
}

// NewHandler creates the HTTP handler for the engine.
func NewHandler(engine ports.StatelessEngine, sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(engine, sessions, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.StartSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Get("/render", s.Render)
			r.Post("/input", s.SubmitInput)
			r.Get("/events", s.SubscribeEvents)
			r.Get("/export", s.Export)
		})
	})
	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartRequest is the body of POST /sessions.
type StartRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
}

// InputRequest is the body of POST /sessions/{id}/input.
type InputRequest struct {
	Input string `json:"input"`
}

// StartSession handles POST /sessions. An existing ID resumes the session.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err), nil)
		return
	}
	if req.SessionID == "" {
		req.SessionID = s.newID()
	}

	resp, created, err := runner.StartAndRender(r.Context(), s.Engine, s.Sessions, req.SessionID, req.Text)
	if err != nil {
		s.fail(w, r, err, resp)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
		s.Streams.Broadcast(domain.Diff(nil, resp.State))
	}
	writeJSON(w, status, resp)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Render handles GET /sessions/{id}/render.
func (s *Server) Render(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	resp, err := runner.Respond(r.Context(), s.Engine, state)
	if err != nil {
		s.fail(w, r, err, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// SubmitInput handles POST /sessions/{id}/input: a decision, a clarification answer or a choice.
func (s *Server) SubmitInput(w http.ResponseWriter, r *http.Request) {
	var req InputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err), nil)
		return
	}

	resp, err := runner.NavigateAndRender(r.Context(), s.Engine, s.Sessions, chi.URLParam(r, "id"), req.Input)
	if resp != nil {
		s.Streams.Broadcast(resp.Diff)
	}
	if err != nil {
		s.fail(w, r, err, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Export handles GET /sessions/{id}/export?format=json|markdown.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, report.Export(state))
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(report.Markdown(state)))
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown export format %q", format), nil)
	}
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE).
// The optional watch parameter filters diffs by field: stage, status, pending, trail, artifacts.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	sessionID := chi.URLParam(r, "id")
	if _, err := s.Sessions.Load(r.Context(), sessionID); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	filter := parseWatch(r.URL.Query().Get("watch"))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	s.logger.Info("sse subscribed", "session_id", sessionID)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("sse client disconnected", "session_id", sessionID)
			return
		case diff, ok := <-ch:
			if !ok {
				return
			}
			if !filter.accepts(diff) {
				continue
			}
			data, err := json.Marshal(diff)
			if err != nil {
				s.logger.Error("encode diff", "err", err)
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "voyage-http",
		"version": s.version,
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, resp *runner.RichResponse) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "err", err)
	}
	var state *domain.SessionState
	if resp != nil {
		state = resp.State
	}
	writeError(w, status, err, state)
}

// StatusFor maps a domain or runner error to an HTTP status code.
func StatusFor(err error) int {
	var unavailable *domain.CollaboratorUnavailableError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTerminated),
		errors.Is(err, domain.ErrNotWaiting),
		errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict
	case domain.IsInputError(err),
		errors.Is(err, runner.ErrInputTooLarge),
		errors.Is(err, runner.ErrInvalidUTF8):
		return http.StatusBadRequest
	case errors.As(err, &unavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the body of every failed request.
// State is set when the failure still produced a session, such as a terminated run.
type ErrorResponse struct {
	Error string               `json:"error"`
	State *domain.SessionState `json:"state,omitempty"`
}

func writeError(w http.ResponseWriter, status int, err error, state *domain.SessionState) {
	writeJSON(w, status, ErrorResponse{Error: err.Error(), State: state})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
