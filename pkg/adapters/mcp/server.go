package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/voyage/internal/logging"
	"github.com/aretw0/voyage/internal/presentation/graph"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/ports"
	"github.com/aretw0/voyage/pkg/runner"
	"github.com/aretw0/voyage/pkg/session"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RenderResponse is the structured result of every session tool.
type RenderResponse struct {
	SessionID string                 `json:"session_id" jsonschema_description:"The planning session"`
	State     *domain.SessionState   `json:"state,omitempty" jsonschema_description:"The current session state"`
	Actions   []domain.ActionRequest `json:"actions" jsonschema_description:"Messages to show and the pending question"`
	Waiting   bool                   `json:"waiting" jsonschema_description:"Whether the session waits for submit_input"`
}

// Server exposes planning sessions as MCP tools.
type Server struct {
	engine    ports.StatelessEngine
	sessions  *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.StatelessEngine, sessions *session.Manager, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		mcpServer: server.NewMCPServer("voyage-mcp", version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("mcp server listening (sse)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	startTool := mcp.NewTool("start_trip",
		mcp.WithDescription("Start a trip planning session from a free-text request, or resume it when session_id exists."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Trip request, e.g. 'from: Delhi to: Tokyo start: 2026-04-10 days: 5 budget: 2000 USD'")),
		mcp.WithString("session_id", mcp.Description("Session to create or resume (optional, generated when omitted)")),
		mcp.WithOutputSchema[RenderResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStartTrip))

	getTool := mcp.NewTool("get_session",
		mcp.WithDescription("Render a session without advancing it."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[RenderResponse](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.handleGetSession))

	inputTool := mcp.NewTool("submit_input",
		mcp.WithDescription("Answer the pending question: field answers, 'approve' or 'reject: <feedback>', 'proceed' or 'update' on a budget alert, 'refine <text>', 'update <field: value>' or 'quit'."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("input", mcp.Required(), mcp.Description("The answer")),
		mcp.WithOutputSchema[RenderResponse](),
	)
	s.mcpServer.AddTool(inputTool, mcp.NewStructuredToolHandler(s.handleSubmitInput))

	s.mcpServer.AddTool(mcp.NewTool("list_sessions",
		mcp.WithDescription("List stored planning sessions."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.sessions.List(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		jsonBytes, _ := json.Marshal(ids)
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleStartTrip(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RenderResponse, error) {
	text, _ := args["text"].(string)
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	rich, _, err := runner.StartAndRender(ctx, s.engine, s.sessions, sessionID, text)
	return s.respond(sessionID, rich, err, "start")
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RenderResponse, error) {
	sessionID, _ := args["session_id"].(string)
	state, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return RenderResponse{}, fmt.Errorf("get session failed: %w", err)
	}
	rich, err := runner.Respond(ctx, s.engine, state)
	return s.respond(sessionID, rich, err, "render")
}

func (s *Server) handleSubmitInput(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (RenderResponse, error) {
	sessionID, _ := args["session_id"].(string)
	input, _ := args["input"].(string)

	rich, err := runner.NavigateAndRender(ctx, s.engine, s.sessions, sessionID, input)
	return s.respond(sessionID, rich, err, "submit")
}

// respond keeps a terminated state visible to the agent; only failures without a state are errors.
func (s *Server) respond(sessionID string, rich *runner.RichResponse, err error, op string) (RenderResponse, error) {
	if err != nil && rich == nil {
		s.logger.Warn("mcp tool rejected", "op", op, "session_id", sessionID, "err", err)
		return RenderResponse{}, fmt.Errorf("%s failed: %w", op, err)
	}
	if err != nil {
		s.logger.Error("mcp tool failed", "op", op, "session_id", sessionID, "err", err)
	}
	return RenderResponse{
		SessionID: sessionID,
		State:     rich.State,
		Actions:   rich.Actions,
		Waiting:   rich.Waiting,
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("voyage://stages", "Planning stage machine",
		mcp.WithMIMEType("text/vnd.mermaid"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "voyage://stages",
				MIMEType: "text/vnd.mermaid",
				Text:     graph.GenerateMermaid(domain.Transitions(), nil),
			},
		}, nil
	})
}
