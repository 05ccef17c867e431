package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/voyage/internal/presentation/graph"
	"github.com/aretw0/voyage/internal/presentation/report"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/session"
)

// Export formats accepted by InspectSession.
const (
	ExportNone     = ""
	ExportJSON     = "json"
	ExportMarkdown = "markdown"
)

// ListSessions prints every stored session with its stage.
func ListSessions(ctx context.Context, w io.Writer, sessions *session.Manager) error {
	ids, err := sessions.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing sessions: %w", err)
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No active sessions found.")
		return nil
	}

	fmt.Fprintln(w, "Active Sessions:")
	for _, id := range ids {
		state, err := sessions.Load(ctx, id)
		if err != nil {
			fmt.Fprintf(w, "- %s (unreadable: %v)\n", id, err)
			continue
		}
		fmt.Fprintf(w, "- %s\t%s\t%s\n", id, state.Stage, state.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// InspectSession prints a session. Without an export format the raw state is printed;
// json and markdown print the itinerary document.
func InspectSession(ctx context.Context, w io.Writer, sessions *session.Manager, id, export string) error {
	state, err := sessions.Load(ctx, id)
	if err != nil {
		return fmt.Errorf("error loading session '%s': %w", id, err)
	}

	var out []byte
	switch export {
	case ExportNone:
		out, err = json.MarshalIndent(state, "", "  ")
	case ExportJSON:
		out, err = report.JSON(state)
	case ExportMarkdown:
		out = []byte(report.Markdown(state))
	default:
		return fmt.Errorf("unknown export format %q (use json or markdown)", export)
	}
	if err != nil {
		return fmt.Errorf("error encoding session: %w", err)
	}
	fmt.Fprintln(w, string(out))
	return nil
}

// RemoveSessions deletes each session, reporting every failure.
func RemoveSessions(ctx context.Context, w io.Writer, sessions *session.Manager, ids []string) error {
	failed := 0
	for _, id := range ids {
		if err := sessions.Delete(ctx, id); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			failed++
			continue
		}
		fmt.Fprintf(w, "Removed session '%s'\n", id)
	}
	if failed > 0 {
		return fmt.Errorf("failed to remove %d session(s)", failed)
	}
	return nil
}

// PrintGraph writes the stage diagram, highlighting a session when sessionID is set.
func PrintGraph(ctx context.Context, w io.Writer, sessions *session.Manager, sessionID string) error {
	var overlay *graph.Overlay
	if sessionID != "" {
		state, err := sessions.Load(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("error loading session '%s': %w", sessionID, err)
		}
		overlay = graph.OverlayFor(state)
	}
	fmt.Fprint(w, graph.GenerateMermaid(domain.Transitions(), overlay))
	return nil
}
