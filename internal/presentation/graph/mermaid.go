package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/voyage/pkg/domain"
)

// Overlay contains session data to highlight on the diagram.
type Overlay struct {
	Visited []domain.Stage
	Current domain.Stage
}

// OverlayFor builds the overlay of a session: its stage history and current stage.
func OverlayFor(state *domain.SessionState) *Overlay {
	if state == nil {
		return nil
	}
	return &Overlay{Visited: state.History, Current: state.Stage}
}

// GenerateMermaid produces a Mermaid flowchart of the stage machine.
// Shapes follow the role of each stage:
// - Suspend points (waiting for the user): [/Parallelogram/]
// - Collaborator stages: [[Subroutine]]
// - Terminated: ((Circle))
// Edges into terminated are dotted since every live stage has one.
func GenerateMermaid(transitions []domain.Transition, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	seen := make(map[domain.Stage]bool)
	declare := func(s domain.Stage) {
		if seen[s] {
			return
		}
		seen[s] = true
		opener, closer := shape(s)
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(s), opener, s, closer)
	}

	for _, t := range transitions {
		declare(t.From)
		declare(t.To)
	}
	for _, t := range transitions {
		arrow := "-->"
		if t.To == domain.StageTerminated {
			arrow = "-.->"
		}
		if t.From == t.To {
			arrow = "-- \"reject\" -->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(t.From), arrow, nodeID(t.To))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text stays readable on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visited := make(map[domain.Stage]bool)
		for _, s := range overlay.Visited {
			if s == "" || visited[s] || s == overlay.Current {
				continue
			}
			visited[s] = true
			fmt.Fprintf(&sb, "    class %s visited;\n", nodeID(s))
		}
		if overlay.Current != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", nodeID(overlay.Current))
		}
	}

	return sb.String()
}

func shape(s domain.Stage) (string, string) {
	switch s {
	case domain.StageTerminated:
		return "((", "))"
	case domain.StageCollectingFields, domain.StageAwaitingApproval, domain.StageAwaitingUserChoice:
		return "[/", "/]"
	case domain.StageSourcingLogistics, domain.StageAuditing, domain.StageComposing, domain.StageRefiningItinerary:
		return "[[", "]]"
	}
	return "[", "]"
}

func nodeID(s domain.Stage) string {
	return strings.NewReplacer("-", "_", ".", "_", " ", "_").Replace(string(s))
}
