package graph_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aretw0/voyage/internal/presentation/graph"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid_Shapes(t *testing.T) {
	out := graph.GenerateMermaid(domain.Transitions(), nil)

	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	for _, want := range []string{
		`collecting_fields[/"collecting_fields"/]`,
		`awaiting_approval[/"awaiting_approval"/]`,
		`sourcing_logistics[["sourcing_logistics"]]`,
		`terminated(("terminated"))`,
		`updating_fields["updating_fields"]`,
	} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 1, strings.Count(out, `terminated(("terminated"))`), "nodes are declared once")
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Edges(t *testing.T) {
	out := graph.GenerateMermaid(domain.Transitions(), nil)

	assert.Contains(t, out, "    collecting_fields --> awaiting_approval\n")
	assert.Contains(t, out, "    awaiting_user_choice --> refining_itinerary\n")
	assert.Contains(t, out, "    auditing -.-> terminated\n")
	assert.Contains(t, out, "    awaiting_approval -- \"reject\" --> awaiting_approval\n")
	assert.NotContains(t, out, "terminated --> ")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	state := domain.NewSessionState("s1", time.Now())
	state.Stage = domain.StageAwaitingUserChoice
	state.History = []domain.Stage{
		domain.StageCollectingFields,
		domain.StageAwaitingApproval,
		domain.StageAwaitingApproval,
		domain.StageSourcingLogistics,
		domain.StageAwaitingUserChoice,
	}

	out := graph.GenerateMermaid(domain.Transitions(), graph.OverlayFor(state))

	assert.Contains(t, out, "classDef visited")
	assert.Equal(t, 1, strings.Count(out, "class awaiting_approval visited;"))
	assert.Contains(t, out, "class sourcing_logistics visited;")
	assert.Contains(t, out, "class awaiting_user_choice current;")
	assert.NotContains(t, out, "class awaiting_user_choice visited;")
}

func TestOverlayFor_Nil(t *testing.T) {
	assert.Nil(t, graph.OverlayFor(nil))
}
