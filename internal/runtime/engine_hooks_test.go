package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/voyage/internal/runtime"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestEngine_LifecycleHooks(t *testing.T) {
	var (
		entered []domain.Stage
		left    []domain.Stage
		calls   []string
		returns []string
		alerts  int
	)

	hooks := domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			entered = append(entered, e.Stage)
		},
		OnStageLeave: func(ctx context.Context, e *domain.StageEvent) {
			left = append(left, e.Stage)
		},
		OnCollaboratorCall: func(ctx context.Context, e *domain.CollaboratorEvent) {
			calls = append(calls, e.Collaborator)
		},
		OnCollaboratorReturn: func(ctx context.Context, e *domain.CollaboratorEvent) {
			returns = append(returns, e.Collaborator+":"+e.Outcome)
			assert.Equal(t, "s1", e.SessionID)
		},
		OnBudgetAlert: func(ctx context.Context, e *domain.BudgetAlertEvent) {
			alerts++
			assert.Equal(t, domain.CheckFail, e.Budget.Status)
		},
	}

	e := newEngine(t, newStubs(230000),
		runtime.WithLifecycleHooks(hooks),
		runtime.WithTracer(noop.NewTracerProvider().Tracer("test")),
	)

	state, err := e.Start(context.Background(), "s1", fullRequest)
	require.NoError(t, err)
	state = navigate(t, e, state, "approve")
	require.True(t, state.Waiting(domain.InputBudgetAlert))

	assert.Equal(t, []domain.Stage{
		domain.StageCollectingFields,
		domain.StageAwaitingApproval,
		domain.StageSourcingLogistics,
		domain.StageAuditing,
	}, entered)
	assert.Equal(t, []domain.Stage{
		domain.StageCollectingFields,
		domain.StageAwaitingApproval,
		domain.StageSourcingLogistics,
	}, left)
	assert.Equal(t, []string{"extractor", "discovery", "logistics"}, calls)
	assert.Equal(t, []string{"extractor:ok", "discovery:ok", "logistics:ok"}, returns)
	assert.Equal(t, 1, alerts)

	_ = navigate(t, e, state, "proceed")
	assert.Equal(t, 1, alerts, "alert is raised once per report")
	assert.Contains(t, returns, "composer:ok")
}
