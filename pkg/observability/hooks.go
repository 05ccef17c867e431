package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/voyage/pkg/domain"
)

// LoggingHooks logs every lifecycle event at Debug level, budget alerts at Warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			logger.DebugContext(ctx, "stage_enter", "session_id", e.SessionID, "stage", e.Stage)
		},
		OnStageLeave: func(ctx context.Context, e *domain.StageEvent) {
			logger.DebugContext(ctx, "stage_leave", "session_id", e.SessionID, "stage", e.Stage)
		},
		OnCollaboratorCall: func(ctx context.Context, e *domain.CollaboratorEvent) {
			logger.DebugContext(ctx, "collaborator_call",
				"session_id", e.SessionID,
				"collaborator", e.Collaborator,
				"stage", e.Stage,
			)
		},
		OnCollaboratorReturn: func(ctx context.Context, e *domain.CollaboratorEvent) {
			attrs := []any{
				"session_id", e.SessionID,
				"collaborator", e.Collaborator,
				"outcome", e.Outcome,
				"duration", e.Duration,
			}
			if e.Err != "" {
				attrs = append(attrs, "err", e.Err)
			}
			logger.DebugContext(ctx, "collaborator_return", attrs...)
		},
		OnBudgetAlert: func(ctx context.Context, e *domain.BudgetAlertEvent) {
			logger.WarnContext(ctx, "budget_alert", "session_id", e.SessionID, "over_by", e.Budget.Delta)
		},
	}
}

// Combine merges hook sets. Each callback runs the non-nil callbacks of every set, in order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range sets {
		out.OnStageEnter = chain(out.OnStageEnter, h.OnStageEnter)
		out.OnStageLeave = chain(out.OnStageLeave, h.OnStageLeave)
		out.OnCollaboratorCall = chain(out.OnCollaboratorCall, h.OnCollaboratorCall)
		out.OnCollaboratorReturn = chain(out.OnCollaboratorReturn, h.OnCollaboratorReturn)
		out.OnBudgetAlert = chain(out.OnBudgetAlert, h.OnBudgetAlert)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
