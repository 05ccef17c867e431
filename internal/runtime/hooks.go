package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/voyage/pkg/domain"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// call wraps a collaborator invocation with a span and the collaborator hooks.
func (e *Engine) call(ctx context.Context, state *domain.SessionState, collaborator string, fn func(context.Context) error) error {
	ctx, span := e.tracer.Start(ctx, "voyage."+collaborator,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("voyage.session_id", state.SessionID),
			attribute.String("voyage.stage", string(state.Stage)),
			attribute.String("voyage.collaborator", collaborator),
		),
	)
	defer span.End()

	e.emitCollaborator(ctx, e.hooks.OnCollaboratorCall, &domain.CollaboratorEvent{
		EventBase:    e.eventBase(domain.EventCollaboratorCall, state),
		Stage:        state.Stage,
		Collaborator: collaborator,
	})

	started := time.Now()
	err := fn(ctx)
	elapsed := time.Since(started)

	outcome := domain.OutcomeOK
	var notFound *domain.DataNotFoundError
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "")
	case errors.As(err, &notFound):
		outcome = domain.OutcomeNotFound
		span.SetAttributes(attribute.String("voyage.not_found", notFound.Detail))
	default:
		outcome = domain.OutcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("voyage.outcome", outcome))

	ev := &domain.CollaboratorEvent{
		EventBase:    e.eventBase(domain.EventCollaboratorReturn, state),
		Stage:        state.Stage,
		Collaborator: collaborator,
		Duration:     elapsed,
		Outcome:      outcome,
	}
	if err != nil {
		ev.Err = err.Error()
	}
	e.emitCollaborator(ctx, e.hooks.OnCollaboratorReturn, ev)
	return err
}

func (e *Engine) eventBase(t domain.EventType, state *domain.SessionState) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, SessionID: state.SessionID}
}

func (e *Engine) emitStageEnter(ctx context.Context, state *domain.SessionState, stage domain.Stage) {
	if e.hooks.OnStageEnter != nil {
		e.hooks.OnStageEnter(ctx, &domain.StageEvent{EventBase: e.eventBase(domain.EventStageEnter, state), Stage: stage})
	}
}

func (e *Engine) emitStageLeave(ctx context.Context, state *domain.SessionState, stage domain.Stage) {
	if e.hooks.OnStageLeave != nil {
		e.hooks.OnStageLeave(ctx, &domain.StageEvent{EventBase: e.eventBase(domain.EventStageLeave, state), Stage: stage})
	}
}

func (e *Engine) emitCollaborator(ctx context.Context, hook func(context.Context, *domain.CollaboratorEvent), ev *domain.CollaboratorEvent) {
	if hook != nil {
		hook(ctx, ev)
	}
}

func (e *Engine) emitBudgetAlert(ctx context.Context, state *domain.SessionState, check domain.BudgetCheck) {
	e.logger.Info("budget alert", "session_id", state.SessionID, "cost", check.Cost.String(), "total", check.Total.String())
	if e.hooks.OnBudgetAlert != nil {
		e.hooks.OnBudgetAlert(ctx, &domain.BudgetAlertEvent{EventBase: e.eventBase(domain.EventBudgetAlert, state), Budget: check})
	}
}
