// Package runtime implements the stage pipeline controller.
//
// The Engine is stateless: every operation takes a SessionState, clones it, and
// returns the advanced copy. Persistence and concurrency belong to the caller
// (see pkg/session).
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/voyage/internal/audit"
	"github.com/aretw0/voyage/internal/logging"
	"github.com/aretw0/voyage/internal/validator"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aretw0/voyage/internal/runtime"

// Engine is the planning state machine.
type Engine struct {
	collab    ports.Collaborators
	validator *validator.Validator
	auditor   *audit.Auditor
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// Option configures the Engine.
type Option func(*Engine)

// WithLogger sets the logger for engine diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithValidator replaces the field validator.
func WithValidator(v *validator.Validator) Option {
	return func(e *Engine) {
		if v != nil {
			e.validator = v
		}
	}
}

// WithAuditor replaces the budget and feasibility auditor.
func WithAuditor(a *audit.Auditor) Option {
	return func(e *Engine) {
		if a != nil {
			e.auditor = a
		}
	}
}

// WithTracer sets the tracer wrapping collaborator calls.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// ErrMissingCollaborator is returned by NewEngine when a collaborator is nil.
var ErrMissingCollaborator = errors.New("missing collaborator")

// NewEngine creates an engine over the given collaborators.
func NewEngine(collab ports.Collaborators, opts ...Option) (*Engine, error) {
	switch {
	case collab.Extractor == nil:
		return nil, fmt.Errorf("%w: extractor", ErrMissingCollaborator)
	case collab.Discovery == nil:
		return nil, fmt.Errorf("%w: discovery", ErrMissingCollaborator)
	case collab.Logistics == nil:
		return nil, fmt.Errorf("%w: logistics", ErrMissingCollaborator)
	case collab.Composer == nil:
		return nil, fmt.Errorf("%w: composer", ErrMissingCollaborator)
	}

	e := &Engine{
		collab:    collab,
		validator: validator.New(),
		logger:    logging.NewNop(),
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.auditor == nil {
		e.auditor = audit.New(audit.WithClock(e.now))
	}
	return e, nil
}

// Start creates a session and runs it to the first suspend point.
// A non-empty text is treated as the first answer to the field collection.
func (e *Engine) Start(ctx context.Context, sessionID string, text string) (*domain.SessionState, error) {
	state := domain.NewSessionState(sessionID, e.now())
	e.emitStageEnter(ctx, state, state.Stage)
	e.appendHandoff(state, domain.HandoffRequest, "session started")

	if text == "" {
		return e.advance(ctx, state)
	}
	e.suspend(state, domain.InputFields)
	return e.Submit(ctx, state, text)
}

// Navigate applies a textual answer to whatever the session is waiting for.
// Parse failures leave the state untouched and return a nil state with the error.
func (e *Engine) Navigate(ctx context.Context, state *domain.SessionState, input string) (*domain.SessionState, error) {
	if err := e.checkLive(state); err != nil {
		return nil, err
	}
	if state.Status != domain.StatusWaitingForInput {
		return nil, domain.ErrNotWaiting
	}

	switch state.Pending {
	case domain.InputFields:
		return e.Submit(ctx, state, input)
	case domain.InputApproval:
		decision, err := domain.ParseDecision(input)
		if err != nil {
			return nil, err
		}
		return e.Decide(ctx, state, decision)
	case domain.InputBudgetAlert:
		decision, err := ParseBudgetDecision(input)
		if err != nil {
			return nil, err
		}
		return e.ResolveBudgetAlert(ctx, state, decision)
	case domain.InputNextStep:
		choice, err := domain.ParseChoice(input)
		if err != nil {
			return nil, err
		}
		return e.Choose(ctx, state, choice)
	}
	return nil, domain.ErrNotWaiting
}

// Submit feeds a free-form answer to the field collection loop.
func (e *Engine) Submit(ctx context.Context, state *domain.SessionState, text string) (*domain.SessionState, error) {
	if err := e.expect(state, domain.InputFields); err != nil {
		return nil, err
	}
	next := e.cloneState(state)
	next.Notice = ""

	var ex domain.Extraction
	err := e.call(ctx, next, "extractor", func(ctx context.Context) error {
		var err error
		ex, err = e.collab.Extractor.Extract(ctx, text, next.Request)
		return err
	})
	if err != nil {
		return e.fail(ctx, state, next, "extractor", err)
	}

	e.applyExtraction(next, ex)
	if ex.Empty() {
		next.Notice = "I could not find any trip details in that answer."
	}
	return e.advance(ctx, next)
}

// Decide resolves the approval gate.
func (e *Engine) Decide(ctx context.Context, state *domain.SessionState, decision domain.ApprovalDecision) (*domain.SessionState, error) {
	if err := e.expect(state, domain.InputApproval); err != nil {
		return nil, err
	}
	next := e.cloneState(state)
	next.Notice = ""

	switch decision.Verdict {
	case domain.VerdictApproved:
		next.Shortlist.ApprovedAt = e.now()
		e.appendHandoff(next, domain.HandoffApproval, fmt.Sprintf("approved shortlist round %d", next.Shortlist.Round))
		if err := e.transitionTo(ctx, next, domain.StageSourcingLogistics); err != nil {
			return nil, err
		}
		return e.advance(ctx, next)

	case domain.VerdictRejected:
		summary := "rejected without feedback"
		if decision.Feedback != "" {
			next.Feedback = append(next.Feedback, decision.Feedback)
			summary = decision.Feedback
		}
		e.appendHandoff(next, domain.HandoffRejection, summary)
		return e.discover(ctx, state, next)
	}
	return nil, domain.ErrAmbiguousDecision
}

// ResolveBudgetAlert records the answer to a failed budget check.
func (e *Engine) ResolveBudgetAlert(ctx context.Context, state *domain.SessionState, decision domain.BudgetDecision) (*domain.SessionState, error) {
	if err := e.expect(state, domain.InputBudgetAlert); err != nil {
		return nil, err
	}
	next := e.cloneState(state)
	next.Notice = ""

	switch decision {
	case domain.BudgetProceed:
		next.BudgetDecision = domain.BudgetProceed
		e.appendHandoff(next, domain.HandoffBudget, "proceed over budget by "+next.Audit.Budget.Delta.String())
		next.Status = domain.StatusActive
		next.Pending = ""
		return e.advance(ctx, next)
	case domain.BudgetAdjust:
		next.BudgetDecision = domain.BudgetAdjust
		e.appendHandoff(next, domain.HandoffBudget, "adjust the request")
		if err := e.transitionTo(ctx, next, domain.StageUpdatingFields); err != nil {
			return nil, err
		}
		return e.update(ctx, next, domain.Extraction{})
	}
	return nil, domain.ErrUnknownBudgetDecision
}

// Choose applies a post-result choice: refine, update or quit.
func (e *Engine) Choose(ctx context.Context, state *domain.SessionState, choice domain.Choice) (*domain.SessionState, error) {
	if err := e.expect(state, domain.InputNextStep); err != nil {
		return nil, err
	}
	next := e.cloneState(state)
	next.Notice = ""

	switch choice.Kind {
	case domain.ChoiceRefine:
		summary := "recompose"
		if choice.Args != "" {
			next.Refinements = append(next.Refinements, choice.Args)
			summary = choice.Args
		}
		e.appendHandoff(next, domain.HandoffRefinement, summary)
		if err := e.transitionTo(ctx, next, domain.StageRefiningItinerary); err != nil {
			return nil, err
		}
		return e.advance(ctx, next)

	case domain.ChoiceUpdate:
		if err := e.transitionTo(ctx, next, domain.StageUpdatingFields); err != nil {
			return nil, err
		}
		return e.update(ctx, next, validator.ParseEdits(choice.Args))

	case domain.ChoiceQuit:
		return e.Terminate(ctx, next, "quit by user")
	}
	return nil, domain.ErrUnknownChoice
}

// Terminate ends the session. It is valid from any non-terminal stage.
func (e *Engine) Terminate(ctx context.Context, state *domain.SessionState, reason string) (*domain.SessionState, error) {
	if err := e.checkLive(state); err != nil {
		return nil, err
	}
	next := e.cloneState(state)
	e.appendHandoff(next, domain.HandoffTerminated, reason)
	if err := e.transitionTo(ctx, next, domain.StageTerminated); err != nil {
		return nil, err
	}
	next.Status = domain.StatusTerminated
	next.Pending = ""
	return next, nil
}
