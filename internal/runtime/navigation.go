package runtime

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/voyage/internal/validator"
	"github.com/aretw0/voyage/pkg/budget"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/ports"
)

// advance runs active stages until the session reaches a suspend point or terminates.
func (e *Engine) advance(ctx context.Context, state *domain.SessionState) (*domain.SessionState, error) {
	for {
		if state.Terminated() {
			return state, nil
		}

		switch state.Stage {
		case domain.StageCollectingFields:
			st := validator.Validate(state.Request)
			if !st.Complete() {
				state.Questions = e.validator.Questions(st)
				e.logger.Debug("request incomplete", "session_id", state.SessionID, "missing", st.Missing())
				e.suspend(state, domain.InputFields)
				return state, nil
			}
			state.Questions = nil
			e.appendHandoff(state, domain.HandoffRequest, describeRequest(state.Request))
			return e.discover(ctx, nil, state)

		case domain.StageSourcingLogistics:
			var plan domain.LogisticsPlan
			err := e.call(ctx, state, "logistics", func(ctx context.Context) error {
				var err error
				plan, err = e.collab.Logistics.Source(ctx, ports.LogisticsQuery{
					Request:   state.Request.Clone(),
					Shortlist: state.Shortlist.Clone(),
				})
				return err
			})
			var notFound *domain.DataNotFoundError
			if errors.As(err, &notFound) {
				plan = placeholderPlan(state.Request, notFound)
				err = nil
			}
			if err != nil {
				return e.fail(ctx, nil, state, "logistics", err)
			}
			if plan.SourcedAt.IsZero() {
				plan.SourcedAt = e.now()
			}
			state.Logistics = &plan
			e.appendHandoff(state, domain.HandoffLogistics, describePlan(plan))
			if err := e.transitionTo(ctx, state, domain.StageAuditing); err != nil {
				return nil, err
			}

		case domain.StageAuditing:
			if state.Audit == nil {
				report := e.auditor.Audit(state.Request, *state.Logistics)
				state.Audit = &report
				state.BudgetDecision = ""
				e.appendHandoff(state, domain.HandoffAudit, describeAudit(report))
				if report.BudgetFailed() {
					e.emitBudgetAlert(ctx, state, report.Budget)
				}
			}
			if state.Audit.BudgetFailed() && state.BudgetDecision == "" {
				e.suspend(state, domain.InputBudgetAlert)
				return state, nil
			}
			if err := e.transitionTo(ctx, state, domain.StageComposing); err != nil {
				return nil, err
			}

		case domain.StageComposing, domain.StageRefiningItinerary:
			var previous *domain.Itinerary
			if state.Stage == domain.StageRefiningItinerary {
				previous = state.Itinerary
			}
			it, err := e.compose(ctx, state, previous)
			if err != nil {
				return e.fail(ctx, nil, state, "composer", err)
			}
			state.Itinerary = &it
			e.appendHandoff(state, domain.HandoffItinerary, fmt.Sprintf("revision %d: %d days", it.Revision, len(it.Days)))
			if err := e.transitionTo(ctx, state, domain.StageAwaitingUserChoice); err != nil {
				return nil, err
			}
			e.suspend(state, domain.InputNextStep)
			return state, nil

		default:
			// AwaitingApproval and AwaitingUserChoice only move on input.
			return state, nil
		}
	}
}

// discover runs a discovery round and moves to the approval gate.
// An empty shortlist sends the session back to field collection with a notice.
func (e *Engine) discover(ctx context.Context, original, state *domain.SessionState) (*domain.SessionState, error) {
	round := 1
	if state.Shortlist != nil {
		round = state.Shortlist.Round + 1
	}

	var shortlist domain.Shortlist
	err := e.call(ctx, state, "discovery", func(ctx context.Context) error {
		var err error
		shortlist, err = e.collab.Discovery.Discover(ctx, ports.DiscoveryQuery{
			Request:  state.Request.Clone(),
			Feedback: append([]string(nil), state.Feedback...),
		})
		return err
	})
	if err != nil {
		return e.fail(ctx, original, state, "discovery", err)
	}

	if shortlist.Empty() {
		state.Shortlist = nil
		state.Notice = "No candidates matched this request. Try another destination or different interests."
		e.appendHandoff(state, domain.HandoffNotice, "discovery returned no candidates")
		if state.Stage != domain.StageCollectingFields {
			if err := e.transitionTo(ctx, state, domain.StageCollectingFields); err != nil {
				return nil, err
			}
		}
		e.suspend(state, domain.InputFields)
		return state, nil
	}

	shortlist.Round = round
	shortlist.ApprovedAt = time.Time{}
	state.Shortlist = &shortlist
	e.appendHandoff(state, domain.HandoffShortlist, fmt.Sprintf("round %d: %s", round, strings.Join(shortlist.Names(), ", ")))
	if err := e.transitionTo(ctx, state, domain.StageAwaitingApproval); err != nil {
		return nil, err
	}
	e.suspend(state, domain.InputApproval)
	return state, nil
}

// update discards every downstream artifact, applies the edits and restarts field collection.
// Without edits the session waits for them.
func (e *Engine) update(ctx context.Context, state *domain.SessionState, edits domain.Extraction) (*domain.SessionState, error) {
	state.Shortlist = nil
	state.Logistics = nil
	state.Audit = nil
	state.BudgetDecision = ""
	state.Itinerary = nil
	state.Feedback = nil
	state.Refinements = nil

	changed := make([]string, 0, len(edits.Fields))
	for k := range edits.Fields {
		changed = append(changed, k)
	}
	slices.Sort(changed)

	summary := "waiting for edits"
	if len(changed) > 0 {
		summary = "edited " + strings.Join(changed, ", ")
	}
	e.appendHandoff(state, domain.HandoffUpdate, summary)
	e.applyExtraction(state, edits)

	if err := e.transitionTo(ctx, state, domain.StageCollectingFields); err != nil {
		return nil, err
	}
	if edits.Empty() {
		state.Questions = e.validator.Questions(validator.Validate(state.Request))
		e.suspend(state, domain.InputFields)
		return state, nil
	}
	return e.advance(ctx, state)
}

func (e *Engine) applyExtraction(state *domain.SessionState, ex domain.Extraction) {
	merged, err := e.validator.Merge(state.Request, ex)
	state.Request = merged
	if err != nil {
		e.logger.Debug("extraction partially rejected", "session_id", state.SessionID, "err", err)
		state.Notice = "Some details could not be used: " + err.Error()
	}
}

func (e *Engine) compose(ctx context.Context, state *domain.SessionState, previous *domain.Itinerary) (domain.Itinerary, error) {
	in := ports.CompositionInput{
		Request:     state.Request.Clone(),
		Shortlist:   state.Shortlist.Clone(),
		Logistics:   state.Logistics.Clone(),
		Audit:       state.Audit.Clone(),
		Refinements: append([]string(nil), state.Refinements...),
	}
	if previous != nil {
		prev := previous.Clone()
		in.Previous = &prev
	}

	var it domain.Itinerary
	err := e.call(ctx, state, "composer", func(ctx context.Context) error {
		var err error
		it, err = e.collab.Composer.Compose(ctx, in)
		return err
	})
	if err != nil {
		return domain.Itinerary{}, err
	}

	it.Revision = 1
	if previous != nil {
		it.Revision = previous.Revision + 1
	}
	if it.ComposedAt.IsZero() {
		it.ComposedAt = e.now()
	}
	return it, nil
}

// fail handles a collaborator error. Cancellation leaves the session as it was;
// any other failure terminates it.
func (e *Engine) fail(ctx context.Context, original, state *domain.SessionState, collaborator string, err error) (*domain.SessionState, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if original != nil {
			return original, err
		}
		return nil, err
	}

	cause := &domain.CollaboratorUnavailableError{Collaborator: collaborator, Err: err}
	e.logger.Error("collaborator failed", "session_id", state.SessionID, "collaborator", collaborator, "err", err)

	state.LastError = cause.Error()
	e.appendHandoff(state, domain.HandoffTerminated, cause.Error())
	if terr := e.transitionTo(ctx, state, domain.StageTerminated); terr != nil {
		return nil, errors.Join(cause, terr)
	}
	state.Status = domain.StatusTerminated
	state.Pending = ""
	return state, cause
}

func (e *Engine) transitionTo(ctx context.Context, state *domain.SessionState, to domain.Stage) error {
	from := state.Stage
	if !domain.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}
	e.emitStageLeave(ctx, state, from)
	state.Stage = to
	state.History = append(state.History, to)
	state.Status = domain.StatusActive
	state.Pending = ""
	state.UpdatedAt = e.now()
	e.emitStageEnter(ctx, state, to)
	return nil
}

func (e *Engine) suspend(state *domain.SessionState, kind domain.InputKind) {
	state.Status = domain.StatusWaitingForInput
	state.Pending = kind
	state.UpdatedAt = e.now()
}

func (e *Engine) checkLive(state *domain.SessionState) error {
	if state == nil {
		return domain.ErrSessionNotFound
	}
	if state.Terminated() {
		return domain.ErrTerminated
	}
	return nil
}

func (e *Engine) expect(state *domain.SessionState, kind domain.InputKind) error {
	if err := e.checkLive(state); err != nil {
		return err
	}
	if !state.Waiting(kind) {
		return fmt.Errorf("%w: waiting for %q, got %q", domain.ErrNotWaiting, state.Pending, kind)
	}
	return nil
}

func (e *Engine) appendHandoff(state *domain.SessionState, kind domain.HandoffKind, summary string) {
	state.Trail = append(state.Trail, domain.Handoff{
		Seq:     len(state.Trail) + 1,
		Stage:   state.Stage,
		Kind:    kind,
		Summary: summary,
		At:      e.now(),
	})
}

// cloneState isolates the caller's copy from the mutations of a step.
func (e *Engine) cloneState(src *domain.SessionState) *domain.SessionState {
	return src.Clone()
}

// ParseBudgetDecision reads the answer to a budget alert.
func ParseBudgetDecision(input string) (domain.BudgetDecision, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "proceed", "p", "continue", "yes", "y":
		return domain.BudgetProceed, nil
	case "adjust", "a", "update", "no", "n":
		return domain.BudgetAdjust, nil
	}
	return "", domain.ErrUnknownBudgetDecision
}

func placeholderPlan(req domain.TripRequest, cause *domain.DataNotFoundError) domain.LogisticsPlan {
	detail := cause.Detail
	return domain.LogisticsPlan{Items: []domain.LineItem{
		domain.NotFound(domain.OutboundFlightID, domain.ItemFlight, fmt.Sprintf("Flight %s to %s", req.Origin, req.Destination), detail),
		domain.NotFound(domain.LodgingID, domain.ItemLodging, "Lodging in "+req.Destination, detail),
		domain.NotFound(domain.ReturnFlightID, domain.ItemFlight, fmt.Sprintf("Flight %s to %s", req.Destination, req.Origin), detail),
	}}
}

func describeRequest(r domain.TripRequest) string {
	when := fmt.Sprintf("%d days", r.Days())
	if !r.StartDate.IsZero() {
		when += " from " + r.StartDate.Format(domain.DateLayout)
	}
	return fmt.Sprintf("%s to %s, %s, %s for %d (%s)",
		r.Origin, r.Destination, when, budget.Total(r.Budget, r.Party()), r.Party(), r.Style)
}

func describePlan(p domain.LogisticsPlan) string {
	return fmt.Sprintf("%d items, %d not found", len(p.Items), len(p.Unresolved()))
}

func describeAudit(r domain.AuditReport) string {
	s := fmt.Sprintf("budget %s: cost %s of %s", r.Budget.Status, r.Budget.Cost, r.Budget.Total)
	if r.Budget.Delta != nil {
		s += ", over by " + r.Budget.Delta.String()
	}
	if n := len(r.Findings); n > 0 {
		s += fmt.Sprintf(", %d findings", n)
	}
	return s
}
