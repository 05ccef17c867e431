package runtime_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/voyage/internal/runtime"
	"github.com/aretw0/voyage/internal/validator"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/ports"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullRequest = "from: Delhi to: Tokyo start: 2025-04-10 days: 5 budget: 100000 INR party: 2 style: Couple interests: Food, History"

var tripStart = time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

// stubs records every collaborator call and returns canned results.
type stubs struct {
	discoverCalls []ports.DiscoveryQuery
	sourceCalls   int
	composeCalls  []ports.CompositionInput

	shortlist   func(round int, q ports.DiscoveryQuery) domain.Shortlist
	cost        int64
	hotelFound  bool
	sourceErr   error
	discoverErr error
}

func newStubs(cost int64) *stubs {
	return &stubs{
		cost:       cost,
		hotelFound: true,
		shortlist: func(round int, q ports.DiscoveryQuery) domain.Shortlist {
			return domain.Shortlist{Candidates: []domain.Candidate{
				{Name: "Tsukiji Outer Market", Tags: []string{"food"}},
				{Name: "Tokyo National Museum", Tags: []string{"museum", "history"}},
			}}
		},
	}
}

func (s *stubs) Extract(ctx context.Context, text string, current domain.TripRequest) (domain.Extraction, error) {
	return domain.Extraction{Fields: validator.ParseFields(text)}, nil
}

func (s *stubs) Discover(ctx context.Context, q ports.DiscoveryQuery) (domain.Shortlist, error) {
	s.discoverCalls = append(s.discoverCalls, q)
	if s.discoverErr != nil {
		return domain.Shortlist{}, s.discoverErr
	}
	return s.shortlist(len(s.discoverCalls), q), nil
}

func (s *stubs) Source(ctx context.Context, q ports.LogisticsQuery) (domain.LogisticsPlan, error) {
	s.sourceCalls++
	if s.sourceErr != nil {
		return domain.LogisticsPlan{}, s.sourceErr
	}
	third := decimal.NewFromInt(s.cost).Div(decimal.NewFromInt(3))
	price := func(d decimal.Decimal) *domain.Money {
		m := domain.NewMoney(d, "INR")
		return &m
	}
	out := tripStart.Add(9 * time.Hour)
	back := tripStart.AddDate(0, 0, 4).Add(18 * time.Hour)
	hotel := domain.NotFound(domain.LodgingID, domain.ItemLodging, "Hotel in Tokyo", "no rates")
	if s.hotelFound {
		hotel = domain.LineItem{
			ID: domain.LodgingID, Kind: domain.ItemLodging, Label: "Hotel in Tokyo", Resolution: domain.ResolutionFound,
			Price: price(third), CheckIn: tripStart, CheckOut: tripStart.AddDate(0, 0, 4), Nights: 4,
		}
	}
	return domain.LogisticsPlan{Items: []domain.LineItem{
		{ID: domain.OutboundFlightID, Kind: domain.ItemFlight, Label: "DEL to TYO", Resolution: domain.ResolutionFound,
			Price: price(third), Depart: out, Arrive: out.Add(8 * time.Hour)},
		hotel,
		{ID: domain.ReturnFlightID, Kind: domain.ItemFlight, Label: "TYO to DEL", Resolution: domain.ResolutionFound,
			Price: price(decimal.NewFromInt(s.cost).Sub(third.Mul(decimal.NewFromInt(2)))), Depart: back, Arrive: back.Add(9 * time.Hour)},
	}}, nil
}

func (s *stubs) Compose(ctx context.Context, in ports.CompositionInput) (domain.Itinerary, error) {
	s.composeCalls = append(s.composeCalls, in)
	it := domain.Itinerary{}
	for d := 1; d <= in.Request.Days(); d++ {
		it.Days = append(it.Days, domain.Day{Number: d, Entries: []domain.Entry{{Kind: "activity", Title: "Explore"}}})
	}
	it.Notes = append(it.Notes, in.Refinements...)
	return it, nil
}

func newEngine(t *testing.T, s *stubs, opts ...runtime.Option) *runtime.Engine {
	t.Helper()
	e, err := runtime.NewEngine(ports.Collaborators{Extractor: s, Discovery: s, Logistics: s, Composer: s}, opts...)
	require.NoError(t, err)
	return e
}

func navigate(t *testing.T, e *runtime.Engine, state *domain.SessionState, input string) *domain.SessionState {
	t.Helper()
	next, err := e.Navigate(context.Background(), state, input)
	require.NoError(t, err, "input %q", input)
	return next
}

func TestNewEngine_RequiresCollaborators(t *testing.T) {
	s := newStubs(1)
	_, err := runtime.NewEngine(ports.Collaborators{Extractor: s, Discovery: s, Logistics: s})
	assert.ErrorIs(t, err, runtime.ErrMissingCollaborator)
}

func TestEngine_FieldLoopReachesCompletenessBeforeDiscovery(t *testing.T) {
	s := newStubs(180000)
	e := newEngine(t, s)
	ctx := context.Background()

	state, err := e.Start(ctx, "s1", "to: Tokyo")
	require.NoError(t, err)
	assert.True(t, state.Waiting(domain.InputFields))
	assert.Len(t, state.Questions, 5)

	answers := []string{"from: Delhi", "start: 2025-04-10 days: 5", "budget: 100000 INR party: 2", "style: couple"}
	for _, a := range answers {
		prev := len(state.Questions)
		state = navigate(t, e, state, a)
		require.True(t, state.Waiting(domain.InputFields), "after %q", a)
		assert.Less(t, len(state.Questions), prev)
		assert.Empty(t, s.discoverCalls, "discovery must not run on an incomplete request")
	}

	state = navigate(t, e, state, "interests: food")
	assert.Empty(t, state.Questions)
	assert.Equal(t, domain.StageAwaitingApproval, state.Stage)
	assert.True(t, state.Waiting(domain.InputApproval))
	require.Len(t, s.discoverCalls, 1)
	assert.True(t, s.discoverCalls[0].Request.Complete())
}

func TestEngine_HappyPathAndAppendOnlyTrail(t *testing.T) {
	s := newStubs(180000)
	e := newEngine(t, s)

	state, err := e.Start(context.Background(), "s1", fullRequest)
	require.NoError(t, err)
	require.True(t, state.Waiting(domain.InputApproval))
	assert.Equal(t, 1, state.Shortlist.Round)

	before := state.Clone()
	approved := navigate(t, e, state, "approve")

	assert.Equal(t, before, state, "caller's state must not be mutated")
	assert.Equal(t, domain.StageAwaitingUserChoice, approved.Stage)
	assert.True(t, approved.Waiting(domain.InputNextStep))
	assert.True(t, approved.Shortlist.Frozen())
	require.NotNil(t, approved.Audit)
	assert.True(t, approved.Audit.Passed)
	assert.Equal(t, 1, approved.Itinerary.Revision)
	assert.Len(t, approved.Itinerary.Days, 5)

	require.GreaterOrEqual(t, len(approved.Trail), len(before.Trail))
	assert.Equal(t, before.Trail, approved.Trail[:len(before.Trail)], "earlier handoffs are never rewritten")
	for i, h := range approved.Trail {
		assert.Equal(t, i+1, h.Seq)
	}

	assert.Equal(t, []domain.Stage{
		domain.StageCollectingFields,
		domain.StageAwaitingApproval,
		domain.StageSourcingLogistics,
		domain.StageAuditing,
		domain.StageComposing,
		domain.StageAwaitingUserChoice,
	}, approved.History)
}

func TestEngine_RejectionRerunsDiscoveryWithFeedback(t *testing.T) {
	s := newStubs(180000)
	e := newEngine(t, s)

	state, err := e.Start(context.Background(), "s1", fullRequest)
	require.NoError(t, err)

	state = navigate(t, e, state, "reject: too many museums")
	assert.Equal(t, domain.StageAwaitingApproval, state.Stage)
	assert.True(t, state.Waiting(domain.InputApproval))
	assert.Equal(t, 2, state.Shortlist.Round)
	assert.False(t, state.Shortlist.Frozen())
	assert.Equal(t, 0, s.sourceCalls, "no advance without approval")

	require.Len(t, s.discoverCalls, 2)
	assert.Equal(t, []string{"too many museums"}, s.discoverCalls[1].Feedback)

	state = navigate(t, e, state, "reject: more street food")
	require.Len(t, s.discoverCalls, 3)
	assert.Equal(t, []string{"too many museums", "more street food"}, s.discoverCalls[2].Feedback)

	last, _ := state.LastHandoff()
	assert.Equal(t, domain.HandoffShortlist, last.Kind)
	assert.Equal(t, "more street food", state.Trail[len(state.Trail)-2].Summary)

	state = navigate(t, e, state, "y")
	assert.Equal(t, domain.StageAwaitingUserChoice, state.Stage)
	assert.Equal(t, 1, s.sourceCalls)
}

func TestEngine_AmbiguousApprovalDoesNotAdvance(t *testing.T) {
	s := newStubs(180000)
	e := newEngine(t, s)

	state, err := e.Start(context.Background(), "s1", fullRequest)
	require.NoError(t, err)

	next, err := e.Navigate(context.Background(), state, "sounds fine I guess")
	assert.ErrorIs(t, err, domain.ErrAmbiguousDecision)
	assert.Nil(t, next)
	assert.True(t, state.Waiting(domain.InputApproval))
}

func TestEngine_BudgetAlertBeforeComposing(t *testing.T) {
	s := newStubs(230000)
	e := newEngine(t, s)

	state, err := e.Start(context.Background(), "s1", fullRequest)
	require.NoError(t, err)
	state = navigate(t, e, state, "approve")

	assert.Equal(t, domain.StageAuditing, state.Stage)
	assert.True(t, state.Waiting(domain.InputBudgetAlert))
	assert.Empty(t, s.composeCalls, "alert fires before composing")
	require.NotNil(t, state.Audit.Budget.Delta)
	assert.Equal(t, "30000.00 INR", state.Audit.Budget.Delta.String())

	t.Run("proceed", func(t *testing.T) {
		next := navigate(t, e, state, "proceed")
		assert.Equal(t, domain.StageAwaitingUserChoice, next.Stage)
		assert.Equal(t, domain.BudgetProceed, next.BudgetDecision)
		assert.False(t, next.Audit.Passed, "report is attached unchanged")
	})

	t.Run("adjust", func(t *testing.T) {
		next := navigate(t, e, state, "adjust")
		assert.Equal(t, domain.StageCollectingFields, next.Stage)
		assert.True(t, next.Waiting(domain.InputFields))
		assert.Nil(t, next.Shortlist)
		assert.Nil(t, next.Logistics)
		assert.Nil(t, next.Audit)
		assert.Equal(t, "Tokyo", next.Request.Destination, "request is kept as the seed")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := e.Navigate(context.Background(), state, "hmm")
		assert.ErrorIs(t, err, domain.ErrUnknownBudgetDecision)
	})
}

func TestEngine_RefineKeepsShortlistAndLogistics(t *testing.T) {
	s := newStubs(180000)
	e := newEngine(t, s)

	state, err := e.Start(context.Background(), "s1", fullRequest)
	require.NoError(t, err)
	state = navigate(t, e, state, "approve")

	shortlist := state.Shortlist.Clone()
	logistics := state.Logistics.Clone()

	for i := 1; i <= 3; i++ {
		state = navigate(t, e, state, "refine make day "+string(rune('0'+i))+" relaxed")
		assert.Equal(t, domain.StageAwaitingUserChoice, state.Stage)
		assert.Equal(t, i+1, state.Itinerary.Revision)
		assert.Equal(t, shortlist, *state.Shortlist)
		assert.Equal(t, logistics, *state.Logistics)
		assert.Len(t, state.Refinements, i)
	}

	last := s.composeCalls[len(s.composeCalls)-1]
	require.NotNil(t, last.Previous)
	assert.Equal(t, 3, last.Previous.Revision)
	assert.Equal(t, 1, s.sourceCalls)

	state = navigate(t, e, state, "refine")
	assert.Len(t, state.Refinements, 3, "empty instructions recompose without appending")
	assert.Equal(t, 5, state.Itinerary.Revision)
}

func TestEngine_UpdateDiscardsDownstreamAndRequiresApproval(t *testing.T) {
	s := newStubs(180000)
	e := newEngine(t, s)

	state, err := e.Start(context.Background(), "s1", fullRequest)
	require.NoError(t, err)
	state = navigate(t, e, state, "reject: no museums")
	state = navigate(t, e, state, "approve")
	state = navigate(t, e, state, "refine slower")

	updated := navigate(t, e, state, "update budget=150000 INR")

	assert.Equal(t, domain.StageAwaitingApproval, updated.Stage, "a new shortlist must pass the gate")
	assert.True(t, updated.Waiting(domain.InputApproval))
	assert.Equal(t, 1, updated.Shortlist.Round)
	assert.Nil(t, updated.Logistics)
	assert.Nil(t, updated.Audit)
	assert.Nil(t, updated.Itinerary)
	assert.Empty(t, updated.Feedback)
	assert.Empty(t, updated.Refinements)
	assert.Empty(t, updated.BudgetDecision)
	assert.True(t, updated.Request.Budget.Amount.Equal(decimal.NewFromInt(150000)))
	assert.Empty(t, s.discoverCalls[len(s.discoverCalls)-1].Feedback)
}

func TestEngine_UpdateWithoutEditsWaits(t *testing.T) {
	s := newStubs(180000)
	e := newEngine(t, s)

	state, err := e.Start(context.Background(), "s1", fullRequest)
	require.NoError(t, err)
	state = navigate(t, e, state, "approve")
	calls := len(s.discoverCalls)

	state = navigate(t, e, state, "update")
	assert.Equal(t, domain.StageCollectingFields, state.Stage)
	assert.True(t, state.Waiting(domain.InputFields))
	assert.Nil(t, state.Itinerary)
	assert.Len(t, s.discoverCalls, calls)

	state = navigate(t, e, state, "destination: Paris")
	assert.Equal(t, "Paris", state.Request.Destination)
	assert.True(t, state.Waiting(domain.InputApproval))
}

func TestEngine_QuitTerminates(t *testing.T) {
	s := newStubs(180000)
	e := newEngine(t, s)

	state, err := e.Start(context.Background(), "s1", fullRequest)
	require.NoError(t, err)
	state = navigate(t, e, state, "approve")
	state = navigate(t, e, state, "quit")

	assert.True(t, state.Terminated())
	assert.Equal(t, domain.StageTerminated, state.Stage)
	assert.NotNil(t, state.Itinerary, "quit keeps the artifacts")

	_, err = e.Navigate(context.Background(), state, "refine")
	assert.ErrorIs(t, err, domain.ErrTerminated)

	_, err = e.Navigate(context.Background(), state, "hello")
	assert.ErrorIs(t, err, domain.ErrTerminated)
}

func TestEngine_UnknownChoice(t *testing.T) {
	s := newStubs(180000)
	e := newEngine(t, s)

	state, err := e.Start(context.Background(), "s1", fullRequest)
	require.NoError(t, err)
	state = navigate(t, e, state, "approve")

	_, err = e.Navigate(context.Background(), state, "restart")
	assert.ErrorIs(t, err, domain.ErrUnknownChoice)
}

func TestEngine_WrongInputKind(t *testing.T) {
	s := newStubs(180000)
	e := newEngine(t, s)

	state, err := e.Start(context.Background(), "s1", fullRequest)
	require.NoError(t, err)

	_, err = e.Choose(context.Background(), state, domain.Choice{Kind: domain.ChoiceQuit})
	assert.ErrorIs(t, err, domain.ErrNotWaiting)
	_, err = e.Submit(context.Background(), state, "from: Pune")
	assert.ErrorIs(t, err, domain.ErrNotWaiting)
}

func TestEngine_CollaboratorFailureTerminates(t *testing.T) {
	s := newStubs(180000)
	s.discoverErr = errors.New("connection refused")
	e := newEngine(t, s)

	state, err := e.Start(context.Background(), "s1", fullRequest)

	var unavailable *domain.CollaboratorUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "discovery", unavailable.Collaborator)
	require.NotNil(t, state)
	assert.True(t, state.Terminated())
	assert.Contains(t, state.LastError, "connection refused")

	actions, waiting, err := e.Render(context.Background(), state)
	require.NoError(t, err)
	assert.False(t, waiting)
	require.NotEmpty(t, actions)
	assert.Contains(t, actions[len(actions)-1].Payload, "connection refused")
}

func TestEngine_CancellationKeepsSession(t *testing.T) {
	s := newStubs(180000)
	e := newEngine(t, s)

	state, err := e.Start(context.Background(), "s1", fullRequest)
	require.NoError(t, err)

	s.sourceErr = context.Canceled
	next, err := e.Navigate(context.Background(), state, "approve")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, next)
	assert.True(t, state.Waiting(domain.InputApproval))
}

func TestEngine_WholeCallDataNotFoundBecomesSentinels(t *testing.T) {
	s := newStubs(0)
	s.sourceErr = &domain.DataNotFoundError{Kind: domain.ItemFlight, Detail: "no routes for DEL-TYO"}
	e := newEngine(t, s)

	state, err := e.Start(context.Background(), "s1", fullRequest)
	require.NoError(t, err)
	state = navigate(t, e, state, "approve")

	require.NotNil(t, state.Logistics)
	assert.Len(t, state.Logistics.Unresolved(), 3)
	assert.False(t, state.Audit.Passed)
	assert.Equal(t, domain.CheckUnverifiable, state.Audit.Budget.Status)
	assert.True(t, state.Audit.Budget.Cost.Amount.IsZero())

	var ids []string
	for _, f := range state.Audit.FindingsOf(domain.FindingUnverifiable) {
		ids = append(ids, f.ItemID)
	}
	assert.Equal(t, []string{domain.OutboundFlightID, domain.LodgingID, domain.ReturnFlightID}, ids)
	assert.Equal(t, domain.StageAwaitingUserChoice, state.Stage)
}

func TestEngine_RejectedBudgetAnswerKeepsQuestion(t *testing.T) {
	s := newStubs(180000)
	e := newEngine(t, s)
	ctx := context.Background()

	state, err := e.Start(ctx, "s1", "from: Delhi to: Tokyo start: 2025-04-10 days: 5 party: 2 style: Couple interests: Food")
	require.NoError(t, err)
	require.True(t, state.Waiting(domain.InputFields))
	require.Len(t, state.Questions, 1)
	question := state.Questions[0]

	for _, answer := range []string{"budget: -500 USD", "budget: 100000 PER PERSON", "budget: 100x INR"} {
		state = navigate(t, e, state, answer)
		assert.True(t, state.Waiting(domain.InputFields), "after %q", answer)
		assert.Equal(t, []string{question}, state.Questions, "after %q", answer)
		assert.Contains(t, state.Notice, "budget")
	}
	assert.Empty(t, s.discoverCalls)

	state = navigate(t, e, state, "budget: 1.5 lakh INR")
	assert.Equal(t, "150000.00 INR", state.Request.Budget.String())
	assert.True(t, state.Waiting(domain.InputApproval))
}

func TestEngine_NotFoundHotelSurfaces(t *testing.T) {
	s := newStubs(120000)
	s.hotelFound = false
	e := newEngine(t, s)

	state, err := e.Start(context.Background(), "s1", fullRequest)
	require.NoError(t, err)
	state = navigate(t, e, state, "approve")

	assert.Len(t, state.Logistics.Unresolved(), 1)
	assert.Len(t, state.Audit.FindingsOf(domain.FindingUnverifiable), 1)

	actions, waiting, err := e.Render(context.Background(), state)
	require.NoError(t, err)
	assert.True(t, waiting)
	assert.Contains(t, actions[0].Payload, "Data not found, cannot proceed with this item: Hotel in Tokyo")
}

func TestEngine_EmptyShortlistReturnsToFields(t *testing.T) {
	s := newStubs(180000)
	s.shortlist = func(round int, q ports.DiscoveryQuery) domain.Shortlist { return domain.Shortlist{} }
	e := newEngine(t, s)

	state, err := e.Start(context.Background(), "s1", fullRequest)
	require.NoError(t, err)
	assert.Equal(t, domain.StageCollectingFields, state.Stage)
	assert.True(t, state.Waiting(domain.InputFields))
	assert.Contains(t, state.Notice, "No candidates")

	actions, _, err := e.Render(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionSystemMessage, actions[0].Type)
	req := actions[len(actions)-1].Payload.(domain.InputRequest)
	assert.Contains(t, req.Prompt, "change")
}

func TestEngine_RenderPrompts(t *testing.T) {
	s := newStubs(230000)
	e := newEngine(t, s)
	ctx := context.Background()

	state, err := e.Start(ctx, "s1", "to: Tokyo")
	require.NoError(t, err)
	actions, waiting, err := e.Render(ctx, state)
	require.NoError(t, err)
	assert.True(t, waiting)
	require.Len(t, actions, 2)
	assert.Contains(t, actions[0].Payload, "travelling from")
	req := actions[1].Payload.(domain.InputRequest)
	assert.Equal(t, domain.InputFields, req.Kind)

	state, err = e.Start(ctx, "s2", fullRequest)
	require.NoError(t, err)
	state = navigate(t, e, state, "approve")
	actions, _, err = e.Render(ctx, state)
	require.NoError(t, err)

	var alert string
	for _, a := range actions {
		if a.Type == domain.ActionSystemMessage {
			alert = a.Payload.(string)
		}
	}
	assert.True(t, strings.HasPrefix(alert, "Budget alert"), alert)
	assert.Contains(t, alert, "30000.00 INR")
}
