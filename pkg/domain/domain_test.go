package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		input   string
		want    ApprovalDecision
		wantErr bool
	}{
		{input: "approve", want: Approve()},
		{input: "  Approved ", want: Approve()},
		{input: "Y", want: Approve()},
		{input: "yes", want: Approve()},
		{input: "reject", want: Reject("")},
		{input: "reject: too many museums", want: Reject("too many museums")},
		{input: "no:more food please", want: Reject("more food please")},
		{input: "maybe", wantErr: true},
		{input: "", wantErr: true},
		{input: "yes: but fewer temples", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDecision(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrAmbiguousDecision)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseChoice(t *testing.T) {
	c, err := ParseChoice("refine make day 2 relaxed")
	require.NoError(t, err)
	assert.Equal(t, Choice{Kind: ChoiceRefine, Args: "make day 2 relaxed"}, c)

	c, err = ParseChoice("UPDATE budget=150000 INR")
	require.NoError(t, err)
	assert.Equal(t, ChoiceUpdate, c.Kind)
	assert.Equal(t, "budget=150000 INR", c.Args)

	c, err = ParseChoice("quit")
	require.NoError(t, err)
	assert.Equal(t, ChoiceQuit, c.Kind)

	for _, bad := range []string{"", "restart", "quit now", "approve"} {
		_, err := ParseChoice(bad)
		assert.ErrorIs(t, err, ErrUnknownChoice, bad)
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StageCollectingFields, StageAwaitingApproval))
	assert.True(t, CanTransition(StageAwaitingApproval, StageAwaitingApproval), "rejection re-enters approval")
	assert.True(t, CanTransition(StageAuditing, StageUpdatingFields), "budget adjust takes the update path")
	assert.True(t, CanTransition(StageRefiningItinerary, StageTerminated))

	assert.False(t, CanTransition(StageCollectingFields, StageSourcingLogistics), "approval cannot be skipped")
	assert.False(t, CanTransition(StageSourcingLogistics, StageComposing), "audit cannot be skipped")
	assert.False(t, CanTransition(StageTerminated, StageCollectingFields))

	for _, tr := range Transitions() {
		assert.True(t, CanTransition(tr.From, tr.To), "%s -> %s", tr.From, tr.To)
	}
}

func TestTripRequest_Days(t *testing.T) {
	start := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, TripRequest{}.Days())
	assert.Equal(t, 5, TripRequest{DurationDays: 5}.Days())
	assert.Equal(t, 5, TripRequest{StartDate: start, EndDate: start.AddDate(0, 0, 4), DurationDays: 9}.Days())
	assert.Equal(t, 3, TripRequest{StartDate: start, EndDate: start.AddDate(0, 0, -1), DurationDays: 3}.Days(), "inverted range falls back")
	assert.Equal(t, start.AddDate(0, 0, 2), TripRequest{StartDate: start, DurationDays: 3}.LastDay())
}

func TestTripRequest_Complete(t *testing.T) {
	req := TripRequest{
		Origin:       "Delhi",
		Destination:  "Tokyo",
		DurationDays: 5,
		Budget:       NewMoney(decimal.NewFromInt(100000), "inr"),
		Style:        "Couple",
		Interests:    []string{"Food"},
	}
	assert.True(t, req.Complete())
	assert.Equal(t, "INR", req.Budget.Currency)
	assert.Equal(t, 1, req.Party())

	req.Budget = NewMoney(decimal.Zero, "INR")
	assert.False(t, req.Has(FieldBudget), "budget must be positive")
	assert.False(t, req.Complete())
}

func TestSessionState_Clone(t *testing.T) {
	price := NewMoney(decimal.NewFromInt(500), "USD")
	s := NewSessionState("s1", time.Now())
	s.Request.Interests = []string{"Food"}
	s.Shortlist = &Shortlist{Candidates: []Candidate{{Name: "A", Tags: []string{"food"}}}}
	s.Logistics = &LogisticsPlan{Items: []LineItem{{ID: "f1", Price: &price, Resolution: ResolutionFound}}}

	c := s.Clone()
	c.Request.Interests[0] = "Nightlife"
	c.Shortlist.Candidates[0].Tags[0] = "museum"
	c.Logistics.Items[0].Price.Amount = decimal.NewFromInt(1)

	assert.Equal(t, "Food", s.Request.Interests[0])
	assert.Equal(t, "food", s.Shortlist.Candidates[0].Tags[0])
	assert.True(t, s.Logistics.Items[0].Price.Amount.Equal(decimal.NewFromInt(500)))
}

func TestSessionState_JSONRoundTrip(t *testing.T) {
	at := time.Date(2025, 4, 10, 8, 30, 0, 0, time.UTC)
	price := NewMoney(decimal.RequireFromString("42000.50"), "INR")
	delta := NewMoney(decimal.NewFromInt(30000), "INR")
	s := NewSessionState("s1", at)
	s.Request = TripRequest{Origin: "Delhi", Destination: "Tokyo", StartDate: at, DurationDays: 5, Budget: NewMoney(decimal.NewFromInt(100000), "INR"), PartySize: 2}
	s.Logistics = &LogisticsPlan{Items: []LineItem{
		{ID: "f1", Kind: ItemFlight, Resolution: ResolutionFound, Price: &price, Depart: at},
		NotFound("h1", ItemLodging, "Hotel in Tokyo", "no rates"),
	}}
	s.Audit = &AuditReport{Budget: BudgetCheck{Status: CheckFail, Delta: &delta}, Findings: []Finding{{Kind: FindingUnverifiable, ItemID: "h1"}}}
	s.Trail = []Handoff{{Seq: 1, Stage: StageCollectingFields, Kind: HandoffRequest, At: at}}

	b, err := json.Marshal(s)
	require.NoError(t, err)

	var got SessionState
	require.NoError(t, json.Unmarshal(b, &got))
	assert.True(t, got.Logistics.Items[0].Price.Amount.Equal(price.Amount))
	assert.Nil(t, got.Logistics.Items[1].Price)
	assert.False(t, got.Logistics.Items[1].Resolved())
	assert.True(t, got.Audit.Budget.Delta.Amount.Equal(delta.Amount))
	assert.True(t, got.Request.StartDate.Equal(at))
	assert.Equal(t, s.Trail, got.Trail)
}
