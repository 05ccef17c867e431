package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/voyage/pkg/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := contractState(sessionID)

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.Stage, loaded.Stage)
		assert.Equal(t, state.Status, loaded.Status)
		assert.Equal(t, state.Pending, loaded.Pending)
		assert.Equal(t, state.Feedback, loaded.Feedback)
		assert.True(t, state.Request.Budget.Amount.Equal(loaded.Request.Budget.Amount))
		assert.True(t, state.Request.StartDate.Equal(loaded.Request.StartDate))

		require.NotNil(t, loaded.Logistics)
		require.Len(t, loaded.Logistics.Items, 2)
		assert.True(t, loaded.Logistics.Items[0].Price.Amount.Equal(decimal.RequireFromString("41999.99")))
		assert.Nil(t, loaded.Logistics.Items[1].Price, "not-found sentinel must survive persistence")
		assert.Equal(t, domain.ResolutionNotFound, loaded.Logistics.Items[1].Resolution)

		require.Len(t, loaded.Trail, len(state.Trail))
		assert.Equal(t, state.Trail[1].Summary, loaded.Trail[1].Summary)
	})

	t.Run("Saved State Is Isolated", func(t *testing.T) {
		state := contractState(sessionID)
		require.NoError(t, store.Save(ctx, sessionID, state))

		state.Feedback[0] = "mutated after save"
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "too many museums", loaded.Feedback[0])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, contractState(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, contractState(id1))
		_ = store.Save(ctx, id2, contractState(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

func contractState(id string) *domain.SessionState {
	at := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	price := domain.NewMoney(decimal.RequireFromString("41999.99"), "INR")

	s := domain.NewSessionState(id, at)
	s.Stage = domain.StageAwaitingApproval
	s.Status = domain.StatusWaitingForInput
	s.Pending = domain.InputApproval
	s.Request = domain.TripRequest{
		Origin:       "Delhi",
		Destination:  "Tokyo",
		StartDate:    at,
		DurationDays: 5,
		Budget:       domain.NewMoney(decimal.NewFromInt(100000), "INR"),
		PartySize:    2,
		Style:        "Couple",
		Interests:    []string{"Food", "History"},
	}
	s.Feedback = []string{"too many museums"}
	s.Shortlist = &domain.Shortlist{Round: 2, Candidates: []domain.Candidate{{Name: "Tsukiji Outer Market", Tags: []string{"food"}}}}
	s.Logistics = &domain.LogisticsPlan{Items: []domain.LineItem{
		{ID: "flight-out", Kind: domain.ItemFlight, Label: "DEL-TYO", Resolution: domain.ResolutionFound, Price: &price, Depart: at},
		domain.NotFound("lodging", domain.ItemLodging, "Hotel in Tokyo", "no rates"),
	}}
	s.Trail = []domain.Handoff{
		{Seq: 1, Stage: domain.StageCollectingFields, Kind: domain.HandoffRequest, Summary: "request complete", At: at},
		{Seq: 2, Stage: domain.StageAwaitingApproval, Kind: domain.HandoffRejection, Summary: "too many museums", At: at},
	}
	return s
}
