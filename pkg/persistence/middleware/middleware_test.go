package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"
	"time"

	"github.com/aretw0/voyage/pkg/adapters/memory"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/persistence/middleware"
	"github.com/aretw0/voyage/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, backend ports.SessionStore, cfg middleware.EncryptionConfig) ports.SessionStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(backend)
}

func sampleState() *domain.SessionState {
	s := domain.NewSessionState("s1", time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC))
	s.Stage = domain.StageAwaitingApproval
	s.Status = domain.StatusWaitingForInput
	s.Pending = domain.InputApproval
	s.Request.Origin = "Delhi"
	s.Request.Destination = "Tokyo"
	s.Feedback = []string{"no museums, mail me at jo@example.com"}
	s.Refinements = []string{"call +91 98765 43210 before booking"}
	s.Trail = []domain.Handoff{{Seq: 1, Kind: domain.HandoffRejection, Summary: "no museums, mail me at jo@example.com"}}
	return s
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunSessionStoreContract(t, encrypted(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	backend := memory.NewStore()
	store := encrypted(t, backend, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", sampleState()))

	envelope, err := backend.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, envelope.Sealed)
	assert.Empty(t, envelope.Request.Destination, "request details are hidden")
	assert.Empty(t, envelope.Feedback)
	assert.Equal(t, domain.StageAwaitingApproval, envelope.Stage, "routing fields stay visible")

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Tokyo", loaded.Request.Destination)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	backend := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	require.NoError(t, encrypted(t, backend, middleware.EncryptionConfig{ActiveKey: oldKey}).Save(ctx, "s1", sampleState()))

	rotated := encrypted(t, backend, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := rotated.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Delhi", loaded.Request.Origin)

	wrong := encrypted(t, backend, middleware.EncryptionConfig{ActiveKey: newKey})
	_, err = wrong.Load(ctx, "s1")
	assert.ErrorContains(t, err, "failed to decrypt")
}

func TestEncryptionMiddleware_RejectsPlainState(t *testing.T) {
	backend := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, backend.Save(ctx, "plain", sampleState()))

	_, err := encrypted(t, backend, middleware.EncryptionConfig{ActiveKey: generateKey(t)}).Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestNewEncryptionMiddleware_KeySize(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)
	parsed, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, parsed)

	_, err = middleware.ParseKey(base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.Error(t, err)
	_, err = middleware.ParseKey("%%%")
	assert.Error(t, err)
}

func TestRedactionMiddleware(t *testing.T) {
	backend := memory.NewStore()
	mw, err := middleware.NewRedactionMiddleware(middleware.DefaultRedactions)
	require.NoError(t, err)
	store := mw(backend)
	ctx := context.Background()

	state := sampleState()
	require.NoError(t, store.Save(ctx, "s1", state))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"no museums, mail me at ***"}, loaded.Feedback)
	assert.Equal(t, []string{"call *** before booking"}, loaded.Refinements)
	assert.Equal(t, "no museums, mail me at ***", loaded.Trail[0].Summary)

	assert.Contains(t, state.Feedback[0], "jo@example.com", "the caller's state is not modified")
}

func TestRedactionMiddleware_InvalidPattern(t *testing.T) {
	_, err := middleware.NewRedactionMiddleware([]string{"("})
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	backend := memory.NewStore()
	redact, err := middleware.NewRedactionMiddleware(middleware.DefaultRedactions)
	require.NoError(t, err)
	seal, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	store := middleware.Chain(backend, redact, seal)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s1", sampleState()))

	raw, err := backend.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.Sealed)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"no museums, mail me at ***"}, loaded.Feedback)
}
