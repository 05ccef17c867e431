package runner_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/voyage/internal/runtime"
	"github.com/aretw0/voyage/pkg/adapters/fixture"
	"github.com/aretw0/voyage/pkg/adapters/memory"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/runner"
	"github.com/aretw0/voyage/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokyoTrip = "from: Delhi to: Tokyo start: 2026-04-10 days: 5 budget: 100000 INR party: 2 style: Couple interests: Food, History"

func newEngine(t *testing.T) *runtime.Engine {
	t.Helper()
	catalog, err := fixture.DefaultCatalog()
	require.NoError(t, err)
	eng, err := runtime.NewEngine(fixture.New(catalog, nil).Ports())
	require.NoError(t, err)
	return eng
}

func start(t *testing.T, eng *runtime.Engine) *domain.SessionState {
	t.Helper()
	state, err := eng.Start(context.Background(), "trip-1", tokyoTrip)
	require.NoError(t, err)
	require.True(t, state.Waiting(domain.InputApproval))
	return state
}

func TestRunner_PlansToTheEnd(t *testing.T) {
	eng := newEngine(t)
	var out bytes.Buffer
	r := runner.NewRunner(runner.WithIO(strings.NewReader("approve\nrefine make it more relaxed\nquit\n"), &out))

	final, err := r.Run(context.Background(), eng, start(t, eng))
	require.NoError(t, err)

	assert.True(t, final.Terminated())
	assert.Equal(t, []string{"make it more relaxed"}, final.Refinements)
	assert.Equal(t, 2, final.Itinerary.Revision)
	assert.Contains(t, out.String(), "Approve this shortlist?")
	assert.Contains(t, out.String(), "Session ended.")
}

func TestRunner_UnclearAnswersAreAskedAgain(t *testing.T) {
	eng := newEngine(t)
	var out bytes.Buffer
	r := runner.NewRunner(runner.WithIO(strings.NewReader("maybe\napprove\nexit\n"), &out))

	final, err := r.Run(context.Background(), eng, start(t, eng))
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Could not use that answer")
	assert.True(t, final.Waiting(domain.InputNextStep), "exit leaves the session resumable")
	assert.False(t, final.Shortlist.ApprovedAt.IsZero())
}

func TestRunner_EOFLeavesSessionWaiting(t *testing.T) {
	eng := newEngine(t)
	r := runner.NewRunner(runner.WithIO(strings.NewReader(""), io.Discard))

	final, err := r.Run(context.Background(), eng, start(t, eng))
	require.NoError(t, err)
	assert.True(t, final.Waiting(domain.InputApproval))
}

func TestRunner_PersistsEachStep(t *testing.T) {
	eng := newEngine(t)
	store := memory.NewStore()
	mgr := session.NewManager(store)
	ctx := context.Background()

	state, created, err := mgr.LoadOrStart(ctx, "trip-1", func(ctx context.Context) (*domain.SessionState, error) {
		return eng.Start(ctx, "trip-1", tokyoTrip)
	})
	require.NoError(t, err)
	require.True(t, created)

	r := runner.NewRunner(
		runner.WithSessions(mgr, "trip-1"),
		runner.WithIO(strings.NewReader("reject: too many museums\n"), io.Discard),
	)
	_, err = r.Run(ctx, eng, state)
	require.NoError(t, err)

	saved, err := store.Load(ctx, "trip-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"too many museums"}, saved.Feedback)
	assert.Equal(t, 2, saved.Shortlist.Round)
	assert.NotContains(t, saved.Shortlist.Names(), "Tokyo National Museum")
}

func TestRunner_PromptTimeoutReasks(t *testing.T) {
	eng := newEngine(t)
	pr, pw := io.Pipe()
	var out bytes.Buffer
	r := runner.NewRunner(
		runner.WithIO(pr, &out),
		runner.WithPromptTimeout(20*time.Millisecond),
	)

	go func() {
		time.Sleep(80 * time.Millisecond)
		_, _ = pw.Write([]byte("approve\n"))
		_ = pw.Close()
	}()

	final, err := r.Run(context.Background(), eng, start(t, eng))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Still waiting for your answer.")
	assert.True(t, final.Waiting(domain.InputNextStep), "only the explicit answer approves")
}

func TestRunner_Interrupted(t *testing.T) {
	eng := newEngine(t)
	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	r := runner.NewRunner(runner.WithIO(pr, io.Discard))
	final, err := r.Run(ctx, eng, start(t, eng))
	assert.ErrorIs(t, err, runner.ErrInterrupted)
	assert.True(t, final.Waiting(domain.InputApproval))
}
