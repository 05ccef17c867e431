package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/voyage/pkg/adapters/memory"
	"github.com/aretw0/voyage/pkg/adapters/redis"
	"github.com/aretw0/voyage/pkg/domain"
	"github.com/aretw0/voyage/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appendStep records a marker in the feedback log, a stand-in for a pipeline step.
func appendStep(marker string) session.StepFunc {
	return func(ctx context.Context, s *domain.SessionState) (*domain.SessionState, error) {
		next := s.Clone()
		time.Sleep(time.Millisecond)
		next.Feedback = append(next.Feedback, marker)
		return next, nil
	}
}

func TestManager_ApplySerializesWriters(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	id := "race-test"

	require.NoError(t, manager.Save(ctx, id, domain.NewSessionState(id, time.Now())))

	var wg sync.WaitGroup
	writers := 20
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := manager.Apply(ctx, id, appendStep(fmt.Sprint(i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	final, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, final.Feedback, writers, "no update may be lost")
}

func TestManager_ApplySavesStateReturnedWithError(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	require.NoError(t, manager.Save(ctx, "s1", domain.NewSessionState("s1", time.Now())))

	boom := errors.New("boom")
	_, err := manager.Apply(ctx, "s1", func(ctx context.Context, s *domain.SessionState) (*domain.SessionState, error) {
		next := s.Clone()
		next.Status = domain.StatusTerminated
		return next, boom
	})
	assert.ErrorIs(t, err, boom)

	loaded, err := manager.Load(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, loaded.Terminated())

	_, err = manager.Apply(ctx, "s1", func(ctx context.Context, s *domain.SessionState) (*domain.SessionState, error) {
		return nil, domain.ErrAmbiguousDecision
	})
	assert.ErrorIs(t, err, domain.ErrAmbiguousDecision)
}

func TestManager_ApplyMissingSession(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	_, err := manager.Apply(context.Background(), "ghost", appendStep("x"))
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_LoadOrStart(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	starts := 0
	start := func(ctx context.Context) (*domain.SessionState, error) {
		starts++
		return domain.NewSessionState("s1", time.Now()), nil
	}

	_, created, err := manager.LoadOrStart(ctx, "s1", start)
	require.NoError(t, err)
	assert.True(t, created)

	_, created, err = manager.LoadOrStart(ctx, "s1", start)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, starts)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redis.NewFromClient(client)
	manager := session.NewManager(store,
		session.WithLocker(redis.NewLocker(client, store.Prefix())),
		session.WithLockTTL(5*time.Second),
	)
	ctx := context.Background()

	require.NoError(t, manager.Save(ctx, "s1", domain.NewSessionState("s1", time.Now())))
	_, err := manager.Apply(ctx, "s1", func(ctx context.Context, s *domain.SessionState) (*domain.SessionState, error) {
		assert.True(t, mr.Exists(store.Prefix()+"lock:s1"), "distributed lock held during the step")
		return s, nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists(store.Prefix()+"lock:s1"))
}
