package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/automata/pkg/adapters/redis"
	"github.com/aretw0/automata/pkg/domain"
	"github.com/aretw0/automata/pkg/ports"
	"github.com/aretw0/automata/pkg/ports/tests"
)

var _ ports.TraceStore = (*redis.Store)(nil)

func setup(t *testing.T, opts ...redis.Option) (*miniredis.Miniredis, *redis.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = store.Close() })
	return mr, store
}

func TestRedisStore_Contract(t *testing.T) {
	_, store := setup(t)
	tests.TraceStoreContract(t, store)
}

func TestRedisStore_KeysAndTTL(t *testing.T) {
	mr, store := setup(t, redis.WithPrefix("test:"), redis.WithTTL(time.Hour))
	ctx := context.Background()

	run := &domain.Run{
		ID:        "r1",
		Input:     "ab",
		Trace:     &domain.Trace{Input: "ab", Verdict: domain.VerdictRejected, FinalStack: []string{}},
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.Save(ctx, run))

	assert.True(t, mr.Exists("test:r1"))
	assert.Equal(t, time.Hour, mr.TTL("test:r1"))
	members, err := mr.ZMembers("test:index")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, members)

	mr.FastForward(2 * time.Hour)

	_, err = store.Load(ctx, "r1")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestRedisStore_ListPrunesExpired(t *testing.T) {
	_, store := setup(t, redis.WithTTL(time.Minute))
	ctx := context.Background()

	old := &domain.Run{ID: "old", Trace: &domain.Trace{}, CreatedAt: time.Now().Add(-time.Hour)}
	fresh := &domain.Run{ID: "fresh", Trace: &domain.Trace{}, CreatedAt: time.Now()}
	require.NoError(t, store.Save(ctx, old))
	require.NoError(t, store.Save(ctx, fresh))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, ids)
}

func TestRedisStore_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	store := redis.New(mr.Addr(), "", 0)
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))

	mr.Close()
	assert.Error(t, store.Ping(context.Background()))
}
