package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	model "auction-dashboard/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// fakeKV keeps values in memory and answers with pre-resolved redis commands
type fakeKV struct {
	mu      sync.Mutex
	values  map[string][]byte
	ttls    map[string]time.Duration
	failGet error
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return redis.NewStringResult("", f.failGet)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeKV) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value.([]byte)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestSnapshots_SaveLoad(t *testing.T) {
	t.Parallel()

	kv := newFakeKV()
	store := NewSnapshots[model.Auction](kv, "auctions", 10*time.Minute)
	ctx := context.Background()

	items := []model.Auction{
		{ID: "a1", Name: "Camera", Status: model.AuctionAccepted, EndTime: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "a2", Name: "Lamp", Status: model.AuctionPending},
	}

	require.NoError(t, store.Save(ctx, "seller@example.com", items))
	require.Equal(t, 10*time.Minute, kv.ttls["dashboard:snapshot:auctions:seller@example.com"])

	got, ok, err := store.Load(ctx, "seller@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, items[0].ID, got[0].ID)
	require.True(t, items[0].EndTime.Equal(got[0].EndTime))
	require.Len(t, got, 2)
}

func TestSnapshots_Missing(t *testing.T) {
	t.Parallel()

	store := NewSnapshots[model.Payment](newFakeKV(), "payments", time.Minute)
	got, ok, err := store.Load(context.Background(), "")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, got)
	require.Equal(t, "dashboard:snapshot:payments:_all", store.Key(""))
}

func TestSnapshots_ReadError(t *testing.T) {
	t.Parallel()

	kv := newFakeKV()
	kv.failGet = errors.New("connection refused")
	store := NewSnapshots[model.Payment](kv, "payments", time.Minute)

	_, ok, err := store.Load(context.Background(), "x")
	require.Error(t, err)
	require.False(t, ok)
}
