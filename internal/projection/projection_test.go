package projection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_SetGet(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestInMemoryStore_MissingKey(t *testing.T) {
	s := NewInMemoryStore()
	_, err := s.Get(context.Background(), "absent")
	require.Error(t, err)
}

func TestInMemoryStore_TTLExpiry(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	_, err := s.Get(ctx, "k")
	require.Error(t, err)
}

func TestInMemoryStore_Delete(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "k", []byte("v"), 0))
	require.NoError(t, s.Delete(ctx, "k"))
	_, err := s.Get(ctx, "k")
	require.Error(t, err)
}

func TestJSONHelpers(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()

	type snapshot struct {
		Coins int64 `json:"coins"`
	}

	require.NoError(t, SetJSON(ctx, s, "profile:1", snapshot{Coins: 750}, time.Minute))

	var got snapshot
	require.NoError(t, GetJSON(ctx, s, "profile:1", &got))
	assert.Equal(t, int64(750), got.Coins)
}
