package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dev.helix.consensus/internal/consensus"
)

func testDelib(id string) *consensus.Deliberation {
	return &consensus.Deliberation{
		ID:        id,
		Strategy:  consensus.StrategyWeightedVoting,
		StartedAt: time.Now(),
		EndedAt:   time.Now(),
	}
}

func TestMemoryStore_AppendAndCount(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	require.NoError(t, store.Append(ctx, testDelib("d1")))
	require.NoError(t, store.Append(ctx, testDelib("d2")))

	count, err = store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMemoryStore_RecentMostRecentFirst(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.Append(ctx, testDelib(fmt.Sprintf("d%d", i))))
	}

	recent, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "d5", recent[0].ID)
	assert.Equal(t, "d4", recent[1].ID)
	assert.Equal(t, "d3", recent[2].ID)
}

func TestMemoryStore_RecentLimitLargerThanHistory(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, testDelib("only")))

	recent, err := store.Recent(ctx, 20)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestMemoryStore_RecentZeroLimitReturnsAll(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, testDelib("d1")))
	require.NoError(t, store.Append(ctx, testDelib("d2")))

	recent, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}

func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(i int) {
			defer func() { done <- struct{}{} }()
			_ = store.Append(ctx, testDelib(fmt.Sprintf("d%d", i)))
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}
