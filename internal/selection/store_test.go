package selection

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equiprent-backend/internal/domain"
)

func TestMemoryStoreAddAndView(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	require.NoError(t, store.Add(ctx, "s1", domain.SelectionKindSet, 10, 1))
	require.NoError(t, store.Add(ctx, "s1", domain.SelectionKindSet, 10, 2))
	require.NoError(t, store.Add(ctx, "s1", domain.SelectionKindItem, 5, 1))

	sel, err := store.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int32(3), sel.Sets[10], "adding an existing set line increments its quantity")
	assert.Equal(t, int32(1), sel.Items[5])
}

func TestMemoryStoreItemQuantityCappedAtOne(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	require.NoError(t, store.Add(ctx, "s1", domain.SelectionKindItem, 5, 1))
	require.NoError(t, store.Add(ctx, "s1", domain.SelectionKindItem, 5, 4))

	sel, err := store.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), sel.Items[5], "a concrete unit cannot be selected twice")
}

func TestMemoryStoreRejectsNonPositiveAdd(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	var validationErr *domain.ValidationError
	err := store.Add(ctx, "s1", domain.SelectionKindSet, 10, 0)
	assert.ErrorAs(t, err, &validationErr)
	err = store.Add(ctx, "s1", domain.SelectionKindSet, 10, -2)
	assert.ErrorAs(t, err, &validationErr)
}

func TestMemoryStoreSetQuantityZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	require.NoError(t, store.Add(ctx, "s1", domain.SelectionKindSet, 10, 3))
	require.NoError(t, store.SetQuantity(ctx, "s1", domain.SelectionKindSet, 10, 0))

	sel, err := store.View(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, sel.Empty())
}

func TestMemoryStoreRemoveAbsentLineIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	require.NoError(t, store.Remove(ctx, "s1", domain.SelectionKindItem, 99))

	sel, err := store.View(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, sel.Empty())
}

func TestMemoryStoreSessionsIsolated(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	require.NoError(t, store.Add(ctx, "alice", domain.SelectionKindSet, 10, 1))
	require.NoError(t, store.Add(ctx, "bob", domain.SelectionKindSet, 20, 1))

	alice, err := store.View(ctx, "alice")
	require.NoError(t, err)
	bob, err := store.View(ctx, "bob")
	require.NoError(t, err)

	assert.Equal(t, int32(1), alice.Sets[10])
	assert.NotContains(t, alice.Sets, int64(20))
	assert.Equal(t, int32(1), bob.Sets[20])
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	require.NoError(t, store.Add(ctx, "s1", domain.SelectionKindSet, 10, 2))
	require.NoError(t, store.Clear(ctx, "s1"))

	sel, err := store.View(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, sel.Empty())
}

func TestMemoryStoreViewReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	require.NoError(t, store.Add(ctx, "s1", domain.SelectionKindSet, 10, 1))
	sel, err := store.View(ctx, "s1")
	require.NoError(t, err)

	sel.Sets[10] = 99

	again, err := store.View(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), again.Sets[10], "mutating a snapshot must not touch the stored cart")
}

func TestMemoryStoreExpiresIdleSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Millisecond)

	require.NoError(t, store.Add(ctx, "s1", domain.SelectionKindSet, 10, 1))
	time.Sleep(5 * time.Millisecond)

	sel, err := store.View(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, sel.Empty())
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			_ = store.Add(ctx, "shared", domain.SelectionKindSet, n, 1)
			_, _ = store.View(ctx, "shared")
		}(int64(i))
	}
	wg.Wait()

	sel, err := store.View(ctx, "shared")
	require.NoError(t, err)
	assert.Len(t, sel.Sets, 50)
}
