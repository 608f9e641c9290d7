package nullifier

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_Record(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	fresh, boundTo, err := store.Record(ctx, 42, "alice")
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, "alice", boundTo)

	fresh, boundTo, err = store.Record(ctx, 42, "bob")
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, "alice", boundTo)

	// Same subject re-recording is still not fresh but binds consistently.
	fresh, boundTo, err = store.Record(ctx, 42, "alice")
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Equal(t, "alice", boundTo)
}

func TestInMemoryStore_ConcurrentRecordBindsExactlyOnce(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	freshCount := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fresh, _, err := store.Record(ctx, 7, "subject")
			assert.NoError(t, err)
			freshCount <- fresh
		}(i)
	}
	wg.Wait()
	close(freshCount)

	got := 0
	for fresh := range freshCount {
		if fresh {
			got++
		}
	}
	assert.Equal(t, 1, got)
}

func TestKeyFormat(t *testing.T) {
	assert.Equal(t, "facegate:nullifier:12345", key(12345))
}
