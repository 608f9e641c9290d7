//go:build integration

package risk

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facegate/pkg/testutil/containers"
)

func TestPostgresStore_SaveAndList(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	ctx := context.Background()

	store := NewPostgresStore(pc.Pool)
	require.NoError(t, store.Migrate(ctx))

	first := AssessmentRecord{
		ID:         uuid.NewString(),
		UserID:     "user-1",
		WalletHash: "$2a$10$fakehashfortest",
		Score:      712,
		Category:   CategoryLow,
		Synthetic:  false,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	second := first
	second.ID = uuid.NewString()
	second.Score = 530
	second.Category = CategoryHigh
	second.Synthetic = true
	second.CreatedAt = first.CreatedAt.Add(time.Second)

	require.NoError(t, store.Save(ctx, first))
	require.NoError(t, store.Save(ctx, second))
	require.NoError(t, store.Save(ctx, AssessmentRecord{
		ID:        uuid.NewString(),
		UserID:    "other",
		Score:     600,
		Category:  CategoryMedium,
		CreatedAt: time.Now().UTC(),
	}))

	records, err := store.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Oldest first.
	assert.Equal(t, first.ID, records[0].ID)
	assert.Equal(t, 712, records[0].Score)
	assert.Equal(t, CategoryLow, records[0].Category)
	assert.Equal(t, second.ID, records[1].ID)
	assert.True(t, records[1].Synthetic)
}

func TestPostgresStore_MigrateIsIdempotent(t *testing.T) {
	pc := containers.NewPostgresContainer(t)
	ctx := context.Background()

	store := NewPostgresStore(pc.Pool)
	require.NoError(t, store.Migrate(ctx))
	require.NoError(t, store.Migrate(ctx))
}
