package snapshot_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HelChris/semesterproject2/internal/browse"
	"github.com/HelChris/semesterproject2/internal/category"
	"github.com/HelChris/semesterproject2/internal/listing"
	"github.com/HelChris/semesterproject2/internal/snapshot"
	"github.com/HelChris/semesterproject2/internal/testhelpers"
)

func sampleResult() *browse.CategoryResult {
	ends := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)
	return &browse.CategoryResult{
		Category: category.MagicalItems,
		Scanned:  25,
		Listings: []listing.Listing{
			{
				ID:     "lst-1",
				Title:  "Enchanted mirror",
				Seller: &listing.Seller{Name: "merlin"},
				EndsAt: ends,
				Bids: []listing.Bid{
					{Amount: 100, Created: time.Now().Add(-time.Hour)},
					{Amount: 250, Created: time.Now()},
				},
			},
			{
				ID:     "lst-2",
				Title:  "Crystal orb",
				EndsAt: ends,
			},
		},
	}
}

func TestRepository_SaveAndReadBack(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	db := testhelpers.NewSnapshotDatabase(t)
	repo := snapshot.NewRepository(db.Pool)
	ctx := context.Background()

	batchID, err := repo.SaveBatch(ctx, sampleResult())
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, batchID)

	batches, err := repo.ListBatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	assert.Equal(t, batchID, batches[0].ID)
	assert.Equal(t, category.MagicalItems, batches[0].Category)
	assert.Equal(t, 25, batches[0].Scanned)
	assert.Equal(t, 2, batches[0].Matched)

	items, err := repo.BatchItems(ctx, batchID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	// Highest current bid first.
	assert.Equal(t, "lst-1", items[0].ListingID)
	assert.Equal(t, 250, items[0].CurrentBid)
	assert.Equal(t, 2, items[0].BidCount)
	assert.Equal(t, "merlin", items[0].SellerName)

	assert.Equal(t, "lst-2", items[1].ListingID)
	assert.Equal(t, 0, items[1].CurrentBid)
	assert.Equal(t, "", items[1].SellerName)
}

func TestRepository_ListBatches_NewestFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	db := testhelpers.NewSnapshotDatabase(t)
	repo := snapshot.NewRepository(db.Pool)
	ctx := context.Background()

	first, err := repo.SaveBatch(ctx, sampleResult())
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := repo.SaveBatch(ctx, sampleResult())
	require.NoError(t, err)

	batches, err := repo.ListBatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, second, batches[0].ID)
	assert.Equal(t, first, batches[1].ID)
}

func TestRepository_BatchItems_UnknownBatch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	db := testhelpers.NewSnapshotDatabase(t)
	repo := snapshot.NewRepository(db.Pool)

	_, err := repo.BatchItems(context.Background(), uuid.New())

	assert.ErrorIs(t, err, snapshot.ErrBatchNotFound)
}
