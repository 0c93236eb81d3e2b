// Package snapshot persists aggregated category results to Postgres so a
// browse session can be inspected offline, after the auctions it captured
// have ended.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HelChris/semesterproject2/internal/browse"
	"github.com/HelChris/semesterproject2/internal/category"
	"github.com/HelChris/semesterproject2/internal/listing"
)

var ErrBatchNotFound = errors.New("snapshot batch not found")

// Batch is one persisted aggregation run.
type Batch struct {
	ID       uuid.UUID
	Category category.Key
	TakenAt  time.Time
	Scanned  int
	Matched  int
}

// Item is one listing captured in a batch, flattened to what offline
// inspection needs.
type Item struct {
	BatchID    uuid.UUID
	ListingID  string
	Title      string
	SellerName string
	CurrentBid int
	BidCount   int
	EndsAt     time.Time
}

// Repository implements the snapshot store using pgx.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveBatch persists a category aggregation result as one batch. The batch
// row and its items are written in a single transaction so a failed save
// never leaves a half-captured batch behind.
func (r *Repository) SaveBatch(ctx context.Context, result *browse.CategoryResult) (uuid.UUID, error) {
	batchID := uuid.New()
	takenAt := time.Now().UTC()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO snapshot_batches (id, category, taken_at, scanned, matched)
		VALUES ($1, $2, $3, $4, $5)
	`, batchID, string(result.Category), takenAt, result.Scanned, len(result.Listings))
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert batch: %w", err)
	}

	for _, l := range result.Listings {
		if err := insertItem(ctx, tx, batchID, l); err != nil {
			return uuid.Nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("failed to commit batch: %w", err)
	}
	return batchID, nil
}

func insertItem(ctx context.Context, tx pgx.Tx, batchID uuid.UUID, l listing.Listing) error {
	seller := ""
	if l.Seller != nil {
		seller = l.Seller.Name
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO snapshot_items
			(batch_id, listing_id, title, seller_name, current_bid, bid_count, ends_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, batchID, l.ID, l.Title, seller, l.CurrentBidAmount(), len(l.Bids), l.EndsAt)
	if err != nil {
		return fmt.Errorf("failed to insert item %s: %w", l.ID, err)
	}
	return nil
}

// ListBatches returns the most recent batches, newest first.
func (r *Repository) ListBatches(ctx context.Context, limit int) ([]Batch, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, category, taken_at, scanned, matched
		FROM snapshot_batches
		ORDER BY taken_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var out []Batch
	for rows.Next() {
		var b Batch
		var cat string
		if err := rows.Scan(&b.ID, &cat, &b.TakenAt, &b.Scanned, &b.Matched); err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		b.Category = category.Key(cat)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batches: %w", err)
	}
	return out, nil
}

// BatchItems returns the captured listings of one batch, highest current
// bid first.
func (r *Repository) BatchItems(ctx context.Context, batchID uuid.UUID) ([]Item, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM snapshot_batches WHERE id = $1)`, batchID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check batch: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, batchID)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT batch_id, listing_id, title, seller_name, current_bid, bid_count, ends_at
		FROM snapshot_items
		WHERE batch_id = $1
		ORDER BY current_bid DESC, listing_id
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.BatchID, &it.ListingID, &it.Title, &it.SellerName,
			&it.CurrentBid, &it.BidCount, &it.EndsAt); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return out, nil
}
