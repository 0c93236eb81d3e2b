// Package browse builds the listing views of the client: category-filtered
// aggregation over the upstream's page-at-a-time API, and the load-more
// pagination state machine each view is bound to.
package browse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/HelChris/semesterproject2/internal/category"
	"github.com/HelChris/semesterproject2/internal/gateway"
	"github.com/HelChris/semesterproject2/internal/listing"
)

const (
	// aggregatePages caps how many upstream pages are collected per
	// category view.
	aggregatePages = 3
)

// LatestFetcher is the slice of the fetch gateway the aggregator needs.
type LatestFetcher interface {
	Listings(ctx context.Context, q gateway.ListQuery) (*listing.Page, error)
}

// CategoryResult is an aggregated, category-filtered view over the active
// listings the upstream was willing to serve.
type CategoryResult struct {
	Category category.Key

	// Listings are the category matches, a client-side paginated pool:
	// revealing more of them never issues another network call.
	Listings []listing.Listing

	// Scanned is how many active listings were classified in total.
	Scanned int

	// Fallback holds the first page of unfiltered active listings, fetched
	// only when the category produced no matches. It must never be
	// presented as category results.
	Fallback []listing.Listing
}

// FallbackUsed reports whether the category came up empty and the view
// should show the clearly-labelled fallback set instead.
func (r *CategoryResult) FallbackUsed() bool {
	return len(r.Listings) == 0
}

// Aggregator collects multiple upstream pages and filters them by category,
// since the remote API has no server-side category filter.
type Aggregator struct {
	gw       LatestFetcher
	logger   *slog.Logger
	pageSize int
	maxPages int
}

func NewAggregator(gw LatestFetcher, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		gw:       gw,
		logger:   logger,
		pageSize: gateway.MaxPageSize,
		maxPages: aggregatePages,
	}
}

// CollectCategory fetches up to maxPages of active listings sequentially
// (the need for a later page depends on the size of the earlier one),
// classifies the accumulated set and filters it to the requested category.
//
// A failed page stops further fetching but keeps what was already
// accumulated; only a failure on the very first page fails the whole
// operation. An empty filtered result is not an error: the fallback set is
// fetched so the caller has something to show.
func (a *Aggregator) CollectCategory(ctx context.Context, key category.Key) (*CategoryResult, error) {
	if !category.IsDeclared(key) {
		return nil, fmt.Errorf("%w: unknown category %q", gateway.ErrValidation, key)
	}

	active := true
	var collected []listing.Listing

	for page := 1; page <= a.maxPages; page++ {
		resp, err := a.gw.Listings(ctx, gateway.ListQuery{
			Limit:  a.pageSize,
			Page:   page,
			Active: &active,
		})
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("failed to load listings for category %s: %w", key, err)
			}
			// Partial results are still usable.
			a.logger.Warn("category aggregation stopped early",
				"category", key, "failed_page", page, "collected", len(collected), "error", err)
			break
		}

		collected = append(collected, resp.Data...)

		// A short page signals upstream exhaustion.
		if len(resp.Data) < a.pageSize {
			break
		}
	}

	result := &CategoryResult{
		Category: key,
		Listings: category.Filter(collected, key),
		Scanned:  len(collected),
	}

	a.logger.Info("category aggregated",
		"category", key, "matched", len(result.Listings), "scanned", result.Scanned)

	if len(result.Listings) == 0 {
		fallback, err := a.gw.Listings(ctx, gateway.ListQuery{
			Limit:  gateway.DefaultPageSize,
			Page:   1,
			Active: &active,
		})
		if err != nil {
			// The empty category result stands on its own; a failed
			// fallback fetch just means there is nothing extra to show.
			a.logger.Warn("fallback listings fetch failed", "category", key, "error", err)
			return result, nil
		}
		result.Fallback = fallback.Data
	}

	return result, nil
}
