// Package search combines two independent searches against the remote API,
// a content search and a seller-name search, into one ranked, deduplicated
// result set.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/HelChris/semesterproject2/internal/gateway"
	"github.com/HelChris/semesterproject2/internal/listing"
	"github.com/HelChris/semesterproject2/internal/session"
)

// ErrSearchUnavailable is returned only when both facets failed.
var ErrSearchUnavailable = errors.New("search temporarily unavailable")

// MatchType records which facet produced a result. Content matches rank
// before user matches.
type MatchType string

const (
	MatchContent MatchType = "content"
	MatchUser    MatchType = "user"
)

// Match is a listing tagged with the facet that found it. The tag is
// transient ranking state, never persisted.
type Match struct {
	listing.Listing
	MatchType MatchType
}

// Meta summarizes a combined search. Search results are a single batch:
// the page is always the first.
type Meta struct {
	TotalResults   int
	ContentMatches int
	UserMatches    int
	IsFirstPage    bool
	IsLastPage     bool
	HasResults     bool
}

// Result is a ranked, deduplicated combined search result.
type Result struct {
	Query   string
	Matches []Match
	Meta    Meta
}

// Listings strips the match tags, for handing to the rendering seam.
func (r *Result) Listings() []listing.Listing {
	out := make([]listing.Listing, len(r.Matches))
	for i, m := range r.Matches {
		out[i] = m.Listing
	}
	return out
}

// Gateway is the slice of the fetch gateway the engine needs.
type Gateway interface {
	SearchListings(ctx context.Context, query string, limit, page int) (*listing.Page, error)
	ListingsByUser(ctx context.Context, name string, limit, page int) (*listing.Page, error)
}

// Engine runs combined searches.
type Engine struct {
	gw       Gateway
	sessions session.Store
	logger   *slog.Logger
	limit    int
}

func NewEngine(gw Gateway, sessions session.Store, logger *slog.Logger) *Engine {
	return &Engine{
		gw:       gw,
		sessions: sessions,
		logger:   logger,
		limit:    gateway.DefaultPageSize,
	}
}

// Search fans out the content and user facets concurrently, waits for both
// to settle, and merges whatever succeeded. A single failed facet is
// tolerated; only both failing fails the search.
func (e *Engine) Search(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", gateway.ErrValidation)
	}

	var (
		wg                       sync.WaitGroup
		contentHits, userHits    []listing.Listing
		contentErr, userFacetErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		page, err := e.gw.SearchListings(ctx, query, e.limit, 1)
		if err != nil {
			contentErr = err
			return
		}
		contentHits = page.Data
	}()
	go func() {
		defer wg.Done()
		userHits, userFacetErr = e.searchByUser(ctx, query)
	}()
	wg.Wait()

	if contentErr != nil && userFacetErr != nil {
		e.logger.Warn("both search facets failed",
			"query", query, "content_error", contentErr, "user_error", userFacetErr)
		return nil, fmt.Errorf("%w: please try again", ErrSearchUnavailable)
	}
	if contentErr != nil {
		e.logger.Warn("content search facet failed", "query", query, "error", contentErr)
		contentHits = nil
	}
	if userFacetErr != nil {
		e.logger.Warn("user search facet failed", "query", query, "error", userFacetErr)
		userHits = nil
	}

	return combine(query, contentHits, userHits, e.limit), nil
}

// searchByUser resolves the query as a seller name. The profile endpoint
// matches paths exactly, so up to four case variants are probed in order
// until one returns a successful response; a 404 on a variant is expected
// and just advances the probe. Requires a session; anonymous callers get an
// empty facet without any request being made.
func (e *Engine) searchByUser(ctx context.Context, query string) ([]listing.Listing, error) {
	s, err := e.sessions.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if !s.Authenticated() {
		return nil, nil
	}

	for _, variant := range caseVariants(query) {
		page, err := e.gw.ListingsByUser(ctx, variant, e.limit, 1)
		if err != nil {
			if errors.Is(err, gateway.ErrNotFound) {
				continue
			}
			// Tolerated: keep probing the remaining variants, but leave a
			// trace for diagnostics.
			e.logger.Debug("user search variant failed",
				"variant", variant, "error", err)
			continue
		}

		// The variant probing is endpoint lookup only; enforce exact
		// identity so a user whose name merely shares a variant is not
		// pulled in. Stops at the first successful response even when the
		// filter leaves nothing.
		matches := make([]listing.Listing, 0, len(page.Data))
		for _, l := range page.Data {
			if l.Seller != nil && strings.EqualFold(l.Seller.Name, query) {
				matches = append(matches, l)
			}
		}
		return matches, nil
	}

	// No variant resolved: an empty facet, not a failure.
	return nil, nil
}

// caseVariants returns the deduplicated case forms probed against the
// profile endpoint: as-is, lower, upper, first-letter-capitalized.
func caseVariants(query string) []string {
	capitalized := query
	if query != "" {
		// Split on the first rune, not the first byte, so a multi-byte
		// initial survives intact.
		_, size := utf8.DecodeRuneInString(query)
		capitalized = strings.ToUpper(query[:size]) + strings.ToLower(query[size:])
	}

	candidates := []string{
		query,
		strings.ToLower(query),
		strings.ToUpper(query),
		capitalized,
	}

	seen := make(map[string]struct{}, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		variants = append(variants, c)
	}
	return variants
}

// combine merges the two facets: identity-keyed dedup with content results
// taking priority, truncation to limit, then ranking content-before-user
// and newest-first within a facet.
func combine(query string, contentHits, userHits []listing.Listing, limit int) *Result {
	seen := make(map[string]struct{}, len(contentHits)+len(userHits))
	merged := make([]Match, 0, len(contentHits)+len(userHits))

	for _, l := range contentHits {
		if l.ID == "" {
			continue
		}
		if _, dup := seen[l.ID]; dup {
			continue
		}
		seen[l.ID] = struct{}{}
		merged = append(merged, Match{Listing: l, MatchType: MatchContent})
	}
	for _, l := range userHits {
		if l.ID == "" {
			continue
		}
		if _, dup := seen[l.ID]; dup {
			continue
		}
		seen[l.ID] = struct{}{}
		merged = append(merged, Match{Listing: l, MatchType: MatchUser})
	}

	if len(merged) > limit {
		merged = merged[:limit]
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].MatchType != merged[j].MatchType {
			return merged[i].MatchType == MatchContent
		}
		return merged[i].Created.After(merged[j].Created)
	})

	return &Result{
		Query:   query,
		Matches: merged,
		Meta: Meta{
			TotalResults:   len(merged),
			ContentMatches: len(contentHits),
			UserMatches:    len(userHits),
			IsFirstPage:    true,
			IsLastPage:     len(merged) < limit,
			HasResults:     len(merged) > 0,
		},
	}
}
