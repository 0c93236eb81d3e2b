package browse

import (
	"context"
	"sync"

	"github.com/HelChris/semesterproject2/internal/listing"
)

// State is the pagination controller's current state.
type State int

const (
	// StateIdle means the controller is ready for a load-more trigger.
	StateIdle State = iota
	// StateLoading means a load is in flight; further triggers are no-ops.
	StateLoading
	// StateSearchExit means a search-bound controller was triggered: the
	// view, not just this controller, must clear the search and reload the
	// unfiltered feed. Terminal for this controller instance.
	StateSearchExit
)

// Call-to-action labels for the load-more affordance.
const (
	ctaLoadMore    = "Load More"
	ctaLoading     = "Loading..."
	ctaExploreMore = "Explore More"
)

// FetchFunc loads one upstream page for a live-paginated view. last
// reports that the upstream has no page after this one, judged on what
// the upstream served rather than on what the fetch kept: a fetch may
// project items away without ending the feed early.
type FetchFunc func(ctx context.Context, limit, page int) (items []listing.Listing, last bool, err error)

// Increment is the outcome of one load-more trigger.
type Increment struct {
	// Items to append to the rendered set. Nil on a no-op trigger.
	Items []listing.Listing
	// Page is the page counter after the increment.
	Page int
	// Exhausted reports that nothing further is available to reveal.
	Exhausted bool
	// SearchExited reports the terminal search-view transition: the caller
	// must discard the cached search and reload the unfiltered feed.
	SearchExited bool
}

// Controller tracks how much of one result-bearing view has been revealed,
// decoupled from any UI event binding. Each view owns exactly one instance;
// nothing is shared across views, and a controller is discarded when its
// view goes away.
//
// Live mode fetches further upstream pages through fetch. Cached mode
// reveals more of an already-aggregated pool without network calls. Search
// mode never paginates deeper: triggering it requests leaving the search.
type Controller struct {
	mu sync.Mutex

	pageSize int
	page     int
	loading  bool
	exhaust  bool

	fetch FetchFunc // live mode

	pool     []listing.Listing // cached mode
	revealed int
	cached   bool

	searchActive bool
	searchExited bool

	// generation guards against a stale in-flight load mutating state
	// after the view was reset underneath it.
	generation uint64
}

// NewLiveController binds a controller to an upstream-paginated feed whose
// first page is already displayed.
func NewLiveController(pageSize int, fetch FetchFunc) *Controller {
	return &Controller{pageSize: pageSize, page: 1, fetch: fetch}
}

// NewCachedController binds a controller to a pre-fetched pool (a category
// aggregation). The first window is revealed immediately; Window returns it.
func NewCachedController(pageSize int, pool []listing.Listing) *Controller {
	c := &Controller{pageSize: pageSize, page: 1, pool: pool, cached: true}
	c.revealed = min(pageSize, len(pool))
	c.exhaust = c.revealed >= len(pool)
	return c
}

// NewSearchController binds a controller to a cached search result set.
// Search results are a single batch; its load-more affordance abandons the
// search instead of paginating it deeper.
func NewSearchController(results []listing.Listing) *Controller {
	return &Controller{
		pageSize:     len(results),
		page:         1,
		pool:         results,
		revealed:     len(results),
		cached:       true,
		exhaust:      true,
		searchActive: true,
	}
}

// State reports the controller's current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.searchExited:
		return StateSearchExit
	case c.loading:
		return StateLoading
	default:
		return StateIdle
	}
}

// Page returns the current page counter.
func (c *Controller) Page() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Exhausted reports whether there is anything left to reveal.
func (c *Controller) Exhausted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exhaust
}

// Window returns everything revealed so far in cached mode, for a full
// re-render.
func (c *Controller) Window() []listing.Listing {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.cached {
		return nil
	}
	return c.pool[:c.revealed]
}

// CallToAction returns the label for the load-more affordance, or "" when
// the affordance should be hidden.
func (c *Controller) CallToAction() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.searchActive:
		return ctaExploreMore
	case c.loading:
		return ctaLoading
	case c.exhaust:
		return ""
	default:
		return ctaLoadMore
	}
}

// LoadMore performs one load-more trigger. Triggers while loading, or after
// exhaustion, are no-ops returning a nil Increment. On failure the state is
// left unchanged, so retrying is safe and cannot skip a page.
func (c *Controller) LoadMore(ctx context.Context) (*Increment, error) {
	c.mu.Lock()

	if c.loading || c.searchExited {
		c.mu.Unlock()
		return nil, nil
	}

	if c.searchActive {
		c.searchExited = true
		c.mu.Unlock()
		return &Increment{SearchExited: true}, nil
	}

	if c.exhaust {
		c.mu.Unlock()
		return nil, nil
	}

	if c.cached {
		start := c.revealed
		end := min(start+c.pageSize, len(c.pool))
		items := c.pool[start:end]
		c.revealed = end
		c.page++
		c.exhaust = c.revealed >= len(c.pool)
		inc := &Increment{Items: items, Page: c.page, Exhausted: c.exhaust}
		c.mu.Unlock()
		return inc, nil
	}

	// Live mode: fetch outside the lock, then re-check that the view was
	// not reset while the request was in flight.
	c.loading = true
	gen := c.generation
	nextPage := c.page + 1
	c.mu.Unlock()

	items, last, err := c.fetch(ctx, c.pageSize, nextPage)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false

	if c.generation != gen {
		// The view moved on; the result is stale and must not touch state.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.page = nextPage
	c.exhaust = last
	return &Increment{Items: items, Page: c.page, Exhausted: c.exhaust}, nil
}

// Reset returns the controller to page 1, not exhausted, without any
// network call, and invalidates any load still in flight. Idempotent.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.page = 1
	c.loading = false
	c.exhaust = false
	c.searchExited = false

	if c.cached {
		c.revealed = min(c.pageSize, len(c.pool))
		c.exhaust = c.revealed >= len(c.pool)
	}
}
