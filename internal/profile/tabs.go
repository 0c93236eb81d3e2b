package profile

import (
	"context"
	"fmt"
	"sync"

	"github.com/HelChris/semesterproject2/internal/browse"
	"github.com/HelChris/semesterproject2/internal/gateway"
	"github.com/HelChris/semesterproject2/internal/listing"
)

// Tab identifies one of the profile's switchable result sets.
type Tab string

const (
	TabBids     Tab = "bids"
	TabListings Tab = "listings"
	TabWins     Tab = "wins"
)

// Tabs coordinates the profile's three result sets. Each tab owns its own
// pagination controller; switching tabs resets the tab being entered so
// stale page counters never leak between views.
type Tabs struct {
	mu          sync.Mutex
	active      Tab
	controllers map[Tab]*browse.Controller
}

// NewTabs binds the three profile tabs for one user. The bids tab pages
// through the listings the user has bid on, fetched with their bids.
func NewTabs(gw Gateway, username string) *Tabs {
	pageSize := gateway.DefaultPageSize
	return &Tabs{
		active: TabListings,
		controllers: map[Tab]*browse.Controller{
			TabListings: browse.NewLiveController(pageSize, func(ctx context.Context, limit, page int) ([]listing.Listing, bool, error) {
				resp, err := gw.ListingsByUser(ctx, username, limit, page)
				if err != nil {
					return nil, false, err
				}
				return resp.Data, lastPage(resp.Meta, len(resp.Data), limit), nil
			}),
			TabBids: browse.NewLiveController(pageSize, func(ctx context.Context, limit, page int) ([]listing.Listing, bool, error) {
				resp, err := gw.UserBids(ctx, username, limit, page)
				if err != nil {
					return nil, false, err
				}
				// Exhaustion is judged on the bids the upstream served;
				// projection may drop bids whose listing is gone.
				return bidListings(resp.Data), lastPage(resp.Meta, len(resp.Data), limit), nil
			}),
			TabWins: browse.NewLiveController(pageSize, func(ctx context.Context, limit, page int) ([]listing.Listing, bool, error) {
				resp, err := gw.UserWins(ctx, username, limit, page)
				if err != nil {
					return nil, false, err
				}
				return resp.Data, lastPage(resp.Meta, len(resp.Data), limit), nil
			}),
		},
	}
}

// Active returns the currently selected tab.
func (t *Tabs) Active() Tab {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Switch selects a tab and resets its pagination. Selecting the already
// active tab is a no-op.
func (t *Tabs) Switch(tab Tab) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	ctrl, ok := t.controllers[tab]
	if !ok {
		return fmt.Errorf("%w: unknown profile tab %q", gateway.ErrValidation, tab)
	}
	if tab == t.active {
		return nil
	}
	t.active = tab
	ctrl.Reset()
	return nil
}

// LoadMore advances the active tab's pagination by one page.
func (t *Tabs) LoadMore(ctx context.Context) (*browse.Increment, error) {
	return t.controller().LoadMore(ctx)
}

// HasMore reports whether the active tab has further pages.
func (t *Tabs) HasMore() bool {
	return !t.controller().Exhausted()
}

func (t *Tabs) controller() *browse.Controller {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.controllers[t.active]
}

// lastPage reads upstream exhaustion off the page envelope, falling back
// to the served count when the envelope carries no pagination hints.
func lastPage(meta listing.Meta, served, limit int) bool {
	if meta.NextPage != nil {
		return false
	}
	if meta.IsLastPage {
		return true
	}
	return served < limit
}

// bidListings projects a page of bids onto the listings they were placed
// on. A bid whose listing has since been deleted is dropped.
func bidListings(bids []listing.UserBid) []listing.Listing {
	out := make([]listing.Listing, 0, len(bids))
	for _, b := range bids {
		if b.Listing == nil {
			continue
		}
		out = append(out, *b.Listing)
	}
	return out
}
