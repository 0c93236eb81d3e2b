package listing

import (
	"strings"
	"time"
)

// Media is an image attached to a listing or profile.
type Media struct {
	URL string `json:"url" validate:"required,url"`
	Alt string `json:"alt,omitempty" validate:"max=120"`
}

// Seller identifies the profile that created a listing.
type Seller struct {
	Name   string `json:"name"`
	Email  string `json:"email,omitempty"`
	Avatar *Media `json:"avatar,omitempty"`
}

// Bidder identifies the profile that placed a bid.
type Bidder struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Bid is a single bid placed on a listing.
type Bid struct {
	ID      string    `json:"id,omitempty"`
	Amount  int       `json:"amount"`
	Bidder  Bidder    `json:"bidder,omitempty"`
	Created time.Time `json:"created"`
}

// Listing is an auction item as served by the remote API. The client only
// ever holds read snapshots; the record itself is owned upstream.
type Listing struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Media       []Media   `json:"media,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Created     time.Time `json:"created"`
	Updated     time.Time `json:"updated,omitempty"`
	EndsAt      time.Time `json:"endsAt"`
	Seller      *Seller   `json:"seller,omitempty"`
	Bids        []Bid     `json:"bids,omitempty"`
}

// IsActive reports whether the auction is still open. Derived from EndsAt,
// never stored.
func (l Listing) IsActive(now time.Time) bool {
	return l.EndsAt.After(now)
}

// CurrentBid returns the highest bid on the listing. Ties on amount are
// broken by the most recent Created timestamp. The second return value is
// false when the listing has no bids.
func (l Listing) CurrentBid() (Bid, bool) {
	if len(l.Bids) == 0 {
		return Bid{}, false
	}
	best := l.Bids[0]
	for _, b := range l.Bids[1:] {
		if b.Amount > best.Amount {
			best = b
			continue
		}
		if b.Amount == best.Amount && b.Created.After(best.Created) {
			best = b
		}
	}
	return best, true
}

// CurrentBidAmount returns the highest bid amount, or 0 when there are no bids.
func (l Listing) CurrentBidAmount() int {
	bid, ok := l.CurrentBid()
	if !ok {
		return 0
	}
	return bid.Amount
}

// BelongsTo reports whether the listing was created by the given user.
// Comparison is case-insensitive to match upstream profile names.
func (l Listing) BelongsTo(username string) bool {
	if l.Seller == nil || username == "" {
		return false
	}
	return strings.EqualFold(l.Seller.Name, username)
}

// Meta is the pagination envelope returned alongside every collection
// response from the remote API.
type Meta struct {
	IsFirstPage  bool `json:"isFirstPage"`
	IsLastPage   bool `json:"isLastPage"`
	CurrentPage  int  `json:"currentPage"`
	PreviousPage *int `json:"previousPage"`
	NextPage     *int `json:"nextPage"`
	PageCount    int  `json:"pageCount"`
	TotalCount   int  `json:"totalCount"`
}

// Page is one page of listings plus its pagination metadata.
type Page struct {
	Data []Listing `json:"data"`
	Meta Meta      `json:"meta"`
}

// UserBid is a bid as returned by the profile bids endpoint, with the bid's
// listing embedded when requested.
type UserBid struct {
	ID      string    `json:"id"`
	Amount  int       `json:"amount"`
	Created time.Time `json:"created"`
	Listing *Listing  `json:"listing,omitempty"`
}

// BidPage is one page of a user's bids plus pagination metadata.
type BidPage struct {
	Data []UserBid `json:"data"`
	Meta Meta      `json:"meta"`
}
