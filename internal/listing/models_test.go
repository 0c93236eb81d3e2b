package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestListing_IsActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		endsAt time.Time
		want   bool
	}{
		{
			name:   "ends in the future",
			endsAt: now.Add(time.Hour),
			want:   true,
		},
		{
			name:   "ended in the past",
			endsAt: now.Add(-time.Hour),
			want:   false,
		},
		{
			name:   "ends exactly now",
			endsAt: now,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Listing{EndsAt: tt.endsAt}
			assert.Equal(t, tt.want, l.IsActive(now))
		})
	}
}

func TestListing_CurrentBid(t *testing.T) {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		bids       []Bid
		wantAmount int
		wantBidder string
		wantOK     bool
	}{
		{
			name:   "no bids",
			bids:   nil,
			wantOK: false,
		},
		{
			name: "highest amount wins",
			bids: []Bid{
				{Amount: 100, Bidder: Bidder{Name: "alice"}, Created: base},
				{Amount: 300, Bidder: Bidder{Name: "bob"}, Created: base.Add(time.Minute)},
				{Amount: 200, Bidder: Bidder{Name: "carol"}, Created: base.Add(2 * time.Minute)},
			},
			wantAmount: 300,
			wantBidder: "bob",
			wantOK:     true,
		},
		{
			name: "tie broken by most recent",
			bids: []Bid{
				{Amount: 250, Bidder: Bidder{Name: "alice"}, Created: base},
				{Amount: 250, Bidder: Bidder{Name: "bob"}, Created: base.Add(time.Hour)},
			},
			wantAmount: 250,
			wantBidder: "bob",
			wantOK:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Listing{Bids: tt.bids}
			bid, ok := l.CurrentBid()
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantAmount, bid.Amount)
				assert.Equal(t, tt.wantBidder, bid.Bidder.Name)
			}
		})
	}
}

func TestListing_BelongsTo(t *testing.T) {
	l := Listing{Seller: &Seller{Name: "ForestTrader"}}

	assert.True(t, l.BelongsTo("ForestTrader"))
	assert.True(t, l.BelongsTo("foresttrader"), "comparison should be case-insensitive")
	assert.False(t, l.BelongsTo("someoneelse"))
	assert.False(t, l.BelongsTo(""))
	assert.False(t, Listing{}.BelongsTo("ForestTrader"), "listing without seller belongs to nobody")
}

func TestCreateCommand_Validate(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	valid := CreateCommand{
		Title:       "Vintage Camera",
		Description: "A beautiful vintage camera in excellent condition",
		Media:       []Media{{URL: "https://example.com/image.jpg", Alt: "Camera photo"}},
		Tags:        []string{"vintage", "camera"},
		EndsAt:      now.Add(72 * time.Hour),
	}
	assert.NoError(t, valid.Validate(now))

	missingTitle := valid
	missingTitle.Title = ""
	assert.Error(t, missingTitle.Validate(now))

	badMedia := valid
	badMedia.Media = []Media{{URL: "not-a-url"}}
	assert.Error(t, badMedia.Validate(now))

	ended := valid
	ended.EndsAt = now.Add(-time.Hour)
	assert.ErrorIs(t, ended.Validate(now), ErrEndsAtNotFuture)
}

func TestUpdateCommand_Validate(t *testing.T) {
	assert.ErrorIs(t, UpdateCommand{}.Validate(), ErrNothingToUpdate)

	title := "New Title"
	assert.NoError(t, UpdateCommand{Title: &title}.Validate())

	assert.NoError(t, UpdateCommand{Tags: []string{"restock"}}.Validate())
}
