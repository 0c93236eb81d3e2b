package browse

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/HelChris/semesterproject2/internal/category"
	"github.com/HelChris/semesterproject2/internal/gateway"
	"github.com/HelChris/semesterproject2/internal/listing"
)

// MockFetcher is a mock implementation of LatestFetcher for testing
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Listings(ctx context.Context, q gateway.ListQuery) (*listing.Page, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listing.Page), args.Error(1)
}

func newTestAggregator(gw LatestFetcher) *Aggregator {
	return NewAggregator(gw, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// magicListings builds n listings that classify as magical-items.
func magicListings(prefix string, n int) []listing.Listing {
	out := make([]listing.Listing, n)
	for i := range out {
		out[i] = listing.Listing{
			ID:     prefix + "-" + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			Title:  "Enchanted trinket",
			Tags:   []string{"magic"},
			EndsAt: time.Now().Add(time.Hour),
		}
	}
	return out
}

// plainListings builds n listings that classify as other.
func plainListings(prefix string, n int) []listing.Listing {
	out := make([]listing.Listing, n)
	for i := range out {
		out[i] = listing.Listing{
			ID:     prefix + "-" + string(rune('a'+i%26)) + string(rune('a'+i/26)),
			Title:  "Plain mug",
			EndsAt: time.Now().Add(time.Hour),
		}
	}
	return out
}

func pageQuery(limit, page int) any {
	return mock.MatchedBy(func(q gateway.ListQuery) bool {
		return q.Limit == limit && q.Page == page && q.Active != nil && *q.Active
	})
}

func TestAggregator_CollectCategory_StopsOnShortPage(t *testing.T) {
	gw := new(MockFetcher)
	gw.On("Listings", mock.Anything, pageQuery(100, 1)).Return(&listing.Page{Data: magicListings("p1", 100)}, nil).Once()
	gw.On("Listings", mock.Anything, pageQuery(100, 2)).Return(&listing.Page{Data: magicListings("p2", 100)}, nil).Once()
	gw.On("Listings", mock.Anything, pageQuery(100, 3)).Return(&listing.Page{Data: magicListings("p3", 47)}, nil).Once()

	result, err := newTestAggregator(gw).CollectCategory(context.Background(), category.MagicalItems)

	require.NoError(t, err)
	assert.Equal(t, 247, result.Scanned)
	assert.Len(t, result.Listings, 247)
	assert.False(t, result.FallbackUsed())
	// The short third page ended accumulation: no fourth fetch.
	gw.AssertNumberOfCalls(t, "Listings", 3)
}

func TestAggregator_CollectCategory_HardPageCap(t *testing.T) {
	gw := new(MockFetcher)
	for page := 1; page <= 3; page++ {
		gw.On("Listings", mock.Anything, pageQuery(100, page)).Return(&listing.Page{Data: magicListings("p", 100)}, nil).Once()
	}

	result, err := newTestAggregator(gw).CollectCategory(context.Background(), category.MagicalItems)

	require.NoError(t, err)
	assert.Equal(t, 300, result.Scanned)
	gw.AssertNumberOfCalls(t, "Listings", 3)
}

func TestAggregator_CollectCategory_FirstPageFailureIsFatal(t *testing.T) {
	gw := new(MockFetcher)
	gw.On("Listings", mock.Anything, pageQuery(100, 1)).Return(nil, gateway.NewUpstreamError(500, "boom")).Once()

	result, err := newTestAggregator(gw).CollectCategory(context.Background(), category.MagicalItems)

	require.Error(t, err)
	assert.Nil(t, result, "a failed first page must not look like an empty success")
	gw.AssertNumberOfCalls(t, "Listings", 1)
}

func TestAggregator_CollectCategory_LaterPageFailureKeepsPartial(t *testing.T) {
	gw := new(MockFetcher)
	gw.On("Listings", mock.Anything, pageQuery(100, 1)).Return(&listing.Page{Data: magicListings("p1", 100)}, nil).Once()
	gw.On("Listings", mock.Anything, pageQuery(100, 2)).Return(nil, gateway.NewUpstreamError(502, "bad gateway")).Once()

	result, err := newTestAggregator(gw).CollectCategory(context.Background(), category.MagicalItems)

	require.NoError(t, err)
	assert.Equal(t, 100, result.Scanned)
	assert.Len(t, result.Listings, 100)
	// No third page after a failure.
	gw.AssertNumberOfCalls(t, "Listings", 2)
}

func TestAggregator_CollectCategory_EmptyCategoryFetchesFallback(t *testing.T) {
	gw := new(MockFetcher)
	gw.On("Listings", mock.Anything, pageQuery(100, 1)).Return(&listing.Page{Data: plainListings("p1", 30)}, nil).Once()
	fallback := plainListings("fb", 12)
	gw.On("Listings", mock.Anything, pageQuery(12, 1)).Return(&listing.Page{Data: fallback}, nil).Once()

	result, err := newTestAggregator(gw).CollectCategory(context.Background(), category.ForestArtifacts)

	require.NoError(t, err)
	assert.True(t, result.FallbackUsed())
	assert.Empty(t, result.Listings)
	assert.Equal(t, 30, result.Scanned)
	assert.Len(t, result.Fallback, 12)
}

func TestAggregator_CollectCategory_FallbackFailureIsNotFatal(t *testing.T) {
	gw := new(MockFetcher)
	gw.On("Listings", mock.Anything, pageQuery(100, 1)).Return(&listing.Page{Data: plainListings("p1", 5)}, nil).Once()
	gw.On("Listings", mock.Anything, pageQuery(12, 1)).Return(nil, gateway.NewUpstreamError(500, "boom")).Once()

	result, err := newTestAggregator(gw).CollectCategory(context.Background(), category.AncientBooks)

	require.NoError(t, err)
	assert.True(t, result.FallbackUsed())
	assert.Empty(t, result.Fallback)
}

func TestAggregator_CollectCategory_RejectsUnknownCategory(t *testing.T) {
	gw := new(MockFetcher)

	_, err := newTestAggregator(gw).CollectCategory(context.Background(), "electronics")

	assert.ErrorIs(t, err, gateway.ErrValidation)
	gw.AssertNotCalled(t, "Listings", mock.Anything, mock.Anything)
}

func TestAggregator_CollectCategory_FiltersToRequestedCategory(t *testing.T) {
	mixed := append(magicListings("m", 3), plainListings("o", 4)...)
	gw := new(MockFetcher)
	gw.On("Listings", mock.Anything, pageQuery(100, 1)).Return(&listing.Page{Data: mixed}, nil).Once()

	result, err := newTestAggregator(gw).CollectCategory(context.Background(), category.MagicalItems)

	require.NoError(t, err)
	assert.Equal(t, 7, result.Scanned)
	require.Len(t, result.Listings, 3)
	for _, l := range result.Listings {
		assert.Equal(t, category.MagicalItems, category.Classify(l))
	}
}
