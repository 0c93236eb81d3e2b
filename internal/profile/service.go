// Package profile builds the signed-in user's views: their listings, the
// listings they have bid on, and the auctions they have won.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/HelChris/semesterproject2/internal/gateway"
	"github.com/HelChris/semesterproject2/internal/listing"
	"github.com/HelChris/semesterproject2/internal/session"
)

// Gateway is the slice of the fetch gateway the profile views need.
type Gateway interface {
	ListingsByUser(ctx context.Context, name string, limit, page int) (*listing.Page, error)
	UserBids(ctx context.Context, name string, limit, page int) (*listing.BidPage, error)
	UserWins(ctx context.Context, name string, limit, page int) (*listing.Page, error)
}

// Overview is the first page of every profile tab, fetched together.
type Overview struct {
	Username  string
	AvatarURL string

	Listings *listing.Page
	Bids     *listing.BidPage
	Wins     *listing.Page
}

// Service fetches profile data for whoever the session belongs to.
type Service struct {
	gw       Gateway
	sessions session.Store
	logger   *slog.Logger
	pageSize int
}

func NewService(gw Gateway, sessions session.Store, logger *slog.Logger) *Service {
	return &Service{
		gw:       gw,
		sessions: sessions,
		logger:   logger,
		pageSize: gateway.DefaultPageSize,
	}
}

// Overview fetches the first page of all three tabs concurrently. Unlike
// search, a profile page with one tab missing is broken, so the first
// failure cancels the rest and fails the whole operation.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	sess, err := s.requireSession(ctx)
	if err != nil {
		return nil, err
	}

	ov := &Overview{Username: sess.Username, AvatarURL: sess.AvatarURL}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.gw.ListingsByUser(ctx, sess.Username, s.pageSize, 1)
		if err != nil {
			return fmt.Errorf("failed to load own listings: %w", err)
		}
		ov.Listings = page
		return nil
	})
	g.Go(func() error {
		page, err := s.gw.UserBids(ctx, sess.Username, s.pageSize, 1)
		if err != nil {
			return fmt.Errorf("failed to load bids: %w", err)
		}
		ov.Bids = page
		return nil
	})
	g.Go(func() error {
		page, err := s.gw.UserWins(ctx, sess.Username, s.pageSize, 1)
		if err != nil {
			return fmt.Errorf("failed to load wins: %w", err)
		}
		ov.Wins = page
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("profile overview loaded",
		"user", sess.Username,
		"listings", len(ov.Listings.Data),
		"bids", len(ov.Bids.Data),
		"wins", len(ov.Wins.Data))

	return ov, nil
}

// CanManage reports whether the session user owns the listing and may edit
// or delete it.
func (s *Service) CanManage(ctx context.Context, l listing.Listing) (bool, error) {
	sess, err := s.sessions.Load(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to load session: %w", err)
	}
	if !sess.Authenticated() {
		return false, nil
	}
	return l.BelongsTo(sess.Username), nil
}

func (s *Service) requireSession(ctx context.Context) (session.Session, error) {
	sess, err := s.sessions.Load(ctx)
	if err != nil {
		return session.Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	if !sess.Authenticated() {
		return session.Session{}, gateway.ErrAuthRequired
	}
	return sess, nil
}

// BidStatus describes where a user's bid stands on its listing.
type BidStatus string

const (
	// BidLeading means the bid is the listing's current highest and the
	// auction is still open.
	BidLeading BidStatus = "leading"
	// BidOutbid means someone has bid higher on a still-open auction.
	BidOutbid BidStatus = "outbid"
	// BidWon means the auction ended with this bid on top.
	BidWon BidStatus = "won"
	// BidLost means the auction ended with a higher bid than this one.
	BidLost BidStatus = "lost"
	// BidUnknown means the listing is no longer available to judge against.
	BidUnknown BidStatus = "unknown"
)

// StatusOf derives the standing of a user's bid from the listing it was
// placed on. The upstream never reports this directly; it falls out of the
// current-bid derivation and the auction deadline.
func StatusOf(b listing.UserBid, now time.Time) BidStatus {
	if b.Listing == nil {
		return BidUnknown
	}
	top, ok := b.Listing.CurrentBid()
	leading := ok && top.Amount <= b.Amount
	if b.Listing.IsActive(now) {
		if leading {
			return BidLeading
		}
		return BidOutbid
	}
	if leading {
		return BidWon
	}
	return BidLost
}
