package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/HelChris/semesterproject2/internal/browse"
	"github.com/HelChris/semesterproject2/internal/category"
	"github.com/HelChris/semesterproject2/internal/config"
	"github.com/HelChris/semesterproject2/internal/gateway"
	"github.com/HelChris/semesterproject2/internal/listing"
	"github.com/HelChris/semesterproject2/internal/profile"
	"github.com/HelChris/semesterproject2/internal/render"
	"github.com/HelChris/semesterproject2/internal/search"
	"github.com/HelChris/semesterproject2/internal/session"
	"github.com/HelChris/semesterproject2/internal/snapshot"
)

const usage = `usage: auctionhouse <command> [args]

commands:
  login <token>        store an access token for this session
  logout               clear the stored session
  browse <category>    aggregate and show a category view
  search <query>       search listings and seller profiles
  show <id>            show one listing
  bid <id> <amount>    place a bid
  sell <title> <days>  create a listing ending <days> from now
  edit <id> <field> <value>
                       change a listing's title or description
  retract <id>         delete one of your listings
  profile              show your listings, bids and wins
  export <category>    persist a category aggregation to the snapshot store
  snapshots            list persisted snapshot batches
`

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	sessions, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("session store unavailable", "error", err)
		os.Exit(1)
	}

	app := &app{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		gw:       gateway.NewClient(cfg.BaseURL, cfg.APIKey, sessions, logger),
		out:      render.NewTextRenderer(os.Stdout),
	}

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		logger.Error("command failed", "command", os.Args[1], "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newSessionStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Store, error) {
	if cfg.RedisAddr == "" {
		return session.NewMemoryStore(), nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}
	logger.Info("using redis session store", "addr", cfg.RedisAddr)
	return session.NewRedisStore(client, ""), nil
}

type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	sessions session.Store
	gw       *gateway.Client
	out      *render.TextRenderer
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.login(ctx, args)
	case "logout":
		return a.sessions.Clear(ctx)
	case "browse":
		return a.browse(ctx, args)
	case "search":
		return a.search(ctx, args)
	case "show":
		return a.show(ctx, args)
	case "bid":
		return a.bid(ctx, args)
	case "sell":
		return a.sell(ctx, args)
	case "edit":
		return a.edit(ctx, args)
	case "retract":
		return a.retract(ctx, args)
	case "profile":
		return a.profile(ctx)
	case "export":
		return a.export(ctx, args)
	case "snapshots":
		return a.snapshots(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("login needs exactly one token argument")
	}
	token := args[0]

	claims, err := session.Introspect(token)
	if err != nil {
		return fmt.Errorf("token not usable: %w", err)
	}
	if claims.Expired(time.Now()) {
		return errors.New("token is expired, sign in again to get a fresh one")
	}

	if err := a.sessions.Save(ctx, session.Session{
		AccessToken: token,
		Username:    claims.Name,
	}); err != nil {
		return err
	}
	return a.out.Notice("signed in as " + claims.Name)
}

func (a *app) browse(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("browse needs a category: %s", categoryNames())
	}
	key := category.Key(args[0])

	agg := browse.NewAggregator(a.gw, a.logger)
	result, err := agg.CollectCategory(ctx, key)
	if err != nil {
		return err
	}

	if result.FallbackUsed() {
		if err := a.out.Notice(fmt.Sprintf("no %s listings right now, latest listings instead:", key)); err != nil {
			return err
		}
		return a.out.Listings("Latest", result.Fallback)
	}

	ctrl := browse.NewCachedController(a.cfg.PageSize, result.Listings)
	if err := a.out.Listings(string(key), ctrl.Window()); err != nil {
		return err
	}
	if !ctrl.Exhausted() {
		return a.out.Notice(fmt.Sprintf("...and %d more", len(result.Listings)-len(ctrl.Window())))
	}
	return nil
}

func (a *app) search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("search needs a query")
	}
	query := strings.Join(args, " ")

	engine := search.NewEngine(a.gw, a.sessions, a.logger)
	result, err := engine.Search(ctx, query)
	if err != nil {
		return err
	}

	if !result.Meta.HasResults {
		return a.out.Notice(fmt.Sprintf("nothing found for %q", query))
	}
	heading := fmt.Sprintf("Results for %q (%d listing, %d seller)",
		query, result.Meta.ContentMatches, result.Meta.UserMatches)
	return a.out.Listings(heading, result.Listings())
}

func (a *app) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("show needs a listing id")
	}
	l, err := a.gw.ListingByID(ctx, args[0])
	if err != nil {
		return err
	}
	if err := a.out.Listings("Listing "+l.ID, []listing.Listing{*l}); err != nil {
		return err
	}
	if l.Description != "" {
		return a.out.Notice("  " + l.Description)
	}
	return nil
}

func (a *app) bid(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("bid needs a listing id and an amount")
	}
	amount, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("amount must be a whole number of credits: %w", err)
	}

	l, err := a.gw.PlaceBid(ctx, args[0], amount)
	if err != nil {
		return describeBidFailure(err)
	}
	return a.out.Notice(fmt.Sprintf("bid placed, %s is now at %d credits", l.Title, l.CurrentBidAmount()))
}

func describeBidFailure(err error) error {
	switch {
	case errors.Is(err, gateway.ErrBidRejected):
		return fmt.Errorf("bid rejected, it may be too low or the auction over: %w", err)
	case errors.Is(err, gateway.ErrAuthRequired), errors.Is(err, gateway.ErrUnauthenticated):
		return fmt.Errorf("sign in before bidding: %w", err)
	case errors.Is(err, gateway.ErrNotFound):
		return fmt.Errorf("that listing no longer exists: %w", err)
	default:
		return err
	}
}

func (a *app) sell(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("sell needs a title and an auction length in days")
	}
	days, err := strconv.Atoi(args[1])
	if err != nil || days <= 0 {
		return errors.New("auction length must be a positive number of days")
	}

	cmd := listing.CreateCommand{
		Title:       args[0],
		Description: strings.Join(args[2:], " "),
		EndsAt:      time.Now().AddDate(0, 0, days),
	}
	l, err := a.gw.CreateListing(ctx, cmd)
	if err != nil {
		return err
	}
	return a.out.Notice(fmt.Sprintf("listing %s created, ends %s", l.ID, l.EndsAt.Format(time.RFC822)))
}

func (a *app) edit(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("edit needs a listing id, a field (title or description) and the new value")
	}
	value := strings.Join(args[2:], " ")

	var cmd listing.UpdateCommand
	switch args[1] {
	case "title":
		cmd.Title = &value
	case "description":
		cmd.Description = &value
	default:
		return fmt.Errorf("cannot edit %q, expected title or description", args[1])
	}

	l, err := a.gw.UpdateListing(ctx, args[0], cmd)
	if err != nil {
		return err
	}
	return a.out.Notice(fmt.Sprintf("listing %s updated", l.ID))
}

func (a *app) retract(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("retract needs a listing id")
	}
	if err := a.gw.DeleteListing(ctx, args[0]); err != nil {
		return err
	}
	return a.out.Notice("listing deleted")
}

func (a *app) profile(ctx context.Context) error {
	svc := profile.NewService(a.gw, a.sessions, a.logger)
	ov, err := svc.Overview(ctx)
	if err != nil {
		if errors.Is(err, gateway.ErrAuthRequired) {
			return errors.New("sign in first: auctionhouse login <token>")
		}
		return err
	}

	if err := a.out.Notice("profile: " + ov.Username); err != nil {
		return err
	}
	if err := a.out.Listings("Your listings", ov.Listings.Data); err != nil {
		return err
	}
	if err := a.out.Listings("Auctions you won", ov.Wins.Data); err != nil {
		return err
	}

	if err := a.out.Notice(fmt.Sprintf("Your bids (%d)", len(ov.Bids.Data))); err != nil {
		return err
	}
	now := time.Now()
	for _, b := range ov.Bids.Data {
		title := "(listing gone)"
		if b.Listing != nil {
			title = b.Listing.Title
		}
		line := fmt.Sprintf("  %4d cr on %-40s  %s", b.Amount, title, profile.StatusOf(b, now))
		if err := a.out.Notice(line); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("export needs a category: %s", categoryNames())
	}

	repo, err := a.snapshotRepo(ctx)
	if err != nil {
		return err
	}

	agg := browse.NewAggregator(a.gw, a.logger)
	result, err := agg.CollectCategory(ctx, category.Key(args[0]))
	if err != nil {
		return err
	}

	batchID, err := repo.SaveBatch(ctx, result)
	if err != nil {
		return err
	}
	return a.out.Notice(fmt.Sprintf("saved batch %s: %d of %d listings matched %s",
		batchID, len(result.Listings), result.Scanned, result.Category))
}

func (a *app) snapshots(ctx context.Context) error {
	repo, err := a.snapshotRepo(ctx)
	if err != nil {
		return err
	}

	batches, err := repo.ListBatches(ctx, 20)
	if err != nil {
		return err
	}
	if len(batches) == 0 {
		return a.out.Notice("no snapshots yet, run: auctionhouse export <category>")
	}
	for _, b := range batches {
		line := fmt.Sprintf("%s  %-20s %3d/%3d  %s",
			b.TakenAt.Format(time.RFC822), b.Category, b.Matched, b.Scanned, b.ID)
		if err := a.out.Notice(line); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) snapshotRepo(ctx context.Context) (*snapshot.Repository, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, errors.New("AUCTION_DB_URL is not set, the snapshot store is disabled")
	}
	pool, err := pgxpool.New(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to snapshot store: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping snapshot store: %w", err)
	}
	return snapshot.NewRepository(pool), nil
}

func categoryNames() string {
	names := make([]string, len(category.Categories))
	for i, c := range category.Categories {
		names[i] = string(c.Key)
	}
	return strings.Join(names, ", ")
}
