// Package gateway translates client intents into authenticated HTTP requests
// against the remote auction API and normalizes error conditions. It performs
// no retries; retry policy, if any, belongs to the caller.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/HelChris/semesterproject2/internal/listing"
	"github.com/HelChris/semesterproject2/internal/session"
)

const (
	listingsPath = "/auction/listings"
	profilesPath = "/auction/profiles"

	apiKeyHeader = "X-Noroff-API-Key"

	// DefaultPageSize matches the card grid of the original client.
	DefaultPageSize = 12

	// MaxPageSize is the largest page the upstream API will serve.
	MaxPageSize = 100
)

var ErrBidRejected = errors.New("invalid bid amount or auction has ended")

// Client is the single HTTP access point to the remote auction API.
type Client struct {
	http     *http.Client
	baseURL  string
	apiKey   string
	sessions session.Store
	logger   *slog.Logger
}

// NewClient creates a gateway client. The transport's default behavior
// bounds every request; no extra timeout policy is layered on top.
func NewClient(baseURL, apiKey string, sessions session.Store, logger *slog.Logger) *Client {
	return &Client{
		http:     &http.Client{},
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		sessions: sessions,
		logger:   logger,
	}
}

type authMode int

const (
	// authNone sends the API key only.
	authNone authMode = iota
	// authOptional adds the bearer token when a session exists.
	authOptional
	// authRequired fails fast, before any network call, without a session.
	authRequired
)

type apiRequest struct {
	method   string
	path     string
	query    url.Values
	body     any
	auth     authMode
	fallback string
}

// do executes one request and returns the raw response body. Non-2xx
// responses become UpstreamErrors carrying the server message when present,
// transport failures become connectivity errors.
func (c *Client) do(ctx context.Context, req apiRequest) ([]byte, error) {
	var token string
	if req.auth != authNone {
		s, err := c.sessions.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read session: %w", err)
		}
		token = s.AccessToken
		if req.auth == authRequired && token == "" {
			return nil, fmt.Errorf("%w: you must be logged in", ErrAuthRequired)
		}
	}

	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(apiKeyHeader, c.apiKey)
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	requestID := uuid.NewString()
	start := time.Now()
	c.logger.Debug("auction api request",
		"request_id", requestID, "method", req.method, "path", req.path)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, connectivityError(req.method+" "+req.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, connectivityError(req.method+" "+req.path, err)
	}

	c.logger.Debug("auction api response",
		"request_id", requestID, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := upstreamMessage(raw)
		if msg == "" {
			msg = req.fallback
		}
		return nil, NewUpstreamError(resp.StatusCode, msg)
	}
	return raw, nil
}

// upstreamMessage extracts the first message from an {errors:[{message}]}
// failure envelope.
func upstreamMessage(raw []byte) string {
	var envelope struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	if len(envelope.Errors) == 0 {
		return ""
	}
	return envelope.Errors[0].Message
}

// ListQuery holds the optional filters for the listings endpoint.
type ListQuery struct {
	Limit     int
	Page      int
	SortBy    string
	SortOrder string
	Tag       string
	Active    *bool
}

func (q ListQuery) values() url.Values {
	limit := q.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "created"
	}
	sortOrder := q.SortOrder
	if sortOrder == "" {
		sortOrder = "desc"
	}

	v := url.Values{}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("page", strconv.Itoa(page))
	v.Set("sort", sortBy)
	v.Set("sortOrder", sortOrder)
	v.Set("_bids", "true")
	v.Set("_seller", "true")
	if q.Tag != "" {
		v.Set("_tag", q.Tag)
	}
	if q.Active != nil {
		v.Set("_active", strconv.FormatBool(*q.Active))
	}
	return v
}

// Listings fetches one page of auction listings.
func (c *Client) Listings(ctx context.Context, q ListQuery) (*listing.Page, error) {
	raw, err := c.do(ctx, apiRequest{
		method:   http.MethodGet,
		path:     listingsPath,
		query:    q.values(),
		auth:     authNone,
		fallback: "Failed to fetch auction listings",
	})
	if err != nil {
		return nil, err
	}
	return decodePage(raw)
}

// ListingByID fetches a single listing with bids and seller embedded.
func (c *Client) ListingByID(ctx context.Context, id string) (*listing.Listing, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: listing id is required", ErrValidation)
	}

	v := url.Values{}
	v.Set("_bids", "true")
	v.Set("_seller", "true")

	raw, err := c.do(ctx, apiRequest{
		method:   http.MethodGet,
		path:     listingsPath + "/" + url.PathEscape(id),
		query:    v,
		auth:     authNone,
		fallback: "Failed to fetch auction listing",
	})
	if err != nil {
		return nil, err
	}
	return decodeSingle(raw)
}

// SearchListings searches titles, descriptions and tags.
func (c *Client) SearchListings(ctx context.Context, query string, limit, page int) (*listing.Page, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrValidation)
	}

	v := pageValues(limit, page)
	v.Set("q", query)
	v.Set("_bids", "true")
	v.Set("_seller", "true")

	raw, err := c.do(ctx, apiRequest{
		method:   http.MethodGet,
		path:     listingsPath + "/search",
		query:    v,
		auth:     authNone,
		fallback: "Failed to search auction listings",
	})
	if err != nil {
		return nil, err
	}
	return decodePage(raw)
}

// ListingsByUser fetches a profile's listings. The bearer token is attached
// when a session exists; the endpoint rejects anonymous callers upstream.
func (c *Client) ListingsByUser(ctx context.Context, name string, limit, page int) (*listing.Page, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}

	v := pageValues(limit, page)
	v.Set("sort", "created")
	v.Set("sortOrder", "desc")
	v.Set("_bids", "true")
	v.Set("_seller", "true")

	raw, err := c.do(ctx, apiRequest{
		method:   http.MethodGet,
		path:     profilesPath + "/" + url.PathEscape(name) + "/listings",
		query:    v,
		auth:     authOptional,
		fallback: "Failed to fetch user listings",
	})
	if err != nil {
		return nil, err
	}
	return decodePage(raw)
}

// UserBids fetches the bids a profile has placed, with each bid's listing
// embedded. Requires an authenticated session.
func (c *Client) UserBids(ctx context.Context, name string, limit, page int) (*listing.BidPage, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}

	v := pageValues(limit, page)
	v.Set("_listings", "true")
	v.Set("_seller", "true")

	raw, err := c.do(ctx, apiRequest{
		method:   http.MethodGet,
		path:     profilesPath + "/" + url.PathEscape(name) + "/bids",
		query:    v,
		auth:     authRequired,
		fallback: "Failed to fetch user bids",
	})
	if err != nil {
		return nil, err
	}

	var bids listing.BidPage
	if err := json.Unmarshal(raw, &bids); err != nil {
		return nil, fmt.Errorf("failed to decode user bids: %w", err)
	}
	return &bids, nil
}

// UserWins fetches the listings a profile has won. Requires an authenticated
// session.
func (c *Client) UserWins(ctx context.Context, name string, limit, page int) (*listing.Page, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}

	v := pageValues(limit, page)
	v.Set("_bids", "true")
	v.Set("_seller", "true")

	raw, err := c.do(ctx, apiRequest{
		method:   http.MethodGet,
		path:     profilesPath + "/" + url.PathEscape(name) + "/wins",
		query:    v,
		auth:     authRequired,
		fallback: "Failed to fetch user wins",
	})
	if err != nil {
		return nil, err
	}
	return decodePage(raw)
}

// CreateListing creates a new listing owned by the current user.
func (c *Client) CreateListing(ctx context.Context, cmd listing.CreateCommand) (*listing.Listing, error) {
	if err := cmd.Validate(time.Now()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	raw, err := c.do(ctx, apiRequest{
		method:   http.MethodPost,
		path:     listingsPath,
		body:     cmd,
		auth:     authRequired,
		fallback: "Failed to create auction listing",
	})
	if err != nil {
		return nil, err
	}
	return decodeSingle(raw)
}

// UpdateListing applies a partial update to a listing the current user owns.
func (c *Client) UpdateListing(ctx context.Context, id string, cmd listing.UpdateCommand) (*listing.Listing, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: listing id is required", ErrValidation)
	}
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	raw, err := c.do(ctx, apiRequest{
		method:   http.MethodPut,
		path:     listingsPath + "/" + url.PathEscape(id),
		body:     cmd,
		auth:     authRequired,
		fallback: "Failed to update auction listing",
	})
	if err != nil {
		return nil, err
	}
	return decodeSingle(raw)
}

// DeleteListing deletes a listing the current user owns.
func (c *Client) DeleteListing(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: listing id is required", ErrValidation)
	}

	_, err := c.do(ctx, apiRequest{
		method:   http.MethodDelete,
		path:     listingsPath + "/" + url.PathEscape(id),
		auth:     authRequired,
		fallback: "Failed to delete auction listing",
	})
	return err
}

// PlaceBid places a bid on a listing and returns the updated listing.
// Preconditions (id present, positive amount, authenticated) are checked
// before any network call. Upstream rejections keep their distinct kinds:
// 400 maps to ErrBidRejected, 401/403/404 to the shared sentinels, anything
// else stays a generic upstream error carrying the HTTP status.
func (c *Client) PlaceBid(ctx context.Context, listingID string, amount int) (*listing.Listing, error) {
	if listingID == "" {
		return nil, fmt.Errorf("%w: listing id is required", ErrValidation)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: bid amount must be greater than zero", ErrValidation)
	}

	raw, err := c.do(ctx, apiRequest{
		method:   http.MethodPost,
		path:     listingsPath + "/" + url.PathEscape(listingID) + "/bids",
		body:     map[string]int{"amount": amount},
		auth:     authRequired,
		fallback: "Bid failed",
	})
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) && upstream.Status == http.StatusBadRequest {
			return nil, fmt.Errorf("%w: %s", ErrBidRejected, upstream.Message)
		}
		return nil, err
	}
	return decodeSingle(raw)
}

func pageValues(limit, page int) url.Values {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	v := url.Values{}
	v.Set("limit", strconv.Itoa(limit))
	v.Set("page", strconv.Itoa(page))
	return v
}

func decodePage(raw []byte) (*listing.Page, error) {
	var page listing.Page
	if err := json.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("failed to decode listing page: %w", err)
	}
	return &page, nil
}

func decodeSingle(raw []byte) (*listing.Listing, error) {
	var envelope struct {
		Data listing.Listing `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}
	return &envelope.Data, nil
}
