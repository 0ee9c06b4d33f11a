// Package discovery locates the currently-tradeable 15-minute market for
// a coin by probing the Gamma REST API directly. It bypasses the CLOB
// SDK's gamma client because market lookup here is by slug, a filter the
// SDK's Markets call does not expose; this is the one component that
// talks to Polymarket over plain HTTP instead of through the SDK.
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/GoPolymarket/polymarket-trader/internal/model"
	"github.com/GoPolymarket/polymarket-trader/internal/ratelimit"
)

const windowSeconds = 900 // 15 minutes

// gammaRequestsPerSecond bounds Find's up-to-three sequential slug
// lookups so a tight scan interval across several coins can't hammer
// the Gamma API.
const gammaRequestsPerSecond = 5

// gammaMarket mirrors the subset of the Gamma API's market object this
// package needs. clobTokenIds and outcomes are documented as JSON arrays
// but the API sometimes serializes them as a JSON-encoded string instead,
// so both fields are decoded as raw and re-parsed by parseStringOrArray.
type gammaMarket struct {
	Slug            string          `json:"slug"`
	Question        string          `json:"question"`
	EndDate         string          `json:"endDate"`
	AcceptingOrders bool            `json:"accepting_orders"`
	ClobTokenIDs    json.RawMessage `json:"clobTokenIds"`
	Outcomes        json.RawMessage `json:"outcomes"`
}

// Client finds active 15-minute markets via the Gamma REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
}

// New builds a Client against baseURL (e.g. "https://gamma-api.polymarket.com").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    ratelimit.New(gammaRequestsPerSecond),
	}
}

// Find locates the current, next, or previous 15-minute window's market
// for coin, in that order, returning the first one still accepting
// orders. Returns false if none of the three windows has an open market.
func (c *Client) Find(ctx context.Context, coin model.Coin) (model.Market, bool, error) {
	prefix := coin.SlugPrefix()
	if prefix == "" {
		return model.Market{}, false, fmt.Errorf("discovery: unsupported coin %q", coin)
	}

	currentTS := currentWindowTimestamp(time.Now().UTC())
	for _, ts := range []int64{currentTS, currentTS + windowSeconds, currentTS - windowSeconds} {
		slug := fmt.Sprintf("%s-%d", prefix, ts)
		gm, err := c.fetchBySlug(ctx, slug)
		if err != nil {
			return model.Market{}, false, err
		}
		if gm == nil || !gm.AcceptingOrders {
			continue
		}
		market, err := toMarket(*gm)
		if err != nil {
			continue
		}
		return market, true, nil
	}
	return model.Market{}, false, nil
}

// currentWindowTimestamp floors now to the most recent 15-minute boundary.
func currentWindowTimestamp(now time.Time) int64 {
	minute := (now.Minute() / 15) * 15
	floored := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), minute, 0, 0, time.UTC)
	return floored.Unix()
}

// fetchBySlug returns nil, nil when the market doesn't exist or the
// request fails outright — discovery treats a missing window the same
// as a network hiccup and just tries the next candidate slug.
func (c *Client) fetchBySlug(ctx context.Context, slug string) (*gammaMarket, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("discovery: rate limit wait: %w", err)
	}

	url := fmt.Sprintf("%s/markets/slug/%s", c.baseURL, slug)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("discovery: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil
	}

	var gm gammaMarket
	if err := json.NewDecoder(resp.Body).Decode(&gm); err != nil {
		return nil, nil
	}
	return &gm, nil
}

func toMarket(gm gammaMarket) (model.Market, error) {
	tokenIDs, err := parseStringOrArray(gm.ClobTokenIDs)
	if err != nil {
		return model.Market{}, err
	}
	outcomes, err := parseStringOrArray(gm.Outcomes)
	if err != nil {
		return model.Market{}, err
	}

	byOutcome := make(map[string]string, len(outcomes))
	for i, outcome := range outcomes {
		if i >= len(tokenIDs) {
			break
		}
		byOutcome[strings.ToLower(outcome)] = tokenIDs[i]
	}

	upTokenID, ok := byOutcome["up"]
	if !ok {
		upTokenID, ok = byOutcome["yes"]
	}
	if !ok {
		return model.Market{}, fmt.Errorf("discovery: up/yes token id not found in %s", gm.Slug)
	}
	downTokenID, ok := byOutcome["down"]
	if !ok {
		downTokenID, ok = byOutcome["no"]
	}
	if !ok {
		return model.Market{}, fmt.Errorf("discovery: down/no token id not found in %s", gm.Slug)
	}

	endDate, err := time.Parse(time.RFC3339, gm.EndDate)
	if err != nil {
		return model.Market{}, fmt.Errorf("discovery: parse end_date %q: %w", gm.EndDate, err)
	}

	return model.Market{
		Slug:            gm.Slug,
		Question:        gm.Question,
		UpTokenID:       upTokenID,
		DownTokenID:     downTokenID,
		EndDate:         endDate,
		AcceptingOrders: gm.AcceptingOrders,
	}, nil
}

// parseStringOrArray decodes a Gamma field that may be either a JSON
// array of strings or a JSON-encoded string containing that array.
func parseStringOrArray(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("discovery: field is neither array nor string: %w", err)
	}
	if err := json.Unmarshal([]byte(s), &arr); err != nil {
		return nil, fmt.Errorf("discovery: decode inner JSON string: %w", err)
	}
	return arr, nil
}
