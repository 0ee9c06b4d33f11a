package discovery

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GoPolymarket/polymarket-trader/internal/model"
)

func marketJSON(slug string, accepting bool, tokenIDsAsString bool) string {
	tokenIDs := `["111","222"]`
	outcomes := `["Up","Down"]`
	if tokenIDsAsString {
		tokenIDs = `"[\"111\",\"222\"]"`
		outcomes = `"[\"Up\",\"Down\"]"`
	}
	return fmt.Sprintf(`{
		"slug": %q,
		"question": "Will BTC be up?",
		"endDate": "2026-07-30T12:15:00Z",
		"accepting_orders": %t,
		"clobTokenIds": %s,
		"outcomes": %s
	}`, slug, accepting, tokenIDs, outcomes)
}

func TestFindReturnsCurrentWindowMarket(t *testing.T) {
	currentTS := currentWindowTimestamp(time.Now().UTC())
	wantSlug := fmt.Sprintf("btc-updown-15m-%d", currentTS)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/markets/slug/"+wantSlug {
			w.Write([]byte(marketJSON(wantSlug, true, false)))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	market, found, err := c.Find(context.Background(), model.CoinBTC)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !found {
		t.Fatal("expected a market to be found")
	}
	if market.Slug != wantSlug {
		t.Fatalf("expected slug %s, got %s", wantSlug, market.Slug)
	}
	if market.UpTokenID != "111" || market.DownTokenID != "222" {
		t.Fatalf("unexpected token ids: up=%s down=%s", market.UpTokenID, market.DownTokenID)
	}
}

func TestFindFallsBackToNextWindow(t *testing.T) {
	currentTS := currentWindowTimestamp(time.Now().UTC())
	nextSlug := fmt.Sprintf("btc-updown-15m-%d", currentTS+windowSeconds)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/markets/slug/"+nextSlug {
			w.Write([]byte(marketJSON(nextSlug, true, false)))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	market, found, err := c.Find(context.Background(), model.CoinBTC)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !found || market.Slug != nextSlug {
		t.Fatalf("expected fallback to next window slug %s, got found=%v slug=%s", nextSlug, found, market.Slug)
	}
}

func TestFindReturnsFalseWhenNoWindowAccepts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, found, err := c.Find(context.Background(), model.CoinBTC)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if found {
		t.Fatal("expected no market to be found")
	}
}

func TestFindSkipsMarketNotAcceptingOrders(t *testing.T) {
	currentTS := currentWindowTimestamp(time.Now().UTC())
	currentSlug := fmt.Sprintf("btc-updown-15m-%d", currentTS)
	nextSlug := fmt.Sprintf("btc-updown-15m-%d", currentTS+windowSeconds)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/markets/slug/" + currentSlug:
			w.Write([]byte(marketJSON(currentSlug, false, false)))
		case "/markets/slug/" + nextSlug:
			w.Write([]byte(marketJSON(nextSlug, true, false)))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	market, found, err := c.Find(context.Background(), model.CoinBTC)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !found || market.Slug != nextSlug {
		t.Fatalf("expected to skip non-accepting current window and use %s, got found=%v slug=%s", nextSlug, found, market.Slug)
	}
}

func TestFindParsesStringEncodedArrayFields(t *testing.T) {
	currentTS := currentWindowTimestamp(time.Now().UTC())
	wantSlug := fmt.Sprintf("btc-updown-15m-%d", currentTS)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/markets/slug/"+wantSlug {
			w.Write([]byte(marketJSON(wantSlug, true, true)))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	market, found, err := c.Find(context.Background(), model.CoinBTC)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !found || market.UpTokenID != "111" || market.DownTokenID != "222" {
		t.Fatalf("expected string-encoded array fields to parse, got found=%v up=%s down=%s", found, market.UpTokenID, market.DownTokenID)
	}
}

func TestFindRejectsUnsupportedCoin(t *testing.T) {
	c := New("http://example.invalid")
	_, _, err := c.Find(context.Background(), model.Coin("DOGE"))
	if err == nil {
		t.Fatal("expected an error for an unsupported coin")
	}
}
