// Package activityfeed watches the Polymarket real-time data service for
// trades executed by tracked leader wallets, normalizes and dedupes them,
// and hands qualifying trades to a Store for the copy engine to act on.
// Unlike the orderbook feed, reconnects back off progressively and give
// up after repeated failures — this feed drives real trading decisions,
// so a silent wedge is worse than a loud failure.
package activityfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/GoPolymarket/polymarket-trader/internal/model"
	"github.com/GoPolymarket/polymarket-trader/internal/store"
)

const rtdsURL = "wss://ws-live-data.polymarket.com"

const maxReconnectAttempts = 10

// Activity is a single trade event as delivered over the activity feed,
// already filtered to topic "activity" / type "trades".
type Activity struct {
	ProxyWallet     string `json:"proxyWallet"`
	ConditionID     string `json:"conditionId"`
	Asset           string `json:"asset"`
	Side            string `json:"side"`
	Size            string `json:"size"`
	USDCSize        string `json:"usdcSize"`
	Price           string `json:"price"`
	TransactionHash string `json:"transactionHash"`
	Timestamp       int64  `json:"timestamp"`
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	EventSlug       string `json:"eventSlug"`
	Outcome         string `json:"outcome"`
	OutcomeIndex    int    `json:"outcomeIndex"`
	Icon            string `json:"icon"`
	Name            string `json:"name"`
	Pseudonym       string `json:"pseudonym"`
	Bio             string `json:"bio"`
	ProfileImage    string `json:"profileImage"`
}

type subscribeFrame struct {
	Action        string         `json:"action"`
	Subscriptions []subscription `json:"subscriptions"`
}

type subscription struct {
	Topic string `json:"topic"`
	Type  string `json:"type"`
}

type inboundMessage struct {
	Action  string          `json:"action"`
	Status  string          `json:"status"`
	Topic   string          `json:"topic"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client watches the activity feed for a fixed set of tracked wallets.
type Client struct {
	store     store.Store
	addresses map[string]struct{} // lowercased
	tooOld    time.Duration
	log       zerolog.Logger
}

// New builds a Client tracking the given wallet addresses (case-insensitive).
func New(st store.Store, addresses []string, tooOld time.Duration, log zerolog.Logger) *Client {
	tracked := make(map[string]struct{}, len(addresses))
	for _, a := range addresses {
		tracked[strings.ToLower(a)] = struct{}{}
	}
	return &Client{store: st, addresses: tracked, tooOld: tooOld, log: log}
}

// Run connects to the activity feed and processes trades until ctx is
// cancelled or the reconnect budget is exhausted. Each successful
// connection resets the attempt counter, matching the original bot's
// reconnect policy: delay escalates with consecutive failures, capped at
// 5 attempts' worth of delay, and the feed gives up after 10 attempts.
func (c *Client) Run(ctx context.Context) error {
	attempts := 0
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempts >= maxReconnectAttempts {
			return fmt.Errorf("activity feed: giving up after %d reconnect attempts", attempts)
		}

		err := c.connectAndServe(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		attempts++
		c.log.Warn().Err(err).Int("attempt", attempts).Msg("activity feed disconnected, reconnecting")

		delay := time.Duration(5*min(attempts, 5)) * time.Second
		if !sleepOrDone(ctx, delay) {
			return ctx.Err()
		}
	}
}

func (c *Client) connectAndServe(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, rtdsURL, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	subs := make([]subscription, 0, len(c.addresses))
	for range c.addresses {
		subs = append(subs, subscription{Topic: "activity", Type: "trades"})
	}
	frame := subscribeFrame{Action: "subscribe", Subscriptions: subs}
	if err := conn.WriteJSON(frame); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	confirmed := false
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.log.Debug().Err(err).Msg("activity feed: unparseable message")
			continue
		}

		if !confirmed {
			if msg.Action == "subscribed" || msg.Status == "subscribed" {
				confirmed = true
				c.log.Info().Msg("activity feed subscribed")
				continue
			}
		}

		if msg.Topic != "activity" || msg.Type != "trades" || len(msg.Payload) == 0 {
			continue
		}

		var act Activity
		if err := json.Unmarshal(msg.Payload, &act); err != nil {
			continue
		}
		wallet := strings.ToLower(act.ProxyWallet)
		if _, tracked := c.addresses[wallet]; !tracked {
			continue
		}

		c.processTradeActivity(ctx, wallet, act)
	}
}

// processTradeActivity normalizes, filters and persists one trade,
// mirroring the original bot's dedup-by-tx-hash and too-old-timestamp
// rules. Failures are logged and swallowed — one bad trade must not kill
// the feed.
func (c *Client) processTradeActivity(ctx context.Context, wallet string, act Activity) {
	if strings.TrimSpace(act.TransactionHash) == "" {
		return
	}

	tsMS := act.Timestamp
	if tsMS <= 1_000_000_000_000 {
		tsMS *= 1000
	}
	age := time.Since(time.UnixMilli(tsMS))
	if c.tooOld > 0 && age > c.tooOld {
		c.log.Debug().Str("tx", act.TransactionHash).Dur("age", age).Msg("activity feed: dropping stale trade")
		return
	}

	if _, found, err := c.store.FindActivityByTx(ctx, wallet, act.TransactionHash); err != nil {
		c.log.Error().Err(err).Str("tx", act.TransactionHash).Msg("activity feed: dedup lookup failed")
		return
	} else if found {
		return
	}

	size, _ := decimal.NewFromString(act.Size)
	usdcSize, _ := decimal.NewFromString(act.USDCSize)
	price, _ := decimal.NewFromString(act.Price)

	row := &model.LeaderActivity{
		LeaderWallet:    wallet,
		TimestampMS:     tsMS,
		ConditionID:     act.ConditionID,
		AssetID:         act.Asset,
		Side:            model.Side(strings.ToUpper(act.Side)),
		Size:            size,
		USDCSize:        usdcSize,
		Price:           price,
		TransactionHash: act.TransactionHash,
		Title:           act.Title,
		Slug:            act.Slug,
		EventSlug:       act.EventSlug,
		Outcome:         act.Outcome,
		OutcomeIndex:    act.OutcomeIndex,
		Icon:            act.Icon,
		Name:            act.Name,
		Pseudonym:       act.Pseudonym,
		Bio:             act.Bio,
		ProfileImage:    act.ProfileImage,
		Bot:             false,
		BotExecutedTime: 0,
	}

	if err := c.store.InsertActivity(ctx, wallet, row); err != nil {
		c.log.Error().Err(err).Str("tx", act.TransactionHash).Msg("activity feed: insert failed")
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

