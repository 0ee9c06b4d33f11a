package notify

import (
	"context"
	"errors"
	"testing"
)

type countingNotifier struct {
	fills int
	err   error
}

func (c *countingNotifier) NotifyFill(ctx context.Context, assetID, side string, price, size float64) error {
	c.fills++
	return c.err
}
func (c *countingNotifier) NotifyArbitrage(ctx context.Context, coin, market string, upAsk, downAsk, spread float64) error {
	return nil
}
func (c *countingNotifier) NotifyStopLoss(ctx context.Context, assetID string, pnl float64) error {
	return nil
}
func (c *countingNotifier) NotifyEmergencyStop(ctx context.Context) error { return nil }
func (c *countingNotifier) NotifyDailySummary(ctx context.Context, pnl float64, fills int, volume float64) error {
	return nil
}

func TestFanoutDispatchesToEverySink(t *testing.T) {
	a := &countingNotifier{}
	b := &countingNotifier{}
	f := NewFanout(a, b)

	if err := f.NotifyFill(context.Background(), "asset-1", "BUY", 0.5, 10); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if a.fills != 1 || b.fills != 1 {
		t.Fatalf("expected both sinks to fire, got a=%d b=%d", a.fills, b.fills)
	}
}

func TestFanoutSkipsNilSinks(t *testing.T) {
	a := &countingNotifier{}
	f := NewFanout(a, nil)

	if err := f.NotifyFill(context.Background(), "asset-1", "BUY", 0.5, 10); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if a.fills != 1 {
		t.Fatalf("expected the non-nil sink to fire, got %d", a.fills)
	}
}

func TestFanoutStillCallsEverySinkAfterAnErrorAndReturnsFirst(t *testing.T) {
	a := &countingNotifier{err: errors.New("telegram down")}
	b := &countingNotifier{}
	f := NewFanout(a, b)

	err := f.NotifyFill(context.Background(), "asset-1", "BUY", 0.5, 10)
	if err == nil {
		t.Fatal("expected the first sink's error to propagate")
	}
	if b.fills != 1 {
		t.Fatal("expected the second sink to still fire despite the first sink's error")
	}
}
