package notify

import (
	"context"
	"testing"
)

func TestRecorderReturnsNewestFirst(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()
	_ = r.NotifyFill(ctx, "asset-1", "BUY", 0.5, 10)
	_ = r.NotifyFill(ctx, "asset-2", "SELL", 0.6, 5)

	fills := r.RecentFills(10)
	if len(fills) != 2 {
		t.Fatalf("expected 2 fills, got %d", len(fills))
	}
	if fills[0].AssetID != "asset-2" {
		t.Fatalf("expected newest fill first, got %q", fills[0].AssetID)
	}
}

func TestRecorderBoundsHistory(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()
	for i := 0; i < maxRecordedFills+50; i++ {
		_ = r.NotifyFill(ctx, "asset-1", "BUY", 0.5, 1)
	}
	if len(r.RecentFills(0)) != maxRecordedFills {
		t.Fatalf("expected history capped at %d, got %d", maxRecordedFills, len(r.RecentFills(0)))
	}
}
