package notify

import (
	"context"
	"sync"
	"time"
)

// Fill is one recorded NotifyFill call, kept for the status API's
// /api/fills endpoint.
type Fill struct {
	Time    time.Time `json:"time"`
	AssetID string    `json:"asset_id"`
	Side    string    `json:"side"`
	Price   float64   `json:"price"`
	Size    float64   `json:"size"`
}

// maxRecordedFills bounds the Recorder's ring buffer; older fills are
// dropped once the bound is reached.
const maxRecordedFills = 200

// Recorder implements Notifier purely to keep a bounded history of
// fills for the read-only status API — it never sends anything itself,
// so it is always safe to add as one more Fanout sink.
type Recorder struct {
	mu    sync.RWMutex
	fills []Fill
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) NotifyFill(_ context.Context, assetID, side string, price, size float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fills = append(r.fills, Fill{Time: time.Now(), AssetID: assetID, Side: side, Price: price, Size: size})
	if len(r.fills) > maxRecordedFills {
		r.fills = r.fills[len(r.fills)-maxRecordedFills:]
	}
	return nil
}

func (r *Recorder) NotifyArbitrage(_ context.Context, _, _ string, _, _, _ float64) error { return nil }
func (r *Recorder) NotifyStopLoss(_ context.Context, _ string, _ float64) error           { return nil }
func (r *Recorder) NotifyEmergencyStop(_ context.Context) error                           { return nil }
func (r *Recorder) NotifyDailySummary(_ context.Context, _ float64, _ int, _ float64) error {
	return nil
}

// RecentFills returns up to limit of the most recently recorded fills,
// newest first.
func (r *Recorder) RecentFills(limit int) []Fill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 || limit > len(r.fills) {
		limit = len(r.fills)
	}
	out := make([]Fill, limit)
	for i := 0; i < limit; i++ {
		out[i] = r.fills[len(r.fills)-1-i]
	}
	return out
}
