// Package api exposes a small read-only HTTP status surface over the
// running bot: liveness, supervisor state, tracked positions and recent
// fills. It is intentionally thin — an operational dashboard reads from
// it, nothing in the trading path depends on it.
package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/GoPolymarket/polymarket-trader/internal/model"
	"github.com/GoPolymarket/polymarket-trader/internal/notify"
)

// StatusProvider exposes the supervisor's run state. supervisor.Supervisor
// implements this.
type StatusProvider interface {
	IsRunning() bool
}

// PositionsProvider exposes the vault's live position/balance view.
// portfolio.PortfolioTracker implements this.
type PositionsProvider interface {
	TotalValue() float64
	LastSync() time.Time
	VaultPosition(assetID string) (model.VaultPosition, bool)
}

// FillsProvider exposes recently recorded fills. notify.Recorder
// implements this.
type FillsProvider interface {
	RecentFills(limit int) []notify.Fill
}

// Server is a minimal HTTP status API for the trading dashboard.
type Server struct {
	httpServer  *http.Server
	status      StatusProvider
	positions   PositionsProvider
	fills       FillsProvider
	dryRun      bool
	tradingMode string
	assets      []string
	startedAt   time.Time
	log         zerolog.Logger
}

// Config bundles Server's fixed, non-runtime-changing state.
type Config struct {
	Addr        string
	DryRun      bool
	TradingMode string
	Assets      []string
}

// NewServer builds a Server bound to cfg.Addr, reading runtime state
// from status/positions/fills at request time. positions and fills may
// be nil when unavailable (e.g. the arb engine runs no portfolio
// tracker); the affected fields are simply omitted from the response.
func NewServer(cfg Config, status StatusProvider, positions PositionsProvider, fills FillsProvider, log zerolog.Logger) *Server {
	s := &Server{
		status:      status,
		positions:   positions,
		fills:       fills,
		dryRun:      cfg.DryRun,
		tradingMode: cfg.TradingMode,
		assets:      cfg.Assets,
		startedAt:   time.Now(),
		log:         log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/positions", s.handlePositions)
	mux.HandleFunc("/api/fills", s.handleFills)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start begins serving HTTP requests in the background. It returns once
// the listener is bound, not once the server stops.
func (s *Server) Start(_ context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("api server listening")
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Warn().Err(err).Msg("api server stopped")
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GET /healthz — liveness probe; always 200 once the process is up.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]interface{}{
		"ok":       true,
		"uptime_s": time.Since(s.startedAt).Seconds(),
	})
}

// GET /api/status — supervisor state, uptime, dry-run flag.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]interface{}{
		"running":      s.status.IsRunning(),
		"dry_run":      s.dryRun,
		"trading_mode": s.tradingMode,
		"uptime_s":     time.Since(s.startedAt).Seconds(),
		"assets":       s.assets,
	}
	if s.positions != nil {
		resp["portfolio_value"] = s.positions.TotalValue()
		resp["portfolio_synced_at"] = s.positions.LastSync()
	}
	s.writeJSON(w, resp)
}

// GET /api/positions?asset=<id> — vault positions. With ?asset= it reports
// that one asset's position; without it, it reports the positions held in
// every asset the server was configured with.
func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	if s.positions == nil {
		s.writeJSON(w, map[string]interface{}{"positions": []model.VaultPosition{}})
		return
	}
	assetID := r.URL.Query().Get("asset")
	if assetID != "" {
		pos, ok := s.positions.VaultPosition(assetID)
		if !ok {
			s.writeJSON(w, map[string]interface{}{"positions": []model.VaultPosition{}})
			return
		}
		s.writeJSON(w, map[string]interface{}{"positions": []model.VaultPosition{pos}})
		return
	}
	var found []model.VaultPosition
	for _, assetID := range s.assets {
		if pos, ok := s.positions.VaultPosition(assetID); ok {
			found = append(found, pos)
		}
	}
	s.writeJSON(w, map[string]interface{}{"positions": found})
}

// GET /api/fills?limit=N — most recent order outcomes, newest first.
func (s *Server) handleFills(w http.ResponseWriter, r *http.Request) {
	if s.fills == nil {
		s.writeJSON(w, map[string]interface{}{"fills": []notify.Fill{}})
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	s.writeJSON(w, map[string]interface{}{"fills": s.fills.RecentFills(limit)})
}
