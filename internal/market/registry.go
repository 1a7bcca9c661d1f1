package market

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/tradewatch/whale-data/internal/api"
	"github.com/tradewatch/whale-data/internal/model"
)

// Config holds registry settings.
type Config struct {
	RefreshInterval time.Duration // Top-market list refresh cadence (default 5m)
	TopMarkets      int           // Size of the top-volume list (default 10)
	RequestTimeout  time.Duration // Per-request timeout (default 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: 5 * time.Minute,
		TopMarkets:      10,
		RequestTimeout:  10 * time.Second,
	}
}

// Registry caches market titles and tracks the top-volume markets.
type Registry struct {
	cfg    Config
	client *api.Client
	logger *slog.Logger

	mu     sync.RWMutex
	titles map[string]string
	top    []model.Market

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates a registry backed by the data API client.
func NewRegistry(cfg Config, client *api.Client, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		cfg:    cfg,
		client: client,
		logger: logger,
		titles: make(map[string]string),
	}
}

// Start performs the initial top-market sync and begins the refresh
// loop. A failed initial sync is logged, not fatal; the refresh loop
// retries on its normal cadence.
func (r *Registry) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	if err := r.refresh(r.ctx); err != nil {
		r.logger.Warn("initial market sync failed, will retry", "error", err)
	}

	r.wg.Add(1)
	go r.refreshLoop()

	r.logger.Info("market registry started",
		"top_markets", len(r.TopMarkets()),
		"refresh_interval", r.cfg.RefreshInterval,
	)

	return nil
}

// Stop gracefully shuts down the refresh loop.
func (r *Registry) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("market registry stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TopMarkets returns a snapshot of the current top-volume markets.
func (r *Registry) TopMarkets() []model.Market {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Market, len(r.top))
	copy(out, r.top)
	return out
}

// Title resolves a market's display title, fetching and caching on
// miss. Returns false when the market cannot be resolved.
func (r *Registry) Title(ctx context.Context, conditionID string) (string, bool) {
	if conditionID == "" {
		return "", false
	}

	r.mu.RLock()
	title, ok := r.titles[conditionID]
	r.mu.RUnlock()
	if ok {
		return title, title != ""
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	m, err := r.client.GetMarket(fetchCtx, conditionID)
	if err != nil {
		r.logger.Debug("title lookup failed", "market", conditionID, "error", err)
		return "", false
	}

	r.mu.Lock()
	r.titles[conditionID] = m.Question
	r.mu.Unlock()

	return m.Question, m.Question != ""
}

// refreshLoop periodically refreshes the top-market list.
func (r *Registry) refreshLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			if err := r.refresh(r.ctx); err != nil {
				r.logger.Warn("market refresh failed", "error", err)
			}
		}
	}
}

// refresh fetches the top markets and folds their titles into the cache.
func (r *Registry) refresh(ctx context.Context) error {
	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.RequestTimeout)
	defer cancel()

	apiMarkets, err := r.client.GetTopMarkets(fetchCtx, r.cfg.TopMarkets)
	if err != nil {
		return err
	}

	top := make([]model.Market, 0, len(apiMarkets))
	for _, am := range apiMarkets {
		top = append(top, am.ToModel())
	}

	r.mu.Lock()
	r.top = top
	for _, m := range top {
		if m.Title != "" {
			r.titles[m.ConditionID] = m.Title
		}
	}
	r.mu.Unlock()

	r.logger.Debug("market list refreshed", "count", len(top))
	return nil
}
