package poll

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tradewatch/whale-data/internal/api"
	"github.com/tradewatch/whale-data/internal/metrics"
	"github.com/tradewatch/whale-data/internal/model"
)

// MarketSource provides the tracked markets to poll per-market pages for.
type MarketSource interface {
	TopMarkets() []model.Market
}

// TitleResolver resolves a market's display title.
type TitleResolver interface {
	Title(ctx context.Context, conditionID string) (string, bool)
}

// TradeHandler receives fetched trades.
type TradeHandler interface {
	HandleTrade(ev model.TradeEvent) error
}

// TradeHandlerFunc is a function adapter for TradeHandler.
type TradeHandlerFunc func(model.TradeEvent) error

func (f TradeHandlerFunc) HandleTrade(ev model.TradeEvent) error {
	return f(ev)
}

// Config holds collector configuration.
type Config struct {
	Interval  time.Duration // Poll interval (default: 5s)
	PageLimit int           // Trades per page (default: 100)
	Timeout   time.Duration // Per-request timeout (default: 10s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:  5 * time.Second,
		PageLimit: 100,
		Timeout:   10 * time.Second,
	}
}

// Collector periodically fetches recent trades via REST API.
type Collector struct {
	cfg     Config
	client  *api.Client
	markets MarketSource
	titles  TitleResolver
	handler TradeHandler
	logger  *slog.Logger
	metrics *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Collector. titles may be nil, in which case trades
// without a title from the wire are forwarded untitled.
func New(cfg Config, client *api.Client, markets MarketSource, titles TitleResolver, handler TradeHandler, logger *slog.Logger, m *metrics.Metrics) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		cfg:     cfg,
		client:  client,
		markets: markets,
		titles:  titles,
		handler: handler,
		logger:  logger,
		metrics: m,
	}
}

// Start begins the polling loop.
func (c *Collector) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.run()

	c.logger.Info("trade collector started",
		"interval", c.cfg.Interval,
		"page_limit", c.cfg.PageLimit,
	)

	return nil
}

// Stop gracefully shuts down the collector.
func (c *Collector) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("trade collector stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main polling loop.
func (c *Collector) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	c.pollAll()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.pollAll()
		}
	}
}

// pollAll fetches the global page and every tracked market's page in
// parallel. A failed page is logged and skipped; the rest of the cycle
// still lands.
func (c *Collector) pollAll() {
	start := time.Now()

	markets := c.markets.TopMarkets()

	var forwarded, errors atomic.Int64

	g, gctx := errgroup.WithContext(c.ctx)

	g.Go(func() error {
		n, err := c.pollPage(gctx, "")
		if err != nil {
			c.logger.Warn("failed to poll recent trades", "err", err)
			c.metrics.IncPollError()
			errors.Add(1)
			return nil
		}
		forwarded.Add(n)
		return nil
	})

	for _, market := range markets {
		conditionID := market.ConditionID
		g.Go(func() error {
			n, err := c.pollPage(gctx, conditionID)
			if err != nil {
				c.logger.Warn("failed to poll market trades",
					"market", conditionID,
					"err", err,
				)
				c.metrics.IncPollError()
				errors.Add(1)
				return nil
			}
			forwarded.Add(n)
			return nil
		})
	}

	g.Wait()

	c.logger.Debug("poll cycle complete",
		"markets", len(markets),
		"forwarded", forwarded.Load(),
		"errors", errors.Load(),
		"duration", time.Since(start),
	)
}

// pollPage fetches one page of trades and forwards each one. An empty
// conditionID fetches the cross-market recent page.
func (c *Collector) pollPage(ctx context.Context, conditionID string) (int64, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var (
		trades []api.APITrade
		err    error
	)
	if conditionID == "" {
		trades, err = c.client.GetRecentTrades(reqCtx, c.cfg.PageLimit)
	} else {
		trades, err = c.client.GetMarketTrades(reqCtx, conditionID, c.cfg.PageLimit)
	}
	if err != nil {
		return 0, err
	}

	receivedAt := time.Now()

	var forwarded int64
	for _, t := range trades {
		ev := t.ToModel(receivedAt)
		if !c.resolveTitle(ctx, &ev) {
			continue
		}

		c.metrics.IncReceived(model.SourceREST)
		forwarded++

		if c.handler != nil {
			if err := c.handler.HandleTrade(ev); err != nil {
				c.logger.Warn("trade handler failed", "trade_id", ev.TradeID, "err", err)
			}
		}
	}

	return forwarded, nil
}

// resolveTitle fills in a missing title from the resolver; false means
// the trade should be dropped.
func (c *Collector) resolveTitle(ctx context.Context, ev *model.TradeEvent) bool {
	if ev.Title != "" || c.titles == nil {
		return true
	}

	title, ok := c.titles.Title(ctx, ev.Market)
	if !ok {
		c.logger.Debug("dropping trade with unresolvable title",
			"trade_id", ev.TradeID,
			"market", ev.Market,
		)
		c.metrics.IncTitleDrop()
		return false
	}

	ev.Title = title
	return true
}
