package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tradewatch/whale-data/internal/anomaly"
	"github.com/tradewatch/whale-data/internal/dedup"
	"github.com/tradewatch/whale-data/internal/metrics"
	"github.com/tradewatch/whale-data/internal/model"
	"github.com/tradewatch/whale-data/internal/stats"
)

// Sink receives every anomalous trade. Sinks are called from the
// single consumer goroutine; slow sinks should buffer internally.
type Sink interface {
	Name() string
	Write(ctx context.Context, rec model.ScoredTrade) error
}

// Config holds pipeline configuration.
type Config struct {
	BufferSize  int // Initial intake buffer capacity (default: 1000)
	RecentKeep  int // Recent anomalies retained for the debug surface (default: 100)
	DedupMax    int // Dedup cache ceiling (default: 10000)
	DedupTrimTo int // Dedup cache size after a trim (default: 5000)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:  1000,
		RecentKeep:  100,
		DedupMax:    10000,
		DedupTrimTo: 5000,
	}
}

// Stats contains pipeline counters and gauges.
type Stats struct {
	Received   int64 // Trades accepted into the intake buffer
	Duplicates int64 // Trades dropped by dedup
	Processed  int64 // Trades that reached the stats engine
	Anomalies  int64 // Trades flagged anomalous
	Depth      int   // Current intake buffer depth
	Markets    int   // Distinct per-market windows
}

// Orchestrator owns the single-consumer classification path.
type Orchestrator struct {
	cfg        Config
	seen       *dedup.Cache
	engine     *stats.Engine
	classifier *anomaly.Classifier
	sinks      []Sink
	logger     *slog.Logger
	metrics    *metrics.Metrics

	intake *intakeBuffer

	// Recent anomalies ring, newest first on read.
	recentMu sync.RWMutex
	recent   []model.ScoredTrade

	statsMu    sync.RWMutex
	received   int64
	duplicates int64
	processed  int64
	anomalies  int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an orchestrator. The engine is shared with the
// classifier; sinks may be empty.
func New(cfg Config, engine *stats.Engine, sinks []Sink, logger *slog.Logger, m *metrics.Metrics) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:        cfg,
		seen:       dedup.New(cfg.DedupMax, cfg.DedupTrimTo),
		engine:     engine,
		classifier: anomaly.NewClassifier(engine),
		sinks:      sinks,
		logger:     logger,
		metrics:    m,
		intake:     newIntakeBuffer(cfg.BufferSize),
	}
}

// Start begins the consumer loop.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.ctx, o.cancel = context.WithCancel(ctx)

	o.wg.Add(1)
	go o.consumeLoop()

	o.logger.Info("pipeline started",
		"buffer_size", o.cfg.BufferSize,
		"sinks", len(o.sinks),
	)

	return nil
}

// Stop drains the consumer and shuts down.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.intake.close()
	if o.cancel != nil {
		o.cancel()
	}

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.logger.Info("pipeline stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleTrade enqueues a trade from either source. Safe for concurrent
// producers. Returns nil once the trade is buffered.
func (o *Orchestrator) HandleTrade(ev model.TradeEvent) error {
	if !o.intake.push(ev) {
		return nil // Shutting down; drop silently
	}

	o.statsMu.Lock()
	o.received++
	o.statsMu.Unlock()

	o.metrics.SetIntakeDepth(o.intake.len())
	return nil
}

// consumeLoop is the single consumer: every trade passes dedup, the
// stats engine, and the classifier exactly once, in arrival order.
func (o *Orchestrator) consumeLoop() {
	defer o.wg.Done()

	for {
		ev, ok := o.intake.pop()
		if !ok {
			return
		}
		o.process(ev)
	}
}

func (o *Orchestrator) process(ev model.TradeEvent) {
	if o.seen.Seen(ev.TradeID) {
		o.statsMu.Lock()
		o.duplicates++
		o.statsMu.Unlock()
		o.metrics.IncDuplicate()
		return
	}

	// Observe before classifying: the trade's own notional is part of
	// the window it is judged against.
	o.engine.Observe(ev.Market, ev.Notional)
	result := o.classifier.Classify(ev)

	o.statsMu.Lock()
	o.processed++
	if result.IsAnomaly {
		o.anomalies++
	}
	o.statsMu.Unlock()

	o.metrics.SetIntakeDepth(o.intake.len())
	o.metrics.SetMarketWindows(o.engine.MarketCount())

	// Ordinary trades are baseline only: they update the windows but
	// never leave the process.
	if !result.IsAnomaly {
		return
	}

	o.metrics.IncAnomaly(result.Severity)

	rec := model.ScoredTrade{Trade: ev, Result: result}
	o.remember(rec)

	o.logger.Info("whale trade detected",
		"trade_id", ev.TradeID,
		"market", ev.Market,
		"title", ev.Title,
		"side", ev.Side,
		"notional", ev.Notional,
		"combined_z", result.CombinedZ,
		"score", result.SuspicionScore,
		"severity", result.Severity,
		"source", ev.Source,
	)

	for _, sink := range o.sinks {
		if err := sink.Write(o.ctx, rec); err != nil {
			o.logger.Warn("sink write failed",
				"sink", sink.Name(),
				"trade_id", ev.TradeID,
				"err", err,
			)
			o.metrics.IncSinkError(sink.Name())
		}
	}
}

// remember appends to the recent-anomalies ring.
func (o *Orchestrator) remember(rec model.ScoredTrade) {
	o.recentMu.Lock()
	defer o.recentMu.Unlock()

	o.recent = append(o.recent, rec)
	if len(o.recent) > o.cfg.RecentKeep {
		o.recent = o.recent[len(o.recent)-o.cfg.RecentKeep:]
	}
}

// RecentAnomalies returns the retained anomalies, newest first.
func (o *Orchestrator) RecentAnomalies() []model.ScoredTrade {
	o.recentMu.RLock()
	defer o.recentMu.RUnlock()

	out := make([]model.ScoredTrade, len(o.recent))
	for i, rec := range o.recent {
		out[len(o.recent)-1-i] = rec
	}
	return out
}

// Stats returns current pipeline counters.
func (o *Orchestrator) Stats() Stats {
	o.statsMu.RLock()
	defer o.statsMu.RUnlock()

	return Stats{
		Received:   o.received,
		Duplicates: o.duplicates,
		Processed:  o.processed,
		Anomalies:  o.anomalies,
		Depth:      o.intake.len(),
		Markets:    o.engine.MarketCount(),
	}
}
