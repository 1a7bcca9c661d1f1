package sink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradewatch/whale-data/internal/model"
)

// PostgresConfig holds batch writer settings.
type PostgresConfig struct {
	BatchSize     int           // Rows per batch insert (default: 100)
	FlushInterval time.Duration // Max time a row waits in the batch (default: 5s)
}

// DefaultPostgresConfig returns sensible defaults.
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		BatchSize:     100,
		FlushInterval: 5 * time.Second,
	}
}

// anomalyRow is the flattened insert shape for the anomalies table.
type anomalyRow struct {
	TradeID    string
	Market     string
	Asset      string
	Side       string
	Size       float64
	Price      float64
	Notional   float64
	Timestamp  time.Time
	ReceivedAt time.Time
	Wallet     string
	Title      string
	Source     string
	CombinedZ  float64
	Percentile float64
	Score      float64
	Severity   string
}

// PostgresStats contains writer counters.
type PostgresStats struct {
	Inserts   int64
	Conflicts int64
	Flushes   int64
	Errors    int64
}

// Postgres persists anomalous trades in batches. Ordinary trades are
// ignored; only classifier hits reach the table.
type Postgres struct {
	cfg    PostgresConfig
	db     *pgxpool.Pool
	logger *slog.Logger

	batch       []anomalyRow
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stats PostgresStats
}

// NewPostgres creates the postgres sink.
func NewPostgres(cfg PostgresConfig, db *pgxpool.Pool, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{
		cfg:    cfg,
		db:     db,
		logger: logger,
		batch:  make([]anomalyRow, 0, cfg.BatchSize),
	}
}

// Start begins the periodic flush loop.
func (s *Postgres) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.flushTicker = time.NewTicker(s.cfg.FlushInterval)

	s.wg.Add(1)
	go s.flushLoop()

	s.logger.Info("postgres sink started",
		"batch_size", s.cfg.BatchSize,
		"flush_interval", s.cfg.FlushInterval,
	)
	return nil
}

// Stop drains the batch and shuts down.
func (s *Postgres) Stop(ctx context.Context) error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.flushTicker != nil {
		s.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("postgres sink stop timed out")
	}

	// Final flush
	s.flush(context.Background())

	s.logger.Info("postgres sink stopped")
	return nil
}

// Name identifies the sink in logs and metrics.
func (s *Postgres) Name() string { return "postgres" }

// Write buffers an anomalous trade for the next batch insert.
func (s *Postgres) Write(ctx context.Context, rec model.ScoredTrade) error {
	if !rec.Result.IsAnomaly {
		return nil
	}

	row := transform(rec)

	s.batchMu.Lock()
	s.batch = append(s.batch, row)
	shouldFlush := len(s.batch) >= s.cfg.BatchSize
	s.batchMu.Unlock()

	if shouldFlush {
		s.flush(ctx)
	}
	return nil
}

// Stats returns current writer counters.
func (s *Postgres) Stats() PostgresStats {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return s.stats
}

// flushLoop periodically flushes the batch.
func (s *Postgres) flushLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.flushTicker.C:
			s.flush(s.ctx)
		}
	}
}

// transform flattens a scored trade into an insert row.
func transform(rec model.ScoredTrade) anomalyRow {
	return anomalyRow{
		TradeID:    rec.Trade.TradeID,
		Market:     rec.Trade.Market,
		Asset:      rec.Trade.Asset,
		Side:       rec.Trade.Side,
		Size:       rec.Trade.Size,
		Price:      rec.Trade.Price,
		Notional:   rec.Trade.Notional,
		Timestamp:  rec.Trade.Timestamp,
		ReceivedAt: rec.Trade.ReceivedAt,
		Wallet:     rec.Trade.Wallet,
		Title:      rec.Trade.Title,
		Source:     rec.Trade.Source,
		CombinedZ:  rec.Result.CombinedZ,
		Percentile: rec.Result.Percentile,
		Score:      rec.Result.SuspicionScore,
		Severity:   rec.Result.Severity,
	}
}

// flush writes the current batch to the database.
func (s *Postgres) flush(ctx context.Context) {
	s.batchMu.Lock()
	if len(s.batch) == 0 {
		s.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := s.batch
	s.batch = make([]anomalyRow, 0, s.cfg.BatchSize)
	s.batchMu.Unlock()

	start := time.Now()

	conflicts, err := s.batchInsert(ctx, batch)
	if err != nil {
		s.logger.Error("batch insert failed", "error", err, "count", len(batch))
		s.batchMu.Lock()
		s.stats.Errors++
		s.batchMu.Unlock()
		return
	}

	s.batchMu.Lock()
	s.stats.Inserts += int64(len(batch) - conflicts)
	s.stats.Conflicts += int64(conflicts)
	s.stats.Flushes++
	s.batchMu.Unlock()

	s.logger.Debug("flushed anomalies",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}

// batchInsert inserts rows using pgx.Batch with ON CONFLICT DO NOTHING.
func (s *Postgres) batchInsert(ctx context.Context, rows []anomalyRow) (conflicts int, err error) {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO anomalies (
				trade_id, market, asset, side, size, price, notional,
				executed_at, received_at, wallet, title, source,
				combined_z, percentile, suspicion_score, severity
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			ON CONFLICT (trade_id) DO NOTHING
		`, r.TradeID, r.Market, r.Asset, r.Side, r.Size, r.Price, r.Notional,
			r.Timestamp, r.ReceivedAt, r.Wallet, r.Title, r.Source,
			r.CombinedZ, r.Percentile, r.Score, r.Severity)
	}

	results := s.db.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		ct, err := results.Exec()
		if err != nil {
			return 0, err
		}
		if ct.RowsAffected() == 0 {
			conflicts++
		}
	}

	return conflicts, nil
}
