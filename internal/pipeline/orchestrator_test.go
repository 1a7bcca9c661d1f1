package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/tradewatch/whale-data/internal/model"
	"github.com/tradewatch/whale-data/internal/stats"
)

type memorySink struct {
	mu   sync.Mutex
	recs []model.ScoredTrade
	fail bool
}

func (s *memorySink) Name() string { return "memory" }

func (s *memorySink) Write(ctx context.Context, rec model.ScoredTrade) error {
	if s.fail {
		return errors.New("sink down")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *memorySink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

func newTestOrchestrator(t *testing.T, sinks ...Sink) (*Orchestrator, *stats.Engine) {
	t.Helper()

	engine := stats.NewEngine(stats.Config{
		GlobalWindow: 5000,
		MarketWindow: 500,
		MinSamples:   10,
	})

	o := New(DefaultConfig(), engine, sinks, nil, nil)
	if err := o.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { o.Stop(context.Background()) })

	return o, engine
}

func waitForProcessed(t *testing.T, o *Orchestrator, n int64) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if o.Stats().Processed+o.Stats().Duplicates >= n {
			return
		}
		select {
		case <-deadline:
			st := o.Stats()
			t.Fatalf("timeout: processed=%d duplicates=%d, want total %d", st.Processed, st.Duplicates, n)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestOrchestrator_RoundTrip(t *testing.T) {
	sink := &memorySink{}
	o, engine := newTestOrchestrator(t, sink)

	const n = 50
	for i := 0; i < n; i++ {
		ev := model.TradeEvent{
			TradeID:  fmt.Sprintf("0x%d", i),
			Market:   "0xaa",
			Notional: 100,
			Source:   model.SourceREST,
		}
		if err := o.HandleTrade(ev); err != nil {
			t.Fatalf("HandleTrade failed: %v", err)
		}
	}

	waitForProcessed(t, o, n)

	if got := engine.Len(stats.StreamGlobal); got != n {
		t.Errorf("global window = %d, want %d", got, n)
	}
	if got := engine.Len("0xaa"); got != n {
		t.Errorf("market window = %d, want %d", got, n)
	}

	// Ordinary trades are baseline only; nothing reaches the sinks.
	if sink.count() != 0 {
		t.Errorf("sink writes = %d, want 0 for ordinary trades", sink.count())
	}

	st := o.Stats()
	if st.Processed != n || st.Duplicates != 0 {
		t.Errorf("stats = %+v, want processed %d", st, n)
	}
	if st.Markets != 1 {
		t.Errorf("markets = %d, want 1", st.Markets)
	}
}

func TestOrchestrator_DuplicateNeverReachesStats(t *testing.T) {
	o, engine := newTestOrchestrator(t)

	ev := model.TradeEvent{TradeID: "0xdup", Market: "0xaa", Notional: 100}
	o.HandleTrade(ev)
	o.HandleTrade(ev)
	o.HandleTrade(ev)

	waitForProcessed(t, o, 3)

	if got := engine.Len(stats.StreamGlobal); got != 1 {
		t.Errorf("global window = %d, want 1 (duplicates observed)", got)
	}

	st := o.Stats()
	if st.Processed != 1 {
		t.Errorf("processed = %d, want 1", st.Processed)
	}
	if st.Duplicates != 2 {
		t.Errorf("duplicates = %d, want 2", st.Duplicates)
	}
}

func TestOrchestrator_WhaleIsRemembered(t *testing.T) {
	o, _ := newTestOrchestrator(t)

	// Ordinary flow first, then a trade over the hard notional floor.
	for i := 0; i < 20; i++ {
		o.HandleTrade(model.TradeEvent{
			TradeID:  fmt.Sprintf("0xsmall%d", i),
			Market:   "0xaa",
			Notional: 100,
		})
	}
	o.HandleTrade(model.TradeEvent{
		TradeID:  "0xwhale",
		Market:   "0xaa",
		Title:    "Will it rain tomorrow?",
		Notional: 150000,
	})

	waitForProcessed(t, o, 21)

	st := o.Stats()
	if st.Anomalies == 0 {
		t.Fatal("expected at least one anomaly")
	}

	recent := o.RecentAnomalies()
	if len(recent) == 0 {
		t.Fatal("RecentAnomalies is empty")
	}

	// Newest first.
	got := recent[0]
	if got.Trade.TradeID != "0xwhale" {
		t.Errorf("recent[0] = %q, want 0xwhale", got.Trade.TradeID)
	}
	if !got.Result.IsAnomaly {
		t.Error("whale trade not flagged anomalous")
	}
	if got.Result.Severity != model.SeverityExtreme {
		t.Errorf("severity = %q, want %q", got.Result.Severity, model.SeverityExtreme)
	}
}

func TestOrchestrator_RecentRingIsBounded(t *testing.T) {
	engine := stats.NewEngine(stats.DefaultConfig())

	cfg := DefaultConfig()
	cfg.RecentKeep = 5

	o := New(cfg, engine, nil, nil, nil)
	if err := o.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer o.Stop(context.Background())

	// Every one of these clears the notional floor.
	for i := 0; i < 20; i++ {
		o.HandleTrade(model.TradeEvent{
			TradeID:  fmt.Sprintf("0xbig%d", i),
			Market:   "0xaa",
			Notional: 30000,
		})
	}

	waitForProcessed(t, o, 20)

	recent := o.RecentAnomalies()
	if len(recent) != 5 {
		t.Fatalf("recent = %d, want 5", len(recent))
	}
	if recent[0].Trade.TradeID != "0xbig19" {
		t.Errorf("recent[0] = %q, want 0xbig19", recent[0].Trade.TradeID)
	}
}

func TestOrchestrator_SinkFailureDoesNotStall(t *testing.T) {
	bad := &memorySink{fail: true}
	good := &memorySink{}

	o, _ := newTestOrchestrator(t, bad, good)

	// All over the notional floor, so every trade reaches the sinks.
	const n = 10
	for i := 0; i < n; i++ {
		o.HandleTrade(model.TradeEvent{
			TradeID:  fmt.Sprintf("0x%d", i),
			Market:   "0xaa",
			Notional: 30000,
		})
	}

	waitForProcessed(t, o, n)

	// The failing sink never blocks the healthy one.
	if good.count() != n {
		t.Errorf("good sink writes = %d, want %d", good.count(), n)
	}
}

func TestOrchestrator_ConcurrentProducers(t *testing.T) {
	o, engine := newTestOrchestrator(t)

	const producers = 4
	const perProducer = 250

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				o.HandleTrade(model.TradeEvent{
					TradeID:  fmt.Sprintf("p%d-%d", p, i),
					Market:   fmt.Sprintf("0xmkt%d", p),
					Notional: 100,
				})
			}
		}(p)
	}
	wg.Wait()

	waitForProcessed(t, o, producers*perProducer)

	if got := engine.Len(stats.StreamGlobal); got != producers*perProducer {
		t.Errorf("global window = %d, want %d", got, producers*perProducer)
	}
	if got := o.Stats().Markets; got != producers {
		t.Errorf("markets = %d, want %d", got, producers)
	}
}
