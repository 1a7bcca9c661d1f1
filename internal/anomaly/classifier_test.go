package anomaly

import (
	"testing"

	"github.com/tradewatch/whale-data/internal/model"
	"github.com/tradewatch/whale-data/internal/stats"
)

// seedEngine observes ten alternating values so both the global and the
// market window have mean (lo+hi)/2 and population stddev (hi-lo)/2.
func seedEngine(t *testing.T, market string, lo, hi float64) *stats.Engine {
	t.Helper()
	e := stats.NewEngine(stats.DefaultConfig())
	for i := 0; i < 5; i++ {
		e.Observe(market, lo)
		e.Observe(market, hi)
	}
	return e
}

func trade(market string, notional float64) model.TradeEvent {
	return model.TradeEvent{
		TradeID:  "0xt",
		Market:   market,
		Side:     model.SideBuy,
		Notional: notional,
	}
}

func TestClassify_WhaleTrade(t *testing.T) {
	// Baseline mean 200, stddev 100. A 150,000 notional is hundreds of
	// sigmas out on both windows.
	e := seedEngine(t, "0xm", 100, 300)
	c := NewClassifier(e)

	res := c.Classify(trade("0xm", 150000))

	if !res.IsAnomaly {
		t.Error("IsAnomaly = false, want true")
	}
	if res.Severity != model.SeverityExtreme {
		t.Errorf("Severity = %q, want EXTREME", res.Severity)
	}
	if res.CombinedZ < 4 {
		t.Errorf("CombinedZ = %f, want > 4", res.CombinedZ)
	}
	if res.Percentile != 100 {
		t.Errorf("Percentile = %f, want 100", res.Percentile)
	}
	// z term capped at 40, percentile term capped at 30, bucket 30: the
	// intermediate sum reaches 100 and the clamp holds it there.
	if res.SuspicionScore != 100 {
		t.Errorf("SuspicionScore = %f, want 100", res.SuspicionScore)
	}
}

func TestClassify_OrdinaryTrade(t *testing.T) {
	// Baseline mean 3000, stddev 1000. A 3000 notional sits dead center.
	e := seedEngine(t, "0xm", 2000, 4000)
	c := NewClassifier(e)

	res := c.Classify(trade("0xm", 3000))

	if res.IsAnomaly {
		t.Error("IsAnomaly = true, want false")
	}
	if res.Severity != model.SeverityLow {
		t.Errorf("Severity = %q, want LOW", res.Severity)
	}
	if res.SuspicionScore >= 20 {
		t.Errorf("SuspicionScore = %f, want < 20", res.SuspicionScore)
	}
}

func TestClassify_NotionalThresholdAlone(t *testing.T) {
	// Cold windows: z-scores are 0, so only the absolute size rule can
	// fire.
	e := stats.NewEngine(stats.DefaultConfig())
	c := NewClassifier(e)

	res := c.Classify(trade("0xm", 6000))
	if !res.IsAnomaly {
		t.Error("IsAnomaly = false, want true for notional > 5000")
	}
	if res.CombinedZ != 0 {
		t.Errorf("CombinedZ = %f, want 0 on cold windows", res.CombinedZ)
	}

	res = c.Classify(trade("0xm", 4999))
	if res.IsAnomaly {
		t.Error("IsAnomaly = true, want false below both thresholds")
	}
}

func TestClassify_SeverityTiers(t *testing.T) {
	e := stats.NewEngine(stats.DefaultConfig())
	c := NewClassifier(e)

	// With cold windows severity is driven by notional alone.
	tests := []struct {
		notional float64
		want     string
	}{
		{150000, model.SeverityExtreme},
		{100001, model.SeverityExtreme},
		{100000, model.SeverityHigh},
		{60000, model.SeverityHigh},
		{50000, model.SeverityMedium},
		{30000, model.SeverityMedium},
		{25000, model.SeverityLow},
		{1000, model.SeverityLow},
	}

	for _, tt := range tests {
		res := c.Classify(trade("0xm", tt.notional))
		if res.Severity != tt.want {
			t.Errorf("Classify(notional=%f).Severity = %q, want %q", tt.notional, res.Severity, tt.want)
		}
	}
}

func TestClassify_SizeBucketBonus(t *testing.T) {
	tests := []struct {
		notional float64
		want     float64
	}{
		{100001, 30},
		{100000, 25},
		{50001, 25},
		{50000, 20},
		{25001, 20},
		{25000, 15},
		{10001, 15},
		{10000, 10},
		{5001, 10},
		{5000, 0},
		{0, 0},
	}

	for _, tt := range tests {
		if got := sizeBucketBonus(tt.notional); got != tt.want {
			t.Errorf("sizeBucketBonus(%f) = %f, want %f", tt.notional, got, tt.want)
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	e := seedEngine(t, "0xm", 100, 300)
	c := NewClassifier(e)

	ev := trade("0xm", 12345)
	first := c.Classify(ev)
	for i := 0; i < 10; i++ {
		if got := c.Classify(ev); got != first {
			t.Fatalf("Classify not deterministic: %+v vs %+v", got, first)
		}
	}
}
