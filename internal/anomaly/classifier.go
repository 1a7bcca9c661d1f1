package anomaly

import (
	"math"

	"github.com/tradewatch/whale-data/internal/model"
	"github.com/tradewatch/whale-data/internal/stats"
)

// Combined z-score weights: "large for this market" is a stronger
// signal than "large overall".
const (
	globalWeight = 0.4
	marketWeight = 0.6
)

// Decision thresholds.
const (
	anomalyZThreshold        = 1.5
	anomalyNotionalThreshold = 5000
)

// Classifier scores trades against the rolling statistics engine.
type Classifier struct {
	engine *stats.Engine
}

// NewClassifier creates a classifier reading from engine.
func NewClassifier(engine *stats.Engine) *Classifier {
	return &Classifier{engine: engine}
}

// Classify scores a trade. It must be called after the trade's notional
// has been observed into both the global and the market window.
func (c *Classifier) Classify(ev model.TradeEvent) model.AnomalyResult {
	notional := ev.Notional

	globalZ := c.engine.ZScore(stats.StreamGlobal, notional)
	marketZ := c.engine.ZScore(ev.Market, notional)
	percentile := c.engine.Percentile(stats.StreamGlobal, notional)

	combinedZ := globalWeight*globalZ + marketWeight*marketZ

	score := math.Min(40, math.Abs(combinedZ)*12) +
		math.Min(30, (percentile-50)*0.6) +
		sizeBucketBonus(notional)
	score = clamp(score, 0, 100)

	return model.AnomalyResult{
		IsAnomaly:      combinedZ > anomalyZThreshold || notional > anomalyNotionalThreshold,
		CombinedZ:      combinedZ,
		Percentile:     percentile,
		SuspicionScore: score,
		Severity:       severity(combinedZ, notional),
	}
}

// sizeBucketBonus adds a step bonus at fixed notional thresholds,
// highest bucket first.
func sizeBucketBonus(notional float64) float64 {
	switch {
	case notional > 100000:
		return 30
	case notional > 50000:
		return 25
	case notional > 25000:
		return 20
	case notional > 10000:
		return 15
	case notional > 5000:
		return 10
	default:
		return 0
	}
}

// severity discretizes combined z-score and absolute size; the first
// matching tier wins.
func severity(combinedZ, notional float64) string {
	switch {
	case combinedZ > 4 || notional > 100000:
		return model.SeverityExtreme
	case combinedZ > 3 || notional > 50000:
		return model.SeverityHigh
	case combinedZ > 2.5 || notional > 25000:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
