package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Trade sources.
const (
	SourceWS   = "ws"   // push feed (websocket)
	SourceREST = "rest" // polling feed (data API)
)

// Trade sides.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// TradeEvent is the canonical, post-normalization trade record.
//
// TradeID is the source-provided transaction hash when the trade came
// from the polling feed. Push-feed trades carry no hash; the connector
// synthesizes an ID instead (see SynthesizeTradeID). A synthesized ID
// cannot match the real hash of the same trade arriving later via the
// poll feed, so occasional cross-source double counting is accepted.
type TradeEvent struct {
	TradeID    string    `json:"trade_id"`    // Dedup key (transaction hash or synthesized)
	Market     string    `json:"market"`      // Condition ID
	Asset      string    `json:"asset"`       // Outcome token ID
	Side       string    `json:"side"`        // SideBuy or SideSell
	Size       float64   `json:"size"`        // Number of shares
	Price      float64   `json:"price"`       // Execution price, 0..1
	Notional   float64   `json:"notional"`    // Size * Price, always >= 0
	Timestamp  time.Time `json:"timestamp"`   // Execution time (exchange clock)
	Wallet     string    `json:"wallet"`      // Taker wallet, empty for push-feed trades
	Title      string    `json:"title"`       // Market display title, empty if unresolved
	Source     string    `json:"source"`      // SourceWS or SourceREST
	ReceivedAt time.Time `json:"received_at"` // Local receive time
}

// SynthesizeTradeID builds a dedup key for push-feed trades that lack a
// transaction hash: market, millisecond timestamp, random suffix.
func SynthesizeTradeID(market string, ts time.Time) string {
	return fmt.Sprintf("%s:%d:%s", market, ts.UnixMilli(), uuid.NewString()[:8])
}

// Market is a tradeable market known to the title registry.
type Market struct {
	ConditionID string   // Primary key
	Title       string   // Display title (question text)
	Slug        string   // URL slug
	Volume24h   float64  // 24-hour dollar volume
	Tokens      []string // Outcome token IDs, used for feed subscriptions
}

// Severity tiers, ordered from least to most severe.
const (
	SeverityLow     = "LOW"
	SeverityMedium  = "MEDIUM"
	SeverityHigh    = "HIGH"
	SeverityExtreme = "EXTREME"
)

// AnomalyResult is the classifier verdict for a single trade. Computed
// fresh per TradeEvent and never mutated after creation.
type AnomalyResult struct {
	IsAnomaly      bool    `json:"is_anomaly"`
	CombinedZ      float64 `json:"combined_z"`      // 0.4*global + 0.6*market, can be negative
	Percentile     float64 `json:"percentile"`      // 0-100, rank within the global window
	SuspicionScore float64 `json:"suspicion_score"` // 0-100, clamped
	Severity       string  `json:"severity"`        // LOW, MEDIUM, HIGH, EXTREME
}

// ScoredTrade pairs a trade with its classifier verdict. This is the
// unit handed to sinks and surfaced on the debug endpoints.
type ScoredTrade struct {
	Trade  TradeEvent    `json:"trade"`
	Result AnomalyResult `json:"result"`
}
