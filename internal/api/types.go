package api

// APITrade is a trade record from GET /trades.
type APITrade struct {
	TransactionHash string  `json:"transactionHash"`
	ProxyWallet     string  `json:"proxyWallet"`
	ConditionID     string  `json:"conditionId"`
	Asset           string  `json:"asset"`
	Side            string  `json:"side"` // "BUY" or "SELL"
	Size            float64 `json:"size"`
	Price           float64 `json:"price"`
	USDCSize        float64 `json:"usdcSize,omitempty"` // Raw notional when provided
	Timestamp       int64   `json:"timestamp"`          // Unix seconds

	// Display metadata, may be absent
	Title   string `json:"title,omitempty"`
	Slug    string `json:"slug,omitempty"`
	Outcome string `json:"outcome,omitempty"`
}

// APIMarket is a market record from GET /markets.
type APIMarket struct {
	ConditionID string   `json:"conditionId"`
	Question    string   `json:"question"`
	Slug        string   `json:"slug"`
	Volume24h   float64  `json:"volume24hr"`
	TokenIDs    []string `json:"clobTokenIds"`
}

// GetTradesOptions configures a GetTrades request.
type GetTradesOptions struct {
	Market string // Condition ID filter, empty for all markets
	Limit  int    // Max records, 0 for server default
}
