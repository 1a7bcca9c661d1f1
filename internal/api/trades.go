package api

import (
	"context"
	"net/url"
	"strconv"
)

// GetTrades fetches a page of recent trades, newest first.
func (c *Client) GetTrades(ctx context.Context, opts GetTradesOptions) ([]APITrade, error) {
	query := url.Values{}
	if opts.Market != "" {
		query.Set("market", opts.Market)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	var trades []APITrade
	if err := c.get(ctx, "/trades", query, &trades); err != nil {
		return nil, err
	}

	return trades, nil
}

// GetRecentTrades fetches the most recent trades across all markets.
func (c *Client) GetRecentTrades(ctx context.Context, limit int) ([]APITrade, error) {
	return c.GetTrades(ctx, GetTradesOptions{Limit: limit})
}

// GetMarketTrades fetches the most recent trades for a single market.
func (c *Client) GetMarketTrades(ctx context.Context, conditionID string, limit int) ([]APITrade, error) {
	return c.GetTrades(ctx, GetTradesOptions{Market: conditionID, Limit: limit})
}
