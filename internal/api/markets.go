package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetTopMarkets fetches markets ordered by 24h volume, highest first.
func (c *Client) GetTopMarkets(ctx context.Context, limit int) ([]APIMarket, error) {
	query := url.Values{}
	query.Set("order", "volume24hr")
	query.Set("ascending", "false")
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var markets []APIMarket
	if err := c.get(ctx, "/markets", query, &markets); err != nil {
		return nil, err
	}

	return markets, nil
}

// GetMarket fetches a single market by condition ID.
func (c *Client) GetMarket(ctx context.Context, conditionID string) (*APIMarket, error) {
	var market APIMarket
	if err := c.get(ctx, "/markets/"+url.PathEscape(conditionID), nil, &market); err != nil {
		return nil, err
	}

	if market.ConditionID == "" {
		return nil, fmt.Errorf("market %s: empty response", conditionID)
	}

	return &market, nil
}
