package api

import (
	"strings"
	"time"

	"github.com/tradewatch/whale-data/internal/model"
)

// ToModel converts a wire trade to the canonical TradeEvent.
// Notional prefers the raw USDC size when the API provides one and
// falls back to size*price. Negative sizes or prices normalize to a
// zero notional rather than a negative one.
func (t APITrade) ToModel(receivedAt time.Time) model.TradeEvent {
	notional := t.USDCSize
	if notional <= 0 {
		notional = t.Size * t.Price
	}
	if notional < 0 {
		notional = 0
	}

	return model.TradeEvent{
		TradeID:    t.TransactionHash,
		Market:     t.ConditionID,
		Asset:      t.Asset,
		Side:       NormalizeSide(t.Side),
		Size:       t.Size,
		Price:      t.Price,
		Notional:   notional,
		Timestamp:  time.Unix(t.Timestamp, 0).UTC(),
		Wallet:     t.ProxyWallet,
		Title:      t.Title,
		Source:     model.SourceREST,
		ReceivedAt: receivedAt,
	}
}

// ToModel converts a wire market to the registry model.
func (m APIMarket) ToModel() model.Market {
	return model.Market{
		ConditionID: m.ConditionID,
		Title:       m.Question,
		Slug:        m.Slug,
		Volume24h:   m.Volume24h,
		Tokens:      m.TokenIDs,
	}
}

// NormalizeSide maps wire side strings to model.SideBuy / model.SideSell.
// Unknown values default to BUY; the classifier only consumes notional.
func NormalizeSide(side string) string {
	if strings.EqualFold(side, "sell") {
		return model.SideSell
	}
	return model.SideBuy
}
