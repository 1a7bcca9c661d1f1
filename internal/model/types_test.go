package model

import (
	"strings"
	"testing"
	"time"
)

func TestSynthesizeTradeID(t *testing.T) {
	ts := time.UnixMilli(1705321845123)

	id := SynthesizeTradeID("0xabc", ts)

	if !strings.HasPrefix(id, "0xabc:1705321845123:") {
		t.Errorf("id = %q, want prefix %q", id, "0xabc:1705321845123:")
	}

	// Same inputs must still yield distinct keys: the suffix exists so
	// two push trades in the same millisecond never collide.
	other := SynthesizeTradeID("0xabc", ts)
	if id == other {
		t.Errorf("two synthesized IDs are equal: %q", id)
	}
}

func TestTradeEvent(t *testing.T) {
	now := time.Now()
	ev := TradeEvent{
		TradeID:    "0xdeadbeef",
		Market:     "0xcond",
		Asset:      "token-1",
		Side:       SideBuy,
		Size:       1200,
		Price:      0.42,
		Notional:   504,
		Timestamp:  now,
		Wallet:     "0xwallet",
		Title:      "Will it rain tomorrow?",
		Source:     SourceREST,
		ReceivedAt: now,
	}

	if ev.Side != "BUY" {
		t.Errorf("Side = %q, want %q", ev.Side, "BUY")
	}
	if ev.Notional < 0 {
		t.Errorf("Notional = %f, must be non-negative", ev.Notional)
	}
	if ev.Source != SourceREST {
		t.Errorf("Source = %q, want %q", ev.Source, SourceREST)
	}
}
