package feed

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw message bytes from the websocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// ClientConfig configures a websocket client.
type ClientConfig struct {
	URL               string        // Websocket URL
	HeartbeatInterval time.Duration // Keep-alive ping cadence while the link is open
	PingTimeout       time.Duration // Max time without traffic before considering the link stale
	WriteTimeout      time.Duration // Write deadline for sends
	BufferSize        int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HeartbeatInterval: 30 * time.Second,
		PingTimeout:       60 * time.Second,
		WriteTimeout:      5 * time.Second,
		BufferSize:        1000,
	}
}

// State is a connection-state signal emitted by the connector.
type State string

const (
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
)

// subscribeMessage is the wire format for a market-channel subscription.
type subscribeMessage struct {
	SubscribeIDs []string `json:"subscribe_ids"`
	Kind         string   `json:"kind"`
}

// eventWire is the wire format for data frames on the market channel.
// Trade-shaped frames carry a size; aggregate price updates do not.
type eventWire struct {
	EventType  string `json:"event_type"`
	AssetID    string `json:"asset_id"`
	Market     string `json:"market"`
	Price      string `json:"price"` // Decimal string, 0..1
	Side       string `json:"side"`
	Size       string `json:"size"`      // Decimal string, absent on price updates
	Timestamp  string `json:"timestamp"` // Milliseconds since epoch
	FeeRateBps string `json:"fee_rate_bps,omitempty"`
}
