package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/tradewatch/whale-data/internal/metrics"
	"github.com/tradewatch/whale-data/internal/model"
)

// TradeHandler receives parsed trade events.
type TradeHandler interface {
	HandleTrade(ev model.TradeEvent) error
}

// TradeHandlerFunc is a function adapter for TradeHandler.
type TradeHandlerFunc func(model.TradeEvent) error

func (f TradeHandlerFunc) HandleTrade(ev model.TradeEvent) error {
	return f(ev)
}

// SubscriptionSource provides the markets to subscribe to on connect.
type SubscriptionSource interface {
	TopMarkets() []model.Market
}

// TitleResolver resolves a market's display title. Feed frames never
// carry one.
type TitleResolver interface {
	Title(ctx context.Context, conditionID string) (string, bool)
}

// ConnectorConfig holds connector settings.
type ConnectorConfig struct {
	URL               string
	ReconnectDelay    time.Duration // Fixed delay between attempts, no growth
	HeartbeatInterval time.Duration
	WriteTimeout      time.Duration
	BufferSize        int
}

// DefaultConnectorConfig returns sensible defaults.
func DefaultConnectorConfig() ConnectorConfig {
	return ConnectorConfig{
		ReconnectDelay:    5 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		WriteTimeout:      5 * time.Second,
		BufferSize:        1000,
	}
}

// Connector owns the push feed session and its reconnect loop.
type Connector struct {
	cfg     ConnectorConfig
	subs    SubscriptionSource
	titles  TitleResolver
	handler TradeHandler
	logger  *slog.Logger
	metrics *metrics.Metrics

	states chan State

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConnector creates a connector. subs supplies the subscription set
// on every (re)connect; titles may be nil, in which case feed trades
// go out untitled; handler receives each parsed trade.
func NewConnector(cfg ConnectorConfig, subs SubscriptionSource, titles TitleResolver, handler TradeHandler, logger *slog.Logger, m *metrics.Metrics) *Connector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Connector{
		cfg:     cfg,
		subs:    subs,
		titles:  titles,
		handler: handler,
		logger:  logger,
		metrics: m,
		states:  make(chan State, 16),
	}
}

// Start begins the session loop. It does not block the caller.
func (c *Connector) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.runLoop()

	c.logger.Info("feed connector started",
		"url", c.cfg.URL,
		"reconnect_delay", c.cfg.ReconnectDelay,
	)

	return nil
}

// Stop shuts down the session loop and releases the connection.
func (c *Connector) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("feed connector stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// States returns connection-state signals. Signals are dropped, not
// blocked on, when nothing is draining the channel.
func (c *Connector) States() <-chan State {
	return c.states
}

// runLoop reconnects forever with a fixed delay until Stop.
func (c *Connector) runLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		client := NewClient(ClientConfig{
			URL:               c.cfg.URL,
			HeartbeatInterval: c.cfg.HeartbeatInterval,
			PingTimeout:       2 * c.cfg.HeartbeatInterval,
			WriteTimeout:      c.cfg.WriteTimeout,
			BufferSize:        c.cfg.BufferSize,
		}, c.logger)

		if err := client.Connect(c.ctx); err != nil {
			c.logger.Warn("feed connect failed", "error", err)
			c.metrics.IncFeedReconnect()
			if !c.wait() {
				return
			}
			continue
		}

		c.signal(StateConnected)
		c.subscribe(client)
		c.consume(client)
		client.Close()
		c.signal(StateDisconnected)

		select {
		case <-c.ctx.Done():
			return
		default:
		}

		c.metrics.IncFeedReconnect()
		if !c.wait() {
			return
		}
	}
}

// wait sleeps for the fixed reconnect delay; false means shutdown.
func (c *Connector) wait() bool {
	select {
	case <-c.ctx.Done():
		return false
	case <-time.After(c.cfg.ReconnectDelay):
		return true
	}
}

func (c *Connector) signal(s State) {
	select {
	case c.states <- s:
	default:
	}
}

// subscribe re-establishes the market subscription; a fresh session
// has no subscription state.
func (c *Connector) subscribe(client Client) {
	mkts := c.subs.TopMarkets()

	ids := make([]string, 0, len(mkts)*2)
	for _, m := range mkts {
		if len(m.Tokens) > 0 {
			ids = append(ids, m.Tokens...)
		} else {
			ids = append(ids, m.ConditionID)
		}
	}

	if len(ids) == 0 {
		c.logger.Warn("no markets to subscribe, feed will idle until reconnect")
		return
	}

	data, _ := json.Marshal(subscribeMessage{
		SubscribeIDs: ids,
		Kind:         "market",
	})

	if err := client.Send(data); err != nil {
		c.logger.Warn("subscribe failed", "error", err)
		return
	}

	c.logger.Debug("subscribed", "ids", len(ids))
}

// consume drains the client until an error or shutdown.
func (c *Connector) consume(client Client) {
	for {
		select {
		case <-c.ctx.Done():
			return

		case err := <-client.Errors():
			c.logger.Warn("feed connection error", "error", err)
			return

		case msg, ok := <-client.Messages():
			if !ok {
				return
			}
			c.handleFrame(msg)
		}
	}
}

// handleFrame parses one raw frame. Non-JSON control strings, frames
// without a recognized event kind, and aggregate price updates lacking
// a size are dropped without a trace: they carry no notional value and
// must not be double-counted.
func (c *Connector) handleFrame(msg TimestampedMessage) {
	data := bytes.TrimSpace(msg.Data)
	if len(data) == 0 {
		return
	}

	var events []eventWire
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &events); err != nil {
			c.metrics.IncParseDrop()
			return
		}
	case '{':
		var ev eventWire
		if err := json.Unmarshal(data, &ev); err != nil {
			c.metrics.IncParseDrop()
			return
		}
		events = append(events, ev)
	default:
		// Control strings like "PONG"
		return
	}

	for _, ev := range events {
		c.handleEvent(ev, msg.ReceivedAt)
	}
}

func isTradeKind(eventType string) bool {
	return eventType == "trade" || eventType == "last_trade_price"
}

func (c *Connector) handleEvent(ev eventWire, receivedAt time.Time) {
	if !isTradeKind(ev.EventType) || ev.Size == "" || ev.Market == "" {
		return
	}

	price, err := strconv.ParseFloat(ev.Price, 64)
	if err != nil {
		c.metrics.IncParseDrop()
		return
	}
	size, err := strconv.ParseFloat(ev.Size, 64)
	if err != nil {
		c.metrics.IncParseDrop()
		return
	}

	notional := size * price
	if notional < 0 {
		notional = 0
	}

	ts := receivedAt
	if ms, err := strconv.ParseInt(ev.Timestamp, 10, 64); err == nil && ms > 0 {
		ts = time.UnixMilli(ms).UTC()
	}

	// Best-effort title: subscribed markets are pre-cached by the
	// registry refresh, so this rarely leaves the process.
	var title string
	if c.titles != nil {
		title, _ = c.titles.Title(c.ctx, ev.Market)
	}

	trade := model.TradeEvent{
		TradeID:    model.SynthesizeTradeID(ev.Market, ts),
		Market:     ev.Market,
		Asset:      ev.AssetID,
		Side:       normalizeSide(ev.Side),
		Size:       size,
		Price:      price,
		Notional:   notional,
		Timestamp:  ts,
		Title:      title,
		Source:     model.SourceWS,
		ReceivedAt: receivedAt,
	}

	c.metrics.IncReceived(model.SourceWS)

	if err := c.handler.HandleTrade(trade); err != nil {
		c.logger.Warn("trade handler failed", "trade_id", trade.TradeID, "error", err)
	}
}

func normalizeSide(side string) string {
	if side == "SELL" || side == "sell" {
		return model.SideSell
	}
	return model.SideBuy
}
