// Package feed implements the websocket push feed connector.
//
// The connector keeps one streaming session open against the market
// channel, re-subscribing to the current top markets on every
// (re)connect since a fresh session carries no subscription state.
// Reconnection uses a fixed delay with no backoff growth and no retry
// cap: the upstream is assumed highly available and the feed is
// best-effort alongside the polling source.
package feed
