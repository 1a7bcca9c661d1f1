// Package api provides the REST client for the polling feed.
//
// Endpoints:
//   - GET /trades            recent trades, optionally market-scoped
//   - GET /markets           markets ordered by 24h volume
//   - GET /markets/{id}      single market (title resolution)
//
// All requests carry a context deadline; 5xx and 429 responses are
// retried with jittered exponential backoff.
package api
