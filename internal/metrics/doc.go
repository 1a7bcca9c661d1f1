// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Trades received per source and parse/title drops
//   - Dedup hits and pipeline throughput
//   - Anomalies by severity
//   - Feed reconnects and poll cycle errors
//   - Sink errors and intake depth
package metrics
