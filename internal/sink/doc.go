// Package sink delivers scored trades to downstream consumers.
//
// Two sinks exist: a batched PostgreSQL writer that persists anomalies
// for later analysis, and a Redis publisher that broadcasts them live.
// Both are fire-and-forget from the pipeline's point of view: a sink
// failure is logged and counted, never propagated back into
// classification.
package sink
