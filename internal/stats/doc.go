// Package stats implements the rolling statistics engine.
//
// The engine is the sole owner of all notional-value windows: one
// global window plus one lazily created window per market. Callers
// never see raw window contents; every query observes a consistent
// snapshot under the engine's lock, which makes the engine safe under
// concurrent writers from both feed sources.
package stats
