// Package pipeline fans both trade sources into a single classification
// path: intake buffer, dedup, rolling statistics, anomaly scoring, and
// sink dispatch.
//
// Producers call HandleTrade from their own goroutines; a single
// consumer drains the intake buffer so the dedup cache and the stats
// engine see every trade exactly once and in one order. A duplicate
// trade ID is dropped before it can touch the statistics.
package pipeline
