// Package market implements the title registry.
//
// The registry caches conditionID -> display title lookups (one fetch
// per market, not per trade) and maintains the top-volume market list
// that drives feed subscriptions and entity-scoped polling. The list
// refreshes on a slow cadence; title cache entries live for the
// process lifetime.
package market
