// Package poll periodically fetches recent trades over REST.
//
// Each cycle fetches one global recent-trades page plus one page per
// tracked market, all in parallel. The pull path complements the push
// feed: it backfills trades the feed missed and carries wallet and
// title attribution the feed frames lack. Downstream deduplication
// reconciles the overlap between cycles and between sources.
package poll
