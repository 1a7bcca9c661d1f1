// Package dedup implements the bounded trade identity cache.
//
// Both feed sources may observe the same underlying trade; the cache is
// the single gate that decides first-seen. It is approximate over
// unbounded time: once the cache trims, evicted keys can reappear as
// new, a bounded duplicate-reprocessing risk traded for bounded memory.
package dedup
