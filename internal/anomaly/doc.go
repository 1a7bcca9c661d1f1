// Package anomaly implements the whale classifier.
//
// Classification is a pure function of the current window statistics
// and the trade's notional value: per-market deviation is weighted
// more heavily than global deviation, a percentile term rewards trades
// near the top of the recent distribution, and fixed size buckets add
// a step bonus for absolute dollar size.
package anomaly
