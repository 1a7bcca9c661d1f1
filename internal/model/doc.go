// Package model defines shared data types used across the whale-watch pipeline.
//
// Conventions:
//   - Prices: float64 in the 0..1 probability range
//   - Notional: float64 dollars (size * price)
//   - Timestamps: time.Time, millisecond source precision
//   - IDs: string condition/asset identifiers, string trade IDs
package model
