// Package model defines shared data types used across the sync pipeline.
//
// Conventions:
//   - Balances: decimal.Decimal (accounting figures never pass through a float)
//   - Account names: hierarchical FullName, segments joined by ":"
//   - Cell addresses: A1 notation (column letters + 1-based row number)
package model
