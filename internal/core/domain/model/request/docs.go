// Package request models the read-only view of an incoming service request that
// the dispatch engine scores, decides on and prices.
//
// The package includes:
//   - Snapshot: the immutable attribute set, with optional values resolved once
//     at construction instead of being re-checked by every consumer
//   - Priority, AccessDifficulty, Type and Kind: the enumerations a snapshot carries
//
// A Snapshot never changes after NewSnapshot returns. Re-scoring a request means
// building a new Snapshot from the source record.
package request
