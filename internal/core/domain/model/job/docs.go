// Package job provides the Job aggregate: a priced request waiting to be resolved
// by a provider.
//
// The package includes:
//   - Job: the aggregate root carrying the dispatch decision, the price breakdown,
//     the assigned provider and the agreed price
//   - Status: Open -> Offered -> Assigned -> Completed, with Offered -> Open when
//     every pending offer is gone
//
// Key business rules:
//   - A job can be offered while Open or Offered
//   - Assignment fixes the provider and the agreed price and is final
//   - Only an Assigned job can be completed
//   - Version is used by storage for optimistic locking
package job
