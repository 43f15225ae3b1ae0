// Package offer implements the offer lifecycle shared by move jobs, unified
// service requests and waste-pickup jobs.
//
// The package includes:
//   - Offer: a time-boxed proposal of one job to one provider
//   - Status: the state machine Pending -> Accepted | Rejected | Expired
//
// Key business rules:
//   - Every transition leaves Pending; Accepted, Rejected and Expired are terminal
//   - An offer can only be accepted strictly before its deadline
//   - ExpiresAt is always after OfferedAt
//   - Offers are never deleted, only moved to a terminal status
//
// The aggregate enforces the rules for a single instance. Exclusivity between
// concurrent callers is the job of the repository, which applies transitions as a
// compare-and-set on the Pending status.
package offer
