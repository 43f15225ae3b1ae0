// Package kernel provides the shared value objects of the dispatch domain.
//
// The package includes:
//   - UUID: identifier for jobs, offers and providers
//   - Postcode: a normalised postal code with outward code and area accessors,
//     used by route-efficiency scoring and the provider-availability cache
//
// Both are immutable and safe for concurrent use. Their zero values are invalid
// and fail Validate.
package kernel
