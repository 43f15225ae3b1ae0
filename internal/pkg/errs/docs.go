// Package errs provides standardized error types for the dispatch application.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// The package includes several error types for common error scenarios:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: the validation
//     family, rejected input that is never coerced (see IsValidation)
//   - ObjectNotFoundError: for when an object cannot be found
//   - InvalidTransitionError: a state machine call attempted from an illegal state
//   - ConfigurationMissingError: no active pricing configuration could be loaded
//   - VersionIsInvalidError: an optimistic concurrency conflict on an aggregate
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method so errors.Is matches the sentinel
package errs
