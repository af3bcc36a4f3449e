// Package errs provides standardized error types for the custody service.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// Validation errors:
//   - ValueIsRequiredError: a required value is missing
//   - ValueIsInvalidError: a value is invalid
//   - ValueIsOutOfRangeError: a value is outside of its allowed bounds
//   - ObjectNotFoundError: an object cannot be found
//
// Custody errors, surfaced to callers with the attempted operation and the
// state the delivery was in:
//   - UnauthorizedError: the actor may not perform the operation
//   - InvalidTransitionError: the operation is undefined for the current state
//   - ConflictingHandoffError: a handoff offer is already outstanding
//   - LedgerUnavailableError: the ledger did not answer, outcome unknown
//   - ProjectionDriftError: an order projection disagreed with the ledger (logged only)
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions
//   - Error() method for formatting the error message
//   - Unwrap() method so errors.Is matches the sentinel
package errs
