package errs

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrConflictingHandoff = errors.New("conflicting handoff")
	ErrLedgerUnavailable  = errors.New("ledger unavailable")
	ErrProjectionDrift    = errors.New("projection drift")
)

// UnauthorizedError is returned when the caller has no right to perform
// Operation on a delivery in FromState.
type UnauthorizedError struct {
	Operation string
	FromState string
	Reason    string
}

func NewUnauthorizedError(operation, fromState, reason string) *UnauthorizedError {
	return &UnauthorizedError{
		Operation: operation,
		FromState: fromState,
		Reason:    reason,
	}
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("%s: cannot %s from %s: %s", ErrUnauthorized, e.Operation, e.FromState, e.Reason)
}

func (e *UnauthorizedError) Unwrap() error {
	return ErrUnauthorized
}

// InvalidTransitionError is returned when Operation is not defined for FromState.
type InvalidTransitionError struct {
	Operation string
	FromState string
	Reason    string
}

func NewInvalidTransitionError(operation, fromState, reason string) *InvalidTransitionError {
	return &InvalidTransitionError{
		Operation: operation,
		FromState: fromState,
		Reason:    reason,
	}
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s from %s: %s", ErrInvalidTransition, e.Operation, e.FromState, e.Reason)
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ConflictingHandoffError is returned when a second handoff offer is made while
// one is still outstanding, including the loser of a concurrent initiate race.
type ConflictingHandoffError struct {
	Operation string
	FromState string
}

func NewConflictingHandoffError(operation, fromState string) *ConflictingHandoffError {
	return &ConflictingHandoffError{
		Operation: operation,
		FromState: fromState,
	}
}

func (e *ConflictingHandoffError) Error() string {
	return fmt.Sprintf("%s: cannot %s from %s: a handoff is already pending",
		ErrConflictingHandoff, e.Operation, e.FromState)
}

func (e *ConflictingHandoffError) Unwrap() error {
	return ErrConflictingHandoff
}

// LedgerUnavailableError means the ledger did not answer. The outcome of the
// call is unknown: the caller must re-query before retrying.
type LedgerUnavailableError struct {
	Function string
	Cause    error
}

func NewLedgerUnavailableError(function string, cause error) *LedgerUnavailableError {
	return &LedgerUnavailableError{
		Function: function,
		Cause:    cause,
	}
}

func (e *LedgerUnavailableError) Error() string {
	msg := fmt.Sprintf("%s: outcome of %s is unknown, re-query current state before retrying",
		ErrLedgerUnavailable, e.Function)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *LedgerUnavailableError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrLedgerUnavailable}
	}
	return []error{ErrLedgerUnavailable, e.Cause}
}

// ProjectionDriftError describes an order whose projected status disagreed with
// the ledger. It is logged by the projector and never returned to callers.
type ProjectionDriftError struct {
	OrderID    string
	DeliveryID string
	Projected  string
	Ledger     string
}

func NewProjectionDriftError(orderID, deliveryID, projected, ledger string) *ProjectionDriftError {
	return &ProjectionDriftError{
		OrderID:    orderID,
		DeliveryID: deliveryID,
		Projected:  projected,
		Ledger:     ledger,
	}
}

func (e *ProjectionDriftError) Error() string {
	return fmt.Sprintf("%s: order %s mirrors %s but delivery %s is %s",
		ErrProjectionDrift, e.OrderID, e.Projected, e.DeliveryID, e.Ledger)
}

func (e *ProjectionDriftError) Unwrap() error {
	return ErrProjectionDrift
}
