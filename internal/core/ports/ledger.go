// Package ports defines the contracts between the custody core and its infrastructure:
// the ledger, the order projection store, user profiles and event publishing.
package ports

import (
	"context"
	"encoding/json"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
)

// Ledger functions reachable through the Ledger port. Every function takes the
// acting user's id and role as its first two arguments so the ledger can re-check
// authorization on its own.
const (
	FnCreateDelivery             = "CreateDelivery"
	FnReadDelivery               = "ReadDelivery"
	FnGetDeliveryHistory         = "GetDeliveryHistory"
	FnInitiateHandoff            = "InitiateHandoff"
	FnConfirmHandoff             = "ConfirmHandoff"
	FnDisputeHandoff             = "DisputeHandoff"
	FnCancelHandoff              = "CancelHandoff"
	FnCancelDelivery             = "CancelDelivery"
	FnUpdateLocation             = "UpdateLocation"
	FnQueryDeliveriesByCustodian = "QueryDeliveriesByCustodian"
	FnQueryDeliveriesByStatus    = "QueryDeliveriesByStatus"
)

// Fault codes a ledger returns for rejected calls.
const (
	FaultNotFound           = "NOT_FOUND"
	FaultUnauthorized       = "UNAUTHORIZED"
	FaultInvalidTransition  = "INVALID_TRANSITION"
	FaultConflictingHandoff = "CONFLICTING_HANDOFF"
	FaultInvalidArgument    = "INVALID_ARGUMENT"
	FaultInternal           = "INTERNAL"
)

// LedgerFault describes why the ledger rejected a call. Operation and FromState are
// set for custody rejections.
type LedgerFault struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Operation string `json:"operation,omitempty"`
	FromState string `json:"fromState,omitempty"`
}

// LedgerResponse is the outcome of a call the ledger answered.
type LedgerResponse struct {
	Success bool            `json:"success"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Fault   *LedgerFault    `json:"fault,omitempty"`
}

// Ledger is the uniform access port to the authoritative ledger.
//
// Invoke submits an ordered, state-mutating transaction; once it returns a successful
// response the transaction is durable. Query runs a read-only function against the
// latest committed state. A non-nil error means the ledger could not be reached or did
// not answer in time: the outcome of an Invoke is then unknown.
type Ledger interface {
	Invoke(ctx context.Context, fn string, args ...string) (LedgerResponse, error)
	Query(ctx context.Context, fn string, args ...string) (LedgerResponse, error)
}

// NewDelivery is the seller's declaration that creates a delivery on the ledger.
type NewDelivery struct {
	ID         delivery.ID
	OrderID    string
	CustomerID string
	Package    kernel.PackageAttributes
	Origin     kernel.Location
}

// DeliveryLedger is the typed view of the ledger functions used by the application.
// Rejections come back as the custody errors of internal/pkg/errs; an unanswered call
// is an *errs.LedgerUnavailableError.
type DeliveryLedger interface {
	CreateDelivery(ctx context.Context, actor kernel.Party, d NewDelivery) error
	ReadDelivery(ctx context.Context, actor kernel.Party, id delivery.ID) (*delivery.Delivery, error)
	GetDeliveryHistory(ctx context.Context, actor kernel.Party, id delivery.ID) ([]delivery.HistoryEntry, error)
	InitiateHandoff(ctx context.Context, actor kernel.Party, id delivery.ID, target kernel.Party) error
	ConfirmHandoff(ctx context.Context, actor kernel.Party, id delivery.ID, loc kernel.Location, pkg kernel.PackageAttributes) error
	DisputeHandoff(ctx context.Context, actor kernel.Party, id delivery.ID, reason delivery.DisputeReason) error
	CancelHandoff(ctx context.Context, actor kernel.Party, id delivery.ID) error
	CancelDelivery(ctx context.Context, actor kernel.Party, id delivery.ID) error
	UpdateLocation(ctx context.Context, actor kernel.Party, id delivery.ID, loc kernel.Location) error
	QueryByCustodian(ctx context.Context, actor kernel.Party, custodianID string) ([]*delivery.Delivery, error)
	QueryByStatus(ctx context.Context, actor kernel.Party, status delivery.Status) ([]*delivery.Delivery, error)
}
