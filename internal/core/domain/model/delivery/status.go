package delivery

import (
	"fmt"
	"strings"

	"custody/internal/pkg/errs"
)

// Status is the lifecycle state of a delivery as recorded on the ledger.
// It is a closed set: values crossing the ledger boundary go through ParseStatus.
//
// State transitions:
//
//	PENDING_CONFIRMATION ──cancel──> CANCELLED
//	PENDING_PICKUP ──initiate──> PENDING_PICKUP_HANDOFF ──confirm──> IN_TRANSIT
//	       │  ^                      │        │
//	       │  └────────cancel────────┘        └─dispute─> DISPUTED_PICKUP
//	       └──cancel──> CANCELLED
//	IN_TRANSIT ──initiate──> PENDING_TRANSIT_HANDOFF ──confirm──> IN_TRANSIT
//	       │                         └─dispute─> DISPUTED_TRANSIT_HANDOFF
//	       └──initiate(customer)──> PENDING_DELIVERY_CONFIRMATION ──confirm──> CONFIRMED_DELIVERY
//	                                        └─dispute─> DISPUTED_DELIVERY
type Status string

const (
	// PendingConfirmation is the state of an order the seller has not confirmed yet.
	PendingConfirmation Status = "PENDING_CONFIRMATION"
	// PendingPickup is the initial ledger state: created by the seller, nobody holds the package.
	PendingPickup Status = "PENDING_PICKUP"
	// PendingPickupHandoff means the seller offered the package to a transporter.
	PendingPickupHandoff Status = "PENDING_PICKUP_HANDOFF"
	// DisputedPickup means the first transporter rejected the pickup handoff.
	DisputedPickup Status = "DISPUTED_PICKUP"
	// InTransit means a transporter holds the package.
	InTransit Status = "IN_TRANSIT"
	// PendingTransitHandoff means the custodian offered the package to another transporter.
	PendingTransitHandoff Status = "PENDING_TRANSIT_HANDOFF"
	// DisputedTransitHandoff means a transporter rejected a transit handoff.
	DisputedTransitHandoff Status = "DISPUTED_TRANSIT_HANDOFF"
	// PendingDeliveryConfirmation means the custodian offered the package to the customer.
	PendingDeliveryConfirmation Status = "PENDING_DELIVERY_CONFIRMATION"
	// ConfirmedDelivery is terminal: the customer accepted the package.
	ConfirmedDelivery Status = "CONFIRMED_DELIVERY"
	// DisputedDelivery means the customer rejected the final handoff.
	DisputedDelivery Status = "DISPUTED_DELIVERY"
	// Cancelled is terminal: the customer cancelled before pickup.
	Cancelled Status = "CANCELLED"
)

// legacyDisputedPickup is the name older ledger records use for DisputedPickup.
const legacyDisputedPickup = "DISPUTED_PICKUP_HANDOFF"

var statuses = map[Status]struct{}{
	PendingConfirmation:         {},
	PendingPickup:               {},
	PendingPickupHandoff:        {},
	DisputedPickup:              {},
	InTransit:                   {},
	PendingTransitHandoff:       {},
	DisputedTransitHandoff:      {},
	PendingDeliveryConfirmation: {},
	ConfirmedDelivery:           {},
	DisputedDelivery:            {},
	Cancelled:                   {},
}

// ParseStatus converts a ledger or projection value into a Status.
// It fails on anything outside the closed set.
func ParseStatus(s string) (Status, error) {
	v := strings.TrimSpace(s)
	if v == legacyDisputedPickup {
		return DisputedPickup, nil
	}
	st := Status(v)
	if err := st.Validate(); err != nil {
		return "", err
	}
	return st, nil
}

// Validate reports whether s is a member of the closed status set.
func (s Status) Validate() error {
	if _, ok := statuses[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a delivery status", string(s)))
	}
	return nil
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no transition is defined out of s.
func (s Status) IsTerminal() bool {
	return s == ConfirmedDelivery || s == Cancelled
}

// AwaitsHandoff reports whether s has an outstanding handoff offer.
func (s Status) AwaitsHandoff() bool {
	return s == PendingPickupHandoff || s == PendingTransitHandoff || s == PendingDeliveryConfirmation
}

// IsDisputed reports whether s is frozen by a disputed handoff.
func (s Status) IsDisputed() bool {
	return s == DisputedPickup || s == DisputedTransitHandoff || s == DisputedDelivery
}

// disputed returns the dispute state matching a pending-handoff state.
func (s Status) disputed() (Status, bool) {
	switch s { //nolint:exhaustive // only pending-handoff states dispute
	case PendingPickupHandoff:
		return DisputedPickup, true
	case PendingTransitHandoff:
		return DisputedTransitHandoff, true
	case PendingDeliveryConfirmation:
		return DisputedDelivery, true
	default:
		return "", false
	}
}

// stable returns the state a withdrawn handoff reverts to.
func (s Status) stable() (Status, bool) {
	switch s { //nolint:exhaustive // only pending-handoff states revert
	case PendingPickupHandoff:
		return PendingPickup, true
	case PendingTransitHandoff, PendingDeliveryConfirmation:
		return InTransit, true
	default:
		return "", false
	}
}
