// Package delivery implements the custody state machine of a package delivery.
//
// A Delivery lives on the ledger. It is created by the seller in PENDING_PICKUP and
// moves forward through two-phase handoffs: the party holding the package offers it
// (InitiateHandoff), and the named target either accepts (ConfirmHandoff) or refuses
// (DisputeHandoff); the initiator may withdraw the offer (CancelHandoff). The customer
// may cancel before pickup. Every rejection is a typed error from internal/pkg/errs
// carrying the attempted operation and the state it was attempted from, and leaves
// the delivery untouched.
//
// Dispute resolution is not modelled: DISPUTED states have no outgoing transition.
package delivery
