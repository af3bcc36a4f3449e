package services

import (
	"errors"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
)

// CustodyAuthorizer decides whether an actor may perform an operation on a delivery,
// from the actor's role and recorded relationship to it. It never looks at whether
// the transition is legal from the current status: that is the state machine's call.
//
// Rules:
//   - Administrators may read any delivery and its history, and never mutate
//   - Nobody else may do anything on a delivery they have no relationship with
//   - Sellers may initiate the pickup handoff while nobody holds custody, and
//     withdraw an offer they made
//   - Transporters may initiate and report location as custodian, confirm or
//     dispute as the pending target, and withdraw an offer they made
//   - Customers may confirm or dispute the final leg addressed to them, and cancel
//     their own delivery
//   - History is visible to the seller, the customer and administrators
//
// Both the coordinator and the ledger engine consult the same rules.
//
// Example usage:
//
//	authorizer := services.NewCustodyAuthorizer()
//	if err := authorizer.Authorize(actor, d, delivery.OpConfirmHandoff); err != nil {
//	    // errors.Is(err, errs.ErrUnauthorized)
//	}
type CustodyAuthorizer struct{}

// NewCustodyAuthorizer creates a new CustodyAuthorizer.
func NewCustodyAuthorizer() CustodyAuthorizer {
	return CustodyAuthorizer{}
}

// Allowed is the predicate form of Authorize.
func (a CustodyAuthorizer) Allowed(actor kernel.Party, d *delivery.Delivery, op delivery.Operation) bool {
	return a.Authorize(actor, d, op) == nil
}

// AuthorizeCreate checks that actor may create a delivery. Only sellers create
// deliveries, for orders they sell.
func (a CustodyAuthorizer) AuthorizeCreate(actor kernel.Party) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if actor.Role() != kernel.RoleSeller {
		return errs.NewUnauthorizedError(delivery.OpCreate.String(), "none", "only sellers create deliveries")
	}
	return nil
}

// Authorize returns nil when actor may perform op on d, and an *errs.UnauthorizedError
// naming the operation and current status otherwise.
func (a CustodyAuthorizer) Authorize(actor kernel.Party, d *delivery.Delivery, op delivery.Operation) error {
	if err := errors.Join(actor.Validate(), d.Validate()); err != nil {
		return err
	}

	deny := func(reason string) error {
		return errs.NewUnauthorizedError(op.String(), d.Status().String(), reason)
	}

	if actor.Role() == kernel.RoleAdmin {
		if op.IsMutation() {
			return deny("administrators have read-only access")
		}
		return nil
	}

	if !d.IsInvolved(actor.UserID()) {
		return deny("no relationship to this delivery")
	}

	switch op {
	case delivery.OpRead:
		return nil

	case delivery.OpReadHistory:
		if a.isSeller(actor, d) || a.isCustomer(actor, d) {
			return nil
		}
		return deny("history is available to the seller, the customer and administrators")

	case delivery.OpInitiateHandoff:
		if actor.Role() != kernel.RoleSeller && actor.Role() != kernel.RoleTransporter {
			return deny("only sellers and transporters hand off packages")
		}
		if !d.MayHandOff(actor) {
			if actor.Role() == kernel.RoleSeller && !d.Custodian().IsZero() {
				return deny("the seller may only initiate before pickup")
			}
			return deny("only the current custodian can initiate a handoff")
		}
		return nil

	case delivery.OpConfirmHandoff, delivery.OpDisputeHandoff:
		if actor.Role() != kernel.RoleTransporter && actor.Role() != kernel.RoleCustomer {
			return deny("only transporters and customers receive packages")
		}
		if p := d.PendingHandoff(); p != nil && !p.Target().IsEqual(actor) {
			return deny("not the intended recipient")
		}
		return nil

	case delivery.OpCancelHandoff:
		if actor.Role() != kernel.RoleSeller && actor.Role() != kernel.RoleTransporter {
			return deny("only sellers and transporters make handoff offers")
		}
		if p := d.PendingHandoff(); p != nil && !p.Initiator().IsEqual(actor) {
			return deny("only the handoff initiator can cancel it")
		}
		return nil

	case delivery.OpCancelDelivery:
		if !a.isCustomer(actor, d) {
			return deny("only the delivery's customer can cancel it")
		}
		return nil

	case delivery.OpUpdateLocation:
		if actor.Role() != kernel.RoleTransporter || !d.Custodian().IsEqual(actor) {
			return deny("only the current custodian can update the location")
		}
		return nil

	case delivery.OpCreate:
		return deny("delivery already exists")
	}

	return deny("unknown operation")
}

func (a CustodyAuthorizer) isSeller(actor kernel.Party, d *delivery.Delivery) bool {
	return actor.Role() == kernel.RoleSeller && actor.UserID() == d.SellerID()
}

func (a CustodyAuthorizer) isCustomer(actor kernel.Party, d *delivery.Delivery) bool {
	return actor.Role() == kernel.RoleCustomer && actor.UserID() == d.CustomerID()
}
