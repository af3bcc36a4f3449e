package commands

import (
	"errors"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

var ErrConfirmHandoffCommandIsNotConstructed = errors.New(
	"ConfirmHandoffCommand must be created via NewConfirmHandoffCommand or NewConfirmDeliveryCommand constructor",
)

// ConfirmHandoffCommand represents the target accepting a pending offer.
// Transporters assert where they took the package and what it weighs and measures.
// A customer confirming the final leg supplies neither: the coordinator uses the
// customer's profile address and the package as last recorded.
type ConfirmHandoffCommand struct { //nolint:recvcheck //using for validation
	deliveryID delivery.ID
	actor      kernel.Party
	location   kernel.Location
	pkg        kernel.PackageAttributes

	guard guard.ConstructorGuard
}

// NewConfirmHandoffCommand creates a transporter's confirmation.
//
// Example:
//
//	loc, _ := kernel.NewLocation("Chicago", "IL", "USA")
//	pkg, _ := kernel.NewPackageAttributes(2.5, 30, 20, 10)
//	cmd, err := NewConfirmHandoffCommand(deliveryID, transporter, loc, pkg)
func NewConfirmHandoffCommand(
	deliveryID delivery.ID,
	actor kernel.Party,
	location kernel.Location,
	pkg kernel.PackageAttributes,
) (ConfirmHandoffCommand, error) {
	cmd := ConfirmHandoffCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		setDeliveryID(&cmd.deliveryID, deliveryID),
		setParty(&cmd.actor, actor),
		location.Validate(),
		pkg.Validate(),
	); err != nil {
		return ConfirmHandoffCommand{}, err
	}
	if actor.Role() != kernel.RoleTransporter {
		return ConfirmHandoffCommand{}, errs.NewValueIsInvalidErrorWithCause("actor",
			errors.New("only transporters report location and package on confirmation"))
	}
	cmd.location = location
	cmd.pkg = pkg

	return cmd, nil
}

// NewConfirmDeliveryCommand creates a customer's confirmation of the final leg.
func NewConfirmDeliveryCommand(deliveryID delivery.ID, customer kernel.Party) (ConfirmHandoffCommand, error) {
	cmd := ConfirmHandoffCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		setDeliveryID(&cmd.deliveryID, deliveryID),
		setParty(&cmd.actor, customer),
	); err != nil {
		return ConfirmHandoffCommand{}, err
	}
	if customer.Role() != kernel.RoleCustomer {
		return ConfirmHandoffCommand{}, errs.NewValueIsInvalidErrorWithCause("actor",
			errors.New("transporters must report location and package on confirmation"))
	}

	return cmd, nil
}

// Validate ensures the command was created through a constructor.
func (c ConfirmHandoffCommand) Validate() error {
	return c.guard.Validate(ErrConfirmHandoffCommandIsNotConstructed)
}

func (c ConfirmHandoffCommand) DeliveryID() delivery.ID { return c.deliveryID }

func (c ConfirmHandoffCommand) Actor() kernel.Party { return c.actor }

// Location is zero for a customer's confirmation.
func (c ConfirmHandoffCommand) Location() kernel.Location { return c.location }

// Package is zero for a customer's confirmation.
func (c ConfirmHandoffCommand) Package() kernel.PackageAttributes { return c.pkg }

// ReportsCondition reports whether the actor supplied location and package.
func (c ConfirmHandoffCommand) ReportsCondition() bool { return !c.location.IsZero() }
