package commands

import (
	"errors"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

var ErrConfirmOrderCommandIsNotConstructed = errors.New(
	"ConfirmOrderCommand must be created via NewConfirmOrderCommand constructor",
)

// ConfirmOrderCommand represents the seller accepting an order and declaring the
// package that will be shipped for it.
type ConfirmOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	seller  kernel.Party
	pkg     kernel.PackageAttributes

	guard guard.ConstructorGuard
}

// NewConfirmOrderCommand validates and creates a confirm command.
func NewConfirmOrderCommand(orderID kernel.UUID, seller kernel.Party, pkg kernel.PackageAttributes) (ConfirmOrderCommand, error) {
	cmd := ConfirmOrderCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		orderID.Validate(),
		seller.Validate(),
		pkg.Validate(),
	); err != nil {
		return ConfirmOrderCommand{}, err
	}
	if seller.Role() != kernel.RoleSeller {
		return ConfirmOrderCommand{}, errs.NewUnauthorizedError("confirm order", "PENDING_CONFIRMATION",
			"only sellers confirm orders")
	}
	cmd.orderID = orderID
	cmd.seller = seller
	cmd.pkg = pkg

	return cmd, nil
}

func (c ConfirmOrderCommand) Validate() error {
	return c.guard.Validate(ErrConfirmOrderCommandIsNotConstructed)
}

func (c ConfirmOrderCommand) OrderID() kernel.UUID { return c.orderID }

func (c ConfirmOrderCommand) Seller() kernel.Party { return c.seller }

func (c ConfirmOrderCommand) Package() kernel.PackageAttributes { return c.pkg }
