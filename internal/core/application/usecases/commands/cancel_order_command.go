package commands

import (
	"errors"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand represents a customer withdrawing an order the seller has not
// confirmed yet.
type CancelOrderCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	customer kernel.Party

	guard guard.ConstructorGuard
}

func NewCancelOrderCommand(orderID kernel.UUID, customer kernel.Party) (CancelOrderCommand, error) {
	cmd := CancelOrderCommand{guard: guard.NewConstructorGuard()}

	if err := errors.Join(orderID.Validate(), customer.Validate()); err != nil {
		return CancelOrderCommand{}, err
	}
	if customer.Role() != kernel.RoleCustomer {
		return CancelOrderCommand{}, errs.NewUnauthorizedError("cancel order", "PENDING_CONFIRMATION",
			"only customers cancel orders")
	}
	cmd.orderID = orderID
	cmd.customer = customer

	return cmd, nil
}

func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) OrderID() kernel.UUID { return c.orderID }

func (c CancelOrderCommand) Customer() kernel.Party { return c.customer }
