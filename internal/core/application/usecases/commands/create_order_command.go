package commands

import (
	"errors"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/order"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderCommand represents a customer's purchase from one seller.
//
// Example:
//
//	item, _ := order.NewItem("sku-1", 2, 1250)
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), customer, "seller-1", []order.Item{item})
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	customer kernel.Party
	sellerID string
	items    []order.Item

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new order.
// Validates the order id, that the buyer acts as a customer, the seller id and
// that there is at least one item.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	customer kernel.Party,
	sellerID string,
	items []order.Item,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setCustomer(customer),
		cmd.setSellerID(sellerID),
		cmd.setItems(items),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Customer returns the buyer.
func (c CreateOrderCommand) Customer() kernel.Party {
	return c.customer
}

// SellerID returns the seller the order is placed with.
func (c CreateOrderCommand) SellerID() string {
	return c.sellerID
}

// Items returns the order lines.
func (c CreateOrderCommand) Items() []order.Item {
	return append([]order.Item(nil), c.items...)
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setCustomer(customer kernel.Party) error {
	if err := customer.Validate(); err != nil {
		return err
	}
	if customer.Role() != kernel.RoleCustomer {
		return errs.NewUnauthorizedError("create order", "none", "only customers place orders")
	}

	c.customer = customer
	return nil
}

func (c *CreateOrderCommand) setSellerID(sellerID string) error {
	if sellerID == "" {
		return errs.NewValueIsRequiredError("sellerId")
	}

	c.sellerID = sellerID
	return nil
}

func (c *CreateOrderCommand) setItems(items []order.Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}

	c.items = append([]order.Item(nil), items...)
	return nil
}
