package order

import (
	"errors"
	"fmt"

	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

// ErrItemIsNotConstructed is returned when a zero Item is used.
var ErrItemIsNotConstructed = errs.NewValueIsRequiredError("item must be created via NewItem constructor")

// Item is one order line: a product, a positive quantity and a unit price in minor
// currency units.
type Item struct { //nolint:recvcheck //using for validation
	productID string
	quantity  int
	unitPrice int64
	guard     guard.ConstructorGuard
}

// NewItem validates and creates an order line.
func NewItem(productID string, quantity int, unitPrice int64) (Item, error) {
	it := Item{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		it.setProductID(productID),
		it.setQuantity(quantity),
		it.setUnitPrice(unitPrice),
	); err != nil {
		return Item{}, err
	}

	return it, nil
}

// Validate checks that the item was built by NewItem.
func (it Item) Validate() error {
	return it.guard.Validate(ErrItemIsNotConstructed)
}

// ProductID returns the ordered product.
func (it Item) ProductID() string { return it.productID }

// Quantity returns the number of units.
func (it Item) Quantity() int { return it.quantity }

// UnitPrice returns the price of one unit.
func (it Item) UnitPrice() int64 { return it.unitPrice }

// Subtotal returns quantity times unit price.
func (it Item) Subtotal() int64 { return int64(it.quantity) * it.unitPrice }

func (it *Item) setProductID(productID string) error {
	if productID == "" {
		return errs.NewValueIsRequiredError("productId")
	}
	it.productID = productID
	return nil
}

func (it *Item) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity is invalid", fmt.Errorf("%d is not greater than 0", quantity))
	}
	it.quantity = quantity
	return nil
}

func (it *Item) setUnitPrice(unitPrice int64) error {
	if unitPrice < 0 {
		return errs.NewValueIsInvalidErrorWithCause("unit price is invalid", fmt.Errorf("%d is negative", unitPrice))
	}
	it.unitPrice = unitPrice
	return nil
}
