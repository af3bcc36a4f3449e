package order

import (
	"errors"
	"fmt"
	"time"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// the NewOrder or RestoreOrder factory methods. This ensures all orders are properly validated.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")

	// ErrOrderIsNotLinked is returned when a ledger status is projected onto an order
	// that has no delivery yet.
	ErrOrderIsNotLinked = errors.New("order is not linked to a delivery")
)

// Order is the off-ledger projection of a purchase. It carries the commercial fields
// and mirrors the status of its linked delivery for fast querying; the ledger is always
// the authority on that status.
//
// Order follows these invariants:
//   - Must have a valid unique identifier, a seller, a customer and at least one item
//   - Starts in PENDING_CONFIRMATION without a delivery
//   - Is linked to exactly one delivery, once, when the seller confirms it
//   - Once linked, its status is written only by SyncStatus (the status projector)
//   - Can be cancelled by its customer only before it is linked
type Order struct {
	// id is the unique identifier for the order
	id kernel.UUID

	sellerID   string
	customerID string
	items      []Item

	// status mirrors the linked delivery's ledger status
	status delivery.Status

	// deliveryID is empty until the seller confirms the order
	deliveryID delivery.ID

	createdAt time.Time
	updatedAt time.Time

	// isConstructed ensures the order was created via a constructor
	isConstructed bool
}

// NewOrder creates a new Order in PENDING_CONFIRMATION. This is the only way to create
// a fresh Order, ensuring all business invariants are maintained.
//
// Example:
//
//	item, _ := order.NewItem("sku-1", 2, 1250)
//	o, err := order.NewOrder(kernel.NewUUID(), "seller-1", "customer-1", []order.Item{item}, time.Now())
//	if err != nil {
//	    // Handle validation error
//	}
func NewOrder(id kernel.UUID, sellerID, customerID string, items []Item, now time.Time) (*Order, error) {
	o := &Order{
		status:        delivery.PendingConfirmation,
		createdAt:     now.UTC(),
		updatedAt:     now.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setParty("sellerId", &o.sellerID, sellerID),
		o.setParty("customerId", &o.customerID, customerID),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rebuilds an Order read from persistence.
func RestoreOrder(
	id kernel.UUID,
	sellerID string,
	customerID string,
	items []Item,
	status delivery.Status,
	deliveryID delivery.ID,
	createdAt time.Time,
	updatedAt time.Time,
) (*Order, error) {
	o := &Order{
		status:        status,
		createdAt:     createdAt.UTC(),
		updatedAt:     updatedAt.UTC(),
		isConstructed: true,
	}

	var deliveryErr error
	if deliveryID != "" {
		deliveryErr = deliveryID.Validate()
	}

	if err := errors.Join(
		o.setID(id),
		o.setParty("sellerId", &o.sellerID, sellerID),
		o.setParty("customerId", &o.customerID, customerID),
		o.setItems(items),
		status.Validate(),
		deliveryErr,
	); err != nil {
		return nil, err
	}
	o.deliveryID = deliveryID

	return o, nil
}

// Validate ensures the Order instance was properly constructed.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}

	return nil
}

// IsEqual compares two orders by their unique identifiers.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

// ID returns the order's unique identifier.
func (o *Order) ID() kernel.UUID { return o.id }

// SellerID returns the seller of the order.
func (o *Order) SellerID() string { return o.sellerID }

// CustomerID returns the buyer of the order.
func (o *Order) CustomerID() string { return o.customerID }

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	return append([]Item(nil), o.items...)
}

// TotalAmount returns the order total in minor currency units.
func (o *Order) TotalAmount() int64 {
	var total int64
	for _, it := range o.items {
		total += it.Subtotal()
	}
	return total
}

// Status returns the projected delivery status.
func (o *Order) Status() delivery.Status { return o.status }

// DeliveryID returns the linked delivery, empty before confirmation.
func (o *Order) DeliveryID() delivery.ID { return o.deliveryID }

// HasDelivery reports whether the order is linked to a delivery.
func (o *Order) HasDelivery() bool { return o.deliveryID != "" }

// CreatedAt returns the creation time.
func (o *Order) CreatedAt() time.Time { return o.createdAt }

// UpdatedAt returns the time of the last change.
func (o *Order) UpdatedAt() time.Time { return o.updatedAt }

// ValidateConfirm checks that the seller may confirm the order now: it must still be
// awaiting confirmation and have no delivery.
func (o *Order) ValidateConfirm(sellerID string) error {
	if sellerID != o.sellerID {
		return errs.NewUnauthorizedError("confirm order", o.status.String(), "only the order's seller can confirm it")
	}
	if o.status != delivery.PendingConfirmation || o.HasDelivery() {
		return errs.NewInvalidTransitionError("confirm order", o.status.String(), "order is not awaiting confirmation")
	}
	return nil
}

// LinkDelivery records the delivery created for this order. The status is left for the
// projector to mirror from the ledger.
func (o *Order) LinkDelivery(sellerID string, id delivery.ID, now time.Time) error {
	if err := o.ValidateConfirm(sellerID); err != nil {
		return err
	}
	if err := id.Validate(); err != nil {
		return err
	}

	o.deliveryID = id
	o.updatedAt = now.UTC()
	return nil
}

// Cancel soft-cancels the order before the seller confirms it. No delivery exists yet,
// so there is no ledger status to mirror and the order records CANCELLED itself.
func (o *Order) Cancel(customerID string, now time.Time) error {
	if customerID != o.customerID {
		return errs.NewUnauthorizedError("cancel order", o.status.String(), "only the order's customer can cancel it")
	}
	if o.status != delivery.PendingConfirmation || o.HasDelivery() {
		return errs.NewInvalidTransitionError("cancel order", o.status.String(),
			"order can only be cancelled while pending confirmation")
	}

	o.status = delivery.Cancelled
	o.updatedAt = now.UTC()
	return nil
}

// SyncStatus mirrors the ledger status of the linked delivery. It reports whether the
// projected status changed; calling it again with the same status is a no-op.
func (o *Order) SyncStatus(status delivery.Status, now time.Time) (bool, error) {
	if !o.HasDelivery() {
		return false, ErrOrderIsNotLinked
	}
	if err := status.Validate(); err != nil {
		return false, err
	}
	if o.status == status {
		return false, nil
	}

	o.status = status
	o.updatedAt = now.UTC()
	return true, nil
}

// setID validates and sets the order's unique identifier.
func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setParty(name string, field *string, userID string) error {
	if userID == "" {
		return errs.NewValueIsRequiredError(name)
	}
	if len(userID) > kernel.MaxUserIDLength {
		return errs.NewValueIsOutOfRangeError(name+" length", len(userID), 1, kernel.MaxUserIDLength)
	}
	*field = userID
	return nil
}

// setItems validates the order lines. An order needs at least one constructed item.
func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(fmt.Sprintf("items[%d]", i), err)
		}
	}
	o.items = append([]Item(nil), items...)
	return nil
}
