package ports

import (
	"context"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for the order projection.
type OrderRepository interface {
	// Add persists a new order aggregate to storage.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists changes to an existing order aggregate.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// GetByDeliveryID retrieves the one order linked to a delivery.
	// Returns an errs.ObjectNotFoundError when no order is linked to it.
	GetByDeliveryID(ctx context.Context, id delivery.ID) (*order.Order, error)

	// ListLinked returns up to limit orders carrying a delivery, ordered by delivery id,
	// starting strictly after the given delivery id. An empty after starts from the
	// beginning. Used by the corrective sweep to page through every linked order.
	ListLinked(ctx context.Context, after delivery.ID, limit int) ([]*order.Order, error)

	// ListByParty returns the orders a user sells or buys, newest first.
	ListByParty(ctx context.Context, userID string) ([]*order.Order, error)
}
