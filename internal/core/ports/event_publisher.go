package ports

import (
	"context"
	"time"

	"custody/internal/core/domain/model/delivery"
)

// OrderStatusChanged is published when the projector changes an order's status.
type OrderStatusChanged struct {
	OrderID    string          `json:"orderId"`
	DeliveryID delivery.ID     `json:"deliveryId"`
	OldStatus  delivery.Status `json:"oldStatus"`
	NewStatus  delivery.Status `json:"newStatus"`
	ChangedAt  time.Time       `json:"changedAt"`
}

// OrderEventPublisher delivers order events to downstream consumers.
type OrderEventPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, event OrderStatusChanged) error
}
