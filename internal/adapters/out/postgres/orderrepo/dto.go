// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order projection, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting orders.
// The delivery id is unique so that a delivery is linked to at most one order;
// it is NULL until the seller confirms.
type OrderDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	SellerID    string    `gorm:"size:100;not null;index"`
	CustomerID  string    `gorm:"size:100;not null;index"`
	Status      string    `gorm:"size:40;not null;index"`
	DeliveryID  *string   `gorm:"size:21;uniqueIndex"`
	TotalAmount int64     `gorm:"not null"`
	Items       []ItemDTO `gorm:"type:jsonb;serializer:json;not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// ItemDTO is one order line as stored in the items column.
type ItemDTO struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// fromDomain converts an order to its database representation.
func fromDomain(o *order.Order) OrderDTO {
	var deliveryID *string
	if o.HasDelivery() {
		id := o.DeliveryID().String()
		deliveryID = &id
	}

	items := make([]ItemDTO, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, ItemDTO{
			ProductID: it.ProductID(),
			Quantity:  it.Quantity(),
			UnitPrice: it.UnitPrice(),
		})
	}

	return OrderDTO{
		ID:          o.ID().Bytes(),
		SellerID:    o.SellerID(),
		CustomerID:  o.CustomerID(),
		Status:      o.Status().String(),
		DeliveryID:  deliveryID,
		TotalAmount: o.TotalAmount(),
		Items:       items,
		CreatedAt:   o.CreatedAt(),
		UpdatedAt:   o.UpdatedAt(),
	}
}

// toDomain converts a database DTO to an order using RestoreOrder. The stored
// status goes through the closed status set.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	status, err := delivery.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	var deliveryID delivery.ID
	if dto.DeliveryID != nil {
		deliveryID = delivery.ID(*dto.DeliveryID)
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, it := range dto.Items {
		item, itemErr := order.NewItem(it.ProductID, it.Quantity, it.UnitPrice)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(id, dto.SellerID, dto.CustomerID, items, status, deliveryID, dto.CreatedAt, dto.UpdatedAt)
}
