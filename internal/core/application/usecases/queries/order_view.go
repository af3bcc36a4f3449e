// Package queries contains read operations for retrieving system state.
// Order reads go straight to the projection tables; delivery reads go to the
// ledger as the requesting user, which applies its own role filtering.
package queries

import (
	"database/sql"
	"encoding/json"
	"time"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// OrderItemView is one order line in the read model.
type OrderItemView struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
}

// OrderView is the projected order as returned to callers. Status mirrors the
// ledger status of the linked delivery and may lag behind it.
type OrderView struct {
	ID          kernel.UUID
	SellerID    string
	CustomerID  string
	Status      delivery.Status
	DeliveryID  delivery.ID
	TotalAmount int64
	Items       []OrderItemView
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

const orderColumns = `
		id,
		seller_id,
		customer_id,
		status,
		delivery_id,
		total_amount,
		items,
		created_at,
		updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrderView(row rowScanner) (OrderView, error) {
	var (
		view       OrderView
		id         uuid.UUID
		status     string
		deliveryID sql.NullString
		items      []byte
	)

	err := row.Scan(
		&id,
		&view.SellerID,
		&view.CustomerID,
		&status,
		&deliveryID,
		&view.TotalAmount,
		&items,
		&view.CreatedAt,
		&view.UpdatedAt,
	)
	if err != nil {
		return OrderView{}, err
	}

	if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return OrderView{}, err
	}
	if view.Status, err = delivery.ParseStatus(status); err != nil {
		return OrderView{}, err
	}
	if deliveryID.Valid {
		view.DeliveryID = delivery.ID(deliveryID.String)
	}
	view.Items = make([]OrderItemView, 0)
	if err = json.Unmarshal(items, &view.Items); err != nil {
		return OrderView{}, err
	}

	return view, nil
}
