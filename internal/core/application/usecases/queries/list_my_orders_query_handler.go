package queries

import (
	"context"

	"custody/internal/pkg/errs"

	"gorm.io/gorm"
)

// ListMyOrdersQueryHandler lists orders from the projection table using direct SQL.
type ListMyOrdersQueryHandler struct {
	db *gorm.DB
}

// NewListMyOrdersQueryHandler creates a handler over the projection database.
func NewListMyOrdersQueryHandler(db *gorm.DB) (*ListMyOrdersQueryHandler, error) {
	if db == nil {
		return nil, errs.NewValueIsRequiredError("db")
	}
	return &ListMyOrdersQueryHandler{db: db}, nil
}

// Handle returns every order where the actor is the seller or the customer.
// An empty result is an empty slice, never nil.
func (h *ListMyOrdersQueryHandler) Handle(ctx context.Context, query ListMyOrdersQuery) ([]OrderView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	userID := query.Actor().UserID()
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT`+orderColumns+`
		FROM orders
		WHERE seller_id = ? OR customer_id = ?
		ORDER BY created_at DESC, id
	`, userID, userID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]OrderView, 0)
	for rows.Next() {
		view, scanErr := scanOrderView(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		orders = append(orders, view)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
