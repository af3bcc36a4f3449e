package queries

import (
	"context"
	"database/sql"
	"errors"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetOrderQueryHandler reads an order from the projection table.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderQueryHandler creates a handler over the projection database.
func NewGetOrderQueryHandler(db *gorm.DB) (*GetOrderQueryHandler, error) {
	if db == nil {
		return nil, errs.NewValueIsRequiredError("db")
	}
	return &GetOrderQueryHandler{db: db}, nil
}

// Handle returns the order, an *errs.ObjectNotFoundError when it does not exist,
// or an *errs.UnauthorizedError when the actor is not one of its parties.
func (h *GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	row := h.db.WithContext(ctx).Raw(`
		SELECT`+orderColumns+`
		FROM orders
		WHERE id = ?
	`, query.OrderID().Bytes()).Row()

	view, err := scanOrderView(row)
	if errors.Is(err, sql.ErrNoRows) {
		return OrderView{}, errs.NewObjectNotFoundError("orderId", query.OrderID())
	}
	if err != nil {
		return OrderView{}, err
	}

	actor := query.Actor()
	if actor.Role() != kernel.RoleAdmin && actor.UserID() != view.SellerID && actor.UserID() != view.CustomerID {
		return OrderView{}, errs.NewUnauthorizedError("read order", view.Status.String(),
			"only the order's seller or customer can read it")
	}

	return view, nil
}
