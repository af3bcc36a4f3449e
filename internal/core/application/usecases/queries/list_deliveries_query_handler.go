package queries

import (
	"context"
	"time"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/ports"
)

// ListDeliveriesQueryHandler runs the role-filtered delivery listings on the ledger.
// Results are ordered by delivery id.
type ListDeliveriesQueryHandler struct {
	reader ledgerReader
}

func NewListDeliveriesQueryHandler(ledger ports.DeliveryLedger, timeout time.Duration) (*ListDeliveriesQueryHandler, error) {
	reader, err := newLedgerReader(ledger, timeout)
	if err != nil {
		return nil, err
	}
	return &ListDeliveriesQueryHandler{reader: reader}, nil
}

// HandleByCustodian lists the deliveries related to the actor or, for administrators,
// held by the named custodian.
func (h *ListDeliveriesQueryHandler) HandleByCustodian(
	ctx context.Context,
	query ListDeliveriesByCustodianQuery,
) ([]*delivery.Delivery, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := h.reader.withTimeout(ctx)
	defer cancel()
	return h.reader.ledger.QueryByCustodian(ctx, query.Actor(), query.CustodianID())
}

// HandleByStatus lists deliveries in the query's status.
func (h *ListDeliveriesQueryHandler) HandleByStatus(
	ctx context.Context,
	query ListDeliveriesByStatusQuery,
) ([]*delivery.Delivery, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := h.reader.withTimeout(ctx)
	defer cancel()
	return h.reader.ledger.QueryByStatus(ctx, query.Actor(), query.Status())
}
