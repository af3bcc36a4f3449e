package queries

import (
	"context"
	"time"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/ports"
)

// GetDeliveryQueryHandler reads deliveries from the ledger. Users not related to
// the delivery get an *errs.UnauthorizedError from the ledger.
type GetDeliveryQueryHandler struct {
	reader ledgerReader
}

// NewGetDeliveryQueryHandler creates the handler. A non-positive timeout falls back
// to DefaultLedgerTimeout.
func NewGetDeliveryQueryHandler(ledger ports.DeliveryLedger, timeout time.Duration) (*GetDeliveryQueryHandler, error) {
	reader, err := newLedgerReader(ledger, timeout)
	if err != nil {
		return nil, err
	}
	return &GetDeliveryQueryHandler{reader: reader}, nil
}

func (h *GetDeliveryQueryHandler) Handle(ctx context.Context, query GetDeliveryQuery) (*delivery.Delivery, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := h.reader.withTimeout(ctx)
	defer cancel()
	return h.reader.ledger.ReadDelivery(ctx, query.Actor(), query.DeliveryID())
}
