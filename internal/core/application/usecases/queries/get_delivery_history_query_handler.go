package queries

import (
	"context"
	"time"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/ports"
)

// GetDeliveryHistoryQueryHandler returns the ledger history of a delivery in commit order.
type GetDeliveryHistoryQueryHandler struct {
	reader ledgerReader
}

func NewGetDeliveryHistoryQueryHandler(
	ledger ports.DeliveryLedger,
	timeout time.Duration,
) (*GetDeliveryHistoryQueryHandler, error) {
	reader, err := newLedgerReader(ledger, timeout)
	if err != nil {
		return nil, err
	}
	return &GetDeliveryHistoryQueryHandler{reader: reader}, nil
}

func (h *GetDeliveryHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetDeliveryHistoryQuery,
) ([]delivery.HistoryEntry, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := h.reader.withTimeout(ctx)
	defer cancel()
	return h.reader.ledger.GetDeliveryHistory(ctx, query.Actor(), query.DeliveryID())
}
