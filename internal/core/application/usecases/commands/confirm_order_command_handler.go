package commands

import (
	"context"
	"log/slog"
	"time"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/ports"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/metrics"
)

// ConfirmOrderCommandHandler accepts an order on behalf of its seller. It creates
// the delivery on the ledger, shipping from the seller's profile address, and links
// the new delivery to the order.
//
// The ledger call happens outside the projection transaction. If the link cannot be
// stored afterwards the delivery exists on the ledger without an order pointing at
// it; the handler logs the delivery id at Error so it can be linked by hand.
type ConfirmOrderCommandHandler struct {
	uowFactory    OrderUoWFactory
	ledger        ports.DeliveryLedger
	profiles      ports.ProfileDirectory
	syncer        StatusSyncer
	ledgerTimeout time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

// NewConfirmOrderCommandHandler creates the handler. A non-positive ledgerTimeout
// falls back to DefaultLedgerTimeout.
func NewConfirmOrderCommandHandler(
	uowFactory OrderUoWFactory,
	ledger ports.DeliveryLedger,
	profiles ports.ProfileDirectory,
	syncer StatusSyncer,
	ledgerTimeout time.Duration,
	logger *slog.Logger,
) (*ConfirmOrderCommandHandler, error) {
	if uowFactory == nil {
		return nil, errs.NewValueIsRequiredError("uowFactory")
	}
	if ledger == nil {
		return nil, errs.NewValueIsRequiredError("ledger")
	}
	if profiles == nil {
		return nil, errs.NewValueIsRequiredError("profiles")
	}
	if syncer == nil {
		return nil, errs.NewValueIsRequiredError("syncer")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}
	if ledgerTimeout <= 0 {
		ledgerTimeout = DefaultLedgerTimeout
	}

	return &ConfirmOrderCommandHandler{
		uowFactory:    uowFactory,
		ledger:        ledger,
		profiles:      profiles,
		syncer:        syncer,
		ledgerTimeout: ledgerTimeout,
		now:           time.Now,
		logger:        logger.With("component", "confirm-order"),
	}, nil
}

// Handle confirms the order and returns the id of the delivery created for it.
func (h *ConfirmOrderCommandHandler) Handle(ctx context.Context, cmd ConfirmOrderCommand) (delivery.ID, error) {
	if err := cmd.Validate(); err != nil {
		return "", err
	}
	log := h.logger.With("orderId", cmd.OrderID().String(), "actor", cmd.Seller().String())

	o, err := h.uowFactory.Create().OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return "", err
	}
	if err = o.ValidateConfirm(cmd.Seller().UserID()); err != nil {
		log.WarnContext(ctx, "order confirmation rejected", "error", err)
		return "", err
	}

	profile, err := h.profiles.GetProfile(ctx, cmd.Seller().UserID())
	if err != nil {
		return "", err
	}

	now := h.now()
	id := delivery.NewID(now)
	ledgerCtx, cancel := context.WithTimeout(ctx, h.ledgerTimeout)
	err = h.ledger.CreateDelivery(ledgerCtx, cmd.Seller(), ports.NewDelivery{
		ID:         id,
		OrderID:    o.ID().String(),
		CustomerID: o.CustomerID(),
		Package:    cmd.Package(),
		Origin:     profile.Address,
	})
	cancel()
	if err != nil {
		metrics.CustodyOperationsTotal.WithLabelValues(delivery.OpCreate.String(), rejectionOutcome(err)).Inc()
		log.WarnContext(ctx, "delivery creation rejected", "deliveryId", id, "error", err)
		return "", err
	}
	metrics.CustodyOperationsTotal.WithLabelValues(delivery.OpCreate.String(), metrics.OutcomeAccepted).Inc()
	log = log.With("deliveryId", id)

	if err = h.link(ctx, cmd, id, now); err != nil {
		log.ErrorContext(ctx, "delivery created on the ledger but not linked to its order", "error", err)
		return "", err
	}
	log.InfoContext(ctx, "order confirmed")

	h.syncer.Sync(ctx, id)
	return id, nil
}

func (h *ConfirmOrderCommandHandler) link(ctx context.Context, cmd ConfirmOrderCommand, id delivery.ID, now time.Time) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return err
	}
	if err = o.LinkDelivery(cmd.Seller().UserID(), id, now); err != nil {
		return err
	}
	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
