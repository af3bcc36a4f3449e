// Package projector keeps the order projection in step with the ledger. Sync is
// called after every accepted custody transition; Sweep re-reads every linked
// delivery and repairs the orders whose status drifted.
package projector

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/ports"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// SystemUserID is the administrator identity the projector reads the ledger as.
const SystemUserID = "system-projector"

const (
	DefaultSyncTimeout = 10 * time.Second
	DefaultPageSize    = 100
	DefaultConcurrency = 8
)

// Config tunes the projector. Zero values take the defaults.
type Config struct {
	SyncTimeout time.Duration
	PageSize    int
	Concurrency int
}

// SweepResult summarizes one corrective pass.
type SweepResult struct {
	Scanned  int
	Repaired int
	Failed   int
}

// Projector mirrors ledger statuses onto orders. It is the only writer of a
// linked order's status.
type Projector struct {
	uowFactory ports.UnitOfWorkFactory
	ledger     ports.DeliveryLedger
	publisher  ports.OrderEventPublisher
	actor      kernel.Party
	cfg        Config
	now        func() time.Time
	logger     *slog.Logger
}

// New creates a Projector.
func New(
	uowFactory ports.UnitOfWorkFactory,
	ledger ports.DeliveryLedger,
	publisher ports.OrderEventPublisher,
	cfg Config,
	logger *slog.Logger,
) (*Projector, error) {
	if uowFactory == nil {
		return nil, errs.NewValueIsRequiredError("uowFactory")
	}
	if ledger == nil {
		return nil, errs.NewValueIsRequiredError("ledger")
	}
	if publisher == nil {
		return nil, errs.NewValueIsRequiredError("publisher")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}
	actor, err := kernel.NewParty(SystemUserID, kernel.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if cfg.SyncTimeout <= 0 {
		cfg.SyncTimeout = DefaultSyncTimeout
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}

	return &Projector{
		uowFactory: uowFactory,
		ledger:     ledger,
		publisher:  publisher,
		actor:      actor,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger.With("component", "status-projector"),
	}, nil
}

// Sync mirrors the ledger status of one delivery onto its order. Failures are
// logged and left for the next sweep. The sync outlives a cancelled caller
// context so that a client hanging up does not leave the order stale.
func (p *Projector) Sync(ctx context.Context, id delivery.ID) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.cfg.SyncTimeout)
	defer cancel()

	if _, err := p.project(ctx, id); err != nil {
		p.logger.WarnContext(ctx, "order status sync failed", "deliveryId", id, "error", err)
	}
}

// Sweep pages through every linked order and repairs divergent statuses. Running
// it again right after a pass repairs nothing. It returns an error only when the
// projection store cannot be paged or ctx ends.
func (p *Projector) Sweep(ctx context.Context) (SweepResult, error) {
	var scanned, repaired, failed atomic.Int64
	result := func() SweepResult {
		return SweepResult{Scanned: int(scanned.Load()), Repaired: int(repaired.Load()), Failed: int(failed.Load())}
	}

	var after delivery.ID
	for {
		page, err := p.uowFactory.Create().OrderRepository().ListLinked(ctx, after, p.cfg.PageSize)
		if err != nil {
			return result(), err
		}
		if len(page) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.cfg.Concurrency)
		for _, o := range page {
			id := o.DeliveryID()
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				scanned.Add(1)

				change, err := p.project(gctx, id)
				switch {
				case err != nil:
					failed.Add(1)
					p.logger.WarnContext(gctx, "sweep could not reconcile order", "deliveryId", id, "error", err)
				case change != nil:
					repaired.Add(1)
					metrics.ProjectionDriftTotal.Inc()
					drift := errs.NewProjectionDriftError(change.OrderID, id.String(),
						change.OldStatus.String(), change.NewStatus.String())
					p.logger.WarnContext(gctx, "projection drift repaired", "deliveryId", id, "drift", drift.Error())
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return result(), err
		}

		after = page[len(page)-1].DeliveryID()
		if len(page) < p.cfg.PageSize {
			break
		}
	}

	res := result()
	p.logger.InfoContext(ctx, "projection sweep finished",
		"scanned", res.Scanned, "repaired", res.Repaired, "failed", res.Failed)
	return res, nil
}

// project reads the ledger status and writes it onto the linked order when it
// differs. It returns the change it made, or nil when the order already matched.
func (p *Projector) project(ctx context.Context, id delivery.ID) (*ports.OrderStatusChanged, error) {
	change, err := p.write(ctx, id)
	switch {
	case err != nil:
		metrics.ProjectionSyncTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, err
	case change == nil:
		metrics.ProjectionSyncTotal.WithLabelValues(metrics.OutcomeUnchanged).Inc()
		return nil, nil
	}
	metrics.ProjectionSyncTotal.WithLabelValues(metrics.OutcomeSynced).Inc()
	p.logger.InfoContext(ctx, "order status synced", "deliveryId", id, "orderId", change.OrderID,
		"fromState", change.OldStatus.String(), "toState", change.NewStatus.String())

	if err := p.publisher.PublishOrderStatusChanged(ctx, *change); err != nil {
		p.logger.WarnContext(ctx, "order status event not published", "deliveryId", id, "error", err)
	}
	return change, nil
}

func (p *Projector) write(ctx context.Context, id delivery.ID) (*ports.OrderStatusChanged, error) {
	uow := p.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	// The order row stays locked until commit. Reading the ledger only after the
	// lock is taken keeps concurrent syncs of one delivery from writing an older
	// status over a newer one.
	o, err := uow.OrderRepository().GetByDeliveryID(ctx, id)
	if err != nil {
		return nil, err
	}
	d, err := p.ledger.ReadDelivery(ctx, p.actor, id)
	if err != nil {
		return nil, err
	}

	old := o.Status()
	now := p.now()
	changed, err := o.SyncStatus(d.Status(), now)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, nil
	}
	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return &ports.OrderStatusChanged{
		OrderID:    o.ID().String(),
		DeliveryID: id,
		OldStatus:  old,
		NewStatus:  o.Status(),
		ChangedAt:  now.UTC(),
	}, nil
}
