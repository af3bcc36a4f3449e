package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/services"
	"custody/internal/core/ports"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/metrics"
)

// DefaultLedgerTimeout bounds every ledger call made by the coordinator.
const DefaultLedgerTimeout = 10 * time.Second

// HandoffCoordinator executes custody operations. Each operation reads the
// delivery from the ledger as the acting user, checks the actor against the
// CustodyAuthorizer, dry-runs the transition on a copy, and only then invokes the
// ledger under a bounded timeout. A rejection at any of these steps leaves the
// ledger untouched. After an accepted transition the order projection is synced
// and the delivery as now recorded is returned.
//
// A ledger call that times out returns *errs.LedgerUnavailableError: the
// transition may or may not have been applied, and is never retried here.
//
// Example:
//
//	coordinator, _ := NewHandoffCoordinator(gateway, profiles, projector, DefaultLedgerTimeout, logger)
//	cmd, _ := NewInitiateHandoffCommand(deliveryID, seller, transporter)
//	d, err := coordinator.Initiate(ctx, cmd)
//	if errors.Is(err, errs.ErrConflictingHandoff) {
//	    // another offer is outstanding
//	}
type HandoffCoordinator struct {
	ledger        ports.DeliveryLedger
	profiles      ports.ProfileDirectory
	syncer        StatusSyncer
	authorizer    services.CustodyAuthorizer
	ledgerTimeout time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

// NewHandoffCoordinator creates a coordinator. A non-positive ledgerTimeout falls
// back to DefaultLedgerTimeout.
func NewHandoffCoordinator(
	ledger ports.DeliveryLedger,
	profiles ports.ProfileDirectory,
	syncer StatusSyncer,
	ledgerTimeout time.Duration,
	logger *slog.Logger,
) (*HandoffCoordinator, error) {
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

	return &HandoffCoordinator{
		ledger:        ledger,
		profiles:      profiles,
		syncer:        syncer,
		authorizer:    services.NewCustodyAuthorizer(),
		ledgerTimeout: ledgerTimeout,
		now:           time.Now,
		logger:        logger.With("component", "handoff-coordinator"),
	}, nil
}

// Initiate offers the package to the command's target.
func (c *HandoffCoordinator) Initiate(ctx context.Context, cmd InitiateHandoffCommand) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return c.run(ctx, transition{
		op:    delivery.OpInitiateHandoff,
		id:    cmd.DeliveryID(),
		actor: cmd.Actor(),
		apply: func(d *delivery.Delivery, now time.Time) error {
			return d.InitiateHandoff(cmd.Actor(), cmd.Target(), now)
		},
		invoke: func(ctx context.Context) error {
			return c.ledger.InitiateHandoff(ctx, cmd.Actor(), cmd.DeliveryID(), cmd.Target())
		},
	})
}

// Confirm accepts the pending offer. A customer's confirmation places the package
// at the customer's profile address with the attributes last recorded on the ledger.
func (c *HandoffCoordinator) Confirm(ctx context.Context, cmd ConfirmHandoffCommand) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	var (
		loc kernel.Location
		pkg kernel.PackageAttributes
	)
	return c.run(ctx, transition{
		op:    delivery.OpConfirmHandoff,
		id:    cmd.DeliveryID(),
		actor: cmd.Actor(),
		prepare: func(ctx context.Context, current *delivery.Delivery) error {
			if cmd.ReportsCondition() {
				loc, pkg = cmd.Location(), cmd.Package()
				return nil
			}
			profile, err := c.profiles.GetProfile(ctx, cmd.Actor().UserID())
			if err != nil {
				return fmt.Errorf("resolve delivery address: %w", err)
			}
			loc, pkg = profile.Address, current.Package()
			return nil
		},
		apply: func(d *delivery.Delivery, now time.Time) error {
			return d.ConfirmHandoff(cmd.Actor(), loc, pkg, now)
		},
		invoke: func(ctx context.Context) error {
			return c.ledger.ConfirmHandoff(ctx, cmd.Actor(), cmd.DeliveryID(), loc, pkg)
		},
	})
}

// Dispute refuses the pending offer and freezes the delivery.
func (c *HandoffCoordinator) Dispute(ctx context.Context, cmd DisputeHandoffCommand) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return c.run(ctx, transition{
		op:    delivery.OpDisputeHandoff,
		id:    cmd.DeliveryID(),
		actor: cmd.Actor(),
		apply: func(d *delivery.Delivery, now time.Time) error {
			return d.DisputeHandoff(cmd.Actor(), cmd.Reason(), now)
		},
		invoke: func(ctx context.Context) error {
			return c.ledger.DisputeHandoff(ctx, cmd.Actor(), cmd.DeliveryID(), cmd.Reason())
		},
	})
}

// CancelHandoff withdraws the pending offer.
func (c *HandoffCoordinator) CancelHandoff(ctx context.Context, cmd CancelHandoffCommand) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return c.run(ctx, transition{
		op:    delivery.OpCancelHandoff,
		id:    cmd.DeliveryID(),
		actor: cmd.Actor(),
		apply: func(d *delivery.Delivery, now time.Time) error {
			return d.CancelHandoff(cmd.Actor(), now)
		},
		invoke: func(ctx context.Context) error {
			return c.ledger.CancelHandoff(ctx, cmd.Actor(), cmd.DeliveryID())
		},
	})
}

// CancelDelivery cancels the delivery before pickup.
func (c *HandoffCoordinator) CancelDelivery(ctx context.Context, cmd CancelDeliveryCommand) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return c.run(ctx, transition{
		op:    delivery.OpCancelDelivery,
		id:    cmd.DeliveryID(),
		actor: cmd.Actor(),
		apply: func(d *delivery.Delivery, now time.Time) error {
			return d.Cancel(cmd.Actor(), now)
		},
		invoke: func(ctx context.Context) error {
			return c.ledger.CancelDelivery(ctx, cmd.Actor(), cmd.DeliveryID())
		},
	})
}

// UpdateLocation records where the custodian has the package.
func (c *HandoffCoordinator) UpdateLocation(ctx context.Context, cmd UpdateLocationCommand) (*delivery.Delivery, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return c.run(ctx, transition{
		op:    delivery.OpUpdateLocation,
		id:    cmd.DeliveryID(),
		actor: cmd.Actor(),
		apply: func(d *delivery.Delivery, now time.Time) error {
			return d.UpdateLocation(cmd.Actor(), cmd.Location(), now)
		},
		invoke: func(ctx context.Context) error {
			return c.ledger.UpdateLocation(ctx, cmd.Actor(), cmd.DeliveryID(), cmd.Location())
		},
	})
}

type transition struct {
	op    delivery.Operation
	id    delivery.ID
	actor kernel.Party

	// prepare resolves inputs that depend on the current delivery. Optional.
	prepare func(ctx context.Context, current *delivery.Delivery) error
	apply   func(d *delivery.Delivery, now time.Time) error
	invoke  func(ctx context.Context) error
}

// unknownState is logged as the from-state when the delivery could not be read.
const unknownState = "UNKNOWN"

func (c *HandoffCoordinator) run(ctx context.Context, t transition) (*delivery.Delivery, error) {
	log := c.logger.With("deliveryId", t.id, "actor", t.actor.String(), "event", t.op.String())

	current, err := c.read(ctx, t.actor, t.id)
	if err != nil {
		return nil, c.reject(ctx, log, t.op, unknownState, err)
	}
	fromState := current.Status().String()

	if err := c.authorizer.Authorize(t.actor, current, t.op); err != nil {
		return nil, c.reject(ctx, log, t.op, fromState, err)
	}
	if t.prepare != nil {
		if err := t.prepare(ctx, current); err != nil {
			return nil, c.reject(ctx, log, t.op, fromState, err)
		}
	}

	next := current.Clone()
	if err := t.apply(next, c.now()); err != nil {
		return nil, c.reject(ctx, log, t.op, fromState, err)
	}

	invokeCtx, cancel := context.WithTimeout(ctx, c.ledgerTimeout)
	err = t.invoke(invokeCtx)
	cancel()
	if err != nil {
		return nil, c.reject(ctx, log, t.op, fromState, err)
	}

	metrics.CustodyOperationsTotal.WithLabelValues(t.op.String(), metrics.OutcomeAccepted).Inc()
	log.InfoContext(ctx, "custody transition accepted", "fromState", fromState, "toState", next.Status().String())

	c.syncer.Sync(ctx, t.id)

	// After a dispute or a handed-over package the actor may no longer be
	// related to the delivery, so the recorded state may not be readable.
	fresh, err := c.read(ctx, t.actor, t.id)
	if err != nil {
		log.DebugContext(ctx, "returning computed state, re-read failed", "error", err)
		return next, nil
	}
	return fresh, nil
}

func (c *HandoffCoordinator) read(ctx context.Context, actor kernel.Party, id delivery.ID) (*delivery.Delivery, error) {
	readCtx, cancel := context.WithTimeout(ctx, c.ledgerTimeout)
	defer cancel()
	return c.ledger.ReadDelivery(readCtx, actor, id)
}

func (c *HandoffCoordinator) reject(
	ctx context.Context,
	log *slog.Logger,
	op delivery.Operation,
	fromState string,
	err error,
) error {
	metrics.CustodyOperationsTotal.WithLabelValues(op.String(), rejectionOutcome(err)).Inc()
	log.WarnContext(ctx, "custody transition rejected", "fromState", fromState, "error", err)
	return err
}

func rejectionOutcome(err error) string {
	if errors.Is(err, errs.ErrLedgerUnavailable) {
		return metrics.OutcomeUnavailable
	}
	return metrics.OutcomeRejected
}
