// Package ledger adapts the raw ledger port to the typed DeliveryLedger used by the
// application. It encodes call arguments, decodes payloads, turns ledger faults back
// into custody errors, and reports every call that went unanswered as
// *errs.LedgerUnavailableError.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"custody/internal/adapters/out/ledger/record"
	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/ports"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/metrics"
)

// Gateway implements ports.DeliveryLedger over a ports.Ledger.
type Gateway struct {
	ledger ports.Ledger
}

var _ ports.DeliveryLedger = (*Gateway)(nil)

// NewGateway creates a typed gateway over l.
func NewGateway(l ports.Ledger) (*Gateway, error) {
	if l == nil {
		return nil, errs.NewValueIsRequiredError("ledger")
	}
	return &Gateway{ledger: l}, nil
}

func (g *Gateway) CreateDelivery(ctx context.Context, actor kernel.Party, d ports.NewDelivery) error {
	pkg, origin := d.Package, d.Origin
	_, err := g.invoke(ctx, ports.FnCreateDelivery, d.ID.String(), actorArgs(actor,
		d.ID.String(), d.OrderID, d.CustomerID,
		formatFloat(pkg.Weight()), formatFloat(pkg.Length()), formatFloat(pkg.Width()), formatFloat(pkg.Height()),
		origin.City(), origin.State(), origin.Country(),
	)...)
	return err
}

func (g *Gateway) ReadDelivery(ctx context.Context, actor kernel.Party, id delivery.ID) (*delivery.Delivery, error) {
	payload, err := g.query(ctx, ports.FnReadDelivery, id.String(), actorArgs(actor, id.String())...)
	if err != nil {
		return nil, err
	}
	d, err := record.Unmarshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ports.FnReadDelivery, err)
	}
	return d, nil
}

func (g *Gateway) GetDeliveryHistory(ctx context.Context, actor kernel.Party, id delivery.ID) ([]delivery.HistoryEntry, error) {
	payload, err := g.query(ctx, ports.FnGetDeliveryHistory, id.String(), actorArgs(actor, id.String())...)
	if err != nil {
		return nil, err
	}

	var entries []record.HistoryEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("%s: decode history: %w", ports.FnGetDeliveryHistory, err)
	}

	history := make([]delivery.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		ts, err := time.Parse(record.TimeLayout, e.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%s: parse timestamp of %s: %w", ports.FnGetDeliveryHistory, e.TxID, err)
		}
		entry := delivery.HistoryEntry{TxID: e.TxID, Timestamp: ts.UTC(), IsDelete: e.IsDelete}
		if e.Delivery != nil {
			if entry.Delivery, err = e.Delivery.ToDomain(); err != nil {
				return nil, fmt.Errorf("%s: version %s: %w", ports.FnGetDeliveryHistory, e.TxID, err)
			}
		}
		history = append(history, entry)
	}
	return history, nil
}

func (g *Gateway) InitiateHandoff(ctx context.Context, actor kernel.Party, id delivery.ID, target kernel.Party) error {
	_, err := g.invoke(ctx, ports.FnInitiateHandoff, id.String(),
		actorArgs(actor, id.String(), target.UserID(), target.Role().String())...)
	return err
}

func (g *Gateway) ConfirmHandoff(
	ctx context.Context,
	actor kernel.Party,
	id delivery.ID,
	loc kernel.Location,
	pkg kernel.PackageAttributes,
) error {
	_, err := g.invoke(ctx, ports.FnConfirmHandoff, id.String(), actorArgs(actor,
		id.String(), loc.City(), loc.State(), loc.Country(),
		formatFloat(pkg.Weight()), formatFloat(pkg.Length()), formatFloat(pkg.Width()), formatFloat(pkg.Height()),
	)...)
	return err
}

func (g *Gateway) DisputeHandoff(ctx context.Context, actor kernel.Party, id delivery.ID, reason delivery.DisputeReason) error {
	_, err := g.invoke(ctx, ports.FnDisputeHandoff, id.String(), actorArgs(actor, id.String(), reason.String())...)
	return err
}

func (g *Gateway) CancelHandoff(ctx context.Context, actor kernel.Party, id delivery.ID) error {
	_, err := g.invoke(ctx, ports.FnCancelHandoff, id.String(), actorArgs(actor, id.String())...)
	return err
}

func (g *Gateway) CancelDelivery(ctx context.Context, actor kernel.Party, id delivery.ID) error {
	_, err := g.invoke(ctx, ports.FnCancelDelivery, id.String(), actorArgs(actor, id.String())...)
	return err
}

func (g *Gateway) UpdateLocation(ctx context.Context, actor kernel.Party, id delivery.ID, loc kernel.Location) error {
	_, err := g.invoke(ctx, ports.FnUpdateLocation, id.String(),
		actorArgs(actor, id.String(), loc.City(), loc.State(), loc.Country())...)
	return err
}

func (g *Gateway) QueryByCustodian(ctx context.Context, actor kernel.Party, custodianID string) ([]*delivery.Delivery, error) {
	payload, err := g.query(ctx, ports.FnQueryDeliveriesByCustodian, "", actorArgs(actor, custodianID)...)
	if err != nil {
		return nil, err
	}
	return decodeList(ports.FnQueryDeliveriesByCustodian, payload)
}

func (g *Gateway) QueryByStatus(ctx context.Context, actor kernel.Party, status delivery.Status) ([]*delivery.Delivery, error) {
	payload, err := g.query(ctx, ports.FnQueryDeliveriesByStatus, "", actorArgs(actor, status.String())...)
	if err != nil {
		return nil, err
	}
	return decodeList(ports.FnQueryDeliveriesByStatus, payload)
}

func (g *Gateway) invoke(ctx context.Context, fn, key string, args ...string) (json.RawMessage, error) {
	return g.call(ctx, fn, key, g.ledger.Invoke, args)
}

func (g *Gateway) query(ctx context.Context, fn, key string, args ...string) (json.RawMessage, error) {
	return g.call(ctx, fn, key, g.ledger.Query, args)
}

type callFunc func(ctx context.Context, fn string, args ...string) (ports.LedgerResponse, error)

func (g *Gateway) call(ctx context.Context, fn, key string, do callFunc, args []string) (json.RawMessage, error) {
	start := time.Now()
	resp, err := do(ctx, fn, args...)
	metrics.LedgerCallDuration.WithLabelValues(fn).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LedgerCallsTotal.WithLabelValues(fn, metrics.OutcomeUnavailable).Inc()
		return nil, errs.NewLedgerUnavailableError(fn, err)
	}
	if !resp.Success {
		metrics.LedgerCallsTotal.WithLabelValues(fn, metrics.OutcomeRejected).Inc()
		return nil, faultError(fn, key, resp.Fault)
	}

	metrics.LedgerCallsTotal.WithLabelValues(fn, metrics.OutcomeAccepted).Inc()
	return resp.Payload, nil
}

// faultError rebuilds the custody error a ledger fault stands for.
func faultError(fn, key string, f *ports.LedgerFault) error {
	if f == nil {
		return fmt.Errorf("%s: ledger rejected the call without a fault", fn)
	}

	switch f.Code {
	case ports.FaultNotFound:
		return errs.NewObjectNotFoundError("deliveryId", key)
	case ports.FaultUnauthorized:
		return errs.NewUnauthorizedError(f.Operation, f.FromState, f.Message)
	case ports.FaultInvalidTransition:
		return errs.NewInvalidTransitionError(f.Operation, f.FromState, f.Message)
	case ports.FaultConflictingHandoff:
		return errs.NewConflictingHandoffError(f.Operation, f.FromState)
	case ports.FaultInvalidArgument:
		return errs.NewValueIsInvalidErrorWithCause(fn, errors.New(f.Message))
	default:
		return fmt.Errorf("%s: ledger fault %s: %s", fn, f.Code, f.Message)
	}
}

func decodeList(fn string, payload json.RawMessage) ([]*delivery.Delivery, error) {
	var records []record.Delivery
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("%s: decode deliveries: %w", fn, err)
	}

	deliveries := make([]*delivery.Delivery, 0, len(records))
	for _, r := range records {
		d, err := r.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("%s: delivery %s: %w", fn, r.DeliveryID, err)
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, nil
}

func actorArgs(actor kernel.Party, args ...string) []string {
	return append([]string{actor.UserID(), actor.Role().String()}, args...)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
