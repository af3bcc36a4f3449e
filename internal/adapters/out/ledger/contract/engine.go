// Package contract is the custody contract: the ledger-side implementation of every
// ledger function. It decodes the stored delivery, re-checks authorization and the
// state machine with the same domain rules the coordinator uses, and commits the
// new version with a compare-and-set on the Store so concurrent writers serialize.
package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"custody/internal/adapters/out/ledger/record"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/services"
	"custody/internal/core/ports"
	"custody/internal/pkg/errs"
)

// DefaultMaxAttempts bounds how often a mutation is re-validated after losing a
// compare-and-set race.
const DefaultMaxAttempts = 5

// ErrContention is returned when a mutation kept losing compare-and-set races.
var ErrContention = errors.New("ledger contention: too many concurrent writers")

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the transaction timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMaxAttempts overrides DefaultMaxAttempts.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

// Engine implements ports.Ledger over a Store.
type Engine struct {
	store       Store
	authorizer  services.CustodyAuthorizer
	now         func() time.Time
	maxAttempts int
	logger      *slog.Logger
}

var _ ports.Ledger = (*Engine)(nil)

// NewEngine creates the custody contract engine over store.
func NewEngine(store Store, logger *slog.Logger, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errs.NewValueIsRequiredError("store")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}

	e := &Engine{
		store:       store,
		authorizer:  services.NewCustodyAuthorizer(),
		now:         time.Now,
		maxAttempts: DefaultMaxAttempts,
		logger:      logger.With("component", "custody-contract"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Invoke runs a state-mutating ledger function.
func (e *Engine) Invoke(ctx context.Context, fn string, args ...string) (ports.LedgerResponse, error) {
	if fn == ports.FnCreateDelivery {
		return e.createDelivery(ctx, args)
	}
	m, ok := mutations[fn]
	if !ok {
		return faultResponse(ports.FaultInvalidArgument, fmt.Sprintf("%s is not a transaction function", fn)), nil
	}
	return e.mutate(ctx, fn, m, args)
}

// Query runs a read-only ledger function against the latest committed state.
func (e *Engine) Query(ctx context.Context, fn string, args ...string) (ports.LedgerResponse, error) {
	switch fn {
	case ports.FnReadDelivery:
		return e.readDelivery(ctx, args)
	case ports.FnGetDeliveryHistory:
		return e.deliveryHistory(ctx, args)
	case ports.FnQueryDeliveriesByCustodian:
		return e.queryByCustodian(ctx, args)
	case ports.FnQueryDeliveriesByStatus:
		return e.queryByStatus(ctx, args)
	}
	return faultResponse(ports.FaultInvalidArgument, fmt.Sprintf("%s is not a query function", fn)), nil
}

func (e *Engine) mutate(ctx context.Context, fn string, m mutation, args []string) (ports.LedgerResponse, error) {
	actor, rest, err := parseCall(args, m.arity)
	if err != nil {
		return faultFrom(err), nil
	}
	id, err := parseDeliveryID(rest[0])
	if err != nil {
		return faultFrom(err), nil
	}

	for attempt := 1; ; attempt++ {
		current, err := e.store.Get(ctx, id.String())
		if errors.Is(err, ErrNotFound) {
			return faultFrom(errs.NewObjectNotFoundError("deliveryId", id)), nil
		}
		if err != nil {
			return ports.LedgerResponse{}, fmt.Errorf("%s: read %s: %w", fn, id, err)
		}

		d, err := record.Unmarshal(current.Value)
		if err != nil {
			e.logger.Error("stored delivery is unreadable", "deliveryId", id, "error", err)
			return faultResponse(ports.FaultInternal, "stored delivery is unreadable"), nil
		}
		oldStatus := d.Status()

		if err := e.authorizer.Authorize(actor, d, m.op); err != nil {
			return faultFrom(err), nil
		}
		now := e.now()
		if err := m.apply(d, actor, rest[1:], now); err != nil {
			return faultFrom(err), nil
		}

		value, err := record.Marshal(d)
		if err != nil {
			return ports.LedgerResponse{}, fmt.Errorf("%s: encode %s: %w", fn, id, err)
		}
		var events []Event
		if d.Status() != oldStatus {
			events = append(events, statusEvent(record.EventDeliveryStatusChanged, d.ID().String(), d.OrderID(),
				oldStatus.String(), d.Status().String(), now))
		}

		err = e.store.Put(ctx, id.String(), value, current.Version, events)
		if errors.Is(err, ErrVersionConflict) {
			if attempt < e.maxAttempts {
				e.logger.Debug("lost write race, re-validating", "fn", fn, "deliveryId", id, "attempt", attempt)
				continue
			}
			return ports.LedgerResponse{}, fmt.Errorf("%s: %s: %w", fn, id, ErrContention)
		}
		if err != nil {
			return ports.LedgerResponse{}, fmt.Errorf("%s: commit %s: %w", fn, id, err)
		}

		return ports.LedgerResponse{Success: true, Payload: value}, nil
	}
}

func (e *Engine) createDelivery(ctx context.Context, args []string) (ports.LedgerResponse, error) {
	actor, rest, err := parseCall(args, createArity)
	if err != nil {
		return faultFrom(err), nil
	}
	if err := e.authorizer.AuthorizeCreate(actor); err != nil {
		return faultFrom(err), nil
	}
	now := e.now()
	d, err := newDeliveryFromArgs(actor, rest, now)
	if err != nil {
		return faultFrom(err), nil
	}

	value, err := record.Marshal(d)
	if err != nil {
		return ports.LedgerResponse{}, fmt.Errorf("%s: encode %s: %w", ports.FnCreateDelivery, d.ID(), err)
	}
	created := statusEvent(record.EventDeliveryCreated, d.ID().String(), d.OrderID(), "", d.Status().String(), now)

	err = e.store.Put(ctx, d.ID().String(), value, 0, []Event{created})
	if errors.Is(err, ErrVersionConflict) {
		return faultResponse(ports.FaultInvalidArgument, fmt.Sprintf("delivery %s already exists", d.ID())), nil
	}
	if err != nil {
		return ports.LedgerResponse{}, fmt.Errorf("%s: commit %s: %w", ports.FnCreateDelivery, d.ID(), err)
	}

	return ports.LedgerResponse{Success: true, Payload: value}, nil
}

func statusEvent(name, deliveryID, orderID, oldStatus, newStatus string, at time.Time) Event {
	payload, _ := json.Marshal(record.StatusEvent{
		DeliveryID: deliveryID,
		OrderID:    orderID,
		OldStatus:  oldStatus,
		NewStatus:  newStatus,
		Timestamp:  at.UTC().Format(record.TimeLayout),
	})
	return Event{Name: name, Payload: payload}
}

func parseCall(args []string, arity int) (kernel.Party, []string, error) {
	if len(args) != arity+2 {
		return kernel.Party{}, nil, errs.NewValueIsInvalidErrorWithCause("args",
			fmt.Errorf("expected %d arguments, got %d", arity+2, len(args)))
	}
	role, err := kernel.ParseRole(args[1])
	if err != nil {
		return kernel.Party{}, nil, err
	}
	actor, err := kernel.NewParty(args[0], role)
	if err != nil {
		return kernel.Party{}, nil, err
	}
	return actor, args[2:], nil
}

func faultResponse(code, message string) ports.LedgerResponse {
	return ports.LedgerResponse{Fault: &ports.LedgerFault{Code: code, Message: message}}
}

// faultFrom translates a domain rejection into a ledger fault.
func faultFrom(err error) ports.LedgerResponse {
	var (
		unauthorized *errs.UnauthorizedError
		invalid      *errs.InvalidTransitionError
		conflicting  *errs.ConflictingHandoffError
	)

	fault := &ports.LedgerFault{Message: err.Error()}
	switch {
	case errors.As(err, &unauthorized):
		fault.Code = ports.FaultUnauthorized
		fault.Message = unauthorized.Reason
		fault.Operation, fault.FromState = unauthorized.Operation, unauthorized.FromState
	case errors.As(err, &invalid):
		fault.Code = ports.FaultInvalidTransition
		fault.Message = invalid.Reason
		fault.Operation, fault.FromState = invalid.Operation, invalid.FromState
	case errors.As(err, &conflicting):
		fault.Code = ports.FaultConflictingHandoff
		fault.Operation, fault.FromState = conflicting.Operation, conflicting.FromState
	case errors.Is(err, errs.ErrObjectNotFound):
		fault.Code = ports.FaultNotFound
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		fault.Code = ports.FaultInvalidArgument
	default:
		fault.Code = ports.FaultInternal
	}
	return ports.LedgerResponse{Fault: fault}
}
