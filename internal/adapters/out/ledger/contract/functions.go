package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"custody/internal/adapters/out/ledger/record"
	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/ports"
	"custody/internal/pkg/errs"
)

// Argument layout after the acting user's id and role:
//
//	CreateDelivery             deliveryId orderId customerId weight length width height city state country
//	ReadDelivery               deliveryId
//	GetDeliveryHistory         deliveryId
//	InitiateHandoff            deliveryId targetUserId targetRole
//	ConfirmHandoff             deliveryId city state country weight length width height
//	DisputeHandoff             deliveryId reason
//	CancelHandoff              deliveryId
//	CancelDelivery             deliveryId
//	UpdateLocation             deliveryId city state country
//	QueryDeliveriesByCustodian custodianId (empty for all, administrators only)
//	QueryDeliveriesByStatus    status
const createArity = 10

type mutation struct {
	op    delivery.Operation
	arity int
	apply func(d *delivery.Delivery, actor kernel.Party, args []string, now time.Time) error
}

var mutations = map[string]mutation{
	ports.FnInitiateHandoff: {
		op:    delivery.OpInitiateHandoff,
		arity: 3,
		apply: func(d *delivery.Delivery, actor kernel.Party, args []string, now time.Time) error {
			role, err := kernel.ParseRole(args[1])
			if err != nil {
				return err
			}
			target, err := kernel.NewParty(args[0], role)
			if err != nil {
				return err
			}
			return d.InitiateHandoff(actor, target, now)
		},
	},
	ports.FnConfirmHandoff: {
		op:    delivery.OpConfirmHandoff,
		arity: 8,
		apply: func(d *delivery.Delivery, actor kernel.Party, args []string, now time.Time) error {
			loc, locErr := kernel.NewLocation(args[0], args[1], args[2])
			pkg, pkgErr := parsePackage(args[3:7])
			if err := errors.Join(locErr, pkgErr); err != nil {
				return err
			}
			return d.ConfirmHandoff(actor, loc, pkg, now)
		},
	},
	ports.FnDisputeHandoff: {
		op:    delivery.OpDisputeHandoff,
		arity: 2,
		apply: func(d *delivery.Delivery, actor kernel.Party, args []string, now time.Time) error {
			return d.DisputeHandoff(actor, delivery.DisputeReason(args[0]), now)
		},
	},
	ports.FnCancelHandoff: {
		op:    delivery.OpCancelHandoff,
		arity: 1,
		apply: func(d *delivery.Delivery, actor kernel.Party, _ []string, now time.Time) error {
			return d.CancelHandoff(actor, now)
		},
	},
	ports.FnCancelDelivery: {
		op:    delivery.OpCancelDelivery,
		arity: 1,
		apply: func(d *delivery.Delivery, actor kernel.Party, _ []string, now time.Time) error {
			return d.Cancel(actor, now)
		},
	},
	ports.FnUpdateLocation: {
		op:    delivery.OpUpdateLocation,
		arity: 4,
		apply: func(d *delivery.Delivery, actor kernel.Party, args []string, now time.Time) error {
			loc, err := kernel.NewLocation(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			return d.UpdateLocation(actor, loc, now)
		},
	},
}

func newDeliveryFromArgs(seller kernel.Party, args []string, now time.Time) (*delivery.Delivery, error) {
	id, err := parseDeliveryID(args[0])
	if err != nil {
		return nil, err
	}
	pkg, pkgErr := parsePackage(args[3:7])
	origin, locErr := kernel.NewLocation(args[7], args[8], args[9])
	if err := errors.Join(pkgErr, locErr); err != nil {
		return nil, err
	}
	return delivery.NewDelivery(id, args[1], seller.UserID(), args[2], pkg, origin, now)
}

func parseDeliveryID(s string) (delivery.ID, error) {
	return delivery.ParseID(strings.TrimSpace(s))
}

// parsePackage reads weight, length, width and height.
func parsePackage(args []string) (kernel.PackageAttributes, error) {
	names := [...]string{"packageWeight", "length", "width", "height"}
	var values [4]float64
	for i, name := range names {
		v, err := strconv.ParseFloat(strings.TrimSpace(args[i]), 64)
		if err != nil {
			return kernel.PackageAttributes{}, errs.NewValueIsInvalidErrorWithCause(name, err)
		}
		values[i] = v
	}
	return kernel.NewPackageAttributes(values[0], values[1], values[2], values[3])
}

func (e *Engine) load(ctx context.Context, fn, rawID string) (*delivery.Delivery, *ports.LedgerResponse, error) {
	id, err := parseDeliveryID(rawID)
	if err != nil {
		resp := faultFrom(err)
		return nil, &resp, nil
	}
	current, err := e.store.Get(ctx, id.String())
	if errors.Is(err, ErrNotFound) {
		resp := faultFrom(errs.NewObjectNotFoundError("deliveryId", id))
		return nil, &resp, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%s: read %s: %w", fn, id, err)
	}
	d, err := record.Unmarshal(current.Value)
	if err != nil {
		e.logger.Error("stored delivery is unreadable", "deliveryId", id, "error", err)
		resp := faultResponse(ports.FaultInternal, "stored delivery is unreadable")
		return nil, &resp, nil
	}
	return d, nil, nil
}

func (e *Engine) readDelivery(ctx context.Context, args []string) (ports.LedgerResponse, error) {
	actor, rest, err := parseCall(args, 1)
	if err != nil {
		return faultFrom(err), nil
	}
	d, fault, err := e.load(ctx, ports.FnReadDelivery, rest[0])
	if err != nil || fault != nil {
		return deref(fault), err
	}
	if err := e.authorizer.Authorize(actor, d, delivery.OpRead); err != nil {
		return faultFrom(err), nil
	}
	return payloadResponse(record.FromDomain(d))
}

func (e *Engine) deliveryHistory(ctx context.Context, args []string) (ports.LedgerResponse, error) {
	actor, rest, err := parseCall(args, 1)
	if err != nil {
		return faultFrom(err), nil
	}
	d, fault, err := e.load(ctx, ports.FnGetDeliveryHistory, rest[0])
	if err != nil || fault != nil {
		return deref(fault), err
	}
	if err := e.authorizer.Authorize(actor, d, delivery.OpReadHistory); err != nil {
		return faultFrom(err), nil
	}

	versions, err := e.store.History(ctx, d.ID().String())
	if err != nil {
		return ports.LedgerResponse{}, fmt.Errorf("%s: history %s: %w", ports.FnGetDeliveryHistory, d.ID(), err)
	}

	entries := make([]record.HistoryEntry, 0, len(versions))
	for _, v := range versions {
		entry := record.HistoryEntry{
			TxID:      v.TxID,
			Timestamp: v.CommittedAt.UTC().Format(record.TimeLayout),
			IsDelete:  v.IsDelete,
		}
		if !v.IsDelete {
			var r record.Delivery
			if err := json.Unmarshal(v.Value, &r); err != nil {
				e.logger.Error("history version is unreadable", "deliveryId", d.ID(), "txId", v.TxID, "error", err)
				return faultResponse(ports.FaultInternal, "history version is unreadable"), nil
			}
			entry.Delivery = &r
		}
		entries = append(entries, entry)
	}
	return payloadResponse(entries)
}

// queryByCustodian lists deliveries by custodian. Administrators may ask for any
// custodian, or for every delivery with an empty id. Everybody else may only ask
// about themselves and gets the deliveries their role relates them to: a customer's
// purchases, a seller's sales, or what a transporter holds or is being offered.
func (e *Engine) queryByCustodian(ctx context.Context, args []string) (ports.LedgerResponse, error) {
	actor, rest, err := parseCall(args, 1)
	if err != nil {
		return faultFrom(err), nil
	}
	custodianID := strings.TrimSpace(rest[0])

	var match func(d *delivery.Delivery) bool
	switch {
	case actor.Role() == kernel.RoleAdmin && custodianID == "":
		match = func(*delivery.Delivery) bool { return true }
	case actor.Role() == kernel.RoleAdmin:
		match = func(d *delivery.Delivery) bool { return d.Custodian().Is(custodianID) }
	case custodianID != "" && custodianID != actor.UserID():
		return ports.LedgerResponse{Fault: &ports.LedgerFault{
			Code:      ports.FaultUnauthorized,
			Message:   "only administrators may query other users' deliveries",
			Operation: "query deliveries by custodian",
			FromState: "ANY",
		}}, nil
	case actor.Role() == kernel.RoleCustomer:
		match = func(d *delivery.Delivery) bool { return d.CustomerID() == actor.UserID() }
	case actor.Role() == kernel.RoleSeller:
		match = func(d *delivery.Delivery) bool { return d.SellerID() == actor.UserID() }
	default:
		match = func(d *delivery.Delivery) bool {
			if d.Custodian().Is(actor.UserID()) {
				return true
			}
			p := d.PendingHandoff()
			return p != nil && p.Target().Is(actor.UserID())
		}
	}

	return e.scan(ctx, ports.FnQueryDeliveriesByCustodian, match)
}

// queryByStatus lists deliveries in a status. Administrators see all of them,
// everybody else only the ones they are involved in.
func (e *Engine) queryByStatus(ctx context.Context, args []string) (ports.LedgerResponse, error) {
	actor, rest, err := parseCall(args, 1)
	if err != nil {
		return faultFrom(err), nil
	}
	status, err := delivery.ParseStatus(rest[0])
	if err != nil {
		return faultFrom(err), nil
	}

	return e.scan(ctx, ports.FnQueryDeliveriesByStatus, func(d *delivery.Delivery) bool {
		if d.Status() != status {
			return false
		}
		return actor.Role() == kernel.RoleAdmin || d.IsInvolved(actor.UserID())
	})
}

func (e *Engine) scan(ctx context.Context, fn string, match func(*delivery.Delivery) bool) (ports.LedgerResponse, error) {
	values, err := e.store.List(ctx)
	if err != nil {
		return ports.LedgerResponse{}, fmt.Errorf("%s: list: %w", fn, err)
	}

	result := make([]record.Delivery, 0)
	for _, v := range values {
		d, err := record.Unmarshal(v)
		if err != nil {
			e.logger.Warn("skipping unreadable delivery", "fn", fn, "error", err)
			continue
		}
		if match(d) {
			result = append(result, record.FromDomain(d))
		}
	}
	slices.SortFunc(result, func(a, b record.Delivery) int { return strings.Compare(a.DeliveryID, b.DeliveryID) })

	return payloadResponse(result)
}

func payloadResponse(v any) (ports.LedgerResponse, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return ports.LedgerResponse{}, fmt.Errorf("encode payload: %w", err)
	}
	return ports.LedgerResponse{Success: true, Payload: payload}, nil
}

func deref(resp *ports.LedgerResponse) ports.LedgerResponse {
	if resp == nil {
		return ports.LedgerResponse{}
	}
	return *resp
}
