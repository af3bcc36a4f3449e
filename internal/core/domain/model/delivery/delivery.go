package delivery

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
)

// MaxOrderIDLength bounds the order reference stored on the ledger.
const MaxOrderIDLength = 50

// ErrDeliveryIsNotConstructed is returned when a Delivery was not created through
// NewDelivery or Restore.
var ErrDeliveryIsNotConstructed = errors.New("Delivery must be created via NewDelivery or Restore")

// Operation names a custody operation. It appears in every rejection so a client
// can tell what was attempted.
type Operation string

const (
	OpCreate          Operation = "create delivery"
	OpInitiateHandoff Operation = "initiate handoff"
	OpConfirmHandoff  Operation = "confirm handoff"
	OpDisputeHandoff  Operation = "dispute handoff"
	OpCancelHandoff   Operation = "cancel handoff"
	OpCancelDelivery  Operation = "cancel delivery"
	OpUpdateLocation  Operation = "update location"
	OpRead            Operation = "read delivery"
	OpReadHistory     Operation = "read delivery history"
)

func (o Operation) String() string { return string(o) }

// IsMutation reports whether o changes ledger state.
func (o Operation) IsMutation() bool {
	return o != OpRead && o != OpReadHistory
}

// Delivery is the ledger-owned aggregate tracking one package's chain of custody.
// Its methods are the custody state machine: each either applies a transition
// atomically or rejects it without touching any field.
//
// Delivery follows these invariants:
//   - At most one pending handoff exists, and only while the status awaits one
//   - The custodian changes only when a handoff is confirmed by its target
//   - The status only moves along the transitions documented on Status
//   - Package attributes change only when a handoff is confirmed
//   - Location changes on confirmation or when the custodian reports it in transit
type Delivery struct {
	// id is the ledger key, DEL-YYYYMMDD-XXXXXXXX
	id ID

	// orderID links back to the off-ledger order that created the delivery
	orderID string

	// sellerID created the delivery and makes the first handoff
	sellerID string

	// customerID is the final recipient
	customerID string

	status Status

	// custodian holds the package; zero before the first confirmed pickup
	custodian kernel.Party

	// pending is the outstanding handoff offer, if any
	pending *PendingHandoff

	location kernel.Location
	pkg      kernel.PackageAttributes

	// dispute is the last refused handoff, kept for resolution
	dispute *Dispute

	updatedAt time.Time

	isConstructed bool
}

// NewDelivery creates a delivery in PENDING_PICKUP for a confirmed order.
// The package attributes and origin location are the seller's declaration; nobody
// holds custody until a transporter confirms the pickup handoff.
//
// Example:
//
//	pkg, _ := kernel.NewPackageAttributes(2.5, 30, 20, 10)
//	origin, _ := kernel.NewLocation("Chicago", "IL", "USA")
//	d, err := delivery.NewDelivery(delivery.NewID(now), orderID, "seller-1", "customer-1", pkg, origin, now)
func NewDelivery(
	id ID,
	orderID string,
	sellerID string,
	customerID string,
	pkg kernel.PackageAttributes,
	origin kernel.Location,
	now time.Time,
) (*Delivery, error) {
	d := &Delivery{
		status:        PendingPickup,
		updatedAt:     now.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		d.setID(id),
		d.setOrderID(orderID),
		d.setUserID("sellerId", &d.sellerID, sellerID),
		d.setUserID("customerId", &d.customerID, customerID),
		pkg.Validate(),
		origin.Validate(),
	); err != nil {
		return nil, err
	}
	d.pkg = pkg
	d.location = origin

	return d, nil
}

// Snapshot is the complete persisted state of a Delivery, used by ledger codecs.
type Snapshot struct {
	ID         ID
	OrderID    string
	SellerID   string
	CustomerID string
	Status     Status
	Custodian  kernel.Party
	Pending    *PendingHandoff
	Location   kernel.Location
	Package    kernel.PackageAttributes
	Dispute    *Dispute
	UpdatedAt  time.Time
}

// Restore rebuilds a Delivery from a snapshot read back from the ledger.
// It rejects snapshots that break the aggregate's invariants.
func Restore(s Snapshot) (*Delivery, error) {
	d := &Delivery{
		status:        s.Status,
		custodian:     s.Custodian,
		pending:       s.Pending,
		location:      s.Location,
		pkg:           s.Package,
		dispute:       s.Dispute,
		updatedAt:     s.UpdatedAt.UTC(),
		isConstructed: true,
	}

	var pendingErr error
	if s.Status.AwaitsHandoff() != (s.Pending != nil) {
		pendingErr = errs.NewValueIsInvalidErrorWithCause("pendingHandoff",
			fmt.Errorf("status %s does not match pending handoff presence", s.Status))
	}
	var custodianErr error
	if !s.Custodian.IsZero() {
		custodianErr = s.Custodian.Validate()
	}

	if err := errors.Join(
		d.setID(s.ID),
		d.setOrderID(s.OrderID),
		d.setUserID("sellerId", &d.sellerID, s.SellerID),
		d.setUserID("customerId", &d.customerID, s.CustomerID),
		s.Status.Validate(),
		custodianErr,
		pendingErr,
		s.Location.Validate(),
		s.Package.Validate(),
	); err != nil {
		return nil, err
	}

	return d, nil
}

// Snapshot returns the delivery's full state.
func (d *Delivery) Snapshot() Snapshot {
	c := d.Clone()
	return Snapshot{
		ID:         c.id,
		OrderID:    c.orderID,
		SellerID:   c.sellerID,
		CustomerID: c.customerID,
		Status:     c.status,
		Custodian:  c.custodian,
		Pending:    c.pending,
		Location:   c.location,
		Package:    c.pkg,
		Dispute:    c.dispute,
		UpdatedAt:  c.updatedAt,
	}
}

// Clone returns a deep copy, used to dry-run a transition without touching d.
func (d *Delivery) Clone() *Delivery {
	c := *d
	if d.pending != nil {
		p := *d.pending
		c.pending = &p
	}
	if d.dispute != nil {
		dp := *d.dispute
		c.dispute = &dp
	}
	return &c
}

// Validate ensures the Delivery was built by a constructor.
func (d *Delivery) Validate() error {
	if d == nil || !d.isConstructed {
		return ErrDeliveryIsNotConstructed
	}
	return nil
}

// ID returns the ledger key.
func (d *Delivery) ID() ID { return d.id }

// OrderID returns the linked order reference.
func (d *Delivery) OrderID() string { return d.orderID }

// SellerID returns the seller who created the delivery.
func (d *Delivery) SellerID() string { return d.sellerID }

// CustomerID returns the final recipient.
func (d *Delivery) CustomerID() string { return d.customerID }

// Status returns the current lifecycle state.
func (d *Delivery) Status() Status { return d.status }

// Custodian returns the party holding the package, zero before pickup.
func (d *Delivery) Custodian() kernel.Party { return d.custodian }

// PendingHandoff returns the outstanding offer or nil.
func (d *Delivery) PendingHandoff() *PendingHandoff { return d.pending }

// LastLocation returns the last recorded location.
func (d *Delivery) LastLocation() kernel.Location { return d.location }

// Package returns the last asserted package attributes.
func (d *Delivery) Package() kernel.PackageAttributes { return d.pkg }

// LastDispute returns the most recent refused handoff or nil.
func (d *Delivery) LastDispute() *Dispute { return d.dispute }

// UpdatedAt returns the time of the last transition.
func (d *Delivery) UpdatedAt() time.Time { return d.updatedAt }

// IsInvolved reports whether userID has any recorded relationship to the delivery:
// seller, customer, custodian, or a party of the pending handoff.
func (d *Delivery) IsInvolved(userID string) bool {
	if userID == "" {
		return false
	}
	if d.sellerID == userID || d.customerID == userID || d.custodian.Is(userID) {
		return true
	}
	return d.pending != nil && (d.pending.initiator.Is(userID) || d.pending.target.Is(userID))
}

// MayHandOff reports whether actor is the one entitled to offer the package:
// the custodian, or the seller while nobody holds custody yet.
func (d *Delivery) MayHandOff(actor kernel.Party) bool {
	if d.custodian.IsZero() {
		return actor.Role() == kernel.RoleSeller && actor.UserID() == d.sellerID
	}
	return samePartyAs(d.custodian, actor)
}

// InitiateHandoff offers the package to target. Legal only from PENDING_PICKUP or
// IN_TRANSIT, only by the party entitled to hand off, and only when no other offer
// is outstanding. The first leg must go to a transporter; an offer to the delivery's
// own customer from IN_TRANSIT is the final leg.
func (d *Delivery) InitiateHandoff(actor, target kernel.Party, now time.Time) error {
	op := OpInitiateHandoff
	if err := errors.Join(actor.Validate(), target.Validate()); err != nil {
		return err
	}
	if d.pending != nil {
		return errs.NewConflictingHandoffError(op.String(), d.status.String())
	}
	if d.status != PendingPickup && d.status != InTransit {
		return d.invalid(op, "handoffs start only from PENDING_PICKUP or IN_TRANSIT")
	}
	if !d.MayHandOff(actor) {
		return d.unauthorized(op, "only the current custodian can initiate a handoff")
	}
	if target.UserID() == actor.UserID() {
		return errs.NewValueIsInvalidErrorWithCause("target", errors.New("cannot hand off to yourself"))
	}

	var next Status
	switch target.Role() { //nolint:exhaustive // other roles cannot receive a package
	case kernel.RoleTransporter:
		next = PendingTransitHandoff
		if d.status == PendingPickup {
			next = PendingPickupHandoff
		}
	case kernel.RoleCustomer:
		if d.status == PendingPickup {
			return d.invalid(op, "sellers can only hand off to a transporter")
		}
		if target.UserID() != d.customerID {
			return errs.NewValueIsInvalidErrorWithCause("target",
				errors.New("the final leg must go to the delivery's customer"))
		}
		next = PendingDeliveryConfirmation
	default:
		return errs.NewValueIsInvalidErrorWithCause("target role",
			fmt.Errorf("can only hand off to %s or %s", kernel.RoleTransporter, kernel.RoleCustomer))
	}

	pending, err := NewPendingHandoff(actor, target, now)
	if err != nil {
		return err
	}
	d.pending = pending
	d.status = next
	d.updatedAt = now.UTC()
	return nil
}

// ConfirmHandoff accepts the outstanding offer. Only the target may confirm; the
// target becomes custodian and asserts the package's location and attributes.
// A transporter target moves the delivery to IN_TRANSIT, the customer to
// CONFIRMED_DELIVERY.
func (d *Delivery) ConfirmHandoff(
	actor kernel.Party,
	location kernel.Location,
	pkg kernel.PackageAttributes,
	now time.Time,
) error {
	op := OpConfirmHandoff
	if err := actor.Validate(); err != nil {
		return err
	}
	if d.pending == nil {
		return d.invalid(op, "no pending handoff")
	}
	if !samePartyAs(d.pending.target, actor) {
		return d.unauthorized(op, "not the intended recipient")
	}
	if err := errors.Join(location.Validate(), pkg.Validate()); err != nil {
		return err
	}

	next := InTransit
	if d.pending.IsFinalLeg() {
		next = ConfirmedDelivery
	}

	d.custodian = d.pending.target
	d.pending = nil
	d.location = location
	d.pkg = pkg
	d.status = next
	d.updatedAt = now.UTC()
	return nil
}

// DisputeHandoff refuses the outstanding offer. Only the target may dispute. The
// delivery moves to the matching DISPUTED state and the previous custodian keeps
// the package until the dispute is resolved outside the state machine.
func (d *Delivery) DisputeHandoff(actor kernel.Party, reason DisputeReason, now time.Time) error {
	op := OpDisputeHandoff
	if err := actor.Validate(); err != nil {
		return err
	}
	if d.pending == nil {
		return d.invalid(op, "no pending handoff")
	}
	if !samePartyAs(d.pending.target, actor) {
		return d.unauthorized(op, "not the intended recipient")
	}
	validReason, err := NewDisputeReason(string(reason))
	if err != nil {
		return err
	}
	next, ok := d.status.disputed()
	if !ok {
		return d.invalid(op, "status has no dispute state")
	}

	d.dispute = &Dispute{
		By:         actor,
		Reason:     validReason,
		FromStatus: d.status,
		At:         now.UTC(),
	}
	d.pending = nil
	d.status = next
	d.updatedAt = now.UTC()
	return nil
}

// CancelHandoff withdraws the outstanding offer. Only its initiator may withdraw it;
// the delivery reverts to PENDING_PICKUP or IN_TRANSIT and custody is unchanged.
func (d *Delivery) CancelHandoff(actor kernel.Party, now time.Time) error {
	op := OpCancelHandoff
	if err := actor.Validate(); err != nil {
		return err
	}
	if d.pending == nil {
		return d.invalid(op, "no pending handoff")
	}
	if !samePartyAs(d.pending.initiator, actor) {
		return d.unauthorized(op, "only the handoff initiator can cancel it")
	}
	next, ok := d.status.stable()
	if !ok {
		return d.invalid(op, "status has no stable predecessor")
	}

	d.pending = nil
	d.status = next
	d.updatedAt = now.UTC()
	return nil
}

// Cancel cancels the delivery before pickup. Only the delivery's customer may
// cancel, and only from PENDING_CONFIRMATION or PENDING_PICKUP.
func (d *Delivery) Cancel(actor kernel.Party, now time.Time) error {
	op := OpCancelDelivery
	if err := actor.Validate(); err != nil {
		return err
	}
	if d.status != PendingConfirmation && d.status != PendingPickup {
		return d.invalid(op, "delivery can only be cancelled before pickup")
	}
	if actor.Role() != kernel.RoleCustomer || actor.UserID() != d.customerID {
		return d.unauthorized(op, "only the delivery's customer can cancel it")
	}

	d.status = Cancelled
	d.updatedAt = now.UTC()
	return nil
}

// UpdateLocation records where the package is while in transit. Only the current
// custodian may report it; the status does not change.
func (d *Delivery) UpdateLocation(actor kernel.Party, location kernel.Location, now time.Time) error {
	op := OpUpdateLocation
	if err := actor.Validate(); err != nil {
		return err
	}
	if d.status != InTransit {
		return d.invalid(op, "location is tracked only while IN_TRANSIT")
	}
	if !samePartyAs(d.custodian, actor) {
		return d.unauthorized(op, "only the current custodian can update the location")
	}
	if err := location.Validate(); err != nil {
		return err
	}

	d.location = location
	d.updatedAt = now.UTC()
	return nil
}

func (d *Delivery) invalid(op Operation, reason string) error {
	return errs.NewInvalidTransitionError(op.String(), d.status.String(), reason)
}

func (d *Delivery) unauthorized(op Operation, reason string) error {
	return errs.NewUnauthorizedError(op.String(), d.status.String(), reason)
}

func (d *Delivery) setID(id ID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Delivery) setOrderID(orderID string) error {
	if orderID == "" {
		return errs.NewValueIsRequiredError("orderId")
	}
	if n := utf8.RuneCountInString(orderID); n > MaxOrderIDLength {
		return errs.NewValueIsOutOfRangeError("orderId length", n, 1, MaxOrderIDLength)
	}
	d.orderID = orderID
	return nil
}

func (d *Delivery) setUserID(name string, field *string, userID string) error {
	if userID == "" {
		return errs.NewValueIsRequiredError(name)
	}
	if n := utf8.RuneCountInString(userID); n > kernel.MaxUserIDLength {
		return errs.NewValueIsOutOfRangeError(name+" length", n, 1, kernel.MaxUserIDLength)
	}
	*field = userID
	return nil
}

func samePartyAs(recorded, actor kernel.Party) bool {
	return !recorded.IsZero() && recorded.UserID() == actor.UserID() && recorded.Role() == actor.Role()
}
