package delivery_test

import (
	"testing"
	"time"

	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func party(t *testing.T, id string, role kernel.Role) kernel.Party {
	t.Helper()
	p, err := kernel.NewParty(id, role)
	require.NoError(t, err)
	return p
}

func location(t *testing.T, city, state, country string) kernel.Location {
	t.Helper()
	l, err := kernel.NewLocation(city, state, country)
	require.NoError(t, err)
	return l
}

func pkg(t *testing.T, weight float64) kernel.PackageAttributes {
	t.Helper()
	p, err := kernel.NewPackageAttributes(weight, 30, 20, 10)
	require.NoError(t, err)
	return p
}

func newDelivery(t *testing.T) *delivery.Delivery {
	t.Helper()
	d, err := delivery.NewDelivery(
		delivery.NewID(now), "order-1", "seller-1", "customer-1",
		pkg(t, 1.0), location(t, "Milwaukee", "WI", "USA"), now)
	require.NoError(t, err)
	return d
}

// inTransit returns a delivery held by transporter t1.
func inTransit(t *testing.T) (*delivery.Delivery, kernel.Party) {
	t.Helper()
	d := newDelivery(t)
	t1 := party(t, "t1", kernel.RoleTransporter)
	require.NoError(t, d.InitiateHandoff(party(t, "seller-1", kernel.RoleSeller), t1, now))
	require.NoError(t, d.ConfirmHandoff(t1, location(t, "Chicago", "IL", "USA"), pkg(t, 1.0), now))
	require.Equal(t, delivery.InTransit, d.Status())
	return d, t1
}

func TestNewDelivery(t *testing.T) {
	t.Run("starts pending pickup with no custodian", func(t *testing.T) {
		d := newDelivery(t)

		require.NoError(t, d.Validate())
		assert.Equal(t, delivery.PendingPickup, d.Status())
		assert.True(t, d.Custodian().IsZero())
		assert.Nil(t, d.PendingHandoff())
		assert.Equal(t, "seller-1", d.SellerID())
		assert.Equal(t, "customer-1", d.CustomerID())
	})

	t.Run("reports all invalid fields together", func(t *testing.T) {
		d, err := delivery.NewDelivery("bad", "", "", "customer-1",
			kernel.PackageAttributes{}, kernel.Location{}, now)

		require.Error(t, err)
		assert.Nil(t, d)
		assert.Contains(t, err.Error(), "deliveryId")
		assert.Contains(t, err.Error(), "orderId")
		assert.Contains(t, err.Error(), "sellerId")
		assert.Contains(t, err.Error(), "package attributes must be created")
		assert.Contains(t, err.Error(), "location must be created")
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var d delivery.Delivery
		assert.ErrorIs(t, d.Validate(), delivery.ErrDeliveryIsNotConstructed)
	})
}

func TestDelivery_PickupLeg(t *testing.T) {
	seller := party(t, "seller-1", kernel.RoleSeller)
	transporter := party(t, "T", kernel.RoleTransporter)

	t.Run("seller initiates and transporter confirms", func(t *testing.T) {
		d := newDelivery(t)

		require.NoError(t, d.InitiateHandoff(seller, transporter, now))
		assert.Equal(t, delivery.PendingPickupHandoff, d.Status())
		require.NotNil(t, d.PendingHandoff())
		assert.True(t, d.PendingHandoff().Initiator().IsEqual(seller))
		assert.True(t, d.Custodian().IsZero(), "initiate must not move custody")

		chicago := location(t, "Chicago", "IL", "USA")
		require.NoError(t, d.ConfirmHandoff(transporter, chicago, pkg(t, 2.5), now.Add(time.Hour)))

		assert.Equal(t, delivery.InTransit, d.Status())
		assert.True(t, d.Custodian().IsEqual(transporter))
		assert.Nil(t, d.PendingHandoff())
		assert.Equal(t, "Chicago", d.LastLocation().City())
		assert.InDelta(t, 2.5, d.Package().Weight(), 0)
		assert.Equal(t, now.Add(time.Hour), d.UpdatedAt())
	})

	t.Run("seller cannot hand off straight to the customer", func(t *testing.T) {
		d := newDelivery(t)

		err := d.InitiateHandoff(seller, party(t, "customer-1", kernel.RoleCustomer), now)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, delivery.PendingPickup, d.Status())
	})

	t.Run("another seller cannot initiate", func(t *testing.T) {
		d := newDelivery(t)

		err := d.InitiateHandoff(party(t, "seller-2", kernel.RoleSeller), transporter, now)

		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})

	t.Run("second offer conflicts", func(t *testing.T) {
		d := newDelivery(t)
		require.NoError(t, d.InitiateHandoff(seller, transporter, now))

		err := d.InitiateHandoff(seller, party(t, "T2", kernel.RoleTransporter), now)

		require.ErrorIs(t, err, errs.ErrConflictingHandoff)
		assert.True(t, d.PendingHandoff().Target().IsEqual(transporter))
	})

	t.Run("admin cannot be a handoff target", func(t *testing.T) {
		d := newDelivery(t)

		err := d.InitiateHandoff(seller, party(t, "root", kernel.RoleAdmin), now)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Nil(t, d.PendingHandoff())
	})
}

func TestDelivery_ConfirmHandoff(t *testing.T) {
	t.Run("mismatched actor is unauthorized and state is unchanged", func(t *testing.T) {
		d, t1 := inTransit(t)
		t2 := party(t, "t2", kernel.RoleTransporter)
		require.NoError(t, d.InitiateHandoff(t1, t2, now))
		before := d.Snapshot()

		err := d.ConfirmHandoff(party(t, "t3", kernel.RoleTransporter),
			location(t, "Gary", "IN", "USA"), pkg(t, 9), now.Add(time.Hour))

		var unauthorized *errs.UnauthorizedError
		require.ErrorAs(t, err, &unauthorized)
		assert.Equal(t, "confirm handoff", unauthorized.Operation)
		assert.Equal(t, "PENDING_TRANSIT_HANDOFF", unauthorized.FromState)
		assert.Equal(t, before, d.Snapshot())
		assert.True(t, d.Custodian().IsEqual(t1))
	})

	t.Run("same user id with another role is not the target", func(t *testing.T) {
		d, t1 := inTransit(t)
		require.NoError(t, d.InitiateHandoff(t1, party(t, "t2", kernel.RoleTransporter), now))

		err := d.ConfirmHandoff(party(t, "t2", kernel.RoleCustomer),
			location(t, "Gary", "IN", "USA"), pkg(t, 1), now)

		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})

	t.Run("without pending handoff is an invalid transition", func(t *testing.T) {
		d, t1 := inTransit(t)

		err := d.ConfirmHandoff(t1, location(t, "Gary", "IN", "USA"), pkg(t, 1), now)

		var invalid *errs.InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "no pending handoff", invalid.Reason)
	})

	t.Run("invalid attributes leave the offer outstanding", func(t *testing.T) {
		d, t1 := inTransit(t)
		t2 := party(t, "t2", kernel.RoleTransporter)
		require.NoError(t, d.InitiateHandoff(t1, t2, now))

		err := d.ConfirmHandoff(t2, kernel.Location{}, pkg(t, 1), now)

		require.Error(t, err)
		assert.Equal(t, delivery.PendingTransitHandoff, d.Status())
		assert.NotNil(t, d.PendingHandoff())
	})
}

func TestDelivery_FinalLeg(t *testing.T) {
	d, t1 := inTransit(t)
	customer := party(t, "customer-1", kernel.RoleCustomer)

	t.Run("only the delivery's own customer can be offered the final leg", func(t *testing.T) {
		err := d.InitiateHandoff(t1, party(t, "customer-9", kernel.RoleCustomer), now)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	require.NoError(t, d.InitiateHandoff(t1, customer, now))
	assert.Equal(t, delivery.PendingDeliveryConfirmation, d.Status())

	require.NoError(t, d.ConfirmHandoff(customer, location(t, "Evanston", "IL", "USA"), d.Package(), now))
	assert.Equal(t, delivery.ConfirmedDelivery, d.Status())
	assert.True(t, d.Custodian().IsEqual(customer))
	assert.True(t, d.Status().IsTerminal())

	err := d.InitiateHandoff(customer, t1, now)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestDelivery_DisputeHandoff(t *testing.T) {
	t.Run("transit dispute keeps the previous custodian", func(t *testing.T) {
		d, t1 := inTransit(t)
		t2 := party(t, "t2", kernel.RoleTransporter)
		require.NoError(t, d.InitiateHandoff(t1, t2, now))

		require.NoError(t, d.DisputeHandoff(t2, delivery.ReasonPackageDamaged, now))

		assert.Equal(t, delivery.DisputedTransitHandoff, d.Status())
		assert.True(t, d.Custodian().IsEqual(t1))
		assert.Nil(t, d.PendingHandoff())
		require.NotNil(t, d.LastDispute())
		assert.Equal(t, delivery.ReasonPackageDamaged, d.LastDispute().Reason)
		assert.Equal(t, delivery.PendingTransitHandoff, d.LastDispute().FromStatus)
	})

	t.Run("pickup and delivery disputes map to their own states", func(t *testing.T) {
		d := newDelivery(t)
		transporter := party(t, "T", kernel.RoleTransporter)
		require.NoError(t, d.InitiateHandoff(party(t, "seller-1", kernel.RoleSeller), transporter, now))
		require.NoError(t, d.DisputeHandoff(transporter, delivery.ReasonWrongPackage, now))
		assert.Equal(t, delivery.DisputedPickup, d.Status())

		d2, t1 := inTransit(t)
		customer := party(t, "customer-1", kernel.RoleCustomer)
		require.NoError(t, d2.InitiateHandoff(t1, customer, now))
		require.NoError(t, d2.DisputeHandoff(customer, "seal broken", now))
		assert.Equal(t, delivery.DisputedDelivery, d2.Status())
	})

	t.Run("disputed deliveries are frozen", func(t *testing.T) {
		d, t1 := inTransit(t)
		t2 := party(t, "t2", kernel.RoleTransporter)
		require.NoError(t, d.InitiateHandoff(t1, t2, now))
		require.NoError(t, d.DisputeHandoff(t2, delivery.ReasonOther, now))

		require.ErrorIs(t, d.InitiateHandoff(t1, t2, now), errs.ErrInvalidTransition)
		require.ErrorIs(t, d.UpdateLocation(t1, location(t, "Gary", "IN", "USA"), now), errs.ErrInvalidTransition)
	})

	t.Run("only the target disputes", func(t *testing.T) {
		d, t1 := inTransit(t)
		require.NoError(t, d.InitiateHandoff(t1, party(t, "t2", kernel.RoleTransporter), now))

		require.ErrorIs(t, d.DisputeHandoff(t1, delivery.ReasonOther, now), errs.ErrUnauthorized)
	})

	t.Run("empty reason is rejected", func(t *testing.T) {
		d, t1 := inTransit(t)
		t2 := party(t, "t2", kernel.RoleTransporter)
		require.NoError(t, d.InitiateHandoff(t1, t2, now))

		require.ErrorIs(t, d.DisputeHandoff(t2, "", now), errs.ErrValueIsRequired)
		assert.Equal(t, delivery.PendingTransitHandoff, d.Status())
	})
}

func TestDelivery_CancelHandoff(t *testing.T) {
	t.Run("initiator withdraws a transit offer", func(t *testing.T) {
		d, t1 := inTransit(t)
		require.NoError(t, d.InitiateHandoff(t1, party(t, "t2", kernel.RoleTransporter), now))

		require.NoError(t, d.CancelHandoff(t1, now))

		assert.Equal(t, delivery.InTransit, d.Status())
		assert.Nil(t, d.PendingHandoff())
		assert.True(t, d.Custodian().IsEqual(t1))
	})

	t.Run("seller withdraws the pickup offer", func(t *testing.T) {
		d := newDelivery(t)
		seller := party(t, "seller-1", kernel.RoleSeller)
		require.NoError(t, d.InitiateHandoff(seller, party(t, "T", kernel.RoleTransporter), now))

		require.NoError(t, d.CancelHandoff(seller, now))
		assert.Equal(t, delivery.PendingPickup, d.Status())
	})

	t.Run("withdrawn final leg returns to transit", func(t *testing.T) {
		d, t1 := inTransit(t)
		require.NoError(t, d.InitiateHandoff(t1, party(t, "customer-1", kernel.RoleCustomer), now))

		require.NoError(t, d.CancelHandoff(t1, now))
		assert.Equal(t, delivery.InTransit, d.Status())
	})

	t.Run("target cannot withdraw", func(t *testing.T) {
		d, t1 := inTransit(t)
		t2 := party(t, "t2", kernel.RoleTransporter)
		require.NoError(t, d.InitiateHandoff(t1, t2, now))

		require.ErrorIs(t, d.CancelHandoff(t2, now), errs.ErrUnauthorized)
	})
}

func TestDelivery_Cancel(t *testing.T) {
	customer := party(t, "customer-1", kernel.RoleCustomer)

	t.Run("customer cancels before pickup", func(t *testing.T) {
		d := newDelivery(t)

		require.NoError(t, d.Cancel(customer, now))
		assert.Equal(t, delivery.Cancelled, d.Status())
	})

	t.Run("cancelled from pending confirmation blocks later handoffs", func(t *testing.T) {
		d := restoreWithStatus(t, delivery.PendingConfirmation)

		require.NoError(t, d.Cancel(customer, now))
		assert.Equal(t, delivery.Cancelled, d.Status())

		err := d.InitiateHandoff(party(t, "seller-1", kernel.RoleSeller), party(t, "T", kernel.RoleTransporter), now)
		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("seller cannot cancel", func(t *testing.T) {
		d := newDelivery(t)

		require.ErrorIs(t, d.Cancel(party(t, "seller-1", kernel.RoleSeller), now), errs.ErrUnauthorized)
	})

	t.Run("cannot cancel once a pickup is offered", func(t *testing.T) {
		d := newDelivery(t)
		require.NoError(t, d.InitiateHandoff(party(t, "seller-1", kernel.RoleSeller), party(t, "T", kernel.RoleTransporter), now))

		require.ErrorIs(t, d.Cancel(customer, now), errs.ErrInvalidTransition)
	})
}

func TestDelivery_UpdateLocation(t *testing.T) {
	d, t1 := inTransit(t)

	require.NoError(t, d.UpdateLocation(t1, location(t, "Joliet", "IL", "USA"), now))
	assert.Equal(t, "Joliet", d.LastLocation().City())
	assert.Equal(t, delivery.InTransit, d.Status())

	err := d.UpdateLocation(party(t, "t2", kernel.RoleTransporter), location(t, "Gary", "IN", "USA"), now)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	assert.Equal(t, "Joliet", d.LastLocation().City())
}

func TestDelivery_IsInvolved(t *testing.T) {
	d, t1 := inTransit(t)
	require.NoError(t, d.InitiateHandoff(t1, party(t, "t2", kernel.RoleTransporter), now))

	for _, id := range []string{"seller-1", "customer-1", "t1", "t2"} {
		assert.True(t, d.IsInvolved(id), id)
	}
	assert.False(t, d.IsInvolved("t3"))
	assert.False(t, d.IsInvolved(""))
}

func TestRestore(t *testing.T) {
	t.Run("round-trips a snapshot", func(t *testing.T) {
		d, t1 := inTransit(t)
		require.NoError(t, d.InitiateHandoff(t1, party(t, "t2", kernel.RoleTransporter), now))

		restored, err := delivery.Restore(d.Snapshot())

		require.NoError(t, err)
		assert.Equal(t, d.Snapshot(), restored.Snapshot())
	})

	t.Run("rejects pending status without an offer", func(t *testing.T) {
		s := newDelivery(t).Snapshot()
		s.Status = delivery.PendingTransitHandoff

		_, err := delivery.Restore(s)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("clone is independent", func(t *testing.T) {
		d, t1 := inTransit(t)
		c := d.Clone()

		require.NoError(t, c.InitiateHandoff(t1, party(t, "t2", kernel.RoleTransporter), now))
		assert.Equal(t, delivery.InTransit, d.Status())
		assert.Nil(t, d.PendingHandoff())
	})
}

func restoreWithStatus(t *testing.T, status delivery.Status) *delivery.Delivery {
	t.Helper()
	s := newDelivery(t).Snapshot()
	s.Status = status
	d, err := delivery.Restore(s)
	require.NoError(t, err)
	return d
}
