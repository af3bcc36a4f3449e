package queries_test

import (
	"io"
	"log/slog"
	"testing"

	"custody/internal/adapters/out/ledger"
	"custody/internal/adapters/out/ledger/contract"
	"custody/internal/adapters/out/ledger/memledger"
	"custody/internal/core/application/usecases/queries"
	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/ports"
	"custody/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	gateway  *ledger.Gateway
	seller   kernel.Party
	customer kernel.Party
	t1       kernel.Party
	t2       kernel.Party
	admin    kernel.Party
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	engine, err := contract.NewEngine(memledger.NewStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	gateway, err := ledger.NewGateway(engine)
	require.NoError(t, err)

	return &ledgerFixture{
		gateway:  gateway,
		seller:   mustParty(t, "seller-1", kernel.RoleSeller),
		customer: mustParty(t, "customer-1", kernel.RoleCustomer),
		t1:       mustParty(t, "t1", kernel.RoleTransporter),
		t2:       mustParty(t, "t2", kernel.RoleTransporter),
		admin:    mustParty(t, "admin-1", kernel.RoleAdmin),
	}
}

func mustParty(t *testing.T, id string, role kernel.Role) kernel.Party {
	t.Helper()
	p, err := kernel.NewParty(id, role)
	require.NoError(t, err)
	return p
}

func (f *ledgerFixture) create(t *testing.T, rawID string) delivery.ID {
	t.Helper()
	id, err := delivery.ParseID(rawID)
	require.NoError(t, err)
	pkg, err := kernel.NewPackageAttributes(2, 30, 20, 10)
	require.NoError(t, err)
	origin, err := kernel.NewLocation("Chicago", "IL", "USA")
	require.NoError(t, err)

	require.NoError(t, f.gateway.CreateDelivery(t.Context(), f.seller, ports.NewDelivery{
		ID:         id,
		OrderID:    kernel.NewUUID().String(),
		CustomerID: f.customer.UserID(),
		Package:    pkg,
		Origin:     origin,
	}))
	return id
}

// pickUp moves a delivery into IN_TRANSIT with t1 as custodian.
func (f *ledgerFixture) pickUp(t *testing.T, id delivery.ID) {
	t.Helper()
	loc, err := kernel.NewLocation("Gary", "IN", "USA")
	require.NoError(t, err)
	pkg, err := kernel.NewPackageAttributes(2, 30, 20, 10)
	require.NoError(t, err)
	require.NoError(t, f.gateway.InitiateHandoff(t.Context(), f.seller, id, f.t1))
	require.NoError(t, f.gateway.ConfirmHandoff(t.Context(), f.t1, id, loc, pkg))
}

func TestGetDeliveryQueryHandler(t *testing.T) {
	f := newLedgerFixture(t)
	id := f.create(t, "DEL-20260501-AAAAAAA1")

	handler, err := queries.NewGetDeliveryQueryHandler(f.gateway, 0)
	require.NoError(t, err)

	t.Run("related user reads the delivery", func(t *testing.T) {
		query, err := queries.NewGetDeliveryQuery(id, f.customer)
		require.NoError(t, err)

		d, err := handler.Handle(t.Context(), query)

		require.NoError(t, err)
		assert.Equal(t, id, d.ID())
		assert.Equal(t, delivery.PendingPickup, d.Status())
		assert.True(t, d.Custodian().IsZero())
	})

	t.Run("unrelated transporter is refused", func(t *testing.T) {
		query, err := queries.NewGetDeliveryQuery(id, f.t2)
		require.NoError(t, err)

		_, err = handler.Handle(t.Context(), query)

		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})

	t.Run("unknown delivery", func(t *testing.T) {
		missing, err := delivery.ParseID("DEL-20260501-ZZZZZZZZ")
		require.NoError(t, err)
		query, err := queries.NewGetDeliveryQuery(missing, f.admin)
		require.NoError(t, err)

		_, err = handler.Handle(t.Context(), query)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("query must be constructed", func(t *testing.T) {
		_, err := handler.Handle(t.Context(), queries.GetDeliveryQuery{})

		require.ErrorIs(t, err, queries.ErrGetDeliveryQueryIsNotConstructed)
	})
}

func TestGetDeliveryHistoryQueryHandler(t *testing.T) {
	f := newLedgerFixture(t)
	id := f.create(t, "DEL-20260501-AAAAAAA1")
	f.pickUp(t, id)

	handler, err := queries.NewGetDeliveryHistoryQueryHandler(f.gateway, 0)
	require.NoError(t, err)

	t.Run("seller sees every committed version in order", func(t *testing.T) {
		query, err := queries.NewGetDeliveryHistoryQuery(id, f.seller)
		require.NoError(t, err)

		history, err := handler.Handle(t.Context(), query)

		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, delivery.PendingPickup, history[0].Delivery.Status())
		assert.Equal(t, delivery.PendingPickupHandoff, history[1].Delivery.Status())
		assert.Equal(t, delivery.InTransit, history[2].Delivery.Status())
		for _, entry := range history {
			assert.NotEmpty(t, entry.TxID)
			assert.False(t, entry.Timestamp.IsZero())
		}
	})

	t.Run("custodian may not read history", func(t *testing.T) {
		query, err := queries.NewGetDeliveryHistoryQuery(id, f.t1)
		require.NoError(t, err)

		_, err = handler.Handle(t.Context(), query)

		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})
}

func TestListDeliveriesQueryHandler(t *testing.T) {
	f := newLedgerFixture(t)
	held := f.create(t, "DEL-20260501-AAAAAAA1")
	offered := f.create(t, "DEL-20260501-AAAAAAA2")
	untouched := f.create(t, "DEL-20260501-AAAAAAA3")
	f.pickUp(t, held)
	require.NoError(t, f.gateway.InitiateHandoff(t.Context(), f.seller, offered, f.t1))

	handler, err := queries.NewListDeliveriesQueryHandler(f.gateway, 0)
	require.NoError(t, err)

	ids := func(ds []*delivery.Delivery) []delivery.ID {
		out := make([]delivery.ID, 0, len(ds))
		for _, d := range ds {
			out = append(out, d.ID())
		}
		return out
	}

	t.Run("transporter lists what they hold or are offered", func(t *testing.T) {
		query, err := queries.NewListDeliveriesByCustodianQuery(f.t1, "")
		require.NoError(t, err)

		result, err := handler.HandleByCustodian(t.Context(), query)

		require.NoError(t, err)
		assert.Equal(t, []delivery.ID{held, offered}, ids(result))
	})

	t.Run("customer lists their purchases", func(t *testing.T) {
		query, err := queries.NewListDeliveriesByCustodianQuery(f.customer, "")
		require.NoError(t, err)

		result, err := handler.HandleByCustodian(t.Context(), query)

		require.NoError(t, err)
		assert.Equal(t, []delivery.ID{held, offered, untouched}, ids(result))
	})

	t.Run("admin filters by custodian", func(t *testing.T) {
		query, err := queries.NewListDeliveriesByCustodianQuery(f.admin, "t1")
		require.NoError(t, err)

		result, err := handler.HandleByCustodian(t.Context(), query)

		require.NoError(t, err)
		assert.Equal(t, []delivery.ID{held}, ids(result))
	})

	t.Run("non-admin may not ask about someone else", func(t *testing.T) {
		query, err := queries.NewListDeliveriesByCustodianQuery(f.t2, "t1")
		require.NoError(t, err)

		_, err = handler.HandleByCustodian(t.Context(), query)

		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})

	t.Run("status listing is filtered by involvement", func(t *testing.T) {
		adminQuery, err := queries.NewListDeliveriesByStatusQuery(f.admin, delivery.PendingPickup)
		require.NoError(t, err)
		result, err := handler.HandleByStatus(t.Context(), adminQuery)
		require.NoError(t, err)
		assert.Equal(t, []delivery.ID{untouched}, ids(result))

		t2Query, err := queries.NewListDeliveriesByStatusQuery(f.t2, delivery.InTransit)
		require.NoError(t, err)
		result, err = handler.HandleByStatus(t.Context(), t2Query)
		require.NoError(t, err)
		assert.Empty(t, result)
	})

	t.Run("custodian id length is bounded", func(t *testing.T) {
		long := make([]byte, kernel.MaxUserIDLength+1)
		for i := range long {
			long[i] = 'x'
		}

		_, err := queries.NewListDeliveriesByCustodianQuery(f.admin, string(long))

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestDeliveryQueryHandlers_RequireLedger(t *testing.T) {
	_, err := queries.NewGetDeliveryQueryHandler(nil, 0)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
	_, err = queries.NewGetDeliveryHistoryQueryHandler(nil, 0)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
	_, err = queries.NewListDeliveriesQueryHandler(nil, 0)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}
