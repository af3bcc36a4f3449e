package contract_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"custody/internal/adapters/out/ledger/contract"
	"custody/internal/adapters/out/ledger/memledger"
	"custody/internal/adapters/out/ledger/record"
	"custody/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deliveryID = "DEL-20260501-0A1B2C3D"

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newEngine(t *testing.T) (*contract.Engine, *memledger.Store) {
	t.Helper()
	store := memledger.NewStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := contract.NewEngine(store, logger, contract.WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return e, store
}

func invoke(t *testing.T, e *contract.Engine, fn string, args ...string) ports.LedgerResponse {
	t.Helper()
	resp, err := e.Invoke(context.Background(), fn, args...)
	require.NoError(t, err)
	return resp
}

func query(t *testing.T, e *contract.Engine, fn string, args ...string) ports.LedgerResponse {
	t.Helper()
	resp, err := e.Query(context.Background(), fn, args...)
	require.NoError(t, err)
	return resp
}

func requireSuccess(t *testing.T, resp ports.LedgerResponse) {
	t.Helper()
	require.Truef(t, resp.Success, "unexpected fault: %+v", resp.Fault)
}

func requireFault(t *testing.T, resp ports.LedgerResponse, code string) *ports.LedgerFault {
	t.Helper()
	require.False(t, resp.Success)
	require.NotNil(t, resp.Fault)
	require.Equal(t, code, resp.Fault.Code, resp.Fault.Message)
	return resp.Fault
}

func createDelivery(t *testing.T, e *contract.Engine, id string) {
	t.Helper()
	requireSuccess(t, invoke(t, e, ports.FnCreateDelivery,
		"seller-1", "SELLER", id, "order-1", "customer-1", "2.5", "30", "20", "10", "Chicago", "IL", "USA"))
}

func readStatus(t *testing.T, e *contract.Engine, id string) string {
	t.Helper()
	resp := query(t, e, ports.FnReadDelivery, "admin-1", "ADMIN", id)
	requireSuccess(t, resp)
	var r record.Delivery
	require.NoError(t, json.Unmarshal(resp.Payload, &r))
	return r.DeliveryStatus
}

func decodeList(t *testing.T, resp ports.LedgerResponse) []record.Delivery {
	t.Helper()
	requireSuccess(t, resp)
	var list []record.Delivery
	require.NoError(t, json.Unmarshal(resp.Payload, &list))
	return list
}

func TestNewEngine(t *testing.T) {
	_, err := contract.NewEngine(nil, slog.Default())
	require.Error(t, err)

	_, err = contract.NewEngine(memledger.NewStore(), nil)
	require.Error(t, err)
}

func TestEngine_CreateDelivery(t *testing.T) {
	t.Run("seller creates a delivery pending pickup", func(t *testing.T) {
		e, store := newEngine(t)

		createDelivery(t, e, deliveryID)

		assert.Equal(t, "PENDING_PICKUP", readStatus(t, e, deliveryID))
		events := store.Events()
		require.Len(t, events, 1)
		assert.Equal(t, record.EventDeliveryCreated, events[0].Name)
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		e, _ := newEngine(t)
		createDelivery(t, e, deliveryID)

		resp := invoke(t, e, ports.FnCreateDelivery,
			"seller-1", "SELLER", deliveryID, "order-2", "customer-1", "1", "1", "1", "1", "Chicago", "IL", "USA")

		fault := requireFault(t, resp, ports.FaultInvalidArgument)
		assert.Contains(t, fault.Message, "already exists")
	})

	t.Run("only sellers create", func(t *testing.T) {
		e, _ := newEngine(t)

		resp := invoke(t, e, ports.FnCreateDelivery,
			"customer-1", "CUSTOMER", deliveryID, "order-1", "customer-1", "1", "1", "1", "1", "Chicago", "IL", "USA")

		requireFault(t, resp, ports.FaultUnauthorized)
	})

	t.Run("invalid arguments", func(t *testing.T) {
		e, _ := newEngine(t)

		requireFault(t, invoke(t, e, ports.FnCreateDelivery, "seller-1", "SELLER", deliveryID),
			ports.FaultInvalidArgument)
		requireFault(t, invoke(t, e, ports.FnCreateDelivery,
			"seller-1", "SELLER", "DEL-1", "order-1", "customer-1", "1", "1", "1", "1", "Chicago", "IL", "USA"),
			ports.FaultInvalidArgument)
		requireFault(t, invoke(t, e, ports.FnCreateDelivery,
			"seller-1", "SELLER", deliveryID, "order-1", "customer-1", "heavy", "1", "1", "1", "Chicago", "IL", "USA"),
			ports.FaultInvalidArgument)
		requireFault(t, invoke(t, e, ports.FnCreateDelivery,
			"seller-1", "SELLER", deliveryID, "order-1", "customer-1", "20000", "1", "1", "1", "Chicago", "IL", "USA"),
			ports.FaultInvalidArgument)
	})
}

func TestEngine_HappyPath(t *testing.T) {
	e, store := newEngine(t)
	createDelivery(t, e, deliveryID)

	requireSuccess(t, invoke(t, e, ports.FnInitiateHandoff, "seller-1", "SELLER", deliveryID, "t1", "DELIVERY_PERSON"))
	assert.Equal(t, "PENDING_PICKUP_HANDOFF", readStatus(t, e, deliveryID))

	requireSuccess(t, invoke(t, e, ports.FnConfirmHandoff,
		"t1", "DELIVERY_PERSON", deliveryID, "Chicago", "IL", "USA", "2.5", "30", "20", "10"))
	assert.Equal(t, "IN_TRANSIT", readStatus(t, e, deliveryID))

	requireSuccess(t, invoke(t, e, ports.FnUpdateLocation, "t1", "DELIVERY_PERSON", deliveryID, "Denver", "CO", "USA"))
	assert.Equal(t, "IN_TRANSIT", readStatus(t, e, deliveryID))

	requireSuccess(t, invoke(t, e, ports.FnInitiateHandoff, "t1", "DELIVERY_PERSON", deliveryID, "customer-1", "CUSTOMER"))
	assert.Equal(t, "PENDING_DELIVERY_CONFIRMATION", readStatus(t, e, deliveryID))

	requireSuccess(t, invoke(t, e, ports.FnConfirmHandoff,
		"customer-1", "CUSTOMER", deliveryID, "Denver", "CO", "USA", "2.5", "30", "20", "10"))
	assert.Equal(t, "CONFIRMED_DELIVERY", readStatus(t, e, deliveryID))

	var changes []record.StatusEvent
	for _, ev := range store.Events() {
		if ev.Name != record.EventDeliveryStatusChanged {
			continue
		}
		var se record.StatusEvent
		require.NoError(t, json.Unmarshal(ev.Payload, &se))
		changes = append(changes, se)
	}
	require.Len(t, changes, 4, "location updates do not change the status")
	assert.Equal(t, "PENDING_PICKUP", changes[0].OldStatus)
	assert.Equal(t, "CONFIRMED_DELIVERY", changes[3].NewStatus)
	assert.Equal(t, "order-1", changes[3].OrderID)

	resp := query(t, e, ports.FnGetDeliveryHistory, "seller-1", "SELLER", deliveryID)
	requireSuccess(t, resp)
	var history []record.HistoryEntry
	require.NoError(t, json.Unmarshal(resp.Payload, &history))
	require.Len(t, history, 6)
	assert.Equal(t, "PENDING_PICKUP", history[0].Delivery.DeliveryStatus)
	assert.Equal(t, "CONFIRMED_DELIVERY", history[5].Delivery.DeliveryStatus)
	assert.NotEmpty(t, history[0].TxID)
}

func TestEngine_RejectionsLeaveStateUnchanged(t *testing.T) {
	e, store := newEngine(t)
	createDelivery(t, e, deliveryID)
	requireSuccess(t, invoke(t, e, ports.FnInitiateHandoff, "seller-1", "SELLER", deliveryID, "t1", "DELIVERY_PERSON"))
	before, err := store.History(context.Background(), deliveryID)
	require.NoError(t, err)

	fault := requireFault(t, invoke(t, e, ports.FnConfirmHandoff,
		"t2", "DELIVERY_PERSON", deliveryID, "Chicago", "IL", "USA", "2.5", "30", "20", "10"), ports.FaultUnauthorized)
	assert.Equal(t, "confirm handoff", fault.Operation)
	assert.Equal(t, "PENDING_PICKUP_HANDOFF", fault.FromState)

	fault = requireFault(t, invoke(t, e, ports.FnInitiateHandoff,
		"seller-1", "SELLER", deliveryID, "t2", "DELIVERY_PERSON"), ports.FaultConflictingHandoff)
	assert.Equal(t, "PENDING_PICKUP_HANDOFF", fault.FromState)

	requireFault(t, invoke(t, e, ports.FnUpdateLocation,
		"seller-1", "SELLER", deliveryID, "Denver", "CO", "USA"), ports.FaultUnauthorized)

	requireFault(t, invoke(t, e, ports.FnCancelDelivery, "admin-1", "ADMIN", deliveryID), ports.FaultUnauthorized)

	requireFault(t, invoke(t, e, ports.FnCancelHandoff, "seller-1", "SELLER", "DEL-20260501-FFFFFFFF"),
		ports.FaultNotFound)

	after, err := store.History(context.Background(), deliveryID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, "PENDING_PICKUP_HANDOFF", readStatus(t, e, deliveryID))
}

func TestEngine_DisputeAndCancel(t *testing.T) {
	t.Run("dispute freezes the delivery", func(t *testing.T) {
		e, _ := newEngine(t)
		createDelivery(t, e, deliveryID)
		requireSuccess(t, invoke(t, e, ports.FnInitiateHandoff, "seller-1", "SELLER", deliveryID, "t1", "DELIVERY_PERSON"))

		requireSuccess(t, invoke(t, e, ports.FnDisputeHandoff, "t1", "DELIVERY_PERSON", deliveryID, "Package damaged"))

		assert.Equal(t, "DISPUTED_PICKUP", readStatus(t, e, deliveryID))
		requireFault(t, invoke(t, e, ports.FnInitiateHandoff, "seller-1", "SELLER", deliveryID, "t2", "DELIVERY_PERSON"),
			ports.FaultInvalidTransition)
	})

	t.Run("initiator withdraws the offer", func(t *testing.T) {
		e, _ := newEngine(t)
		createDelivery(t, e, deliveryID)
		requireSuccess(t, invoke(t, e, ports.FnInitiateHandoff, "seller-1", "SELLER", deliveryID, "t1", "DELIVERY_PERSON"))

		requireSuccess(t, invoke(t, e, ports.FnCancelHandoff, "seller-1", "SELLER", deliveryID))

		assert.Equal(t, "PENDING_PICKUP", readStatus(t, e, deliveryID))
	})

	t.Run("customer cancels before pickup", func(t *testing.T) {
		e, _ := newEngine(t)
		createDelivery(t, e, deliveryID)

		requireFault(t, invoke(t, e, ports.FnCancelDelivery, "seller-1", "SELLER", deliveryID), ports.FaultUnauthorized)
		requireSuccess(t, invoke(t, e, ports.FnCancelDelivery, "customer-1", "CUSTOMER", deliveryID))

		assert.Equal(t, "CANCELLED", readStatus(t, e, deliveryID))
	})
}

func TestEngine_ConcurrentInitiateHasOneWinner(t *testing.T) {
	e, _ := newEngine(t)
	createDelivery(t, e, deliveryID)

	const racers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			target := "t" + string(rune('a'+i))
			resp, err := e.Invoke(context.Background(), ports.FnInitiateHandoff,
				"seller-1", "SELLER", deliveryID, target, "DELIVERY_PERSON")
			assert.NoError(t, err)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case resp.Success:
				successes++
			case resp.Fault != nil && resp.Fault.Code == ports.FaultConflictingHandoff:
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, racers-1, conflicts)
	assert.Equal(t, "PENDING_PICKUP_HANDOFF", readStatus(t, e, deliveryID))
}

type conflictingStore struct {
	*memledger.Store
	puts int
}

func (s *conflictingStore) Put(ctx context.Context, key string, value []byte, expected int64, events []contract.Event) error {
	if expected == 0 {
		return s.Store.Put(ctx, key, value, expected, events)
	}
	s.puts++
	return contract.ErrVersionConflict
}

func TestEngine_GivesUpUnderContention(t *testing.T) {
	store := &conflictingStore{Store: memledger.NewStore()}
	e, err := contract.NewEngine(store, slog.New(slog.NewTextHandler(io.Discard, nil)), contract.WithMaxAttempts(3))
	require.NoError(t, err)
	createDelivery(t, e, deliveryID)

	_, err = e.Invoke(context.Background(), ports.FnInitiateHandoff,
		"seller-1", "SELLER", deliveryID, "t1", "DELIVERY_PERSON")

	require.ErrorIs(t, err, contract.ErrContention)
	assert.Equal(t, 3, store.puts)
}

func TestEngine_FunctionKinds(t *testing.T) {
	e, _ := newEngine(t)
	createDelivery(t, e, deliveryID)

	requireFault(t, invoke(t, e, ports.FnReadDelivery, "seller-1", "SELLER", deliveryID), ports.FaultInvalidArgument)
	requireFault(t, query(t, e, ports.FnCancelDelivery, "customer-1", "CUSTOMER", deliveryID), ports.FaultInvalidArgument)
	requireFault(t, invoke(t, e, "DeleteDelivery", "seller-1", "SELLER", deliveryID), ports.FaultInvalidArgument)
	requireFault(t, query(t, e, ports.FnReadDelivery, "seller-1", "PILOT", deliveryID), ports.FaultInvalidArgument)
}

func TestEngine_ReadAccess(t *testing.T) {
	e, _ := newEngine(t)
	createDelivery(t, e, deliveryID)
	requireSuccess(t, invoke(t, e, ports.FnInitiateHandoff, "seller-1", "SELLER", deliveryID, "t1", "DELIVERY_PERSON"))

	requireSuccess(t, query(t, e, ports.FnReadDelivery, "customer-1", "CUSTOMER", deliveryID))
	requireSuccess(t, query(t, e, ports.FnReadDelivery, "t1", "DELIVERY_PERSON", deliveryID))
	requireFault(t, query(t, e, ports.FnReadDelivery, "t9", "DELIVERY_PERSON", deliveryID), ports.FaultUnauthorized)

	requireSuccess(t, query(t, e, ports.FnGetDeliveryHistory, "admin-1", "ADMIN", deliveryID))
	requireSuccess(t, query(t, e, ports.FnGetDeliveryHistory, "customer-1", "CUSTOMER", deliveryID))
	requireFault(t, query(t, e, ports.FnGetDeliveryHistory, "t1", "DELIVERY_PERSON", deliveryID), ports.FaultUnauthorized)
	requireFault(t, query(t, e, ports.FnReadDelivery, "admin-1", "ADMIN", "DEL-20260501-FFFFFFFF"), ports.FaultNotFound)
}

func TestEngine_QueryByCustodian(t *testing.T) {
	const second = "DEL-20260501-0A1B2C3E"
	e, _ := newEngine(t)
	createDelivery(t, e, deliveryID)
	createDelivery(t, e, second)
	requireSuccess(t, invoke(t, e, ports.FnInitiateHandoff, "seller-1", "SELLER", deliveryID, "t1", "DELIVERY_PERSON"))
	requireSuccess(t, invoke(t, e, ports.FnConfirmHandoff,
		"t1", "DELIVERY_PERSON", deliveryID, "Chicago", "IL", "USA", "2.5", "30", "20", "10"))
	requireSuccess(t, invoke(t, e, ports.FnInitiateHandoff, "seller-1", "SELLER", second, "t2", "DELIVERY_PERSON"))

	tests := []struct {
		name      string
		args      []string
		wantIDs   []string
		wantFault string
	}{
		{"admin lists everything", []string{"admin-1", "ADMIN", ""}, []string{deliveryID, second}, ""},
		{"admin filters by custodian", []string{"admin-1", "ADMIN", "t1"}, []string{deliveryID}, ""},
		{"transporter sees held deliveries", []string{"t1", "DELIVERY_PERSON", "t1"}, []string{deliveryID}, ""},
		{"transporter sees offers", []string{"t2", "DELIVERY_PERSON", ""}, []string{second}, ""},
		{"seller sees own sales", []string{"seller-1", "SELLER", ""}, []string{deliveryID, second}, ""},
		{"customer sees own purchases", []string{"customer-1", "CUSTOMER", "customer-1"}, []string{deliveryID, second}, ""},
		{"stranger sees nothing", []string{"t9", "DELIVERY_PERSON", ""}, []string{}, ""},
		{"others cannot be queried", []string{"t2", "DELIVERY_PERSON", "t1"}, nil, ports.FaultUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := query(t, e, ports.FnQueryDeliveriesByCustodian, tt.args...)
			if tt.wantFault != "" {
				requireFault(t, resp, tt.wantFault)
				return
			}
			ids := make([]string, 0)
			for _, r := range decodeList(t, resp) {
				ids = append(ids, r.DeliveryID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestEngine_QueryByStatus(t *testing.T) {
	const second = "DEL-20260501-0A1B2C3E"
	e, _ := newEngine(t)
	createDelivery(t, e, deliveryID)
	createDelivery(t, e, second)
	requireSuccess(t, invoke(t, e, ports.FnInitiateHandoff, "seller-1", "SELLER", second, "t2", "DELIVERY_PERSON"))

	assert.Len(t, decodeList(t, query(t, e, ports.FnQueryDeliveriesByStatus, "admin-1", "ADMIN", "PENDING_PICKUP")), 1)
	assert.Len(t, decodeList(t, query(t, e, ports.FnQueryDeliveriesByStatus,
		"t2", "DELIVERY_PERSON", "PENDING_PICKUP_HANDOFF")), 1)
	assert.Empty(t, decodeList(t, query(t, e, ports.FnQueryDeliveriesByStatus,
		"t9", "DELIVERY_PERSON", "PENDING_PICKUP_HANDOFF")))
	requireFault(t, query(t, e, ports.FnQueryDeliveriesByStatus, "admin-1", "ADMIN", "LOST"), ports.FaultInvalidArgument)
}
