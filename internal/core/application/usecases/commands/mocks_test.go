package commands_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"custody/internal/core/application/usecases/commands"
	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/order"
	"custody/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) GetByDeliveryID(ctx context.Context, id delivery.ID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ListLinked(ctx context.Context, after delivery.ID, limit int) ([]*order.Order, error) {
	args := m.Called(ctx, after, limit)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

func (m *MockOrderRepository) ListByParty(ctx context.Context, userID string) ([]*order.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]*order.Order)
	return orders, args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

// MockDeliveryLedger is a mock implementation of ports.DeliveryLedger.
type MockDeliveryLedger struct{ mock.Mock }

func (m *MockDeliveryLedger) CreateDelivery(ctx context.Context, actor kernel.Party, d ports.NewDelivery) error {
	return m.Called(ctx, actor, d).Error(0)
}

func (m *MockDeliveryLedger) ReadDelivery(ctx context.Context, actor kernel.Party, id delivery.ID) (*delivery.Delivery, error) {
	args := m.Called(ctx, actor, id)
	d, _ := args.Get(0).(*delivery.Delivery)
	return d, args.Error(1)
}

func (m *MockDeliveryLedger) GetDeliveryHistory(
	ctx context.Context, actor kernel.Party, id delivery.ID,
) ([]delivery.HistoryEntry, error) {
	args := m.Called(ctx, actor, id)
	h, _ := args.Get(0).([]delivery.HistoryEntry)
	return h, args.Error(1)
}

func (m *MockDeliveryLedger) InitiateHandoff(ctx context.Context, actor kernel.Party, id delivery.ID, target kernel.Party) error {
	return m.Called(ctx, actor, id, target).Error(0)
}

func (m *MockDeliveryLedger) ConfirmHandoff(
	ctx context.Context, actor kernel.Party, id delivery.ID, loc kernel.Location, pkg kernel.PackageAttributes,
) error {
	return m.Called(ctx, actor, id, loc, pkg).Error(0)
}

func (m *MockDeliveryLedger) DisputeHandoff(
	ctx context.Context, actor kernel.Party, id delivery.ID, reason delivery.DisputeReason,
) error {
	return m.Called(ctx, actor, id, reason).Error(0)
}

func (m *MockDeliveryLedger) CancelHandoff(ctx context.Context, actor kernel.Party, id delivery.ID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockDeliveryLedger) CancelDelivery(ctx context.Context, actor kernel.Party, id delivery.ID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockDeliveryLedger) UpdateLocation(ctx context.Context, actor kernel.Party, id delivery.ID, loc kernel.Location) error {
	return m.Called(ctx, actor, id, loc).Error(0)
}

func (m *MockDeliveryLedger) QueryByCustodian(
	ctx context.Context, actor kernel.Party, custodianID string,
) ([]*delivery.Delivery, error) {
	args := m.Called(ctx, actor, custodianID)
	ds, _ := args.Get(0).([]*delivery.Delivery)
	return ds, args.Error(1)
}

func (m *MockDeliveryLedger) QueryByStatus(
	ctx context.Context, actor kernel.Party, status delivery.Status,
) ([]*delivery.Delivery, error) {
	args := m.Called(ctx, actor, status)
	ds, _ := args.Get(0).([]*delivery.Delivery)
	return ds, args.Error(1)
}

type MockProfileDirectory struct{ mock.Mock }

func (m *MockProfileDirectory) GetProfile(ctx context.Context, userID string) (ports.Profile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(ports.Profile), args.Error(1)
}

func (m *MockProfileDirectory) SaveProfile(ctx context.Context, p ports.Profile) error {
	return m.Called(ctx, p).Error(0)
}

type MockStatusSyncer struct{ mock.Mock }

func (m *MockStatusSyncer) Sync(ctx context.Context, id delivery.ID) {
	m.Called(ctx, id)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

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

func packageAttrs(t *testing.T, weight float64) kernel.PackageAttributes {
	t.Helper()
	p, err := kernel.NewPackageAttributes(weight, 30, 20, 10)
	require.NoError(t, err)
	return p
}

func items(t *testing.T) []order.Item {
	t.Helper()
	a, err := order.NewItem("sku-1", 2, 1250)
	require.NoError(t, err)
	b, err := order.NewItem("sku-2", 1, 499)
	require.NoError(t, err)
	return []order.Item{a, b}
}
