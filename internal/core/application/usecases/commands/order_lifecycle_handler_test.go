package commands_test

import (
	"errors"
	"testing"
	"time"

	"custody/internal/core/application/usecases/commands"
	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/order"
	"custody/internal/core/ports"
	"custody/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func pendingOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), "seller-1", "customer-1", items(t), time.Now())
	require.NoError(t, err)
	return o
}

type confirmFixture struct {
	factory  *MockOrderUoWFactory
	readUoW  *MockOrderUoW
	linkUoW  *MockOrderUoW
	repo     *MockOrderRepository
	ledger   *MockDeliveryLedger
	profiles *MockProfileDirectory
	syncer   *MockStatusSyncer
	handler  *commands.ConfirmOrderCommandHandler
}

func newConfirmFixture(t *testing.T) *confirmFixture {
	t.Helper()
	f := &confirmFixture{
		factory:  new(MockOrderUoWFactory),
		readUoW:  new(MockOrderUoW),
		linkUoW:  new(MockOrderUoW),
		repo:     new(MockOrderRepository),
		ledger:   new(MockDeliveryLedger),
		profiles: new(MockProfileDirectory),
		syncer:   new(MockStatusSyncer),
	}
	h, err := commands.NewConfirmOrderCommandHandler(f.factory, f.ledger, f.profiles, f.syncer, time.Second, discardLogger())
	require.NoError(t, err)
	f.handler = h
	return f
}

func TestConfirmOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := newConfirmFixture(t)
	o := pendingOrder(t)
	seller := party(t, "seller-1", kernel.RoleSeller)
	pkg := packageAttrs(t, 2.5)
	origin := location(t, "Chicago", "IL", "USA")

	cmd, err := commands.NewConfirmOrderCommand(o.ID(), seller, pkg)
	require.NoError(t, err)

	var created ports.NewDelivery
	f.factory.On("Create").Return(f.readUoW).Once()
	f.factory.On("Create").Return(f.linkUoW).Once()
	f.readUoW.On("OrderRepository").Return(f.repo).Once()
	f.linkUoW.On("Begin", ctx).Return(nil).Once()
	f.linkUoW.On("OrderRepository").Return(f.repo).Twice()
	f.linkUoW.On("Commit", ctx).Return(nil).Once()
	f.linkUoW.On("Rollback", ctx).Return(nil).Once()
	f.repo.On("Get", ctx, o.ID()).Return(o, nil).Twice()
	f.repo.On("Update", ctx, o).Return(nil).Once()
	f.profiles.On("GetProfile", ctx, "seller-1").
		Return(ports.Profile{UserID: "seller-1", Role: kernel.RoleSeller, Address: origin}, nil).Once()
	f.ledger.On("CreateDelivery", mock.Anything, seller, mock.AnythingOfType("ports.NewDelivery")).
		Run(func(args mock.Arguments) { created = args.Get(2).(ports.NewDelivery) }).
		Return(nil).Once()
	f.syncer.On("Sync", ctx, mock.AnythingOfType("delivery.ID")).Once()

	id, err := f.handler.Handle(ctx, cmd)
	require.NoError(t, err)

	require.NoError(t, id.Validate())
	assert.Equal(t, id, created.ID)
	assert.Equal(t, o.ID().String(), created.OrderID)
	assert.Equal(t, "customer-1", created.CustomerID)
	assert.Equal(t, "Chicago", created.Origin.City())
	assert.InDelta(t, 2.5, created.Package.Weight(), 0)

	assert.Equal(t, id, o.DeliveryID())
	assert.Equal(t, delivery.PendingConfirmation, o.Status(), "status is left to the projector")
	f.syncer.AssertCalled(t, "Sync", ctx, id)
	f.factory.AssertExpectations(t)
	f.linkUoW.AssertExpectations(t)
	f.repo.AssertExpectations(t)
	f.ledger.AssertExpectations(t)
}

func TestConfirmOrderCommandHandler_Handle_NotTheSeller(t *testing.T) {
	ctx := t.Context()
	f := newConfirmFixture(t)
	o := pendingOrder(t)

	cmd, err := commands.NewConfirmOrderCommand(o.ID(), party(t, "seller-2", kernel.RoleSeller), packageAttrs(t, 1))
	require.NoError(t, err)

	f.factory.On("Create").Return(f.readUoW).Once()
	f.readUoW.On("OrderRepository").Return(f.repo).Once()
	f.repo.On("Get", ctx, o.ID()).Return(o, nil).Once()

	_, err = f.handler.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	f.ledger.AssertNotCalled(t, "CreateDelivery", mock.Anything, mock.Anything, mock.Anything)
	f.syncer.AssertNotCalled(t, "Sync", mock.Anything, mock.Anything)
}

func TestConfirmOrderCommandHandler_Handle_AlreadyConfirmed(t *testing.T) {
	ctx := t.Context()
	f := newConfirmFixture(t)
	o := pendingOrder(t)
	require.NoError(t, o.LinkDelivery("seller-1", delivery.NewID(time.Now()), time.Now()))

	cmd, err := commands.NewConfirmOrderCommand(o.ID(), party(t, "seller-1", kernel.RoleSeller), packageAttrs(t, 1))
	require.NoError(t, err)

	f.factory.On("Create").Return(f.readUoW).Once()
	f.readUoW.On("OrderRepository").Return(f.repo).Once()
	f.repo.On("Get", ctx, o.ID()).Return(o, nil).Once()

	_, err = f.handler.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
	f.ledger.AssertNotCalled(t, "CreateDelivery", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmOrderCommandHandler_Handle_LedgerUnavailable(t *testing.T) {
	ctx := t.Context()
	f := newConfirmFixture(t)
	o := pendingOrder(t)
	seller := party(t, "seller-1", kernel.RoleSeller)

	cmd, err := commands.NewConfirmOrderCommand(o.ID(), seller, packageAttrs(t, 1))
	require.NoError(t, err)

	f.factory.On("Create").Return(f.readUoW).Once()
	f.readUoW.On("OrderRepository").Return(f.repo).Once()
	f.repo.On("Get", ctx, o.ID()).Return(o, nil).Once()
	f.profiles.On("GetProfile", ctx, "seller-1").
		Return(ports.Profile{UserID: "seller-1", Address: location(t, "Chicago", "IL", "USA")}, nil).Once()
	f.ledger.On("CreateDelivery", mock.Anything, seller, mock.Anything).
		Return(errs.NewLedgerUnavailableError(ports.FnCreateDelivery, errors.New("timeout"))).Once()

	_, err = f.handler.Handle(ctx, cmd)
	require.ErrorIs(t, err, errs.ErrLedgerUnavailable)
	assert.False(t, o.HasDelivery())
	f.factory.AssertNumberOfCalls(t, "Create", 1)
	f.syncer.AssertNotCalled(t, "Sync", mock.Anything, mock.Anything)
}

func TestConfirmOrderCommandHandler_Handle_LinkFails(t *testing.T) {
	ctx := t.Context()
	f := newConfirmFixture(t)
	o := pendingOrder(t)
	seller := party(t, "seller-1", kernel.RoleSeller)

	cmd, err := commands.NewConfirmOrderCommand(o.ID(), seller, packageAttrs(t, 1))
	require.NoError(t, err)

	f.factory.On("Create").Return(f.readUoW).Once()
	f.factory.On("Create").Return(f.linkUoW).Once()
	f.readUoW.On("OrderRepository").Return(f.repo).Once()
	f.linkUoW.On("Begin", ctx).Return(nil).Once()
	f.linkUoW.On("OrderRepository").Return(f.repo).Twice()
	f.linkUoW.On("Rollback", ctx).Return(nil).Once()
	f.repo.On("Get", ctx, o.ID()).Return(o, nil).Twice()
	f.repo.On("Update", ctx, o).Return(errors.New("update failed")).Once()
	f.profiles.On("GetProfile", ctx, "seller-1").
		Return(ports.Profile{UserID: "seller-1", Address: location(t, "Chicago", "IL", "USA")}, nil).Once()
	f.ledger.On("CreateDelivery", mock.Anything, seller, mock.Anything).Return(nil).Once()

	_, err = f.handler.Handle(ctx, cmd)
	require.Error(t, err)
	f.linkUoW.AssertNotCalled(t, "Commit", ctx)
	f.syncer.AssertNotCalled(t, "Sync", mock.Anything, mock.Anything)
}

func TestNewConfirmOrderCommand_RequiresSeller(t *testing.T) {
	_, err := commands.NewConfirmOrderCommand(kernel.NewUUID(), party(t, "customer-1", kernel.RoleCustomer), packageAttrs(t, 1))
	require.ErrorIs(t, err, errs.ErrUnauthorized)

	_, err = commands.NewConfirmOrderCommand(kernel.NewUUID(), party(t, "seller-1", kernel.RoleSeller), kernel.PackageAttributes{})
	require.Error(t, err)
}

func TestCancelOrderCommandHandler_Handle(t *testing.T) {
	customer := party(t, "customer-1", kernel.RoleCustomer)

	t.Run("pending order is cancelled", func(t *testing.T) {
		ctx := t.Context()
		o := pendingOrder(t)
		cmd, err := commands.NewCancelOrderCommand(o.ID(), customer)
		require.NoError(t, err)

		repo := new(MockOrderRepository)
		uow := new(MockOrderUoW)
		factory := new(MockOrderUoWFactory)
		factory.On("Create").Return(uow).Once()
		mock.InOrder(
			uow.On("Begin", ctx).Return(nil).Once(),
			uow.On("OrderRepository").Return(repo).Once(),
			repo.On("Get", ctx, o.ID()).Return(o, nil).Once(),
			uow.On("OrderRepository").Return(repo).Once(),
			repo.On("Update", ctx, o).Return(nil).Once(),
			uow.On("Commit", ctx).Return(nil).Once(),
			uow.On("Rollback", ctx).Return(nil).Once(),
		)

		h, err := commands.NewCancelOrderCommandHandler(factory)
		require.NoError(t, err)
		require.NoError(t, h.Handle(ctx, cmd))
		assert.Equal(t, delivery.Cancelled, o.Status())
		uow.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("confirmed order cannot be cancelled", func(t *testing.T) {
		ctx := t.Context()
		o := pendingOrder(t)
		require.NoError(t, o.LinkDelivery("seller-1", delivery.NewID(time.Now()), time.Now()))
		cmd, err := commands.NewCancelOrderCommand(o.ID(), customer)
		require.NoError(t, err)

		repo := new(MockOrderRepository)
		uow := new(MockOrderUoW)
		factory := new(MockOrderUoWFactory)
		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("OrderRepository").Return(repo).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		repo.On("Get", ctx, o.ID()).Return(o, nil).Once()

		h, err := commands.NewCancelOrderCommandHandler(factory)
		require.NoError(t, err)
		require.ErrorIs(t, h.Handle(ctx, cmd), errs.ErrInvalidTransition)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		uow.AssertNotCalled(t, "Commit", ctx)
	})

	t.Run("someone else's order", func(t *testing.T) {
		ctx := t.Context()
		o := pendingOrder(t)
		cmd, err := commands.NewCancelOrderCommand(o.ID(), party(t, "customer-2", kernel.RoleCustomer))
		require.NoError(t, err)

		repo := new(MockOrderRepository)
		uow := new(MockOrderUoW)
		factory := new(MockOrderUoWFactory)
		factory.On("Create").Return(uow).Once()
		uow.On("Begin", ctx).Return(nil).Once()
		uow.On("OrderRepository").Return(repo).Once()
		uow.On("Rollback", ctx).Return(nil).Once()
		repo.On("Get", ctx, o.ID()).Return(o, nil).Once()

		h, err := commands.NewCancelOrderCommandHandler(factory)
		require.NoError(t, err)
		require.ErrorIs(t, h.Handle(ctx, cmd), errs.ErrUnauthorized)
		assert.Equal(t, delivery.PendingConfirmation, o.Status())
	})

	t.Run("only customers cancel orders", func(t *testing.T) {
		_, err := commands.NewCancelOrderCommand(kernel.NewUUID(), party(t, "seller-1", kernel.RoleSeller))
		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})
}
