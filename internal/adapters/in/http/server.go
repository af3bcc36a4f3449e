// Package http exposes the custody use cases over echo. Every request acts as the
// user in the identity headers; authorization is decided by the use cases and the
// ledger, never here.
package http

import (
	"context"
	"net/http"

	"custody/internal/core/application/projector"
	"custody/internal/core/application/usecases/commands"
	"custody/internal/core/application/usecases/queries"
	"custody/internal/core/domain/model/delivery"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/order"
	"custody/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Use case ports of the server.
type (
	CreateOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
	}
	ConfirmOrderHandler interface {
		Handle(ctx context.Context, cmd commands.ConfirmOrderCommand) (delivery.ID, error)
	}
	CancelOrderHandler interface {
		Handle(ctx context.Context, cmd commands.CancelOrderCommand) error
	}
	SaveProfileHandler interface {
		Handle(ctx context.Context, cmd commands.SaveProfileCommand) error
	}
	Custody interface {
		Initiate(ctx context.Context, cmd commands.InitiateHandoffCommand) (*delivery.Delivery, error)
		Confirm(ctx context.Context, cmd commands.ConfirmHandoffCommand) (*delivery.Delivery, error)
		Dispute(ctx context.Context, cmd commands.DisputeHandoffCommand) (*delivery.Delivery, error)
		CancelHandoff(ctx context.Context, cmd commands.CancelHandoffCommand) (*delivery.Delivery, error)
		CancelDelivery(ctx context.Context, cmd commands.CancelDeliveryCommand) (*delivery.Delivery, error)
		UpdateLocation(ctx context.Context, cmd commands.UpdateLocationCommand) (*delivery.Delivery, error)
	}
	GetOrderHandler interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderView, error)
	}
	ListMyOrdersHandler interface {
		Handle(ctx context.Context, query queries.ListMyOrdersQuery) ([]queries.OrderView, error)
	}
	GetDeliveryHandler interface {
		Handle(ctx context.Context, query queries.GetDeliveryQuery) (*delivery.Delivery, error)
	}
	GetDeliveryHistoryHandler interface {
		Handle(ctx context.Context, query queries.GetDeliveryHistoryQuery) ([]delivery.HistoryEntry, error)
	}
	DeliveryLister interface {
		HandleByCustodian(ctx context.Context, query queries.ListDeliveriesByCustodianQuery) ([]*delivery.Delivery, error)
		HandleByStatus(ctx context.Context, query queries.ListDeliveriesByStatusQuery) ([]*delivery.Delivery, error)
	}
	Sweeper interface {
		Sweep(ctx context.Context) (projector.SweepResult, error)
	}
)

// Handlers groups the use cases served over HTTP. Every field is required.
type Handlers struct {
	CreateOrder        CreateOrderHandler
	ConfirmOrder       ConfirmOrderHandler
	CancelOrder        CancelOrderHandler
	SaveProfile        SaveProfileHandler
	Custody            Custody
	GetOrder           GetOrderHandler
	ListMyOrders       ListMyOrdersHandler
	GetDelivery        GetDeliveryHandler
	GetDeliveryHistory GetDeliveryHistoryHandler
	ListDeliveries     DeliveryLister
	Sweeper            Sweeper
}

// Server implements the ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	h Handlers
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(h Handlers) (*Server, error) {
	required := map[string]any{
		"createOrder":        h.CreateOrder,
		"confirmOrder":       h.ConfirmOrder,
		"cancelOrder":        h.CancelOrder,
		"saveProfile":        h.SaveProfile,
		"custody":            h.Custody,
		"getOrder":           h.GetOrder,
		"listMyOrders":       h.ListMyOrders,
		"getDelivery":        h.GetDelivery,
		"getDeliveryHistory": h.GetDeliveryHistory,
		"listDeliveries":     h.ListDeliveries,
		"sweeper":            h.Sweeper,
	}
	for name, handler := range required {
		if handler == nil {
			return nil, errs.NewValueIsRequiredError(name)
		}
	}
	return &Server{h: h}, nil
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	var body NewOrder
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	items := make([]order.Item, 0, len(body.Items))
	for _, it := range body.Items {
		item, itemErr := order.NewItem(it.ProductID, it.Quantity, it.UnitPrice)
		if itemErr != nil {
			return writeError(ctx, itemErr)
		}
		items = append(items, item)
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, actor, body.SellerID, items)
	if err != nil {
		return writeError(ctx, err)
	}
	if err = s.h.CreateOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, OrderCreated{OrderID: orderID.Bytes()})
}

// ListMyOrders handles GET /api/v1/orders.
func (s *Server) ListMyOrders(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	query, err := queries.NewListMyOrdersQuery(actor)
	if err != nil {
		return writeError(ctx, err)
	}

	views, err := s.h.ListMyOrders.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]Order, 0, len(views))
	for _, v := range views {
		response = append(response, orderResponse(v))
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(ctx echo.Context, orderID openapi_types.UUID) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	id, err := kernel.UUIDFromBytes(orderID[:])
	if err != nil {
		return writeError(ctx, err)
	}
	query, err := queries.NewGetOrderQuery(id, actor)
	if err != nil {
		return writeError(ctx, err)
	}

	view, err := s.h.GetOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, orderResponse(view))
}

// ConfirmOrder handles POST /api/v1/orders/{orderId}/confirm.
func (s *Server) ConfirmOrder(ctx echo.Context, orderID openapi_types.UUID) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	var body Package
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	pkg, err := body.toDomain()
	if err != nil {
		return writeError(ctx, err)
	}
	id, err := kernel.UUIDFromBytes(orderID[:])
	if err != nil {
		return writeError(ctx, err)
	}
	cmd, err := commands.NewConfirmOrderCommand(id, actor, pkg)
	if err != nil {
		return writeError(ctx, err)
	}

	deliveryID, err := s.h.ConfirmOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, DeliveryCreated{DeliveryID: deliveryID.String()})
}

// CancelOrder handles POST /api/v1/orders/{orderId}/cancel.
func (s *Server) CancelOrder(ctx echo.Context, orderID openapi_types.UUID) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	id, err := kernel.UUIDFromBytes(orderID[:])
	if err != nil {
		return writeError(ctx, err)
	}
	cmd, err := commands.NewCancelOrderCommand(id, actor)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.h.CancelOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ListDeliveries handles GET /api/v1/deliveries. A status filter takes precedence
// over a custodian filter.
func (s *Server) ListDeliveries(ctx echo.Context, params ListDeliveriesParams) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}

	var result []*delivery.Delivery
	if params.Status != nil {
		status, parseErr := delivery.ParseStatus(*params.Status)
		if parseErr != nil {
			return writeError(ctx, parseErr)
		}
		query, qErr := queries.NewListDeliveriesByStatusQuery(actor, status)
		if qErr != nil {
			return writeError(ctx, qErr)
		}
		result, err = s.h.ListDeliveries.HandleByStatus(ctx.Request().Context(), query)
	} else {
		var custodianID string
		if params.CustodianID != nil {
			custodianID = *params.CustodianID
		}
		query, qErr := queries.NewListDeliveriesByCustodianQuery(actor, custodianID)
		if qErr != nil {
			return writeError(ctx, qErr)
		}
		result, err = s.h.ListDeliveries.HandleByCustodian(ctx.Request().Context(), query)
	}
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, deliveriesResponse(result))
}

// GetDelivery handles GET /api/v1/deliveries/{deliveryId}.
func (s *Server) GetDelivery(ctx echo.Context, deliveryID string) error {
	actor, id, err := s.deliveryRequest(ctx, deliveryID)
	if err != nil {
		return err
	}
	query, err := queries.NewGetDeliveryQuery(id, actor)
	if err != nil {
		return writeError(ctx, err)
	}

	d, err := s.h.GetDelivery.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, deliveryResponse(d))
}

// GetDeliveryHistory handles GET /api/v1/deliveries/{deliveryId}/history.
func (s *Server) GetDeliveryHistory(ctx echo.Context, deliveryID string) error {
	actor, id, err := s.deliveryRequest(ctx, deliveryID)
	if err != nil {
		return err
	}
	query, err := queries.NewGetDeliveryHistoryQuery(id, actor)
	if err != nil {
		return writeError(ctx, err)
	}

	history, err := s.h.GetDeliveryHistory.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, historyResponse(history))
}

// InitiateHandoff handles POST /api/v1/deliveries/{deliveryId}/handoffs.
func (s *Server) InitiateHandoff(ctx echo.Context, deliveryID string) error {
	actor, id, err := s.deliveryRequest(ctx, deliveryID)
	if err != nil {
		return err
	}
	var body HandoffTarget
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	role, err := kernel.ParseRole(body.TargetRole)
	if err != nil {
		return writeError(ctx, err)
	}
	target, err := kernel.NewParty(body.TargetID, role)
	if err != nil {
		return writeError(ctx, err)
	}
	cmd, err := commands.NewInitiateHandoffCommand(id, actor, target)
	if err != nil {
		return writeError(ctx, err)
	}

	return s.respond(ctx, func(c context.Context) (*delivery.Delivery, error) {
		return s.h.Custody.Initiate(c, cmd)
	})
}

// ConfirmHandoff handles POST /api/v1/deliveries/{deliveryId}/handoffs/confirm.
// Customers confirm the final leg without a body.
func (s *Server) ConfirmHandoff(ctx echo.Context, deliveryID string) error {
	actor, id, err := s.deliveryRequest(ctx, deliveryID)
	if err != nil {
		return err
	}

	var cmd commands.ConfirmHandoffCommand
	if actor.Role() == kernel.RoleCustomer {
		cmd, err = commands.NewConfirmDeliveryCommand(id, actor)
	} else {
		var body HandoffCondition
		if err = ctx.Bind(&body); err != nil {
			return badRequest(ctx, "Invalid request body")
		}
		loc, locErr := body.Location.toDomain()
		if locErr != nil {
			return writeError(ctx, locErr)
		}
		pkg, pkgErr := body.Package.toDomain()
		if pkgErr != nil {
			return writeError(ctx, pkgErr)
		}
		cmd, err = commands.NewConfirmHandoffCommand(id, actor, loc, pkg)
	}
	if err != nil {
		return writeError(ctx, err)
	}

	return s.respond(ctx, func(c context.Context) (*delivery.Delivery, error) {
		return s.h.Custody.Confirm(c, cmd)
	})
}

// DisputeHandoff handles POST /api/v1/deliveries/{deliveryId}/handoffs/dispute.
func (s *Server) DisputeHandoff(ctx echo.Context, deliveryID string) error {
	actor, id, err := s.deliveryRequest(ctx, deliveryID)
	if err != nil {
		return err
	}
	var body DisputeRequest
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	cmd, err := commands.NewDisputeHandoffCommand(id, actor, body.Reason)
	if err != nil {
		return writeError(ctx, err)
	}

	return s.respond(ctx, func(c context.Context) (*delivery.Delivery, error) {
		return s.h.Custody.Dispute(c, cmd)
	})
}

// CancelHandoff handles POST /api/v1/deliveries/{deliveryId}/handoffs/cancel.
func (s *Server) CancelHandoff(ctx echo.Context, deliveryID string) error {
	actor, id, err := s.deliveryRequest(ctx, deliveryID)
	if err != nil {
		return err
	}
	cmd, err := commands.NewCancelHandoffCommand(id, actor)
	if err != nil {
		return writeError(ctx, err)
	}

	return s.respond(ctx, func(c context.Context) (*delivery.Delivery, error) {
		return s.h.Custody.CancelHandoff(c, cmd)
	})
}

// CancelDelivery handles POST /api/v1/deliveries/{deliveryId}/cancel.
func (s *Server) CancelDelivery(ctx echo.Context, deliveryID string) error {
	actor, id, err := s.deliveryRequest(ctx, deliveryID)
	if err != nil {
		return err
	}
	cmd, err := commands.NewCancelDeliveryCommand(id, actor)
	if err != nil {
		return writeError(ctx, err)
	}

	return s.respond(ctx, func(c context.Context) (*delivery.Delivery, error) {
		return s.h.Custody.CancelDelivery(c, cmd)
	})
}

// UpdateLocation handles PUT /api/v1/deliveries/{deliveryId}/location.
func (s *Server) UpdateLocation(ctx echo.Context, deliveryID string) error {
	actor, id, err := s.deliveryRequest(ctx, deliveryID)
	if err != nil {
		return err
	}
	var body Location
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	loc, err := body.toDomain()
	if err != nil {
		return writeError(ctx, err)
	}
	cmd, err := commands.NewUpdateLocationCommand(id, actor, loc)
	if err != nil {
		return writeError(ctx, err)
	}

	return s.respond(ctx, func(c context.Context) (*delivery.Delivery, error) {
		return s.h.Custody.UpdateLocation(c, cmd)
	})
}

// SaveProfile handles PUT /api/v1/profiles/me.
func (s *Server) SaveProfile(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	var body Location
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	address, err := body.toDomain()
	if err != nil {
		return writeError(ctx, err)
	}
	cmd, err := commands.NewSaveProfileCommand(actor, address)
	if err != nil {
		return writeError(ctx, err)
	}

	if err = s.h.SaveProfile.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}
	return ctx.NoContent(http.StatusNoContent)
}

// SweepProjection handles POST /api/v1/admin/projection/sweep. Administrators only.
func (s *Server) SweepProjection(ctx echo.Context) error {
	actor, err := actorFrom(ctx)
	if err != nil {
		return err
	}
	if actor.Role() != kernel.RoleAdmin {
		return writeError(ctx, errs.NewUnauthorizedError("sweep projection", "ANY", "only administrators run the sweep"))
	}

	result, err := s.h.Sweeper.Sweep(ctx.Request().Context())
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, SweepResult{
		Scanned:  result.Scanned,
		Repaired: result.Repaired,
		Failed:   result.Failed,
	})
}

func (s *Server) deliveryRequest(ctx echo.Context, rawID string) (kernel.Party, delivery.ID, error) {
	actor, err := actorFrom(ctx)
	if err != nil {
		return kernel.Party{}, "", err
	}
	id, err := delivery.ParseID(rawID)
	if err != nil {
		return kernel.Party{}, "", echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return actor, id, nil
}

func (s *Server) respond(ctx echo.Context, call func(context.Context) (*delivery.Delivery, error)) error {
	d, err := call(ctx.Request().Context())
	if err != nil {
		return writeError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, deliveryResponse(d))
}
