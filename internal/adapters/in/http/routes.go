package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ListDeliveriesParams are the query parameters of GET /api/v1/deliveries.
type ListDeliveriesParams struct {
	Status      *string
	CustodianID *string
}

// ServerInterface lists the operations of api/openapi.yaml.
type ServerInterface interface {
	CreateOrder(ctx echo.Context) error
	ListMyOrders(ctx echo.Context) error
	GetOrder(ctx echo.Context, orderID openapi_types.UUID) error
	ConfirmOrder(ctx echo.Context, orderID openapi_types.UUID) error
	CancelOrder(ctx echo.Context, orderID openapi_types.UUID) error

	ListDeliveries(ctx echo.Context, params ListDeliveriesParams) error
	GetDelivery(ctx echo.Context, deliveryID string) error
	GetDeliveryHistory(ctx echo.Context, deliveryID string) error
	InitiateHandoff(ctx echo.Context, deliveryID string) error
	ConfirmHandoff(ctx echo.Context, deliveryID string) error
	DisputeHandoff(ctx echo.Context, deliveryID string) error
	CancelHandoff(ctx echo.Context, deliveryID string) error
	CancelDelivery(ctx echo.Context, deliveryID string) error
	UpdateLocation(ctx echo.Context, deliveryID string) error

	SaveProfile(ctx echo.Context) error
	SweepProjection(ctx echo.Context) error
}

// ServerInterfaceWrapper converts echo contexts to typed parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) orderID(ctx echo.Context) (openapi_types.UUID, error) {
	var orderID openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "orderId", ctx.Param("orderId"), &orderID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return orderID, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter orderId: %s", err))
	}
	return orderID, nil
}

func (w *ServerInterfaceWrapper) deliveryID(ctx echo.Context) (string, error) {
	var deliveryID string
	err := runtime.BindStyledParameterWithOptions("simple", "deliveryId", ctx.Param("deliveryId"), &deliveryID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter deliveryId: %s", err))
	}
	return deliveryID, nil
}

func (w *ServerInterfaceWrapper) withOrderID(call func(echo.Context, openapi_types.UUID) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		orderID, err := w.orderID(ctx)
		if err != nil {
			return err
		}
		return call(ctx, orderID)
	}
}

func (w *ServerInterfaceWrapper) withDeliveryID(call func(echo.Context, string) error) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		deliveryID, err := w.deliveryID(ctx)
		if err != nil {
			return err
		}
		return call(ctx, deliveryID)
	}
}

// ListDeliveries binds the optional status and custodianId query parameters.
func (w *ServerInterfaceWrapper) ListDeliveries(ctx echo.Context) error {
	var params ListDeliveriesParams

	if err := runtime.BindQueryParameter("form", true, false, "status", ctx.QueryParams(), &params.Status); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter status: %s", err))
	}
	if err := runtime.BindQueryParameter("form", true, false, "custodianId", ctx.QueryParams(), &params.CustodianID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter custodianId: %s", err))
	}

	return w.Handler.ListDeliveries(ctx, params)
}

// EchoRouter is the subset of echo used to register routes.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds every operation under baseURL.
func RegisterHandlers(router EchoRouter, si ServerInterface, baseURL string) {
	w := &ServerInterfaceWrapper{Handler: si}

	router.POST(baseURL+"/api/v1/orders", si.CreateOrder)
	router.GET(baseURL+"/api/v1/orders", si.ListMyOrders)
	router.GET(baseURL+"/api/v1/orders/:orderId", w.withOrderID(si.GetOrder))
	router.POST(baseURL+"/api/v1/orders/:orderId/confirm", w.withOrderID(si.ConfirmOrder))
	router.POST(baseURL+"/api/v1/orders/:orderId/cancel", w.withOrderID(si.CancelOrder))

	router.GET(baseURL+"/api/v1/deliveries", w.ListDeliveries)
	router.GET(baseURL+"/api/v1/deliveries/:deliveryId", w.withDeliveryID(si.GetDelivery))
	router.GET(baseURL+"/api/v1/deliveries/:deliveryId/history", w.withDeliveryID(si.GetDeliveryHistory))
	router.POST(baseURL+"/api/v1/deliveries/:deliveryId/handoffs", w.withDeliveryID(si.InitiateHandoff))
	router.POST(baseURL+"/api/v1/deliveries/:deliveryId/handoffs/confirm", w.withDeliveryID(si.ConfirmHandoff))
	router.POST(baseURL+"/api/v1/deliveries/:deliveryId/handoffs/dispute", w.withDeliveryID(si.DisputeHandoff))
	router.POST(baseURL+"/api/v1/deliveries/:deliveryId/handoffs/cancel", w.withDeliveryID(si.CancelHandoff))
	router.POST(baseURL+"/api/v1/deliveries/:deliveryId/cancel", w.withDeliveryID(si.CancelDelivery))
	router.PUT(baseURL+"/api/v1/deliveries/:deliveryId/location", w.withDeliveryID(si.UpdateLocation))

	router.PUT(baseURL+"/api/v1/profiles/me", si.SaveProfile)
	router.POST(baseURL+"/api/v1/admin/projection/sweep", si.SweepProjection)
}
