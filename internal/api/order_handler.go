package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/karantec/EcommerceMern/internal/entity"
	"github.com/karantec/EcommerceMern/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
}

func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrder handles POST /api/v1/orders.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	claims := currentClaims(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}

	req := entity.CreateOrderRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}
	req.IdempotencyKey = c.Request().Header.Get("Idempotency-Key")

	order, err := h.orderService.CreateOrder(c.Request().Context(), claims.UserID, req)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusCreated, order)
}

// GetOrder handles GET /api/v1/orders/:id. Owner or admin only.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	claims := currentClaims(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), id)
	if err != nil {
		return jsonError(c, err)
	}

	if order.UserID != claims.UserID && !claims.IsAdmin {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	}

	return c.JSON(http.StatusOK, order)
}

// GetMyOrders handles GET /api/v1/orders/mine.
func (h *OrderHandler) GetMyOrders(c echo.Context) error {
	claims := currentClaims(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}

	orders, err := h.orderService.GetUserOrders(c.Request().Context(), claims.UserID)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, orders)
}

// DeliverOrder handles PUT /api/v1/orders/:id/deliver. Admin only.
func (h *OrderHandler) DeliverOrder(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	order, err := h.orderService.MarkDelivered(c.Request().Context(), id)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, order)
}
