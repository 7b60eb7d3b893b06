package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/karantec/EcommerceMern/internal/entity"
	"github.com/karantec/EcommerceMern/internal/service"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
}

func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// GetKey handles GET /api/v1/payment/razorpay/key.
func (h *PaymentHandler) GetKey(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"razorpayKeyId": h.paymentService.KeyID()})
}

// CreatePaymentOrder handles POST /api/v1/payment/razorpay/order. The body
// names an existing order; the amount is derived server-side from its total.
func (h *PaymentHandler) CreatePaymentOrder(c echo.Context) error {
	claims := currentClaims(c)
	if claims == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication required"})
	}

	req := entity.CreatePaymentOrderRequest{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}
	if req.OrderID <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "order_id is required"})
	}

	paymentOrder, err := h.paymentService.CreatePaymentOrder(c.Request().Context(), req.OrderID, claims.UserID, claims.IsAdmin)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, paymentOrder)
}

// ValidatePayment handles POST /api/v1/payment/razorpay/order/validate, the
// gateway confirmation callback.
func (h *PaymentHandler) ValidatePayment(c echo.Context) error {
	cb := entity.PaymentCallback{}
	if err := c.Bind(&cb); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	order, err := h.paymentService.Reconcile(c.Request().Context(), cb)
	if err != nil {
		if httpStatus(err) == http.StatusInternalServerError {
			// Gateway internals stay out of client responses.
			logger.Error().Err(err).Msg("Payment reconciliation failed")
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "payment could not be confirmed"})
		}
		return jsonError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "Payment validated successfully",
		"orderId":   order.ID,
		"paymentId": order.PaymentResult.ID,
	})
}
