package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karantec/EcommerceMern/internal/service"
)

func TestGetKeyHandler(t *testing.T) {
	f := newAPIFixture(t)

	c, rec := f.request(http.MethodGet, "/api/v1/payment/razorpay/key", "", nil)
	require.NoError(t, f.paymentHandler.GetKey(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rzp_test_key")
}

func TestCreatePaymentOrderHandler(t *testing.T) {
	f := newAPIFixture(t)
	p := f.seedProduct(t, 120, 5)
	order := placeOrderViaHandler(t, f, 1, p.ID, 2)

	body := fmt.Sprintf(`{"order_id": %d}`, order.ID)
	c, rec := f.request(http.MethodPost, "/api/v1/payment/razorpay/order", body, userClaims(1))
	require.NoError(t, f.paymentHandler.CreatePaymentOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var po service.PaymentOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &po))
	assert.NotEmpty(t, po.ID)
	// 240 items, free shipping, 36 tax: 276.00 as 27600 paise.
	assert.Equal(t, int64(27600), po.Amount)
	assert.Equal(t, "INR", po.Currency)
}

func TestCreatePaymentOrderHandler_Statuses(t *testing.T) {
	f := newAPIFixture(t)
	p := f.seedProduct(t, 50, 5)
	order := placeOrderViaHandler(t, f, 1, p.ID, 1)
	body := fmt.Sprintf(`{"order_id": %d}`, order.ID)

	t.Run("no token", func(t *testing.T) {
		c, rec := f.request(http.MethodPost, "/", body, nil)
		require.NoError(t, f.paymentHandler.CreatePaymentOrder(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing order id", func(t *testing.T) {
		c, rec := f.request(http.MethodPost, "/", `{}`, userClaims(1))
		require.NoError(t, f.paymentHandler.CreatePaymentOrder(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("foreign order", func(t *testing.T) {
		c, rec := f.request(http.MethodPost, "/", body, userClaims(2))
		require.NoError(t, f.paymentHandler.CreatePaymentOrder(c))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown order", func(t *testing.T) {
		c, rec := f.request(http.MethodPost, "/", `{"order_id": 404}`, userClaims(1))
		require.NoError(t, f.paymentHandler.CreatePaymentOrder(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestValidatePaymentHandler(t *testing.T) {
	f := newAPIFixture(t)
	p := f.seedProduct(t, 120, 5)
	order := placeOrderViaHandler(t, f, 1, p.ID, 2)

	c, _ := f.request(http.MethodPost, "/", fmt.Sprintf(`{"order_id": %d}`, order.ID), userClaims(1))
	require.NoError(t, f.paymentHandler.CreatePaymentOrder(c))

	var remoteID string
	for id := range f.gateway.amounts {
		remoteID = id
	}
	require.NotEmpty(t, remoteID)

	callback := func(paymentID, signature string) (int, string) {
		body := fmt.Sprintf(`{"razorpay_order_id": %q, "razorpay_payment_id": %q, "razorpay_signature": %q}`,
			remoteID, paymentID, signature)
		c, rec := f.request(http.MethodPost, "/api/v1/payment/razorpay/order/validate", body, nil)
		require.NoError(t, f.paymentHandler.ValidatePayment(c))
		return rec.Code, rec.Body.String()
	}

	t.Run("tampered signature", func(t *testing.T) {
		code, _ := callback("pay_abc", "sig:forged")
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("valid callback", func(t *testing.T) {
		code, body := callback("pay_abc", stubSignature(remoteID, "pay_abc"))
		assert.Equal(t, http.StatusOK, code)
		assert.Contains(t, body, "pay_abc")
	})

	t.Run("duplicate callback", func(t *testing.T) {
		code, body := callback("pay_other", stubSignature(remoteID, "pay_other"))
		assert.Equal(t, http.StatusOK, code)
		// First payment result is preserved.
		assert.Contains(t, body, "pay_abc")
	})
}

func TestValidatePaymentHandler_AmountMismatch(t *testing.T) {
	f := newAPIFixture(t)
	p := f.seedProduct(t, 150, 5)
	order := placeOrderViaHandler(t, f, 1, p.ID, 2)

	c, _ := f.request(http.MethodPost, "/", fmt.Sprintf(`{"order_id": %d}`, order.ID), userClaims(1))
	require.NoError(t, f.paymentHandler.CreatePaymentOrder(c))

	var remoteID string
	for id := range f.gateway.amounts {
		remoteID = id
	}
	require.NotEmpty(t, remoteID)
	f.gateway.amounts[remoteID] = 30000

	body := fmt.Sprintf(`{"razorpay_order_id": %q, "razorpay_payment_id": "pay_1", "razorpay_signature": %q}`,
		remoteID, stubSignature(remoteID, "pay_1"))
	cc, rec := f.request(http.MethodPost, "/", body, nil)
	require.NoError(t, f.paymentHandler.ValidatePayment(cc))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidatePaymentHandler_UnknownRemoteOrder(t *testing.T) {
	f := newAPIFixture(t)

	body := fmt.Sprintf(`{"razorpay_order_id": "order_ghost", "razorpay_payment_id": "pay_1", "razorpay_signature": %q}`,
		stubSignature("order_ghost", "pay_1"))
	c, rec := f.request(http.MethodPost, "/", body, nil)
	require.NoError(t, f.paymentHandler.ValidatePayment(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
