package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/karantec/EcommerceMern/internal/entity"
	"github.com/karantec/EcommerceMern/internal/events"
	"github.com/karantec/EcommerceMern/internal/payment"
	"github.com/karantec/EcommerceMern/internal/repository"
	"github.com/karantec/EcommerceMern/internal/service"
)

// stubGateway returns canned responses so handler tests never reach the
// network. Signatures match when they equal "sig:<order>|<payment>".
type stubGateway struct {
	amounts map[string]int64
	nextID  int
}

func newStubGateway() *stubGateway {
	return &stubGateway{amounts: make(map[string]int64)}
}

var _ payment.Gateway = (*stubGateway)(nil)

func (g *stubGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	g.nextID++
	id := fmt.Sprintf("order_stub%03d", g.nextID)
	g.amounts[id] = amount
	return id, nil
}

func (g *stubGateway) FetchOrderAmount(ctx context.Context, remoteOrderID string) (int64, string, error) {
	amount, ok := g.amounts[remoteOrderID]
	if !ok {
		return 0, "", fmt.Errorf("stub gateway: unknown order %s", remoteOrderID)
	}
	return amount, "INR", nil
}

func (g *stubGateway) VerifySignature(remoteOrderID, paymentID, signature string) bool {
	return signature == stubSignature(remoteOrderID, paymentID)
}

func (g *stubGateway) KeyID() string {
	return "rzp_test_key"
}

func stubSignature(remoteOrderID, paymentID string) string {
	return "sig:" + remoteOrderID + "|" + paymentID
}

type apiFixture struct {
	e       *echo.Echo
	store   *repository.MemoryStore
	gateway *stubGateway

	orders   *service.OrderService
	payments *service.PaymentService

	orderHandler   *OrderHandler
	paymentHandler *PaymentHandler
	productHandler *ProductHandler
	userHandler    *UserHandler
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	gateway := newStubGateway()

	pricing := service.NewPricingEngine(store, service.PricingPolicy{
		ShippingFee:     10,
		FreeShippingMin: 100,
		TaxRate:         0.15,
	})
	orders := service.NewOrderService(store, store, pricing,
		repository.NewMemoryIdempotencyStore(), events.NopPublisher{}, 30*time.Minute)
	payments := service.NewPaymentService(orders, store, store, gateway, "INR")

	return &apiFixture{
		e:              echo.New(),
		store:          store,
		gateway:        gateway,
		orders:         orders,
		payments:       payments,
		orderHandler:   NewOrderHandler(orders),
		paymentHandler: NewPaymentHandler(payments),
		productHandler: NewProductHandler(service.NewProductService(store)),
		userHandler:    NewUserHandler(service.NewUserService(store, "test-secret")),
	}
}

func (f *apiFixture) seedProduct(t *testing.T, price float64, stock int) *entity.Product {
	t.Helper()
	p, err := f.store.CreateProduct(context.Background(), &entity.Product{
		Name:         "camera",
		Description:  "a camera",
		Price:        price,
		CountInStock: stock,
	})
	require.NoError(t, err)
	return p
}

// request builds an echo context the way the JWT middleware would leave it:
// the parsed token, if any, sits under the "user" key.
func (f *apiFixture) request(method, target, body string, claims *service.JwtCustomClaims) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	if claims != nil {
		c.Set("user", jwt.NewWithClaims(jwt.SigningMethodHS256, claims))
	}
	return c, rec
}

func userClaims(id int) *service.JwtCustomClaims {
	return &service.JwtCustomClaims{UserID: id, Name: "user", Email: "user@example.com"}
}

func adminClaims(id int) *service.JwtCustomClaims {
	c := userClaims(id)
	c.IsAdmin = true
	return c
}

func checkoutBody(productID, qty int) string {
	return fmt.Sprintf(`{
		"orderItems": [{"productId": %d, "qty": %d}],
		"shippingAddress": {"address": "221B Baker Street", "city": "London", "postalCode": "NW1 6XE", "country": "UK"},
		"paymentMethod": "razorpay"
	}`, productID, qty)
}

func placeOrderViaHandler(t *testing.T, f *apiFixture, userID, productID, qty int) *entity.Order {
	t.Helper()
	c, rec := f.request(http.MethodPost, "/api/v1/orders", checkoutBody(productID, qty), userClaims(userID))
	require.NoError(t, f.orderHandler.CreateOrder(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var order entity.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	return &order
}
