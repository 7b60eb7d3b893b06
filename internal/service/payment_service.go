package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/karantec/EcommerceMern/internal/entity"
	"github.com/karantec/EcommerceMern/internal/payment"
	"github.com/karantec/EcommerceMern/internal/repository"
)

// PaymentOrder is what the frontend needs to open the payment widget.
type PaymentOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PaymentService creates remote gateway orders for persisted orders and
// reconciles asynchronous payment callbacks against them.
type PaymentService struct {
	orderService *OrderService
	orders       repository.OrderRepository
	users        repository.UserRepository
	gateway      payment.Gateway
	currency     string
	now          func() time.Time
}

func NewPaymentService(orderService *OrderService, orders repository.OrderRepository,
	users repository.UserRepository, gateway payment.Gateway, currency string) *PaymentService {
	return &PaymentService{
		orderService: orderService,
		orders:       orders,
		users:        users,
		gateway:      gateway,
		currency:     currency,
		now:          time.Now,
	}
}

// CreatePaymentOrder registers the order with the gateway. The amount is
// always derived from the persisted total; nothing from the client reaches
// the gateway. Calling it again for the same order reuses the existing
// remote order instead of opening a second one.
func (s *PaymentService) CreatePaymentOrder(ctx context.Context, orderID, userID int, isAdmin bool) (*PaymentOrder, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}

	if order.UserID != userID && !isAdmin {
		return nil, ErrForbidden
	}
	if order.IsPaid {
		return nil, fmt.Errorf("%w: order %d", ErrOrderAlreadyPaid, orderID)
	}
	if order.Status == entity.OrderStatusCancelled {
		return nil, fmt.Errorf("%w: order %d", ErrOrderCancelled, orderID)
	}

	amount := MinorUnits(order.TotalPrice)

	if order.PaymentOrderID != "" {
		return &PaymentOrder{ID: order.PaymentOrderID, Amount: amount, Currency: s.currency}, nil
	}

	receipt := fmt.Sprintf("receipt#%d", order.ID)
	remoteID, err := s.gateway.CreateOrder(ctx, amount, s.currency, receipt)
	if err != nil {
		logger.Error().Err(err).Msgf("Error creating gateway order for order %d", orderID)
		return nil, err
	}

	if err := s.orders.SetPaymentOrderID(ctx, order.ID, remoteID); err != nil {
		logger.Error().Err(err).Msgf("Error storing gateway order id for order %d", orderID)
		return nil, err
	}

	return &PaymentOrder{ID: remoteID, Amount: amount, Currency: s.currency}, nil
}

// Reconcile matches a payment callback to its order and marks it paid exactly
// once. The signature check comes before any lookup or mutation; a tampered
// callback never touches state. The gateway-confirmed amount must equal the
// persisted total, which defends against stale or tampered callbacks even
// when the signature is valid.
func (s *PaymentService) Reconcile(ctx context.Context, cb entity.PaymentCallback) (*entity.Order, error) {
	if cb.RazorpayOrderID == "" || cb.RazorpayPaymentID == "" || cb.RazorpaySignature == "" {
		return nil, fmt.Errorf("%w: callback fields are required", ErrMalformedInput)
	}

	if !s.gateway.VerifySignature(cb.RazorpayOrderID, cb.RazorpayPaymentID, cb.RazorpaySignature) {
		// Potential integrity event, not a transient failure.
		logger.Warn().
			Str("remote_order_id", cb.RazorpayOrderID).
			Str("payment_id", cb.RazorpayPaymentID).
			Msg("Payment callback rejected: signature mismatch")
		return nil, ErrInvalidSignature
	}

	order, err := s.orders.GetOrderByPaymentOrderID(ctx, cb.RazorpayOrderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: no order for gateway order %s", ErrOrderNotFound, cb.RazorpayOrderID)
	}
	if err != nil {
		return nil, err
	}

	confirmed, _, err := s.gateway.FetchOrderAmount(ctx, cb.RazorpayOrderID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error fetching gateway order %s", cb.RazorpayOrderID)
		return nil, err
	}

	expected := MinorUnits(order.TotalPrice)
	if confirmed != expected {
		logger.Warn().
			Int("order_id", order.ID).
			Int64("confirmed", confirmed).
			Int64("expected", expected).
			Msg("Payment callback rejected: amount mismatch")
		return nil, fmt.Errorf("%w: gateway confirmed %d, order total is %d", ErrAmountMismatch, confirmed, expected)
	}

	result := entity.PaymentResult{
		ID:         cb.RazorpayPaymentID,
		Status:     "captured",
		UpdateTime: s.now().UTC().Format(time.RFC3339),
	}
	if user, err := s.users.GetUserByID(ctx, order.UserID); err == nil {
		result.PayerEmail = user.Email
	}

	return s.orderService.MarkPaid(ctx, order.ID, result)
}

// KeyID exposes the gateway's publishable key for the frontend.
func (s *PaymentService) KeyID() string {
	return s.gateway.KeyID()
}
