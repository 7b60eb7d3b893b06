package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/karantec/EcommerceMern/internal/entity"
	"github.com/karantec/EcommerceMern/internal/events"
	"github.com/karantec/EcommerceMern/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

const idempotencyKeyTTL = 24 * time.Hour

// OrderService is the order ledger: it creates orders from priced carts and
// owns the one-way state transitions (paid, delivered, cancelled).
type OrderService struct {
	orders      repository.OrderRepository
	products    repository.ProductRepository
	pricing     *PricingEngine
	idempotency repository.IdempotencyStore
	publisher   events.Publisher
	checkoutTTL time.Duration
	now         func() time.Time
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository,
	pricing *PricingEngine, idempotency repository.IdempotencyStore, publisher events.Publisher,
	checkoutTTL time.Duration) *OrderService {
	return &OrderService{
		orders:      orders,
		products:    products,
		pricing:     pricing,
		idempotency: idempotency,
		publisher:   publisher,
		checkoutTTL: checkoutTTL,
		now:         time.Now,
	}
}

// CreateOrder prices the cart, reserves stock atomically per line, and
// persists the order in awaiting_payment. The checkout is all-or-nothing:
// if any line cannot be reserved, every decrement already applied is
// compensated before the error is returned.
func (s *OrderService) CreateOrder(ctx context.Context, userID int, req entity.CreateOrderRequest) (*entity.Order, error) {
	if err := validateCreateOrder(req); err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		ok, err := s.idempotency.Reserve(ctx, req.IdempotencyKey, idempotencyKeyTTL)
		if err != nil {
			logger.Error().Err(err).Msg("Error reserving idempotency key")
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: idempotency key already used", ErrDuplicateRequest)
		}
	}

	totals, err := s.pricing.ComputeOrderTotals(ctx, req.OrderItems)
	if err != nil {
		return nil, err
	}

	reserved := make([]entity.OrderItem, 0, len(totals.Items))
	for _, item := range totals.Items {
		if err := s.products.DecrementStock(ctx, item.ProductID, item.Qty); err != nil {
			s.releaseStock(ctx, reserved)
			if errors.Is(err, repository.ErrConflict) {
				return nil, fmt.Errorf("%w: product %d", ErrInsufficientStock, item.ProductID)
			}
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: product %d", ErrProductNotFound, item.ProductID)
			}
			logger.Error().Err(err).Msgf("Error reserving stock for product %d", item.ProductID)
			return nil, err
		}
		reserved = append(reserved, item)
	}

	order := &entity.Order{
		UserID:          userID,
		OrderItems:      totals.Items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      totals.ItemsPrice,
		ShippingPrice:   totals.ShippingPrice,
		TaxPrice:        totals.TaxPrice,
		TotalPrice:      totals.TotalPrice,
		Status:          entity.OrderStatusAwaitingPayment,
		CreatedAt:       s.now().UTC(),
		IdempotencyKey:  req.IdempotencyKey,
	}

	created, err := s.orders.CreateOrder(ctx, order)
	if err != nil {
		s.releaseStock(ctx, reserved)
		logger.Error().Err(err).Msg("Error creating order")
		return nil, err
	}

	s.publishOrderEvent(ctx, created, "created")
	return created, nil
}

// MarkPaid applies the unpaid -> paid transition exactly once. A repeated
// call, with the same or a different payment result, is a no-op that returns
// the order as first paid.
func (s *OrderService) MarkPaid(ctx context.Context, orderID int, result entity.PaymentResult) (*entity.Order, error) {
	err := s.orders.MarkPaid(ctx, orderID, s.now().UTC(), result)
	switch {
	case err == nil:
		order, err := s.orders.GetOrderByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		s.publishOrderEvent(ctx, order, "paid")
		return order, nil
	case errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("%w: order %d", ErrOrderNotFound, orderID)
	case errors.Is(err, repository.ErrConflict):
		order, getErr := s.orders.GetOrderByID(ctx, orderID)
		if getErr != nil {
			return nil, getErr
		}
		if order.IsPaid {
			// Duplicate callback: keep the first payment result.
			return order, nil
		}
		if order.Status == entity.OrderStatusCancelled {
			return nil, fmt.Errorf("%w: order %d", ErrOrderCancelled, orderID)
		}
		return nil, fmt.Errorf("order %d in unexpected state %q", orderID, order.Status)
	default:
		logger.Error().Err(err).Msgf("Error marking order %d paid", orderID)
		return nil, err
	}
}

// MarkDelivered requires the order to be paid; it is idempotent the same way
// MarkPaid is.
func (s *OrderService) MarkDelivered(ctx context.Context, orderID int) (*entity.Order, error) {
	err := s.orders.MarkDelivered(ctx, orderID, s.now().UTC())
	switch {
	case err == nil:
		order, err := s.orders.GetOrderByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		s.publishOrderEvent(ctx, order, "delivered")
		return order, nil
	case errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("%w: order %d", ErrOrderNotFound, orderID)
	case errors.Is(err, repository.ErrConflict):
		order, getErr := s.orders.GetOrderByID(ctx, orderID)
		if getErr != nil {
			return nil, getErr
		}
		if order.IsDelivered {
			return order, nil
		}
		return nil, fmt.Errorf("%w: order %d", ErrOrderNotPaid, orderID)
	default:
		logger.Error().Err(err).Msgf("Error marking order %d delivered", orderID)
		return nil, err
	}
}

func (s *OrderService) GetOrder(ctx context.Context, orderID int) (*entity.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: order %d", ErrOrderNotFound, orderID)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) GetUserOrders(ctx context.Context, userID int) ([]entity.Order, error) {
	return s.orders.GetOrdersByUser(ctx, userID)
}

// ReleaseExpired cancels orders that sat unpaid past the checkout TTL and
// returns their reserved stock. The cancel is the same kind of conditional
// write as MarkPaid, so a payment callback racing the sweep can never be
// overwritten: one of the two wins, the other observes the conflict.
func (s *OrderService) ReleaseExpired(ctx context.Context) (int, error) {
	cutoff := s.now().UTC().Add(-s.checkoutTTL)
	expired, err := s.orders.GetExpiredOrders(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	released := 0
	for i := range expired {
		order := &expired[i]
		if err := s.orders.CancelOrder(ctx, order.ID); err != nil {
			if errors.Is(err, repository.ErrConflict) || errors.Is(err, repository.ErrNotFound) {
				// Paid (or already cancelled) between listing and here.
				continue
			}
			logger.Error().Err(err).Msgf("Error cancelling expired order %d", order.ID)
			continue
		}

		s.releaseStock(ctx, order.OrderItems)
		order.Status = entity.OrderStatusCancelled
		s.publishOrderEvent(ctx, order, "cancelled")
		released++
	}

	return released, nil
}

func (s *OrderService) releaseStock(ctx context.Context, items []entity.OrderItem) {
	for _, item := range items {
		if err := s.products.RestoreStock(ctx, item.ProductID, item.Qty); err != nil {
			logger.Error().Err(err).Msgf("Error restoring stock for product %d", item.ProductID)
		}
	}
}

func (s *OrderService) publishOrderEvent(ctx context.Context, order *entity.Order, event string) {
	key := fmt.Sprintf("order.%s.%d", event, order.ID)
	if err := s.publisher.Publish(ctx, key, order); err != nil {
		// The order is already persisted; a lost event must not fail
		// the request.
		logger.Error().Err(err).Msgf("Error publishing %s", key)
	}
}

func validateCreateOrder(req entity.CreateOrderRequest) error {
	if len(req.OrderItems) == 0 {
		return fmt.Errorf("%w: orderItems is required", ErrMalformedInput)
	}
	if req.PaymentMethod == "" {
		return fmt.Errorf("%w: paymentMethod is required", ErrMalformedInput)
	}
	addr := req.ShippingAddress
	if addr.Address == "" || addr.City == "" || addr.PostalCode == "" || addr.Country == "" {
		return fmt.Errorf("%w: shippingAddress is incomplete", ErrMalformedInput)
	}
	return nil
}
