package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karantec/EcommerceMern/internal/entity"
)

func newTestOrder(userID int) *entity.Order {
	return &entity.Order{
		UserID:        userID,
		PaymentMethod: "razorpay",
		OrderItems: []entity.OrderItem{
			{ProductID: 1, Name: "camera", Price: 100, Qty: 1},
		},
		ItemsPrice:    100,
		ShippingPrice: 0,
		TaxPrice:      15,
		TotalPrice:    115,
		Status:        entity.OrderStatusAwaitingPayment,
		CreatedAt:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMemoryStore_DecrementStock(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	p, err := store.CreateProduct(ctx, &entity.Product{Name: "camera", Price: 100, CountInStock: 3})
	require.NoError(t, err)

	require.NoError(t, store.DecrementStock(ctx, p.ID, 2))

	err = store.DecrementStock(ctx, p.ID, 2)
	assert.ErrorIs(t, err, ErrConflict)

	err = store.DecrementStock(ctx, 999, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.RestoreStock(ctx, p.ID, 2))
	got, err := store.GetProductByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CountInStock)
}

func TestMemoryStore_MarkPaidIsConditional(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	order, err := store.CreateOrder(ctx, newTestOrder(1))
	require.NoError(t, err)

	paidAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	result := entity.PaymentResult{ID: "pay_1", Status: "captured"}
	require.NoError(t, store.MarkPaid(ctx, order.ID, paidAt, result))

	// Second attempt must not overwrite the first result.
	err = store.MarkPaid(ctx, order.ID, paidAt.Add(time.Hour), entity.PaymentResult{ID: "pay_2"})
	assert.ErrorIs(t, err, ErrConflict)

	got, err := store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPaid)
	assert.Equal(t, "pay_1", got.PaymentResult.ID)
	assert.Equal(t, paidAt, *got.PaidAt)

	err = store.MarkPaid(ctx, 999, paidAt, result)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_MarkDeliveredRequiresPaid(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	order, err := store.CreateOrder(ctx, newTestOrder(1))
	require.NoError(t, err)

	when := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	err = store.MarkDelivered(ctx, order.ID, when)
	assert.ErrorIs(t, err, ErrConflict)

	require.NoError(t, store.MarkPaid(ctx, order.ID, when, entity.PaymentResult{ID: "pay_1"}))
	require.NoError(t, store.MarkDelivered(ctx, order.ID, when))

	err = store.MarkDelivered(ctx, order.ID, when.Add(time.Hour))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStore_CancelOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	pending, err := store.CreateOrder(ctx, newTestOrder(1))
	require.NoError(t, err)
	require.NoError(t, store.CancelOrder(ctx, pending.ID))

	// Cancelling twice, or cancelling a paid order, is a conflict.
	assert.ErrorIs(t, store.CancelOrder(ctx, pending.ID), ErrConflict)

	paid, err := store.CreateOrder(ctx, newTestOrder(1))
	require.NoError(t, err)
	require.NoError(t, store.MarkPaid(ctx, paid.ID, time.Now(), entity.PaymentResult{ID: "pay_1"}))
	assert.ErrorIs(t, store.CancelOrder(ctx, paid.ID), ErrConflict)
}

func TestMemoryStore_GetExpiredOrders(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	old := newTestOrder(1)
	old.CreatedAt = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	stale, err := store.CreateOrder(ctx, old)
	require.NoError(t, err)

	recent := newTestOrder(2)
	recent.CreatedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	_, err = store.CreateOrder(ctx, recent)
	require.NoError(t, err)

	paidOld := newTestOrder(3)
	paidOld.CreatedAt = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	paidOrder, err := store.CreateOrder(ctx, paidOld)
	require.NoError(t, err)
	require.NoError(t, store.MarkPaid(ctx, paidOrder.ID, time.Now(), entity.PaymentResult{ID: "pay_1"}))

	cutoff := time.Date(2025, 6, 1, 11, 30, 0, 0, time.UTC)
	expired, err := store.GetExpiredOrders(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.ID, expired[0].ID)
}

func TestMemoryStore_GetOrderByPaymentOrderID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	order, err := store.CreateOrder(ctx, newTestOrder(1))
	require.NoError(t, err)

	_, err = store.GetOrderByPaymentOrderID(ctx, "order_remote1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SetPaymentOrderID(ctx, order.ID, "order_remote1"))
	got, err := store.GetOrderByPaymentOrderID(ctx, "order_remote1")
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	// An empty remote id must never match unlinked orders.
	_, err = store.GetOrderByPaymentOrderID(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	order, err := store.CreateOrder(ctx, newTestOrder(1))
	require.NoError(t, err)

	got, err := store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	got.OrderItems[0].Qty = 99
	got.Status = entity.OrderStatusCancelled

	fresh, err := store.GetOrderByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.OrderItems[0].Qty)
	assert.Equal(t, entity.OrderStatusAwaitingPayment, fresh.Status)
}

func TestMemoryIdempotencyStore_Reserve(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore()

	ok, err := store.Reserve(ctx, "checkout-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "checkout-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Reserve(ctx, "checkout-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryIdempotencyStore_ReserveAfterExpiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore()

	ok, err := store.Reserve(ctx, "checkout-1", -time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Reserve(ctx, "checkout-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
