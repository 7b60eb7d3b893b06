package repository

import (
	"context"
	"errors"
	"time"

	"github.com/karantec/EcommerceMern/internal/entity"
)

// ErrNotFound is returned when the referenced record does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a conditional update finds its precondition
// no longer holds (stock exhausted, order already paid, and so on). Callers
// re-read the record to decide what actually happened.
var ErrConflict = errors.New("conflict")

type ProductRepository interface {
	GetProductByID(ctx context.Context, id int) (*entity.Product, error)
	GetProducts(ctx context.Context) ([]entity.Product, error)
	CreateProduct(ctx context.Context, p *entity.Product) (*entity.Product, error)
	UpdateProduct(ctx context.Context, p *entity.Product) (*entity.Product, error)

	// DecrementStock atomically reserves qty units. It must be a single
	// conditional operation (decrement-if-stock-sufficient), not a
	// read-then-write pair: two checkouts racing for the last unit must
	// see exactly one success and one ErrConflict.
	DecrementStock(ctx context.Context, id, qty int) error
	// RestoreStock returns qty units, compensating a failed checkout.
	RestoreStock(ctx context.Context, id, qty int) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, o *entity.Order) (*entity.Order, error)
	GetOrderByID(ctx context.Context, id int) (*entity.Order, error)
	GetOrderByPaymentOrderID(ctx context.Context, paymentOrderID string) (*entity.Order, error)
	GetOrdersByUser(ctx context.Context, userID int) ([]entity.Order, error)
	SetPaymentOrderID(ctx context.Context, id int, paymentOrderID string) error

	// MarkPaid applies the unpaid -> paid transition as one conditional
	// write keyed on is_paid = 0, so at most one caller observes the edge.
	MarkPaid(ctx context.Context, id int, paidAt time.Time, result entity.PaymentResult) error
	// MarkDelivered requires the order to be paid and not yet delivered.
	MarkDelivered(ctx context.Context, id int, deliveredAt time.Time) error
	// CancelOrder cancels an order only while it is still awaiting payment.
	CancelOrder(ctx context.Context, id int) error
	// GetExpiredOrders lists unpaid orders created before the cutoff.
	GetExpiredOrders(ctx context.Context, cutoff time.Time) ([]entity.Order, error)
}

type UserRepository interface {
	CreateUser(ctx context.Context, u *entity.User) (*entity.User, error)
	GetUserByID(ctx context.Context, id int) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
}

// IdempotencyStore remembers request keys so a retried checkout is not
// processed twice.
type IdempotencyStore interface {
	// Reserve claims the key for ttl. It returns false when the key has
	// already been used.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
