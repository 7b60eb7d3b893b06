package repository

import (
	"context"
	"sync"
	"time"

	"github.com/karantec/EcommerceMern/internal/entity"
)

// MemoryStore is a mutex-guarded in-memory implementation of the repository
// interfaces. Conditional updates hold the write lock for the whole
// check-and-mutate, which gives the same linearizability as the SQL
// single-statement updates. Used by tests and as a DB-free dev backend.
type MemoryStore struct {
	mu          sync.RWMutex
	nextProdID  int
	nextOrderID int
	nextUserID  int
	products    map[int]entity.Product
	orders      map[int]entity.Order
	users       map[int]entity.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextProdID:  1,
		nextOrderID: 1,
		nextUserID:  1,
		products:    make(map[int]entity.Product),
		orders:      make(map[int]entity.Order),
		users:       make(map[int]entity.User),
	}
}

var (
	_ ProductRepository = (*MemoryStore)(nil)
	_ OrderRepository   = (*MemoryStore)(nil)
	_ UserRepository    = (*MemoryStore)(nil)
)

// ProductRepository

func (m *MemoryStore) GetProductByID(ctx context.Context, id int) (*entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (m *MemoryStore) GetProducts(ctx context.Context) ([]entity.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]entity.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *MemoryStore) CreateProduct(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextProdID
	m.nextProdID++
	m.products[p.ID] = *p
	return p, nil
}

func (m *MemoryStore) UpdateProduct(ctx context.Context, p *entity.Product) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[p.ID]; !ok {
		return nil, ErrNotFound
	}
	m.products[p.ID] = *p
	return p, nil
}

func (m *MemoryStore) DecrementStock(ctx context.Context, id, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	if p.CountInStock < qty {
		return ErrConflict
	}
	p.CountInStock -= qty
	m.products[id] = p
	return nil
}

func (m *MemoryStore) RestoreStock(ctx context.Context, id, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return ErrNotFound
	}
	p.CountInStock += qty
	m.products[id] = p
	return nil
}

// OrderRepository

func (m *MemoryStore) CreateOrder(ctx context.Context, o *entity.Order) (*entity.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = m.nextOrderID
	m.nextOrderID++
	m.orders[o.ID] = copyOrder(*o)
	return o, nil
}

func (m *MemoryStore) GetOrderByID(ctx context.Context, id int) (*entity.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := copyOrder(o)
	return &cp, nil
}

func (m *MemoryStore) GetOrderByPaymentOrderID(ctx context.Context, paymentOrderID string) (*entity.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, o := range m.orders {
		if o.PaymentOrderID != "" && o.PaymentOrderID == paymentOrderID {
			cp := copyOrder(o)
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetOrdersByUser(ctx context.Context, userID int) ([]entity.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []entity.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, copyOrder(o))
		}
	}
	return out, nil
}

func (m *MemoryStore) SetPaymentOrderID(ctx context.Context, id int, paymentOrderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentOrderID = paymentOrderID
	m.orders[id] = o
	return nil
}

func (m *MemoryStore) MarkPaid(ctx context.Context, id int, paidAt time.Time, result entity.PaymentResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	if o.IsPaid || o.Status != entity.OrderStatusAwaitingPayment {
		return ErrConflict
	}
	o.IsPaid = true
	o.Status = entity.OrderStatusPaid
	o.PaidAt = &paidAt
	res := result
	o.PaymentResult = &res
	m.orders[id] = o
	return nil
}

func (m *MemoryStore) MarkDelivered(ctx context.Context, id int, deliveredAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	if !o.IsPaid || o.IsDelivered {
		return ErrConflict
	}
	o.IsDelivered = true
	o.Status = entity.OrderStatusDelivered
	o.DeliveredAt = &deliveredAt
	m.orders[id] = o
	return nil
}

func (m *MemoryStore) CancelOrder(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return ErrNotFound
	}
	if o.IsPaid || o.Status != entity.OrderStatusAwaitingPayment {
		return ErrConflict
	}
	o.Status = entity.OrderStatusCancelled
	m.orders[id] = o
	return nil
}

func (m *MemoryStore) GetExpiredOrders(ctx context.Context, cutoff time.Time) ([]entity.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []entity.Order
	for _, o := range m.orders {
		if !o.IsPaid && o.Status == entity.OrderStatusAwaitingPayment && o.CreatedAt.Before(cutoff) {
			out = append(out, copyOrder(o))
		}
	}
	return out, nil
}

// UserRepository

func (m *MemoryStore) CreateUser(ctx context.Context, u *entity.User) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.ID = m.nextUserID
	m.nextUserID++
	m.users[u.ID] = *u
	return u, nil
}

func (m *MemoryStore) GetUserByID(ctx context.Context, id int) (*entity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func copyOrder(o entity.Order) entity.Order {
	items := make([]entity.OrderItem, len(o.OrderItems))
	copy(items, o.OrderItems)
	o.OrderItems = items
	if o.PaidAt != nil {
		t := *o.PaidAt
		o.PaidAt = &t
	}
	if o.DeliveredAt != nil {
		t := *o.DeliveredAt
		o.DeliveredAt = &t
	}
	if o.PaymentResult != nil {
		res := *o.PaymentResult
		o.PaymentResult = &res
	}
	return o
}

// MemoryIdempotencyStore is the test/dev stand-in for the redis key store.
type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]time.Time
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{keys: make(map[string]time.Time)}
}

var _ IdempotencyStore = (*MemoryIdempotencyStore)(nil)

func (s *MemoryIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if expiry, ok := s.keys[key]; ok && now.Before(expiry) {
		return false, nil
	}
	s.keys[key] = now.Add(ttl)
	return true, nil
}
