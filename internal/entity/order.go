package entity

import "time"

// Order lifecycle. Transitions are one-way: awaiting_payment -> paid -> delivered,
// or awaiting_payment -> cancelled when a checkout expires unpaid.
const (
	OrderStatusAwaitingPayment = "awaiting_payment"
	OrderStatusPaid            = "paid"
	OrderStatusDelivered       = "delivered"
	OrderStatusCancelled       = "cancelled"
)

// OrderItem is an immutable snapshot of the product at order-creation time.
// Price is copied, not referenced, so later catalog edits never drift into
// already-placed orders.
type OrderItem struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Qty       int     `json:"qty"`
}

type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PaymentResult captures what the gateway confirmed for a paid order.
type PaymentResult struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	UpdateTime string `json:"updateTime"`
	PayerEmail string `json:"payerEmail"`
}

type Order struct {
	ID              int             `json:"id"`
	UserID          int             `json:"userId"`
	OrderItems      []OrderItem     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	PaymentOrderID  string          `json:"paymentOrderId,omitempty"`
	ItemsPrice      float64         `json:"itemsPrice"`
	ShippingPrice   float64         `json:"shippingPrice"`
	TaxPrice        float64         `json:"taxPrice"`
	TotalPrice      float64         `json:"totalPrice"`
	Status          string          `json:"status"`
	IsPaid          bool            `json:"isPaid"`
	PaidAt          *time.Time      `json:"paidAt,omitempty"`
	PaymentResult   *PaymentResult  `json:"paymentResult,omitempty"`
	IsDelivered     bool            `json:"isDelivered"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	IdempotencyKey  string          `json:"-"`
}

/*
MySQL schema

CREATE TABLE orders (
	id INT AUTO_INCREMENT PRIMARY KEY,
	user_id INT NOT NULL,
	payment_method VARCHAR(50) NOT NULL,
	payment_order_id VARCHAR(64) NULL UNIQUE,
	items_price DECIMAL(10,2) NOT NULL,
	shipping_price DECIMAL(10,2) NOT NULL,
	tax_price DECIMAL(10,2) NOT NULL,
	total_price DECIMAL(10,2) NOT NULL,
	status VARCHAR(20) NOT NULL,
	is_paid TINYINT(1) NOT NULL DEFAULT 0,
	paid_at DATETIME NULL,
	payment_id VARCHAR(64) NULL,
	payment_status VARCHAR(32) NULL,
	payment_update_time VARCHAR(40) NULL,
	payer_email VARCHAR(255) NULL,
	is_delivered TINYINT(1) NOT NULL DEFAULT 0,
	delivered_at DATETIME NULL,
	ship_address VARCHAR(255) NOT NULL,
	ship_city VARCHAR(100) NOT NULL,
	ship_postal_code VARCHAR(20) NOT NULL,
	ship_country VARCHAR(100) NOT NULL,
	idempotency_key VARCHAR(255) NULL,
	created_at DATETIME NOT NULL
);

CREATE TABLE order_items (
	id INT AUTO_INCREMENT PRIMARY KEY,
	order_id INT NOT NULL,
	product_id INT NOT NULL,
	name VARCHAR(255) NOT NULL,
	image VARCHAR(512) NOT NULL,
	price DECIMAL(10,2) NOT NULL,
	qty INT NOT NULL,
	FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE
);
*/
