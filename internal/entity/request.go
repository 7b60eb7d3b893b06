package entity

// OrderLine is a single requested cart line. Only the product id and quantity
// are trusted from the client; prices are always recomputed server-side.
type OrderLine struct {
	ProductID int `json:"productId"`
	Qty       int `json:"qty"`
}

type CreateOrderRequest struct {
	OrderItems      []OrderLine     `json:"orderItems"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	IdempotencyKey  string          `json:"-"`
}

// CreatePaymentOrderRequest references an existing order; the charge amount is
// derived from the persisted total, never echoed from the client.
type CreatePaymentOrderRequest struct {
	OrderID int `json:"order_id"`
}

// PaymentCallback is the gateway confirmation posted back after the customer
// completes payment in the Razorpay widget.
type PaymentCallback struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
