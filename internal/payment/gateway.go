package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Gateway is the thin adapter in front of the payment processor. Amounts are
// in the currency's minor unit (paise for INR).
type Gateway interface {
	// CreateOrder creates a remote payment order and returns its id.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)
	// FetchOrderAmount returns the amount and currency the gateway holds
	// for a remote order, used to cross-check callbacks.
	FetchOrderAmount(ctx context.Context, remoteOrderID string) (int64, string, error)
	// VerifySignature checks the authenticity of a payment callback.
	// Any mismatch is a hard rejection.
	VerifySignature(remoteOrderID, paymentID, signature string) bool
	// KeyID is the publishable key the frontend needs to open the widget.
	KeyID() string
}

type RazorpayGateway struct {
	client *razorpay.Client
	keyID  string
	secret string
}

func NewRazorpayGateway(keyID, secret string) *RazorpayGateway {
	return &RazorpayGateway{
		client: razorpay.NewClient(keyID, secret),
		keyID:  keyID,
		secret: secret,
	}
}

var _ Gateway = (*RazorpayGateway)(nil)

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay: create order: %w", err)
	}

	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", errors.New("razorpay: order id missing in response")
	}

	return id, nil
}

func (g *RazorpayGateway) FetchOrderAmount(ctx context.Context, remoteOrderID string) (int64, string, error) {
	body, err := g.client.Order.Fetch(remoteOrderID, nil, nil)
	if err != nil {
		return 0, "", fmt.Errorf("razorpay: fetch order %s: %w", remoteOrderID, err)
	}

	amount, ok := body["amount"].(float64)
	if !ok {
		return 0, "", errors.New("razorpay: amount missing in response")
	}
	currency, _ := body["currency"].(string)

	return int64(amount), currency, nil
}

func (g *RazorpayGateway) VerifySignature(remoteOrderID, paymentID, signature string) bool {
	return verifySignature(remoteOrderID, paymentID, signature, g.secret)
}

func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}

// verifySignature checks the Razorpay callback signature:
// hex(HMAC-SHA256("<order_id>|<payment_id>", secret)). hmac.Equal keeps the
// comparison constant-time.
func verifySignature(remoteOrderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(remoteOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
