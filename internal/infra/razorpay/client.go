package razorpay

import (
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Order mirrors the fields of a gateway order this service actually reads.
type Order struct {
	ID          string `json:"id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

// Payment mirrors a gateway payment record.
type Payment struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
	Method      string `json:"method"`
	Email       string `json:"email"`
}

// Refund mirrors a gateway refund record.
type Refund struct {
	ID          string `json:"id"`
	PaymentID   string `json:"payment_id"`
	AmountPaise int64  `json:"amount"`
	Status      string `json:"status"`
	Speed       string `json:"speed_processed"`
}

// Client wraps the Razorpay SDK behind typed methods. The SDK works on
// map[string]interface{} payloads; keeping the decoding here means the rest of
// the codebase never touches untyped gateway responses.
type Client struct {
	rzp   *razorpay.Client
	keyID string
}

func NewClient(keyID, keySecret string) *Client {
	return &Client{
		rzp:   razorpay.NewClient(keyID, keySecret),
		keyID: keyID,
	}
}

// KeyID returns the public key identifier the frontend needs to open checkout.
func (c *Client) KeyID() string {
	return c.keyID
}

func (c *Client) CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (*Order, error) {
	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
		"notes":    notes,
	}
	body, err := c.rzp.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return orderFromBody(body), nil
}

func (c *Client) FetchOrder(orderID string) (*Order, error) {
	body, err := c.rzp.Order.Fetch(orderID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch order %s: %w", orderID, err)
	}
	return orderFromBody(body), nil
}

func (c *Client) FetchPayment(paymentID string) (*Payment, error) {
	body, err := c.rzp.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch payment %s: %w", paymentID, err)
	}
	return &Payment{
		ID:          asString(body, "id"),
		OrderID:     asString(body, "order_id"),
		AmountPaise: asInt64(body, "amount"),
		Currency:    asString(body, "currency"),
		Status:      asString(body, "status"),
		Method:      asString(body, "method"),
		Email:       asString(body, "email"),
	}, nil
}

// RefundPayment issues a refund. amountPaise == 0 means a full refund: the
// SDK always sends an amount, so the payment's own amount is looked up first.
func (c *Client) RefundPayment(paymentID string, amountPaise int64, speed string, notes map[string]interface{}) (*Refund, error) {
	if amountPaise == 0 {
		payment, err := c.FetchPayment(paymentID)
		if err != nil {
			return nil, err
		}
		amountPaise = payment.AmountPaise
	}

	data := map[string]interface{}{
		"speed": speed,
		"notes": notes,
	}
	body, err := c.rzp.Payment.Refund(paymentID, int(amountPaise), data, nil)
	if err != nil {
		return nil, fmt.Errorf("refund payment %s: %w", paymentID, err)
	}
	return &Refund{
		ID:          asString(body, "id"),
		PaymentID:   asString(body, "payment_id"),
		AmountPaise: asInt64(body, "amount"),
		Status:      asString(body, "status"),
		Speed:       asString(body, "speed_processed"),
	}, nil
}

func orderFromBody(body map[string]interface{}) *Order {
	return &Order{
		ID:          asString(body, "id"),
		AmountPaise: asInt64(body, "amount"),
		Currency:    asString(body, "currency"),
		Receipt:     asString(body, "receipt"),
		Status:      asString(body, "status"),
	}
}

func asString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// asInt64 tolerates the decodings encoding/json produces for numbers.
func asInt64(m map[string]interface{}, key string) int64 {
	switch v := m[key].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
