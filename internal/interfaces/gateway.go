package interfaces

import (
	"github.com/itsNitinkumar/Skillarious-Backend/internal/infra/razorpay"
)

// PaymentGateway is the slice of the Razorpay API the settlement flow consumes.
type PaymentGateway interface {
	KeyID() string
	CreateOrder(amountPaise int64, currency, receipt string, notes map[string]interface{}) (*razorpay.Order, error)
	FetchOrder(orderID string) (*razorpay.Order, error)
	FetchPayment(paymentID string) (*razorpay.Payment, error)
	RefundPayment(paymentID string, amountPaise int64, speed string, notes map[string]interface{}) (*razorpay.Refund, error)
}
