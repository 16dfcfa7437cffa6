package razorpay

import "strings"

// Razorpay payment lifecycle statuses.
const (
	PaymentCreated    = "created"
	PaymentAuthorized = "authorized"
	PaymentCaptured   = "captured"
	PaymentRefunded   = "refunded"
	PaymentFailed     = "failed"
)

// Refund speeds accepted by the gateway.
const (
	RefundSpeedNormal  = "normal"
	RefundSpeedOptimum = "optimum"
)

// NormalizeRefundSpeed maps client input onto a speed the gateway accepts,
// defaulting to normal.
func NormalizeRefundSpeed(s string) string {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case RefundSpeedOptimum:
		return RefundSpeedOptimum
	default:
		return RefundSpeedNormal
	}
}
