package payments

import "errors"

// Sentinel errors for the settlement flow. Handlers translate these to HTTP
// statuses; anything else is an internal error and gets a generic message.
var (
	ErrAlreadyPurchased    = errors.New("course already purchased")
	ErrCourseNotFound      = errors.New("course not found")
	ErrInvalidSignature    = errors.New("invalid payment signature")
	ErrAlreadyProcessed    = errors.New("payment already processed")
	ErrSettlementInFlight  = errors.New("payment settlement already in progress")
	ErrPaymentNotCaptured  = errors.New("payment not captured by gateway")
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrGateway wraps upstream gateway failures so callers can map them to a
	// 502 without leaking upstream error text.
	ErrGateway = errors.New("payment gateway error")

	// ErrReconciliationRequired means money moved at the gateway but the local
	// record could not be updated to match. It must reach an operator, never be
	// collapsed into a generic failure.
	ErrReconciliationRequired = errors.New("refund succeeded at gateway but local update failed, reconciliation required")
)
