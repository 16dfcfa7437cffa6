package interfaces

import (
	"context"

	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/payments"
)

// EventPublisher emits settlement events for downstream consumers
// (notifications, analytics). Publishing is best effort: a failed publish is
// logged by the implementation and never fails the settlement.
type EventPublisher interface {
	PaymentSettled(ctx context.Context, tx *payments.Transaction)
	PaymentRefunded(ctx context.Context, tx *payments.Transaction, refundID string)
	Close() error
}
