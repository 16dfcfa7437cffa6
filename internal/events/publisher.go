package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/payments"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/telemetry"
)

const (
	TopicPaymentSettled  = "payment.settled"
	TopicPaymentRefunded = "payment.refunded"
)

// SettlementEvent is the payload published on both payment topics.
type SettlementEvent struct {
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	CourseID      string    `json:"course_id"`
	PaymentID     string    `json:"payment_id,omitempty"`
	OrderID       string    `json:"order_id"`
	AmountPaise   int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	RefundID      string    `json:"refund_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// KafkaPublisher emits settlement events to Kafka. Publishing is best effort;
// failures are logged and never bubble into the settlement path.
type KafkaPublisher struct {
	settled  *kafka.Writer
	refunded *kafka.Writer
}

func NewKafkaPublisher(brokers string) *KafkaPublisher {
	return &KafkaPublisher{
		settled: &kafka.Writer{
			Addr:     kafka.TCP(brokers),
			Topic:    TopicPaymentSettled,
			Balancer: &kafka.LeastBytes{},
		},
		refunded: &kafka.Writer{
			Addr:     kafka.TCP(brokers),
			Topic:    TopicPaymentRefunded,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *KafkaPublisher) PaymentSettled(ctx context.Context, tx *payments.Transaction) {
	p.publish(ctx, p.settled, eventFromTransaction(tx, ""))
}

func (p *KafkaPublisher) PaymentRefunded(ctx context.Context, tx *payments.Transaction, refundID string) {
	p.publish(ctx, p.refunded, eventFromTransaction(tx, refundID))
}

func (p *KafkaPublisher) Close() error {
	if err := p.settled.Close(); err != nil {
		return err
	}
	return p.refunded.Close()
}

func (p *KafkaPublisher) publish(ctx context.Context, w *kafka.Writer, event SettlementEvent) {
	value, err := json.Marshal(event)
	if err != nil {
		telemetry.Logger.Error("Failed to marshal settlement event", zap.Error(err))
		return
	}

	err = w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.TransactionID),
		Value: value,
	})
	if err != nil {
		telemetry.Logger.Error("Failed to publish settlement event",
			zap.String("topic", w.Topic),
			zap.String("transaction_id", event.TransactionID),
			zap.Error(err),
		)
	}
}

func eventFromTransaction(tx *payments.Transaction, refundID string) SettlementEvent {
	event := SettlementEvent{
		TransactionID: tx.ID.String(),
		UserID:        tx.UserID.String(),
		CourseID:      tx.CourseID.String(),
		OrderID:       tx.OrderID,
		AmountPaise:   tx.AmountPaise,
		Currency:      tx.Currency,
		Status:        tx.Status,
		RefundID:      refundID,
		OccurredAt:    time.Now().UTC(),
	}
	if tx.PaymentID != nil {
		event.PaymentID = *tx.PaymentID
	}
	return event
}
