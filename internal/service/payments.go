package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/courses"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/payments"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/infra/razorpay"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/interfaces"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/telemetry"
)

// settlementLockTTL bounds how long a crashed instance can hold a payment's
// settlement lock.
const settlementLockTTL = 30 * time.Second

// OrderDescriptor is what the client needs to open gateway checkout.
type OrderDescriptor struct {
	Order *razorpay.Order
	KeyID string
}

// PaymentService implements the payment settlement flow: order initiation,
// callback verification, idempotent settlement recording and refunds. The
// locker and publisher are optional; the storage unique constraints carry the
// correctness guarantees on their own.
type PaymentService struct {
	repo      interfaces.PaymentRepository
	gateway   interfaces.PaymentGateway
	locker    interfaces.SettlementLocker
	publisher interfaces.EventPublisher
	keySecret string
}

func NewPaymentService(
	repo interfaces.PaymentRepository,
	gateway interfaces.PaymentGateway,
	locker interfaces.SettlementLocker,
	publisher interfaces.EventPublisher,
	keySecret string,
) *PaymentService {
	return &PaymentService{
		repo:      repo,
		gateway:   gateway,
		locker:    locker,
		publisher: publisher,
		keySecret: keySecret,
	}
}

// InitiateOrder opens a gateway order for (user, course). The amount always
// comes from the course record; client-supplied amounts are never consulted.
func (s *PaymentService) InitiateOrder(ctx context.Context, userID, courseID uuid.UUID) (*OrderDescriptor, error) {
	owned, err := s.repo.HasCompletedTransaction(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, payments.ErrAlreadyPurchased
	}

	course, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	// Notes let a callback be correlated and audited even without a local
	// pending record.
	receipt := fmt.Sprintf("receipt_%d", time.Now().UnixMilli())
	order, err := s.gateway.CreateOrder(course.PricePaise, "INR", receipt, map[string]interface{}{
		"courseId":   courseID.String(),
		"userId":     userID.String(),
		"courseName": course.Name,
		"purpose":    "Course Purchase",
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payments.ErrGateway, err)
	}

	telemetry.OrdersCreated.Inc()
	telemetry.Logger.Info("Gateway order created",
		zap.String("order_id", order.ID),
		zap.String("user_id", userID.String()),
		zap.String("course_id", courseID.String()),
		zap.Int64("amount", order.AmountPaise),
	)

	return &OrderDescriptor{Order: order, KeyID: s.gateway.KeyID()}, nil
}

// VerifyCallback checks a gateway callback signature. Pure; the caller decides
// the HTTP consequence.
func (s *PaymentService) VerifyCallback(orderID, paymentID, signature string) bool {
	return razorpay.VerifyPaymentSignature(orderID, paymentID, signature, s.keySecret)
}

// Settle records a verified, captured payment as a completed transaction and
// grants the enrollment. A tampered signature fails before any I/O; a replayed
// callback is rejected, not double-recorded; the callback alone is never
// trusted as proof of payment: capture status and amount are corroborated
// with the gateway's own records.
func (s *PaymentService) Settle(ctx context.Context, userID, courseID uuid.UUID, orderID, paymentID, signature string) (*payments.Transaction, error) {
	if !s.VerifyCallback(orderID, paymentID, signature) {
		telemetry.SignatureRejections.Inc()
		return nil, payments.ErrInvalidSignature
	}

	if s.locker != nil {
		acquired, err := s.locker.Acquire(ctx, paymentID, settlementLockTTL)
		if err != nil {
			// Lock backend unavailable. Proceed: the unique index on
			// payment_id still guarantees at-most-once recording.
			telemetry.Logger.Warn("Settlement lock unavailable, relying on storage constraint",
				zap.String("payment_id", paymentID),
				zap.Error(err),
			)
		} else if !acquired {
			return nil, payments.ErrSettlementInFlight
		} else {
			defer s.locker.Release(ctx, paymentID)
		}
	}

	if _, err := s.repo.FindByPaymentID(ctx, paymentID); err == nil {
		telemetry.SettlementReplays.Inc()
		return nil, payments.ErrAlreadyProcessed
	} else if !errors.Is(err, payments.ErrTransactionNotFound) {
		return nil, err
	}

	payment, err := s.gateway.FetchPayment(paymentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payments.ErrGateway, err)
	}
	if payment.Status != razorpay.PaymentCaptured {
		return nil, payments.ErrPaymentNotCaptured
	}

	// The charged amount comes from the gateway order, not the client.
	order, err := s.gateway.FetchOrder(orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payments.ErrGateway, err)
	}

	currency := order.Currency
	if currency == "" {
		currency = "INR"
	}

	now := time.Now().UTC()
	pid := paymentID
	tx := &payments.Transaction{
		UserID:      userID,
		CourseID:    courseID,
		AmountPaise: order.AmountPaise,
		Currency:    currency,
		Status:      payments.StatusCompleted,
		PaymentID:   &pid,
		OrderID:     orderID,
		Date:        now,
	}
	enrollment := &courses.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: now,
		Status:     courses.EnrollmentActive,
	}

	if err := s.repo.RecordSettlement(ctx, tx, enrollment); err != nil {
		if errors.Is(err, payments.ErrAlreadyProcessed) {
			telemetry.SettlementReplays.Inc()
		}
		return nil, err
	}

	telemetry.SettlementsRecorded.Inc()
	telemetry.Logger.Info("Payment settled",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("payment_id", paymentID),
		zap.String("order_id", orderID),
		zap.Int64("amount", tx.AmountPaise),
	)

	if s.publisher != nil {
		s.publisher.PaymentSettled(ctx, tx)
	}
	return tx, nil
}

// Refund issues a gateway refund for a completed transaction and transitions
// it to refunded. amountPaise == 0 requests a full refund. If the gateway
// refund succeeds but the local update fails, the refund descriptor is
// returned alongside ErrReconciliationRequired so the caller can surface the
// inconsistency instead of swallowing it.
func (s *PaymentService) Refund(ctx context.Context, paymentID string, amountPaise int64, reason, speed, requestedBy string) (*razorpay.Refund, error) {
	tx, err := s.repo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if tx.Status != payments.StatusCompleted {
		return nil, payments.ErrTransactionNotFound
	}

	refund, err := s.gateway.RefundPayment(paymentID, amountPaise, razorpay.NormalizeRefundSpeed(speed), map[string]interface{}{
		"reason":     reason,
		"refundedBy": requestedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payments.ErrGateway, err)
	}

	if err := s.repo.MarkRefunded(ctx, paymentID, reason, time.Now().UTC()); err != nil {
		// Money moved at the gateway but the local row still says completed.
		telemetry.ReconciliationsRequired.Inc()
		telemetry.Logger.Error("Refund recorded at gateway but local update failed",
			zap.String("payment_id", paymentID),
			zap.String("refund_id", refund.ID),
			zap.Error(err),
		)
		return refund, fmt.Errorf("%w: %v", payments.ErrReconciliationRequired, err)
	}

	telemetry.RefundsIssued.Inc()
	telemetry.Logger.Info("Refund issued",
		zap.String("payment_id", paymentID),
		zap.String("refund_id", refund.ID),
		zap.Int64("amount", refund.AmountPaise),
	)

	if s.publisher != nil {
		tx.Status = payments.StatusRefunded
		s.publisher.PaymentRefunded(ctx, tx, refund.ID)
	}
	return refund, nil
}

// History returns the user's transactions joined with course names.
func (s *PaymentService) History(ctx context.Context, userID uuid.UUID) ([]payments.HistoryEntry, error) {
	return s.repo.HistoryByUser(ctx, userID)
}

// Enrollments returns the user's enrollments.
func (s *PaymentService) Enrollments(ctx context.Context, userID uuid.UUID) ([]courses.Enrollment, error) {
	return s.repo.EnrollmentsByUser(ctx, userID)
}
