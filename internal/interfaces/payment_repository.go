package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/courses"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/payments"
)

// PaymentRepository defines the contract for transaction and enrollment data
// access used by the settlement flow.
type PaymentRepository interface {
	// GetCourse returns the authoritative course record, or
	// payments.ErrCourseNotFound.
	GetCourse(ctx context.Context, courseID uuid.UUID) (*courses.Course, error)

	// HasCompletedTransaction reports whether (user, course) already has a
	// completed purchase.
	HasCompletedTransaction(ctx context.Context, userID, courseID uuid.UUID) (bool, error)

	// FindByPaymentID returns the transaction recorded for a gateway payment
	// id, or payments.ErrTransactionNotFound.
	FindByPaymentID(ctx context.Context, paymentID string) (*payments.Transaction, error)

	// RecordSettlement atomically inserts the completed transaction and
	// creates (or reuses) the enrollment. A duplicate gateway payment id or a
	// second completed purchase for the pair surfaces as
	// payments.ErrAlreadyProcessed.
	RecordSettlement(ctx context.Context, tx *payments.Transaction, enrollment *courses.Enrollment) error

	// MarkRefunded transitions the transaction for paymentID to refunded.
	MarkRefunded(ctx context.Context, paymentID, reason string, at time.Time) error

	// HistoryByUser lists the user's transactions joined with course names,
	// newest first.
	HistoryByUser(ctx context.Context, userID uuid.UUID) ([]payments.HistoryEntry, error)

	// EnrollmentsByUser lists the user's enrollments, newest first.
	EnrollmentsByUser(ctx context.Context, userID uuid.UUID) ([]courses.Enrollment, error)
}
