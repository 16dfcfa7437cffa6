package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/courses"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/payments"
)

// PaymentRepository is the gorm/Postgres implementation of
// interfaces.PaymentRepository. It relies on the DB being opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) GetCourse(ctx context.Context, courseID uuid.UUID) (*courses.Course, error) {
	var course courses.Course
	err := r.db.WithContext(ctx).First(&course, "id = ?", courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payments.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *PaymentRepository) HasCompletedTransaction(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&payments.Transaction{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, payments.StatusCompleted).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PaymentRepository) FindByPaymentID(ctx context.Context, paymentID string) (*payments.Transaction, error) {
	var tx payments.Transaction
	err := r.db.WithContext(ctx).First(&tx, "payment_id = ?", paymentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, payments.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// RecordSettlement inserts the completed transaction and ensures an active
// enrollment in one database transaction. The unique index on payment_id and
// the partial unique index on (user_id, course_id, completed) close the race
// between two concurrent callbacks: the loser's insert fails with a duplicate
// key, reported as ErrAlreadyProcessed.
func (r *PaymentRepository) RecordSettlement(ctx context.Context, tx *payments.Transaction, enrollment *courses.Enrollment) error {
	return r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Create(tx).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return payments.ErrAlreadyProcessed
			}
			return err
		}

		var existing courses.Enrollment
		err := db.Where("user_id = ? AND course_id = ?", enrollment.UserID, enrollment.CourseID).
			First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return db.Create(enrollment).Error
		case err != nil:
			return err
		}

		// Reuse the existing row; a dropped enrollment becomes active again
		// after a fresh purchase.
		if existing.Status != courses.EnrollmentActive {
			return db.Model(&existing).Update("status", courses.EnrollmentActive).Error
		}
		return nil
	})
}

func (r *PaymentRepository) MarkRefunded(ctx context.Context, paymentID, reason string, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&payments.Transaction{}).
		Where("payment_id = ?", paymentID).
		Updates(map[string]interface{}{
			"status":        payments.StatusRefunded,
			"refund_reason": reason,
			"refund_date":   at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return payments.ErrTransactionNotFound
	}
	return nil
}

func (r *PaymentRepository) HistoryByUser(ctx context.Context, userID uuid.UUID) ([]payments.HistoryEntry, error) {
	var entries []payments.HistoryEntry
	err := r.db.WithContext(ctx).
		Table("transactions").
		Select("transactions.id, transactions.amount_paise, transactions.currency, transactions.status, transactions.date, courses.name AS course_name").
		Joins("INNER JOIN courses ON courses.id = transactions.course_id").
		Where("transactions.user_id = ?", userID).
		Order("transactions.date DESC").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *PaymentRepository) EnrollmentsByUser(ctx context.Context, userID uuid.UUID) ([]courses.Enrollment, error) {
	var enrollments []courses.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	if err != nil {
		return nil, err
	}
	return enrollments, nil
}
