package payments

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusRefunded  = "refunded"
	StatusFailed    = "failed"
)

// Transaction is one monetary event tied to a course purchase. Rows are never
// deleted; refunds flip the status and keep the original amount.
type Transaction struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`

	// Amount in the currency's minor unit (paise for INR).
	AmountPaise int64  `gorm:"column:amount_paise;not null" json:"amount"`
	Currency    string `gorm:"type:varchar(10);not null;default:'INR'" json:"currency"`

	Status string `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	// Gateway identifiers. PaymentID is nullable so pending rows can exist
	// before the gateway assigns one; once set it is unique, which is what
	// makes callback replay a no-op instead of a duplicate record.
	PaymentID *string `gorm:"type:varchar(100);uniqueIndex:idx_transactions_payment_id" json:"payment_id,omitempty"`
	OrderID   string  `gorm:"type:varchar(100);index" json:"order_id"`

	Date         time.Time  `gorm:"not null" json:"date"`
	RefundReason *string    `json:"refund_reason,omitempty"`
	RefundDate   *time.Time `json:"refund_date,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}
