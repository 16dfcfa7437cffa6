package payments

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one row of a user's payment history, joined with the course
// name for display.
type HistoryEntry struct {
	ID          uuid.UUID `json:"id"`
	AmountPaise int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	Date        time.Time `json:"date"`
	CourseName  string    `json:"course_name"`
}
