package courses

import (
	"time"

	"github.com/google/uuid"
)

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentDropped   = "dropped"
)

// Enrollment grants a user access to a course. Created by payment settlement,
// one row per (user, course).
type Enrollment struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course" json:"course_id"`

	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`
	Status     string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`

	CompletionCertificate *string    `json:"completion_certificate,omitempty"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	LastAccessed          *time.Time `json:"last_accessed,omitempty"`
}
