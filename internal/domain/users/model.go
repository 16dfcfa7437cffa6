package users

import "github.com/google/uuid"

// User is a read model; account lifecycle (signup, login, OTP) is owned by the
// auth service. The settlement subsystem only needs identity for payment
// history and admin views.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"not null;uniqueIndex:idx_users_email" json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	IsEducator bool      `gorm:"not null;default:false" json:"is_educator"`
	Verified   bool      `gorm:"not null;default:false" json:"verified"`
}
