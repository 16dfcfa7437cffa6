package database

import (
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/courses"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/payments"
	"github.com/itsNitinkumar/Skillarious-Backend/internal/domain/users"
)

var DB *gorm.DB

func InitDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		log.Fatal("DB_URL not set")
	}

	// TranslateError turns Postgres unique violations into
	// gorm.ErrDuplicatedKey, which the settlement repository depends on for
	// idempotent callback handling.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	DB = db

	// Required for gen_random_uuid() defaults.
	if err := DB.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Fatal("Failed to enable pgcrypto extension:", err)
	}

	if err := DB.AutoMigrate(
		&users.User{},
		&courses.Course{},
		&courses.Enrollment{},
		&payments.Transaction{},
	); err != nil {
		log.Fatal("AutoMigrate error:", err)
	}

	// At most one completed transaction per (user, course). Partial indexes
	// cannot be expressed through gorm tags.
	if err := DB.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_user_course_completed
		ON transactions (user_id, course_id)
		WHERE status = 'completed';
	`).Error; err != nil {
		log.Fatal("Failed to create settlement uniqueness index:", err)
	}

	log.Println("Connected and migrated successfully")
}
