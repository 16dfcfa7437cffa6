package courses

import (
	"time"

	"github.com/google/uuid"
)

// Course is a read model for the settlement subsystem: it supplies the
// authoritative name and price. Course CRUD lives in the catalog service.
type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description *string   `json:"description,omitempty"`
	About       *string   `json:"about,omitempty"`
	EducatorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"educator_id"`

	// Price in paise. The client never supplies an amount; order creation
	// always reads this column.
	PricePaise int64 `gorm:"column:price_paise;not null" json:"price"`

	Thumbnail string     `json:"thumbnail"`
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
}
