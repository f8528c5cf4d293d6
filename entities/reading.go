package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reading is one electrical sample from a device. Append-only; rows are never
// updated after insert. Out-of-order recorded_at values are stored as-is.
type Reading struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	DeviceID   string    `gorm:"index" json:"device_id"`
	Voltage    float64   `json:"voltage"`
	CurrentMa  float64   `json:"current_ma"`
	PowerMw    float64   `json:"power_mw"`
	RecordedAt time.Time `gorm:"index" json:"recorded_at"`
	CreatedAt  string    `json:"created_at"`
}

func (r *Reading) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	return
}
