package entities

import (
	"time"

	"gorm.io/gorm"
)

// Device is one field controller (ESP32 string sensor or the Pi vision unit).
// The ID is the stable identifier the firmware reports, e.g. "ESP_01".
type Device struct {
	ID         string         `gorm:"primaryKey" json:"id"`
	Label      string         `json:"label"`
	LastSeenAt *time.Time     `gorm:"index" json:"last_seen_at,omitempty"`
	Voltage    *float64       `json:"voltage,omitempty"`
	CurrentMa  *float64       `json:"current_ma,omitempty"`
	PowerMw    *float64       `json:"power_mw,omitempty"`
	CreatedAt  string         `json:"created_at"`
	UpdatedAt  string         `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (d *Device) BeforeCreate(tx *gorm.DB) (err error) {
	now := time.Now().UTC().Format(time.RFC3339)
	if d.CreatedAt == "" {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	return
}
