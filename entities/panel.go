package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Panel is one physical unit. Several panels can share one device (wired in
// series behind a single sensor). Status and output are derived from the
// owning device's readings at ingestion time, never set directly.
type Panel struct {
	ID             string         `gorm:"primaryKey" json:"id"`
	PanelID        string         `gorm:"uniqueIndex" json:"panel_id"`
	DeviceID       string         `gorm:"index" json:"device_id"`
	Row            int            `json:"row"`
	Col            int            `json:"col"`
	Zone           string         `json:"zone"`
	MaxOutputW     float64        `json:"max_output_w"`
	CurrentOutputW float64        `json:"current_output_w"`
	Efficiency     float64        `json:"efficiency"`
	Status         string         `json:"status"`
	LastCheckedAt  *time.Time     `json:"last_checked_at,omitempty"`
	CreatedAt      string         `json:"created_at"`
	UpdatedAt      string         `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (p *Panel) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC().Format(time.RFC3339)
	p.CreatedAt = now
	p.UpdatedAt = now
	return
}
