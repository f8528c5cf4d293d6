package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scan is one vision-pipeline capture with its derived health report.
// Thermal fields are nullable because not every capture source carries a
// thermal camera. Detections are created atomically with the scan.
type Scan struct {
	ID               string    `gorm:"primaryKey" json:"id"`
	CaptureID        string    `gorm:"index" json:"capture_id"`
	DeviceID         string    `json:"device_id"`
	DeviceName       string    `json:"device_name"`
	CapturedAt       time.Time `json:"captured_at"`
	HealthScore      float64   `json:"health_score"`
	Severity         string    `json:"severity"`
	RiskScore        float64   `json:"risk_score"`
	Priority         string    `json:"priority"`
	Summary          string    `gorm:"type:text" json:"summary"`
	RootCause        string    `gorm:"type:text" json:"root_cause"`
	Recommendation   string    `gorm:"type:text" json:"recommendation"`
	Timeframe        string    `json:"timeframe"`
	ImpactAssessment string    `gorm:"type:text" json:"impact_assessment"`
	TotalPanels      int       `json:"total_panels"`
	CleanPanels      int       `json:"clean_panels"`
	DustyPanels      int       `json:"dusty_panels"`
	MinTemp          *float64  `json:"min_temp,omitempty"`
	MaxTemp          *float64  `json:"max_temp,omitempty"`
	MeanTemp         *float64  `json:"mean_temp,omitempty"`
	TempDelta        *float64  `json:"temp_delta,omitempty"`
	FramePath        *string   `json:"frame_path,omitempty"`
	ThermalPath      *string   `json:"thermal_path,omitempty"`
	Status           string    `json:"status"` // pending, processed, archived

	Detections []PanelDetection `gorm:"foreignKey:ScanID" json:"detections"`

	CreatedAt string         `json:"created_at"`
	UpdatedAt string         `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Scan) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Status == "" {
		s.Status = "pending"
	}
	now := time.Now().UTC().Format(time.RFC3339)
	s.CreatedAt = now
	s.UpdatedAt = now
	return
}

// PanelDetection is one detected panel inside a scan frame. Owned by its scan;
// never modified after creation.
type PanelDetection struct {
	ID              string   `gorm:"primaryKey" json:"id"`
	ScanID          string   `gorm:"index" json:"scan_id"`
	PanelNumber     int      `json:"panel_number"`
	Status          string   `json:"status"` // clean, dusty, faulty, unknown
	HasDust         bool     `json:"has_dust"`
	FaultType       *string  `json:"fault_type,omitempty"`
	X1              float64  `json:"x1"`
	Y1              float64  `json:"y1"`
	X2              float64  `json:"x2"`
	Y2              float64  `json:"y2"`
	CropPath        *string  `json:"crop_path,omitempty"`
	ThermalCropPath *string  `json:"thermal_crop_path,omitempty"`
	CreatedAt       string   `json:"created_at"`
}

func (d *PanelDetection) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	d.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	return
}
