package usecases

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"solarfarm-server/entities"
	"solarfarm-server/repositories"
)

var (
	ErrMissingCapture = errors.New("capture_id is required")
	ErrMissingReport  = errors.New("report block is required")
)

// Broadcaster fans ingested scan results out to connected dashboards.
// Delivery is best-effort and never affects the acknowledgement.
type Broadcaster interface {
	PushResult(result interface{})
	Notify(eventType string, data interface{})
}

// ImageSaver persists one decoded image and returns its reference path.
type ImageSaver interface {
	Save(scanID, name, b64 string) (string, error)
}

// VisionReport is the AI-derived health block of a capture.
type VisionReport struct {
	HealthScore      float64 `json:"health_score"`
	Priority         string  `json:"priority"`
	Recommendation   string  `json:"recommendation"`
	Timeframe        string  `json:"timeframe"`
	Summary          string  `json:"summary"`
	RootCause        string  `json:"root_cause"`
	ImpactAssessment string  `json:"impact_assessment"`
}

// ThermalStats is the normalized thermal block of a capture.
type ThermalStats struct {
	MinTemp   float64  `json:"min_temp"`
	MaxTemp   float64  `json:"max_temp"`
	MeanTemp  float64  `json:"mean_temp"`
	Delta     float64  `json:"delta"`
	RiskScore *float64 `json:"risk_score,omitempty"`
	Severity  string   `json:"severity,omitempty"`
}

// PanelCrop is one detected panel in the capture frame.
type PanelCrop struct {
	PanelNumber     int     `json:"panel_number"`
	Status          string  `json:"status"`
	HasDust         bool    `json:"has_dust"`
	FaultType       *string `json:"fault_type,omitempty"`
	ImageB64        string  `json:"image_b64,omitempty"`
	ThermalImageB64 string  `json:"thermal_image_b64,omitempty"`
	X1              float64 `json:"x1"`
	Y1              float64 `json:"y1"`
	X2              float64 `json:"x2"`
	Y2              float64 `json:"y2"`
}

// VisionPayload is one inbound vision-pipeline event. ThermalLegacy carries
// the old "thermal_stats" key some Pi builds still send; Normalize resolves
// the two shapes once so nothing downstream branches on which key was present.
type VisionPayload struct {
	CaptureID     string        `json:"capture_id"`
	Timestamp     *float64      `json:"timestamp,omitempty"` // unix seconds
	Report        *VisionReport `json:"report"`
	RGBStats      RGBStats      `json:"rgb_stats"`
	FrameB64      string        `json:"frame_b64,omitempty"`
	ThermalB64    string        `json:"thermal_b64,omitempty"`
	Thermal       *ThermalStats `json:"thermal,omitempty"`
	ThermalLegacy *ThermalStats `json:"thermal_stats,omitempty"`
	PanelCrops    []PanelCrop   `json:"panel_crops"`
	DeviceID      string        `json:"device_id,omitempty"`
	DeviceName    string        `json:"device_name,omitempty"`
}

// RGBStats are the per-frame panel counts from the RGB detector.
type RGBStats struct {
	Total int `json:"total"`
	Clean int `json:"clean"`
	Dusty int `json:"dusty"`
}

// Normalize returns the thermal block, preferring the new shape.
func (p *VisionPayload) Normalize() *ThermalStats {
	if p.Thermal != nil {
		return p.Thermal
	}
	return p.ThermalLegacy
}

// ScanResult is the resolved event broadcast to dashboards: image references
// instead of embedded base64, plus a generated result id.
type ScanResult struct {
	ResultID   string        `json:"result_id"`
	ReceivedAt time.Time     `json:"received_at"`
	Scan       entities.Scan `json:"scan"`
}

// ScanUseCase is the vision intake path.
type ScanUseCase struct {
	scans  repositories.ScanRepository
	images ImageSaver
	hub    Broadcaster
}

func NewScanUseCase(scans repositories.ScanRepository, images ImageSaver, hub Broadcaster) *ScanUseCase {
	return &ScanUseCase{scans: scans, images: images, hub: hub}
}

// SeverityFromHealth maps a 0-100 health score to a severity band.
func SeverityFromHealth(score float64) string {
	switch {
	case score < 30:
		return "CRITICAL"
	case score < 50:
		return "HIGH"
	case score < 75:
		return "MODERATE"
	default:
		return "LOW"
	}
}

// Ingest validates and persists one vision event, then broadcasts the
// resolved result. The returned scan id goes into the ack. Redelivery of a
// capture_id creates a new scan row; dedup belongs to the archival workflow.
func (uc *ScanUseCase) Ingest(payload *VisionPayload, receivedAt time.Time) (*ScanResult, error) {
	if payload.CaptureID == "" {
		return nil, ErrMissingCapture
	}
	if payload.Report == nil {
		return nil, ErrMissingReport
	}

	capturedAt := receivedAt
	if payload.Timestamp != nil {
		capturedAt = time.Unix(int64(*payload.Timestamp), 0).UTC()
	}

	thermal := payload.Normalize()
	severity := SeverityFromHealth(payload.Report.HealthScore)
	if thermal != nil && thermal.Severity != "" {
		severity = thermal.Severity
	}
	risk := clamp(100.0-payload.Report.HealthScore, 0, 100)
	if thermal != nil && thermal.RiskScore != nil {
		risk = *thermal.RiskScore
	}

	scan := &entities.Scan{
		ID:               uuid.New().String(),
		CaptureID:        payload.CaptureID,
		DeviceID:         payload.DeviceID,
		DeviceName:       payload.DeviceName,
		CapturedAt:       capturedAt,
		HealthScore:      payload.Report.HealthScore,
		Severity:         severity,
		RiskScore:        risk,
		Priority:         payload.Report.Priority,
		Summary:          payload.Report.Summary,
		RootCause:        payload.Report.RootCause,
		Recommendation:   payload.Report.Recommendation,
		Timeframe:        payload.Report.Timeframe,
		ImpactAssessment: payload.Report.ImpactAssessment,
		TotalPanels:      payload.RGBStats.Total,
		CleanPanels:      payload.RGBStats.Clean,
		DustyPanels:      payload.RGBStats.Dusty,
	}
	if thermal != nil {
		scan.MinTemp = &thermal.MinTemp
		scan.MaxTemp = &thermal.MaxTemp
		scan.MeanTemp = &thermal.MeanTemp
		scan.TempDelta = &thermal.Delta
	}

	scan.FramePath = uc.saveImage(scan.ID, "frame", payload.FrameB64)
	scan.ThermalPath = uc.saveImage(scan.ID, "thermal", payload.ThermalB64)

	for _, crop := range payload.PanelCrops {
		det := entities.PanelDetection{
			PanelNumber: crop.PanelNumber,
			Status:      detectionStatus(crop.Status),
			HasDust:     crop.HasDust,
			FaultType:   crop.FaultType,
			X1:          crop.X1,
			Y1:          crop.Y1,
			X2:          crop.X2,
			Y2:          crop.Y2,
		}
		det.CropPath = uc.saveImage(scan.ID, fmt.Sprintf("panel_%d", crop.PanelNumber), crop.ImageB64)
		det.ThermalCropPath = uc.saveImage(scan.ID, fmt.Sprintf("panel_%d_thermal", crop.PanelNumber), crop.ThermalImageB64)
		scan.Detections = append(scan.Detections, det)
	}

	if err := uc.scans.Create(scan); err != nil {
		return nil, err
	}

	result := &ScanResult{
		ResultID:   uuid.New().String(),
		ReceivedAt: receivedAt,
		Scan:       *scan,
	}
	uc.hub.PushResult(result)
	uc.hub.Notify("scan_created", map[string]interface{}{
		"scan_id":    scan.ID,
		"capture_id": scan.CaptureID,
		"severity":   scan.Severity,
	})
	return result, nil
}

// GetRecent and GetByID are the read interfaces the dashboard layer consumes.
func (uc *ScanUseCase) GetRecent(limit int) ([]entities.Scan, error) {
	return uc.scans.GetRecent(limit)
}

func (uc *ScanUseCase) GetByID(id string) (*entities.Scan, error) {
	return uc.scans.GetByID(id)
}

// UpdateStatus moves a scan through pending → processed → archived.
func (uc *ScanUseCase) UpdateStatus(id, newStatus string) error {
	switch newStatus {
	case "pending", "processed", "archived":
	default:
		return fmt.Errorf("invalid scan status %q", newStatus)
	}
	return uc.scans.UpdateStatus(id, newStatus)
}

// saveImage persists one image; a failure nulls the reference instead of
// aborting the ingestion.
func (uc *ScanUseCase) saveImage(scanID, name, b64 string) *string {
	if b64 == "" {
		return nil
	}
	path, err := uc.images.Save(scanID, name, b64)
	if err != nil {
		log.WithFields(log.Fields{"scan": scanID, "image": name}).Warnf("image not saved: %v", err)
		return nil
	}
	return &path
}

func detectionStatus(s string) string {
	switch s {
	case "clean", "dusty", "faulty":
		return s
	default:
		return "unknown"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
