package repositories

import (
	"time"

	"solarfarm-server/entities"
)

type DeviceRepository interface {
	// RecordReading upserts the device's latest snapshot and appends one
	// reading row in a single transaction.
	RecordReading(deviceID, label string, voltage, currentMa, powerMw float64, recordedAt time.Time) (*entities.Reading, error)
	GetAll() ([]entities.Device, error)
	GetByIDs(ids []string) ([]entities.Device, error)
}

type ReadingRepository interface {
	GetSince(since time.Time, deviceIDs []string) ([]entities.Reading, error)
}

type PanelRepository interface {
	// Ensure creates the panel row if no row with its panel_id exists yet.
	Ensure(panel *entities.Panel) error
	UpdateDerived(panelID string, outputW, efficiency float64, status string, checkedAt time.Time) error
	GetAll() ([]entities.Panel, error)
	GetByDeviceID(deviceID string) ([]entities.Panel, error)
	CountByStatus() (map[string]int64, error)
}

type ScanRepository interface {
	// Create persists the scan together with all its detections.
	Create(scan *entities.Scan) error
	GetByID(id string) (*entities.Scan, error)
	GetRecent(limit int) ([]entities.Scan, error)
	UpdateStatus(id, status string) error
}

type GenerationRepository interface {
	// Upsert writes one series point; a point with the same timestamp is
	// overwritten.
	Upsert(point *entities.GenerationPoint) error
	GetSince(since time.Time) ([]entities.GenerationPoint, error)
}

type CaptureCommandRepository interface {
	Enqueue(cmd *entities.CaptureCommand) error
	GetPendingByDeviceID(deviceID string, limit int) ([]entities.CaptureCommand, error)
	MarkSent(ids []string) error
	UpdateStatus(id, status, response string) error
}
