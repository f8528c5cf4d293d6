package repositories

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"solarfarm-server/db"
	"solarfarm-server/entities"
)

type devicePgRepository struct {
	db db.Database
}

func NewDevicePgRepository(database db.Database) DeviceRepository {
	return &devicePgRepository{db: database}
}

// RecordReading runs the device upsert and the reading insert in one
// transaction so two near-simultaneous pushes for the same device cannot
// interleave between the read and the write.
func (r *devicePgRepository) RecordReading(deviceID, label string, voltage, currentMa, powerMw float64, recordedAt time.Time) (*entities.Reading, error) {
	reading := &entities.Reading{
		DeviceID:   deviceID,
		Voltage:    voltage,
		CurrentMa:  currentMa,
		PowerMw:    powerMw,
		RecordedAt: recordedAt,
	}

	err := r.db.GetDB().Transaction(func(tx *gorm.DB) error {
		seen := recordedAt
		device := entities.Device{
			ID:         deviceID,
			Label:      label,
			LastSeenAt: &seen,
			Voltage:    &voltage,
			CurrentMa:  &currentMa,
			PowerMw:    &powerMw,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"label":        label,
				"last_seen_at": seen,
				"voltage":      voltage,
				"current_ma":   currentMa,
				"power_mw":     powerMw,
				"updated_at":   time.Now().UTC().Format(time.RFC3339),
			}),
		}).Create(&device).Error; err != nil {
			return err
		}
		return tx.Create(reading).Error
	})
	if err != nil {
		return nil, err
	}
	return reading, nil
}

func (r *devicePgRepository) GetAll() ([]entities.Device, error) {
	var devices []entities.Device
	err := r.db.GetDB().Order("id ASC").Find(&devices).Error
	return devices, err
}

func (r *devicePgRepository) GetByIDs(ids []string) ([]entities.Device, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var devices []entities.Device
	err := r.db.GetDB().Where("id IN ?", ids).Find(&devices).Error
	return devices, err
}
