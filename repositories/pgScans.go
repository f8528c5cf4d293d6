package repositories

import (
	"fmt"
	"time"

	"solarfarm-server/db"
	"solarfarm-server/entities"
)

type scanPgRepository struct {
	db db.Database
}

func NewScanPgRepository(database db.Database) ScanRepository {
	return &scanPgRepository{db: database}
}

// Create inserts the scan and its detections. gorm wraps the association
// insert in one transaction, so the scan and its children land together or
// not at all.
func (r *scanPgRepository) Create(scan *entities.Scan) error {
	return r.db.GetDB().Create(scan).Error
}

func (r *scanPgRepository) GetByID(id string) (*entities.Scan, error) {
	var scan entities.Scan
	err := r.db.GetDB().Preload("Detections").Where("id = ?", id).First(&scan).Error
	if err != nil {
		return nil, err
	}
	return &scan, nil
}

func (r *scanPgRepository) GetRecent(limit int) ([]entities.Scan, error) {
	if limit <= 0 {
		limit = 20
	}
	var scans []entities.Scan
	err := r.db.GetDB().Preload("Detections").Order("captured_at DESC").Limit(limit).Find(&scans).Error
	return scans, err
}

func (r *scanPgRepository) UpdateStatus(id, status string) error {
	res := r.db.GetDB().Model(&entities.Scan{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_at": time.Now().UTC().Format(time.RFC3339),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("scan %s not found", id)
	}
	return nil
}
