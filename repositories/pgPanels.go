package repositories

import (
	"time"

	"gorm.io/gorm/clause"

	"solarfarm-server/db"
	"solarfarm-server/entities"
)

type panelPgRepository struct {
	db db.Database
}

func NewPanelPgRepository(database db.Database) PanelRepository {
	return &panelPgRepository{db: database}
}

func (r *panelPgRepository) Ensure(panel *entities.Panel) error {
	// Seeding path: keep existing rows (and their derived fields) untouched.
	return r.db.GetDB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "panel_id"}},
		DoNothing: true,
	}).Create(panel).Error
}

func (r *panelPgRepository) UpdateDerived(panelID string, outputW, efficiency float64, status string, checkedAt time.Time) error {
	return r.db.GetDB().Model(&entities.Panel{}).Where("panel_id = ?", panelID).Updates(map[string]interface{}{
		"current_output_w": outputW,
		"efficiency":       efficiency,
		"status":           status,
		"last_checked_at":  checkedAt,
		"updated_at":       time.Now().UTC().Format(time.RFC3339),
	}).Error
}

func (r *panelPgRepository) GetAll() ([]entities.Panel, error) {
	var panels []entities.Panel
	err := r.db.GetDB().Order("panel_id ASC").Find(&panels).Error
	return panels, err
}

func (r *panelPgRepository) GetByDeviceID(deviceID string) ([]entities.Panel, error) {
	var panels []entities.Panel
	err := r.db.GetDB().Where("device_id = ?", deviceID).Order("panel_id ASC").Find(&panels).Error
	return panels, err
}

func (r *panelPgRepository) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := r.db.GetDB().Model(&entities.Panel{}).
		Select("status, count(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Status] = rw.N
	}
	return counts, nil
}
