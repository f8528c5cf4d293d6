package repositories

import (
	"time"

	"gorm.io/gorm/clause"

	"solarfarm-server/db"
	"solarfarm-server/entities"
)

type generationPgRepository struct {
	db db.Database
}

func NewGenerationPgRepository(database db.Database) GenerationRepository {
	return &generationPgRepository{db: database}
}

func (r *generationPgRepository) Upsert(point *entities.GenerationPoint) error {
	if point.CreatedAt == "" {
		point.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return r.db.GetDB().Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "timestamp"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_power_mw": point.TotalPowerMw,
			"device_count":   point.DeviceCount,
		}),
	}).Create(point).Error
}

func (r *generationPgRepository) GetSince(since time.Time) ([]entities.GenerationPoint, error) {
	var points []entities.GenerationPoint
	err := r.db.GetDB().Where("timestamp >= ?", since.Unix()).Order("timestamp ASC").Find(&points).Error
	return points, err
}
