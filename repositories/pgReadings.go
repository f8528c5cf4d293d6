package repositories

import (
	"time"

	"solarfarm-server/db"
	"solarfarm-server/entities"
)

type readingPgRepository struct {
	db db.Database
}

func NewReadingPgRepository(database db.Database) ReadingRepository {
	return &readingPgRepository{db: database}
}

func (r *readingPgRepository) GetSince(since time.Time, deviceIDs []string) ([]entities.Reading, error) {
	var readings []entities.Reading
	q := r.db.GetDB().Where("recorded_at >= ?", since)
	if len(deviceIDs) > 0 {
		q = q.Where("device_id IN ?", deviceIDs)
	}
	err := q.Order("recorded_at ASC").Find(&readings).Error
	return readings, err
}
