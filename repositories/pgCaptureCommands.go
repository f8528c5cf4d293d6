package repositories

import (
	"encoding/json"
	"time"

	"solarfarm-server/db"
	"solarfarm-server/entities"
)

type captureCommandPgRepository struct {
	db db.Database
}

func NewCaptureCommandPgRepository(database db.Database) CaptureCommandRepository {
	return &captureCommandPgRepository{db: database}
}

func (r *captureCommandPgRepository) Enqueue(cmd *entities.CaptureCommand) error {
	return r.db.GetDB().Create(cmd).Error
}

func (r *captureCommandPgRepository) GetPendingByDeviceID(deviceID string, limit int) ([]entities.CaptureCommand, error) {
	if limit <= 0 {
		limit = 10
	}
	var cmds []entities.CaptureCommand
	err := r.db.GetDB().Where("device_id = ? AND status = ?", deviceID, "pending").
		Order("created_at ASC").Limit(limit).Find(&cmds).Error
	return cmds, err
}

func (r *captureCommandPgRepository) MarkSent(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339)
	return r.db.GetDB().Model(&entities.CaptureCommand{}).Where("id IN ?", ids).Updates(map[string]interface{}{
		"status":     "sent",
		"updated_at": now,
	}).Error
}

func (r *captureCommandPgRepository) UpdateStatus(id, status, response string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	if response != "" {
		// ensure json string
		if !json.Valid([]byte(response)) {
			b, _ := json.Marshal(map[string]string{"message": response})
			response = string(b)
		}
		updates["response"] = response
	}
	return r.db.GetDB().Model(&entities.CaptureCommand{}).Where("id = ?", id).Updates(updates).Error
}
