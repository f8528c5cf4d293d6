package usecases

import (
	"encoding/json"
	"errors"

	"solarfarm-server/entities"
	"solarfarm-server/repositories"
)

// CapturesUseCase queues on-demand capture requests for the vision pipeline.
type CapturesUseCase struct {
	repo repositories.CaptureCommandRepository
}

func NewCapturesUseCase(r repositories.CaptureCommandRepository) *CapturesUseCase {
	return &CapturesUseCase{repo: r}
}

func (uc *CapturesUseCase) Enqueue(deviceID, command string, params map[string]interface{}) (*entities.CaptureCommand, error) {
	if deviceID == "" {
		return nil, errors.New("device_id is required")
	}
	if command == "" {
		command = "capture_scan"
	}
	var paramsStr string
	if params != nil {
		b, _ := json.Marshal(params)
		paramsStr = string(b)
	} else {
		paramsStr = "{}"
	}
	cmd := &entities.CaptureCommand{
		DeviceID: deviceID,
		Command:  command,
		Params:   paramsStr,
		Status:   "pending",
	}
	if err := uc.repo.Enqueue(cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (uc *CapturesUseCase) Poll(deviceID string, limit int) ([]entities.CaptureCommand, error) {
	if deviceID == "" {
		return nil, errors.New("device_id required")
	}
	return uc.repo.GetPendingByDeviceID(deviceID, limit)
}

func (uc *CapturesUseCase) MarkSent(ids []string) error {
	return uc.repo.MarkSent(ids)
}

func (uc *CapturesUseCase) Ack(commandID, status, response string) error {
	if commandID == "" {
		return errors.New("command_id required")
	}
	if status == "" {
		status = "executed"
	}
	return uc.repo.UpdateStatus(commandID, status, response)
}
