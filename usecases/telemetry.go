package usecases

import (
	"errors"
	"time"

	"solarfarm-server/entities"
	"solarfarm-server/fleet"
	"solarfarm-server/repositories"
	"solarfarm-server/status"
)

// ErrDeviceNotMapped means the device id has no configured panel mapping.
// Rejected before any write so no orphan device rows appear.
var ErrDeviceNotMapped = errors.New("device not mapped")

// PanelResult is one panel's derived values, echoed back to the submitter.
type PanelResult struct {
	ID             string  `json:"id"`
	PanelID        string  `json:"panelId"`
	CurrentOutputW float64 `json:"currentOutput"`
	Efficiency     float64 `json:"efficiency"`
	Status         string  `json:"status"`
}

// ReadingResult is the full response of one accepted electrical reading.
type ReadingResult struct {
	Device     string `json:"device"`
	PanelCount int    `json:"panelCount"`
	TotalInput struct {
		Voltage   float64 `json:"voltage"`
		CurrentMa float64 `json:"currentMa"`
		PowerMw   float64 `json:"powerMw"`
	} `json:"totalInput"`
	PerPanel struct {
		Voltage   float64 `json:"voltage"`
		CurrentMa float64 `json:"currentMa"`
		PowerW    float64 `json:"powerW"`
	} `json:"perPanel"`
	Panels []PanelResult `json:"panels"`
}

// TelemetryUseCase is the electrical intake path: persist the reading, derive
// each mapped panel's status/output, and refresh the coarse generation series.
type TelemetryUseCase struct {
	devices    repositories.DeviceRepository
	panels     repositories.PanelRepository
	generation repositories.GenerationRepository
	mapping    *fleet.Mapping
	thresholds status.Thresholds
}

func NewTelemetryUseCase(
	devices repositories.DeviceRepository,
	panels repositories.PanelRepository,
	generation repositories.GenerationRepository,
	mapping *fleet.Mapping,
	thresholds status.Thresholds,
) *TelemetryUseCase {
	return &TelemetryUseCase{
		devices:    devices,
		panels:     panels,
		generation: generation,
		mapping:    mapping,
		thresholds: thresholds,
	}
}

// Ingest accepts one reading. The device must be in the fleet mapping; the
// reading is stored as-is even when its timestamp is out of order.
func (uc *TelemetryUseCase) Ingest(deviceID string, voltage, currentMa, powerMw float64, at time.Time) (*ReadingResult, error) {
	spec, ok := uc.mapping.Device(deviceID)
	if !ok {
		return nil, ErrDeviceNotMapped
	}

	if _, err := uc.devices.RecordReading(deviceID, spec.Label, voltage, currentMa, powerMw, at); err != nil {
		return nil, err
	}

	panelCount := len(spec.Panels)
	if panelCount < 1 {
		panelCount = 1
	}
	perPanelV := status.PerPanelVoltage(voltage, panelCount)
	perPanelW := powerMw / float64(panelCount) / 1000.0
	// The device just reported, so it is online by definition here.
	st := uc.thresholds.Classify(true, voltage, powerMw, panelCount)

	result := &ReadingResult{Device: deviceID, PanelCount: panelCount}
	result.TotalInput.Voltage = voltage
	result.TotalInput.CurrentMa = currentMa
	result.TotalInput.PowerMw = powerMw
	result.PerPanel.Voltage = perPanelV
	result.PerPanel.CurrentMa = currentMa // series string: same current through every panel
	result.PerPanel.PowerW = perPanelW

	for _, p := range spec.Panels {
		eff := 0.0
		if p.MaxOutputW > 0 {
			eff = perPanelW / p.MaxOutputW * 100.0
			if eff > 100 {
				eff = 100
			}
		}
		if err := uc.panels.UpdateDerived(p.PanelID, perPanelW, eff, string(st), at); err != nil {
			return nil, err
		}
		result.Panels = append(result.Panels, PanelResult{
			ID:             p.PanelID,
			PanelID:        p.PanelID,
			CurrentOutputW: perPanelW,
			Efficiency:     eff,
			Status:         string(st),
		})
	}

	if err := uc.upsertGenerationPoint(at); err != nil {
		return nil, err
	}
	return result, nil
}

// upsertGenerationPoint records the farm-wide generation at the reading's
// timestamp: the sum of power over devices online at that instant. A repeated
// timestamp overwrites the earlier point.
func (uc *TelemetryUseCase) upsertGenerationPoint(at time.Time) error {
	devices, err := uc.devices.GetAll()
	if err != nil {
		return err
	}
	var total float64
	var online int
	for _, d := range devices {
		if !uc.mapping.Has(d.ID) {
			continue
		}
		if uc.thresholds.Online(d.LastSeenAt, at) && d.PowerMw != nil {
			total += *d.PowerMw
			online++
		}
	}
	return uc.generation.Upsert(&entities.GenerationPoint{
		Timestamp:    at.Unix(),
		TotalPowerMw: total,
		DeviceCount:  online,
	})
}
