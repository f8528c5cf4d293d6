package usecases

import (
	"time"

	"solarfarm-server/fleet"
	"solarfarm-server/history"
	"solarfarm-server/repositories"
	"solarfarm-server/status"
)

// DeviceStatusView is one device's live state in the snapshot.
type DeviceStatusView struct {
	DeviceID     string     `json:"deviceId"`
	Label        string     `json:"label"`
	Online       bool       `json:"online"`
	Status       string     `json:"status"`
	LastSeenAt   *time.Time `json:"lastSeenAt,omitempty"`
	StaleSeconds *float64   `json:"staleSeconds,omitempty"`
	Voltage      float64    `json:"voltage"`
	CurrentMa    float64    `json:"currentMa"`
	PowerMw      float64    `json:"powerMw"`
}

// FleetCounts are panel totals by status, pulled from the panel table.
type FleetCounts struct {
	Total   int64 `json:"total"`
	Healthy int64 `json:"healthy"`
	Warning int64 `json:"warning"`
	Fault   int64 `json:"fault"`
	Offline int64 `json:"offline"`
}

// HistoryPoint is one bucket of the chartable generation series.
type HistoryPoint struct {
	Timestamp    time.Time `json:"timestamp"`
	TotalPowerKw float64   `json:"totalPowerKw"`
	DeviceCount  int       `json:"deviceCount"`
}

// Snapshot is the consolidated live view of the fleet.
type Snapshot struct {
	GeneratedAt  time.Time          `json:"generatedAt"`
	Fleet        FleetCounts        `json:"fleet"`
	GenerationKw float64            `json:"generationKw"`
	Efficiency   float64            `json:"efficiency"`
	Devices      []DeviceStatusView `json:"devices"`
	History      []HistoryPoint     `json:"history"`
}

// StatusUseCase composes the live snapshot. It is strictly read-only: panel
// rows keep whatever the last ingested reading wrote (they are the audit
// trail), while this view recomputes liveness freshly against "now".
type StatusUseCase struct {
	devices    repositories.DeviceRepository
	readings   repositories.ReadingRepository
	panels     repositories.PanelRepository
	mapping    *fleet.Mapping
	thresholds status.Thresholds
	bucket     time.Duration
	lookback   time.Duration
}

func NewStatusUseCase(
	devices repositories.DeviceRepository,
	readings repositories.ReadingRepository,
	panels repositories.PanelRepository,
	mapping *fleet.Mapping,
	thresholds status.Thresholds,
	bucket, lookback time.Duration,
) *StatusUseCase {
	return &StatusUseCase{
		devices:    devices,
		readings:   readings,
		panels:     panels,
		mapping:    mapping,
		thresholds: thresholds,
		bucket:     bucket,
		lookback:   lookback,
	}
}

// Snapshot answers "what is the fleet's current state" at `now`.
func (uc *StatusUseCase) Snapshot(now time.Time) (*Snapshot, error) {
	snap := &Snapshot{GeneratedAt: now}

	counts, err := uc.panels.CountByStatus()
	if err != nil {
		return nil, err
	}
	snap.Fleet = FleetCounts{
		Healthy: counts[string(status.Healthy)],
		Warning: counts[string(status.Warning)],
		Fault:   counts[string(status.Fault)],
		Offline: counts[string(status.Offline)],
	}
	for _, n := range counts {
		snap.Fleet.Total += n
	}

	ids := uc.mapping.DeviceIDs()
	rows, err := uc.devices.GetByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]int, len(rows))
	for i, d := range rows {
		byID[d.ID] = i
	}

	var onlinePowerMw, onlineRatedW float64
	for _, id := range ids {
		spec, _ := uc.mapping.Device(id)
		view := DeviceStatusView{DeviceID: id, Label: spec.Label, Status: string(status.Offline)}

		if i, ok := byID[id]; ok {
			d := rows[i]
			view.Online = uc.thresholds.Online(d.LastSeenAt, now)
			view.LastSeenAt = d.LastSeenAt
			if d.LastSeenAt != nil {
				stale := now.Sub(*d.LastSeenAt).Seconds()
				view.StaleSeconds = &stale
			}
			var voltage, currentMa, powerMw float64
			// Offline devices report zero, never their stale last reading.
			if view.Online {
				if d.Voltage != nil {
					voltage = *d.Voltage
				}
				if d.CurrentMa != nil {
					currentMa = *d.CurrentMa
				}
				if d.PowerMw != nil {
					powerMw = *d.PowerMw
				}
			}
			view.Voltage = voltage
			view.CurrentMa = currentMa
			view.PowerMw = powerMw
			view.Status = string(uc.thresholds.Classify(view.Online, voltage, powerMw, len(spec.Panels)))

			if view.Online {
				onlinePowerMw += powerMw
				for _, p := range spec.Panels {
					onlineRatedW += p.MaxOutputW
				}
			}
		}
		snap.Devices = append(snap.Devices, view)
	}

	snap.GenerationKw = onlinePowerMw / 1e6
	if onlineRatedW > 0 {
		snap.Efficiency = (onlinePowerMw / 1000.0) / onlineRatedW * 100.0
		if snap.Efficiency > 100 {
			snap.Efficiency = 100
		}
	}

	readings, err := uc.readings.GetSince(now.Add(-uc.lookback), ids)
	if err != nil {
		return nil, err
	}
	for _, p := range history.BuildSeries(readings, uc.bucket) {
		snap.History = append(snap.History, HistoryPoint{
			Timestamp:    p.Timestamp,
			TotalPowerKw: p.TotalPowerMw / 1e6,
			DeviceCount:  p.DeviceCount,
		})
	}
	return snap, nil
}
