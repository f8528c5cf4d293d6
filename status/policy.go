package status

import "time"

// Status is the derived health classification of a panel or device.
type Status string

const (
	Healthy Status = "healthy"
	Warning Status = "warning"
	Fault   Status = "fault"
	Offline Status = "offline"
)

// Thresholds holds the classification cut-offs. Voltages are per panel, after
// dividing the device's total string voltage by its panel count.
type Thresholds struct {
	FaultVolts   float64       // below this per-panel voltage: fault
	HealthyVolts float64       // below this (but >= fault): warning
	OnlineWindow time.Duration // max staleness before a device is offline
}

// DefaultThresholds matches the field calibration of the ESP string sensors.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FaultVolts:   4.5,
		HealthyVolts: 6.0,
		OnlineWindow: 30 * time.Second,
	}
}

// Online reports whether a device with the given last-seen time counts as
// online at `now`. A device that has never reported is offline.
func (t Thresholds) Online(lastSeen *time.Time, now time.Time) bool {
	if lastSeen == nil {
		return false
	}
	return now.Sub(*lastSeen) <= t.OnlineWindow
}

// Classify maps a device's liveness and electrical state to a panel status.
// Offline overrides everything else. panelCount below 1 is treated as 1.
func (t Thresholds) Classify(online bool, totalVoltage, powerMw float64, panelCount int) Status {
	if !online {
		return Offline
	}
	if panelCount < 1 {
		panelCount = 1
	}
	perPanel := totalVoltage / float64(panelCount)
	if perPanel < t.FaultVolts {
		return Fault
	}
	if perPanel < t.HealthyVolts || powerMw <= 0 {
		return Warning
	}
	return Healthy
}

// PerPanelVoltage is the share of the string voltage one panel accounts for.
func PerPanelVoltage(totalVoltage float64, panelCount int) float64 {
	if panelCount < 1 {
		panelCount = 1
	}
	return totalVoltage / float64(panelCount)
}
