package entities

// GenerationPoint is one coarse point of the farm-wide generation series,
// keyed by the unix timestamp of the reading that produced it. Writes with the
// same timestamp overwrite the previous row.
type GenerationPoint struct {
	Timestamp    int64   `gorm:"primaryKey;autoIncrement:false" json:"timestamp"`
	TotalPowerMw float64 `json:"total_power_mw"`
	DeviceCount  int     `json:"device_count"`
	CreatedAt    string  `json:"created_at"`
}
