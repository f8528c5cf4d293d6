package history

import (
	"sort"
	"time"

	"solarfarm-server/entities"
)

// Point is one bucket of the downsampled generation series.
type Point struct {
	Timestamp    time.Time `json:"timestamp"`
	TotalPowerMw float64   `json:"total_power_mw"`
	DeviceCount  int       `json:"device_count"`
}

// BuildSeries groups readings into fixed-width buckets and returns one point
// per non-empty bucket, ascending by time. Within a bucket each device
// contributes only its latest reading (by recorded_at); the point sums those
// per-device powers. Empty buckets are omitted, so the series is sparse.
//
// The transform is pure: the same snapshot of readings always yields the same
// series.
func BuildSeries(readings []entities.Reading, width time.Duration) []Point {
	if width <= 0 || len(readings) == 0 {
		return nil
	}

	type cell struct {
		recordedAt time.Time
		powerMw    float64
	}
	// bucket start unix -> device id -> latest reading in bucket
	buckets := make(map[int64]map[string]cell)

	w := int64(width / time.Second)
	if w < 1 {
		w = 1
	}
	for _, r := range readings {
		key := (r.RecordedAt.Unix() / w) * w
		devs, ok := buckets[key]
		if !ok {
			devs = make(map[string]cell)
			buckets[key] = devs
		}
		prev, seen := devs[r.DeviceID]
		if !seen || r.RecordedAt.After(prev.recordedAt) {
			devs[r.DeviceID] = cell{recordedAt: r.RecordedAt, powerMw: r.PowerMw}
		}
	}

	points := make([]Point, 0, len(buckets))
	for key, devs := range buckets {
		var total float64
		for _, c := range devs {
			total += c.powerMw
		}
		points = append(points, Point{
			Timestamp:    time.Unix(key, 0).UTC(),
			TotalPowerMw: total,
			DeviceCount:  len(devs),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp.Before(points[j].Timestamp) })
	return points
}
