package usecases

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarfarm-server/entities"
	"solarfarm-server/fleet"
	"solarfarm-server/status"
)

func testMapping(t *testing.T) *fleet.Mapping {
	t.Helper()
	m, err := fleet.New([]fleet.DeviceSpec{
		{
			DeviceID: "ESP_01",
			Label:    "String A",
			Panels: []fleet.PanelSpec{
				{PanelID: "P-A-01", Row: 1, Col: 1, Zone: "A", MaxOutputW: 5},
				{PanelID: "P-A-02", Row: 1, Col: 2, Zone: "A", MaxOutputW: 5},
			},
		},
		{
			DeviceID: "ESP_02",
			Label:    "String B",
			Panels: []fleet.PanelSpec{
				{PanelID: "P-B-01", Row: 2, Col: 1, Zone: "B", MaxOutputW: 5},
			},
		},
	})
	require.NoError(t, err)
	return m
}

func newTelemetryFixture(t *testing.T) (*TelemetryUseCase, *fakeDeviceRepo, *fakePanelRepo, *fakeGenerationRepo) {
	t.Helper()
	devices := newFakeDeviceRepo()
	panels := newFakePanelRepo()
	generation := newFakeGenerationRepo()
	mapping := testMapping(t)

	for _, id := range mapping.DeviceIDs() {
		for _, spec := range mapping.PanelsFor(id) {
			require.NoError(t, panels.Ensure(&entities.Panel{
				PanelID:    spec.PanelID,
				DeviceID:   id,
				MaxOutputW: spec.MaxOutputW,
				Status:     string(status.Offline),
			}))
		}
	}

	uc := NewTelemetryUseCase(devices, panels, generation, mapping, status.DefaultThresholds())
	return uc, devices, panels, generation
}

func TestIngestRejectsUnmappedDevice(t *testing.T) {
	uc, devices, panels, generation := newTelemetryFixture(t)

	_, err := uc.Ingest("ESP_99", 12.0, 400, 5000, time.Now())
	assert.ErrorIs(t, err, ErrDeviceNotMapped)

	// nothing was written anywhere
	assert.Empty(t, devices.devices)
	assert.Empty(t, devices.readings)
	assert.Empty(t, generation.points)
	for _, p := range panels.panels {
		assert.Equal(t, string(status.Offline), p.Status)
		assert.Zero(t, p.CurrentOutputW)
	}
}

func TestIngestPersistsAndDerivesPanelState(t *testing.T) {
	uc, devices, panels, generation := newTelemetryFixture(t)
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// 13 V across 2 panels = 6.5 V per panel, 8000 mW = 4 W per panel
	result, err := uc.Ingest("ESP_01", 13.0, 500, 8000, at)
	require.NoError(t, err)

	assert.Equal(t, "ESP_01", result.Device)
	assert.Equal(t, 2, result.PanelCount)
	assert.InDelta(t, 6.5, result.PerPanel.Voltage, 1e-9)
	assert.InDelta(t, 4.0, result.PerPanel.PowerW, 1e-9)
	require.Len(t, result.Panels, 2)
	for _, p := range result.Panels {
		assert.Equal(t, string(status.Healthy), p.Status)
		assert.InDelta(t, 80.0, p.Efficiency, 1e-9) // 4 W of 5 W rated
	}

	// device snapshot and reading row both written
	d := devices.devices["ESP_01"]
	require.NotNil(t, d)
	assert.Equal(t, at, *d.LastSeenAt)
	assert.InDelta(t, 8000, *d.PowerMw, 1e-9)
	require.Len(t, devices.readings, 1)
	assert.Equal(t, at, devices.readings[0].RecordedAt)

	// panel rows carry the derived values
	assert.Equal(t, string(status.Healthy), panels.panels["P-A-01"].Status)
	assert.InDelta(t, 4.0, panels.panels["P-A-02"].CurrentOutputW, 1e-9)

	// generation point keyed by the reading timestamp
	point := generation.points[at.Unix()]
	require.NotNil(t, point)
	assert.InDelta(t, 8000, point.TotalPowerMw, 1e-9)
	assert.Equal(t, 1, point.DeviceCount)
}

func TestIngestLowVoltageMarksFault(t *testing.T) {
	uc, _, panels, _ := newTelemetryFixture(t)

	// 8 V across 2 panels = 4 V per panel, below the 4.5 V fault threshold
	result, err := uc.Ingest("ESP_01", 8.0, 200, 1600, time.Now())
	require.NoError(t, err)
	for _, p := range result.Panels {
		assert.Equal(t, string(status.Fault), p.Status)
	}
	assert.Equal(t, string(status.Fault), panels.panels["P-A-01"].Status)
}

func TestIngestGenerationPointOverwritesSameTimestamp(t *testing.T) {
	uc, _, _, generation := newTelemetryFixture(t)
	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	_, err := uc.Ingest("ESP_01", 13.0, 500, 8000, at)
	require.NoError(t, err)
	_, err = uc.Ingest("ESP_01", 13.0, 500, 9000, at)
	require.NoError(t, err)

	require.Len(t, generation.points, 1)
	assert.InDelta(t, 9000, generation.points[at.Unix()].TotalPowerMw, 1e-9)
}
