package fleet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func specs() []DeviceSpec {
	return []DeviceSpec{
		{
			DeviceID: "ESP_01",
			Label:    "String A",
			Panels: []PanelSpec{
				{PanelID: "P-A-01", Zone: "A", MaxOutputW: 5},
				{PanelID: "P-A-02", Zone: "A", MaxOutputW: 5},
			},
		},
		{
			DeviceID: "ESP_02",
			Label:    "String B",
			Panels:   []PanelSpec{{PanelID: "P-B-01", Zone: "B", MaxOutputW: 5}},
		},
	}
}

func TestNewValidMapping(t *testing.T) {
	m, err := New(specs())
	require.NoError(t, err)

	assert.True(t, m.Has("ESP_01"))
	assert.False(t, m.Has("ESP_99"))
	assert.Equal(t, 2, m.PanelCount("ESP_01"))
	assert.Equal(t, []string{"ESP_01", "ESP_02"}, m.DeviceIDs())

	spec, ok := m.Device("ESP_02")
	require.True(t, ok)
	assert.Equal(t, "String B", spec.Label)
}

func TestNewRejectsDuplicatePanelAssignment(t *testing.T) {
	s := specs()
	s[1].Panels = append(s[1].Panels, PanelSpec{PanelID: "P-A-01", Zone: "B"})
	_, err := New(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "P-A-01")
}

func TestNewRejectsDuplicateDevice(t *testing.T) {
	s := append(specs(), DeviceSpec{DeviceID: "ESP_01"})
	_, err := New(s)
	assert.Error(t, err)
}

func TestNewRejectsEmptyMapping(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.json")
	b, err := json.Marshal(specs())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, len(m.DeviceIDs()))
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	m, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, m.DeviceIDs())
	for _, id := range m.DeviceIDs() {
		assert.Greater(t, m.PanelCount(id), 0)
	}
}
