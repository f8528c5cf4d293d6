package fleet

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// PanelSpec describes one physical panel and its placement.
type PanelSpec struct {
	PanelID    string  `json:"panel_id"`
	Row        int     `json:"row"`
	Col        int     `json:"col"`
	Zone       string  `json:"zone"`
	MaxOutputW float64 `json:"max_output_w"`
}

// DeviceSpec maps one device to the panels wired in series behind it.
type DeviceSpec struct {
	DeviceID string      `json:"device_id"`
	Label    string      `json:"label"`
	Panels   []PanelSpec `json:"panels"`
}

// Mapping is the static device→panel configuration, loaded once at startup.
type Mapping struct {
	devices map[string]DeviceSpec
	order   []string
}

// Load reads a mapping file. An empty path returns the built-in default fleet.
func Load(path string) (*Mapping, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fleet mapping: %w", err)
	}
	var specs []DeviceSpec
	if err := json.Unmarshal(raw, &specs); err != nil {
		return nil, fmt.Errorf("parse fleet mapping: %w", err)
	}
	return New(specs)
}

// New builds and validates a mapping from device specs.
func New(specs []DeviceSpec) (*Mapping, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("fleet mapping is empty")
	}
	m := &Mapping{devices: make(map[string]DeviceSpec, len(specs))}
	seenPanels := make(map[string]string)
	for _, spec := range specs {
		if spec.DeviceID == "" {
			return nil, fmt.Errorf("fleet mapping: device with empty id")
		}
		if _, dup := m.devices[spec.DeviceID]; dup {
			return nil, fmt.Errorf("fleet mapping: duplicate device %s", spec.DeviceID)
		}
		for _, p := range spec.Panels {
			if p.PanelID == "" {
				return nil, fmt.Errorf("fleet mapping: device %s has a panel with empty id", spec.DeviceID)
			}
			if owner, dup := seenPanels[p.PanelID]; dup {
				return nil, fmt.Errorf("fleet mapping: panel %s assigned to both %s and %s", p.PanelID, owner, spec.DeviceID)
			}
			seenPanels[p.PanelID] = spec.DeviceID
		}
		m.devices[spec.DeviceID] = spec
		m.order = append(m.order, spec.DeviceID)
	}
	sort.Strings(m.order)
	return m, nil
}

// Has reports whether a device id is part of the configured fleet.
func (m *Mapping) Has(deviceID string) bool {
	_, ok := m.devices[deviceID]
	return ok
}

// Device returns the spec for a device id.
func (m *Mapping) Device(deviceID string) (DeviceSpec, bool) {
	spec, ok := m.devices[deviceID]
	return spec, ok
}

// PanelsFor returns the panels wired behind a device. Nil for unknown devices.
func (m *Mapping) PanelsFor(deviceID string) []PanelSpec {
	return m.devices[deviceID].Panels
}

// PanelCount returns the number of panels behind a device.
func (m *Mapping) PanelCount(deviceID string) int {
	return len(m.devices[deviceID].Panels)
}

// DeviceIDs returns all configured device ids in stable order.
func (m *Mapping) DeviceIDs() []string {
	ids := make([]string, len(m.order))
	copy(ids, m.order)
	return ids
}

// Default returns the built-in demo fleet: three ESP string sensors with four
// series-wired panels each.
func Default() *Mapping {
	specs := make([]DeviceSpec, 0, 3)
	zones := []string{"A", "B", "C"}
	for i, zone := range zones {
		spec := DeviceSpec{
			DeviceID: fmt.Sprintf("ESP_%02d", i+1),
			Label:    fmt.Sprintf("String %s", zone),
		}
		for p := 0; p < 4; p++ {
			spec.Panels = append(spec.Panels, PanelSpec{
				PanelID:    fmt.Sprintf("P-%s-%02d", zone, p+1),
				Row:        i + 1,
				Col:        p + 1,
				Zone:       zone,
				MaxOutputW: 5.0,
			})
		}
		specs = append(specs, spec)
	}
	m, err := New(specs)
	if err != nil {
		panic(err) // static data, cannot fail
	}
	return m
}
