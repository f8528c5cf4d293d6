package usecases

import (
	"errors"
	"fmt"
	"time"

	"solarfarm-server/entities"
)

type fakeDeviceRepo struct {
	devices  map[string]*entities.Device
	readings []entities.Reading
	failWith error
}

func newFakeDeviceRepo() *fakeDeviceRepo {
	return &fakeDeviceRepo{devices: make(map[string]*entities.Device)}
}

func (r *fakeDeviceRepo) RecordReading(deviceID, label string, voltage, currentMa, powerMw float64, recordedAt time.Time) (*entities.Reading, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	seen := recordedAt
	v, cm, p := voltage, currentMa, powerMw
	r.devices[deviceID] = &entities.Device{
		ID:         deviceID,
		Label:      label,
		LastSeenAt: &seen,
		Voltage:    &v,
		CurrentMa:  &cm,
		PowerMw:    &p,
	}
	reading := entities.Reading{
		ID:         fmt.Sprintf("r%d", len(r.readings)+1),
		DeviceID:   deviceID,
		Voltage:    voltage,
		CurrentMa:  currentMa,
		PowerMw:    powerMw,
		RecordedAt: recordedAt,
	}
	r.readings = append(r.readings, reading)
	return &reading, nil
}

func (r *fakeDeviceRepo) GetAll() ([]entities.Device, error) {
	out := make([]entities.Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeDeviceRepo) GetByIDs(ids []string) ([]entities.Device, error) {
	var out []entities.Device
	for _, id := range ids {
		if d, ok := r.devices[id]; ok {
			out = append(out, *d)
		}
	}
	return out, nil
}

type fakeReadingRepo struct {
	devices *fakeDeviceRepo
}

func (r *fakeReadingRepo) GetSince(since time.Time, deviceIDs []string) ([]entities.Reading, error) {
	allowed := make(map[string]bool, len(deviceIDs))
	for _, id := range deviceIDs {
		allowed[id] = true
	}
	var out []entities.Reading
	for _, rd := range r.devices.readings {
		if rd.RecordedAt.Before(since) {
			continue
		}
		if len(deviceIDs) > 0 && !allowed[rd.DeviceID] {
			continue
		}
		out = append(out, rd)
	}
	return out, nil
}

type fakePanelRepo struct {
	panels map[string]*entities.Panel
}

func newFakePanelRepo() *fakePanelRepo {
	return &fakePanelRepo{panels: make(map[string]*entities.Panel)}
}

func (r *fakePanelRepo) Ensure(panel *entities.Panel) error {
	if _, ok := r.panels[panel.PanelID]; !ok {
		cp := *panel
		r.panels[panel.PanelID] = &cp
	}
	return nil
}

func (r *fakePanelRepo) UpdateDerived(panelID string, outputW, efficiency float64, status string, checkedAt time.Time) error {
	p, ok := r.panels[panelID]
	if !ok {
		return errors.New("panel not found: " + panelID)
	}
	p.CurrentOutputW = outputW
	p.Efficiency = efficiency
	p.Status = status
	t := checkedAt
	p.LastCheckedAt = &t
	return nil
}

func (r *fakePanelRepo) GetAll() ([]entities.Panel, error) {
	out := make([]entities.Panel, 0, len(r.panels))
	for _, p := range r.panels {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePanelRepo) GetByDeviceID(deviceID string) ([]entities.Panel, error) {
	var out []entities.Panel
	for _, p := range r.panels {
		if p.DeviceID == deviceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePanelRepo) CountByStatus() (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, p := range r.panels {
		counts[p.Status]++
	}
	return counts, nil
}

type fakeGenerationRepo struct {
	points map[int64]*entities.GenerationPoint
}

func newFakeGenerationRepo() *fakeGenerationRepo {
	return &fakeGenerationRepo{points: make(map[int64]*entities.GenerationPoint)}
}

func (r *fakeGenerationRepo) Upsert(point *entities.GenerationPoint) error {
	cp := *point
	r.points[point.Timestamp] = &cp
	return nil
}

func (r *fakeGenerationRepo) GetSince(since time.Time) ([]entities.GenerationPoint, error) {
	var out []entities.GenerationPoint
	for _, p := range r.points {
		if p.Timestamp >= since.Unix() {
			out = append(out, *p)
		}
	}
	return out, nil
}

type fakeScanRepo struct {
	scans      []*entities.Scan
	failCreate error
}

func (r *fakeScanRepo) Create(scan *entities.Scan) error {
	if r.failCreate != nil {
		return r.failCreate
	}
	cp := *scan
	r.scans = append(r.scans, &cp)
	return nil
}

func (r *fakeScanRepo) GetByID(id string) (*entities.Scan, error) {
	for _, s := range r.scans {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, errors.New("scan not found")
}

func (r *fakeScanRepo) GetRecent(limit int) ([]entities.Scan, error) {
	out := make([]entities.Scan, 0, len(r.scans))
	for i := len(r.scans) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *r.scans[i])
	}
	return out, nil
}

func (r *fakeScanRepo) UpdateStatus(id, status string) error {
	for _, s := range r.scans {
		if s.ID == id {
			s.Status = status
			return nil
		}
	}
	return errors.New("scan not found")
}

type fakeBroadcaster struct {
	results []interface{}
	events  []string
}

func (b *fakeBroadcaster) PushResult(result interface{}) {
	b.results = append(b.results, result)
}

func (b *fakeBroadcaster) Notify(eventType string, data interface{}) {
	b.events = append(b.events, eventType)
}

type fakeImageSaver struct {
	fail  map[string]bool
	saved []string
}

func (s *fakeImageSaver) Save(scanID, name, b64 string) (string, error) {
	if s.fail[name] {
		return "", errors.New("disk full")
	}
	path := scanID + "/" + name + ".jpg"
	s.saved = append(s.saved, path)
	return path, nil
}
