package httpHandler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solarfarm-server/entities"
	"solarfarm-server/fleet"
	"solarfarm-server/status"
	"solarfarm-server/usecases"
)

type stubDeviceRepo struct {
	readings int
}

func (r *stubDeviceRepo) RecordReading(deviceID, label string, voltage, currentMa, powerMw float64, recordedAt time.Time) (*entities.Reading, error) {
	r.readings++
	return &entities.Reading{DeviceID: deviceID, RecordedAt: recordedAt}, nil
}
func (r *stubDeviceRepo) GetAll() ([]entities.Device, error)           { return nil, nil }
func (r *stubDeviceRepo) GetByIDs(ids []string) ([]entities.Device, error) { return nil, nil }

type stubPanelRepo struct {
	updates int
}

func (r *stubPanelRepo) Ensure(panel *entities.Panel) error { return nil }
func (r *stubPanelRepo) UpdateDerived(panelID string, outputW, efficiency float64, status string, checkedAt time.Time) error {
	r.updates++
	return nil
}
func (r *stubPanelRepo) GetAll() ([]entities.Panel, error)                    { return nil, nil }
func (r *stubPanelRepo) GetByDeviceID(deviceID string) ([]entities.Panel, error) { return nil, nil }
func (r *stubPanelRepo) CountByStatus() (map[string]int64, error)             { return nil, nil }

type stubGenerationRepo struct {
	upserts int
}

func (r *stubGenerationRepo) Upsert(point *entities.GenerationPoint) error {
	r.upserts++
	return nil
}
func (r *stubGenerationRepo) GetSince(since time.Time) ([]entities.GenerationPoint, error) {
	return nil, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *stubDeviceRepo, *stubPanelRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mapping, err := fleet.New([]fleet.DeviceSpec{{
		DeviceID: "ESP_01",
		Label:    "String A",
		Panels: []fleet.PanelSpec{
			{PanelID: "P-A-01", Zone: "A", MaxOutputW: 5},
			{PanelID: "P-A-02", Zone: "A", MaxOutputW: 5},
		},
	}})
	require.NoError(t, err)

	devices := &stubDeviceRepo{}
	panels := &stubPanelRepo{}
	uc := usecases.NewTelemetryUseCase(devices, panels, &stubGenerationRepo{}, mapping, status.DefaultThresholds())

	router := gin.New()
	router.POST("/api/v1/readings", NewReadingsHandler(uc).CreateReading)
	return router, devices, panels
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/readings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateReadingSuccess(t *testing.T) {
	router, devices, panels := newTestRouter(t)

	w := postJSON(router, `{"device_id":"ESP_01","voltage":13.0,"current":500,"power":8000}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), `"panelCount":2`)
	assert.Equal(t, 1, devices.readings)
	assert.Equal(t, 2, panels.updates)
}

func TestCreateReadingMissingField(t *testing.T) {
	router, devices, _ := newTestRouter(t)

	w := postJSON(router, `{"device_id":"ESP_01","voltage":13.0,"current":500}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, devices.readings, "nothing persisted on validation error")
}

func TestCreateReadingNonNumericField(t *testing.T) {
	router, devices, _ := newTestRouter(t)

	w := postJSON(router, `{"device_id":"ESP_01","voltage":"abc","current":10,"power":10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, devices.readings)
}

func TestCreateReadingUnmappedDevice(t *testing.T) {
	router, devices, panels := newTestRouter(t)

	w := postJSON(router, `{"device_id":"ESP_99","voltage":13.0,"current":500,"power":8000}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "device not mapped")
	assert.Equal(t, 0, devices.readings)
	assert.Equal(t, 0, panels.updates)
}
