package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"drone-telemetry/internal/hub"
	"drone-telemetry/internal/ingest"
	"drone-telemetry/internal/service"
	"drone-telemetry/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRelay() *service.Relay {
	logger := zap.NewNop()
	telemetryStore := store.NewTelemetryStore(100)
	alertLog := store.NewAlertLog(50)
	h := hub.NewHub(logger)
	monitor := ingest.NewInclinationMonitor(45, alertLog, h, logger)
	return service.NewRelay(telemetryStore, alertLog, h, monitor, logger)
}

func newTelemetryRouter(relay *service.Relay) *Router {
	logger := zap.NewNop()
	r := NewRouter(logger)
	r.RegisterTelemetryRoutes(NewTelemetryHandler(relay, logger))
	return r
}

func doJSON(t *testing.T, router *Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestTelemetryIngest_Success(t *testing.T) {
	router := newTelemetryRouter(newTestRelay())

	rec := doJSON(t, router, http.MethodPost, "/api/telemetry", map[string]any{
		"pitch": 10.0, "roll": -5.0, "yaw": 200.0,
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, 0.0, body["clientsNotified"])

	data := body["data"].(map[string]any)
	assert.Equal(t, 10.0, data["pitch"])
	assert.Equal(t, -5.0, data["roll"])
	assert.Equal(t, 200.0, data["yaw"])
	assert.Equal(t, "live", data["source"])
	assert.NotZero(t, data["timestamp"])
}

func TestTelemetryIngest_InvalidJSON(t *testing.T) {
	router := newTelemetryRouter(newTestRelay())

	req := httptest.NewRequest(http.MethodPost, "/api/telemetry", bytes.NewReader([]byte("{bad")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
}

func TestTelemetryIngest_MissingField(t *testing.T) {
	router := newTelemetryRouter(newTestRelay())

	rec := doJSON(t, router, http.MethodPost, "/api/telemetry", map[string]any{
		"pitch": 10.0, "yaw": 200.0,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "roll", body["field"])
	assert.Contains(t, body, "required")
}

func TestTelemetryIngest_OutOfRange(t *testing.T) {
	router := newTelemetryRouter(newTestRelay())

	// 超出限值的外部数据必须拒绝，绝不截断修正
	rec := doJSON(t, router, http.MethodPost, "/api/telemetry", map[string]any{
		"pitch": 181.0, "roll": 0.0, "yaw": 0.0,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "pitch", body["field"])
	limits := body["limits"].(map[string]any)
	assert.Equal(t, "±180°", limits["pitch"])
	assert.Equal(t, "±360°", limits["yaw"])
}

func TestTelemetryLatest_EmptyStore(t *testing.T) {
	router := newTelemetryRouter(newTestRelay())

	rec := doJSON(t, router, http.MethodGet, "/api/telemetry/latest", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTelemetryLatest_AfterIngest(t *testing.T) {
	relay := newTestRelay()
	router := newTelemetryRouter(relay)

	doJSON(t, router, http.MethodPost, "/api/telemetry", map[string]any{
		"pitch": 1.0, "roll": 2.0, "yaw": 3.0,
	})
	doJSON(t, router, http.MethodPost, "/api/telemetry", map[string]any{
		"pitch": 4.0, "roll": 5.0, "yaw": 6.0,
	})

	rec := doJSON(t, router, http.MethodGet, "/api/telemetry/latest", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	data := body["data"].(map[string]any)
	assert.Equal(t, 4.0, data["pitch"])
	assert.Contains(t, body, "stats")
}

func TestTelemetryHistory_CountAndOrder(t *testing.T) {
	relay := newTestRelay()
	router := newTelemetryRouter(relay)

	for i := 1; i <= 5; i++ {
		doJSON(t, router, http.MethodPost, "/api/telemetry", map[string]any{
			"pitch": float64(i), "roll": 0.0, "yaw": 0.0,
		})
	}

	rec := doJSON(t, router, http.MethodGet, "/api/telemetry/history?count=3", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 3.0, body["count"])

	// 时间正序：最旧在前
	data := body["data"].([]any)
	require.Len(t, data, 3)
	assert.Equal(t, 3.0, data[0].(map[string]any)["pitch"])
	assert.Equal(t, 5.0, data[2].(map[string]any)["pitch"])
}

func TestTelemetryStats(t *testing.T) {
	relay := newTestRelay()
	router := newTelemetryRouter(relay)

	doJSON(t, router, http.MethodPost, "/api/telemetry", map[string]any{
		"pitch": 10.0, "roll": -10.0, "yaw": 100.0,
	})
	doJSON(t, router, http.MethodPost, "/api/telemetry", map[string]any{
		"pitch": 20.0, "roll": 10.0, "yaw": 200.0,
	})

	rec := doJSON(t, router, http.MethodGet, "/api/telemetry/stats", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, 2.0, body["totalMeasures"])

	stats := body["stats"].(map[string]any)
	pitch := stats["pitch"].(map[string]any)
	assert.Equal(t, 10.0, pitch["min"])
	assert.Equal(t, 20.0, pitch["max"])
	assert.Equal(t, 15.0, pitch["avg"])
}

func TestTelemetryReset(t *testing.T) {
	relay := newTestRelay()
	router := newTelemetryRouter(relay)

	doJSON(t, router, http.MethodPost, "/api/telemetry", map[string]any{
		"pitch": 1.0, "roll": 2.0, "yaw": 3.0,
	})
	require.Equal(t, 1, relay.Count())

	rec := doJSON(t, router, http.MethodDelete, "/api/telemetry", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, relay.Count())

	// 清空后 latest 回到空库行为
	rec = doJSON(t, router, http.MethodGet, "/api/telemetry/latest", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTelemetryIngest_TriggersInclinationAlert(t *testing.T) {
	relay := newTestRelay()
	router := newTelemetryRouter(relay)

	doJSON(t, router, http.MethodPost, "/api/telemetry", map[string]any{
		"pitch": 50.0, "roll": 0.0, "yaw": 0.0,
	})

	alerts := relay.RecentAlerts(10)
	require.Len(t, alerts, 1)
	assert.Equal(t, "danger", alerts[0].Severity)
	require.NotNil(t, alerts[0].Angle)
	assert.Equal(t, 50.0, *alerts[0].Angle)
}

func TestTelemetryRoutes_MethodNotAllowed(t *testing.T) {
	router := newTelemetryRouter(newTestRelay())

	rec := doJSON(t, router, http.MethodPut, "/api/telemetry", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/telemetry/latest", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
