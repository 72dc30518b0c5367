package httpapi

import (
	"net/http"

	"drone-telemetry/internal/ingest"
	"drone-telemetry/internal/service"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// TelemetryHandler 遥测数据 Handler
type TelemetryHandler struct {
	relay  *service.Relay
	logger *zap.Logger
}

// NewTelemetryHandler 创建遥测数据 Handler
func NewTelemetryHandler(relay *service.Relay, logger *zap.Logger) *TelemetryHandler {
	return &TelemetryHandler{
		relay:  relay,
		logger: logger,
	}
}

// Ingest 接收设备推送的遥测数据
// POST /api/telemetry
func (h *TelemetryHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var raw ingest.RawSample
	if err := readBodyJSON(r, maxBodyBytes, &raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "invalid JSON body",
		})
		return
	}

	sample, verr := ingest.Validate(raw)
	if verr != nil {
		h.logger.Debug("Telemetry rejected", zap.String("field", verr.Field), zap.String("reason", verr.Reason))
		if verr.Reason == ingest.ReasonMissing {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success":  false,
				"error":    verr.Error(),
				"field":    verr.Field,
				"required": []string{"pitch", "roll", "yaw"},
				"optional": []string{"temperature"},
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   verr.Error(),
			"field":   verr.Field,
			"limits": map[string]string{
				"pitch": "±180°",
				"roll":  "±180°",
				"yaw":   "±360°",
			},
		})
		return
	}

	stored, notified := h.relay.Ingest(sample)

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":         true,
		"data":            stored,
		"clientsNotified": notified,
	})
}

// Latest 最新遥测数据
// GET /api/telemetry/latest
func (h *TelemetryHandler) Latest(w http.ResponseWriter, r *http.Request) {
	latest := h.relay.Latest()
	if latest == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"success": false,
			"error":   "no telemetry data available",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    latest,
		"stats":   h.relay.Stats(),
	})
}

// History 最近 N 条遥测数据
// GET /api/telemetry/history?count=N
func (h *TelemetryHandler) History(w http.ResponseWriter, r *http.Request) {
	count := parseInt(r.URL.Query().Get("count"), 50)
	data := h.relay.Recent(count)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(data),
		"data":    data,
		"stats":   h.relay.Stats(),
	})
}

// Stats 当前窗口统计
// GET /api/telemetry/stats
func (h *TelemetryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"totalMeasures": h.relay.Count(),
		"stats":         h.relay.Stats(),
	})
}

// Reset 清空遥测数据（幂等）
// DELETE /api/telemetry
func (h *TelemetryHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.relay.ClearTelemetry()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "telemetry store cleared",
	})
}
