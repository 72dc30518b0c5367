package httpapi

import (
	"net/http"

	"drone-telemetry/internal/models"
	"drone-telemetry/internal/service"

	"go.uber.org/zap"
)

// AlertHandler 报警 Handler（外部报警提交 + 历史查询）
type AlertHandler struct {
	relay  *service.Relay
	logger *zap.Logger
}

// NewAlertHandler 创建报警 Handler
func NewAlertHandler(relay *service.Relay, logger *zap.Logger) *AlertHandler {
	return &AlertHandler{
		relay:  relay,
		logger: logger,
	}
}

type alertRequest struct {
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	Angle    *float64 `json:"angle"`
	Type     string   `json:"type"`
}

// Submit 接收外部模块（如 AI 预测）提交的报警
// POST /api/ai/alert
func (h *AlertHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "invalid JSON body",
		})
		return
	}

	if req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "message is required",
			"example": map[string]any{
				"severity": models.SeverityWarning,
				"message":  "Maximum inclination detected",
				"angle":    45.5,
				"type":     models.AlertTypeMaxInclination,
			},
		})
		return
	}

	severity := req.Severity
	if severity == "" {
		severity = models.SeverityWarning
	}
	if !models.ValidSeverity(severity) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "invalid severity",
			"allowed": []string{models.SeverityInfo, models.SeverityWarning, models.SeverityDanger},
		})
		return
	}

	alertType := req.Type
	if alertType == "" {
		alertType = models.AlertTypeGeneral
	}

	stored, notified := h.relay.RecordAlert(models.AlertEvent{
		Severity: severity,
		Message:  req.Message,
		Angle:    req.Angle,
		Type:     alertType,
	})

	h.logger.Info("Alert recorded",
		zap.String("severity", stored.Severity),
		zap.String("type", stored.Type),
		zap.String("message", stored.Message),
	)

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":         true,
		"alert":           stored,
		"clientsNotified": notified,
	})
}

// History 报警历史（最新在前）
// GET /api/ai/alerts?count=N
func (h *AlertHandler) History(w http.ResponseWriter, r *http.Request) {
	count := parseInt(r.URL.Query().Get("count"), 20)
	alerts := h.relay.RecentAlerts(count)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(alerts),
		"alerts":  alerts,
	})
}

// Reset 清空报警历史（幂等）
// DELETE /api/ai/alerts
func (h *AlertHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.relay.ClearAlerts()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "alert history cleared",
	})
}
