package httpapi

import (
	"net/http"

	"drone-telemetry/internal/rating"

	"go.uber.org/zap"
)

// RatingHandler 机型配置评分 Handler（ML 服务代理）
type RatingHandler struct {
	client *rating.Client
	logger *zap.Logger
}

// NewRatingHandler 创建评分 Handler
func NewRatingHandler(client *rating.Client, logger *zap.Logger) *RatingHandler {
	return &RatingHandler{
		client: client,
		logger: logger,
	}
}

type ratingRequest struct {
	TotalWeight        *float64 `json:"total_weight"`
	CenterOfMassOffset *float64 `json:"center_of_mass_offset"`
	ThrustToWeight     *float64 `json:"thrust_to_weight"`
	ArmLength          *float64 `json:"arm_length"`
	PropellerSize      *int     `json:"propeller_size"`
	MotorKV            *int     `json:"motor_kv"`
}

// Predict 评估一套机型配置
// POST /api/drone-rating/predict
func (h *RatingHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"error":   "invalid JSON body",
		})
		return
	}

	if req.TotalWeight == nil || req.ThrustToWeight == nil || req.PropellerSize == nil || req.MotorKV == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success":  false,
			"error":    "missing required parameters",
			"required": []string{"total_weight", "thrust_to_weight", "propeller_size", "motor_kv"},
		})
		return
	}

	in := rating.Request{
		TotalWeight:    *req.TotalWeight,
		ThrustToWeight: *req.ThrustToWeight,
		PropellerSize:  *req.PropellerSize,
		MotorKV:        *req.MotorKV,
		// 可选参数的默认值与评分模型一致
		ArmLength: 200,
	}
	if req.CenterOfMassOffset != nil {
		in.CenterOfMassOffset = *req.CenterOfMassOffset
	}
	if req.ArmLength != nil {
		in.ArmLength = *req.ArmLength
	}

	result, fallback, err := h.client.Predict(r.Context(), in)
	if err != nil {
		h.logger.Error("Rating prediction failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "failed to compute rating",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"rating":   result,
		"fallback": fallback,
	})
}

// Health 评分服务健康检查
// GET /api/drone-rating/health
func (h *RatingHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.client.Health(r.Context()) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "rating_api_unavailable",
		"fallback": "enabled",
	})
}
