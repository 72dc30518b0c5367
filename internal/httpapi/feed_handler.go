package httpapi

import (
	"errors"
	"net/http"

	"drone-telemetry/internal/feed"

	"go.uber.org/zap"
)

// FeedHandler feed 模式控制 Handler
type FeedHandler struct {
	controller *feed.Controller
	logger     *zap.Logger
}

// NewFeedHandler 创建 feed 控制 Handler
func NewFeedHandler(controller *feed.Controller, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{
		controller: controller,
		logger:     logger,
	}
}

// Status 当前 feed 状态
// GET /api/mock/status
func (h *FeedHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"running": h.controller.Running(),
		"mode":    string(h.controller.Mode()),
	})
}

// Start 启动 feed；已在运行时报告冲突（非致命）
// POST /api/mock/start
func (h *FeedHandler) Start(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Start(); err != nil {
		if errors.Is(err, feed.ErrAlreadyRunning) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"running": true,
				"message": "feed already running",
			})
			return
		}
		h.logger.Error("Failed to start feed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "failed to start feed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"running": true,
		"mode":    string(h.controller.Mode()),
		"message": "feed started",
	})
}

// Stop 停止 feed；未在运行时报告冲突（非致命）
// POST /api/mock/stop
func (h *FeedHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Stop(); err != nil {
		if errors.Is(err, feed.ErrAlreadyStopped) {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"running": false,
				"message": "feed already stopped",
			})
			return
		}
		h.logger.Error("Failed to stop feed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "failed to stop feed",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"running": false,
		"message": "feed stopped",
	})
}

// Toggle 按当前状态启停（总是成功）
// POST /api/mock/toggle
func (h *FeedHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	running := h.controller.Toggle()

	message := "feed stopped"
	if running {
		message = "feed started"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"running": running,
		"mode":    string(h.controller.Mode()),
		"message": message,
	})
}
