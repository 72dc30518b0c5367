package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"drone-telemetry/internal/hub"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSHandler websocket 接入 Handler：升级连接并注册到 hub
type WSHandler struct {
	hub      *hub.Hub
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWSHandler 创建 websocket Handler
func NewWSHandler(h *hub.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub: h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 查看端跨源访问（前端开发服务器）
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Serve 处理 websocket 连接
// GET /ws
func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	client := hub.NewClient(h.hub, conn, h.logger)
	h.hub.Register(client)
	client.Start()

	// 欢迎帧：连接确认 + 分配的订阅者 ID
	welcome, _ := json.Marshal(map[string]any{
		"type":      hub.EventConnection,
		"status":    "connected",
		"clientId":  client.ID(),
		"message":   "connected to drone telemetry relay",
		"timestamp": time.Now().UnixMilli(),
	})
	if err := client.Deliver(welcome); err != nil {
		h.logger.Warn("Failed to deliver welcome frame", zap.String("subscriber_id", client.ID()))
	}
}
