package hub

import (
	"encoding/json"
	"sync"
	"time"

	"drone-telemetry/internal/models"

	"go.uber.org/zap"
)

// 推送事件类型
const (
	EventTelemetry  = "telemetry"
	EventAlert      = "alert"
	EventConnection = "connection"
	EventPong       = "pong"
)

// Envelope 推送消息封装：事件类型 + 负载 + 分发时间戳（毫秒）
type Envelope struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// Subscriber 一条活跃的推送连接
// Hub 独占管理订阅者集合；连接的读协程负责在断开时调用 Unregister
type Subscriber interface {
	ID() string
	Alive() bool
	Deliver(message []byte) error
	Close()
}

// Hub 广播中心：维护订阅者集合并向所有活跃连接分发事件
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]Subscriber
	logger      *zap.Logger
}

// NewHub 创建广播中心
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]Subscriber),
		logger:      logger,
	}
}

// Register 注册订阅者
func (h *Hub) Register(sub Subscriber) {
	h.mu.Lock()
	h.subscribers[sub.ID()] = sub
	total := len(h.subscribers)
	h.mu.Unlock()

	h.logger.Info("Subscriber registered",
		zap.String("subscriber_id", sub.ID()),
		zap.Int("total", total),
	)
}

// Unregister 移除订阅者（连接关闭或投递失败时调用）
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	_, ok := h.subscribers[id]
	if ok {
		delete(h.subscribers, id)
	}
	total := len(h.subscribers)
	h.mu.Unlock()

	if ok {
		h.logger.Info("Subscriber unregistered",
			zap.String("subscriber_id", id),
			zap.Int("total", total),
		)
	}
}

// SubscriberCount 当前订阅者数量
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Publish 向所有活跃订阅者分发事件，返回成功通知的数量
// 非活跃的订阅者跳过（不计数、不移除，由其读协程负责清理）；
// 投递失败的订阅者从集合中移除，失败互相隔离
func (h *Hub) Publish(eventType string, data any) int {
	message, err := json.Marshal(Envelope{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		h.logger.Error("Failed to marshal broadcast event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return 0
	}

	h.mu.RLock()
	subs := make([]Subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	notified := 0
	var failed []string
	for _, sub := range subs {
		if !sub.Alive() {
			continue
		}
		if err := sub.Deliver(message); err != nil {
			h.logger.Warn("Failed to deliver event to subscriber",
				zap.String("subscriber_id", sub.ID()),
				zap.String("event_type", eventType),
				zap.Error(err),
			)
			failed = append(failed, sub.ID())
			continue
		}
		notified++
	}

	for _, id := range failed {
		h.Unregister(id)
	}

	return notified
}

// PublishTelemetry 分发一条遥测数据
func (h *Hub) PublishTelemetry(sample models.TelemetrySample) int {
	return h.Publish(EventTelemetry, sample)
}

// PublishAlert 分发一条报警
func (h *Hub) PublishAlert(alert models.AlertEvent) int {
	return h.Publish(EventAlert, alert)
}

// CloseAll 关闭所有连接并清空集合
func (h *Hub) CloseAll() {
	h.mu.Lock()
	subs := make([]Subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.subscribers = make(map[string]Subscriber)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}

	h.logger.Info("All subscribers closed", zap.Int("count", len(subs)))
}
