package store

import (
	"sync"
	"time"

	"drone-telemetry/internal/models"

	"github.com/google/uuid"
)

// DefaultAlertCapacity 报警历史默认容量
const DefaultAlertCapacity = 50

// AlertLog 报警历史（最新在前的有界列表）
// 不做去重：连续的相同报警全部保留，历史即原始事件流
type AlertLog struct {
	mu       sync.RWMutex
	capacity int
	alerts   []models.AlertEvent
}

// NewAlertLog 创建报警历史，capacity <= 0 时使用默认容量
func NewAlertLog(capacity int) *AlertLog {
	if capacity <= 0 {
		capacity = DefaultAlertCapacity
	}
	return &AlertLog{
		capacity: capacity,
		alerts:   make([]models.AlertEvent, 0, capacity),
	}
}

// Record 记录一条报警：补齐 ID 和时间戳，插入头部，超容量时丢弃最旧的一条
func (l *AlertLog) Record(alert models.AlertEvent) models.AlertEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.Timestamp == 0 {
		alert.Timestamp = time.Now().UnixMilli()
	}

	l.alerts = append([]models.AlertEvent{alert}, l.alerts...)
	if len(l.alerts) > l.capacity {
		l.alerts = l.alerts[:l.capacity]
	}

	return alert
}

// Recent 最近 count 条报警（最新在前）
// count <= 0 或超过当前数量时返回全部
func (l *AlertLog) Recent(count int) []models.AlertEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if count <= 0 || count > len(l.alerts) {
		count = len(l.alerts)
	}
	result := make([]models.AlertEvent, count)
	copy(result, l.alerts[:count])
	return result
}

// Count 当前报警条数
func (l *AlertLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.alerts)
}

// Clear 清空报警历史
func (l *AlertLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.alerts = l.alerts[:0]
}
