package service

import (
	"drone-telemetry/internal/hub"
	"drone-telemetry/internal/ingest"
	"drone-telemetry/internal/models"
	"drone-telemetry/internal/store"

	"go.uber.org/zap"
)

// Relay 遥测中继核心服务
// 统一的落地路径：入库 → 广播 → 倾角检查；HTTP 推送和 feed tick 共用
type Relay struct {
	store    *store.TelemetryStore
	alertLog *store.AlertLog
	hub      *hub.Hub
	monitor  *ingest.InclinationMonitor
	logger   *zap.Logger
}

// NewRelay 创建中继服务
func NewRelay(
	telemetryStore *store.TelemetryStore,
	alertLog *store.AlertLog,
	h *hub.Hub,
	monitor *ingest.InclinationMonitor,
	logger *zap.Logger,
) *Relay {
	return &Relay{
		store:    telemetryStore,
		alertLog: alertLog,
		hub:      h,
		monitor:  monitor,
		logger:   logger,
	}
}

// Ingest 落地一条遥测数据：先入库再广播，顺序不可交换
// 返回实际存储的数据和成功通知的订阅者数量
func (r *Relay) Ingest(sample models.TelemetrySample) (models.TelemetrySample, int) {
	stored := r.store.Add(sample)
	notified := r.hub.PublishTelemetry(stored)
	r.monitor.Check(stored)
	return stored, notified
}

// RecordAlert 落地一条外部提交的报警并广播
func (r *Relay) RecordAlert(alert models.AlertEvent) (models.AlertEvent, int) {
	stored := r.alertLog.Record(alert)
	notified := r.hub.PublishAlert(stored)
	return stored, notified
}

// Latest 最新遥测数据，空库返回 nil
func (r *Relay) Latest() *models.TelemetrySample {
	return r.store.Latest()
}

// Recent 最近 count 条遥测数据（时间正序）
func (r *Relay) Recent(count int) []models.TelemetrySample {
	return r.store.Recent(count)
}

// Count 当前遥测数据条数
func (r *Relay) Count() int {
	return r.store.Count()
}

// Stats 当前窗口统计
func (r *Relay) Stats() models.StoreStats {
	return r.store.Stats()
}

// ClearTelemetry 清空遥测数据
func (r *Relay) ClearTelemetry() {
	r.store.Clear()
	r.logger.Info("Telemetry store cleared")
}

// RecentAlerts 最近 count 条报警（最新在前）
func (r *Relay) RecentAlerts(count int) []models.AlertEvent {
	return r.alertLog.Recent(count)
}

// ClearAlerts 清空报警历史
func (r *Relay) ClearAlerts() {
	r.alertLog.Clear()
	r.logger.Info("Alert log cleared")
}

// SubscriberCount 当前推送连接数
func (r *Relay) SubscriberCount() int {
	return r.hub.SubscriberCount()
}
