package ingest

import (
	"fmt"

	"drone-telemetry/internal/models"
	"drone-telemetry/internal/store"

	"go.uber.org/zap"
)

// Broadcaster 报警分发接口（由 hub 实现）
type Broadcaster interface {
	PublishAlert(alert models.AlertEvent) int
}

// InclinationMonitor 倾角监控：内部阈值报警源
// 每条入库数据检查一次；超过最大倾角时记录并广播 danger 级报警
type InclinationMonitor struct {
	limit     float64
	alertLog  *store.AlertLog
	broadcast Broadcaster
	logger    *zap.Logger
}

// NewInclinationMonitor 创建倾角监控，limit 为最大允许倾角（度）
func NewInclinationMonitor(limit float64, alertLog *store.AlertLog, broadcast Broadcaster, logger *zap.Logger) *InclinationMonitor {
	return &InclinationMonitor{
		limit:     limit,
		alertLog:  alertLog,
		broadcast: broadcast,
		logger:    logger,
	}
}

// Check 检查一条已入库数据，超限时返回记录的报警，否则返回 nil
func (m *InclinationMonitor) Check(sample models.TelemetrySample) *models.AlertEvent {
	inclination := abs(sample.Pitch)
	if r := abs(sample.Roll); r > inclination {
		inclination = r
	}
	if inclination <= m.limit {
		return nil
	}

	angle := inclination
	alert := m.alertLog.Record(models.AlertEvent{
		Severity:  models.SeverityDanger,
		Message:   fmt.Sprintf("Maximum inclination exceeded: %.2f° (limit %.0f°)", inclination, m.limit),
		Angle:     &angle,
		Type:      models.AlertTypeMaxInclination,
		Timestamp: sample.Timestamp,
	})
	m.broadcast.PublishAlert(alert)

	m.logger.Warn("Max inclination exceeded",
		zap.Float64("inclination", inclination),
		zap.Float64("limit", m.limit),
	)

	return &alert
}
