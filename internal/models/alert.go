package models

// 报警级别
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityDanger  = "danger"
)

// 报警类别
const (
	AlertTypeMaxInclination = "max_inclination"
	AlertTypeAIPrediction   = "ai_prediction"
	AlertTypeGeneral        = "general"
)

// AlertEvent 报警事件
// ID 和 Timestamp 在写入报警历史时补齐
type AlertEvent struct {
	ID        string   `json:"id"`
	Severity  string   `json:"severity"` // info | warning | danger
	Message   string   `json:"message"`
	Angle     *float64 `json:"angle"` // 相关角度，可选
	Type      string   `json:"type"`  // 类别标签，如 "max_inclination"
	Timestamp int64    `json:"timestamp"`
}

// ValidSeverity 判断报警级别是否合法
func ValidSeverity(s string) bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityDanger:
		return true
	}
	return false
}
