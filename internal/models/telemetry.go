package models

// 数据来源标签
const (
	SourceLive      = "live"          // 设备通过 HTTP 推送
	SourceSimulated = "simulated"     // 本地模拟器生成
	SourceExternal  = "external-feed" // 外部缓存轮询
)

// TelemetrySample 一条遥测数据（姿态角 + 可选传感器）
// Timestamp 为入库时间（毫秒），由 store 在写入时补齐
type TelemetrySample struct {
	Pitch       float64  `json:"pitch"`                 // 俯仰角，[-180,180]
	Roll        float64  `json:"roll"`                  // 横滚角，[-180,180]
	Yaw         float64  `json:"yaw"`                   // 偏航角，[-360,360]
	Temperature *float64 `json:"temperature,omitempty"` // 温度（°C），可选
	Humidity    *float64 `json:"humidity,omitempty"`    // 湿度（%），可选
	MotorSpeed  *float64 `json:"motorSpeed,omitempty"`  // 电机转速（%），可选
	Source      string   `json:"source,omitempty"`
	Status      string   `json:"status,omitempty"` // 外部缓存中的设备状态标签
	Timestamp   int64    `json:"timestamp"`
}

// AxisStats 单轴统计
type AxisStats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"` // 保留 2 位小数
}

// StoreStats 当前窗口内各轴的统计，每次写入后全量重算
type StoreStats struct {
	Pitch AxisStats `json:"pitch"`
	Roll  AxisStats `json:"roll"`
	Yaw   AxisStats `json:"yaw"`
}
