package ingest

import (
	"fmt"

	"drone-telemetry/internal/models"
)

// 姿态角有效范围
const (
	MaxPitch = 180.0
	MaxRoll  = 180.0
	MaxYaw   = 360.0
)

// RawSample 外部推送的原始输入，指针字段用于区分缺失和 0 值
type RawSample struct {
	Pitch       *float64 `json:"pitch"`
	Roll        *float64 `json:"roll"`
	Yaw         *float64 `json:"yaw"`
	Temperature *float64 `json:"temperature"`
}

// 校验失败原因
const (
	ReasonMissing    = "missing"
	ReasonOutOfRange = "out_of_range"
)

// ValidationError 校验错误：指明失败的字段和允许的范围
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
	Limit  string `json:"limit,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Reason == ReasonMissing {
		return fmt.Sprintf("field %q is required", e.Field)
	}
	return fmt.Sprintf("field %q out of range (allowed: %s)", e.Field, e.Limit)
}

// Validate 校验外部推送的数据
// 外部输入只校验不裁剪：越界直接拒绝（裁剪只用于模拟器自产数据）
func Validate(raw RawSample) (models.TelemetrySample, *ValidationError) {
	if raw.Pitch == nil {
		return models.TelemetrySample{}, &ValidationError{Field: "pitch", Reason: ReasonMissing}
	}
	if raw.Roll == nil {
		return models.TelemetrySample{}, &ValidationError{Field: "roll", Reason: ReasonMissing}
	}
	if raw.Yaw == nil {
		return models.TelemetrySample{}, &ValidationError{Field: "yaw", Reason: ReasonMissing}
	}

	if abs(*raw.Pitch) > MaxPitch {
		return models.TelemetrySample{}, &ValidationError{Field: "pitch", Reason: ReasonOutOfRange, Limit: "±180°"}
	}
	if abs(*raw.Roll) > MaxRoll {
		return models.TelemetrySample{}, &ValidationError{Field: "roll", Reason: ReasonOutOfRange, Limit: "±180°"}
	}
	if abs(*raw.Yaw) > MaxYaw {
		return models.TelemetrySample{}, &ValidationError{Field: "yaw", Reason: ReasonOutOfRange, Limit: "±360°"}
	}

	return models.TelemetrySample{
		Pitch:       *raw.Pitch,
		Roll:        *raw.Roll,
		Yaw:         *raw.Yaw,
		Temperature: raw.Temperature,
		Source:      models.SourceLive,
	}, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
