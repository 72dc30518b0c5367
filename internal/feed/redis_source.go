package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"drone-telemetry/internal/models"
	"drone-telemetry/internal/store"
)

// RedisSource 外部数据源：轮询外部缓存中的实时数据键
// 键不存在或内容损坏都属于正常情况（设备可能尚未上传），静默跳过
type RedisSource struct {
	kv  store.KV
	key string
}

// NewRedisSource 创建外部数据源，key 为实时数据键（如 "drone:live"）
func NewRedisSource(kv store.KV, key string) *RedisSource {
	return &RedisSource{kv: kv, key: key}
}

// Next 拉取并解析最新的实时数据
func (r *RedisSource) Next(ctx context.Context) (*models.TelemetrySample, error) {
	val, err := r.kv.Get(ctx, r.key)
	if err != nil {
		if err == store.ErrMiss {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch live key: %w", err)
	}

	var doc models.LiveDocument
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse live document: %w", err)
	}

	// 缺失的角度默认 0（上游文档可能不含 yaw，保持既有行为）
	sample := &models.TelemetrySample{
		Pitch:       valueOrZero(doc.MPU6050.CalculatedAngles.Pitch),
		Roll:        valueOrZero(doc.MPU6050.CalculatedAngles.Roll),
		Yaw:         valueOrZero(doc.MPU6050.CalculatedAngles.Yaw),
		Temperature: doc.DHT22.Temp,
		Humidity:    doc.DHT22.Humidity,
		Source:      models.SourceExternal,
		Status:      doc.Status,
	}

	return sample, nil
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
