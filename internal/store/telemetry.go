package store

import (
	"math"
	"sync"
	"time"

	"drone-telemetry/internal/models"
)

// DefaultCapacity 环形缓冲区默认容量
const DefaultCapacity = 100

// TelemetryStore 遥测数据存储（有界 FIFO 缓冲区 + 全窗口统计）
// 所有写入串行化；统计始终与当前窗口内的数据一致
type TelemetryStore struct {
	mu       sync.RWMutex
	capacity int
	data     []models.TelemetrySample
	stats    models.StoreStats
}

// NewTelemetryStore 创建遥测存储，capacity <= 0 时使用默认容量
func NewTelemetryStore(capacity int) *TelemetryStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &TelemetryStore{
		capacity: capacity,
		data:     make([]models.TelemetrySample, 0, capacity),
	}
}

// Add 写入一条数据：补齐时间戳、淘汰最旧数据、重算统计
// 返回实际存储的数据（含补齐后的时间戳）
func (s *TelemetryStore) Add(sample models.TelemetrySample) models.TelemetrySample {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sample.Timestamp == 0 {
		sample.Timestamp = time.Now().UnixMilli()
	}

	s.data = append(s.data, sample)
	if len(s.data) > s.capacity {
		// FIFO：只淘汰最旧的一条
		s.data = s.data[1:]
	}

	// 每次写入后全量重算，保证统计与窗口完全一致
	s.stats = computeStats(s.data)

	return sample
}

// Latest 最新一条数据，空库返回 nil
func (s *TelemetryStore) Latest() *models.TelemetrySample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data) == 0 {
		return nil
	}
	sample := s.data[len(s.data)-1]
	return &sample
}

// Recent 最近 count 条数据（按时间正序）
// count <= 0 或超过当前数量时返回全部
func (s *TelemetryStore) Recent(count int) []models.TelemetrySample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if count <= 0 || count > len(s.data) {
		count = len(s.data)
	}
	result := make([]models.TelemetrySample, count)
	copy(result, s.data[len(s.data)-count:])
	return result
}

// Count 当前数据条数
func (s *TelemetryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Stats 当前窗口统计，空库返回零值
func (s *TelemetryStore) Stats() models.StoreStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Clear 清空数据和统计
func (s *TelemetryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = s.data[:0]
	s.stats = models.StoreStats{}
}

func computeStats(data []models.TelemetrySample) models.StoreStats {
	if len(data) == 0 {
		return models.StoreStats{}
	}

	pitch := make([]float64, len(data))
	roll := make([]float64, len(data))
	yaw := make([]float64, len(data))
	for i, d := range data {
		pitch[i] = d.Pitch
		roll[i] = d.Roll
		yaw[i] = d.Yaw
	}

	return models.StoreStats{
		Pitch: axisStats(pitch),
		Roll:  axisStats(roll),
		Yaw:   axisStats(yaw),
	}
}

func axisStats(values []float64) models.AxisStats {
	min := values[0]
	max := values[0]
	sum := 0.0
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	avg := sum / float64(len(values))
	return models.AxisStats{
		Min: min,
		Max: max,
		Avg: math.Round(avg*100) / 100,
	}
}
