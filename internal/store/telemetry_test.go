package store

import (
	"testing"

	"drone-telemetry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelemetryStore_Add_AssignsTimestamp(t *testing.T) {
	s := NewTelemetryStore(10)

	stored := s.Add(models.TelemetrySample{Pitch: 1, Roll: 2, Yaw: 3})

	assert.NotZero(t, stored.Timestamp)
	assert.Equal(t, 1, s.Count())
}

func TestTelemetryStore_Add_KeepsExplicitTimestamp(t *testing.T) {
	s := NewTelemetryStore(10)

	stored := s.Add(models.TelemetrySample{Pitch: 1, Roll: 2, Yaw: 3, Timestamp: 12345})

	assert.Equal(t, int64(12345), stored.Timestamp)
}

func TestTelemetryStore_CapacityEviction(t *testing.T) {
	s := NewTelemetryStore(3)

	for i := 0; i < 5; i++ {
		s.Add(models.TelemetrySample{Pitch: float64(i), Roll: 0, Yaw: 0})
		// 每次写入后长度都不超过容量
		assert.LessOrEqual(t, s.Count(), 3)
	}

	// 最旧的两条（pitch=0,1）已被淘汰，保留 2,3,4（时间正序）
	recent := s.Recent(3)
	require.Len(t, recent, 3)
	assert.Equal(t, 2.0, recent[0].Pitch)
	assert.Equal(t, 3.0, recent[1].Pitch)
	assert.Equal(t, 4.0, recent[2].Pitch)
}

func TestTelemetryStore_Latest(t *testing.T) {
	s := NewTelemetryStore(10)

	assert.Nil(t, s.Latest())

	s.Add(models.TelemetrySample{Pitch: 1, Roll: 2, Yaw: 3})
	s.Add(models.TelemetrySample{Pitch: 10, Roll: -5, Yaw: 200})

	latest := s.Latest()
	require.NotNil(t, latest)
	assert.Equal(t, 10.0, latest.Pitch)
	assert.Equal(t, -5.0, latest.Roll)
	assert.Equal(t, 200.0, latest.Yaw)
}

func TestTelemetryStore_Recent_Ordering(t *testing.T) {
	s := NewTelemetryStore(10)
	for i := 0; i < 6; i++ {
		s.Add(models.TelemetrySample{Pitch: float64(i)})
	}

	recent := s.Recent(3)
	require.Len(t, recent, 3)
	// 最近 3 条，切片内部时间正序
	assert.Equal(t, 3.0, recent[0].Pitch)
	assert.Equal(t, 4.0, recent[1].Pitch)
	assert.Equal(t, 5.0, recent[2].Pitch)

	// count 超过库存时返回全部
	assert.Len(t, s.Recent(100), 6)
}

func TestTelemetryStore_Stats_ExactRecompute(t *testing.T) {
	s := NewTelemetryStore(10)

	s.Add(models.TelemetrySample{Pitch: 10, Roll: -20, Yaw: 100})
	s.Add(models.TelemetrySample{Pitch: -30, Roll: 40, Yaw: 200})
	s.Add(models.TelemetrySample{Pitch: 5, Roll: 5, Yaw: 33})

	stats := s.Stats()

	assert.Equal(t, -30.0, stats.Pitch.Min)
	assert.Equal(t, 10.0, stats.Pitch.Max)
	assert.Equal(t, -5.0, stats.Pitch.Avg)

	assert.Equal(t, -20.0, stats.Roll.Min)
	assert.Equal(t, 40.0, stats.Roll.Max)
	assert.Equal(t, 8.33, stats.Roll.Avg) // 25/3 保留 2 位小数

	assert.Equal(t, 33.0, stats.Yaw.Min)
	assert.Equal(t, 200.0, stats.Yaw.Max)
	assert.Equal(t, 111.0, stats.Yaw.Avg)
}

func TestTelemetryStore_Stats_ReflectEviction(t *testing.T) {
	s := NewTelemetryStore(2)

	s.Add(models.TelemetrySample{Pitch: 100})
	s.Add(models.TelemetrySample{Pitch: 10})
	s.Add(models.TelemetrySample{Pitch: 20})

	// pitch=100 已淘汰，统计只覆盖窗口内的 10 和 20
	stats := s.Stats()
	assert.Equal(t, 10.0, stats.Pitch.Min)
	assert.Equal(t, 20.0, stats.Pitch.Max)
	assert.Equal(t, 15.0, stats.Pitch.Avg)
}

func TestTelemetryStore_Clear(t *testing.T) {
	s := NewTelemetryStore(10)
	s.Add(models.TelemetrySample{Pitch: 10, Roll: 20, Yaw: 30})

	s.Clear()

	assert.Equal(t, 0, s.Count())
	assert.Nil(t, s.Latest())
	assert.Equal(t, models.StoreStats{}, s.Stats())
	assert.Empty(t, s.Recent(10))
}

func TestTelemetryStore_ConcurrentAdd(t *testing.T) {
	s := NewTelemetryStore(50)

	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				s.Add(models.TelemetrySample{Pitch: float64(g*100 + i)})
			}
		}(g)
	}
	for g := 0; g < 4; g++ {
		<-done
	}

	assert.Equal(t, 50, s.Count())
	// 统计与窗口一致（不崩溃、长度受限即可，写入顺序不确定）
	stats := s.Stats()
	assert.GreaterOrEqual(t, stats.Pitch.Max, stats.Pitch.Min)
}
