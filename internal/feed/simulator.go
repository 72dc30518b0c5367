package feed

import (
	"context"
	"math"
	"math/rand"

	"drone-telemetry/internal/models"
)

// Source 一种遥测数据来源：每个 tick 产出一条数据
// 返回 (nil, nil) 表示本 tick 无数据（正常跳过）
type Source interface {
	Next(ctx context.Context) (*models.TelemetrySample, error)
}

// Simulator 模拟数据源：叠加正弦模拟无人机的自然振荡
// 每个 tick 虚拟时间前进固定步长，输出按传感器精度取整
type Simulator struct {
	time float64 // 虚拟时间
}

// NewSimulator 创建模拟数据源
func NewSimulator() *Simulator {
	return &Simulator{}
}

// Next 生成一条模拟数据
func (s *Simulator) Next(_ context.Context) (*models.TelemetrySample, error) {
	s.time += 0.1

	t := s.time
	pitch := 15*math.Sin(t*0.5) + 5*math.Sin(t*1.3)
	roll := 10*math.Cos(t*0.7) + 3*math.Sin(t*1.5)
	// 偏航角：在 [0,360) 上缓慢扫掠
	yaw := math.Mod(t*20, 360)
	temperature := 25 + 2*math.Sin(t*0.1)
	humidity := 45 + 5*math.Sin(t*0.05)

	pitch = round2(pitch + noise())
	roll = round2(roll + noise())
	// 取整可能进位到 360.0，再取一次模保持在 [0,360)
	yaw = math.Mod(round2(math.Mod(yaw+noise()+360, 360)), 360)

	// 电机转速随倾角增大
	inclination := math.Max(math.Abs(pitch), math.Abs(roll))
	motorSpeed := round1(math.Min(100, 50+inclination*1.5))
	temp := round1(temperature + noise()*0.5)
	hum := round1(humidity + noise())

	return &models.TelemetrySample{
		Pitch:       pitch,
		Roll:        roll,
		Yaw:         yaw,
		Temperature: &temp,
		Humidity:    &hum,
		MotorSpeed:  &motorSpeed,
		Source:      models.SourceSimulated,
	}, nil
}

// noise 有界加性噪声，±1
func noise() float64 {
	return (rand.Float64() - 0.5) * 2
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
