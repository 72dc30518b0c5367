package rating

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Request 机型配置评分请求
type Request struct {
	TotalWeight        float64 `json:"total_weight"`
	CenterOfMassOffset float64 `json:"center_of_mass_offset"`
	ThrustToWeight     float64 `json:"thrust_to_weight"`
	ArmLength          float64 `json:"arm_length"`
	PropellerSize      int     `json:"propeller_size"`
	MotorKV            int     `json:"motor_kv"`
}

// Rating 评分结果
type Rating struct {
	Score       float64 `json:"score"`
	Label       string  `json:"label"`
	Explanation string  `json:"explanation"`
}

type predictResponse struct {
	Rating Rating `json:"rating"`
}

// Client ML 评分服务代理
// 评分服务不可用时退化为本地算式，调用方无感知（结果带 fallback 标记）
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient 创建评分代理
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		logger:     logger,
	}
}

// Predict 请求评分；服务不可达时使用本地算式，返回值第二项表示是否 fallback
func (c *Client) Predict(ctx context.Context, req Request) (Rating, bool, error) {
	var out predictResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		Post("/predict")

	if err != nil {
		c.logger.Warn("Rating API unavailable, using local fallback", zap.Error(err))
		return Fallback(req), true, nil
	}
	if resp.IsError() {
		return Rating{}, false, fmt.Errorf("rating api returned status %d", resp.StatusCode())
	}

	c.logger.Info("Rating computed by ML API",
		zap.Float64("score", out.Rating.Score),
	)
	return out.Rating, false, nil
}

// Health 探测评分服务可用性
func (c *Client) Health(ctx context.Context) bool {
	resp, err := c.httpClient.R().SetContext(ctx).Get("/health")
	return err == nil && !resp.IsError()
}

// Fallback 本地评分算式（与 ML 模型同源的启发式惩罚项）
func Fallback(req Request) Rating {
	score := 100.0

	// 重心偏移惩罚
	if req.CenterOfMassOffset > 0.5 {
		score -= math.Pow(req.CenterOfMassOffset, 1.8) * 5
	}

	// 推重比惩罚
	switch {
	case req.ThrustToWeight < 1.2:
		score -= 50
	case req.ThrustToWeight < 1.5:
		score -= 20
	case req.ThrustToWeight > 3.0:
		score -= 10
	}

	// 电机 KV 与桨距匹配度惩罚
	const idealProduct = 12000.0
	actualProduct := float64(req.MotorKV * req.PropellerSize)
	deviation := math.Abs(actualProduct-idealProduct) / idealProduct
	if deviation > 0.2 {
		score -= deviation * 40
	}

	// 桨叶过载惩罚
	maxLoad := float64(req.PropellerSize) * 250 * 1.5
	if req.TotalWeight > maxLoad {
		score -= (req.TotalWeight - maxLoad) / maxLoad * 60
	}

	score = math.Max(0, math.Min(100, score))
	score = math.Round(score*10) / 10

	var label, explanation string
	switch {
	case score < 40:
		label = "Poor"
		explanation = "Unbalanced or underpowered configuration"
	case score < 60:
		label = "Acceptable"
		explanation = "Usable configuration with room for improvement"
	case score < 80:
		label = "Good"
		explanation = "Solid overall configuration"
	default:
		label = "Excellent"
		explanation = "Optimal and stable configuration"
	}

	return Rating{Score: score, Label: label, Explanation: explanation}
}
