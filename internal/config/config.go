package config

import (
	"os"
	"strconv"
	"time"
)

// Config 遥测中继服务配置
type Config struct {
	HTTP struct {
		Addr string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
		// Enabled 为 true 时，feed 控制器使用外部轮询模式
		Enabled bool
	}

	// 遥测数据配置
	Telemetry struct {
		StoreCapacity int // 环形缓冲区容量，默认 100
		AlertCapacity int // 报警历史容量，默认 50
	}

	// Feed 控制器配置
	Feed struct {
		LiveKey      string        // 外部缓存的实时数据键，如 "drone:live"
		SimInterval  time.Duration // 模拟数据生成间隔，默认 100ms
		PollInterval time.Duration // 外部缓存轮询间隔，默认 200ms
	}

	// 倾角监控配置
	Monitor struct {
		MaxInclination float64 // 最大倾角（度），超过则产生报警，默认 45
	}

	// 评分代理配置
	Rating struct {
		BaseURL string        // ML 评分服务地址
		Timeout time.Duration // 请求超时
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 从环境变量加载配置（带默认值）
func Load() *Config {
	cfg := &Config{}

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":3000")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)
	// 与原部署一致：配置了 Redis 地址即启用外部轮询
	cfg.Redis.Enabled = cfg.Redis.Addr != ""

	cfg.Telemetry.StoreCapacity = getEnvInt("TELEMETRY_STORE_CAPACITY", 100)
	cfg.Telemetry.AlertCapacity = getEnvInt("ALERT_LOG_CAPACITY", 50)

	cfg.Feed.LiveKey = getEnv("REDIS_LIVE_KEY", "drone:live")
	cfg.Feed.SimInterval = getEnvDuration("SIM_INTERVAL", 100*time.Millisecond)
	cfg.Feed.PollInterval = getEnvDuration("POLL_INTERVAL", 200*time.Millisecond)

	cfg.Monitor.MaxInclination = getEnvFloat("MAX_INCLINATION", 45.0)

	cfg.Rating.BaseURL = getEnv("RATING_API_URL", "http://localhost:5001")
	cfg.Rating.Timeout = getEnvDuration("RATING_TIMEOUT", 5*time.Second)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
