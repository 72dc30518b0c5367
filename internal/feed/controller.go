package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"drone-telemetry/internal/models"

	"go.uber.org/zap"
)

// Mode feed 运行模式，同一时刻只有一种
type Mode string

const (
	ModeStopped         Mode = "stopped"
	ModeSimulating      Mode = "simulating"
	ModeExternalPolling Mode = "external-polling"
)

// 状态冲突（非致命，调用方带当前状态返回给客户端）
var (
	ErrAlreadyRunning = errors.New("feed already running")
	ErrAlreadyStopped = errors.New("feed already stopped")
)

// Ingestor 每个成功 tick 的落地路径：先入库再广播（由 service 层实现）
type Ingestor interface {
	Ingest(sample models.TelemetrySample) (models.TelemetrySample, int)
}

// Controller feed 模式控制器
// 状态机 {Stopped, Simulating, ExternalPolling}；check-then-act 全程持锁，
// 并发 toggle 不会产生双启动或双停止
type Controller struct {
	mu     sync.Mutex
	mode   Mode
	cancel context.CancelFunc
	done   chan struct{}

	sim          Source
	external     Source // nil 表示未配置外部缓存
	simInterval  time.Duration
	pollInterval time.Duration

	ingestor Ingestor
	logger   *zap.Logger
	busy     atomic.Bool // tick 在途标记：慢拉取时跳过后续 tick 而不是排队
}

// NewController 创建 feed 控制器
// external 为 nil 时 Start 进入模拟模式，否则进入外部轮询模式
func NewController(sim Source, external Source, simInterval, pollInterval time.Duration, ingestor Ingestor, logger *zap.Logger) *Controller {
	return &Controller{
		mode:         ModeStopped,
		sim:          sim,
		external:     external,
		simInterval:  simInterval,
		pollInterval: pollInterval,
		ingestor:     ingestor,
		logger:       logger,
	}
}

// Start 启动周期性采集；已在运行时返回 ErrAlreadyRunning
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.startLocked()
}

// Stop 停止采集；未在运行时返回 ErrAlreadyStopped
// 返回后不再有新数据入库（在途 tick 允许完成，但不会调度下一个）
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked()
}

// Toggle 按当前状态启停，返回操作后的运行状态
func (c *Controller) Toggle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == ModeStopped {
		_ = c.startLocked()
	} else {
		_ = c.stopLocked()
	}
	return c.mode != ModeStopped
}

// Mode 当前模式
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Running 是否在运行
func (c *Controller) Running() bool {
	return c.Mode() != ModeStopped
}

func (c *Controller) startLocked() error {
	if c.mode != ModeStopped {
		return ErrAlreadyRunning
	}

	source := c.sim
	interval := c.simInterval
	mode := ModeSimulating
	if c.external != nil {
		source = c.external
		interval = c.pollInterval
		mode = ModeExternalPolling
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	c.mode = mode

	go c.run(ctx, source, interval, done)

	c.logger.Info("Feed started",
		zap.String("mode", string(mode)),
		zap.Duration("interval", interval),
	)
	return nil
}

func (c *Controller) stopLocked() error {
	if c.mode == ModeStopped {
		return ErrAlreadyStopped
	}

	c.cancel()
	<-c.done
	c.cancel = nil
	c.done = nil
	c.mode = ModeStopped

	c.logger.Info("Feed stopped")
	return nil
}

// run 采集循环：定时器触发时执行一个 tick，循环退出由 ctx 控制
// 退出前等待在途 tick 结束，保证 Stop 返回后不再有数据入库
func (c *Controller) run(ctx context.Context, source Source, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.busy.CompareAndSwap(false, true) {
				// 上一个 tick 还在途（外部拉取可能阻塞），跳过本次
				continue
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer c.busy.Store(false)
				c.tick(ctx, source)
			}()
		}
	}
}

// tick 单次采集：拉取 → 入库 → 广播（入库失败不会广播，顺序保证）
func (c *Controller) tick(ctx context.Context, source Source) {
	sample, err := source.Next(ctx)
	if err != nil {
		// 外部缓存短暂不可用属于预期情况，下个 tick 重试
		c.logger.Debug("Feed tick skipped", zap.Error(err))
		return
	}
	if sample == nil {
		return
	}
	if ctx.Err() != nil {
		// 已停止：在途 tick 不再入库
		return
	}

	c.ingestor.Ingest(*sample)
}
