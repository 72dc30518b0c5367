package hub

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"drone-telemetry/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSubscriber 测试用订阅者
type fakeSubscriber struct {
	mu       sync.Mutex
	id       string
	alive    bool
	failNext bool
	received [][]byte
	closed   bool
}

func newFakeSubscriber(id string) *fakeSubscriber {
	return &fakeSubscriber{id: id, alive: true}
}

func (f *fakeSubscriber) ID() string { return f.id }

func (f *fakeSubscriber) Alive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alive
}

func (f *fakeSubscriber) Deliver(message []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return errors.New("delivery failed")
	}
	f.received = append(f.received, message)
	return nil
}

func (f *fakeSubscriber) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.alive = false
}

func (f *fakeSubscriber) messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.received
}

func TestHub_RegisterUnregister(t *testing.T) {
	h := NewHub(zap.NewNop())

	sub := newFakeSubscriber("sub-1")
	h.Register(sub)
	assert.Equal(t, 1, h.SubscriberCount())

	h.Unregister("sub-1")
	assert.Equal(t, 0, h.SubscriberCount())

	// 重复注销无副作用
	h.Unregister("sub-1")
	assert.Equal(t, 0, h.SubscriberCount())
}

func TestHub_Publish_NotifiesAllSubscribers(t *testing.T) {
	h := NewHub(zap.NewNop())

	a := newFakeSubscriber("a")
	b := newFakeSubscriber("b")
	h.Register(a)
	h.Register(b)

	notified := h.PublishTelemetry(models.TelemetrySample{Pitch: 10, Roll: -5, Yaw: 200})

	assert.Equal(t, 2, notified)
	require.Len(t, a.messages(), 1)
	require.Len(t, b.messages(), 1)

	// 消息带事件类型和分发时间戳
	var env Envelope
	require.NoError(t, json.Unmarshal(a.messages()[0], &env))
	assert.Equal(t, EventTelemetry, env.Type)
	assert.NotZero(t, env.Timestamp)
}

func TestHub_Publish_FailedSubscriberIsolatedAndRemoved(t *testing.T) {
	h := NewHub(zap.NewNop())

	a := newFakeSubscriber("a")
	b := newFakeSubscriber("b")
	c := newFakeSubscriber("c")
	b.failNext = true
	h.Register(a)
	h.Register(b)
	h.Register(c)

	notified := h.PublishAlert(models.AlertEvent{ID: "x", Message: "test"})

	// 一个订阅者投递失败不影响其他订阅者
	assert.Equal(t, 2, notified)
	assert.Len(t, a.messages(), 1)
	assert.Len(t, c.messages(), 1)

	// 投递失败的订阅者被移除
	assert.Equal(t, 2, h.SubscriberCount())
}

func TestHub_Publish_SkipsClosedSubscriberWithoutRemoval(t *testing.T) {
	h := NewHub(zap.NewNop())

	open := newFakeSubscriber("open")
	closed := newFakeSubscriber("closed")
	closed.alive = false
	h.Register(open)
	h.Register(closed)

	notified := h.PublishTelemetry(models.TelemetrySample{Pitch: 1})

	// 非活跃订阅者跳过：不计数，也不由 Publish 移除（清理属于其生命周期钩子）
	assert.Equal(t, 1, notified)
	assert.Equal(t, 2, h.SubscriberCount())
	assert.Empty(t, closed.messages())
}

func TestHub_Publish_NoSubscribers(t *testing.T) {
	h := NewHub(zap.NewNop())

	notified := h.PublishTelemetry(models.TelemetrySample{Pitch: 1})

	assert.Equal(t, 0, notified)
}

func TestHub_CloseAll(t *testing.T) {
	h := NewHub(zap.NewNop())

	a := newFakeSubscriber("a")
	b := newFakeSubscriber("b")
	h.Register(a)
	h.Register(b)

	h.CloseAll()

	assert.Equal(t, 0, h.SubscriberCount())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestHub_PublishAlert_EnvelopeCarriesAlert(t *testing.T) {
	h := NewHub(zap.NewNop())
	sub := newFakeSubscriber("a")
	h.Register(sub)

	angle := 47.5
	h.PublishAlert(models.AlertEvent{
		ID:       "alert-1",
		Severity: models.SeverityDanger,
		Message:  "over limit",
		Angle:    &angle,
		Type:     models.AlertTypeMaxInclination,
	})

	require.Len(t, sub.messages(), 1)

	var env struct {
		Type string            `json:"type"`
		Data models.AlertEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(sub.messages()[0], &env))
	assert.Equal(t, EventAlert, env.Type)
	assert.Equal(t, "alert-1", env.Data.ID)
	assert.Equal(t, models.SeverityDanger, env.Data.Severity)
	require.NotNil(t, env.Data.Angle)
	assert.Equal(t, 47.5, *env.Data.Angle)
}
