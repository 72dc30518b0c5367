package hub

import (
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second    // 单条消息写入超时
	pongWait       = 60 * time.Second    // 等待对端 pong 的最长时间
	pingPeriod     = (pongWait * 9) / 10 // 协议层 ping 周期，必须小于 pongWait
	maxMessageSize = 512                 // 对端消息大小上限
	sendBufferSize = 256                 // 出站消息缓冲，写满视为投递失败
)

var errSubscriberGone = errors.New("subscriber closed or send buffer full")

// Client websocket 订阅者：hub 与底层连接之间的中间层
// 写协程独占连接写入；Deliver 只向缓冲投递，慢连接不会阻塞广播
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	closed atomic.Bool
	logger *zap.Logger
}

// NewClient 包装一条已升级的 websocket 连接
func NewClient(h *Hub, conn *websocket.Conn, logger *zap.Logger) *Client {
	return &Client{
		id:     uuid.NewString(),
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger,
	}
}

func (c *Client) ID() string { return c.id }

func (c *Client) Alive() bool { return !c.closed.Load() }

// Deliver 投递一条出站消息（非阻塞）
func (c *Client) Deliver(message []byte) error {
	if c.closed.Load() {
		return errSubscriberGone
	}
	select {
	case c.send <- message:
		return nil
	default:
		return errSubscriberGone
	}
}

// Close 标记关闭并断开底层连接
func (c *Client) Close() {
	if c.closed.CompareAndSwap(false, true) {
		c.conn.Close()
	}
}

// Start 启动读写协程
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump 读取对端消息；连接断开时负责从 hub 注销
func (c *Client) readPump() {
	defer func() {
		c.Close()
		c.hub.Unregister(c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("Websocket read error",
					zap.String("subscriber_id", c.id),
					zap.Error(err),
				)
			}
			return
		}
		c.handleMessage(message)
	}
}

// handleMessage 处理对端消息：目前只响应应用层心跳，无任何状态副作用
func (c *Client) handleMessage(message []byte) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &probe); err != nil {
		return
	}
	if probe.Type == "ping" {
		reply, _ := json.Marshal(Envelope{
			Type:      EventPong,
			Timestamp: time.Now().UnixMilli(),
		})
		_ = c.Deliver(reply)
	}
}

// writePump 将缓冲中的消息写入连接，并定期发送协议层 ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
