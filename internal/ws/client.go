package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/appeals-backend/internal/feed"
	"github.com/ignatzorin/appeals-backend/internal/goroutine"
	"github.com/ignatzorin/appeals-backend/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Encoder превращает снимок в сообщение для клиента.
type Encoder func(snap feed.Snapshot) ([]byte, error)

// Client обслуживает одно WebSocket подключение, привязанное к живой подписке.
type Client struct {
	conn   *websocket.Conn
	hub    *Hub
	uid    string
	sub    *feed.Subscription
	encode Encoder

	closeOnce sync.Once
}

// NewClient создаёт нового клиента.
func NewClient(conn *websocket.Conn, hub *Hub, uid string, sub *feed.Subscription, encode Encoder) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		uid:    uid,
		sub:    sub,
		encode: encode,
	}
}

// Run блокируется, пока клиент не отключится или не отменится ctx.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	goroutine.SafeGo("ws-write", c.writePump)
	c.readPump(ctx)
}

// Close снимает подписку и закрывает соединение. Повторный вызов безопасен.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.sub.Unsubscribe()
		_ = c.conn.Close()
		go c.hub.Unregister(c)
	})
}

func (c *Client) readPump(ctx context.Context) {
	defer c.Close()

	stop := context.AfterFunc(ctx, c.Close)
	defer stop()

	c.conn.SetReadLimit(4 * 1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Клиент только получает снимки, входящие сообщения игнорируются.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Get().WithFields(logrus.Fields{"uid": c.uid, "error": err.Error()}).Debug("ws: соединение оборвано")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case snap, ok := <-c.sub.C():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			payload, err := c.encode(snap)
			if err != nil {
				logger.Get().WithFields(logrus.Fields{"uid": c.uid, "error": err.Error()}).Error("ws: не удалось сериализовать снимок")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
