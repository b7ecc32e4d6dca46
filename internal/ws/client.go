package ws

import (
	"encoding/json"
	"sync"
	"time"

	"economy_server/internal/domain"
	"economy_server/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 256
)

type Client struct {
	Player domain.Player
	Conn   *websocket.Conn
	Hub    *Hub

	send   chan []byte
	mu     sync.Mutex
	closed bool
	Done   chan struct{}
}

func NewClient(p domain.Player, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		Player: p,
		Conn:   conn,
		Hub:    hub,
		send:   make(chan []byte, sendBuffer),
		Done:   make(chan struct{}),
	}
}

// enqueue reports false if the message could not be queued.
func (c *Client) enqueue(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) sendJSON(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.enqueue(msg)
}

// Run registers the client, serves it until the connection drops and then
// unregisters it.
func (c *Client) Run() {
	go c.writePump()

	session := c.Hub.Register(c)
	c.sendJSON(ReadyPayload{Type: MsgReady, Session: session})

	c.readPump()
	c.Hub.Unregister(c)
	close(c.Done)
}

// read
func (c *Client) readPump() {
	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "player_id", c.Player.ID, "error", err)
			}
			return
		}
		var in InboundMessage
		if err := json.Unmarshal(msg, &in); err != nil {
			c.sendJSON(ErrorPayload{Type: MsgError, Message: "invalid message"})
			continue
		}
		switch in.Type {
		case MsgPing:
			c.sendJSON(InboundMessage{Type: MsgPong})
		default:
			c.sendJSON(ErrorPayload{Type: MsgError, Message: "unknown message type"})
		}
	}
}

// write
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write error", "player_id", c.Player.ID, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
