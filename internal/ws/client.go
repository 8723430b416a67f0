package ws

import (
	"encoding/json"
	"time"

	"taskboard/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	sendBuffer = 64
)

type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub
	Done chan struct{}
}

func NewClient(id string, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		ID:   id,
		Conn: conn,
		Send: make(chan []byte, sendBuffer),
		Hub:  hub,
		Done: make(chan struct{}),
	}
}

// Join queues the ready handshake and the snapshot, then registers with the
// hub. Called while the source is locked so no event can fall between the
// snapshot and registration.
func (c *Client) Join(snapshot []byte) bool {
	c.Send <- []byte(`{"type":"ready"}`)
	if snapshot != nil {
		c.Send <- snapshot
	}
	if !c.Hub.Register(c) {
		close(c.Done)
		return false
	}
	return true
}

// Run pumps messages until the connection goes away. The client must have
// joined the hub.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
		close(c.Done)
	}()

	c.Conn.SetReadLimit(4096)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("ws read error", "client", c.ID, "error", err)
			}
			return
		}

		var in InboundMessage
		if err := json.Unmarshal(msg, &in); err != nil {
			c.reply(ErrorMessage{Type: MsgError, Message: "invalid message"})
			continue
		}
		switch in.Type {
		case MsgPing:
			c.reply(InboundMessage{Type: MsgPong})
		default:
			// the feed is read-only
			c.reply(ErrorMessage{Type: MsgError, Message: "unsupported message type"})
		}
	}
}

func (c *Client) reply(v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	c.Hub.SendTo(c, b)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("ws write error", "client", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
