package chat

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Client is one websocket connection joined to one room.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	id     string
	roomID string
	member Member
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Debug("chat connection closed", "client_id", c.id, "error", err)
			}
			return
		}

		var event ClientEvent

		err = json.Unmarshal(data, &event)
		if err != nil {
			c.sendError("invalid event format")
			continue
		}

		c.handle(event)
	}
}

func (c *Client) handle(event ClientEvent) {
	switch event.Type {
	case EventMessage:
		text := strings.TrimSpace(event.Text)

		switch {
		case text == "":
			c.sendError("message text must not be empty")
		case len(text) > maxTextLength:
			c.sendError("message text is too long")
		default:
			c.hub.publish(c, EventMessage, text)
		}

	case EventTyping, EventStopTyping:
		c.hub.publish(c, event.Type, "")

	default:
		c.sendError("unknown event type: " + string(event.Type))
	}
}

func (c *Client) sendError(msg string) {
	c.hub.reply(c, ServerEvent{
		Type:   EventError,
		RoomID: c.roomID,
		Error:  msg,
		SentAt: time.Now().UTC(),
	})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			err := c.conn.WriteMessage(websocket.TextMessage, data)
			if err != nil {
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
