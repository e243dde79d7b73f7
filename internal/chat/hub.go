// Package chat relays room messages, typing indicators and presence between
// websocket clients. Delivery is best effort: a client that cannot keep up
// is disconnected and nothing is persisted or replayed.
package chat

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	sendBufferSize    = 32
	inboundBufferSize = 256
)

var ErrHubStopped = errors.New("chat hub is not running")

type room struct {
	id       string
	clients  map[*Client]bool
	presence map[int]*presence
	sub      Subscription
}

type presence struct {
	member Member
	conns  int
}

type reply struct {
	client *Client
	event  ServerEvent
}

// Hub owns room membership. All state is touched only by the Run goroutine.
type Hub struct {
	broker   Broker
	logger   *slog.Logger
	upgrader websocket.Upgrader

	register   chan *Client
	unregister chan *Client
	replies    chan reply
	inbound    chan Envelope
	done       chan struct{}

	rooms map[string]*room
}

func NewHub(broker Broker, logger *slog.Logger) *Hub {
	return &Hub{
		broker: broker,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		register:   make(chan *Client),
		unregister: make(chan *Client),
		replies:    make(chan reply, inboundBufferSize),
		inbound:    make(chan Envelope, inboundBufferSize),
		done:       make(chan struct{}),
		rooms:      make(map[string]*room),
	}
}

// Run processes hub events until ctx is cancelled, then disconnects every
// client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case c := <-h.register:
			h.join(c)

		case c := <-h.unregister:
			h.remove(c)

		case r := <-h.replies:
			if rm := h.rooms[r.client.roomID]; rm != nil && rm.clients[r.client] {
				h.sendTo(rm, r.client, r.event)
			}

		case env := <-h.inbound:
			h.dispatch(env)

		case <-ctx.Done():
			for _, rm := range h.rooms {
				for c := range rm.clients {
					close(c.send)
				}
				h.unsubscribe(rm)
			}
			h.rooms = make(map[string]*room)

			return
		}
	}
}

// ServeWS upgrades the request and attaches the connection to roomID as member.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, roomID string, member Member) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		id:     uuid.NewString(),
		roomID: roomID,
		member: member,
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return ErrHubStopped
	}

	go c.writePump()
	go c.readPump()

	return nil
}

func (h *Hub) join(c *Client) {
	rm := h.rooms[c.roomID]
	if rm == nil {
		sub, err := h.broker.Subscribe(c.roomID, h.receive)
		if err != nil {
			h.logger.Error("failed to subscribe to chat room", "room_id", c.roomID, "error", err)
			close(c.send)
			return
		}

		rm = &room{
			id:       c.roomID,
			clients:  make(map[*Client]bool),
			presence: make(map[int]*presence),
			sub:      sub,
		}
		h.rooms[c.roomID] = rm
	}

	rm.clients[c] = true

	h.logger.Debug("chat client joined", "room_id", rm.id, "client_id", c.id, "user_id", c.member.UserID)

	h.sendTo(rm, c, ServerEvent{
		Type:    EventPresence,
		RoomID:  rm.id,
		Members: rm.members(),
		SentAt:  time.Now().UTC(),
	})

	h.publish(c, EventOnline, "")
}

func (h *Hub) remove(c *Client) {
	rm := h.rooms[c.roomID]
	if rm == nil || !rm.clients[c] {
		return
	}

	delete(rm.clients, c)
	close(c.send)

	h.logger.Debug("chat client left", "room_id", rm.id, "client_id", c.id, "user_id", c.member.UserID)

	h.publish(c, EventOffline, "")

	if len(rm.clients) == 0 {
		h.unsubscribe(rm)
		delete(h.rooms, rm.id)
	}
}

func (h *Hub) unsubscribe(rm *room) {
	err := rm.sub.Unsubscribe()
	if err != nil {
		h.logger.Warn("failed to unsubscribe from chat room", "room_id", rm.id, "error", err)
	}
}

// receive is the broker callback. It must not block, envelopes are dropped
// when the hub falls behind.
func (h *Hub) receive(env Envelope) {
	select {
	case h.inbound <- env:
	default:
		h.logger.Warn("chat inbound buffer full, dropping event", "room_id", env.RoomID, "type", env.Event.Type)
	}
}

func (h *Hub) publish(c *Client, t EventType, text string) {
	member := c.member

	env := Envelope{
		RoomID: c.roomID,
		Origin: c.id,
		Event: ServerEvent{
			Type:   t,
			RoomID: c.roomID,
			From:   &member,
			Text:   text,
			SentAt: time.Now().UTC(),
		},
	}

	err := h.broker.Publish(env)
	if err != nil {
		h.logger.Error("failed to publish chat event", "room_id", c.roomID, "type", t, "error", err)
	}
}

func (h *Hub) reply(c *Client, event ServerEvent) {
	select {
	case h.replies <- reply{client: c, event: event}:
	case <-h.done:
	}
}

func (h *Hub) dispatch(env Envelope) {
	rm := h.rooms[env.RoomID]
	if rm == nil || env.Event.From == nil {
		return
	}

	from := *env.Event.From

	switch env.Event.Type {
	case EventMessage:
		h.broadcast(rm, env.Event, "")

	case EventTyping, EventStopTyping:
		h.broadcast(rm, env.Event, env.Origin)

	case EventOnline:
		p := rm.presence[from.UserID]
		if p == nil {
			p = &presence{member: from}
			rm.presence[from.UserID] = p
		}
		p.conns++

		if p.conns == 1 {
			h.broadcast(rm, env.Event, env.Origin)
		}

	case EventOffline:
		p := rm.presence[from.UserID]
		if p == nil {
			return
		}
		p.conns--

		if p.conns <= 0 {
			delete(rm.presence, from.UserID)
			h.broadcast(rm, env.Event, env.Origin)
		}
	}
}

// broadcast delivers event to every client of rm except the one whose id is
// exclude. Clients with a full send buffer are dropped.
func (h *Hub) broadcast(rm *room, event ServerEvent, exclude string) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode chat event", "error", err)
		return
	}

	for c := range rm.clients {
		if c.id == exclude {
			continue
		}

		h.deliver(c, data)
	}
}

func (h *Hub) sendTo(rm *room, c *Client, event ServerEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode chat event", "error", err)
		return
	}

	if rm.clients[c] {
		h.deliver(c, data)
	}
}

func (h *Hub) deliver(c *Client, data []byte) {
	select {
	case c.send <- data:
	default:
		h.logger.Warn("chat client send buffer full, disconnecting", "room_id", c.roomID, "client_id", c.id)
		h.remove(c)
	}
}

func (rm *room) members() []Member {
	seen := make(map[int]bool)
	var members []Member

	for _, p := range rm.presence {
		seen[p.member.UserID] = true
		members = append(members, p.member)
	}

	for c := range rm.clients {
		if !seen[c.member.UserID] {
			seen[c.member.UserID] = true
			members = append(members, c.member)
		}
	}

	slices.SortFunc(members, func(a, b Member) int {
		return cmp.Compare(a.UserID, b.UserID)
	})

	return members
}
