package chat

import "time"

type EventType string

const (
	EventMessage    EventType = "message"
	EventTyping     EventType = "typing"
	EventStopTyping EventType = "stopTyping"
	EventOnline     EventType = "online"
	EventOffline    EventType = "offline"
	EventPresence   EventType = "presence"
	EventError      EventType = "error"
)

const maxTextLength = 1000

// ClientEvent is what a browser sends over the socket.
type ClientEvent struct {
	Type EventType `json:"type"`
	Text string    `json:"text,omitempty"`
}

type Member struct {
	UserID int    `json:"userId"`
	Name   string `json:"name"`
}

// ServerEvent is what the server pushes to browsers.
type ServerEvent struct {
	Type    EventType `json:"type"`
	RoomID  string    `json:"roomId,omitempty"`
	From    *Member   `json:"from,omitempty"`
	Text    string    `json:"text,omitempty"`
	Members []Member  `json:"members,omitempty"`
	Error   string    `json:"error,omitempty"`
	SentAt  time.Time `json:"sentAt"`
}

// Envelope is the unit relayed between hubs through a Broker. Origin is the
// id of the client connection that produced the event.
type Envelope struct {
	RoomID string      `json:"roomId"`
	Origin string      `json:"origin"`
	Event  ServerEvent `json:"event"`
}
