package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Broker fans room envelopes out to every hub subscribed to the room,
// including the publishing one.
type Broker interface {
	Publish(env Envelope) error
	Subscribe(roomID string, handler func(Envelope)) (Subscription, error)
	Close() error
}

type Subscription interface {
	Unsubscribe() error
}

const subjectPrefix = "chat.rooms."

const MaxRoomIDLength = 64

var ErrInvalidRoomID = errors.New("invalid chat room ID")

// Room IDs become a single NATS subject token, so wildcards, dots and
// whitespace are not allowed.
var roomIDRgx = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func ValidRoomID(roomID string) bool {
	return roomIDRgx.MatchString(roomID)
}

func roomSubject(roomID string) string {
	return subjectPrefix + roomID
}

type NATSBroker struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewNATSBroker(url string, logger *slog.Logger) (*NATSBroker, error) {
	opts := []nats.Option{
		nats.Name("event-ticketing-chat"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Error("nats error", "error", err)
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}

	return &NATSBroker{conn: conn, logger: logger}, nil
}

func (b *NATSBroker) Publish(env Envelope) error {
	if !ValidRoomID(env.RoomID) {
		return fmt.Errorf("%w: %q", ErrInvalidRoomID, env.RoomID)
	}

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	return b.conn.Publish(roomSubject(env.RoomID), data)
}

func (b *NATSBroker) Subscribe(roomID string, handler func(Envelope)) (Subscription, error) {
	if !ValidRoomID(roomID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRoomID, roomID)
	}

	sub, err := b.conn.Subscribe(roomSubject(roomID), func(msg *nats.Msg) {
		var env Envelope

		err := json.Unmarshal(msg.Data, &env)
		if err != nil {
			b.logger.Warn("dropping malformed chat envelope", "subject", msg.Subject, "error", err)
			return
		}

		handler(env)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to room %s: %w", roomID, err)
	}

	err = b.conn.Flush()
	if err != nil {
		sub.Unsubscribe()
		return nil, fmt.Errorf("failed to subscribe to room %s: %w", roomID, err)
	}

	return sub, nil
}

func (b *NATSBroker) Close() error {
	return b.conn.Drain()
}

// LocalBroker delivers envelopes in-process. It is used when the service runs
// as a single instance.
type LocalBroker struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func(Envelope)
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subs: make(map[string]map[int]func(Envelope))}
}

func (b *LocalBroker) Publish(env Envelope) error {
	b.mu.RLock()
	handlers := make([]func(Envelope), 0, len(b.subs[env.RoomID]))
	for _, h := range b.subs[env.RoomID] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(env)
	}

	return nil
}

func (b *LocalBroker) Subscribe(roomID string, handler func(Envelope)) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID

	if b.subs[roomID] == nil {
		b.subs[roomID] = make(map[int]func(Envelope))
	}
	b.subs[roomID][id] = handler

	return &localSubscription{broker: b, roomID: roomID, id: id}, nil
}

func (b *LocalBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = make(map[string]map[int]func(Envelope))

	return nil
}

type localSubscription struct {
	broker *LocalBroker
	roomID string
	id     int
}

func (s *localSubscription) Unsubscribe() error {
	s.broker.mu.Lock()
	defer s.broker.mu.Unlock()

	delete(s.broker.subs[s.roomID], s.id)
	if len(s.broker.subs[s.roomID]) == 0 {
		delete(s.broker.subs, s.roomID)
	}

	return nil
}
