package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hilthontt/quorum/internal/domain"
)

// sendBuffer bounds the per-client outbound queue; a full buffer means the
// client is too slow and messages get dropped for it.
const sendBuffer = 64

// Router dispatches a client's lifecycle and commands to a room service.
// Connected registers the client with the hub and admits it to the room; on
// error the client has already been detached again and must not be pumped.
type Router interface {
	Connected(ctx context.Context, c *Client) error
	Handle(ctx context.Context, c *Client, cmd Command)
	Disconnected(ctx context.Context, c *Client)
}

type Client struct {
	hub  *Hub
	conn *connWrapper
	send chan *Message

	// room is the hub key this client was registered under; set by Hub.Add.
	room string

	mu     sync.Mutex
	closed bool

	RoomID string
	UserID string
	Name   string

	log *zap.SugaredLogger
}

func NewClient(hub *Hub, conn *websocket.Conn, roomID, userID, name string, log *zap.SugaredLogger) *Client {
	return &Client{
		hub:    hub,
		conn:   newConnWrapper(conn),
		send:   make(chan *Message, sendBuffer),
		RoomID: roomID,
		UserID: userID,
		Name:   name,
		log:    log,
	}
}

// Send queues a message for this client only. Non-blocking, and a no-op once
// the client was detached; a command already in flight when its room closes
// must not be able to crash the process.
func (c *Client) Send(msg *Message) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- msg:
	default:
		c.log.Warnw("client buffer full, dropping message", "roomID", c.RoomID, "userID", c.UserID)
	}
}

// closeSend closes the outbound queue exactly once. Only the hub calls this.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ReadPump decodes inbound frames and hands them to the router. It owns the
// disconnect path: when the read loop ends the client is removed from the
// hub and the router gets a chance to drop the participant.
func (c *Client) ReadPump(router Router) {
	defer func() {
		c.hub.Remove(c)
		router.Disconnected(context.Background(), c)
		_ = c.conn.Close()
	}()

	for {
		raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debugw("websocket read error", "roomID", c.RoomID, "userID", c.UserID, "error", err)
			}
			break
		}

		var cmd Command
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.Send(NewException(fmt.Errorf("%w: malformed frame", domain.ErrInvalidInput)))
			continue
		}

		router.Handle(context.Background(), c, cmd)
	}
}

// WritePump drains the send channel onto the wire until the channel closes
// or a write fails.
func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			c.log.Debugw("websocket write error", "roomID", c.RoomID, "userID", c.UserID, "error", err)
			break
		}
	}
}
