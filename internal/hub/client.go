package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"sync"

	"bakery/internal/models"
	"bakery/internal/services"

	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"
)

// StatusUpdater applies a status change requested over a chef connection.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, orderID uint, status string, actor *models.User) (*models.StatusChange, error)
}

// Client is a websocket session of an authenticated staff user.
type Client struct {
	id     string
	user   *models.User
	conn   net.Conn
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	send   chan []byte
	done   chan struct{}
}

// NewClient wraps an upgraded connection and starts its writer goroutine.
// Callers must Close the client.
func NewClient(conn net.Conn, user *models.User, bufferSize int, logger *slog.Logger) *Client {
	id := uuid.NewString()
	c := &Client{
		id:     id,
		user:   user,
		conn:   conn,
		logger: logger.With("member_id", id, "username", user.Username),
		send:   make(chan []byte, bufferSize),
		done:   make(chan struct{}),
	}
	go c.writePump()
	return c
}

func (c *Client) ID() string { return c.id }

func (c *Client) User() *models.User { return c.user }

// Deliver queues the payload without blocking. A full buffer or a closed
// client drops it.
func (c *Client) Deliver(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// Close stops the writer and closes the connection. Safe to call twice.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	c.conn.Close()
	<-c.done
}

// writePump is the only writer of the connection.
func (c *Client) writePump() {
	defer close(c.done)
	for payload := range c.send {
		if err := wsutil.WriteServerText(c.conn, payload); err != nil {
			c.logger.Debug("write failed, closing connection", "error", err)
			c.conn.Close()
			// drain so Deliver never blocks on a dead writer
			for range c.send {
			}
			return
		}
	}
}

// ServeChef admits an already authenticated chef connection to the chefs
// group and processes its inbound frames until the connection ends.
// Membership is always released on return.
func (h *Hub) ServeChef(ctx context.Context, conn net.Conn, user *models.User, updater StatusUpdater) {
	client := NewClient(conn, user, h.bufferSize, h.logger)

	h.Join(GroupChefs, client)
	defer func() {
		h.Leave(GroupChefs, client.ID())
		client.Close()
	}()

	for {
		data, err := wsutil.ReadClientText(conn)
		if err != nil {
			client.logger.Debug("connection closed", "error", err)
			return
		}
		h.handleInbound(ctx, client, data, updater)
	}
}

func (h *Hub) handleInbound(ctx context.Context, client *Client, data []byte, updater StatusUpdater) {
	var msg InboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		client.logger.Debug("ignoring undecodable frame", "error", err)
		return
	}

	switch msg.Type {
	case FrameStatusUpdate:
		// The update must finish even if the connection drops mid-call.
		opCtx := context.WithoutCancel(ctx)
		if _, err := updater.UpdateStatus(opCtx, msg.OrderID, msg.Status, client.User()); err != nil {
			client.logger.Info("status update rejected", "order_id", msg.OrderID, "status", msg.Status, "error", err)
			payload, encErr := json.Marshal(Frame{Type: FrameError, OrderID: msg.OrderID, Message: services.ClientMessage(err)})
			if encErr == nil {
				client.Deliver(payload)
			}
		}
	default:
		// unknown types are tolerated
	}
}
