// Package hub keeps the set of connected staff sessions, grouped by role, and
// fans order events out to every member of a group.
//
// Delivery is at-most-once per member that is connected when the broadcast
// runs. Members that left earlier get nothing and nothing is replayed.
package hub

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"bakery/internal/models"
)

// GroupChefs is the group every admitted chef session joins.
const GroupChefs = "chefs"

// DefaultBufferSize is the default per-member outbound frame buffer.
const DefaultBufferSize = 64

// Member is one connected session that can receive encoded frames.
// Deliver must not block; it reports false when the frame was dropped.
type Member interface {
	ID() string
	Deliver(payload []byte) bool
}

type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[string]Member

	logger     *slog.Logger
	bufferSize int

	delivered atomic.Int64
	dropped   atomic.Int64
}

// Option configures a Hub.
type Option func(*Hub)

// WithBufferSize sets the outbound buffer of sessions created by the hub.
func WithBufferSize(size int) Option {
	return func(h *Hub) {
		if size > 0 {
			h.bufferSize = size
		}
	}
}

func New(logger *slog.Logger, opts ...Option) *Hub {
	h := &Hub{
		groups:     make(map[string]map[string]Member),
		logger:     logger.With("component", "hub"),
		bufferSize: DefaultBufferSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Join adds the member to the group. A member with the same ID is replaced.
func (h *Hub) Join(group string, m Member) {
	h.mu.Lock()
	members, ok := h.groups[group]
	if !ok {
		members = make(map[string]Member)
		h.groups[group] = members
	}
	members[m.ID()] = m
	size := len(members)
	h.mu.Unlock()

	h.logger.Info("member joined", "group", group, "member_id", m.ID(), "group_size", size)
}

// Leave removes the member from the group. Unknown IDs are ignored.
func (h *Hub) Leave(group, memberID string) {
	h.mu.Lock()
	members, ok := h.groups[group]
	if ok {
		delete(members, memberID)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	size := len(members)
	h.mu.Unlock()

	if ok {
		h.logger.Info("member left", "group", group, "member_id", memberID, "group_size", size)
	}
}

// Size returns the number of members currently in the group.
func (h *Hub) Size(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

// Broadcast encodes the frame once and hands it to every current member of
// the group. It returns how many members accepted the frame.
func (h *Hub) Broadcast(group string, frame Frame) int {
	payload, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("failed to encode frame", "type", frame.Type, "error", err)
		return 0
	}

	h.mu.RLock()
	members := make([]Member, 0, len(h.groups[group]))
	for _, m := range h.groups[group] {
		members = append(members, m)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, m := range members {
		if m.Deliver(payload) {
			delivered++
			continue
		}
		h.dropped.Add(1)
		h.logger.Warn("frame dropped", "group", group, "member_id", m.ID(), "type", frame.Type)
	}
	h.delivered.Add(int64(delivered))

	h.logger.Debug("frame broadcast", "group", group, "type", frame.Type, "order_id", frame.OrderID,
		"delivered", delivered, "members", len(members))
	return delivered
}

// BroadcastStatusUpdated fans a status_updated event out to the chefs group.
func (h *Hub) BroadcastStatusUpdated(orderID uint, status models.OrderStatus, updatedBy string) int {
	return h.Broadcast(GroupChefs, Frame{
		Type:      FrameStatusUpdated,
		OrderID:   orderID,
		Status:    string(status),
		UpdatedBy: updatedBy,
	})
}

// BroadcastNewOrder fans a new_order event carrying the order payload out to
// the chefs group.
func (h *Hub) BroadcastNewOrder(orderID uint, orderData any) int {
	data, err := json.Marshal(orderData)
	if err != nil {
		h.logger.Error("failed to encode order data", "order_id", orderID, "error", err)
		return 0
	}
	return h.Broadcast(GroupChefs, Frame{
		Type:      FrameNewOrder,
		OrderID:   orderID,
		OrderData: data,
	})
}

// Stats contains hub counters.
type Stats struct {
	Groups    int   `json:"groups"`
	Members   int   `json:"members"`
	Delivered int64 `json:"delivered"`
	Dropped   int64 `json:"dropped"`
}

func (h *Hub) Stats() Stats {
	h.mu.RLock()
	members := 0
	for _, group := range h.groups {
		members += len(group)
	}
	groups := len(h.groups)
	h.mu.RUnlock()

	return Stats{
		Groups:    groups,
		Members:   members,
		Delivered: h.delivered.Load(),
		Dropped:   h.dropped.Load(),
	}
}
