package hub

import "encoding/json"

// Frame types on the chef connection.
const (
	FrameStatusUpdate  = "status_update"  // inbound
	FrameStatusUpdated = "status_updated" // outbound
	FrameNewOrder      = "new_order"      // outbound
	FrameError         = "error"          // outbound, sender only
)

// Frame is an outbound message.
type Frame struct {
	Type      string          `json:"type"`
	OrderID   uint            `json:"order_id"`
	Status    string          `json:"status,omitempty"`
	UpdatedBy string          `json:"updated_by,omitempty"`
	OrderData json.RawMessage `json:"order_data,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// InboundMessage is a message sent by a chef client.
type InboundMessage struct {
	Type    string `json:"type"`
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}
