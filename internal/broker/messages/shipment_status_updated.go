package messages

import "time"

// ShipmentStatusUpdated is published after every successful status mutation.
// The worker uses it to rebuild the public tracking snapshot for the code.
type ShipmentStatusUpdated struct {
	ShipmentID   uint64    `json:"shipment_id"`
	TrackingCode string    `json:"tracking_code"`
	Status       string    `json:"status"`
	Location     string    `json:"location,omitempty"`
	Description  string    `json:"description,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}
