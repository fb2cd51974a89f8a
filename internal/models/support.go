package models

import "time"

const (
	TicketPriorityLow    = "low"
	TicketPriorityMedium = "medium"
	TicketPriorityHigh   = "high"

	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

type Ticket struct {
	ID          uint64          `json:"id"`
	UserID      uint64          `json:"user_id"`
	Subject     string          `json:"subject"`
	Description string          `json:"description"`
	Priority    string          `json:"priority"`
	Status      string          `json:"status"`
	Messages    []TicketMessage `json:"messages"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type TicketMessage struct {
	ID        uint64    `json:"id"`
	TicketID  uint64    `json:"ticket_id"`
	SenderID  uint64    `json:"sender_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type Feedback struct {
	ID         uint64    `json:"id"`
	UserID     uint64    `json:"user_id"`
	ShipmentID *uint64   `json:"shipment_id,omitempty"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}
