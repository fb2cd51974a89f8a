package models

import "time"

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment — ровно одна запись на отправление (unique по shipment_id).
type Payment struct {
	ID            uint64     `json:"id"`
	ShipmentID    uint64     `json:"shipment_id"`
	Amount        float64    `json:"amount"`
	Method        string     `json:"payment_method"`
	Status        string     `json:"payment_status"`
	TransactionID string     `json:"transaction_id,omitempty"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
