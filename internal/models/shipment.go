package models

import "time"

// Жизненный цикл отправления. Переходы ограничены таблицей в services/shipments.
const (
	ShipmentStatusBooked         = "booked"
	ShipmentStatusPickedUp       = "picked_up"
	ShipmentStatusInTransit      = "in_transit"
	ShipmentStatusOutForDelivery = "out_for_delivery"
	ShipmentStatusDelivered      = "delivered"
	ShipmentStatusCancelled      = "cancelled"
)

const (
	PaymentMethodCOD    = "cod"
	PaymentMethodOnline = "online"
	PaymentMethodCard   = "card"
	PaymentMethodUPI    = "upi"
	PaymentMethodWallet = "wallet"
)

type Shipment struct {
	ID                 uint64    `json:"id"`
	TrackingCode       string    `json:"tracking_code"`
	SenderID           uint64    `json:"sender_id"`
	ReceiverName       string    `json:"receiver_name"`
	ReceiverPhone      string    `json:"receiver_phone"`
	ReceiverAddress    string    `json:"receiver_address"`
	PackageDescription string    `json:"package_description"`
	Weight             float64   `json:"weight"`
	Dimensions         string    `json:"dimensions"`
	PickupAddress      string    `json:"pickup_address"`
	DeliveryAddress    string    `json:"delivery_address"`
	Cost               float64   `json:"cost"`
	PaymentMethod      string    `json:"payment_method"`
	PaymentSettled     bool      `json:"payment_settled"`
	Status             string    `json:"status"`
	AssignedCourierID  *uint64   `json:"assigned_courier_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TrackingEvent — запись append-only журнала. Никогда не обновляется и не удаляется.
type TrackingEvent struct {
	ID          uint64    `json:"id"`
	ShipmentID  uint64    `json:"shipment_id"`
	Status      string    `json:"status"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

type ShipmentCreateInput struct {
	ReceiverName       string
	ReceiverPhone      string
	ReceiverAddress    string
	PackageDescription string
	Weight             float64
	Dimensions         string
	PickupAddress      string
	DeliveryAddress    string
	PaymentMethod      string
}
