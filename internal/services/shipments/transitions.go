package shipments

import "github.com/ShipDesk/ShipDesk/internal/models"

// transitions declares the legal lifecycle graph. delivered and cancelled are
// terminal; a shipment cannot be cancelled once it is out for delivery.
var transitions = map[string][]string{
	models.ShipmentStatusBooked:         {models.ShipmentStatusPickedUp, models.ShipmentStatusCancelled},
	models.ShipmentStatusPickedUp:       {models.ShipmentStatusInTransit, models.ShipmentStatusCancelled},
	models.ShipmentStatusInTransit:      {models.ShipmentStatusOutForDelivery, models.ShipmentStatusCancelled},
	models.ShipmentStatusOutForDelivery: {models.ShipmentStatusDelivered},
	models.ShipmentStatusDelivered:      {},
	models.ShipmentStatusCancelled:      {},
}

func KnownStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
