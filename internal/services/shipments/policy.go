package shipments

import "github.com/ShipDesk/ShipDesk/internal/models"

// Authorization is decided in one place instead of per handler: the actor's
// role plus ownership of the resource.

// canView: customers see their own shipments, couriers their assignments,
// admins everything.
func canView(actor models.Actor, sh *models.Shipment) bool {
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleCourier:
		return sh.AssignedCourierID != nil && *sh.AssignedCourierID == actor.ID
	default:
		return sh.SenderID == actor.ID
	}
}

func canUpdateStatus(actor models.Actor) bool {
	return actor.Role == models.RoleCourier || actor.Role == models.RoleAdmin
}

func canAssignCourier(actor models.Actor) bool {
	return actor.Role == models.RoleAdmin
}
