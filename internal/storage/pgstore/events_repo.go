package pgstore

import (
	"context"

	"github.com/ShipDesk/ShipDesk/internal/models"
	"github.com/pkg/errors"
)

// ListTrackingEvents returns the shipment's history, newest first.
func (s *Storage) ListTrackingEvents(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, shipment_id, status, location, description, latitude, longitude, ts
FROM tracking_events
WHERE shipment_id = $1
ORDER BY ts DESC, id DESC
`, shipmentID)
	if err != nil {
		return nil, errors.Wrap(err, "select events")
	}
	defer rows.Close()

	out := []*models.TrackingEvent{}
	for rows.Next() {
		var e models.TrackingEvent
		if err := rows.Scan(
			&e.ID, &e.ShipmentID, &e.Status, &e.Location, &e.Description,
			&e.Latitude, &e.Longitude, &e.Timestamp,
		); err != nil {
			return nil, errors.Wrap(err, "scan event")
		}
		out = append(out, &e)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}
