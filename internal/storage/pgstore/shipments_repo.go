package pgstore

import (
	"context"
	"time"

	"github.com/ShipDesk/ShipDesk/internal/apperr"
	"github.com/ShipDesk/ShipDesk/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const shipmentColumns = `
  id, tracking_code, sender_id,
  receiver_name, receiver_phone, receiver_address,
  package_description, weight, dimensions,
  pickup_address, delivery_address,
  cost, payment_method, payment_settled,
  status, assigned_courier_id,
  created_at, updated_at`

func scanShipment(row pgx.Row) (*models.Shipment, error) {
	var sh models.Shipment
	err := row.Scan(
		&sh.ID, &sh.TrackingCode, &sh.SenderID,
		&sh.ReceiverName, &sh.ReceiverPhone, &sh.ReceiverAddress,
		&sh.PackageDescription, &sh.Weight, &sh.Dimensions,
		&sh.PickupAddress, &sh.DeliveryAddress,
		&sh.Cost, &sh.PaymentMethod, &sh.PaymentSettled,
		&sh.Status, &sh.AssignedCourierID,
		&sh.CreatedAt, &sh.UpdatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, errors.Wrap(err, "scan shipment")
	}
	return &sh, nil
}

// CreateShipment inserts the shipment and its initial tracking event in one
// transaction. apperr.ErrConflict when the tracking code is already taken.
func (s *Storage) CreateShipment(ctx context.Context, sh *models.Shipment, ev *models.TrackingEvent) (*models.Shipment, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id uint64
	err = tx.QueryRow(ctx, `
INSERT INTO shipments (
  tracking_code, sender_id,
  receiver_name, receiver_phone, receiver_address,
  package_description, weight, dimensions,
  pickup_address, delivery_address,
  cost, payment_method, status,
  created_at, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$14)
RETURNING id
`, sh.TrackingCode, sh.SenderID,
		sh.ReceiverName, sh.ReceiverPhone, sh.ReceiverAddress,
		sh.PackageDescription, sh.Weight, sh.Dimensions,
		sh.PickupAddress, sh.DeliveryAddress,
		sh.Cost, sh.PaymentMethod, sh.Status, now).Scan(&id)
	if err != nil {
		if IsDuplicate(err) {
			return nil, apperr.ErrConflict
		}
		return nil, errors.Wrap(err, "insert shipment")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO tracking_events (shipment_id, status, location, description, latitude, longitude, ts)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, id, ev.Status, ev.Location, ev.Description, ev.Latitude, ev.Longitude, now); err != nil {
		return nil, errors.Wrap(err, "insert initial event")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}
	return s.GetShipmentByID(ctx, id)
}

func (s *Storage) GetShipmentByID(ctx context.Context, id uint64) (*models.Shipment, error) {
	return scanShipment(s.db.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id))
}

func (s *Storage) GetShipmentByTrackingCode(ctx context.Context, code string) (*models.Shipment, error) {
	return scanShipment(s.db.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE tracking_code = $1`, code))
}

func (s *Storage) listShipments(ctx context.Context, q string, args ...any) ([]*models.Shipment, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select shipments")
	}
	defer rows.Close()

	out := []*models.Shipment{}
	for rows.Next() {
		sh, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}
	return out, nil
}

func (s *Storage) ListShipmentsBySender(ctx context.Context, senderID uint64) ([]*models.Shipment, error) {
	return s.listShipments(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE sender_id = $1 ORDER BY created_at DESC`, senderID)
}

func (s *Storage) ListShipmentsByCourier(ctx context.Context, courierID uint64) ([]*models.Shipment, error) {
	return s.listShipments(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE assigned_courier_id = $1 ORDER BY created_at DESC`, courierID)
}

func (s *Storage) ListAllShipments(ctx context.Context) ([]*models.Shipment, error) {
	return s.listShipments(ctx, `SELECT ` + shipmentColumns + ` FROM shipments ORDER BY created_at DESC`)
}

// UpdateShipmentStatus sets the current status and appends the matching
// tracking event in the same transaction. The two must never diverge.
func (s *Storage) UpdateShipmentStatus(ctx context.Context, id uint64, status string, ev *models.TrackingEvent) error {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `UPDATE shipments SET status = $2, updated_at = $3 WHERE id = $1`, id, status, now)
	if err != nil {
		return errors.Wrap(err, "update status")
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO tracking_events (shipment_id, status, location, description, latitude, longitude, ts)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`, id, ev.Status, ev.Location, ev.Description, ev.Latitude, ev.Longitude, now); err != nil {
		return errors.Wrap(err, "insert event")
	}

	return errors.Wrap(tx.Commit(ctx), "commit tx")
}

func (s *Storage) AssignCourier(ctx context.Context, shipmentID, courierID uint64) error {
	tag, err := s.db.Exec(ctx, `UPDATE shipments SET assigned_courier_id = $2, updated_at = $3 WHERE id = $1`,
		shipmentID, courierID, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "assign courier")
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
