package pgstore

import (
	"context"
	"time"

	"github.com/ShipDesk/ShipDesk/internal/apperr"
	"github.com/ShipDesk/ShipDesk/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const paymentColumns = `id, shipment_id, amount, method, status, transaction_id, payment_date, created_at`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.ShipmentID, &p.Amount, &p.Method, &p.Status, &p.TransactionID, &p.PaymentDate, &p.CreatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, errors.Wrap(err, "scan payment")
	}
	return &p, nil
}

// CreateOrGetPayment is the idempotent get-or-create keyed on shipment_id.
// The unique constraint on payments.shipment_id is what makes two concurrent
// calls safe: the loser of the race reads the winner's row. When the insert
// wins and settle is true, the shipment's payment_settled flag flips in the
// same transaction.
func (s *Storage) CreateOrGetPayment(ctx context.Context, p *models.Payment, settle bool) (*models.Payment, bool, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id uint64
	err = tx.QueryRow(ctx, `
INSERT INTO payments (shipment_id, amount, method, status, transaction_id, payment_date, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (shipment_id) DO NOTHING
RETURNING id
`, p.ShipmentID, p.Amount, p.Method, p.Status, p.TransactionID, p.PaymentDate, now).Scan(&id)

	created := true
	if err != nil {
		if !IsNoRows(err) {
			return nil, false, errors.Wrap(err, "insert payment")
		}
		created = false
	}

	if created && settle {
		if _, err := tx.Exec(ctx, `UPDATE shipments SET payment_settled = TRUE, updated_at = $2 WHERE id = $1`,
			p.ShipmentID, now); err != nil {
			return nil, false, errors.Wrap(err, "settle shipment")
		}
	}

	out, err := scanPayment(tx.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE shipment_id = $1`, p.ShipmentID))
	if err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, errors.Wrap(err, "commit tx")
	}
	return out, created, nil
}

func (s *Storage) GetPaymentByShipmentID(ctx context.Context, shipmentID uint64) (*models.Payment, error) {
	return scanPayment(s.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE shipment_id = $1`, shipmentID))
}
