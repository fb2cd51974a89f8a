package pgstore

import (
	"context"
	"time"

	"github.com/ShipDesk/ShipDesk/internal/apperr"
	"github.com/ShipDesk/ShipDesk/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

func (s *Storage) CreateTicket(ctx context.Context, t *models.Ticket) (*models.Ticket, error) {
	now := time.Now().UTC()
	var id uint64
	err := s.db.QueryRow(ctx, `
INSERT INTO tickets (user_id, subject, description, priority, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$6)
RETURNING id
`, t.UserID, t.Subject, t.Description, t.Priority, t.Status, now).Scan(&id)
	if err != nil {
		return nil, errors.Wrap(err, "insert ticket")
	}
	return s.GetTicketByID(ctx, id)
}

func scanTicket(row pgx.Row) (*models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(&t.ID, &t.UserID, &t.Subject, &t.Description, &t.Priority, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if IsNoRows(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, errors.Wrap(err, "scan ticket")
	}
	return &t, nil
}

func (s *Storage) GetTicketByID(ctx context.Context, id uint64) (*models.Ticket, error) {
	t, err := scanTicket(s.db.QueryRow(ctx, `
SELECT id, user_id, subject, description, priority, status, created_at, updated_at
FROM tickets WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	msgs, err := s.listTicketMessages(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Messages = msgs
	return t, nil
}

func (s *Storage) listTickets(ctx context.Context, q string, args ...any) ([]*models.Ticket, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "select tickets")
	}
	defer rows.Close()

	out := []*models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if rows.Err() != nil {
		return nil, errors.Wrap(rows.Err(), "rows")
	}

	for _, t := range out {
		msgs, err := s.listTicketMessages(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		t.Messages = msgs
	}
	return out, nil
}

func (s *Storage) ListTicketsByUser(ctx context.Context, userID uint64) ([]*models.Ticket, error) {
	return s.listTickets(ctx, `
SELECT id, user_id, subject, description, priority, status, created_at, updated_at
FROM tickets WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (s *Storage) ListAllTickets(ctx context.Context) ([]*models.Ticket, error) {
	return s.listTickets(ctx, `
SELECT id, user_id, subject, description, priority, status, created_at, updated_at
FROM tickets ORDER BY created_at DESC`)
}

func (s *Storage) listTicketMessages(ctx context.Context, ticketID uint64) ([]models.TicketMessage, error) {
	rows, err := s.db.Query(ctx, `
SELECT id, ticket_id, sender_id, message, created_at
FROM ticket_messages WHERE ticket_id = $1 ORDER BY created_at ASC`, ticketID)
	if err != nil {
		return nil, errors.Wrap(err, "select ticket messages")
	}
	defer rows.Close()

	out := []models.TicketMessage{}
	for rows.Next() {
		var m models.TicketMessage
		if err := rows.Scan(&m.ID, &m.TicketID, &m.SenderID, &m.Message, &m.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan ticket message")
		}
		out = append(out, m)
	}
	return out, errors.Wrap(rows.Err(), "rows")
}

func (s *Storage) AddTicketMessage(ctx context.Context, m *models.TicketMessage) (*models.TicketMessage, error) {
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
INSERT INTO ticket_messages (ticket_id, sender_id, message, created_at)
VALUES ($1,$2,$3,$4)
RETURNING id
`, m.TicketID, m.SenderID, m.Message, now).Scan(&m.ID)
	if err != nil {
		return nil, errors.Wrap(err, "insert ticket message")
	}

	if _, err := tx.Exec(ctx, `UPDATE tickets SET updated_at = $2 WHERE id = $1`, m.TicketID, now); err != nil {
		return nil, errors.Wrap(err, "touch ticket")
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, errors.Wrap(err, "commit tx")
	}
	m.CreatedAt = now
	return m, nil
}

func (s *Storage) CreateFeedback(ctx context.Context, f *models.Feedback) (*models.Feedback, error) {
	err := s.db.QueryRow(ctx, `
INSERT INTO feedback (user_id, shipment_id, rating, comment, created_at)
VALUES ($1,$2,$3,$4,$5)
RETURNING id, created_at
`, f.UserID, f.ShipmentID, f.Rating, f.Comment, time.Now().UTC()).Scan(&f.ID, &f.CreatedAt)
	if err != nil {
		return nil, errors.Wrap(err, "insert feedback")
	}
	return f, nil
}
