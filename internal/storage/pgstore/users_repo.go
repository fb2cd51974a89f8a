package pgstore

import (
	"context"
	"time"

	"github.com/ShipDesk/ShipDesk/internal/apperr"
	"github.com/ShipDesk/ShipDesk/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, phone, address, role, is_verified, created_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.Phone, &u.Address,
		&u.Role, &u.IsVerified, &u.CreatedAt,
	)
	if err != nil {
		if IsNoRows(err) {
			return nil, apperr.ErrNotFound
		}
		return nil, errors.Wrap(err, "scan user")
	}
	return &u, nil
}

func (s *Storage) CreateUser(ctx context.Context, u *models.User) (uint64, error) {
	var id uint64
	err := s.db.QueryRow(ctx, `
INSERT INTO users (username, email, password_hash, first_name, last_name, phone, address, role, is_verified, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,FALSE,$9)
RETURNING id
`, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.Address, u.Role, time.Now().UTC()).Scan(&id)
	if err != nil {
		if IsDuplicate(err) {
			return 0, apperr.ErrConflict
		}
		return 0, errors.Wrap(err, "insert user")
	}
	return id, nil
}

func (s *Storage) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

// GetCourierByID возвращает пользователя только если его роль courier.
func (s *Storage) GetCourierByID(ctx context.Context, id uint64) (*models.User, error) {
	return scanUser(s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND role = $2`, id, models.RoleCourier))
}

func (s *Storage) UpdateProfile(ctx context.Context, id uint64, p models.ProfilePatch) (*models.User, error) {
	_, err := s.db.Exec(ctx, `
UPDATE users SET
  email = COALESCE($2, email),
  first_name = COALESCE($3, first_name),
  last_name = COALESCE($4, last_name),
  phone = COALESCE($5, phone),
  address = COALESCE($6, address)
WHERE id = $1
`, id, p.Email, p.FirstName, p.LastName, p.Phone, p.Address)
	if err != nil {
		return nil, errors.Wrap(err, "update profile")
	}
	return s.GetUserByID(ctx, id)
}

// IssueOTP deactivates every outstanding code for the user and stores a fresh one.
// Old codes must not stay verifiable once a new one is issued.
func (s *Storage) IssueOTP(ctx context.Context, userID uint64, code string) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `UPDATE otps SET is_used = TRUE WHERE user_id = $1 AND NOT is_used`, userID); err != nil {
		return errors.Wrap(err, "invalidate otps")
	}
	if _, err := tx.Exec(ctx, `INSERT INTO otps (user_id, code, created_at) VALUES ($1,$2,$3)`,
		userID, code, time.Now().UTC()); err != nil {
		return errors.Wrap(err, "insert otp")
	}

	return errors.Wrap(tx.Commit(ctx), "commit tx")
}

// ConsumeOTP marks the matching unused code as used and flips the user's
// verified flag, all in one transaction. apperr.ErrNotFound when no code matches.
func (s *Storage) ConsumeOTP(ctx context.Context, userID uint64, code string) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var otpID uint64
	err = tx.QueryRow(ctx, `
UPDATE otps SET is_used = TRUE
WHERE id = (
  SELECT id FROM otps WHERE user_id = $1 AND code = $2 AND NOT is_used LIMIT 1
)
RETURNING id
`, userID, code).Scan(&otpID)
	if err != nil {
		if IsNoRows(err) {
			return apperr.ErrNotFound
		}
		return errors.Wrap(err, "consume otp")
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET is_verified = TRUE WHERE id = $1`, userID); err != nil {
		return errors.Wrap(err, "mark user verified")
	}

	return errors.Wrap(tx.Commit(ctx), "commit tx")
}
