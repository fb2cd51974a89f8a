package accounts

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ShipDesk/ShipDesk/internal/apperr"
	"github.com/ShipDesk/ShipDesk/internal/auth"
	"github.com/ShipDesk/ShipDesk/internal/models"
)

type Repository interface {
	CreateUser(ctx context.Context, u *models.User) (uint64, error)
	GetUserByID(ctx context.Context, id uint64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uint64, p models.ProfilePatch) (*models.User, error)
	IssueOTP(ctx context.Context, userID uint64, code string) error
	ConsumeOTP(ctx context.Context, userID uint64, code string) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error)
}

type TokenIssuer interface {
	Generate(userID uint64, role string) (string, error)
}

// Limits for OTP verification and login attempts per principal.
type Limits struct {
	OTPAttempts   int64
	OTPWindow     time.Duration
	LoginAttempts int64
	LoginWindow   time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		OTPAttempts:   5,
		OTPWindow:     15 * time.Minute,
		LoginAttempts: 10,
		LoginWindow:   15 * time.Minute,
	}
}

type Service struct {
	repo   Repository
	rl     RateLimiter
	tokens TokenIssuer
	limits Limits
}

func New(repo Repository, rl RateLimiter, tokens TokenIssuer, limits Limits) *Service {
	if limits.OTPAttempts <= 0 {
		limits = DefaultLimits()
	}
	return &Service{repo: repo, rl: rl, tokens: tokens, limits: limits}
}

func validateRegister(in models.RegisterInput) *apperr.ValidationError {
	fields := map[string]string{}
	if in.Username == "" {
		fields["username"] = "required"
	}
	if in.Email == "" {
		fields["email"] = "required"
	}
	if len(in.Password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	// Админов через публичную регистрацию не создаём.
	if in.Role != "" && in.Role != models.RoleCustomer && in.Role != models.RoleCourier {
		fields["role"] = "must be customer or courier"
	}
	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}

// Register creates the user unverified and issues the first OTP. Delivery is
// mocked: the code goes to the log, as the gateway would. apperr.ErrConflict
// when the username is taken.
func (s *Service) Register(ctx context.Context, in models.RegisterInput) (uint64, error) {
	if ve := validateRegister(in); ve != nil {
		return 0, ve
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return 0, err
	}

	role := in.Role
	if role == "" {
		role = models.RoleCustomer
	}

	id, err := s.repo.CreateUser(ctx, &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Address:      in.Address,
		Role:         role,
	})
	if err != nil {
		return 0, err
	}

	code, err := newOTPCode()
	if err != nil {
		return 0, err
	}
	if err := s.repo.IssueOTP(ctx, id, code); err != nil {
		return 0, err
	}

	// Mock delivery channel.
	slog.Info("otp issued", "user_id", id, "code", code)
	return id, nil
}

func newOTPCode() (string, error) {
	// 100000..999999, как у шлюза.
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// VerifyOTP consumes the matching unused code and marks the user verified.
// Attempts are throttled per user.
func (s *Service) VerifyOTP(ctx context.Context, userID uint64, code string) error {
	if userID == 0 {
		return apperr.Validation("user_id", "required")
	}
	if code == "" {
		return apperr.Validation("otp_code", "required")
	}

	if s.rl != nil {
		ok, _, err := s.rl.Allow(ctx, fmt.Sprintf("otp:%d", userID), s.limits.OTPAttempts, s.limits.OTPWindow)
		if err == nil && !ok {
			return apperr.ErrRateLimited
		}
	}

	if err := s.repo.ConsumeOTP(ctx, userID, code); err != nil {
		if apperr.IsNotFound(err) {
			return apperr.Validation("otp_code", "invalid code")
		}
		return err
	}
	return nil
}

// Login checks credentials and issues an access token. Invalid username and
// invalid password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	if username == "" || password == "" {
		return "", nil, apperr.Validation("credentials", "username and password are required")
	}

	if s.rl != nil {
		ok, _, err := s.rl.Allow(ctx, "login:"+username, s.limits.LoginAttempts, s.limits.LoginWindow)
		if err == nil && !ok {
			return "", nil, apperr.ErrRateLimited
		}
	}

	u, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if apperr.IsNotFound(err) {
			return "", nil, apperr.Validation("credentials", "invalid username or password")
		}
		return "", nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return "", nil, apperr.Validation("credentials", "invalid username or password")
	}

	token, err := s.tokens.Generate(u.ID, u.Role)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func (s *Service) Profile(ctx context.Context, userID uint64) (*models.User, error) {
	return s.repo.GetUserByID(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID uint64, p models.ProfilePatch) (*models.User, error) {
	return s.repo.UpdateProfile(ctx, userID, p)
}
