package models

import "time"

// Роли фиксируются при регистрации и дальше не меняются.
const (
	RoleAdmin    = "admin"
	RoleCourier  = "courier"
	RoleCustomer = "customer"
)

func ValidRole(r string) bool {
	switch r {
	case RoleAdmin, RoleCourier, RoleCustomer:
		return true
	}
	return false
}

type User struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Role         string    `json:"role"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}

type OneTimePasscode struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Code      string    `json:"-"`
	IsUsed    bool      `json:"is_used"`
	CreatedAt time.Time `json:"created_at"`
}

// Actor — аутентифицированный инициатор запроса; все проверки доступа
// опираются только на ID и роль.
type Actor struct {
	ID   uint64
	Role string
}

type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
	Address   string
	Role      string
}

type ProfilePatch struct {
	Email     *string
	FirstName *string
	LastName  *string
	Phone     *string
	Address   *string
}
