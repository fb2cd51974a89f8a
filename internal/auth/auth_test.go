package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ShipDesk/ShipDesk/internal/models"
	"github.com/stretchr/testify/require"
)

func TestManager_GenerateParse(t *testing.T) {
	m := NewManager("secret", time.Hour)

	tok, err := m.Generate(42, models.RoleCourier)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, uint64(42), claims.UserID)
	require.Equal(t, models.RoleCourier, claims.Role)
}

func TestManager_Parse_wrongSecret(t *testing.T) {
	tok, err := NewManager("secret-a", time.Hour).Generate(1, models.RoleCustomer)
	require.NoError(t, err)

	_, err = NewManager("secret-b", time.Hour).Parse(tok)
	require.Error(t, err)
}

func TestManager_Parse_expired(t *testing.T) {
	tok, err := NewManager("secret", -time.Minute).Generate(1, models.RoleCustomer)
	require.NoError(t, err)

	_, err = NewManager("secret", -time.Minute).Parse(tok)
	require.Error(t, err)
}

func TestHashCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	require.True(t, CheckPassword(hash, "hunter2"))
	require.False(t, CheckPassword(hash, "hunter3"))
}

func TestMiddleware(t *testing.T) {
	m := NewManager("secret", time.Hour)

	var gotActor models.Actor
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := ActorFrom(r.Context())
		require.True(t, ok)
		gotActor = a
	}))

	// no header
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// malformed header
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// valid token
	tok, err := m.Generate(7, models.RoleAdmin)
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, uint64(7), gotActor.ID)
	require.Equal(t, models.RoleAdmin, gotActor.Role)
}
