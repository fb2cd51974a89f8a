package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/ShipDesk/ShipDesk/internal/apperr"
	"github.com/ShipDesk/ShipDesk/internal/auth"
	"github.com/ShipDesk/ShipDesk/internal/models"
	"github.com/ShipDesk/ShipDesk/internal/services/shipments"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Accounts interface {
	Register(ctx context.Context, in models.RegisterInput) (uint64, error)
	VerifyOTP(ctx context.Context, userID uint64, code string) error
	Login(ctx context.Context, username, password string) (string, *models.User, error)
	Profile(ctx context.Context, userID uint64) (*models.User, error)
	UpdateProfile(ctx context.Context, userID uint64, p models.ProfilePatch) (*models.User, error)
}

type Shipments interface {
	Create(ctx context.Context, actor models.Actor, in models.ShipmentCreateInput) (*models.Shipment, error)
	List(ctx context.Context, actor models.Actor) ([]*models.Shipment, error)
	Get(ctx context.Context, actor models.Actor, id uint64) (*models.Shipment, error)
	UpdateStatus(ctx context.Context, actor models.Actor, id uint64, status, location, description string) error
	AssignCourier(ctx context.Context, actor models.Actor, shipmentID, courierID uint64) error
	TrackByCode(ctx context.Context, code string) (*shipments.TrackingSnapshot, error)
}

type Payments interface {
	Process(ctx context.Context, actor models.Actor, shipmentID uint64, method string) (*models.Payment, error)
	Status(ctx context.Context, shipmentID uint64) (*models.Payment, error)
}

type Support interface {
	CreateTicket(ctx context.Context, actor models.Actor, subject, description, priority string) (*models.Ticket, error)
	ListTickets(ctx context.Context, actor models.Actor) ([]*models.Ticket, error)
	GetTicket(ctx context.Context, actor models.Actor, ticketID uint64) (*models.Ticket, error)
	AddMessage(ctx context.Context, actor models.Actor, ticketID uint64, message string) (*models.TicketMessage, error)
	SubmitFeedback(ctx context.Context, actor models.Actor, shipmentID *uint64, rating int, comment string) (*models.Feedback, error)
}

type Server struct {
	accounts  Accounts
	shipments Shipments
	payments  Payments
	support   Support
	auth      *auth.Manager

	swaggerPath string
}

func New(accounts Accounts, shipments Shipments, payments Payments, support Support, am *auth.Manager, swaggerPath string) *Server {
	return &Server{
		accounts:    accounts,
		shipments:   shipments,
		payments:    payments,
		support:     support,
		auth:        am,
		swaggerPath: swaggerPath,
	}
}

func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	if s.swaggerPath != "" {
		r.Get("/swagger.json", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			http.ServeFile(w, r, s.swaggerPath)
		})
		swaggerURL := "/swagger.json"
		if fi, err := os.Stat(s.swaggerPath); err == nil {
			swaggerURL = fmt.Sprintf("/swagger.json?v=%d", fi.ModTime().Unix())
		}
		r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL(swaggerURL)))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/verify-otp", s.handleVerifyOTP)

		// Tracking by code is the one public read.
		r.Get("/tracking/{code}", s.handleTrack)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)

			r.Get("/auth/profile", s.handleProfile)
			r.Put("/auth/profile", s.handleUpdateProfile)

			r.Post("/shipments/create", s.handleShipmentCreate)
			r.Get("/shipments/list", s.handleShipmentList)
			r.Get("/shipments/{id}", s.handleShipmentGet)
			r.Put("/shipments/{id}/update-status", s.handleShipmentUpdateStatus)
			r.Put("/shipments/{id}/assign-courier", s.handleShipmentAssignCourier)

			r.Post("/payments/{id}/process", s.handlePaymentProcess)
			r.Get("/payments/{id}/status", s.handlePaymentStatus)

			r.Post("/support/tickets/create", s.handleTicketCreate)
			r.Get("/support/tickets", s.handleTicketList)
			r.Get("/support/tickets/{id}", s.handleTicketGet)
			r.Post("/support/tickets/{id}/messages", s.handleTicketAddMessage)
			r.Post("/support/feedback", s.handleFeedback)
		})
	})

	return r
}

// urlID parses the {id} path segment. A malformed id behaves like a missing
// resource.
func urlID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, apperr.ErrNotFound
	}
	return id, nil
}

func actorFrom(r *http.Request) models.Actor {
	a, _ := auth.ActorFrom(r.Context())
	return a
}
