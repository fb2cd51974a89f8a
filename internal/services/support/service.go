package support

import (
	"context"
	"strings"

	"github.com/ShipDesk/ShipDesk/internal/apperr"
	"github.com/ShipDesk/ShipDesk/internal/models"
)

type Repository interface {
	CreateTicket(ctx context.Context, t *models.Ticket) (*models.Ticket, error)
	GetTicketByID(ctx context.Context, id uint64) (*models.Ticket, error)
	ListTicketsByUser(ctx context.Context, userID uint64) ([]*models.Ticket, error)
	ListAllTickets(ctx context.Context) ([]*models.Ticket, error)
	AddTicketMessage(ctx context.Context, m *models.TicketMessage) (*models.TicketMessage, error)
	CreateFeedback(ctx context.Context, f *models.Feedback) (*models.Feedback, error)
}

type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

func validPriority(p string) bool {
	switch p {
	case models.TicketPriorityLow, models.TicketPriorityMedium, models.TicketPriorityHigh:
		return true
	}
	return false
}

func (s *Service) CreateTicket(ctx context.Context, actor models.Actor, subject, description, priority string) (*models.Ticket, error) {
	fields := map[string]string{}
	if strings.TrimSpace(subject) == "" {
		fields["subject"] = "is required"
	}
	if strings.TrimSpace(description) == "" {
		fields["description"] = "is required"
	}
	if priority == "" {
		priority = models.TicketPriorityMedium
	} else if !validPriority(priority) {
		fields["priority"] = "must be one of low, medium, high"
	}
	if len(fields) > 0 {
		return nil, &apperr.ValidationError{Fields: fields}
	}

	return s.repo.CreateTicket(ctx, &models.Ticket{
		UserID:      actor.ID,
		Subject:     subject,
		Description: description,
		Priority:    priority,
		Status:      models.TicketStatusOpen,
	})
}

func (s *Service) ListTickets(ctx context.Context, actor models.Actor) ([]*models.Ticket, error) {
	if actor.Role == models.RoleAdmin {
		return s.repo.ListAllTickets(ctx)
	}
	return s.repo.ListTicketsByUser(ctx, actor.ID)
}

func (s *Service) GetTicket(ctx context.Context, actor models.Actor, ticketID uint64) (*models.Ticket, error) {
	t, err := s.repo.GetTicketByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && t.UserID != actor.ID {
		return nil, apperr.ErrPermissionDenied
	}
	return t, nil
}

func (s *Service) AddMessage(ctx context.Context, actor models.Actor, ticketID uint64, message string) (*models.TicketMessage, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperr.Validation("message", "is required")
	}
	t, err := s.repo.GetTicketByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if actor.Role != models.RoleAdmin && t.UserID != actor.ID {
		return nil, apperr.ErrPermissionDenied
	}
	return s.repo.AddTicketMessage(ctx, &models.TicketMessage{
		TicketID: t.ID,
		SenderID: actor.ID,
		Message:  message,
	})
}

func (s *Service) SubmitFeedback(ctx context.Context, actor models.Actor, shipmentID *uint64, rating int, comment string) (*models.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, apperr.Validation("rating", "must be between 1 and 5")
	}
	return s.repo.CreateFeedback(ctx, &models.Feedback{
		UserID:     actor.ID,
		ShipmentID: shipmentID,
		Rating:     rating,
		Comment:    comment,
	})
}
