package payments

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"github.com/ShipDesk/ShipDesk/internal/apperr"
	"github.com/ShipDesk/ShipDesk/internal/models"
	"github.com/google/uuid"
)

type Repository interface {
	GetShipmentByID(ctx context.Context, id uint64) (*models.Shipment, error)
	CreateOrGetPayment(ctx context.Context, p *models.Payment, settle bool) (*models.Payment, bool, error)
	GetPaymentByShipmentID(ctx context.Context, shipmentID uint64) (*models.Payment, error)
}

type Service struct {
	repo Repository
}

func New(repo Repository) *Service {
	return &Service{repo: repo}
}

func validMethod(m string) bool {
	switch m {
	case models.PaymentMethodCOD, models.PaymentMethodCard, models.PaymentMethodUPI, models.PaymentMethodWallet, models.PaymentMethodOnline:
		return true
	}
	return false
}

func newTransactionID() string {
	u := uuid.New()
	return "TXN" + strings.ToUpper(hex.EncodeToString(u[:4]))
}

// Process records the payment outcome for a shipment exactly once. Only the
// sender may trigger it; anyone else sees the same NotFound as a missing
// shipment. The mock gateway settles non-COD methods immediately.
func (s *Service) Process(ctx context.Context, actor models.Actor, shipmentID uint64, method string) (*models.Payment, error) {
	if method == "" {
		return nil, apperr.Validation("payment_method", "required")
	}
	if !validMethod(method) {
		return nil, apperr.Validation("payment_method", "unknown method "+method)
	}

	sh, err := s.repo.GetShipmentByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if sh.SenderID != actor.ID {
		return nil, apperr.ErrNotFound
	}

	p := &models.Payment{
		ShipmentID: sh.ID,
		Amount:     sh.Cost,
		Method:     method,
	}

	settle := false
	if method == models.PaymentMethodCOD {
		p.Status = models.PaymentStatusPending
	} else {
		now := time.Now().UTC()
		p.Status = models.PaymentStatusCompleted
		p.TransactionID = newTransactionID()
		p.PaymentDate = &now
		settle = true
	}

	out, _, err := s.repo.CreateOrGetPayment(ctx, p, settle)
	return out, err
}

func (s *Service) Status(ctx context.Context, shipmentID uint64) (*models.Payment, error) {
	if _, err := s.repo.GetShipmentByID(ctx, shipmentID); err != nil {
		return nil, err
	}
	return s.repo.GetPaymentByShipmentID(ctx, shipmentID)
}
