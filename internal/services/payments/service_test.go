package payments

import (
	"context"
	"testing"

	"github.com/ShipDesk/ShipDesk/internal/apperr"
	"github.com/ShipDesk/ShipDesk/internal/models"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	shipments map[uint64]*models.Shipment
	payments  map[uint64]*models.Payment
	settled   map[uint64]bool
	nextID    uint64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		shipments: map[uint64]*models.Shipment{},
		payments:  map[uint64]*models.Payment{},
		settled:   map[uint64]bool{},
		nextID:    1,
	}
}

func (f *fakeRepo) GetShipmentByID(ctx context.Context, id uint64) (*models.Shipment, error) {
	if sh, ok := f.shipments[id]; ok {
		return sh, nil
	}
	return nil, apperr.ErrNotFound
}

func (f *fakeRepo) CreateOrGetPayment(ctx context.Context, p *models.Payment, settle bool) (*models.Payment, bool, error) {
	if existing, ok := f.payments[p.ShipmentID]; ok {
		return existing, false, nil
	}
	cp := *p
	cp.ID = f.nextID
	f.nextID++
	f.payments[p.ShipmentID] = &cp
	if settle {
		f.settled[p.ShipmentID] = true
	}
	return &cp, true, nil
}

func (f *fakeRepo) GetPaymentByShipmentID(ctx context.Context, shipmentID uint64) (*models.Payment, error) {
	if p, ok := f.payments[shipmentID]; ok {
		return p, nil
	}
	return nil, apperr.ErrNotFound
}

var sender = models.Actor{ID: 10, Role: models.RoleCustomer}

func shipmentFixture() *models.Shipment {
	return &models.Shipment{ID: 1, SenderID: sender.ID, Cost: 25, Status: models.ShipmentStatusBooked}
}

func TestService_Process_online(t *testing.T) {
	r := newFakeRepo()
	r.shipments[1] = shipmentFixture()
	s := New(r)

	p, err := s.Process(context.Background(), sender, 1, models.PaymentMethodCard)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusCompleted, p.Status)
	require.Equal(t, 25.0, p.Amount)
	require.NotEmpty(t, p.TransactionID)
	require.Equal(t, "TXN", p.TransactionID[:3])
	require.NotNil(t, p.PaymentDate)
	require.True(t, r.settled[1])
}

func TestService_Process_cod(t *testing.T) {
	r := newFakeRepo()
	r.shipments[1] = shipmentFixture()
	s := New(r)

	p, err := s.Process(context.Background(), sender, 1, models.PaymentMethodCOD)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPending, p.Status)
	require.Empty(t, p.TransactionID)
	require.Nil(t, p.PaymentDate)
	require.False(t, r.settled[1])
}

func TestService_Process_idempotent(t *testing.T) {
	r := newFakeRepo()
	r.shipments[1] = shipmentFixture()
	s := New(r)
	ctx := context.Background()

	p1, err := s.Process(ctx, sender, 1, models.PaymentMethodCard)
	require.NoError(t, err)

	// second call returns the first record unchanged
	p2, err := s.Process(ctx, sender, 1, models.PaymentMethodUPI)
	require.NoError(t, err)
	require.Equal(t, p1.ID, p2.ID)
	require.Equal(t, p1.TransactionID, p2.TransactionID)
	require.Equal(t, models.PaymentMethodCard, p2.Method)
	require.Len(t, r.payments, 1)
}

func TestService_Process_distinctTransactionIDs(t *testing.T) {
	r := newFakeRepo()
	r.shipments[1] = shipmentFixture()
	r.shipments[2] = &models.Shipment{ID: 2, SenderID: sender.ID, Cost: 10}
	s := New(r)
	ctx := context.Background()

	p1, err := s.Process(ctx, sender, 1, models.PaymentMethodCard)
	require.NoError(t, err)
	p2, err := s.Process(ctx, sender, 2, models.PaymentMethodCard)
	require.NoError(t, err)
	require.NotEqual(t, p1.TransactionID, p2.TransactionID)
}

func TestService_Process_errors(t *testing.T) {
	r := newFakeRepo()
	r.shipments[1] = shipmentFixture()
	s := New(r)
	ctx := context.Background()

	_, err := s.Process(ctx, sender, 1, "")
	require.True(t, apperr.IsValidation(err))

	_, err = s.Process(ctx, sender, 1, "barter")
	require.True(t, apperr.IsValidation(err))

	_, err = s.Process(ctx, sender, 404, models.PaymentMethodCard)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	// a non-owner cannot learn whether the shipment exists
	stranger := models.Actor{ID: 99, Role: models.RoleCustomer}
	_, err = s.Process(ctx, stranger, 1, models.PaymentMethodCard)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_Status(t *testing.T) {
	r := newFakeRepo()
	r.shipments[1] = shipmentFixture()
	s := New(r)
	ctx := context.Background()

	_, err := s.Status(ctx, 1)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.Process(ctx, sender, 1, models.PaymentMethodCard)
	require.NoError(t, err)

	p, err := s.Status(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusCompleted, p.Status)

	_, err = s.Status(ctx, 404)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
