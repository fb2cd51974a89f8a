package pgstore

import (
	"context"
	"testing"
	"time"

	"github.com/ShipDesk/ShipDesk/internal/apperr"
	"github.com/ShipDesk/ShipDesk/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) *Storage {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "admin",
			"POSTGRES_PASSWORD": "admin",
			"POSTGRES_DB":       "shipdesk_test",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := "postgres://admin:admin@" + host + ":" + port.Port() + "/shipdesk_test?sslmode=disable"
	st, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st
}

func TestPGStore_ShipmentFlow(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	senderID, err := st.CreateUser(ctx, &models.User{
		Username: "alice", Email: "alice@example.com", PasswordHash: "x", Role: models.RoleCustomer,
	})
	require.NoError(t, err)
	require.NotZero(t, senderID)

	// duplicate username hits the unique constraint
	_, err = st.CreateUser(ctx, &models.User{Username: "alice", Email: "a2@example.com", PasswordHash: "x", Role: models.RoleCustomer})
	require.ErrorIs(t, err, apperr.ErrConflict)

	sh, err := st.CreateShipment(ctx, &models.Shipment{
		TrackingCode: "TRKAB12CD34", SenderID: senderID,
		ReceiverName: "Bob", ReceiverPhone: "+100", ReceiverAddress: "addr",
		PackageDescription: "books", Weight: 2.5,
		PickupAddress: "p", DeliveryAddress: "d",
		Cost: 25, PaymentMethod: models.PaymentMethodCard,
		Status: models.ShipmentStatusBooked,
	}, &models.TrackingEvent{Status: "Booked", Location: "Origin", Description: "Shipment has been booked"})
	require.NoError(t, err)
	require.NotZero(t, sh.ID)
	require.Equal(t, models.ShipmentStatusBooked, sh.Status)

	// initial event is written in the same transaction
	evs, err := st.ListTrackingEvents(ctx, sh.ID)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	require.Equal(t, "Booked", evs[0].Status)

	// tracking code is unique
	_, err = st.CreateShipment(ctx, &models.Shipment{
		TrackingCode: "TRKAB12CD34", SenderID: senderID,
		ReceiverName: "Bob", ReceiverPhone: "+100", ReceiverAddress: "addr",
		PackageDescription: "books", Weight: 1,
		PickupAddress: "p", DeliveryAddress: "d",
		Cost: 10, PaymentMethod: models.PaymentMethodCard,
		Status: models.ShipmentStatusBooked,
	}, &models.TrackingEvent{Status: "Booked"})
	require.ErrorIs(t, err, apperr.ErrConflict)

	// status update appends exactly one event, newest first
	err = st.UpdateShipmentStatus(ctx, sh.ID, models.ShipmentStatusPickedUp,
		&models.TrackingEvent{Status: models.ShipmentStatusPickedUp, Location: "Hub"})
	require.NoError(t, err)

	got, err := st.GetShipmentByID(ctx, sh.ID)
	require.NoError(t, err)
	require.Equal(t, models.ShipmentStatusPickedUp, got.Status)

	evs, err = st.ListTrackingEvents(ctx, sh.ID)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	require.Equal(t, models.ShipmentStatusPickedUp, evs[0].Status)

	byCode, err := st.GetShipmentByTrackingCode(ctx, "TRKAB12CD34")
	require.NoError(t, err)
	require.Equal(t, sh.ID, byCode.ID)

	_, err = st.GetShipmentByTrackingCode(ctx, "TRKMISSING")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	err = st.UpdateShipmentStatus(ctx, 999999, models.ShipmentStatusInTransit, &models.TrackingEvent{Status: models.ShipmentStatusInTransit})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPGStore_PaymentGetOrCreate(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	senderID, err := st.CreateUser(ctx, &models.User{
		Username: "carol", Email: "carol@example.com", PasswordHash: "x", Role: models.RoleCustomer,
	})
	require.NoError(t, err)

	sh, err := st.CreateShipment(ctx, &models.Shipment{
		TrackingCode: "TRK11112222", SenderID: senderID,
		ReceiverName: "Bob", ReceiverPhone: "+100", ReceiverAddress: "addr",
		PackageDescription: "books", Weight: 1,
		PickupAddress: "p", DeliveryAddress: "d",
		Cost: 10, PaymentMethod: models.PaymentMethodCard,
		Status: models.ShipmentStatusBooked,
	}, &models.TrackingEvent{Status: "Booked"})
	require.NoError(t, err)

	now := time.Now().UTC()
	p1, created, err := st.CreateOrGetPayment(ctx, &models.Payment{
		ShipmentID: sh.ID, Amount: sh.Cost, Method: models.PaymentMethodCard,
		Status: models.PaymentStatusCompleted, TransactionID: "TXN1", PaymentDate: &now,
	}, true)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "TXN1", p1.TransactionID)

	// second call returns the first record unchanged
	p2, created, err := st.CreateOrGetPayment(ctx, &models.Payment{
		ShipmentID: sh.ID, Amount: sh.Cost, Method: models.PaymentMethodUPI,
		Status: models.PaymentStatusCompleted, TransactionID: "TXN2", PaymentDate: &now,
	}, true)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, p1.ID, p2.ID)
	require.Equal(t, "TXN1", p2.TransactionID)
	require.Equal(t, models.PaymentMethodCard, p2.Method)

	got, err := st.GetShipmentByID(ctx, sh.ID)
	require.NoError(t, err)
	require.True(t, got.PaymentSettled)

	_, err = st.GetPaymentByShipmentID(ctx, 424242)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPGStore_OTPIssueAndConsume(t *testing.T) {
	st := startPostgres(t)
	ctx := context.Background()

	userID, err := st.CreateUser(ctx, &models.User{
		Username: "dave", Email: "dave@example.com", PasswordHash: "x", Role: models.RoleCustomer,
	})
	require.NoError(t, err)

	require.NoError(t, st.IssueOTP(ctx, userID, "111111"))
	// a fresh code invalidates the previous one
	require.NoError(t, st.IssueOTP(ctx, userID, "222222"))

	require.ErrorIs(t, st.ConsumeOTP(ctx, userID, "111111"), apperr.ErrNotFound)
	require.NoError(t, st.ConsumeOTP(ctx, userID, "222222"))

	u, err := st.GetUserByID(ctx, userID)
	require.NoError(t, err)
	require.True(t, u.IsVerified)

	// a code is consumed at most once
	require.ErrorIs(t, st.ConsumeOTP(ctx, userID, "222222"), apperr.ErrNotFound)
}
