package shipments

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/ShipDesk/ShipDesk/internal/apperr"
	"github.com/ShipDesk/ShipDesk/internal/broker/messages"
	"github.com/ShipDesk/ShipDesk/internal/cache"
	"github.com/ShipDesk/ShipDesk/internal/models"
	"github.com/google/uuid"
)

type Repository interface {
	CreateShipment(ctx context.Context, sh *models.Shipment, ev *models.TrackingEvent) (*models.Shipment, error)
	GetShipmentByID(ctx context.Context, id uint64) (*models.Shipment, error)
	GetShipmentByTrackingCode(ctx context.Context, code string) (*models.Shipment, error)
	ListShipmentsBySender(ctx context.Context, senderID uint64) ([]*models.Shipment, error)
	ListShipmentsByCourier(ctx context.Context, courierID uint64) ([]*models.Shipment, error)
	ListAllShipments(ctx context.Context) ([]*models.Shipment, error)
	UpdateShipmentStatus(ctx context.Context, id uint64, status string, ev *models.TrackingEvent) error
	AssignCourier(ctx context.Context, shipmentID, courierID uint64) error
	GetCourierByID(ctx context.Context, id uint64) (*models.User, error)
	ListTrackingEvents(ctx context.Context, shipmentID uint64) ([]*models.TrackingEvent, error)
}

type Producer interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

type Service struct {
	repo     Repository
	cache    cache.BytesCache
	producer Producer
	topic    string

	costPerKg   float64
	snapshotTTL time.Duration
}

func New(repo Repository, c cache.BytesCache, producer Producer, topic string, costPerKg float64, snapshotTTL time.Duration) *Service {
	if costPerKg <= 0 {
		costPerKg = 10
	}
	return &Service{repo: repo, cache: c, producer: producer, topic: topic, costPerKg: costPerKg, snapshotTTL: snapshotTTL}
}

// TrackingSnapshot is what the public tracking endpoint serves: the current
// shipment record plus its full history, newest first.
type TrackingSnapshot struct {
	Shipment *models.Shipment        `json:"shipment"`
	History  []*models.TrackingEvent `json:"tracking_history"`
}

func validateCreate(in models.ShipmentCreateInput) *apperr.ValidationError {
	fields := map[string]string{}
	if in.ReceiverName == "" {
		fields["receiver_name"] = "required"
	}
	if in.ReceiverPhone == "" {
		fields["receiver_phone"] = "required"
	}
	if in.ReceiverAddress == "" {
		fields["receiver_address"] = "required"
	}
	if in.PackageDescription == "" {
		fields["package_description"] = "required"
	}
	if in.PickupAddress == "" {
		fields["pickup_address"] = "required"
	}
	if in.DeliveryAddress == "" {
		fields["delivery_address"] = "required"
	}
	if in.Weight <= 0 {
		fields["weight"] = "must be positive"
	}
	if in.PaymentMethod == "" {
		fields["payment_method"] = "required"
	}
	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}

func newTrackingCode() string {
	u := uuid.New()
	return "TRK" + strings.ToUpper(hex.EncodeToString(u[:4]))
}

// Create books a shipment. The cost is derived from weight once, here, and is
// never recomputed. The Booked event lands in the same transaction as the row.
func (s *Service) Create(ctx context.Context, actor models.Actor, in models.ShipmentCreateInput) (*models.Shipment, error) {
	if ve := validateCreate(in); ve != nil {
		return nil, ve
	}

	sh := &models.Shipment{
		SenderID:           actor.ID,
		ReceiverName:       in.ReceiverName,
		ReceiverPhone:      in.ReceiverPhone,
		ReceiverAddress:    in.ReceiverAddress,
		PackageDescription: in.PackageDescription,
		Weight:             in.Weight,
		Dimensions:         in.Dimensions,
		PickupAddress:      in.PickupAddress,
		DeliveryAddress:    in.DeliveryAddress,
		Cost:               in.Weight * s.costPerKg,
		PaymentMethod:      in.PaymentMethod,
		Status:             models.ShipmentStatusBooked,
	}
	ev := &models.TrackingEvent{
		Status:      "Booked",
		Location:    "Origin",
		Description: "Shipment has been booked",
	}

	// Fresh code on every attempt; the unique constraint arbitrates collisions.
	for attempt := 0; attempt < 5; attempt++ {
		sh.TrackingCode = newTrackingCode()
		created, err := s.repo.CreateShipment(ctx, sh, ev)
		if err == nil {
			return created, nil
		}
		if !apperr.IsConflict(err) {
			return nil, err
		}
	}
	return nil, apperr.ErrConflict
}

func (s *Service) List(ctx context.Context, actor models.Actor) ([]*models.Shipment, error) {
	switch actor.Role {
	case models.RoleAdmin:
		return s.repo.ListAllShipments(ctx)
	case models.RoleCourier:
		return s.repo.ListShipmentsByCourier(ctx, actor.ID)
	default:
		return s.repo.ListShipmentsBySender(ctx, actor.ID)
	}
}

func (s *Service) Get(ctx context.Context, actor models.Actor, id uint64) (*models.Shipment, error) {
	sh, err := s.repo.GetShipmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(actor, sh) {
		return nil, apperr.ErrPermissionDenied
	}
	return sh, nil
}

// UpdateStatus drives the lifecycle. Courier/admin only; the transition must
// be legal per the declared graph.
func (s *Service) UpdateStatus(ctx context.Context, actor models.Actor, id uint64, status, location, description string) error {
	if !canUpdateStatus(actor) {
		return apperr.ErrPermissionDenied
	}
	if status == "" {
		return apperr.Validation("status", "required")
	}
	if !KnownStatus(status) {
		return apperr.Validation("status", "unknown status "+status)
	}

	sh, err := s.repo.GetShipmentByID(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(sh.Status, status) {
		return apperr.Validation("status", "cannot transition from "+sh.Status+" to "+status)
	}

	ev := &models.TrackingEvent{
		Status:      status,
		Location:    location,
		Description: description,
	}
	if err := s.repo.UpdateShipmentStatus(ctx, id, status, ev); err != nil {
		return err
	}

	s.publishStatusUpdated(ctx, sh, status, location, description)
	return nil
}

// Publish is best-effort: the store is the source of truth, the event only
// refreshes the public snapshot cache.
func (s *Service) publishStatusUpdated(ctx context.Context, sh *models.Shipment, status, location, description string) {
	if s.producer == nil {
		return
	}
	msg := messages.ShipmentStatusUpdated{
		ShipmentID:   sh.ID,
		TrackingCode: sh.TrackingCode,
		Status:       status,
		Location:     location,
		Description:  description,
		UpdatedAt:    time.Now().UTC(),
	}
	b, _ := json.Marshal(msg)
	if err := s.producer.Publish(ctx, s.topic, []byte(sh.TrackingCode), b); err != nil {
		slog.Error("publish status update", "tracking_code", sh.TrackingCode, "err", err)
	}
}

func (s *Service) AssignCourier(ctx context.Context, actor models.Actor, shipmentID, courierID uint64) error {
	if !canAssignCourier(actor) {
		return apperr.ErrPermissionDenied
	}
	if courierID == 0 {
		return apperr.Validation("courier_id", "required")
	}
	if _, err := s.repo.GetCourierByID(ctx, courierID); err != nil {
		return err
	}
	return s.repo.AssignCourier(ctx, shipmentID, courierID)
}

func snapshotKey(code string) string {
	return "tracking:" + code + ":snapshot"
}

// TrackByCode is the unauthenticated read path: anyone holding a code gets
// the snapshot and full history. Read-through cached.
func (s *Service) TrackByCode(ctx context.Context, code string) (*TrackingSnapshot, error) {
	if code == "" {
		return nil, apperr.ErrNotFound
	}

	if s.cache != nil && s.snapshotTTL > 0 {
		if b, ok, err := s.cache.Get(ctx, snapshotKey(code)); err == nil && ok {
			var snap TrackingSnapshot
			if json.Unmarshal(b, &snap) == nil {
				return &snap, nil
			}
		}
	}

	snap, err := s.loadSnapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	if s.cache != nil && s.snapshotTTL > 0 {
		b, _ := json.Marshal(snap)
		_ = s.cache.Set(ctx, snapshotKey(code), b, s.snapshotTTL)
	}
	return snap, nil
}

// RefreshSnapshot rebuilds the cached snapshot from the store. Called by the
// worker when a status event arrives.
func (s *Service) RefreshSnapshot(ctx context.Context, code string) error {
	snap, err := s.loadSnapshot(ctx, code)
	if err != nil {
		return err
	}
	if s.cache == nil || s.snapshotTTL <= 0 {
		return nil
	}
	b, _ := json.Marshal(snap)
	return s.cache.Set(ctx, snapshotKey(code), b, s.snapshotTTL)
}

func (s *Service) loadSnapshot(ctx context.Context, code string) (*TrackingSnapshot, error) {
	sh, err := s.repo.GetShipmentByTrackingCode(ctx, code)
	if err != nil {
		return nil, err
	}
	history, err := s.repo.ListTrackingEvents(ctx, sh.ID)
	if err != nil {
		return nil, err
	}
	return &TrackingSnapshot{Shipment: sh, History: history}, nil
}
