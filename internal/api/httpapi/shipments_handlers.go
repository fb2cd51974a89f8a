package httpapi

import (
	"net/http"

	"github.com/ShipDesk/ShipDesk/internal/models"
	"github.com/go-chi/chi/v5"
)

type shipmentCreateRequest struct {
	ReceiverName       string  `json:"receiver_name"`
	ReceiverPhone      string  `json:"receiver_phone"`
	ReceiverAddress    string  `json:"receiver_address"`
	PackageDescription string  `json:"package_description"`
	Weight             float64 `json:"weight"`
	Dimensions         string  `json:"dimensions"`
	PickupAddress      string  `json:"pickup_address"`
	DeliveryAddress    string  `json:"delivery_address"`
	PaymentMethod      string  `json:"payment_method"`
}

func (s *Server) handleShipmentCreate(w http.ResponseWriter, r *http.Request) {
	var req shipmentCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sh, err := s.shipments.Create(r.Context(), actorFrom(r), models.ShipmentCreateInput{
		ReceiverName:       req.ReceiverName,
		ReceiverPhone:      req.ReceiverPhone,
		ReceiverAddress:    req.ReceiverAddress,
		PackageDescription: req.PackageDescription,
		Weight:             req.Weight,
		Dimensions:         req.Dimensions,
		PickupAddress:      req.PickupAddress,
		DeliveryAddress:    req.DeliveryAddress,
		PaymentMethod:      req.PaymentMethod,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sh)
}

func (s *Server) handleShipmentList(w http.ResponseWriter, r *http.Request) {
	list, err := s.shipments.List(r.Context(), actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Shipment{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleShipmentGet(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	sh, err := s.shipments.Get(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

type statusUpdateRequest struct {
	Status      string `json:"status"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (s *Server) handleShipmentUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req statusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.shipments.UpdateStatus(r.Context(), actorFrom(r), id, req.Status, req.Location, req.Description); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": req.Status})
}

type assignCourierRequest struct {
	CourierID uint64 `json:"courier_id"`
}

func (s *Server) handleShipmentAssignCourier(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req assignCourierRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := s.shipments.AssignCourier(r.Context(), actorFrom(r), id, req.CourierID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"assigned_courier_id": req.CourierID})
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	snap, err := s.shipments.TrackByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
