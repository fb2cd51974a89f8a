package httpapi

import (
	"net/http"

	"github.com/ShipDesk/ShipDesk/internal/models"
)

type ticketCreateRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func (s *Server) handleTicketCreate(w http.ResponseWriter, r *http.Request) {
	var req ticketCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	t, err := s.support.CreateTicket(r.Context(), actorFrom(r), req.Subject, req.Description, req.Priority)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleTicketList(w http.ResponseWriter, r *http.Request) {
	list, err := s.support.ListTickets(r.Context(), actorFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []*models.Ticket{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleTicketGet(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	t, err := s.support.GetTicket(r.Context(), actorFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

type ticketMessageRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleTicketAddMessage(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req ticketMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	m, err := s.support.AddMessage(r.Context(), actorFrom(r), id, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

type feedbackRequest struct {
	ShipmentID *uint64 `json:"shipment_id"`
	Rating     int     `json:"rating"`
	Comment    string  `json:"comment"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	fb, err := s.support.SubmitFeedback(r.Context(), actorFrom(r), req.ShipmentID, req.Rating, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, fb)
}
