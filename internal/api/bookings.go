package api

import (
	"encoding/json"
	"net/http"
	"time"

	"shareit/internal/models"
)

type bookingRequest struct {
	ItemID int64     `json:"item_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	bookerID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}

	var body bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.ItemID <= 0 {
		writeError(w, http.StatusBadRequest, "item_id is required")
		return
	}
	if body.Start.IsZero() || body.End.IsZero() {
		writeError(w, http.StatusBadRequest, "start and end are required")
		return
	}

	booking, err := h.bookings.Create(r.Context(), body.ItemID, bookerID, body.Start, body.End)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

// decideBooking approves or rejects a waiting booking. Only the item
// owner may decide, and only once.
func (h *Handlers) decideBooking(w http.ResponseWriter, r *http.Request) {
	actorID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(r, "bookingId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	var approved bool
	switch r.URL.Query().Get("approved") {
	case "true":
		approved = true
	case "false":
		approved = false
	default:
		writeError(w, http.StatusBadRequest, "approved must be true or false")
		return
	}

	booking, err := h.bookings.Approve(r.Context(), bookingID, actorID, approved)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(r, "bookingId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := h.bookings.GetByID(r.Context(), bookingID, viewerID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *Handlers) listBookingsAsBooker(w http.ResponseWriter, r *http.Request) {
	h.listBookings(w, r, models.RoleBooker)
}

func (h *Handlers) listBookingsAsOwner(w http.ResponseWriter, r *http.Request) {
	h.listBookings(w, r, models.RoleOwner)
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request, role models.Role) {
	userID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	from, size, ok := h.pagination(w, r)
	if !ok {
		return
	}

	state, err := models.ParseBookingState(r.URL.Query().Get("state"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	bookings, err := h.bookings.List(r.Context(), role, userID, state, from, size)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}
