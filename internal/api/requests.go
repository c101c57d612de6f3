package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"shareit/internal/models"
)

type requestRequest struct {
	Description string `json:"description"`
}

func (h *Handlers) createRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}

	var body requestRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}

	request, err := h.requests.Create(r.Context(), userID, body.Description)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

// listOwnRequests returns the caller's requests with offered items.
func (h *Handlers) listOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}

	requests, err := h.requests.GetAllByUser(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if requests == nil {
		requests = []*models.ItemRequest{}
	}
	writeJSON(w, http.StatusOK, requests)
}

// listOtherRequests pages through requests created by other users.
func (h *Handlers) listOtherRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	from, size, ok := h.pagination(w, r)
	if !ok {
		return
	}

	requests, err := h.requests.GetAll(r.Context(), userID, from, size)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if requests == nil {
		requests = []*models.ItemRequest{}
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *Handlers) getRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	requestID, ok := pathID(r, "requestId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid request id")
		return
	}

	request, err := h.requests.GetByID(r.Context(), requestID, userID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}
