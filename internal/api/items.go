package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"shareit/internal/models"
)

type itemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   int64  `json:"request_id"`
}

type commentRequest struct {
	Text string `json:"text"`
}

func (h *Handlers) createItem(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}

	var body itemRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if strings.TrimSpace(body.Description) == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	if body.Available == nil {
		writeError(w, http.StatusBadRequest, "available is required")
		return
	}

	item := &models.Item{
		Name:        body.Name,
		Description: body.Description,
		Available:   *body.Available,
		RequestID:   body.RequestID,
	}
	created, err := h.items.Create(r.Context(), ownerID, item)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handlers) getItem(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "itemId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	details, err := h.items.GetByID(r.Context(), id, viewerID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// listItems returns the caller's own items, with comments and adjacent
// bookings attached.
func (h *Handlers) listItems(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	from, size, ok := h.pagination(w, r)
	if !ok {
		return
	}

	items, err := h.items.GetAllByOwner(r.Context(), ownerID, from, size)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []*models.ItemDetails{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) updateItem(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "itemId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var patch models.ItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	item, err := h.items.Update(r.Context(), id, ownerID, patch)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handlers) deleteItem(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "itemId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.items.Delete(r.Context(), id, ownerID); err != nil {
		respondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) searchItems(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireCaller(w, r); !ok {
		return
	}
	from, size, ok := h.pagination(w, r)
	if !ok {
		return
	}

	items, err := h.items.Search(r.Context(), r.URL.Query().Get("text"), from, size)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handlers) createComment(w http.ResponseWriter, r *http.Request) {
	authorID, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(r, "itemId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var body commentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	comment, err := h.items.CreateComment(r.Context(), itemID, authorID, body.Text)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comment)
}
