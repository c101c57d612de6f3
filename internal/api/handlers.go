package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"shareit/internal/domain"
	"shareit/internal/models"
)

// headerUserID identifies the acting user on every request.
const headerUserID = "X-Sharer-User-Id"

// Handlers bundles the four resource services behind the HTTP surface.
type Handlers struct {
	users    domain.UserService
	items    domain.ItemService
	bookings domain.BookingService
	requests domain.RequestService
	pageSize int
	logger   zerolog.Logger
}

func NewHandlers(users domain.UserService, items domain.ItemService, bookings domain.BookingService,
	requests domain.RequestService, pageSize int, logger zerolog.Logger) *Handlers {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}
	return &Handlers{
		users:    users,
		items:    items,
		bookings: bookings,
		requests: requests,
		pageSize: pageSize,
		logger:   logger,
	}
}

// callerID reads the identity header. A missing or malformed header is a
// client error, not an authorization failure.
func callerID(r *http.Request) (int64, bool) {
	raw := r.Header.Get(headerUserID)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handlers) requireCaller(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := callerID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, headerUserID+" header is required")
	}
	return id, ok
}

// pathID parses the named numeric path parameter.
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// pagination validates from/size query parameters. from is a row offset
// and must be non-negative; size must be positive.
func (h *Handlers) pagination(w http.ResponseWriter, r *http.Request) (from, size int, ok bool) {
	from, size = 0, h.pageSize

	if raw := r.URL.Query().Get("from"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "from must be a non-negative integer")
			return 0, 0, false
		}
		from = v
	}
	if raw := r.URL.Query().Get("size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "size must be a positive integer")
			return 0, 0, false
		}
		size = v
	}
	if size > models.MaxSearchPageSize {
		size = models.MaxSearchPageSize
	}
	return from, size, true
}
