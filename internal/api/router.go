package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"shareit/internal/config"
)

// NewRouter wires the middleware chain and all resource routes.
//
// Middleware order: RequestID → AccessLog → Metrics → RateLimit.
func NewRouter(cfg config.HTTPConfig, h *Handlers, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(AccessLog(logger))
	r.Use(Metrics)
	r.Use(NewRateLimiter(cfg.RateLimit).Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.createUser)
		r.Get("/", h.listUsers)

		r.Route("/{userId}", func(r chi.Router) {
			r.Get("/", h.getUser)
			r.Patch("/", h.updateUser)
			r.Delete("/", h.deleteUser)
		})
	})

	r.Route("/items", func(r chi.Router) {
		r.Post("/", h.createItem)
		r.Get("/", h.listItems)
		r.Get("/search", h.searchItems)

		r.Route("/{itemId}", func(r chi.Router) {
			r.Get("/", h.getItem)
			r.Patch("/", h.updateItem)
			r.Delete("/", h.deleteItem)
			r.Post("/comment", h.createComment)
		})
	})

	r.Route("/requests", func(r chi.Router) {
		r.Post("/", h.createRequest)
		r.Get("/", h.listOwnRequests)
		r.Get("/all", h.listOtherRequests)
		r.Get("/{requestId}", h.getRequest)
	})

	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", h.createBooking)
		r.Get("/", h.listBookingsAsBooker)
		r.Get("/owner", h.listBookingsAsOwner)

		r.Route("/{bookingId}", func(r chi.Router) {
			r.Get("/", h.getBooking)
			r.Patch("/", h.decideBooking)
		})
	})

	return r
}
