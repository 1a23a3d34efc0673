// Package api exposes the booking system over JSON HTTP. Mutating booking
// routes authenticate with HTTP Basic against the accounts service; worker
// browsing and availability are open.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"maidbook/internal/accounts"
	"maidbook/internal/audit"
	"maidbook/internal/booking"
	"maidbook/internal/workers"
)

type Server struct {
	accounts *accounts.Service
	workers  *workers.Service
	bookings *booking.Service
	exporter *audit.Exporter
	logger   zerolog.Logger
}

func NewServer(
	accountsSvc *accounts.Service,
	workersSvc *workers.Service,
	bookingSvc *booking.Service,
	exporter *audit.Exporter,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		accounts: accountsSvc,
		workers:  workersSvc,
		bookings: bookingSvc,
		exporter: exporter,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.Use(middleware.Recoverer)
	mux.Use(s.logAccess)

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	mux.Get("/api/v1/status", s.handleStatus)
	mux.Post("/api/v1/register", s.handleRegister)
	mux.Post("/api/v1/login", s.handleLogin)

	mux.Get("/api/v1/workers", s.handleListWorkers)
	mux.Get("/api/v1/workers/{username}", s.handleGetWorker)
	mux.Get("/api/v1/workers/{username}/availability", s.handleAvailability)

	mux.Group(func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Put("/api/v1/workers/{username}", s.handleSaveWorker)

		r.Post("/api/v1/bookings", s.handleCreateBooking)
		r.Get("/api/v1/bookings", s.handleListBookings)
		r.Post("/api/v1/bookings/{id}/cancel", s.handleCancelBooking)

		r.Get("/api/v1/export", s.handleExport)
	})

	return mux
}
