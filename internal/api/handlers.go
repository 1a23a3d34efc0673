package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"maidbook/internal/booking"
	"maidbook/internal/models"
	"maidbook/internal/workers"
)

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, jsonObject{"status": "OK"})
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var input registerRequest
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Role == "" {
		input.Role = models.RoleCustomer
	}

	user, err := s.accounts.Register(r.Context(), input.Username, input.Email, input.Password, input.Role)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonObject{
		"username": user.Username,
		"email":    user.Email,
		"role":     user.Role,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.accounts.Authenticate(r.Context(), input.Username, input.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	writeJSON(w, http.StatusOK, jsonObject{
		"username": user.Username,
		"role":     user.Role,
	})
}

func (s *Server) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	filters := workers.Filters{
		City:  r.URL.Query().Get("city"),
		Skill: r.URL.Query().Get("skill"),
	}

	profiles, err := s.workers.List(r.Context(), filters)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if profiles == nil {
		profiles = []models.WorkerProfile{}
	}
	writeJSON(w, http.StatusOK, jsonObject{"workers": profiles})
}

func (s *Server) handleGetWorker(w http.ResponseWriter, r *http.Request) {
	profile, err := s.workers.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonObject{"worker": profile})
}

type saveWorkerRequest struct {
	Name        string   `json:"name"`
	City        string   `json:"city"`
	Skills      []string `json:"skills"`
	RatePerHour int      `json:"rate_per_hour"`
	Bio         string   `json:"bio"`
	DailyStart  string   `json:"daily_start"`
	DailyEnd    string   `json:"daily_end"`
}

func (s *Server) handleSaveWorker(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())
	username := chi.URLParam(r, "username")

	// Workers edit their own profile; admins edit anyone's.
	if principal.Role != models.RoleAdmin && !models.SameHandle(principal.Username, username) {
		writeError(w, http.StatusForbidden, "not allowed to edit this profile")
		return
	}

	var input saveWorkerRequest
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start, err := models.ParseClock(input.DailyStart)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "daily_start: expected HH:MM")
		return
	}
	end, err := models.ParseClock(input.DailyEnd)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "daily_end: expected HH:MM")
		return
	}

	profile := models.WorkerProfile{
		Username:    username,
		Name:        input.Name,
		City:        input.City,
		Skills:      input.Skills,
		RatePerHour: input.RatePerHour,
		Bio:         input.Bio,
		DailyStart:  start,
		DailyEnd:    end,
	}
	if err := s.workers.Upsert(r.Context(), profile); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, jsonObject{"worker": profile})
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	profile, err := s.workers.Get(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	date, err := models.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "date: expected YYYY-MM-DD")
		return
	}
	minutes, err := strconv.Atoi(r.URL.Query().Get("duration_minutes"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "duration_minutes: expected an integer")
		return
	}

	starts, err := s.bookings.Availability(r.Context(), profile, date, time.Duration(minutes)*time.Minute)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	out := make([]string, 0, len(starts))
	for _, c := range starts {
		out = append(out, c.String())
	}
	writeJSON(w, http.StatusOK, jsonObject{
		"worker": profile.Username,
		"date":   date,
		"starts": out,
	})
}

type createBookingRequest struct {
	Worker          string `json:"worker"`
	Date            string `json:"date"`
	Start           string `json:"start"`
	DurationMinutes int    `json:"duration_minutes"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())

	var input createBookingRequest
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	profile, err := s.workers.Get(r.Context(), input.Worker)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	date, err := models.ParseDate(input.Date)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "date: expected YYYY-MM-DD")
		return
	}
	start, err := models.ParseClock(input.Start)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "start: expected HH:MM")
		return
	}

	result, err := s.bookings.Book(r.Context(), booking.Request{
		Customer: *principal,
		Worker:   *profile,
		Date:     date,
		Start:    start,
		Duration: time.Duration(input.DurationMinutes) * time.Minute,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, jsonObject{
		"booking":  result.Booking,
		"notified": result.Notified,
		"message":  result.Message,
	})
}

func (s *Server) handleListBookings(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())

	list, err := s.bookings.ListFor(r.Context(), *principal)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if list == nil {
		list = []models.Booking{}
	}
	writeJSON(w, http.StatusOK, jsonObject{"bookings": list})
}

func (s *Server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())

	if err := s.bookings.Cancel(r.Context(), *principal, chi.URLParam(r, "id")); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jsonObject{"status": "cancelled"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())
	if principal.Role != models.RoleAdmin {
		writeError(w, http.StatusForbidden, "admin only")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="maidbook-export.xlsx"`)
	if err := s.exporter.Export(r.Context(), w); err != nil {
		s.logger.Error().Err(err).Msg("export failed")
	}
}
