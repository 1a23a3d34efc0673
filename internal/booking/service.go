package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"maidbook/internal/events"
	"maidbook/internal/metrics"
	"maidbook/internal/models"
	"maidbook/internal/notify"
	"maidbook/internal/schedule"
	"maidbook/internal/store"
)

// DefaultConflictRetries bounds how many times a transaction re-reads and
// re-validates after losing an optimistic-concurrency race. Unbounded retry
// risks livelock under contention.
const DefaultConflictRetries = 3

// Service runs availability queries and booking transactions against the
// shared booking collection. It holds no booking state between calls; every
// operation re-reads the collection because concurrent writers may have
// changed it.
type Service struct {
	tables          store.Tables
	notifier        notify.Notifier
	bus             *events.Bus
	conflictRetries int
	logger          zerolog.Logger
	now             func() time.Time
}

func NewService(s store.Store, notifier notify.Notifier, bus *events.Bus, conflictRetries int, logger *zerolog.Logger) *Service {
	if conflictRetries <= 0 {
		conflictRetries = DefaultConflictRetries
	}
	return &Service{
		tables:          store.Tables{Store: s},
		notifier:        notifier,
		bus:             bus,
		conflictRetries: conflictRetries,
		logger:          logger.With().Str("component", "booking").Logger(),
		now:             time.Now,
	}
}

// Request describes one booking attempt.
type Request struct {
	Customer models.User
	Worker   models.WorkerProfile
	Date     models.Date
	Start    models.Clock
	Duration time.Duration
}

// Result reports a committed booking. Notified distinguishes "booked and
// notified" from "booked, notification failed"; the booking stands either
// way.
type Result struct {
	Booking  models.Booking
	Notified bool
	Message  string
}

// Availability computes the bookable start times for a worker, date and
// duration. Read-only; safe to call repeatedly. An empty result means fully
// booked or nothing fits.
func (s *Service) Availability(ctx context.Context, worker *models.WorkerProfile, date models.Date, duration time.Duration) ([]models.Clock, error) {
	if err := validateQuery(worker, date, duration); err != nil {
		return nil, err
	}

	started := s.now()
	bookings, _, err := s.tables.Bookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	avail := schedule.AvailableStarts(worker, bookings, date, duration)
	metrics.IncAvailabilityQuery()
	metrics.ObserveAvailabilityDuration(s.now().Sub(started).Seconds())
	return avail, nil
}

// Book commits a booking. The requested slot is re-validated against the
// current collection immediately before the conditional write; a write
// conflict triggers a full re-read and re-validation, not a blind retry,
// because the conflicting writer may have taken the same slot.
func (s *Service) Book(ctx context.Context, req Request) (*Result, error) {
	if err := validateQuery(&req.Worker, req.Date, req.Duration); err != nil {
		return nil, err
	}
	if req.Customer.Username == "" {
		return nil, invalid("customer", "username is required")
	}
	end := req.Start.Add(req.Duration)
	if !req.Start.Valid() || !end.Valid() {
		return nil, invalid("start", "booking must end within the same day")
	}

	var committed models.Booking
	for attempt := 0; ; attempt++ {
		bookings, token, err := s.tables.Bookings(ctx)
		if err != nil {
			return nil, fmt.Errorf("load bookings: %w", err)
		}

		if !slotAvailable(schedule.AvailableStarts(&req.Worker, bookings, req.Date, req.Duration), req.Start) {
			metrics.IncBookingRejected("slot_unavailable")
			return nil, ErrSlotUnavailable
		}

		now := s.now()
		committed = models.Booking{
			ID:        newBookingID(now, uuid.NewString()),
			Customer:  req.Customer.Username,
			Worker:    req.Worker.Username,
			Date:      req.Date,
			Start:     req.Start,
			End:       end,
			CreatedAt: now,
			Status:    models.StatusConfirmed,
		}

		_, err = s.tables.SaveBookings(ctx, append(bookings, committed), token)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("persist booking: %w", err)
		}

		metrics.IncWriteConflict()
		s.logger.Warn().
			Int("attempt", attempt+1).
			Str("worker", req.Worker.Username).
			Str("date", req.Date.String()).
			Str("start", req.Start.String()).
			Msg("booking write lost a race, re-validating")

		if attempt >= s.conflictRetries {
			metrics.IncBookingRejected("conflict")
			return nil, fmt.Errorf("booking contended after %d attempts: %w", attempt+1, store.ErrConflict)
		}
	}

	metrics.IncBookingCreated()
	_ = s.bus.PublishJSON(events.TypeBookingCreated, committed)

	notified := s.notifyConfirmation(ctx, req.Customer, req.Worker, committed)
	message := "Booking created successfully."
	if !notified {
		message += " (Confirmation notification could not be sent.)"
	}

	s.logger.Info().
		Str("booking_id", committed.ID).
		Str("customer", committed.Customer).
		Str("worker", committed.Worker).
		Str("date", committed.Date.String()).
		Bool("notified", notified).
		Msg("booking committed")

	return &Result{Booking: committed, Notified: notified, Message: message}, nil
}

// Cancel flips a booking to cancelled. The transition is one-way and
// idempotent: cancelling twice succeeds without a second write. Only the
// booking's customer, its worker, or an admin may cancel.
func (s *Service) Cancel(ctx context.Context, principal models.User, bookingID string) error {
	for attempt := 0; ; attempt++ {
		bookings, token, err := s.tables.Bookings(ctx)
		if err != nil {
			return fmt.Errorf("load bookings: %w", err)
		}

		idx := -1
		for i := range bookings {
			if bookings[i].ID == bookingID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrNotFound
		}

		target := bookings[idx]
		if !canTouch(principal, target) {
			return ErrNotAllowed
		}
		if target.Cancelled() {
			return nil
		}

		bookings[idx].Status = models.StatusCancelled
		_, err = s.tables.SaveBookings(ctx, bookings, token)
		if err == nil {
			metrics.IncBookingCancelled()
			_ = s.bus.PublishJSON(events.TypeBookingCancelled, bookings[idx])
			s.logger.Info().Str("booking_id", bookingID).Str("by", principal.Username).Msg("booking cancelled")
			return nil
		}
		if !errors.Is(err, store.ErrConflict) {
			return fmt.Errorf("persist cancellation: %w", err)
		}

		metrics.IncWriteConflict()
		if attempt >= s.conflictRetries {
			return fmt.Errorf("cancellation contended after %d attempts: %w", attempt+1, store.ErrConflict)
		}
	}
}

// ListFor returns the bookings visible to a principal, sorted by date then
// start time: customers see their own, workers their schedule, admins
// everything.
func (s *Service) ListFor(ctx context.Context, principal models.User) ([]models.Booking, error) {
	bookings, _, err := s.tables.Bookings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load bookings: %w", err)
	}

	var visible []models.Booking
	for _, b := range bookings {
		switch principal.Role {
		case models.RoleAdmin:
			visible = append(visible, b)
		case models.RoleWorker:
			if models.SameHandle(b.Worker, principal.Username) {
				visible = append(visible, b)
			}
		default:
			if models.SameHandle(b.Customer, principal.Username) {
				visible = append(visible, b)
			}
		}
	}

	sort.Slice(visible, func(i, j int) bool {
		if visible[i].Date != visible[j].Date {
			return visible[i].Date < visible[j].Date
		}
		return visible[i].Start < visible[j].Start
	})
	return visible, nil
}

func (s *Service) notifyConfirmation(ctx context.Context, customer models.User, worker models.WorkerProfile, b models.Booking) bool {
	if customer.Email == "" {
		metrics.IncNotification("skipped")
		return false
	}

	subject := fmt.Sprintf("Booking Confirmed: %s on %s %s-%s",
		worker.DisplayName(), b.Date, b.Start, b.End)
	body := fmt.Sprintf(
		"Hello %s,\n\nYour booking is confirmed.\n\nWorker: %s\nDate:   %s\nTime:   %s - %s\nCity:   %s\n\nBooking ID: %s\n\nThanks for using Maid Services!",
		customer.Username, worker.DisplayName(), b.Date, b.Start, b.End, worker.City, b.ID)

	notified := s.notifier.Notify(ctx, customer.Email, subject, body)
	if notified {
		metrics.IncNotification("sent")
	} else {
		metrics.IncNotification("failed")
	}
	return notified
}

func validateQuery(worker *models.WorkerProfile, date models.Date, duration time.Duration) error {
	if err := worker.Validate(); err != nil {
		return invalid("worker", err.Error())
	}
	if strings.TrimSpace(date.String()) == "" {
		return invalid("date", "date is required")
	}
	if !schedule.ValidDuration(duration) {
		return invalid("duration", fmt.Sprintf("must be a positive multiple of %s", schedule.SlotStep))
	}
	return nil
}

func slotAvailable(avail []models.Clock, start models.Clock) bool {
	for _, s := range avail {
		if s == start {
			return true
		}
	}
	return false
}

func canTouch(principal models.User, b models.Booking) bool {
	if principal.Role == models.RoleAdmin {
		return true
	}
	return models.SameHandle(principal.Username, b.Customer) ||
		models.SameHandle(principal.Username, b.Worker)
}

// newBookingID builds a chronologically sortable id: a UTC second timestamp
// plus a uuid fragment so concurrent writers can never collide.
func newBookingID(now time.Time, entropy string) string {
	suffix := strings.ReplaceAll(entropy, "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return fmt.Sprintf("bk_%s_%s", now.UTC().Format("20060102150405"), suffix)
}
