package models

import (
	"fmt"
	"strings"
	"time"
)

// Collection names understood by the persistence layer.
const (
	CollectionUsers    = "users"
	CollectionWorkers  = "workers"
	CollectionBookings = "bookings"
)

// User roles.
const (
	RoleCustomer = "customer"
	RoleWorker   = "worker"
	RoleAdmin    = "admin"
)

// Booking statuses. A booking starts confirmed and can only move to
// cancelled; records are never deleted.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// User is an account record in the users collection.
type User struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordSalt string    `json:"pwd_salt"`
	PasswordHash string    `json:"pwd_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// WorkerProfile describes a bookable worker and their daily working window.
type WorkerProfile struct {
	Username    string   `json:"username"`
	Name        string   `json:"name"`
	City        string   `json:"city"`
	Skills      []string `json:"skills"`
	RatePerHour int      `json:"rate_per_hour"`
	Bio         string   `json:"bio"`
	DailyStart  Clock    `json:"daily_start"`
	DailyEnd    Clock    `json:"daily_end"`
}

// DisplayName returns the profile name, falling back to the handle.
func (w *WorkerProfile) DisplayName() string {
	if w.Name != "" {
		return w.Name
	}
	return w.Username
}

// Validate checks the profile invariants before it is persisted.
func (w *WorkerProfile) Validate() error {
	if strings.TrimSpace(w.Username) == "" {
		return fmt.Errorf("worker profile: username is required")
	}
	if w.DailyStart >= w.DailyEnd {
		return fmt.Errorf("worker profile: daily window %s-%s is empty", w.DailyStart, w.DailyEnd)
	}
	return nil
}

// Booking is an appointment record. End is always Start plus the requested
// duration, both half-hour aligned.
type Booking struct {
	ID        string    `json:"id"`
	Customer  string    `json:"user"`
	Worker    string    `json:"worker"`
	Date      Date      `json:"date"`
	Start     Clock     `json:"start"`
	End       Clock     `json:"end"`
	CreatedAt time.Time `json:"created_at"`
	Status    string    `json:"status"`
}

// Cancelled reports whether the booking no longer occupies its slot.
func (b *Booking) Cancelled() bool {
	return b.Status == StatusCancelled
}

// SameHandle compares usernames the way the collections are keyed:
// case-insensitively.
func SameHandle(a, b string) bool {
	return strings.EqualFold(a, b)
}
