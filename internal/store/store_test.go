package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maidbook/internal/models"
)

func TestMemoryStore_TokenDiscipline(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	rows, tok, err := s.Read(ctx, "bookings")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, Token(""), tok, "missing collection reads as zero token")

	row := json.RawMessage(`{"id":"bk_1"}`)

	// Create requires the zero token.
	_, err = s.Write(ctx, "bookings", []json.RawMessage{row}, Token("1"))
	assert.ErrorIs(t, err, ErrConflict)

	tok1, err := s.Write(ctx, "bookings", []json.RawMessage{row}, "")
	require.NoError(t, err)
	assert.NotEqual(t, Token(""), tok1)

	rows, tok, err = s.Read(ctx, "bookings")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, tok1, tok)

	// A write against the current token advances it.
	tok2, err := s.Write(ctx, "bookings", []json.RawMessage{row, row}, tok1)
	require.NoError(t, err)
	assert.NotEqual(t, tok1, tok2)

	// The stale token now loses.
	_, err = s.Write(ctx, "bookings", []json.RawMessage{row}, tok1)
	assert.ErrorIs(t, err, ErrConflict)

	// Zero token after creation also loses.
	_, err = s.Write(ctx, "bookings", []json.RawMessage{row}, "")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStore_ReadIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_, err := s.Write(ctx, "users", []json.RawMessage{json.RawMessage(`{"a":1}`)}, "")
	require.NoError(t, err)

	rows, _, err := s.Read(ctx, "users")
	require.NoError(t, err)
	rows[0] = json.RawMessage(`{"mutated":true}`)

	again, _, err := s.Read(ctx, "users")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(again[0]))
}

func TestTables_RoundTrip(t *testing.T) {
	ctx := context.Background()
	tables := Tables{Store: NewMemory()}

	bookings, tok, err := tables.Bookings(ctx)
	require.NoError(t, err)
	assert.Empty(t, bookings)

	start, _ := models.ParseClock("10:00")
	end, _ := models.ParseClock("11:00")
	booking := models.Booking{
		ID:       "bk_20260302100000_1",
		Customer: "ravi",
		Worker:   "asha",
		Date:     "2026-03-02",
		Start:    start,
		End:      end,
		Status:   models.StatusConfirmed,
	}

	tok, err = tables.SaveBookings(ctx, []models.Booking{booking}, tok)
	require.NoError(t, err)

	loaded, tok2, err := tables.Bookings(ctx)
	require.NoError(t, err)
	assert.Equal(t, tok, tok2)
	require.Len(t, loaded, 1)
	assert.Equal(t, booking.ID, loaded[0].ID)
	assert.Equal(t, "10:00", loaded[0].Start.String())
	assert.Equal(t, "11:00", loaded[0].End.String())
}

func TestTables_WorkersAndUsers(t *testing.T) {
	ctx := context.Background()
	tables := Tables{Store: NewMemory()}

	workers, tok, err := tables.Workers(ctx)
	require.NoError(t, err)
	assert.Empty(t, workers)

	profile := models.WorkerProfile{
		Username:   "asha",
		Name:       "Asha K",
		City:       "Pune",
		Skills:     []string{"cleaning", "cooking"},
		DailyStart: 9 * 60,
		DailyEnd:   18 * 60,
	}
	_, err = tables.SaveWorkers(ctx, []models.WorkerProfile{profile}, tok)
	require.NoError(t, err)

	loaded, _, err := tables.Workers(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, []string{"cleaning", "cooking"}, loaded[0].Skills)

	users, tok, err := tables.Users(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = tables.SaveUsers(ctx, []models.User{{Username: "ravi", Role: models.RoleCustomer}}, tok)
	require.NoError(t, err)
}
