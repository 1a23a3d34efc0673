package audit

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"maidbook/internal/models"
	"maidbook/internal/store"
)

func TestExport(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemory()
	tables := store.Tables{Store: backend}

	_, err := tables.SaveUsers(ctx, []models.User{
		{Username: "ravi", Email: "ravi@example.com", Role: models.RoleCustomer},
	}, "")
	require.NoError(t, err)
	_, err = tables.SaveWorkers(ctx, []models.WorkerProfile{
		{Username: "asha", Name: "Asha", City: "Pune", Skills: []string{"cleaning", "cooking"}, RatePerHour: 300, DailyStart: 9 * 60, DailyEnd: 18 * 60},
	}, "")
	require.NoError(t, err)
	_, err = tables.SaveBookings(ctx, []models.Booking{
		{ID: "bk_1", Customer: "ravi", Worker: "asha", Date: "2026-03-02", Start: 10 * 60, End: 11 * 60, Status: models.StatusConfirmed},
	}, "")
	require.NoError(t, err)

	logger := zerolog.New(io.Discard)
	exporter := NewExporter(backend, &logger)

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(ctx, &buf))

	book, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer book.Close()

	assert.ElementsMatch(t, []string{"Users", "Workers", "Bookings"}, book.GetSheetList())

	cell, err := book.GetCellValue("Users", "A2")
	require.NoError(t, err)
	assert.Equal(t, "ravi", cell)

	cell, err = book.GetCellValue("Workers", "D2")
	require.NoError(t, err)
	assert.Equal(t, "cleaning, cooking", cell)

	cell, err = book.GetCellValue("Workers", "F2")
	require.NoError(t, err)
	assert.Equal(t, "09:00", cell)

	cell, err = book.GetCellValue("Bookings", "E2")
	require.NoError(t, err)
	assert.Equal(t, "10:00", cell)

	cell, err = book.GetCellValue("Bookings", "G2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, cell)

	// No password material in the users sheet header.
	header, err := book.GetRows("Users")
	require.NoError(t, err)
	require.NotEmpty(t, header)
	assert.NotContains(t, header[0], "pwd_hash")
}

func TestExport_EmptyCollections(t *testing.T) {
	logger := zerolog.New(io.Discard)
	exporter := NewExporter(store.NewMemory(), &logger)

	var buf bytes.Buffer
	require.NoError(t, exporter.Export(context.Background(), &buf))
	assert.NotZero(t, buf.Len())
}
