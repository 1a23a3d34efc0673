// Package sheets mirrors the active booking list into a Google Sheets
// spreadsheet so operators can watch the schedule without touching the
// store. The mirror is one-way and best-effort: the spreadsheet is a view,
// never a source of truth.
package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"maidbook/internal/models"
	"maidbook/internal/store"
)

const mirrorRange = "Bookings!A1"

// ValuesWriter is the slice of the Sheets API the mirror needs.
type ValuesWriter interface {
	Clear(ctx context.Context, spreadsheetID, rng string) error
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
}

// Mirror pushes booking snapshots into a spreadsheet.
type Mirror struct {
	tables        store.Tables
	writer        ValuesWriter
	spreadsheetID string
	logger        zerolog.Logger
}

func NewMirror(s store.Store, writer ValuesWriter, spreadsheetID string, logger *zerolog.Logger) *Mirror {
	return &Mirror{
		tables:        store.Tables{Store: s},
		writer:        writer,
		spreadsheetID: spreadsheetID,
		logger:        logger.With().Str("component", "sheets").Logger(),
	}
}

// Sync replaces the mirrored sheet contents with the current active
// bookings. Cancelled bookings are dropped from the view entirely.
func (m *Mirror) Sync(ctx context.Context) error {
	bookings, _, err := m.tables.Bookings(ctx)
	if err != nil {
		return fmt.Errorf("sheets sync: %w", err)
	}

	active := filterActiveBookings(bookings)

	values := [][]any{
		{"ID", "Customer", "Worker", "Date", "Start", "End", "Status", "Created At"},
	}
	for i := range active {
		values = append(values, bookingRowValues(&active[i]))
	}

	if err := m.writer.Clear(ctx, m.spreadsheetID, mirrorRange); err != nil {
		return fmt.Errorf("sheets clear: %w", err)
	}
	if err := m.writer.Update(ctx, m.spreadsheetID, mirrorRange, values); err != nil {
		return fmt.Errorf("sheets update: %w", err)
	}

	m.logger.Info().Int("bookings", len(active)).Msg("spreadsheet synced")
	return nil
}

func filterActiveBookings(bookings []models.Booking) []models.Booking {
	var active []models.Booking
	for _, b := range bookings {
		if b.Cancelled() {
			continue
		}
		active = append(active, b)
	}
	return active
}

func bookingRowValues(b *models.Booking) []any {
	created := ""
	if !b.CreatedAt.IsZero() {
		created = b.CreatedAt.UTC().Format("2006-01-02 15:04:05")
	}
	return []any{
		b.ID,
		b.Customer,
		b.Worker,
		b.Date.String(),
		b.Start.String(),
		b.End.String(),
		b.Status,
		created,
	}
}

// apiWriter is the production ValuesWriter backed by the Sheets API.
type apiWriter struct {
	svc *sheetsapi.Service
}

// NewWriter builds a writer authenticated with a service-account key.
func NewWriter(ctx context.Context, credentialsJSON []byte) (ValuesWriter, error) {
	svc, err := sheetsapi.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheetsapi.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	return &apiWriter{svc: svc}, nil
}

func (w *apiWriter) Clear(ctx context.Context, spreadsheetID, rng string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := w.svc.Spreadsheets.Values.
		Clear(spreadsheetID, rng, &sheetsapi.ClearValuesRequest{}).
		Context(ctx).Do()
	return err
}

func (w *apiWriter) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := w.svc.Spreadsheets.Values.
		Update(spreadsheetID, rng, &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).Do()
	return err
}
