// Package audit exports the three record collections as an Excel workbook,
// one sheet per collection, for operators who reconcile schedules offline.
package audit

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"maidbook/internal/models"
	"maidbook/internal/store"
)

// Exporter reads the collections and writes workbooks.
type Exporter struct {
	tables store.Tables
	logger zerolog.Logger
}

func NewExporter(s store.Store, logger *zerolog.Logger) *Exporter {
	return &Exporter{
		tables: store.Tables{Store: s},
		logger: logger.With().Str("component", "audit").Logger(),
	}
}

// Export writes the full workbook to w.
func (e *Exporter) Export(ctx context.Context, w io.Writer) error {
	users, _, err := e.tables.Users(ctx)
	if err != nil {
		return fmt.Errorf("audit export: %w", err)
	}
	workers, _, err := e.tables.Workers(ctx)
	if err != nil {
		return fmt.Errorf("audit export: %w", err)
	}
	bookings, _, err := e.tables.Bookings(ctx)
	if err != nil {
		return fmt.Errorf("audit export: %w", err)
	}

	book := newWorkbook()
	defer book.Close()

	if err := book.addSheet("Users", []string{"Username", "Email", "Role", "Created At"}); err != nil {
		return err
	}
	for _, u := range users {
		// Credentials stay out of exports.
		if err := book.writeRow([]any{u.Username, u.Email, u.Role, formatTime(u.CreatedAt)}); err != nil {
			return err
		}
	}

	if err := book.addSheet("Workers", []string{"Username", "Name", "City", "Skills", "Rate/h", "Daily Start", "Daily End"}); err != nil {
		return err
	}
	for _, p := range workers {
		if err := book.writeRow(workerRowValues(&p)); err != nil {
			return err
		}
	}

	if err := book.addSheet("Bookings", []string{"ID", "Customer", "Worker", "Date", "Start", "End", "Status", "Created At"}); err != nil {
		return err
	}
	for _, b := range bookings {
		if err := book.writeRow(bookingRowValues(&b)); err != nil {
			return err
		}
	}

	if err := book.save(w); err != nil {
		return fmt.Errorf("audit export: %w", err)
	}

	e.logger.Info().
		Int("users", len(users)).
		Int("workers", len(workers)).
		Int("bookings", len(bookings)).
		Msg("workbook exported")
	return nil
}

func workerRowValues(p *models.WorkerProfile) []any {
	return []any{
		p.Username,
		p.Name,
		p.City,
		joinSkills(p.Skills),
		p.RatePerHour,
		p.DailyStart.String(),
		p.DailyEnd.String(),
	}
}

func bookingRowValues(b *models.Booking) []any {
	return []any{
		b.ID,
		b.Customer,
		b.Worker,
		b.Date.String(),
		b.Start.String(),
		b.End.String(),
		b.Status,
		formatTime(b.CreatedAt),
	}
}

func joinSkills(skills []string) string {
	out := ""
	for i, s := range skills {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

// workbook wraps excelize with a current-sheet cursor.
type workbook struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func newWorkbook() *workbook {
	return &workbook{file: excelize.NewFile()}
}

func (w *workbook) addSheet(name string, header []string) error {
	if len(name) > 31 {
		name = name[:31]
	}

	if w.currentSheet == "" {
		w.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	w.currentSheet = name
	w.currentRow = 1

	headerRow := make([]any, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := w.writeRow(headerRow); err != nil {
		return err
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, 1)
		endCell, _ := excelize.CoordinatesToCellName(len(header), 1)
		_ = w.file.SetCellStyle(name, startCell, endCell, style)
	}
	return nil
}

func (w *workbook) writeRow(row []any) error {
	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}
	w.currentRow++
	return nil
}

func (w *workbook) save(wr io.Writer) error { return w.file.Write(wr) }

func (w *workbook) Close() error { return w.file.Close() }
