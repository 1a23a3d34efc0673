package store

import (
	"context"
	"encoding/json"
	"fmt"

	"maidbook/internal/models"
)

// Tables is a typed view over a Store for the three record collections.
type Tables struct {
	Store Store
}

func decodeRows[T any](collection string, rows []json.RawMessage) ([]T, error) {
	out := make([]T, 0, len(rows))
	for i, raw := range rows {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s row %d: %w", collection, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func encodeRows[T any](collection string, items []T) ([]json.RawMessage, error) {
	rows := make([]json.RawMessage, 0, len(items))
	for i, v := range items {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s row %d: %w", collection, i, err)
		}
		rows = append(rows, raw)
	}
	return rows, nil
}

func (t Tables) Users(ctx context.Context) ([]models.User, Token, error) {
	rows, tok, err := t.Store.Read(ctx, models.CollectionUsers)
	if err != nil {
		return nil, "", err
	}
	users, err := decodeRows[models.User](models.CollectionUsers, rows)
	return users, tok, err
}

func (t Tables) SaveUsers(ctx context.Context, users []models.User, expected Token) (Token, error) {
	rows, err := encodeRows(models.CollectionUsers, users)
	if err != nil {
		return "", err
	}
	return t.Store.Write(ctx, models.CollectionUsers, rows, expected)
}

func (t Tables) Workers(ctx context.Context) ([]models.WorkerProfile, Token, error) {
	rows, tok, err := t.Store.Read(ctx, models.CollectionWorkers)
	if err != nil {
		return nil, "", err
	}
	workers, err := decodeRows[models.WorkerProfile](models.CollectionWorkers, rows)
	return workers, tok, err
}

func (t Tables) SaveWorkers(ctx context.Context, workers []models.WorkerProfile, expected Token) (Token, error) {
	rows, err := encodeRows(models.CollectionWorkers, workers)
	if err != nil {
		return "", err
	}
	return t.Store.Write(ctx, models.CollectionWorkers, rows, expected)
}

func (t Tables) Bookings(ctx context.Context) ([]models.Booking, Token, error) {
	rows, tok, err := t.Store.Read(ctx, models.CollectionBookings)
	if err != nil {
		return nil, "", err
	}
	bookings, err := decodeRows[models.Booking](models.CollectionBookings, rows)
	return bookings, tok, err
}

func (t Tables) SaveBookings(ctx context.Context, bookings []models.Booking, expected Token) (Token, error) {
	rows, err := encodeRows(models.CollectionBookings, bookings)
	if err != nil {
		return "", err
	}
	return t.Store.Write(ctx, models.CollectionBookings, rows, expected)
}
