package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "maidbook.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	require.NoError(t, s.PingContext(ctx))

	rows, tok, err := s.Read(ctx, "bookings")
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Equal(t, Token(""), tok)

	row := json.RawMessage(`{"id":"bk_1"}`)
	tok1, err := s.Write(ctx, "bookings", []json.RawMessage{row}, "")
	require.NoError(t, err)

	rows, tok, err = s.Read(ctx, "bookings")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.JSONEq(t, string(row), string(rows[0]))
	assert.Equal(t, tok1, tok)

	tok2, err := s.Write(ctx, "bookings", []json.RawMessage{row, row}, tok1)
	require.NoError(t, err)
	assert.NotEqual(t, tok1, tok2)

	_, err = s.Write(ctx, "bookings", []json.RawMessage{row}, tok1)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = s.Write(ctx, "bookings", []json.RawMessage{row}, "")
	assert.ErrorIs(t, err, ErrConflict)

	// Collections are independent.
	_, err = s.Write(ctx, "users", nil, "")
	require.NoError(t, err)
}
