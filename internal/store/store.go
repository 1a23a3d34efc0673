// Package store defines the persistence collaborator: named collections of
// JSON records read and written as a whole, guarded by an optimistic
// concurrency token. Backends differ in where the table document lives; the
// token discipline is the same everywhere.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// Token identifies one persisted state of a collection. It is opaque to
// callers; the zero value means the collection has not been created yet.
type Token string

// ErrConflict is returned by Write when the expected token no longer matches
// the collection's current state. The caller must re-read and re-validate
// before retrying; the conflicting writer may have taken the same slot.
var ErrConflict = errors.New("store: version conflict")

// Store is the read-modify-write contract over the three collections.
type Store interface {
	// Read returns the collection rows and the token for their state. A
	// missing collection yields no rows and a zero token, not an error.
	Read(ctx context.Context, collection string) ([]json.RawMessage, Token, error)

	// Write replaces the collection contents, conditioned on expected still
	// being the current token (zero token = create). Returns the token of
	// the new state, or ErrConflict when the condition fails.
	Write(ctx context.Context, collection string, rows []json.RawMessage, expected Token) (Token, error)
}

// tableDoc is the on-disk shape of a collection: a single JSON object with a
// rows array. Backends that persist whole documents share it.
type tableDoc struct {
	Rows []json.RawMessage `json:"rows"`
}

func encodeDoc(rows []json.RawMessage) ([]byte, error) {
	return json.MarshalIndent(tableDoc{Rows: rows}, "", "  ")
}

func decodeDoc(data []byte) ([]json.RawMessage, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var doc tableDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Rows, nil
}
