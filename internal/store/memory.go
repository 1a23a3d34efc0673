package store

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
)

// MemoryStore keeps collections in process memory with the same token
// semantics as the durable backends. Used in tests and as the default when
// no backend is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string]*memoryTable
}

type memoryTable struct {
	rows    []json.RawMessage
	version int64
}

func NewMemory() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*memoryTable)}
}

func (s *MemoryStore) Read(_ context.Context, collection string) ([]json.RawMessage, Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table, ok := s.tables[collection]
	if !ok {
		return nil, "", nil
	}

	rows := make([]json.RawMessage, len(table.rows))
	copy(rows, table.rows)
	return rows, Token(strconv.FormatInt(table.version, 10)), nil
}

func (s *MemoryStore) Write(_ context.Context, collection string, rows []json.RawMessage, expected Token) (Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[collection]
	if !ok {
		if expected != "" {
			return "", ErrConflict
		}
		table = &memoryTable{}
		s.tables[collection] = table
	} else if Token(strconv.FormatInt(table.version, 10)) != expected {
		return "", ErrConflict
	}

	table.rows = make([]json.RawMessage, len(rows))
	copy(table.rows, rows)
	table.version++
	return Token(strconv.FormatInt(table.version, 10)), nil
}
