package sheets

import (
	"context"
	"fmt"
	"sync"
)

type memTable struct {
	columns []string
	rows    []Record
}

// MemStore is an in-memory Store used by tests and by the maintenance
// tools that rebuild projections without touching the workbook.
type MemStore struct {
	mu     sync.Mutex
	tables map[string]memTable

	// FailOn simulates a backend write failure for the named tables.
	FailOn map[string]bool
}

func NewMemStore() *MemStore {
	return &MemStore{tables: make(map[string]memTable)}
}

func (s *MemStore) Load(ctx context.Context, table string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tables[table]
	if !ok {
		return nil, nil
	}
	out := make([]Record, len(t.rows))
	for i, r := range t.rows {
		cp := make(Record, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out[i] = cp
	}
	return out, nil
}

func (s *MemStore) Save(ctx context.Context, table string, columns []string, rows []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailOn[table] {
		return fmt.Errorf("simulated write failure on %s", table)
	}
	cp := make([]Record, len(rows))
	for i, r := range rows {
		rec := make(Record, len(columns))
		for _, c := range columns {
			rec[c] = r.Get(c)
		}
		cp[i] = rec
	}
	s.tables[table] = memTable{columns: append([]string(nil), columns...), rows: cp}
	return nil
}
