package models

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ledgerJournal is an append-only file the ledger of record is rebuilt
// from, one JSON line per movement. Projection sheets can always be
// regenerated from it (cmd/rebuild-projections), so a lost workbook write
// never loses a movement.
type ledgerJournal struct {
	mu   sync.Mutex
	path string
}

type journalLine struct {
	Timestamp time.Time       `json:"ts"`
	Kind      MovementKind    `json:"kind"`
	Product   string          `json:"product"`
	Qty       decimal.Decimal `json:"qty"`
	Location  Location        `json:"location"`
	User      string          `json:"user"`
}

func openLedgerJournal(path string) (*ledgerJournal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening ledger journal %s: %w", path, err)
	}
	f.Close()
	return &ledgerJournal{path: path}, nil
}

// append writes the whole batch and syncs before returning. Either every
// line of the batch reaches the file or the operation is rejected.
func (j *ledgerJournal) append(batch []Movement) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening ledger journal: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, m := range batch {
		line, err := json.Marshal(journalLine{
			Timestamp: m.Timestamp,
			Kind:      m.Kind,
			Product:   m.Product,
			Qty:       m.Qty,
			Location:  m.Location,
			User:      m.User,
		})
		if err != nil {
			return fmt.Errorf("encoding journal line: %w", err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("writing ledger journal: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing ledger journal: %w", err)
	}
	return f.Sync()
}

func (j *ledgerJournal) replay() ([]Movement, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ledger journal: %w", err)
	}
	defer f.Close()

	var out []Movement
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var l journalLine
		if err := json.Unmarshal(sc.Bytes(), &l); err != nil {
			return nil, fmt.Errorf("corrupt journal line %q: %w", sc.Text(), err)
		}
		out = append(out, Movement{
			Timestamp: l.Timestamp,
			Kind:      l.Kind,
			Product:   l.Product,
			Qty:       l.Qty,
			Location:  l.Location,
			User:      l.User,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ledger journal: %w", err)
	}
	return out, nil
}
