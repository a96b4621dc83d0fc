package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rr77/adminlicores/sheets"
	"github.com/rr77/adminlicores/utils"
)

// Movement is one signed entry of the append-only inventory ledger, the
// sole source of truth for quantities. Positive quantities increase stock
// at the location, negative ones decrease it. Entries are never updated or
// deleted; a mistake is corrected with a compensating movement.
type Movement struct {
	Timestamp time.Time
	Kind      MovementKind
	Product   string
	Qty       decimal.Decimal
	Location  Location
	User      string
}

func (m Movement) toRecord() sheets.Record {
	return sheets.Record{
		"Fecha":     formatDateTime(m.Timestamp),
		"Tipo":      string(m.Kind),
		"Producto":  m.Product,
		"Cantidad":  m.Qty.String(),
		"Ubicación": string(m.Location),
		"Usuario":   m.User,
	}
}

func movementFromRecord(rec sheets.Record) Movement {
	return Movement{
		Timestamp: parseSheetTime(rec.Get("Fecha")),
		Kind:      MovementKind(rec.Get("Tipo")),
		Product:   rec.Get("Producto"),
		Qty:       utils.DecimalFromSheet(rec.Get("Cantidad")),
		Location:  Location(rec.Get("Ubicación")),
		User:      rec.Get("Usuario"),
	}
}

// appendMovements commits a recorder's batch to the ledger. The batch is
// appended as a whole under the state lock, so a concurrent stock read
// sees either none or all of it. When the journal is enabled the batch is
// written there first; a journal failure rejects the whole operation.
//
// Callers hold s.mu.
func (s *State) appendMovements(batch []Movement) error {
	if len(batch) == 0 {
		return nil
	}
	if s.journal != nil {
		if err := s.journal.append(batch); err != nil {
			return err
		}
	}
	s.Ledger = append(s.Ledger, batch...)
	return nil
}

// MovementHistory returns ledger entries within [from, to], newest first.
// Zero bounds disable the respective end of the filter.
func (s *State) MovementHistory(from, to time.Time) []Movement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Movement
	for _, m := range s.Ledger {
		if !from.IsZero() && m.Timestamp.Before(from) {
			continue
		}
		if !to.IsZero() && m.Timestamp.After(to) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
