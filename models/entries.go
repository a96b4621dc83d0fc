package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rr77/adminlicores/sheets"
	"github.com/rr77/adminlicores/utils"
)

// EntryRecord is the human-readable Entradas row kept alongside the
// ledger entry for audit trail.
type EntryRecord struct {
	Timestamp time.Time       `json:"timestamp"`
	Product   string          `json:"product"`
	Qty       decimal.Decimal `json:"qty"`
	User      string          `json:"user"`
	Location  Location        `json:"location"`
}

func (r EntryRecord) toRecord() sheets.Record {
	return sheets.Record{
		"Fecha":     formatDateTime(r.Timestamp),
		"Producto":  r.Product,
		"Cantidad":  r.Qty.String(),
		"Usuario":   r.User,
		"Ubicación": string(r.Location),
	}
}

func entryFromRecord(rec sheets.Record) EntryRecord {
	return EntryRecord{
		Timestamp: parseSheetTime(rec.Get("Fecha")),
		Product:   rec.Get("Producto"),
		Qty:       utils.DecimalFromSheet(rec.Get("Cantidad")),
		User:      rec.Get("Usuario"),
		Location:  Location(rec.Get("Ubicación")),
	}
}

type NewEntry struct {
	Product   string          `json:"product" binding:"required" validate:"required"`
	Qty       decimal.Decimal `json:"qty" binding:"required"`
	Location  Location        `json:"location" binding:"required" validate:"required"`
	Timestamp time.Time       `json:"timestamp"`
}

func (input *NewEntry) validate(s *State) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if !input.Qty.IsPositive() {
		return utils.ErrInvalidQuantity
	}
	if !input.Location.Valid() {
		return utils.ErrorRecordNotFound
	}
	if _, ok := s.findProduct(input.Product); !ok {
		return utils.ErrorRecordNotFound
	}
	return nil
}

// RecordEntry registers inbound stock: one positive ledger entry plus the
// Entradas log row. The acting user is taken from the request context.
func (s *State) RecordEntry(ctx context.Context, input *NewEntry) (*EntryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := input.validate(s); err != nil {
		return nil, err
	}
	user, _ := utils.GetUsernameFromContext(ctx)
	ts := input.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	prevLedger, prevEntries := len(s.Ledger), len(s.Entries)
	if err := s.appendMovements([]Movement{{
		Timestamp: ts,
		Kind:      MovementEntry,
		Product:   input.Product,
		Qty:       input.Qty,
		Location:  input.Location,
		User:      user,
	}}); err != nil {
		return nil, err
	}

	record := EntryRecord{
		Timestamp: ts,
		Product:   input.Product,
		Qty:       input.Qty,
		User:      user,
		Location:  input.Location,
	}
	s.Entries = append(s.Entries, record)

	err := s.commit(ctx, func() {
		s.Ledger = s.Ledger[:prevLedger]
		s.Entries = s.Entries[:prevEntries]
	}, TableLedger, TableEntries)
	return &record, err
}
