package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rr77/adminlicores/sheets"
	"github.com/rr77/adminlicores/utils"
)

// TransferRecord is the Transferencias log row. The ledger carries the
// pair of signed entries; this row keeps the human-readable summary with
// the quantity always positive.
type TransferRecord struct {
	Timestamp   time.Time       `json:"timestamp"`
	Product     string          `json:"product"`
	Qty         decimal.Decimal `json:"qty"`
	Origin      Location        `json:"origin"`
	Destination Location        `json:"destination"`
	User        string          `json:"user"`
}

func (r TransferRecord) toRecord() sheets.Record {
	return sheets.Record{
		"Fecha":    formatDateTime(r.Timestamp),
		"Producto": r.Product,
		"Cantidad": r.Qty.String(),
		"Origen":   string(r.Origin),
		"Destino":  string(r.Destination),
		"Usuario":  r.User,
	}
}

func transferFromRecord(rec sheets.Record) TransferRecord {
	return TransferRecord{
		Timestamp:   parseSheetTime(rec.Get("Fecha")),
		Product:     rec.Get("Producto"),
		Qty:         utils.DecimalFromSheet(rec.Get("Cantidad")),
		Origin:      Location(rec.Get("Origen")),
		Destination: Location(rec.Get("Destino")),
		User:        rec.Get("Usuario"),
	}
}

type NewTransfer struct {
	Product     string          `json:"product" binding:"required" validate:"required"`
	Qty         decimal.Decimal `json:"qty" binding:"required"`
	Origin      Location        `json:"origin" binding:"required" validate:"required"`
	Destination Location        `json:"destination" binding:"required" validate:"required"`
	Timestamp   time.Time       `json:"timestamp"`
}

func (input *NewTransfer) validate(s *State) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if !input.Qty.IsPositive() {
		return utils.ErrInvalidQuantity
	}
	if input.Origin == input.Destination {
		return utils.ErrInvalidRoute
	}
	if !input.Origin.Valid() || !input.Destination.Valid() {
		return utils.ErrorRecordNotFound
	}
	if _, ok := s.findProduct(input.Product); !ok {
		return utils.ErrorRecordNotFound
	}
	return nil
}

// RecordTransfer moves stock between locations: two ledger entries that
// cancel out system-wide (-qty at origin, +qty at destination), visible
// together or not at all to any stock read.
func (s *State) RecordTransfer(ctx context.Context, input *NewTransfer) (*TransferRecord, error) {
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

	prevLedger, prevTransfers := len(s.Ledger), len(s.Transfers)
	if err := s.appendMovements([]Movement{
		{Timestamp: ts, Kind: MovementTransfer, Product: input.Product, Qty: input.Qty.Neg(), Location: input.Origin, User: user},
		{Timestamp: ts, Kind: MovementTransfer, Product: input.Product, Qty: input.Qty, Location: input.Destination, User: user},
	}); err != nil {
		return nil, err
	}

	record := TransferRecord{
		Timestamp:   ts,
		Product:     input.Product,
		Qty:         input.Qty,
		Origin:      input.Origin,
		Destination: input.Destination,
		User:        user,
	}
	s.Transfers = append(s.Transfers, record)

	err := s.commit(ctx, func() {
		s.Ledger = s.Ledger[:prevLedger]
		s.Transfers = s.Transfers[:prevTransfers]
	}, TableLedger, TableTransfers)
	return &record, err
}
