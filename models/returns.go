package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rr77/adminlicores/sheets"
	"github.com/rr77/adminlicores/utils"
)

// ReturnRecord is the Devoluciones log row. Qty is stored positive; the
// ledger holds the signed pair (or single entry for external returns).
type ReturnRecord struct {
	Timestamp   time.Time       `json:"timestamp"`
	Product     string          `json:"product"`
	Qty         decimal.Decimal `json:"qty"`
	Origin      Location        `json:"origin"`
	Destination Location        `json:"destination"`
	User        string          `json:"user"`
	Reason      string          `json:"reason"`
}

func (r ReturnRecord) toRecord() sheets.Record {
	return sheets.Record{
		"Fecha":    formatDateTime(r.Timestamp),
		"Producto": r.Product,
		"Cantidad": r.Qty.String(),
		"Origen":   string(r.Origin),
		"Destino":  string(r.Destination),
		"Usuario":  r.User,
		"Motivo":   r.Reason,
	}
}

func returnFromRecord(rec sheets.Record) ReturnRecord {
	return ReturnRecord{
		Timestamp:   parseSheetTime(rec.Get("Fecha")),
		Product:     rec.Get("Producto"),
		Qty:         utils.DecimalFromSheet(rec.Get("Cantidad")),
		Origin:      Location(rec.Get("Origen")),
		Destination: Location(rec.Get("Destino")),
		User:        rec.Get("Usuario"),
		Reason:      rec.Get("Motivo"),
	}
}

type NewReturn struct {
	Product     string          `json:"product" binding:"required" validate:"required"`
	Qty         decimal.Decimal `json:"qty" binding:"required"`
	Origin      Location        `json:"origin" binding:"required" validate:"required"`
	Destination Location        `json:"destination" binding:"required" validate:"required"`
	Timestamp   time.Time       `json:"timestamp"`
	Reason      string          `json:"reason"`
}

func (input *NewReturn) validate(s *State) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if !input.Qty.IsPositive() {
		return utils.ErrInvalidQuantity
	}
	if !input.Origin.Valid() && input.Origin != ExternalOrigin {
		return utils.ErrorRecordNotFound
	}
	if !input.Destination.Valid() {
		return utils.ErrorRecordNotFound
	}
	if _, ok := s.findProduct(input.Product); !ok {
		return utils.ErrorRecordNotFound
	}
	return nil
}

// RecordReturn registers product coming back to a location. The
// destination is always credited; the origin is debited only when the
// return comes from a tracked location rather than from a customer
// (ExternalOrigin), so an external return grows system-wide stock by qty
// while an internal one leaves the total unchanged.
func (s *State) RecordReturn(ctx context.Context, input *NewReturn) (*ReturnRecord, error) {
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

	var batch []Movement
	if input.Origin != ExternalOrigin {
		batch = append(batch, Movement{
			Timestamp: ts, Kind: MovementReturn, Product: input.Product,
			Qty: input.Qty.Neg(), Location: input.Origin, User: user,
		})
	}
	batch = append(batch, Movement{
		Timestamp: ts, Kind: MovementReturn, Product: input.Product,
		Qty: input.Qty, Location: input.Destination, User: user,
	})

	prevLedger, prevReturns := len(s.Ledger), len(s.Returns)
	if err := s.appendMovements(batch); err != nil {
		return nil, err
	}

	record := ReturnRecord{
		Timestamp:   ts,
		Product:     input.Product,
		Qty:         input.Qty,
		Origin:      input.Origin,
		Destination: input.Destination,
		User:        user,
		Reason:      input.Reason,
	}
	s.Returns = append(s.Returns, record)

	err := s.commit(ctx, func() {
		s.Ledger = s.Ledger[:prevLedger]
		s.Returns = s.Returns[:prevReturns]
	}, TableLedger, TableReturns)
	return &record, err
}
