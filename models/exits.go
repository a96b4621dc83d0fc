package models

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rr77/adminlicores/sheets"
	"github.com/rr77/adminlicores/utils"
)

// ExitRecord is the Salidas log row, shared by bottle exits and drink
// exits. For a drink exit Product holds the drink name and Qty the number
// of servings; the per-ingredient detail lives in the ledger and in the
// Consumos table. Qty is stored negative, as the original sheet does.
type ExitRecord struct {
	Timestamp time.Time       `json:"timestamp"`
	Product   string          `json:"product"`
	Qty       decimal.Decimal `json:"qty"`
	User      string          `json:"user"`
	Location  Location        `json:"location"`
	Kind      MovementKind    `json:"kind"`
}

func (r ExitRecord) toRecord() sheets.Record {
	return sheets.Record{
		"Fecha":          formatDateTime(r.Timestamp),
		"Producto/Trago": r.Product,
		"Cantidad":       r.Qty.String(),
		"Usuario":        r.User,
		"Ubicación":      string(r.Location),
		"Tipo":           string(r.Kind),
	}
}

func exitFromRecord(rec sheets.Record) ExitRecord {
	return ExitRecord{
		Timestamp: parseSheetTime(rec.Get("Fecha")),
		Product:   rec.Get("Producto/Trago"),
		Qty:       utils.DecimalFromSheet(rec.Get("Cantidad")),
		User:      rec.Get("Usuario"),
		Location:  Location(rec.Get("Ubicación")),
		Kind:      MovementKind(rec.Get("Tipo")),
	}
}

// ConsumptionRecord is one Consumos row: the volume of one ingredient, in
// liters, used by one drink-exit event. Informational only; it is never
// read back into stock math.
type ConsumptionRecord struct {
	Timestamp  time.Time       `json:"timestamp"`
	Drink      string          `json:"drink"`
	Ingredient string          `json:"ingredient"`
	QtyUsed    decimal.Decimal `json:"qty_used"`
	Location   Location        `json:"location"`
	User       string          `json:"user"`
}

func (r ConsumptionRecord) toRecord() sheets.Record {
	return sheets.Record{
		"Fecha":          formatDateTime(r.Timestamp),
		"Trago":          r.Drink,
		"Ingrediente":    r.Ingredient,
		"Cantidad_Usada": r.QtyUsed.String(),
		"Ubicación":      string(r.Location),
		"Usuario":        r.User,
	}
}

func consumptionFromRecord(rec sheets.Record) ConsumptionRecord {
	return ConsumptionRecord{
		Timestamp:  parseSheetTime(rec.Get("Fecha")),
		Drink:      rec.Get("Trago"),
		Ingredient: rec.Get("Ingrediente"),
		QtyUsed:    utils.DecimalFromSheet(rec.Get("Cantidad_Usada")),
		Location:   Location(rec.Get("Ubicación")),
		User:       rec.Get("Usuario"),
	}
}

type NewBottleExit struct {
	Product   string          `json:"product" binding:"required" validate:"required"`
	Qty       decimal.Decimal `json:"qty" binding:"required"`
	Location  Location        `json:"location" binding:"required" validate:"required"`
	Timestamp time.Time       `json:"timestamp"`
}

func (input *NewBottleExit) validate(s *State) error {
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

// RecordBottleExit registers outbound stock in whole units: one negative
// ledger entry plus the Salidas log row.
func (s *State) RecordBottleExit(ctx context.Context, input *NewBottleExit) (*ExitRecord, error) {
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

	prevLedger, prevExits := len(s.Ledger), len(s.Exits)
	if err := s.appendMovements([]Movement{{
		Timestamp: ts,
		Kind:      MovementExitBottle,
		Product:   input.Product,
		Qty:       input.Qty.Neg(),
		Location:  input.Location,
		User:      user,
	}}); err != nil {
		return nil, err
	}

	record := ExitRecord{
		Timestamp: ts,
		Product:   input.Product,
		Qty:       input.Qty.Neg(),
		User:      user,
		Location:  input.Location,
		Kind:      MovementExitBottle,
	}
	s.Exits = append(s.Exits, record)

	err := s.commit(ctx, func() {
		s.Ledger = s.Ledger[:prevLedger]
		s.Exits = s.Exits[:prevExits]
	}, TableLedger, TableExits)
	return &record, err
}

type NewDrinkExit struct {
	Drink     string    `json:"drink" binding:"required" validate:"required"`
	Servings  int64     `json:"servings" binding:"required,min=1" validate:"min=1"`
	Location  Location  `json:"location" binding:"required" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
}

// DrinkExitResult reports what one drink exit produced.
type DrinkExitResult struct {
	Summary      ExitRecord          `json:"summary"`
	Consumptions []ConsumptionRecord `json:"consumptions"`
}

// RecordDrinkExit expands a served drink into its recipe: one negative
// ledger entry per ingredient, quantity in liters
// (volume_ml × servings / 1000), plus a Salidas summary row of -servings
// against the drink name (log only, never the ledger) and one Consumos
// row per ingredient. A drink without recipe lines is a no-op: the
// ErrUnknownDrink sentinel comes back with nothing recorded.
func (s *State) RecordDrinkExit(ctx context.Context, input *NewDrinkExit) (*DrinkExitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if input.Servings < 1 {
		return nil, utils.ErrInvalidQuantity
	}
	if !input.Location.Valid() {
		return nil, utils.ErrorRecordNotFound
	}

	lines := s.recipeFor(input.Drink)
	if len(lines) == 0 {
		return nil, utils.ErrUnknownDrink
	}

	user, _ := utils.GetUsernameFromContext(ctx)
	ts := input.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	servings := decimal.NewFromInt(input.Servings)
	thousand := decimal.NewFromInt(1000)

	batch := make([]Movement, 0, len(lines))
	consumptions := make([]ConsumptionRecord, 0, len(lines))
	for _, line := range lines {
		liters := line.VolumeMl.Mul(servings).Div(thousand)
		batch = append(batch, Movement{
			Timestamp: ts,
			Kind:      MovementExitDrink,
			Product:   line.Ingredient,
			Qty:       liters.Neg(),
			Location:  input.Location,
			User:      user,
		})
		consumptions = append(consumptions, ConsumptionRecord{
			Timestamp:  ts,
			Drink:      input.Drink,
			Ingredient: line.Ingredient,
			QtyUsed:    liters,
			Location:   input.Location,
			User:       user,
		})
	}

	prevLedger, prevExits, prevCons := len(s.Ledger), len(s.Exits), len(s.Consumptions)
	if err := s.appendMovements(batch); err != nil {
		return nil, err
	}

	summary := ExitRecord{
		Timestamp: ts,
		Product:   input.Drink,
		Qty:       servings.Neg(),
		User:      user,
		Location:  input.Location,
		Kind:      MovementExitDrink,
	}
	s.Exits = append(s.Exits, summary)
	s.Consumptions = append(s.Consumptions, consumptions...)

	err := s.commit(ctx, func() {
		s.Ledger = s.Ledger[:prevLedger]
		s.Exits = s.Exits[:prevExits]
		s.Consumptions = s.Consumptions[:prevCons]
	}, TableLedger, TableExits, TableConsumption)
	return &DrinkExitResult{Summary: summary, Consumptions: consumptions}, err
}
