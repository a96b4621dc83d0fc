package models_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rr77/adminlicores/models"
	"github.com/rr77/adminlicores/sheets"
	"github.com/rr77/adminlicores/utils"
)

func TestRecordEntryAppendsPositiveMovement(t *testing.T) {
	state := newTestState(t)
	ctx := testCtx()
	addProduct(t, state, "Ron", 2)

	record, err := state.RecordEntry(ctx, &models.NewEntry{
		Product: "Ron", Qty: decimal.NewFromInt(5), Location: models.LocationWarehouse,
	})
	if err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}
	if record.User != "almacen" {
		t.Fatalf("user = %q, want almacen", record.User)
	}
	if len(state.Ledger) != 1 {
		t.Fatalf("ledger has %d entries, want 1", len(state.Ledger))
	}
	if !state.Ledger[0].Qty.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("ledger qty = %s, want 5", state.Ledger[0].Qty)
	}
	if len(state.Entries) != 1 {
		t.Fatalf("entries log has %d rows, want 1", len(state.Entries))
	}
}

func TestRecordEntryRejectsBadInput(t *testing.T) {
	state := newTestState(t)
	ctx := testCtx()
	addProduct(t, state, "Ron", 2)

	_, err := state.RecordEntry(ctx, &models.NewEntry{
		Product: "Ron", Qty: decimal.NewFromInt(-1), Location: models.LocationBar,
	})
	if !errors.Is(err, utils.ErrInvalidQuantity) {
		t.Fatalf("negative qty: got %v, want ErrInvalidQuantity", err)
	}

	_, err = state.RecordEntry(ctx, &models.NewEntry{
		Product: "Ron", Qty: decimal.Zero, Location: models.LocationBar,
	})
	if err == nil {
		t.Fatal("zero qty: expected error")
	}

	_, err = state.RecordEntry(ctx, &models.NewEntry{
		Product: "Whisky", Qty: decimal.NewFromInt(1), Location: models.LocationBar,
	})
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("unknown product: got %v, want ErrorRecordNotFound", err)
	}

	if len(state.Ledger) != 0 {
		t.Fatalf("rejected inputs must not touch the ledger, found %d entries", len(state.Ledger))
	}
}

func TestRecordTransferIsZeroSum(t *testing.T) {
	state := newTestState(t)
	ctx := testCtx()
	addProduct(t, state, "Vodka", 2)
	if _, err := state.RecordEntry(ctx, &models.NewEntry{
		Product: "Vodka", Qty: decimal.NewFromInt(10), Location: models.LocationWarehouse,
	}); err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}

	if _, err := state.RecordTransfer(ctx, &models.NewTransfer{
		Product: "Vodka", Qty: decimal.NewFromInt(4),
		Origin: models.LocationWarehouse, Destination: models.LocationBar,
	}); err != nil {
		t.Fatalf("RecordTransfer: %v", err)
	}

	if len(state.Ledger) != 3 {
		t.Fatalf("ledger has %d entries, want 3", len(state.Ledger))
	}
	total := decimal.Zero
	for _, m := range state.Ledger[1:] {
		total = total.Add(m.Qty)
	}
	if !total.IsZero() {
		t.Fatalf("transfer pair sums to %s, want 0", total)
	}
}

func TestRecordTransferRejectsSameRoute(t *testing.T) {
	state := newTestState(t)
	ctx := testCtx()
	addProduct(t, state, "Vodka", 2)

	_, err := state.RecordTransfer(ctx, &models.NewTransfer{
		Product: "Vodka", Qty: decimal.NewFromInt(1),
		Origin: models.LocationBar, Destination: models.LocationBar,
	})
	if !errors.Is(err, utils.ErrInvalidRoute) {
		t.Fatalf("got %v, want ErrInvalidRoute", err)
	}
	if len(state.Ledger) != 0 {
		t.Fatal("rejected transfer must not touch the ledger")
	}
}

func TestRecordReturnFromExternalOrigin(t *testing.T) {
	state := newTestState(t)
	ctx := testCtx()
	addProduct(t, state, "Vino Tinto", 2)

	if _, err := state.RecordReturn(ctx, &models.NewReturn{
		Product: "Vino Tinto", Qty: decimal.NewFromInt(2),
		Origin: models.ExternalOrigin, Destination: models.LocationCellar,
		Reason: "cliente devolvió botellas",
	}); err != nil {
		t.Fatalf("RecordReturn: %v", err)
	}

	// customer returns add stock with no offsetting debit
	if len(state.Ledger) != 1 {
		t.Fatalf("ledger has %d entries, want 1", len(state.Ledger))
	}
	if state.Ledger[0].Location != models.LocationCellar || !state.Ledger[0].Qty.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("unexpected ledger entry %+v", state.Ledger[0])
	}
}

func TestRecordReturnBetweenLocations(t *testing.T) {
	state := newTestState(t)
	ctx := testCtx()
	addProduct(t, state, "Vino Tinto", 2)

	if _, err := state.RecordReturn(ctx, &models.NewReturn{
		Product: "Vino Tinto", Qty: decimal.NewFromInt(2),
		Origin: models.LocationBar, Destination: models.LocationWarehouse,
	}); err != nil {
		t.Fatalf("RecordReturn: %v", err)
	}

	if len(state.Ledger) != 2 {
		t.Fatalf("ledger has %d entries, want 2", len(state.Ledger))
	}
	total := decimal.Zero
	for _, m := range state.Ledger {
		total = total.Add(m.Qty)
	}
	if !total.IsZero() {
		t.Fatalf("internal return sums to %s, want 0", total)
	}
}

func TestRecordBottleExitNegatesQuantity(t *testing.T) {
	state := newTestState(t)
	ctx := testCtx()
	addProduct(t, state, "Ginebra", 1)

	record, err := state.RecordBottleExit(ctx, &models.NewBottleExit{
		Product: "Ginebra", Qty: decimal.NewFromInt(2), Location: models.LocationBar,
	})
	if err != nil {
		t.Fatalf("RecordBottleExit: %v", err)
	}
	if !record.Qty.Equal(decimal.NewFromInt(-2)) {
		t.Fatalf("log qty = %s, want -2", record.Qty)
	}
	if len(state.Ledger) != 1 || !state.Ledger[0].Qty.Equal(decimal.NewFromInt(-2)) {
		t.Fatalf("unexpected ledger state %+v", state.Ledger)
	}
}

func TestRecordDrinkExitExpandsRecipe(t *testing.T) {
	state := newTestState(t)
	ctx := testCtx()
	addProduct(t, state, "Vodka", 2)

	if _, err := state.CreateRecipe(ctx, &models.NewRecipe{
		Drink: "Vodka Sour",
		Lines: []models.NewRecipeLine{
			{Ingredient: "Vodka", VolumeMl: decimal.NewFromInt(60)},
			{Ingredient: "Jugo de Limón", VolumeMl: decimal.NewFromInt(30)},
		},
	}); err != nil {
		t.Fatalf("CreateRecipe: %v", err)
	}

	result, err := state.RecordDrinkExit(ctx, &models.NewDrinkExit{
		Drink: "Vodka Sour", Servings: 2, Location: models.LocationBar,
	})
	if err != nil {
		t.Fatalf("RecordDrinkExit: %v", err)
	}

	// one ledger entry per ingredient, in liters
	if len(state.Ledger) != 2 {
		t.Fatalf("ledger has %d entries, want 2", len(state.Ledger))
	}
	wantVodka := decimal.NewFromInt(120).Div(decimal.NewFromInt(1000)) // 0.12
	wantLemon := decimal.NewFromInt(60).Div(decimal.NewFromInt(1000))  // 0.06
	if !state.Ledger[0].Qty.Equal(wantVodka.Neg()) {
		t.Fatalf("vodka qty = %s, want %s", state.Ledger[0].Qty, wantVodka.Neg())
	}
	if !state.Ledger[1].Qty.Equal(wantLemon.Neg()) {
		t.Fatalf("lemon qty = %s, want %s", state.Ledger[1].Qty, wantLemon.Neg())
	}

	// summary row counts servings, not volume, and stays out of the ledger
	if !result.Summary.Qty.Equal(decimal.NewFromInt(-2)) {
		t.Fatalf("summary qty = %s, want -2", result.Summary.Qty)
	}
	if len(state.Exits) != 1 {
		t.Fatalf("exits log has %d rows, want 1", len(state.Exits))
	}

	if len(result.Consumptions) != 2 {
		t.Fatalf("got %d consumption rows, want 2", len(result.Consumptions))
	}
	if !result.Consumptions[0].QtyUsed.Equal(wantVodka) {
		t.Fatalf("consumption qty = %s, want %s", result.Consumptions[0].QtyUsed, wantVodka)
	}
}

func TestRecordDrinkExitUnknownDrinkIsNoOp(t *testing.T) {
	state := newTestState(t)
	ctx := testCtx()

	_, err := state.RecordDrinkExit(ctx, &models.NewDrinkExit{
		Drink: "Inventado", Servings: 1, Location: models.LocationBar,
	})
	if !errors.Is(err, utils.ErrUnknownDrink) {
		t.Fatalf("got %v, want ErrUnknownDrink", err)
	}
	if len(state.Ledger) != 0 || len(state.Exits) != 0 || len(state.Consumptions) != 0 {
		t.Fatal("unknown drink must record nothing")
	}
}

func TestRecordDrinkExitRejectsZeroServings(t *testing.T) {
	state := newTestState(t)
	ctx := testCtx()

	_, err := state.RecordDrinkExit(ctx, &models.NewDrinkExit{
		Drink: "Vodka Sour", Servings: 0, Location: models.LocationBar,
	})
	if err == nil {
		t.Fatal("expected validation error for zero servings")
	}
}

func TestPersistenceFailureKeepsMemoryAndNamesTables(t *testing.T) {
	store := sheets.NewMemStore()
	state, err := models.LoadState(testCtx(), store)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	ctx := testCtx()
	addProduct(t, state, "Ron", 2)

	store.FailOn = map[string]bool{models.TableEntries: true}
	_, err = state.RecordEntry(ctx, &models.NewEntry{
		Product: "Ron", Qty: decimal.NewFromInt(3), Location: models.LocationWarehouse,
	})

	if !utils.IsPersistenceError(err) {
		t.Fatalf("got %v, want PersistenceError", err)
	}
	var pe *utils.PersistenceError
	errors.As(err, &pe)
	if len(pe.Tables) != 1 || pe.Tables[0] != models.TableEntries {
		t.Fatalf("failed tables = %v, want [%s]", pe.Tables, models.TableEntries)
	}
	// the operation happened in memory; only the flush is pending
	if len(state.Ledger) != 1 || len(state.Entries) != 1 {
		t.Fatal("in-memory commit must survive a flush failure")
	}
}
