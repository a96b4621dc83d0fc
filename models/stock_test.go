package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rr77/adminlicores/models"
	"github.com/rr77/adminlicores/sheets"
	"github.com/rr77/adminlicores/utils"
)

func newTestState(t *testing.T) *models.State {
	t.Helper()
	state, err := models.LoadState(context.Background(), sheets.NewMemStore())
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	return state
}

func testCtx() context.Context {
	ctx := utils.SetUsernameInContext(context.Background(), "almacen")
	return utils.SetRoleInContext(ctx, "almacenista")
}

func addProduct(t *testing.T, state *models.State, name string, minimum int64) {
	t.Helper()
	_, err := state.CreateProduct(testCtx(), &models.NewProduct{
		Name:         name,
		Type:         models.ProductTypeBottle,
		Category:     "Destilados",
		UnitVolumeMl: decimal.NewFromInt(750),
		MinimumStock: decimal.NewFromInt(minimum),
	})
	if err != nil {
		t.Fatalf("CreateProduct %s: %v", name, err)
	}
}

func mov(kind models.MovementKind, product string, qty int64, loc models.Location) models.Movement {
	return models.Movement{
		Timestamp: time.Now(),
		Kind:      kind,
		Product:   product,
		Qty:       decimal.NewFromInt(qty),
		Location:  loc,
		User:      "test",
	}
}

func TestComputeStockEmptyLedger(t *testing.T) {
	rows := models.ComputeStock(nil)
	if len(rows) != 0 {
		t.Fatalf("expected empty result, got %d rows", len(rows))
	}
}

func TestComputeStockGroupsAndSums(t *testing.T) {
	ledger := []models.Movement{
		mov(models.MovementEntry, "Vodka", 10, models.LocationWarehouse),
		mov(models.MovementTransfer, "Vodka", -3, models.LocationWarehouse),
		mov(models.MovementTransfer, "Vodka", 3, models.LocationBar),
		mov(models.MovementEntry, "Ron", 4, models.LocationWarehouse),
	}
	rows := models.ComputeStock(ledger)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	find := func(product string, loc models.Location) decimal.Decimal {
		for _, r := range rows {
			if r.Product == product && r.Location == loc {
				return r.Stock
			}
		}
		t.Fatalf("missing row for %s/%s", product, loc)
		return decimal.Zero
	}
	if got := find("Vodka", models.LocationWarehouse); !got.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("Vodka/Almacén = %s, want 7", got)
	}
	if got := find("Vodka", models.LocationBar); !got.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("Vodka/Bar = %s, want 3", got)
	}
	if got := find("Ron", models.LocationWarehouse); !got.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("Ron/Almacén = %s, want 4", got)
	}
}

func TestComputeStockPermutationInvariant(t *testing.T) {
	ledger := []models.Movement{
		mov(models.MovementEntry, "Vodka", 10, models.LocationWarehouse),
		mov(models.MovementExitBottle, "Vodka", -2, models.LocationWarehouse),
		mov(models.MovementReturn, "Vodka", 1, models.LocationWarehouse),
	}
	reversed := []models.Movement{ledger[2], ledger[1], ledger[0]}

	a := models.ComputeStock(ledger)
	b := models.ComputeStock(reversed)
	if len(a) != len(b) {
		t.Fatalf("row count differs: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Product != b[i].Product || a[i].Location != b[i].Location || !a[i].Stock.Equal(b[i].Stock) {
			t.Fatalf("row %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestComputeStockIdempotent(t *testing.T) {
	ledger := []models.Movement{
		mov(models.MovementEntry, "Ron", 5, models.LocationBar),
		mov(models.MovementExitBottle, "Ron", -1, models.LocationBar),
	}
	first := models.ComputeStock(ledger)
	second := models.ComputeStock(ledger)
	if len(first) != 1 || len(second) != 1 || !first[0].Stock.Equal(second[0].Stock) {
		t.Fatalf("repeated computation differs: %+v vs %+v", first, second)
	}
}

func TestClassifyStockThresholds(t *testing.T) {
	cases := []struct {
		stock   int64
		minimum int64
		want    models.StockStatus
	}{
		{10, 0, models.StockStatusNoMinimum},
		{0, 0, models.StockStatusNoMinimum},
		{4, 5, models.StockStatusCritical},
		{5, 5, models.StockStatusLow},         // stock == min is not below min
		{8, 5, models.StockStatusLow},         // 5 <= 8 < 10
		{9, 5, models.StockStatusLow},         // boundary just below 2x
		{10, 5, models.StockStatusSufficient}, // exactly 2x
		{11, 5, models.StockStatusSufficient},
	}
	for _, tc := range cases {
		got := models.ClassifyStock(decimal.NewFromInt(tc.stock), decimal.NewFromInt(tc.minimum))
		if got != tc.want {
			t.Fatalf("ClassifyStock(%d, %d) = %s, want %s", tc.stock, tc.minimum, got, tc.want)
		}
	}
}

func TestCurrentStockEndToEnd(t *testing.T) {
	state := newTestState(t)
	ctx := testCtx()
	addProduct(t, state, "Vodka", 5)

	if _, err := state.RecordEntry(ctx, &models.NewEntry{
		Product: "Vodka", Qty: decimal.NewFromInt(10), Location: models.LocationWarehouse,
	}); err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}
	if _, err := state.RecordTransfer(ctx, &models.NewTransfer{
		Product: "Vodka", Qty: decimal.NewFromInt(3),
		Origin: models.LocationWarehouse, Destination: models.LocationBar,
	}); err != nil {
		t.Fatalf("RecordTransfer: %v", err)
	}

	details := state.CurrentStock(models.StockFilter{})
	if len(details) != 2 {
		t.Fatalf("expected 2 stock rows, got %d", len(details))
	}
	for _, d := range details {
		switch d.Location {
		case models.LocationWarehouse:
			if !d.Stock.Equal(decimal.NewFromInt(7)) {
				t.Fatalf("warehouse stock = %s, want 7", d.Stock)
			}
			if d.Status != models.StockStatusLow {
				t.Fatalf("warehouse status = %s, want %s", d.Status, models.StockStatusLow)
			}
		case models.LocationBar:
			if !d.Stock.Equal(decimal.NewFromInt(3)) {
				t.Fatalf("bar stock = %s, want 3", d.Stock)
			}
			if d.Status != models.StockStatusCritical {
				t.Fatalf("bar status = %s, want %s", d.Status, models.StockStatusCritical)
			}
		default:
			t.Fatalf("unexpected location %s", d.Location)
		}
	}
}

func TestCurrentStockFilters(t *testing.T) {
	state := newTestState(t)
	ctx := testCtx()
	addProduct(t, state, "Vodka", 2)
	if _, err := state.RecordEntry(ctx, &models.NewEntry{
		Product: "Vodka", Qty: decimal.NewFromInt(6), Location: models.LocationWarehouse,
	}); err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}
	if _, err := state.RecordEntry(ctx, &models.NewEntry{
		Product: "Vodka", Qty: decimal.NewFromInt(2), Location: models.LocationBar,
	}); err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}

	barOnly := state.CurrentStock(models.StockFilter{Locations: []models.Location{models.LocationBar}})
	if len(barOnly) != 1 || barOnly[0].Location != models.LocationBar {
		t.Fatalf("location filter failed: %+v", barOnly)
	}
	noMatch := state.CurrentStock(models.StockFilter{Categories: []string{"Vinos"}})
	if len(noMatch) != 0 {
		t.Fatalf("category filter failed: %+v", noMatch)
	}
}
