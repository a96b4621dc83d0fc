package sheets_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rr77/adminlicores/sheets"
)

func TestExcelStoreMissingTableLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.xlsx")
	store, err := sheets.OpenExcel(path)
	if err != nil {
		t.Fatalf("OpenExcel: %v", err)
	}

	rows, err := store.Load(context.Background(), "Inventario")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("missing table should load empty, got %d rows", len(rows))
	}
}

func TestExcelStoreSaveThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.xlsx")
	store, err := sheets.OpenExcel(path)
	if err != nil {
		t.Fatalf("OpenExcel: %v", err)
	}
	ctx := context.Background()

	columns := []string{"Nombre", "Tipo"}
	in := []sheets.Record{
		{"Nombre": "Vodka", "Tipo": "Botella"},
		{"Nombre": "Ron", "Tipo": "Botella"},
	}
	if err := store.Save(ctx, "Catalogo", columns, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := store.Load(ctx, "Catalogo")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d rows, want 2", len(out))
	}
	if out[0].Get("Nombre") != "Vodka" || out[1].Get("Tipo") != "Botella" {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestExcelStoreSaveOverwritesTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.xlsx")
	store, err := sheets.OpenExcel(path)
	if err != nil {
		t.Fatalf("OpenExcel: %v", err)
	}
	ctx := context.Background()

	columns := []string{"Nombre"}
	if err := store.Save(ctx, "Catalogo", columns, []sheets.Record{
		{"Nombre": "Vodka"}, {"Nombre": "Ron"}, {"Nombre": "Ginebra"},
	}); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := store.Save(ctx, "Catalogo", columns, []sheets.Record{
		{"Nombre": "Vodka"},
	}); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	out, err := store.Load(ctx, "Catalogo")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("save must clear and rewrite, got %d rows", len(out))
	}
}

func TestMemStoreFailOn(t *testing.T) {
	store := sheets.NewMemStore()
	store.FailOn = map[string]bool{"Entradas": true}
	ctx := context.Background()

	if err := store.Save(ctx, "Entradas", []string{"Fecha"}, nil); err == nil {
		t.Fatal("expected simulated failure")
	}
	if err := store.Save(ctx, "Salidas", []string{"Fecha"}, nil); err != nil {
		t.Fatalf("unexpected failure: %v", err)
	}
}
