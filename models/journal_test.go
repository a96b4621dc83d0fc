package models_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/rr77/adminlicores/models"
	"github.com/rr77/adminlicores/sheets"
	"github.com/rr77/adminlicores/utils"
)

func TestJournalRebuildsLedgerOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventario.journal")
	t.Setenv("LEDGER_JOURNAL_FILE", path)

	state, err := models.LoadState(context.Background(), sheets.NewMemStore())
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	addProduct(t, state, "Vodka", 2)
	if _, err := state.RecordEntry(testCtx(), &models.NewEntry{
		Product: "Vodka", Qty: decimal.NewFromInt(3), Location: models.LocationWarehouse,
	}); err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}

	// a fresh state over an empty workbook rebuilds the ledger from the journal
	reopened, err := models.LoadState(context.Background(), sheets.NewMemStore())
	if err != nil {
		t.Fatalf("LoadState (reopen): %v", err)
	}
	if len(reopened.Ledger) != 1 {
		t.Fatalf("ledger has %d movements after replay, want 1", len(reopened.Ledger))
	}
	m := reopened.Ledger[0]
	if m.Product != "Vodka" || !m.Qty.Equal(decimal.NewFromInt(3)) || m.Location != models.LocationWarehouse {
		t.Fatalf("replayed movement = %+v", m)
	}
}

func TestJournalSeededFromExistingLedger(t *testing.T) {
	t.Setenv("LEDGER_JOURNAL_FILE", "")
	store := sheets.NewMemStore()
	state, err := models.LoadState(context.Background(), store)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	addProduct(t, state, "Ron", 1)
	if _, err := state.RecordEntry(testCtx(), &models.NewEntry{
		Product: "Ron", Qty: decimal.NewFromInt(5), Location: models.LocationWarehouse,
	}); err != nil {
		t.Fatalf("RecordEntry: %v", err)
	}

	// first start with a journal on a workbook that already has movements
	path := filepath.Join(t.TempDir(), "inventario.journal")
	t.Setenv("LEDGER_JOURNAL_FILE", path)
	if _, err := models.LoadState(context.Background(), store); err != nil {
		t.Fatalf("LoadState (seed): %v", err)
	}

	replayed, err := models.LoadState(context.Background(), sheets.NewMemStore())
	if err != nil {
		t.Fatalf("LoadState (replay): %v", err)
	}
	if len(replayed.Ledger) != 1 || replayed.Ledger[0].Product != "Ron" {
		t.Fatalf("seeded journal replayed %d movements, want the Ron entry", len(replayed.Ledger))
	}
}

func TestStrictPersistenceRollsBackMemory(t *testing.T) {
	t.Setenv("STRICT_PERSISTENCE", "true")
	t.Setenv("LEDGER_JOURNAL_FILE", "")
	store := sheets.NewMemStore()
	state, err := models.LoadState(context.Background(), store)
	if err != nil {
		t.Fatalf("LoadState: %v", err)
	}
	addProduct(t, state, "Gin", 2)

	store.FailOn = map[string]bool{models.TableLedger: true}
	_, err = state.RecordEntry(testCtx(), &models.NewEntry{
		Product: "Gin", Qty: decimal.NewFromInt(4), Location: models.LocationBar,
	})

	if !utils.IsPersistenceError(err) {
		t.Fatalf("got %v, want PersistenceError", err)
	}
	if len(state.Ledger) != 0 || len(state.Entries) != 0 {
		t.Fatalf("strict mode must roll back memory: ledger=%d entries=%d",
			len(state.Ledger), len(state.Entries))
	}
}
