package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rr77/adminlicores/sheets"
)

var store sheets.Store

func GetStore() sheets.Store {
	return store
}

// OpenStore opens the workbook that backs every table. The file is created
// on first run. Call from main() before loading state.
//
// Env:
// - SHEETS_FILE (default "Inventario_Licores.xlsx")
func OpenStore() error {
	path := strings.TrimSpace(os.Getenv("SHEETS_FILE"))
	if path == "" {
		path = "Inventario_Licores.xlsx"
	}
	s, err := sheets.OpenExcel(path)
	if err != nil {
		return fmt.Errorf("opening sheet store: %w", err)
	}
	store = s
	return nil
}

// SetStore swaps the backing store. Used by tests and maintenance tools.
func SetStore(s sheets.Store) {
	store = s
}
