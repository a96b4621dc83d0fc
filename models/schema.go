package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rr77/adminlicores/sheets"
)

// Table names match the worksheet tabs the staff already knows.
const (
	TableCatalog     = "Catalogo"
	TableLedger      = "Inventario"
	TableEntries     = "Entradas"
	TableExits       = "Salidas"
	TableTransfers   = "Transferencias"
	TableReturns     = "Devoluciones"
	TableRecipes     = "Recetas"
	TablePhysical    = "StockFisico"
	TableDailyAudit  = "Auditoria_Diaria"
	TableWeeklyAudit = "Auditoria_Semanal"
	TableConsumption = "Consumos"
	TableUsers       = "Usuarios"
)

// Ordered column schema per table, version-controlled here instead of
// patched ad hoc at read time. Adding a column means appending it here;
// EnsureSchema migrates the workbook on the next start.
var tableColumns = map[string][]string{
	TableCatalog:     {"Nombre", "Tipo", "Categoria", "ML", "Stock Min"},
	TableLedger:      {"Fecha", "Tipo", "Producto", "Cantidad", "Ubicación", "Usuario"},
	TableEntries:     {"Fecha", "Producto", "Cantidad", "Usuario", "Ubicación"},
	TableExits:       {"Fecha", "Producto/Trago", "Cantidad", "Usuario", "Ubicación", "Tipo"},
	TableTransfers:   {"Fecha", "Producto", "Cantidad", "Origen", "Destino", "Usuario"},
	TableReturns:     {"Fecha", "Producto", "Cantidad", "Origen", "Destino", "Usuario", "Motivo"},
	TableRecipes:     {"Trago", "Ingrediente", "Cantidad_ml"},
	TablePhysical:    {"Fecha", "Producto", "Ubicación", "Turno", "Stock_Fisico"},
	TableDailyAudit:  {"Fecha", "Producto", "Ubicación", "Turno", "Stock_Teorico", "Stock_Fisico", "Diferencia"},
	TableWeeklyAudit: {"Semana", "Producto", "Ubicación", "Diferencia_Acumulada"},
	TableConsumption: {"Fecha", "Trago", "Ingrediente", "Cantidad_Usada", "Ubicación", "Usuario"},
	TableUsers:       {"Usuario", "Clave_Hash", "Rol"},
}

var tableOrder = []string{
	TableCatalog, TableLedger, TableEntries, TableExits, TableTransfers,
	TableReturns, TableRecipes, TablePhysical, TableDailyAudit,
	TableWeeklyAudit, TableConsumption, TableUsers,
}

func TableColumns(table string) []string {
	return tableColumns[table]
}

// EnsureSchema runs the one-time migration at load: every table is read and
// written back under the canonical column set, which creates missing tables
// and backfills columns added since the workbook was last touched.
func EnsureSchema(ctx context.Context, store sheets.Store) error {
	for _, table := range tableOrder {
		rows, err := store.Load(ctx, table)
		if err != nil {
			return fmt.Errorf("migrating %s: %w", table, err)
		}
		if err := store.Save(ctx, table, tableColumns[table], rows); err != nil {
			return fmt.Errorf("migrating %s: %w", table, err)
		}
	}
	return nil
}

const (
	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

func formatDateTime(t time.Time) string { return t.Format(layoutDateTime) }
func formatDate(t time.Time) string     { return t.Format(layoutDate) }

// parseSheetTime decodes a cell that may hold a timestamp or a bare date,
// possibly hand-typed. Unparseable cells decode as the zero time.
func parseSheetTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{layoutDateTime, layoutDate, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
