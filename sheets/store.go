// Package sheets is the persistence boundary of the application: a set of
// named tables with an ordered column header, living in a spreadsheet-like
// workbook that doubles as the human-editable surface.
package sheets

import "context"

// Record is one row, keyed by column name. Values are kept as strings the
// same way the workbook stores them; typed decoding belongs to the caller.
type Record map[string]string

// Store loads and saves whole tables.
//
// Load returns an empty result when the table does not exist. Save has
// full-overwrite semantics: the previous contents of the table are
// discarded and the table is created on first use.
type Store interface {
	Load(ctx context.Context, table string) ([]Record, error)
	Save(ctx context.Context, table string, columns []string, rows []Record) error
}

// Get reads a cell tolerating records loaded from a sheet whose header
// predates a newly added column.
func (r Record) Get(column string) string {
	if r == nil {
		return ""
	}
	return r[column]
}
