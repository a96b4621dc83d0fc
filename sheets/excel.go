package sheets

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

// ExcelStore keeps every table as one worksheet of a single xlsx workbook.
// Writes rewrite the whole worksheet, so the workbook stays editable by
// hand between runs without the app tripping over leftover rows.
type ExcelStore struct {
	mu   sync.Mutex
	path string
}

func OpenExcel(path string) (*ExcelStore, error) {
	s := &ExcelStore{path: path}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f := excelize.NewFile()
		defer f.Close()
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("creating workbook %s: %w", path, err)
		}
	}
	return s, nil
}

func (s *ExcelStore) Load(ctx context.Context, table string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening workbook %s: %w", s.path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(table)
	if err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(table)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %s: %w", table, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(Record, len(header))
		for j, col := range header {
			if col == "" {
				continue
			}
			if j < len(row) {
				rec[col] = row[j]
			} else {
				rec[col] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *ExcelStore) Save(ctx context.Context, table string, columns []string, rows []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("opening workbook %s: %w", s.path, err)
		}
		f = excelize.NewFile()
	}
	defer f.Close()

	// Clear-and-rewrite: drop the old worksheet before writing. The default
	// sheet is left in place so the workbook never ends up sheetless.
	if idx, err := f.GetSheetIndex(table); err == nil && idx >= 0 {
		if err := f.DeleteSheet(table); err != nil {
			return fmt.Errorf("clearing sheet %s: %w", table, err)
		}
	}
	if _, err := f.NewSheet(table); err != nil {
		return fmt.Errorf("creating sheet %s: %w", table, err)
	}

	head := make([]interface{}, len(columns))
	for i, c := range columns {
		head[i] = c
	}
	if err := f.SetSheetRow(table, "A1", &head); err != nil {
		return fmt.Errorf("writing header of %s: %w", table, err)
	}
	for i, rec := range rows {
		cells := make([]interface{}, len(columns))
		for j, col := range columns {
			cells[j] = rec.Get(col)
		}
		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(table, start, &cells); err != nil {
			return fmt.Errorf("writing row %d of %s: %w", i+2, table, err)
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", s.path, err)
	}
	return nil
}
