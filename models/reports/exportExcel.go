package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rr77/adminlicores/models"
)

// ExportMovementHistory writes the requested history range as an xlsx
// workbook. The caller sets the HTTP headers; this only streams the file.
func ExportMovementHistory(ctx context.Context, state *models.State, req HistoryRequest, w io.Writer) error {
	movements, err := GetMovementHistory(ctx, state, req)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Historial"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Fecha", "Tipo", "Producto", "Cantidad", "Ubicación", "Usuario"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, h)
	}
	for i, m := range movements {
		row := []interface{}{
			m.Timestamp.Format("2006-01-02 15:04:05"),
			string(m.Kind),
			m.Product,
			m.Qty.String(),
			string(m.Location),
			m.User,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing history export: %w", err)
	}
	return nil
}

// ExportDailyAudits writes the audits matching the filter as an xlsx
// workbook.
func ExportDailyAudits(ctx context.Context, state *models.State, filter models.AuditFilter, w io.Writer) error {
	started := time.Now()
	defer logSlowReport(ctx, "audit_export", started, nil)

	audits := state.GetDailyAudits(filter)

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Auditoria_Diaria"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Fecha", "Producto", "Ubicación", "Turno", "Stock_Teorico", "Stock_Fisico", "Diferencia"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, h)
	}
	for i, a := range audits {
		row := []interface{}{
			a.Date.Format("2006-01-02"),
			a.Product,
			string(a.Location),
			string(a.Shift),
			a.Theoretical.String(),
			a.Physical.String(),
			a.Difference.String(),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing audit export: %w", err)
	}
	return nil
}
