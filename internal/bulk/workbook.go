// Package bulk reads and writes the XLSX and JSON artifacts used for
// bulk import, export, backup and restore.
package bulk

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/crisoull/bodega/internal/model"
)

// Sheet names in the workbook artifact.
const (
	SheetTools       = "Herramientas"
	SheetFuels       = "Bencinas"
	SheetHistory     = "Historial Herramientas"
	SheetFuelHistory = "Historial Bencinas"
)

var (
	toolHeaders = []any{
		"ID", "Nombre", "Cantidad", "Peso (kg)", "Categoría", "Estado",
		"Ubicación", "Detalles", "Fecha Registro", "Última Actualización", "Foto",
	}
	fuelHeaders = []any{
		"ID", "Responsable", "Cantidad (litros)", "Tipo", "Monto", "Fecha",
		"Vehículo", "Kilometraje", "Detalles", "Boleta",
	}
	historyHeaders = []any{
		"ID Herramienta", "Herramienta", "Acción", "Fecha", "Hora",
		"Responsable", "Detalle", "Ubicación", "Estado", "Devolución Esperada",
	}
	fuelHistoryHeaders = []any{
		"ID Carga", "Responsable", "Cantidad (litros)", "Tipo", "Monto",
		"Fecha", "Vehículo", "Kilometraje", "Detalles", "Boleta",
	}
)

// Export writes the full data set as a workbook. The same artifact
// serves as a spreadsheet export and as a restorable backup.
func Export(w io.Writer, tools []model.Tool, fuels []model.Fuel, history []model.Movement, fuelHistory []model.FuelHistory) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetTools); err != nil {
		return fmt.Errorf("renaming tools sheet: %w", err)
	}
	for _, name := range []string{SheetFuels, SheetHistory, SheetFuelHistory} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %q: %w", name, err)
		}
	}

	if err := writeRow(f, SheetTools, 1, toolHeaders); err != nil {
		return err
	}
	for i, t := range tools {
		row := []any{
			t.ID, t.Name, t.Quantity, t.Weight, t.Category, t.Status,
			t.Location, t.Details,
			t.RegisterDate.Format(model.DateTimeFormat),
			t.LastUpdated.Format(model.DateTimeFormat),
			t.Photo,
		}
		if err := writeRow(f, SheetTools, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, SheetFuels, 1, fuelHeaders); err != nil {
		return err
	}
	for i, fl := range fuels {
		row := []any{
			fl.ID, fl.Name, fl.Quantity, fl.Type, fl.Amount,
			fl.Date.Format(model.DateFormat), fl.Vehicle,
			odometerCell(fl.Odometer), fl.Details, fl.Receipt,
		}
		if err := writeRow(f, SheetFuels, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, SheetHistory, 1, historyHeaders); err != nil {
		return err
	}
	for i, m := range history {
		row := []any{
			m.ToolID, m.ToolName, m.Action, m.Date, m.Time,
			m.Responsible, m.Detail, m.Location, m.Status, m.ExpectedReturn,
		}
		if err := writeRow(f, SheetHistory, i+2, row); err != nil {
			return err
		}
	}

	if err := writeRow(f, SheetFuelHistory, 1, fuelHistoryHeaders); err != nil {
		return err
	}
	for i, h := range fuelHistory {
		row := []any{
			h.ID, h.Responsible, h.Quantity, h.Type, h.Amount,
			h.Date, h.Vehicle, odometerCell(h.Odometer), h.Details, h.Receipt,
		}
		if err := writeRow(f, SheetFuelHistory, i+2, row); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, row, err)
	}
	return nil
}

func odometerCell(o *int64) any {
	if o == nil {
		return ""
	}
	return *o
}
