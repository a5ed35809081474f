package bulk

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/crisoull/bodega/internal/model"
)

func sampleData() ([]model.Tool, []model.Fuel, []model.Movement, []model.FuelHistory) {
	loanedAt := time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)
	odo := int64(125000)

	tools := []model.Tool{
		{
			ID: 1, Name: "Taladro", Quantity: 2, Weight: 1.8,
			Category: "Eléctrica", Status: model.StatusLoaned,
			Location: "Bodega A", Details: "caja azul",
			RegisterDate: loanedAt.Add(-24 * time.Hour),
			LoanedAt:     &loanedAt, LastUpdated: loanedAt,
		},
		{
			ID: 3, Name: "Martillo", Quantity: 5,
			Category: "Manual", Status: model.StatusAvailable,
			Location:     "Taller",
			RegisterDate: loanedAt, LastUpdated: loanedAt,
		},
	}
	fuels := []model.Fuel{{
		ID: 1, Name: "Juan Pérez", Quantity: 20, Type: "Diesel",
		Amount: 25000, Date: loanedAt, Vehicle: "Camioneta",
		Odometer: &odo, LastUpdated: loanedAt,
	}}
	history := []model.Movement{{
		ToolID: 1, ToolName: "Taladro", Action: model.ActionLoan,
		Date: "10/03/2026", Time: "09:30", Responsible: "Pedro",
		Detail: "Obra norte", Location: "Bodega A", Status: model.StatusLoaned,
	}}
	fuelHistory := []model.FuelHistory{{
		ID: 1, Responsible: "Juan Pérez", Quantity: 20, Type: "Diesel",
		Amount: 25000, Date: "10/03/2026", Vehicle: "Camioneta", Odometer: &odo,
	}}
	return tools, fuels, history, fuelHistory
}

func TestExportWritesAllSheets(t *testing.T) {
	tools, fuels, history, fuelHistory := sampleData()

	var buf bytes.Buffer
	if err := Export(&buf, tools, fuels, history, fuelHistory); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("opening exported workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{SheetTools, SheetFuels, SheetHistory, SheetFuelHistory} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Errorf("expected sheet %q in workbook", sheet)
		}
	}

	name, err := f.GetCellValue(SheetTools, "B2")
	if err != nil {
		t.Fatalf("reading cell: %v", err)
	}
	if name != "Taladro" {
		t.Errorf("expected 'Taladro' in B2, got %q", name)
	}
	header, _ := f.GetCellValue(SheetFuels, "C1")
	if header != "Cantidad (litros)" {
		t.Errorf("expected fuel quantity header, got %q", header)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	tools, fuels, history, fuelHistory := sampleData()

	var buf bytes.Buffer
	if err := Export(&buf, tools, fuels, history, fuelHistory); err != nil {
		t.Fatalf("Export: %v", err)
	}

	gotTools, gotFuels, gotHistory, gotFuelHistory, err := Restore(&buf)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}

	if len(gotTools) != 2 {
		t.Fatalf("expected 2 tools, got %d", len(gotTools))
	}
	if gotTools[0].ID != 1 || gotTools[0].Name != "Taladro" {
		t.Errorf("unexpected first tool %+v", gotTools[0])
	}
	if gotTools[1].ID != 3 {
		t.Errorf("expected preserved id 3, got %d", gotTools[1].ID)
	}
	if gotTools[0].Status != model.StatusLoaned || gotTools[0].LoanedAt == nil {
		t.Error("expected loaned tool restored with loanedAt")
	}

	if len(gotFuels) != 1 {
		t.Fatalf("expected 1 fuel, got %d", len(gotFuels))
	}
	if gotFuels[0].Odometer == nil || *gotFuels[0].Odometer != 125000 {
		t.Errorf("expected odometer 125000, got %v", gotFuels[0].Odometer)
	}

	if len(gotHistory) != 1 || gotHistory[0].Action != model.ActionLoan {
		t.Errorf("unexpected history %+v", gotHistory)
	}
	if len(gotFuelHistory) != 1 || gotFuelHistory[0].Date != "10/03/2026" {
		t.Errorf("unexpected fuel history %+v", gotFuelHistory)
	}
}

func TestImportSkipsBlankRows(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", SheetTools)
	headers := append([]any(nil), toolHeaders...)
	f.SetSheetRow(SheetTools, "A1", &headers)
	row := []any{"", "Esmeril", 2, 1.2, "Eléctrica", "Disponible", "Taller"}
	f.SetSheetRow(SheetTools, "A3", &row)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("writing workbook: %v", err)
	}

	tools, fuels, skipped, err := Import(&buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(tools) != 1 {
		t.Fatalf("expected 1 tool row, got %d", len(tools))
	}
	if tools[0].Name != "Esmeril" || tools[0].Quantity != 2 {
		t.Errorf("unexpected row %+v", tools[0])
	}
	if tools[0].Row != 3 {
		t.Errorf("expected source row 3, got %d", tools[0].Row)
	}
	if skipped != 1 {
		t.Errorf("expected 1 blank row skipped, got %d", skipped)
	}
	if len(fuels) != 0 {
		t.Errorf("expected no fuel rows, got %d", len(fuels))
	}
}

func TestImportMissingSheetIsEmpty(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", SheetFuels)
	headers := append([]any(nil), fuelHeaders...)
	f.SetSheetRow(SheetFuels, "A1", &headers)
	row := []any{"", "Juan Pérez", 20, "Diesel", 25000, "10/03/2026"}
	f.SetSheetRow(SheetFuels, "A2", &row)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("writing workbook: %v", err)
	}

	tools, fuels, _, err := Import(&buf)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(tools) != 0 {
		t.Errorf("expected no tool rows, got %d", len(tools))
	}
	if len(fuels) != 1 {
		t.Fatalf("expected 1 fuel row, got %d", len(fuels))
	}
	if fuels[0].Quantity != 20 || fuels[0].Type != "Diesel" {
		t.Errorf("unexpected fuel row %+v", fuels[0])
	}
}

func TestSettingsArtifactRoundTrip(t *testing.T) {
	settings := model.Settings{
		ToolCategories: []string{"Jardinería"},
		FuelTypes:      []string{"Mezcla"},
		ToolStatuses:   model.DefaultToolStatuses,
		Locations:      []string{"Bodega Z"},
	}

	var buf bytes.Buffer
	if err := ExportSettings(&buf, settings); err != nil {
		t.Fatalf("ExportSettings: %v", err)
	}
	if !strings.Contains(buf.String(), "toolCategories") {
		t.Error("expected camelCase keys in artifact")
	}

	got, err := ImportSettings(&buf)
	if err != nil {
		t.Fatalf("ImportSettings: %v", err)
	}
	if len(got.ToolCategories) != 1 || got.ToolCategories[0] != "Jardinería" {
		t.Errorf("unexpected categories %v", got.ToolCategories)
	}
	if len(got.Locations) != 1 || got.Locations[0] != "Bodega Z" {
		t.Errorf("unexpected locations %v", got.Locations)
	}
}

func TestImportSettingsRejectsMalformed(t *testing.T) {
	if _, err := ImportSettings(strings.NewReader("{broken")); err == nil {
		t.Error("expected error for malformed artifact")
	}
}
