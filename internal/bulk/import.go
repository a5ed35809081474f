package bulk

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/crisoull/bodega/internal/model"
	"github.com/crisoull/bodega/internal/store"
)

// Import parses the Herramientas and Bencinas sheets into rows ready
// for the store's bulk import. Rows whose cells are all blank are
// skipped and counted; cell values are parsed liberally and left for
// the store to validate.
func Import(r io.Reader) (tools []store.ToolImportRow, fuels []store.FuelImportRow, skipped int, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	toolRows, err := sheetRows(f, SheetTools)
	if err != nil {
		return nil, nil, 0, err
	}
	for i, cells := range toolRows {
		if i == 0 {
			continue
		}
		if blankRow(cells) {
			skipped++
			continue
		}
		tools = append(tools, store.ToolImportRow{
			Row: i + 1,
			ToolInput: store.ToolInput{
				Name:     cell(cells, 1),
				Quantity: int(parseFloat(cell(cells, 2))),
				Weight:   parseFloat(cell(cells, 3)),
				Category: cell(cells, 4),
				Status:   cell(cells, 5),
				Location: cell(cells, 6),
				Details:  cell(cells, 7),
				Photo:    cell(cells, 10),
			},
		})
	}

	fuelRows, err := sheetRows(f, SheetFuels)
	if err != nil {
		return nil, nil, 0, err
	}
	for i, cells := range fuelRows {
		if i == 0 {
			continue
		}
		if blankRow(cells) {
			skipped++
			continue
		}
		fuels = append(fuels, store.FuelImportRow{
			Row: i + 1,
			FuelInput: store.FuelInput{
				Name:     cell(cells, 1),
				Quantity: parseFloat(cell(cells, 2)),
				Type:     cell(cells, 3),
				Amount:   parseFloat(cell(cells, 4)),
				Date:     parseDate(cell(cells, 5)),
				Vehicle:  cell(cells, 6),
				Odometer: parseOdometer(cell(cells, 7)),
				Details:  cell(cells, 8),
				Receipt:  cell(cells, 9),
			},
		})
	}

	return tools, fuels, skipped, nil
}

// Restore parses all four sheets into full records, ids and timestamps
// included, for a wholesale replacement of the data set.
func Restore(r io.Reader) (tools []model.Tool, fuels []model.Fuel, history []model.Movement, fuelHistory []model.FuelHistory, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	toolRows, err := sheetRows(f, SheetTools)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	for i, cells := range toolRows {
		if i == 0 || blankRow(cells) {
			continue
		}
		t := model.Tool{
			ID:           parseInt(cell(cells, 0)),
			Name:         cell(cells, 1),
			Quantity:     int(parseFloat(cell(cells, 2))),
			Weight:       parseFloat(cell(cells, 3)),
			Category:     cell(cells, 4),
			Status:       cell(cells, 5),
			Location:     cell(cells, 6),
			Details:      cell(cells, 7),
			RegisterDate: parseDateTime(cell(cells, 8)),
			LastUpdated:  parseDateTime(cell(cells, 9)),
			Photo:        cell(cells, 10),
		}
		if t.Status == model.StatusLoaned {
			loanedAt := t.LastUpdated
			t.LoanedAt = &loanedAt
		}
		tools = append(tools, t)
	}

	fuelRows, err := sheetRows(f, SheetFuels)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	for i, cells := range fuelRows {
		if i == 0 || blankRow(cells) {
			continue
		}
		fuels = append(fuels, model.Fuel{
			ID:       parseInt(cell(cells, 0)),
			Name:     cell(cells, 1),
			Quantity: parseFloat(cell(cells, 2)),
			Type:     cell(cells, 3),
			Amount:   parseFloat(cell(cells, 4)),
			Date:     parseDate(cell(cells, 5)),
			Vehicle:  cell(cells, 6),
			Odometer: parseOdometer(cell(cells, 7)),
			Details:  cell(cells, 8),
			Receipt:  cell(cells, 9),
		})
	}

	historyRows, err := sheetRows(f, SheetHistory)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	for i, cells := range historyRows {
		if i == 0 || blankRow(cells) {
			continue
		}
		history = append(history, model.Movement{
			ToolID:         parseInt(cell(cells, 0)),
			ToolName:       cell(cells, 1),
			Action:         cell(cells, 2),
			Date:           cell(cells, 3),
			Time:           cell(cells, 4),
			Responsible:    cell(cells, 5),
			Detail:         cell(cells, 6),
			Location:       cell(cells, 7),
			Status:         cell(cells, 8),
			ExpectedReturn: cell(cells, 9),
		})
	}

	fuelHistoryRows, err := sheetRows(f, SheetFuelHistory)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	for i, cells := range fuelHistoryRows {
		if i == 0 || blankRow(cells) {
			continue
		}
		fuelHistory = append(fuelHistory, model.FuelHistory{
			ID:          parseInt(cell(cells, 0)),
			Responsible: cell(cells, 1),
			Quantity:    parseFloat(cell(cells, 2)),
			Type:        cell(cells, 3),
			Amount:      parseFloat(cell(cells, 4)),
			Date:        cell(cells, 5),
			Vehicle:     cell(cells, 6),
			Odometer:    parseOdometer(cell(cells, 7)),
			Details:     cell(cells, 8),
			Receipt:     cell(cells, 9),
		})
	}

	return tools, fuels, history, fuelHistory, nil
}

// sheetRows returns the rows of a sheet, or nil when the sheet is
// absent so partial artifacts still import.
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func cell(cells []string, i int) string {
	if i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseInt(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return f
}

func parseOdometer(s string) *int64 {
	if s == "" {
		return nil
	}
	n := int64(parseFloat(s))
	return &n
}

func parseDate(s string) time.Time {
	for _, layout := range []string{model.DateFormat, model.DateTimeFormat, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseDateTime(s string) time.Time {
	for _, layout := range []string{model.DateTimeFormat, model.DateFormat, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
