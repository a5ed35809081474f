package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/crisoull/bodega/internal/model"
	"github.com/crisoull/bodega/internal/validate"
)

// ToolImportRow is one parsed tool row from a bulk artifact, tagged
// with its source row number for error reporting.
type ToolImportRow struct {
	Row int
	ToolInput
}

// FuelImportRow is one parsed fuel row from a bulk artifact.
type FuelImportRow struct {
	Row int
	FuelInput
}

// ImportSummary reports what a bulk import did. Row errors never abort
// the import; good rows land and bad rows are listed.
type ImportSummary struct {
	ImportedTools int      `json:"imported_tools"`
	ImportedFuels int      `json:"imported_fuels"`
	SkippedRows   int      `json:"skipped_rows"`
	Errors        []string `json:"errors,omitempty"`
}

// BulkImport merges parsed artifact rows into the collections. Unseen
// categories, locations and fuel types are registered on the fly, but
// an unregistered status fails the row. Everything lands in a single
// write at the end; a failed write rolls the whole import back.
func (s *Store) BulkImport(ctx context.Context, tools []ToolImportRow, fuels []FuelImportRow, skipped int) (*ImportSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevTools, prevFuels := s.tools, s.fuels
	prevFuelHistory := s.fuelHistory
	prevSettings := s.settings

	s.tools = make(map[int64]*model.Tool, len(prevTools))
	for id, t := range prevTools {
		cp := *t
		s.tools[id] = &cp
	}
	s.fuels = make(map[int64]*model.Fuel, len(prevFuels))
	for id, f := range prevFuels {
		cp := *f
		s.fuels[id] = &cp
	}
	s.fuelHistory = append([]model.FuelHistory(nil), prevFuelHistory...)
	s.settings = prevSettings.Clone()

	summary := &ImportSummary{SkippedRows: skipped}
	now := s.now()

	for _, row := range tools {
		in := row.ToolInput
		if in.Category == "" {
			in.Category = model.FallbackCategory
		}
		if in.Location == "" {
			if len(s.settings.Locations) > 0 {
				in.Location = s.settings.Locations[0]
			} else {
				in.Location = model.DefaultLocations[0]
			}
		}
		s.ensureCategoryLocked(in.Category)
		s.ensureLocationLocked(in.Location)

		var r validate.Result
		r.Check(validate.Name(in.Name))
		r.Check(validate.Quantity(float64(in.Quantity), validate.MaxQuantity))
		r.Check(validate.Weight(in.Weight))
		r.Check(validate.Member("status", in.Status, s.settings.ToolStatuses))
		if s.toolNameTakenLocked(in.Name, 0) {
			r.Check("name already exists")
		}
		if !r.OK() {
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("tool row %d: %s", row.Row, strings.Join(r.Messages, "; ")))
			continue
		}

		tool := &model.Tool{
			ID:           nextID(s.tools),
			Name:         strings.TrimSpace(in.Name),
			Quantity:     in.Quantity,
			Weight:       in.Weight,
			Category:     in.Category,
			Status:       in.Status,
			Location:     in.Location,
			Details:      strings.TrimSpace(in.Details),
			Photo:        in.Photo,
			RegisterDate: now,
			LastUpdated:  now,
		}
		if tool.Status == model.StatusLoaned {
			tool.LoanedAt = &now
		}
		s.tools[tool.ID] = tool
		summary.ImportedTools++
	}

	for _, row := range fuels {
		in := row.FuelInput
		if in.Type == "" {
			in.Type = model.FallbackFuelType
		}
		s.ensureFuelTypeLocked(in.Type)

		var r validate.Result
		r.Check(validate.Name(in.Name))
		r.Check(validate.Quantity(in.Quantity, validate.MaxQuantity))
		r.Check(validate.Amount(in.Amount))
		r.Check(validate.Odometer(in.Odometer))
		if s.fuelNameTakenLocked(in.Name, 0) {
			r.Check("name already exists")
		}
		if !r.OK() {
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("fuel row %d: %s", row.Row, strings.Join(r.Messages, "; ")))
			continue
		}

		fuel := &model.Fuel{
			ID:          nextID(s.fuels),
			Name:        strings.TrimSpace(in.Name),
			Quantity:    in.Quantity,
			Type:        in.Type,
			Amount:      in.Amount,
			Date:        in.Date,
			Vehicle:     strings.TrimSpace(in.Vehicle),
			Odometer:    in.Odometer,
			Details:     strings.TrimSpace(in.Details),
			Receipt:     in.Receipt,
			LastUpdated: now,
		}
		s.fuels[fuel.ID] = fuel
		s.fuelHistory = append(s.fuelHistory, fuelHistoryEntry(fuel))
		summary.ImportedFuels++
	}

	if err := s.persist(ctx, snapTools, snapFuels, snapFuelHistory, snapSettings); err != nil {
		s.tools, s.fuels = prevTools, prevFuels
		s.fuelHistory = prevFuelHistory
		s.settings = prevSettings
		return nil, err
	}
	return summary, nil
}
