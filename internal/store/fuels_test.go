package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCreateFuelAppendsHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fuel, err := s.CreateFuel(ctx, validFuel("Juan Pérez"))
	if err != nil {
		t.Fatalf("CreateFuel: %v", err)
	}

	history := s.FuelHistoryEntries()
	if len(history) != 1 {
		t.Fatalf("expected 1 fuel history entry, got %d", len(history))
	}
	if history[0].ID != fuel.ID {
		t.Errorf("expected history entry for fuel %d, got %d", fuel.ID, history[0].ID)
	}
	if history[0].Responsible != "Juan Pérez" {
		t.Errorf("expected responsible 'Juan Pérez', got %q", history[0].Responsible)
	}
}

func TestCreateFuelValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*FuelInput)
	}{
		{"short name", func(in *FuelInput) { in.Name = "ab" }},
		{"negative quantity", func(in *FuelInput) { in.Quantity = -5 }},
		{"unregistered type", func(in *FuelInput) { in.Type = "Inventada" }},
		{"negative amount", func(in *FuelInput) { in.Amount = -1 }},
		{"future date", func(in *FuelInput) { in.Date = time.Now().AddDate(0, 0, 2) }},
		{"negative odometer", func(in *FuelInput) { o := int64(-5); in.Odometer = &o }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validFuel("Juan Pérez")
			tt.mutate(&in)
			_, err := s.CreateFuel(ctx, in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdateFuelEditsHistoryInPlace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fuel, _ := s.CreateFuel(ctx, validFuel("Juan Pérez"))

	in := validFuel("Juan Pérez")
	in.Quantity = 35
	in.Amount = 42000
	if _, err := s.UpdateFuel(ctx, fuel.ID, in); err != nil {
		t.Fatalf("UpdateFuel: %v", err)
	}

	// Unlike the tool ledger, the fuel history tracks the record: the
	// existing entry is rewritten rather than a new one appended.
	history := s.FuelHistoryEntries()
	if len(history) != 1 {
		t.Fatalf("expected history edited in place, got %d entries", len(history))
	}
	if history[0].Quantity != 35 {
		t.Errorf("expected quantity 35 in history, got %v", history[0].Quantity)
	}
	if history[0].Amount != 42000 {
		t.Errorf("expected amount 42000 in history, got %v", history[0].Amount)
	}
}

func TestFuelHistoryEditAsymmetry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tool, _ := s.CreateTool(ctx, validTool("Taladro"))
	s.Loan(ctx, tool.ID, LoanInput{Responsible: "Pedro"})
	s.Return(ctx, tool.ID, ReturnInput{Responsible: "Pedro"})

	fuel, _ := s.CreateFuel(ctx, validFuel("Juan Pérez"))
	in := validFuel("Juan Pérez")
	in.Quantity = 50
	s.UpdateFuel(ctx, fuel.ID, in)
	in.Quantity = 60
	s.UpdateFuel(ctx, fuel.ID, in)

	// Two tool movements stay two entries forever; three fuel writes
	// collapse into one.
	if len(s.History()) != 2 {
		t.Errorf("expected tool ledger append-only with 2 entries, got %d", len(s.History()))
	}
	if len(s.FuelHistoryEntries()) != 1 {
		t.Errorf("expected 1 fuel history entry, got %d", len(s.FuelHistoryEntries()))
	}
}

func TestUpdateFuelKeepsReceiptWhenOmitted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := validFuel("Juan Pérez")
	in.Receipt = "data:image/jpeg;base64,xyz"
	fuel, _ := s.CreateFuel(ctx, in)

	patch := validFuel("Juan Pérez")
	patch.Receipt = ""
	updated, err := s.UpdateFuel(ctx, fuel.ID, patch)
	if err != nil {
		t.Fatalf("UpdateFuel: %v", err)
	}
	if updated.Receipt != in.Receipt {
		t.Errorf("expected receipt preserved, got %q", updated.Receipt)
	}
}

func TestDeleteFuelsCascadesHistory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := s.CreateFuel(ctx, validFuel("Juan Pérez"))
	s.CreateFuel(ctx, validFuel("María Soto"))

	n, err := s.DeleteFuels(ctx, []int64{a.ID})
	if err != nil {
		t.Fatalf("DeleteFuels: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 removed, got %d", n)
	}

	history := s.FuelHistoryEntries()
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry left, got %d", len(history))
	}
	if history[0].Responsible != "María Soto" {
		t.Errorf("expected remaining entry for 'María Soto', got %q", history[0].Responsible)
	}
}

func TestListFuelsFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.CreateFuel(ctx, validFuel("Juan Pérez"))
	in := validFuel("María Soto")
	in.Type = "Diesel"
	in.Vehicle = "Retroexcavadora"
	s.CreateFuel(ctx, in)

	got := s.ListFuels(FuelFilter{Type: "Diesel"})
	if len(got) != 1 || got[0].Name != "María Soto" {
		t.Fatalf("expected only 'María Soto', got %v", got)
	}

	got = s.ListFuels(FuelFilter{Query: "retro"})
	if len(got) != 1 {
		t.Errorf("expected vehicle query match, got %v", got)
	}

	if len(s.ListFuels(FuelFilter{})) != 2 {
		t.Error("expected filters to leave the collection intact")
	}
}

func TestFuelStatusUnaffectedByToolRegistry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fuel, _ := s.CreateFuel(ctx, validFuel("Juan Pérez"))
	if err := s.RemoveToolCategory(ctx, "Manual"); err != nil {
		t.Fatalf("RemoveToolCategory: %v", err)
	}

	got, _ := s.GetFuel(fuel.ID)
	if got.Type != "93 Octanos" {
		t.Errorf("expected fuel type untouched, got %q", got.Type)
	}
}
