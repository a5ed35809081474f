package store

import (
	"context"
	"errors"
	"testing"

	"github.com/crisoull/bodega/internal/model"
)

func TestCreateToolValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*ToolInput)
	}{
		{"short name", func(in *ToolInput) { in.Name = "ab" }},
		{"negative quantity", func(in *ToolInput) { in.Quantity = -1 }},
		{"negative weight", func(in *ToolInput) { in.Weight = -1 }},
		{"unregistered category", func(in *ToolInput) { in.Category = "Inventada" }},
		{"unregistered status", func(in *ToolInput) { in.Status = "Volando" }},
		{"unregistered location", func(in *ToolInput) { in.Location = "Luna" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validTool("Taladro")
			tt.mutate(&in)
			_, err := s.CreateTool(ctx, in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateToolCollectsAllFailures(t *testing.T) {
	s := newTestStore(t)

	in := ToolInput{Name: "ab", Quantity: 0, Weight: -2, Category: "X", Status: "Y", Location: "Z"}
	_, err := s.CreateTool(context.Background(), in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Messages) < 5 {
		t.Errorf("expected all rule failures reported, got %v", verr.Messages)
	}
}

func TestToolNameUniqueCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreateTool(ctx, validTool("Taladro")); err != nil {
		t.Fatalf("CreateTool: %v", err)
	}
	_, err := s.CreateTool(ctx, validTool("TALADRO"))
	if !IsValidation(err) {
		t.Fatalf("expected duplicate name rejected, got %v", err)
	}

	// Editing a tool without renaming it must not trip the check.
	tool, _ := s.FindToolByName("taladro")
	in := validTool("Taladro")
	in.Quantity = 9
	if _, err := s.UpdateTool(ctx, tool.ID, in); err != nil {
		t.Fatalf("UpdateTool same name: %v", err)
	}
}

func TestUpdateToolKeepsPhotoWhenOmitted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := validTool("Taladro")
	in.Photo = "data:image/png;base64,abc"
	tool, _ := s.CreateTool(ctx, in)

	patch := validTool("Taladro")
	patch.Photo = ""
	updated, err := s.UpdateTool(ctx, tool.ID, patch)
	if err != nil {
		t.Fatalf("UpdateTool: %v", err)
	}
	if updated.Photo != in.Photo {
		t.Errorf("expected photo preserved, got %q", updated.Photo)
	}
}

func TestUpdateToolStatusClearsLoanedAt(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tool, _ := s.CreateTool(ctx, validTool("Taladro"))
	if _, err := s.Loan(ctx, tool.ID, LoanInput{Responsible: "Pedro"}); err != nil {
		t.Fatalf("Loan: %v", err)
	}

	patch := validTool("Taladro")
	patch.Status = model.StatusMaintenance
	updated, err := s.UpdateTool(ctx, tool.ID, patch)
	if err != nil {
		t.Fatalf("UpdateTool: %v", err)
	}
	if updated.LoanedAt != nil {
		t.Error("expected loanedAt cleared when status leaves loaned")
	}

	patch.Status = model.StatusLoaned
	updated, err = s.UpdateTool(ctx, tool.ID, patch)
	if err != nil {
		t.Fatalf("UpdateTool: %v", err)
	}
	if updated.LoanedAt == nil {
		t.Error("expected loanedAt stamped when status becomes loaned")
	}
}

func TestDeleteToolsCascadesLedger(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, _ := s.CreateTool(ctx, validTool("Taladro"))
	b, _ := s.CreateTool(ctx, validTool("Martillo"))
	s.Loan(ctx, a.ID, LoanInput{Responsible: "Pedro"})
	s.Loan(ctx, b.ID, LoanInput{Responsible: "María"})

	n, err := s.DeleteTools(ctx, []int64{a.ID})
	if err != nil {
		t.Fatalf("DeleteTools: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 removed, got %d", n)
	}
	for _, m := range s.History() {
		if m.ToolID == a.ID {
			t.Errorf("expected ledger entries for tool %d removed", a.ID)
		}
	}
	if len(s.History()) != 1 {
		t.Errorf("expected 1 ledger entry left, got %d", len(s.History()))
	}
}

func TestDeleteToolsUnknownIDsIgnored(t *testing.T) {
	s := newTestStore(t)

	n, err := s.DeleteTools(context.Background(), []int64{42, 43})
	if err != nil {
		t.Fatalf("DeleteTools: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 removed, got %d", n)
	}
}

func TestListToolsFiltersAreNonDestructive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.CreateTool(ctx, validTool("Taladro"))
	in := validTool("Martillo")
	in.Category = "Manual"
	s.CreateTool(ctx, in)

	got := s.ListTools(ToolFilter{Category: "Manual"})
	if len(got) != 1 || got[0].Name != "Martillo" {
		t.Fatalf("expected only 'Martillo', got %v", got)
	}

	// The unfiltered collection is untouched by prior filtered reads.
	if len(s.ListTools(ToolFilter{})) != 2 {
		t.Error("expected filter to leave the collection intact")
	}

	got = s.ListTools(ToolFilter{Query: "tala"})
	if len(got) != 1 || got[0].Name != "Taladro" {
		t.Errorf("expected name query match, got %v", got)
	}
}

func TestGetToolNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetTool(99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
