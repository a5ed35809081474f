package store

import (
	"context"
	"strings"
	"time"

	"github.com/crisoull/bodega/internal/model"
	"github.com/crisoull/bodega/internal/validate"
)

// LoanInput carries the fields of a loan event.
type LoanInput struct {
	Responsible    string `json:"responsible"`
	Detail         string `json:"detail"`
	Location       string `json:"location"`
	ExpectedReturn string `json:"expected_return"`
}

// ReturnInput carries the fields of a return event. Status defaults to
// Disponible but may be any registered status, so a return can move a
// tool straight into maintenance or mark it damaged or lost.
type ReturnInput struct {
	Responsible string `json:"responsible"`
	Detail      string `json:"detail"`
	Status      string `json:"status"`
}

// Loan lends out one unit of a tool: quantity decrements, status
// becomes Prestado, loanedAt is stamped, and a Loan entry with a
// denormalized snapshot is appended to the ledger.
func (s *Store) Loan(ctx context.Context, toolID int64, in LoanInput) (*model.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tool, ok := s.tools[toolID]
	if !ok {
		return nil, ErrNotFound
	}
	if tool.Quantity <= 0 {
		return nil, ErrNoStock
	}
	if strings.TrimSpace(in.Responsible) == "" {
		return nil, &ValidationError{Messages: []string{"responsible is required"}}
	}
	if in.Location != "" {
		if msg := validate.Member("location", in.Location, s.settings.Locations); msg != "" {
			return nil, &ValidationError{Messages: []string{msg}}
		}
	}

	prev := *tool
	now := s.now()
	tool.Quantity--
	tool.Status = model.StatusLoaned
	tool.LoanedAt = &now
	if in.Location != "" {
		tool.Location = in.Location
	}
	tool.LastUpdated = now

	detail := strings.TrimSpace(in.Detail)
	if detail == "" {
		detail = "Herramienta prestada"
	}
	entry := model.Movement{
		ToolID:         tool.ID,
		ToolName:       tool.Name,
		Action:         model.ActionLoan,
		Date:           now.Format(model.DateFormat),
		Time:           now.Format(model.TimeFormat),
		Responsible:    strings.TrimSpace(in.Responsible),
		Detail:         detail,
		Location:       tool.Location,
		Status:         model.StatusLoaned,
		ExpectedReturn: in.ExpectedReturn,
	}

	prevHistory := s.history
	s.history = append(s.history, entry)

	if err := s.persist(ctx, snapTools, snapHistory); err != nil {
		*tool = prev
		s.history = prevHistory
		return nil, err
	}

	out := entry
	return &out, nil
}

// Return takes back one unit of a loaned tool: quantity increments,
// loanedAt clears, status becomes the supplied one, and a Return entry
// is appended to the ledger.
func (s *Store) Return(ctx context.Context, toolID int64, in ReturnInput) (*model.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tool, ok := s.tools[toolID]
	if !ok {
		return nil, ErrNotFound
	}
	if strings.TrimSpace(in.Responsible) == "" {
		return nil, &ValidationError{Messages: []string{"responsible is required"}}
	}
	status := in.Status
	if status == "" {
		status = model.StatusAvailable
	}
	if msg := validate.Member("status", status, s.settings.ToolStatuses); msg != "" {
		return nil, &ValidationError{Messages: []string{msg}}
	}

	prev := *tool
	now := s.now()
	tool.Quantity++
	tool.Status = status
	tool.LoanedAt = nil
	if status == model.StatusLoaned {
		// Returning "as still loaned" keeps the invariant intact.
		tool.LoanedAt = &now
	}
	tool.LastUpdated = now

	detail := strings.TrimSpace(in.Detail)
	if detail == "" {
		detail = "Herramienta devuelta"
	}
	entry := model.Movement{
		ToolID:      tool.ID,
		ToolName:    tool.Name,
		Action:      model.ActionReturn,
		Date:        now.Format(model.DateFormat),
		Time:        now.Format(model.TimeFormat),
		Responsible: strings.TrimSpace(in.Responsible),
		Detail:      detail,
		Location:    tool.Location,
		Status:      status,
	}

	prevHistory := s.history
	s.history = append(s.history, entry)

	if err := s.persist(ctx, snapTools, snapHistory); err != nil {
		*tool = prev
		s.history = prevHistory
		return nil, err
	}

	out := entry
	return &out, nil
}

// History returns a copy of the tool movement ledger, oldest first.
func (s *Store) History() []model.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Movement{}, s.history...)
}

// FuelHistoryEntries returns a copy of the fuel history, oldest first.
func (s *Store) FuelHistoryEntries() []model.FuelHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.FuelHistory{}, s.fuelHistory...)
}

// isOverdueLocked reports whether a loaned tool has been out longer
// than the overdue threshold. Overdue is derived, never stored.
func (s *Store) isOverdueLocked(t *model.Tool, now time.Time) bool {
	if t.Status != model.StatusLoaned || t.LoanedAt == nil {
		return false
	}
	return now.Sub(*t.LoanedAt) > s.overdueAfter
}

// Overdue returns the tools whose active loan is past the threshold,
// recomputed against the current clock on every call.
func (s *Store) Overdue() []model.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	out := []model.Tool{}
	for _, t := range s.toolsSliceLocked() {
		if s.isOverdueLocked(&t, now) {
			out = append(out, t)
		}
	}
	return out
}
