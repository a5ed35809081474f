package store

import (
	"context"
	"strings"

	"github.com/crisoull/bodega/internal/model"
	"github.com/crisoull/bodega/internal/validate"
)

// ToolInput carries the user-editable fields of a tool.
type ToolInput struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Weight   float64 `json:"weight"`
	Category string  `json:"category"`
	Status   string  `json:"status"`
	Location string  `json:"location"`
	Details  string  `json:"details"`
	Photo    string  `json:"photo"`
}

// validateToolLocked runs the full rule set for a tool, including the
// case-insensitive name uniqueness check. excludeID skips the record
// being edited.
func (s *Store) validateToolLocked(in ToolInput, excludeID int64) *ValidationError {
	var r validate.Result
	r.Check(validate.Name(in.Name))
	r.Check(validate.Quantity(float64(in.Quantity), validate.MaxQuantity))
	r.Check(validate.Weight(in.Weight))
	r.Check(validate.Member("category", in.Category, s.settings.ToolCategories))
	r.Check(validate.Member("status", in.Status, s.settings.ToolStatuses))
	r.Check(validate.Member("location", in.Location, s.settings.Locations))
	if s.toolNameTakenLocked(in.Name, excludeID) {
		r.Check("name already exists")
	}
	if r.OK() {
		return nil
	}
	return &ValidationError{Messages: r.Messages}
}

func (s *Store) toolNameTakenLocked(name string, excludeID int64) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	for id, t := range s.tools {
		if id != excludeID && strings.ToLower(t.Name) == lower {
			return true
		}
	}
	return false
}

// CreateTool validates and inserts a new tool, returning the stored copy.
func (s *Store) CreateTool(ctx context.Context, in ToolInput) (*model.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if verr := s.validateToolLocked(in, 0); verr != nil {
		return nil, verr
	}

	now := s.now()
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
	s.tools[tool.ID] = tool

	if err := s.persist(ctx, snapTools); err != nil {
		delete(s.tools, tool.ID)
		return nil, err
	}

	out := *tool
	return &out, nil
}

// UpdateTool validates the patch and merges it into an existing tool.
func (s *Store) UpdateTool(ctx context.Context, id int64, in ToolInput) (*model.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tool, ok := s.tools[id]
	if !ok {
		return nil, ErrNotFound
	}
	if verr := s.validateToolLocked(in, id); verr != nil {
		return nil, verr
	}

	prev := *tool
	tool.Name = strings.TrimSpace(in.Name)
	tool.Quantity = in.Quantity
	tool.Weight = in.Weight
	tool.Category = in.Category
	tool.Status = in.Status
	tool.Location = in.Location
	tool.Details = strings.TrimSpace(in.Details)
	if in.Photo != "" {
		tool.Photo = in.Photo
	}
	// Keep the status/loanedAt invariant when an edit moves the tool
	// out of (or into) the loaned state.
	if tool.Status != model.StatusLoaned {
		tool.LoanedAt = nil
	} else if tool.LoanedAt == nil {
		now := s.now()
		tool.LoanedAt = &now
	}
	tool.LastUpdated = s.now()

	if err := s.persist(ctx, snapTools); err != nil {
		*tool = prev
		return nil, err
	}

	out := *tool
	return &out, nil
}

// SetToolPhoto stores an encoded image payload on the tool.
func (s *Store) SetToolPhoto(ctx context.Context, id int64, photo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tool, ok := s.tools[id]
	if !ok {
		return ErrNotFound
	}

	prev := *tool
	tool.Photo = photo
	tool.LastUpdated = s.now()

	if err := s.persist(ctx, snapTools); err != nil {
		*tool = prev
		return err
	}
	return nil
}

// DeleteTools removes the given tools and, as a documented cascade, all
// movement ledger entries referencing any deleted id. Returns the
// number of tools removed.
func (s *Store) DeleteTools(ctx context.Context, ids []int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idSet := make(map[int64]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	removedTools := make(map[int64]*model.Tool)
	for id, t := range s.tools {
		if idSet[id] {
			removedTools[id] = t
			delete(s.tools, id)
		}
	}
	if len(removedTools) == 0 {
		return 0, nil
	}

	prevHistory := s.history
	kept := make([]model.Movement, 0, len(s.history))
	for _, m := range s.history {
		if !idSet[m.ToolID] {
			kept = append(kept, m)
		}
	}
	s.history = kept

	if err := s.persist(ctx, snapTools, snapHistory); err != nil {
		for id, t := range removedTools {
			s.tools[id] = t
		}
		s.history = prevHistory
		return 0, err
	}
	return len(removedTools), nil
}

// GetTool returns a copy of the tool, or ErrNotFound.
func (s *Store) GetTool(id int64) (*model.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tool, ok := s.tools[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *tool
	return &out, nil
}

// FindToolByName returns a copy of the tool whose name matches
// case-insensitively, or ErrNotFound.
func (s *Store) FindToolByName(name string) (*model.Tool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lower := strings.ToLower(strings.TrimSpace(name))
	for _, t := range s.tools {
		if strings.ToLower(t.Name) == lower {
			out := *t
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// ToolFilter narrows ListTools. Zero values match everything.
type ToolFilter struct {
	Query       string
	Category    string
	Status      string
	Location    string
	OverdueOnly bool
}

// ListTools returns a filtered projection of the tools, sorted by id.
// Filtering never mutates the underlying collection.
func (s *Store) ListTools(f ToolFilter) []model.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := []model.Tool{}
	for _, t := range s.toolsSliceLocked() {
		if query != "" && !strings.Contains(strings.ToLower(t.Name), query) &&
			!strings.Contains(strings.ToLower(t.Details), query) {
			continue
		}
		if f.Category != "" && t.Category != f.Category {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Location != "" && t.Location != f.Location {
			continue
		}
		if f.OverdueOnly && !s.isOverdueLocked(&t, now) {
			continue
		}
		out = append(out, t)
	}
	return out
}
