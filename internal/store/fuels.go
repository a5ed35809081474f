package store

import (
	"context"
	"strings"
	"time"

	"github.com/crisoull/bodega/internal/model"
	"github.com/crisoull/bodega/internal/validate"
)

// FuelInput carries the user-editable fields of a fuel purchase.
type FuelInput struct {
	Name     string    `json:"name"`
	Quantity float64   `json:"quantity"`
	Type     string    `json:"type"`
	Amount   float64   `json:"amount"`
	Date     time.Time `json:"date"`
	Vehicle  string    `json:"vehicle"`
	Odometer *int64    `json:"odometer"`
	Details  string    `json:"details"`
	Receipt  string    `json:"receipt"`
}

func (s *Store) validateFuelLocked(in FuelInput, excludeID int64) *ValidationError {
	var r validate.Result
	r.Check(validate.Name(in.Name))
	r.Check(validate.Quantity(in.Quantity, validate.MaxQuantity))
	r.Check(validate.Member("fuel type", in.Type, s.settings.FuelTypes))
	r.Check(validate.Amount(in.Amount))
	r.Check(validate.Date(in.Date, s.now()))
	r.Check(validate.Odometer(in.Odometer))
	if s.fuelNameTakenLocked(in.Name, excludeID) {
		r.Check("name already exists")
	}
	if r.OK() {
		return nil
	}
	return &ValidationError{Messages: r.Messages}
}

func (s *Store) fuelNameTakenLocked(name string, excludeID int64) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	for id, f := range s.fuels {
		if id != excludeID && strings.ToLower(f.Name) == lower {
			return true
		}
	}
	return false
}

// CreateFuel validates and inserts a fuel purchase, appending the
// matching fuel history snapshot in the same write.
func (s *Store) CreateFuel(ctx context.Context, in FuelInput) (*model.Fuel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if verr := s.validateFuelLocked(in, 0); verr != nil {
		return nil, verr
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
		LastUpdated: s.now(),
	}
	s.fuels[fuel.ID] = fuel

	prevHistory := s.fuelHistory
	s.fuelHistory = append(s.fuelHistory, fuelHistoryEntry(fuel))

	if err := s.persist(ctx, snapFuels, snapFuelHistory); err != nil {
		delete(s.fuels, fuel.ID)
		s.fuelHistory = prevHistory
		return nil, err
	}

	out := *fuel
	return &out, nil
}

// UpdateFuel merges the patch into an existing fuel record. Its fuel
// history entry is edited in place when one matches by id; otherwise a
// new entry is appended. The tool ledger never does this — the
// asymmetry is inherited behavior and deliberately kept.
func (s *Store) UpdateFuel(ctx context.Context, id int64, in FuelInput) (*model.Fuel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fuel, ok := s.fuels[id]
	if !ok {
		return nil, ErrNotFound
	}
	if verr := s.validateFuelLocked(in, id); verr != nil {
		return nil, verr
	}

	prev := *fuel
	fuel.Name = strings.TrimSpace(in.Name)
	fuel.Quantity = in.Quantity
	fuel.Type = in.Type
	fuel.Amount = in.Amount
	fuel.Date = in.Date
	fuel.Vehicle = strings.TrimSpace(in.Vehicle)
	fuel.Odometer = in.Odometer
	fuel.Details = strings.TrimSpace(in.Details)
	if in.Receipt != "" {
		fuel.Receipt = in.Receipt
	}
	fuel.LastUpdated = s.now()

	prevHistory := append([]model.FuelHistory(nil), s.fuelHistory...)
	updated := false
	for i := range s.fuelHistory {
		if s.fuelHistory[i].ID == id {
			s.fuelHistory[i] = fuelHistoryEntry(fuel)
			updated = true
			break
		}
	}
	if !updated {
		s.fuelHistory = append(s.fuelHistory, fuelHistoryEntry(fuel))
	}

	if err := s.persist(ctx, snapFuels, snapFuelHistory); err != nil {
		*fuel = prev
		s.fuelHistory = prevHistory
		return nil, err
	}

	out := *fuel
	return &out, nil
}

// DeleteFuels removes the given fuel records and their history entries
// by id. Returns the number of fuel records removed.
func (s *Store) DeleteFuels(ctx context.Context, ids []int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idSet := make(map[int64]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}

	removed := make(map[int64]*model.Fuel)
	for id, f := range s.fuels {
		if idSet[id] {
			removed[id] = f
			delete(s.fuels, id)
		}
	}
	if len(removed) == 0 {
		return 0, nil
	}

	prevHistory := s.fuelHistory
	kept := make([]model.FuelHistory, 0, len(s.fuelHistory))
	for _, h := range s.fuelHistory {
		if !idSet[h.ID] {
			kept = append(kept, h)
		}
	}
	s.fuelHistory = kept

	if err := s.persist(ctx, snapFuels, snapFuelHistory); err != nil {
		for id, f := range removed {
			s.fuels[id] = f
		}
		s.fuelHistory = prevHistory
		return 0, err
	}
	return len(removed), nil
}

// GetFuel returns a copy of the fuel record, or ErrNotFound.
func (s *Store) GetFuel(id int64) (*model.Fuel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fuel, ok := s.fuels[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *fuel
	return &out, nil
}

// FuelFilter narrows ListFuels. Zero values match everything.
type FuelFilter struct {
	Query string
	Type  string
}

// ListFuels returns a filtered projection of the fuels, sorted by id.
func (s *Store) ListFuels(f FuelFilter) []model.Fuel {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := []model.Fuel{}
	for _, fuel := range s.fuelsSliceLocked() {
		if query != "" && !strings.Contains(strings.ToLower(fuel.Name), query) &&
			!strings.Contains(strings.ToLower(fuel.Vehicle), query) {
			continue
		}
		if f.Type != "" && fuel.Type != f.Type {
			continue
		}
		out = append(out, fuel)
	}
	return out
}

// fuelHistoryEntry builds the denormalized history snapshot for a fuel
// record.
func fuelHistoryEntry(f *model.Fuel) model.FuelHistory {
	return model.FuelHistory{
		ID:          f.ID,
		Responsible: f.Name,
		Quantity:    f.Quantity,
		Type:        f.Type,
		Amount:      f.Amount,
		Date:        f.Date.Format(model.DateFormat),
		Vehicle:     f.Vehicle,
		Odometer:    f.Odometer,
		Details:     f.Details,
		Receipt:     f.Receipt,
	}
}
