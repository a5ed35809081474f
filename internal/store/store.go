// Package store implements the asset ledger engine: in-memory tool and
// fuel collections, the movement ledger, and the settings registry,
// persisted as full-snapshot JSON blobs in SQLite. All mutations run
// under one mutex and write back before returning; if the write fails
// the in-memory change is rolled back.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/crisoull/bodega/internal/model"
)

// Snapshot keys in the snapshots table.
const (
	snapTools       = "tools"
	snapFuels       = "fuels"
	snapHistory     = "history"
	snapFuelHistory = "fuel_history"
	snapSettings    = "settings"
)

// DefaultOverdueAfter is the loan age after which a tool counts as
// overdue.
const DefaultOverdueAfter = 8 * time.Hour

// Store owns the tool and fuel collections, the movement ledger, the
// fuel history, and the settings registry.
type Store struct {
	db           *sql.DB
	overdueAfter time.Duration
	now          func() time.Time

	mu          sync.Mutex
	tools       map[int64]*model.Tool
	fuels       map[int64]*model.Fuel
	history     []model.Movement
	fuelHistory []model.FuelHistory
	settings    model.Settings
}

// Option configures a Store.
type Option func(*Store)

// WithOverdueAfter overrides the overdue threshold.
func WithOverdueAfter(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.overdueAfter = d
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store bound to db. Call Load before use.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{
		db:           db,
		overdueAfter: DefaultOverdueAfter,
		now:          time.Now,
		tools:        make(map[int64]*model.Tool),
		fuels:        make(map[int64]*model.Fuel),
		settings:     model.DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads all snapshots from the database. Missing snapshots leave
// the defaults in place (empty collections, seed settings).
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var tools []model.Tool
	if err := s.loadSnapshot(ctx, snapTools, &tools); err != nil {
		return err
	}
	s.tools = make(map[int64]*model.Tool, len(tools))
	for i := range tools {
		t := tools[i]
		s.tools[t.ID] = &t
	}

	var fuels []model.Fuel
	if err := s.loadSnapshot(ctx, snapFuels, &fuels); err != nil {
		return err
	}
	s.fuels = make(map[int64]*model.Fuel, len(fuels))
	for i := range fuels {
		f := fuels[i]
		s.fuels[f.ID] = &f
	}

	s.history = nil
	if err := s.loadSnapshot(ctx, snapHistory, &s.history); err != nil {
		return err
	}
	s.fuelHistory = nil
	if err := s.loadSnapshot(ctx, snapFuelHistory, &s.fuelHistory); err != nil {
		return err
	}

	settings := model.DefaultSettings()
	if err := s.loadSnapshot(ctx, snapSettings, &settings); err != nil {
		return err
	}
	s.settings = settings

	return nil
}

func (s *Store) loadSnapshot(ctx context.Context, key string, target any) error {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM snapshots WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading snapshot %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(value), target); err != nil {
		return fmt.Errorf("decoding snapshot %q: %w", key, err)
	}
	return nil
}

// persist writes the given snapshot keys in a single transaction.
// Callers must hold s.mu and roll back their in-memory change when a
// *StorageError is returned.
func (s *Store) persist(ctx context.Context, keys ...string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StorageError{Err: err}
	}
	defer tx.Rollback()

	for _, key := range keys {
		data, err := json.Marshal(s.snapshotValue(key))
		if err != nil {
			return &StorageError{Err: fmt.Errorf("encoding %q: %w", key, err)}
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO snapshots (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			 ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			key, string(data),
		)
		if err != nil {
			return &StorageError{Err: fmt.Errorf("writing %q: %w", key, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &StorageError{Err: err}
	}
	return nil
}

func (s *Store) snapshotValue(key string) any {
	switch key {
	case snapTools:
		return s.toolsSliceLocked()
	case snapFuels:
		return s.fuelsSliceLocked()
	case snapHistory:
		return s.history
	case snapFuelHistory:
		return s.fuelHistory
	case snapSettings:
		return s.settings
	default:
		panic("unknown snapshot key: " + key)
	}
}

func (s *Store) toolsSliceLocked() []model.Tool {
	out := make([]model.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) fuelsSliceLocked() []model.Fuel {
	out := make([]model.Fuel, 0, len(s.fuels))
	for _, f := range s.fuels {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// nextID returns max(existing)+1, or 1 for an empty collection. Only
// ever called with s.mu held, which makes the read-compute-insert
// sequence safe despite the non-atomic scheme.
func nextID[T any](records map[int64]T) int64 {
	var max int64
	for id := range records {
		if id > max {
			max = id
		}
	}
	return max + 1
}

// Clear wipes all collections and resets the settings registry to the
// seed values.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevTools, prevFuels := s.tools, s.fuels
	prevHistory, prevFuelHistory := s.history, s.fuelHistory
	prevSettings := s.settings

	s.tools = make(map[int64]*model.Tool)
	s.fuels = make(map[int64]*model.Fuel)
	s.history = nil
	s.fuelHistory = nil
	s.settings = model.DefaultSettings()

	if err := s.persist(ctx, snapTools, snapFuels, snapHistory, snapFuelHistory, snapSettings); err != nil {
		s.tools, s.fuels = prevTools, prevFuels
		s.history, s.fuelHistory = prevHistory, prevFuelHistory
		s.settings = prevSettings
		return err
	}
	return nil
}

// ReplaceAll swaps in a complete new data set, used by backup restore.
// Registry values referenced by the new records are merged into the
// settings so restored data never points at unregistered values.
func (s *Store) ReplaceAll(ctx context.Context, tools []model.Tool, fuels []model.Fuel, history []model.Movement, fuelHistory []model.FuelHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevTools, prevFuels := s.tools, s.fuels
	prevHistory, prevFuelHistory := s.history, s.fuelHistory
	prevSettings := s.settings

	s.tools = make(map[int64]*model.Tool, len(tools))
	for i := range tools {
		t := tools[i]
		s.tools[t.ID] = &t
	}
	s.fuels = make(map[int64]*model.Fuel, len(fuels))
	for i := range fuels {
		f := fuels[i]
		s.fuels[f.ID] = &f
	}
	s.history = history
	s.fuelHistory = fuelHistory

	s.settings = prevSettings.Clone()
	for _, t := range tools {
		s.ensureCategoryLocked(t.Category)
		s.ensureLocationLocked(t.Location)
	}
	for _, f := range fuels {
		s.ensureFuelTypeLocked(f.Type)
	}

	if err := s.persist(ctx, snapTools, snapFuels, snapHistory, snapFuelHistory, snapSettings); err != nil {
		s.tools, s.fuels = prevTools, prevFuels
		s.history, s.fuelHistory = prevHistory, prevFuelHistory
		s.settings = prevSettings
		return err
	}
	return nil
}

// Stats summarizes the current collections for the dashboard.
type Stats struct {
	Tools      int     `json:"tools"`
	Units      int     `json:"units"`
	Loaned     int     `json:"loaned"`
	Overdue    int     `json:"overdue"`
	Fuels      int     `json:"fuels"`
	FuelLiters float64 `json:"fuel_liters"`
	FuelSpend  float64 `json:"fuel_spend"`
}

// GetStats computes totals across tools and fuels.
func (s *Store) GetStats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var st Stats
	st.Tools = len(s.tools)
	for _, t := range s.tools {
		st.Units += t.Quantity
		if t.Status == model.StatusLoaned {
			st.Loaned++
		}
		if s.isOverdueLocked(t, now) {
			st.Overdue++
		}
	}
	st.Fuels = len(s.fuels)
	for _, f := range s.fuels {
		st.FuelLiters += f.Quantity
		st.FuelSpend += f.Amount
	}
	return st
}
