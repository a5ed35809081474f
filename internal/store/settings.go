package store

import (
	"context"
	"strings"

	"github.com/crisoull/bodega/internal/model"
)

// Settings returns a copy of the registry.
func (s *Store) Settings() model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Clone()
}

// AddToolCategory appends a category, preserving insertion order.
// Returns ErrExists for a case-sensitive duplicate.
func (s *Store) AddToolCategory(ctx context.Context, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category = strings.TrimSpace(category)
	if category == "" {
		return &ValidationError{Messages: []string{"category is required"}}
	}
	if model.Contains(s.settings.ToolCategories, category) {
		return ErrExists
	}

	s.settings.ToolCategories = append(s.settings.ToolCategories, category)
	if err := s.persist(ctx, snapSettings); err != nil {
		s.settings.ToolCategories = s.settings.ToolCategories[:len(s.settings.ToolCategories)-1]
		return err
	}
	return nil
}

// RemoveToolCategory removes a category and reassigns every tool that
// referenced it to the fallback category. Records are never deleted by
// a registry change.
func (s *Store) RemoveToolCategory(ctx context.Context, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !model.Contains(s.settings.ToolCategories, category) {
		return ErrNotFound
	}

	prevSettings := s.settings
	prevCategories := make(map[int64]string)

	kept := make([]string, 0, len(s.settings.ToolCategories))
	for _, c := range s.settings.ToolCategories {
		if c != category {
			kept = append(kept, c)
		}
	}
	s.settings = prevSettings.Clone()
	s.settings.ToolCategories = kept

	for id, t := range s.tools {
		if t.Category == category {
			prevCategories[id] = t.Category
			t.Category = model.FallbackCategory
		}
	}

	if err := s.persist(ctx, snapSettings, snapTools); err != nil {
		s.settings = prevSettings
		for id, c := range prevCategories {
			s.tools[id].Category = c
		}
		return err
	}
	return nil
}

// AddFuelType appends a fuel type. Returns ErrExists for a duplicate.
func (s *Store) AddFuelType(ctx context.Context, fuelType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fuelType = strings.TrimSpace(fuelType)
	if fuelType == "" {
		return &ValidationError{Messages: []string{"fuel type is required"}}
	}
	if model.Contains(s.settings.FuelTypes, fuelType) {
		return ErrExists
	}

	s.settings.FuelTypes = append(s.settings.FuelTypes, fuelType)
	if err := s.persist(ctx, snapSettings); err != nil {
		s.settings.FuelTypes = s.settings.FuelTypes[:len(s.settings.FuelTypes)-1]
		return err
	}
	return nil
}

// RemoveFuelType removes a fuel type and reassigns affected fuels to
// the first remaining type, or the fallback when none remain.
func (s *Store) RemoveFuelType(ctx context.Context, fuelType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !model.Contains(s.settings.FuelTypes, fuelType) {
		return ErrNotFound
	}

	prevSettings := s.settings
	prevTypes := make(map[int64]string)

	kept := make([]string, 0, len(s.settings.FuelTypes))
	for _, t := range s.settings.FuelTypes {
		if t != fuelType {
			kept = append(kept, t)
		}
	}
	s.settings = prevSettings.Clone()
	s.settings.FuelTypes = kept

	fallback := model.FallbackFuelType
	if len(kept) > 0 {
		fallback = kept[0]
	}
	for id, f := range s.fuels {
		if f.Type == fuelType {
			prevTypes[id] = f.Type
			f.Type = fallback
		}
	}

	if err := s.persist(ctx, snapSettings, snapFuels); err != nil {
		s.settings = prevSettings
		for id, t := range prevTypes {
			s.fuels[id].Type = t
		}
		return err
	}
	return nil
}

// ReplaceSettings swaps the whole registry, used by the settings
// artifact import. Empty arrays in the replacement fall back to seeds.
func (s *Store) ReplaceSettings(ctx context.Context, settings model.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	defaults := model.DefaultSettings()
	if len(settings.ToolCategories) == 0 {
		settings.ToolCategories = defaults.ToolCategories
	}
	if len(settings.FuelTypes) == 0 {
		settings.FuelTypes = defaults.FuelTypes
	}
	if len(settings.ToolStatuses) == 0 {
		settings.ToolStatuses = defaults.ToolStatuses
	}
	if len(settings.Locations) == 0 {
		settings.Locations = defaults.Locations
	}

	prev := s.settings
	s.settings = settings.Clone()
	if err := s.persist(ctx, snapSettings); err != nil {
		s.settings = prev
		return err
	}
	return nil
}

// ensureCategoryLocked registers an unseen category during import.
func (s *Store) ensureCategoryLocked(category string) {
	if category != "" && !model.Contains(s.settings.ToolCategories, category) {
		s.settings.ToolCategories = append(s.settings.ToolCategories, category)
	}
}

// ensureFuelTypeLocked registers an unseen fuel type during import.
func (s *Store) ensureFuelTypeLocked(fuelType string) {
	if fuelType != "" && !model.Contains(s.settings.FuelTypes, fuelType) {
		s.settings.FuelTypes = append(s.settings.FuelTypes, fuelType)
	}
}

// ensureLocationLocked registers an unseen location during import.
func (s *Store) ensureLocationLocked(location string) {
	if location != "" && !model.Contains(s.settings.Locations, location) {
		s.settings.Locations = append(s.settings.Locations, location)
	}
}
