package repository

import (
	"context"
	"fmt"
	"log/slog"

	"breaktime-service/src/models"
)

// Catalogue is the break type reference data, loaded once at startup.
// Break types are static seed data so no reload path exists.
type Catalogue struct {
	byCode  map[string]models.BreakType
	byID    map[int64]models.BreakType
	ordered []models.BreakType
}

// ByCode returns the break type for a code, or nil if unknown.
func (c *Catalogue) ByCode(code string) *models.BreakType {
	if bt, ok := c.byCode[code]; ok {
		return &bt
	}
	return nil
}

// ByID returns the break type for an id, or nil if unknown.
func (c *Catalogue) ByID(id int64) *models.BreakType {
	if bt, ok := c.byID[id]; ok {
		return &bt
	}
	return nil
}

// All returns every break type in catalogue order.
func (c *Catalogue) All() []models.BreakType {
	return c.ordered
}

// NewCatalogue builds a catalogue from a list of break types.
func NewCatalogue(types []models.BreakType) *Catalogue {
	cat := &Catalogue{
		byCode:  make(map[string]models.BreakType, len(types)),
		byID:    make(map[int64]models.BreakType, len(types)),
		ordered: types,
	}
	for _, bt := range types {
		cat.byCode[bt.Code] = bt
		cat.byID[bt.ID] = bt
	}
	return cat
}

// LoadCatalogue reads the break types table into a catalogue.
func (s *Store) LoadCatalogue(ctx context.Context) (*Catalogue, error) {
	query := `
		SELECT id, code, display_name, time_limit_minutes, counted_in_total, requires_reason
		FROM break_types
		ORDER BY id
	`

	rows, err := s.pool().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load break types: %w", err)
	}
	defer rows.Close()

	var types []models.BreakType
	for rows.Next() {
		var bt models.BreakType
		if err := rows.Scan(
			&bt.ID,
			&bt.Code,
			&bt.DisplayName,
			&bt.TimeLimitMinutes,
			&bt.CountedInTotal,
			&bt.RequiresReason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan break type: %w", err)
		}
		types = append(types, bt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate break types: %w", err)
	}

	slog.Info("Loaded break type catalogue", "count", len(types))

	return NewCatalogue(types), nil
}
