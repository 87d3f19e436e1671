// Package domain implements the board/generator/catalog core: the part of
// bingosink that is authoritative over game state and independent of any
// transport.
package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidCatalog is returned when a catalog document fails validation,
// e.g. an exclusion referencing a goal id that does not exist.
var ErrInvalidCatalog = errors.New("domain: invalid catalog")

// Goal is a single entry on a board's goal list. Goals are immutable after
// catalog load and shared by reference across every board drawn from the
// same catalog. Weighted, Exclusion, and Tiebreaker are independent facets,
// so they're optional fields on one struct rather than a type per
// combination.
type Goal struct {
	ID           string
	Name         string
	Translations map[string]string
	Weight       float64 // defaults to 1 when not specified in the catalog document
	Exclusions   map[string]struct{}
	Tiebreaker   bool
}

// Repr is the JSON-shaped goal representation used in board views.
func (g *Goal) Repr() map[string]any {
	return map[string]any{
		"name":         g.Name,
		"translations": g.Translations,
	}
}

func (g *Goal) String() string {
	return g.Name
}

// Catalog is an immutable, loaded set of goals for one game.
type Catalog struct {
	Game          string
	Languages     map[string]bool
	TiebreakerMax int
	Goals         map[string]*Goal
}

// rawGoal is the on-disk shape of one goal entry. `type` is accepted for
// compatibility with hand-authored catalogs but never consulted: which
// facets a Goal carries is inferred from which fields are present.
type rawGoal struct {
	Name         string            `json:"name"`
	Type         string            `json:"type,omitempty"`
	Weight       *float64          `json:"weight,omitempty"`
	Exclusions   []string          `json:"exclusions,omitempty"`
	Tiebreaker   bool              `json:"tiebreaker,omitempty"`
	Translations map[string]string `json:"translations,omitempty"`
}

// rawCatalog is the on-disk shape of a per-game generator's "goals" document.
type rawCatalog struct {
	Game          string             `json:"game"`
	Languages     map[string]bool    `json:"languages"`
	TiebreakerMax int                `json:"tiebreakerMax"`
	Goals         map[string]rawGoal `json:"goals"`
}

// ParseCatalog parses a goal catalog document and validates that every
// exclusion id resolves within the same catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	catalog := &Catalog{
		Game:          raw.Game,
		Languages:     raw.Languages,
		TiebreakerMax: raw.TiebreakerMax,
		Goals:         make(map[string]*Goal, len(raw.Goals)),
	}

	for id, rg := range raw.Goals {
		goal := &Goal{
			ID:           id,
			Name:         rg.Name,
			Translations: rg.Translations,
			Weight:       1,
			Tiebreaker:   rg.Tiebreaker,
		}
		if rg.Weight != nil {
			goal.Weight = *rg.Weight
		}
		if len(rg.Exclusions) > 0 {
			goal.Exclusions = make(map[string]struct{}, len(rg.Exclusions))
			for _, ex := range rg.Exclusions {
				goal.Exclusions[ex] = struct{}{}
			}
		}
		catalog.Goals[id] = goal
	}

	for id, goal := range catalog.Goals {
		for ex := range goal.Exclusions {
			if _, ok := catalog.Goals[ex]; !ok {
				return nil, fmt.Errorf("%w: goal %q excludes unknown goal %q", ErrInvalidCatalog, id, ex)
			}
		}
	}

	return catalog, nil
}
