// Package config loads the two configuration surfaces the core depends on:
// per-game goal catalogs (this file) and server CLI/env settings
// (server.go).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"bingosink/internal/domain"
)

// generatorEntry is one generator's config within a game's document.
// Unknown fields are ignored by encoding/json's default decoding behavior.
type generatorEntry struct {
	Type          string                     `json:"type"`
	Goals         map[string]json.RawMessage `json:"goals"`
	TiebreakerMax int                        `json:"tiebreakerMax"`
	Languages     map[string]bool            `json:"languages"`
}

// Games holds every game's generators, keyed by game name then generator
// name. Immutable after Load.
type Games struct {
	generators map[string]map[string]domain.Generator
}

// Game reports whether a game name is known.
func (g *Games) Game(game string) bool {
	_, ok := g.generators[game]
	return ok
}

// GameNames lists every loaded game, for GET_GAMES.
func (g *Games) GameNames() []string {
	out := make([]string, 0, len(g.generators))
	for name := range g.generators {
		out = append(out, name)
	}
	return out
}

// Generator resolves one (game, generatorName) pair.
func (g *Games) Generator(game, name string) (domain.Generator, bool) {
	gens, ok := g.generators[game]
	if !ok {
		return nil, false
	}
	gen, ok := gens[name]
	return gen, ok
}

// Generators lists every generator for a game, for GET_GENERATORS.
func (g *Games) Generators(game string) map[string]domain.Generator {
	return g.generators[game]
}

// LoadGames reads one JSON document per game from dir; the game name is the
// file's base name with its extension stripped.
func LoadGames(dir string) (*Games, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("config: read catalog dir: %w", err)
	}

	games := &Games{generators: make(map[string]map[string]domain.Generator)}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		game := strings.TrimSuffix(entry.Name(), ".json")

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", entry.Name(), err)
		}

		var doc map[string]generatorEntry
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", entry.Name(), err)
		}

		gens := make(map[string]domain.Generator, len(doc))
		for name, raw := range doc {
			gen, err := buildGenerator(game, name, raw)
			if err != nil {
				return nil, fmt.Errorf("config: %s/%s: %w", game, name, err)
			}
			gens[name] = gen
		}
		games.generators[game] = gens
	}
	return games, nil
}

func buildGenerator(game, name string, raw generatorEntry) (domain.Generator, error) {
	catalogDoc, err := json.Marshal(map[string]any{
		"game":          game,
		"languages":     raw.Languages,
		"tiebreakerMax": raw.TiebreakerMax,
		"goals":         raw.Goals,
	})
	if err != nil {
		return nil, err
	}
	catalog, err := domain.ParseCatalog(catalogDoc)
	if err != nil {
		return nil, err
	}

	switch raw.Type {
	case "", "Uniform":
		return domain.NewUniformGenerator(name, catalog), nil
	case "Mutex":
		return domain.NewMutexGenerator(name, catalog), nil
	case "Tiebreaker":
		return domain.NewTiebreakerGenerator(name, catalog), nil
	case "TiebreakerMutex":
		return domain.NewTiebreakerMutexGenerator(name, catalog), nil
	case "Fixed":
		return domain.NewFixedGenerator(name, game, fixedGoalOrder(catalog)), nil
	default:
		return nil, fmt.Errorf("unknown generator type %q", raw.Type)
	}
}

// fixedGoalOrder gives Fixed generators a deterministic draw order: a JSON
// object has no native list order, so goal ids are sorted. Curated lineups
// that need a specific order encode it in the id itself (e.g. "01_intro",
// "02_mid").
func fixedGoalOrder(catalog *domain.Catalog) []*domain.Goal {
	ids := make([]string, 0, len(catalog.Goals))
	for id := range catalog.Goals {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]*domain.Goal, len(ids))
	for i, id := range ids {
		out[i] = catalog.Goals[id]
	}
	return out
}

var (
	loadOnce     sync.Once
	globalGames  *Games
	globalLoaded error
)

// Load is the process-wide entrypoint; repeated calls return the first
// result.
func Load(dir string) error {
	loadOnce.Do(func() {
		globalGames, globalLoaded = LoadGames(dir)
	})
	return globalLoaded
}

// Get returns the globally loaded Games, or nil if Load hasn't succeeded.
func Get() *Games { return globalGames }
