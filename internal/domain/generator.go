package domain

import (
	"errors"
	"sort"
)

// ErrExhausted is returned when a generator's pool empties before n goals
// have been drawn; mutex and tiebreaker filtering make this reachable well
// before the catalog itself runs out.
var ErrExhausted = errors.New("domain: generator pool exhausted before n goals were drawn")

// Generator draws a deterministic, seeded sequence of goals from a catalog.
// Get is a pure function of (catalog, variant, seed, n): calling it twice
// with the same arguments must produce identical output.
type Generator interface {
	Name() string
	Game() string
	// Small reports whether the catalog backing this generator is small
	// enough that clients may want to warn about repeats on a 13x13 board;
	// surfaced in the GET_GENERATORS listing.
	Small() bool
	Get(seed string, n int) ([]*Goal, error)
}

// catalogGenerator implements the four catalog-backed variants (Uniform,
// Mutex, Tiebreaker, TiebreakerMutex) as one draw loop with two independent
// toggles: mutexFilter and tiebreakered are the pool filters that may each
// apply around a draw.
type catalogGenerator struct {
	name          string
	catalog       *Catalog
	mutexFilter   bool
	tiebreakered  bool
	tiebreakerCap int
}

// NewUniformGenerator draws uniformly without replacement; no pool filtering
// beyond removing the drawn goal itself.
func NewUniformGenerator(name string, catalog *Catalog) Generator {
	return &catalogGenerator{name: name, catalog: catalog}
}

// NewMutexGenerator additionally removes every goal excluded by a drawn
// goal from the pool.
func NewMutexGenerator(name string, catalog *Catalog) Generator {
	return &catalogGenerator{name: name, catalog: catalog, mutexFilter: true}
}

// NewTiebreakerGenerator enforces catalog.TiebreakerMax: once the budget is
// spent, tiebreaker goals are purged from the pool before the next draw.
func NewTiebreakerGenerator(name string, catalog *Catalog) Generator {
	return &catalogGenerator{name: name, catalog: catalog, tiebreakered: true, tiebreakerCap: catalog.TiebreakerMax}
}

// NewTiebreakerMutexGenerator applies both filters.
func NewTiebreakerMutexGenerator(name string, catalog *Catalog) Generator {
	return &catalogGenerator{name: name, catalog: catalog, mutexFilter: true, tiebreakered: true, tiebreakerCap: catalog.TiebreakerMax}
}

func (g *catalogGenerator) Name() string { return g.name }
func (g *catalogGenerator) Game() string { return g.catalog.Game }
func (g *catalogGenerator) Small() bool  { return len(g.catalog.Goals) < 169 }

func (g *catalogGenerator) Get(seed string, n int) ([]*Goal, error) {
	rng := NewMT19937(seed)
	pool := newGoalPool(g.catalog)
	budget := g.tiebreakerCap

	result := make([]*Goal, 0, n)
	for i := 0; i < n; i++ {
		if g.tiebreakered && budget <= 0 {
			for _, id := range pool.snapshot() {
				if g.catalog.Goals[id].Tiebreaker {
					pool.removeID(id)
				}
			}
		}
		if pool.len() == 0 {
			return nil, ErrExhausted
		}

		idx := rng.Intn(pool.len())
		id := pool.removeAt(idx)
		goal := g.catalog.Goals[id]
		result = append(result, goal)

		if g.tiebreakered && goal.Tiebreaker {
			budget--
		}
		if g.mutexFilter {
			// Removal order changes the pool's swap-with-last layout, so it
			// is fixed here to keep draws reproducible.
			exIDs := make([]string, 0, len(goal.Exclusions))
			for ex := range goal.Exclusions {
				exIDs = append(exIDs, ex)
			}
			sort.Strings(exIDs)
			for _, ex := range exIDs {
				pool.removeID(ex)
			}
		}
	}
	return result, nil
}

// FixedGenerator returns a pre-authored, curated goal lineup. Seed is
// ignored; it exists purely to satisfy the Generator interface.
type FixedGenerator struct {
	name  string
	game  string
	goals []*Goal
}

// NewFixedGenerator builds a Generator over a fixed, ordered list of goals.
func NewFixedGenerator(name, game string, goals []*Goal) *FixedGenerator {
	return &FixedGenerator{name: name, game: game, goals: goals}
}

func (g *FixedGenerator) Name() string { return g.name }
func (g *FixedGenerator) Game() string { return g.game }
func (g *FixedGenerator) Small() bool  { return len(g.goals) < 169 }

func (g *FixedGenerator) Get(_ string, n int) ([]*Goal, error) {
	if n > len(g.goals) {
		return nil, ErrExhausted
	}
	out := make([]*Goal, n)
	copy(out, g.goals[:n])
	return out, nil
}
