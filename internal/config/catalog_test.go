package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCatalogFile(t *testing.T, dir, game string, doc string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, game+".json"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write catalog file: %v", err)
	}
}

func TestLoadGamesBuildsEveryGeneratorType(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "demo", `{
		"uniform": {"type": "Uniform", "goals": {"a": {"name": "A"}, "b": {"name": "B"}}},
		"mutex": {"type": "Mutex", "goals": {"a": {"name": "A"}, "b": {"name": "B"}}},
		"tiebreaker": {"type": "Tiebreaker", "tiebreakerMax": 1, "goals": {"a": {"name": "A"}, "b": {"name": "B", "tiebreaker": true}}},
		"tiebreakerMutex": {"type": "TiebreakerMutex", "tiebreakerMax": 1, "goals": {"a": {"name": "A"}, "b": {"name": "B", "tiebreaker": true}}},
		"fixed": {"type": "Fixed", "goals": {"a": {"name": "A"}, "b": {"name": "B"}}},
		"implicit": {"goals": {"a": {"name": "A"}, "b": {"name": "B"}}}
	}`)

	games, err := LoadGames(dir)
	if err != nil {
		t.Fatalf("LoadGames: %v", err)
	}

	if !games.Game("demo") {
		t.Fatalf("expected game %q to be loaded", "demo")
	}
	for _, name := range []string{"uniform", "mutex", "tiebreaker", "tiebreakerMutex", "fixed", "implicit"} {
		gen, ok := games.Generator("demo", name)
		if !ok {
			t.Fatalf("expected generator %q to exist", name)
		}
		if gen.Name() != name {
			t.Fatalf("generator %q reports Name() = %q", name, gen.Name())
		}
	}
}

func TestLoadGamesRejectsUnknownType(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "demo", `{
		"weird": {"type": "NotAType", "goals": {"a": {"name": "A"}}}
	}`)

	if _, err := LoadGames(dir); err == nil {
		t.Fatalf("expected an error for an unknown generator type")
	}
}

func TestFixedGeneratorDrawsInSortedIDOrder(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "demo", `{
		"fixed": {"type": "Fixed", "goals": {
			"c": {"name": "C"}, "a": {"name": "A"}, "b": {"name": "B"}
		}}
	}`)

	games, err := LoadGames(dir)
	if err != nil {
		t.Fatalf("LoadGames: %v", err)
	}
	gen, _ := games.Generator("demo", "fixed")

	goals, err := gen.Get("any-seed", 3)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := []string{"A", "B", "C"}
	for i, g := range goals {
		if g.Name != want[i] {
			t.Fatalf("goal %d = %q, want %q", i, g.Name, want[i])
		}
	}
}

func TestGameNamesAndGenerators(t *testing.T) {
	dir := t.TempDir()
	writeCatalogFile(t, dir, "alpha", `{"u": {"type": "Uniform", "goals": {"a": {"name": "A"}}}}`)
	writeCatalogFile(t, dir, "beta", `{"u": {"type": "Uniform", "goals": {"a": {"name": "A"}}}}`)

	games, err := LoadGames(dir)
	if err != nil {
		t.Fatalf("LoadGames: %v", err)
	}

	names := games.GameNames()
	if len(names) != 2 {
		t.Fatalf("expected 2 games, got %d: %v", len(names), names)
	}

	if len(games.Generators("alpha")) != 1 {
		t.Fatalf("expected 1 generator for alpha")
	}
	if _, ok := games.Generator("missing-game", "u"); ok {
		t.Fatalf("expected lookup in unknown game to fail")
	}
}
