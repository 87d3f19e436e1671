package domain

import "fmt"

// boardAliases is the table of board type names clients choose between in
// OPEN/GET_BOARDS.
var boardAliases = map[string]func(Generator, string) (Variant, error){
	"Non-Lockout": func(g Generator, seed string) (Variant, error) { return NewNonLockout(g, seed) },
	"Lockout":     func(g Generator, seed string) (Variant, error) { return NewLockout(g, seed) },
	"Invasion":    func(g Generator, seed string) (Variant, error) { return NewInvasion(g, seed) },
	"Exploration": func(g Generator, seed string) (Variant, error) { return NewExploration13(g, seed) },
	"GTTOS":       func(g Generator, seed string) (Variant, error) { return NewGTTOS13(g, seed) },
}

// BoardNames lists the known board aliases, for GET_BOARDS.
func BoardNames() []string {
	out := make([]string, 0, len(boardAliases))
	for name := range boardAliases {
		out = append(out, name)
	}
	return out
}

// CreateBoard dispatches a board type name to its constructor.
func CreateBoard(boardName string, generator Generator, seed string) (Variant, error) {
	ctor, ok := boardAliases[boardName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, boardName)
	}
	return ctor(generator, seed)
}
