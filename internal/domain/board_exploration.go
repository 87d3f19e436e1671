package domain

import "sort"

// explorationBase is the shared fog-of-war behavior behind both Exploration
// (center-to-corner) and GTTOS (left-to-right): goals outside `base` and a
// one-step halo around each of a team's own marks stay hidden, and marks
// are never shown across teams. Exploration13 and GTTOS13 each supply their
// own `base`/`finals` sets and a distinct set of extras in TeamView.
type explorationBase struct {
	board  *Board
	base   map[int]struct{}
	finals map[int]struct{}
}

func newExplorationBoard(generator Generator, seed string, base, finals []int) (*explorationBase, error) {
	b, err := newBoard(13, 13, generator, seed)
	if err != nil {
		return nil, err
	}
	return &explorationBase{board: b, base: toIndexSet(base), finals: toIndexSet(finals)}, nil
}

func toIndexSet(xs []int) map[int]struct{} {
	out := make(map[int]struct{}, len(xs))
	for _, x := range xs {
		out[x] = struct{}{}
	}
	return out
}

func sortedIndexSlice(set map[int]struct{}) []int {
	out := indexSlice(set)
	sort.Ints(out)
	return out
}

// getSurrounding returns the up-to-4 orthogonally adjacent cells to index;
// diagonals never reveal.
func (eb *explorationBase) getSurrounding(index int) map[int]struct{} {
	w, h := eb.board.Width, eb.board.Height
	x := index % w
	y := index / w

	out := make(map[int]struct{}, 4)
	for _, c := range [4][2]int{{x - 1, y}, {x + 1, y}, {x, y + 1}, {x, y - 1}} {
		if c[0] >= 0 && c[0] < w && c[1] >= 0 && c[1] < h {
			out[c[1]*w+c[0]] = struct{}{}
		}
	}
	return out
}

func (eb *explorationBase) getSeen(teamID string) map[int]struct{} {
	seen := make(map[int]struct{}, len(eb.base))
	for i := range eb.base {
		seen[i] = struct{}{}
	}
	for mark := range eb.board.Marks[teamID] {
		for s := range eb.getSurrounding(mark) {
			seen[s] = struct{}{}
		}
	}
	return seen
}

func (eb *explorationBase) getAllSeen() map[int]struct{} {
	seen := make(map[int]struct{}, len(eb.base))
	for i := range eb.base {
		seen[i] = struct{}{}
	}
	for _, marks := range eb.board.Marks {
		for mark := range marks {
			for s := range eb.getSurrounding(mark) {
				seen[s] = struct{}{}
			}
		}
	}
	return seen
}

// CanMark gates marking on the fog of war: the default "not already marked
// by this team" rule still applies, and the cell must be in the team's seen
// set.
func (eb *explorationBase) CanMark(index int, teamID string) bool {
	if !defaultCanMark(eb.board, index, teamID) {
		return false
	}
	_, ok := eb.getSeen(teamID)[index]
	return ok
}

// minimumView reveals only the `base` goals, plus the base/finals index
// sets for UI anchoring; it carries no maxMarksPerSquare field.
func (eb *explorationBase) minimumView(name string) map[string]any {
	goals := make(map[int]any, len(eb.base))
	for i := range eb.base {
		goals[i] = eb.board.Goals[i].Repr()
	}
	return map[string]any{
		"type":          name,
		"width":         eb.board.Width,
		"height":        eb.board.Height,
		"game":          eb.board.Game,
		"generatorName": eb.board.GeneratorName,
		"goals":         goals,
		"base":          sortedIndexSlice(eb.base),
		"finals":        sortedIndexSlice(eb.finals),
	}
}

// baseTeamView: a team sees base plus whatever its own marks have revealed,
// and only its own marks.
func (eb *explorationBase) baseTeamView(teamID, name string) map[string]any {
	if teamID == "" {
		return eb.minimumView(name)
	}
	seen := eb.getSeen(teamID)
	view := eb.minimumView(name)

	goals := make(map[int]any, len(seen))
	for i := range seen {
		goals[i] = eb.board.Goals[i].Repr()
	}
	view["goals"] = goals
	view["marks"] = map[string][]int{teamID: sortedIndexSlice(eb.board.Marks[teamID])}
	return view
}

// spectatorView is the union of everything any team has revealed, with
// every team's marks visible.
func (eb *explorationBase) spectatorView(name string) map[string]any {
	seen := eb.getAllSeen()
	view := eb.minimumView(name)

	goals := make(map[int]any, len(seen))
	for i := range seen {
		goals[i] = eb.board.Goals[i].Repr()
	}
	view["goals"] = goals

	marks := make(map[string][]int, len(eb.board.Marks))
	for team, set := range eb.board.Marks {
		marks[team] = sortedIndexSlice(set)
	}
	view["marks"] = marks
	return view
}

// Exploration13 is the 13x13 center-to-corner board: a single base square
// in the middle, four corner finals.
type Exploration13 struct {
	eb *explorationBase
}

// NewExploration13 builds a 13x13 Exploration board.
func NewExploration13(generator Generator, seed string) (*Exploration13, error) {
	eb, err := newExplorationBoard(generator, seed, []int{84}, []int{0, 12, 156, 168})
	if err != nil {
		return nil, err
	}
	return &Exploration13{eb: eb}, nil
}

func (v *Exploration13) Name() string        { return "Exploration" }
func (v *Exploration13) Board() *Board        { return v.eb.board }
func (v *Exploration13) MaxMarksPerSquare() int { return 0 }

func (v *Exploration13) CanMark(index int, teamID string) bool {
	return v.eb.CanMark(index, teamID)
}

func (v *Exploration13) Mark(index int, teamID string) bool {
	return defaultMark(v.eb.board, v.CanMark, index, teamID)
}

func (v *Exploration13) CanUnmark(index int, teamID string) bool {
	return defaultCanUnmark(v.eb.board, index, teamID)
}

func (v *Exploration13) Unmark(index int, teamID string) bool {
	return defaultUnmark(v.eb.board, v.CanUnmark, index, teamID)
}

func (v *Exploration13) MinimumView() map[string]any { return v.eb.minimumView(v.Name()) }

// TeamView's extras are empty; only GTTOS publishes any.
func (v *Exploration13) TeamView(teamID string) map[string]any {
	view := v.eb.baseTeamView(teamID, v.Name())
	view["extras"] = map[string]any{}
	return view
}

func (v *Exploration13) SpectatorView() map[string]any { return v.eb.spectatorView(v.Name()) }
func (v *Exploration13) FullView() map[string]any       { return fullView(v) }

// GTTOS13 is the 13x13 left-to-right board: base is the left column,
// finals the right column, and each team's team view additionally reports
// the furthest column every team has reached.
type GTTOS13 struct {
	eb *explorationBase
}

// NewGTTOS13 builds a 13x13 Get-To-The-Other-Side board.
func NewGTTOS13(generator Generator, seed string) (*GTTOS13, error) {
	base := []int{0, 13, 26, 39, 52, 65, 78, 91, 104, 117, 130, 143, 156}
	finals := []int{12, 25, 38, 51, 64, 77, 90, 103, 116, 129, 142, 155, 168}
	eb, err := newExplorationBoard(generator, seed, base, finals)
	if err != nil {
		return nil, err
	}
	return &GTTOS13{eb: eb}, nil
}

func (v *GTTOS13) Name() string        { return "Get To The Other Side" }
func (v *GTTOS13) Board() *Board        { return v.eb.board }
func (v *GTTOS13) MaxMarksPerSquare() int { return 0 }

func (v *GTTOS13) CanMark(index int, teamID string) bool {
	return v.eb.CanMark(index, teamID)
}

func (v *GTTOS13) Mark(index int, teamID string) bool {
	return defaultMark(v.eb.board, v.CanMark, index, teamID)
}

func (v *GTTOS13) CanUnmark(index int, teamID string) bool {
	return defaultCanUnmark(v.eb.board, index, teamID)
}

func (v *GTTOS13) Unmark(index int, teamID string) bool {
	return defaultUnmark(v.eb.board, v.CanUnmark, index, teamID)
}

func (v *GTTOS13) MinimumView() map[string]any { return v.eb.minimumView(v.Name()) }

func (v *GTTOS13) markCols() map[string]int {
	out := make(map[string]int, len(v.eb.board.Marks))
	for teamID, marks := range v.eb.board.Marks {
		maxCol := 0
		for m := range marks {
			if col := m % v.eb.board.Width; col > maxCol {
				maxCol = col
			}
		}
		out[teamID] = maxCol
	}
	return out
}

func (v *GTTOS13) TeamView(teamID string) map[string]any {
	view := v.eb.baseTeamView(teamID, v.Name())
	view["extras"] = map[string]any{"colMarks": v.markCols()}
	return view
}

func (v *GTTOS13) SpectatorView() map[string]any { return v.eb.spectatorView(v.Name()) }
func (v *GTTOS13) FullView() map[string]any       { return fullView(v) }
