package domain

import "errors"

// ErrUnknownVariant is returned by CreateBoard for a board type name not in
// the variant registry.
var ErrUnknownVariant = errors.New("domain: unknown board variant")

// Board holds the state every variant shares: dimensions, the drawn goal
// list, and the per-team mark sets. Variant-specific legality and view
// rules live on the Variant that wraps a Board: composition plus a small
// interface of the methods that actually vary, rather than a deep type
// hierarchy.
type Board struct {
	Width, Height int
	Game          string
	GeneratorName string
	Seed          string
	Goals         []*Goal
	Marks         map[string]map[int]struct{} // teamID -> marked indices
	History       []MarkEvent                 // append-only, faithful replay log

	// generator is kept so Invasion can rebuild an identical fresh board
	// (same goal draw) to validate an unmark by replay.
	generator Generator
}

// MarkEvent is one entry of a Board's append-only mark history, used for
// TIMELAPSE and for reconstructing a board's marks by replay.
type MarkEvent struct {
	Team   string
	Index  int
	Marked bool
}

func (b *Board) appendHistory(teamID string, index int, marked bool) {
	b.History = append(b.History, MarkEvent{Team: teamID, Index: index, Marked: marked})
}

// newBoard draws w*h goals from generator using seed and returns the shared
// state every variant wraps.
func newBoard(w, h int, generator Generator, seed string) (*Board, error) {
	goals, err := generator.Get(seed, w*h)
	if err != nil {
		return nil, err
	}
	return &Board{
		Width:         w,
		Height:        h,
		Game:          generator.Game(),
		GeneratorName: generator.Name(),
		Seed:          seed,
		Goals:         goals,
		Marks:         make(map[string]map[int]struct{}),
		generator:     generator,
	}, nil
}

func (b *Board) index(x, y int) int { return x + y*b.Width }

// Variant is the per-board-type behavior the shared Board defers to: mark
// legality, mutation, and the four view projections (minimum, team,
// spectator, full).
type Variant interface {
	Name() string
	Board() *Board
	MaxMarksPerSquare() int
	CanMark(index int, teamID string) bool
	Mark(index int, teamID string) bool
	CanUnmark(index int, teamID string) bool
	Unmark(index int, teamID string) bool
	MinimumView() map[string]any
	TeamView(teamID string) map[string]any
	SpectatorView() map[string]any
	FullView() map[string]any
}

// defaultCanMark lets a team mark any in-bounds square it hasn't already
// marked itself. Lockout-family variants override this to check every
// team's marks instead of just the caller's.
func defaultCanMark(b *Board, index int, teamID string) bool {
	if teamID == "" || index < 0 || index >= len(b.Goals) {
		return false
	}
	_, marked := b.Marks[teamID][index]
	return !marked
}

// defaultMark validates via canMark, then records the mark and its history
// event.
func defaultMark(b *Board, canMark func(int, string) bool, index int, teamID string) bool {
	if !canMark(index, teamID) {
		return false
	}
	if b.Marks[teamID] == nil {
		b.Marks[teamID] = make(map[int]struct{})
	}
	b.Marks[teamID][index] = struct{}{}
	b.appendHistory(teamID, index, true)
	return true
}

// defaultCanUnmark requires the goal to be currently marked by the team.
func defaultCanUnmark(b *Board, index int, teamID string) bool {
	_, marked := b.Marks[teamID][index]
	return marked
}

// defaultUnmark removes the mark, dropping the team's entry entirely once
// it has no marks left.
func defaultUnmark(b *Board, canUnmark func(int, string) bool, index int, teamID string) bool {
	if !canUnmark(index, teamID) {
		return false
	}
	delete(b.Marks[teamID], index)
	if len(b.Marks[teamID]) == 0 {
		delete(b.Marks, teamID)
	}
	b.appendHistory(teamID, index, false)
	return true
}

// minimumView is the type tag plus dimensions every view shape is built on
// top of; always safe to show anyone.
func minimumView(v Variant) map[string]any {
	b := v.Board()
	return map[string]any{
		"type":              v.Name(),
		"width":             b.Width,
		"height":            b.Height,
		"maxMarksPerSquare": v.MaxMarksPerSquare(),
		"game":              b.Game,
		"generatorName":     b.GeneratorName,
	}
}

// fullView is every goal and every team's marks, unfiltered. Used directly
// as the team/spectator view for the non-hidden variants (Non-Lockout,
// Lockout, Invasion).
func fullView(v Variant) map[string]any {
	view := minimumView(v)
	b := v.Board()

	goals := make(map[int]any, len(b.Goals))
	for i, g := range b.Goals {
		goals[i] = g.Repr()
	}
	view["goals"] = goals

	marks := make(map[string][]int, len(b.Marks))
	for team, set := range b.Marks {
		marks[team] = indexSlice(set)
	}
	view["marks"] = marks

	return view
}

func indexSlice(set map[int]struct{}) []int {
	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	return out
}
