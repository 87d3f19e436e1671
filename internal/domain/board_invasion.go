package domain

import "sort"

// Invasion direction constants. The "5 - c" flip used throughout maps
// TOP<->BOTTOM and LEFT<->RIGHT since each pair sums to 5.
const (
	InvasionTop    = 1
	InvasionLeft   = 2
	InvasionRight  = 3
	InvasionBottom = 4
)

func allInvasionConstraints() map[int]struct{} {
	return map[int]struct{}{InvasionTop: {}, InvasionLeft: {}, InvasionRight: {}, InvasionBottom: {}}
}

// Invasion is a Lockout board where each team starts from one side of the
// grid and may only extend its claimed squares inward, rank by rank, from
// whichever sides its moves so far have committed it to. A direction
// survives a mark only while every occupied rank holds strictly fewer of
// the team's marks than the rank before it, so a corner opening commits
// the team as soon as a second mark ties two ranks.
type Invasion struct {
	board            *Board
	startConstraints map[string]map[int]struct{} // teamID -> allowed directions
	ranks            map[int][][]int             // direction -> ordered ranks, each a list of indices
}

// NewInvasion builds a 5x5 Invasion board.
func NewInvasion(generator Generator, seed string) (*Invasion, error) {
	b, err := newBoard(5, 5, generator, seed)
	if err != nil {
		return nil, err
	}
	return buildInvasion(b), nil
}

func buildInvasion(b *Board) *Invasion {
	inv := &Invasion{board: b, startConstraints: make(map[string]map[int]struct{})}

	top := make([][]int, b.Height)
	for y := 0; y < b.Height; y++ {
		rank := make([]int, b.Width)
		for x := 0; x < b.Width; x++ {
			rank[x] = b.index(x, y)
		}
		top[y] = rank
	}
	left := make([][]int, b.Width)
	for x := 0; x < b.Width; x++ {
		rank := make([]int, b.Height)
		for y := 0; y < b.Height; y++ {
			rank[y] = b.index(x, y)
		}
		left[x] = rank
	}

	inv.ranks = map[int][][]int{
		InvasionTop:    top,
		InvasionLeft:   left,
		InvasionRight:  reverseRanks(left),
		InvasionBottom: reverseRanks(top),
	}
	return inv
}

func reverseRanks(in [][]int) [][]int {
	out := make([][]int, len(in))
	for i, r := range in {
		out[len(in)-1-i] = r
	}
	return out
}

func (inv *Invasion) Name() string  { return "Invasion" }
func (inv *Invasion) Board() *Board { return inv.board }

func (inv *Invasion) MaxMarksPerSquare() int { return 1 }

// CanMark follows Lockout: a square is available to anyone until some team
// has claimed it. Mark itself applies the far stricter front-line rules
// via validMoves.
func (inv *Invasion) CanMark(index int, teamID string) bool {
	if teamID == "" || index < 0 || index >= len(inv.board.Goals) {
		return false
	}
	for _, marks := range inv.board.Marks {
		if _, ok := marks[index]; ok {
			return false
		}
	}
	return true
}

func (inv *Invasion) CanUnmark(index int, teamID string) bool {
	return defaultCanUnmark(inv.board, index, teamID)
}

func (inv *Invasion) otherTeam(teamID string) (string, bool) {
	for t := range inv.startConstraints {
		if t != teamID {
			return t, true
		}
	}
	return "", false
}

func (inv *Invasion) invMarks() map[int]string {
	d := make(map[int]string)
	for team, marks := range inv.board.Marks {
		for i := range marks {
			d[i] = team
		}
	}
	return d
}

// permitted is the set of directions teamID may currently draw from: its
// recorded constraints once it has moved, the opposites of the opponent's
// constraints for a team entering second, all four for the very first mark
// on the board, and nothing at all for a third team.
func (inv *Invasion) permitted(teamID string) map[int]struct{} {
	if own, started := inv.startConstraints[teamID]; started {
		return own
	}
	switch len(inv.startConstraints) {
	case 2:
		return nil
	case 1:
		other, _ := inv.otherTeam(teamID)
		out := make(map[int]struct{}, len(inv.startConstraints[other]))
		for c := range inv.startConstraints[other] {
			out[5-c] = struct{}{}
		}
		return out
	default:
		return allInvasionConstraints()
	}
}

// frontConsistent reports whether teamID's marks, counting index as already
// claimed, keep a receding front along direction c: every occupied rank
// must hold strictly fewer of the team's marks than the rank before it.
func (inv *Invasion) frontConsistent(teamID string, c, index int) bool {
	ranks := inv.ranks[c]
	fills := make([]int, len(ranks))
	for r, rank := range ranks {
		for _, i := range rank {
			if i == index {
				fills[r]++
				continue
			}
			if _, ok := inv.board.Marks[teamID][i]; ok {
				fills[r]++
			}
		}
	}
	for r := 1; r < len(fills); r++ {
		if fills[r] > 0 && fills[r-1] <= fills[r] {
			return false
		}
	}
	return true
}

// survivors is the subset of permitted directions that stay front-consistent
// for teamID once index is claimed.
func (inv *Invasion) survivors(teamID string, permitted map[int]struct{}, index int) map[int]struct{} {
	out := make(map[int]struct{}, len(permitted))
	for c := range permitted {
		if inv.frontConsistent(teamID, c, index) {
			out[c] = struct{}{}
		}
	}
	return out
}

// opposableWithin reports whether other would keep at least one direction
// after being intersected with the opposites of s.
func opposableWithin(s, other map[int]struct{}) bool {
	for c := range s {
		if _, ok := other[5-c]; ok {
			return true
		}
	}
	return false
}

// validMoves maps every cell teamID may legally claim next to the
// directions that survive claiming it. A cell that would strand either
// team with no consistent direction is never offered, so Mark's constraint
// update can only narrow to a non-empty set.
func (inv *Invasion) validMoves(teamID string) map[int]map[int]struct{} {
	if teamID == "" {
		return nil
	}
	permitted := inv.permitted(teamID)
	if len(permitted) == 0 {
		return nil
	}
	claimed := inv.invMarks()
	oid, hasOther := inv.otherTeam(teamID)

	d := make(map[int]map[int]struct{})
	for i := 0; i < inv.board.Width*inv.board.Height; i++ {
		if _, taken := claimed[i]; taken {
			continue
		}
		s := inv.survivors(teamID, permitted, i)
		if len(s) == 0 {
			continue
		}
		if hasOther && !opposableWithin(s, inv.startConstraints[oid]) {
			continue
		}
		d[i] = s
	}
	return d
}

func (inv *Invasion) updateConstraints(teamID string, constraints map[int]struct{}) {
	inv.startConstraints[teamID] = constraints

	oid, ok := inv.otherTeam(teamID)
	if !ok {
		return
	}
	flipped := make(map[int]struct{}, len(constraints))
	for c := range constraints {
		flipped[5-c] = struct{}{}
	}
	current := inv.startConstraints[oid]
	next := make(map[int]struct{})
	for c := range flipped {
		if _, in := current[c]; in {
			next[c] = struct{}{}
		}
	}
	inv.startConstraints[oid] = next
}

func (inv *Invasion) markRaw(index int, teamID string) {
	if inv.board.Marks[teamID] == nil {
		inv.board.Marks[teamID] = make(map[int]struct{})
	}
	inv.board.Marks[teamID][index] = struct{}{}
	inv.board.appendHistory(teamID, index, true)
}

func (inv *Invasion) Mark(index int, teamID string) bool {
	moves := inv.validMoves(teamID)
	c, ok := moves[index]
	if !ok {
		return false
	}
	inv.markRaw(index, teamID)
	inv.updateConstraints(teamID, c)
	return true
}

// replay re-applies indexes to teamID in whatever order validMoves accepts
// them, requiring every accepted move keep all of constraints alive. Ties
// are broken by ascending index so replay is reproducible. Used only by
// Unmark to check whether removing one mark still leaves a legal history.
func (inv *Invasion) replay(teamID string, indexes []int, constraints map[int]struct{}) bool {
	toMove := append([]int(nil), indexes...)
	sort.Ints(toMove)

	for len(toMove) > 0 {
		moves := inv.validMoves(teamID)
		found := -1
		var surviving map[int]struct{}
		for pos, i := range toMove {
			if s, ok := moves[i]; ok && isSuperset(s, constraints) {
				found, surviving = pos, s
				break
			}
		}
		if found < 0 {
			return false
		}
		i := toMove[found]
		toMove = append(toMove[:found], toMove[found+1:]...)
		inv.markRaw(i, teamID)
		inv.updateConstraints(teamID, surviving)
	}
	return true
}

func isSuperset(set, sub map[int]struct{}) bool {
	for k := range sub {
		if _, ok := set[k]; !ok {
			return false
		}
	}
	return true
}

// Unmark is Invasion.unmark: rather than trying to patch the rank/front
// invariant in place, it rebuilds a fresh board from the same generator and
// seed and replays every remaining mark (for both teams) through it. If the
// replay fails for either team, the unmark is rejected outright.
func (inv *Invasion) Unmark(index int, teamID string) bool {
	if !defaultCanUnmark(inv.board, index, teamID) {
		return false
	}

	fresh, err := NewInvasion(inv.board.generator, inv.board.Seed)
	if err != nil {
		return false
	}

	toPlay := make([]int, 0, len(inv.board.Marks[teamID]))
	for i := range inv.board.Marks[teamID] {
		if i != index {
			toPlay = append(toPlay, i)
		}
	}
	constraints := inv.startConstraints[teamID]
	if constraints == nil {
		constraints = allInvasionConstraints()
	}
	if !fresh.replay(teamID, toPlay, constraints) {
		return false
	}

	if oid, ok := inv.otherTeam(teamID); ok {
		oPlay := make([]int, 0, len(inv.board.Marks[oid]))
		for i := range inv.board.Marks[oid] {
			oPlay = append(oPlay, i)
		}
		oConstraints := inv.startConstraints[oid]
		if oConstraints == nil {
			oConstraints = allInvasionConstraints()
		}
		if !fresh.replay(oid, oPlay, oConstraints) {
			return false
		}
	}

	inv.board.Marks = fresh.board.Marks
	inv.startConstraints = fresh.startConstraints
	inv.board.appendHistory(teamID, index, false)
	return true
}

func (inv *Invasion) MinimumView() map[string]any   { return fullView(inv) }
func (inv *Invasion) SpectatorView() map[string]any { return fullView(inv) }
func (inv *Invasion) FullView() map[string]any      { return fullView(inv) }

// TeamView adds the invasionMoves extra: every index currently open to
// teamID, sorted for a stable wire representation.
func (inv *Invasion) TeamView(teamID string) map[string]any {
	view := fullView(inv)
	moves := inv.validMoves(teamID)
	keys := make([]int, 0, len(moves))
	for i := range moves {
		keys = append(keys, i)
	}
	sort.Ints(keys)
	view["extras"] = map[string]any{"invasionMoves": keys}
	return view
}
