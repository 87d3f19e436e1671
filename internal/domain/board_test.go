package domain

import (
	"fmt"
	"testing"
)

// sizedCatalog builds a catalog with n plain goals, enough to fill any
// board size under test without hitting exhaustion.
func sizedCatalog(n int) *Catalog {
	goals := make(map[string]*Goal, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("c%d", i)
		goals[id] = &Goal{ID: id, Name: id, Weight: 1}
	}
	return &Catalog{Game: "testgame", Goals: goals}
}

func newTestGenerator(n int) Generator {
	return NewUniformGenerator("uniform", sizedCatalog(n))
}

func TestNonLockoutDualClaim(t *testing.T) {
	board, err := NewNonLockout(newTestGenerator(25), "seed")
	if err != nil {
		t.Fatalf("NewNonLockout: %v", err)
	}
	if !board.Mark(7, "A") {
		t.Fatalf("team A mark 7 should succeed")
	}
	if !board.Mark(7, "B") {
		t.Fatalf("team B mark 7 should also succeed on Non-Lockout")
	}
	if _, ok := board.board.Marks["A"][7]; !ok {
		t.Fatalf("A should hold 7")
	}
	if _, ok := board.board.Marks["B"][7]; !ok {
		t.Fatalf("B should hold 7")
	}
}

func TestMarkIdempotence(t *testing.T) {
	board, err := NewNonLockout(newTestGenerator(25), "seed")
	if err != nil {
		t.Fatalf("NewNonLockout: %v", err)
	}
	if !board.Mark(3, "A") {
		t.Fatalf("first mark should succeed")
	}
	if board.Mark(3, "A") {
		t.Fatalf("second mark of the same cell by the same team should fail")
	}
}

func TestLockoutContention(t *testing.T) {
	board, err := NewLockout(newTestGenerator(25), "seed")
	if err != nil {
		t.Fatalf("NewLockout: %v", err)
	}
	if !board.Mark(7, "A") {
		t.Fatalf("team A mark 7 should succeed")
	}
	if board.Mark(7, "B") {
		t.Fatalf("team B mark 7 should fail once A holds it")
	}
	if len(board.board.Marks["A"]) != 1 {
		t.Fatalf("A should hold exactly one mark")
	}
	if _, ok := board.board.Marks["B"]; ok {
		t.Fatalf("B should hold no marks")
	}
}

func TestLockoutExclusivityUnderRandomOps(t *testing.T) {
	board, err := NewLockout(newTestGenerator(25), "seed")
	if err != nil {
		t.Fatalf("NewLockout: %v", err)
	}
	ops := []struct {
		team  string
		index int
	}{
		{"A", 0}, {"B", 0}, {"A", 1}, {"B", 1}, {"A", 2}, {"C", 2}, {"B", 3},
	}
	for _, op := range ops {
		board.Mark(op.index, op.team)
	}
	seen := make(map[int]string)
	for team, marks := range board.board.Marks {
		for idx := range marks {
			if owner, ok := seen[idx]; ok {
				t.Fatalf("cell %d held by both %s and %s", idx, owner, team)
			}
			seen[idx] = team
		}
	}
}

func TestHistoryReplayReproducesMarks(t *testing.T) {
	gen := newTestGenerator(25)
	board, err := NewLockout(gen, "replay-seed")
	if err != nil {
		t.Fatalf("NewLockout: %v", err)
	}
	board.Mark(0, "A")
	board.Mark(1, "B")
	board.Mark(0, "B") // rejected, must not appear in history
	board.Unmark(1, "B")
	board.Mark(1, "A")

	fresh, err := NewLockout(gen, "replay-seed")
	if err != nil {
		t.Fatalf("NewLockout (fresh): %v", err)
	}
	for _, ev := range board.Board().History {
		if ev.Marked {
			fresh.Mark(ev.Index, ev.Team)
		} else {
			fresh.Unmark(ev.Index, ev.Team)
		}
	}

	if len(fresh.board.Marks) != len(board.board.Marks) {
		t.Fatalf("replayed team count = %d, want %d", len(fresh.board.Marks), len(board.board.Marks))
	}
	for team, marks := range board.board.Marks {
		for idx := range marks {
			if _, ok := fresh.board.Marks[team][idx]; !ok {
				t.Fatalf("replay missing mark %d for team %s", idx, team)
			}
		}
	}
}

func TestInvasionFirstMoves(t *testing.T) {
	board, err := NewInvasion(newTestGenerator(25), "seed")
	if err != nil {
		t.Fatalf("NewInvasion: %v", err)
	}

	if !board.Mark(0, "A") {
		t.Fatalf("A marking corner 0 should succeed")
	}
	if set := board.startConstraints["A"]; !setEquals(set, InvasionTop, InvasionLeft) {
		t.Fatalf("A constraints after corner move = %v, want {TOP, LEFT}", set)
	}

	if !board.Mark(24, "B") {
		t.Fatalf("B marking corner 24 should succeed")
	}
	if set := board.startConstraints["B"]; !setEquals(set, InvasionBottom, InvasionRight) {
		t.Fatalf("B constraints after corner move = %v, want {BOTTOM, RIGHT}", set)
	}

	if !board.Mark(1, "A") {
		t.Fatalf("A marking cell 1 should succeed")
	}
	if set := board.startConstraints["A"]; !setEquals(set, InvasionTop) {
		t.Fatalf("A constraints after second move = %v, want {TOP}", set)
	}
	if set := board.startConstraints["B"]; !setEquals(set, InvasionBottom) {
		t.Fatalf("B constraints after A's second move = %v, want {BOTTOM}", set)
	}
}

func TestInvasionInteriorRejected(t *testing.T) {
	board, err := NewInvasion(newTestGenerator(25), "seed")
	if err != nil {
		t.Fatalf("NewInvasion: %v", err)
	}
	if board.Mark(12, "A") {
		t.Fatalf("marking the center cell first should be rejected")
	}
}

func TestInvasionThirdTeamRejected(t *testing.T) {
	board, err := NewInvasion(newTestGenerator(25), "seed")
	if err != nil {
		t.Fatalf("NewInvasion: %v", err)
	}
	board.Mark(0, "A")
	board.Mark(24, "B")
	if board.Mark(4, "C") {
		t.Fatalf("a third team should never be able to mark an Invasion board")
	}
}

func TestInvasionUnmarkAtomicity(t *testing.T) {
	board, err := NewInvasion(newTestGenerator(25), "seed")
	if err != nil {
		t.Fatalf("NewInvasion: %v", err)
	}
	board.Mark(0, "A")
	board.Mark(24, "B")
	board.Mark(1, "A")

	before := snapshotMarks(board.board)
	if !board.Unmark(1, "A") {
		t.Fatalf("unmarking A's second move should succeed")
	}
	if _, ok := board.board.Marks["A"][1]; ok {
		t.Fatalf("cell 1 should no longer be marked by A")
	}
	if set := board.startConstraints["A"]; !setEquals(set, InvasionTop, InvasionLeft) {
		t.Fatalf("A constraints after undoing second move = %v, want {TOP, LEFT}", set)
	}

	// A rejected unmark (here: a cell A never marked) must leave the board
	// untouched.
	board2, err := NewInvasion(newTestGenerator(25), "seed")
	if err != nil {
		t.Fatalf("NewInvasion: %v", err)
	}
	board2.Mark(0, "A")
	snap := snapshotMarks(board2.board)
	if board2.Unmark(99, "A") {
		t.Fatalf("unmarking a cell nobody marked should fail")
	}
	if !marksEqual(snap, snapshotMarks(board2.board)) {
		t.Fatalf("failed unmark must not mutate board state")
	}
	_ = before
}

func TestInvasionFrontAdvance(t *testing.T) {
	board, err := NewInvasion(newTestGenerator(25), "seed")
	if err != nil {
		t.Fatalf("NewInvasion: %v", err)
	}
	board.Mark(0, "A")
	board.Mark(1, "A") // A is now committed to TOP with row-0 fill 2

	if !board.Mark(5, "A") {
		t.Fatalf("advancing into row 1 behind a wider row 0 should succeed")
	}
	if set := board.startConstraints["A"]; !setEquals(set, InvasionTop) {
		t.Fatalf("A constraints after advancing = %v, want {TOP}", set)
	}
	if board.Mark(6, "A") {
		t.Fatalf("a mark that ties row 1 with row 0 breaks the front and must be rejected")
	}
}

func TestMarkOutOfBoundsRejected(t *testing.T) {
	board, err := NewNonLockout(newTestGenerator(25), "seed")
	if err != nil {
		t.Fatalf("NewNonLockout: %v", err)
	}
	if board.Mark(25, "A") {
		t.Fatalf("marking past the last cell should fail")
	}
	if board.Mark(-1, "A") {
		t.Fatalf("marking a negative index should fail")
	}
	if len(board.board.Marks) != 0 {
		t.Fatalf("rejected marks must not be recorded, got %v", board.board.Marks)
	}
}

func TestExplorationMarkIdempotence(t *testing.T) {
	board, err := NewExploration13(newTestGenerator(169), "seed")
	if err != nil {
		t.Fatalf("NewExploration13: %v", err)
	}
	if !board.Mark(84, "A") {
		t.Fatalf("first mark of the center should succeed")
	}
	if board.Mark(84, "A") {
		t.Fatalf("re-marking an already-held cell should fail")
	}
	if len(board.Board().History) != 1 {
		t.Fatalf("rejected re-mark must not append history, got %d events", len(board.Board().History))
	}
}

func TestExplorationCenterReveal(t *testing.T) {
	board, err := NewExploration13(newTestGenerator(169), "seed")
	if err != nil {
		t.Fatalf("NewExploration13: %v", err)
	}
	if !board.Mark(84, "A") {
		t.Fatalf("marking the only visible cell should succeed")
	}
	seen := board.eb.getSeen("A")
	for _, want := range []int{84, 71, 83, 85, 97} {
		if _, ok := seen[want]; !ok {
			t.Fatalf("seen set missing %d after marking 84", want)
		}
	}
	if board.Mark(72, "A") {
		t.Fatalf("72 is not yet adjacent to any of A's marks and should be rejected")
	}
}

func TestExplorationViewNonLeakage(t *testing.T) {
	board, err := NewExploration13(newTestGenerator(169), "seed")
	if err != nil {
		t.Fatalf("NewExploration13: %v", err)
	}
	board.Mark(84, "A")
	board.Mark(84, "B") // same cell, independently visible to each team

	view := board.TeamView("A")
	marks, ok := view["marks"].(map[string][]int)
	if !ok {
		t.Fatalf("team view marks has unexpected shape")
	}
	if _, ok := marks["B"]; ok {
		t.Fatalf("team A's view must not include team B's marks")
	}
	if _, ok := marks["A"]; !ok {
		t.Fatalf("team A's view must include its own marks")
	}

	seen := board.eb.getSeen("A")
	goals, ok := view["goals"].(map[int]any)
	if !ok {
		t.Fatalf("team view goals has unexpected shape")
	}
	for idx := range goals {
		if _, ok := seen[idx]; !ok {
			t.Fatalf("team view leaked goal %d outside A's seen set", idx)
		}
	}
}

func TestGTTOSColMarks(t *testing.T) {
	board, err := NewGTTOS13(newTestGenerator(169), "seed")
	if err != nil {
		t.Fatalf("NewGTTOS13: %v", err)
	}
	if !board.Mark(0, "A") {
		t.Fatalf("A marking base cell 0 should succeed")
	}
	if !board.Mark(1, "A") {
		t.Fatalf("A marking adjacent cell 1 should succeed")
	}
	if !board.Mark(26, "B") {
		t.Fatalf("B marking base cell 26 should succeed")
	}

	view := board.TeamView("A")
	extras, ok := view["extras"].(map[string]any)
	if !ok {
		t.Fatalf("extras has unexpected shape")
	}
	colMarks, ok := extras["colMarks"].(map[string]int)
	if !ok {
		t.Fatalf("colMarks has unexpected shape")
	}
	if colMarks["A"] != 1 {
		t.Fatalf("colMarks[A] = %d, want 1", colMarks["A"])
	}
	if colMarks["B"] != 0 {
		t.Fatalf("colMarks[B] = %d, want 0", colMarks["B"])
	}
}

func setEquals(set map[int]struct{}, values ...int) bool {
	if len(set) != len(values) {
		return false
	}
	for _, v := range values {
		if _, ok := set[v]; !ok {
			return false
		}
	}
	return true
}

func snapshotMarks(b *Board) map[string]map[int]struct{} {
	out := make(map[string]map[int]struct{}, len(b.Marks))
	for team, marks := range b.Marks {
		cp := make(map[int]struct{}, len(marks))
		for idx := range marks {
			cp[idx] = struct{}{}
		}
		out[team] = cp
	}
	return out
}

func marksEqual(a, b map[string]map[int]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for team, marks := range a {
		other, ok := b[team]
		if !ok || len(other) != len(marks) {
			return false
		}
		for idx := range marks {
			if _, ok := other[idx]; !ok {
				return false
			}
		}
	}
	return true
}
