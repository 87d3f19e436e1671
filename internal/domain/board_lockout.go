package domain

// NonLockout is the plain 5x5 board: no hidden state, unlimited marks per
// square, every view is the full view.
type NonLockout struct {
	board *Board
}

// NewNonLockout builds a 5x5 Non-Lockout board.
func NewNonLockout(generator Generator, seed string) (*NonLockout, error) {
	b, err := newBoard(5, 5, generator, seed)
	if err != nil {
		return nil, err
	}
	return &NonLockout{board: b}, nil
}

func (v *NonLockout) Name() string  { return "Non-Lockout" }
func (v *NonLockout) Board() *Board { return v.board }

func (v *NonLockout) MaxMarksPerSquare() int { return 0 }

func (v *NonLockout) CanMark(index int, teamID string) bool {
	return defaultCanMark(v.board, index, teamID)
}

func (v *NonLockout) Mark(index int, teamID string) bool {
	return defaultMark(v.board, v.CanMark, index, teamID)
}

func (v *NonLockout) CanUnmark(index int, teamID string) bool {
	return defaultCanUnmark(v.board, index, teamID)
}

func (v *NonLockout) Unmark(index int, teamID string) bool {
	return defaultUnmark(v.board, v.CanUnmark, index, teamID)
}

func (v *NonLockout) MinimumView() map[string]any  { return fullView(v) }
func (v *NonLockout) TeamView(string) map[string]any { return fullView(v) }
func (v *NonLockout) SpectatorView() map[string]any { return fullView(v) }
func (v *NonLockout) FullView() map[string]any      { return fullView(v) }

// Lockout is a 5x5 board where a square, once marked by any team, is
// unavailable to every other team: at most one mark per cell, board-wide.
type Lockout struct {
	board *Board
}

// NewLockout builds a 5x5 Lockout board.
func NewLockout(generator Generator, seed string) (*Lockout, error) {
	b, err := newBoard(5, 5, generator, seed)
	if err != nil {
		return nil, err
	}
	return &Lockout{board: b}, nil
}

func (v *Lockout) Name() string  { return "Lockout" }
func (v *Lockout) Board() *Board { return v.board }

func (v *Lockout) MaxMarksPerSquare() int { return 1 }

// CanMark matches Lockout.can_mark: unlike the default, it does not care
// which team is asking, only whether any team has already claimed index.
func (v *Lockout) CanMark(index int, teamID string) bool {
	if teamID == "" || index < 0 || index >= len(v.board.Goals) {
		return false
	}
	for _, marks := range v.board.Marks {
		if _, ok := marks[index]; ok {
			return false
		}
	}
	return true
}

func (v *Lockout) Mark(index int, teamID string) bool {
	return defaultMark(v.board, v.CanMark, index, teamID)
}

func (v *Lockout) CanUnmark(index int, teamID string) bool {
	return defaultCanUnmark(v.board, index, teamID)
}

func (v *Lockout) Unmark(index int, teamID string) bool {
	return defaultUnmark(v.board, v.CanUnmark, index, teamID)
}

func (v *Lockout) MinimumView() map[string]any       { return fullView(v) }
func (v *Lockout) TeamView(string) map[string]any    { return fullView(v) }
func (v *Lockout) SpectatorView() map[string]any     { return fullView(v) }
func (v *Lockout) FullView() map[string]any          { return fullView(v) }
