package app

import "errors"

// Sentinel use-case failures: one error value per distinct failure mode,
// checked with errors.Is at the dispatcher boundary and translated to the
// wire error verbs there.
var (
	ErrRoomNotFound  = errors.New("app: room not found")
	ErrUnknownUser   = errors.New("app: unknown user")
	ErrUnknownTeam   = errors.New("app: unknown team")
	ErrNoTeam        = errors.New("app: user has no team")
	ErrMarkRejected  = errors.New("app: mark rejected by board")
	ErrUnmarkRejected = errors.New("app: unmark rejected by board")
	ErrUnknownGame   = errors.New("app: unknown game")
	ErrUnknownGenerator = errors.New("app: unknown generator")
)
