package app

// EventKind tags an Event's payload shape.
type EventKind string

const (
	// EventBoardUpdate carries a board view. Players, level-1, and level-2
	// spectators each see a different shape, so its Payload is built
	// per-recipient rather than broadcast verbatim — see
	// Room.AlertBoardChanges.
	EventBoardUpdate EventKind = "BOARD_UPDATE"
	// EventRosterUpdate carries the user and team roster, identical for
	// every recipient.
	EventRosterUpdate EventKind = "ROSTER_UPDATE"
)

// Event is one outbound message a Room produced as a side effect of a
// mutation. Recipients is a list of user ids; an empty Recipients means
// "every user with a live transport in the room." Payload is already a
// JSON-shaped map, ready for a Transport.Send call.
type Event struct {
	Kind       EventKind
	Payload    map[string]any
	Recipients []string
}
