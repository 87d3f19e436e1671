package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"bingosink/internal/domain"
)

// SpectatorsTeamID is the synthetic team every level-1+ spectator is parked
// in, so team-membership checks gate marking for spectators the same way
// they do for players.
const SpectatorsTeamID = "spectators"

// User is a room member. Transport is nil while disconnected; the record
// itself is retained so REJOIN can reattach it.
type User struct {
	ID        string
	Name      string
	Transport Transport
	TeamID    string // "" = no team, SpectatorsTeamID = spectating
	Spectate  int    // 0 player, 1 union-of-revealed spectator, 2 full spectator
}

// Team keeps an ordered member list so rosters render in join order.
type Team struct {
	ID      string
	Name    string
	Colour  string
	Members []string // user ids, join order
}

// Room is the aggregate root: users, teams, and the one Board they play on.
// The Board is replaced atomically when regenerated, and every mutation is
// followed by a broadcast.
type Room struct {
	// mu serializes every mutation and view of this room's users, teams,
	// and board across connections. The dispatcher holds it for the
	// duration of one message's handling, broadcasts included;
	// Transport.Send is required to be non-blocking, so a slow client
	// cannot stall the room from inside the lock.
	mu sync.Mutex

	ID            string
	Name          string
	Game          string
	GeneratorName string
	BoardName     string
	Seed          string
	Created       time.Time
	Touched       time.Time

	Users map[string]*User
	Teams map[string]*Team
	Board domain.Variant
}

// NewRoom builds a Room around an already-constructed Board (the OPEN
// handler is responsible for resolving game/generator/board names to a
// domain.Variant before calling this).
func NewRoom(name, game, generatorName, boardName, seed string, board domain.Variant) *Room {
	now := time.Now()
	return &Room{
		ID:            uuid.New().String(),
		Name:          name,
		Game:          game,
		GeneratorName: generatorName,
		BoardName:     boardName,
		Seed:          seed,
		Created:       now,
		Touched:       now,
		Users:         make(map[string]*User),
		Teams:         make(map[string]*Team),
		Board:         board,
	}
}

// Touch refreshes Touched; every mutating verb calls it.
func (r *Room) Touch() { r.Touched = time.Now() }

// AddUser always succeeds and always issues a fresh opaque id.
func (r *Room) AddUser(name string, transport Transport) *User {
	u := &User{ID: uuid.New().String(), Name: name, Transport: transport}
	r.Users[u.ID] = u
	return u
}

// Rejoin reattaches a transport to an existing user record.
func (r *Room) Rejoin(userID string, transport Transport) (*User, bool) {
	u, ok := r.Users[userID]
	if !ok {
		return nil, false
	}
	u.Transport = transport
	return u, true
}

// Disconnect clears a user's transport without removing the user record,
// so a later REJOIN can find it.
func (r *Room) Disconnect(userID string) {
	if u, ok := r.Users[userID]; ok {
		u.Transport = nil
	}
}

// RemoveUser backs EXIT, the only path that removes a user; disconnects
// merely detach.
func (r *Room) RemoveUser(userID string) bool {
	u, ok := r.Users[userID]
	if !ok {
		return false
	}
	if u.TeamID != "" && u.TeamID != SpectatorsTeamID {
		r.removeFromTeam(u)
	}
	delete(r.Users, userID)
	return true
}

func (r *Room) removeFromTeam(u *User) {
	if team, ok := r.Teams[u.TeamID]; ok {
		team.Members = removeString(team.Members, u.ID)
	}
	u.TeamID = ""
}

func removeString(xs []string, target string) []string {
	out := xs[:0]
	for _, x := range xs {
		if x != target {
			out = append(out, x)
		}
	}
	return out
}

// CreateTeam adds a fresh team to the room.
func (r *Room) CreateTeam(name, colour string) *Team {
	t := &Team{ID: uuid.New().String(), Name: name, Colour: colour}
	r.Teams[t.ID] = t
	return t
}

// JoinTeam moves the user out of any current team first and clears their
// spectate status.
func (r *Room) JoinTeam(userID, teamID string) (*User, *Team, error) {
	u, ok := r.Users[userID]
	if !ok {
		return nil, nil, ErrUnknownUser
	}
	team, ok := r.Teams[teamID]
	if !ok {
		return nil, nil, ErrUnknownTeam
	}
	if u.TeamID != "" {
		r.removeFromTeam(u)
	}
	team.Members = append(team.Members, u.ID)
	u.TeamID = team.ID
	u.Spectate = 0
	return u, team, nil
}

// LeaveTeam removes the user from its current team; an emptied team is
// kept.
func (r *Room) LeaveTeam(userID string) error {
	u, ok := r.Users[userID]
	if !ok {
		return ErrUnknownUser
	}
	if u.TeamID == "" {
		return ErrNoTeam
	}
	r.removeFromTeam(u)
	return nil
}

// Spectate cycles a user's spectate level: 0 (player) -> 1 (union-of-
// revealed spectator, joins the synthetic spectators team) -> 2 (full
// spectator), saturating at 2.
func (r *Room) Spectate(userID string) (*User, error) {
	u, ok := r.Users[userID]
	if !ok {
		return nil, ErrUnknownUser
	}
	switch u.Spectate {
	case 0:
		if u.TeamID != "" {
			r.removeFromTeam(u)
		}
		u.TeamID = SpectatorsTeamID
		u.Spectate = 1
	case 1:
		u.Spectate = 2
	}
	return u, nil
}

// Mark is the Room-level MARK handler: resolves the acting team and
// delegates legality entirely to the board.
func (r *Room) Mark(userID string, index int) error {
	u, ok := r.Users[userID]
	if !ok {
		return ErrUnknownUser
	}
	if u.TeamID == "" || u.TeamID == SpectatorsTeamID {
		return ErrNoTeam
	}
	if !r.Board.Mark(index, u.TeamID) {
		return ErrMarkRejected
	}
	return nil
}

// Unmark is the Room-level UNMARK handler.
func (r *Room) Unmark(userID string, index int) error {
	u, ok := r.Users[userID]
	if !ok {
		return ErrUnknownUser
	}
	if u.TeamID == "" || u.TeamID == SpectatorsTeamID {
		return ErrNoTeam
	}
	if !r.Board.Unmark(index, u.TeamID) {
		return ErrUnmarkRejected
	}
	return nil
}

func (r *Room) teamColours() map[string]string {
	out := make(map[string]string, len(r.Teams))
	for id, t := range r.Teams {
		out[id] = t.Colour
	}
	return out
}

// AlertBoardChanges builds one board update per connected user, shaped by
// that user's spectate level.
func (r *Room) AlertBoardChanges() []Event {
	colours := r.teamColours()
	var events []Event
	for _, u := range r.Users {
		if u.Transport == nil {
			continue
		}
		var view map[string]any
		switch u.Spectate {
		case 2:
			view = r.Board.FullView()
		case 1:
			view = r.Board.SpectatorView()
		default:
			view = r.Board.TeamView(u.TeamID)
		}
		events = append(events, Event{
			Kind:       EventBoardUpdate,
			Payload:    map[string]any{"verb": "BOARD_UPDATE", "board": view, "teamColours": colours},
			Recipients: []string{u.ID},
		})
	}
	return events
}

// AlertPlayerChanges builds one roster broadcast for every connected user,
// identical payload for all.
func (r *Room) AlertPlayerChanges() []Event {
	recipients := make([]string, 0, len(r.Users))
	for _, u := range r.Users {
		if u.Transport != nil {
			recipients = append(recipients, u.ID)
		}
	}
	payload := map[string]any{
		"verb":  "ROSTER_UPDATE",
		"users": r.userRoster(),
		"teams": r.teamRoster(),
	}
	return []Event{{Kind: EventRosterUpdate, Payload: payload, Recipients: recipients}}
}

func (r *Room) userRoster() map[string]any {
	out := make(map[string]any, len(r.Users))
	for id, u := range r.Users {
		out[id] = map[string]any{
			"name":      u.Name,
			"teamId":    u.TeamID,
			"connected": u.Transport != nil,
			"spectate":  u.Spectate,
		}
	}
	return out
}

// Deliver sends every Event's payload to each recipient currently attached
// to a live transport; an Event with no Recipients goes to every user in
// the room. Unreachable recipients (disconnected, or not a member of this
// room) are silently skipped.
func (r *Room) Deliver(events []Event) {
	for _, ev := range events {
		recipients := ev.Recipients
		if len(recipients) == 0 {
			recipients = make([]string, 0, len(r.Users))
			for uid := range r.Users {
				recipients = append(recipients, uid)
			}
		}
		for _, uid := range recipients {
			u, ok := r.Users[uid]
			if !ok || u.Transport == nil {
				continue
			}
			// A failed send detaches the transport, same as a read-side
			// disconnect. The roster rebroadcast that normally follows a
			// detach is left to the next mutation rather than triggered
			// recursively from here.
			if err := u.Transport.Send(ev.Payload); err != nil {
				u.Transport = nil
			}
		}
	}
}

func (r *Room) teamRoster() map[string]any {
	out := make(map[string]any, len(r.Teams))
	for id, t := range r.Teams {
		out[id] = map[string]any{
			"name":    t.Name,
			"colour":  t.Colour,
			"members": append([]string(nil), t.Members...),
		}
	}
	return out
}
