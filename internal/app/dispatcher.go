package app

import (
	"errors"
	"fmt"

	"bingosink/internal/config"
	"bingosink/internal/domain"
)

// Session is the per-connection attachment state a transport adapter holds
// across messages: which room and which user this connection is currently
// speaking for.
type Session struct {
	RoomID string
	UserID string
}

// Dispatcher is the stateless verb router: one handler per verb, every
// failure folded into a wire-shaped reply, unknown verbs logged and
// dropped.
type Dispatcher struct {
	registry *Registry
	games    *config.Games
}

// NewDispatcher builds a Dispatcher over a shared Registry and catalog set.
func NewDispatcher(registry *Registry, games *config.Games) *Dispatcher {
	return &Dispatcher{registry: registry, games: games}
}

// Dispatch handles one inbound message for session/transport, mutating
// session in place as rooms/users are attached (OPEN/JOIN/REJOIN) and
// returning the direct reply to send back to the caller. Any broadcast
// side effects (alert_board_changes / alert_player_changes) are delivered
// to other connections internally via Room.Deliver before Dispatch returns.
//
// Dispatch never returns a Go error: every failure mode is already folded
// into the wire-shaped ERROR/NOTFOUND/NOAUTH/NOTEAM/NOMARK reply, so one
// bad message can never propagate past this call.
func (d *Dispatcher) Dispatch(session *Session, transport Transport, msg map[string]any) map[string]any {
	verb, ok := getString(msg, "verb")
	if !ok {
		return missingField("verb")
	}
	switch verb {
	case "LIST":
		return d.handleList()
	case "GET_GAMES":
		return d.handleGetGames()
	case "GET_GENERATORS":
		return d.handleGetGenerators(msg)
	case "GET_BOARDS":
		return d.handleGetBoards()
	case "OPEN":
		return d.handleOpen(session, transport, msg)
	case "JOIN":
		return d.handleJoin(session, transport, msg)
	case "REJOIN":
		return d.handleRejoin(session, transport, msg)
	case "EXIT":
		return d.handleExit(session, msg)
	case "CREATE_TEAM":
		return d.handleCreateTeam(session, msg)
	case "JOIN_TEAM":
		return d.handleJoinTeam(session, msg)
	case "LEAVE_TEAM":
		return d.handleLeaveTeam(session)
	case "MARK":
		return d.handleMark(session, msg)
	case "UNMARK":
		return d.handleUnmark(session, msg)
	case "SPECTATE":
		return d.handleSpectate(session)
	case "TIMELAPSE":
		return d.handleTimelapse(session)
	default:
		// Unknown verbs are logged by the caller (the transport adapter
		// owns the logger) and dropped.
		return nil
	}
}

// DisconnectSession detaches the session's user from its room, if any, and
// broadcasts the roster change. Transport adapters call this when a
// connection closes, clean or not; the User record stays behind for
// REJOIN.
func (d *Dispatcher) DisconnectSession(session *Session) {
	if session.RoomID == "" {
		return
	}
	room, ok := d.registry.Get(session.RoomID)
	if !ok {
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	room.Disconnect(session.UserID)
	room.Deliver(room.AlertPlayerChanges())
}

func getString(msg map[string]any, key string) (string, bool) {
	v, ok := msg[key].(string)
	return v, ok && v != ""
}

// getInt reads a JSON-number field. encoding/json decodes numbers into
// map[string]any as float64; goalId cell indices always arrive this way
// over the wire.
func getInt(msg map[string]any, key string) (int, bool) {
	switch v := msg[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

// errorReply builds a bare error-verb reply: NOTFOUND/NOAUTH/NOTEAM/NOMARK
// are themselves the wire verb, not a message nested under a generic ERROR
// envelope.
func errorReply(verb string) map[string]any {
	return map[string]any{"verb": verb}
}

// errorMessage is the genuine catch-all ERROR verb, carrying a
// human-readable message for failures the four-verb taxonomy doesn't name
// (malformed messages, an unrecognized board type name).
func errorMessage(message string) map[string]any {
	return map[string]any{"verb": "ERROR", "message": message}
}

func missingField(field string) map[string]any {
	return errorMessage(fmt.Sprintf("missing field %q", field))
}

// appErrorVerb maps a Room/dispatch-layer sentinel error to its wire error
// verb.
func appErrorVerb(err error) string {
	switch {
	case errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrUnknownTeam),
		errors.Is(err, ErrUnknownGame), errors.Is(err, ErrUnknownGenerator):
		return "NOTFOUND"
	case errors.Is(err, ErrUnknownUser):
		return "NOAUTH"
	case errors.Is(err, ErrNoTeam):
		return "NOTEAM"
	case errors.Is(err, ErrMarkRejected), errors.Is(err, ErrUnmarkRejected):
		return "NOMARK"
	default:
		return "ERROR"
	}
}

// errVerbReply is the shorthand every handler below uses to turn a
// Room/dispatch-layer error into its wire reply: one of the four taxonomy
// verbs bare, or a generic ERROR carrying the error text when it falls
// outside that taxonomy.
func errVerbReply(err error) map[string]any {
	if verb := appErrorVerb(err); verb != "ERROR" {
		return errorReply(verb)
	}
	return errorMessage(err.Error())
}

func (d *Dispatcher) handleList() map[string]any {
	rooms := d.registry.List()
	list := make(map[string]any, len(rooms))
	for _, r := range rooms {
		r.mu.Lock()
		if len(r.Users) > 0 {
			list[r.ID] = map[string]any{
				"name":    r.Name,
				"game":    r.Game,
				"board":   r.BoardName,
				"variant": r.GeneratorName,
				"count":   len(r.Users),
			}
		}
		r.mu.Unlock()
	}
	return map[string]any{"verb": "LISTED", "list": list}
}

func (d *Dispatcher) handleGetGames() map[string]any {
	return map[string]any{"verb": "GAMES", "games": d.games.GameNames()}
}

func (d *Dispatcher) handleGetGenerators(msg map[string]any) map[string]any {
	game, ok := getString(msg, "game")
	if !ok {
		return missingField("game")
	}
	if !d.games.Game(game) {
		return errorReply("NOTFOUND")
	}
	gens := d.games.Generators(game)
	list := make([]map[string]any, 0, len(gens))
	for _, gen := range gens {
		list = append(list, map[string]any{"name": gen.Name(), "small": gen.Small()})
	}
	return map[string]any{"verb": "GENERATORS", "game": game, "generators": list}
}

func (d *Dispatcher) handleGetBoards() map[string]any {
	return map[string]any{"verb": "BOARDS", "boards": domain.BoardNames()}
}

func (d *Dispatcher) handleOpen(session *Session, transport Transport, msg map[string]any) map[string]any {
	for _, field := range []string{"username", "roomName", "game", "generator", "board", "seed"} {
		if _, ok := getString(msg, field); !ok {
			return missingField(field)
		}
	}
	username, _ := getString(msg, "username")
	roomName, _ := getString(msg, "roomName")
	game, _ := getString(msg, "game")
	generatorName, _ := getString(msg, "generator")
	boardName, _ := getString(msg, "board")
	seed, _ := getString(msg, "seed")

	gen, ok := d.games.Generator(game, generatorName)
	if !ok {
		return errorReply("NOTFOUND")
	}
	board, err := domain.CreateBoard(boardName, gen, seed)
	if err != nil {
		return errorMessage(err.Error())
	}

	room := NewRoom(roomName, game, generatorName, boardName, seed, board)
	user := room.AddUser(username, transport)
	d.registry.Put(room)

	session.RoomID = room.ID
	session.UserID = user.ID

	return map[string]any{"verb": "OPENED", "roomId": room.ID, "userId": user.ID}
}

func (d *Dispatcher) handleJoin(session *Session, transport Transport, msg map[string]any) map[string]any {
	roomID, ok := getString(msg, "roomId")
	if !ok {
		return missingField("roomId")
	}
	username, ok := getString(msg, "username")
	if !ok {
		return missingField("username")
	}
	room, ok := d.registry.Get(roomID)
	if !ok {
		return errorReply("NOTFOUND")
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	user := room.AddUser(username, transport)
	room.Touch()
	session.RoomID = room.ID
	session.UserID = user.ID

	room.Deliver(room.AlertPlayerChanges())
	return map[string]any{
		"verb":        "JOINED",
		"userId":      user.ID,
		"roomName":    room.Name,
		"boardMin":    room.Board.MinimumView(),
		"teamColours": room.teamColours(),
	}
}

func (d *Dispatcher) handleRejoin(session *Session, transport Transport, msg map[string]any) map[string]any {
	roomID, ok := getString(msg, "roomId")
	if !ok {
		return missingField("roomId")
	}
	userID, ok := getString(msg, "userId")
	if !ok {
		return missingField("userId")
	}
	room, ok := d.registry.Get(roomID)
	if !ok {
		return errorReply("NOTFOUND")
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	user, ok := room.Rejoin(userID, transport)
	if !ok {
		return errorReply("NOAUTH")
	}
	room.Touch()
	session.RoomID = room.ID
	session.UserID = user.ID

	room.Deliver(room.AlertPlayerChanges())
	return map[string]any{
		"verb":        "REJOINED",
		"roomName":    room.Name,
		"boardMin":    room.Board.TeamView(user.TeamID),
		"teamColours": room.teamColours(),
	}
}

func (d *Dispatcher) lookupSession(session *Session) (*Room, error) {
	if session.RoomID == "" {
		return nil, ErrRoomNotFound
	}
	room, ok := d.registry.Get(session.RoomID)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

func (d *Dispatcher) handleExit(session *Session, msg map[string]any) map[string]any {
	roomID, ok := getString(msg, "roomId")
	if !ok {
		return missingField("roomId")
	}
	userID, ok := getString(msg, "userId")
	if !ok {
		return missingField("userId")
	}
	room, ok := d.registry.Get(roomID)
	if !ok {
		return errorReply("NOTFOUND")
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if !room.RemoveUser(userID) {
		return errorReply("NOAUTH")
	}
	room.Touch()
	if session.RoomID == roomID && session.UserID == userID {
		session.RoomID, session.UserID = "", ""
	}
	room.Deliver(room.AlertPlayerChanges())
	return nil
}

func (d *Dispatcher) handleCreateTeam(session *Session, msg map[string]any) map[string]any {
	room, err := d.lookupSession(session)
	if err != nil {
		return errVerbReply(err)
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	name, ok := getString(msg, "name")
	if !ok {
		return missingField("name")
	}
	colour, ok := getString(msg, "colour")
	if !ok {
		return missingField("colour")
	}

	team := room.CreateTeam(name, colour)
	user, _, joinErr := room.JoinTeam(session.UserID, team.ID)
	if joinErr != nil {
		return errVerbReply(joinErr)
	}
	room.Touch()
	room.Deliver(room.AlertPlayerChanges())
	return map[string]any{
		"verb":        "TEAM_CREATED",
		"teamId":      team.ID,
		"board":       room.Board.TeamView(user.TeamID),
		"teamColours": room.teamColours(),
	}
}

func (d *Dispatcher) handleJoinTeam(session *Session, msg map[string]any) map[string]any {
	room, err := d.lookupSession(session)
	if err != nil {
		return errVerbReply(err)
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	teamID, ok := getString(msg, "teamId")
	if !ok {
		return missingField("teamId")
	}
	user, _, err := room.JoinTeam(session.UserID, teamID)
	if err != nil {
		return errVerbReply(err)
	}
	room.Touch()
	room.Deliver(room.AlertPlayerChanges())
	return map[string]any{
		"verb":        "TEAM_JOINED",
		"board":       room.Board.TeamView(user.TeamID),
		"teamColours": room.teamColours(),
	}
}

func (d *Dispatcher) handleLeaveTeam(session *Session) map[string]any {
	room, err := d.lookupSession(session)
	if err != nil {
		return errVerbReply(err)
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if err := room.LeaveTeam(session.UserID); err != nil {
		return errVerbReply(err)
	}
	room.Touch()
	room.Deliver(room.AlertPlayerChanges())
	return map[string]any{"verb": "TEAM_LEFT"}
}

func (d *Dispatcher) handleMark(session *Session, msg map[string]any) map[string]any {
	room, err := d.lookupSession(session)
	if err != nil {
		return errVerbReply(err)
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	goalID, ok := getInt(msg, "goalId")
	if !ok {
		return missingField("goalId")
	}
	if err := room.Mark(session.UserID, goalID); err != nil {
		return errVerbReply(err)
	}
	room.Touch()
	room.Deliver(room.AlertBoardChanges())
	return map[string]any{"verb": "MARKED", "goalId": goalID}
}

func (d *Dispatcher) handleUnmark(session *Session, msg map[string]any) map[string]any {
	room, err := d.lookupSession(session)
	if err != nil {
		return errVerbReply(err)
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	goalID, ok := getInt(msg, "goalId")
	if !ok {
		return missingField("goalId")
	}
	if err := room.Unmark(session.UserID, goalID); err != nil {
		return errVerbReply(err)
	}
	room.Touch()
	room.Deliver(room.AlertBoardChanges())
	return map[string]any{"verb": "UNMARKED", "goalId": goalID}
}

func (d *Dispatcher) handleSpectate(session *Session) map[string]any {
	room, err := d.lookupSession(session)
	if err != nil {
		return errVerbReply(err)
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	user, err := room.Spectate(session.UserID)
	if err != nil {
		return errVerbReply(err)
	}
	room.Touch()
	room.Deliver(room.AlertPlayerChanges())
	room.Deliver(room.AlertBoardChanges())
	return map[string]any{"verb": "SPECTATING", "level": user.Spectate}
}

func (d *Dispatcher) handleTimelapse(session *Session) map[string]any {
	room, err := d.lookupSession(session)
	if err != nil {
		return errVerbReply(err)
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	user, ok := room.Users[session.UserID]
	if !ok {
		return errorReply("NOAUTH")
	}
	if user.Spectate == 0 {
		return errorReply("NOTEAM")
	}

	history := make([]map[string]any, len(room.Board.Board().History))
	for i, ev := range room.Board.Board().History {
		history[i] = map[string]any{"team": ev.Team, "index": ev.Index, "marked": ev.Marked}
	}
	return map[string]any{"verb": "TIMELAPSE", "history": history}
}
