package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"

	"bingosink/internal/app"
	"bingosink/internal/config"
	"bingosink/internal/domain"
)

// MatchState holds the authoritative runtime state for one bingosink
// match: a 1:1 wrapper around a single app.Room. Nakama's match lifecycle
// (MatchInit/MatchJoin/MatchLeave) maps directly onto Room's equivalent
// lifecycle (NewRoom/AddUser/Disconnect), with no separate lobby phase;
// the board exists from MatchInit onward.
type MatchState struct {
	Room      *app.Room
	Presences map[string]runtime.Presence // userID -> presence
	Sessions  map[string]*app.Session     // userID -> dispatch session
	outbox    map[string][]json.RawMessage
}

// matchParams is the shape nk.MatchCreate's params map is decoded into.
// This port folds the OPEN verb into match creation rather than exposing
// it as an in-match message.
type matchParams struct {
	RoomName  string `json:"roomName"`
	Game      string `json:"game"`
	Generator string `json:"generator"`
	Board     string `json:"board"`
	Seed      string `json:"seed"`
}

// matchHandler owns one match's registry and dispatcher. Nakama serializes
// a match's callbacks, so Room access inside them needs no locking beyond
// what the dispatcher already does.
type matchHandler struct {
	registry   *app.Registry
	dispatcher *app.Dispatcher
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	registry := app.NewRegistry()
	return &matchHandler{registry: registry, dispatcher: app.NewDispatcher(registry, config.Get())}, nil
}

func readMatchParams(params map[string]interface{}) matchParams {
	raw, err := json.Marshal(params)
	if err != nil {
		return matchParams{}
	}
	var p matchParams
	_ = json.Unmarshal(raw, &p)
	return p
}

// MatchInit builds the Room immediately: a Nakama match is already scoped
// to one game/generator/board/seed via its creation params, so there is no
// lobby phase awaiting an OPEN message the way the websocket transport's
// first connection triggers one.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	p := readMatchParams(params)

	games := config.Get()
	gen, ok := games.Generator(p.Game, p.Generator)
	if !ok {
		logger.Error("MatchInit: unknown game/generator %s/%s", p.Game, p.Generator)
		return nil, 0, "unknown game or generator"
	}
	board, err := domain.CreateBoard(p.Board, gen, p.Seed)
	if err != nil {
		logger.Error("MatchInit: %v", err)
		return nil, 0, err.Error()
	}

	room := app.NewRoom(p.RoomName, p.Game, p.Generator, p.Board, p.Seed, board)
	mh.registry.Put(room)

	state := &MatchState{
		Room:      room,
		Presences: make(map[string]runtime.Presence),
		Sessions:  make(map[string]*app.Session),
		outbox:    make(map[string][]json.RawMessage),
	}

	// The label's open/game keys are what rpcQuickMatch's listing query
	// filters on.
	label, _ := json.Marshal(map[string]string{"open": "T", "game": p.Game, "board": p.Board})
	return state, 1, string(label)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	return state, true, ""
}

// MatchJoin mirrors JOIN: each presence gets a Room user and an
// outboxTransport (a presence that already has a session is reattached to
// its existing user, as REJOIN does), then the roster broadcast is flushed
// the same way any other dispatched mutation's broadcast is.
func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		ms.Presences[p.GetUserId()] = p
		transport := &outboxTransport{state: ms, userID: p.GetUserId()}
		if session, ok := ms.Sessions[p.GetUserId()]; ok {
			if _, rejoined := ms.Room.Rejoin(session.UserID, transport); rejoined {
				continue
			}
		}
		user := ms.Room.AddUser(p.GetUsername(), transport)
		ms.Sessions[p.GetUserId()] = &app.Session{RoomID: ms.Room.ID, UserID: user.ID}
	}

	ms.Room.Touch()
	ms.Room.Deliver(ms.Room.AlertPlayerChanges())
	flushOutbox(ms, dispatcher, logger)
	return ms
}

// MatchLeave mirrors a transport disconnect (not EXIT): the User record is
// kept, only detached, so the player can reconnect into the same Nakama
// match and pick the same app.Session back up.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(ms.Presences, p.GetUserId())
		if session, ok := ms.Sessions[p.GetUserId()]; ok {
			ms.Room.Disconnect(session.UserID)
		}
	}
	ms.Room.Deliver(ms.Room.AlertPlayerChanges())
	flushOutbox(ms, dispatcher, logger)
	return ms
}

// MatchLoop decodes every pending message as the same JSON verb envelope
// the websocket transport speaks, dispatches it against this match's own
// Room, then flushes whatever the dispatch buffered into presence sends.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		return state
	}

	for _, msg := range messages {
		if msg.GetOpCode() != OpEnvelope {
			logger.Warn("MatchLoop: unknown opcode %d", msg.GetOpCode())
			continue
		}
		session, ok := ms.Sessions[msg.GetUserId()]
		if !ok {
			logger.Warn("MatchLoop: message from unjoined user %s", msg.GetUserId())
			continue
		}

		transport := &outboxTransport{state: ms, userID: msg.GetUserId()}

		var envelope map[string]any
		if err := json.Unmarshal(msg.GetData(), &envelope); err != nil {
			logger.Warn("MatchLoop: invalid envelope from %s: %v", msg.GetUserId(), err)
			_ = transport.Send(map[string]any{"verb": "ERROR", "message": "invalid message"})
			continue
		}
		if verb, ok := envelope["verb"].(string); ok {
			logger.Debug("MatchLoop: IN | %s", verb)
		}

		reply := mh.dispatcher.Dispatch(session, transport, envelope)
		if reply != nil {
			_ = transport.Send(reply)
		}
	}

	flushOutbox(ms, dispatcher, logger)
	return ms
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	if ms, ok := state.(*MatchState); ok {
		mh.registry.Remove(ms.Room.ID)
	}
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, data
}

// flushOutbox drains every buffered outboxTransport payload through the
// dispatcher available in the current callback, targeting each message at
// exactly the presence it was addressed to (true single-recipient sends,
// not a match-wide broadcast filtered by the client).
func flushOutbox(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for userID, payloads := range ms.outbox {
		presence, ok := ms.Presences[userID]
		if !ok {
			continue
		}
		for _, payload := range payloads {
			if err := dispatcher.BroadcastMessage(OpEnvelope, payload, []runtime.Presence{presence}, nil, true); err != nil {
				logger.Warn("flushOutbox: send to %s failed: %v", userID, err)
			}
		}
	}
	ms.outbox = make(map[string][]json.RawMessage)
}
