package nakama

import "encoding/json"

// outboxTransport is an app.Transport that buffers outbound payloads rather
// than sending them immediately. Nakama's runtime.MatchDispatcher is only
// valid for the duration of one MatchInit/MatchJoin/MatchLeave/MatchLoop
// callback, so a Room's Transport handles (which may outlive any single
// callback) cannot hold one directly; instead Send appends to a per-user
// queue on the MatchState, and the match handler flushes it through the
// dispatcher available in whichever callback triggered the mutation.
type outboxTransport struct {
	state  *MatchState
	userID string
}

// Send implements app.Transport by buffering the JSON-marshaled payload for
// the next flush. A marshal failure here can only mean a non-serializable
// value slipped into an Event payload upstream; it is dropped rather than
// panicking the match loop.
func (t *outboxTransport) Send(msg map[string]any) error {
	bytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	t.state.outbox[t.userID] = append(t.state.outbox[t.userID], bytes)
	return nil
}
