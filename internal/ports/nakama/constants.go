package nakama

// MatchName is the authoritative match handler name registered with Nakama.
const MatchName = "bingosink_match"

// OpEnvelope is the single op code every message (client request or server
// event) travels under: the same JSON verb envelope ({"verb": "...", ...})
// the standalone websocket transport speaks, so one op code suffices and
// the verb field inside the payload is what branches.
const OpEnvelope int64 = 1
