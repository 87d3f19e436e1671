// Package app implements the Room aggregate and the session verb dispatcher:
// the use-case layer sitting between the pure internal/domain core and the
// transport adapters (internal/transport/ws, internal/ports/nakama).
package app

// Transport is a non-owning handle to one user's connection. A User's
// Transport is nil while disconnected; the transport adapter is the only
// owner of the underlying connection's lifecycle.
type Transport interface {
	// Send delivers one JSON-shaped message. Implementations must not block
	// the caller indefinitely: a slow or dead connection should fail fast
	// rather than stall the Room's serialized handler loop.
	Send(msg map[string]any) error
}
