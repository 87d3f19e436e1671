// Package ws is the standalone websocket transport: one connection per
// client, each message decoded to the app.Dispatcher's verb envelope and
// the reply (plus any Room.Deliver broadcasts) written back over gorilla's
// connection. The Room, not a transport-level hub, is the unit of
// broadcast.
package ws

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/gorilla/websocket"

	"bingosink/internal/app"
	"bingosink/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client wraps one gorilla/websocket connection as an app.Transport: Send
// enqueues onto a buffered channel drained by writePump; concurrent
// writers would otherwise race on the same connection.
type Client struct {
	conn   *websocket.Conn
	send   chan map[string]any
	logger logging.Logger
}

// Send implements app.Transport. A full send buffer (client reading too
// slowly) is treated the same as a closed connection: drop it rather than
// block the Room.Deliver loop that called us.
func (c *Client) Send(msg map[string]any) error {
	select {
	case c.send <- msg:
		return nil
	default:
		return errSendBufferFull
	}
}

var errSendBufferFull = &sendBufferFullError{}

type sendBufferFullError struct{}

func (*sendBufferFullError) Error() string { return "ws: client send buffer full" }

func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// readPump decodes one verb envelope per message and feeds it straight to
// the dispatcher, writing the direct reply back if non-nil (EXIT, for
// instance, has no direct reply; its effect is entirely the broadcast
// Dispatch triggers internally via Room.Deliver). On disconnect the
// session's room (if any) is notified so other connections see the roster
// update.
func (c *Client) readPump(d *app.Dispatcher, session *app.Session) {
	defer func() {
		d.DisconnectSession(session)
		close(c.send)
		_ = c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg map[string]any
		if err := json.Unmarshal(data, &msg); err != nil {
			// Malformed JSON is answered, not fatal; the connection stays up.
			c.logger.Warn("ws: malformed message: %v", err)
			_ = c.Send(map[string]any{"verb": "ERROR", "message": "invalid message"})
			continue
		}
		if verb, ok := msg["verb"].(string); ok {
			c.logger.Debug("ws: IN | %s", verb)
		}
		reply := c.dispatch(d, session, msg)
		if reply != nil {
			_ = c.Send(reply)
		}
	}
}

// dispatch shields the read loop from a panicking handler: the sender gets
// an ERROR reply, the stack goes to the log, and every other connection
// keeps being served.
func (c *Client) dispatch(d *app.Dispatcher, session *app.Session, msg map[string]any) (reply map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("ws: panic handling message: %v\n%s", r, debug.Stack())
			reply = map[string]any{"verb": "ERROR", "message": "internal error"}
		}
	}()
	return d.Dispatch(session, c, msg)
}
