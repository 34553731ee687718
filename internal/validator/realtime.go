package validator

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rotisserie/eris"
)

// Engine.IO v4 / Socket.IO v4 packet prefixes used by the handshake.
const (
	engineOpen    = "0"
	enginePing    = "2"
	enginePong    = "3"
	socketConnect = "40"
	socketError   = "44"
)

func (v *Validator) checkSocketIO(ctx context.Context) bool {
	if !v.caps.Realtime {
		v.warn("Socket.IO client unavailable, skipping Socket.IO validation")
		return true
	}

	connected, err := v.socketIOHandshake(ctx)
	switch {
	case err != nil:
		v.warn("Error testing Socket.IO: %v (non-critical)", err)
	case connected:
		v.pass("Socket.IO is connecting")
	default:
		v.warn("Socket.IO did not connect (non-critical)")
	}
	return true
}

// realtimeURL turns the backend URL into the Socket.IO websocket endpoint.
func realtimeURL(backendURL string) (string, error) {
	u, err := url.Parse(backendURL)
	if err != nil {
		return "", eris.Wrapf(err, "invalid backend url %q", backendURL)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/socket.io/"
	u.RawQuery = url.Values{"EIO": {"4"}, "transport": {"websocket"}}.Encode()
	return u.String(), nil
}

// socketIOHandshake opens a websocket-only Socket.IO session on the default namespace. It
// reports whether the server confirmed the namespace connect within the wait. Errors are
// returned only when no session could be opened at all.
func (v *Validator) socketIOHandshake(ctx context.Context) (bool, error) {
	target, err := realtimeURL(v.dep.BackendURL)
	if err != nil {
		return false, err
	}

	wait := v.timeouts.RealtimeWait
	dialer := websocket.Dialer{HandshakeTimeout: wait}
	dialCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	conn, resp, err := dialer.DialContext(dialCtx, target, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return false, eris.Wrapf(err, "failed to open websocket to %s", target)
	}
	defer conn.Close()

	deadline := time.Now().Add(wait)
	if err := conn.SetReadDeadline(deadline); err != nil {
		return false, eris.Wrap(err, "failed to set read deadline")
	}

	_, open, err := conn.ReadMessage()
	if err != nil {
		return false, eris.Wrap(err, "no Engine.IO open packet")
	}
	if !strings.HasPrefix(string(open), engineOpen) {
		return false, eris.Errorf("unexpected first packet %q", open)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(socketConnect)); err != nil {
		return false, eris.Wrap(err, "failed to send Socket.IO connect")
	}

	connected := v.awaitConnect(conn)
	v.pause(ctx)

	// the close frame is a courtesy, the deferred Close ends the session either way
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return connected, nil
}

// awaitConnect reads packets until the namespace connect is acknowledged or refused, or the
// read deadline passes.
func (v *Validator) awaitConnect(conn *websocket.Conn) bool {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			v.lg.Debug().Err(err).Msg("socket.io connect not confirmed")
			return false
		}
		packet := string(msg)
		switch {
		case strings.HasPrefix(packet, socketConnect):
			return true
		case strings.HasPrefix(packet, socketError):
			v.lg.Debug().Str("packet", packet).Msg("socket.io connect refused")
			return false
		case packet == enginePing:
			if err := conn.WriteMessage(websocket.TextMessage, []byte(enginePong)); err != nil {
				return false
			}
		}
	}
}

func (v *Validator) pause(ctx context.Context) {
	if v.settle <= 0 {
		return
	}
	t := time.NewTimer(v.settle)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
