// internal/httpserver/ws.go
//
// GET /game/ws streams a session over a websocket.
//
//   - Server → client: {"kind":"state","state":{...}} for the current snapshot
//     and every later one, {"kind":"toast","message":"..."} for notifications,
//     {"kind":"error","error":"..."} when an inbound event fails.
//   - Client → server: the same {"type":...,"text":...} objects accepted by
//     POST /game/events.
//
// One goroutine reads, one writes; only the writer touches the connection's
// write side.

package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/scramble/internal/game"
	"github.com/robalobadob/scramble/internal/store"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// wsMessage is one server → client frame.
type wsMessage struct {
	Kind    string         `json:"kind"` // "state" | "toast" | "error"
	State   *game.Snapshot `json:"state,omitempty"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// checkOrigin accepts non-browser clients and the configured client origin.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || origin == s.cfg.ClientOrigin
}

// handleWS upgrades the connection and pumps until either side hangs up.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("websocket upgrade")
		return
	}
	log.Info().Str("gameId", sess.ID).Msg("websocket connected")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Subscribe before reading so nothing the client triggers is missed.
	states := sess.Engine.Subscribe(ctx)
	toasts := sess.Engine.Notifications(ctx)
	errs := make(chan string, 8)

	done := make(chan struct{})
	go func() {
		defer close(done)
		writePump(ctx, conn, states, toasts, errs)
	}()

	s.readPump(ctx, conn, sess, errs)
	cancel()
	<-done
	_ = conn.Close()
	log.Info().Str("gameId", sess.ID).Msg("websocket disconnected")
}

// readPump applies inbound events until the connection fails or the session
// is evicted.
func (s *Server) readPump(ctx context.Context, conn *websocket.Conn, sess *store.Session, errs chan<- string) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var req eventReq
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("gameId", sess.ID).Msg("websocket read")
			}
			return
		}
		ev, err := req.event()
		if err != nil {
			report(errs, "unknown_event")
			continue
		}
		if _, err := s.apply(ctx, sess, req.kind(), ev); err != nil {
			_, code := engineErrorStatus(err)
			report(errs, code)
			if errors.Is(err, store.ErrNotFound) {
				return
			}
		}
	}
}

// report queues an error frame, dropping it if the writer is backed up.
func report(errs chan<- string, code string) {
	select {
	case errs <- code:
	default:
	}
}

// writePump is the only writer on conn.
func writePump(ctx context.Context, conn *websocket.Conn, states <-chan game.Snapshot, toasts <-chan string, errs <-chan string) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	write := func(m wsMessage) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(m); err != nil {
			// unblock the reader
			_ = conn.Close()
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			// flush errors queued by the reader before it hung up
			for pending := true; pending; {
				select {
				case code := <-errs:
					if !write(wsMessage{Kind: "error", Error: code}) {
						return
					}
				default:
					pending = false
				}
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case snap, ok := <-states:
			if !ok {
				// closed by cancellation; the ctx.Done branch finishes up
				states = nil
				continue
			}
			if !write(wsMessage{Kind: "state", State: &snap}) {
				return
			}
		case msg, ok := <-toasts:
			if !ok {
				// closed by cancellation; the ctx.Done branch finishes up
				toasts = nil
				continue
			}
			if !write(wsMessage{Kind: "toast", Message: msg}) {
				return
			}
		case code := <-errs:
			if !write(wsMessage{Kind: "error", Error: code}) {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}
