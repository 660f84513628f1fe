// internal/httpserver/server.go
//
// HTTP server wiring for the Unscramble backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/daily".
//   - POST /game/new creates a game session and returns a signed token.
//   - Token-gated endpoints: GET /game/state, POST /game/events, DELETE /game,
//     GET /game/ws (websocket push of snapshots and notifications).
//
// Notes:
//   - Every inbound event goes through apply(), which traces it and hands it
//     to the session's engine. Snapshots never carry the answer.
//   - Sessions live in a store.Store and are swept when idle.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/robalobadob/scramble/internal/config"
	"github.com/robalobadob/scramble/internal/game"
	"github.com/robalobadob/scramble/internal/store"
	"github.com/robalobadob/scramble/internal/telemetry"
	"github.com/robalobadob/scramble/internal/words"
)

// Server bundles router, session store and the shared word catalog.
type Server struct {
	r        *chi.Mux
	store    store.Store
	catalog  *words.Catalog
	cfg      config.Config
	tracer   trace.Tracer
	upgrader websocket.Upgrader
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, catalog *words.Catalog, cfg config.Config) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		store:   st,
		catalog: catalog,
		cfg:     cfg,
		tracer:  telemetry.Tracer("httpserver"),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID) // add X-Request-ID
	s.r.Use(chimw.RealIP)    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer) // recover from panics
	s.r.Use(s.cors)          // credentials-friendly CORS

	// Plain request/response routes. The websocket route below stays outside
	// this group: Timeout would cancel its context after 10s.
	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(jsonContentType)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"service":"scramble","endpoints":["/health","/daily","POST /game/new","GET /game/state","POST /game/events","DELETE /game","GET /game/ws"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Get("/daily", s.handleDailyInfo)

		r.Post("/game/new", s.handleNewGame)
		r.With(s.requireGame()).Get("/game/state", s.handleState)
		r.With(s.requireGame()).Post("/game/events", s.handleEvent)
		r.With(s.requireGame()).Delete("/game", s.handleEndGame)
	})
	s.r.With(s.requireGame()).Get("/game/ws", s.handleWS)

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})
	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// StartSweeper evicts idle sessions every interval until ctx is done.
func (s *Server) StartSweeper(ctx context.Context, every time.Duration) {
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := s.store.Sweep(ctx, s.cfg.SessionTTL()); n > 0 {
					log.Info().Int("evicted", n).Int("remaining", s.store.Len()).Msg("swept idle sessions")
				}
			}
		}
	}()
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured client origin.
func (s *Server) cors(next http.Handler) http.Handler {
	origin := s.cfg.ClientOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeError writes {"error":code} with status.
func writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + code + `"}` + "\n"))
}

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Mode string `json:"mode"` // "normal" (default) | "daily"
}
type newGameRes struct {
	GameID string        `json:"gameId"`
	Mode   string        `json:"mode"`
	Token  string        `json:"token"`
	State  game.Snapshot `json:"state"`
}

// handleNewGame creates a session with a fresh engine and hands back its token
// (also set as a cookie).
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	// An empty body means normal mode.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}

	mode := strings.ToLower(strings.TrimSpace(req.Mode))
	var (
		eng *game.Engine
		err error
	)
	switch mode {
	case "", "normal":
		mode = "normal"
		eng, err = game.New(s.catalog)
	case "daily":
		eng, err = s.newDailyEngine(time.Now())
	default:
		writeError(w, http.StatusBadRequest, "bad_mode")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("mode", mode).Msg("create engine")
		writeError(w, http.StatusInternalServerError, "engine_failed")
		return
	}

	sess := &store.Session{ID: genID(), Mode: mode, Engine: eng, Created: time.Now().UTC()}
	if err := s.store.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	tok, exp, err := s.signToken(sess.ID)
	if err != nil {
		log.Error().Err(err).Msg("sign token")
		writeError(w, http.StatusInternalServerError, "sign_failed")
		return
	}
	s.setTokenCookie(w, tok, exp)
	log.Info().Str("gameId", sess.ID).Str("mode", mode).Int("sessions", s.store.Len()).Msg("game created")

	_ = json.NewEncoder(w).Encode(newGameRes{GameID: sess.ID, Mode: mode, Token: tok, State: eng.Snapshot()})
}

// handleState returns the current snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(sessionFrom(r).Engine.Snapshot())
}

// eventReq is the wire form of a game event, shared by POST /game/events and
// the websocket.
type eventReq struct {
	Type string `json:"type"` // "text" | "submit" | "skip" | "restart" | "notify"
	Text string `json:"text"` // input text or notification message
}

var errBadEvent = errors.New("unknown event type")

// kind is the normalized event type used for matching, spans and logs.
func (req eventReq) kind() string { return strings.ToLower(strings.TrimSpace(req.Type)) }

// event maps the wire form onto a game.Event.
func (req eventReq) event() (game.Event, error) {
	switch req.kind() {
	case "text":
		return game.TextChanged{Text: req.Text}, nil
	case "submit":
		return game.Submit{}, nil
	case "skip":
		return game.Skip{}, nil
	case "restart":
		return game.Restart{}, nil
	case "notify":
		return game.Notify{Message: req.Text}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errBadEvent, req.Type)
	}
}

// handleEvent applies one event and returns the resulting snapshot.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var req eventReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	ev, err := req.event()
	if err != nil {
		writeError(w, http.StatusBadRequest, "unknown_event")
		return
	}
	snap, err := s.apply(r.Context(), sessionFrom(r), req.kind(), ev)
	if err != nil {
		status, code := engineErrorStatus(err)
		writeError(w, status, code)
		return
	}
	_ = json.NewEncoder(w).Encode(snap)
}

// handleEndGame drops the session and clears the token cookie.
func (s *Server) handleEndGame(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := s.store.Delete(r.Context(), sess.ID); err != nil {
		log.Warn().Err(err).Str("gameId", sess.ID).Msg("delete session")
	}
	s.clearTokenCookie(w)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// apply runs ev against the session's engine inside a span. Every event
// counts as activity for the idle sweeper; an evicted session rejects it
// with store.ErrNotFound.
func (s *Server) apply(ctx context.Context, sess *store.Session, kind string, ev game.Event) (game.Snapshot, error) {
	_, span := s.tracer.Start(ctx, "game.event",
		trace.WithAttributes(
			attribute.String("game.id", sess.ID),
			attribute.String("game.mode", sess.Mode),
			attribute.String("event.type", kind),
		))
	defer span.End()

	if err := s.store.Touch(ctx, sess.ID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Info().Str("gameId", sess.ID).Str("event", kind).Msg("event for evicted game")
		return game.Snapshot{}, err
	}

	err := sess.Engine.Handle(ev)
	snap := sess.Engine.Snapshot()
	span.SetAttributes(
		attribute.Int("game.attempts", snap.AttemptsUsed),
		attribute.Int("game.score", snap.Score),
		attribute.Bool("game.round_over", snap.RoundOver),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Warn().Err(err).Str("gameId", sess.ID).Str("event", kind).Msg("handle event")
	}
	return snap, err
}

// engineErrorStatus maps an engine error to an HTTP status and error code.
func engineErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, words.ErrExhaustedCatalog):
		return http.StatusConflict, "catalog_exhausted"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "game_not_found"
	}
	return http.StatusInternalServerError, "engine_error"
}
