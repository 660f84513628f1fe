package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialGame(t *testing.T, s *Server, token string) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(wsMessage) bool) wsMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var m wsMessage
		if err := conn.ReadJSON(&m); err != nil {
			t.Fatalf("read: %v", err)
		}
		if match(m) {
			return m
		}
	}
}

func TestWebsocketStreamsStateAndToasts(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, "")
	conn := dialGame(t, s, g.Token)

	first := readUntil(t, conn, func(m wsMessage) bool { return m.Kind == "state" })
	if first.State == nil || first.State.AttemptsUsed != 0 {
		t.Fatalf("first frame: %+v", first)
	}

	if err := conn.WriteJSON(eventReq{Type: "skip"}); err != nil {
		t.Fatal(err)
	}
	m := readUntil(t, conn, func(m wsMessage) bool { return m.Kind == "state" && m.State.AttemptsUsed == 1 })
	if m.State.Score != 0 {
		t.Fatalf("skip scored: %+v", m.State)
	}

	if err := conn.WriteJSON(eventReq{Type: "notify", Text: "Game Over"}); err != nil {
		t.Fatal(err)
	}
	toast := readUntil(t, conn, func(m wsMessage) bool { return m.Kind == "toast" })
	if toast.Message != "Game Over" {
		t.Fatalf("toast = %q", toast.Message)
	}

	if err := conn.WriteJSON(eventReq{Type: "dance"}); err != nil {
		t.Fatal(err)
	}
	bad := readUntil(t, conn, func(m wsMessage) bool { return m.Kind == "error" })
	if bad.Error != "unknown_event" {
		t.Fatalf("error frame = %+v", bad)
	}
}

func TestWebsocketSeesHTTPEvents(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, "")
	conn := dialGame(t, s, g.Token)
	readUntil(t, conn, func(m wsMessage) bool { return m.Kind == "state" })

	event(t, s, g.Token, eventReq{Type: "text", Text: "abc"})
	m := readUntil(t, conn, func(m wsMessage) bool { return m.Kind == "state" && m.State.InputText == "abc" })
	if m.State.AttemptsUsed != 0 {
		t.Fatalf("state: %+v", m.State)
	}
}

func TestWebsocketRejectsForeignOrigin(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, "")
	ts := httptest.NewServer(s.Router())
	defer ts.Close()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/game/ws?token=" + g.Token
	hdr := http.Header{"Origin": {"http://evil.example"}}
	if _, _, err := websocket.DefaultDialer.Dial(url, hdr); err == nil {
		t.Fatal("expected handshake failure for foreign origin")
	}
}

func TestWebsocketPlayKeepsSessionAlive(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, "")
	conn := dialGame(t, s, g.Token)
	readUntil(t, conn, func(m wsMessage) bool { return m.Kind == "state" })

	deadline := time.Now().Add(300 * time.Millisecond)
	for i := 0; time.Now().Before(deadline); i++ {
		text := strings.Repeat("a", i%5+1)
		if err := conn.WriteJSON(eventReq{Type: "text", Text: text}); err != nil {
			t.Fatal(err)
		}
		readUntil(t, conn, func(m wsMessage) bool { return m.Kind == "state" && m.State.InputText == text })
		time.Sleep(20 * time.Millisecond)
	}

	if n := s.store.Sweep(context.Background(), 200*time.Millisecond); n != 0 {
		t.Fatalf("swept %d sessions in active websocket play", n)
	}
	if rec := do(t, s, http.MethodGet, "/game/state", g.Token, nil); rec.Code != http.StatusOK {
		t.Fatalf("state status %d after websocket play", rec.Code)
	}
}

func TestWebsocketEndsWhenSessionEvicted(t *testing.T) {
	s := newTestServer(t)
	g := newGame(t, s, "")
	conn := dialGame(t, s, g.Token)
	readUntil(t, conn, func(m wsMessage) bool { return m.Kind == "state" })

	if err := s.store.Delete(context.Background(), g.GameID); err != nil {
		t.Fatal(err)
	}
	if err := conn.WriteJSON(eventReq{Type: "skip"}); err != nil {
		t.Fatal(err)
	}
	gone := readUntil(t, conn, func(m wsMessage) bool { return m.Kind == "error" })
	if gone.Error != "game_not_found" {
		t.Fatalf("error frame = %+v", gone)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var m wsMessage
		err := conn.ReadJSON(&m)
		if err == nil {
			if m.Kind == "state" && m.State.AttemptsUsed != 0 {
				t.Fatalf("evicted game advanced: %+v", m.State)
			}
			continue
		}
		if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			t.Fatalf("stream ended with %v, want normal close", err)
		}
		return
	}
}
