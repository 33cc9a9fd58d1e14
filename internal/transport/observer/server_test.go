package observer

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"evolution.game/internal/observerproto"
	"evolution.game/internal/sim/game"
)

func startServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	s := NewServer("g-obs", log.New(io.Discard, "", 0))
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.WSHandler())
	mux.HandleFunc("/bootstrap", s.BootstrapHandler())
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		s.Close()
		srv.Close()
	})
	return s, srv
}

func bootstrap(t *testing.T, srv *httptest.Server) observerproto.BootstrapResponse {
	t.Helper()
	resp, err := http.Get(srv.URL + "/bootstrap")
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer resp.Body.Close()
	var b observerproto.BootstrapResponse
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		t.Fatalf("decode bootstrap: %v", err)
	}
	return b
}

func readTurn(t *testing.T, c *websocket.Conn) observerproto.TurnMsg {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m observerproto.TurnMsg
	if err := c.ReadJSON(&m); err != nil {
		t.Fatalf("read turn: %v", err)
	}
	return m
}

func TestServer_ReplaysAndStreamsTurns(t *testing.T) {
	s, srv := startServer(t)
	_ = s.LogTurn(game.TurnLogEntry{Turn: 1, Pool: 3})

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	if err := c.WriteJSON(observerproto.SubscribeMsg{Type: observerproto.TypeSubscribe, ProtocolVersion: observerproto.Version, FromTurn: 1}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	m := readTurn(t, c)
	if m.Type != observerproto.TypeTurn || m.GameID != "g-obs" || m.Entry.Turn != 1 || m.Entry.Pool != 3 {
		t.Fatalf("replayed turn=%+v", m)
	}

	deadline := time.Now().Add(2 * time.Second)
	for bootstrap(t, srv).Spectators != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("spectator never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}
	_ = s.LogTurn(game.TurnLogEntry{Turn: 2, DeckSize: 40})
	if m := readTurn(t, c); m.Entry.Turn != 2 || m.Entry.DeckSize != 40 {
		t.Fatalf("live turn=%+v", m)
	}
	if b := bootstrap(t, srv); b.Turn != 2 || b.GameID != "g-obs" {
		t.Fatalf("bootstrap=%+v", b)
	}

	s.Close()
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = c.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close, got %v", err)
	}
}

func TestServer_RejectsBadSubscribe(t *testing.T) {
	_, srv := startServer(t)
	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	_ = c.WriteJSON(observerproto.SubscribeMsg{Type: observerproto.TypeSubscribe, ProtocolVersion: "9.9"})
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = c.ReadMessage()
	if !websocket.IsCloseError(err, websocket.ClosePolicyViolation) {
		t.Fatalf("expected policy violation, got %v", err)
	}
}

func TestServer_DropsForSlowSpectators(t *testing.T) {
	s := NewServer("g", log.New(io.Discard, "", 0))
	slow := make(chan []byte)
	s.subs[1] = slow
	_ = s.LogTurn(game.TurnLogEntry{Turn: 1})
	if s.Dropped() != 1 {
		t.Fatalf("dropped=%d want 1", s.Dropped())
	}
	s.Close()
	if _, ok := <-slow; ok {
		t.Fatalf("channel not closed")
	}
}

func TestIsLoopbackRemote(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:5000": true,
		"[::1]:80":       true,
		"10.0.0.2:80":    false,
		"garbage":        false,
	}
	for in, want := range cases {
		if got := isLoopbackRemote(in); got != want {
			t.Fatalf("%s: got %v want %v", in, got, want)
		}
	}
}
