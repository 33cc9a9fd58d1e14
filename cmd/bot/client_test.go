package main

import (
	"context"
	"io"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"evolution.game/internal/protocol"
	"evolution.game/internal/sim/game"
	"evolution.game/internal/sim/tuning"
	"evolution.game/internal/strategy"
	"evolution.game/internal/transport/ws"
)

// A full game between three greedy bots over real websocket connections.
func TestPlay_FullGameOverWebsocket(t *testing.T) {
	tu := tuning.Defaults()
	quiet := log.New(io.Discard, "", 0)
	lobby := ws.NewLobby("g-e2e", 3, tu.Transport, quiet)
	srv := httptest.NewServer(lobby.Handler())
	defer srv.Close()
	defer lobby.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	type outcome struct {
		res protocol.ResultMsg
		err error
	}
	results := make(chan outcome, 3)
	for i := range 3 {
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		if err != nil {
			t.Fatalf("dial: %v", err)
		}
		defer conn.Close()
		if err := conn.WriteJSON(protocol.HelloMsg{Type: protocol.TypeHello, ProtocolVersion: protocol.Version, PlayerName: "bot"}); err != nil {
			t.Fatalf("hello %d: %v", i, err)
		}
		go func() {
			res, err := play(ctx, conn, strategy.NewGreedy(tu.HardShellThreshold), quiet)
			results <- outcome{res, err}
		}()
	}

	remotes, err := lobby.Wait(ctx)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	d, err := game.NewDealer(tu, ws.Players(remotes), 11, game.Options{Logger: quiet})
	if err != nil {
		t.Fatalf("NewDealer: %v", err)
	}
	scores, err := d.RunGame(ctx)
	if err != nil {
		t.Fatalf("RunGame: %v", err)
	}
	if got := d.Disqualified(); len(got) != 0 {
		t.Fatalf("disqualified over the wire: %v", got)
	}
	if err := d.CheckConservation(); err != nil {
		t.Fatalf("conservation: %v", err)
	}
	for _, r := range remotes {
		if err := r.SendResult(scores, false); err != nil {
			t.Fatalf("SendResult: %v", err)
		}
	}
	for range 3 {
		o := <-results
		if o.err != nil {
			t.Fatalf("bot: %v", o.err)
		}
		if len(o.res.Scores) != 3 || o.res.Scores[0].Rank != 1 {
			t.Fatalf("result=%+v", o.res)
		}
	}
}
