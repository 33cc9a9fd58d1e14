package indexdb

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"evolution.game/internal/sim/game"
	"evolution.game/internal/sim/tuning"
	"evolution.game/internal/strategy"
)

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqGame}

	s.RecordGame(GameRow{GameID: "g2"}, nil)
	s.RecordGame(GameRow{GameID: "g3"}, nil)

	st := s.Stats()
	if st.DropGameTotal != 2 {
		t.Fatalf("DropGameTotal=%d want=2", st.DropGameTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_RecordAndQuery(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()

	s.RecordGame(GameRow{GameID: "g1", Seed: 1, Players: 3, Turns: 5, StartedAt: "a", EndedAt: "2026-01-01T00:00:00Z"}, []ResultRow{
		{PlayerID: 1, Name: "alice", Rank: 1, Score: 12},
		{PlayerID: 2, Name: "bob", Rank: 2, Score: 9},
		{PlayerID: 3, Name: "carol", Disqualified: true},
	})
	s.RecordGame(GameRow{GameID: "g2", Seed: 2, Players: 3, Turns: 4, StartedAt: "b", EndedAt: "2026-01-02T00:00:00Z"}, []ResultRow{
		{PlayerID: 1, Name: "bob", Rank: 1, Score: 20},
		{PlayerID: 2, Name: "alice", Rank: 2, Score: 3},
		{PlayerID: 3, Name: "carol", Rank: 3, Score: 1},
	})
	if err := s.Sync(ctx); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	games, err := s.RecentGames(ctx, 10)
	if err != nil {
		t.Fatalf("RecentGames: %v", err)
	}
	if len(games) != 2 || games[0].GameID != "g2" || games[1].Turns != 5 {
		t.Fatalf("games=%+v", games)
	}

	top, err := s.TopScores(ctx, 10)
	if err != nil {
		t.Fatalf("TopScores: %v", err)
	}
	if len(top) != 3 || top[0].Name != "bob" || top[0].Wins != 1 || top[0].Best != 20 {
		t.Fatalf("top=%+v", top)
	}
	if top[1].Name != "alice" || top[1].Games != 2 || top[1].Total != 15 {
		t.Fatalf("second=%+v", top[1])
	}
	if top[2].Name != "carol" || top[2].Faults != 1 {
		t.Fatalf("third=%+v", top[2])
	}

	res, err := s.Results(ctx, "g1")
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if len(res) != 3 || res[0].Name != "alice" || !res[2].Disqualified {
		t.Fatalf("results=%+v", res)
	}

	if _, ok, err := s.Game(ctx, "missing"); ok || err != nil {
		t.Fatalf("missing game: ok=%v err=%v", ok, err)
	}
	g, ok, err := s.Game(ctx, "g1")
	if !ok || err != nil || g.Seed != 1 {
		t.Fatalf("g1: %+v ok=%v err=%v", g, ok, err)
	}
}

func TestSummarize(t *testing.T) {
	players := []game.Player{strategy.NewGreedy(4), strategy.NewGreedy(4), strategy.NewGreedy(4)}
	d, err := game.NewDealer(tuning.Defaults(), players, 3, game.Options{})
	if err != nil {
		t.Fatalf("NewDealer: %v", err)
	}
	if _, err := d.RunGame(context.Background()); err != nil {
		t.Fatalf("RunGame: %v", err)
	}
	g, rows := Summarize("g9", 3, time.Unix(0, 0), "/tmp/x", d, map[int]string{2: "bob"})
	if g.GameID != "g9" || g.Players != 3 || g.Turns != d.Turn() || len(rows) != 3 {
		t.Fatalf("game=%+v rows=%+v", g, rows)
	}
	for _, r := range rows {
		want := "player-1"
		switch r.PlayerID {
		case 2:
			want = "bob"
		case 3:
			want = "player-3"
		}
		if r.Name != want || r.Rank == 0 {
			t.Fatalf("row=%+v", r)
		}
	}
}
