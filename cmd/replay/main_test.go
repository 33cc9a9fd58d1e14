package main

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	persistlog "evolution.game/internal/persistence/log"
	"evolution.game/internal/persistence/snapshot"
	"evolution.game/internal/sim/game"
	"evolution.game/internal/sim/tuning"
	"evolution.game/internal/strategy"
)

func recordedGame(t *testing.T) (snapshot.SnapshotV1, []game.TurnLogEntry) {
	t.Helper()
	dir := t.TempDir()
	turns := persistlog.NewTurnLogger(dir, "g1")
	players := []game.Player{strategy.NewGreedy(4), strategy.NewGreedy(4), strategy.NewGreedy(4), strategy.NewGreedy(4)}
	d, err := game.NewDealer(tuning.Defaults(), players, 5, game.Options{TurnLog: turns})
	if err != nil {
		t.Fatalf("NewDealer: %v", err)
	}
	if _, err := d.RunGame(context.Background()); err != nil {
		t.Fatalf("RunGame: %v", err)
	}
	if err := turns.Close(); err != nil {
		t.Fatalf("close turns: %v", err)
	}
	path := filepath.Join(dir, "final.snap.zst")
	if err := snapshot.WriteSnapshot(path, snapshot.Capture(snapshot.Header{GameID: "g1", WrittenAt: time.Now()}, d, nil)); err != nil {
		t.Fatalf("WriteSnapshot: %v", err)
	}
	snap, err := snapshot.ReadSnapshot(path)
	if err != nil {
		t.Fatalf("ReadSnapshot: %v", err)
	}
	entries, err := persistlog.ReadTurns(persistlog.TurnsPath(dir, "g1"))
	if err != nil {
		t.Fatalf("ReadTurns: %v", err)
	}
	return snap, entries
}

func TestVerify_RecordedGame(t *testing.T) {
	snap, turns := recordedGame(t)
	if len(turns) == 0 {
		t.Fatalf("no turns recorded")
	}
	if p := verify(snap, turns); len(p) != 0 {
		t.Fatalf("problems: %v", p)
	}
	if p := verify(snap, nil); len(p) != 0 {
		t.Fatalf("snapshot only: %v", p)
	}
}

func TestVerify_DetectsTampering(t *testing.T) {
	snap, turns := recordedGame(t)

	extra := snap
	extra.Deck = append(slices.Clone(snap.Deck), snapshot.CardV1{Trait: "carnivore", Food: 8})
	if p := verify(extra, nil); len(p) == 0 || !strings.Contains(p[0], "conservation") {
		t.Fatalf("duplicated card not reported: %v", p)
	}

	short := turns[:len(turns)-1]
	if p := verify(snap, short); len(p) == 0 {
		t.Fatalf("truncated log not reported")
	}
}

func TestDescribeTurn(t *testing.T) {
	got := describeTurn(game.TurnLogEntry{
		Turn: 2, Pool: 1, DeckSize: 50,
		Players:      []game.PlayerSummary{{ID: 1, HandSize: 3, Species: []game.SpeciesSummary{{Population: 2, Food: 1, Body: 3, Traits: []string{"horns", "climbing"}}}}},
		Disqualified: []int{4},
	})
	want := "turn 2: watering_hole=1 deck=50 discards=0 | p1 bag=0 hand=3 [1/2 b3 horns,climbing] disqualified=[4]"
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}
