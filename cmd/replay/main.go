package main

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	persistlog "evolution.game/internal/persistence/log"
	"evolution.game/internal/persistence/snapshot"
	"evolution.game/internal/sim/game"
)

func main() {
	var (
		dataDir   = flag.String("data", "./data", "runtime data directory")
		gameID    = flag.String("game", "", "game id (resolves the snapshot and turn log under -data)")
		snapPath  = flag.String("snapshot", "", "path to final.snap.zst (overrides -game)")
		turnsPath = flag.String("turns", "", "path to turns.jsonl.zst (overrides -game)")
		verbose   = flag.Bool("v", false, "print every turn")
	)
	flag.Parse()

	if *gameID != "" {
		if *snapPath == "" {
			*snapPath = snapshot.Path(*dataDir, *gameID)
		}
		if *turnsPath == "" {
			*turnsPath = persistlog.TurnsPath(*dataDir, *gameID)
		}
	}
	if *snapPath == "" {
		fmt.Fprintln(os.Stderr, "missing -snapshot or -game")
		os.Exit(2)
	}

	snap, err := snapshot.ReadSnapshot(*snapPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read snapshot:", err)
		os.Exit(1)
	}
	fmt.Printf("snapshot v%d game=%s turn=%d seed=%d players=%d deck=%d discards=%d watering_hole=%d disqualified=%v\n",
		snap.Header.Version, snap.Header.GameID, snap.Header.Turn, snap.Header.Seed,
		len(snap.Players), len(snap.Deck), len(snap.Discards), snap.Pool, snap.Disqualified)
	for _, s := range snap.Scores {
		name := ""
		for _, p := range snap.Players {
			if p.ID == s.PlayerID {
				name = p.Name
			}
		}
		fmt.Printf("  #%d player %d %s score=%d\n", s.Rank, s.PlayerID, name, s.Score)
	}

	var turns []game.TurnLogEntry
	if *turnsPath != "" {
		turns, err = persistlog.ReadTurns(*turnsPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read turns:", err)
			os.Exit(1)
		}
		if *verbose {
			for _, t := range turns {
				fmt.Println(describeTurn(t))
			}
		}
	}

	problems := verify(snap, turns)
	if len(problems) == 0 {
		fmt.Printf("ok: %d turns, cards conserved\n", len(turns))
		return
	}
	for _, p := range problems {
		fmt.Println("FAIL:", p)
	}
	os.Exit(1)
}

// verify checks card conservation in the snapshot and that the turn log
// agrees with it. A nil log only checks the snapshot.
func verify(snap snapshot.SnapshotV1, turns []game.TurnLogEntry) []string {
	var out []string
	cfg, err := snap.Config()
	if err != nil {
		return []string{fmt.Sprintf("decode snapshot: %v", err)}
	}
	if err := game.CheckConservation(snap.Tuning, cfg); err != nil {
		out = append(out, fmt.Sprintf("conservation: %v", err))
	}
	if turns == nil {
		return out
	}

	var disq []int
	for i, t := range turns {
		if t.Turn != i+1 {
			out = append(out, fmt.Sprintf("entry %d has turn %d", i+1, t.Turn))
		}
		if i > 0 && t.DeckSize > turns[i-1].DeckSize {
			out = append(out, fmt.Sprintf("turn %d: deck grew from %d to %d", t.Turn, turns[i-1].DeckSize, t.DeckSize))
		}
		disq = append(disq, t.Disqualified...)
	}
	if len(turns) != snap.Header.Turn {
		out = append(out, fmt.Sprintf("log has %d turns, snapshot is at turn %d", len(turns), snap.Header.Turn))
	}
	if len(turns) > 0 {
		last := turns[len(turns)-1]
		if last.DeckSize != len(snap.Deck) || last.DiscardSize != len(snap.Discards) || last.Pool != snap.Pool {
			out = append(out, fmt.Sprintf("last turn deck=%d discards=%d watering_hole=%d, snapshot %d %d %d",
				last.DeckSize, last.DiscardSize, last.Pool, len(snap.Deck), len(snap.Discards), snap.Pool))
		}
		if len(last.Players) != len(snap.Players) {
			out = append(out, fmt.Sprintf("last turn has %d players, snapshot %d", len(last.Players), len(snap.Players)))
		} else {
			for i, p := range last.Players {
				sp := snap.Players[i]
				if p.ID != sp.ID || p.FoodBag != sp.FoodBag || p.HandSize != len(sp.Hand) || len(p.Species) != len(sp.Species) {
					out = append(out, fmt.Sprintf("player %d differs between log and snapshot", p.ID))
				}
			}
		}
	}
	if !slices.Equal(disq, snap.Disqualified) {
		out = append(out, fmt.Sprintf("log disqualified %v, snapshot %v", disq, snap.Disqualified))
	}
	return out
}

func describeTurn(t game.TurnLogEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "turn %d: watering_hole=%d deck=%d discards=%d", t.Turn, t.Pool, t.DeckSize, t.DiscardSize)
	for _, p := range t.Players {
		fmt.Fprintf(&b, " | p%d bag=%d hand=%d", p.ID, p.FoodBag, p.HandSize)
		for _, s := range p.Species {
			fmt.Fprintf(&b, " [%d/%d b%d %s]", s.Food, s.Population, s.Body, strings.Join(s.Traits, ","))
		}
	}
	if len(t.Disqualified) > 0 {
		fmt.Fprintf(&b, " disqualified=%v", t.Disqualified)
	}
	return b.String()
}
