package indexdb

import (
	"fmt"
	"time"

	"evolution.game/internal/sim/game"
)

// Summarize turns a finished dealer into index rows. names maps player id to
// display name; missing names fall back to "player-<id>".
func Summarize(gameID string, seed int64, startedAt time.Time, snapshotPath string, d *game.Dealer, names map[int]string) (GameRow, []ResultRow) {
	name := func(id int) string {
		if n := names[id]; n != "" {
			return n
		}
		return fmt.Sprintf("player-%d", id)
	}
	scores := d.Scores()
	disq := d.Disqualified()
	g := GameRow{
		GameID:       gameID,
		Seed:         seed,
		Players:      len(scores) + len(disq),
		Turns:        d.Turn(),
		Disqualified: len(disq),
		SnapshotPath: snapshotPath,
		StartedAt:    startedAt.UTC().Format(time.RFC3339Nano),
	}
	rows := make([]ResultRow, 0, g.Players)
	for _, s := range scores {
		rows = append(rows, ResultRow{GameID: gameID, PlayerID: s.PlayerID, Name: name(s.PlayerID), Rank: s.Rank, Score: s.Score})
	}
	for _, id := range disq {
		rows = append(rows, ResultRow{GameID: gameID, PlayerID: id, Name: name(id), Disqualified: true})
	}
	return g, rows
}
