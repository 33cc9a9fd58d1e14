package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"evolution.game/internal/persistence/snapshot"
)

type GameArchiveMeta struct {
	GameID    string `json:"game_id"`
	Seed      int64  `json:"seed"`
	Turns     int    `json:"turns"`
	Players   int    `json:"players"`
	Winner    int    `json:"winner,omitempty"`
	Snapshot  string `json:"snapshot"`
	TurnLog   string `json:"turn_log,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Dir is the archive directory for a game ended on the given day.
func Dir(dataDir string, day time.Time, gameID string) string {
	return filepath.Join(dataDir, "archives", day.UTC().Format("2006-01-02"), gameID)
}

// ArchiveGame copies a finished game's snapshot, and its turn log when one
// exists, into `dataDir/archives/<YYYY-MM-DD>/<game_id>/` next to a meta.json.
// It returns the archive directory.
func ArchiveGame(dataDir, snapshotPath, turnsPath string, snap snapshot.SnapshotV1) (string, error) {
	if snap.Header.GameID == "" {
		return "", fmt.Errorf("archive: snapshot has no game id")
	}
	day := snap.Header.WrittenAt
	if day.IsZero() {
		day = time.Now()
	}
	dir := Dir(dataDir, day, snap.Header.GameID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	meta := GameArchiveMeta{
		GameID:    snap.Header.GameID,
		Seed:      snap.Header.Seed,
		Turns:     snap.Header.Turn,
		Players:   len(snap.Players),
		Snapshot:  filepath.Base(snapshotPath),
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
	}
	if len(snap.Scores) > 0 {
		meta.Winner = snap.Scores[0].PlayerID
	}
	if err := copyFile(snapshotPath, filepath.Join(dir, meta.Snapshot)); err != nil {
		return "", err
	}
	if turnsPath != "" {
		switch err := copyFile(turnsPath, filepath.Join(dir, filepath.Base(turnsPath))); {
		case err == nil:
			meta.TurnLog = filepath.Base(turnsPath)
		case !os.IsNotExist(err):
			return "", err
		}
	}

	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "meta.json"), b, 0o644); err != nil {
		return "", err
	}
	return dir, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
