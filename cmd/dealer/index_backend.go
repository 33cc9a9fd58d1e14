package main

import (
	"path/filepath"

	"evolution.game/internal/persistence/indexdb"
)

type gameIndex interface {
	RecordGame(g indexdb.GameRow, results []indexdb.ResultRow)
	Close() error
}

// openIndex returns nil when indexing is disabled.
func openIndex(dataDir string, disableDB bool) (gameIndex, error) {
	if disableDB {
		return nil, nil
	}
	return indexdb.OpenSQLite(filepath.Join(dataDir, "index", "games.sqlite"))
}
