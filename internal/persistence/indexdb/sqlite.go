package indexdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteIndex is a read model of finished games. Writes go through a buffered
// channel so the game loop never waits on disk; the snapshot and turn log stay
// the source of truth.
type SQLiteIndex struct {
	db *sqlx.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool

	dropGame atomic.Uint64
}

type reqKind int

const (
	reqGame reqKind = iota + 1
	reqSync
)

type req struct {
	kind reqKind

	game    GameRow
	results []ResultRow
	done    chan struct{}
}

type GameRow struct {
	GameID       string `db:"game_id"`
	Seed         int64  `db:"seed"`
	Players      int    `db:"players"`
	Turns        int    `db:"turns"`
	Disqualified int    `db:"disqualified"`
	SnapshotPath string `db:"snapshot_path"`
	StartedAt    string `db:"started_at"`
	EndedAt      string `db:"ended_at"`
}

type ResultRow struct {
	GameID       string `db:"game_id"`
	PlayerID     int    `db:"player_id"`
	Name         string `db:"name"`
	Rank         int    `db:"rank"`
	Score        int    `db:"score"`
	Disqualified bool   `db:"disqualified"`
}

// LeaderRow aggregates results by player name.
type LeaderRow struct {
	Name   string `db:"name"`
	Games  int    `db:"games"`
	Wins   int    `db:"wins"`
	Best   int    `db:"best"`
	Total  int    `db:"total"`
	Faults int    `db:"faults"`
}

type Stats struct {
	QueueDepth    int
	QueueCapacity int
	DropGameTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 1024),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sqlx.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS games (
			game_id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			players INTEGER NOT NULL,
			turns INTEGER NOT NULL,
			disqualified INTEGER NOT NULL,
			snapshot_path TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_games_ended_at ON games(ended_at);`,
		`CREATE TABLE IF NOT EXISTS results (
			game_id TEXT NOT NULL REFERENCES games(game_id) ON DELETE CASCADE,
			player_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			rank INTEGER NOT NULL,
			score INTEGER NOT NULL,
			disqualified INTEGER NOT NULL,
			PRIMARY KEY (game_id, player_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_name ON results(name);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordGame queues a finished game. It never blocks; a full queue drops the
// row and counts it.
func (s *SQLiteIndex) RecordGame(g GameRow, results []ResultRow) {
	if s == nil || s.closed.Load() {
		return
	}
	if g.EndedAt == "" {
		g.EndedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	select {
	case s.ch <- req{kind: reqGame, game: g, results: results}:
	default:
		s.dropGame.Add(1)
	}
}

// Sync waits until every queued write before it has been committed.
func (s *SQLiteIndex) Sync(ctx context.Context) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	done := make(chan struct{})
	select {
	case s.ch <- req{kind: reqSync, done: done}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
		DropGameTotal: s.dropGame.Load(),
	}
}

func (s *SQLiteIndex) loop() {
	for r := range s.ch {
		switch r.kind {
		case reqGame:
			_ = s.writeGame(r.game, r.results)
		case reqSync:
			close(r.done)
		}
	}
}

func (s *SQLiteIndex) writeGame(g GameRow, results []ResultRow) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.NamedExec(`INSERT OR REPLACE INTO games(game_id,seed,players,turns,disqualified,snapshot_path,started_at,ended_at)
		VALUES(:game_id,:seed,:players,:turns,:disqualified,:snapshot_path,:started_at,:ended_at)`, g); err != nil {
		return err
	}
	for _, r := range results {
		r.GameID = g.GameID
		if _, err := tx.NamedExec(`INSERT OR REPLACE INTO results(game_id,player_id,name,rank,score,disqualified)
			VALUES(:game_id,:player_id,:name,:rank,:score,:disqualified)`, r); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// TopScores ranks players by wins, then best single-game score.
func (s *SQLiteIndex) TopScores(ctx context.Context, limit int) ([]LeaderRow, error) {
	var rows []LeaderRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT name,
			COUNT(*) AS games,
			SUM(CASE WHEN rank = 1 AND disqualified = 0 THEN 1 ELSE 0 END) AS wins,
			MAX(score) AS best,
			SUM(score) AS total,
			SUM(disqualified) AS faults
		FROM results
		GROUP BY name
		ORDER BY wins DESC, best DESC, name ASC
		LIMIT ?`, limit)
	return rows, err
}

func (s *SQLiteIndex) RecentGames(ctx context.Context, limit int) ([]GameRow, error) {
	var rows []GameRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT game_id, seed, players, turns, disqualified, snapshot_path, started_at, ended_at FROM games ORDER BY ended_at DESC, game_id ASC LIMIT ?",
		limit,
	)
	return rows, err
}

// Results returns a game's scoreboard; disqualified seats come last.
func (s *SQLiteIndex) Results(ctx context.Context, gameID string) ([]ResultRow, error) {
	var rows []ResultRow
	err := s.db.SelectContext(ctx, &rows,
		"SELECT game_id, player_id, name, rank, score, disqualified FROM results WHERE game_id = ? ORDER BY disqualified ASC, rank ASC, player_id ASC",
		gameID,
	)
	return rows, err
}

func (s *SQLiteIndex) Game(ctx context.Context, gameID string) (GameRow, bool, error) {
	var g GameRow
	err := s.db.GetContext(ctx, &g, "SELECT game_id, seed, players, turns, disqualified, snapshot_path, started_at, ended_at FROM games WHERE game_id = ?", gameID)
	if errors.Is(err, sql.ErrNoRows) {
		return g, false, nil
	}
	return g, err == nil, err
}
