package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"evolution.game/internal/persistence/archive"
	"evolution.game/internal/persistence/indexdb"
	persistlog "evolution.game/internal/persistence/log"
	"evolution.game/internal/persistence/snapshot"
	"evolution.game/internal/sim/game"
	"evolution.game/internal/sim/tuning"
	"evolution.game/internal/strategy"
	"evolution.game/internal/transport/observer"
	"evolution.game/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		players    = flag.Int("players", 3, "number of seats at the table")
		localBots  = flag.Int("local_bots", 0, "seats filled by in-process greedy players (the rest wait for websocket clients)")
		seed       = flag.Int64("seed", 0, "deck shuffle seed (0: derive from the clock)")
		gameID     = flag.String("game", "", "game id (default: random uuid)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite game index")
		archiveOn  = flag.Bool("archive", false, "copy the finished game into <data>/archives/<day>/<game>")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[dealer] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if *players < tune.MinPlayers || *players > tune.MaxPlayers {
		logger.Fatalf("-players=%d: want %d..%d", *players, tune.MinPlayers, tune.MaxPlayers)
	}
	if *localBots < 0 || *localBots > *players {
		logger.Fatalf("-local_bots=%d: want 0..%d", *localBots, *players)
	}

	id := strings.TrimSpace(*gameID)
	if id == "" {
		id = uuid.NewString()
	}
	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}

	idx, err := openIndex(*dataDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index: %v", err)
	}
	if idx != nil {
		defer idx.Close()
	}

	ctx, cancel := signalContext()
	defer cancel()

	wsLogger := log.New(os.Stdout, "[ws] ", log.LstdFlags|log.Lmicroseconds)
	lobby := ws.NewLobby(id, *players-*localBots, tune.Transport, wsLogger)
	spectators := observer.NewServer(id, log.New(os.Stdout, "[observer] ", log.LstdFlags|log.Lmicroseconds))

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/ws", lobby.Handler())
	mux.HandleFunc("/admin/v1/observer/bootstrap", spectators.BootstrapHandler())
	mux.HandleFunc("/v1/observe", spectators.WSHandler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logger.Printf("game %s: listening on %s", id, *addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ListenAndServe: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		defer func() {
			ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel2()
			_ = srv.Shutdown(ctx2)
		}()
		return host(ctx, hostConfig{
			GameID:    id,
			Seed:      s,
			Seats:     *players,
			LocalBots: *localBots,
			DataDir:   *dataDir,
			Tuning:    tune,
			Lobby:     lobby,
			Observer:  spectators,
			Index:     idx,
			Archive:   *archiveOn,
			Logger:    logger,
		})
	})
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("%v", err)
	}
}

type hostConfig struct {
	GameID    string
	Seed      int64
	Seats     int
	LocalBots int
	DataDir   string
	Tuning    tuning.Tuning
	Lobby     *ws.Lobby
	Observer  *observer.Server
	Index     gameIndex
	Archive   bool
	Logger    *log.Logger
}

// host seats the table, plays the game to the end and records it.
func host(ctx context.Context, cfg hostConfig) error {
	defer cfg.Lobby.Close()
	if cfg.Observer != nil {
		defer cfg.Observer.Close()
	}

	var remotes []*ws.RemotePlayer
	if cfg.Seats > cfg.LocalBots {
		cfg.Logger.Printf("game %s: waiting for %d players", cfg.GameID, cfg.Seats-cfg.LocalBots)
		var err error
		if remotes, err = cfg.Lobby.Wait(ctx); err != nil {
			return err
		}
	}

	seats := ws.Players(remotes)
	names := map[int]string{}
	for _, r := range remotes {
		names[r.ID()] = r.Name()
	}
	for range cfg.LocalBots {
		seats = append(seats, strategy.NewGreedy(cfg.Tuning.HardShellThreshold))
		names[len(seats)] = fmt.Sprintf("greedy-%d", len(seats))
	}

	turns := persistlog.NewTurnLogger(cfg.DataDir, cfg.GameID)
	defer turns.Close()
	turnLog := game.TurnLoggers{turns}
	if cfg.Observer != nil {
		turnLog = append(turnLog, cfg.Observer)
	}

	started := time.Now()
	d, err := game.NewDealer(cfg.Tuning, seats, cfg.Seed, game.Options{Logger: cfg.Logger, TurnLog: turnLog})
	if err != nil {
		return err
	}
	cfg.Logger.Printf("game %s: seed=%d seats=%d", cfg.GameID, cfg.Seed, len(seats))

	scores, err := d.RunGame(ctx)
	if err != nil {
		return fmt.Errorf("game %s: %w", cfg.GameID, err)
	}
	for _, sc := range scores {
		cfg.Logger.Printf("game %s: #%d player %d (%s) score=%d", cfg.GameID, sc.Rank, sc.PlayerID, names[sc.PlayerID], sc.Score)
	}

	snapPath := snapshot.Path(cfg.DataDir, cfg.GameID)
	snap := snapshot.Capture(snapshot.Header{GameID: cfg.GameID, Seed: cfg.Seed, WrittenAt: time.Now().UTC()}, d, names)
	if err := snapshot.WriteSnapshot(snapPath, snap); err != nil {
		cfg.Logger.Printf("game %s: write snapshot: %v", cfg.GameID, err)
		snapPath = ""
	}
	turns.Close()
	if cfg.Archive && snapPath != "" {
		if dir, err := archive.ArchiveGame(cfg.DataDir, snapPath, persistlog.TurnsPath(cfg.DataDir, cfg.GameID), snap); err != nil {
			cfg.Logger.Printf("game %s: archive: %v", cfg.GameID, err)
		} else {
			cfg.Logger.Printf("game %s: archived to %s", cfg.GameID, dir)
		}
	}
	if cfg.Index != nil {
		cfg.Index.RecordGame(indexdb.Summarize(cfg.GameID, cfg.Seed, started, snapPath, d, names))
	}

	disq := d.Disqualified()
	for _, r := range remotes {
		if err := r.SendResult(scores, slices.Contains(disq, r.ID())); err != nil {
			cfg.Logger.Printf("game %s: result to player %d: %v", cfg.GameID, r.ID(), err)
		}
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
