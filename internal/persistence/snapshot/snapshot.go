package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"evolution.game/internal/sim/cards"
	"evolution.game/internal/sim/game"
	"evolution.game/internal/sim/tuning"
)

const Version = 1

type Header struct {
	Version   int       `json:"version"`
	GameID    string    `json:"game_id"`
	Turn      int       `json:"turn"`
	Seed      int64     `json:"seed"`
	WrittenAt time.Time `json:"written_at"`
}

type SnapshotV1 struct {
	Header Header `json:"header"`

	Tuning tuning.Tuning `json:"tuning"`

	Pool         int        `json:"watering_hole"`
	Deck         []CardV1   `json:"deck"`
	Discards     []CardV1   `json:"discards"`
	Players      []PlayerV1 `json:"players"`
	Disqualified []int      `json:"disqualified,omitempty"`
	Scores       []ScoreV1  `json:"scores,omitempty"`
}

type CardV1 struct {
	Trait string `json:"trait"`
	Food  int    `json:"food"`
	Bare  bool   `json:"bare,omitempty"`
}

type SpeciesV1 struct {
	Population int      `json:"population"`
	Food       int      `json:"food"`
	Body       int      `json:"body"`
	FatStorage int      `json:"fat_storage"`
	Traits     []CardV1 `json:"traits"`
}

type PlayerV1 struct {
	ID      int         `json:"id"`
	Name    string      `json:"name,omitempty"`
	FoodBag int         `json:"food_bag"`
	Hand    []CardV1    `json:"hand"`
	Species []SpeciesV1 `json:"species"`
}

type ScoreV1 struct {
	Rank     int `json:"rank"`
	PlayerID int `json:"player_id"`
	Score    int `json:"score"`
}

// Path is where a game's final snapshot lives under the data dir.
func Path(dataDir, gameID string) string {
	return filepath.Join(dataDir, "games", gameID, "final.snap.zst")
}

// Capture records the dealer state. names maps player id to display name
// and may be nil.
func Capture(h Header, d *game.Dealer, names map[int]string) SnapshotV1 {
	cfg := d.Config()
	h.Version = Version
	h.Turn = cfg.Turn
	snap := SnapshotV1{
		Header:       h,
		Tuning:       d.Tuning(),
		Pool:         cfg.Pool,
		Deck:         cardsV1(cfg.Deck),
		Discards:     cardsV1(cfg.Discards),
		Disqualified: d.Disqualified(),
	}
	for _, pc := range cfg.Players {
		pv := PlayerV1{ID: pc.ID, Name: names[pc.ID], FoodBag: pc.FoodBag, Hand: cardsV1(pc.Hand)}
		for _, s := range pc.Species {
			pv.Species = append(pv.Species, SpeciesV1{
				Population: s.Population,
				Food:       s.Food,
				Body:       s.Body,
				FatStorage: s.FatStorage,
				Traits:     cardsV1(s.Traits),
			})
		}
		snap.Players = append(snap.Players, pv)
	}
	for _, s := range d.Scores() {
		snap.Scores = append(snap.Scores, ScoreV1{Rank: s.Rank, PlayerID: s.PlayerID, Score: s.Score})
	}
	return snap
}

// Config rebuilds a detached dealer configuration. No decision-makers are
// attached; callers seat their own before running turns.
func (s SnapshotV1) Config() (game.Config, error) {
	cfg := game.Config{Turn: s.Header.Turn, Pool: s.Pool}
	var err error
	if cfg.Deck, err = cardsFromV1(s.Deck); err != nil {
		return cfg, fmt.Errorf("deck: %w", err)
	}
	if cfg.Discards, err = cardsFromV1(s.Discards); err != nil {
		return cfg, fmt.Errorf("discards: %w", err)
	}
	for _, pv := range s.Players {
		pc := game.PlayerConfig{ID: pv.ID, FoodBag: pv.FoodBag}
		if pc.Hand, err = cardsFromV1(pv.Hand); err != nil {
			return cfg, fmt.Errorf("player %d hand: %w", pv.ID, err)
		}
		for i, sv := range pv.Species {
			traits, err := cardsFromV1(sv.Traits)
			if err != nil {
				return cfg, fmt.Errorf("player %d species %d: %w", pv.ID, i, err)
			}
			pc.Species = append(pc.Species, game.Species{
				Population: sv.Population,
				Food:       sv.Food,
				Body:       sv.Body,
				FatStorage: sv.FatStorage,
				Traits:     traits,
			})
		}
		cfg.Players = append(cfg.Players, pc)
	}
	return cfg, nil
}

func cardsV1(cs []cards.TraitCard) []CardV1 {
	out := make([]CardV1, len(cs))
	for i, c := range cs {
		out[i] = CardV1{Trait: c.Kind.String(), Food: c.Food, Bare: c.Bare}
	}
	return out
}

func cardsFromV1(cs []CardV1) ([]cards.TraitCard, error) {
	out := make([]cards.TraitCard, len(cs))
	for i, c := range cs {
		k, err := cards.ParseKind(c.Trait)
		if err != nil {
			return nil, err
		}
		out[i] = cards.TraitCard{Kind: k, Food: c.Food, Bare: c.Bare}
	}
	return out, nil
}

func WriteSnapshot(path string, snap SnapshotV1) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, _ := json.Marshal(snap.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}

	if err := gob.NewEncoder(bw).Encode(&snap); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

// ReadHeader decodes only the JSON header line.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("header: %w", err)
	}
	return h, nil
}

func ReadSnapshot(path string) (SnapshotV1, error) {
	var snap SnapshotV1
	f, err := os.Open(path)
	if err != nil {
		return snap, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return snap, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 64*1024)

	// The gob body repeats the header.
	if _, err := br.ReadBytes('\n'); err != nil {
		return snap, fmt.Errorf("header: %w", err)
	}

	if err := gob.NewDecoder(br).Decode(&snap); err != nil {
		return snap, fmt.Errorf("gob decode: %w", err)
	}
	if snap.Header.Version != Version {
		return snap, fmt.Errorf("snapshot version %d, want %d", snap.Header.Version, Version)
	}
	return snap, nil
}
