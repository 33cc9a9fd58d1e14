package game

import (
	"cmp"
	"fmt"
	"io"
	"log"
	"math/rand"
	"slices"

	"evolution.game/internal/sim/cards"
	"evolution.game/internal/sim/tuning"
)

type Options struct {
	// Logger receives disqualifications and protocol faults. Nil discards them.
	Logger *log.Logger
	// TurnLog, when set, is handed a summary after every turn.
	TurnLog TurnLogger
}

// PlayerConfig describes one seat when building a dealer from explicit state.
type PlayerConfig struct {
	ID      int
	FoodBag int
	Hand    []cards.TraitCard
	Species []Species
	Player  Player
}

// Config is a complete, detached dealer state.
type Config struct {
	Turn     int
	Players  []PlayerConfig
	Pool     int
	Deck     []cards.TraitCard
	Discards []cards.TraitCard
}

// Dealer owns the table and drives the turn state machine. players is a ring;
// index 0 acts next. A Dealer is not safe for concurrent use.
type Dealer struct {
	tuning tuning.Tuning

	turn     int
	players  []*PlayerState
	pool     int
	deck     []cards.TraitCard
	discards []cards.TraitCard

	disqualified []int

	log     *log.Logger
	turnLog TurnLogger
}

func (o Options) logger() *log.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return log.New(io.Discard, "", 0)
}

// NewDealer seats players with ids 1..n and a freshly shuffled canonical deck.
func NewDealer(t tuning.Tuning, players []Player, seed int64, opts Options) (*Dealer, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadConfig, err)
	}
	if n := len(players); n < t.MinPlayers || n > t.MaxPlayers {
		return nil, fmt.Errorf("%w: %d players, want %d..%d", ErrBadConfig, n, t.MinPlayers, t.MaxPlayers)
	}
	bounds := cards.BoundsFrom(t)
	d := &Dealer{
		tuning:  t,
		deck:    cards.Shuffle(bounds.Deck(), rand.New(rand.NewSource(seed))),
		log:     opts.logger(),
		turnLog: opts.TurnLog,
	}
	for i, p := range players {
		if p == nil {
			return nil, fmt.Errorf("%w: player %d is nil", ErrBadConfig, i+1)
		}
		d.players = append(d.players, &PlayerState{ID: i + 1, Active: true, ext: p})
	}
	return d, nil
}

// NewDealerFromConfig builds a dealer from explicit state and validates it.
// The cards in cfg need not make up a full deck, but none may repeat.
func NewDealerFromConfig(t tuning.Tuning, cfg Config, opts Options) (*Dealer, error) {
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadConfig, err)
	}
	if err := ValidateConfig(t, cfg); err != nil {
		return nil, err
	}
	d := &Dealer{
		tuning:   t,
		turn:     cfg.Turn,
		pool:     cfg.Pool,
		deck:     slices.Clone(cfg.Deck),
		discards: slices.Clone(cfg.Discards),
		log:      opts.logger(),
		turnLog:  opts.TurnLog,
	}
	for _, pc := range cfg.Players {
		ps := &PlayerState{
			ID:      pc.ID,
			FoodBag: pc.FoodBag,
			Hand:    slices.Clone(pc.Hand),
			Active:  true,
			ext:     pc.Player,
		}
		for _, s := range pc.Species {
			c := s.Clone()
			ps.Species = append(ps.Species, &c)
		}
		d.players = append(d.players, ps)
	}
	return d, nil
}

// ValidateConfig checks cfg for setup violations: player count, ids, species
// bounds, pool, deck size and duplicate or out-of-range cards.
func ValidateConfig(t tuning.Tuning, cfg Config) error {
	bounds := cards.BoundsFrom(t)
	if n := len(cfg.Players); n < t.MinPlayers || n > t.MaxPlayers {
		return fmt.Errorf("%w: %d players, want %d..%d", ErrBadConfig, n, t.MinPlayers, t.MaxPlayers)
	}
	if cfg.Pool < 0 {
		return fmt.Errorf("%w: watering hole %d < 0", ErrBadConfig, cfg.Pool)
	}
	if len(cfg.Deck) > bounds.DeckSize() {
		return fmt.Errorf("%w: deck of %d exceeds %d cards", ErrBadConfig, len(cfg.Deck), bounds.DeckSize())
	}
	ids := map[int]bool{}
	groups := [][]cards.TraitCard{cfg.Deck, cfg.Discards}
	for _, pc := range cfg.Players {
		if ids[pc.ID] {
			return fmt.Errorf("%w: duplicate player id %d", ErrBadConfig, pc.ID)
		}
		ids[pc.ID] = true
		ps := PlayerState{ID: pc.ID, FoodBag: pc.FoodBag, Hand: pc.Hand}
		for i := range pc.Species {
			ps.Species = append(ps.Species, &pc.Species[i])
		}
		if err := ps.Validate(t); err != nil {
			return fmt.Errorf("%w: %w", ErrBadConfig, err)
		}
		for _, c := range pc.Hand {
			if c.Bare {
				return fmt.Errorf("%w: player %d holds a card without food value", ErrBadConfig, pc.ID)
			}
		}
		groups = append(groups, pc.Hand, ps.boardCards())
	}
	if err := bounds.CheckUnique(groups...); err != nil {
		return fmt.Errorf("%w: %w", ErrBadConfig, err)
	}
	return nil
}

// CheckConservation reports whether the cards in cfg make up exactly one
// canonical deck. Bare board traits are not deck cards and are ignored.
func CheckConservation(t tuning.Tuning, cfg Config) error {
	bounds := cards.BoundsFrom(t)
	var all []cards.TraitCard
	add := func(cs []cards.TraitCard) {
		for _, c := range cs {
			if !c.Bare {
				all = append(all, c)
			}
		}
	}
	add(cfg.Deck)
	add(cfg.Discards)
	for _, pc := range cfg.Players {
		add(pc.Hand)
		for _, s := range pc.Species {
			add(s.Traits)
		}
	}
	if err := bounds.CheckUnique(all); err != nil {
		return err
	}
	if !slices.Equal(cards.Sorted(all), bounds.Deck()) {
		return fmt.Errorf("%d cards on the table, want %d", len(all), bounds.DeckSize())
	}
	return nil
}

func (d *Dealer) Tuning() tuning.Tuning { return d.tuning }

func (d *Dealer) Turn() int { return d.turn }

func (d *Dealer) Pool() int { return d.pool }

func (d *Dealer) DeckSize() int { return len(d.deck) }

// Players returns the live player states in ring order.
func (d *Dealer) Players() []*PlayerState { return slices.Clone(d.players) }

// Disqualified lists the ids of players removed for faulty turns, in removal order.
func (d *Dealer) Disqualified() []int { return slices.Clone(d.disqualified) }

// Config returns a detached copy of the dealer state.
func (d *Dealer) Config() Config {
	cfg := Config{
		Turn:     d.turn,
		Pool:     d.pool,
		Deck:     slices.Clone(d.deck),
		Discards: slices.Clone(d.discards),
	}
	for _, p := range d.players {
		snap := p.Snapshot()
		cfg.Players = append(cfg.Players, PlayerConfig{
			ID:      snap.ID,
			FoodBag: snap.FoodBag,
			Hand:    snap.Hand,
			Species: snap.Species,
			Player:  p.ext,
		})
	}
	return cfg
}

func (d *Dealer) CheckConservation() error {
	return CheckConservation(d.tuning, d.Config())
}

// deal moves up to n cards from the deck head into p's hand.
func (d *Dealer) deal(p *PlayerState, n int) {
	n = min(n, len(d.deck))
	p.Hand = append(p.Hand, d.deck[:n]...)
	d.deck = slices.Delete(d.deck, 0, n)
}

func (d *Dealer) discard(cs ...cards.TraitCard) {
	for _, c := range cs {
		if !c.Bare {
			d.discards = append(d.discards, c)
		}
	}
}

// others returns every player but p, in ring order starting after p.
func (d *Dealer) others(p *PlayerState) []*PlayerState {
	i := slices.Index(d.players, p)
	if i < 0 {
		return slices.Clone(d.players)
	}
	out := make([]*PlayerState, 0, len(d.players)-1)
	out = append(out, d.players[i+1:]...)
	return append(out, d.players[:i]...)
}

func publicViews(ps []*PlayerState) []PublicPlayer {
	out := make([]PublicPlayer, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Public())
	}
	return out
}

// disqualify removes p from the table. Its hand and boards go to the discard pile.
func (d *Dealer) disqualify(p *PlayerState, reason error) {
	i := slices.Index(d.players, p)
	if i < 0 {
		return
	}
	d.log.Printf("turn %d: player %d disqualified: %v", d.turn, p.ID, reason)
	d.discard(p.Hand...)
	d.discard(p.boardCards()...)
	p.Hand, p.Species, p.Active = nil, nil, false
	d.players = slices.Delete(d.players, i, i+1)
	d.disqualified = append(d.disqualified, p.ID)
}

// Score is one line of the final scoreboard.
type Score struct {
	Rank     int
	PlayerID int
	Score    int
}

// Scores ranks the seated players by score, highest first, ties by id.
func (d *Dealer) Scores() []Score {
	out := make([]Score, 0, len(d.players))
	for _, p := range d.players {
		out = append(out, Score{PlayerID: p.ID, Score: p.Score()})
	}
	slices.SortFunc(out, func(a, b Score) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
