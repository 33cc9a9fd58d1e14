package game

import "errors"

// TurnLogger receives one entry per completed turn.
type TurnLogger interface {
	LogTurn(e TurnLogEntry) error
}

// TurnLoggers fans each entry out to every logger in order. All loggers see
// the entry even if an earlier one fails.
type TurnLoggers []TurnLogger

func (ls TurnLoggers) LogTurn(e TurnLogEntry) error {
	var errs []error
	for _, l := range ls {
		if err := l.LogTurn(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type TurnLogEntry struct {
	Turn         int             `json:"turn"`
	Pool         int             `json:"watering_hole"`
	DeckSize     int             `json:"deck_size"`
	DiscardSize  int             `json:"discard_size"`
	Players      []PlayerSummary `json:"players"`
	Disqualified []int           `json:"disqualified,omitempty"`
}

type PlayerSummary struct {
	ID       int              `json:"id"`
	FoodBag  int              `json:"food_bag"`
	HandSize int              `json:"hand_size"`
	Species  []SpeciesSummary `json:"species"`
}

type SpeciesSummary struct {
	Population int      `json:"population"`
	Food       int      `json:"food"`
	Body       int      `json:"body"`
	FatStorage int      `json:"fat_storage,omitempty"`
	Traits     []string `json:"traits"`
}

func (d *Dealer) turnEntry(disqualified []int) TurnLogEntry {
	e := TurnLogEntry{
		Turn:         d.turn,
		Pool:         d.pool,
		DeckSize:     len(d.deck),
		DiscardSize:  len(d.discards),
		Disqualified: disqualified,
	}
	for _, p := range d.players {
		ps := PlayerSummary{ID: p.ID, FoodBag: p.FoodBag, HandSize: len(p.Hand)}
		for _, s := range p.Species {
			ss := SpeciesSummary{Population: s.Population, Food: s.Food, Body: s.Body, FatStorage: s.FatStorage}
			for _, t := range s.Traits {
				ss.Traits = append(ss.Traits, t.Kind.String())
			}
			ps.Species = append(ps.Species, ss)
		}
		e.Players = append(e.Players, ps)
	}
	return e
}
