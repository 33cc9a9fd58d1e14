package game

import (
	"context"
	"fmt"
	"slices"

	"evolution.game/internal/sim/cards"
)

// RunGame plays turns until GameOver and returns the final scoreboard.
// It stops early only when ctx is done.
func (d *Dealer) RunGame(ctx context.Context) ([]Score, error) {
	for !d.GameOver() {
		if err := ctx.Err(); err != nil {
			return d.Scores(), err
		}
		if err := d.RunTurn(ctx); err != nil {
			return d.Scores(), err
		}
	}
	return d.Scores(), nil
}

// GameOver reports whether the deck can no longer supply every player's deal,
// or too few players remain.
func (d *Dealer) GameOver() bool {
	if len(d.players) < d.tuning.MinPlayers {
		return true
	}
	need := 0
	for _, p := range d.players {
		need += p.DealAmount(d.tuning.DealAmount)
	}
	return len(d.deck) < need
}

// RunTurn plays one full turn: deal, choose, apply, reveal, feed, end turn.
// Afterwards the player seated after this turn's starter goes first.
func (d *Dealer) RunTurn(ctx context.Context) error {
	if len(d.players) == 0 {
		return fmt.Errorf("%w: no players left", ErrBadConfig)
	}
	for _, p := range d.players {
		if p.ext == nil {
			return fmt.Errorf("%w: player %d has no decision-maker", ErrBadConfig, p.ID)
		}
	}
	d.turn++
	before := len(d.disqualified)
	ring := make([]int, 0, len(d.players))
	for _, p := range d.players {
		ring = append(ring, p.ID)
	}

	d.Deal(ctx)
	actions := d.Choose(ctx)
	d.Apply(actions)
	d.Reveal()
	d.FeedLoop(ctx)
	d.EndTurn()
	d.reorder(ring)

	if d.turnLog != nil {
		if err := d.turnLog.LogTurn(d.turnEntry(slices.Clone(d.disqualified[before:]))); err != nil {
			d.log.Printf("turn %d: turn log: %v", d.turn, err)
		}
	}
	return ctx.Err()
}

// Deal hands every player its cards and a fresh board if it has none, then
// sends each its private state. A player whose Start fails is disqualified.
func (d *Dealer) Deal(ctx context.Context) {
	for _, p := range slices.Clone(d.players) {
		n := p.DealAmount(d.tuning.DealAmount)
		if len(p.Species) == 0 {
			p.Species = append(p.Species, NewSpecies())
		}
		d.deal(p, n)
		if err := p.ext.Start(ctx, d.pool, p.Snapshot()); err != nil {
			d.disqualify(p, fmt.Errorf("start: %w", err))
		}
	}
}

// Choose asks every player for its Action4. Each player sees the opponents
// seated before it as left and after it as right. Players whose Choose fails
// are disqualified once everyone has been asked.
func (d *Dealer) Choose(ctx context.Context) map[int]Action4 {
	out := make(map[int]Action4, len(d.players))
	var faulty []*PlayerState
	var faults []error
	for i, p := range d.players {
		left := publicViews(d.players[:i])
		right := publicViews(d.players[i+1:])
		a, err := p.ext.Choose(ctx, left, right)
		if err != nil {
			faulty = append(faulty, p)
			faults = append(faults, fmt.Errorf("choose: %w", err))
			continue
		}
		out[p.ID] = a
	}
	for i, p := range faulty {
		d.disqualify(p, faults[i])
	}
	return out
}

// Apply runs each player's Action4 in ring order. An illegal Action4
// disqualifies its player; actions already applied for others stand.
func (d *Dealer) Apply(actions map[int]Action4) {
	for _, p := range slices.Clone(d.players) {
		a, ok := actions[p.ID]
		if !ok {
			continue
		}
		if err := d.ApplyAction4(p, a); err != nil {
			d.disqualify(p, err)
		}
	}
}

// ApplyAction4 validates a against p and applies it. Nothing is changed when
// validation fails.
func (d *Dealer) ApplyAction4(p *PlayerState, a Action4) error {
	if err := a.Validate(p, d.tuning); err != nil {
		return fmt.Errorf("player %d: %w", p.ID, err)
	}
	var spent []cards.TraitCard
	for _, x := range a.Actions() {
		switch x := x.(type) {
		case FoodCardAction:
			d.pool += p.Hand[x.Card].Food
			spent = append(spent, p.Hand[x.Card])
		case AddSpeciesAction:
			p.addSpecies(x)
			spent = append(spent, p.Hand[x.Card])
		case GrowAction:
			p.growAttribute(x, d.tuning.GrowAmount)
			spent = append(spent, p.Hand[x.Card])
		case ReplaceTraitAction:
			d.discard(p.replaceTrait(x))
		}
	}
	d.discard(spent...)
	p.discardAll(a.HandIndices())
	d.pool = max(0, d.pool)
	return nil
}

// Reveal releases stored fat, grows fertile species and feeds long necks.
func (d *Dealer) Reveal() {
	for _, p := range d.players {
		for _, s := range p.Species {
			s.MoveFat()
		}
	}
	for _, p := range d.players {
		for _, s := range p.Species {
			if s.Has(cards.Fertile) {
				s.Population = min(s.Population+d.tuning.GrowAmount, d.tuning.MaxPopulation)
			}
		}
	}
	for _, p := range d.players {
		for _, s := range p.Species {
			if s.Has(cards.LongNeck) {
				d.FeedSpecies(s, p, true)
			}
		}
	}
}

// FeedLoop runs the feeding round until the watering hole is empty or
// nobody is active. The player at the front of the ring feeds, then moves to
// the back. An illegal or failed choice takes that player out of the round.
func (d *Dealer) FeedLoop(ctx context.Context) {
	for _, p := range d.players {
		p.Active = true
	}
	for d.pool > 0 && d.anyActive() {
		d.feed1(ctx)
	}
}

func (d *Dealer) anyActive() bool {
	return slices.ContainsFunc(d.players, func(p *PlayerState) bool { return p.Active })
}

func (d *Dealer) feed1(ctx context.Context) {
	p := d.players[0]
	if p.Active {
		others := publicViews(d.players[1:])
		choice, ok := p.AttemptAutoFeed(d.pool, others, d.tuning.HardShellThreshold)
		var err error
		if !ok {
			choice, err = p.ext.NextFeeding(ctx, p.Snapshot(), d.pool, others)
		}
		if err == nil {
			err = d.ApplyFeeding(p, choice)
		}
		if err != nil {
			d.log.Printf("turn %d: player %d feeding fault: %v", d.turn, p.ID, err)
			p.Active = false
		}
	}
	d.players = append(d.players[1:], p)
}

// EndTurn banks food, consolidates populations and pays out extinction cards.
func (d *Dealer) EndTurn() {
	for _, p := range d.players {
		owed, lost := p.EndTurn(d.tuning.ExtinctionCards)
		d.discard(lost...)
		d.deal(p, owed)
	}
}

// reorder rotates the ring so the first surviving player after ring[0] leads.
func (d *Dealer) reorder(ring []int) {
	if len(d.players) == 0 || len(ring) == 0 {
		return
	}
	for k := 1; k <= len(ring); k++ {
		id := ring[k%len(ring)]
		i := slices.IndexFunc(d.players, func(p *PlayerState) bool { return p.ID == id })
		if i >= 0 {
			d.players = slices.Concat(d.players[i:], d.players[:i])
			return
		}
	}
}
