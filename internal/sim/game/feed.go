package game

import (
	"fmt"

	"evolution.game/internal/sim/cards"
)

// FeedSpecies feeds s, owned by p, from the watering hole. A foraging species
// eats a second time once per call chain; a cooperating species passes a feed
// on to its right neighbor.
func (d *Dealer) FeedSpecies(s *Species, p *PlayerState, allowForage bool) {
	if !s.Hungry() || d.pool <= 0 {
		return
	}
	d.pool = s.Feed(d.pool, d.tuning.FeedQuantity)

	if allowForage && s.Has(cards.Foraging) {
		d.FeedSpecies(s, p, false)
	}
	if s.Has(cards.Cooperation) {
		if r := p.rightOf(s); r != nil {
			d.FeedSpecies(r, p, true)
		}
	}
}

// HandleAttack resolves one attack. The defender always loses population;
// a horned defender wounds the attacker too.
func (d *Dealer) HandleAttack(attacker, defender *Species, attackerOwner, defenderOwner *PlayerState) {
	d.wound(defender, defenderOwner)
	if defender.Has(cards.Horns) {
		d.wound(attacker, attackerOwner)
	}
}

func (d *Dealer) wound(s *Species, owner *PlayerState) {
	s.ReducePopulation(d.tuning.KillQuantity)
	if s.Population >= 1 {
		return
	}
	if owner.removeSpecies(s) {
		d.discard(s.Traits...)
		d.deal(owner, d.tuning.ExtinctionCards)
	}
}

// HandleScavenging feeds every scavenger on the table, in ring order.
func (d *Dealer) HandleScavenging() {
	for _, p := range d.players {
		for _, s := range p.Species {
			if s.Has(cards.Scavenger) {
				d.FeedSpecies(s, p, true)
			}
		}
	}
}

// ApplyFeeding checks choice against p's state and applies it.
func (d *Dealer) ApplyFeeding(p *PlayerState, choice FeedingChoice) error {
	switch c := choice.(type) {
	case NoFeeding:
		p.Active = false
	case HerbivoreFeeding:
		s, err := speciesAt(p, c.Species)
		if err != nil {
			return err
		}
		if s.IsCarnivore() || !s.Hungry() {
			return fmt.Errorf("%w: species %d is not a hungry herbivore", ErrIllegalFeeding, c.Species)
		}
		d.FeedSpecies(s, p, true)
	case FatFeeding:
		s, err := speciesAt(p, c.Species)
		if err != nil {
			return err
		}
		if !s.NeedsFat() {
			return fmt.Errorf("%w: species %d cannot store fat", ErrIllegalFeeding, c.Species)
		}
		if limit := min(s.Body-s.FatStorage, d.pool); c.Amount < 1 || c.Amount > limit {
			return fmt.Errorf("%w: fat request %d not in [1,%d]", ErrIllegalFeeding, c.Amount, limit)
		}
		s.FatStorage += c.Amount
		d.pool -= c.Amount
	case CarnivoreFeeding:
		return d.applyCarnivore(p, c)
	case nil:
		return fmt.Errorf("%w: no choice", ErrIllegalFeeding)
	default:
		return fmt.Errorf("%w: unknown choice %T", ErrIllegalFeeding, choice)
	}
	return nil
}

func (d *Dealer) applyCarnivore(p *PlayerState, c CarnivoreFeeding) error {
	attacker, err := speciesAt(p, c.Attacker)
	if err != nil {
		return err
	}
	if !attacker.IsCarnivore() || !attacker.Hungry() {
		return fmt.Errorf("%w: species %d is not a hungry carnivore", ErrIllegalFeeding, c.Attacker)
	}
	others := d.others(p)
	if c.DefendingPlayer < 0 || c.DefendingPlayer >= len(others) {
		return fmt.Errorf("%w: defending player %d out of range [0,%d)", ErrIllegalFeeding, c.DefendingPlayer, len(others))
	}
	owner := others[c.DefendingPlayer]
	defender, err := speciesAt(owner, c.Defender)
	if err != nil {
		return err
	}
	left, right := owner.Neighbors(c.Defender)
	if !defender.Attackable(attacker, left, right, d.tuning.HardShellThreshold) {
		return fmt.Errorf("%w: player %d species %d is not attackable", ErrIllegalFeeding, owner.ID, c.Defender)
	}
	d.HandleAttack(attacker, defender, p, owner)
	if attacker.Population >= 1 {
		d.FeedSpecies(attacker, p, true)
		d.HandleScavenging()
	}
	return nil
}

func speciesAt(p *PlayerState, i int) (*Species, error) {
	if i < 0 || i >= len(p.Species) {
		return nil, fmt.Errorf("%w: player %d has no species %d", ErrIllegalFeeding, p.ID, i)
	}
	return p.Species[i], nil
}
