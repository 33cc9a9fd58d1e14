package game

import (
	"fmt"
	"slices"

	"evolution.game/internal/sim/cards"
	"evolution.game/internal/sim/tuning"
)

// PlayerState is the dealer's private record of one seat. Species order is
// the board order; left/right neighbors are defined by it.
type PlayerState struct {
	ID      int
	FoodBag int
	Hand    []cards.TraitCard
	Species []*Species
	Active  bool

	ext Player
}

func (p *PlayerState) Player() Player { return p.ext }

func (p *PlayerState) indexOf(s *Species) int {
	return slices.Index(p.Species, s)
}

// Neighbors returns the boards left and right of index i (nil when absent).
func (p *PlayerState) Neighbors(i int) (left, right *Species) {
	return neighbors(p.Species, i)
}

func neighbors(board []*Species, i int) (left, right *Species) {
	if i > 0 {
		left = board[i-1]
	}
	if i+1 < len(board) {
		right = board[i+1]
	}
	return left, right
}

func (p *PlayerState) rightOf(s *Species) *Species {
	i := p.indexOf(s)
	if i < 0 {
		return nil
	}
	_, r := p.Neighbors(i)
	return r
}

// HungrySpecies returns hungry species of the requested diet class.
func (p *PlayerState) HungrySpecies(carnivores bool) []*Species {
	var out []*Species
	for _, s := range p.Species {
		if s.IsCarnivore() == carnivores && s.Hungry() {
			out = append(out, s)
		}
	}
	return out
}

// NeedyFats returns fat-tissue species whose store is below body size.
func (p *PlayerState) NeedyFats() []*Species {
	var out []*Species
	for _, s := range p.Species {
		if s.NeedsFat() {
			out = append(out, s)
		}
	}
	return out
}

// Target identifies a defender: player index into the opponents list, species index on that board.
type Target struct {
	Player  int
	Species int
}

// AttackTargets lists every opponent species attacker may attack.
func AttackTargets(attacker *Species, others []PublicPlayer, hardShellThreshold int) []Target {
	var out []Target
	for pi, o := range others {
		for si, d := range o.Species {
			if d == attacker {
				continue
			}
			l, r := neighbors(o.Species, si)
			if d.Attackable(attacker, l, r, hardShellThreshold) {
				out = append(out, Target{Player: pi, Species: si})
			}
		}
	}
	return out
}

// AttemptAutoFeed returns the feeding the engine can decide on the player's
// behalf. ok is false when the situation is ambiguous and the player must be asked.
func (p *PlayerState) AttemptAutoFeed(pool int, others []PublicPlayer, hardShellThreshold int) (choice FeedingChoice, ok bool) {
	fats := p.NeedyFats()
	herbs := p.HungrySpecies(false)
	carns := p.HungrySpecies(true)
	switch {
	case len(fats) == 0 && len(herbs) == 0 && len(carns) == 0:
		return NoFeeding{}, true
	case len(fats) == 1 && len(herbs) == 0 && len(carns) == 0:
		f := fats[0]
		return FatFeeding{Species: p.indexOf(f), Amount: min(f.Body-f.FatStorage, pool)}, true
	case len(herbs) == 1 && len(fats) == 0 && len(carns) == 0:
		return HerbivoreFeeding{Species: p.indexOf(herbs[0])}, true
	case len(carns) == 1 && len(fats) == 0 && len(herbs) == 0:
		return p.carnivoreAutoFeeding(carns[0], others, hardShellThreshold)
	}
	return nil, false
}

func (p *PlayerState) carnivoreAutoFeeding(c *Species, others []PublicPlayer, hardShellThreshold int) (FeedingChoice, bool) {
	targets := AttackTargets(c, others, hardShellThreshold)
	switch len(targets) {
	case 0:
		return NoFeeding{}, true
	case 1:
		return CarnivoreFeeding{
			Attacker:        p.indexOf(c),
			DefendingPlayer: targets[0].Player,
			Defender:        targets[0].Species,
		}, true
	}
	return nil, false
}

// DealAmount is how many cards the player receives at the start of a turn.
func (p *PlayerState) DealAmount(dealAmount int) int {
	return dealAmount + max(1, len(p.Species))
}

func (p *PlayerState) growAttribute(g GrowAction, amount int) {
	s := p.Species[g.Species]
	switch g.Attribute {
	case Population:
		s.Population += amount
	case Body:
		s.Body += amount
	}
}

func (p *PlayerState) addSpecies(a AddSpeciesAction) {
	traits := make([]cards.TraitCard, 0, len(a.Traits))
	for _, i := range a.Traits {
		traits = append(traits, p.Hand[i])
	}
	p.Species = append(p.Species, NewSpecies(traits...))
}

func (p *PlayerState) replaceTrait(r ReplaceTraitAction) cards.TraitCard {
	return p.Species[r.Species].replaceTrait(r.Trait, p.Hand[r.Card])
}

// discardAll removes the given hand indices at once, keeping the order of the rest.
func (p *PlayerState) discardAll(indices []int) {
	drop := map[int]bool{}
	for _, i := range indices {
		drop[i] = true
	}
	kept := p.Hand[:0:0]
	for i, c := range p.Hand {
		if !drop[i] {
			kept = append(kept, c)
		}
	}
	p.Hand = kept
}

// EndTurn banks each species' food, turns it into next round's population and
// removes extinct species. It returns the replacement cards owed and the trait
// cards that left the table with the extinct boards.
func (p *PlayerState) EndTurn(extinctionCards int) (owed int, lost []cards.TraitCard) {
	survivors := p.Species[:0:0]
	for _, s := range p.Species {
		p.FoodBag += s.consolidate()
		if s.Population <= 0 {
			owed += extinctionCards
			lost = append(lost, s.Traits...)
			continue
		}
		survivors = append(survivors, s)
	}
	p.Species = survivors
	return owed, lost
}

// removeSpecies drops s from the board after an attack wiped it out.
func (p *PlayerState) removeSpecies(s *Species) bool {
	i := p.indexOf(s)
	if i < 0 {
		return false
	}
	p.Species = slices.Delete(p.Species, i, i+1)
	return true
}

// Score is the banked food plus population and trait count of every board.
func (p *PlayerState) Score() int {
	score := p.FoodBag
	for _, s := range p.Species {
		score += s.Population + len(s.Traits)
	}
	return score
}

func (p *PlayerState) Public() PublicPlayer {
	return PublicPlayer{ID: p.ID, Species: p.Species}
}

func (p *PlayerState) Snapshot() PlayerSnapshot {
	snap := PlayerSnapshot{
		ID:      p.ID,
		FoodBag: p.FoodBag,
		Hand:    slices.Clone(p.Hand),
		Species: make([]Species, 0, len(p.Species)),
	}
	for _, s := range p.Species {
		snap.Species = append(snap.Species, s.Clone())
	}
	return snap
}

func (p *PlayerState) Validate(t tuning.Tuning) error {
	if p.ID < 1 {
		return fmt.Errorf("player id %d must be >= 1", p.ID)
	}
	if p.FoodBag < 0 {
		return fmt.Errorf("player %d: food bag %d < 0", p.ID, p.FoodBag)
	}
	for i, s := range p.Species {
		if err := s.Validate(t); err != nil {
			return fmt.Errorf("player %d species %d: %w", p.ID, i, err)
		}
		if s.Population == 0 {
			return fmt.Errorf("player %d species %d: extinct species on board", p.ID, i)
		}
	}
	return nil
}

// boardCards returns every trait card on the player's boards.
func (p *PlayerState) boardCards() []cards.TraitCard {
	var out []cards.TraitCard
	for _, s := range p.Species {
		out = append(out, s.Traits...)
	}
	return out
}
