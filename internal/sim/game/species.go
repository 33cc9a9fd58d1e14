package game

import (
	"fmt"
	"slices"

	"evolution.game/internal/sim/cards"
	"evolution.game/internal/sim/tuning"
)

// Species is one board on a player's side of the table.
// FatStorage is only meaningful while the species carries fat-tissue.
type Species struct {
	Population int
	Food       int
	Body       int
	Traits     []cards.TraitCard
	FatStorage int
}

// NewSpecies returns a fresh board: population 1, no food, body 0.
func NewSpecies(traits ...cards.TraitCard) *Species {
	return &Species{Population: 1, Traits: slices.Clone(traits)}
}

func (s *Species) Has(k cards.Kind) bool {
	for _, t := range s.Traits {
		if t.Kind == k {
			return true
		}
	}
	return false
}

func (s *Species) IsCarnivore() bool { return s.Has(cards.Carnivore) }

func (s *Species) Hungry() bool { return s.Food < s.Population }

// NeedsFat reports whether a fat-tissue species still has room in its store.
func (s *Species) NeedsFat() bool { return s.Has(cards.FatTissue) && s.FatStorage < s.Body }

// Attackable reports whether s can be attacked by attacker given s's board
// neighbors (nil when absent). Every blocking rule is checked independently.
func (s *Species) Attackable(attacker, left, right *Species, hardShellThreshold int) bool {
	if !attacker.IsCarnivore() {
		return false
	}
	warned := (left != nil && left.Has(cards.WarningCall)) || (right != nil && right.Has(cards.WarningCall))
	attackBody := attacker.Body
	if attacker.Has(cards.PackHunting) {
		attackBody += attacker.Population
	}
	blocked := []bool{
		s.Has(cards.Burrowing) && s.Food == s.Population,
		s.Has(cards.Climbing) && !attacker.Has(cards.Climbing),
		s.Has(cards.HardShell) && attackBody-s.Body < hardShellThreshold,
		s.Has(cards.Herding) && attacker.Population <= s.Population,
		s.Has(cards.Symbiosis) && right != nil && right.Body > s.Body,
		warned && !attacker.Has(cards.Ambush),
	}
	return !slices.Contains(blocked, true)
}

// Feed takes qty food from pool if the species is hungry and the pool is not empty.
// It returns the new pool.
func (s *Species) Feed(pool, qty int) int {
	if !s.Hungry() || pool <= 0 {
		return pool
	}
	n := min(qty, pool, s.Population-s.Food)
	s.Food += n
	return pool - n
}

// ReducePopulation applies one attack's worth of losses. Food never exceeds population.
func (s *Species) ReducePopulation(qty int) {
	s.Population = max(0, s.Population-qty)
	s.Food = min(s.Food, s.Population)
}

// MoveFat transfers stored fat into food, up to the population.
func (s *Species) MoveFat() {
	if !s.Has(cards.FatTissue) || s.FatStorage <= 0 {
		return
	}
	n := min(s.Population-s.Food, s.FatStorage)
	if n <= 0 {
		return
	}
	s.FatStorage -= n
	s.Food += n
}

// consolidate turns eaten food into next round's population and returns the
// food banked by the owner.
func (s *Species) consolidate() int {
	food := s.Food
	s.Population = food
	s.Food = 0
	return food
}

func (s *Species) replaceTrait(i int, c cards.TraitCard) cards.TraitCard {
	old := s.Traits[i]
	s.Traits[i] = c
	if !s.Has(cards.FatTissue) {
		s.FatStorage = 0
	}
	return old
}

func (s *Species) Clone() Species {
	c := *s
	c.Traits = slices.Clone(s.Traits)
	return c
}

// Validate checks attribute bounds and trait distinctness.
func (s *Species) Validate(t tuning.Tuning) error {
	switch {
	case s.Population < 0 || s.Population > t.MaxPopulation:
		return fmt.Errorf("population %d out of range [0,%d]", s.Population, t.MaxPopulation)
	case s.Food < 0 || s.Food > s.Population:
		return fmt.Errorf("food %d out of range [0,%d]", s.Food, s.Population)
	case s.Body < 0 || s.Body > t.MaxBody:
		return fmt.Errorf("body %d out of range [0,%d]", s.Body, t.MaxBody)
	case len(s.Traits) > t.MaxTraits:
		return fmt.Errorf("%d traits exceed max %d", len(s.Traits), t.MaxTraits)
	case s.FatStorage < 0 || s.FatStorage > s.Body:
		return fmt.Errorf("fat storage %d out of range [0,%d]", s.FatStorage, s.Body)
	case s.FatStorage > 0 && !s.Has(cards.FatTissue):
		return fmt.Errorf("fat storage %d without fat-tissue", s.FatStorage)
	}
	if !distinctKinds(s.Traits) {
		return fmt.Errorf("duplicate trait kinds in %v", s.Traits)
	}
	return nil
}

func distinctKinds(cs []cards.TraitCard) bool {
	seen := map[cards.Kind]bool{}
	for _, c := range cs {
		if seen[c.Kind] {
			return false
		}
		seen[c.Kind] = true
	}
	return true
}
