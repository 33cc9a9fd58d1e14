// Package strategy holds the reference decision-maker used by bots and by
// in-process seats. It plays greedily and never reasons ahead.
package strategy

import (
	"cmp"
	"context"
	"slices"

	"evolution.game/internal/sim/cards"
	"evolution.game/internal/sim/game"
)

// Greedy sorts its hand and spends it on one new species each turn. When
// asked to feed it prefers fat stores, then herbivores, then the largest
// carnivore that has a target.
type Greedy struct {
	hardShellThreshold int
	self               game.PlayerSnapshot
}

var _ game.Player = (*Greedy)(nil)

func NewGreedy(hardShellThreshold int) *Greedy {
	return &Greedy{hardShellThreshold: hardShellThreshold}
}

func (g *Greedy) Start(_ context.Context, _ int, self game.PlayerSnapshot) error {
	g.self = self
	return nil
}

// Choose plays the lowest card as food, the next two as a new species with
// one trait, and up to three more as population, body and a trait swap on
// that species.
func (g *Greedy) Choose(_ context.Context, _, _ []game.PublicPlayer) (game.Action4, error) {
	order := handOrder(g.self.Hand)
	var a game.Action4
	if len(order) == 0 {
		return a, nil
	}
	a.FoodCard = &game.FoodCardAction{Card: order[0]}
	if len(order) < 3 {
		return a, nil
	}
	a.AddSpecies = []game.AddSpeciesAction{{Card: order[1], Traits: []int{order[2]}}}
	fresh := len(g.self.Species)
	if len(order) > 3 {
		a.GrowPopulation = []game.GrowAction{{Species: fresh, Card: order[3]}}
	}
	if len(order) > 4 {
		a.GrowBody = []game.GrowAction{{Species: fresh, Card: order[4]}}
	}
	if len(order) > 5 {
		a.ReplaceTrait = []game.ReplaceTraitAction{{Species: fresh, Trait: 0, Card: order[5]}}
	}
	return a, nil
}

// handOrder returns hand indices sorted by card.
func handOrder(hand []cards.TraitCard) []int {
	idx := make([]int, len(hand))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return cards.Compare(hand[a], hand[b]) })
	return idx
}

func (g *Greedy) NextFeeding(_ context.Context, self game.PlayerSnapshot, pool int, others []game.PublicPlayer) (game.FeedingChoice, error) {
	g.self = self
	board := self.SpeciesRefs()

	var fats, herbs, carns []*game.Species
	for _, s := range board {
		if s.NeedsFat() {
			fats = append(fats, s)
		}
		if s.Hungry() {
			if s.IsCarnivore() {
				carns = append(carns, s)
			} else {
				herbs = append(herbs, s)
			}
		}
	}

	if len(fats) > 0 {
		f := neediestFat(fats)
		return game.FatFeeding{Species: slices.Index(board, f), Amount: min(f.Body-f.FatStorage, pool)}, nil
	}
	if len(herbs) > 0 {
		return game.HerbivoreFeeding{Species: slices.Index(board, bySize(herbs)[0])}, nil
	}
	for _, c := range bySize(carns) {
		targets := game.AttackTargets(c, others, g.hardShellThreshold)
		if len(targets) == 0 {
			continue
		}
		defenders := make([]*game.Species, len(targets))
		for i, t := range targets {
			defenders[i] = others[t.Player].Species[t.Species]
		}
		pick := slices.Index(defenders, bySize(defenders)[0])
		return game.CarnivoreFeeding{
			Attacker:        slices.Index(board, c),
			DefendingPlayer: targets[pick].Player,
			Defender:        targets[pick].Species,
		}, nil
	}
	return game.NoFeeding{}, nil
}

// bySize orders species largest first by population, food then body.
// Earlier entries win ties.
func bySize(ss []*game.Species) []*game.Species {
	out := slices.Clone(ss)
	slices.SortStableFunc(out, func(a, b *game.Species) int {
		if c := cmp.Compare(b.Population, a.Population); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Food, a.Food); c != 0 {
			return c
		}
		return cmp.Compare(b.Body, a.Body)
	})
	return out
}

func neediestFat(fats []*game.Species) *game.Species {
	need := func(s *game.Species) int { return s.Body - s.FatStorage }
	most := need(slices.MaxFunc(fats, func(a, b *game.Species) int { return cmp.Compare(need(a), need(b)) }))
	var top []*game.Species
	for _, s := range fats {
		if need(s) == most {
			top = append(top, s)
		}
	}
	return bySize(top)[0]
}
