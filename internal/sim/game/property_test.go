package game

import (
	"context"
	"testing"

	"pgregory.net/rapid"

	"evolution.game/internal/sim/cards"
	"evolution.game/internal/sim/tuning"
)

// chaosPlayer plays random card combinations and random feedings, some of
// them illegal.
type chaosPlayer struct {
	t    *rapid.T
	self PlayerSnapshot
}

func (c *chaosPlayer) Start(_ context.Context, _ int, self PlayerSnapshot) error {
	c.self = self
	return nil
}

func (c *chaosPlayer) Choose(_ context.Context, _, _ []PublicPlayer) (Action4, error) {
	n := len(c.self.Hand)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	free := rapid.Permutation(idx).Draw(c.t, "hand order")
	take := func() int {
		if rapid.IntRange(0, 29).Draw(c.t, "cheat") == 0 {
			return rapid.IntRange(-1, n).Draw(c.t, "bad card")
		}
		if len(free) == 0 {
			return n
		}
		i := free[0]
		free = free[1:]
		return i
	}
	boards := len(c.self.Species)
	board := func() int { return rapid.IntRange(0, boards).Draw(c.t, "board") }

	var a Action4
	if n > 0 && rapid.Bool().Draw(c.t, "food card") {
		a.FoodCard = &FoodCardAction{Card: take()}
	}
	for range rapid.IntRange(0, 1).Draw(c.t, "adds") {
		add := AddSpeciesAction{Card: take()}
		for range rapid.IntRange(0, 2).Draw(c.t, "traits") {
			add.Traits = append(add.Traits, take())
		}
		a.AddSpecies = append(a.AddSpecies, add)
		boards++
	}
	for range rapid.IntRange(0, 2).Draw(c.t, "grow population") {
		a.GrowPopulation = append(a.GrowPopulation, GrowAction{Species: board(), Card: take()})
	}
	for range rapid.IntRange(0, 1).Draw(c.t, "grow body") {
		a.GrowBody = append(a.GrowBody, GrowAction{Species: board(), Card: take()})
	}
	for range rapid.IntRange(0, 1).Draw(c.t, "replace") {
		a.ReplaceTrait = append(a.ReplaceTrait, ReplaceTraitAction{
			Species: board(),
			Trait:   rapid.IntRange(0, 2).Draw(c.t, "trait"),
			Card:    take(),
		})
	}
	return a, nil
}

func (c *chaosPlayer) NextFeeding(_ context.Context, self PlayerSnapshot, pool int, others []PublicPlayer) (FeedingChoice, error) {
	for _, s := range self.Species {
		if s.Food < 0 || s.Food > s.Population {
			c.t.Fatalf("player %d sees food %d with population %d", self.ID, s.Food, s.Population)
		}
	}
	n := len(self.Species)
	species := func(label string) int { return rapid.IntRange(0, max(0, n-1)).Draw(c.t, label) }
	switch rapid.IntRange(0, 3).Draw(c.t, "feeding kind") {
	case 0:
		return NoFeeding{}, nil
	case 1:
		return HerbivoreFeeding{Species: species("herbivore")}, nil
	case 2:
		return FatFeeding{Species: species("fat"), Amount: rapid.IntRange(0, max(1, pool)).Draw(c.t, "amount")}, nil
	}
	op := rapid.IntRange(0, max(0, len(others)-1)).Draw(c.t, "defending player")
	def := 0
	if op < len(others) {
		def = rapid.IntRange(0, max(0, len(others[op].Species)-1)).Draw(c.t, "defender")
	}
	return CarnivoreFeeding{Attacker: species("attacker"), DefendingPlayer: op, Defender: def}, nil
}

func checkTable(t *rapid.T, d *Dealer) {
	if err := d.CheckConservation(); err != nil {
		t.Fatalf("turn %d: conservation: %v", d.turn, err)
	}
	if d.pool < 0 {
		t.Fatalf("turn %d: negative watering hole %d", d.turn, d.pool)
	}
	for _, p := range d.players {
		for i, s := range p.Species {
			if s.Population < 1 || s.Food < 0 || s.Food > s.Population {
				t.Fatalf("turn %d: player %d species %d pop=%d food=%d", d.turn, p.ID, i, s.Population, s.Food)
			}
			if err := s.Validate(d.tuning); err != nil {
				t.Fatalf("turn %d: player %d species %d: %v", d.turn, p.ID, i, err)
			}
		}
	}
}

func TestProperty_GamesConserveCards(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(3, 8).Draw(t, "players")
		players := make([]Player, n)
		for i := range players {
			players[i] = &chaosPlayer{t: t}
		}
		d, err := NewDealer(tuning.Defaults(), players, rapid.Int64().Draw(t, "seed"), Options{})
		if err != nil {
			t.Fatalf("NewDealer: %v", err)
		}
		checkTable(t, d)
		for turns := 0; !d.GameOver(); turns++ {
			if turns > 50 {
				t.Fatalf("game did not end")
			}
			if err := d.RunTurn(context.Background()); err != nil {
				t.Fatalf("RunTurn: %v", err)
			}
			checkTable(t, d)
		}
		scores := d.Scores()
		for i := 1; i < len(scores); i++ {
			if scores[i-1].Score < scores[i].Score {
				t.Fatalf("scoreboard out of order: %v", scores)
			}
		}
	})
}

func TestProperty_AttackRemovesOnePopulation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pop := rapid.IntRange(1, 7).Draw(t, "population")
		food := rapid.IntRange(0, pop).Draw(t, "food")
		horns := rapid.Bool().Draw(t, "horns")
		defender := sp(pop, food, rapid.IntRange(0, 7).Draw(t, "body"))
		if horns {
			defender.Traits = append(defender.Traits, bare(cards.Horns))
		}
		attacker := sp(rapid.IntRange(1, 7).Draw(t, "attacker population"), 0, 0, cards.Carnivore)
		attackerPop := attacker.Population
		p1, p2 := ps(1, attacker), ps(2, defender)
		d := newTable(0, p1, p2, ps(3))
		d.deck = cards.BoundsFrom(d.tuning).Deck()

		d.HandleAttack(attacker, defender, p1, p2)

		if defender.Population != pop-1 {
			t.Fatalf("defender pop %d -> %d", pop, defender.Population)
		}
		if defender.Food > defender.Population {
			t.Fatalf("defender food %d > pop %d", defender.Food, defender.Population)
		}
		if (pop == 1) != (len(p2.Species) == 0) {
			t.Fatalf("extinction mismatch: pop=%d boards=%d", pop, len(p2.Species))
		}
		wantAttacker := attackerPop
		if horns {
			wantAttacker--
		}
		if attacker.Population != wantAttacker {
			t.Fatalf("attacker pop %d -> %d (horns=%v)", attackerPop, attacker.Population, horns)
		}
	})
}
