package game

import (
	"errors"
	"slices"
	"testing"

	"evolution.game/internal/sim/cards"
	"evolution.game/internal/sim/tuning"
)

func handOf(cs ...cards.TraitCard) []cards.TraitCard { return cs }

func TestActions_Order(t *testing.T) {
	a := Action4{
		FoodCard:       &FoodCardAction{Card: 0},
		GrowPopulation: []GrowAction{{Species: 0, Card: 1}},
		GrowBody:       []GrowAction{{Species: 0, Card: 2}},
		AddSpecies:     []AddSpeciesAction{{Card: 3, Traits: []int{4}}},
		ReplaceTrait:   []ReplaceTraitAction{{Species: 0, Trait: 0, Card: 5}},
	}
	got := a.Actions()
	want := []Action{
		FoodCardAction{Card: 0},
		AddSpeciesAction{Card: 3, Traits: []int{4}},
		GrowAction{Attribute: Population, Species: 0, Card: 1},
		GrowAction{Attribute: Body, Species: 0, Card: 2},
		ReplaceTraitAction{Species: 0, Trait: 0, Card: 5},
	}
	if len(got) != len(want) {
		t.Fatalf("actions=%v", got)
	}
	for i := range want {
		if add, ok := want[i].(AddSpeciesAction); ok {
			g, ok := got[i].(AddSpeciesAction)
			if !ok || g.Card != add.Card || !slices.Equal(g.Traits, add.Traits) {
				t.Fatalf("action %d=%v want %v", i, got[i], want[i])
			}
			continue
		}
		if got[i] != want[i] {
			t.Fatalf("action %d=%v want %v", i, got[i], want[i])
		}
	}
	if idx := a.HandIndices(); !slices.Equal(idx, []int{0, 3, 4, 1, 2, 5}) {
		t.Fatalf("hand indices=%v", idx)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tu := tuning.Defaults()
	p := ps(1, sp(7, 0, 7, cards.Horns, cards.Fertile))
	p.Hand = handOf(
		cards.New(cards.Ambush, 0),
		cards.New(cards.Burrowing, 0),
		cards.New(cards.Climbing, 0),
		cards.New(cards.Horns, 2),
		cards.New(cards.Foraging, 1),
		cards.New(cards.Scavenger, 1),
	)
	cases := map[string]Action4{
		"out of range":        {FoodCard: &FoodCardAction{Card: 6}},
		"negative":            {FoodCard: &FoodCardAction{Card: -1}},
		"card used twice":     {FoodCard: &FoodCardAction{Card: 0}, GrowBody: []GrowAction{{Species: 0, Card: 0}}},
		"no such species":     {GrowBody: []GrowAction{{Species: 1, Card: 0}}},
		"population cap":      {GrowPopulation: []GrowAction{{Species: 0, Card: 0}}},
		"body cap":            {GrowBody: []GrowAction{{Species: 0, Card: 0}}},
		"too many traits":     {AddSpecies: []AddSpeciesAction{{Card: 0, Traits: []int{1, 2, 4, 5}}}},
		"duplicate new trait": {AddSpecies: []AddSpeciesAction{{Card: 0, Traits: []int{3, 3}}}},
		"replace duplicates":  {ReplaceTrait: []ReplaceTraitAction{{Species: 0, Trait: 1, Card: 3}}},
		"no such trait":       {ReplaceTrait: []ReplaceTraitAction{{Species: 0, Trait: 2, Card: 1}}},
		"grow unknown board":  {GrowPopulation: []GrowAction{{Species: 2, Card: 1}}, AddSpecies: []AddSpeciesAction{{Card: 0}}},
	}
	for name, a := range cases {
		if err := a.Validate(p, tu); !errors.Is(err, ErrIllegalAction) {
			t.Fatalf("%s: expected ErrIllegalAction, got %v", name, err)
		}
	}
}

func TestValidate_GrowNewSpecies(t *testing.T) {
	p := ps(1, sp(1, 0, 0))
	p.Hand = handOf(cards.New(cards.Ambush, 0), cards.New(cards.Burrowing, 0), cards.New(cards.Climbing, 0))
	a := Action4{
		AddSpecies:     []AddSpeciesAction{{Card: 0, Traits: []int{2}}},
		GrowPopulation: []GrowAction{{Species: 1, Card: 1}},
	}
	if err := a.Validate(p, tuning.Defaults()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(p.Species) != 1 {
		t.Fatalf("Validate mutated the player")
	}
}

func TestApplyAction4(t *testing.T) {
	og := sp(1, 0, 0, cards.Horns)
	og.Traits[0] = cards.New(cards.Horns, -3)
	p := ps(1, og)
	p.Hand = handOf(
		cards.New(cards.Carnivore, 5),
		cards.New(cards.Ambush, 0),
		cards.New(cards.Burrowing, 1),
		cards.New(cards.Climbing, 2),
		cards.New(cards.Foraging, -1),
		cards.New(cards.LongNeck, 3),
		cards.New(cards.Scavenger, 0),
	)
	d := newTable(1, p, ps(2), ps(3))
	a := Action4{
		FoodCard:       &FoodCardAction{Card: 0},
		AddSpecies:     []AddSpeciesAction{{Card: 1, Traits: []int{3, 4}}},
		GrowPopulation: []GrowAction{{Species: 1, Card: 2}},
		GrowBody:       []GrowAction{{Species: 0, Card: 6}},
		ReplaceTrait:   []ReplaceTraitAction{{Species: 0, Trait: 0, Card: 5}},
	}
	if err := d.ApplyAction4(p, a); err != nil {
		t.Fatalf("ApplyAction4: %v", err)
	}
	if d.pool != 6 {
		t.Fatalf("pool=%d want 6", d.pool)
	}
	if len(p.Hand) != 0 {
		t.Fatalf("hand=%v want empty", p.Hand)
	}
	if len(p.Species) != 2 {
		t.Fatalf("species=%d want 2", len(p.Species))
	}
	added := p.Species[1]
	if added.Population != 2 || added.Body != 0 || !added.Has(cards.Climbing) || !added.Has(cards.Foraging) {
		t.Fatalf("added species=%+v", added)
	}
	if og.Body != 1 || og.Traits[0] != cards.New(cards.LongNeck, 3) {
		t.Fatalf("grown species=%+v", og)
	}
	wantDiscards := []cards.TraitCard{
		cards.New(cards.Horns, -3),
		cards.New(cards.Carnivore, 5),
		cards.New(cards.Ambush, 0),
		cards.New(cards.Burrowing, 1),
		cards.New(cards.Scavenger, 0),
	}
	if !slices.Equal(d.discards, wantDiscards) {
		t.Fatalf("discards=%v want %v", d.discards, wantDiscards)
	}
}

func TestApplyAction4_ClampsPool(t *testing.T) {
	p := ps(1, sp(1, 0, 0))
	p.Hand = handOf(cards.New(cards.Carnivore, -8))
	d := newTable(3, p, ps(2), ps(3))
	if err := d.ApplyAction4(p, Action4{FoodCard: &FoodCardAction{Card: 0}}); err != nil {
		t.Fatalf("ApplyAction4: %v", err)
	}
	if d.pool != 0 {
		t.Fatalf("pool=%d want 0", d.pool)
	}
}

func TestApplyAction4_IllegalLeavesStateAlone(t *testing.T) {
	p := ps(1, sp(1, 0, 0))
	p.Hand = handOf(cards.New(cards.Carnivore, 4), cards.New(cards.Ambush, 0))
	d := newTable(2, p, ps(2), ps(3))
	a := Action4{
		FoodCard: &FoodCardAction{Card: 0},
		GrowBody: []GrowAction{{Species: 3, Card: 1}},
	}
	if err := d.ApplyAction4(p, a); !errors.Is(err, ErrIllegalAction) {
		t.Fatalf("expected ErrIllegalAction, got %v", err)
	}
	if d.pool != 2 || len(p.Hand) != 2 || len(d.discards) != 0 {
		t.Fatalf("state changed: pool=%d hand=%d discards=%d", d.pool, len(p.Hand), len(d.discards))
	}
}
