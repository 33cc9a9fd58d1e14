package game

import (
	"slices"
	"testing"

	"evolution.game/internal/sim/cards"
)

func ps(id int, boards ...*Species) *PlayerState {
	return &PlayerState{ID: id, Species: boards, Active: true}
}

func TestAttemptAutoFeed_NothingHungry(t *testing.T) {
	p := ps(1, sp(2, 2, 0), sp(1, 1, 0, cards.Carnivore))
	got, ok := p.AttemptAutoFeed(5, nil, 4)
	if !ok || got != (NoFeeding{}) {
		t.Fatalf("got %v ok=%v want NoFeeding", got, ok)
	}
}

func TestAttemptAutoFeed_SingleHerbivoreIgnoresOpponents(t *testing.T) {
	p := ps(1, sp(2, 2, 0), sp(3, 1, 0))
	opponents := [][]PublicPlayer{
		nil,
		{ps(2, sp(4, 0, 3, cards.Carnivore)).Public()},
		{ps(2, sp(1, 0, 0)).Public(), ps(3, sp(2, 0, 0, cards.Climbing), sp(5, 0, 1, cards.Carnivore)).Public()},
	}
	for i, others := range opponents {
		got, ok := p.AttemptAutoFeed(5, others, 4)
		if !ok || got != (HerbivoreFeeding{Species: 1}) {
			t.Fatalf("case %d: got %v ok=%v", i, got, ok)
		}
	}
}

func TestAttemptAutoFeed_SingleFat(t *testing.T) {
	f := sp(2, 2, 5, cards.FatTissue)
	f.FatStorage = 1
	p := ps(1, f)
	got, ok := p.AttemptAutoFeed(10, nil, 4)
	if !ok || got != (FatFeeding{Species: 0, Amount: 4}) {
		t.Fatalf("got %v ok=%v", got, ok)
	}
	got, _ = p.AttemptAutoFeed(2, nil, 4)
	if got != (FatFeeding{Species: 0, Amount: 2}) {
		t.Fatalf("request not capped by pool: %v", got)
	}
}

func TestAttemptAutoFeed_Ambiguous(t *testing.T) {
	cases := []*PlayerState{
		ps(1, sp(2, 0, 0), sp(2, 0, 0)),
		ps(1, sp(2, 0, 0), sp(2, 0, 0, cards.Carnivore)),
		// a hungry fat-tissue species is also a hungry herbivore
		ps(1, sp(2, 0, 3, cards.FatTissue)),
	}
	for i, p := range cases {
		if got, ok := p.AttemptAutoFeed(5, nil, 4); ok {
			t.Fatalf("case %d: expected ambiguous, got %v", i, got)
		}
	}
}

func TestAttemptAutoFeed_Carnivore(t *testing.T) {
	p := ps(1, sp(2, 2, 0), sp(3, 0, 2, cards.Carnivore))

	none := []PublicPlayer{ps(2, sp(1, 0, 0, cards.Climbing)).Public()}
	got, ok := p.AttemptAutoFeed(5, none, 4)
	if !ok || got != (NoFeeding{}) {
		t.Fatalf("no targets: got %v ok=%v", got, ok)
	}

	one := []PublicPlayer{
		ps(2, sp(1, 0, 0, cards.Climbing)).Public(),
		ps(3, sp(1, 0, 0, cards.Climbing), sp(2, 0, 0)).Public(),
	}
	got, ok = p.AttemptAutoFeed(5, one, 4)
	want := CarnivoreFeeding{Attacker: 1, DefendingPlayer: 1, Defender: 1}
	if !ok || got != want {
		t.Fatalf("one target: got %v ok=%v want %v", got, ok, want)
	}

	two := append(one, ps(4, sp(1, 0, 0)).Public())
	if got, ok := p.AttemptAutoFeed(5, two, 4); ok {
		t.Fatalf("two targets: expected ambiguous, got %v", got)
	}
}

func TestDiscardAll_KeepsOrder(t *testing.T) {
	p := ps(1)
	for f := -3; f <= 3; f++ {
		p.Hand = append(p.Hand, cards.New(cards.Horns, f))
	}
	p.discardAll([]int{5, 0, 3})
	want := []cards.TraitCard{
		cards.New(cards.Horns, -2), cards.New(cards.Horns, -1),
		cards.New(cards.Horns, 1), cards.New(cards.Horns, 3),
	}
	if !slices.Equal(p.Hand, want) {
		t.Fatalf("hand=%v want %v", p.Hand, want)
	}
}

func TestEndTurn(t *testing.T) {
	survivor := sp(4, 2, 1, cards.Horns)
	starved := &Species{Population: 3, Traits: []cards.TraitCard{cards.New(cards.Fertile, 2), bare(cards.Foraging)}}
	p := ps(1, survivor, starved)
	p.FoodBag = 5

	owed, lost := p.EndTurn(2)
	if owed != 2 {
		t.Fatalf("owed=%d want 2", owed)
	}
	if len(lost) != 2 || lost[0] != cards.New(cards.Fertile, 2) {
		t.Fatalf("lost=%v", lost)
	}
	if len(p.Species) != 1 || p.Species[0] != survivor {
		t.Fatalf("species=%v", p.Species)
	}
	if survivor.Population != 2 || survivor.Food != 0 {
		t.Fatalf("survivor pop=%d food=%d want 2,0", survivor.Population, survivor.Food)
	}
	if p.FoodBag != 7 {
		t.Fatalf("food bag=%d want 7", p.FoodBag)
	}
}

func TestScoreAndDealAmount(t *testing.T) {
	p := ps(1, sp(3, 0, 0, cards.Horns, cards.Fertile), sp(1, 0, 0))
	p.FoodBag = 4
	if got := p.Score(); got != 4+3+2+1 {
		t.Fatalf("score=%d", got)
	}
	if got := p.DealAmount(3); got != 5 {
		t.Fatalf("deal amount=%d want 5", got)
	}
	if got := ps(2).DealAmount(3); got != 4 {
		t.Fatalf("deal amount with no species=%d want 4", got)
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	p := ps(1, sp(2, 1, 0, cards.Horns))
	p.Hand = []cards.TraitCard{cards.New(cards.Burrowing, 0)}
	snap := p.Snapshot()
	snap.Species[0].Food = 2
	snap.Species[0].Traits[0] = bare(cards.Fertile)
	snap.Hand[0] = cards.New(cards.Ambush, 1)
	if p.Species[0].Food != 1 || p.Species[0].Traits[0].Kind != cards.Horns || p.Hand[0].Kind != cards.Burrowing {
		t.Fatalf("snapshot aliases player state")
	}
	pub := p.Public()
	if pub.Species[0] != p.Species[0] {
		t.Fatalf("public view must alias live boards")
	}
}
