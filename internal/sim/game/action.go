package game

import (
	"fmt"

	"evolution.game/internal/sim/cards"
	"evolution.game/internal/sim/tuning"
)

// Action is one card play inside an Action4. The variants are
// FoodCardAction, GrowAction, AddSpeciesAction and ReplaceTraitAction.
type Action interface {
	isAction()
	// HandIndices lists every hand card the action consumes.
	HandIndices() []int
}

// FoodCardAction puts a card's food value on the watering hole.
type FoodCardAction struct {
	Card int
}

type Attribute uint8

const (
	Population Attribute = iota + 1
	Body
)

func (a Attribute) String() string {
	switch a {
	case Population:
		return "population"
	case Body:
		return "body"
	}
	return fmt.Sprintf("attribute(%d)", uint8(a))
}

// GrowAction trades a card for one point of population or body on a species.
type GrowAction struct {
	Attribute Attribute
	Species   int
	Card      int
}

// AddSpeciesAction trades Card for a new board to the right of the existing
// ones, carrying the hand cards at Traits.
type AddSpeciesAction struct {
	Card   int
	Traits []int
}

// ReplaceTraitAction swaps trait Trait of species Species for hand card Card.
type ReplaceTraitAction struct {
	Species int
	Trait   int
	Card    int
}

func (FoodCardAction) isAction()     {}
func (GrowAction) isAction()         {}
func (AddSpeciesAction) isAction()   {}
func (ReplaceTraitAction) isAction() {}

func (a FoodCardAction) HandIndices() []int { return []int{a.Card} }
func (a GrowAction) HandIndices() []int     { return []int{a.Card} }
func (a AddSpeciesAction) HandIndices() []int {
	return append([]int{a.Card}, a.Traits...)
}
func (a ReplaceTraitAction) HandIndices() []int { return []int{a.Card} }

// Action4 is everything one player does with its hand in a turn.
type Action4 struct {
	FoodCard       *FoodCardAction
	GrowPopulation []GrowAction
	GrowBody       []GrowAction
	AddSpecies     []AddSpeciesAction
	ReplaceTrait   []ReplaceTraitAction
}

// Actions returns the sub-actions in application order: food card, added
// species, population growth, body growth, trait replacement.
func (a Action4) Actions() []Action {
	var out []Action
	if a.FoodCard != nil {
		out = append(out, *a.FoodCard)
	}
	for _, x := range a.AddSpecies {
		out = append(out, x)
	}
	for _, x := range a.GrowPopulation {
		x.Attribute = Population
		out = append(out, x)
	}
	for _, x := range a.GrowBody {
		x.Attribute = Body
		out = append(out, x)
	}
	for _, x := range a.ReplaceTrait {
		out = append(out, x)
	}
	return out
}

func (a Action4) HandIndices() []int {
	var out []int
	for _, x := range a.Actions() {
		out = append(out, x.HandIndices()...)
	}
	return out
}

// simBoard is the part of a species the validator tracks while replaying an Action4.
type simBoard struct {
	population int
	body       int
	traits     []cards.Kind
}

// Validate replays a against p's current state without mutating it. Every
// hand index must be in bounds and used once, and every sub-action must be
// legal at the point it runs.
func (a Action4) Validate(p *PlayerState, t tuning.Tuning) error {
	seen := map[int]bool{}
	for _, i := range a.HandIndices() {
		if i < 0 || i >= len(p.Hand) {
			return fmt.Errorf("%w: hand index %d out of range [0,%d)", ErrIllegalAction, i, len(p.Hand))
		}
		if seen[i] {
			return fmt.Errorf("%w: hand index %d used twice", ErrIllegalAction, i)
		}
		seen[i] = true
	}

	boards := make([]simBoard, 0, len(p.Species)+len(a.AddSpecies))
	for _, s := range p.Species {
		b := simBoard{population: s.Population, body: s.Body}
		for _, tr := range s.Traits {
			b.traits = append(b.traits, tr.Kind)
		}
		boards = append(boards, b)
	}
	board := func(i int) (*simBoard, error) {
		if i < 0 || i >= len(boards) {
			return nil, fmt.Errorf("%w: species index %d out of range [0,%d)", ErrIllegalAction, i, len(boards))
		}
		return &boards[i], nil
	}

	for _, x := range a.Actions() {
		switch x := x.(type) {
		case FoodCardAction:
		case AddSpeciesAction:
			if len(x.Traits) > t.MaxTraits {
				return fmt.Errorf("%w: new species with %d traits exceeds %d", ErrIllegalAction, len(x.Traits), t.MaxTraits)
			}
			b := simBoard{population: 1}
			for _, i := range x.Traits {
				b.traits = append(b.traits, p.Hand[i].Kind)
			}
			if !uniqueKinds(b.traits) {
				return fmt.Errorf("%w: new species has duplicate traits", ErrIllegalAction)
			}
			boards = append(boards, b)
		case GrowAction:
			b, err := board(x.Species)
			if err != nil {
				return err
			}
			switch x.Attribute {
			case Population:
				b.population += t.GrowAmount
				if b.population > t.MaxPopulation {
					return fmt.Errorf("%w: species %d population would exceed %d", ErrIllegalAction, x.Species, t.MaxPopulation)
				}
			case Body:
				b.body += t.GrowAmount
				if b.body > t.MaxBody {
					return fmt.Errorf("%w: species %d body would exceed %d", ErrIllegalAction, x.Species, t.MaxBody)
				}
			default:
				return fmt.Errorf("%w: unknown attribute %s", ErrIllegalAction, x.Attribute)
			}
		case ReplaceTraitAction:
			b, err := board(x.Species)
			if err != nil {
				return err
			}
			if x.Trait < 0 || x.Trait >= len(b.traits) {
				return fmt.Errorf("%w: species %d has no trait %d", ErrIllegalAction, x.Species, x.Trait)
			}
			b.traits[x.Trait] = p.Hand[x.Card].Kind
			if !uniqueKinds(b.traits) {
				return fmt.Errorf("%w: replacing trait %d on species %d duplicates a kind", ErrIllegalAction, x.Trait, x.Species)
			}
		}
	}
	return nil
}

func uniqueKinds(ks []cards.Kind) bool {
	seen := map[cards.Kind]bool{}
	for _, k := range ks {
		if seen[k] {
			return false
		}
		seen[k] = true
	}
	return true
}
