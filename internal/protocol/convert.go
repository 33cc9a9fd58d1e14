package protocol

import (
	"fmt"

	"evolution.game/internal/sim/cards"
	"evolution.game/internal/sim/game"
)

func CardToJSON(c cards.TraitCard) CardJSON {
	out := CardJSON{Trait: c.Kind.String()}
	if !c.Bare {
		food := c.Food
		out.Food = &food
	}
	return out
}

func CardFromJSON(c CardJSON) (cards.TraitCard, error) {
	k, err := cards.ParseKind(c.Trait)
	if err != nil {
		return cards.TraitCard{}, err
	}
	if c.Food == nil {
		return cards.TraitCard{Kind: k, Bare: true}, nil
	}
	return cards.New(k, *c.Food), nil
}

func cardsToJSON(cs []cards.TraitCard) []CardJSON {
	out := make([]CardJSON, len(cs))
	for i, c := range cs {
		out[i] = CardToJSON(c)
	}
	return out
}

func cardsFromJSON(cs []CardJSON) ([]cards.TraitCard, error) {
	out := make([]cards.TraitCard, len(cs))
	for i, c := range cs {
		tc, err := CardFromJSON(c)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i, err)
		}
		out[i] = tc
	}
	return out, nil
}

func SpeciesToJSON(s *game.Species) SpeciesJSON {
	return SpeciesJSON{
		Population: s.Population,
		Food:       s.Food,
		Body:       s.Body,
		FatStorage: s.FatStorage,
		Traits:     cardsToJSON(s.Traits),
	}
}

func SpeciesFromJSON(s SpeciesJSON) (game.Species, error) {
	traits, err := cardsFromJSON(s.Traits)
	if err != nil {
		return game.Species{}, err
	}
	return game.Species{
		Population: s.Population,
		Food:       s.Food,
		Body:       s.Body,
		FatStorage: s.FatStorage,
		Traits:     traits,
	}, nil
}

func PublicToJSON(ps []game.PublicPlayer) []PublicPlayerJSON {
	out := make([]PublicPlayerJSON, len(ps))
	for i, p := range ps {
		sp := make([]SpeciesJSON, len(p.Species))
		for j, s := range p.Species {
			sp[j] = SpeciesToJSON(s)
		}
		out[i] = PublicPlayerJSON{ID: p.ID, Species: sp}
	}
	return out
}

// PublicFromJSON rebuilds opponent views. The boards are fresh copies owned
// by the caller.
func PublicFromJSON(ps []PublicPlayerJSON) ([]game.PublicPlayer, error) {
	out := make([]game.PublicPlayer, len(ps))
	for i, p := range ps {
		sp := make([]*game.Species, len(p.Species))
		for j, s := range p.Species {
			gs, err := SpeciesFromJSON(s)
			if err != nil {
				return nil, fmt.Errorf("player %d species %d: %w", p.ID, j, err)
			}
			sp[j] = &gs
		}
		out[i] = game.PublicPlayer{ID: p.ID, Species: sp}
	}
	return out, nil
}

func SelfToJSON(s game.PlayerSnapshot) SelfJSON {
	sp := make([]SpeciesJSON, len(s.Species))
	for i := range s.Species {
		sp[i] = SpeciesToJSON(&s.Species[i])
	}
	return SelfJSON{ID: s.ID, FoodBag: s.FoodBag, Hand: cardsToJSON(s.Hand), Species: sp}
}

func SelfFromJSON(s SelfJSON) (game.PlayerSnapshot, error) {
	hand, err := cardsFromJSON(s.Hand)
	if err != nil {
		return game.PlayerSnapshot{}, fmt.Errorf("hand: %w", err)
	}
	sp := make([]game.Species, len(s.Species))
	for i, j := range s.Species {
		gs, err := SpeciesFromJSON(j)
		if err != nil {
			return game.PlayerSnapshot{}, fmt.Errorf("species %d: %w", i, err)
		}
		sp[i] = gs
	}
	return game.PlayerSnapshot{ID: s.ID, FoodBag: s.FoodBag, Hand: hand, Species: sp}, nil
}

func Action4ToMsg(a game.Action4) Action4Msg {
	m := Action4Msg{
		Type:            TypeAction4,
		ProtocolVersion: Version,
		GrowPopulation:  []GrowJSON{},
		GrowBody:        []GrowJSON{},
		AddSpecies:      []AddSpeciesJSON{},
		ReplaceTrait:    []ReplaceTraitJSON{},
	}
	if a.FoodCard != nil {
		c := a.FoodCard.Card
		m.FoodCard = &c
	}
	for _, g := range a.GrowPopulation {
		m.GrowPopulation = append(m.GrowPopulation, GrowJSON{Species: g.Species, Card: g.Card})
	}
	for _, g := range a.GrowBody {
		m.GrowBody = append(m.GrowBody, GrowJSON{Species: g.Species, Card: g.Card})
	}
	for _, add := range a.AddSpecies {
		traits := append([]int{}, add.Traits...)
		m.AddSpecies = append(m.AddSpecies, AddSpeciesJSON{Card: add.Card, Traits: traits})
	}
	for _, r := range a.ReplaceTrait {
		m.ReplaceTrait = append(m.ReplaceTrait, ReplaceTraitJSON{Species: r.Species, Trait: r.Trait, Card: r.Card})
	}
	return m
}

// Action4FromMsg converts a reply. It checks shape only; legality against
// the player's state is the dealer's job.
func Action4FromMsg(m Action4Msg) game.Action4 {
	var a game.Action4
	if m.FoodCard != nil {
		a.FoodCard = &game.FoodCardAction{Card: *m.FoodCard}
	}
	for _, g := range m.GrowPopulation {
		a.GrowPopulation = append(a.GrowPopulation, game.GrowAction{Attribute: game.Population, Species: g.Species, Card: g.Card})
	}
	for _, g := range m.GrowBody {
		a.GrowBody = append(a.GrowBody, game.GrowAction{Attribute: game.Body, Species: g.Species, Card: g.Card})
	}
	for _, add := range m.AddSpecies {
		a.AddSpecies = append(a.AddSpecies, game.AddSpeciesAction{Card: add.Card, Traits: append([]int(nil), add.Traits...)})
	}
	for _, r := range m.ReplaceTrait {
		a.ReplaceTrait = append(a.ReplaceTrait, game.ReplaceTraitAction{Species: r.Species, Trait: r.Trait, Card: r.Card})
	}
	return a
}

func FeedingToMsg(f game.FeedingChoice) (FeedingMsg, error) {
	m := FeedingMsg{Type: TypeFeeding, ProtocolVersion: Version}
	switch c := f.(type) {
	case game.NoFeeding:
		m.Kind = FeedingNone
	case game.HerbivoreFeeding:
		m.Kind, m.Species = FeedingHerbivore, c.Species
	case game.FatFeeding:
		m.Kind, m.Species, m.Amount = FeedingFat, c.Species, c.Amount
	case game.CarnivoreFeeding:
		m.Kind, m.Species = FeedingCarnivore, c.Attacker
		m.DefendingPlayer, m.Defender = c.DefendingPlayer, c.Defender
	default:
		return m, fmt.Errorf("unknown feeding choice %T", f)
	}
	return m, nil
}

func FeedingFromMsg(m FeedingMsg) (game.FeedingChoice, error) {
	switch m.Kind {
	case FeedingNone:
		return game.NoFeeding{}, nil
	case FeedingHerbivore:
		return game.HerbivoreFeeding{Species: m.Species}, nil
	case FeedingFat:
		return game.FatFeeding{Species: m.Species, Amount: m.Amount}, nil
	case FeedingCarnivore:
		return game.CarnivoreFeeding{Attacker: m.Species, DefendingPlayer: m.DefendingPlayer, Defender: m.Defender}, nil
	}
	return nil, fmt.Errorf("unknown feeding kind %q", m.Kind)
}

func ScoresToMsg(scores []game.Score) ResultMsg {
	out := make([]ScoreJSON, len(scores))
	for i, s := range scores {
		out[i] = ScoreJSON{Rank: s.Rank, PlayerID: s.PlayerID, Score: s.Score}
	}
	return ResultMsg{Type: TypeResult, ProtocolVersion: Version, Scores: out}
}
