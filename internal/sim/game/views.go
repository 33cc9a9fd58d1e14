package game

import (
	"context"

	"evolution.game/internal/sim/cards"
)

//go:generate go run go.uber.org/mock/mockgen -destination=./mocks/player_mock.go -package=mocks . Player

// Player is an external decision-maker seated at the table. Calls are
// synchronous; the dealer does not proceed until one returns.
type Player interface {
	// Start hands the player a private copy of its state at the beginning of a turn.
	Start(ctx context.Context, pool int, self PlayerSnapshot) error
	// Choose asks for the turn's card plays. left and right are the opponents
	// seated before and after the player in the ring.
	Choose(ctx context.Context, left, right []PublicPlayer) (Action4, error)
	// NextFeeding is only called when the dealer cannot decide on the player's behalf.
	NextFeeding(ctx context.Context, self PlayerSnapshot, pool int, others []PublicPlayer) (FeedingChoice, error)
}

// PublicPlayer is what an opponent may see of a player. Species aliases the
// owner's live boards and must be treated as read-only.
type PublicPlayer struct {
	ID      int
	Species []*Species
}

// PlayerSnapshot is a detached copy of a player's full state.
type PlayerSnapshot struct {
	ID      int
	FoodBag int
	Hand    []cards.TraitCard
	Species []Species
}

// SpeciesRefs returns pointers into the snapshot's own species, for use with
// board helpers that take []*Species.
func (s PlayerSnapshot) SpeciesRefs() []*Species {
	out := make([]*Species, len(s.Species))
	for i := range s.Species {
		out[i] = &s.Species[i]
	}
	return out
}
