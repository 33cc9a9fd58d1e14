package game

import "fmt"

// FeedingChoice is one step of a feeding round. The variants are NoFeeding,
// HerbivoreFeeding, FatFeeding and CarnivoreFeeding.
type FeedingChoice interface {
	isFeeding()
}

// NoFeeding ends the player's participation in the current feeding round.
type NoFeeding struct{}

type HerbivoreFeeding struct {
	Species int
}

// FatFeeding stores Amount food from the watering hole on a fat-tissue species.
type FatFeeding struct {
	Species int
	Amount  int
}

// CarnivoreFeeding attacks species Defender of opponent DefendingPlayer.
// DefendingPlayer indexes the opponents in ring order starting after the feeder.
type CarnivoreFeeding struct {
	Attacker        int
	DefendingPlayer int
	Defender        int
}

func (NoFeeding) isFeeding()        {}
func (HerbivoreFeeding) isFeeding() {}
func (FatFeeding) isFeeding()       {}
func (CarnivoreFeeding) isFeeding() {}

func (NoFeeding) String() string { return "none" }

func (f HerbivoreFeeding) String() string { return fmt.Sprintf("herbivore(%d)", f.Species) }

func (f FatFeeding) String() string { return fmt.Sprintf("fat(%d,%d)", f.Species, f.Amount) }

func (f CarnivoreFeeding) String() string {
	return fmt.Sprintf("carnivore(%d,%d,%d)", f.Attacker, f.DefendingPlayer, f.Defender)
}
