package cards

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"

	"evolution.game/internal/sim/tuning"
)

// Kind is one of the fixed trait kinds. Constants are declared in name order
// so sorting by Kind matches sorting by trait name.
type Kind uint8

const (
	Ambush Kind = iota + 1
	Burrowing
	Carnivore
	Climbing
	Cooperation
	FatTissue
	Fertile
	Foraging
	HardShell
	Herding
	Horns
	LongNeck
	PackHunting
	Scavenger
	Symbiosis
	WarningCall
)

var kindNames = [...]string{
	Ambush:      "ambush",
	Burrowing:   "burrowing",
	Carnivore:   "carnivore",
	Climbing:    "climbing",
	Cooperation: "cooperation",
	FatTissue:   "fat-tissue",
	Fertile:     "fertile",
	Foraging:    "foraging",
	HardShell:   "hard-shell",
	Herding:     "herding",
	Horns:       "horns",
	LongNeck:    "long-neck",
	PackHunting: "pack-hunting",
	Scavenger:   "scavenger",
	Symbiosis:   "symbiosis",
	WarningCall: "warning-call",
}

var (
	ErrUnknownKind = errors.New("unknown trait kind")
	ErrFoodRange   = errors.New("food value out of range")
	ErrDuplicate   = errors.New("duplicate card")
)

func (k Kind) Valid() bool { return k >= Ambush && k <= WarningCall }

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Kinds lists every trait kind in name order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames)-1)
	for k := Ambush; k <= WarningCall; k++ {
		out = append(out, k)
	}
	return out
}

// ParseKind resolves a trait name. Unknown names report the closest known one.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	best, bestDist := Kind(0), -1
	for _, k := range Kinds() {
		if kindNames[k] == name {
			return k, nil
		}
		d := levenshtein.ComputeDistance(name, kindNames[k])
		if bestDist < 0 || d < bestDist {
			best, bestDist = k, d
		}
	}
	if bestDist >= 0 && bestDist <= 3 {
		return 0, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownKind, s, best.String())
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownKind, s)
}

// TraitCard is a card from the deck. Cards compare equal by (Kind, Food, Bare).
type TraitCard struct {
	Kind Kind
	Food int
	// Bare marks a board trait that carries no food value.
	Bare bool
}

func New(k Kind, food int) TraitCard { return TraitCard{Kind: k, Food: food} }

func (c TraitCard) String() string {
	if c.Bare {
		return c.Kind.String()
	}
	return fmt.Sprintf("%s:%d", c.Kind, c.Food)
}

func Compare(a, b TraitCard) int {
	if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
		return c
	}
	return cmp.Compare(a.Food, b.Food)
}

// Bounds holds the kind-specific food ranges.
type Bounds struct {
	CarnivoreFoodMax int
	TraitFoodMax     int
}

func BoundsFrom(t tuning.Tuning) Bounds {
	return Bounds{CarnivoreFoodMax: t.CarnivoreFoodMax, TraitFoodMax: t.TraitFoodMax}
}

func (b Bounds) FoodRange(k Kind) (lo, hi int) {
	if k == Carnivore {
		return -b.CarnivoreFoodMax, b.CarnivoreFoodMax
	}
	return -b.TraitFoodMax, b.TraitFoodMax
}

func (b Bounds) Check(c TraitCard) error {
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownKind, uint8(c.Kind))
	}
	if c.Bare {
		return nil
	}
	lo, hi := b.FoodRange(c.Kind)
	if c.Food < lo || c.Food > hi {
		return fmt.Errorf("%w: %s not in [%d,%d]", ErrFoodRange, c, lo, hi)
	}
	return nil
}

// Deck returns the canonical deck, one card per (kind, food value), sorted.
func (b Bounds) Deck() []TraitCard {
	var deck []TraitCard
	for _, k := range Kinds() {
		lo, hi := b.FoodRange(k)
		for f := lo; f <= hi; f++ {
			deck = append(deck, New(k, f))
		}
	}
	return deck
}

func (b Bounds) DeckSize() int {
	return (2*b.CarnivoreFoodMax + 1) + (len(Kinds())-1)*(2*b.TraitFoodMax+1)
}

// CheckUnique validates each card and rejects any valued card seen twice
// across all given groups.
func (b Bounds) CheckUnique(groups ...[]TraitCard) error {
	seen := map[TraitCard]struct{}{}
	for _, g := range groups {
		for _, c := range g {
			if err := b.Check(c); err != nil {
				return err
			}
			if c.Bare {
				continue
			}
			if _, dup := seen[c]; dup {
				return fmt.Errorf("%w: %s", ErrDuplicate, c)
			}
			seen[c] = struct{}{}
		}
	}
	return nil
}

// Shuffle returns a shuffled copy of deck.
func Shuffle(deck []TraitCard, r *rand.Rand) []TraitCard {
	out := slices.Clone(deck)
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Sorted returns a copy of cs ordered by (kind, food).
func Sorted(cs []TraitCard) []TraitCard {
	out := slices.Clone(cs)
	slices.SortStableFunc(out, Compare)
	return out
}
