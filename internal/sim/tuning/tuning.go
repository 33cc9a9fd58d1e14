package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the rule table shared by every game hosted by a process.
// It is loaded once at startup and treated as read-only afterwards.
type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	DealAmount         int `yaml:"deal_amount"`
	ExtinctionCards    int `yaml:"extinction_cards"`
	HardShellThreshold int `yaml:"hard_shell_threshold"`

	CarnivoreFoodMax int `yaml:"carnivore_food_max"`
	TraitFoodMax     int `yaml:"trait_food_max"`

	MaxPopulation int `yaml:"max_population"`
	MaxBody       int `yaml:"max_body"`
	MaxFood       int `yaml:"max_food"`
	MaxTraits     int `yaml:"max_traits"`

	MinPlayers int `yaml:"min_players"`
	MaxPlayers int `yaml:"max_players"`

	FeedQuantity int `yaml:"feed_quantity"`
	KillQuantity int `yaml:"kill_quantity"`
	GrowAmount   int `yaml:"grow_amount"`

	Transport Transport `yaml:"transport"`
}

type Transport struct {
	HandshakeTimeoutMs int `yaml:"handshake_timeout_ms"`
	ChooseTimeoutMs    int `yaml:"choose_timeout_ms"`
	FeedTimeoutMs      int `yaml:"feed_timeout_ms"`
	MaxFrameBytes      int `yaml:"max_frame_bytes"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    "1.0",
		DealAmount:         3,
		ExtinctionCards:    2,
		HardShellThreshold: 4,
		CarnivoreFoodMax:   8,
		TraitFoodMax:       3,
		MaxPopulation:      7,
		MaxBody:            7,
		MaxFood:            7,
		MaxTraits:          3,
		MinPlayers:         3,
		MaxPlayers:         8,
		FeedQuantity:       1,
		KillQuantity:       1,
		GrowAmount:         1,
		Transport: Transport{
			HandshakeTimeoutMs: 5000,
			ChooseTimeoutMs:    10000,
			FeedTimeoutMs:      10000,
			MaxFrameBytes:      1 << 20,
		},
	}
}

// Load reads a tuning file. Keys missing from the file keep their default value.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	positive := []struct {
		name string
		v    int
	}{
		{"deal_amount", t.DealAmount},
		{"max_population", t.MaxPopulation},
		{"max_body", t.MaxBody},
		{"max_food", t.MaxFood},
		{"max_traits", t.MaxTraits},
		{"min_players", t.MinPlayers},
		{"feed_quantity", t.FeedQuantity},
		{"kill_quantity", t.KillQuantity},
		{"grow_amount", t.GrowAmount},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return fmt.Errorf("%s must be > 0 (got %d)", p.name, p.v)
		}
	}
	if t.ExtinctionCards < 0 || t.HardShellThreshold < 0 {
		return fmt.Errorf("extinction_cards and hard_shell_threshold must be >= 0")
	}
	if t.TraitFoodMax < 0 || t.CarnivoreFoodMax < t.TraitFoodMax {
		return fmt.Errorf("food ranges: need 0 <= trait_food_max <= carnivore_food_max (got %d, %d)", t.TraitFoodMax, t.CarnivoreFoodMax)
	}
	if t.MaxPlayers < t.MinPlayers {
		return fmt.Errorf("max_players %d < min_players %d", t.MaxPlayers, t.MinPlayers)
	}
	return nil
}
