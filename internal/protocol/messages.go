package protocol

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerID        int    `json:"player_id"`
	GameID          string `json:"game_id"`
	SessionID       string `json:"session_id,omitempty"`
}

// CardJSON is a trait card. Food is omitted for a trait on a board.
type CardJSON struct {
	Trait string `json:"trait"`
	Food  *int   `json:"food,omitempty"`
}

type SpeciesJSON struct {
	Population int        `json:"population"`
	Food       int        `json:"food"`
	Body       int        `json:"body"`
	FatStorage int        `json:"fat_storage,omitempty"`
	Traits     []CardJSON `json:"traits"`
}

type PublicPlayerJSON struct {
	ID      int           `json:"id"`
	Species []SpeciesJSON `json:"species"`
}

type SelfJSON struct {
	ID      int           `json:"id"`
	FoodBag int           `json:"food_bag"`
	Hand    []CardJSON    `json:"hand"`
	Species []SpeciesJSON `json:"species"`
}

// START (server -> client)
type StartMsg struct {
	Type            string   `json:"type"`
	ProtocolVersion string   `json:"protocol_version"`
	WateringHole    int      `json:"watering_hole"`
	Self            SelfJSON `json:"self"`
}

// CHOOSE (server -> client)
type ChooseMsg struct {
	Type            string             `json:"type"`
	ProtocolVersion string             `json:"protocol_version"`
	Left            []PublicPlayerJSON `json:"left"`
	Right           []PublicPlayerJSON `json:"right"`
}

type GrowJSON struct {
	Species int `json:"species"`
	Card    int `json:"card"`
}

type AddSpeciesJSON struct {
	Card   int   `json:"card"`
	Traits []int `json:"traits"`
}

type ReplaceTraitJSON struct {
	Species int `json:"species"`
	Trait   int `json:"trait"`
	Card    int `json:"card"`
}

// ACTION4 (client -> server), reply to CHOOSE
type Action4Msg struct {
	Type            string             `json:"type"`
	ProtocolVersion string             `json:"protocol_version"`
	FoodCard        *int               `json:"food_card,omitempty"`
	GrowPopulation  []GrowJSON         `json:"grow_population"`
	GrowBody        []GrowJSON         `json:"grow_body"`
	AddSpecies      []AddSpeciesJSON   `json:"add_species"`
	ReplaceTrait    []ReplaceTraitJSON `json:"replace_trait"`
}

// FEED (server -> client)
type FeedMsg struct {
	Type            string             `json:"type"`
	ProtocolVersion string             `json:"protocol_version"`
	Self            SelfJSON           `json:"self"`
	WateringHole    int                `json:"watering_hole"`
	Others          []PublicPlayerJSON `json:"others"`
}

// Feeding kinds.
const (
	FeedingNone      = "none"
	FeedingHerbivore = "herbivore"
	FeedingFat       = "fat"
	FeedingCarnivore = "carnivore"
)

// FEEDING (client -> server), reply to FEED
type FeedingMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Kind            string `json:"kind"`
	Species         int    `json:"species,omitempty"`
	Amount          int    `json:"amount,omitempty"`
	DefendingPlayer int    `json:"defending_player,omitempty"`
	Defender        int    `json:"defender,omitempty"`
}

type ScoreJSON struct {
	Rank     int `json:"rank"`
	PlayerID int `json:"player_id"`
	Score    int `json:"score"`
}

// RESULT (server -> client)
type ResultMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	Scores          []ScoreJSON `json:"scores"`
}

type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}
