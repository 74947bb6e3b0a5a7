package models

import "time"

type GameType string

const (
	GameTypeCard  GameType = "card_game"
	GameTypeDice  GameType = "dice_game"
	GameTypeWheel GameType = "spin_wheel"
)

// Session is the per-customer state hydrated at registration. A session is
// created once, mutated by plays and feedback, and expires with its redis key.
type Session struct {
	ID        string `json:"id" redis:"id"`
	Token     string `json:"token" redis:"token"`
	TableName string `json:"table_name" redis:"table_name"`

	// Offers holds the ordered prize labels per game. Order is meaningful:
	// it defines the slot-to-prize assignment inside each game.
	Offers map[GameType][]string `json:"offers" redis:"offers"`

	// WinProbability is always a fraction in [0,1] once stored. Upstream
	// values above 1 are percentages and get normalized at hydration.
	WinProbability float64 `json:"win_probability" redis:"win_probability"`

	LastPlayedAt string `json:"last_played_at" redis:"last_played_at"`

	// Played is monotonic within an eligibility window: it flips to true
	// exactly once and nothing resets it.
	Played bool `json:"played" redis:"played"`
	Rated  bool `json:"rated" redis:"rated"`

	CreatedAt time.Time `json:"created_at" redis:"created_at"`
	UpdatedAt time.Time `json:"updated_at" redis:"updated_at"`
}

// GameOffers returns the offer list for a game, never nil.
func (s *Session) GameOffers(game GameType) []string {
	if s.Offers == nil {
		return []string{}
	}
	offers, ok := s.Offers[game]
	if !ok || offers == nil {
		return []string{}
	}
	return offers
}

// PlayOutcome is the result of a single resolved play. It is returned to the
// client and not persisted beyond the session's played flag.
type PlayOutcome struct {
	GameType   GameType `json:"game_type"`
	Won        bool     `json:"won"`
	PrizeLabel string   `json:"prize_label,omitempty"`
	Message    string   `json:"message"`

	// Face is set for dice plays only.
	Face int `json:"face,omitempty"`

	// Degree and SpinID are set for wheel plays only. Degree is the landing
	// position the animation converges to; SpinID identifies the live stream.
	Degree int    `json:"degree,omitempty"`
	SpinID string `json:"spin_id,omitempty"`
}
