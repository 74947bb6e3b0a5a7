package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

func GenerateSessionID() string {
	return fmt.Sprintf("session_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

func GenerateSpinID() string {
	return fmt.Sprintf("spin_%s_%d",
		time.Now().Format("20060102"),
		uuid.New().ID())
}

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func (rr *RegisterRequest) Validate() error {
	if len(strings.TrimSpace(rr.Name)) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	if !phonePattern.MatchString(rr.Phone) {
		return fmt.Errorf("phone number must be 10 digits")
	}
	if rr.Email != "" && !emailPattern.MatchString(rr.Email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

func (fr *FeedbackRequest) Validate() error {
	if fr.Rating < 1 || fr.Rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return nil
}

// ParseGameType maps a route segment to a game type.
func ParseGameType(s string) (GameType, error) {
	switch s {
	case "card", string(GameTypeCard):
		return GameTypeCard, nil
	case "dice", string(GameTypeDice):
		return GameTypeDice, nil
	case "wheel", string(GameTypeWheel):
		return GameTypeWheel, nil
	default:
		return "", fmt.Errorf("invalid game type: %s", s)
	}
}

// NormalizeProbability converts the upstream win probability to a fraction.
// The upstream mixes units: card and wheel treat the value as a fraction in
// [0,1] while dice treats the same value as a percentage. The fraction is the
// canonical unit here; anything above 1 is read as a percentage.
func NormalizeProbability(v float64) float64 {
	if v > 1 {
		v = v / 100
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// OfferAt resolves a slot index against an offer list, degrading to a
// placeholder when the list is too short. Short lists are never an error.
func OfferAt(offers []string, index int, placeholder string) string {
	if index < 0 || index >= len(offers) {
		return placeholder
	}
	return offers[index]
}
