package services

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"table-games-backend/internal/models"
)

const (
	LossMessageCard    = "Better Luck Next Time"
	UnknownOfferLabel  = "Unknown Offer"
	winningDiceFaceMin = 1
)

var (
	winningDiceFaces = []int{1, 3, 5}
	losingDiceFaces  = []int{2, 4, 6}
)

// OutcomeSelector draws a single weighted random outcome per play. All three
// game topologies share one Bernoulli trial on the session's win probability;
// they differ only in how the winning slot is picked and phrased.
type OutcomeSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewOutcomeSelector() *OutcomeSelector {
	return NewOutcomeSelectorWithSeed(time.Now().UnixNano())
}

// NewOutcomeSelectorWithSeed fixes the random source, for reproducible tests.
func NewOutcomeSelectorWithSeed(seed int64) *OutcomeSelector {
	return &OutcomeSelector{rng: rand.New(rand.NewSource(seed))}
}

// Draw resolves one play. The offers list may be shorter than the game's slot
// count or empty; winning slots then resolve to placeholder labels.
func (s *OutcomeSelector) Draw(game models.GameType, winProbability float64, offers []string) (*models.PlayOutcome, error) {
	switch game {
	case models.GameTypeCard:
		return s.drawCard(winProbability, offers), nil
	case models.GameTypeDice:
		return s.drawDice(winProbability, offers), nil
	case models.GameTypeWheel:
		return s.drawWheel(winProbability, offers), nil
	default:
		return nil, fmt.Errorf("unsupported game type: %s", game)
	}
}

func (s *OutcomeSelector) drawCard(p float64, offers []string) *models.PlayOutcome {
	s.mu.Lock()
	won := s.rng.Float64() < p
	var slot int
	if won && len(offers) > 0 {
		slot = s.rng.Intn(len(offers))
	}
	s.mu.Unlock()

	outcome := &models.PlayOutcome{GameType: models.GameTypeCard, Won: won}
	if !won {
		outcome.Message = LossMessageCard
		return outcome
	}

	outcome.PrizeLabel = models.OfferAt(offers, slot, "")
	outcome.Message = outcome.PrizeLabel
	return outcome
}

func (s *OutcomeSelector) drawDice(p float64, offers []string) *models.PlayOutcome {
	// Two-stage draw: outcome class first, then a uniform face within the
	// class. Each specific winning face lands with probability p/3.
	s.mu.Lock()
	won := s.rng.Float64() < p
	var face int
	if won {
		face = winningDiceFaces[s.rng.Intn(len(winningDiceFaces))]
	} else {
		face = losingDiceFaces[s.rng.Intn(len(losingDiceFaces))]
	}
	s.mu.Unlock()

	outcome := &models.PlayOutcome{GameType: models.GameTypeDice, Won: won, Face: face}
	if !won {
		outcome.Message = fmt.Sprintf("You rolled a %d! Better luck next time.", face)
		return outcome
	}

	// Face 1 -> slot 0, face 3 -> slot 1, face 5 -> slot 2.
	slot := (face - winningDiceFaceMin) / 2
	outcome.PrizeLabel = models.OfferAt(offers, slot, UnknownOfferLabel)
	outcome.Message = fmt.Sprintf("You rolled a %d! Congratulations, you win: %s", face, outcome.PrizeLabel)
	return outcome
}

func (s *OutcomeSelector) drawWheel(p float64, offers []string) *models.PlayOutcome {
	s.mu.Lock()
	won := s.rng.Float64() < p
	degree := s.drawWheelDegreeLocked(won)
	s.mu.Unlock()

	return WheelOutcomeAt(degree, offers)
}
