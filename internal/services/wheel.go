package services

import (
	"log"
	"time"

	"table-games-backend/internal/models"
)

// The wheel is 360 degrees split into 7 bands. Two bands are blank, the rest
// index into the spin-wheel offer list. The [331,360] band wraps around to
// the same prize as [0,30].
type wheelBand struct {
	minDegree int
	maxDegree int
	slot      int // -1 marks a blank band
}

var wheelBands = []wheelBand{
	{0, 30, 0},
	{31, 90, -1},
	{91, 150, 1},
	{151, 210, 2},
	{211, 270, 3},
	{271, 330, -1},
	{331, 360, 0},
}

func bandFor(degree int) wheelBand {
	for _, band := range wheelBands {
		if degree >= band.minDegree && degree <= band.maxDegree {
			return band
		}
	}
	return wheelBand{slot: -1}
}

func inBlankBand(degree int) bool {
	return (degree >= 31 && degree <= 90) || (degree >= 271 && degree <= 330)
}

// drawWheelDegreeLocked picks the landing degree. Winning draws rejection-
// sample a uniform degree in [0,355) until it clears both blank bands; losing
// draws pick uniformly from the union of the blank bands. Caller holds s.mu.
func (s *OutcomeSelector) drawWheelDegreeLocked(won bool) int {
	if won {
		degree := s.rng.Intn(355)
		for inBlankBand(degree) {
			degree = s.rng.Intn(355)
		}
		return degree
	}

	if s.rng.Float64() < 0.5 {
		return s.rng.Intn(90-31+1) + 31
	}
	return s.rng.Intn(330-271+1) + 271
}

// WheelOutcomeAt maps a landing degree to its prize via the band table.
func WheelOutcomeAt(degree int, offers []string) *models.PlayOutcome {
	outcome := &models.PlayOutcome{GameType: models.GameTypeWheel, Degree: degree}

	band := bandFor(degree)
	if band.slot < 0 {
		outcome.Message = "Better luck next time!"
		return outcome
	}

	label := models.OfferAt(offers, band.slot, "")
	if label == "" {
		// A winning band with no offer behind it degrades to a blank result.
		outcome.Message = "Better luck next time!"
		return outcome
	}

	outcome.Won = true
	outcome.PrizeLabel = label
	outcome.Message = "You won " + label + "!"
	return outcome
}

const (
	spinInitialStep   = 101
	spinStepDecrement = 5
	spinMinRevs       = 15
	spinTickInterval  = 10 * time.Millisecond

	// The legacy stop condition (exact degree match after >15 revolutions)
	// can stall when the shrinking step keeps jumping over the target, and
	// stalls unconditionally on target 0. The tick cap force-lands the wheel.
	spinMaxTicks = 20000
)

// SpinState is one frame of the decelerating wheel animation. Next is pure so
// the stepping rule is testable without a timer.
type SpinState struct {
	Rotation    int
	Step        int
	Revolutions int
	Target      int
	Ticks       int
	Done        bool
}

func NewSpinState(target int) SpinState {
	return SpinState{Step: spinInitialStep, Target: target}
}

// Next advances the rotation by the current step. Each full revolution resets
// the rotation and shrinks the step by 5; the spin finishes when the rotation
// lands exactly on the target after more than 15 revolutions, or when the
// tick cap trips.
func (st SpinState) Next() SpinState {
	st.Ticks++
	st.Rotation += st.Step

	if st.Rotation >= 360 {
		st.Revolutions++
		st.Step -= spinStepDecrement
		st.Rotation = 0
	} else if st.Revolutions > spinMinRevs && st.Rotation == st.Target {
		st.Done = true
	}

	if !st.Done && st.Ticks >= spinMaxTicks {
		st.Rotation = st.Target
		st.Done = true
	}

	return st
}

// Spinner runs a spin's animation loop on a fixed-cadence ticker, publishing
// frames through the broadcaster. It stops itself on convergence and cleans
// up its ticker on both normal termination and external Stop.
type Spinner struct {
	ID        string
	SessionID string

	state       SpinState
	outcome     *models.PlayOutcome
	interval    time.Duration
	broadcaster Broadcaster
	stopChan    chan struct{}
	onFinish    func(*Spinner)
}

func NewSpinner(sessionID string, outcome *models.PlayOutcome, broadcaster Broadcaster, interval time.Duration, onFinish func(*Spinner)) *Spinner {
	if interval <= 0 {
		interval = spinTickInterval
	}
	return &Spinner{
		ID:          outcome.SpinID,
		SessionID:   sessionID,
		state:       NewSpinState(outcome.Degree),
		outcome:     outcome,
		interval:    interval,
		broadcaster: broadcaster,
		stopChan:    make(chan struct{}),
		onFinish:    onFinish,
	}
}

func (sp *Spinner) Run() {
	ticker := time.NewTicker(sp.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sp.state = sp.state.Next()

			if sp.broadcaster != nil {
				sp.broadcaster.BroadcastSpinFrame(sp.SessionID, sp.ID, sp.state.Rotation, sp.state.Revolutions)
			}

			if sp.state.Done {
				if sp.broadcaster != nil {
					sp.broadcaster.BroadcastSpinResult(sp.SessionID, sp.ID, sp.outcome)
				}
				if sp.onFinish != nil {
					sp.onFinish(sp)
				}
				return
			}

		case <-sp.stopChan:
			log.Printf("Spin %s stopped before convergence", sp.ID)
			return
		}
	}
}

// Stop tears the spinner down without publishing a result. Safe to call at
// most once.
func (sp *Spinner) Stop() {
	close(sp.stopChan)
}
