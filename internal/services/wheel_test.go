package services_test

import (
	"testing"
	"time"

	"table-games-backend/internal/models"
	"table-games-backend/internal/services"
)

func inBlank(degree int) bool {
	return (degree >= 31 && degree <= 90) || (degree >= 271 && degree <= 330)
}

func TestWheelDegreesRespectBlankBands(t *testing.T) {
	selector := services.NewOutcomeSelectorWithSeed(11)
	offers := []string{"A", "B", "C", "D"}

	for i := 0; i < 5000; i++ {
		outcome, err := selector.Draw(models.GameTypeWheel, 1.0, offers)
		if err != nil {
			t.Fatalf("draw failed: %v", err)
		}
		if inBlank(outcome.Degree) {
			t.Fatalf("winning draw landed in blank band at %d", outcome.Degree)
		}
		if !outcome.Won {
			t.Fatalf("degree %d outside blank bands should win", outcome.Degree)
		}
	}

	for i := 0; i < 5000; i++ {
		outcome, err := selector.Draw(models.GameTypeWheel, 0, offers)
		if err != nil {
			t.Fatalf("draw failed: %v", err)
		}
		if !inBlank(outcome.Degree) {
			t.Fatalf("losing draw landed outside blank bands at %d", outcome.Degree)
		}
		if outcome.Won {
			t.Fatalf("degree %d inside blank band should lose", outcome.Degree)
		}
	}
}

func TestWheelOutcomeAtBandMapping(t *testing.T) {
	offers := []string{"A", "B", "C", "D"}

	cases := []struct {
		degree int
		won    bool
		prize  string
	}{
		{0, true, "A"},
		{30, true, "A"},
		{31, false, ""},
		{90, false, ""},
		{91, true, "B"},
		{150, true, "B"},
		{151, true, "C"},
		{210, true, "C"},
		{211, true, "D"},
		{270, true, "D"},
		{271, false, ""},
		{330, false, ""},
		{331, true, "A"}, // wraps to the same prize as [0,30]
		{360, true, "A"},
	}

	for _, c := range cases {
		outcome := services.WheelOutcomeAt(c.degree, offers)
		if outcome.Won != c.won || outcome.PrizeLabel != c.prize {
			t.Errorf("degree %d: got won=%v prize=%q, want won=%v prize=%q",
				c.degree, outcome.Won, outcome.PrizeLabel, c.won, c.prize)
		}
	}
}

func TestWheelOutcomeAtShortOfferList(t *testing.T) {
	outcome := services.WheelOutcomeAt(211, []string{"A", "B"})
	if outcome.Won {
		t.Error("winning band with no offer behind it should degrade to a loss")
	}
	if outcome.Message != "Better luck next time!" {
		t.Errorf("unexpected message %q", outcome.Message)
	}
}

func TestSpinStateConvergence(t *testing.T) {
	for _, target := range []int{1, 17, 100, 250, 354} {
		state := services.NewSpinState(target)

		for !state.Done {
			state = state.Next()
		}

		if state.Rotation != target {
			t.Errorf("target %d: stopped at rotation %d", target, state.Rotation)
		}
		if state.Revolutions <= 15 {
			t.Errorf("target %d: stopped after only %d revolutions", target, state.Revolutions)
		}
	}
}

// Target 0 can never satisfy the exact-match stop condition because the
// rotation resets to 0 on the revolution branch. The tick cap must still
// land the wheel on target.
func TestSpinStateZeroTargetFallback(t *testing.T) {
	state := services.NewSpinState(0)

	for !state.Done {
		state = state.Next()
	}

	if state.Rotation != 0 {
		t.Errorf("fallback should land on target 0, got %d", state.Rotation)
	}
}

type recordingBroadcaster struct {
	frames  int
	results chan *models.PlayOutcome
}

func (r *recordingBroadcaster) BroadcastSpinFrame(sessionID, spinID string, rotation, revolutions int) {
	r.frames++
}

func (r *recordingBroadcaster) BroadcastSpinResult(sessionID, spinID string, outcome *models.PlayOutcome) {
	r.results <- outcome
}

func TestSpinnerPublishesResult(t *testing.T) {
	rec := &recordingBroadcaster{results: make(chan *models.PlayOutcome, 1)}
	outcome := &models.PlayOutcome{
		GameType: models.GameTypeWheel,
		Won:      true,
		Degree:   100,
		SpinID:   "spin_test_1",
	}

	spinner := services.NewSpinner("session_1", outcome, rec, 10*time.Microsecond, nil)
	go spinner.Run()

	select {
	case got := <-rec.results:
		if got.Degree != 100 {
			t.Errorf("expected result at degree 100, got %d", got.Degree)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("spinner did not converge in time")
	}

	if rec.frames == 0 {
		t.Error("spinner should have published animation frames")
	}
}

func TestSpinnerStop(t *testing.T) {
	rec := &recordingBroadcaster{results: make(chan *models.PlayOutcome, 1)}
	outcome := &models.PlayOutcome{GameType: models.GameTypeWheel, Degree: 50, SpinID: "spin_test_2"}

	spinner := services.NewSpinner("session_2", outcome, rec, time.Hour, nil)
	done := make(chan struct{})
	go func() {
		spinner.Run()
		close(done)
	}()

	spinner.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop on teardown")
	}

	select {
	case <-rec.results:
		t.Fatal("stopped spinner must not publish a result")
	default:
	}
}
