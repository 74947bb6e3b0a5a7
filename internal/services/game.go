package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"table-games-backend/internal/models"
)

var (
	ErrAlreadyPlayed = errors.New("game already played today")
	ErrNotPlayed     = errors.New("no game has been played yet")
	ErrAlreadyRated  = errors.New("feedback already submitted")
	ErrNoToken       = errors.New("session has no registration token")
)

// GameEngine owns the play lifecycle: hydrating sessions from upstream
// registration, gating plays to one per eligibility window, resolving
// outcomes, and kicking off the async upstream notifications.
type GameEngine struct {
	store    SessionStore
	selector *OutcomeSelector
	upstream *UpstreamClient

	broadcaster  Broadcaster
	spinInterval time.Duration

	mu          sync.Mutex
	activeSpins map[string]*spinEntry

	// sessionLocks serializes check-and-commit per session: the played and
	// rated flags must flip at most once even under concurrent requests.
	lockMu       sync.Mutex
	sessionLocks map[string]*sync.Mutex

	// now is swappable so tests can pin the eligibility window.
	now func() time.Time
}

type spinEntry struct {
	spinner   *Spinner
	startedAt time.Time
}

func NewGameEngine(store SessionStore, selector *OutcomeSelector, upstream *UpstreamClient, broadcaster Broadcaster) *GameEngine {
	return &GameEngine{
		store:        store,
		selector:     selector,
		upstream:     upstream,
		broadcaster:  broadcaster,
		spinInterval: spinTickInterval,
		activeSpins:  make(map[string]*spinEntry),
		sessionLocks: make(map[string]*sync.Mutex),
		now:          time.Now,
	}
}

func (ge *GameEngine) sessionLock(sessionID string) *sync.Mutex {
	ge.lockMu.Lock()
	defer ge.lockMu.Unlock()

	lock, ok := ge.sessionLocks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		ge.sessionLocks[sessionID] = lock
	}
	return lock
}

// SetClock overrides the engine's time source.
func (ge *GameEngine) SetClock(now func() time.Time) {
	ge.now = now
}

// SetSpinInterval overrides the wheel animation cadence.
func (ge *GameEngine) SetSpinInterval(d time.Duration) {
	ge.spinInterval = d
}

// Register runs the upstream registration and hydrates a session. The played
// flag is computed once here from the upstream's last-played timestamp.
func (ge *GameEngine) Register(ctx context.Context, req *models.RegisterRequest) (*models.Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := ge.upstream.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	offers := make(map[models.GameType][]string, len(resp.Offers))
	for game, list := range resp.Offers {
		if gt, err := models.ParseGameType(game); err == nil {
			offers[gt] = list
		}
	}

	session := &models.Session{
		ID:             models.GenerateSessionID(),
		Token:          resp.Token,
		TableName:      resp.TableName,
		Offers:         offers,
		WinProbability: models.NormalizeProbability(resp.WinProbability),
		LastPlayedAt:   resp.LatestPlayedTimestamp,
		Played:         InitialPlayState(resp.Token, resp.LatestPlayedTimestamp, ge.now()) == StatePlayed,
		CreatedAt:      ge.now(),
	}

	if err := ge.store.Put(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %v", err)
	}

	return session, nil
}

// Play resolves one game for the session. The gate check and the flag commit
// run under the session's lock, so concurrent requests cannot both observe an
// eligible session: a played session never produces a second outcome. The
// played flag is committed and the upstream notified before the caller sees
// the result; the notification never blocks or rolls anything back.
func (ge *GameEngine) Play(ctx context.Context, sessionID string, game models.GameType) (*models.PlayOutcome, error) {
	lock := ge.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := ge.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.Played {
		return nil, ErrAlreadyPlayed
	}

	outcome, err := ge.selector.Draw(game, session.WinProbability, session.GameOffers(game))
	if err != nil {
		return nil, err
	}

	if err := ge.store.MarkPlayed(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to mark session played: %v", err)
	}

	ge.upstream.ReportPlayed(session.Token, session.TableName)

	if game == models.GameTypeWheel {
		outcome.SpinID = models.GenerateSpinID()
		ge.startSpin(sessionID, outcome)
	}

	return outcome, nil
}

func (ge *GameEngine) startSpin(sessionID string, outcome *models.PlayOutcome) {
	spinner := NewSpinner(sessionID, outcome, ge.broadcaster, ge.spinInterval, func(sp *Spinner) {
		ge.mu.Lock()
		delete(ge.activeSpins, sp.ID)
		ge.mu.Unlock()
	})

	ge.mu.Lock()
	ge.activeSpins[spinner.ID] = &spinEntry{spinner: spinner, startedAt: ge.now()}
	ge.mu.Unlock()

	go spinner.Run()
}

// ActiveSpinCount reports how many wheel animations are currently running.
func (ge *GameEngine) ActiveSpinCount() int {
	ge.mu.Lock()
	defer ge.mu.Unlock()
	return len(ge.activeSpins)
}

// CleanupStaleSpins stops animation loops that outlived their welcome, e.g.
// when every subscriber disconnected mid-spin.
func (ge *GameEngine) CleanupStaleSpins(maxAge time.Duration) {
	ge.mu.Lock()
	defer ge.mu.Unlock()

	for id, entry := range ge.activeSpins {
		if ge.now().Sub(entry.startedAt) > maxAge {
			entry.spinner.Stop()
			delete(ge.activeSpins, id)
		}
	}
}

// SubmitFeedback accepts a rating for a played session and forwards it
// upstream, best effort. A session with no token cannot submit feedback and
// no upstream call is made.
func (ge *GameEngine) SubmitFeedback(ctx context.Context, sessionID string, rating int) error {
	lock := ge.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := ge.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.Token == "" {
		return ErrNoToken
	}
	if !session.Played {
		return ErrNotPlayed
	}
	if session.Rated {
		return ErrAlreadyRated
	}

	if err := ge.store.MarkRated(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to mark session rated: %v", err)
	}

	ge.upstream.ReportFeedback(session.Token, rating)

	return nil
}

// Session returns the current session snapshot for UI hydration.
func (ge *GameEngine) Session(ctx context.Context, sessionID string) (*models.Session, error) {
	return ge.store.Get(ctx, sessionID)
}
