package services

import (
	"time"
)

// The eligibility window is one calendar day at the restaurant, which runs on
// Indian Standard Time regardless of where the server is deployed.
var istZone = time.FixedZone("IST", int(5.5*60*60))

// lastPlayedLayouts covers the timestamp shapes the upstream has been seen
// emitting. Unparseable values count as "never played".
var lastPlayedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// SameISTDay reports whether two instants fall on the same calendar day in
// IST, comparing year/month/day only.
func SameISTDay(a, b time.Time) bool {
	ay, am, ad := a.In(istZone).Date()
	by, bm, bd := b.In(istZone).Date()
	return ay == by && am == bm && ad == bd
}

// PlayedToday reports whether an upstream last-played timestamp falls on
// today's IST calendar day. Empty or malformed timestamps mean the customer
// has not played today.
func PlayedToday(lastPlayed string, now time.Time) bool {
	if lastPlayed == "" || lastPlayed == "null" {
		return false
	}
	for _, layout := range lastPlayedLayouts {
		if t, err := time.Parse(layout, lastPlayed); err == nil {
			return SameISTDay(t, now)
		}
	}
	return false
}

type PlayState string

const (
	StateUnauthenticated PlayState = "unauthenticated"
	StateEligible        PlayState = "eligible"
	StatePlayed          PlayState = "played"
)

// InitialPlayState computes the gate state once at session hydration. The
// state is Played if the upstream says the customer already played today;
// after hydration the only transition is Eligible -> Played, exactly once.
func InitialPlayState(token, lastPlayed string, now time.Time) PlayState {
	if token == "" {
		return StateUnauthenticated
	}
	if PlayedToday(lastPlayed, now) {
		return StatePlayed
	}
	return StateEligible
}
