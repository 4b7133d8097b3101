package domain

import (
	"testing"
	"time"
)

const (
	testWindow    = 10
	testThreshold = 0.2
	testCooldown  = 10 * time.Minute
)

func record(p *PathState, now time.Time, outcomes ...bool) {
	for _, ok := range outcomes {
		p.Record(ok, now, testWindow, testThreshold, testCooldown)
	}
}

func TestPathStateOpensAboveThreshold(t *testing.T) {
	now := time.Now()
	var p PathState

	// 3 failures in a 10-wide window is a 30% rate, above 20%.
	record(&p, now, true, true, true, true, true, true, true, false, false, false)

	if !p.Open(now) {
		t.Fatalf("expected breaker open after 3/10 failures, state %+v", p)
	}
}

func TestPathStateStaysClosedAtLowFailureRate(t *testing.T) {
	now := time.Now()
	var p PathState

	record(&p, now, true, true, true, true, true, true, true, true, true, false)

	if p.Open(now) {
		t.Fatalf("expected breaker closed at 1/10 failures, state %+v", p)
	}
}

func TestPathStateIncompleteWindowNeverOpens(t *testing.T) {
	now := time.Now()
	var p PathState

	record(&p, now, false, false, false)

	if p.Open(now) {
		t.Fatalf("breaker must not open before the window fills, state %+v", p)
	}
}

func TestPathStateCooldownExpiryResets(t *testing.T) {
	now := time.Now()
	var p PathState

	record(&p, now, false, false, false, false, false, false, false, false, false, false)
	if !p.Open(now) {
		t.Fatal("expected breaker open")
	}

	later := now.Add(testCooldown + time.Second)
	if p.Open(later) {
		t.Fatal("expected breaker closed after cooldown")
	}

	// First record after expiry starts a clean window.
	p.Record(true, later, testWindow, testThreshold, testCooldown)
	if len(p.Results) != 1 || p.TrippedUntil != nil {
		t.Fatalf("expected clean window after cooldown, state %+v", p)
	}
}

func TestPathStateWindowSlides(t *testing.T) {
	now := time.Now()
	var p PathState

	record(&p, now, false, false, false, false, false, false, false, false, false, false)
	later := now.Add(testCooldown + time.Second)
	// 10 successes push all failures out of the window.
	record(&p, later, true, true, true, true, true, true, true, true, true, true)

	if p.Open(later) {
		t.Fatalf("expected breaker closed after window refilled with successes, state %+v", p)
	}
	if len(p.Results) != testWindow {
		t.Fatalf("window should hold exactly %d results, got %d", testWindow, len(p.Results))
	}
}
