package domain

import "time"

// BreakerPath identifies which optimization route a breaker guards.
type BreakerPath string

const (
	BreakerFast  BreakerPath = "fast_path"
	BreakerSmart BreakerPath = "smart_path"
)

// PathState is one path's rolling outcome window plus its open-until mark.
type PathState struct {
	Results      []bool     `json:"results"`
	TrippedUntil *time.Time `json:"tripped_until,omitempty"`
}

// BreakerState is the persisted shape of both breakers.
type BreakerState struct {
	FastPath  PathState `json:"fast_path"`
	SmartPath PathState `json:"smart_path"`
}

// Get returns a pointer to the state for path.
func (b *BreakerState) Get(path BreakerPath) *PathState {
	if path == BreakerSmart {
		return &b.SmartPath
	}
	return &b.FastPath
}

// Open reports whether the path is tripped at now.
func (p *PathState) Open(now time.Time) bool {
	return p.TrippedUntil != nil && now.Before(*p.TrippedUntil)
}

// Record appends an outcome, expiring a stale trip first, and opens the
// breaker the moment the failure ratio over a full window crosses
// threshold.
func (p *PathState) Record(success bool, now time.Time, window int, threshold float64, cooldown time.Duration) {
	if p.TrippedUntil != nil && !now.Before(*p.TrippedUntil) {
		// Cooldown elapsed; resume with a clean window.
		p.TrippedUntil = nil
		p.Results = nil
	}
	p.Results = append(p.Results, success)
	if len(p.Results) > window {
		p.Results = p.Results[len(p.Results)-window:]
	}
	if len(p.Results) < window {
		return
	}
	failures := 0
	for _, ok := range p.Results {
		if !ok {
			failures++
		}
	}
	if float64(failures)/float64(len(p.Results)) > threshold {
		until := now.Add(cooldown)
		p.TrippedUntil = &until
	}
}
