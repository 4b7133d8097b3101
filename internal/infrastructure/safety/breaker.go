package safety

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/pkg/filesystem"
	"github.com/benwelker/terse/internal/ports"
)

// FileBreaker is a per-path circuit breaker persisted as JSON so state
// survives across the one-process-per-command lifecycle. Reads are
// optimistic: any load failure yields closed breakers. Writes are
// best-effort via write-then-rename; concurrent instances race
// last-writer-wins, which is acceptable for an advisory gate.
type FileBreaker struct {
	path      string
	window    int
	threshold float64
	cooldown  time.Duration
	now       func() time.Time

	mu    sync.Mutex
	state domain.BreakerState
}

// NewFileBreaker loads state from ~/.terse/circuit-breaker.json.
func NewFileBreaker(cfg domain.RouterSettings) *FileBreaker {
	return NewFileBreakerAt(filepath.Join(filesystem.TerseDir(), "circuit-breaker.json"), cfg)
}

// NewFileBreakerAt loads state from an explicit path.
func NewFileBreakerAt(path string, cfg domain.RouterSettings) *FileBreaker {
	b := &FileBreaker{
		path:      path,
		window:    cfg.CircuitBreakerWindow,
		threshold: cfg.CircuitBreakerThreshold,
		cooldown:  time.Duration(cfg.CircuitBreakerCooldownSecs) * time.Second,
		now:       time.Now,
	}
	if b.window <= 0 {
		b.window = 10
	}
	if b.threshold <= 0 {
		b.threshold = 0.2
	}
	if b.cooldown <= 0 {
		b.cooldown = 10 * time.Minute
	}
	b.load()
	return b
}

// Allowed reports whether the path is currently closed (usable). An
// expired trip counts as closed; the stale state is cleared on the next
// Record.
func (b *FileBreaker) Allowed(path domain.BreakerPath) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.state.Get(path).Open(b.now())
}

// Record appends an outcome and persists the new state.
func (b *FileBreaker) Record(path domain.BreakerPath, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Get(path).Record(success, b.now(), b.window, b.threshold, b.cooldown)
	b.save()
}

// State returns a copy of the current breaker state for reporting.
func (b *FileBreaker) State() domain.BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *FileBreaker) load() {
	data, err := os.ReadFile(b.path)
	if err != nil {
		return
	}
	var state domain.BreakerState
	if err := json.Unmarshal(data, &state); err != nil {
		return
	}
	b.state = state
}

func (b *FileBreaker) save() {
	data, err := json.Marshal(b.state)
	if err != nil {
		return
	}
	tmp := b.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, b.path)
}

var _ ports.Breaker = (*FileBreaker)(nil)
