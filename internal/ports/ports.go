// Package ports defines the interfaces between application services and
// infrastructure adapters.
package ports

import (
	"context"

	"github.com/benwelker/terse/internal/domain"
)

// ConfigProvider loads the merged runtime configuration.
type ConfigProvider interface {
	Load(ctx context.Context) (domain.Config, error)
}

// ExecResult captures one shell invocation.
type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Success  bool
}

// Executor runs a shell command and captures its output.
type Executor interface {
	Execute(ctx context.Context, command string) (ExecResult, error)
}

// Optimizer compacts the output of commands it recognizes.
type Optimizer interface {
	Name() string
	CanHandle(cmd domain.CommandContext) bool
	// Optimize turns captured output into its compact form. On error the
	// caller falls back to the raw text.
	Optimize(ctx context.Context, cmd domain.CommandContext, raw ExecResult) (domain.OptimizedResult, error)
}

// Substituter is implemented by optimizers that replace the invocation
// with a cheaper equivalent. The router executes the replacement instead
// of the original, then hands its output to Optimize.
type Substituter interface {
	Substitution(cmd domain.CommandContext) (string, bool)
}

// OptimizerRegistry selects optimizers in declared order.
type OptimizerRegistry interface {
	// First returns the first match; the universal fallback guarantees one.
	First(cmd domain.CommandContext) Optimizer
	// FirstSpecific returns the first non-fallback match, or nil.
	FirstSpecific(cmd domain.CommandContext) Optimizer
}

// Classifier labels a command before execution.
type Classifier interface {
	Classify(cmd domain.CommandContext) domain.Classification
}

// Breaker gates a path on its recent failure rate.
type Breaker interface {
	Allowed(path domain.BreakerPath) bool
	Record(path domain.BreakerPath, success bool)
}

// ChatClient abstracts the local model endpoint used by the smart path.
type ChatClient interface {
	Healthy(ctx context.Context) bool
	Chat(ctx context.Context, system, user string) (string, error)
}

// SmartCompactor is the high-level smart path: prompt construction, the
// model call, and output validation behind one operation.
type SmartCompactor interface {
	Available(ctx context.Context) bool
	// Compact returns validated compacted text or an error; callers fall
	// back to their input on error.
	Compact(ctx context.Context, category domain.Category, text string) (string, error)
}

// EventSink receives hook decisions, best-effort.
type EventSink interface {
	RecordEvent(event domain.HookEvent) error
}

// CommandLog receives per-invocation savings entries, best-effort.
type CommandLog interface {
	Append(entry domain.CommandLogEntry) error
}

// AnalyticsStore aggregates logged invocations for reporting.
type AnalyticsStore interface {
	Import(entries []domain.CommandLogEntry) error
	Summary(days int) (AnalyticsSummary, error)
	TopCommands(days, limit int) ([]CommandAggregate, error)
	Close() error
}

// AnalyticsSummary is the stats rollup over a window.
type AnalyticsSummary struct {
	Invocations     int
	OriginalTokens  int
	OptimizedTokens int
	ByOptimizer     []OptimizerAggregate
}

// OptimizerAggregate is per-optimizer savings.
type OptimizerAggregate struct {
	Name            string
	Invocations     int
	OriginalTokens  int
	OptimizedTokens int
}

// CommandAggregate is per-command-shape token burn.
type CommandAggregate struct {
	Command         string
	Invocations     int
	OriginalTokens  int
	OptimizedTokens int
}

// Logger is the minimal structured logging surface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}
