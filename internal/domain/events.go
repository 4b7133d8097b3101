package domain

import "time"

// HookEvent records one pre-execution hook decision.
type HookEvent struct {
	ID                string    `json:"id"`
	Timestamp         time.Time `json:"timestamp"`
	ToolName          string    `json:"tool_name"`
	Command           string    `json:"command,omitempty"`
	Decision          string    `json:"decision"` // rewrite | passthrough
	PassthroughReason string    `json:"passthrough_reason,omitempty"`
}

// CommandLogEntry records one optimized invocation and its token savings.
type CommandLogEntry struct {
	Timestamp       time.Time `json:"timestamp"`
	Command         string    `json:"command"`
	Path            string    `json:"path"`
	OriginalTokens  int       `json:"original_tokens"`
	OptimizedTokens int       `json:"optimized_tokens"`
	SavingsPct      float64   `json:"savings_pct"`
	OptimizerUsed   string    `json:"optimizer_used,omitempty"`
	LatencyMS       int64     `json:"latency_ms,omitempty"`
}
