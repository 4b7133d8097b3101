package domain

// Path identifies which optimization route handled an invocation.
type Path string

const (
	PathFast        Path = "fast"
	PathSmart       Path = "smart"
	PathPassthrough Path = "passthrough"
)

// PassthroughReason explains why an invocation was not optimized.
type PassthroughReason string

const (
	ReasonLoopGuard       PassthroughReason = "loop_guard"
	ReasonDenyListed      PassthroughReason = "deny_listed"
	ReasonFileRedirect    PassthroughReason = "file_redirect"
	ReasonHeredoc         PassthroughReason = "heredoc"
	ReasonDisabled        PassthroughReason = "disabled"
	ReasonForcedMode      PassthroughReason = "forced_mode"
	ReasonSmallOutput     PassthroughReason = "small_output"
	ReasonNoPathAvailable PassthroughReason = "no_path_available"
	ReasonBreakerOpen     PassthroughReason = "breaker_open"
	ReasonLLMRejected     PassthroughReason = "llm_rejected"
	ReasonLLMError        PassthroughReason = "llm_error"
)

// Display renders the reason for humans (hook decision messages, logs).
func (r PassthroughReason) Display() string {
	switch r {
	case ReasonLoopGuard:
		return "already routed through terse"
	case ReasonDenyListed:
		return "command is on the passthrough list"
	case ReasonFileRedirect:
		return "command redirects output to a file"
	case ReasonHeredoc:
		return "command contains a heredoc"
	case ReasonDisabled:
		return "optimization disabled"
	case ReasonForcedMode:
		return "mode forces passthrough"
	case ReasonSmallOutput:
		return "output below passthrough threshold"
	case ReasonNoPathAvailable:
		return "no optimization path available"
	case ReasonBreakerOpen:
		return "circuit breaker open"
	case ReasonLLMRejected:
		return "model output failed validation"
	case ReasonLLMError:
		return "model request failed"
	default:
		return string(r)
	}
}

// Classification is the pre-execution safety verdict for a command.
type Classification struct {
	NeverOptimize bool
	Reason        PassthroughReason
}

// Optimizable is the zero-value-adjacent verdict for commands safe to route.
var Optimizable = Classification{}

// NeverOptimizeBecause builds a blocking classification.
func NeverOptimizeBecause(reason PassthroughReason) Classification {
	return Classification{NeverOptimize: true, Reason: reason}
}

// HookDecision is the pre-execution routing outcome.
type HookDecision struct {
	Rewrite bool
	Path    Path
	Reason  PassthroughReason
}

// OptimizedResult is the final artifact of one optimized invocation.
type OptimizedResult struct {
	Output          string
	Stderr          string
	ExitCode        int
	Path            Path
	OptimizerName   string
	OriginalTokens  int
	OptimizedTokens int
	LatencyMS       int64
}

// SavingsPct reports the token reduction as a percentage of the original.
func (r OptimizedResult) SavingsPct() float64 {
	if r.OriginalTokens == 0 {
		return 0
	}
	saved := r.OriginalTokens - r.OptimizedTokens
	if saved < 0 {
		saved = 0
	}
	return float64(saved) / float64(r.OriginalTokens) * 100
}

// PreprocessedOutput is the deterministic pipeline's product.
type PreprocessedOutput struct {
	Text           string
	OriginalBytes  int
	ProcessedBytes int
	StagesApplied  []string
}

// BytesRemoved reports how much the pipeline shaved off.
func (p PreprocessedOutput) BytesRemoved() int {
	if p.OriginalBytes < p.ProcessedBytes {
		return 0
	}
	return p.OriginalBytes - p.ProcessedBytes
}
