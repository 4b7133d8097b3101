// Package router makes the two routing decisions: pre-execution (rewrite
// or run unmodified) and post-execution (fast, smart, or passthrough).
package router

import (
	"context"
	"time"

	"github.com/benwelker/terse/internal/application/preprocess"
	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/ports"
)

// Service is the decision engine. All collaborators are ports; failures in
// any of them degrade to passing the raw output through.
type Service struct {
	Config     domain.Config
	Classifier ports.Classifier
	Registry   ports.OptimizerRegistry
	Breaker    ports.Breaker
	Executor   ports.Executor
	Smart      ports.SmartCompactor
	CommandLog ports.CommandLog
	Logger     ports.Logger

	cache *decisionCache
}

// NewService wires a router service.
func NewService(cfg domain.Config, classifier ports.Classifier, registry ports.OptimizerRegistry,
	breaker ports.Breaker, exec ports.Executor, smart ports.SmartCompactor,
	commandLog ports.CommandLog, log ports.Logger) *Service {
	return &Service{
		Config:     cfg,
		Classifier: classifier,
		Registry:   registry,
		Breaker:    breaker,
		Executor:   exec,
		Smart:      smart,
		CommandLog: commandLog,
		Logger:     log,
		cache:      newDecisionCache(time.Duration(cfg.Router.DecisionCacheTTLSecs) * time.Second),
	}
}

// DecideHook is the pre-execution decision: should the host run the
// command unmodified, or re-invoke it through `terse run`? It never
// executes the command.
func (s *Service) DecideHook(ctx context.Context, cmd domain.CommandContext) domain.HookDecision {
	if !s.Config.General.Enabled {
		return domain.HookDecision{Reason: domain.ReasonDisabled}
	}
	if s.Config.General.Mode == "passthrough" {
		return domain.HookDecision{Reason: domain.ReasonForcedMode}
	}
	// Keyed by the full original: redirects, heredocs, and wrappers that
	// classification sees can differ between commands sharing a core.
	if cached, ok := s.cache.get(cmd.Original); ok {
		return cached
	}

	decision := s.decideHook(ctx, cmd)
	s.cache.put(cmd.Original, decision)
	return decision
}

func (s *Service) decideHook(ctx context.Context, cmd domain.CommandContext) domain.HookDecision {
	if verdict := s.Classifier.Classify(cmd); verdict.NeverOptimize {
		return domain.HookDecision{Reason: verdict.Reason}
	}
	if s.fastPermitted() && s.Registry.FirstSpecific(cmd) != nil {
		return domain.HookDecision{Rewrite: true, Path: domain.PathFast}
	}
	if s.smartPermitted() && s.Smart.Available(ctx) {
		return domain.HookDecision{Rewrite: true, Path: domain.PathSmart}
	}
	return domain.HookDecision{Reason: domain.ReasonNoPathAvailable}
}

// ExecuteRun executes the command and produces the final (possibly
// optimized) output. The command's own exit code is always preserved in
// the result; optimization failures only ever downgrade the path.
func (s *Service) ExecuteRun(ctx context.Context, rawCommand string) domain.OptimizedResult {
	cmd := domain.NewCommandContext(rawCommand)
	start := time.Now()

	fastOpt, execCmd := s.fastPlan(cmd)
	res, err := s.Executor.Execute(ctx, execCmd)
	if err != nil && execCmd != rawCommand {
		// The substituted invocation failed to start; recover by running
		// the original untouched.
		s.Breaker.Record(domain.BreakerFast, false)
		s.Logger.Warn("substituted command failed to start", map[string]interface{}{"command": execCmd, "error": err.Error()})
		fastOpt = nil
		res, err = s.Executor.Execute(ctx, rawCommand)
	}
	if err != nil {
		s.Logger.Warn("command failed to start", map[string]interface{}{"command": rawCommand, "error": err.Error()})
		return domain.OptimizedResult{
			Output:   res.Stdout,
			Stderr:   res.Stderr + "\n" + err.Error(),
			ExitCode: res.ExitCode,
			Path:     domain.PathPassthrough,
		}
	}

	result := s.route(ctx, cmd, res, fastOpt, execCmd != rawCommand)
	result.LatencyMS = time.Since(start).Milliseconds()
	result.OriginalTokens = domain.EstimateTokens(res.Stdout + res.Stderr)
	result.OptimizedTokens = domain.EstimateTokens(result.Output + result.Stderr)
	s.logResult(cmd, result)
	return result
}

// fastPlan picks the fast-path optimizer, if any, and the command to
// execute. Substitution-capable optimizers replace the invocation with a
// cheaper one, which runs in place of the original.
func (s *Service) fastPlan(cmd domain.CommandContext) (ports.Optimizer, string) {
	if !s.Config.General.Enabled || s.Config.General.Mode == "passthrough" {
		return nil, cmd.Original
	}
	if s.Classifier.Classify(cmd).NeverOptimize {
		return nil, cmd.Original
	}
	if !s.fastPermitted() {
		return nil, cmd.Original
	}
	opt := s.Registry.FirstSpecific(cmd)
	if opt == nil {
		return nil, cmd.Original
	}
	if sub, ok := opt.(ports.Substituter); ok {
		if replacement, ok := sub.Substitution(cmd); ok {
			return opt, replacement
		}
	}
	return opt, cmd.Original
}

func (s *Service) route(ctx context.Context, cmd domain.CommandContext, res ports.ExecResult, fastOpt ports.Optimizer, substituted bool) domain.OptimizedResult {
	if !s.Config.General.Enabled || s.Config.General.Mode == "passthrough" {
		return passthrough(res, domain.ReasonForcedMode)
	}
	if verdict := s.Classifier.Classify(cmd); verdict.NeverOptimize {
		return passthrough(res, verdict.Reason)
	}

	// Fast path first: deterministic and cheap beats everything else.
	if fastOpt != nil {
		optimized, err := s.runFast(ctx, fastOpt, cmd, res)
		s.Breaker.Record(domain.BreakerFast, err == nil)
		if err == nil {
			optimized.Path = domain.PathFast
			return optimized
		}
		s.Logger.Warn("fast optimizer failed", map[string]interface{}{
			"optimizer": fastOpt.Name(), "error": err.Error(),
		})
		if substituted {
			// res holds the substituted run's output; the fallback needs
			// the original command's.
			if raw, rerr := s.Executor.Execute(ctx, cmd.Original); rerr == nil {
				res = raw
			}
		}
	}

	size := len(res.Stdout) + len(res.Stderr)
	if size < s.Config.OutputThresholds.PassthroughBelowBytes {
		return passthrough(res, domain.ReasonSmallOutput)
	}
	if size >= s.Config.OutputThresholds.SmartPathAboveBytes && s.smartPermitted() && s.Smart.Available(ctx) {
		return s.runSmart(ctx, cmd, res)
	}
	return passthrough(res, domain.ReasonNoPathAvailable)
}

// runFast applies the optimizer under the fast-path time budget from
// fast_path.timeout_ms.
func (s *Service) runFast(ctx context.Context, opt ports.Optimizer, cmd domain.CommandContext, res ports.ExecResult) (domain.OptimizedResult, error) {
	if ms := s.Config.FastPath.TimeoutMS; ms > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(ms)*time.Millisecond)
		defer cancel()
	}
	return opt.Optimize(ctx, cmd, res)
}

// runSmart preprocesses, asks the model, and gates the answer. Every
// failure falls back to the preprocessed text, never to an error.
func (s *Service) runSmart(ctx context.Context, cmd domain.CommandContext, res ports.ExecResult) domain.OptimizedResult {
	pre := preprocess.Run(res.Stdout+res.Stderr, s.Config.Preprocessing)
	category := domain.ClassifyCategory(cmd.Core)

	validated, err := s.Smart.Compact(ctx, category, pre.Text)
	if err != nil {
		s.Breaker.Record(domain.BreakerSmart, false)
		s.Logger.Warn("smart path fell back to preprocessed text", map[string]interface{}{"error": err.Error()})
		return preprocessed(res, pre, domain.ReasonLLMError)
	}
	s.Breaker.Record(domain.BreakerSmart, true)
	return domain.OptimizedResult{
		Output:        validated,
		ExitCode:      res.ExitCode,
		Path:          domain.PathSmart,
		OptimizerName: "llm",
	}
}

func (s *Service) fastPermitted() bool {
	return s.Config.FastPath.Enabled &&
		s.Config.General.Mode != "smart-only" &&
		s.Breaker.Allowed(domain.BreakerFast)
}

func (s *Service) smartPermitted() bool {
	return s.Config.SmartPath.Enabled &&
		s.Config.General.Mode != "fast-only" &&
		s.Breaker.Allowed(domain.BreakerSmart)
}

func (s *Service) logResult(cmd domain.CommandContext, result domain.OptimizedResult) {
	if !s.Config.Logging.Enabled || s.CommandLog == nil {
		return
	}
	// Best-effort: analytics must never fail an invocation.
	_ = s.CommandLog.Append(domain.CommandLogEntry{
		Timestamp:       time.Now().UTC(),
		Command:         cmd.Core,
		Path:            string(result.Path),
		OriginalTokens:  result.OriginalTokens,
		OptimizedTokens: result.OptimizedTokens,
		SavingsPct:      result.SavingsPct(),
		OptimizerUsed:   result.OptimizerName,
		LatencyMS:       result.LatencyMS,
	})
}

func passthrough(res ports.ExecResult, _ domain.PassthroughReason) domain.OptimizedResult {
	return domain.OptimizedResult{
		Output:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
		Path:     domain.PathPassthrough,
	}
}

func preprocessed(res ports.ExecResult, pre domain.PreprocessedOutput, _ domain.PassthroughReason) domain.OptimizedResult {
	return domain.OptimizedResult{
		Output:        pre.Text,
		ExitCode:      res.ExitCode,
		Path:          domain.PathSmart,
		OptimizerName: "preprocess",
	}
}
