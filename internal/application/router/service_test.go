package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/ports"
)

type fakeClassifier struct {
	verdict domain.Classification
	fn      func(domain.CommandContext) domain.Classification
}

func (f *fakeClassifier) Classify(cmd domain.CommandContext) domain.Classification {
	if f.fn != nil {
		return f.fn(cmd)
	}
	return f.verdict
}

type fakeOptimizer struct {
	name        string
	result      domain.OptimizedResult
	err         error
	calls       int
	hadDeadline bool
}

func (f *fakeOptimizer) Name() string                         { return f.name }
func (f *fakeOptimizer) CanHandle(domain.CommandContext) bool { return true }
func (f *fakeOptimizer) Optimize(ctx context.Context, _ domain.CommandContext, _ ports.ExecResult) (domain.OptimizedResult, error) {
	f.calls++
	_, f.hadDeadline = ctx.Deadline()
	return f.result, f.err
}

// fakeSubstituter additionally offers a replacement invocation.
type fakeSubstituter struct {
	fakeOptimizer
	replacement string
}

func (f *fakeSubstituter) Substitution(domain.CommandContext) (string, bool) {
	return f.replacement, f.replacement != ""
}

type fakeRegistry struct{ specific ports.Optimizer }

func (f *fakeRegistry) First(domain.CommandContext) ports.Optimizer { return f.specific }
func (f *fakeRegistry) FirstSpecific(domain.CommandContext) ports.Optimizer {
	return f.specific
}

type fakeBreaker struct {
	allowed  map[domain.BreakerPath]bool
	recorded []string
}

func (f *fakeBreaker) Allowed(path domain.BreakerPath) bool {
	if f.allowed == nil {
		return true
	}
	allowed, ok := f.allowed[path]
	return !ok || allowed
}

func (f *fakeBreaker) Record(path domain.BreakerPath, success bool) {
	outcome := "ok"
	if !success {
		outcome = "fail"
	}
	f.recorded = append(f.recorded, string(path)+":"+outcome)
}

type fakeExecutor struct {
	result   ports.ExecResult
	err      error
	commands []string
	errOn    map[string]error
	results  map[string]ports.ExecResult
}

func (f *fakeExecutor) Execute(_ context.Context, command string) (ports.ExecResult, error) {
	f.commands = append(f.commands, command)
	if err, ok := f.errOn[command]; ok {
		return ports.ExecResult{}, err
	}
	if res, ok := f.results[command]; ok {
		return res, nil
	}
	return f.result, f.err
}

type fakeSmart struct {
	available bool
	reply     string
	err       error
}

func (f *fakeSmart) Available(context.Context) bool { return f.available }
func (f *fakeSmart) Compact(context.Context, domain.Category, string) (string, error) {
	return f.reply, f.err
}

type fakeLog struct{ entries []domain.CommandLogEntry }

func (f *fakeLog) Append(e domain.CommandLogEntry) error {
	f.entries = append(f.entries, e)
	return nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}

type deps struct {
	cfg        domain.Config
	classifier *fakeClassifier
	registry   *fakeRegistry
	breaker    *fakeBreaker
	exec       *fakeExecutor
	smart      *fakeSmart
	log        *fakeLog
}

func defaultDeps() *deps {
	cfg := domain.DefaultConfig()
	cfg.Router.DecisionCacheTTLSecs = 0
	cfg.SmartPath.Enabled = true
	return &deps{
		cfg:        cfg,
		classifier: &fakeClassifier{},
		registry:   &fakeRegistry{},
		breaker:    &fakeBreaker{},
		exec:       &fakeExecutor{},
		smart:      &fakeSmart{},
		log:        &fakeLog{},
	}
}

func (d *deps) service() *Service {
	return NewService(d.cfg, d.classifier, d.registry, d.breaker, d.exec, d.smart, d.log, nopLogger{})
}

func cmdCtx(raw string) domain.CommandContext { return domain.NewCommandContext(raw) }

func TestDecideHookDisabled(t *testing.T) {
	d := defaultDeps()
	d.cfg.General.Enabled = false
	got := d.service().DecideHook(context.Background(), cmdCtx("git status"))
	if got.Rewrite || got.Reason != domain.ReasonDisabled {
		t.Fatalf("got %+v", got)
	}
}

func TestDecideHookPassthroughMode(t *testing.T) {
	d := defaultDeps()
	d.cfg.General.Mode = "passthrough"
	got := d.service().DecideHook(context.Background(), cmdCtx("git status"))
	if got.Rewrite || got.Reason != domain.ReasonForcedMode {
		t.Fatalf("got %+v", got)
	}
}

func TestDecideHookNeverOptimize(t *testing.T) {
	d := defaultDeps()
	d.classifier.verdict = domain.NeverOptimizeBecause(domain.ReasonDenyListed)
	got := d.service().DecideHook(context.Background(), cmdCtx("rm -rf build"))
	if got.Rewrite || got.Reason != domain.ReasonDenyListed {
		t.Fatalf("got %+v", got)
	}
}

func TestDecideHookFastPath(t *testing.T) {
	d := defaultDeps()
	d.registry.specific = &fakeOptimizer{name: "git"}
	got := d.service().DecideHook(context.Background(), cmdCtx("git status"))
	if !got.Rewrite || got.Path != domain.PathFast {
		t.Fatalf("got %+v", got)
	}
}

func TestDecideHookSmartPathWhenNoOptimizer(t *testing.T) {
	d := defaultDeps()
	d.smart.available = true
	got := d.service().DecideHook(context.Background(), cmdCtx("python train.py"))
	if !got.Rewrite || got.Path != domain.PathSmart {
		t.Fatalf("got %+v", got)
	}
}

func TestDecideHookNoPathAvailable(t *testing.T) {
	d := defaultDeps()
	d.smart.available = false
	got := d.service().DecideHook(context.Background(), cmdCtx("python train.py"))
	if got.Rewrite || got.Reason != domain.ReasonNoPathAvailable {
		t.Fatalf("got %+v", got)
	}
}

func TestDecideHookFastBreakerOpenFallsToSmart(t *testing.T) {
	d := defaultDeps()
	d.registry.specific = &fakeOptimizer{name: "git"}
	d.breaker.allowed = map[domain.BreakerPath]bool{domain.BreakerFast: false}
	d.smart.available = true
	got := d.service().DecideHook(context.Background(), cmdCtx("git status"))
	if !got.Rewrite || got.Path != domain.PathSmart {
		t.Fatalf("got %+v", got)
	}
}

func TestDecideHookCachesDecision(t *testing.T) {
	d := defaultDeps()
	d.cfg.Router.DecisionCacheTTLSecs = 300
	opt := &fakeOptimizer{name: "git"}
	d.registry.specific = opt
	svc := d.service()

	first := svc.DecideHook(context.Background(), cmdCtx("git status"))
	d.registry.specific = nil // would change the fresh decision
	second := svc.DecideHook(context.Background(), cmdCtx("git status"))
	if first != second {
		t.Fatalf("cached decision differs: %+v vs %+v", first, second)
	}
}

// Two commands can share a core while classifying differently; the cache
// must keep their decisions apart.
func TestDecideHookCacheKeyedByFullCommand(t *testing.T) {
	d := defaultDeps()
	d.cfg.Router.DecisionCacheTTLSecs = 300
	d.registry.specific = &fakeOptimizer{name: "git"}
	d.classifier.fn = func(cmd domain.CommandContext) domain.Classification {
		if strings.HasPrefix(cmd.Original, "cd ") {
			return domain.NeverOptimizeBecause(domain.ReasonDenyListed)
		}
		return domain.Classification{}
	}
	svc := d.service()

	plain := svc.DecideHook(context.Background(), cmdCtx("git status"))
	if !plain.Rewrite {
		t.Fatalf("plain command not rewritten: %+v", plain)
	}
	wrapped := svc.DecideHook(context.Background(), cmdCtx("cd /srv && git status"))
	if wrapped.Rewrite {
		t.Fatalf("wrapped command served the plain command's cached decision: %+v", wrapped)
	}
}

func TestExecuteRunFastPath(t *testing.T) {
	d := defaultDeps()
	d.exec.result = ports.ExecResult{Stdout: "raw status output", ExitCode: 0, Success: true}
	d.registry.specific = &fakeOptimizer{
		name:   "git",
		result: domain.OptimizedResult{Output: "clean", OptimizerName: "git"},
	}
	res := d.service().ExecuteRun(context.Background(), "git status")
	if res.Path != domain.PathFast || res.Output != "clean" {
		t.Fatalf("got %+v", res)
	}
	if len(d.breaker.recorded) != 1 || d.breaker.recorded[0] != "fast_path:ok" {
		t.Fatalf("breaker records: %v", d.breaker.recorded)
	}
	if len(d.log.entries) != 1 || d.log.entries[0].OptimizerUsed != "git" {
		t.Fatalf("command log: %+v", d.log.entries)
	}
}

// A substituting optimizer's replacement runs in place of the original,
// never in addition to it.
func TestExecuteRunSubstitutionRunsReplacementOnly(t *testing.T) {
	d := defaultDeps()
	d.exec.result = ports.ExecResult{Stdout: "## main", Success: true}
	d.registry.specific = &fakeSubstituter{
		fakeOptimizer: fakeOptimizer{name: "git", result: domain.OptimizedResult{Output: "clean", OptimizerName: "git"}},
		replacement:   "git status --porcelain -b",
	}
	res := d.service().ExecuteRun(context.Background(), "git status")
	if res.Path != domain.PathFast || res.Output != "clean" {
		t.Fatalf("got %+v", res)
	}
	if len(d.exec.commands) != 1 || d.exec.commands[0] != "git status --porcelain -b" {
		t.Fatalf("executed %v, want just the replacement", d.exec.commands)
	}
}

func TestExecuteRunSubstitutedStartFailureRecovers(t *testing.T) {
	d := defaultDeps()
	d.exec.errOn = map[string]error{"git status --porcelain -b": errors.New("exec format error")}
	d.exec.result = ports.ExecResult{Stdout: "tiny", Success: true}
	d.registry.specific = &fakeSubstituter{
		fakeOptimizer: fakeOptimizer{name: "git", result: domain.OptimizedResult{Output: "clean"}},
		replacement:   "git status --porcelain -b",
	}
	res := d.service().ExecuteRun(context.Background(), "git status")
	if res.Path != domain.PathPassthrough || res.Output != "tiny" {
		t.Fatalf("got %+v", res)
	}
	want := []string{"git status --porcelain -b", "git status"}
	if len(d.exec.commands) != 2 || d.exec.commands[0] != want[0] || d.exec.commands[1] != want[1] {
		t.Fatalf("executed %v, want %v", d.exec.commands, want)
	}
	if d.breaker.recorded[0] != "fast_path:fail" {
		t.Fatalf("breaker records: %v", d.breaker.recorded)
	}
}

func TestExecuteRunSubstitutedOptimizeFailureRerunsOriginal(t *testing.T) {
	d := defaultDeps()
	d.exec.results = map[string]ports.ExecResult{
		"git status --porcelain -b": {Stdout: "## main\nM  x.go", Success: true},
		"git status":                {Stdout: "raw original", Success: true},
	}
	d.registry.specific = &fakeSubstituter{
		fakeOptimizer: fakeOptimizer{name: "git", err: errors.New("boom")},
		replacement:   "git status --porcelain -b",
	}
	res := d.service().ExecuteRun(context.Background(), "git status")
	if res.Path != domain.PathPassthrough || res.Output != "raw original" {
		t.Fatalf("got %+v", res)
	}
	if len(d.exec.commands) != 2 {
		t.Fatalf("executed %v", d.exec.commands)
	}
}

func TestExecuteRunFastOptimizerGetsDeadline(t *testing.T) {
	d := defaultDeps()
	d.cfg.FastPath.TimeoutMS = 500
	d.exec.result = ports.ExecResult{Stdout: "raw", Success: true}
	opt := &fakeOptimizer{name: "git", result: domain.OptimizedResult{Output: "clean"}}
	d.registry.specific = opt
	d.service().ExecuteRun(context.Background(), "git status")
	if !opt.hadDeadline {
		t.Fatal("fast optimizer ran without the configured time budget")
	}
}

func TestExecuteRunSmallOutputPassthrough(t *testing.T) {
	d := defaultDeps()
	d.exec.result = ports.ExecResult{Stdout: "tiny", ExitCode: 0, Success: true}
	res := d.service().ExecuteRun(context.Background(), "python x.py")
	if res.Path != domain.PathPassthrough || res.Output != "tiny" {
		t.Fatalf("got %+v", res)
	}
}

func TestExecuteRunFastFailureFallsBack(t *testing.T) {
	d := defaultDeps()
	d.exec.result = ports.ExecResult{Stdout: "raw", ExitCode: 0, Success: true}
	d.registry.specific = &fakeOptimizer{name: "git", err: errors.New("boom")}
	res := d.service().ExecuteRun(context.Background(), "git status")
	if res.Path != domain.PathPassthrough || res.Output != "raw" {
		t.Fatalf("got %+v", res)
	}
	if d.breaker.recorded[0] != "fast_path:fail" {
		t.Fatalf("breaker records: %v", d.breaker.recorded)
	}
}

func TestExecuteRunSmartPath(t *testing.T) {
	d := defaultDeps()
	d.exec.result = ports.ExecResult{Stdout: strings.Repeat("log line content here\n", 600), Success: true}
	d.smart.available = true
	d.smart.reply = "600 log lines, no errors"
	res := d.service().ExecuteRun(context.Background(), "python train.py")
	if res.Path != domain.PathSmart || res.Output != "600 log lines, no errors" {
		t.Fatalf("got path=%s output=%q", res.Path, res.Output)
	}
	if d.breaker.recorded[len(d.breaker.recorded)-1] != "smart_path:ok" {
		t.Fatalf("breaker records: %v", d.breaker.recorded)
	}
	if res.OriginalTokens == 0 || res.OptimizedTokens == 0 {
		t.Fatalf("token estimates missing: %+v", res)
	}
}

func TestExecuteRunSmartFailureFallsBackToPreprocessed(t *testing.T) {
	d := defaultDeps()
	d.exec.result = ports.ExecResult{Stdout: strings.Repeat("log line content here\n", 600), Success: true}
	d.smart.available = true
	d.smart.err = errors.New("model timeout")
	res := d.service().ExecuteRun(context.Background(), "python train.py")
	if res.Path != domain.PathSmart || res.OptimizerName != "preprocess" {
		t.Fatalf("got %+v", res)
	}
	if !strings.Contains(res.Output, "log line content here") {
		t.Fatalf("preprocessed text missing from fallback output")
	}
	if d.breaker.recorded[len(d.breaker.recorded)-1] != "smart_path:fail" {
		t.Fatalf("breaker records: %v", d.breaker.recorded)
	}
}

func TestExecuteRunMidSizeNoSmartPassthrough(t *testing.T) {
	d := defaultDeps()
	// Above the passthrough floor, below the smart threshold.
	d.exec.result = ports.ExecResult{Stdout: strings.Repeat("x", 5000), Success: true}
	d.smart.available = true
	res := d.service().ExecuteRun(context.Background(), "python x.py")
	if res.Path != domain.PathPassthrough {
		t.Fatalf("got %+v", res.Path)
	}
}

func TestExecuteRunPreservesExitCode(t *testing.T) {
	d := defaultDeps()
	d.exec.result = ports.ExecResult{Stdout: "raw", Stderr: "went wrong", ExitCode: 3}
	res := d.service().ExecuteRun(context.Background(), "python x.py")
	if res.ExitCode != 3 {
		t.Fatalf("exit code %d, want 3", res.ExitCode)
	}
	if res.Stderr != "went wrong" {
		t.Fatalf("stderr %q", res.Stderr)
	}
}

func TestExecuteRunFastOnlyModeSkipsSmart(t *testing.T) {
	d := defaultDeps()
	d.cfg.General.Mode = "fast-only"
	d.exec.result = ports.ExecResult{Stdout: strings.Repeat("log line content here\n", 600), Success: true}
	d.smart.available = true
	res := d.service().ExecuteRun(context.Background(), "python train.py")
	if res.Path != domain.PathPassthrough {
		t.Fatalf("fast-only mode reached %s", res.Path)
	}
}

func TestExecuteRunLoggingDisabledSkipsLog(t *testing.T) {
	d := defaultDeps()
	d.cfg.Logging.Enabled = false
	d.exec.result = ports.ExecResult{Stdout: "tiny", Success: true}
	d.service().ExecuteRun(context.Background(), "echo hi")
	if len(d.log.entries) != 0 {
		t.Fatalf("log written while disabled: %+v", d.log.entries)
	}
}
