package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/benwelker/terse/internal/application/hook"
	"github.com/benwelker/terse/internal/application/router"
	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/infrastructure/analytics"
	configinfra "github.com/benwelker/terse/internal/infrastructure/config"
	"github.com/benwelker/terse/internal/infrastructure/executor"
	"github.com/benwelker/terse/internal/infrastructure/llm"
	"github.com/benwelker/terse/internal/infrastructure/optimizers"
	"github.com/benwelker/terse/internal/infrastructure/safety"
	"github.com/benwelker/terse/internal/pkg/filesystem"
	"github.com/benwelker/terse/internal/pkg/logger"
	"github.com/benwelker/terse/internal/ports"
)

// Options selects the wiring variant.
type Options struct {
	// Verbose forces debug-level logging regardless of config.
	Verbose bool
	// HookMode writes logs to the rotating hook.log file instead of
	// stderr; the hook's stdout belongs to the protocol.
	HookMode bool
}

// Container wires application services with infrastructure adapters.
type Container struct {
	Config       domain.Config
	ConfigLoader *configinfra.FileLoader
	Router       *router.Service
	Hook         *hook.Service
	Breaker      *safety.FileBreaker
	Ollama       *llm.OllamaClient
	Analytics    *analytics.JSONLWriter
	Logger       ports.Logger
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := configinfra.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	var log ports.Logger
	if opts.HookMode {
		log = logger.NewRotating(filepath.Join(filesystem.TerseDir(), "hook.log"), cfg.Logging.Level, opts.Verbose)
	} else {
		log = logger.New(cfg.Logging.Level, opts.Verbose)
	}

	exec := executor.NewLocalExecutor("")
	classifier := safety.NewClassifier(cfg.Passthrough.Commands)
	breaker := safety.NewFileBreaker(cfg.Router)
	registry := optimizers.NewRegistry(cfg)
	ollama := llm.NewOllama(cfg.SmartPath)
	smart := llm.NewSmartPath(ollama)
	sink := analytics.NewJSONLWriter(cfg.Logging)

	routerService := router.NewService(cfg, classifier, registry, breaker, exec, smart, sink, log)

	exePath, err := os.Executable()
	if err != nil {
		exePath = ""
	}
	hookService := hook.NewService(routerService, sink, log, exePath)

	return &Container{
		Config:       cfg,
		ConfigLoader: cfgLoader,
		Router:       routerService,
		Hook:         hookService,
		Breaker:      breaker,
		Ollama:       ollama,
		Analytics:    sink,
		Logger:       log,
	}, nil
}
