package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/giantswarm/sleuth/internal/capability"
	"github.com/giantswarm/sleuth/internal/config"
	"github.com/giantswarm/sleuth/internal/execution"
	"github.com/giantswarm/sleuth/internal/llm"
	"github.com/giantswarm/sleuth/internal/provider"
	"github.com/giantswarm/sleuth/internal/research"
	"github.com/giantswarm/sleuth/internal/store"
	"github.com/giantswarm/sleuth/pkg/logging"
)

// Services holds all initialized components of a sleuth run.
//
// Initialization order:
//  1. Record store
//  2. Provider session and capability discovery (skipped when offline)
//  3. Executor and engine
//  4. Planner and analyzer (optional, they need an API key)
//  5. Research service
type Services struct {
	// Provider is the connected capability provider, nil when offline.
	Provider provider.Session

	Registry *capability.Registry
	Engine   *execution.Engine
	Store    store.RecordStore

	// Planner and Analyzer are nil when no language model is configured.
	Planner  *llm.Planner
	Analyzer *llm.Analyzer

	Research *research.Service
}

// InitializeServices creates all services described by cfg.SleuthConfig.
//
// The store and the provider connection are critical and fail the bootstrap.
// A missing or broken language model configuration only logs a warning: the
// research service then falls back to degenerate plans and raw analyses.
func InitializeServices(ctx context.Context, cfg *Config) (*Services, error) {
	sleuthCfg := cfg.SleuthConfig
	if sleuthCfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	recordStore, err := store.Open(sleuthCfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store at %s: %w", sleuthCfg.Store.Driver, sleuthCfg.Store.Path, err)
	}
	logging.Debug("Services", "Opened %s store at %s", sleuthCfg.Store.Driver, sleuthCfg.Store.Path)

	services := &Services{
		Registry: capability.NewRegistry(),
		Store:    recordStore,
	}

	if !cfg.Offline {
		session, err := connectProvider(ctx, sleuthCfg.Provider)
		if err != nil {
			_ = recordStore.Close()
			return nil, err
		}
		services.Provider = session

		set, err := services.Registry.Refresh(ctx, session)
		if err != nil {
			_ = services.Close()
			return nil, fmt.Errorf("failed to discover capabilities of %s: %w", session.Name(), err)
		}
		counts := set.Counts()
		logging.Info("Services", "Discovered %d tools, %d resources, %d prompts from %s",
			counts[capability.KindTool], counts[capability.KindResource], counts[capability.KindPrompt], session.Name())
	}

	var invoker execution.Invoker
	if services.Provider != nil {
		invoker = services.Provider
	}
	executor := execution.NewExecutor(invoker, sleuthCfg.Execution.StepTimeout)
	services.Engine = execution.NewEngine(executor, services.Registry, cfg.Callback)

	services.Planner, services.Analyzer = createModelServices(sleuthCfg.LLM)

	deps := research.Dependencies{
		Registry: services.Registry,
		Engine:   services.Engine,
		Store:    recordStore,
	}
	// Typed nils must not reach the interfaces.
	if services.Provider != nil {
		deps.Provider = services.Provider
	}
	if services.Planner != nil {
		deps.Planner = services.Planner
	}
	if services.Analyzer != nil {
		deps.Analyzer = services.Analyzer
	}

	services.Research, err = research.NewService(deps)
	if err != nil {
		_ = services.Close()
		return nil, fmt.Errorf("failed to create research service: %w", err)
	}

	return services, nil
}

// connectProvider creates the provider session and performs the handshake.
func connectProvider(ctx context.Context, cfg config.ProviderConfig) (provider.Session, error) {
	session, err := provider.NewSession(provider.Config{
		Transport: cfg.Transport,
		Command:   cfg.Command,
		Args:      cfg.Args,
		Env:       cfg.ProviderEnv(os.Getenv),
		URL:       cfg.URL,
		Headers:   cfg.Headers,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid provider configuration: %w", err)
	}

	timeout := cfg.InitTimeout
	if timeout <= 0 {
		timeout = config.DefaultInitTimeout
	}
	initCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logging.Info("Services", "Connecting to provider %s", session.Name())
	if err := session.Initialize(initCtx); err != nil {
		_ = session.Close()
		return nil, err
	}
	return session, nil
}

func createModelServices(cfg config.LLMConfig) (*llm.Planner, *llm.Analyzer) {
	model, err := llm.NewModel(cfg)
	if err != nil {
		logging.Warn("Services", "Language model unavailable, using fallback plans and raw analysis: %v", err)
		return nil, nil
	}
	opts := llm.CallOptions(cfg)
	logging.Debug("Services", "Using %s model %s", cfg.Provider, cfg.Model)
	return llm.NewPlanner(model, opts...), llm.NewAnalyzer(model, opts...)
}

// Close disconnects the provider and closes the store.
func (s *Services) Close() error {
	var errs []error
	if s.Provider != nil {
		if err := s.Provider.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close provider session: %w", err))
		}
	}
	if s.Store != nil {
		if err := s.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
