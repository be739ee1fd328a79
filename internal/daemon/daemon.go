// Package daemon wires the session store, pipeline, capabilities, and
// HTTP surface into one process.
package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/harun/mathwise/internal/config"
	"github.com/harun/mathwise/internal/logger"
	"github.com/harun/mathwise/internal/metrics"
	"github.com/harun/mathwise/pkg/agent"
	"github.com/harun/mathwise/pkg/httpapi"
	"github.com/harun/mathwise/pkg/knowledge"
	"github.com/harun/mathwise/pkg/pipeline"
	"github.com/harun/mathwise/pkg/session"
)

// Daemon is the mathwise service process.
type Daemon struct {
	config  *config.Config
	logger  *logger.Logger
	metrics *metrics.Metrics

	// Core modules
	store      *session.Store
	controller *pipeline.Controller
	mathAgent  *agent.MathAgent

	// Knowledge base
	knowledgeStore *knowledge.Store
	seedImporter   *knowledge.Importer
	seedWatcher    *knowledge.SeedWatcher

	// Services
	apiServer *httpapi.Server
	janitor   *session.Janitor

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	running bool
	mu      sync.Mutex
}

// New creates a daemon instance and wires all modules. Nothing starts
// running until Start.
func New(cfg *config.Config, log *logger.Logger) (*Daemon, error) {
	ctx, cancel := context.WithCancel(context.Background())

	d := &Daemon{
		config:  cfg,
		logger:  log,
		metrics: metrics.New(),
		ctx:     ctx,
		cancel:  cancel,
	}

	if err := d.initModules(); err != nil {
		cancel()
		return nil, err
	}

	return d, nil
}

func (d *Daemon) initModules() error {
	zl := d.logger.GetZerolog()

	d.store = session.NewStore(zl)

	if d.config.Knowledge.Enabled {
		if err := d.initKnowledge(); err != nil {
			// The knowledge base enhances research; the pipeline works
			// without it.
			d.logger.Warn().Err(err).Msg("Knowledge base unavailable, research will use the LLM only")
		}
	}

	provider, err := d.buildProvider()
	if err != nil {
		return err
	}

	agentCfg := agent.Config{
		Provider:    provider,
		Model:       d.config.AI.Model,
		Temperature: d.config.AI.Temperature,
		MaxTokens:   d.config.AI.MaxTokens,
		Logger:      zl,
	}
	if d.knowledgeStore != nil {
		agentCfg.Retriever = d.knowledgeStore
	}
	d.mathAgent, err = agent.New(agentCfg)
	if err != nil {
		return fmt.Errorf("failed to create math agent: %w", err)
	}

	runnerCfg := pipeline.RunnerConfig{
		ResearchTimeout: time.Duration(d.config.Pipeline.ResearchTimeoutSeconds) * time.Second,
		SolveTimeout:    time.Duration(d.config.Pipeline.SolveTimeoutSeconds) * time.Second,
	}
	runner := pipeline.NewRunner(d.store, d.mathAgent, d.mathAgent, runnerCfg, d.metrics, zl)

	policy := pipeline.NewTokenPolicy(d.config.Pipeline.ApprovalTokens)
	gate := pipeline.NewGate(d.store, d.mathAgent, policy, runnerCfg.SolveTimeout, d.metrics, zl)

	d.controller = pipeline.NewController(d.store, runner, gate, d.metrics, zl)

	d.apiServer, err = httpapi.NewServer(httpapi.ServerOptions{
		Host:               d.config.Server.Host,
		Port:               d.config.Server.Port,
		RateLimitPerMinute: d.config.Server.RateLimitPerMinute,
	}, d.controller, d.metrics, zl)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	archiver, err := session.NewArchiver(d.config.Retention.ArchivePath, zl)
	if err != nil {
		return fmt.Errorf("failed to create session archiver: %w", err)
	}
	d.janitor = session.NewJanitor(
		d.store,
		archiver,
		time.Duration(d.config.Retention.AgeHours)*time.Hour,
		d.config.Retention.Schedule,
		zl,
	)

	return nil
}

func (d *Daemon) buildProvider() (agent.LLMProvider, error) {
	switch d.config.AI.Provider {
	case "anthropic":
		return agent.NewAnthropicProvider(d.config.AI.AnthropicAPIKey), nil
	case "openai":
		return agent.NewOpenAIProvider(d.config.AI.OpenAIAPIKey), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", d.config.AI.Provider)
	}
}

func (d *Daemon) initKnowledge() error {
	zl := d.logger.GetZerolog()

	var embedder knowledge.EmbeddingProvider
	if d.config.AI.OpenAIAPIKey != "" {
		embedder = knowledge.NewOpenAIEmbedder(d.config.AI.OpenAIAPIKey, d.config.Knowledge.EmbeddingModel)
	}

	store, err := knowledge.NewStore(knowledge.Config{
		DBPath:   d.config.Knowledge.DBPath,
		Embedder: embedder,
		Logger:   zl,
	})
	if err != nil {
		return fmt.Errorf("failed to open knowledge store: %w", err)
	}
	d.knowledgeStore = store

	importer, err := knowledge.NewImporter(store, zl)
	if err != nil {
		return fmt.Errorf("failed to create seed importer: %w", err)
	}
	d.seedImporter = importer

	if err := os.MkdirAll(d.config.Knowledge.SeedDir, 0755); err != nil {
		return fmt.Errorf("failed to create seed directory: %w", err)
	}
	if _, err := importer.ImportDir(d.ctx, d.config.Knowledge.SeedDir); err != nil {
		d.logger.Warn().Err(err).Msg("Seed import failed")
	}

	if d.config.Knowledge.WatchSeeds {
		watcher, err := knowledge.NewSeedWatcher(zl, func() {
			if _, err := importer.ImportDir(d.ctx, d.config.Knowledge.SeedDir); err != nil {
				d.logger.Warn().Err(err).Msg("Seed reimport failed")
			}
		})
		if err != nil {
			return fmt.Errorf("failed to create seed watcher: %w", err)
		}
		if err := watcher.Watch(d.config.Knowledge.SeedDir); err != nil {
			watcher.Stop()
			return fmt.Errorf("failed to watch seed directory: %w", err)
		}
		d.seedWatcher = watcher
	}

	return nil
}

// Controller exposes the session controller, mainly for tests.
func (d *Daemon) Controller() *pipeline.Controller {
	return d.controller
}

// Start launches the janitor and the API server.
func (d *Daemon) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return fmt.Errorf("daemon is already running")
	}

	if err := d.janitor.Start(); err != nil {
		return err
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.apiServer.Start(); err != nil {
			d.logger.Error().Err(err).Msg("API server exited")
			d.cancel()
		}
	}()

	d.running = true
	d.logger.Info().Msg("Daemon started")
	return nil
}

// Run starts the daemon and blocks until a shutdown signal arrives.
func (d *Daemon) Run() error {
	if err := d.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		d.logger.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case <-d.ctx.Done():
	}

	return d.Stop()
}

// Stop shuts everything down in reverse start order.
func (d *Daemon) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.running {
		return nil
	}

	d.logger.Info().Msg("Stopping daemon")

	if err := d.apiServer.Stop(); err != nil {
		d.logger.Warn().Err(err).Msg("API server shutdown reported an error")
	}
	d.janitor.Stop()

	if d.seedWatcher != nil {
		if err := d.seedWatcher.Stop(); err != nil {
			d.logger.Warn().Err(err).Msg("Seed watcher shutdown reported an error")
		}
	}
	if d.knowledgeStore != nil {
		if err := d.knowledgeStore.Close(); err != nil {
			d.logger.Warn().Err(err).Msg("Knowledge store close reported an error")
		}
	}

	d.cancel()
	d.wg.Wait()
	d.running = false

	d.logger.Info().Msg("Daemon stopped")
	return nil
}
