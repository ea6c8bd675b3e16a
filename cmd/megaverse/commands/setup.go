package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/megaverse/megaverse/pkg/astral"
	"github.com/megaverse/megaverse/pkg/config"
	"github.com/megaverse/megaverse/pkg/engine"
	"github.com/megaverse/megaverse/pkg/stores"
	"github.com/megaverse/megaverse/pkg/telemetry"
	"github.com/megaverse/megaverse/pkg/transports/rest"
	"github.com/spf13/cobra"
)

// environment holds what a command needs to talk to the API.
type environment struct {
	cfg      *config.Config
	tel      *telemetry.Telemetry
	client   *rest.Client
	registry *astral.Registry
	store    *stores.SQLiteStore
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig(validate bool) (*config.Config, error) {
	cfg, err := config.Read(configPath, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if maxAttempts != 0 {
		cfg.Retry.MaxAttempts = maxAttempts
	}
	if journalPath != "" {
		cfg.Journal.Path = journalPath
	}
	if metricsAddr != "" {
		cfg.Telemetry.Metrics.Enabled = true
		cfg.Telemetry.Metrics.ListenAddress = metricsAddr
	}
	if validate {
		if err := config.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setup builds the environment for cmd and puts its telemetry on the
// command context. On error everything built so far is released.
func setup(cmd *cobra.Command, withJournal bool) (*environment, error) {
	cfg, err := loadConfig(true)
	if err != nil {
		return nil, err
	}

	tel, err := telemetry.NewTelemetry(&cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	env := &environment{cfg: cfg, tel: tel}

	if _, err := tel.StartMetricsServer(); err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to start metrics server: %w", err)
	}

	restCfg := rest.DefaultConfig()
	restCfg.BaseURL = cfg.API.BaseURL
	if cfg.API.Timeout > 0 {
		restCfg.Timeout = cfg.API.Timeout
	}
	restCfg.UserAgent = "megaverse/" + cfg.Telemetry.ServiceVersion
	client, err := rest.NewClient(restCfg, nil)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	env.client = client
	env.registry = astral.NewRegistry(cfg.CandidateID, client)

	ctx := tel.WithContext(cmd.Context())
	if withJournal && cfg.Journal.Path != "" {
		store, err := stores.Open(ctx, cfg.Journal.Path)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		env.store = store
	}

	cmd.SetContext(ctx)
	return env, nil
}

// synchronizer builds a synchronizer from the telemetry carried by ctx. The
// synchronizer takes its logger from the same context.
func (e *environment) synchronizer(ctx context.Context) *engine.Synchronizer {
	tel := telemetry.FromTelemetryContext(ctx)
	opts := engine.Options{
		Metrics:   tel.Metrics,
		Tracer:    tel.Tracer,
		BaseDelay: e.cfg.Retry.BaseDelay,
	}
	if e.store != nil {
		opts.Journal = e.store
	}
	return engine.NewSynchronizer(e.client.GoalSource(e.cfg.CandidateID), e.registry, opts)
}

// Close stops telemetry and closes the journal.
func (e *environment) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.tel.Shutdown(ctx); err != nil {
		e.tel.Logger.WithError(err).Warn("Failed to shut down telemetry")
	}
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.tel.Logger.WithError(err).Warn("Failed to close journal")
		}
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
