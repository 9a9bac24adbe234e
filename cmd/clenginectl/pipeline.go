package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jona04/colab-finance-go/internal/config"
	"github.com/jona04/colab-finance-go/internal/logging"
	"github.com/jona04/colab-finance-go/internal/pipeline"
	"github.com/jona04/colab-finance-go/internal/store"
	"github.com/jona04/colab-finance-go/internal/vaultclient"
)

func newPipelineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pipeline",
		Short: "Run the execution pipeline's poll loop against pending signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd.Context())
		},
	}
}

func runPipeline(ctx context.Context) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log := logging.New(logLevel)

	st, err := store.Open(cfg.DSN(), log)
	if err != nil {
		return fmt.Errorf("pipeline: open store: %w", err)
	}
	defer st.Close()

	vault := vaultclient.New(cfg.Vault.BaseURL, cfg.VaultTimeout())
	pl := pipeline.New(st.Signals, vault, log, cfg.MaxRetries(), cfg.BaseBackoff())

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return pollPipeline(runCtx, pl, cfg.PollInterval(), log)
}

// pollPipeline runs pl.RunOnce on a fixed interval until ctx is done.
// Distinct batches execute strictly in sequence (per §5), so a slow
// batch simply delays the next tick rather than overlapping with it.
func pollPipeline(ctx context.Context, pl *pipeline.Pipeline, interval time.Duration, log zerolog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := pl.RunOnce(ctx); err != nil {
				log.Error().Err(err).Msg("pipeline: batch failed")
			}
		}
	}
}
