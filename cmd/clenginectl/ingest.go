package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jona04/colab-finance-go/internal/config"
	"github.com/jona04/colab-finance-go/internal/ingestion"
	"github.com/jona04/colab-finance-go/internal/logging"
	"github.com/jona04/colab-finance-go/internal/reconciler"
	"github.com/jona04/colab-finance-go/internal/store"
	"github.com/jona04/colab-finance-go/internal/vaultclient"
)

func newIngestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Run the WebSocket ingestion supervisor for the configured symbol/interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context())
		},
	}
}

func runIngest(ctx context.Context) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log := logging.New(logLevel)

	st, err := store.Open(cfg.DSN(), log)
	if err != nil {
		return fmt.Errorf("ingest: open store: %w", err)
	}
	defer st.Close()

	vault := vaultclient.New(cfg.Vault.BaseURL, cfg.VaultTimeout())
	rec := reconciler.New(vault)
	dispatcher := ingestion.NewDispatcher(st, rec, log)
	supervisor := ingestion.NewSupervisor(cfg.Feed.BaseURL, dispatcher, log)

	stream := fmt.Sprintf("%s@kline_%s", cfg.Ingestion.Symbol, cfg.Ingestion.Interval)
	log.Info().Str("stream", stream).Msg("ingest: starting")

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return supervisor.Run(runCtx, []string{stream})
}
