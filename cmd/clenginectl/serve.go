package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jona04/colab-finance-go/internal/config"
	"github.com/jona04/colab-finance-go/internal/httpapi"
	"github.com/jona04/colab-finance-go/internal/ingestion"
	"github.com/jona04/colab-finance-go/internal/logging"
	"github.com/jona04/colab-finance-go/internal/pipeline"
	"github.com/jona04/colab-finance-go/internal/reconciler"
	"github.com/jona04/colab-finance-go/internal/store"
	"github.com/jona04/colab-finance-go/internal/vaultclient"
)

var adminAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run ingestion, the pipeline poll loop, and the admin HTTP server together",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&adminAddr, "admin-addr", ":8090", "admin HTTP server listen address")
	return cmd
}

func runServe(ctx context.Context) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log := logging.New(logLevel)

	st, err := store.Open(cfg.DSN(), log)
	if err != nil {
		return fmt.Errorf("serve: open store: %w", err)
	}
	defer st.Close()

	vault := vaultclient.New(cfg.Vault.BaseURL, cfg.VaultTimeout())
	rec := reconciler.New(vault)
	dispatcher := ingestion.NewDispatcher(st, rec, log)
	supervisor := ingestion.NewSupervisor(cfg.Feed.BaseURL, dispatcher, log)
	pl := pipeline.New(st.Signals, vault, log, cfg.MaxRetries(), cfg.BaseBackoff())

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	admin := &http.Server{Addr: adminAddr, Handler: httpapi.NewAdminRouter()}

	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		stream := fmt.Sprintf("%s@kline_%s", cfg.Ingestion.Symbol, cfg.Ingestion.Interval)
		return supervisor.Run(gctx, []string{stream})
	})

	g.Go(func() error {
		return pollPipeline(gctx, pl, cfg.PollInterval(), log)
	})

	g.Go(func() error {
		log.Info().Str("addr", adminAddr).Msg("serve: admin server listening")
		if err := admin.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return admin.Shutdown(context.Background())
	})

	return g.Wait()
}
