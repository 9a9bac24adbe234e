// Command clenginectl runs the signal core's ingestion loop, the
// execution pipeline, or both plus the admin HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

func main() {
	root := &cobra.Command{
		Use:   "clenginectl",
		Short: "Concentrated-liquidity market-making control plane",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yml", "path to config.yml")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newIngestCmd())
	root.AddCommand(newPipelineCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
