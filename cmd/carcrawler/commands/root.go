package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"carcatalog/internal/autohome"
	"carcatalog/internal/components/telemetry"
	"carcatalog/internal/config"
	"carcatalog/lib/restyutil"
	"carcatalog/lib/serviceutil"
	libtelemetry "carcatalog/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	debug      *bool
)

var (
	cfg       config.Config
	providers libtelemetry.Telemetry
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "", "Path to the config file, defaults to the nearest carcrawler.json5.")
	debug = rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging.")
}

var rootCmd = &cobra.Command{
	Use:   "carcrawler",
	Short: "carcrawler collects the autohome car catalog into spreadsheets.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		libtelemetry.InitSlog(*debug)

		loaded, err := config.Load(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}
		cfg = loaded

		providers, err = libtelemetry.Setup(cmd.Context(), "carcrawler", cfg.Telemetry)
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := providers.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClient() *autohome.Client {
	opts := cfg.AutohomeOptions()
	if cfg.Output.HttpDumpDir != "" {
		dump, err := restyutil.NewFilesystemOutput(cfg.Output.HttpDumpDir)
		if err != nil {
			serviceutil.Fatal("failed to create http dump directory", err)
		}
		opts.HttpDump = dump
	}

	client, err := autohome.NewClient(opts, telemetry.SlogAPI{})
	if err != nil {
		serviceutil.Fatal("failed to initialize autohome client", err)
	}
	return client
}
