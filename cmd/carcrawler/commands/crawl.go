package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"carcatalog/internal/catalog"
	"carcatalog/internal/components/chrono"
	"carcatalog/internal/components/telemetry"
	"carcatalog/internal/crawler"
	"carcatalog/internal/export"
	"carcatalog/internal/natsutil"
	"carcatalog/internal/store"
	"carcatalog/lib/serviceutil"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var (
	crawlTest   *bool
	crawlBrand  *string
	crawlResume *string
	crawlSeries *int64
	crawlEnergy *string
	crawlOut    *string
	crawlDb     *string
	crawlNats   *string
)

func init() {
	crawlTest = crawlCmd.Flags().Bool("test", false, "Only crawl the first brands (crawl.test_brand_limit).")
	crawlBrand = crawlCmd.Flags().String("brand", "", "Only crawl the brand with this id or name.")
	crawlResume = crawlCmd.Flags().String("resume", "", "Start from the brand with this name.")
	crawlSeries = crawlCmd.Flags().Int64("series", 0, "Only resolve the fuel types of this series id and exit.")
	crawlEnergy = crawlCmd.Flags().String("energy", "", "Listing energy filter id, run the energies command for the list.")
	crawlOut = crawlCmd.Flags().String("out", "", "Directory the spreadsheets are written to.")
	crawlDb = crawlCmd.Flags().String("db", "", "Also upsert the series into this sqlite database.")
	crawlNats = crawlCmd.Flags().String("nats", "", "Also publish every brand's series to this NATS server.")
	rootCmd.AddCommand(crawlCmd)
}

func applyCrawlFlags() {
	if *crawlEnergy != "" {
		if *crawlEnergy != "x" {
			id, err := strconv.Atoi(*crawlEnergy)
			if err != nil || catalog.EnergyTypes[id] == "" {
				serviceutil.Fatal("invalid energy filter", fmt.Errorf("unknown energy id %q", *crawlEnergy))
			}
		}
		cfg.Crawl.Energy = *crawlEnergy
	}
	if *crawlOut != "" {
		cfg.Output.Dir = *crawlOut
	}
	if *crawlDb != "" {
		cfg.Output.Sqlite = *crawlDb
	}
	if *crawlNats != "" {
		cfg.Output.NatsURL = *crawlNats
	}
}

var crawlCmd = &cobra.Command{
	Use:   "crawl [--test] [--brand <id|name>] [--resume <name>] [--series <id>]",
	Short: "Crawls every brand's series and fuel types into a spreadsheet.",
	Run: func(cmd *cobra.Command, args []string) {
		applyCrawlFlags()

		client := newClient()
		defer client.Close()

		if *crawlSeries > 0 {
			printFuelTypes(cmd, client, *crawlSeries)
			return
		}

		runID := uuid.NewString()
		clock := chrono.NewStandardImpl(nil)
		tel := telemetry.SlogAPI{}
		slog.Info("starting crawl", "run_id", runID, "energy", cfg.Crawl.Energy)

		persistOpts := export.Options{
			Dir:    cfg.Output.Dir,
			Prefix: cfg.Output.Prefix,
			Out:    os.Stdout,
		}
		if cfg.Output.Sqlite != "" {
			db, err := store.Open(cfg.Output.Sqlite, runID, clock)
			if err != nil {
				serviceutil.Fatal("failed to open sqlite mirror", err)
			}
			defer db.Close()
			persistOpts.Mirror = db
		}

		runnerOpts := crawler.Options{
			SaveEvery: cfg.Crawl.SaveEvery,
			TestLimit: cfg.Crawl.TestBrandLimit,
		}
		if cfg.Output.NatsURL != "" {
			nc, err := nats.Connect(cfg.Output.NatsURL, nats.Name("carcrawler"))
			if err != nil {
				serviceutil.Fatal("failed to connect to nats", err)
			}
			defer nc.Drain()
			runnerOpts.Publisher = natsutil.NewSeriesPublisher(nc, cfg.Output.NatsSubject, runID, clock)
		}

		runner := crawler.NewRunner(
			client,
			export.NewPersister(persistOpts, clock, tel),
			runnerOpts,
			tel,
		)
		stats, err := runner.Run(cmd.Context(), crawler.Filter{
			Brand:    strings.TrimSpace(*crawlBrand),
			Resume:   strings.TrimSpace(*crawlResume),
			TestMode: *crawlTest,
		})
		if err != nil {
			serviceutil.Fatal("crawl failed", err)
		}
		stats.Render(os.Stdout)
	},
}
