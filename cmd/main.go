package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xhad/chamber/internal/models"
	"github.com/xhad/chamber/internal/types"
	cfgPkg "github.com/xhad/chamber/pkg/config"
	"github.com/xhad/chamber/pkg/pipeline"
	"github.com/xhad/chamber/pkg/processor"
	"github.com/xhad/chamber/pkg/scraper"
	"github.com/xhad/chamber/pkg/store"
)

var (
	configPath    string
	dataDir       string
	sourceDataDir string
	indexFile     string
	noGet         bool
	noParse       bool
	strict        bool
	showProgress  bool
	onlyIDs       []int
)

var rootCmd = &cobra.Command{
	Use:   "chamber",
	Short: "Download and parse legislator profile pages",
	Long: `Fetches the biography, detail page and photo of every legislator in the
index, then parses the fetched detail pages into one JSON record per
legislator plus an aggregate all.json.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd, false, false)
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Only download raw pages",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd, false, true)
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Only parse previously downloaded detail pages",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd, true, false)
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Upsert the records of all.json into the configured database",
	RunE:  runPublish,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to config file")
	flags.StringVar(&dataDir, "data-dir", "", "Root directory for parsed data")
	flags.StringVar(&sourceDataDir, "source-data-dir", "", "Root directory for raw pages")
	flags.StringVar(&indexFile, "index", "", "Legislator index CSV (default <data-dir>/<jurisdiction>/legislator_index.csv)")
	flags.BoolVar(&strict, "strict", false, "Exit non-zero when any entry failed")
	flags.BoolVar(&showProgress, "progress", false, "Show progress bars instead of per-entry lines")
	flags.IntSliceVar(&onlyIDs, "id", nil, "Limit the run to these chamber ids")

	rootCmd.Flags().BoolVar(&noGet, "noget", false, "Skip the fetch phase")
	rootCmd.Flags().BoolVar(&noParse, "noparse", false, "Skip the parse phase")

	rootCmd.AddCommand(fetchCmd, parseCmd, publishCmd)
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (*cfgPkg.Config, error) {
	cfg, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	// Command line flags win over the config file
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		cfg.SetDataDir(dataDir)
	}
	if flags.Changed("source-data-dir") {
		cfg.Paths.SourceDataDir = sourceDataDir
	}
	if flags.Changed("index") {
		cfg.Paths.IndexFile = indexFile
	}
	if flags.Changed("progress") {
		cfg.UI.Progress = showProgress
	}
	if f := flags.Lookup("noget"); f != nil && f.Changed {
		cfg.Run.NoGet = noGet
	}
	if f := flags.Lookup("noparse"); f != nil && f.Changed {
		cfg.Run.NoParse = noParse
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(joined...))
	}
	return cfg, nil
}

func openSinks(ctx context.Context, cfg *cfgPkg.Config) ([]types.RecordSink, error) {
	if cfg.Database.URL == "" {
		return nil, nil
	}
	sink, err := store.NewPostgresSink(ctx, store.PostgresConfig{
		ConnString: cfg.Database.URL,
		TableName:  cfg.Database.TableName,
	})
	if err != nil {
		return nil, err
	}
	return []types.RecordSink{sink}, nil
}

func closeSinks(sinks []types.RecordSink) {
	for _, s := range sinks {
		s.Close()
	}
}

func run(cmd *cobra.Command, skipFetch, skipParse bool) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	fetcher, err := scraper.NewWithConfig(scraper.FetcherConfig{
		SourceDir:   cfg.Paths.SourceDataDir,
		BioURL:      cfg.Chamber.BioURL,
		DetailURL:   cfg.Chamber.DetailURL,
		PhotoURL:    cfg.Chamber.PhotoURL,
		Legislature: cfg.Chamber.Legislature,
		RateLimit:   cfg.Scraper.RateLimit,
		Timeout:     cfg.Scraper.Timeout,
		Retries:     cfg.Scraper.Retries,
		UserAgent:   cfg.Scraper.UserAgent,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize fetcher: %w", err)
	}

	proc := processor.NewWithConfig(processor.ProcessorConfig{
		SourceDir: cfg.Paths.SourceDataDir,
		DetailURL: cfg.Chamber.DetailURL,
	})

	records, err := store.NewJSONStore(cfg.OutputDir())
	if err != nil {
		return err
	}

	runCfg := pipeline.RunnerConfig{
		IndexFile: cfg.Paths.IndexFile,
		NoGet:     cfg.Run.NoGet || skipFetch,
		NoParse:   cfg.Run.NoParse || skipParse,
		IDs:       onlyIDs,
	}

	var sinks []types.RecordSink
	if !runCfg.NoParse {
		sinks, err = openSinks(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeSinks(sinks)
	}

	runner := pipeline.NewRunner(runCfg, fetcher, &proc, records,
		pipeline.WithSinks(sinks...),
		pipeline.WithReporter(pipeline.NewConsoleReporter(cfg.UI.Progress)),
	)

	summary, err := runner.Run(ctx)
	pipeline.PrintSummary(color.Output, summary)
	if err != nil {
		return err
	}

	if strict && summary.Failures() > 0 {
		return fmt.Errorf("%d entries failed", summary.Failures())
	}
	return nil
}

func runPublish(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("database.url (or DATABASE_URL) is required to publish")
	}

	records, err := store.NewJSONStore(cfg.OutputDir())
	if err != nil {
		return err
	}
	all, err := records.LoadAll()
	if err != nil {
		return err
	}
	if len(onlyIDs) > 0 {
		all = filterByID(all, onlyIDs)
	}

	sinks, err := openSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks(sinks)

	runner := pipeline.NewRunner(pipeline.RunnerConfig{}, nil, nil, records,
		pipeline.WithSinks(sinks...),
		pipeline.WithReporter(pipeline.NewConsoleReporter(cfg.UI.Progress)),
	)

	var summary pipeline.Summary
	err = runner.Publish(ctx, all, &summary)
	pipeline.PrintSummary(color.Output, summary)
	return err
}

func filterByID(records []*models.LegislatorRecord, ids []int) []*models.LegislatorRecord {
	wanted := make(map[int]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	var kept []*models.LegislatorRecord
	for _, r := range records {
		if wanted[r.ChamberID] {
			kept = append(kept, r)
		}
	}
	return kept
}
