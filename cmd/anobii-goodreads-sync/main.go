// Command anobii-goodreads-sync reconciles an aNobii library export with a
// Goodreads account: convert the export, filter out books already present,
// create the missing ones and correct reading dates.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tzhuang/anobii-goodreads-sync/internal/cache"
	"github.com/tzhuang/anobii-goodreads-sync/internal/catalog"
	"github.com/tzhuang/anobii-goodreads-sync/internal/config"
	"github.com/tzhuang/anobii-goodreads-sync/internal/goodreads"
	"github.com/tzhuang/anobii-goodreads-sync/internal/logger"
	"github.com/tzhuang/anobii-goodreads-sync/internal/models"
	"github.com/tzhuang/anobii-goodreads-sync/internal/normalize"
	"github.com/tzhuang/anobii-goodreads-sync/internal/progress"
	appsync "github.com/tzhuang/anobii-goodreads-sync/internal/sync"
	"github.com/tzhuang/anobii-goodreads-sync/internal/util"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:    "anobii-goodreads-sync",
		Usage:   "Reconcile an aNobii library export with a Goodreads account",
		Version: fmt.Sprintf("%s (%s) %s", version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				Value:   "config.yaml",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "convert",
				Usage: "Convert an aNobii CSV export into Goodreads import format",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "aNobii CSV export file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Converted CSV output file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "language",
						Aliases: []string{"l"},
						Usage:   "Export language profile (overrides config)",
					},
					&cli.BoolFlag{
						Name:  "isbn-only",
						Usage: "Blank descriptive fields, keep only the ISBN pair",
					},
				},
				Action: runConvert,
			},
			{
				Name:  "filter",
				Usage: "Filter out books already present on the other side",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "converted",
						Aliases:  []string{"a"},
						Usage:    "Converted aNobii CSV file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "export",
						Aliases:  []string{"g"},
						Usage:    "Goodreads CSV export file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Filtered output file",
						Required: true,
					},
					&cli.BoolFlag{
						Name:    "reverse",
						Aliases: []string{"r"},
						Usage:   "Keep books only present in the Goodreads export instead",
					},
				},
				Action: runFilter,
			},
			{
				Name:  "add",
				Usage: "Create books missing from the Goodreads account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "converted",
						Aliases:  []string{"a"},
						Usage:    "Converted aNobii CSV file",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "export",
						Aliases:  []string{"g"},
						Usage:    "Goodreads CSV export file",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "list-only",
						Usage: "List what would be created without creating anything",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Create at most this many books",
					},
					&cli.BoolFlag{
						Name:  "retry-errored",
						Usage: "Send books that previously errored through again",
					},
				},
				Action: runAdd,
			},
			{
				Name:  "update-dates",
				Usage: "Correct reading dates from a crawled progress file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "progress",
						Aliases:  []string{"p"},
						Usage:    "Crawled reading progress file (one JSON object per line)",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "list-only",
						Usage: "List what would be updated without updating anything",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Update at most this many books",
					},
					&cli.BoolFlag{
						Name:  "retry-errored",
						Usage: "Send books that previously errored through again",
					},
					&cli.BoolFlag{
						Name:  "guard-end-date",
						Usage: "Allow moving end dates earlier as well",
					},
				},
				Action: runUpdateDates,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Get().Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// setup loads the configuration and reconfigures the logger from it.
func setup(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger.Setup(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     logger.ParseLogFormat(cfg.Logging.Format),
		TimeFormat: time.RFC3339,
	})
	return cfg, nil
}

func runConvert(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	log := logger.Get()

	language := c.String("language")
	if language == "" {
		language = cfg.Anobii.Language
	}
	profile, err := normalize.Profile(language)
	if err != nil {
		return err
	}

	rows, err := catalog.ReadMapped(c.String("input"))
	if err != nil {
		return fmt.Errorf("failed to read aNobii export: %w", err)
	}

	converter := normalize.NewConverter(normalize.Options{
		KeepFullFields: !c.Bool("isbn-only"),
		Profile:        profile,
	})

	records := make([]models.CatalogRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, converter.Convert(row))
	}

	if err := catalog.WriteExport(c.String("output"), records); err != nil {
		return fmt.Errorf("failed to write converted file: %w", err)
	}

	log.Info().
		Int("records", len(records)).
		Str("language", language).
		Str("output", c.String("output")).
		Msg("Conversion finished")
	return nil
}

func runFilter(c *cli.Context) error {
	if _, err := setup(c); err != nil {
		return err
	}
	log := logger.Get()

	var filtered [][]string
	if c.Bool("reverse") {
		convRows, err := catalog.ReadRows(c.String("converted"))
		if err != nil {
			return fmt.Errorf("failed to read converted file: %w", err)
		}
		exportRows, err := catalog.ReadRows(c.String("export"))
		if err != nil {
			return fmt.Errorf("failed to read Goodreads export: %w", err)
		}
		filtered = catalog.FilterExport(exportRows, catalog.IndexFromConverted(convRows))
	} else {
		index, err := catalog.LoadIndex(c.String("export"))
		if err != nil {
			return fmt.Errorf("failed to read Goodreads export: %w", err)
		}
		convRows, err := catalog.ReadRows(c.String("converted"))
		if err != nil {
			return fmt.Errorf("failed to read converted file: %w", err)
		}
		filtered = catalog.FilterConverted(convRows, index)
	}

	if err := catalog.WriteRows(c.String("output"), filtered); err != nil {
		return fmt.Errorf("failed to write filtered file: %w", err)
	}

	log.Info().
		Int("rows", len(filtered)).
		Bool("reverse", c.Bool("reverse")).
		Str("output", c.String("output")).
		Msg("Filtering finished")
	return nil
}

func runAdd(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	applyRunFlags(c, cfg)

	candidates, err := catalog.ReadConverted(c.String("converted"))
	if err != nil {
		return fmt.Errorf("failed to read converted file: %w", err)
	}
	index, err := catalog.LoadIndex(c.String("export"))
	if err != nil {
		return fmt.Errorf("failed to read Goodreads export: %w", err)
	}

	svc, store, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, runErr := svc.RunAdd(ctx, candidates, index)
	reportSummary(summary)
	return runErr
}

func runUpdateDates(c *cli.Context) error {
	cfg, err := setup(c)
	if err != nil {
		return err
	}
	applyRunFlags(c, cfg)
	if c.Bool("guard-end-date") {
		cfg.Sync.GuardEndDate = true
	}

	entries, err := progress.ReadFile(c.String("progress"))
	if err != nil {
		return fmt.Errorf("failed to read progress file: %w", err)
	}

	svc, store, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, runErr := svc.RunUpdateDates(ctx, entries)
	reportSummary(summary)
	return runErr
}

// applyRunFlags folds command-line run flags over the loaded config.
func applyRunFlags(c *cli.Context, cfg *config.Config) {
	if c.Bool("list-only") {
		cfg.Sync.ListOnly = true
	}
	if c.Int("limit") > 0 {
		cfg.Sync.Limit = c.Int("limit")
	}
	if c.Bool("retry-errored") {
		cfg.Sync.RetryErrored = true
	}
}

// buildService wires the remote client, idempotency cache and rate limiter
// into a sync service. The caller owns the returned store.
func buildService(cfg *config.Config) (*appsync.Service, *cache.Store, error) {
	if err := cfg.ValidateRemote(); err != nil {
		return nil, nil, err
	}

	cookies, err := goodreads.LoadCookies(cfg.Goodreads.CookieFile)
	if err != nil {
		return nil, nil, err
	}
	client := goodreads.NewClient(cfg.Goodreads.BaseURL, cookies)

	store, err := cache.Open(cfg.Sync.CacheDB, logger.Get())
	if err != nil {
		return nil, nil, err
	}

	waiter := util.NewWaiter(cfg.Sync.Delay, cfg.Sync.Jitter, cfg.Sync.ShortDelay)

	svc := appsync.New(client, store, waiter, appsync.Options{
		ListOnly:     cfg.Sync.ListOnly,
		Limit:        cfg.Sync.Limit,
		RetryErrored: cfg.Sync.RetryErrored,
		GuardEndDate: cfg.Sync.GuardEndDate,
	})
	return svc, store, nil
}

// reportSummary prints per-record outcomes and the final counters.
func reportSummary(summary models.Summary) {
	log := logger.Get()

	for _, o := range summary.Outcomes {
		evt := log.Info().Str("title", o.Title).Str("isbn13", o.ISBN13)
		if o.Reason != "" {
			evt = evt.Str("reason", o.Reason)
		}
		if o.URL != "" {
			evt = evt.Str("url", o.URL)
		}
		evt.Msg(string(o.Kind))
	}

	log.Info().
		Int("processed", summary.Processed).
		Int("created", summary.Created).
		Int("updated", summary.Updated).
		Int("duplicates", summary.Duplicates).
		Int("skipped", summary.Skipped).
		Int("errored", summary.Errored).
		Int("remaining", summary.Remaining).
		Msg("Run finished")
}
