package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/akum32o/ncsl-ai-energy-watch/internal/config"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/filter"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/logger"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/notifier"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/scraper"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/storage"
	"github.com/akum32o/ncsl-ai-energy-watch/internal/watch"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// NewRootCmd creates the root command. There are no flags and no
// subcommands: every knob comes from the environment (or a .env file), so
// the cron line stays a single word.
func NewRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ncsl-watch",
		Short: "Watch NCSL AI legislation for energy and utility bills",
		Long: `Scrapes the NCSL artificial-intelligence legislation page, keeps the
bills that touch energy, utilities, or utility consumers, diffs them
against the previous run, and emails a digest of what changed.

Configuration is read from the environment (or a .env file):

  NCSL_URL, NCSL_STATE_FILE        source page and state file
  SMTP_HOST, SMTP_PORT             mail submission (default office365:587)
  SMTP_USER, SMTP_PASS, EMAIL_TO   credentials and recipients
  EMAIL_FROM                       sender, defaults to SMTP_USER
  FORCE_EMAIL                      1 sends a digest even with no changes
  MIN_INTERVAL_DAYS                minimum days between digests (0 = off)
  DIFF_POLICY                      snapshot (default) or seen-id
  PRIORITY_STATES                  jurisdictions listed first in the digest
  WATCH_KEYWORDS_FILE              YAML keyword groups replacing built-ins
  STEALTH_FETCH, FETCH_TIMEOUT     headless-browser fallback and timeout
  TWITTER_API_KEY/API_SECRET/
  ACCESS_TOKEN/ACCESS_SECRET       optional per-bill announcements
  LOG_LEVEL                        DEBUG, INFO, WARN, or ERROR`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runWatch,
	}
}

// runWatch wires the pipeline from configuration and runs it once.
func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger.SetDefault(logger.New(cfg.LogLevel, os.Stderr))

	f := filter.New()
	if cfg.KeywordsFile != "" {
		f, err = filter.LoadProfile(cfg.KeywordsFile)
		if err != nil {
			return fmt.Errorf("loading keywords: %w", err)
		}
	}

	var source watch.BillSource
	if cfg.StealthFetch {
		source = scraper.NewWithStealth(cfg.SourceURL, cfg.FetchTimeout)
	} else {
		source = scraper.New(cfg.SourceURL, cfg.FetchTimeout)
	}

	store, err := storage.New(cfg.StateFile)
	if err != nil {
		return fmt.Errorf("initializing state store: %w", err)
	}

	deps := watch.Deps{
		Source:   source,
		Store:    store,
		Filter:   f,
		Notifier: notifier.NewEmail(cfg.SMTP),
	}

	if cfg.Twitter.Enabled() {
		announcer, err := notifier.NewTwitterAnnouncer(cfg.Twitter)
		if err != nil {
			return fmt.Errorf("initializing announcer: %w", err)
		}
		deps.Announcer = announcer
	}

	report, err := watch.Run(cmd.Context(), cfg, deps)
	writeReport(os.Stdout, report)
	return err
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
