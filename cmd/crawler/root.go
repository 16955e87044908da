package main

import (
	"deck-crawler/internal/config"
	"deck-crawler/internal/logging"
	"deck-crawler/pkg/models"

	"github.com/spf13/cobra"
)

type options struct {
	listingURL     string
	outputPath     string
	fetchMode      string
	keepIncomplete bool
	summary        bool
	verbose        bool
}

// NewRootCmd creates the crawler command.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "crawler",
		Short: "Crawl a deck compendium into a commander/deck/card CSV",
		Long: `crawler fetches a commander listing page, follows every deck link on it and
writes one CSV row per card: Commander, Deck Name, Card, Number of Cards.

Defaults come from the environment (LISTING_URL, OUTPUT_PATH, FETCH_RETRIES, ...),
optionally loaded from a .env file; flags override them.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := opts.apply(cmd, cfg); err != nil {
				return err
			}

			logCfg := logging.DefaultConfig()
			logCfg.Level = cfg.LogLevel
			logCfg.Pretty = cfg.LogPretty
			logging.Setup(logCfg)

			return run(cmd.Context(), cfg, runOptions{
				keepIncomplete: opts.keepIncomplete,
				summary:        opts.summary,
				out:            cmd.OutOrStdout(),
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.listingURL, "url", "u", "", "listing page to crawl (default $LISTING_URL)")
	flags.StringVarP(&opts.outputPath, "output", "o", "", "CSV file to write (default $OUTPUT_PATH)")
	flags.StringVar(&opts.fetchMode, "fetch-mode", "", "http or browser (default $FETCH_MODE)")
	flags.BoolVar(&opts.keepIncomplete, "keep-incomplete", false, "also write rows with empty deck, card or quantity")
	flags.BoolVar(&opts.summary, "summary", false, "print a per-commander table when done")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

// apply copies explicitly set flags over the environment configuration.
func (o *options) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.ListingURL = o.listingURL
	}
	if flags.Changed("output") {
		cfg.OutputPath = o.outputPath
	}
	if flags.Changed("fetch-mode") {
		mode, err := models.ParseFetchMode(o.fetchMode)
		if err != nil {
			return err
		}
		cfg.FetchMode = mode
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	return cfg.Validate()
}
