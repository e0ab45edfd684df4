package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zilezarach/torscrape-api/internal/config"
	"github.com/zilezarach/torscrape-api/internal/fetcher"
	"github.com/zilezarach/torscrape-api/internal/indexers/general"
	"github.com/zilezarach/torscrape-api/internal/logger"
	"github.com/zilezarach/torscrape-api/internal/search"
)

type scrapeFlags struct {
	page      string
	category  string
	userAgent string
	backend   string
	logLevel  string
}

func newRootCmd() *cobra.Command {
	var flags scrapeFlags

	cmd := &cobra.Command{
		Use:   "scrape <site> <query>",
		Short: "Run one torrent search and print the JSON result",
		Long:  "Fetches a site's search page, follows detail pages where the site needs them, and prints the result array or error envelope.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if flags.backend != "" {
				cfg.Fetch.Backend = flags.backend
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			// stdout carries the JSON payload only
			log := logger.NewWithConfig(&logger.Config{
				Level:  flags.logLevel,
				Format: cfg.Log.Format,
				Output: "stderr",
			})
			defer func() { _ = log.Sync() }()

			f, err := fetcher.New(cfg.Fetch.Fetcher(), log)
			if err != nil {
				return fmt.Errorf("fetcher: %w", err)
			}
			registry := general.NewRegistry(general.Mirrors{
				X1337:     cfg.Sites.X1337.BaseURL,
				PirateBay: cfg.Sites.PirateBay.BaseURL,
			}, log)
			orchestrator := search.New(f, search.Options{
				Timeout:           cfg.Fetch.Timeout,
				DetailConcurrency: cfg.Scrape.DetailConcurrency,
			}, log)

			req := search.Request{
				Query:     strings.Join(args[1:], " "),
				Category:  flags.category,
				UserAgent: flags.userAgent,
			}
			if cmd.Flags().Changed("page") {
				req.Page = flags.page
			}
			return runScrape(cmd.Context(), cmd.OutOrStdout(), registry, orchestrator, args[0], req)
		},
	}

	cmd.Flags().StringVarP(&flags.page, "page", "p", "", "page number (site default when omitted)")
	cmd.Flags().StringVarP(&flags.category, "category", "c", "", "site category to search in")
	cmd.Flags().StringVar(&flags.userAgent, "user-agent", "", "User-Agent sent to the site")
	cmd.Flags().StringVar(&flags.backend, "backend", "", "fetch backend: chrome, http or flaresolverr")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "warn", "log level written to stderr")
	return cmd
}

// runScrape searches one site and writes the payload as indented JSON
func runScrape(ctx context.Context, out io.Writer, registry *general.Registry, orchestrator *search.Orchestrator, site string, req search.Request) error {
	adapter, ok := registry.Get(site)
	if !ok {
		return fmt.Errorf("unknown site %q (available: %s)", site, strings.Join(registry.Names(), ", "))
	}

	outcome := orchestrator.RunSearch(ctx, adapter, req)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(outcome.Payload()); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
