package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hession/searchmate/internal/cli"
	"github.com/hession/searchmate/internal/config"
	"github.com/hession/searchmate/internal/history"
	"github.com/hession/searchmate/internal/logger"
	"github.com/hession/searchmate/internal/websearch"
)

var (
	version = "0.1.0"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "searchmate",
		Short: "SearchMate - Web Search From Your Terminal",
		Long: `SearchMate is a unified web search client for the terminal.

It can:
  • Search the web through Tavily or a self-hosted SearXNG instance
  • Render results as numbered lists, citation lists or LLM context blocks
  • Fetch and preview result pages as plain text
  • Keep a local history of past searches`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Close()

			// Start interactive CLI
			return cli.Run(cfg)
		},
	}

	rootCmd.AddCommand(newSearchCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and initializes the logger
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(logger.Config{
		LogDir:     config.LogDir(),
		Level:      logger.ParseLevel(cfg.Logging.Level),
		MaxDays:    cfg.Logging.MaxDays,
		ConsoleOut: cfg.Logging.Console,
	}); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logConfigInfo(cfg)
	return cfg, nil
}

// logConfigInfo writes a redacted snapshot of the active configuration to the log
func logConfigInfo(cfg *config.Config) {
	logger.Info("provider: %s, max_results: %d, include_raw_content: %t",
		cfg.Search.Provider, cfg.Search.MaxResults, cfg.Search.IncludeRawContent)
	if cfg.Tavily.APIKey != "" {
		logger.Info("tavily api key configured")
	}
	if cfg.SearXNG.BaseURL != "" {
		logger.Info("searxng base url: %s", cfg.SearXNG.BaseURL)
	}
	logger.Info("history enabled: %t, db: %s", cfg.History.Enabled, cfg.History.DBPath)
}

// newSearchCmd builds the one-shot search subcommand
func newSearchCmd() *cobra.Command {
	var (
		provider   string
		maxResults int
		raw        bool
		asSources  bool
		asPrompt   bool
		maxTokens  int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a single search and print the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Close()

			if provider != "" {
				cfg.Search.Provider = provider
			}
			if maxResults > 0 {
				cfg.Search.MaxResults = maxResults
			}
			if cmd.Flags().Changed("raw") {
				cfg.Search.IncludeRawContent = raw
			}
			if maxTokens > 0 {
				cfg.Search.MaxTokensPerSource = maxTokens
			}

			query := strings.Join(args, " ")
			resp, err := websearch.Search(context.Background(), cli.ProviderConfig(cfg), query, cli.SearchOptions(cfg))
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}

			recordSearch(cfg, query, len(resp.Results))

			switch {
			case asPrompt:
				out, err := websearch.DeduplicateAndFormat(
					websearch.SourcesFromResponse(resp),
					cfg.Search.MaxTokensPerSource,
					cfg.Search.IncludeRawContent,
				)
				if err != nil {
					return fmt.Errorf("failed to format results: %w", err)
				}
				fmt.Println(out)
			case asSources:
				out, err := websearch.FormatSources(resp)
				if err != nil {
					return fmt.Errorf("failed to format sources: %w", err)
				}
				fmt.Println(out)
			default:
				cli.PrintResults(resp)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "search provider to use (tavily, searxng)")
	cmd.Flags().IntVarP(&maxResults, "max-results", "n", 0, "maximum number of results")
	cmd.Flags().BoolVar(&raw, "raw", false, "include full page content with results")
	cmd.Flags().BoolVar(&asSources, "sources", false, "print results as a citation list")
	cmd.Flags().BoolVar(&asPrompt, "prompt", false, "print results as a deduplicated LLM context block")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "per-source token limit for --prompt output")

	return cmd
}

// recordSearch appends the query to the local search history, if enabled
func recordSearch(cfg *config.Config, query string, resultCount int) {
	if !cfg.History.Enabled {
		return
	}

	store, err := history.NewSQLiteStore(cfg.History.DBPath)
	if err != nil {
		logger.Warn("failed to open history store: %v", err)
		return
	}
	defer store.Close()

	rec := &history.Record{
		Query:       query,
		Provider:    cfg.Search.Provider,
		ResultCount: resultCount,
	}
	if err := store.SaveSearch(rec); err != nil {
		logger.Warn("failed to record search history: %v", err)
	}
}

// newConfigCmd builds the config subcommand
func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show or manage configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			fmt.Println(cfg.String())

			path, _ := config.ConfigPath()
			fmt.Printf("\nConfig file path: %s\n", path)
			return nil
		},
	}
}

// newHistoryCmd builds the history subcommand
func newHistoryCmd() *cobra.Command {
	var (
		limit   int
		keyword string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Close()

			if !cfg.History.Enabled {
				fmt.Println("Search history is disabled")
				return nil
			}

			store, err := history.NewSQLiteStore(cfg.History.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open history store: %w", err)
			}
			defer store.Close()

			var records []*history.Record
			if keyword != "" {
				records, err = store.SearchByKeyword(keyword, limit)
			} else {
				records, err = store.RecentSearches(limit)
			}
			if err != nil {
				return fmt.Errorf("failed to load history: %w", err)
			}

			if len(records) == 0 {
				fmt.Println("No searches recorded yet")
				return nil
			}

			for _, rec := range records {
				fmt.Printf("%s  %-7s  %2d results  %s\n",
					rec.CreatedAt.Format("2006-01-02 15:04"), rec.Provider, rec.ResultCount, rec.Query)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "maximum entries to show")
	cmd.Flags().StringVarP(&keyword, "keyword", "k", "", "filter entries by keyword")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear search history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := setup()
			if err != nil {
				return err
			}
			defer logger.Close()

			if !cfg.History.Enabled {
				fmt.Println("Search history is disabled")
				return nil
			}

			store, err := history.NewSQLiteStore(cfg.History.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open history store: %w", err)
			}
			defer store.Close()

			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Println("Search history cleared")
			return nil
		},
	}
	cmd.AddCommand(clearCmd)

	return cmd
}

// newVersionCmd builds the version subcommand
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("SearchMate v%s\n", version)
		},
	}
}
