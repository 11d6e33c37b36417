package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/hession/searchmate/internal/config"
	"github.com/hession/searchmate/internal/history"
	"github.com/hession/searchmate/internal/logger"
	"github.com/hession/searchmate/internal/websearch"
)

const (
	Version = "0.1.0"

	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

const (
	snippetMaxLen       = 200
	previewMaxLen       = 2000
	defaultHistoryLimit = 10
)

// session holds the interactive state shared between commands.
type session struct {
	cfg       *config.Config
	store     history.Store
	fetcher   *pageFetcher
	lastQuery string
	lastResp  *websearch.Response
}

// Run starts the CLI interactive interface
func Run(cfg *config.Config) error {
	// Display welcome message
	printWelcome()

	// Check API Key for the hosted provider
	if cfg.Search.Provider == string(websearch.ProviderTavily) && !cfg.IsAPIKeyConfigured() {
		return promptAPIKey(cfg)
	}

	sess := &session{
		cfg:     cfg,
		fetcher: newPageFetcher(),
	}

	if cfg.History.Enabled {
		store, err := history.NewSQLiteStore(cfg.History.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize history store: %w", err)
		}
		defer store.Close()
		sess.store = store
	}

	// Start REPL
	return runREPL(sess)
}

// printWelcome prints welcome message
func printWelcome() {
	fmt.Printf("\n%s🔍 SearchMate v%s%s - Web Search From Your Terminal\n", colorCyan, Version, colorReset)
	fmt.Printf("%sType a query to search, /help for help, /exit to quit%s\n\n", colorGray, colorReset)
}

// promptAPIKey prompts user to configure API Key
func promptAPIKey(cfg *config.Config) error {
	fmt.Printf("%s⚠️  Tavily API Key not configured%s\n\n", colorYellow, colorReset)

	// Create readline instance for API key input
	rl, err := readline.New("Please enter your Tavily API Key: ")
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	apiKey, err := rl.Readline()
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("API Key cannot be empty")
	}

	cfg.Tavily.APIKey = apiKey
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Printf("\n%s✅ API Key saved%s\n\n", colorGreen, colorReset)

	// Restart
	return Run(cfg)
}

// getHistoryFilePath returns the readline history file path, which lives
// next to config.yaml and history.db
func getHistoryFilePath() string {
	dir := config.GetConfigDir()
	if dir == "" {
		return ""
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return ""
	}
	return filepath.Join(dir, "history")
}

// runREPL runs the interactive REPL with readline support
func runREPL(sess *session) error {
	// Configure readline
	rlConfig := &readline.Config{
		Prompt:          fmt.Sprintf("%ssearch> %s", colorGreen, colorReset),
		HistoryFile:     getHistoryFilePath(),
		HistoryLimit:    1000,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:      true,
		DisableAutoSaveHistory: false,
	}

	rl, err := readline.NewEx(rlConfig)
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Printf("\n\n%sGoodbye! 👋%s\n", colorCyan, colorReset)
		cancel()
		rl.Close()
		os.Exit(0)
	}()

	for {
		// Read user input with readline (supports backspace, arrow keys, history)
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				// Ctrl+C pressed, ask for confirmation
				fmt.Printf("\n%sPress Ctrl+C again or type /exit to quit%s\n", colorYellow, colorReset)
				continue
			}
			if err == io.EOF {
				fmt.Printf("\n%sGoodbye! 👋%s\n", colorCyan, colorReset)
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		// Handle built-in commands
		if strings.HasPrefix(input, "/") {
			if handleCommand(ctx, input, sess) {
				continue
			}
			return nil // /exit command
		}

		// Everything else is a search query
		if err := runSearch(ctx, sess, input); err != nil {
			return err
		}
	}
}

// ProviderConfig maps the application configuration to a provider dispatch config.
func ProviderConfig(cfg *config.Config) websearch.Config {
	return websearch.Config{
		Provider:     websearch.Provider(cfg.Search.Provider),
		TavilyAPIKey: cfg.Tavily.APIKey,
		SearXNGURL:   cfg.SearXNG.BaseURL,
	}
}

// SearchOptions maps the application configuration to per-search options.
func SearchOptions(cfg *config.Config) websearch.Options {
	return websearch.Options{
		MaxResults:        cfg.Search.MaxResults,
		IncludeRawContent: cfg.Search.IncludeRawContent,
	}
}

// runSearch dispatches a query to the configured provider and prints the results
func runSearch(ctx context.Context, sess *session, query string) error {
	cfg := sess.cfg

	fmt.Printf("%sSearching (%s)...%s\n", colorGray, cfg.Search.Provider, colorReset)

	resp, err := websearch.Search(ctx, ProviderConfig(cfg), query, SearchOptions(cfg))
	if err != nil {
		fmt.Printf("%s❌ Search failed: %v%s\n\n", colorRed, err, colorReset)
		return nil
	}

	sess.lastQuery = query
	sess.lastResp = resp

	PrintResults(resp)

	if sess.store != nil {
		rec := &history.Record{
			Query:       query,
			Provider:    cfg.Search.Provider,
			ResultCount: len(resp.Results),
		}
		if err := sess.store.SaveSearch(rec); err != nil {
			logger.Warn("failed to record search history: %v", err)
		}
	}

	return nil
}

// PrintResults prints a numbered result list with snippets.
func PrintResults(resp *websearch.Response) {
	if len(resp.Results) == 0 {
		fmt.Printf("%sNo results.%s\n\n", colorYellow, colorReset)
		return
	}

	fmt.Println()
	for i, res := range resp.Results {
		fmt.Printf("%s%d. %s%s\n", colorCyan, i+1, res.Title, colorReset)
		fmt.Printf("   %s%s%s\n", colorGray, res.URL, colorReset)
		if snippet := truncateForDisplay(res.Content, snippetMaxLen); snippet != "" {
			fmt.Printf("   %s\n", snippet)
		}
		fmt.Println()
	}
}

// handleCommand handles built-in commands, returns true to continue loop, false to exit
func handleCommand(ctx context.Context, cmd string, sess *session) bool {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return true
	}

	command := strings.ToLower(parts[0])

	switch command {
	case "/help":
		printHelp()
		return true

	case "/exit", "/quit", "/q":
		fmt.Printf("%sGoodbye! 👋%s\n", colorCyan, colorReset)
		return false

	case "/config":
		fmt.Println(sess.cfg.String())
		return true

	case "/provider":
		handleProvider(sess, parts)
		return true

	case "/max":
		handleMaxResults(sess, parts)
		return true

	case "/raw":
		handleRawContent(sess, parts)
		return true

	case "/sources":
		printSources(sess)
		return true

	case "/prompt":
		printPromptBlock(sess, parts)
		return true

	case "/open":
		openResult(ctx, sess, parts)
		return true

	case "/history":
		handleHistory(sess, parts)
		return true

	default:
		fmt.Printf("%s❓ Unknown command: %s%s\n", colorYellow, cmd, colorReset)
		fmt.Println("Type /help for available commands")
		return true
	}
}

// handleProvider shows or switches the active search provider
func handleProvider(sess *session, parts []string) {
	if len(parts) < 2 {
		fmt.Printf("Current provider: %s\n", sess.cfg.Search.Provider)
		fmt.Printf("%sUse /provider tavily or /provider searxng to switch%s\n", colorGray, colorReset)
		return
	}

	name := strings.ToLower(parts[1])
	if name != string(websearch.ProviderTavily) && name != string(websearch.ProviderSearXNG) {
		fmt.Printf("%s❓ Unknown provider: %s (expected tavily or searxng)%s\n", colorYellow, parts[1], colorReset)
		return
	}

	if name == string(websearch.ProviderSearXNG) && strings.TrimSpace(sess.cfg.SearXNG.BaseURL) == "" {
		fmt.Printf("%s⚠️  searxng.base_url is not configured, searches will fail until it is set%s\n", colorYellow, colorReset)
	}

	sess.cfg.Search.Provider = name
	fmt.Printf("%s✅ Provider set to %s for this session%s\n", colorGreen, name, colorReset)
}

// handleMaxResults shows or sets the per-search result cap
func handleMaxResults(sess *session, parts []string) {
	if len(parts) < 2 {
		fmt.Printf("Current max results: %d\n", sess.cfg.Search.MaxResults)
		return
	}

	n, err := strconv.Atoi(parts[1])
	if err != nil || n <= 0 {
		fmt.Printf("%s❓ Usage: /max <n> (n must be a positive number)%s\n", colorYellow, colorReset)
		return
	}

	sess.cfg.Search.MaxResults = n
	fmt.Printf("%s✅ Max results set to %d for this session%s\n", colorGreen, n, colorReset)
}

// handleRawContent toggles fetching full page content with results
func handleRawContent(sess *session, parts []string) {
	if len(parts) < 2 {
		state := "off"
		if sess.cfg.Search.IncludeRawContent {
			state = "on"
		}
		fmt.Printf("Raw content is %s\n", state)
		return
	}

	switch strings.ToLower(parts[1]) {
	case "on":
		sess.cfg.Search.IncludeRawContent = true
		fmt.Printf("%s✅ Raw content enabled for this session%s\n", colorGreen, colorReset)
	case "off":
		sess.cfg.Search.IncludeRawContent = false
		fmt.Printf("%s✅ Raw content disabled for this session%s\n", colorGreen, colorReset)
	default:
		fmt.Printf("%s❓ Usage: /raw on|off%s\n", colorYellow, colorReset)
	}
}

// printSources prints the citation list for the last search
func printSources(sess *session) {
	if sess.lastResp == nil {
		fmt.Printf("%sNo search results yet. Run a search first.%s\n", colorYellow, colorReset)
		return
	}

	out, err := websearch.FormatSources(sess.lastResp)
	if err != nil {
		fmt.Printf("%s❌ Failed to format sources: %v%s\n", colorRed, err, colorReset)
		return
	}
	if out == "" {
		fmt.Printf("%sNo sources to list.%s\n", colorYellow, colorReset)
		return
	}

	fmt.Printf("%sSources for %q:%s\n", colorGray, sess.lastQuery, colorReset)
	fmt.Println(out)
}

// printPromptBlock renders the last search as a deduplicated LLM context block
func printPromptBlock(sess *session, parts []string) {
	if sess.lastResp == nil {
		fmt.Printf("%sNo search results yet. Run a search first.%s\n", colorYellow, colorReset)
		return
	}

	maxTokens := sess.cfg.Search.MaxTokensPerSource
	if len(parts) > 1 {
		n, err := strconv.Atoi(parts[1])
		if err != nil || n <= 0 {
			fmt.Printf("%s❓ Usage: /prompt [max_tokens]%s\n", colorYellow, colorReset)
			return
		}
		maxTokens = n
	}

	out, err := websearch.DeduplicateAndFormat(
		websearch.SourcesFromResponse(sess.lastResp),
		maxTokens,
		sess.cfg.Search.IncludeRawContent,
	)
	if err != nil {
		fmt.Printf("%s❌ Failed to format results: %v%s\n", colorRed, err, colorReset)
		return
	}

	fmt.Println(out)
}

// openResult fetches one result from the last search and prints a text preview
func openResult(ctx context.Context, sess *session, parts []string) {
	if sess.lastResp == nil {
		fmt.Printf("%sNo search results yet. Run a search first.%s\n", colorYellow, colorReset)
		return
	}
	if len(parts) < 2 {
		fmt.Printf("%s❓ Usage: /open <n>%s\n", colorYellow, colorReset)
		return
	}

	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 1 || n > len(sess.lastResp.Results) {
		fmt.Printf("%s❓ Pick a result between 1 and %d%s\n", colorYellow, len(sess.lastResp.Results), colorReset)
		return
	}

	res := sess.lastResp.Results[n-1]
	fmt.Printf("%sFetching %s...%s\n", colorGray, res.URL, colorReset)

	content, err := sess.fetcher.Fetch(ctx, res.URL)
	if err != nil {
		fmt.Printf("%s❌ Fetch failed: %v%s\n", colorRed, err, colorReset)
		return
	}

	fmt.Printf("\n%s%s%s\n", colorBlue, res.Title, colorReset)
	fmt.Printf("%s%s%s\n\n", colorGray, res.URL, colorReset)
	fmt.Println(truncateForDisplay(content, previewMaxLen))
	fmt.Println()
}

// handleHistory lists or clears recorded searches
func handleHistory(sess *session, parts []string) {
	if sess.store == nil {
		fmt.Printf("%sSearch history is disabled%s\n", colorYellow, colorReset)
		return
	}

	if len(parts) > 1 && parts[1] == "clear" {
		if err := sess.store.Clear(); err != nil {
			fmt.Printf("%s❌ Failed to clear history: %v%s\n", colorRed, err, colorReset)
		} else {
			fmt.Printf("%s✅ Search history cleared%s\n", colorGreen, colorReset)
		}
		return
	}

	limit := defaultHistoryLimit
	if len(parts) > 1 {
		if n, err := strconv.Atoi(parts[1]); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := sess.store.RecentSearches(limit)
	if err != nil {
		fmt.Printf("%s❌ Failed to load history: %v%s\n", colorRed, err, colorReset)
		return
	}
	if len(records) == 0 {
		fmt.Printf("%sNo searches recorded yet%s\n", colorGray, colorReset)
		return
	}

	for i, rec := range records {
		fmt.Printf("%d. %s %s(%s, %d results, %s)%s\n",
			i+1, rec.Query, colorGray, rec.Provider, rec.ResultCount,
			formatAge(time.Since(rec.CreatedAt)), colorReset)
	}
}

// printHelp prints help information
func printHelp() {
	fmt.Printf(`
%s📚 SearchMate Help%s

%sUsage:%s
  Type a query and press Enter to search the web.

%sBuilt-in Commands:%s
  /help            - Show this help message
  /provider [name] - Show or switch search provider (tavily, searxng)
  /max [n]         - Show or set max results per search
  /raw [on|off]    - Toggle fetching full page content with results
  /sources         - List sources from the last search
  /prompt [tokens] - Render the last search as an LLM context block
  /open <n>        - Fetch and preview result n from the last search
  /history [n]     - Show the n most recent searches
  /history clear   - Clear search history
  /config          - Show current configuration
  /exit            - Exit program

  Provider, max and raw changes apply to the current session only.
  Edit the config file to change them permanently.

%sInput Tips:%s
  • Use Backspace to delete characters
  • Use Left/Right arrow keys to move cursor
  • Use Up/Down arrow keys to browse query history
  • Use Ctrl+A/Ctrl+E to jump to start/end of line
  • Use Ctrl+W to delete word before cursor
  • Press Ctrl+C to cancel current input

%sExamples:%s
  golang context cancellation
  /provider searxng
  /prompt 500
  /open 2

`, colorCyan, colorReset, colorYellow, colorReset, colorYellow, colorReset, colorYellow, colorReset, colorYellow, colorReset)
}

// truncateForDisplay flattens text to one line and truncates it for terminal output
func truncateForDisplay(text string, maxLen int) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", "")
	text = strings.TrimSpace(text)

	if len(text) <= maxLen {
		return text
	}
	return text[:maxLen] + "..."
}

// formatAge renders a duration as a compact relative age
func formatAge(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
	return fmt.Sprintf("%dd ago", int(d.Hours()/24))
}
