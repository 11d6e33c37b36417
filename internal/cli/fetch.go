package cli

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const previewMaxBytes = int64(200000)

// pageFetcher retrieves a result URL for preview in the terminal.
type pageFetcher struct {
	userAgent string
	timeout   time.Duration
	maxBytes  int64
}

func newPageFetcher() *pageFetcher {
	return &pageFetcher{
		userAgent: "SearchMate/0.1",
		timeout:   15 * time.Second,
		maxBytes:  previewMaxBytes,
	}
}

// Fetch downloads the page at rawURL and returns readable text content.
// HTML responses have their markup stripped.
func (f *pageFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Scheme == "" {
		return "", fmt.Errorf("invalid url: %s", rawURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("unsupported url scheme: %s", parsed.Scheme)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	client := &http.Client{Timeout: f.timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch failed: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	content := string(body)
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		content = stripHTMLTags(content)
	}

	return content, nil
}

// Script and style bodies must be dropped before the generic tag pass,
// or their contents would survive it as text.
var tagPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
	regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
	regexp.MustCompile(`(?s)<[^>]+>`),
}

// stripHTMLTags reduces an HTML document to its visible text
func stripHTMLTags(input string) string {
	text := input
	for _, pat := range tagPatterns {
		text = pat.ReplaceAllString(text, " ")
	}
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}
