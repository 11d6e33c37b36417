package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const searxngEngines = "google,bing,duckduckgo"

// SearXNGClient queries a self-hosted SearXNG instance over its JSON API.
// SearXNG never returns full page text, so RawContent is nil on every
// result regardless of Options.IncludeRawContent.
type SearXNGClient struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

func NewSearXNGClient(baseURL string) *SearXNGClient {
	return &SearXNGClient{
		baseURL:   strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		userAgent: "SearchMate/0.1",
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *SearXNGClient) Name() string {
	return "searxng"
}

type searxngResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

type searxngResponse struct {
	Results []searxngResult `json:"results"`
}

func (c *SearXNGClient) Search(ctx context.Context, query string, opts Options) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	opts = opts.withDefaults()

	endpoint, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("searxng search failed: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("engines", searxngEngines)
	params.Set("max_results", fmt.Sprintf("%d", opts.MaxResults))
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("searxng search failed: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searxng search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("searxng search failed: status %d", resp.StatusCode)
	}

	var payload searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("searxng search failed: %w", err)
	}

	// The max_results parameter is advisory for SearXNG, so the cap is
	// enforced here as well.
	results := make([]Result, 0, opts.MaxResults)
	for _, res := range payload.Results {
		if len(results) >= opts.MaxResults {
			break
		}
		results = append(results, Result{
			Title:   res.Title,
			URL:     res.URL,
			Content: res.Content,
		})
	}

	return &Response{Results: results}, nil
}
