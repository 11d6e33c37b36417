package websearch

import (
	"context"
	"fmt"
	"strings"

	"github.com/hession/searchmate/internal/logger"
)

// Provider identifies a supported search backend.
type Provider string

const (
	ProviderTavily  Provider = "tavily"
	ProviderSearXNG Provider = "searxng"
)

// DefaultMaxResults is the result cap applied when a caller leaves
// Options.MaxResults unset.
const DefaultMaxResults = 3

// Options controls a single search call.
type Options struct {
	MaxResults        int
	IncludeRawContent bool
}

func (o Options) withDefaults() Options {
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	return o
}

// Config selects a provider and carries the settings that provider needs.
type Config struct {
	Provider     Provider
	TavilyAPIKey string
	SearXNGURL   string
}

// Client performs web searches against one provider.
type Client interface {
	Name() string
	Search(ctx context.Context, query string, opts Options) (*Response, error)
}

// New returns the client for the provider selected in cfg.
func New(cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderTavily:
		return NewTavilyClient(cfg.TavilyAPIKey), nil
	case ProviderSearXNG:
		if strings.TrimSpace(cfg.SearXNGURL) == "" {
			return nil, ErrMissingSearXNGURL
		}
		return NewSearXNGClient(cfg.SearXNGURL), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, string(cfg.Provider))
	}
}

// Search runs one query against the provider selected in cfg.
func Search(ctx context.Context, cfg Config, query string, opts Options) (*Response, error) {
	client, err := New(cfg)
	if err != nil {
		return nil, err
	}

	opts = opts.withDefaults()
	logger.Debug("web search: provider=%s query=%q max_results=%d", client.Name(), query, opts.MaxResults)

	resp, err := client.Search(ctx, query, opts)
	if err != nil {
		logger.Error("web search failed: provider=%s: %v", client.Name(), err)
		return nil, err
	}

	logger.Info("web search: provider=%s query=%q results=%d", client.Name(), query, len(resp.Results))
	return resp, nil
}
