package websearch

import (
	"fmt"
	"strings"

	"github.com/hession/searchmate/internal/logger"
)

const truncationMarker = "... [truncated]"

type sourceKind int

const (
	sourceKindNone sourceKind = iota
	sourceKindResponse
	sourceKindResponses
	sourceKindResults
)

// Sources is the input accepted by DeduplicateAndFormat. Build one with
// SourcesFromResponse, SourcesFromResponses, or SourcesFromResults; the
// zero value is rejected.
type Sources struct {
	kind      sourceKind
	response  *Response
	responses []*Response
	results   []Result
}

// SourcesFromResponse wraps a single search response.
func SourcesFromResponse(resp *Response) Sources {
	return Sources{kind: sourceKindResponse, response: resp}
}

// SourcesFromResponses wraps several responses whose results are
// concatenated in the order given.
func SourcesFromResponses(resps []*Response) Sources {
	return Sources{kind: sourceKindResponses, responses: resps}
}

// SourcesFromResults wraps a bare result list.
func SourcesFromResults(results []Result) Sources {
	return Sources{kind: sourceKindResults, results: results}
}

func (s Sources) flatten() ([]Result, error) {
	switch s.kind {
	case sourceKindResponse:
		if s.response == nil {
			return nil, ErrInvalidSources
		}
		return s.response.Results, nil
	case sourceKindResponses:
		var flat []Result
		for _, resp := range s.responses {
			if resp == nil {
				return nil, ErrInvalidSources
			}
			flat = append(flat, resp.Results...)
		}
		return flat, nil
	case sourceKindResults:
		return s.results, nil
	default:
		return nil, ErrInvalidSources
	}
}

// DeduplicateAndFormat renders sources as a prompt-ready text block.
// Results are deduplicated by URL keeping the first occurrence, in input
// order. When includeRawContent is set, each source's full text is capped
// at maxTokensPerSource tokens using a four-characters-per-token estimate,
// with a marker appended when the text was cut.
func DeduplicateAndFormat(src Sources, maxTokensPerSource int, includeRawContent bool) (string, error) {
	results, err := src.flatten()
	if err != nil {
		return "", err
	}

	seen := make(map[string]bool)
	unique := make([]Result, 0, len(results))
	for _, res := range results {
		if seen[res.URL] {
			continue
		}
		seen[res.URL] = true
		unique = append(unique, res)
	}

	var b strings.Builder
	b.WriteString("Sources:\n\n")
	for _, res := range unique {
		fmt.Fprintf(&b, "Source %s:\n===\n", res.Title)
		fmt.Fprintf(&b, "URL: %s\n===\n", res.URL)
		fmt.Fprintf(&b, "Most relevant content from source: %s\n===\n", res.Content)
		if includeRawContent {
			raw := ""
			if res.RawContent != nil {
				raw = *res.RawContent
			} else {
				logger.Warn("no raw content for source %s", res.URL)
			}
			charLimit := maxTokensPerSource * 4
			if runes := []rune(raw); len(runes) > charLimit {
				raw = string(runes[:charLimit]) + truncationMarker
			}
			fmt.Fprintf(&b, "Full source content limited to %d tokens: %s\n\n", maxTokensPerSource, raw)
		}
	}

	return strings.TrimSpace(b.String()), nil
}

// FormatSources renders one citation line per result. Unlike
// DeduplicateAndFormat it performs no deduplication and insists on a
// well-formed response.
func FormatSources(resp *Response) (string, error) {
	if resp == nil || resp.Results == nil {
		return "", ErrMissingResults
	}

	lines := make([]string, 0, len(resp.Results))
	for _, res := range resp.Results {
		lines = append(lines, fmt.Sprintf("* %s : %s", res.Title, res.URL))
	}
	return strings.Join(lines, "\n"), nil
}
