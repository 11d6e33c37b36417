package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestVersion(t *testing.T) {
	if Version != "0.1.0" {
		t.Errorf("Expected Version to be '0.1.0', got '%s'", Version)
	}
}

func TestTruncateForDisplay(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxLen   int
		expected string
	}{
		{
			name:     "short text",
			text:     "Hello",
			maxLen:   10,
			expected: "Hello",
		},
		{
			name:     "exact length",
			text:     "Hello",
			maxLen:   5,
			expected: "Hello",
		},
		{
			name:     "truncate",
			text:     "Hello World",
			maxLen:   5,
			expected: "Hello...",
		},
		{
			name:     "with newlines",
			text:     "Hello\nWorld",
			maxLen:   20,
			expected: "Hello World",
		},
		{
			name:     "with carriage return",
			text:     "Hello\r\nWorld",
			maxLen:   20,
			expected: "Hello World",
		},
		{
			name:     "with leading/trailing spaces",
			text:     "  Hello  ",
			maxLen:   20,
			expected: "Hello",
		},
		{
			name:     "empty string",
			text:     "",
			maxLen:   10,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateForDisplay(tt.text, tt.maxLen)
			if got != tt.expected {
				t.Errorf("truncateForDisplay(%q, %d) = %q, want %q", tt.text, tt.maxLen, got, tt.expected)
			}
		})
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{
			name:     "seconds",
			duration: 30 * time.Second,
			expected: "30s ago",
		},
		{
			name:     "minutes",
			duration: 5 * time.Minute,
			expected: "5m ago",
		},
		{
			name:     "hours",
			duration: 3 * time.Hour,
			expected: "3h ago",
		},
		{
			name:     "days",
			duration: 48 * time.Hour,
			expected: "2d ago",
		},
		{
			name:     "less than minute",
			duration: 45 * time.Second,
			expected: "45s ago",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatAge(tt.duration)
			if got != tt.expected {
				t.Errorf("formatAge(%v) = %q, want %q", tt.duration, got, tt.expected)
			}
		})
	}
}

func TestStripHTMLTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text",
			input:    "Hello World",
			expected: "Hello World",
		},
		{
			name:     "simple markup",
			input:    "<html><body><p>Hello</p> <p>World</p></body></html>",
			expected: "Hello World",
		},
		{
			name:     "drops scripts",
			input:    "<script>var x = 1;</script><p>Text</p>",
			expected: "Text",
		},
		{
			name:     "drops styles",
			input:    "<style>p { color: red; }</style><p>Text</p>",
			expected: "Text",
		},
		{
			name:     "unescapes entities",
			input:    "Fish &amp; Chips",
			expected: "Fish & Chips",
		},
		{
			name:     "collapses whitespace",
			input:    "<div>\n  spaced   out\n</div>",
			expected: "spaced out",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripHTMLTags(tt.input)
			if got != tt.expected {
				t.Errorf("stripHTMLTags(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNewPageFetcher(t *testing.T) {
	f := newPageFetcher()

	if f.userAgent != "SearchMate/0.1" {
		t.Errorf("Expected user agent 'SearchMate/0.1', got '%s'", f.userAgent)
	}
	if f.timeout != 15*time.Second {
		t.Errorf("Expected timeout 15s, got %v", f.timeout)
	}
	if f.maxBytes != previewMaxBytes {
		t.Errorf("Expected max bytes %d, got %d", previewMaxBytes, f.maxBytes)
	}
}

func TestPageFetcher_StripsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "SearchMate/0.1" {
			t.Errorf("Expected User-Agent 'SearchMate/0.1', got '%s'", r.Header.Get("User-Agent"))
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><head><title>t</title></head><body><p>Page body</p></body></html>"))
	}))
	defer server.Close()

	f := newPageFetcher()
	content, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if content != "t Page body" {
		t.Errorf("Expected stripped content 't Page body', got %q", content)
	}
}

func TestPageFetcher_PlainTextUntouched(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("raw <not html> body"))
	}))
	defer server.Close()

	f := newPageFetcher()
	content, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if content != "raw <not html> body" {
		t.Errorf("Expected body unchanged, got %q", content)
	}
}

func TestPageFetcher_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := newPageFetcher()
	_, err := f.Fetch(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 404 response")
	}
	if !strings.Contains(err.Error(), "status 404") {
		t.Errorf("Expected status in error, got: %v", err)
	}
}

func TestPageFetcher_RejectsBadURLs(t *testing.T) {
	f := newPageFetcher()

	if _, err := f.Fetch(context.Background(), "not-a-url"); err == nil {
		t.Error("Expected error for URL without scheme")
	}
	if _, err := f.Fetch(context.Background(), "ftp://example.com/file"); err == nil {
		t.Error("Expected error for unsupported scheme")
	}
}

func TestPageFetcher_LimitsBodySize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(strings.Repeat("a", 100)))
	}))
	defer server.Close()

	f := newPageFetcher()
	f.maxBytes = 10

	content, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if content != strings.Repeat("a", 10) {
		t.Errorf("Expected body capped at 10 bytes, got %d bytes", len(content))
	}
}
