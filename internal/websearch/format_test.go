package websearch

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func strPtr(s string) *string {
	return &s
}

func TestDeduplicateAndFormat_SingleResponse(t *testing.T) {
	resp := &Response{
		Results: []Result{
			{Title: "A", URL: "http://x", Content: "c1", RawContent: strPtr("hello world")},
		},
	}

	out, err := DeduplicateAndFormat(SourcesFromResponse(resp), 100, true)
	if err != nil {
		t.Fatalf("DeduplicateAndFormat failed: %v", err)
	}

	want := "Sources:\n\n" +
		"Source A:\n===\n" +
		"URL: http://x\n===\n" +
		"Most relevant content from source: c1\n===\n" +
		"Full source content limited to 100 tokens: hello world"
	if out != want {
		t.Errorf("Expected:\n%q\ngot:\n%q", want, out)
	}
}

func TestDeduplicateAndFormat_TruncatesRawContent(t *testing.T) {
	resp := &Response{
		Results: []Result{
			{Title: "A", URL: "http://x", Content: "c1", RawContent: strPtr("hello world")},
		},
	}

	out, err := DeduplicateAndFormat(SourcesFromResponse(resp), 1, true)
	if err != nil {
		t.Fatalf("DeduplicateAndFormat failed: %v", err)
	}

	if !strings.Contains(out, "Full source content limited to 1 tokens: hell... [truncated]") {
		t.Errorf("Expected raw content cut to 4 chars plus marker, got:\n%s", out)
	}
	if strings.Contains(out, "hello") {
		t.Errorf("Expected truncated raw content, got:\n%s", out)
	}
}

func TestDeduplicateAndFormat_ShortRawContentUnmodified(t *testing.T) {
	resp := &Response{
		Results: []Result{
			{Title: "A", URL: "http://x", RawContent: strPtr("hi")},
		},
	}

	out, err := DeduplicateAndFormat(SourcesFromResponse(resp), 1, true)
	if err != nil {
		t.Fatalf("DeduplicateAndFormat failed: %v", err)
	}

	if !strings.Contains(out, "limited to 1 tokens: hi") {
		t.Errorf("Expected raw content unmodified, got:\n%s", out)
	}
	if strings.Contains(out, "[truncated]") {
		t.Errorf("Expected no truncation marker, got:\n%s", out)
	}
}

func TestDeduplicateAndFormat_RawContentAtLimit(t *testing.T) {
	// Exactly max_tokens*4 characters is not cut.
	resp := &Response{
		Results: []Result{
			{Title: "A", URL: "http://x", RawContent: strPtr("abcd")},
		},
	}

	out, err := DeduplicateAndFormat(SourcesFromResponse(resp), 1, true)
	if err != nil {
		t.Fatalf("DeduplicateAndFormat failed: %v", err)
	}

	if !strings.Contains(out, "limited to 1 tokens: abcd") {
		t.Errorf("Expected raw content kept whole, got:\n%s", out)
	}
	if strings.Contains(out, "[truncated]") {
		t.Errorf("Expected no truncation marker at the boundary, got:\n%s", out)
	}
}

func TestDeduplicateAndFormat_KeepsFirstDuplicate(t *testing.T) {
	resp := &Response{
		Results: []Result{
			{Title: "First", URL: "http://same", Content: "one"},
			{Title: "Second", URL: "http://same", Content: "two"},
			{Title: "Other", URL: "http://other", Content: "three"},
		},
	}

	out, err := DeduplicateAndFormat(SourcesFromResponse(resp), 10, false)
	if err != nil {
		t.Fatalf("DeduplicateAndFormat failed: %v", err)
	}

	if !strings.Contains(out, "Source First:") {
		t.Errorf("Expected first duplicate kept, got:\n%s", out)
	}
	if strings.Contains(out, "Source Second:") {
		t.Errorf("Expected second duplicate dropped, got:\n%s", out)
	}
	if !strings.Contains(out, "Source Other:") {
		t.Errorf("Expected distinct URL kept, got:\n%s", out)
	}
}

func TestDeduplicateAndFormat_FlattensResponsesInOrder(t *testing.T) {
	first := &Response{Results: []Result{{Title: "One", URL: "http://1"}}}
	second := &Response{Results: []Result{{Title: "Two", URL: "http://2"}}}

	out, err := DeduplicateAndFormat(SourcesFromResponses([]*Response{first, second}), 10, false)
	if err != nil {
		t.Fatalf("DeduplicateAndFormat failed: %v", err)
	}

	i := strings.Index(out, "Source One:")
	j := strings.Index(out, "Source Two:")
	if i < 0 || j < 0 {
		t.Fatalf("Expected both blocks present, got:\n%s", out)
	}
	if i > j {
		t.Errorf("Expected input order preserved, got:\n%s", out)
	}
}

func TestDeduplicateAndFormat_RawResultList(t *testing.T) {
	results := []Result{
		{Title: "A", URL: "http://a", Content: "ca"},
		{Title: "B", URL: "http://b", Content: "cb"},
	}

	out, err := DeduplicateAndFormat(SourcesFromResults(results), 10, false)
	if err != nil {
		t.Fatalf("DeduplicateAndFormat failed: %v", err)
	}

	if !strings.Contains(out, "URL: http://a") || !strings.Contains(out, "URL: http://b") {
		t.Errorf("Expected both results rendered, got:\n%s", out)
	}
}

func TestDeduplicateAndFormat_MissingRawContent(t *testing.T) {
	resp := &Response{
		Results: []Result{
			{Title: "A", URL: "http://x", Content: "c1"},
		},
	}

	out, err := DeduplicateAndFormat(SourcesFromResponse(resp), 5, true)
	if err != nil {
		t.Fatalf("Expected missing raw content to be non-fatal, got: %v", err)
	}

	if !strings.Contains(out, "Full source content limited to 5 tokens:") {
		t.Errorf("Expected raw content section with empty substitute, got:\n%s", out)
	}
	if strings.Contains(out, "[truncated]") {
		t.Errorf("Expected no truncation marker for empty substitute, got:\n%s", out)
	}
}

func TestDeduplicateAndFormat_ExcludeRawContent(t *testing.T) {
	resp := &Response{
		Results: []Result{
			{Title: "A", URL: "http://x", Content: "c1", RawContent: strPtr("full text")},
		},
	}

	out, err := DeduplicateAndFormat(SourcesFromResponse(resp), 10, false)
	if err != nil {
		t.Fatalf("DeduplicateAndFormat failed: %v", err)
	}

	if strings.Contains(out, "Full source content") {
		t.Errorf("Expected no raw content section, got:\n%s", out)
	}
}

func TestDeduplicateAndFormat_Deterministic(t *testing.T) {
	resp := &Response{
		Results: []Result{
			{Title: "A", URL: "http://a", Content: "ca", RawContent: strPtr(strings.Repeat("x", 100))},
			{Title: "B", URL: "http://b", Content: "cb"},
			{Title: "C", URL: "http://a", Content: "dup"},
		},
	}

	first, err := DeduplicateAndFormat(SourcesFromResponse(resp), 3, true)
	if err != nil {
		t.Fatalf("DeduplicateAndFormat failed: %v", err)
	}
	second, err := DeduplicateAndFormat(SourcesFromResponse(resp), 3, true)
	if err != nil {
		t.Fatalf("DeduplicateAndFormat failed: %v", err)
	}

	if first != second {
		t.Error("Expected identical output for identical input")
	}
}

func TestDeduplicateAndFormat_InvalidInput(t *testing.T) {
	if _, err := DeduplicateAndFormat(Sources{}, 10, true); !errors.Is(err, ErrInvalidSources) {
		t.Errorf("Expected ErrInvalidSources for zero value, got: %v", err)
	}
	if _, err := DeduplicateAndFormat(SourcesFromResponse(nil), 10, true); !errors.Is(err, ErrInvalidSources) {
		t.Errorf("Expected ErrInvalidSources for nil response, got: %v", err)
	}
	if _, err := DeduplicateAndFormat(SourcesFromResponses([]*Response{nil}), 10, true); !errors.Is(err, ErrInvalidSources) {
		t.Errorf("Expected ErrInvalidSources for nil element, got: %v", err)
	}
}

func TestDeduplicateAndFormat_EmptyInput(t *testing.T) {
	out, err := DeduplicateAndFormat(SourcesFromResults(nil), 10, true)
	if err != nil {
		t.Fatalf("DeduplicateAndFormat failed: %v", err)
	}
	if out != "Sources:" {
		t.Errorf("Expected bare header for empty input, got %q", out)
	}
}

func TestFormatSources(t *testing.T) {
	resp := &Response{
		Results: []Result{
			{Title: "T", URL: "http://u"},
		},
	}

	out, err := FormatSources(resp)
	if err != nil {
		t.Fatalf("FormatSources failed: %v", err)
	}
	if out != "* T : http://u" {
		t.Errorf("Expected '* T : http://u', got %q", out)
	}
}

func TestFormatSources_NoDeduplication(t *testing.T) {
	resp := &Response{
		Results: []Result{
			{Title: "A", URL: "http://same"},
			{Title: "B", URL: "http://same"},
		},
	}

	out, err := FormatSources(resp)
	if err != nil {
		t.Fatalf("FormatSources failed: %v", err)
	}

	want := "* A : http://same\n* B : http://same"
	if out != want {
		t.Errorf("Expected %q, got %q", want, out)
	}
}

func TestFormatSources_MissingResults(t *testing.T) {
	if _, err := FormatSources(nil); !errors.Is(err, ErrMissingResults) {
		t.Errorf("Expected ErrMissingResults for nil response, got: %v", err)
	}
	if _, err := FormatSources(&Response{}); !errors.Is(err, ErrMissingResults) {
		t.Errorf("Expected ErrMissingResults for absent results, got: %v", err)
	}
}

func TestFormatSources_EmptyResults(t *testing.T) {
	out, err := FormatSources(&Response{Results: []Result{}})
	if err != nil {
		t.Fatalf("FormatSources failed: %v", err)
	}
	if out != "" {
		t.Errorf("Expected empty output, got %q", out)
	}
}

func TestResult_RawContentJSON(t *testing.T) {
	var withNull Result
	if err := json.Unmarshal([]byte(`{"title":"t","url":"u","raw_content":null}`), &withNull); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if withNull.RawContent != nil {
		t.Error("Expected nil RawContent for JSON null")
	}

	var withValue Result
	if err := json.Unmarshal([]byte(`{"title":"t","url":"u","raw_content":"full"}`), &withValue); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if withValue.RawContent == nil || *withValue.RawContent != "full" {
		t.Errorf("Expected RawContent 'full', got %v", withValue.RawContent)
	}
}
