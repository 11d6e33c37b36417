package websearch

// Result is a single search result entry.
type Result struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent *string `json:"raw_content,omitempty"`
}

// Response is the normalized search response shared by all providers.
type Response struct {
	Results []Result `json:"results"`
}
