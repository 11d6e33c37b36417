package websearch

import "errors"

var (
	// ErrMissingSearXNGURL is returned when the searxng provider is
	// selected without a base URL configured.
	ErrMissingSearXNGURL = errors.New("searxng base url is required")

	// ErrUnsupportedProvider is returned for provider tags outside the
	// supported set.
	ErrUnsupportedProvider = errors.New("unsupported search provider")

	// ErrInvalidSources is returned when formatting input was not built
	// through one of the Sources constructors.
	ErrInvalidSources = errors.New("sources must be a response, a list of responses, or a list of results")

	// ErrMissingResults is returned by FormatSources when the response
	// carries no results field.
	ErrMissingResults = errors.New("response has no results field")
)
