// Package fetch implements the data sources behind a query: web search,
// autocomplete, encyclopedia summaries and AI answers.
//
// Every fetcher checks the result cache first and skips the network on a
// hit. Concurrent calls for the same cache key share one request. Failures
// are reported as *core.FetchError so callers can tell network failures,
// bad statuses, rate limiting and malformed payloads apart.
//
// Slices returned by fetchers may be shared with concurrent callers of the
// same key and must be treated as read-only.
package fetch
