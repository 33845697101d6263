package fetch

import "strings"

// Endpoints holds the base URLs of the hosted services.
type Endpoints struct {
	// Search is the web search API. Query and engine are sent as q and source.
	Search string
	// Autocomplete is the suggestion service; the provider is a path segment.
	Autocomplete string
	// WikipediaAPI is the MediaWiki action API used for the title lookup.
	WikipediaAPI string
	// WikipediaSummary is the REST summary endpoint; the title is appended.
	WikipediaSummary string
}

// DefaultEndpoints returns the production service URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Search:           "https://searchapi.tekir.co/api",
		Autocomplete:     "https://autocomplete.tekir.co",
		WikipediaAPI:     "https://en.wikipedia.org/w/api.php",
		WikipediaSummary: "https://en.wikipedia.org/api/rest_v1/page/summary",
	}
}

// Normalize removes trailing slashes and fills empty fields from the
// defaults.
func (e *Endpoints) Normalize() {
	d := DefaultEndpoints()
	fill := func(v *string, def string) {
		*v = strings.TrimSuffix(strings.TrimSpace(*v), "/")
		if *v == "" {
			*v = def
		}
	}
	fill(&e.Search, d.Search)
	fill(&e.Autocomplete, d.Autocomplete)
	fill(&e.WikipediaAPI, d.WikipediaAPI)
	fill(&e.WikipediaSummary, d.WikipediaSummary)
}
