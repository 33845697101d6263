// Package bang resolves bang commands ("!w cats") to third-party URLs.
package bang

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/poiesic/tekir/core"
)

// Placeholder is substituted with the encoded search terms in a template.
const Placeholder = "{q}"

// Redirect is the outcome of resolving a bang command.
type Redirect struct {
	Token  string // the bang as typed, without the marker
	Terms  string // remaining query text, whitespace collapsed
	Target string // fully formed destination URL
}

// Bang maps a token to a URL template containing Placeholder.
type Bang struct {
	Token    string
	Name     string
	Template string
}

var builtin = []Bang{
	{Token: "g", Name: "Google", Template: "https://www.google.com/search?q={q}"},
	{Token: "yt", Name: "YouTube", Template: "https://www.youtube.com/results?search_query={q}"},
	{Token: "d", Name: "DuckDuckGo", Template: "https://duckduckgo.com/?q={q}"},
	{Token: "w", Name: "Wikipedia", Template: "https://en.wikipedia.org/w/index.php?search={q}"},
	{Token: "btt", Name: "BTT Community", Template: "https://btt.community/search?q={q}"},
	{Token: "a", Name: "Artado", Template: "https://www.artadosearch.com/search?i={q}"},
}

// Builtin returns the default bang table.
func Builtin() []Bang {
	out := make([]Bang, len(builtin))
	copy(out, builtin)
	return out
}

// Resolver resolves bang tokens against a fixed table.
// A Resolver is immutable after construction and safe for concurrent use.
type Resolver struct {
	table map[string]Bang
	order []string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBang adds or replaces a bang. Tokens are matched case-insensitively.
func WithBang(b Bang) Option {
	return func(r *Resolver) {
		r.add(b)
	}
}

// NewResolver creates a resolver seeded with the builtin table.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{table: make(map[string]Bang, len(builtin))}
	for _, b := range builtin {
		r.add(b)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Resolver) add(b Bang) {
	token := strings.ToLower(strings.TrimPrefix(b.Token, "!"))
	if token == "" || !isToken(token) {
		return
	}
	b.Token = token
	if _, exists := r.table[token]; !exists {
		r.order = append(r.order, token)
	}
	r.table[token] = b
}

// Bangs returns the resolver's table in registration order.
func (r *Resolver) Bangs() []Bang {
	out := make([]Bang, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.table[t])
	}
	return out
}

// Resolve finds the first recognized bang in query, scanning left to right.
// A token counts only at the start of the query or after whitespace, and
// only when followed by whitespace or the end of the query. Unrecognized
// tokens are skipped and stay part of the search terms.
func (r *Resolver) Resolve(query string) (Redirect, bool) {
	fields := strings.Fields(query)
	for i, field := range fields {
		if len(field) < 2 || field[0] != '!' {
			continue
		}
		token := strings.ToLower(field[1:])
		if !isToken(token) {
			continue
		}
		b, ok := r.table[token]
		if !ok {
			continue
		}
		rest := make([]string, 0, len(fields)-1)
		rest = append(rest, fields[:i]...)
		rest = append(rest, fields[i+1:]...)
		terms := strings.Join(rest, " ")
		return Redirect{
			Token:  token,
			Terms:  terms,
			Target: strings.ReplaceAll(b.Template, Placeholder, EncodeComponent(terms)),
		}, true
	}
	return Redirect{}, false
}

// Target returns the redirect URL for query, or an error wrapping
// core.ErrRedirectNotApplicable when no recognized bang is present.
func (r *Resolver) Target(query string) (string, error) {
	redirect, ok := r.Resolve(query)
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrRedirectNotApplicable, query)
	}
	return redirect.Target, nil
}

// HasBang reports whether query contains a bang-looking token, recognized or
// not.
func HasBang(query string) bool {
	return core.LooksLikeBang(query)
}

// componentUnescaper restores the characters a browser leaves alone when
// encoding a URI component.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s for use inside a URL query value.
// Spaces become %20 rather than '+'.
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

func isToken(s string) bool {
	for _, c := range s {
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return s != ""
}
