package search

// Source identifies one data source of a submission.
type Source string

const (
	SourceSearch       Source = "search"
	SourceEncyclopedia Source = "wikipedia"
	SourceAI           Source = "ai"
	SourceAutocomplete Source = "autocomplete"
)

// dispatched lists the sources a submission fans out to, in dispatch order.
var dispatched = []Source{SourceSearch, SourceEncyclopedia, SourceAI}

// State is the lifecycle state of one source within a submission.
type State int

const (
	// StateIdle means the source has not been considered yet.
	StateIdle State = iota
	// StateSkipped means the source was not dispatched for this query.
	StateSkipped
	// StateLoading means a fetch is in flight.
	StateLoading
	// StateLoaded means the fetch succeeded.
	StateLoaded
	// StateFailed means the fetch failed.
	StateFailed
	// StateDiscarded means the fetch finished after a newer submission and
	// its outcome was dropped.
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSkipped:
		return "skipped"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	case StateDiscarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Settled reports whether the state is final.
func (s State) Settled() bool {
	return s == StateSkipped || s == StateLoaded || s == StateFailed || s == StateDiscarded
}
