package search

import (
	"github.com/poiesic/tekir/bang"
	"github.com/poiesic/tekir/core"
)

// Monitor provides hooks to observe a submission as sources land.
// Callbacks for different sources run on different goroutines, so
// implementations must be safe for concurrent use. Outcomes of superseded
// submissions are never reported.
type Monitor interface {
	Start(query string, generation uint64)
	Redirected(redirect bang.Redirect)
	SourceLoading(source Source)
	SourceSkipped(source Source)
	SearchLoaded(results []core.SearchResult)
	EncyclopediaLoaded(summary *core.Summary)
	AnswerLoaded(answer string)
	SuggestionsLoaded(partial string, suggestions []core.Suggestion)
	SourceFailed(source Source, err error)
	Finish(generation uint64)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ uint64)                        {}
func (n *noopMonitor) Redirected(_ bang.Redirect)                      {}
func (n *noopMonitor) SourceLoading(_ Source)                          {}
func (n *noopMonitor) SourceSkipped(_ Source)                          {}
func (n *noopMonitor) SearchLoaded(_ []core.SearchResult)              {}
func (n *noopMonitor) EncyclopediaLoaded(_ *core.Summary)              {}
func (n *noopMonitor) AnswerLoaded(_ string)                           {}
func (n *noopMonitor) SuggestionsLoaded(_ string, _ []core.Suggestion) {}
func (n *noopMonitor) SourceFailed(_ Source, _ error)                  {}
func (n *noopMonitor) Finish(_ uint64)                                 {}
