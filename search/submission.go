package search

import (
	"context"
	"sync"

	"github.com/poiesic/tekir/bang"
	"github.com/poiesic/tekir/core"
)

// outcome is what one source produced.
type outcome struct {
	source  Source
	results []core.SearchResult
	summary *core.Summary
	answer  string
	err     error
}

// Submission tracks one submitted query across its sources.
type Submission struct {
	generation uint64
	query      core.Query
	options    Options
	redirect   *bang.Redirect

	wg   sync.WaitGroup
	done chan struct{}

	mu      sync.Mutex
	states  map[Source]State
	errs    map[Source]error
	results []core.SearchResult
	summary *core.Summary
	answer  string
}

func newSubmission(gen uint64, query core.Query, opts Options) *Submission {
	return &Submission{
		generation: gen,
		query:      query,
		options:    opts,
		done:       make(chan struct{}),
		states:     make(map[Source]State, len(dispatched)),
		errs:       make(map[Source]error),
	}
}

// Generation returns the submission's generation.
func (s *Submission) Generation() uint64 {
	return s.generation
}

// Query returns the submitted query. BangTarget is set when redirected.
func (s *Submission) Query() core.Query {
	return s.query
}

// Options returns the options read when the query was submitted.
func (s *Submission) Options() Options {
	return s.options
}

// Redirect returns the bang redirect, if the query was redirected.
func (s *Submission) Redirect() (bang.Redirect, bool) {
	if s.redirect == nil {
		return bang.Redirect{}, false
	}
	return *s.redirect, true
}

// Redirected reports whether the query resolved to a bang target.
func (s *Submission) Redirected() bool {
	return s.redirect != nil
}

// Done is closed once every dispatched source has settled.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until every dispatched source settles or ctx is done.
func (s *Submission) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the state of src.
func (s *Submission) State(src Source) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[src]
}

// Err returns the failure of src, if any.
func (s *Submission) Err(src Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs[src]
}

// Results returns the search results.
func (s *Submission) Results() []core.SearchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

// Summary returns the encyclopedia summary, or nil.
func (s *Submission) Summary() *core.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// Answer returns the AI answer.
func (s *Submission) Answer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answer
}

func (s *Submission) setState(src Source, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[src] = state
}

func (s *Submission) fail(src Source, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[src] = StateFailed
	s.errs[src] = err
}

func (s *Submission) load(out outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[out.source] = StateLoaded
	switch out.source {
	case SourceSearch:
		s.results = out.results
	case SourceEncyclopedia:
		s.summary = out.summary
	case SourceAI:
		s.answer = out.answer
	}
}

// View is the latest accepted state of every source across submissions.
// A failed source keeps the content of its last successful fetch.
type View struct {
	Generation uint64
	Query      string
	States     map[Source]State
	Errors     map[Source]error
	Results    []core.SearchResult
	Summary    *core.Summary
	Answer     string
}

func (v View) clone() View {
	c := v
	c.States = make(map[Source]State, len(v.States))
	for k, s := range v.States {
		c.States[k] = s
	}
	c.Errors = make(map[Source]error, len(v.Errors))
	for k, e := range v.Errors {
		c.Errors[k] = e
	}
	return c
}

func (o *Orchestrator) resetView(gen uint64, query core.Query) {
	o.viewMu.Lock()
	defer o.viewMu.Unlock()
	o.view.Generation = gen
	o.view.Query = query.Trimmed()
	o.view.States = map[Source]State{}
	o.view.Errors = map[Source]error{}
	for _, src := range dispatched {
		o.view.States[src] = StateLoading
	}
}

// current reports whether gen still owns the view. Callers hold viewMu.
func (o *Orchestrator) current(gen uint64) bool {
	return o.view.Generation == gen && o.generation.Load() == gen
}

func (o *Orchestrator) recordSkip(gen uint64, src Source) {
	o.viewMu.Lock()
	defer o.viewMu.Unlock()
	if o.current(gen) {
		o.view.States[src] = StateSkipped
	}
}

func (o *Orchestrator) recordFailure(gen uint64, src Source, err error) {
	o.viewMu.Lock()
	defer o.viewMu.Unlock()
	if o.current(gen) {
		o.view.States[src] = StateFailed
		o.view.Errors[src] = err
	}
}

func (o *Orchestrator) recordOutcome(gen uint64, out outcome) {
	o.viewMu.Lock()
	defer o.viewMu.Unlock()
	if !o.current(gen) {
		return
	}
	o.view.States[out.source] = StateLoaded
	delete(o.view.Errors, out.source)
	switch out.source {
	case SourceSearch:
		o.view.Results = out.results
	case SourceEncyclopedia:
		o.view.Summary = out.summary
	case SourceAI:
		o.view.Answer = out.answer
	}
}
