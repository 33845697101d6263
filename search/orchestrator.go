package search

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/tekir/bang"
	"github.com/poiesic/tekir/core"
)

const (
	// DefaultDebounce is the autocomplete delay after the last keystroke.
	DefaultDebounce = 200 * time.Millisecond

	// releaseTimeout bounds how long Close waits for in-flight fetches.
	releaseTimeout = 5 * time.Second
)

// Orchestrator routes queries: bang commands redirect, everything else fans
// out to the search, encyclopedia and AI sources concurrently.
//
// Every Submit takes a new generation. An outcome that lands after a newer
// Submit is discarded, so a slow response never overwrites a newer one.
type Orchestrator struct {
	resolver  *bang.Resolver
	sources   Sources
	prefs     Preferences
	navigator Navigator
	pool      *ants.Pool
	logger    *slog.Logger

	generation atomic.Uint64
	inflight   sync.WaitGroup
	closed     atomic.Bool

	viewMu sync.Mutex
	view   View

	debounce time.Duration
	keyMu    sync.Mutex
	keyTimer *time.Timer
	keySeq   atomic.Uint64
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithPoolSize sets the worker pool size for concurrent fetches.
// Default is runtime.NumCPU(), with a minimum of 3 so one submission never
// queues behind itself.
func WithPoolSize(size int) Option {
	return func(o *Orchestrator) error {
		if size < 1 {
			size = 1
		}
		if o.pool != nil {
			o.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		o.pool = pool
		return nil
	}
}

// WithNavigator sets where bang redirects go.
// Default logs the target.
func WithNavigator(n Navigator) Option {
	return func(o *Orchestrator) error {
		o.navigator = n
		return nil
	}
}

// WithResolver replaces the bang resolver.
func WithResolver(r *bang.Resolver) Option {
	return func(o *Orchestrator) error {
		o.resolver = r
		return nil
	}
}

// WithDebounce sets the autocomplete delay.
func WithDebounce(d time.Duration) Option {
	return func(o *Orchestrator) error {
		if d < 0 {
			d = 0
		}
		o.debounce = d
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// New creates an Orchestrator. Call Close to release the worker pool.
func New(sources Sources, prefs Preferences, opts ...Option) (*Orchestrator, error) {
	if sources.Search == nil {
		return nil, ErrSearchSourceRequired
	}
	if sources.Encyclopedia == nil {
		return nil, ErrEncyclopediaSourceRequired
	}
	if sources.Autocomplete == nil {
		return nil, ErrAutocompleteSourceRequired
	}
	if sources.Answerer == nil {
		return nil, ErrAnswererRequired
	}
	if prefs == nil {
		return nil, ErrPreferencesRequired
	}

	poolSize := runtime.NumCPU()
	if poolSize < 3 {
		poolSize = 3
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		resolver: bang.NewResolver(),
		sources:  sources,
		prefs:    prefs,
		pool:     pool,
		logger:   slog.Default().With("component", "orchestrator"),
		debounce: DefaultDebounce,
	}

	for _, opt := range opts {
		if optErr := opt(o); optErr != nil {
			o.pool.Release()
			return nil, optErr
		}
	}
	if o.navigator == nil {
		o.navigator = logNavigator{logger: o.logger}
	}

	return o, nil
}

// Close stops pending autocomplete timers and waits for in-flight work.
func (o *Orchestrator) Close() error {
	if o.closed.Swap(true) {
		return nil
	}
	o.keyMu.Lock()
	if o.keyTimer != nil && o.keyTimer.Stop() {
		o.inflight.Done()
	}
	o.keySeq.Add(1)
	o.keyMu.Unlock()

	o.inflight.Wait()
	return o.pool.ReleaseTimeout(releaseTimeout)
}

// Generation returns the generation of the latest submission.
func (o *Orchestrator) Generation() uint64 {
	return o.generation.Load()
}

// View returns the latest accepted outcome of every source.
func (o *Orchestrator) View() View {
	o.viewMu.Lock()
	defer o.viewMu.Unlock()
	return o.view.clone()
}

// Submit runs a query. A recognized bang calls the Navigator and returns a
// settled Submission in the redirected state without touching any source.
// Otherwise the sources are dispatched and Submit returns immediately; use
// Submission.Wait to block until they settle.
func (o *Orchestrator) Submit(ctx context.Context, raw string, monitor Monitor) (*Submission, error) {
	if o.closed.Load() {
		return nil, ErrClosed
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	query := core.Query{Raw: raw}
	if query.Trimmed() == "" {
		return nil, ErrEmptyQuery
	}

	gen := o.generation.Add(1)
	monitor.Start(raw, gen)

	if redirect, ok := o.resolver.Resolve(raw); ok {
		query.BangTarget = redirect.Target
		sub := newSubmission(gen, query, Options{})
		sub.redirect = &redirect
		for _, src := range dispatched {
			sub.states[src] = StateSkipped
		}
		close(sub.done)

		o.logger.Debug("bang redirect", "token", redirect.Token, "target", redirect.Target)
		monitor.Redirected(redirect)
		if err := o.navigator.Navigate(ctx, redirect.Target); err != nil {
			return sub, err
		}
		return sub, nil
	}

	opts, err := o.readOptions(ctx)
	if err != nil {
		return nil, err
	}

	sub := newSubmission(gen, query, opts)
	o.resetView(gen, query)

	tasks := make([]func(context.Context) outcome, 0, len(dispatched))
	for _, src := range dispatched {
		task := o.task(src, query, opts)
		if task == nil {
			sub.setState(src, StateSkipped)
			o.recordSkip(gen, src)
			monitor.SourceSkipped(src)
			continue
		}
		sub.setState(src, StateLoading)
		monitor.SourceLoading(src)
		tasks = append(tasks, task)
	}

	sub.wg.Add(len(tasks))
	o.inflight.Add(len(tasks))
	for i, task := range tasks {
		task := task
		err := o.pool.Submit(func() {
			defer o.inflight.Done()
			defer sub.wg.Done()
			o.settle(sub, task(ctx), monitor)
		})
		if err != nil {
			// The pool refused this task and the ones after it.
			for range tasks[i:] {
				o.inflight.Done()
				sub.wg.Done()
			}
			o.failPending(sub, err, monitor)
			break
		}
	}

	o.inflight.Add(1)
	go func() {
		defer o.inflight.Done()
		sub.wg.Wait()
		close(sub.done)
		if o.generation.Load() == gen {
			monitor.Finish(gen)
		}
	}()

	return sub, nil
}

// task returns the fetch for src, or nil when src is skipped for query.
func (o *Orchestrator) task(src Source, query core.Query, opts Options) func(context.Context) outcome {
	text := query.Trimmed()
	switch src {
	case SourceSearch:
		return func(ctx context.Context) outcome {
			results, err := o.sources.Search.Fetch(ctx, text, opts.Engine)
			return outcome{source: src, results: results, err: err}
		}
	case SourceEncyclopedia:
		if query.HasBang() {
			return nil
		}
		return func(ctx context.Context) outcome {
			summary, err := o.sources.Encyclopedia.Fetch(ctx, text)
			return outcome{source: src, summary: summary, err: err}
		}
	case SourceAI:
		if !opts.AIEnabled {
			return nil
		}
		return func(ctx context.Context) outcome {
			answer, err := o.sources.Answerer.Answer(ctx, text, opts.Model)
			return outcome{source: src, answer: answer, err: err}
		}
	}
	return nil
}

// settle records an outcome unless a newer submission has started.
func (o *Orchestrator) settle(sub *Submission, out outcome, monitor Monitor) {
	if o.generation.Load() != sub.generation {
		o.logger.Debug("discarding stale outcome",
			"source", out.source,
			"generation", sub.generation,
			"current", o.generation.Load())
		sub.setState(out.source, StateDiscarded)
		return
	}

	if out.err != nil {
		o.logger.Warn("source failed", "source", out.source, "error", out.err)
		sub.fail(out.source, out.err)
		o.recordFailure(sub.generation, out.source, out.err)
		monitor.SourceFailed(out.source, out.err)
		return
	}

	sub.load(out)
	o.recordOutcome(sub.generation, out)
	switch out.source {
	case SourceSearch:
		monitor.SearchLoaded(out.results)
	case SourceEncyclopedia:
		monitor.EncyclopediaLoaded(out.summary)
	case SourceAI:
		monitor.AnswerLoaded(out.answer)
	}
}

// failPending marks every still-loading source failed with err.
func (o *Orchestrator) failPending(sub *Submission, err error, monitor Monitor) {
	for _, src := range dispatched {
		if sub.State(src) == StateLoading {
			sub.fail(src, err)
			o.recordFailure(sub.generation, src, err)
			monitor.SourceFailed(src, err)
		}
	}
}
