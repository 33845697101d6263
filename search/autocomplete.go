package search

import (
	"context"
	"time"

	"github.com/poiesic/tekir/core"
)

// Keystroke schedules an autocomplete fetch for input after the debounce
// delay. A later Keystroke before the delay elapses cancels this one, and
// suggestions that land after a newer keystroke are dropped.
func (o *Orchestrator) Keystroke(ctx context.Context, input string, monitor Monitor) {
	if o.closed.Load() {
		return
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	o.keyMu.Lock()
	defer o.keyMu.Unlock()

	if o.keyTimer != nil && o.keyTimer.Stop() {
		o.inflight.Done()
	}
	seq := o.keySeq.Add(1)
	o.inflight.Add(1)
	o.keyTimer = time.AfterFunc(o.debounce, func() {
		defer o.inflight.Done()
		o.suggest(ctx, seq, input, monitor)
	})
}

func (o *Orchestrator) suggest(ctx context.Context, seq uint64, input string, monitor Monitor) {
	if o.keySeq.Load() != seq {
		return
	}

	suggestions, err := o.Suggest(ctx, input)

	if o.keySeq.Load() != seq {
		o.logger.Debug("discarding stale suggestions", "input", input)
		return
	}
	if err != nil {
		o.logger.Warn("autocomplete failed", "error", err)
		monitor.SourceFailed(SourceAutocomplete, err)
		return
	}
	monitor.SuggestionsLoaded(input, suggestions)
}

// Suggest fetches suggestions for input immediately, using the provider
// from preferences.
func (o *Orchestrator) Suggest(ctx context.Context, input string) ([]core.Suggestion, error) {
	provider, err := o.prefs.AutocompleteSource(ctx)
	if err != nil {
		return nil, err
	}
	return o.sources.Autocomplete.Fetch(ctx, input, provider)
}

// Debounce returns the autocomplete delay.
func (o *Orchestrator) Debounce() time.Duration {
	return o.debounce
}
