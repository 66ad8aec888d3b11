/*
Package aggregate fetches every configured source concurrently with a bounded
worker count and merges the results. A source that errors, panics or exceeds
its timeout contributes no items and never affects its siblings.
*/
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shanehull/finbrief/internal/faults"
	"github.com/shanehull/finbrief/internal/logging"
	"github.com/shanehull/finbrief/internal/sources"
	"github.com/shanehull/finbrief/internal/types"
)

const (
	defaultMaxWorkers   = 3
	defaultFetchTimeout = 15 * time.Second
)

// Report describes the outcome of one source fetch.
type Report struct {
	Source   string
	Items    int
	Err      error
	Duration time.Duration
}

type Aggregator struct {
	sources      []sources.Source
	maxWorkers   int
	fetchTimeout time.Duration
	logger       *slog.Logger
}

type Option func(*Aggregator)

func WithMaxWorkers(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxWorkers = n
		}
	}
}

func WithFetchTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.fetchTimeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = l
	}
}

func New(srcs []sources.Source, opts ...Option) *Aggregator {
	a := &Aggregator{
		sources:      srcs,
		maxWorkers:   defaultMaxWorkers,
		fetchTimeout: defaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.OrDiscard(a.logger).With("component", "aggregate")
	return a
}

type result struct {
	items []types.RawItem
	err   error
}

// Run fetches all sources and returns their items concatenated in source
// order, together with one Report per source. It returns once every fetch
// has completed or been abandoned.
func (a *Aggregator) Run(ctx context.Context) ([]types.RawItem, []Report) {
	reports := make([]Report, len(a.sources))
	slots := make([][]types.RawItem, len(a.sources))

	sem := make(chan struct{}, a.maxWorkers)
	var wg sync.WaitGroup

	for i, src := range a.sources {
		wg.Add(1)
		go func(i int, src sources.Source) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				reports[i] = Report{Source: src.Name(), Err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			start := time.Now()
			items, err := a.fetch(ctx, src)
			slots[i] = items
			reports[i] = Report{Source: src.Name(), Items: len(items), Err: err, Duration: time.Since(start)}
		}(i, src)
	}
	wg.Wait()

	var total int
	for _, s := range slots {
		total += len(s)
	}
	merged := make([]types.RawItem, 0, total)
	for i, s := range slots {
		merged = append(merged, s...)

		r := reports[i]
		switch {
		case r.Err == nil:
			a.logger.Info("source fetched", "source", r.Source, "items", r.Items, "duration", r.Duration)
		case faults.Disabled(r.Err):
			a.logger.Warn("source disabled", "source", r.Source, "error", r.Err)
		case faults.Timeout(r.Err):
			a.logger.Warn("source timed out", "source", r.Source, "timeout", a.fetchTimeout, "error", r.Err)
		default:
			a.logger.Error("source failed", "source", r.Source, "error", r.Err, "duration", r.Duration)
		}
	}

	a.logger.Info("aggregation complete", "sources", len(a.sources), "items", len(merged))
	return merged, reports
}

// fetch runs one source under its own deadline. When the deadline passes the
// goroutine is abandoned and whatever it returns later is discarded.
func (a *Aggregator) fetch(parent context.Context, src sources.Source) ([]types.RawItem, error) {
	ctx, cancel := context.WithTimeout(parent, a.fetchTimeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: faults.Wrap(faults.ErrSource, "aggregate", src.Name(), fmt.Sprintf("panic: %v", r), nil)}
			}
		}()
		items, err := src.Fetch(ctx)
		done <- result{items: items, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		return res.items, nil
	case <-ctx.Done():
		return nil, faults.Wrap(faults.ErrTimeout, "aggregate", src.Name(), fmt.Sprintf("no response within %s", a.fetchTimeout), ctx.Err())
	}
}
