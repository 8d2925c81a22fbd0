package fetch

import (
	"context"
	"sync/atomic"

	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
	"github.com/home-assistant-blueprints/ha-history-go/internal/history"
	"github.com/home-assistant-blueprints/ha-history-go/internal/logging"
)

// Fetcher runs fetches for one consumer. While a fetch is in flight, further
// calls return ErrFetchInProgress at once instead of queueing.
type Fetcher struct {
	source   HistorySource
	config   history.Config
	localize history.LocalizeFunc
	fetching atomic.Bool
}

// NewFetcher creates a fetcher that shapes history with cfg and localize.
func NewFetcher(source HistorySource, cfg history.Config, localize history.LocalizeFunc) *Fetcher {
	return &Fetcher{
		source:   source,
		config:   cfg,
		localize: localize,
	}
}

func (f *Fetcher) acquire() error {
	if !f.fetching.CompareAndSwap(false, true) {
		logging.Debug().Msg("fetch dropped, another one is in progress")
		return errors.ErrFetchInProgress()
	}
	return nil
}

func (f *Fetcher) release() {
	f.fetching.Store(false)
}

// Fetching reports whether a fetch is in flight.
func (f *Fetcher) Fetching() bool {
	return f.fetching.Load()
}

// History fetches raw history and shapes it.
func (f *Fetcher) History(ctx context.Context, q Query) (history.Result, error) {
	if err := f.acquire(); err != nil {
		return history.Result{}, err
	}
	defer f.release()

	raw, err := f.source.History(ctx, q)
	if err != nil {
		return history.Result{}, err
	}
	return history.ComputeHistory(f.config, raw, f.localize), nil
}

// Statistics fetches long-term statistics when the source supports them.
func (f *Fetcher) Statistics(ctx context.Context, q StatisticsQuery) (Statistics, error) {
	src, ok := f.source.(StatisticsSource)
	if !ok {
		return nil, errors.ErrInvalidArgument("statistics are only available over the WebSocket API")
	}
	if err := f.acquire(); err != nil {
		return nil, err
	}
	defer f.release()

	return src.Statistics(ctx, q)
}
