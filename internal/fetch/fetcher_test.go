package fetch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
	"github.com/home-assistant-blueprints/ha-history-go/internal/history"
)

// blockingSource holds every History call until release is closed.
type blockingSource struct {
	entered chan struct{}
	release chan struct{}
	raw     history.RawHistory
}

func newBlockingSource(raw history.RawHistory) *blockingSource {
	return &blockingSource{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
		raw:     raw,
	}
}

func (s *blockingSource) History(ctx context.Context, _ Query) (history.RawHistory, error) {
	s.entered <- struct{}{}
	select {
	case <-s.release:
		return s.raw, nil
	case <-ctx.Done():
		return nil, errors.ErrRequestCanceled(ctx.Err())
	}
}

// staticSource answers with fixed history and statistics.
type staticSource struct {
	raw   history.RawHistory
	stats Statistics
	err   error
}

func (s staticSource) History(context.Context, Query) (history.RawHistory, error) {
	return s.raw, s.err
}

func (s staticSource) Statistics(context.Context, StatisticsQuery) (Statistics, error) {
	return s.stats, s.err
}

// historyOnly hides the Statistics method of its source.
type historyOnly struct{ HistorySource }

func TestFetcher_RejectsOverlappingFetch(t *testing.T) {
	t.Parallel()

	raw := history.RawHistory{{
		{EntityID: "light.hall", State: "on", LastChanged: start},
	}}
	src := newBlockingSource(raw)
	f := NewFetcher(src, history.Config{}, nil)
	q := RecentQuery([]string{"light.hall"}, start, end)

	type outcome struct {
		result history.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := f.History(context.Background(), q)
		done <- outcome{result, err}
	}()

	<-src.entered
	assert.True(t, f.Fetching())

	_, err := f.History(context.Background(), q)
	require.Error(t, err)
	assert.True(t, errors.IsBusy(err))

	_, err = f.Statistics(context.Background(), StatisticsQuery{StatisticIDs: []string{"x"}, Start: start})
	require.Error(t, err)

	close(src.release)
	first := <-done
	require.NoError(t, first.err)
	require.Len(t, first.result.Timeline, 1)
	assert.Equal(t, "light.hall", first.result.Timeline[0].EntityID)
	assert.False(t, f.Fetching())

	// The guard is released, so a new fetch goes through.
	second := make(chan error, 1)
	go func() {
		_, err := f.History(context.Background(), q)
		second <- err
	}()
	<-src.entered
	require.NoError(t, <-second)
}

func TestFetcher_History_PropagatesSourceError(t *testing.T) {
	t.Parallel()

	f := NewFetcher(staticSource{err: errors.ErrConnectionClosed(nil)}, history.Config{}, nil)

	result, err := f.History(context.Background(), RecentQuery([]string{"sensor.temp"}, start, end))
	require.Error(t, err)
	assert.True(t, errors.IsNetwork(err))
	assert.True(t, result.IsEmpty())
	assert.False(t, f.Fetching())
}

func TestFetcher_History_EmptyResponse(t *testing.T) {
	t.Parallel()

	f := NewFetcher(staticSource{raw: history.RawHistory{}}, history.Config{}, nil)

	result, err := f.History(context.Background(), RecentQuery([]string{"sensor.temp"}, start, end))
	require.NoError(t, err)
	assert.True(t, result.IsEmpty())
	assert.NotNil(t, result.Line)
	assert.NotNil(t, result.Timeline)
}

func TestFetcher_Statistics(t *testing.T) {
	t.Parallel()

	stats := Statistics{"sensor.energy": nil}
	f := NewFetcher(staticSource{stats: stats}, history.Config{}, nil)

	got, err := f.Statistics(context.Background(), StatisticsQuery{StatisticIDs: []string{"sensor.energy"}, Start: start})
	require.NoError(t, err)
	assert.Equal(t, stats, got)

	restOnly := NewFetcher(historyOnly{staticSource{}}, history.Config{}, nil)
	_, err = restOnly.Statistics(context.Background(), StatisticsQuery{StatisticIDs: []string{"sensor.energy"}, Start: start})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}
