// Package fetch builds Home Assistant history requests, runs them over the
// WebSocket or REST API, and feeds the responses to the history processor.
package fetch

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
)

// DefaultWindow is the history span used when a query has no start time.
const DefaultWindow = 24 * time.Hour

// isoFormat renders timestamps the way the frontend does: UTC with milliseconds.
const isoFormat = "2006-01-02T15:04:05.000Z07:00"

// Query describes one history request.
type Query struct {
	EntityIDs []string
	// Start and End bound the period. A zero Start means DefaultWindow
	// before End; a zero End means now.
	Start time.Time
	End   time.Time
	// SkipInitialState drops the synthetic record describing the state at Start.
	SkipInitialState bool
	// SignificantChangesOnly is sent only when set.
	SignificantChangesOnly *bool
	// MinimalResponse limits full records to the first and last of each entity.
	MinimalResponse bool
	NoAttributes    bool
}

// RecentQuery builds the query used for recent history of one or more
// entities. Start and end may be zero.
func RecentQuery(entityIDs []string, start, end time.Time) Query {
	return Query{
		EntityIDs:       entityIDs,
		Start:           start,
		End:             end,
		MinimalResponse: true,
	}
}

// DateQuery builds the query used for a fixed date range. Significant
// changes only is on by default.
func DateQuery(start, end time.Time, entityIDs []string) Query {
	return Query{
		EntityIDs:              entityIDs,
		Start:                  start,
		End:                    end,
		SignificantChangesOnly: lo.ToPtr(true),
		MinimalResponse:        true,
	}
}

// Validate reports a missing entity list or an inverted period.
func (q Query) Validate() error {
	ids := lo.Compact(q.EntityIDs)
	if len(ids) == 0 {
		return errors.ErrMissingArgument("entity_id")
	}
	if !q.Start.IsZero() && !q.End.IsZero() && q.End.Before(q.Start) {
		return errors.ErrInvalidArgument("end time is before start time")
	}
	return nil
}

// WithDefaults fills a zero Start and End relative to now.
func (q Query) WithDefaults(now time.Time) Query {
	if q.End.IsZero() {
		q.End = now
	}
	if q.Start.IsZero() {
		q.Start = q.End.Add(-DefaultWindow)
	}
	return q
}

// RESTPath returns the path and query of the REST history endpoint, relative
// to the API root: history/period[/<start>]?filter_entity_id=...
func (q Query) RESTPath() string {
	var b strings.Builder
	b.WriteString("history/period")
	if !q.Start.IsZero() {
		b.WriteString("/")
		b.WriteString(formatTime(q.Start))
	}

	var params []string
	if ids := lo.Compact(q.EntityIDs); len(ids) > 0 {
		params = append(params, "filter_entity_id="+strings.Join(ids, ","))
	}
	if !q.End.IsZero() {
		params = append(params, "end_time="+formatTime(q.End))
	}
	if q.SkipInitialState {
		params = append(params, "skip_initial_state")
	}
	if q.SignificantChangesOnly != nil {
		params = append(params, "significant_changes_only="+boolDigit(*q.SignificantChangesOnly))
	}
	if q.MinimalResponse {
		params = append(params, "minimal_response")
	}
	if q.NoAttributes {
		params = append(params, "no_attributes")
	}

	if len(params) > 0 {
		b.WriteString("?")
		b.WriteString(strings.Join(params, "&"))
	}
	return b.String()
}

// WSParams returns the fields of a history/history_during_period message.
// Call WithDefaults first; the WebSocket API requires a start time.
func (q Query) WSParams() map[string]any {
	params := map[string]any{
		"entity_ids":       lo.Compact(q.EntityIDs),
		"start_time":       formatTime(q.Start),
		"minimal_response": q.MinimalResponse,
		"no_attributes":    q.NoAttributes,
	}
	if !q.End.IsZero() {
		params["end_time"] = formatTime(q.End)
	}
	if q.SkipInitialState {
		params["include_start_time_state"] = false
	}
	if q.SignificantChangesOnly != nil {
		params["significant_changes_only"] = *q.SignificantChangesOnly
	}
	return params
}

// Statistic periods accepted by the recorder.
var statisticPeriods = []string{"5minute", "hour", "day", "week", "month"}

// StatisticsQuery describes one long-term statistics request.
type StatisticsQuery struct {
	StatisticIDs []string
	Start        time.Time
	End          time.Time
	Period       string
}

// Validate reports a missing statistic list, an unknown period or a zero start.
func (q StatisticsQuery) Validate() error {
	if len(lo.Compact(q.StatisticIDs)) == 0 {
		return errors.ErrMissingArgument("statistic_id")
	}
	if q.Start.IsZero() {
		return errors.ErrInvalidArgument("statistics require a start time")
	}
	if q.Period != "" && !lo.Contains(statisticPeriods, q.Period) {
		return errors.ErrInvalidArgument("unknown statistics period: " + q.Period).
			WithDetails(map[string]any{"valid": statisticPeriods})
	}
	return nil
}

// WSParams returns the fields of a recorder/statistics_during_period message.
func (q StatisticsQuery) WSParams() map[string]any {
	period := q.Period
	if period == "" {
		period = "hour"
	}
	params := map[string]any{
		"statistic_ids": lo.Compact(q.StatisticIDs),
		"start_time":    formatTime(q.Start),
		"period":        period,
	}
	if !q.End.IsZero() {
		params["end_time"] = formatTime(q.End)
	}
	return params
}

func formatTime(t time.Time) string {
	return t.UTC().Format(isoFormat)
}

func boolDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
