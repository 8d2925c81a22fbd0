package fetch

import (
	"context"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/home-assistant-blueprints/ha-history-go/internal/client"
	"github.com/home-assistant-blueprints/ha-history-go/internal/history"
	"github.com/home-assistant-blueprints/ha-history-go/internal/logging"
	"github.com/home-assistant-blueprints/ha-history-go/internal/types"
)

// HistorySource returns raw history for a query.
type HistorySource interface {
	History(ctx context.Context, q Query) (history.RawHistory, error)
}

// StatisticsSource returns long-term statistics keyed by statistic id.
type StatisticsSource interface {
	Statistics(ctx context.Context, q StatisticsQuery) (Statistics, error)
}

// Statistics maps statistic ids to their entries.
type Statistics map[string][]types.StatEntry

// Sender sends one WebSocket command and waits for its result.
// *client.Client implements it.
type Sender interface {
	SendMessage(ctx context.Context, msgType string, data map[string]any) (*types.HAMessage, error)
}

// WSSource fetches history over the WebSocket API.
type WSSource struct {
	sender Sender
	now    func() time.Time
}

// NewWSSource creates a WebSocket source.
func NewWSSource(sender Sender) *WSSource {
	return &WSSource{sender: sender, now: time.Now}
}

// History sends history/history_during_period and orders the per-entity
// results as requested. Entities missing from the response are omitted.
func (s *WSSource) History(ctx context.Context, q Query) (history.RawHistory, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	q = q.WithDefaults(s.now())

	resp, err := s.sender.SendMessage(ctx, "history/history_during_period", q.WSParams())
	if err != nil {
		return nil, err
	}
	byEntity, err := client.Decode[map[string][]types.HistoryState](resp)
	if err != nil {
		return nil, err
	}

	raw := orderByRequest(q.EntityIDs, byEntity)
	logging.Debug().Int("entities", len(raw)).Msg("history received")
	return raw, nil
}

// orderByRequest lists the requested entities first, in request order,
// followed by any others sorted by id. Entities without records are dropped.
func orderByRequest(entityIDs []string, byEntity map[string][]types.HistoryState) history.RawHistory {
	requested := lo.Uniq(lo.Compact(entityIDs))
	extra := lo.Without(lo.Keys(byEntity), requested...)
	slices.Sort(extra)

	raw := make(history.RawHistory, 0, len(byEntity))
	for _, id := range append(requested, extra...) {
		states := byEntity[id]
		if len(states) == 0 {
			continue
		}
		raw = append(raw, fromCompact(id, states))
	}
	return raw
}

// Statistics sends recorder/statistics_during_period.
func (s *WSSource) Statistics(ctx context.Context, q StatisticsQuery) (Statistics, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.sender.SendMessage(ctx, "recorder/statistics_during_period", q.WSParams())
	if err != nil {
		return nil, err
	}
	return client.Decode[Statistics](resp)
}

// fromCompact converts WebSocket records into observations shaped like a
// minimal REST response: identity on the boundary records and on every
// record that carries attributes.
func fromCompact(entityID string, states []types.HistoryState) history.EntityHistory {
	out := make(history.EntityHistory, len(states))
	last := len(states) - 1
	for i := range states {
		s := &states[i]
		attrs := s.GetAttributes()
		obs := history.Observation{
			State:       s.GetState(),
			Attributes:  attrs,
			LastChanged: s.GetLastChanged(),
			LastUpdated: s.GetLastUpdated(),
		}
		if attrs != nil || i == 0 || i == last {
			obs.EntityID = entityID
		}
		if s.EntityID != "" {
			obs.EntityID = s.EntityID
		}
		out[i] = obs
	}
	return out
}
