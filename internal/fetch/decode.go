package fetch

import (
	"bytes"
	"encoding/json"

	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
	"github.com/home-assistant-blueprints/ha-history-go/internal/history"
	"github.com/home-assistant-blueprints/ha-history-go/internal/types"
)

// DecodeHistory parses a saved history response. It accepts the REST shape,
// an array of per-entity arrays, and the WebSocket shape, an object of
// compact records keyed by entity id.
func DecodeHistory(data []byte) (history.RawHistory, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return history.RawHistory{}, nil
	}

	if trimmed[0] == '{' {
		var byEntity map[string][]types.HistoryState
		if err := json.Unmarshal(trimmed, &byEntity); err != nil {
			return nil, errors.ErrInvalidJSON(err)
		}
		return orderByRequest(nil, byEntity), nil
	}

	var raw history.RawHistory
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, errors.ErrInvalidJSON(err)
	}
	return raw, nil
}
