package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
	"github.com/home-assistant-blueprints/ha-history-go/internal/history"
	"github.com/home-assistant-blueprints/ha-history-go/internal/logging"
)

// RESTSource fetches history from the REST API (GET /api/history/period).
type RESTSource struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewRESTSource creates a REST source. baseURL is the API root, for example
// http://homeassistant.local:8123/api. A nil httpClient uses a client with a
// 30 second timeout.
func NewRESTSource(baseURL, token string, httpClient *http.Client) *RESTSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &RESTSource{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// History runs the query against the REST endpoint. The response is already
// an array of per-entity arrays.
func (s *RESTSource) History(ctx context.Context, q Query) (history.RawHistory, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	url := s.baseURL + "/" + q.RESTPath()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.ErrRequestFailed("unable to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)

	logging.Debug().Str("url", url).Msg("requesting history")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.ErrRequestCanceled(ctx.Err())
		}
		return nil, errors.ErrConnectionFailed(err).WithPath(s.baseURL)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, errors.ErrAuthFailed(fmt.Sprintf("got HTTP status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, errors.ErrRequestFailed(fmt.Sprintf("got unexpected HTTP status: %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ErrRequestFailed("unable to read response body", err)
	}

	var raw history.RawHistory
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, errors.ErrInvalidJSON(err)
	}
	return raw, nil
}
