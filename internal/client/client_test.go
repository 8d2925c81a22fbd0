package client

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
	"github.com/home-assistant-blueprints/ha-history-go/internal/testfixtures"
	"github.com/home-assistant-blueprints/ha-history-go/internal/types"
)

// dialServer connects to a test server and returns a Client.
func dialServer(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	conn := testfixtures.DialServer(t, server)
	return New(conn)
}

func TestNew(t *testing.T) {
	server := testfixtures.TestServer(t, func(_ *websocket.Conn) {
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	client := dialServer(t, server)
	defer client.Close()

	assert.NotNil(t, client.conn)
	assert.NotNil(t, client.pending)
	assert.NotNil(t, client.done)
}

func TestClient_NextID_Concurrent(t *testing.T) {
	server := testfixtures.TestServer(t, func(_ *websocket.Conn) {
		time.Sleep(200 * time.Millisecond)
	})
	defer server.Close()

	client := dialServer(t, server)
	defer client.Close()

	var wg sync.WaitGroup
	ids := make(chan int, 100)

	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- client.NextID()
		}()
	}

	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate ID: %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 100)
}

func TestClient_SendMessage_WithData(t *testing.T) {
	received := make(chan map[string]any, 1)
	server := testfixtures.TestServer(t, func(conn *websocket.Conn) {
		req := testfixtures.ReadRequest(t, conn)
		received <- req
		_ = conn.WriteJSON(testfixtures.NewSuccessMessage(testfixtures.GetRequestID(req), map[string]any{"ok": true}))
		time.Sleep(100 * time.Millisecond)
	})
	defer server.Close()

	client := dialServer(t, server)
	defer client.Close()

	resp, err := client.SendMessage(context.Background(), "history/history_during_period", map[string]any{
		"entity_ids":       []string{"sensor.temperature"},
		"minimal_response": true,
	})
	require.NoError(t, err)
	require.NotNil(t, resp)

	req := <-received
	assert.Equal(t, "history/history_during_period", req["type"])
	assert.Equal(t, true, req["minimal_response"])
	assert.Equal(t, []any{"sensor.temperature"}, req["entity_ids"])
}

func TestClient_SendMessage_Error(t *testing.T) {
	tests := []struct {
		name    string
		handler testfixtures.WSHandler
		code    string
		message string
	}{
		{
			name:    "with details",
			handler: testfixtures.ErrorHandler("not_found", "Entity not found"),
			code:    "not_found",
			message: "Entity not found",
		},
		{
			name: "without details",
			handler: func(conn *websocket.Conn) {
				req := testfixtures.ReadRequest(t, conn)
				_ = conn.WriteJSON(testfixtures.HAMessage{
					ID:      testfixtures.GetRequestID(req),
					Type:    "result",
					Success: testfixtures.BoolPtr(false),
				})
				time.Sleep(100 * time.Millisecond)
			},
			message: "unknown error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := testfixtures.TestServer(t, tt.handler)
			defer server.Close()

			client := dialServer(t, server)
			defer client.Close()

			resp, err := client.SendMessage(context.Background(), "get_states", nil)
			assert.Nil(t, resp)
			require.Error(t, err)

			assert.True(t, errors.IsAPI(err))
			var apiErr *errors.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, tt.code, apiErr.Details["ha_code"])
		})
	}
}

func TestClient_SendMessage_ConnectionClosed(t *testing.T) {
	server := testfixtures.TestServer(t, testfixtures.ReadThenCloseHandler())
	defer server.Close()

	client := dialServer(t, server)
	defer client.Close()

	resp, err := client.SendMessage(context.Background(), "ping", nil)
	assert.Nil(t, resp)
	require.Error(t, err)
}

func TestClient_SendMessage_ContextCanceled(t *testing.T) {
	server := testfixtures.TestServer(t, testfixtures.DelayHandler(500*time.Millisecond))
	defer server.Close()

	client := dialServer(t, server)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.SendMessage(ctx, "history/history_during_period", nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeRequestCanceled, errors.GetCode(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSendMessageTyped(t *testing.T) {
	server := testfixtures.TestServer(t, testfixtures.SuccessHandler(testfixtures.NewHAConfig("°C")))
	defer server.Close()

	client := dialServer(t, server)
	defer client.Close()

	cfg, err := SendMessageTyped[types.HAConfig](context.Background(), client, "get_config", nil)
	require.NoError(t, err)
	assert.Equal(t, "°C", cfg.TemperatureUnit())
	assert.Equal(t, "Test Home", cfg.LocationName)
}

func TestClient_Config(t *testing.T) {
	server := testfixtures.TestServer(t, testfixtures.RouterHandler(map[string]testfixtures.RouteFunc{
		"get_config": func(map[string]any) (any, *testfixtures.HAError) {
			return testfixtures.NewHAConfig("°F"), nil
		},
	}))
	defer server.Close()

	client := dialServer(t, server)
	defer client.Close()

	cfg, err := client.Config(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "°F", cfg.TemperatureUnit())

	require.NoError(t, client.Ping(context.Background()))
}

func TestDecode(t *testing.T) {
	t.Parallel()

	got, err := Decode[map[string][]types.HistoryState](&types.HAMessage{
		Result: map[string]any{
			"sensor.x": []any{map[string]any{"s": "1", "lc": 1718445600.0}},
		},
	})
	require.NoError(t, err)
	require.Len(t, got["sensor.x"], 1)
	assert.Equal(t, "1", got["sensor.x"][0].GetState())

	_, err = Decode[[]string](&types.HAMessage{Result: map[string]any{"a": 1}})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidJSON, errors.GetCode(err))

	empty, err := Decode[[]string](nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestDial(t *testing.T) {
	const token = "test-token"

	server := testfixtures.TestServer(t, testfixtures.AuthFlowHandler(t, token, testfixtures.SuccessHandler(nil)))
	defer server.Close()

	t.Run("authenticates", func(t *testing.T) {
		client, err := Dial(context.Background(), testfixtures.WSURL(server), token, time.Second)
		require.NoError(t, err)
		defer client.Close()

		_, err = client.SendMessage(context.Background(), "ping", nil)
		require.NoError(t, err)
	})

	t.Run("invalid token", func(t *testing.T) {
		_, err := Dial(context.Background(), testfixtures.WSURL(server), "wrong", time.Second)
		require.Error(t, err)
		assert.True(t, errors.IsAuth(err))
		assert.Contains(t, err.Error(), "Invalid access token")
	})

	t.Run("unreachable", func(t *testing.T) {
		_, err := Dial(context.Background(), "ws://127.0.0.1:1/api/websocket", token, time.Second)
		require.Error(t, err)
		assert.True(t, errors.IsNetwork(err))
	})
}
