package testfixtures

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

// wsUpgrader is used to upgrade HTTP connections to WebSocket.
var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// WSHandler is a function that handles WebSocket connections in tests.
type WSHandler func(*websocket.Conn)

// TestServer creates a test WebSocket server that handles messages.
// The handler function is called with the WebSocket connection.
func TestServer(t *testing.T, handler WSHandler) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("failed to upgrade: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
}

// WSURL returns the ws:// URL of a test server.
func WSURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

// DialServer connects to a test server and returns the WebSocket connection.
func DialServer(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(WSURL(server), nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn
}

// =====================================
// Pre-built WebSocket Handlers
// =====================================

// SuccessHandler returns a handler that responds to any message with success.
func SuccessHandler(result any) WSHandler {
	return func(conn *websocket.Conn) {
		for {
			req, ok := readJSON(conn)
			if !ok {
				return
			}
			if err := conn.WriteJSON(NewSuccessMessage(GetRequestID(req), result)); err != nil {
				return
			}
		}
	}
}

// ErrorHandler returns a handler that responds to the first message with an error.
func ErrorHandler(code, message string) WSHandler {
	return func(conn *websocket.Conn) {
		req, ok := readJSON(conn)
		if !ok {
			return
		}
		if err := conn.WriteJSON(NewErrorMessage(GetRequestID(req), code, message)); err != nil {
			return
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// RouteFunc builds the result for one request. Returning an *HAError sends
// an error response instead.
type RouteFunc func(req map[string]any) (any, *HAError)

// RouterHandler returns a handler that answers each request by its type.
// Ping requests are answered with pong; unknown types get an unknown_command error.
func RouterHandler(routes map[string]RouteFunc) WSHandler {
	return func(conn *websocket.Conn) {
		for {
			req, ok := readJSON(conn)
			if !ok {
				return
			}
			id := GetRequestID(req)
			msgType, _ := req["type"].(string)

			var resp HAMessage
			route, found := routes[msgType]
			switch {
			case found:
				result, haErr := route(req)
				if haErr != nil {
					resp = NewErrorMessage(id, haErr.Code, haErr.Message)
				} else {
					resp = NewSuccessMessage(id, result)
				}
			case msgType == "ping":
				resp = NewPongMessage(id)
			default:
				resp = NewErrorMessage(id, "unknown_command", "Unknown command.")
			}

			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	}
}

// AuthFlowHandler returns a handler that simulates the HA auth flow.
// It sends auth_required, waits for auth, and sends auth_ok.
func AuthFlowHandler(t *testing.T, token string, afterAuth WSHandler) WSHandler {
	return func(conn *websocket.Conn) {
		if err := conn.WriteJSON(NewAuthRequiredMessage()); err != nil {
			t.Errorf("failed to send auth_required: %v", err)
			return
		}

		authMsg, ok := readJSON(conn)
		if !ok {
			return
		}

		if authMsg["type"] == "auth" && authMsg["access_token"] == token {
			if err := conn.WriteJSON(NewAuthOKMessage()); err != nil {
				return
			}
			if afterAuth != nil {
				afterAuth(conn)
			}
		} else {
			_ = conn.WriteJSON(NewAuthInvalidMessage("Invalid access token or password"))
		}
	}
}

// DelayHandler returns a handler that delays before doing anything.
// Useful for testing timeouts.
func DelayHandler(delay time.Duration) WSHandler {
	return func(conn *websocket.Conn) {
		_, _, _ = conn.ReadMessage()
		time.Sleep(delay)
	}
}

// ReadThenCloseHandler returns a handler that reads one message then closes.
func ReadThenCloseHandler() WSHandler {
	return func(conn *websocket.Conn) {
		_, _, _ = conn.ReadMessage()
		conn.Close()
	}
}

// =====================================
// Request/Response Helpers
// =====================================

func readJSON(conn *websocket.Conn) (map[string]any, bool) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return nil, false
	}
	var req map[string]any
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, false
	}
	return req, true
}

// ReadRequest reads and parses a JSON request from the connection.
func ReadRequest(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var req map[string]any
	require.NoError(t, json.Unmarshal(data, &req))

	return req
}

// GetRequestID extracts the request ID from a parsed request.
func GetRequestID(req map[string]any) int {
	if id, ok := req["id"].(float64); ok {
		return int(id)
	}
	return 0
}
