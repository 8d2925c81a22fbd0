// Package client provides WebSocket client utilities for communicating with Home Assistant.
package client

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/home-assistant-blueprints/ha-history-go/internal/errors"
	"github.com/home-assistant-blueprints/ha-history-go/internal/logging"
	"github.com/home-assistant-blueprints/ha-history-go/internal/types"
)

// DefaultTimeout bounds the handshake and authentication exchange.
const DefaultTimeout = 30 * time.Second

// Client represents a WebSocket client for Home Assistant.
type Client struct {
	conn      *websocket.Conn
	messageID atomic.Int32
	pendingMu sync.RWMutex
	pending   map[int]chan *types.HAMessage
	writeMu   sync.Mutex
	done      chan struct{}
	readErr   error
}

// Dial connects to the Home Assistant WebSocket API at url and authenticates
// with token. A zero timeout uses DefaultTimeout.
func Dial(ctx context.Context, url, token string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	dialer := websocket.Dialer{
		HandshakeTimeout: timeout,
	}

	conn, resp, err := dialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, errors.ErrConnectionFailed(err).WithPath(url)
	}

	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	if err := Authenticate(conn, token); err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetReadDeadline(time.Time{})

	logging.Debug().Str("url", url).Msg("connected to Home Assistant")
	return New(conn), nil
}

// Authenticate runs the Home Assistant auth handshake on a fresh connection.
func Authenticate(conn *websocket.Conn, token string) error {
	var msg struct {
		Type string `json:"type"`
	}

	if err := conn.ReadJSON(&msg); err != nil {
		return errors.ErrAuthFailed("failed to read auth_required").WithCause(err)
	}

	if msg.Type != "auth_required" {
		return errors.ErrAuthFailed("unexpected message type: " + msg.Type)
	}

	authMsg := map[string]string{
		"type":         "auth",
		"access_token": token,
	}

	if err := conn.WriteJSON(authMsg); err != nil {
		return errors.ErrMessageSendFailed(err)
	}

	var authResult struct {
		Type    string `json:"type"`
		Message string `json:"message,omitempty"`
	}

	if err := conn.ReadJSON(&authResult); err != nil {
		return errors.ErrAuthFailed("failed to read auth result").WithCause(err)
	}

	if authResult.Type != "auth_ok" {
		return errors.ErrAuthFailed(authResult.Message)
	}

	return nil
}

// New creates a new client on an authenticated WebSocket connection.
func New(conn *websocket.Conn) *Client {
	c := &Client{
		conn:    conn,
		pending: make(map[int]chan *types.HAMessage),
		done:    make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// NextID generates the next unique message ID.
func (c *Client) NextID() int {
	return int(c.messageID.Add(1))
}

// readLoop continuously reads messages from the WebSocket.
func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.readErr = err
			c.pendingMu.Lock()
			for _, ch := range c.pending {
				close(ch)
			}
			c.pending = make(map[int]chan *types.HAMessage)
			c.pendingMu.Unlock()
			return
		}

		var msg types.HAMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logging.Debug().Err(err).Msg("dropping undecodable message")
			continue
		}

		c.handleMessage(&msg)
	}
}

// handleMessage routes responses to the request waiting on their id.
func (c *Client) handleMessage(msg *types.HAMessage) {
	switch msg.Type {
	case "result", "pong":
		c.pendingMu.RLock()
		ch, ok := c.pending[msg.ID]
		c.pendingMu.RUnlock()
		if ok {
			ch <- msg
		}
	}
}

// SendMessage sends a message and waits for the response or for ctx to end.
func (c *Client) SendMessage(ctx context.Context, msgType string, data map[string]any) (*types.HAMessage, error) {
	id := c.NextID()

	msg := map[string]any{
		"id":   id,
		"type": msgType,
	}
	maps.Copy(msg, data)

	respCh := make(chan *types.HAMessage, 1)
	c.pendingMu.Lock()
	c.pending[id] = respCh
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return nil, errors.ErrMessageMarshalFailed(err)
	}

	c.writeMu.Lock()
	err = c.conn.WriteMessage(websocket.TextMessage, msgBytes)
	c.writeMu.Unlock()
	if err != nil {
		return nil, errors.ErrMessageSendFailed(err)
	}

	logging.Debug().Int("id", id).Str("type", msgType).Msg("sent message")

	select {
	case resp, ok := <-respCh:
		if !ok {
			return nil, errors.ErrConnectionClosed(c.readErr)
		}
		if resp.Success != nil && !*resp.Success {
			errMsg := "unknown error"
			code := ""
			if resp.Error != nil {
				errMsg = resp.Error.Message
				code = resp.Error.Code
			}
			return nil, errors.ErrAPIError(code, errMsg)
		}
		return resp, nil
	case <-c.done:
		return nil, errors.ErrConnectionClosed(c.readErr)
	case <-ctx.Done():
		return nil, errors.ErrRequestCanceled(ctx.Err())
	}
}

// SendMessageTyped sends a message and unmarshals the result into the provided type.
func SendMessageTyped[T any](ctx context.Context, c *Client, msgType string, data map[string]any) (T, error) {
	resp, err := c.SendMessage(ctx, msgType, data)
	if err != nil {
		var zero T
		return zero, err
	}
	return Decode[T](resp)
}

// Decode converts the untyped result of a response into T.
func Decode[T any](resp *types.HAMessage) (T, error) {
	var result T
	if resp == nil {
		return result, nil
	}

	resultBytes, err := json.Marshal(resp.Result)
	if err != nil {
		return result, errors.ErrInvalidJSON(err).WithMessage("failed to marshal result")
	}

	if err := json.Unmarshal(resultBytes, &result); err != nil {
		return result, errors.ErrInvalidJSON(err).WithMessage("failed to unmarshal result")
	}

	return result, nil
}

// Ping checks that the connection is alive.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.SendMessage(ctx, "ping", nil)
	return err
}

// Config fetches the Home Assistant configuration.
func (c *Client) Config(ctx context.Context) (*types.HAConfig, error) {
	cfg, err := SendMessageTyped[types.HAConfig](ctx, c, "get_config", nil)
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Close closes the WebSocket connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Done returns a channel that's closed when the client is done.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
