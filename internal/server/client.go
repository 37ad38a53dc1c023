package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/traveller-vtt/dv/pkg/core"
)

const (
	respChSize  = 16
	writeWait   = 10 * time.Second
	respTimeout = 10 * time.Second
)

// Client sends chat messages to a running server and waits for the answer.
// Frames that only carry broadcast chat from other players are skipped.
type Client struct {
	mu     sync.Mutex
	conn   *websocket.Conn
	respCh chan Response
	done   chan struct{}
	closed bool

	logger zerolog.Logger
}

// Dial connects to the websocket endpoint at rawURL and starts reading.
func Dial(ctx context.Context, rawURL string, logger zerolog.Logger) (*Client, error) {
	if _, err := url.Parse(rawURL); err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	conn, _, err := websocket.Dial(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}

	c := &Client{
		conn:   conn,
		respCh: make(chan Response, respChSize),
		done:   make(chan struct{}),
		logger: logger,
	}
	go c.readLoop()
	return c, nil
}

// readLoop routes response frames to respCh.
func (c *Client) readLoop() {
	for {
		_, data, err := c.conn.Read(context.Background())
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		var resp Response
		if err := json.Unmarshal(data, &resp); err != nil {
			c.logger.Debug().Str("raw", string(data)).Msg("undecodable frame")
			continue
		}
		if resp.Command == "" && resp.Error == "" {
			continue
		}

		select {
		case c.respCh <- resp:
		default:
			c.logger.Debug().Str("command", resp.Command).Msg("response channel full, dropping")
		}
	}
}

// Send writes msg and blocks until the server answers or the timeout expires.
func (c *Client) Send(ctx context.Context, msg core.ChatMessage) (Response, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return Response{}, fmt.Errorf("marshal chat message: %w", err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	if err := c.conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		return Response{}, fmt.Errorf("websocket write failed: %w", err)
	}

	timer := time.NewTimer(respTimeout)
	defer timer.Stop()

	select {
	case resp := <-c.respCh:
		return resp, nil
	case <-timer.C:
		return Response{}, fmt.Errorf("timeout waiting for response to %q", msg.Content)
	case <-c.done:
		return Response{}, fmt.Errorf("connection closed while waiting for response to %q", msg.Content)
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Close sends a close frame and stops reading.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	c.mu.Unlock()

	return c.conn.Close(websocket.StatusNormalClosure, "")
}
