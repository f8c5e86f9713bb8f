package relay

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrClosed is returned by Receive once the connection has gone away.
var ErrClosed = errors.New("relay connection closed")

// Client is one peer's connection to a relay room. It satisfies
// ports.SnapshotLink.
type Client struct {
	conn *websocket.Conn
	in   chan []byte
	done chan struct{}
	err  error

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Dial joins roomID on the relay at baseURL (ws:// or wss://) with token.
func Dial(ctx context.Context, baseURL, roomID, token string) (*Client, error) {
	target := strings.TrimSuffix(baseURL, "/") + "/rooms/" + url.PathEscape(roomID) + "/ws?token=" + url.QueryEscape(token)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial relay: %s: %w", resp.Status, err)
		}
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	conn.SetReadLimit(maxSnapshotBytes)

	c := &Client{
		conn: conn,
		in:   make(chan []byte, peerSendBuffer),
		done: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.in)
	for {
		kind, data, err := c.conn.ReadMessage()
		if err != nil {
			c.err = err
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		select {
		case c.in <- data:
		case <-c.done:
			return
		}
	}
}

// Send writes payload as one binary frame.
func (c *Client) Send(ctx context.Context, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.BinaryMessage, payload)
}

// Receive returns the next snapshot forwarded by the relay.
func (c *Client) Receive(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case data, ok := <-c.in:
		if !ok {
			if c.err != nil && !websocket.IsCloseError(c.err, websocket.CloseNormalClosure) {
				return nil, fmt.Errorf("%w: %v", ErrClosed, c.err)
			}
			return nil, ErrClosed
		}
		return data, nil
	}
}

// Close says goodbye to the relay and closes the connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		err = c.conn.Close()
	})
	return err
}
