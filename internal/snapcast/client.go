package snapcast

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Client is a single-connection JSON-RPC-over-TCP transport to one Snapcast
// server. All outbound calls are paced through a rate limiter (spec §5:
// "the Snapcast RPC connection is shared through a single-writer queue").
type Client struct {
	conn net.Conn
	w    *bufio.Writer
	limiter *rate.Limiter

	nextID atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]chan *Response

	notifications chan Notification

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial opens a TCP connection to a Snapcast server's control port and
// starts the read loop. timeout bounds the dial itself; per-call timeouts
// are applied by the caller via context.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial snapcast %s: %w", addr, err)
	}
	c := &Client{
		conn:          conn,
		w:             bufio.NewWriter(conn),
		limiter:       rate.NewLimiter(rate.Limit(20), 5), // 20 calls/sec, burst 5
		pending:       make(map[uint64]chan *Response),
		notifications: make(chan Notification, 256),
		closed:        make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Notifications returns the channel of inbound Snapcast notifications.
func (c *Client) Notifications() <-chan Notification { return c.notifications }

// Close terminates the connection and the read loop.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

// Call issues a JSON-RPC request and blocks for its matched response,
// respecting ctx cancellation/deadline and the outbound rate limiter.
func (c *Client) Call(ctx context.Context, method string, params interface{}, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	id := c.nextID.Add(1)
	respCh := make(chan *Response, 1)
	c.mu.Lock()
	c.pending[id] = respCh
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	req := Request{JSONRPC: "2.0", ID: id, Method: method, Params: params}
	line, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	c.mu.Lock()
	_, werr := c.w.Write(append(line, '\n'))
	if werr == nil {
		werr = c.w.Flush()
	}
	c.mu.Unlock()
	if werr != nil {
		return fmt.Errorf("write request: %w", werr)
	}

	select {
	case resp := <-respCh:
		if resp.Error != nil {
			return resp.Error
		}
		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.closed:
		return fmt.Errorf("snapcast connection closed")
	}
}

// readLoop demultiplexes incoming lines into responses (matched by id) and
// notifications (method + params, no id).
func (c *Client) readLoop() {
	defer close(c.notifications)
	scanner := bufio.NewScanner(c.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var probe struct {
			ID     *uint64 `json:"id"`
			Method string  `json:"method"`
		}
		if err := json.Unmarshal(line, &probe); err != nil {
			slog.Warn("snapcast: malformed frame", "err", err)
			continue
		}

		if probe.ID != nil {
			var resp Response
			if err := json.Unmarshal(line, &resp); err != nil {
				slog.Warn("snapcast: malformed response", "err", err)
				continue
			}
			c.mu.Lock()
			ch, ok := c.pending[resp.ID]
			c.mu.Unlock()
			if ok {
				ch <- &resp
			}
			continue
		}

		var n Notification
		if err := json.Unmarshal(line, &n); err != nil {
			slog.Warn("snapcast: malformed notification", "err", err)
			continue
		}
		select {
		case c.notifications <- n:
		case <-c.closed:
			return
		}
	}
}
