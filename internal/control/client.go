package control

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dshills/gluepanel/internal/logging"
)

// ErrClientClosed is returned when operations are attempted after Close.
var ErrClientClosed = errors.New("controller client is closed")

// ErrNotConnected is returned when a request is sent before Connect.
var ErrNotConnected = errors.New("controller client is not connected")

// Client is a websocket JSON request/response client for the robot
// controller. Requests carry generated IDs and responses are correlated
// back to their callers; unsolicited pushes go to the push handler.
type Client struct {
	url            string
	requestTimeout time.Duration
	maxInterval    time.Duration
	maxElapsed     time.Duration
	logger         *logging.Logger
	pushHandler    PushHandler

	mu   sync.Mutex
	conn *websocket.Conn

	pendingMu sync.Mutex
	pending   map[string]chan pendingReply

	closeOnce sync.Once
	done      chan struct{}
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRequestTimeout bounds a single request/response exchange.
func WithRequestTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.requestTimeout = d
	}
}

// WithReconnect configures connect retry backoff. A zero maxElapsed retries
// until the context is cancelled.
func WithReconnect(maxInterval, maxElapsed time.Duration) ClientOption {
	return func(c *Client) {
		c.maxInterval = maxInterval
		c.maxElapsed = maxElapsed
	}
}

// WithClientLogger sets the client's logger.
func WithClientLogger(l *logging.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// WithPushHandler sets the handler for unsolicited controller messages.
func WithPushHandler(h PushHandler) ClientOption {
	return func(c *Client) {
		c.pushHandler = h
	}
}

// NewClient creates a controller client for the given websocket URL.
func NewClient(url string, opts ...ClientOption) *Client {
	c := &Client{
		url:            url,
		requestTimeout: 5 * time.Second,
		maxInterval:    30 * time.Second,
		logger:         logging.Null,
		pending:        make(map[string]chan pendingReply),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("control")
	return c
}

// Connect dials the controller, retrying with exponential backoff until the
// connection succeeds, the backoff gives up, or the context is cancelled.
func (c *Client) Connect(ctx context.Context) error {
	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	dial := func() error { return c.dial(ctx) }
	if err := backoff.Retry(dial, backoff.WithContext(c.backoffPolicy(), ctx)); err != nil {
		return fmt.Errorf("connecting to controller at %s: %w", c.url, err)
	}

	c.logger.Info("connected: url=%s", c.url)
	go c.readLoop()
	return nil
}

// dial establishes one websocket connection.
func (c *Client) dial(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.logger.Warn("dial failed: url=%s err=%v", c.url, err)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	return nil
}

// backoffPolicy builds the retry schedule shared by Connect and the
// redial after a dropped connection. A zero maxElapsed retries forever.
func (c *Client) backoffPolicy() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = c.maxInterval
	bo.MaxElapsedTime = c.maxElapsed
	return bo
}

// SendRequest performs one request/response exchange with the controller.
func (c *Client) SendRequest(ctx context.Context, endpoint string, params map[string]any) (map[string]any, error) {
	select {
	case <-c.done:
		return nil, ErrClientClosed
	default:
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return nil, ErrNotConnected
	}

	req := request{
		ID:       uuid.New().String(),
		Endpoint: endpoint,
		Params:   params,
	}

	reply := make(chan pendingReply, 1)
	c.pendingMu.Lock()
	c.pending[req.ID] = reply
	c.pendingMu.Unlock()
	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, req.ID)
		c.pendingMu.Unlock()
	}()

	c.mu.Lock()
	err := conn.WriteJSON(req)
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("sending %s request: %w", endpoint, err)
	}

	timer := time.NewTimer(c.requestTimeout)
	defer timer.Stop()

	select {
	case pr := <-reply:
		if pr.err != nil {
			return nil, fmt.Errorf("%s request: %w", endpoint, pr.err)
		}
		if pr.resp.Error != "" {
			return nil, &RemoteError{Endpoint: endpoint, Message: pr.resp.Error}
		}
		return pr.resp.Result, nil
	case <-timer.C:
		return nil, fmt.Errorf("request %s timed out after %v", endpoint, c.requestTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, ErrClientClosed
	}
}

// pendingReply is what a waiting SendRequest receives: either the
// correlated response or the error that killed the connection.
type pendingReply struct {
	resp response
	err  error
}

// readLoop reads controller messages until the client is closed.
// Correlated responses wake their waiting request; messages without an
// ID are pushes. A dropped connection fails all in-flight requests and
// is redialled with backoff before reading resumes.
func (c *Client) readLoop() {
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}

		var resp response
		if err := conn.ReadJSON(&resp); err != nil {
			c.dropConnection(conn, err)
			select {
			case <-c.done:
				return
			default:
			}
			if !c.reconnect() {
				return
			}
			continue
		}
		c.route(resp)
	}
}

// route delivers one inbound message.
func (c *Client) route(resp response) {
	if resp.ID == "" {
		if c.pushHandler != nil {
			c.pushHandler(Push{Topic: resp.Topic, Payload: resp.Result})
		}
		return
	}

	c.pendingMu.Lock()
	reply, ok := c.pending[resp.ID]
	if ok {
		delete(c.pending, resp.ID)
	}
	c.pendingMu.Unlock()
	if !ok {
		c.logger.Debug("dropping response for unknown request: id=%s", resp.ID)
		return
	}
	reply <- pendingReply{resp: resp}
}

// dropConnection fails every in-flight request and clears the dead
// connection, so new requests see ErrNotConnected until the redial
// lands.
func (c *Client) dropConnection(conn *websocket.Conn, cause error) {
	c.pendingMu.Lock()
	for id, reply := range c.pending {
		reply <- pendingReply{err: fmt.Errorf("connection lost: %w", cause)}
		delete(c.pending, id)
	}
	c.pendingMu.Unlock()

	c.mu.Lock()
	if c.conn == conn {
		conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	select {
	case <-c.done:
	default:
		c.logger.Warn("connection lost: err=%v", cause)
	}
}

// reconnect redials until the connection is restored, the backoff gives
// up, or the client is closed.
func (c *Client) reconnect() bool {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	dial := func() error { return c.dial(ctx) }
	if err := backoff.Retry(dial, backoff.WithContext(c.backoffPolicy(), ctx)); err != nil {
		c.logger.Error("reconnect gave up: url=%s err=%v", c.url, err)
		return false
	}

	c.logger.Info("reconnected: url=%s", c.url)
	return true
}

// Close shuts the client down and closes the connection. Close is
// idempotent.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.conn != nil {
			err = c.conn.Close()
			c.conn = nil
		}
		c.mu.Unlock()
		c.logger.Info("closed")
	})
	return err
}
