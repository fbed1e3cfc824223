// Package predictclient calls the remote prediction endpoint.
package predictclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/iris/core/form"
	"github.com/kilianp07/iris/core/logger"
	"github.com/kilianp07/iris/core/model"
)

// DefaultPath is the endpoint path appended to the base URL.
const DefaultPath = "/predict"

const maxBodyBytes = 1 << 20

// Authenticator decorates outgoing requests with credentials.
type Authenticator interface {
	SetAuthHeader(r *http.Request) error
}

// Refresher is implemented by authenticators able to discard a rejected
// token.
type Refresher interface {
	ForceRefresh(ctx context.Context) (string, error)
}

// Client posts prediction requests as JSON.
type Client struct {
	base string
	path string
	http *http.Client
	auth Authenticator
	log  logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithPath overrides DefaultPath.
func WithPath(p string) Option { return func(c *Client) { c.path = p } }

// WithAuth authenticates every request with a.
func WithAuth(a Authenticator) Option { return func(c *Client) { c.auth = a } }

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option { return func(c *Client) { c.log = l } }

// New returns a client for the endpoint rooted at base.
func New(base string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimSuffix(base, "/"),
		path: DefaultPath,
		http: &http.Client{Timeout: 10 * time.Second},
		log:  logger.NopLogger{},
	}
	for _, o := range opts {
		o(c)
	}
	if !strings.HasPrefix(c.path, "/") {
		c.path = "/" + c.path
	}
	return c
}

// URL returns the full endpoint URL.
func (c *Client) URL() string { return c.base + c.path }

// Predict performs the call. Every failure is returned as a
// *form.RequestError carrying the message to show to the user.
func (c *Client) Predict(ctx context.Context, req model.PredictionRequest) (model.PredictionResponse, error) {
	var out model.PredictionResponse
	payload, err := json.Marshal(req)
	if err != nil {
		return out, &form.RequestError{Message: form.MsgRequestFailed, Err: fmt.Errorf("encode request: %w", err)}
	}
	id := req.RequestID
	if id == "" {
		id = uuid.NewString()
	}

	resp, err := c.send(ctx, id, payload)
	if err != nil {
		return out, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		if r, ok := c.auth.(Refresher); ok {
			_ = resp.Body.Close()
			c.log.Warnf("predict %s: token rejected, refreshing", id)
			if _, err := r.ForceRefresh(ctx); err != nil {
				return out, &form.RequestError{Status: http.StatusUnauthorized, Message: form.MsgRequestFailed, Err: fmt.Errorf("refresh token: %w", err)}
			}
			if resp, err = c.send(ctx, id, payload); err != nil {
				return out, err
			}
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return out, &form.RequestError{Status: resp.StatusCode, Message: form.MsgNetwork, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode/100 != 2 {
		msg := form.MsgRequestFailed
		var er model.ErrorResponse
		if json.Unmarshal(body, &er) == nil && er.Error != "" {
			msg = er.Error
		}
		c.log.Warnf("predict %s: %s: %s", id, resp.Status, msg)
		return out, &form.RequestError{Status: resp.StatusCode, Message: msg, Err: fmt.Errorf("predict %s: %s", c.path, resp.Status)}
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return model.PredictionResponse{}, &form.RequestError{Status: resp.StatusCode, Message: form.MsgNetwork, Err: fmt.Errorf("decode response: %w", err)}
	}
	if err := out.Validate(); err != nil {
		return model.PredictionResponse{}, &form.RequestError{Status: resp.StatusCode, Message: form.MsgRequestFailed, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return out, nil
}

func (c *Client) send(ctx context.Context, id string, payload []byte) (*http.Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(payload))
	if err != nil {
		return nil, &form.RequestError{Message: form.MsgRequestFailed, Err: fmt.Errorf("build request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", id)
	if c.auth != nil {
		if err := c.auth.SetAuthHeader(httpReq); err != nil {
			return nil, &form.RequestError{Message: form.MsgRequestFailed, Err: fmt.Errorf("authenticate: %w", err)}
		}
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &form.RequestError{Message: form.MsgNetwork, Err: fmt.Errorf("send request: %w", err)}
	}
	return resp, nil
}
