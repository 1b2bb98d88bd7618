// Package storeclient calls the store's JSON-RPC endpoints over HTTP.
package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ganot/sharedlist/internal/domain/list"
	"github.com/ganot/sharedlist/internal/rpc"
	"github.com/ganot/sharedlist/internal/transport"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 10 * time.Second

// Error is a JSON-RPC error answered by the store. Domain failures unwrap
// to the matching sentinel error, e.g. item.ErrItemNotFound.
type Error struct {
	Method  string
	Status  int
	Code    int
	Message string
	API     *rpc.APIError
}

func (e *Error) Error() string {
	if e.API != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Method, e.Message, e.API.Code)
	}
	return fmt.Sprintf("%s: %s (%d)", e.Method, e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	if e.API == nil {
		return nil
	}
	return rpc.DomainError(e.API.Code)
}

// Client is a connection to a store server.
type Client struct {
	baseURL     string
	participant string
	http        *http.Client
	ids         atomic.Int64
}

// Option configures a Client.
type Option func(*Client)

// WithParticipant sends name as the acting participant on every request.
func WithParticipant(name string) Option {
	return func(c *Client) {
		c.participant = strings.TrimSpace(name)
	}
}

// WithTimeout bounds each request to d.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateList creates a new list and returns it with its token.
func (c *Client) CreateList(ctx context.Context, params rpc.CreateListParams) (*list.List, error) {
	var out list.List
	if err := c.call(ctx, c.baseURL+"/lists", rpc.MethodCreateList, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns a store bound to the list with token.
func (c *Client) List(token string) *ListStore {
	return &ListStore{client: c, token: token}
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      int64           `json:"id"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *responseError  `json:"error,omitempty"`
}

type responseError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (c *Client) call(ctx context.Context, url, method string, params, out any) error {
	payload := request{JSONRPC: "2.0", Method: method, ID: c.ids.Add(1)}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("encoding %s params: %w", method, err)
		}
		payload.Params = raw
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.participant != "" {
		req.Header.Set(transport.ParticipantHeader, c.participant)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", method, err)
	}

	var decoded response
	if err := json.Unmarshal(data, &decoded); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &Error{Method: method, Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decoding %s response: %w", method, err)
	}
	if decoded.Error != nil {
		return decodeError(method, resp.StatusCode, decoded.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return &Error{Method: method, Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(decoded.Result, out); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}

func decodeError(method string, status int, rerr *responseError) error {
	e := &Error{Method: method, Status: status, Code: rerr.Code, Message: rerr.Message}
	if rerr.Code == transport.ErrApplication && len(rerr.Data) > 0 {
		var api rpc.APIError
		if err := json.Unmarshal(rerr.Data, &api); err == nil && api.Code != "" {
			e.API = &api
		}
	}
	return e
}

// IsDomainError reports whether err carries a store domain error code.
func IsDomainError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.API != nil
}
