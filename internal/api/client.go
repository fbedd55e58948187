// Package api is the HTTP client for the remote fast service. It implements
// fasting.Backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/julianstephens/fastwell/internal/auth"
	apperrors "github.com/julianstephens/fastwell/internal/errors"
	"github.com/julianstephens/fastwell/internal/keyring"
	"github.com/julianstephens/fastwell/internal/logger"
)

// ErrSessionExpired is returned before any request when the stored token has
// expired. The user needs to log in again.
var ErrSessionExpired = errors.New("session expired, run 'fastwell login' again")

// TokenSource returns the bearer token to send. An empty token sends the
// request unauthenticated.
type TokenSource func() (string, error)

// KeyringTokens reads the token saved by 'fastwell login'
func KeyringTokens() (string, error) {
	tok, err := keyring.GetToken()
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return tok, err
}

// StaticToken always returns token
func StaticToken(token string) TokenSource {
	return func() (string, error) { return token, nil }
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	now     func() time.Time
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which times out after 30s
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithClock sets the time used to check token expiry
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient returns a client for the service at baseURL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  KeyringTokens,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// do sends one request and decodes a 2xx JSON body into out. Non-2xx
// responses become RemoteError and transport failures NetworkError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	token, err := c.tokens()
	if err != nil {
		return fmt.Errorf("failed to read session token: %w", err)
	}
	if token != "" && auth.Expired(token, c.now()) {
		return ErrSessionExpired
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	op := method + " " + path
	logger.Debug("API request", "op", op)
	resp, err := c.http.Do(req)
	if err != nil {
		return &apperrors.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		var ne net.Error
		if errors.As(err, &ne) {
			return &apperrors.NetworkError{Op: op, Err: err}
		}
		return fmt.Errorf("%s: invalid response from fast service (status %d): %w", op, resp.StatusCode, err)
	}
	return nil
}
