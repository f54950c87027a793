// Package api is the HTTP client for the reflections server.
//
// [Client] implements interact.Backend, so the interaction machine can run
// against a remote server exactly as it runs against a local store:
//
//	c, err := api.New("http://localhost:8080")
//	if err != nil {
//	    return err
//	}
//	if err := c.Login(ctx, "ada"); err != nil {
//	    return err
//	}
//	m := interact.New(c, host, interact.DefaultConfig())
//
// Idempotent calls (GET, PUT, DELETE) are retried on network errors and 5xx
// responses. All calls pass through a circuit breaker that opens after
// repeated server failures.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/matzehuels/reflections/pkg/buildinfo"
	"github.com/matzehuels/reflections/pkg/errors"
	"github.com/matzehuels/reflections/pkg/httputil"
	"github.com/matzehuels/reflections/pkg/observability"
)

// CookieName must match the server's session cookie.
const CookieName = "reflections_session"

// Defaults.
const (
	DefaultTimeout      = 10 * time.Second
	DefaultRetries      = 3
	DefaultRetryDelay   = 200 * time.Millisecond
	defaultTripFailures = 5
)

// Client talks to one server.
type Client struct {
	base       *url.URL
	http       *http.Client
	breaker    *gobreaker.CircuitBreaker
	retries    int
	retryDelay time.Duration
	session    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Jar is replaced
// when nil.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetry sets the attempt count and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) { c.retries, c.retryDelay = attempts, delay }
}

// WithSession resumes a previously issued session.
func WithSession(id string) Option {
	return func(c *Client) { c.session = id }
}

// New returns a client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "invalid server url %q", baseURL)
	}
	c := &Client{
		base:       u,
		http:       &http.Client{Timeout: DefaultTimeout},
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, _ := cookiejar.New(nil)
		c.http.Jar = jar
	}
	if c.session != "" {
		c.setSessionCookie(c.session)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "reflections-api",
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= defaultTripFailures
		},
		// Only transport failures and 5xx responses count against the
		// server; a 404 or a validation error is a healthy answer.
		IsSuccessful: func(err error) bool {
			return err == nil || !isServerFailure(err)
		},
	})
	return c, nil
}

// Host returns the server host, used to key saved sessions.
func (c *Client) Host() string { return c.base.Host }

// Session returns the current session ID, or "" before Login.
func (c *Client) Session() string { return c.session }

// LoginResult describes the session issued by Login.
type LoginResult struct {
	Username  string    `json:"username"`
	UserID    string    `json:"user_id"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login opens a session for username.
func (c *Client) Login(ctx context.Context, username string) (*LoginResult, error) {
	if err := errors.ValidateUsername(username); err != nil {
		return nil, err
	}
	var res LoginResult
	if err := c.call(ctx, http.MethodPost, "/login", map[string]string{"username": username}, &res); err != nil {
		return nil, err
	}
	c.session = res.SessionID
	return &res, nil
}

// Logout closes the current session.
func (c *Client) Logout(ctx context.Context) error {
	err := c.call(ctx, http.MethodPost, "/logout", nil, nil)
	c.session = ""
	return err
}

func (c *Client) setSessionCookie(id string) {
	c.http.Jar.SetCookies(c.base, []*http.Cookie{{Name: CookieName, Value: id, Path: "/"}})
}

// call performs one API call, retrying idempotent methods.
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "encode request")
		}
	}

	repeated := false
	attempt := func(n int) error {
		repeated = n > 1
		_, err := c.breaker.Execute(func() (any, error) {
			return nil, c.do(ctx, method, path, body, out)
		})
		if stderrors.Is(err, gobreaker.ErrOpenState) || stderrors.Is(err, gobreaker.ErrTooManyRequests) {
			return errors.Wrap(errors.ErrCodeNetwork, err, "server unavailable")
		}
		return err
	}

	if method == http.MethodPost {
		return unwrapRetryable(attempt(1))
	}
	err := unwrapRetryable(httputil.Retry(ctx, c.retries, c.retryDelay, attempt))
	// An earlier DELETE attempt may have succeeded and only lost its
	// response, in which case the retry finds nothing left to delete.
	if method == http.MethodDelete && repeated && errors.IsNotFound(err) {
		return nil
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, rd)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("X-Request-ID", uuid.NewString())

	host, route := c.base.Host, routeOf(path)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, host, route)
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, route, err)
		if ctx.Err() != nil {
			return errors.Wrap(errors.ErrCodeTimeout, ctx.Err(), "%s %s", method, path)
		}
		return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, path)}
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, method, host, route, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp, method, path); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		if *raw, err = io.ReadAll(resp.Body); err != nil {
			return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "read %s %s response", method, path)}
		}
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "decode %s %s response", method, path)
	}
	return nil
}

// errorBody mirrors the server's error response.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func checkStatus(resp *http.Response, method, path string) error {
	if resp.StatusCode < 300 {
		return nil
	}
	var body errorBody
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
	msg := body.Message
	if msg == "" {
		msg = fmt.Sprintf("%s %s: status %d", method, path, resp.StatusCode)
	}

	code := errors.Code(body.Error)
	switch {
	case resp.StatusCode >= 500:
		return &httputil.RetryableError{Err: errors.New(errors.ErrCodeNetwork, "%s", msg)}
	case code != "":
		return errors.New(code, "%s", msg)
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s", msg)
	case resp.StatusCode == http.StatusUnauthorized:
		return errors.New(errors.ErrCodeUnauthorized, "%s", msg)
	case resp.StatusCode == http.StatusForbidden:
		return errors.New(errors.ErrCodeForbidden, "%s", msg)
	default:
		return errors.New(errors.ErrCodeInvalidInput, "%s", msg)
	}
}

// routeOf strips the query and shard IDs so the path can serve as a
// low-cardinality metric label.
func routeOf(path string) string {
	path, _, _ = strings.Cut(path, "?")
	rest, ok := strings.CutPrefix(path, "/shards/")
	if !ok {
		return path
	}
	if _, sub, found := strings.Cut(rest, "/"); found {
		return "/shards/{id}/" + sub
	}
	return "/shards/{id}"
}

func isServerFailure(err error) bool {
	var re *httputil.RetryableError
	return stderrors.As(err, &re)
}

// unwrapRetryable strips the retry marker so callers see the coded error.
func unwrapRetryable(err error) error {
	var re *httputil.RetryableError
	if stderrors.As(err, &re) {
		return re.Err
	}
	return err
}
