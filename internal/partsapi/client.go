// Package partsapi is the HTTP client for the spare-parts server. It knows
// the endpoint paths, the ambient session/CSRF headers and the JSON shapes;
// it holds no UI state.
package partsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"partsdesk/internal/logger"
)

const maxResponseBytes = 16 << 20

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	CookieName string
	SessionID  string
	CSRFToken  string

	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
	// NewRequestID overrides the uuid generator for X-Request-ID.
	NewRequestID func() string
}

// Client talks to one spare-parts server on behalf of one session.
type Client struct {
	base         *url.URL
	http         *http.Client
	userAgent    string
	cookieName   string
	sessionID    string
	csrfToken    string
	newRequestID func() string
}

// New validates opts and builds a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", opts.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	newID := opts.NewRequestID
	if newID == nil {
		newID = uuid.NewString
	}
	cookieName := opts.CookieName
	if cookieName == "" {
		cookieName = "sessionid"
	}

	return &Client{
		base:         base,
		http:         hc,
		userAgent:    opts.UserAgent,
		cookieName:   cookieName,
		sessionID:    opts.SessionID,
		csrfToken:    opts.CSRFToken,
		newRequestID: newID,
	}, nil
}

// Resolve turns a server-relative path or URL into an absolute URL.
func (c *Client) Resolve(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return c.base.ResolveReference(u).String(), nil
}

func (c *Client) sameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, c.base.Scheme) && strings.EqualFold(u.Host, c.base.Host)
}

// call describes one HTTP exchange.
type call struct {
	method      string
	path        string
	body        []byte
	contentType string
	mutating    bool
}

// reply is the raw outcome of a call that reached the server.
type reply struct {
	status int
	body   []byte
}

func (r reply) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (c *Client) send(ctx context.Context, cl call) (reply, error) {
	target, err := c.Resolve(cl.path)
	if err != nil {
		return reply{}, fmt.Errorf("resolve %s: %w", cl.path, err)
	}

	var body io.Reader
	if cl.body != nil {
		body = bytes.NewReader(cl.body)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return reply{}, fmt.Errorf("build request: %w", err)
	}

	requestID := c.newRequestID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if cl.contentType != "" {
		req.Header.Set("Content-Type", cl.contentType)
	}
	// Session credentials only go to the configured server, never to
	// photo hosts named by absolute URLs.
	if c.sameOrigin(req.URL) {
		req.Header.Set(headerRequestedWith, "XMLHttpRequest")
		if c.sessionID != "" {
			req.AddCookie(&http.Cookie{Name: c.cookieName, Value: c.sessionID})
		}
		if cl.mutating && c.csrfToken != "" {
			req.Header.Set(headerCSRF, c.csrfToken)
			req.AddCookie(&http.Cookie{Name: "csrftoken", Value: c.csrfToken})
		}
	}

	logger.RemoteCall(cl.method, cl.path, requestID)
	resp, err := c.http.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrTransport, err)
		logger.RemoteResult(cl.method, cl.path, requestID, 0, err)
		return reply{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		err = fmt.Errorf("%w: read body: %w", ErrTransport, err)
		logger.RemoteResult(cl.method, cl.path, requestID, resp.StatusCode, err)
		return reply{}, err
	}

	r := reply{status: resp.StatusCode, body: data}
	var statusErr error
	if !r.ok() {
		statusErr = fmt.Errorf("http %d", resp.StatusCode)
	}
	logger.RemoteResult(cl.method, cl.path, requestID, resp.StatusCode, statusErr)
	return r, nil
}

// errorBody is what the server sends for plain failures.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusError(r reply) *StatusError {
	var eb errorBody
	_ = json.Unmarshal(r.body, &eb)
	msg := eb.Error
	if msg == "" {
		msg = eb.Message
	}
	if msg == "" {
		msg = http.StatusText(r.status)
	}
	return &StatusError{StatusCode: r.status, Message: msg}
}

// getJSON performs a GET and decodes a 2xx body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	r, err := c.send(ctx, call{method: http.MethodGet, path: path})
	if err != nil {
		return err
	}
	if !r.ok() {
		return statusError(r)
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrTransport, path, err)
	}
	return nil
}

// Result is the envelope every mutating endpoint answers with.
type Result struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`
	Errors  FieldErrors `json:"errors,omitempty"`
	EntryID int64       `json:"entryId,omitempty"`
	ID      int64       `json:"id,omitempty"`
	Name    string      `json:"name,omitempty"`
}

// postEnvelope sends a mutating request and interprets the result envelope.
// The envelope is honoured on 4xx replies too, where the server puts its
// validation errors.
func (c *Client) postEnvelope(ctx context.Context, cl call) (*Result, error) {
	cl.method = http.MethodPost
	cl.mutating = true
	r, err := c.send(ctx, cl)
	if err != nil {
		return nil, err
	}

	var res struct {
		Success *bool `json:"success"`
		Result
	}
	if err := json.Unmarshal(r.body, &res); err != nil || res.Success == nil {
		if r.ok() {
			return nil, fmt.Errorf("%w: unexpected reply from %s", ErrTransport, cl.path)
		}
		return nil, statusError(r)
	}

	out := res.Result
	out.Success = *res.Success
	if out.Message == "" {
		out.Message = out.Error
	}
	if !out.Success {
		return nil, &RejectedError{StatusCode: r.status, Message: out.Message, Fields: out.Errors}
	}
	return &out, nil
}

// form encodes urlencoded values with the CSRF field the server expects.
func (c *Client) form(values url.Values) call {
	if values == nil {
		values = url.Values{}
	}
	if c.csrfToken != "" {
		values.Set(formCSRF, c.csrfToken)
	}
	return call{body: []byte(values.Encode()), contentType: "application/x-www-form-urlencoded"}
}
