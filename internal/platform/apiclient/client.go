// Package apiclient talks to the POS backend the way the browser pages did:
// cookie session, CSRF echo on unsafe methods, JSON or HTML-fragment bodies.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// CSRFCookie is the cookie the backend issues its anti-forgery token in.
	CSRFCookie = "csrftoken"
	// CSRFHeader is the header the token is echoed back in.
	CSRFHeader = "X-CSRFToken"
	// SessionCookie identifies the logged-in session.
	SessionCookie = "sessionid"

	maxBodyBytes = 8 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Transport http.RoundTripper
	Jar       http.CookieJar
	Logger    *slog.Logger
	// LoginPath is fetched by EnsureCSRF to obtain a token cookie.
	LoginPath string
}

// Client issues requests against one backend origin.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	jar        http.CookieJar
	logger     *slog.Logger
	loginPath  string
}

// New constructs a Client. A cookie jar is created when none is supplied.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("apiclient: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("apiclient: base url %q must be http or https", opts.BaseURL)
	}
	base.Path = strings.TrimSuffix(base.Path, "/")
	jar := opts.Jar
	if jar == nil {
		jar, err = cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("apiclient: cookie jar: %w", err)
		}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	loginPath := opts.LoginPath
	if loginPath == "" {
		loginPath = "/accounts/login/"
	}
	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			Jar:       jar,
		},
		jar:       jar,
		logger:    logger,
		loginPath: loginPath,
	}, nil
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// URL resolves path (and optional query) against the backend origin.
func (c *Client) URL(path string, query url.Values) string {
	u := c.BaseURL()
	u.Path = c.baseURL.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// Cookie returns the named cookie value held for the backend origin.
func (c *Client) Cookie(name string) string {
	for _, cookie := range c.jar.Cookies(c.baseURL) {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

// CSRFToken returns the current anti-forgery token, or "" when none was issued yet.
func (c *Client) CSRFToken() string {
	return c.Cookie(CSRFCookie)
}

// EnsureCSRF fetches the login page when no token cookie is held so that
// unsafe requests can carry one. Unsafe requests call it themselves.
func (c *Client) EnsureCSRF(ctx context.Context) error {
	if c.CSRFToken() != "" {
		return nil
	}
	if _, err := c.do(ctx, http.MethodGet, c.loginPath, nil, nil, nil); err != nil {
		return err
	}
	if c.CSRFToken() == "" {
		c.logger.Warn("backend issued no csrf cookie", slog.String("path", c.loginPath))
	}
	return nil
}

// GetJSON issues a GET and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil, nil)
	if err != nil {
		return err
	}
	return resp.decode(out)
}

// SendJSON issues method with body encoded as JSON and decodes the reply into out.
// out may be nil when the reply is not needed.
func (c *Client) SendJSON(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	header := http.Header{}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("apiclient: encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(raw)
		header.Set("Content-Type", "application/json")
	}
	resp, err := c.do(ctx, method, path, nil, payload, header)
	if err != nil {
		return err
	}
	return resp.decode(out)
}

// PostForm submits form fields url-encoded and decodes a JSON reply into out.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	header := http.Header{}
	header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := c.do(ctx, http.MethodPost, path, nil, strings.NewReader(form.Encode()), header)
	if err != nil {
		return err
	}
	return resp.decode(out)
}

// Fetch issues a GET and returns the body as text. JSON replies of the form
// {"html": "..."} are unwrapped, mirroring `data.html || data` in the pages.
func (c *Client) Fetch(ctx context.Context, path string, query url.Values) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, path, query, nil, nil)
	if err != nil {
		return "", err
	}
	if resp.isJSON() {
		var fragment struct {
			HTML *string `json:"html"`
		}
		if err := json.Unmarshal(resp.body, &fragment); err == nil && fragment.HTML != nil {
			return *fragment.HTML, nil
		}
	}
	return string(resp.body), nil
}

// Download streams the body of a GET into w and returns its content type.
func (c *Client) Download(ctx context.Context, path string, query url.Values, w io.Writer) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil, nil)
	if err != nil {
		return "", err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.networkError(req, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return "", c.statusError(req, res.StatusCode, body)
	}
	if _, err := io.Copy(w, res.Body); err != nil {
		return "", fmt.Errorf("apiclient: copy %s: %w", path, err)
	}
	return res.Header.Get("Content-Type"), nil
}

// Do sends method with an optional raw body and returns the reply status
// and body without JSON decoding. Non-2xx replies are returned as ErrStatus.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, header http.Header) (int, []byte, error) {
	resp, err := c.do(ctx, method, path, nil, body, header)
	if err != nil {
		return 0, nil, err
	}
	return resp.status, resp.body, nil
}

type response struct {
	status      int
	contentType string
	body        []byte
	method      string
	path        string
}

func (r *response) isJSON() bool {
	mediaType, _, err := mime.ParseMediaType(r.contentType)
	if err != nil {
		return strings.Contains(r.contentType, "application/json")
	}
	return mediaType == "application/json"
}

func (r *response) decode(out any) error {
	if out == nil || len(bytes.TrimSpace(r.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("apiclient: decode %s %s: %w", r.method, r.path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, header http.Header) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, query), body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: build %s %s: %w", method, path, err)
	}
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	req.Header.Set("Accept", "application/json, text/html;q=0.9, */*;q=0.8")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if isUnsafe(method) {
		req.Header.Set(CSRFHeader, c.CSRFToken())
		req.Header.Set("Referer", c.baseURL.String()+"/")
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, header http.Header) (*response, error) {
	// An unsafe request without a token would only earn a 403. The handshake
	// is best effort; the request itself reports what went wrong.
	if isUnsafe(method) && c.CSRFToken() == "" {
		if err := c.EnsureCSRF(ctx); err != nil {
			c.logger.Warn("csrf handshake failed", slog.String("path", c.loginPath), slog.Any("error", err))
		}
	}
	req, err := c.newRequest(ctx, method, path, query, body, header)
	if err != nil {
		return nil, err
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.networkError(req, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, c.networkError(req, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, c.statusError(req, res.StatusCode, raw)
	}
	resp := &response{
		status:      res.StatusCode,
		contentType: res.Header.Get("Content-Type"),
		body:        raw,
		method:      method,
		path:        path,
	}
	if resp.isJSON() {
		if msg, ok := extractMessage(raw); ok {
			c.logger.Error("backend reported error",
				slog.String("method", method),
				slog.String("path", path),
				slog.String("error", msg))
			return nil, &Error{Kind: ErrApplication, Method: method, Path: path, Status: res.StatusCode, Message: msg, Payload: raw}
		}
	}
	c.logger.Debug("backend call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", res.StatusCode),
		slog.String("request_id", req.Header.Get("X-Request-ID")))
	return resp, nil
}

func (c *Client) networkError(req *http.Request, err error) error {
	c.logger.Error("backend unreachable",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Any("error", err))
	return &Error{Kind: ErrNetwork, Method: req.Method, Path: req.URL.Path, Err: err}
}

func (c *Client) statusError(req *http.Request, status int, body []byte) error {
	msg, _ := extractMessage(body)
	c.logger.Error("backend returned error status",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", status),
		slog.String("error", msg))
	apiErr := &Error{Kind: ErrStatus, Method: req.Method, Path: req.URL.Path, Status: status, Message: msg}
	if json.Valid(body) {
		apiErr.Payload = append(json.RawMessage(nil), body...)
	}
	return apiErr
}

func isUnsafe(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool { return errors.Is(err, ErrNetwork) }
