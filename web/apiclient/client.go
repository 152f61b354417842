// Package apiclient calls the conference portal API on behalf of a browser session.
// The browser's cookies are forwarded on every call; the API stays the only
// component that reads the credential.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/internal/rbac"
	"github.com/upb/conference-portal/utils"
)

const (
	MePath     = "/auth/me"
	LoginPath  = "/auth/login"
	LogoutPath = "/auth/logout"

	maxResponseBytes = 4 << 20
)

// ErrSessionExpired is returned for any 401 outside the login endpoint
var ErrSessionExpired = errors.New("session expired")

// Identity is the session user returned by the identity endpoint
type Identity struct {
	ID    uuid.UUID   `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Roles []rbac.Role `json:"roles"`
}

// APIError is a non-2xx API response other than an intercepted 401
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

// UnmarshalJSON parses role labels the same way token claims are parsed:
// case-insensitively, dropping unknown labels.
func (i *Identity) UnmarshalJSON(data []byte) error {
	type identity Identity
	var raw struct {
		identity
		Roles []string `json:"roles"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*i = Identity(raw.identity)
	i.Roles = rbac.FromStrings(raw.Roles)
	return nil
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Code)
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// Client is a thin JSON client for the API
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New creates a client for the API rooted at baseURL
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Me fetches the identity of the session carried by cookies
func (c *Client) Me(ctx context.Context, cookies []*http.Cookie) (*Identity, error) {
	var id Identity
	if _, err := c.do(ctx, http.MethodGet, MePath, cookies, nil, &id); err != nil {
		return nil, err
	}
	return &id, nil
}

// Login submits credentials. It returns the identity and the cookies the API set,
// which the caller relays to the browser.
func (c *Client) Login(ctx context.Context, email, password string) (*Identity, []*http.Cookie, error) {
	body := map[string]string{"email": email, "password": password}
	var id Identity
	resp, err := c.do(ctx, http.MethodPost, LoginPath, nil, body, &id)
	if err != nil {
		return nil, nil, err
	}
	return &id, resp.Cookies(), nil
}

// Logout ends the session and returns the clearing cookies to relay
func (c *Client) Logout(ctx context.Context, cookies []*http.Cookie) ([]*http.Cookie, error) {
	resp, err := c.do(ctx, http.MethodPost, LogoutPath, cookies, nil, nil)
	if err != nil {
		return nil, err
	}
	return resp.Cookies(), nil
}

// Get fetches path and decodes the data envelope into out
func (c *Client) Get(ctx context.Context, path string, cookies []*http.Cookie, out interface{}) error {
	_, err := c.do(ctx, http.MethodGet, path, cookies, nil, out)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, cookies []*http.Cookie, body, out interface{}) (*http.Response, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && path != LoginPath {
		return nil, ErrSessionExpired
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		var envelope struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		if len(envelope.Data) > 0 {
			if err := json.Unmarshal(envelope.Data, out); err != nil {
				return nil, fmt.Errorf("decode data: %w", err)
			}
		}
	}
	return resp, nil
}

func (c *Client) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", path, err)
	}
	if ref.IsAbs() || ref.Host != "" {
		return "", fmt.Errorf("path %q must be relative to the API", path)
	}
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimPrefix(ref.Path, "/")
	u.RawQuery = ref.RawQuery
	return u.String(), nil
}

func parseError(status int, raw []byte) error {
	apiErr := &APIError{StatusCode: status}
	var body utils.ErrorResponse
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Code = body.Error
		apiErr.Message = body.Message
	}
	if apiErr.Code == "" {
		apiErr.Code = http.StatusText(status)
	}
	return apiErr
}
