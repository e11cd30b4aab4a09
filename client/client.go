// Package client is the Go SDK for the authentication API. It wraps
// net/http with a transport that attaches the stored access token to every
// request and transparently refreshes it on expiry: concurrent 401s share a
// single refresh call, and a failed refresh clears the stored tokens so the
// application can force a re-login.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultRefreshTimeout = 10 * time.Second

// User is the user summary returned by the API.
type User struct {
	ID          string     `json:"id"`
	Mobile      string     `json:"mobile"`
	FirstName   string     `json:"first_name"`
	MiddleName  *string    `json:"middle_name,omitempty"`
	LastName    string     `json:"last_name"`
	Verified    bool       `json:"verified"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to the authentication API with transparent token handling.
type Client struct {
	baseURL string
	store   TokenStore
	httpc   *http.Client
}

// Option configures a Client.
type Option func(*options)

type options struct {
	httpc          *http.Client
	refreshTimeout time.Duration
}

// WithHTTPClient sets the underlying HTTP client used for all calls,
// including the refresh call.
func WithHTTPClient(h *http.Client) Option {
	return func(o *options) { o.httpc = h }
}

// WithRefreshTimeout bounds the refresh call. A timeout counts as a refresh
// failure and forces re-login; it never leaves waiters pending.
func WithRefreshTimeout(d time.Duration) Option {
	return func(o *options) { o.refreshTimeout = d }
}

// New returns a Client whose requests carry the access token from store and
// survive access-token expiry via single-flight refresh.
func New(baseURL string, store TokenStore, opts ...Option) *Client {
	o := &options{
		httpc:          &http.Client{Timeout: 30 * time.Second},
		refreshTimeout: defaultRefreshTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}

	// The refresher calls the server directly, bypassing Transport: a
	// refresh must never trigger another refresh.
	rf := &refresher{
		baseURL: baseURL,
		httpc:   o.httpc,
		store:   store,
		timeout: o.refreshTimeout,
	}

	wrapped := *o.httpc
	wrapped.Transport = &Transport{
		base:      orDefault(o.httpc.Transport),
		store:     store,
		refresher: rf,
	}

	return &Client{
		baseURL: baseURL,
		store:   store,
		httpc:   &wrapped,
	}
}

func orDefault(rt http.RoundTripper) http.RoundTripper {
	if rt != nil {
		return rt
	}
	return http.DefaultTransport
}

// HTTPClient returns the configured *http.Client for arbitrary calls against
// protected endpoints; token attachment and refresh apply to every request.
func (c *Client) HTTPClient() *http.Client { return c.httpc }

// Signup registers a new account. The server responds with the user in
// PendingVerification and delivers an OTP to the mobile out of band.
func (c *Client) Signup(ctx context.Context, firstName, lastName, mobile, pin string) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	err := c.post(ctx, "/v1/auth/signup", map[string]string{
		"firstname": firstName,
		"lastname":  lastName,
		"mobile":    mobile,
		"pin":       pin,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out.User, nil
}

// VerifyOTP confirms the account with the code delivered after signup.
func (c *Client) VerifyOTP(ctx context.Context, mobile, otp string) error {
	return c.post(ctx, "/v1/auth/verify-otp", map[string]string{
		"mobile": mobile,
		"otp":    otp,
	}, nil)
}

// Login authenticates with mobile and PIN and persists the returned token
// pair into the store.
func (c *Client) Login(ctx context.Context, mobile, pin string) (*User, error) {
	var out struct {
		User         *User  `json:"user"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	err := c.post(ctx, "/v1/auth/login", map[string]string{
		"mobile": mobile,
		"pin":    pin,
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := c.store.Save(out.AccessToken, out.RefreshToken); err != nil {
		return nil, err
	}
	return out.User, nil
}

// ResendOTP requests a fresh verification code.
func (c *Client) ResendOTP(ctx context.Context, mobile string) error {
	return c.post(ctx, "/v1/auth/resend-otp", map[string]string{"mobile": mobile}, nil)
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var out struct {
		User *User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/users/me", nil, &out); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&envelope)
		return &APIError{Status: resp.StatusCode, Code: envelope.Code, Message: envelope.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
