// Package shopgoodwill is a minimal client for the shopgoodwill.com buyer
// API, covering the endpoints the sniper and the query-alert tooling need.
package shopgoodwill

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"
)

const (
	defaultAPIRoot   = "https://buyerapi.shopgoodwill.com/api"
	defaultLoginPage = "https://shopgoodwill.com/signin"

	// The site rejects the default Go user agent.
	userAgent = "Mozilla/5.0 (Windows NT 6.1; WOW64; rv:12.0) Gecko/20100101 Firefox/12.0"

	invalidAuthMessage = "The username or password are incorrect"

	maxNoteLength = 256
)

var ErrInvalidCredentials = errors.New("shopgoodwill: invalid credentials")

// Credentials holds every accepted way in. Authenticate tries them in order:
// access token, pre-encrypted username/password, then plaintext
// username/password (encrypted locally before transmission).
type Credentials struct {
	AccessToken       string `json:"access_token"`
	EncryptedUsername string `json:"encrypted_username"`
	EncryptedPassword string `json:"encrypted_password"`
	Username          string `json:"username"`
	Password          string `json:"password"`
}

// StatusObserver is invoked with the status code of every API response the
// client receives. Used to feed outage tracking without reaching into the
// transport.
type StatusObserver func(statusCode int, requestURL string)

type Client struct {
	hc        *http.Client
	apiRoot   string
	loginPage string
	authz     string
	observe   StatusObserver
}

type Option func(*Client)

// WithBaseURLs overrides the API root and sign-in page (tests point these at
// an httptest server).
func WithBaseURLs(apiRoot, loginPage string) Option {
	return func(c *Client) {
		c.apiRoot = apiRoot
		c.loginPage = loginPage
	}
}

func WithObserver(fn StatusObserver) Option {
	return func(c *Client) { c.observe = fn }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

func New(opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)
	c := &Client{
		hc:        &http.Client{Timeout: 20 * time.Second, Jar: jar},
		apiRoot:   defaultAPIRoot,
		loginPage: defaultLoginPage,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// StatusError is returned for any non-2xx API response. 5xx codes are
// transient (server outage); everything else is permanent for that call.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("shopgoodwill: HTTP %d for %s", e.StatusCode, e.URL)
}

// IsTransient reports whether err is a server-side (5xx) failure.
func IsTransient(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode >= 500 && se.StatusCode < 600
}

// Authenticate establishes a session using the first credential mechanism
// that works.
func (c *Client) Authenticate(ctx context.Context, creds Credentials) error {
	if creds.AccessToken != "" {
		ok, err := c.accessTokenIsValid(ctx, creds.AccessToken)
		if err != nil {
			return err
		}
		if ok {
			c.authz = "Bearer " + creds.AccessToken
			return nil
		}
	}

	if creds.EncryptedUsername != "" && creds.EncryptedPassword != "" {
		return c.login(ctx, creds.EncryptedUsername, creds.EncryptedPassword)
	}

	if creds.Username != "" && creds.Password != "" {
		return c.login(ctx,
			EncryptLoginValue(creds.Username),
			EncryptLoginValue(creds.Password))
	}

	return ErrInvalidCredentials
}

// accessTokenIsValid probes the token against the saved-searches endpoint.
// A 401 means the token is dead; any other failure propagates.
func (c *Client) accessTokenIsValid(ctx context.Context, token string) (bool, error) {
	prev := c.authz
	c.authz = "Bearer " + token
	defer func() { c.authz = prev }()

	_, err := c.do(ctx, http.MethodPost, "/SaveSearches/GetSaveSearches", nil, map[string]any{})
	var se *StatusError
	if errors.As(err, &se) && se.StatusCode == http.StatusUnauthorized {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *Client) login(ctx context.Context, encUsername, encPassword string) error {
	// The sign-in page sets cookies the login endpoint expects; fetch it
	// first and let the jar collect them, ignoring the page itself.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.loginPage, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	if res, err := c.hc.Do(req); err == nil {
		io.Copy(io.Discard, res.Body)
		res.Body.Close()
	}

	// clientIpAddress and appVersion are what the web app sends; the API
	// does not appear to validate them.
	body, err := c.do(ctx, http.MethodPost, "/SignIn/Login", nil, map[string]any{
		"browser":         "firefox",
		"remember":        false,
		"clientIpAddress": "0.0.0.4",
		"appVersion":      "00099a1be3bb023ff17d",
		"username":        encUsername,
		"password":        encPassword,
	})
	if err != nil {
		return err
	}

	var parsed struct {
		Message     string `json:"message"`
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("shopgoodwill: parse login response: %w", err)
	}
	if parsed.Message == invalidAuthMessage || parsed.AccessToken == "" {
		return ErrInvalidCredentials
	}
	c.authz = "Bearer " + parsed.AccessToken
	return nil
}

// do issues one API request. Every response status, success or not, is
// reported to the observer before the error decision is made.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	rawURL := c.apiRoot + path
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, rdr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authz != "" {
		req.Header.Set("Authorization", c.authz)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if c.observe != nil {
		c.observe(res.StatusCode, rawURL)
	}

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: res.StatusCode, URL: rawURL}
	}
	return b, nil
}

func unmarshal(b []byte, v any) error {
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("shopgoodwill: parse response: %w", err)
	}
	return nil
}
