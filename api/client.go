package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/deemkeen/plaza/domain"
	"github.com/deemkeen/plaza/store"
	"github.com/deemkeen/plaza/util"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// refreshWithin is how close to its expiry a token is refreshed ahead
// of a request instead of waiting for the 401.
const refreshWithin = 30 * time.Second

// Client issues authenticated REST calls against the backend. It
// attaches the bearer token, transparently refreshes it when expired
// (at most one refresh in flight, with concurrent failures queued
// behind it) and persists the session through the store.
type Client struct {
	baseUrl string
	http    *http.Client
	store   *store.Store

	mu      sync.Mutex
	session *domain.Session
	refresh *refreshCall

	// OnSessionExpired is called once when a refresh fails and the
	// session has been cleared: the hard-logout signal.
	OnSessionExpired func()
}

// refreshCall is one in-flight token refresh; concurrent failing
// requests wait on done and share err.
type refreshCall struct {
	done chan struct{}
	err  error
}

func NewClient(conf *util.AppConfig, st *store.Store) *Client {
	return &Client{
		baseUrl: strings.TrimRight(conf.Conf.ServerUrl, "/"),
		http:    &http.Client{Timeout: time.Duration(conf.Conf.RequestTimeoutSecs) * time.Second},
		store:   st,
	}
}

// Session returns a copy of the current session, or nil when logged out.
func (c *Client) Session() *domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}
	copied := *c.session
	return &copied
}

// RestoreSession installs a session loaded from the store at startup.
func (c *Client) RestoreSession(sess *domain.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = sess
}

// UpdateSessionUser replaces the user snapshot, preserving tokens.
func (c *Client) UpdateSessionUser(u domain.User) {
	c.mu.Lock()
	if c.session != nil {
		c.session.User = u
	}
	c.mu.Unlock()

	if err := c.store.UpdateUser(u); err != nil {
		log.Printf("Failed to persist user snapshot: %v", err)
	}
}

// Logout drops the session in memory and in the store.
func (c *Client) Logout() {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		log.Printf("Failed to clear stored session: %v", err)
	}
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return ""
	}
	return c.session.Token
}

// do performs one JSON request against the backend. A 401 triggers a
// token refresh and exactly one retry with the new token; a request
// that fails again after its retry does not start a second refresh
// cycle.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	if token := c.token(); token != "" && tokenExpiringSoon(token) {
		// The token is about to lapse, renew it before the server
		// bounces the request.
		if err := c.refreshSession(ctx); err != nil {
			return err
		}
	}

	status, data, err := c.send(ctx, method, path, query, payload, c.token())
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && c.token() != "" {
		if err := c.refreshSession(ctx); err != nil {
			return err
		}
		status, data, err = c.send(ctx, method, path, query, payload, c.token())
		if err != nil {
			return err
		}
	}

	if status < 200 || status >= 300 {
		return decodeError(status, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// send issues a single HTTP round trip, no refresh handling.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload []byte, token string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", util.GetNameAndVersion())
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}

	return resp.StatusCode, data, nil
}

// refreshSession trades the refresh token for a new pair. Only one
// refresh is ever in flight; latecomers wait for it and share its
// outcome. On failure the session is cleared and the hard-logout
// signal fires.
func (c *Client) refreshSession(ctx context.Context) error {
	c.mu.Lock()
	if c.refresh != nil {
		call := c.refresh
		c.mu.Unlock()
		<-call.done
		return call.err
	}
	call := &refreshCall{done: make(chan struct{})}
	c.refresh = call
	var refreshToken string
	if c.session != nil {
		refreshToken = c.session.RefreshToken
	}
	c.mu.Unlock()

	var err error
	if refreshToken == "" {
		err = ErrNoSession
	} else {
		err = c.doRefresh(ctx, refreshToken)
	}

	if err != nil {
		log.Printf("Token refresh failed, ending session: %v", err)
		c.mu.Lock()
		c.session = nil
		c.mu.Unlock()
		if serr := c.store.Clear(); serr != nil {
			log.Printf("Failed to clear stored session: %v", serr)
		}
		if c.OnSessionExpired != nil {
			c.OnSessionExpired()
		}
	}

	c.mu.Lock()
	c.refresh = nil
	c.mu.Unlock()
	call.err = err
	close(call.done)
	return err
}

func (c *Client) doRefresh(ctx context.Context, refreshToken string) error {
	payload, err := json.Marshal(domain.RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}

	status, data, err := c.send(ctx, http.MethodPost, "/auth/refresh", nil, payload, "")
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return decodeError(status, data)
	}

	var resp domain.RefreshResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return fmt.Errorf("failed to decode refresh response: %w", err)
	}
	if resp.Token == "" {
		return fmt.Errorf("refresh endpoint returned no token")
	}

	c.mu.Lock()
	if c.session == nil {
		c.session = &domain.Session{}
	}
	c.session.Token = resp.Token
	if resp.RefreshToken != "" {
		c.session.RefreshToken = resp.RefreshToken
	}
	updated := *c.session
	c.mu.Unlock()

	if err := c.store.Save(updated); err != nil {
		log.Printf("Failed to persist refreshed session: %v", err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var body struct {
		Message string `json:"message"`
	}
	if len(data) > 0 {
		_ = json.Unmarshal(data, &body)
	}
	return &Error{Status: status, Message: body.Message}
}

// tokenExpiringSoon decodes the JWT expiry without verifying the
// signature, the server remains the verifier. Tokens without a
// readable exp claim are left to the 401 path.
func tokenExpiringSoon(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < refreshWithin
}
