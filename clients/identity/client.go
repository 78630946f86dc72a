// Package identity implements the HTTP client for the external identity
// provider. The provider owns the authentication protocol; this client only
// consumes its session endpoints and maps issued tokens into session
// snapshots. Tokens are parsed for their claims only: signature verification
// is the provider's concern, performed before a token is ever issued to us.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/finverse/accessgate/models"
)

var (
	// ErrNoSession is returned when the provider has no recoverable session
	ErrNoSession = errors.New("no recoverable session")

	// ErrSessionRejected is returned when the provider rejects a refresh
	// (revoked or expired session)
	ErrSessionRejected = errors.New("session rejected by identity provider")

	// ErrInvalidToken is returned when an issued token cannot be parsed
	// into a valid session
	ErrInvalidToken = errors.New("invalid session token")
)

// Credentials carries a sign-in request to the provider
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionClaims are the JWT claims the provider embeds in session tokens
type sessionClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// tokenResponse is the provider's session endpoint payload
type tokenResponse struct {
	Token string `json:"token"`
}

// Client talks to the identity provider over HTTP. It retains the current
// session token as the transport credential for refresh and sign-out calls;
// the token is not authorization state and is cleared on sign-out.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

// NewClient creates a new identity provider client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// RecoverSession asks the provider for the current session, if any.
// Returns ErrNoSession when the provider has nothing to recover.
func (c *Client) RecoverSession(ctx context.Context) (models.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/session", nil)
	if err != nil {
		return models.Session{}, fmt.Errorf("create recover request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Session{}, fmt.Errorf("recover session: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return c.sessionFromResponse(resp.Body)
	case http.StatusNotFound, http.StatusUnauthorized:
		return models.Session{}, ErrNoSession
	default:
		return models.Session{}, fmt.Errorf("recover session: unexpected status %d", resp.StatusCode)
	}
}

// SignIn exchanges credentials for a new session
func (c *Client) SignIn(ctx context.Context, creds Credentials) (models.Session, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return models.Session{}, fmt.Errorf("encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/session", bytes.NewReader(body))
	if err != nil {
		return models.Session{}, fmt.Errorf("create sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Session{}, fmt.Errorf("sign in: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return c.sessionFromResponse(resp.Body)
	case http.StatusUnauthorized, http.StatusForbidden:
		return models.Session{}, ErrSessionRejected
	default:
		return models.Session{}, fmt.Errorf("sign in: unexpected status %d", resp.StatusCode)
	}
}

// RefreshSession re-validates the current session with the provider.
// Returns ErrSessionRejected when the provider revokes it.
func (c *Client) RefreshSession(ctx context.Context, _ models.Session) (models.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/session/refresh", nil)
	if err != nil {
		return models.Session{}, fmt.Errorf("create refresh request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Session{}, fmt.Errorf("refresh session: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return c.sessionFromResponse(resp.Body)
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		c.setToken("")
		return models.Session{}, ErrSessionRejected
	default:
		return models.Session{}, fmt.Errorf("refresh session: unexpected status %d", resp.StatusCode)
	}
}

// SignOut invalidates the session with the provider. Best effort: the local
// token is cleared regardless of the provider's answer.
func (c *Client) SignOut(ctx context.Context, _ models.Session) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/session", nil)
	if err != nil {
		return fmt.Errorf("create sign-out request: %w", err)
	}
	c.authorize(req)
	c.setToken("")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("sign out: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// sessionFromResponse decodes a token payload and parses it into a Session
func (c *Client) sessionFromResponse(body io.Reader) (models.Session, error) {
	var tr tokenResponse
	if err := json.NewDecoder(body).Decode(&tr); err != nil {
		return models.Session{}, fmt.Errorf("decode token response: %w", err)
	}
	if tr.Token == "" {
		return models.Session{}, ErrInvalidToken
	}

	sess, err := parseSessionToken(tr.Token)
	if err != nil {
		return models.Session{}, err
	}

	c.setToken(tr.Token)
	return sess, nil
}

// parseSessionToken extracts session fields from the provider's JWT claims.
// Unknown roles and missing claims fail the parse rather than defaulting
// to any access.
func parseSessionToken(token string) (models.Session, error) {
	claims := &sessionClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}

	role, ok := models.ParseRole(claims.Role)
	if !ok {
		return models.Session{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, claims.Role)
	}

	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return models.Session{}, fmt.Errorf("%w: missing validity window", ErrInvalidToken)
	}

	return models.NewSession(userID, role, claims.IssuedAt.Time, claims.ExpiresAt.Time), nil
}

func (c *Client) authorize(req *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}
