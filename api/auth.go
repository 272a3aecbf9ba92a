package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/deemkeen/plaza/domain"
)

// Login exchanges credentials for a token pair, resolves the full user
// record and persists the resulting session.
func (c *Client) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	var resp domain.LoginResponse
	err := c.do(ctx, http.MethodPost, "/users/login", nil, domain.LoginRequest{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Token == "" {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "invalid credentials"}
	}

	c.mu.Lock()
	c.session = &domain.Session{Token: resp.Token, RefreshToken: resp.RefreshToken}
	c.mu.Unlock()

	// The login answer carries no user record, resolve it from the
	// user list by the name we logged in with.
	users, err := c.ListUsers(ctx)
	if err != nil {
		c.mu.Lock()
		c.session = nil
		c.mu.Unlock()
		return nil, fmt.Errorf("failed to resolve logged-in user: %w", err)
	}

	var found *domain.User
	for i := range users {
		if users[i].Username == username {
			found = &users[i]
			break
		}
	}
	if found == nil {
		c.mu.Lock()
		c.session = nil
		c.mu.Unlock()
		return nil, fmt.Errorf("logged-in user %q not present on the server", username)
	}

	c.mu.Lock()
	c.session.User = *found
	sess := *c.session
	c.mu.Unlock()

	if err := c.store.Save(sess); err != nil {
		log.Printf("Failed to persist session: %v", err)
	}

	return &sess, nil
}

// Register creates a new account. The caller logs in afterwards.
func (c *Client) Register(ctx context.Context, req domain.UserRequest) (domain.User, error) {
	var user domain.User
	err := c.do(ctx, http.MethodPost, "/users/", nil, req, &user)
	return user, err
}
