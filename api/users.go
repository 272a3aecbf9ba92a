package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/deemkeen/plaza/domain"
)

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := c.do(ctx, http.MethodGet, "/users", nil, nil, &users)
	return users, err
}

func (c *Client) GetUser(ctx context.Context, id int64) (domain.User, error) {
	var user domain.User
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, nil, &user)
	return user, err
}

func (c *Client) UpdateUser(ctx context.Context, id int64, req domain.UserRequest) (domain.User, error) {
	var user domain.User
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), nil, req, &user)
	return user, err
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil, nil)
}

func (c *Client) GetFriends(ctx context.Context, id int64) ([]domain.User, error) {
	var users []domain.User
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d/friends", id), nil, nil, &users)
	return users, err
}
