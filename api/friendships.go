package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/deemkeen/plaza/domain"
)

func (c *Client) ListFriendships(ctx context.Context, userId int64) ([]domain.Friendship, error) {
	var friendships []domain.Friendship
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/friendships/%d", userId), nil, nil, &friendships)
	return friendships, err
}

func (c *Client) CreateFriendship(ctx context.Context, req domain.FriendshipRequest) (domain.Friendship, error) {
	var friendship domain.Friendship
	err := c.do(ctx, http.MethodPost, "/friendships", nil, req, &friendship)
	return friendship, err
}

func (c *Client) AcceptFriendship(ctx context.Context, id int64) (domain.Friendship, error) {
	var friendship domain.Friendship
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/friendships/%d/accept", id), nil, nil, &friendship)
	return friendship, err
}

func (c *Client) RejectFriendship(ctx context.Context, id int64) (domain.Friendship, error) {
	var friendship domain.Friendship
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/friendships/%d/reject", id), nil, nil, &friendship)
	return friendship, err
}
