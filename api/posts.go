package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/deemkeen/plaza/domain"
)

// ListPosts fetches one page of posts, newest first. A userId > 0
// narrows the listing to that user's wall. Some deployments answer
// with a bare array instead of the pagination envelope, both shapes
// are accepted.
func (c *Client) ListPosts(ctx context.Context, page, size int, userId int64) (domain.Page[domain.Post], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))
	query.Set("sort", "createdAt,desc")
	if userId > 0 {
		query.Set("userId", strconv.FormatInt(userId, 10))
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/posts", query, nil, &raw); err != nil {
		return domain.EmptyPage[domain.Post](page, size), err
	}

	return decodePostPage(raw, page, size)
}

func decodePostPage(raw json.RawMessage, page, size int) (domain.Page[domain.Post], error) {
	if len(raw) > 0 && raw[0] == '[' {
		var posts []domain.Post
		if err := json.Unmarshal(raw, &posts); err != nil {
			return domain.EmptyPage[domain.Post](page, size), fmt.Errorf("failed to decode post list: %w", err)
		}
		return domain.Page[domain.Post]{
			Content:       posts,
			TotalPages:    1,
			TotalElements: len(posts),
			Number:        page,
			Size:          size,
			First:         page == 0,
			Last:          true,
		}, nil
	}

	var envelope domain.Page[domain.Post]
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return domain.EmptyPage[domain.Post](page, size), fmt.Errorf("failed to decode post page: %w", err)
	}
	if envelope.Content == nil {
		envelope.Content = []domain.Post{}
	}
	if envelope.Size == 0 {
		envelope.Size = size
	}
	return envelope, nil
}

func (c *Client) CreatePost(ctx context.Context, req domain.PostRequest) (domain.Post, error) {
	var post domain.Post
	err := c.do(ctx, http.MethodPost, "/posts", nil, req, &post)
	return post, err
}

func (c *Client) UpdatePost(ctx context.Context, id int64, req domain.PostRequest) (domain.Post, error) {
	var post domain.Post
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/posts/%d", id), nil, req, &post)
	return post, err
}

func (c *Client) DeletePost(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil, nil, nil)
}
