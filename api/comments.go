package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/deemkeen/plaza/domain"
)

func (c *Client) ListComments(ctx context.Context, postId int64) ([]domain.Comment, error) {
	var comments []domain.Comment
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/posts/%d/comments", postId), nil, nil, &comments)
	return comments, err
}

func (c *Client) CreateComment(ctx context.Context, postId int64, req domain.CommentRequest) (domain.Comment, error) {
	var comment domain.Comment
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/posts/%d/comments", postId), nil, req, &comment)
	return comment, err
}
