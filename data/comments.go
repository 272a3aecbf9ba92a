package data

import (
	"context"
	"strconv"
	"time"

	"github.com/deemkeen/plaza/api"
	"github.com/deemkeen/plaza/cache"
	"github.com/deemkeen/plaza/domain"
)

// Comments serves per-post comment threads. Threads load lazily:
// nothing is fetched until a post's comment panel opens.
type Comments struct {
	cache  *cache.Cache
	client *api.Client
}

func commentsKey(postId int64) cache.Key {
	return cache.NewKey("comments", strconv.FormatInt(postId, 10))
}

// Refresh marks a post's cached thread stale.
func (c *Comments) Refresh(postId int64) {
	c.cache.Invalidate(commentsKey(postId))
}

func (c *Comments) ForPost(ctx context.Context, postId int64) ([]domain.Comment, error) {
	q := cache.NewQuery(c.cache, commentsKey(postId), func(ctx context.Context) ([]domain.Comment, error) {
		return c.client.ListComments(ctx, postId)
	})
	return q.Get(ctx)
}

// Add appends a comment to a post's thread, optimistically visible at
// the tail until the server confirms it.
func (c *Comments) Add(ctx context.Context, postId int64, author domain.User, text string) (domain.Comment, error) {
	placeholder := domain.Comment{
		Id:          cache.NextPlaceholderId(),
		CommentText: text,
		Timestamp:   time.Now(),
		User: domain.CommentAuthor{
			Id:          author.Id,
			Username:    author.Username,
			DisplayName: author.DisplayName,
		},
	}

	return cache.Run(ctx, cache.Mutation[domain.Comment]{
		Cache:    c.cache,
		Prefixes: []cache.Key{commentsKey(postId)},
		Optimistic: func(key cache.Key, value any) any {
			return domain.AppendComment(value.([]domain.Comment), placeholder)
		},
		Call: func(ctx context.Context) (domain.Comment, error) {
			return c.client.CreateComment(ctx, postId, domain.CommentRequest{
				CommentText: text,
				UserId:      author.Id,
			})
		},
		Reconcile: func(created domain.Comment, key cache.Key, value any) any {
			return domain.ReplaceComment(value.([]domain.Comment), placeholder.Id, created)
		},
		InvalidateAfter: true,
	})
}
