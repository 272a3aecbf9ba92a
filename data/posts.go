package data

import (
	"context"
	"strconv"
	"time"

	"github.com/deemkeen/plaza/api"
	"github.com/deemkeen/plaza/cache"
	"github.com/deemkeen/plaza/domain"
)

// Posts serves the feed and the per-user walls. A post can sit in
// several cache entries at once (a feed page and its author's wall
// page hold independent copies), so every write fans out over both
// key prefixes.
type Posts struct {
	cache    *cache.Cache
	client   *api.Client
	pageSize int
}

func feedKey(page int) cache.Key {
	return cache.NewKey("posts", "feed", strconv.Itoa(page))
}

func wallKey(userId int64, page int) cache.Key {
	return cache.NewKey("posts", "user", strconv.FormatInt(userId, 10), strconv.Itoa(page))
}

func feedPrefix() cache.Key {
	return cache.NewKey("posts", "feed")
}

func wallPrefix(userId int64) cache.Key {
	return cache.NewKey("posts", "user", strconv.FormatInt(userId, 10))
}

func (p *Posts) PageSize() int {
	return p.pageSize
}

// RefreshFeed marks every cached feed page stale so the next read hits
// the server.
func (p *Posts) RefreshFeed() {
	p.cache.InvalidatePrefix(feedPrefix())
}

// RefreshWall marks a user's cached wall pages stale.
func (p *Posts) RefreshWall(userId int64) {
	p.cache.InvalidatePrefix(wallPrefix(userId))
}

// FeedPage returns one page of the chronological feed, cached by page
// number.
func (p *Posts) FeedPage(ctx context.Context, page int) (domain.Page[domain.Post], error) {
	q := cache.NewQuery(p.cache, feedKey(page), func(ctx context.Context) (domain.Page[domain.Post], error) {
		return p.client.ListPosts(ctx, page, p.pageSize, 0)
	})
	return q.Get(ctx)
}

// WallPage returns one page of a user's wall.
func (p *Posts) WallPage(ctx context.Context, userId int64, page int) (domain.Page[domain.Post], error) {
	q := cache.NewQuery(p.cache, wallKey(userId, page), func(ctx context.Context) (domain.Page[domain.Post], error) {
		return p.client.ListPosts(ctx, page, p.pageSize, userId)
	})
	return q.Get(ctx)
}

// Create posts new content. The optimistic placeholder lands at the
// head of the first feed page and the first page of the author's wall;
// reconciliation swaps it in place for the server post.
func (p *Posts) Create(ctx context.Context, author domain.User, content string) (domain.Post, error) {
	now := time.Now()
	placeholder := domain.Post{
		Id:        cache.NextPlaceholderId(),
		Content:   content,
		Author:    author,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return cache.Run(ctx, cache.Mutation[domain.Post]{
		Cache:    p.cache,
		Prefixes: []cache.Key{feedPrefix(), wallPrefix(author.Id)},
		Optimistic: func(key cache.Key, value any) any {
			page := value.(domain.Page[domain.Post])
			if page.Number != 0 {
				// New posts only surface on the first page.
				return page
			}
			return domain.PrependPost(page, placeholder)
		},
		Call: func(ctx context.Context) (domain.Post, error) {
			return p.client.CreatePost(ctx, domain.PostRequest{Content: content, UserId: author.Id})
		},
		Reconcile: func(created domain.Post, key cache.Key, value any) any {
			return domain.ReplacePost(value.(domain.Page[domain.Post]), placeholder.Id, created)
		},
		InvalidateAfter: true,
	})
}

// Edit rewrites a post's content everywhere it appears.
func (p *Posts) Edit(ctx context.Context, post domain.Post, content string) (domain.Post, error) {
	edited := post
	edited.Content = content
	edited.UpdatedAt = time.Now()

	return cache.Run(ctx, cache.Mutation[domain.Post]{
		Cache:    p.cache,
		Prefixes: []cache.Key{feedPrefix(), wallPrefix(post.Author.Id)},
		Optimistic: func(key cache.Key, value any) any {
			return domain.ReplacePost(value.(domain.Page[domain.Post]), post.Id, edited)
		},
		Call: func(ctx context.Context) (domain.Post, error) {
			return p.client.UpdatePost(ctx, post.Id, domain.PostRequest{Content: content, UserId: post.Author.Id})
		},
		Reconcile: func(updated domain.Post, key cache.Key, value any) any {
			return domain.ReplacePost(value.(domain.Page[domain.Post]), post.Id, updated)
		},
		InvalidateAfter: true,
	})
}

// Delete removes a post from every entry that holds it, keeping the
// pagination totals in step.
func (p *Posts) Delete(ctx context.Context, post domain.Post) error {
	_, err := cache.Run(ctx, cache.Mutation[struct{}]{
		Cache:    p.cache,
		Prefixes: []cache.Key{feedPrefix(), wallPrefix(post.Author.Id)},
		Optimistic: func(key cache.Key, value any) any {
			return domain.RemovePost(value.(domain.Page[domain.Post]), post.Id)
		},
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, p.client.DeletePost(ctx, post.Id)
		},
		InvalidateAfter: true,
	})
	return err
}
