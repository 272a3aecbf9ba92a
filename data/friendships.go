package data

import (
	"context"
	"strconv"
	"time"

	"github.com/deemkeen/plaza/api"
	"github.com/deemkeen/plaza/cache"
	"github.com/deemkeen/plaza/domain"
)

// Friendships serves the per-user friendship collections. Friend and
// pending state are always derived from these lists with the pure
// functions in domain, never cached separately.
type Friendships struct {
	cache  *cache.Cache
	client *api.Client
}

func friendshipsKey(userId int64) cache.Key {
	return cache.NewKey("friendships", strconv.FormatInt(userId, 10))
}

// Refresh marks a user's cached friendship collection stale.
func (f *Friendships) Refresh(userId int64) {
	f.cache.Invalidate(friendshipsKey(userId))
}

// ForUser returns the full friendship collection of a user, any status.
func (f *Friendships) ForUser(ctx context.Context, userId int64) ([]domain.Friendship, error) {
	q := cache.NewQuery(f.cache, friendshipsKey(userId), func(ctx context.Context) ([]domain.Friendship, error) {
		return f.client.ListFriendships(ctx, userId)
	})
	return q.Get(ctx)
}

// Request sends a friend request. Both endpoints' collections get an
// optimistic PENDING record; callers guard against duplicates with
// domain.HasOpenFriendship before dispatching.
func (f *Friendships) Request(ctx context.Context, requester, addressee domain.User) (domain.Friendship, error) {
	placeholder := domain.Friendship{
		Id:        cache.NextPlaceholderId(),
		Requester: requester,
		Addressee: addressee,
		Status:    domain.FriendshipPending,
		CreatedAt: time.Now(),
	}

	return cache.Run(ctx, cache.Mutation[domain.Friendship]{
		Cache:    f.cache,
		Prefixes: []cache.Key{friendshipsKey(requester.Id), friendshipsKey(addressee.Id)},
		Optimistic: func(key cache.Key, value any) any {
			return domain.AppendFriendship(value.([]domain.Friendship), placeholder)
		},
		Call: func(ctx context.Context) (domain.Friendship, error) {
			return f.client.CreateFriendship(ctx, domain.FriendshipRequest{
				RequesterUserId: requester.Id,
				AddresseeUserId: addressee.Id,
			})
		},
		Reconcile: func(created domain.Friendship, key cache.Key, value any) any {
			return domain.ReplaceFriendship(value.([]domain.Friendship), placeholder.Id, created)
		},
		InvalidateAfter: true,
	})
}

// Accept confirms an incoming request, flipping its status
// optimistically in both endpoints' collections.
func (f *Friendships) Accept(ctx context.Context, friendship domain.Friendship) (domain.Friendship, error) {
	return f.setStatus(ctx, friendship, domain.FriendshipAccepted, f.client.AcceptFriendship)
}

// Reject declines an incoming request.
func (f *Friendships) Reject(ctx context.Context, friendship domain.Friendship) (domain.Friendship, error) {
	return f.setStatus(ctx, friendship, domain.FriendshipRejected, f.client.RejectFriendship)
}

func (f *Friendships) setStatus(
	ctx context.Context,
	friendship domain.Friendship,
	status domain.FriendshipStatus,
	call func(context.Context, int64) (domain.Friendship, error),
) (domain.Friendship, error) {
	return cache.Run(ctx, cache.Mutation[domain.Friendship]{
		Cache: f.cache,
		Prefixes: []cache.Key{
			friendshipsKey(friendship.Requester.Id),
			friendshipsKey(friendship.Addressee.Id),
		},
		Optimistic: func(key cache.Key, value any) any {
			return domain.SetFriendshipStatus(value.([]domain.Friendship), friendship.Id, status)
		},
		Call: func(ctx context.Context) (domain.Friendship, error) {
			return call(ctx, friendship.Id)
		},
		Reconcile: func(updated domain.Friendship, key cache.Key, value any) any {
			return domain.ReplaceFriendship(value.([]domain.Friendship), friendship.Id, updated)
		},
		InvalidateAfter: true,
	})
}
