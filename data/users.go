package data

import (
	"context"
	"net/http"
	"strconv"

	"github.com/deemkeen/plaza/api"
	"github.com/deemkeen/plaza/cache"
	"github.com/deemkeen/plaza/domain"
)

// Users serves user records and the profile operations bound to them.
type Users struct {
	cache  *cache.Cache
	client *api.Client
}

func usersKey() cache.Key {
	return cache.NewKey("users")
}

func userKey(id int64) cache.Key {
	return cache.NewKey("user", strconv.FormatInt(id, 10))
}

func (u *Users) All(ctx context.Context) ([]domain.User, error) {
	q := cache.NewQuery(u.cache, usersKey(), func(ctx context.Context) ([]domain.User, error) {
		return u.client.ListUsers(ctx)
	})
	return q.Get(ctx)
}

func (u *Users) ById(ctx context.Context, id int64) (domain.User, error) {
	q := cache.NewQuery(u.cache, userKey(id), func(ctx context.Context) (domain.User, error) {
		return u.client.GetUser(ctx, id)
	})
	return q.Get(ctx)
}

// ByUsername scans the user list; the backend has no lookup by name.
func (u *Users) ByUsername(ctx context.Context, username string) (domain.User, error) {
	users, err := u.All(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for i := range users {
		if users[i].Username == username {
			return users[i], nil
		}
	}
	return domain.User{}, &api.Error{Status: http.StatusNotFound, Message: "user " + username + " not found"}
}

// UpdateProfile saves profile changes and refreshes the session
// snapshot with the confirmed record.
func (u *Users) UpdateProfile(ctx context.Context, id int64, req domain.UserRequest) (domain.User, error) {
	updated, err := cache.Run(ctx, cache.Mutation[domain.User]{
		Cache:    u.cache,
		Prefixes: []cache.Key{userKey(id), usersKey()},
		Call: func(ctx context.Context) (domain.User, error) {
			return u.client.UpdateUser(ctx, id, req)
		},
		Reconcile: func(user domain.User, key cache.Key, value any) any {
			if list, ok := value.([]domain.User); ok {
				out := make([]domain.User, len(list))
				for i, existing := range list {
					if existing.Id == user.Id {
						out[i] = user
					} else {
						out[i] = existing
					}
				}
				return out
			}
			return user
		},
		InvalidateAfter: true,
	})
	if err != nil {
		return domain.User{}, err
	}

	if sess := u.client.Session(); sess != nil && sess.User.Id == updated.Id {
		u.client.UpdateSessionUser(updated)
	}
	return updated, nil
}

// DeleteAccount removes the logged-in user's account and ends the
// session.
func (u *Users) DeleteAccount(ctx context.Context, id int64) error {
	sess := u.client.Session()
	if sess == nil {
		return api.ErrNoSession
	}
	if sess.User.Id != id {
		return &api.Error{Status: http.StatusForbidden, Message: "only the own account can be deleted"}
	}

	if err := u.client.DeleteUser(ctx, id); err != nil {
		return err
	}

	u.client.Logout()
	return nil
}
