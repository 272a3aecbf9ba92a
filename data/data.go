// Package data binds the keyed cache to the backend services: one
// typed store per entity kind, each defining its query keys and its
// optimistic mutations exactly once. Views talk to these stores and
// never to the cache or the HTTP client directly.
package data

import (
	"github.com/deemkeen/plaza/api"
	"github.com/deemkeen/plaza/cache"
)

// Stores is the explicit context handed to every view that needs
// data access.
type Stores struct {
	Posts       *Posts
	Friendships *Friendships
	Comments    *Comments
	Users       *Users
}

func NewStores(client *api.Client, pageSize int) *Stores {
	c := cache.New()
	return &Stores{
		Posts:       &Posts{cache: c, client: client, pageSize: pageSize},
		Friendships: &Friendships{cache: c, client: client},
		Comments:    &Comments{cache: c, client: client},
		Users:       &Users{cache: c, client: client},
	}
}
