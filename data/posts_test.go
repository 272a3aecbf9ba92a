package data

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/deemkeen/plaza/api"
	"github.com/deemkeen/plaza/cache"
	"github.com/deemkeen/plaza/domain"
	"github.com/deemkeen/plaza/store"
	"github.com/deemkeen/plaza/util"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	alice = domain.User{Id: 1, Username: "alice"}
	bob   = domain.User{Id: 2, Username: "bob"}
)

func newTestStores(t *testing.T, router *gin.Engine) *Stores {
	t.Helper()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	st, err := store.Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("Failed to open session store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	conf := &util.AppConfig{}
	conf.Conf.ServerUrl = srv.URL
	conf.Conf.RequestTimeoutSecs = 5

	client := api.NewClient(conf, st)
	client.RestoreSession(&domain.Session{Token: "token-1", User: alice})

	return NewStores(client, 10)
}

func feedPageOf(posts ...domain.Post) domain.Page[domain.Post] {
	return domain.Page[domain.Post]{
		Content:       posts,
		TotalPages:    1,
		TotalElements: len(posts),
		Number:        0,
		Size:          10,
		First:         true,
		Last:          true,
	}
}

func postsRouter(onCreate func()) *gin.Engine {
	router := gin.New()
	router.GET("/posts", func(c *gin.Context) {
		if c.Query("userId") != "" {
			c.JSON(http.StatusOK, feedPageOf(domain.Post{Id: 100, Content: "mine", Author: alice}))
			return
		}
		c.JSON(http.StatusOK, feedPageOf(
			domain.Post{Id: 101, Content: "hello", Author: bob},
			domain.Post{Id: 100, Content: "mine", Author: alice},
		))
	})
	router.POST("/posts", func(c *gin.Context) {
		if onCreate != nil {
			onCreate()
		}
		var req domain.PostRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "bad request"})
			return
		}
		c.JSON(http.StatusCreated, domain.Post{
			Id:        200,
			Content:   req.Content,
			Author:    alice,
			CreatedAt: time.Now(),
		})
	})
	return router
}

func TestCreateShowsPlaceholderThenReconciles(t *testing.T) {
	var s *Stores
	placeholderSeen := false

	router := postsRouter(func() {
		// While the create call is in flight, the optimistic post must
		// already sit at the head of the feed and of alice's wall.
		for _, key := range []cache.Key{feedKey(0), wallKey(alice.Id, 0)} {
			v, ok := s.Posts.cache.Peek(key)
			if !ok {
				t.Errorf("Expected entry %s to exist during the call", key)
				return
			}
			page := v.(domain.Page[domain.Post])
			if len(page.Content) == 0 || !cache.IsPlaceholderId(page.Content[0].Id) {
				t.Errorf("Expected a placeholder at the head of %s, got %v", key, page.Content)
				return
			}
		}
		placeholderSeen = true
	})
	s = newTestStores(t, router)

	ctx := context.Background()
	if _, err := s.Posts.FeedPage(ctx, 0); err != nil {
		t.Fatalf("FeedPage failed: %v", err)
	}
	if _, err := s.Posts.WallPage(ctx, alice.Id, 0); err != nil {
		t.Fatalf("WallPage failed: %v", err)
	}

	created, err := s.Posts.Create(ctx, alice, "fresh post")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !placeholderSeen {
		t.Error("Expected the optimistic placeholder during the call")
	}
	if created.Id != 200 {
		t.Errorf("Expected the server post back, got %+v", created)
	}

	// After reconciliation the placeholder is replaced in place, never
	// duplicated, in both collections.
	for _, key := range []cache.Key{feedKey(0), wallKey(alice.Id, 0)} {
		v, _ := s.Posts.cache.Peek(key)
		page := v.(domain.Page[domain.Post])
		if !domain.ContainsPost(page, 200) {
			t.Errorf("Expected post 200 in %s, got %v", key, page.Content)
		}
		for _, p := range page.Content {
			if cache.IsPlaceholderId(p.Id) {
				t.Errorf("Expected no placeholder left in %s, got %v", key, page.Content)
			}
		}
	}
}

func TestCreateFailureRollsBackBothCollections(t *testing.T) {
	router := gin.New()
	router.GET("/posts", func(c *gin.Context) {
		c.JSON(http.StatusOK, feedPageOf(domain.Post{Id: 100, Content: "mine", Author: alice}))
	})
	router.POST("/posts", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "boom"})
	})
	s := newTestStores(t, router)

	ctx := context.Background()
	before, err := s.Posts.FeedPage(ctx, 0)
	if err != nil {
		t.Fatalf("FeedPage failed: %v", err)
	}
	if _, err := s.Posts.WallPage(ctx, alice.Id, 0); err != nil {
		t.Fatalf("WallPage failed: %v", err)
	}

	if _, err := s.Posts.Create(ctx, alice, "doomed"); err == nil {
		t.Fatal("Expected the create to fail")
	}

	for _, key := range []cache.Key{feedKey(0), wallKey(alice.Id, 0)} {
		v, ok := s.Posts.cache.Peek(key)
		if !ok {
			t.Fatalf("Expected entry %s to survive the rollback", key)
		}
		page := v.(domain.Page[domain.Post])
		if len(page.Content) != len(before.Content) {
			t.Errorf("Entry %s: expected %d posts after rollback, got %d", key, len(before.Content), len(page.Content))
		}
		for _, p := range page.Content {
			if cache.IsPlaceholderId(p.Id) {
				t.Errorf("Entry %s: expected no placeholder after rollback, got %v", key, page.Content)
			}
		}
		if page.TotalElements != before.TotalElements {
			t.Errorf("Entry %s: expected totalElements %d, got %d", key, before.TotalElements, page.TotalElements)
		}
	}
}

func TestDeleteRemovesFromEveryCollection(t *testing.T) {
	router := postsRouter(nil)
	router.DELETE("/posts/:id", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	s := newTestStores(t, router)

	ctx := context.Background()
	feedBefore, err := s.Posts.FeedPage(ctx, 0)
	if err != nil {
		t.Fatalf("FeedPage failed: %v", err)
	}
	if _, err := s.Posts.WallPage(ctx, alice.Id, 0); err != nil {
		t.Fatalf("WallPage failed: %v", err)
	}

	mine := domain.Post{Id: 100, Author: alice}
	if err := s.Posts.Delete(ctx, mine); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	for _, key := range []cache.Key{feedKey(0), wallKey(alice.Id, 0)} {
		v, _ := s.Posts.cache.Peek(key)
		page := v.(domain.Page[domain.Post])
		if domain.ContainsPost(page, 100) {
			t.Errorf("Expected post 100 gone from %s, got %v", key, page.Content)
		}
	}

	v, _ := s.Posts.cache.Peek(feedKey(0))
	if got := v.(domain.Page[domain.Post]).TotalElements; got != feedBefore.TotalElements-1 {
		t.Errorf("Expected totalElements %d, got %d", feedBefore.TotalElements-1, got)
	}
}

func TestCreateOnlyTouchesFirstPage(t *testing.T) {
	router := postsRouter(nil)
	s := newTestStores(t, router)

	// Seed a later feed page by hand; new posts must not land on it.
	page1 := feedPageOf(domain.Post{Id: 50, Author: bob})
	page1.Number = 1
	s.Posts.cache.Set(feedKey(1), page1)

	ctx := context.Background()
	if _, err := s.Posts.FeedPage(ctx, 0); err != nil {
		t.Fatalf("FeedPage failed: %v", err)
	}

	if _, err := s.Posts.Create(ctx, alice, "head only"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	v, _ := s.Posts.cache.Peek(feedKey(1))
	got := v.(domain.Page[domain.Post])
	if len(got.Content) != 1 || got.Content[0].Id != 50 {
		t.Errorf("Expected page 1 content untouched, got %v", got.Content)
	}
}
