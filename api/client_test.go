package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/deemkeen/plaza/domain"
	"github.com/deemkeen/plaza/store"
	"github.com/deemkeen/plaza/util"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestClient(t *testing.T, serverUrl string) *Client {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("Failed to open session store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	conf := &util.AppConfig{}
	conf.Conf.ServerUrl = serverUrl
	conf.Conf.RequestTimeoutSecs = 5

	return NewClient(conf, st)
}

// expiringToken builds a JWT whose exp claim lies the given duration in
// the future. The signature is irrelevant, the client never verifies it.
func expiringToken(t *testing.T, in time.Duration) string {
	t.Helper()

	claims := jwt.MapClaims{"exp": time.Now().Add(in).Unix(), "sub": "tester"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("Failed to build token: %v", err)
	}
	return token
}

func TestRequestHeaders(t *testing.T) {
	var gotAuth, gotRequestId, gotAccept string

	router := gin.New()
	router.GET("/ping", func(c *gin.Context) {
		gotAuth = c.GetHeader("Authorization")
		gotRequestId = c.GetHeader("X-Request-Id")
		gotAccept = c.GetHeader("Accept")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.RestoreSession(&domain.Session{Token: expiringToken(t, time.Hour)})

	if err := c.do(context.Background(), http.MethodGet, "/ping", nil, nil, nil); err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	if gotAuth == "" || gotAuth[:7] != "Bearer " {
		t.Errorf("Expected a bearer Authorization header, got '%s'", gotAuth)
	}
	if gotRequestId == "" {
		t.Error("Expected an X-Request-Id header")
	}
	if gotAccept != "application/json" {
		t.Errorf("Expected Accept 'application/json', got '%s'", gotAccept)
	}
}

func TestRetryOnceAfterRefresh(t *testing.T) {
	var dataCalls, refreshCalls int32

	router := gin.New()
	router.GET("/users", func(c *gin.Context) {
		atomic.AddInt32(&dataCalls, 1)
		if c.GetHeader("Authorization") != "Bearer new-token" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "expired"})
			return
		}
		c.JSON(http.StatusOK, []domain.User{{Id: 1, Username: "alice"}})
	})
	router.POST("/auth/refresh", func(c *gin.Context) {
		atomic.AddInt32(&refreshCalls, 1)
		c.JSON(http.StatusOK, domain.RefreshResponse{Token: "new-token", RefreshToken: "new-refresh"})
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.RestoreSession(&domain.Session{Token: "stale-token", RefreshToken: "refresh-1"})

	users, err := c.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("Expected the retried request to succeed, got %v", err)
	}
	if len(users) != 1 || users[0].Username != "alice" {
		t.Errorf("Expected [alice], got %v", users)
	}

	if n := atomic.LoadInt32(&refreshCalls); n != 1 {
		t.Errorf("Expected exactly one refresh call, got %d", n)
	}
	if n := atomic.LoadInt32(&dataCalls); n != 2 {
		t.Errorf("Expected the data request to be sent twice, got %d", n)
	}

	sess := c.Session()
	if sess == nil || sess.Token != "new-token" || sess.RefreshToken != "new-refresh" {
		t.Errorf("Expected the refreshed tokens in the session, got %+v", sess)
	}
}

func TestRetryDoesNotLoop(t *testing.T) {
	var refreshCalls int32

	router := gin.New()
	router.GET("/users", func(c *gin.Context) {
		// Unauthorized even after the refresh, e.g. a revoked account.
		c.JSON(http.StatusUnauthorized, gin.H{"message": "nope"})
	})
	router.POST("/auth/refresh", func(c *gin.Context) {
		atomic.AddInt32(&refreshCalls, 1)
		c.JSON(http.StatusOK, domain.RefreshResponse{Token: "new-token"})
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.RestoreSession(&domain.Session{Token: "stale-token", RefreshToken: "refresh-1"})

	_, err := c.ListUsers(context.Background())
	if !IsUnauthorized(err) {
		t.Fatalf("Expected an unauthorized error after the single retry, got %v", err)
	}
	if n := atomic.LoadInt32(&refreshCalls); n != 1 {
		t.Errorf("Expected exactly one refresh cycle, got %d", n)
	}
}

func TestConcurrentRequestsShareOneRefresh(t *testing.T) {
	var refreshCalls int32

	router := gin.New()
	router.GET("/users", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer new-token" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "expired"})
			return
		}
		c.JSON(http.StatusOK, []domain.User{})
	})
	router.POST("/auth/refresh", func(c *gin.Context) {
		atomic.AddInt32(&refreshCalls, 1)
		// Keep the refresh slow so all requests pile up behind it.
		time.Sleep(100 * time.Millisecond)
		c.JSON(http.StatusOK, domain.RefreshResponse{Token: "new-token"})
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.RestoreSession(&domain.Session{Token: "stale-token", RefreshToken: "refresh-1"})

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.ListUsers(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Request %d failed: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&refreshCalls); n != 1 {
		t.Errorf("Expected all requests to share one refresh, got %d", n)
	}
}

func TestRefreshFailureEndsSession(t *testing.T) {
	router := gin.New()
	router.GET("/users", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "expired"})
	})
	router.POST("/auth/refresh", func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "refresh token revoked"})
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	c.RestoreSession(&domain.Session{Token: "stale-token", RefreshToken: "refresh-1"})

	expired := false
	c.OnSessionExpired = func() { expired = true }

	if _, err := c.ListUsers(context.Background()); err == nil {
		t.Fatal("Expected an error when the refresh fails")
	}

	if !expired {
		t.Error("Expected the session-expired callback to fire")
	}
	if c.Session() != nil {
		t.Error("Expected the session to be cleared")
	}
}

func TestProactiveRefreshBeforeExpiry(t *testing.T) {
	var refreshCalls int32

	router := gin.New()
	router.GET("/users", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer new-token" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "expired"})
			return
		}
		c.JSON(http.StatusOK, []domain.User{})
	})
	router.POST("/auth/refresh", func(c *gin.Context) {
		atomic.AddInt32(&refreshCalls, 1)
		c.JSON(http.StatusOK, domain.RefreshResponse{Token: "new-token"})
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	// Expires in 10 seconds, well inside the proactive refresh window.
	c.RestoreSession(&domain.Session{Token: expiringToken(t, 10*time.Second), RefreshToken: "refresh-1"})

	if _, err := c.ListUsers(context.Background()); err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if n := atomic.LoadInt32(&refreshCalls); n != 1 {
		t.Errorf("Expected one proactive refresh, got %d", n)
	}
}

func TestTokenExpiringSoon(t *testing.T) {
	if tokenExpiringSoon("not-a-jwt") {
		t.Error("Expected an unparseable token not to trigger a refresh")
	}
	if tokenExpiringSoon(expiringToken(t, time.Hour)) {
		t.Error("Expected a long-lived token not to trigger a refresh")
	}
	if !tokenExpiringSoon(expiringToken(t, 10*time.Second)) {
		t.Error("Expected an almost-expired token to trigger a refresh")
	}
}
