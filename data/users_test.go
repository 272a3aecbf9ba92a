package data

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/deemkeen/plaza/api"
	"github.com/deemkeen/plaza/domain"
)

func usersRouter(deleted *bool) *gin.Engine {
	router := gin.New()
	router.GET("/users", func(c *gin.Context) {
		c.JSON(http.StatusOK, []domain.User{alice, bob})
	})
	router.PUT("/users/:id", func(c *gin.Context) {
		var req domain.UserRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "bad request"})
			return
		}
		updated := alice
		updated.DisplayName = req.DisplayName
		updated.Bio = req.Bio
		updated.Email = req.Email
		c.JSON(http.StatusOK, updated)
	})
	router.DELETE("/users/:id", func(c *gin.Context) {
		if deleted != nil {
			*deleted = true
		}
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestByUsername(t *testing.T) {
	s := newTestStores(t, usersRouter(nil))
	ctx := context.Background()

	user, err := s.Users.ByUsername(ctx, bob.Username)
	if err != nil {
		t.Fatalf("ByUsername failed: %v", err)
	}
	if user.Id != bob.Id {
		t.Errorf("Expected user %d, got %d", bob.Id, user.Id)
	}

	_, err = s.Users.ByUsername(ctx, "nobody")
	if !api.IsNotFound(err) {
		t.Errorf("Expected a not-found error, got %v", err)
	}
}

func TestUpdateProfileSyncsSession(t *testing.T) {
	s := newTestStores(t, usersRouter(nil))
	ctx := context.Background()

	updated, err := s.Users.UpdateProfile(ctx, alice.Id, domain.UserRequest{
		Username:    alice.Username,
		Email:       "new@example.com",
		DisplayName: "Alice Prime",
	})
	if err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if updated.DisplayName != "Alice Prime" {
		t.Errorf("Expected the confirmed display name, got %q", updated.DisplayName)
	}

	sess := s.Users.client.Session()
	if sess == nil {
		t.Fatal("Expected the session to survive a profile update")
	}
	if sess.User.DisplayName != "Alice Prime" {
		t.Errorf("Expected the session user to carry the update, got %q", sess.User.DisplayName)
	}
}

func TestDeleteAccountRefusesForeignId(t *testing.T) {
	var deleted bool
	s := newTestStores(t, usersRouter(&deleted))
	ctx := context.Background()

	err := s.Users.DeleteAccount(ctx, bob.Id)
	if err == nil {
		t.Fatal("Expected an error when deleting a foreign account")
	}
	if deleted {
		t.Error("Expected no delete call for a foreign account")
	}
	if s.Users.client.Session() == nil {
		t.Error("Expected the session to survive a refused delete")
	}
}

func TestDeleteAccountEndsSession(t *testing.T) {
	var deleted bool
	s := newTestStores(t, usersRouter(&deleted))
	ctx := context.Background()

	if err := s.Users.DeleteAccount(ctx, alice.Id); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}
	if !deleted {
		t.Error("Expected the backend delete to be called")
	}
	if s.Users.client.Session() != nil {
		t.Error("Expected no session after account deletion")
	}
}
