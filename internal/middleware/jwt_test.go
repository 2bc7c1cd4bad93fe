package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/campusworks/review-portal/internal/config"
	"github.com/campusworks/review-portal/internal/model"
	"github.com/campusworks/review-portal/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func newTestAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour, BcryptCost: 4}
	return service.NewAuthService(cfg, rdb)
}

func tokenFor(t *testing.T, auth *service.AuthService, role model.Role) string {
	t.Helper()
	token, err := auth.GenerateToken(context.Background(), &model.User{
		ID:    7,
		Email: "panel@example.com",
		Role:  role,
	})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

// adminRouter registers one admin-only route and reports whether its
// handler actually executed.
func adminRouter(auth *service.AuthService, ran *bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.DELETE("/users/:id", RequireAdmin(auth), func(c *gin.Context) {
		*ran = true
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	})
	return r
}

func TestRequireAdminBlocksEvaluator(t *testing.T) {
	auth := newTestAuthService(t)
	token := tokenFor(t, auth, model.RoleEvaluator)

	ran := false
	r := adminRouter(auth, &ran)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/users/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if ran {
		t.Fatal("admin-only handler executed for an evaluator token")
	}
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d. Body: %s", w.Code, http.StatusForbidden, w.Body.String())
	}
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	auth := newTestAuthService(t)
	token := tokenFor(t, auth, model.RoleAdmin)

	ran := false
	r := adminRouter(auth, &ran)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/users/1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	if !ran {
		t.Fatal("admin handler did not execute for an admin token")
	}
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d. Body: %s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestRequireAdminRejectsMissingToken(t *testing.T) {
	auth := newTestAuthService(t)

	ran := false
	r := adminRouter(auth, &ran)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/users/1", nil))

	if ran {
		t.Fatal("admin handler executed without a token")
	}
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestRequireAuthNewerLoginInvalidatesOlderToken(t *testing.T) {
	auth := newTestAuthService(t)
	oldToken := tokenFor(t, auth, model.RoleEvaluator)
	tokenFor(t, auth, model.RoleEvaluator) // second login overwrites the session

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireAuth(auth), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+oldToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
