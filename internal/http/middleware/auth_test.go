// README: Tests for auth middleware, role resolution and the access gate.
package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"vtc/internal/http/middleware"
	"vtc/internal/infra"
	"vtc/internal/modules/access"
	"vtc/internal/modules/role"
	"vtc/internal/testutil"
)

// stubVerifier is a test double for infra.TokenVerifier.
type stubVerifier struct {
	token *infra.Token
	err   error
}

func (s *stubVerifier) VerifyIDToken(_ context.Context, _ string) (*infra.Token, error) {
	return s.token, s.err
}

type failingResolver struct{}

func (failingResolver) Effective(context.Context, string, []string) (role.Role, error) {
	return "", errors.New("db down")
}

func newTestRouter(verifier infra.TokenVerifier, roles middleware.RoleResolver) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Auth(verifier, roles))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": middleware.CallerUID(c), "role": middleware.CallerRole(c)})
	})
	r.POST("/admin", middleware.Require(access.OpAssignDriver), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r *gin.Engine, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuth_MissingHeader(t *testing.T) {
	r := newTestRouter(&stubVerifier{token: &infra.Token{UID: "user1"}}, role.NewService(testutil.NewGrants()))
	if w := do(r, http.MethodGet, "/test", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_InvalidBearerPrefix(t *testing.T) {
	r := newTestRouter(&stubVerifier{token: &infra.Token{UID: "user1"}}, role.NewService(testutil.NewGrants()))
	if w := do(r, http.MethodGet, "/test", "Token sometoken"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_VerifierRejects(t *testing.T) {
	r := newTestRouter(&stubVerifier{err: errors.New("expired")}, role.NewService(testutil.NewGrants()))
	if w := do(r, http.MethodGet, "/test", "Bearer x"); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestAuth_ResolvesStoredAndTokenGrants(t *testing.T) {
	grants := testutil.NewGrants()
	_ = grants.Grant(context.Background(), "user1", role.Driver)
	verifier := &stubVerifier{token: &infra.Token{UID: "user1", Claims: map[string]any{"role": "partner"}}}
	r := newTestRouter(verifier, role.NewService(grants))

	w := do(r, http.MethodGet, "/test", "Bearer ok")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["uid"] != "user1" || body["role"] != "driver" {
		t.Errorf("unexpected caller %v", body)
	}
}

// A grant change between requests shows up on the next request.
func TestAuth_RoleNotCachedAcrossRequests(t *testing.T) {
	grants := testutil.NewGrants()
	verifier := &stubVerifier{token: &infra.Token{UID: "user1"}}
	r := newTestRouter(verifier, role.NewService(grants))

	if w := do(r, http.MethodPost, "/admin", "Bearer ok"); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 before grant, got %d", w.Code)
	}
	_ = grants.Grant(context.Background(), "user1", role.Admin)
	if w := do(r, http.MethodPost, "/admin", "Bearer ok"); w.Code != http.StatusNoContent {
		t.Errorf("expected 204 after grant, got %d", w.Code)
	}
}

func TestRequire_DenyCarriesRedirect(t *testing.T) {
	verifier := &stubVerifier{token: &infra.Token{UID: "drv", Claims: map[string]any{"roles": []any{"driver"}}}}
	r := newTestRouter(verifier, role.NewService(testutil.NewGrants()))

	w := do(r, http.MethodPost, "/admin", "Bearer ok")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["redirect"] != access.LandingDriver {
		t.Errorf("expected redirect %q, got %q", access.LandingDriver, body["redirect"])
	}
}

func TestAuth_ResolverFailure(t *testing.T) {
	r := newTestRouter(&stubVerifier{token: &infra.Token{UID: "user1"}}, failingResolver{})
	if w := do(r, http.MethodGet, "/test", "Bearer ok"); w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}
