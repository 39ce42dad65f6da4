package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulsekit/smsdash/internal/auth"
	"github.com/pulsekit/smsdash/internal/model"
)

type stubProfiles struct {
	profiles map[string]*model.UserProfile
}

func (s *stubProfiles) GetByID(_ context.Context, userID string) (*model.UserProfile, error) {
	if p, ok := s.profiles[userID]; ok {
		return p, nil
	}
	return nil, nil
}

func newTestGate(t *testing.T) (*Gate, *auth.TokenIssuer) {
	t.Helper()
	tokens := auth.NewTokenIssuer([]byte("gate-test-secret"), time.Hour)
	profiles := &stubProfiles{profiles: map[string]*model.UserProfile{
		"admin":    {UserID: "admin", Role: model.RoleAdmin, Status: model.StatusApproved},
		"pending":  {UserID: "pending", Role: model.RoleAdmin, Status: model.StatusPending},
		"regular":  {UserID: "regular", Role: model.RoleUser, Status: model.StatusApproved},
		"moderate": {UserID: "moderate", Role: model.RoleModerator, Status: model.StatusApproved},
	}}
	gate := &Gate{
		Resolver: &auth.Resolver{Tokens: tokens, Profiles: profiles},
		Rules:    DefaultRules(),
		Logger:   zap.NewNop(),
	}
	return gate, tokens
}

func TestClassify(t *testing.T) {
	gate, _ := newTestGate(t)

	cases := []struct {
		path string
		want RouteClass
	}{
		{"/healthz", Public},
		{"/login", Public},
		{"/api/auth/login", Public},
		{"/api/auth/signup", Public},
		{"/api/auth/logout", Public},
		{"/api/auth/me", Authenticated},
		{"/api/campaigns", Authenticated},
		{"/api/customers/template", Authenticated},
		{"/api/admin/users/pending", AdminOnly},
		{"/api/admin/system/health", AdminOnly},
		{"/admin", AdminOnly},
		{"/dashboard", Authenticated},
		{"/", Authenticated},
		{"/totally/unknown", Authenticated},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, gate.Classify(tc.path), "path %s", tc.path)
	}
}

func serveThroughGate(t *testing.T, gate *Gate, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	gate.Handler(next).ServeHTTP(rec, req)
	return rec
}

func authedRequest(t *testing.T, tokens *auth.TokenIssuer, userID, path string) *http.Request {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	token, err := tokens.Issue(userID)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAdminRouteDeniesNonAdmins(t *testing.T) {
	gate, tokens := newTestGate(t)

	// Absent session: 401, never 200.
	rec := serveThroughGate(t, gate, httptest.NewRequest("GET", "/api/admin/users/pending", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])

	// Authenticated non-admins and unapproved admins: 403, never 200.
	for _, userID := range []string{"regular", "moderate", "pending"} {
		rec := serveThroughGate(t, gate, authedRequest(t, tokens, userID, "/api/admin/users/pending"))
		assert.Equal(t, http.StatusForbidden, rec.Code, "user %s", userID)
	}

	// Approved admin passes.
	rec = serveThroughGate(t, gate, authedRequest(t, tokens, "admin", "/api/admin/users/pending"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRoutesReturnJSONNotRedirects(t *testing.T) {
	gate, _ := newTestGate(t)

	rec := serveThroughGate(t, gate, httptest.NewRequest("GET", "/api/campaigns", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestPageRoutesRedirect(t *testing.T) {
	gate, tokens := newTestGate(t)

	rec := serveThroughGate(t, gate, httptest.NewRequest("GET", "/dashboard", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = serveThroughGate(t, gate, authedRequest(t, tokens, "regular", "/admin"))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

// Logout works without a session: clearing an absent cookie is a no-op,
// so an anonymous caller gets through to the handler, not a 401.
func TestAnonymousLogoutAllowed(t *testing.T) {
	gate, _ := newTestGate(t)

	rec := serveThroughGate(t, gate, httptest.NewRequest("GET", "/api/auth/logout", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serveThroughGate(t, gate, httptest.NewRequest("POST", "/api/auth/logout", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginWhileAuthenticatedAllowed(t *testing.T) {
	gate, tokens := newTestGate(t)

	rec := serveThroughGate(t, gate, authedRequest(t, tokens, "admin", "/login"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

// The gate and a direct resolver call must report identical outcomes for
// the same request.
func TestGateAndResolverAgree(t *testing.T) {
	gate, tokens := newTestGate(t)

	for _, userID := range []string{"admin", "pending", "regular"} {
		req := authedRequest(t, tokens, userID, "/api/campaigns")

		direct := gate.Resolver.Resolve(context.Background(), req)

		var viaGate auth.Session
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			viaGate = auth.FromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
		gate.Handler(next).ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, direct, viaGate, "user %s", userID)
	}

	// Same property for an anonymous request on a public path.
	req := httptest.NewRequest("GET", "/login", nil)
	direct := gate.Resolver.Resolve(context.Background(), req)
	var viaGate auth.Session
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viaGate = auth.FromContext(r.Context())
	})
	gate.Handler(next).ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, direct, viaGate)
}
