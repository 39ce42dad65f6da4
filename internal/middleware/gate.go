package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/pulsekit/smsdash/internal/auth"
)

// RouteClass is the access level a path requires.
type RouteClass int

const (
	Public RouteClass = iota
	Authenticated
	AdminOnly
)

// Rule maps a path prefix to a route class.
type Rule struct {
	Prefix string
	Class  RouteClass
}

// DefaultRules covers the whole surface. Classification picks the longest
// matching prefix, so /api/auth/login stays public even though /api is
// authenticated.
func DefaultRules() []Rule {
	return []Rule{
		{Prefix: "/healthz", Class: Public},
		{Prefix: "/login", Class: Public},
		{Prefix: "/signup", Class: Public},
		{Prefix: "/api/auth/login", Class: Public},
		{Prefix: "/api/auth/signup", Class: Public},
		{Prefix: "/api/auth/logout", Class: Public},
		{Prefix: "/api/admin", Class: AdminOnly},
		{Prefix: "/admin", Class: AdminOnly},
		{Prefix: "/api", Class: Authenticated},
	}
}

// Gate resolves the caller's session once per request, stores it on the
// context, and enforces the route class before any handler runs.
type Gate struct {
	Resolver *auth.Resolver
	Rules    []Rule
	Logger   *zap.Logger
}

// Classify returns the class of the longest rule prefix matching path.
// Unmatched paths require authentication, so a forgotten rule fails
// closed rather than open.
func (g *Gate) Classify(path string) RouteClass {
	best := -1
	class := Authenticated
	for _, rule := range g.Rules {
		if !strings.HasPrefix(path, rule.Prefix) {
			continue
		}
		if len(rule.Prefix) > best {
			best = len(rule.Prefix)
			class = rule.Class
		}
	}
	return class
}

// Handler is the chi middleware.
func (g *Gate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := g.Resolver.Resolve(r.Context(), r)
		r = r.WithContext(auth.WithSession(r.Context(), session))

		switch g.Classify(r.URL.Path) {
		case Public:
			// A logged-in admin hitting /login is fine; no forced redirect.
		case Authenticated:
			if !session.Authenticated {
				g.deny(w, r, http.StatusUnauthorized, "authentication required", "/login")
				return
			}
		case AdminOnly:
			if !session.Authenticated {
				g.deny(w, r, http.StatusUnauthorized, "authentication required", "/login")
				return
			}
			if !session.IsApprovedAdmin() {
				g.deny(w, r, http.StatusForbidden, "admin access required", "/dashboard")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// deny rejects the request: JSON for API paths, a redirect for page paths.
func (g *Gate) deny(w http.ResponseWriter, r *http.Request, status int, message, location string) {
	if g.Logger != nil {
		g.Logger.Info("request denied",
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
		)
	}
	if isAPIPath(r.URL.Path) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{"error": message})
		return
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
