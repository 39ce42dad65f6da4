package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/pulsekit/smsdash/internal/model"
)

// SessionCookie is the cookie that carries the session token for page
// requests; API clients may send a bearer header instead.
const SessionCookie = "sid"

// Session is the outcome of resolving a request's credentials. When
// Authenticated is false the other fields are zero.
type Session struct {
	Authenticated bool
	UserID        string
	Role          model.Role
	Status        model.AccountStatus
}

// IsApprovedAdmin mirrors the profile check for resolved sessions.
func (s Session) IsApprovedAdmin() bool {
	return s.Authenticated && s.Role == model.RoleAdmin && s.Status == model.StatusApproved
}

// ProfileStore is the slice of the profile repository the resolver needs.
type ProfileStore interface {
	GetByID(ctx context.Context, userID string) (*model.UserProfile, error)
}

// Resolver turns request credentials into a Session. Both the access gate
// middleware and handlers use the same instance, so the two call sites
// cannot disagree about who a caller is.
type Resolver struct {
	Tokens   *TokenIssuer
	Profiles ProfileStore
}

// Resolve fails closed: an invalid or expired token, a store error, or a
// missing profile all yield an unauthenticated session. No side effects.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) Session {
	raw := TokenFromRequest(req)
	if raw == "" {
		return Session{}
	}
	userID, err := r.Tokens.Verify(raw)
	if err != nil {
		return Session{}
	}
	profile, err := r.Profiles.GetByID(ctx, userID)
	if err != nil || profile == nil {
		return Session{}
	}
	return Session{
		Authenticated: true,
		UserID:        profile.UserID,
		Role:          profile.Role,
		Status:        profile.Status,
	}
}

// TokenFromRequest extracts the session token from the Authorization
// header, falling back to the session cookie.
func TokenFromRequest(req *http.Request) string {
	header := req.Header.Get("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	cookie, err := req.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
