package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/overseas-crm/internal/access"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email     string `json:"email" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResponse returns the signed session token and the session it names.
type LoginResponse struct {
	Token     string         `json:"token"`
	ExpiresIn int64          `json:"expires_in"`
	Session   *Session       `json:"session"`
	RoleName  string         `json:"role_name"`
	Routes    []access.Route `json:"routes"`
}

// Session is the explicit per-login context handed to every request. It
// replaces a single process-wide "current user" slot: each login owns its own
// Session, and Logout tears it down.
type Session struct {
	ID        string    `json:"id"`
	Identity  Identity  `json:"identity"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
}

// Expired reports whether the session has lapsed at now.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || (!s.ExpiresAt.IsZero() && now.After(s.ExpiresAt))
}

// HasPermission answers for the session's role; a nil session holds nothing.
func (s *Session) HasPermission(p access.Permission) bool {
	if s == nil {
		return false
	}
	return access.HasPermission(s.Identity.Role, p)
}

// CanAccessRoute answers for the session's role; a nil session reaches nothing.
func (s *Session) CanAccessRoute(r access.Route) bool {
	if s == nil {
		return false
	}
	return access.CanAccessRoute(s.Identity.Role, r)
}

// Actor returns the audit attribution for the session.
func (s *Session) Actor() Actor {
	if s == nil {
		return Actor{}
	}
	return Actor{ID: s.Identity.ID, Name: s.Identity.Name, Role: s.Identity.Role}
}

// SessionClaims is the JWT payload binding a bearer token to a session.
type SessionClaims struct {
	SessionID string      `json:"sid"`
	UserID    string      `json:"user_id"`
	Role      access.Role `json:"role"`
	jwt.RegisteredClaims
}
