// Package auth verifies the access tokens the storefront's identity provider
// issues and carries the signed-in user through request contexts. Tokens are
// never issued here.
package auth

import (
	"context"
	"errors"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrMissingToken     = errors.New("missing authentication token")
	ErrInvalidClaims    = errors.New("invalid token claims")
)

// User is the authenticated shopper.
type User struct {
	ID    string
	Email string
	Admin bool
}

// Verifier turns a bearer token into a User.
type Verifier interface {
	Verify(ctx context.Context, token string) (*User, error)
}

type contextKey string

const userContextKey contextKey = "user"

// SetUserInContext adds user to context
func SetUserInContext(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the signed-in user, if any.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok && user != nil
}

// UserID returns the signed-in user's ID or "" for anonymous requests.
func UserID(ctx context.Context) string {
	if user, ok := UserFromContext(ctx); ok {
		return user.ID
	}
	return ""
}

// adminFromMetadata reads the admin flag from app_metadata. Both an
// is_admin boolean and a role of "admin" grant it.
func adminFromMetadata(meta map[string]interface{}) bool {
	if meta == nil {
		return false
	}
	if v, ok := meta["is_admin"].(bool); ok && v {
		return true
	}
	if role, ok := meta["role"].(string); ok && role == "admin" {
		return true
	}
	if roles, ok := meta["roles"].([]interface{}); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok && s == "admin" {
				return true
			}
		}
	}
	return false
}
