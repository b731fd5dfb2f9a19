package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/supabase-community/supabase-go"
)

// RemoteUser is what the identity provider reports for a token.
type RemoteUser struct {
	ID          string
	Email       string
	AppMetadata map[string]interface{}
}

// UserLookupFunc asks the identity provider who owns token.
type UserLookupFunc func(token string) (*RemoteUser, error)

// SupabaseLookup resolves tokens through Supabase Auth.
func SupabaseLookup(client *supabase.Client) UserLookupFunc {
	return func(token string) (*RemoteUser, error) {
		user, err := client.Auth.WithToken(token).GetUser()
		if err != nil {
			return nil, err
		}
		return &RemoteUser{
			ID:          user.ID.String(),
			Email:       user.Email,
			AppMetadata: user.AppMetadata,
		}, nil
	}
}

// RemoteVerifier verifies tokens by asking the identity provider. It works
// without the project's JWT secret at the cost of a round trip.
type RemoteVerifier struct {
	lookup UserLookupFunc
}

// NewRemoteVerifier returns a verifier backed by lookup.
func NewRemoteVerifier(lookup UserLookupFunc) *RemoteVerifier {
	return &RemoteVerifier{lookup: lookup}
}

// Verify implements Verifier. The lookup has no context parameter, so a
// cancelled ctx is only checked before the call.
func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*User, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, "Bearer "))
	if token == "" {
		return nil, ErrMissingToken
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := v.lookup(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if user == nil || user.ID == "" {
		return nil, fmt.Errorf("%w: missing user ID", ErrInvalidClaims)
	}
	return &User{
		ID:    user.ID,
		Email: user.Email,
		Admin: adminFromMetadata(user.AppMetadata),
	}, nil
}

// Chain tries each verifier in turn and returns the first success. When all
// fail the first error is returned.
type Chain []Verifier

// Verify implements Verifier.
func (c Chain) Verify(ctx context.Context, token string) (*User, error) {
	var firstErr error
	for _, v := range c {
		user, err := v.Verify(ctx, token)
		if err == nil {
			return user, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = ErrInvalidToken
	}
	return nil, firstErr
}
