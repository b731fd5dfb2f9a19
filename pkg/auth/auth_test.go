package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-jwt-token-with-at-least-32-characters"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func validClaims() Claims {
	now := time.Now()
	return Claims{
		Email: "shopper@example.com",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Issuer:    "https://project.supabase.co/auth/v1",
			Audience:  jwt.ClaimStrings{"authenticated"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func newValidator(t *testing.T) *JWTValidator {
	t.Helper()
	v, err := NewJWTValidator(JWTConfig{
		SecretKey: testSecret,
		Issuer:    "https://project.supabase.co/auth/v1",
		Audience:  []string{"authenticated"},
	})
	require.NoError(t, err)
	return v
}

func TestNewJWTValidator_RequiresSecret(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{})
	assert.Error(t, err)
}

func TestJWTValidator_ValidateToken(t *testing.T) {
	v := newValidator(t)

	admin := validClaims()
	admin.AppMetadata = map[string]interface{}{"is_admin": true}

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "https://elsewhere"

	wrongAudience := validClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"anon"}

	noSubject := validClaims()
	noSubject.Subject = ""

	tests := []struct {
		name    string
		token   string
		wantErr error
		admin   bool
	}{
		{name: "valid", token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())},
		{name: "bearer prefix", token: "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())},
		{name: "admin", token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), admin), admin: true},
		{name: "missing", token: "  ", wantErr: ErrMissingToken},
		{name: "expired", token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), expired), wantErr: ErrExpiredToken},
		{name: "wrong secret", token: sign(t, jwt.SigningMethodHS256, []byte("other-secret"), validClaims()), wantErr: ErrInvalidSignature},
		{name: "wrong method", token: sign(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims()), wantErr: ErrInvalidToken},
		{name: "wrong issuer", token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer), wantErr: ErrInvalidClaims},
		{name: "wrong audience", token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), wrongAudience), wantErr: ErrInvalidClaims},
		{name: "no subject", token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), noSubject), wantErr: ErrInvalidClaims},
		{name: "garbage", token: "not.a.jwt", wantErr: ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := v.Verify(context.Background(), tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-1", user.ID)
			assert.Equal(t, "shopper@example.com", user.Email)
			assert.Equal(t, tt.admin, user.Admin)
		})
	}
}

func TestAdminFromMetadata(t *testing.T) {
	assert.False(t, adminFromMetadata(nil))
	assert.False(t, adminFromMetadata(map[string]interface{}{"is_admin": false}))
	assert.True(t, adminFromMetadata(map[string]interface{}{"role": "admin"}))
	assert.True(t, adminFromMetadata(map[string]interface{}{"roles": []interface{}{"editor", "admin"}}))
}

func TestRemoteVerifier(t *testing.T) {
	var gotToken string
	v := NewRemoteVerifier(func(token string) (*RemoteUser, error) {
		gotToken = token
		if token == "bad" {
			return nil, errors.New("401 from auth server")
		}
		return &RemoteUser{ID: "user-2", Email: "b@example.com", AppMetadata: map[string]interface{}{"role": "admin"}}, nil
	})

	user, err := v.Verify(context.Background(), "Bearer good")
	require.NoError(t, err)
	assert.Equal(t, "good", gotToken)
	assert.Equal(t, &User{ID: "user-2", Email: "b@example.com", Admin: true}, user)

	_, err = v.Verify(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = v.Verify(ctx, "good")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChain(t *testing.T) {
	calls := 0
	remote := NewRemoteVerifier(func(string) (*RemoteUser, error) {
		calls++
		return &RemoteUser{ID: "remote-user"}, nil
	})
	chain := Chain{newValidator(t), remote}

	user, err := chain.Verify(context.Background(), sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Zero(t, calls)

	user, err = chain.Verify(context.Background(), "opaque-token")
	require.NoError(t, err)
	assert.Equal(t, "remote-user", user.ID)
	assert.Equal(t, 1, calls)

	_, err = Chain{}.Verify(context.Background(), "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	v := newValidator(t)
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())

	admin := validClaims()
	admin.AppMetadata = map[string]interface{}{"is_admin": true}
	adminToken := sign(t, jwt.SigningMethodHS256, []byte(testSecret), admin)

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-User", UserID(r.Context()))
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name    string
		handler http.Handler
		header  string
		status  int
		user    string
	}{
		{name: "anonymous passes", handler: ok, status: http.StatusOK},
		{name: "token attaches user", handler: ok, header: "Bearer " + token, status: http.StatusOK, user: "user-1"},
		{name: "bad token rejected", handler: ok, header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "malformed header", handler: ok, header: "Basic abc", status: http.StatusUnauthorized},
		{name: "require user anonymous", handler: RequireUser(ok), status: http.StatusUnauthorized},
		{name: "require user signed in", handler: RequireUser(ok), header: "Bearer " + token, status: http.StatusOK, user: "user-1"},
		{name: "require admin non-admin", handler: RequireAdmin(ok), header: "Bearer " + token, status: http.StatusForbidden},
		{name: "require admin anonymous", handler: RequireAdmin(ok), status: http.StatusUnauthorized},
		{name: "require admin admin", handler: RequireAdmin(ok), header: "Bearer " + adminToken, status: http.StatusOK, user: "user-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			Authenticate(v, nil)(tt.handler).ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.user, w.Header().Get("X-User"))
		})
	}
}
