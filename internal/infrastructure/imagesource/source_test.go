package imagesource

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stylesync-backend/internal/errors"
)

func TestLoad_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			_, _ = w.Write([]byte("pngbytes"))
		case "/big.png":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := New(32, nil, WithHTTPClient(srv.Client()))

	data, err := s.Load(context.Background(), srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, "pngbytes", string(data))

	_, err = s.Load(context.Background(), srv.URL+"/missing.png")
	require.Error(t, err)
	assert.True(t, apperrors.IsDecode(err))
	assert.True(t, apperrors.HasCode(err, apperrors.CodeImageLoadFailed))

	_, err = s.Load(context.Background(), srv.URL+"/big.png")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeImageTooLarge))
}

func TestLoad_DataURI(t *testing.T) {
	s := New(16, nil)

	tests := []struct {
		name    string
		ref     string
		want    string
		errCode apperrors.ErrorCode
	}{
		{name: "base64", ref: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello")), want: "hello"},
		{name: "plain", ref: "data:text/plain,a%20b", want: "a b"},
		{name: "no separator", ref: "data:image/png;base64", errCode: apperrors.CodeImageLoadFailed},
		{name: "bad base64", ref: "data:image/png;base64,!!!", errCode: apperrors.CodeImageLoadFailed},
		{name: "too large", ref: "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(strings.Repeat("y", 40))), errCode: apperrors.CodeImageTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := s.Load(context.Background(), tt.ref)
			if tt.errCode != "" {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, tt.errCode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	_, err := New(16, nil).Load(context.Background(), "file:///etc/passwd")
	require.Error(t, err)
	assert.True(t, apperrors.IsDecode(err))
}
