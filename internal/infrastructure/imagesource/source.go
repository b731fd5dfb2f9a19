// Package imagesource loads product images referenced by URL so the try-on
// compositor can decode them.
package imagesource

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "stylesync-backend/internal/errors"
)

// Loader returns the raw bytes behind an image reference.
type Loader interface {
	Load(ctx context.Context, ref string) ([]byte, error)
}

// Source fetches http(s) URLs and decodes data: URIs. Anything larger than
// maxBytes is refused.
type Source struct {
	client   *http.Client
	maxBytes int64
	logger   *zap.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) { s.client = c }
}

// New returns a Source with a 10s request timeout.
func New(maxBytes int64, logger *zap.Logger, opts ...Option) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Source{
		client:   &http.Client{Timeout: 10 * time.Second},
		maxBytes: maxBytes,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func loadError(ref string, cause error) error {
	return apperrors.NewError(apperrors.ErrorTypeDecode, apperrors.CodeImageLoadFailed, "image could not be loaded").
		WithResource(ref).
		WithCause(cause).
		Build()
}

// Load resolves ref.
func (s *Source) Load(ctx context.Context, ref string) ([]byte, error) {
	if strings.HasPrefix(ref, "data:") {
		return s.loadDataURI(ref)
	}
	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, loadError(ref, fmt.Errorf("unsupported image reference"))
	}
	return s.fetch(ctx, u.String())
}

func (s *Source) fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, loadError(ref, err)
	}
	req.Header.Set("Accept", "image/*")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, loadError(ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, loadError(ref, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	if resp.ContentLength > s.maxBytes {
		return nil, tooLarge(ref, resp.ContentLength, s.maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, loadError(ref, err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, tooLarge(ref, int64(len(data)), s.maxBytes)
	}

	s.logger.Debug("Fetched image",
		zap.String("url", ref),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return data, nil
}

// loadDataURI accepts data:[<mediatype>][;base64],<data>.
func (s *Source) loadDataURI(ref string) ([]byte, error) {
	comma := strings.IndexByte(ref, ',')
	if comma < 0 {
		return nil, loadError("data URI", fmt.Errorf("missing payload separator"))
	}
	meta, payload := ref[len("data:"):comma], ref[comma+1:]

	var data []byte
	if strings.HasSuffix(meta, ";base64") {
		if int64(base64.StdEncoding.DecodedLen(len(payload))) > s.maxBytes+2 {
			return nil, tooLarge("data URI", int64(base64.StdEncoding.DecodedLen(len(payload))), s.maxBytes)
		}
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, loadError("data URI", err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, loadError("data URI", err)
		}
		data = []byte(unescaped)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, tooLarge("data URI", int64(len(data)), s.maxBytes)
	}
	return data, nil
}

func tooLarge(ref string, size, limit int64) error {
	return apperrors.NewError(apperrors.ErrorTypeDecode, apperrors.CodeImageTooLarge, "image exceeds size limit").
		WithResource(ref).
		WithDetails(fmt.Sprintf("%d bytes, limit %d", size, limit)).
		Build()
}

var _ Loader = (*Source)(nil)
