// Package source turns a job's target into a plain HTTP(S) URL the probe can GET.
package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

var ErrUnsupportedScheme = errors.New("unsupported scheme")

type S3Config struct {
	Profile string
	Region  string
	Expiry  time.Duration
}

type Resolver struct {
	s3cfg     S3Config
	presigner func(ctx context.Context, cfg S3Config) (Presigner, error)
}

func NewResolver(cfg S3Config) *Resolver {
	if cfg.Expiry == 0 {
		cfg.Expiry = 15 * time.Minute
	}
	return &Resolver{s3cfg: cfg, presigner: newS3Presigner}
}

// WithPresigner swaps the S3 presigner, mainly for tests.
func (r *Resolver) WithPresigner(p Presigner) *Resolver {
	r.presigner = func(context.Context, S3Config) (Presigner, error) { return p, nil }
	return r
}

func (r *Resolver) Resolve(ctx context.Context, raw string) (string, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		if parsed.Host == "" {
			return "", fmt.Errorf("invalid URL: missing host in %q", raw)
		}
		return raw, nil
	case "s3":
		bucket, key, err := parseS3URL(raw)
		if err != nil {
			return "", err
		}
		presigner, err := r.presigner(ctx, r.s3cfg)
		if err != nil {
			return "", fmt.Errorf("error creating S3 presigner: %w", err)
		}
		signed, err := presigner.PresignGet(ctx, bucket, key, r.s3cfg.Expiry)
		if err != nil {
			return "", fmt.Errorf("error presigning s3://%s/%s: %w", bucket, key, err)
		}
		log.Debug().Str("op", "source/resolve").Msgf("presigned s3://%s/%s", bucket, key)
		return signed, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, parsed.Scheme)
	}
}

func parseS3URL(raw string) (string, string, error) {
	raw = strings.TrimPrefix(raw, "s3://")
	parts := strings.SplitN(raw, "/", 2)
	if parts[0] == "" {
		return "", "", fmt.Errorf("invalid S3 URL format")
	}
	if len(parts) < 2 || parts[1] == "" || strings.HasSuffix(parts[1], "/") {
		return "", "", fmt.Errorf("S3 URL must name an object, not a bucket or folder")
	}
	return parts[0], parts[1], nil
}
