package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlibekovAA/smalltalk-feed/internal/common/constants"
	commonerrors "github.com/AlibekovAA/smalltalk-feed/internal/common/errors"
)

type FeedConfig struct {
	HTTPPort          string
	DatabaseURL       string
	RedisURL          string
	NatsURL           string
	OtelEndpoint      string
	Env               string
	JWTSecret         string
	JWTIssuer         string
	TokenExpiryPolicy string
	ViewerMode        string
	PageSize          int
	RequestTimeout    time.Duration
}

func LoadFeedConfig() (FeedConfig, error) {
	jwtSecret, err := mustEnv("APP_SECRET_KEY")
	if err != nil {
		return FeedConfig{}, err
	}

	if err := validateJWTSecret(jwtSecret); err != nil {
		return FeedConfig{}, err
	}

	databaseURL, err := mustEnv("DATABASE_URL")
	if err != nil {
		return FeedConfig{}, err
	}

	expiryPolicy := strings.ToLower(getEnv("TOKEN_EXPIRY_POLICY", constants.ExpiryPolicyAllow))
	if expiryPolicy != constants.ExpiryPolicyAllow && expiryPolicy != constants.ExpiryPolicyReject {
		return FeedConfig{}, fmt.Errorf("%w: TOKEN_EXPIRY_POLICY=%s", commonerrors.ErrInvalidConfigValue, expiryPolicy)
	}

	viewerMode := strings.ToLower(getEnv("FEED_VIEWER_MODE", constants.ViewerModeAuthor))
	if viewerMode != constants.ViewerModeAuthor && viewerMode != constants.ViewerModeRequest {
		return FeedConfig{}, fmt.Errorf("%w: FEED_VIEWER_MODE=%s", commonerrors.ErrInvalidConfigValue, viewerMode)
	}

	return FeedConfig{
		HTTPPort:          getEnv("FEED_HTTP_PORT", constants.DefaultFeedHTTPPort),
		DatabaseURL:       databaseURL,
		RedisURL:          getEnv("REDIS_URL", constants.DefaultRedisURL),
		NatsURL:           getEnv("NATS_URL", ""),
		OtelEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Env:               getEnv("APP_ENV", "local"),
		JWTSecret:         jwtSecret,
		JWTIssuer:         getEnv("JWT_ISSUER", constants.DefaultJWTIssuer),
		TokenExpiryPolicy: expiryPolicy,
		ViewerMode:        viewerMode,
		PageSize:          getIntEnv("FEED_PAGE_SIZE", constants.DefaultPageSize),
		RequestTimeout:    getDurationEnv("FEED_REQUEST_TIMEOUT", constants.DefaultFeedRequestTimeout),
	}, nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", commonerrors.ErrInvalidJWTSecret, len(secret))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func mustEnv(key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", commonerrors.ErrMissingRequiredEnv, key)
	}
	return v, nil
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}
