package constants

import "time"

const (
	JWTSecretMinLength = 32
	DefaultJWTIssuer   = "com.kennethrdzg"

	MaxPostContentLength  = 1000
	DefaultPageSize       = 10
	DefaultMaxRequestSize = 1 << 20

	DBPoolMaxConns        = 25
	DBPoolMinConns        = 5
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = 1 * time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = 1 * time.Second
	DBPoolMetricsInterval = 30 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultFeedHTTPPort       = "8080"
	DefaultFeedRequestTimeout = 5 * time.Second
	DefaultRedisURL           = "redis://localhost:6379/0"

	LikeStoreBreakerThreshold  = 5
	LikeStoreBreakerTimeout    = 2 * time.Second
	LikeStoreBreakerResetAfter = 15 * time.Second

	PostCreatedSubject = "post.created"

	ExpiryPolicyAllow  = "allow"
	ExpiryPolicyReject = "reject"

	ViewerModeAuthor  = "author"
	ViewerModeRequest = "request"

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
