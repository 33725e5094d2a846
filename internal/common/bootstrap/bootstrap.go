package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"github.com/AlibekovAA/smalltalk-feed/internal/common/config"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/constants"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/db"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/logger"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/telemetry"
)

const serviceName = "feed"

// FeedApp holds the process-wide infrastructure handles. Nats is nil when
// NATS_URL is unset.
type FeedApp struct {
	Log    *logger.Logger
	Config config.FeedConfig
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	Nats   *nats.Conn

	shutdownTracer func(context.Context) error
}

func NewFeedApp(ctx context.Context) (*FeedApp, error) {
	log, err := initializeLogger(serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.LoadFeedConfig()
	if err != nil {
		log.Errorf("failed to load config: %v", err)
		return nil, err
	}

	app := &FeedApp{Log: log, Config: cfg}

	app.shutdownTracer, err = telemetry.InitTracer(ctx, cfg.OtelEndpoint, serviceName, cfg.Env)
	if err != nil {
		log.Warnf("tracing disabled: %v", err)
		app.shutdownTracer = func(context.Context) error { return nil }
	}

	app.Pool, err = db.NewPool(ctx, log, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	db.StartPoolMetrics(ctx, app.Pool, constants.DBPoolMetricsInterval)

	app.Redis, err = newRedisClient(ctx, log, cfg.RedisURL)
	if err != nil {
		app.Pool.Close()
		return nil, err
	}

	if cfg.NatsURL != "" {
		app.Nats, err = nats.Connect(cfg.NatsURL, nats.Name("smalltalk-feed"), nats.MaxReconnects(-1))
		if err != nil {
			app.Pool.Close()
			_ = app.Redis.Close()
			return nil, fmt.Errorf("failed to connect to nats: %w", err)
		}
		log.Infof("connected to nats at %s", app.Nats.ConnectedUrl())
	} else {
		log.Info("NATS_URL not set, post events disabled")
	}

	return app, nil
}

// Close releases infrastructure in reverse order of acquisition.
func (a *FeedApp) Close(ctx context.Context) error {
	if a.Nats != nil {
		if err := a.Nats.Drain(); err != nil {
			a.Log.Warnf("nats drain failed: %v", err)
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warnf("redis close failed: %v", err)
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
	return a.shutdownTracer(ctx)
}

func newRedisClient(ctx context.Context, log *logger.Logger, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := redisotel.InstrumentTracing(client); err != nil {
		log.Warnf("redis tracing disabled: %v", err)
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Infof("connected to redis at %s", opts.Addr)
	return client, nil
}

func initializeLogger(serviceName string) (*logger.Logger, error) {
	return logger.New(os.Getenv("LOG_DIR"), serviceName, os.Getenv("LOG_LEVEL"))
}
