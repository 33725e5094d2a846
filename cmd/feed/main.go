package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AlibekovAA/smalltalk-feed/internal/common/bootstrap"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/clock"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/constants"
	commonhttp "github.com/AlibekovAA/smalltalk-feed/internal/common/http"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/jwtverify"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/resilience"
	srv "github.com/AlibekovAA/smalltalk-feed/internal/common/server"
	likerepo "github.com/AlibekovAA/smalltalk-feed/internal/like/repository"
	"github.com/AlibekovAA/smalltalk-feed/internal/post/eventbroker"
	posthttp "github.com/AlibekovAA/smalltalk-feed/internal/post/http"
	postrepo "github.com/AlibekovAA/smalltalk-feed/internal/post/repository"
	postservice "github.com/AlibekovAA/smalltalk-feed/internal/post/service"
	userrepo "github.com/AlibekovAA/smalltalk-feed/internal/user/repository"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.NewFeedApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start feed service: %v\n", err)
		os.Exit(1)
	}
	log := app.Log
	cfg := app.Config

	users := userrepo.NewPgRepository(app.Pool, log)
	posts := postrepo.NewPgRepository(app.Pool, cfg.PageSize, log)
	likes := likerepo.NewGuardedRepository(
		likerepo.NewRedisRepository(app.Redis),
		resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:       "like_store",
			Threshold:  constants.LikeStoreBreakerThreshold,
			Timeout:    constants.LikeStoreBreakerTimeout,
			ResetAfter: constants.LikeStoreBreakerResetAfter,
			Logger:     log,
		}),
	)

	var publisher postservice.EventPublisher = eventbroker.NoopPublisher{}
	if app.Nats != nil {
		publisher = eventbroker.NewNatsPublisher(app.Nats, log)
	}

	verifier := jwtverify.NewVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer)
	assembler := postservice.NewFeedAssembler(users, likes, log)
	feed := postservice.NewFeedService(posts, users, assembler, postservice.ViewerMode(cfg.ViewerMode), log)
	ingest := postservice.NewIngestionGateway(
		users,
		posts,
		verifier,
		assembler,
		publisher,
		postservice.ExpiryPolicy(cfg.TokenExpiryPolicy),
		clock.NewRealClock(),
		log,
	)
	likeSvc := postservice.NewLikeService(users, posts, likes, verifier, assembler, log)

	postHandler := posthttp.NewHandler(feed, ingest, likeSvc, cfg.RequestTimeout, log)

	mux := http.NewServeMux()
	mux.Handle("/posts", postHandler)
	mux.Handle("/posts/", postHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", commonhttp.HealthHandler(log, map[string]commonhttp.HealthCheck{
		"postgres": func(ctx context.Context) error {
			conn, err := app.Pool.Acquire(ctx)
			if err != nil {
				return err
			}
			defer conn.Release()
			return conn.Conn().Ping(ctx)
		},
		"redis": func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		},
		"nats": func(ctx context.Context) error {
			if app.Nats != nil && !app.Nats.IsConnected() {
				return errors.New("nats disconnected")
			}
			return nil
		},
	}))

	log.Infof("feed service configured: viewer_mode=%s expiry_policy=%s page_size=%d", feed.Mode(), cfg.TokenExpiryPolicy, cfg.PageSize)

	server := srv.NewServer(srv.DefaultServerConfig(cfg.HTTPPort), commonhttp.BuildBaseHandler(log, mux))

	srv.StartWithGracefulShutdown(server, log, "feed", func(ctx context.Context) error {
		cancel()
		return app.Close(ctx)
	})
}
