package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AlibekovAA/smalltalk-feed/internal/common/clock"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/constants"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/jwtverify"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/logger"
	"github.com/AlibekovAA/smalltalk-feed/internal/post/domain"
	postrepo "github.com/AlibekovAA/smalltalk-feed/internal/post/repository"
	userdomain "github.com/AlibekovAA/smalltalk-feed/internal/user/domain"
	userrepo "github.com/AlibekovAA/smalltalk-feed/internal/user/repository"
)

type TokenVerifier interface {
	Verify(token, expectedUsername string) (jwtverify.Claims, error)
}

type EventPublisher interface {
	PublishPostCreated(ctx context.Context, event domain.CreatedEvent) error
}

// ExpiryPolicy decides what happens to a validly signed token past its exp.
type ExpiryPolicy string

const (
	ExpiryPolicyAllow  ExpiryPolicy = constants.ExpiryPolicyAllow
	ExpiryPolicyReject ExpiryPolicy = constants.ExpiryPolicyReject
)

var errTokenExpired = errors.New("token expired")

// IngestionGateway accepts new posts: check content, resolve author, verify
// token, persist, enrich, publish. Content is checked first so a blank post
// never reaches a store, even when the author is unknown. Every step is
// terminal on failure and nothing is retried.
type IngestionGateway struct {
	users     userrepo.Repository
	posts     postrepo.Repository
	verifier  TokenVerifier
	assembler *FeedAssembler
	publisher EventPublisher
	expiry    ExpiryPolicy
	clock     clock.Clock
	tracer    trace.Tracer
	log       *logger.Logger
}

func NewIngestionGateway(
	users userrepo.Repository,
	posts postrepo.Repository,
	verifier TokenVerifier,
	assembler *FeedAssembler,
	publisher EventPublisher,
	expiry ExpiryPolicy,
	clk clock.Clock,
	log *logger.Logger,
) *IngestionGateway {
	if expiry != ExpiryPolicyReject {
		expiry = ExpiryPolicyAllow
	}
	return &IngestionGateway{
		users:     users,
		posts:     posts,
		verifier:  verifier,
		assembler: assembler,
		publisher: publisher,
		expiry:    expiry,
		clock:     clk,
		tracer:    otel.Tracer(tracerName),
		log:       log,
	}
}

func (g *IngestionGateway) Ingest(ctx context.Context, sub domain.Submission) (domain.EnrichedView, error) {
	ctx, span := g.tracer.Start(ctx, "feed.ingest", trace.WithAttributes(attribute.String("post.author", sub.AuthorUsername)))
	defer span.End()

	fields := logger.Fields{"username": sub.AuthorUsername}

	if err := validateContent(sub.Content); err != nil {
		return domain.EnrichedView{}, g.reject(ctx, span, fields, "invalid_content", err)
	}

	author, err := g.users.FindByUsername(ctx, sub.AuthorUsername)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return domain.EnrichedView{}, g.reject(ctx, span, fields, "unknown_author", ErrUnknownAuthor)
		}
		return domain.EnrichedView{}, g.reject(ctx, span, fields, "user_store_error", newInternalError("USER_STORE_ERROR", "failed to resolve author", err))
	}

	if err := g.verify(ctx, sub.Token, author); err != nil {
		return domain.EnrichedView{}, g.reject(ctx, span, fields, "unauthorized", ErrUnauthorized.WithCause(err))
	}

	saved, err := g.posts.Create(ctx, domain.Post{
		ID:        0,
		Content:   sub.Content,
		CreatedAt: g.clock.Now(),
		AuthorID:  author.ID,
	})
	if err != nil {
		return domain.EnrichedView{}, g.reject(ctx, span, fields, "persistence_failed", ErrPersistenceFailed.WithCause(err))
	}
	incrementPostsIngested()
	span.SetAttributes(attribute.Int64("post.id", saved.ID))

	g.log.WithFields(ctx, logger.Fields{
		"username": author.Username,
		"post_id":  saved.ID,
		"action":   "post_ingested",
	}).Info("post ingested")

	view, err := g.assembler.Assemble(ctx, saved, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "enrich_failed")
		return domain.EnrichedView{}, err
	}

	// Only a fully successful ingest announces the post.
	g.publish(ctx, saved, author)
	return view, nil
}

func (g *IngestionGateway) verify(ctx context.Context, token string, author userdomain.User) error {
	claims, err := g.verifier.Verify(token, author.Username)
	if err != nil {
		return err
	}

	now := g.clock.Now()
	if !claims.Expired(now) {
		return nil
	}

	incrementExpiredTokensSeen()
	g.log.WithFields(ctx, logger.Fields{
		"username":   author.Username,
		"expires_at": claims.ExpiresAt,
		"now":        now,
		"policy":     string(g.expiry),
		"action":     "ingest_token_expired",
	}).Warn("token expired")

	if g.expiry == ExpiryPolicyReject {
		return errTokenExpired
	}
	return nil
}

func (g *IngestionGateway) publish(ctx context.Context, post domain.Post, author userdomain.User) {
	if g.publisher == nil {
		return
	}
	event := domain.CreatedEvent{
		PostID:    post.ID,
		AuthorID:  int64(author.ID),
		Author:    author.Username,
		CreatedAt: post.CreatedAt,
	}
	if err := g.publisher.PublishPostCreated(ctx, event); err != nil {
		incrementPublishFailed(constants.PostCreatedSubject)
		g.log.WithFields(ctx, logger.Fields{
			"post_id": post.ID,
			"action":  "post_created_publish_failed",
		}).Warnf("failed to publish event: %v", err)
	}
}

func (g *IngestionGateway) reject(ctx context.Context, span trace.Span, fields logger.Fields, reason string, err error) error {
	incrementIngestionFailure(reason)
	span.RecordError(err)
	span.SetStatus(codes.Error, reason)

	entry := logger.Fields{"action": "ingest_" + reason}
	for k, v := range fields {
		entry[k] = v
	}
	g.log.WithFields(ctx, entry).Warnf("ingest rejected: %v", err)
	return err
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrInvalidContent
	}
	if utf8.RuneCountInString(content) > constants.MaxPostContentLength {
		return ErrInvalidContent
	}
	return nil
}
