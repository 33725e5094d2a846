package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/AlibekovAA/smalltalk-feed/internal/common/constants"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/logger"
	"github.com/AlibekovAA/smalltalk-feed/internal/post/domain"
	postrepo "github.com/AlibekovAA/smalltalk-feed/internal/post/repository"
	userdomain "github.com/AlibekovAA/smalltalk-feed/internal/user/domain"
	userrepo "github.com/AlibekovAA/smalltalk-feed/internal/user/repository"
)

// ViewerMode selects whose like-state the read paths report.
type ViewerMode string

const (
	// ViewerModeAuthor reports whether each post's own author liked it.
	ViewerModeAuthor ViewerMode = constants.ViewerModeAuthor
	// ViewerModeRequest reports whether the caller-supplied viewer liked it.
	ViewerModeRequest ViewerMode = constants.ViewerModeRequest
)

const tracerName = "feed"

type FeedService struct {
	posts     postrepo.Repository
	users     userrepo.Repository
	assembler *FeedAssembler
	mode      ViewerMode
	tracer    trace.Tracer
	log       *logger.Logger
}

func NewFeedService(
	posts postrepo.Repository,
	users userrepo.Repository,
	assembler *FeedAssembler,
	mode ViewerMode,
	log *logger.Logger,
) *FeedService {
	if mode != ViewerModeRequest {
		mode = ViewerModeAuthor
	}
	return &FeedService{
		posts:     posts,
		users:     users,
		assembler: assembler,
		mode:      mode,
		tracer:    otel.Tracer(tracerName),
		log:       log,
	}
}

func (s *FeedService) Mode() ViewerMode {
	return s.mode
}

func (s *FeedService) ListAll(ctx context.Context, viewer *userdomain.ID) ([]domain.EnrichedView, error) {
	ctx, span := s.tracer.Start(ctx, "feed.list_all")
	defer span.End()

	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, s.fail(ctx, span, "list_all_failed", newInternalError("POST_STORE_ERROR", "failed to list posts", err))
	}
	return s.enrich(ctx, span, posts, viewer)
}

// ListPage returns one page of the feed, newest first. Pages below 1 are
// served as page 1.
func (s *FeedService) ListPage(ctx context.Context, page int, viewer *userdomain.ID) ([]domain.EnrichedView, error) {
	if page < 1 {
		page = 1
	}

	ctx, span := s.tracer.Start(ctx, "feed.list_page", trace.WithAttributes(attribute.Int("feed.page", page)))
	defer span.End()

	posts, err := s.posts.ListPage(ctx, page)
	if err != nil {
		if errors.Is(err, postrepo.ErrInvalidPage) {
			return nil, s.fail(ctx, span, "list_page_invalid", ErrInvalidPage.WithCause(err))
		}
		return nil, s.fail(ctx, span, "list_page_failed", newInternalError("POST_STORE_ERROR", "failed to list posts", err))
	}
	return s.enrich(ctx, span, posts, viewer)
}

func (s *FeedService) GetByID(ctx context.Context, id int64, viewer *userdomain.ID) (domain.EnrichedView, error) {
	ctx, span := s.tracer.Start(ctx, "feed.get_by_id", trace.WithAttributes(attribute.Int64("post.id", id)))
	defer span.End()

	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, postrepo.ErrPostNotFound) {
			return domain.EnrichedView{}, s.fail(ctx, span, "get_post_not_found", ErrPostNotFound)
		}
		return domain.EnrichedView{}, s.fail(ctx, span, "get_post_failed", newInternalError("POST_STORE_ERROR", "failed to load post", err))
	}

	view, err := s.assembler.Assemble(ctx, post, s.viewerFor(post, viewer))
	if err != nil {
		return domain.EnrichedView{}, s.fail(ctx, span, "get_post_enrich_failed", err)
	}
	return view, nil
}

func (s *FeedService) ListByAuthor(ctx context.Context, authorID userdomain.ID, viewer *userdomain.ID) ([]domain.EnrichedView, error) {
	ctx, span := s.tracer.Start(ctx, "feed.list_by_author", trace.WithAttributes(attribute.Int64("user.id", int64(authorID))))
	defer span.End()

	if _, err := s.users.FindByID(ctx, authorID); err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return nil, s.fail(ctx, span, "list_by_author_user_not_found", ErrUserNotFound)
		}
		return nil, s.fail(ctx, span, "list_by_author_failed", newInternalError("USER_STORE_ERROR", "failed to load user", err))
	}

	posts, err := s.posts.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, s.fail(ctx, span, "list_by_author_failed", newInternalError("POST_STORE_ERROR", "failed to list posts", err))
	}
	return s.enrich(ctx, span, posts, viewer)
}

func (s *FeedService) enrich(ctx context.Context, span trace.Span, posts []domain.Post, viewer *userdomain.ID) ([]domain.EnrichedView, error) {
	viewers := make([]*userdomain.ID, len(posts))
	for i, p := range posts {
		viewers[i] = s.viewerFor(p, viewer)
	}

	views, err := s.assembler.AssembleMany(ctx, posts, viewers)
	if err != nil {
		return nil, s.fail(ctx, span, "enrich_failed", err)
	}
	span.SetAttributes(attribute.Int("feed.posts", len(views)))
	return views, nil
}

func (s *FeedService) viewerFor(post domain.Post, requested *userdomain.ID) *userdomain.ID {
	if s.mode == ViewerModeRequest {
		return requested
	}
	author := post.AuthorID
	return &author
}

func (s *FeedService) fail(ctx context.Context, span trace.Span, action string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, action)
	s.log.WithFields(ctx, logger.Fields{
		"action": action,
	}).Debugf("feed query failed: %v", err)
	return err
}
