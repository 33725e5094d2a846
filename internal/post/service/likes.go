package service

import (
	"context"
	"errors"

	"github.com/AlibekovAA/smalltalk-feed/internal/common/logger"
	likedomain "github.com/AlibekovAA/smalltalk-feed/internal/like/domain"
	likerepo "github.com/AlibekovAA/smalltalk-feed/internal/like/repository"
	"github.com/AlibekovAA/smalltalk-feed/internal/post/domain"
	postrepo "github.com/AlibekovAA/smalltalk-feed/internal/post/repository"
	userrepo "github.com/AlibekovAA/smalltalk-feed/internal/user/repository"
)

const (
	likeOpLike   = "like"
	likeOpUnlike = "unlike"
)

// LikeService is the write side of likes. Callers prove the acting username
// with a token in the same way as ingestion.
type LikeService struct {
	users     userrepo.Repository
	posts     postrepo.Repository
	likes     likerepo.Repository
	verifier  TokenVerifier
	assembler *FeedAssembler
	log       *logger.Logger
}

func NewLikeService(
	users userrepo.Repository,
	posts postrepo.Repository,
	likes likerepo.Repository,
	verifier TokenVerifier,
	assembler *FeedAssembler,
	log *logger.Logger,
) *LikeService {
	return &LikeService{
		users:     users,
		posts:     posts,
		likes:     likes,
		verifier:  verifier,
		assembler: assembler,
		log:       log,
	}
}

func (s *LikeService) Like(ctx context.Context, postID int64, username, token string) (domain.EnrichedView, error) {
	return s.apply(ctx, likeOpLike, postID, username, token)
}

func (s *LikeService) Unlike(ctx context.Context, postID int64, username, token string) (domain.EnrichedView, error) {
	return s.apply(ctx, likeOpUnlike, postID, username, token)
}

func (s *LikeService) apply(ctx context.Context, op string, postID int64, username, token string) (domain.EnrichedView, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, userrepo.ErrUserNotFound) {
			return domain.EnrichedView{}, ErrUnknownAuthor
		}
		return domain.EnrichedView{}, newInternalError("USER_STORE_ERROR", "failed to resolve user", err)
	}

	if _, err := s.verifier.Verify(token, user.Username); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": username,
			"post_id":  postID,
			"action":   op + "_unauthorized",
		}).Warnf("%s rejected: %v", op, err)
		return domain.EnrichedView{}, ErrUnauthorized.WithCause(err)
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, postrepo.ErrPostNotFound) {
			return domain.EnrichedView{}, ErrPostNotFound
		}
		return domain.EnrichedView{}, newInternalError("POST_STORE_ERROR", "failed to load post", err)
	}

	like := likedomain.Like{PostID: post.ID, UserID: user.ID}
	if op == likeOpLike {
		err = s.likes.Like(ctx, like)
	} else {
		err = s.likes.Unlike(ctx, like)
	}
	if err != nil {
		return domain.EnrichedView{}, newInternalError("LIKE_STORE_ERROR", "failed to update likes", err)
	}
	incrementLikeChange(op)

	s.log.WithFields(ctx, logger.Fields{
		"username": user.Username,
		"post_id":  post.ID,
		"action":   op,
	}).Debug("like state changed")

	viewer := user.ID
	return s.assembler.Assemble(ctx, post, &viewer)
}
