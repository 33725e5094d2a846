package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AlibekovAA/smalltalk-feed/internal/common/logger"
	likedomain "github.com/AlibekovAA/smalltalk-feed/internal/like/domain"
	likerepo "github.com/AlibekovAA/smalltalk-feed/internal/like/repository"
	"github.com/AlibekovAA/smalltalk-feed/internal/post/domain"
	userdomain "github.com/AlibekovAA/smalltalk-feed/internal/user/domain"
	userrepo "github.com/AlibekovAA/smalltalk-feed/internal/user/repository"
)

// FeedAssembler turns stored posts into EnrichedViews. It holds no state
// between calls.
type FeedAssembler struct {
	users userrepo.Repository
	likes likerepo.Repository
	log   *logger.Logger
}

func NewFeedAssembler(users userrepo.Repository, likes likerepo.Repository, log *logger.Logger) *FeedAssembler {
	return &FeedAssembler{users: users, likes: likes, log: log}
}

// Assemble enriches a single post. A nil viewer yields Liked=false.
func (a *FeedAssembler) Assemble(ctx context.Context, post domain.Post, viewer *userdomain.ID) (domain.EnrichedView, error) {
	start := time.Now()

	author, err := a.users.FindByID(ctx, post.AuthorID)
	if err != nil {
		return domain.EnrichedView{}, a.authorError(ctx, post, err)
	}

	count, err := a.likes.CountForPost(ctx, post.ID)
	if err != nil {
		return domain.EnrichedView{}, newInternalError("LIKE_STORE_ERROR", "failed to read likes", err)
	}

	liked := false
	if viewer != nil {
		liked, err = a.likes.IsLikedBy(ctx, post.ID, *viewer)
		if err != nil {
			return domain.EnrichedView{}, newInternalError("LIKE_STORE_ERROR", "failed to read likes", err)
		}
	}

	observeEnrichment("single", start, 1)
	return buildView(post, author.Name(), count, liked), nil
}

// AssembleMany enriches posts with one author lookup and two pipelined like
// queries. viewers is either nil (no viewer for any post) or parallel to posts.
// The result is identical to calling Assemble for each post in order.
func (a *FeedAssembler) AssembleMany(ctx context.Context, posts []domain.Post, viewers []*userdomain.ID) ([]domain.EnrichedView, error) {
	if viewers != nil && len(viewers) != len(posts) {
		return nil, newInternalError("ASSEMBLY_MISMATCH", "viewer list does not match posts", fmt.Errorf("%d posts, %d viewers", len(posts), len(viewers)))
	}
	views := make([]domain.EnrichedView, 0, len(posts))
	if len(posts) == 0 {
		return views, nil
	}

	start := time.Now()

	authorIDs := make([]userdomain.ID, 0, len(posts))
	postIDs := make([]int64, 0, len(posts))
	seenAuthors := make(map[userdomain.ID]struct{}, len(posts))
	for _, p := range posts {
		if _, ok := seenAuthors[p.AuthorID]; !ok {
			seenAuthors[p.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, p.AuthorID)
		}
		postIDs = append(postIDs, p.ID)
	}

	authors, err := a.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, newInternalError("USER_STORE_ERROR", "failed to load authors", err)
	}
	for _, p := range posts {
		if _, ok := authors[p.AuthorID]; !ok {
			return nil, a.authorError(ctx, p, userrepo.ErrUserNotFound)
		}
	}

	counts, err := a.likes.CountForPosts(ctx, postIDs)
	if err != nil {
		return nil, newInternalError("LIKE_STORE_ERROR", "failed to read likes", err)
	}

	var queries []likedomain.Like
	for i, p := range posts {
		if v := viewerAt(viewers, i); v != nil {
			queries = append(queries, likedomain.Like{PostID: p.ID, UserID: *v})
		}
	}
	liked, err := a.likes.LikedBy(ctx, queries)
	if err != nil {
		return nil, newInternalError("LIKE_STORE_ERROR", "failed to read likes", err)
	}

	for i, p := range posts {
		isLiked := false
		if v := viewerAt(viewers, i); v != nil {
			isLiked = liked[likedomain.Like{PostID: p.ID, UserID: *v}]
		}
		views = append(views, buildView(p, authors[p.AuthorID].Name(), counts[p.ID], isLiked))
	}

	observeEnrichment("batch", start, len(views))
	return views, nil
}

func (a *FeedAssembler) authorError(ctx context.Context, post domain.Post, err error) error {
	if errors.Is(err, userrepo.ErrUserNotFound) {
		a.log.WithFields(ctx, logger.Fields{
			"post_id":   post.ID,
			"author_id": post.AuthorID,
			"action":    "assemble_author_missing",
		}).Error("post references a missing author")
		return ErrAuthorNotFound.WithCause(fmt.Errorf("post %d: author %d", post.ID, post.AuthorID))
	}
	return newInternalError("USER_STORE_ERROR", "failed to load author", err)
}

func viewerAt(viewers []*userdomain.ID, i int) *userdomain.ID {
	if viewers == nil {
		return nil
	}
	return viewers[i]
}

func buildView(post domain.Post, author string, likes int64, liked bool) domain.EnrichedView {
	return domain.EnrichedView{
		ID:        post.ID,
		Content:   post.Content,
		CreatedAt: post.CreatedAt,
		Author:    author,
		LikeCount: likes,
		Liked:     liked,
	}
}
