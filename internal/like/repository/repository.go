package repository

import (
	"context"

	"github.com/AlibekovAA/smalltalk-feed/internal/like/domain"
	userdomain "github.com/AlibekovAA/smalltalk-feed/internal/user/domain"
)

type Repository interface {
	CountForPost(ctx context.Context, postID int64) (int64, error)
	IsLikedBy(ctx context.Context, postID int64, userID userdomain.ID) (bool, error)
	// CountForPosts and LikedBy answer for many posts in one round trip.
	CountForPosts(ctx context.Context, postIDs []int64) (map[int64]int64, error)
	LikedBy(ctx context.Context, likes []domain.Like) (map[domain.Like]bool, error)
	Like(ctx context.Context, like domain.Like) error
	Unlike(ctx context.Context, like domain.Like) error
}
