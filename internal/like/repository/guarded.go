package repository

import (
	"context"

	"github.com/AlibekovAA/smalltalk-feed/internal/common/resilience"
	"github.com/AlibekovAA/smalltalk-feed/internal/like/domain"
	userdomain "github.com/AlibekovAA/smalltalk-feed/internal/user/domain"
)

// GuardedRepository routes every call through a circuit breaker so an
// unreachable like store fails fast instead of stalling each feed read.
type GuardedRepository struct {
	next    Repository
	breaker *resilience.CircuitBreaker
}

func NewGuardedRepository(next Repository, breaker *resilience.CircuitBreaker) *GuardedRepository {
	return &GuardedRepository{next: next, breaker: breaker}
}

func (r *GuardedRepository) CountForPost(ctx context.Context, postID int64) (int64, error) {
	var n int64
	err := r.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		n, err = r.next.CountForPost(ctx, postID)
		return err
	})
	return n, err
}

func (r *GuardedRepository) IsLikedBy(ctx context.Context, postID int64, userID userdomain.ID) (bool, error) {
	var liked bool
	err := r.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		liked, err = r.next.IsLikedBy(ctx, postID, userID)
		return err
	})
	return liked, err
}

func (r *GuardedRepository) CountForPosts(ctx context.Context, postIDs []int64) (map[int64]int64, error) {
	var counts map[int64]int64
	err := r.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		counts, err = r.next.CountForPosts(ctx, postIDs)
		return err
	})
	return counts, err
}

func (r *GuardedRepository) LikedBy(ctx context.Context, likes []domain.Like) (map[domain.Like]bool, error) {
	var liked map[domain.Like]bool
	err := r.breaker.Call(ctx, func(ctx context.Context) error {
		var err error
		liked, err = r.next.LikedBy(ctx, likes)
		return err
	})
	return liked, err
}

func (r *GuardedRepository) Like(ctx context.Context, like domain.Like) error {
	return r.breaker.Call(ctx, func(ctx context.Context) error {
		return r.next.Like(ctx, like)
	})
}

func (r *GuardedRepository) Unlike(ctx context.Context, like domain.Like) error {
	return r.breaker.Call(ctx, func(ctx context.Context) error {
		return r.next.Unlike(ctx, like)
	})
}
