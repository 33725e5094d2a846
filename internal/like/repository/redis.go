package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AlibekovAA/smalltalk-feed/internal/like/domain"
	"github.com/AlibekovAA/smalltalk-feed/internal/observability/metrics"
	userdomain "github.com/AlibekovAA/smalltalk-feed/internal/user/domain"
)

// RedisRepository keeps one set of user ids per post under post:{id}:likes.
type RedisRepository struct {
	client *redis.Client
}

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func likesKey(postID int64) string {
	return fmt.Sprintf("post:%d:likes", postID)
}

func member(userID userdomain.ID) string {
	return strconv.FormatInt(int64(userID), 10)
}

func observe(operation string, start time.Time, err error) error {
	metrics.RedisCommandDurationSeconds.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.RedisCommandErrors.WithLabelValues(operation).Inc()
		return fmt.Errorf("failed to %s: %w", operation, err)
	}
	return nil
}

func (r *RedisRepository) CountForPost(ctx context.Context, postID int64) (int64, error) {
	start := time.Now()
	n, err := r.client.SCard(ctx, likesKey(postID)).Result()
	if err := observe("count_likes", start, err); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *RedisRepository) IsLikedBy(ctx context.Context, postID int64, userID userdomain.ID) (bool, error) {
	start := time.Now()
	ok, err := r.client.SIsMember(ctx, likesKey(postID), member(userID)).Result()
	if err := observe("is_liked", start, err); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *RedisRepository) CountForPosts(ctx context.Context, postIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	start := time.Now()
	pipe := r.client.Pipeline()
	cmds := make(map[int64]*redis.IntCmd, len(postIDs))
	for _, id := range postIDs {
		if _, seen := cmds[id]; seen {
			continue
		}
		cmds[id] = pipe.SCard(ctx, likesKey(id))
	}

	_, err := pipe.Exec(ctx)
	if err := observe("count_likes_batch", start, err); err != nil {
		return nil, err
	}

	for id, cmd := range cmds {
		counts[id] = cmd.Val()
	}
	return counts, nil
}

func (r *RedisRepository) LikedBy(ctx context.Context, likes []domain.Like) (map[domain.Like]bool, error) {
	result := make(map[domain.Like]bool, len(likes))
	if len(likes) == 0 {
		return result, nil
	}

	start := time.Now()
	pipe := r.client.Pipeline()
	cmds := make(map[domain.Like]*redis.BoolCmd, len(likes))
	for _, l := range likes {
		if _, seen := cmds[l]; seen {
			continue
		}
		cmds[l] = pipe.SIsMember(ctx, likesKey(l.PostID), member(l.UserID))
	}

	_, err := pipe.Exec(ctx)
	if err := observe("is_liked_batch", start, err); err != nil {
		return nil, err
	}

	for l, cmd := range cmds {
		result[l] = cmd.Val()
	}
	return result, nil
}

func (r *RedisRepository) Like(ctx context.Context, like domain.Like) error {
	start := time.Now()
	err := r.client.SAdd(ctx, likesKey(like.PostID), member(like.UserID)).Err()
	return observe("like", start, err)
}

func (r *RedisRepository) Unlike(ctx context.Context, like domain.Like) error {
	start := time.Now()
	err := r.client.SRem(ctx, likesKey(like.PostID), member(like.UserID)).Err()
	return observe("unlike", start, err)
}
