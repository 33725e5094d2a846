package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/smalltalk-feed/internal/common/db"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/logger"
	"github.com/AlibekovAA/smalltalk-feed/internal/post/domain"
	userdomain "github.com/AlibekovAA/smalltalk-feed/internal/user/domain"
)

type Repository interface {
	List(ctx context.Context) ([]domain.Post, error)
	ListPage(ctx context.Context, page int) ([]domain.Post, error)
	FindByID(ctx context.Context, id int64) (domain.Post, error)
	ListByAuthor(ctx context.Context, authorID userdomain.ID) ([]domain.Post, error)
	Create(ctx context.Context, post domain.Post) (domain.Post, error)
}

var (
	ErrPostNotFound = errors.New("post not found")
	ErrInvalidPage  = errors.New("invalid page")
)

const (
	postsTable = "posts"

	selectPostColumns = `SELECT id, content, created_at, user_id FROM posts`
	newestFirst       = ` ORDER BY created_at DESC, id DESC`
)

type PgRepository struct {
	pool     *pgxpool.Pool
	pageSize int
	log      *logger.Logger
}

func NewPgRepository(pool *pgxpool.Pool, pageSize int, log *logger.Logger) *PgRepository {
	return &PgRepository{pool: pool, pageSize: pageSize, log: log}
}

// PageOffset returns the row offset of page for the given page size.
func PageOffset(page, pageSize int) (int, error) {
	if pageSize <= 0 {
		return 0, fmt.Errorf("%w: page size %d", ErrInvalidPage, pageSize)
	}
	if page < 1 {
		return 0, fmt.Errorf("%w: page %d", ErrInvalidPage, page)
	}
	return (page - 1) * pageSize, nil
}

func (r *PgRepository) List(ctx context.Context) ([]domain.Post, error) {
	return r.query(ctx, "list_posts", selectPostColumns+newestFirst)
}

func (r *PgRepository) ListPage(ctx context.Context, page int) ([]domain.Post, error) {
	offset, err := PageOffset(page, r.pageSize)
	if err != nil {
		return nil, err
	}
	return r.query(ctx, "list_posts_page", selectPostColumns+newestFirst+` LIMIT $1 OFFSET $2`, r.pageSize, offset)
}

func (r *PgRepository) ListByAuthor(ctx context.Context, authorID userdomain.ID) ([]domain.Post, error) {
	return r.query(ctx, "list_posts_by_author", selectPostColumns+` WHERE user_id = $1`+newestFirst, int64(authorID))
}

func (r *PgRepository) FindByID(ctx context.Context, id int64) (domain.Post, error) {
	var post domain.Post
	err := db.RetryWithBackoff(ctx, r.log, db.DefaultRetryConfig, func() error {
		start := time.Now()
		row := r.pool.QueryRow(ctx, selectPostColumns+` WHERE id = $1`, id)
		err := row.Scan(&post.ID, &post.Content, &post.CreatedAt, &post.AuthorID)
		return db.HandleQueryError(err, ErrPostNotFound, "find_post_by_id", postsTable, start)
	})
	if err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

// Create inserts post and returns it with the assigned id. Inserts are never retried.
func (r *PgRepository) Create(ctx context.Context, post domain.Post) (domain.Post, error) {
	start := time.Now()
	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO posts (content, created_at, user_id) VALUES ($1, $2, $3) RETURNING id`,
		post.Content,
		post.CreatedAt,
		int64(post.AuthorID),
	).Scan(&post.ID)
	if err := db.HandleExecError(err, "create_post", postsTable, start); err != nil {
		return domain.Post{}, err
	}
	return post, nil
}

func (r *PgRepository) query(ctx context.Context, operation, sql string, args ...any) ([]domain.Post, error) {
	var posts []domain.Post
	err := db.RetryWithBackoff(ctx, r.log, db.DefaultRetryConfig, func() error {
		posts = posts[:0]
		start := time.Now()
		rows, err := r.pool.Query(ctx, sql, args...)
		if err != nil {
			return db.HandleExecError(err, operation, postsTable, start)
		}
		defer rows.Close()

		posts, err = scanPosts(rows)
		if err != nil {
			return err
		}
		return db.HandleExecError(rows.Err(), operation, postsTable, start)
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func scanPosts(rows pgx.Rows) ([]domain.Post, error) {
	posts := make([]domain.Post, 0)
	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Content, &p.CreatedAt, &p.AuthorID); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}
