package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/smalltalk-feed/internal/common/db"
	"github.com/AlibekovAA/smalltalk-feed/internal/common/logger"
	"github.com/AlibekovAA/smalltalk-feed/internal/user/domain"
)

type Repository interface {
	FindByID(ctx context.Context, id domain.ID) (domain.User, error)
	FindByUsername(ctx context.Context, username string) (domain.User, error)
	// FindByIDs returns the users that exist; absent ids are simply missing from the map.
	FindByIDs(ctx context.Context, ids []domain.ID) (map[domain.ID]domain.User, error)
}

var ErrUserNotFound = errors.New("user not found")

const (
	usersTable = "users"

	selectUserColumns = `SELECT id, username, COALESCE(NULLIF(display_name, ''), username), created_at FROM users`
)

type PgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewPgRepository(pool *pgxpool.Pool, log *logger.Logger) *PgRepository {
	return &PgRepository{pool: pool, log: log}
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.User, error) {
	var user domain.User
	err := db.RetryWithBackoff(ctx, r.log, db.DefaultRetryConfig, func() error {
		start := time.Now()
		row := r.pool.QueryRow(ctx, selectUserColumns+` WHERE id = $1`, int64(id))
		err := row.Scan(&user.ID, &user.Username, &user.DisplayName, &user.CreatedAt)
		return db.HandleQueryError(err, ErrUserNotFound, "find_user_by_id", usersTable, start)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *PgRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	var user domain.User
	err := db.RetryWithBackoff(ctx, r.log, db.DefaultRetryConfig, func() error {
		start := time.Now()
		row := r.pool.QueryRow(ctx, selectUserColumns+` WHERE username = $1`, username)
		err := row.Scan(&user.ID, &user.Username, &user.DisplayName, &user.CreatedAt)
		return db.HandleQueryError(err, ErrUserNotFound, "find_user_by_username", usersTable, start)
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (r *PgRepository) FindByIDs(ctx context.Context, ids []domain.ID) (map[domain.ID]domain.User, error) {
	users := make(map[domain.ID]domain.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}

	raw := make([]int64, len(ids))
	for i, id := range ids {
		raw[i] = int64(id)
	}

	err := db.RetryWithBackoff(ctx, r.log, db.DefaultRetryConfig, func() error {
		start := time.Now()
		rows, err := r.pool.Query(ctx, selectUserColumns+` WHERE id = ANY($1)`, raw)
		if err != nil {
			return db.HandleQueryError(err, err, "find_users_by_ids", usersTable, start)
		}
		defer rows.Close()

		for rows.Next() {
			var u domain.User
			if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan user: %w", err)
			}
			users[u.ID] = u
		}
		return db.HandleQueryError(rows.Err(), rows.Err(), "find_users_by_ids", usersTable, start)
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
