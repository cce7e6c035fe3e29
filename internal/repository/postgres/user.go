package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/bubblefeed/internal/models"
)

type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

const userColumns = `id, username, profile_image_url, is_sponsor`

func scanUser(row pgx.Row, u *models.User) error {
	return row.Scan(&u.ID, &u.Username, &u.ProfileImageURL, &u.IsSponsor)
}

// Create inserts a user. Postgres assigns the ID unless u.ID is already set.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	if u.ID != 0 {
		query := `
			INSERT INTO users (id, username, profile_image_url, is_sponsor)
			VALUES ($1, $2, $3, $4)
			RETURNING ` + userColumns
		if err := scanUser(s.pool.QueryRow(ctx, query, u.ID, u.Username, u.ProfileImageURL, u.IsSponsor), u); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		return syncSequence(ctx, s.pool, "users")
	}

	query := `
		INSERT INTO users (username, profile_image_url, is_sponsor)
		VALUES ($1, $2, $3)
		RETURNING ` + userColumns
	if err := scanUser(s.pool.QueryRow(ctx, query, u.Username, u.ProfileImageURL, u.IsSponsor), u); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u models.User
	if err := scanUser(s.pool.QueryRow(ctx, query, id), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (s *UserStore) Update(ctx context.Context, u *models.User) error {
	query := `
		UPDATE users
		SET username = $2, profile_image_url = $3, is_sponsor = $4
		WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, u.ID, u.Username, u.ProfileImageURL, u.IsSponsor); err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (s *UserStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *UserStore) HasFeeds(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, s.pool, `SELECT EXISTS (SELECT 1 FROM feeds WHERE user_id = $1)`, id)
}
