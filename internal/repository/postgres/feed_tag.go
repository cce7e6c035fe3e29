package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/bubblefeed/internal/models"
)

type FeedTagStore struct {
	pool *pgxpool.Pool
}

func NewFeedTagStore(pool *pgxpool.Pool) *FeedTagStore {
	return &FeedTagStore{pool: pool}
}

const feedTagColumns = `id, feed_id, content, is_advertisement`

func scanFeedTag(row pgx.Row, t *models.FeedTag) error {
	return row.Scan(&t.ID, &t.FeedID, &t.Content, &t.IsAdvertisement)
}

func (s *FeedTagStore) Create(ctx context.Context, t *models.FeedTag) error {
	seeded := t.ID != 0

	var row pgx.Row
	if seeded {
		row = s.pool.QueryRow(ctx, `
			INSERT INTO feed_tags (id, feed_id, content, is_advertisement)
			VALUES ($1, $2, $3, $4)
			RETURNING `+feedTagColumns,
			t.ID, t.FeedID, t.Content, t.IsAdvertisement)
	} else {
		row = s.pool.QueryRow(ctx, `
			INSERT INTO feed_tags (feed_id, content, is_advertisement)
			VALUES ($1, $2, $3)
			RETURNING `+feedTagColumns,
			t.FeedID, t.Content, t.IsAdvertisement)
	}
	if err := scanFeedTag(row, t); err != nil {
		return fmt.Errorf("insert feed tag: %w", err)
	}
	if seeded {
		return syncSequence(ctx, s.pool, "feed_tags")
	}
	return nil
}

func (s *FeedTagStore) Get(ctx context.Context, feedID, tagID int64) (*models.FeedTag, error) {
	query := `SELECT ` + feedTagColumns + ` FROM feed_tags WHERE id = $1 AND feed_id = $2`

	var t models.FeedTag
	if err := scanFeedTag(s.pool.QueryRow(ctx, query, tagID, feedID), &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get feed tag: %w", err)
	}
	return &t, nil
}

func (s *FeedTagStore) ListByFeed(ctx context.Context, feedID int64) ([]models.FeedTag, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+feedTagColumns+` FROM feed_tags WHERE feed_id = $1 ORDER BY id`, feedID)
	if err != nil {
		return nil, fmt.Errorf("list feed tags: %w", err)
	}
	defer rows.Close()

	tags := make([]models.FeedTag, 0)
	for rows.Next() {
		var t models.FeedTag
		if err := scanFeedTag(rows, &t); err != nil {
			return nil, fmt.Errorf("scan feed tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feed tags: %w", err)
	}
	return tags, nil
}

func (s *FeedTagStore) Update(ctx context.Context, t *models.FeedTag) error {
	query := `UPDATE feed_tags SET content = $2, is_advertisement = $3 WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, t.ID, t.Content, t.IsAdvertisement); err != nil {
		return fmt.Errorf("update feed tag: %w", err)
	}
	return nil
}

func (s *FeedTagStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM feed_tags WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete feed tag: %w", err)
	}
	return nil
}
