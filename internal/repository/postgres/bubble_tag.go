package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/bubblefeed/internal/models"
)

type BubbleTagStore struct {
	pool *pgxpool.Pool
}

func NewBubbleTagStore(pool *pgxpool.Pool) *BubbleTagStore {
	return &BubbleTagStore{pool: pool}
}

const bubbleTagColumns = `id, bubble_id, content, is_advertisement, size_level`

func scanBubbleTag(row pgx.Row, t *models.BubbleTag) error {
	return row.Scan(&t.ID, &t.BubbleID, &t.Content, &t.IsAdvertisement, &t.SizeLevel)
}

func (s *BubbleTagStore) Create(ctx context.Context, t *models.BubbleTag) error {
	seeded := t.ID != 0

	var row pgx.Row
	if seeded {
		row = s.pool.QueryRow(ctx, `
			INSERT INTO bubble_tags (id, bubble_id, content, is_advertisement, size_level)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+bubbleTagColumns,
			t.ID, t.BubbleID, t.Content, t.IsAdvertisement, t.SizeLevel)
	} else {
		row = s.pool.QueryRow(ctx, `
			INSERT INTO bubble_tags (bubble_id, content, is_advertisement, size_level)
			VALUES ($1, $2, $3, $4)
			RETURNING `+bubbleTagColumns,
			t.BubbleID, t.Content, t.IsAdvertisement, t.SizeLevel)
	}
	if err := scanBubbleTag(row, t); err != nil {
		return fmt.Errorf("insert bubble tag: %w", err)
	}
	if seeded {
		return syncSequence(ctx, s.pool, "bubble_tags")
	}
	return nil
}

func (s *BubbleTagStore) Get(ctx context.Context, bubbleID, tagID int64) (*models.BubbleTag, error) {
	query := `SELECT ` + bubbleTagColumns + ` FROM bubble_tags WHERE id = $1 AND bubble_id = $2`

	var t models.BubbleTag
	if err := scanBubbleTag(s.pool.QueryRow(ctx, query, tagID, bubbleID), &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bubble tag: %w", err)
	}
	return &t, nil
}

func (s *BubbleTagStore) ListByBubble(ctx context.Context, bubbleID int64) ([]models.BubbleTag, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+bubbleTagColumns+` FROM bubble_tags WHERE bubble_id = $1 ORDER BY id`, bubbleID)
	if err != nil {
		return nil, fmt.Errorf("list bubble tags: %w", err)
	}
	defer rows.Close()

	tags := make([]models.BubbleTag, 0)
	for rows.Next() {
		var t models.BubbleTag
		if err := scanBubbleTag(rows, &t); err != nil {
			return nil, fmt.Errorf("scan bubble tag: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bubble tags: %w", err)
	}
	return tags, nil
}

func (s *BubbleTagStore) Update(ctx context.Context, t *models.BubbleTag) error {
	query := `
		UPDATE bubble_tags
		SET content = $2, is_advertisement = $3, size_level = $4
		WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, t.ID, t.Content, t.IsAdvertisement, t.SizeLevel); err != nil {
		return fmt.Errorf("update bubble tag: %w", err)
	}
	return nil
}

func (s *BubbleTagStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM bubble_tags WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete bubble tag: %w", err)
	}
	return nil
}
