package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/bubblefeed/internal/models"
)

type BubbleStore struct {
	pool *pgxpool.Pool
	tags *BubbleTagStore
}

func NewBubbleStore(pool *pgxpool.Pool) *BubbleStore {
	return &BubbleStore{pool: pool, tags: NewBubbleTagStore(pool)}
}

const bubbleColumns = `id, image_url, title, size_level, pos_x, pos_y, pos_z`

func scanBubble(row pgx.Row, b *models.Bubble) error {
	return row.Scan(&b.ID, &b.ImageURL, &b.Title, &b.SizeLevel, &b.PosX, &b.PosY, &b.PosZ)
}

func (s *BubbleStore) Create(ctx context.Context, b *models.Bubble) error {
	var row pgx.Row
	if b.ID != 0 {
		row = s.pool.QueryRow(ctx, `
			INSERT INTO bubbles (id, image_url, title, size_level, pos_x, pos_y, pos_z)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+bubbleColumns,
			b.ID, b.ImageURL, b.Title, b.SizeLevel, b.PosX, b.PosY, b.PosZ)
	} else {
		row = s.pool.QueryRow(ctx, `
			INSERT INTO bubbles (image_url, title, size_level, pos_x, pos_y, pos_z)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+bubbleColumns,
			b.ImageURL, b.Title, b.SizeLevel, b.PosX, b.PosY, b.PosZ)
	}

	seeded := b.ID != 0
	if err := scanBubble(row, b); err != nil {
		return fmt.Errorf("insert bubble: %w", err)
	}
	if seeded {
		if err := syncSequence(ctx, s.pool, "bubbles"); err != nil {
			return err
		}
	}

	// A new bubble has no tags yet.
	b.Tags = make([]models.BubbleTag, 0)
	return nil
}

func (s *BubbleStore) GetByID(ctx context.Context, id int64) (*models.Bubble, error) {
	var b models.Bubble
	err := scanBubble(s.pool.QueryRow(ctx, `SELECT `+bubbleColumns+` FROM bubbles WHERE id = $1`, id), &b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get bubble: %w", err)
	}

	tags, err := s.tags.ListByBubble(ctx, id)
	if err != nil {
		return nil, err
	}
	b.Tags = tags
	return &b, nil
}

func (s *BubbleStore) List(ctx context.Context) ([]models.Bubble, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+bubbleColumns+` FROM bubbles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list bubbles: %w", err)
	}
	defer rows.Close()

	bubbles := make([]models.Bubble, 0)
	for rows.Next() {
		var b models.Bubble
		if err := scanBubble(rows, &b); err != nil {
			return nil, fmt.Errorf("scan bubble: %w", err)
		}
		b.Tags = make([]models.BubbleTag, 0)
		bubbles = append(bubbles, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bubbles: %w", err)
	}

	if err := s.attachTags(ctx, bubbles); err != nil {
		return nil, err
	}
	return bubbles, nil
}

// attachTags loads the tags of every bubble in one query.
func (s *BubbleStore) attachTags(ctx context.Context, bubbles []models.Bubble) error {
	if len(bubbles) == 0 {
		return nil
	}
	ids := make([]int64, len(bubbles))
	index := make(map[int64]int, len(bubbles))
	for i, b := range bubbles {
		ids[i] = b.ID
		index[b.ID] = i
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+bubbleTagColumns+` FROM bubble_tags WHERE bubble_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("list bubble tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.BubbleTag
		if err := scanBubbleTag(rows, &t); err != nil {
			return fmt.Errorf("scan bubble tag: %w", err)
		}
		i := index[t.BubbleID]
		bubbles[i].Tags = append(bubbles[i].Tags, t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate bubble tags: %w", err)
	}
	return nil
}

func (s *BubbleStore) Update(ctx context.Context, b *models.Bubble) error {
	query := `
		UPDATE bubbles
		SET image_url = $2, title = $3, size_level = $4, pos_x = $5, pos_y = $6, pos_z = $7
		WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, b.ID, b.ImageURL, b.Title, b.SizeLevel, b.PosX, b.PosY, b.PosZ); err != nil {
		return fmt.Errorf("update bubble: %w", err)
	}
	return nil
}

func (s *BubbleStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM bubbles WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete bubble: %w", err)
	}
	return nil
}

func (s *BubbleStore) HasChildren(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, s.pool, `
		SELECT EXISTS (SELECT 1 FROM bubble_tags WHERE bubble_id = $1)
		    OR EXISTS (SELECT 1 FROM feeds WHERE bubble_id = $1)`, id)
}
