package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/bubblefeed/internal/models"
)

type FeedStore struct {
	pool *pgxpool.Pool
	tags *FeedTagStore
}

func NewFeedStore(pool *pgxpool.Pool) *FeedStore {
	return &FeedStore{pool: pool, tags: NewFeedTagStore(pool)}
}

// The author is LEFT JOINed so a feed whose user row was deleted still
// loads, with User left nil.
const feedSelect = `
	SELECT f.id, f.bubble_id, f.user_id, f.content, f.media_url, f.media_type,
	       f.is_advertisement, f.created_at, f.view_count, f.like_count, f.is_liked,
	       u.id, u.username, u.profile_image_url, u.is_sponsor
	FROM feeds f
	LEFT JOIN users u ON u.id = f.user_id`

const feedOrder = ` ORDER BY f.like_count DESC, f.id ASC`

func scanFeed(row pgx.Row, f *models.Feed) error {
	var (
		userID          *int64
		username        *string
		profileImageURL *string
		isSponsor       *bool
	)
	err := row.Scan(
		&f.ID,
		&f.BubbleID,
		&f.UserID,
		&f.Content,
		&f.MediaURL,
		&f.MediaType,
		&f.IsAdvertisement,
		&f.CreatedAt,
		&f.ViewCount,
		&f.LikeCount,
		&f.IsLiked,
		&userID,
		&username,
		&profileImageURL,
		&isSponsor,
	)
	if err != nil {
		return err
	}

	f.CreatedAt = f.CreatedAt.UTC()
	f.User = nil
	if userID != nil {
		f.User = &models.User{
			ID:              *userID,
			Username:        *username,
			ProfileImageURL: *profileImageURL,
			IsSponsor:       *isSponsor,
		}
	}
	f.Tags = make([]models.FeedTag, 0)
	return nil
}

// Create inserts a feed and reloads it with its author. A zero CreatedAt
// is stamped with the current time.
func (s *FeedStore) Create(ctx context.Context, f *models.Feed) error {
	seeded := f.ID != 0
	createdAt := f.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	var err error
	if seeded {
		err = s.pool.QueryRow(ctx, `
			INSERT INTO feeds (id, bubble_id, user_id, content, media_url, media_type,
			                   is_advertisement, created_at, view_count, like_count, is_liked)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id`,
			f.ID, f.BubbleID, f.UserID, f.Content, f.MediaURL, f.MediaType,
			f.IsAdvertisement, createdAt, f.ViewCount, f.LikeCount, f.IsLiked,
		).Scan(&id)
	} else {
		err = s.pool.QueryRow(ctx, `
			INSERT INTO feeds (bubble_id, user_id, content, media_url, media_type,
			                   is_advertisement, created_at, view_count, like_count, is_liked)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id`,
			f.BubbleID, f.UserID, f.Content, f.MediaURL, f.MediaType,
			f.IsAdvertisement, createdAt, f.ViewCount, f.LikeCount, f.IsLiked,
		).Scan(&id)
	}
	if err != nil {
		return fmt.Errorf("insert feed: %w", err)
	}
	if seeded {
		if err := syncSequence(ctx, s.pool, "feeds"); err != nil {
			return err
		}
	}

	created, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if created == nil {
		return fmt.Errorf("insert feed: row %d vanished after insert", id)
	}
	*f = *created
	return nil
}

func (s *FeedStore) GetByID(ctx context.Context, id int64) (*models.Feed, error) {
	return s.getOne(ctx, feedSelect+` WHERE f.id = $1`, id)
}

func (s *FeedStore) GetInBubble(ctx context.Context, bubbleID, feedID int64) (*models.Feed, error) {
	return s.getOne(ctx, feedSelect+` WHERE f.id = $1 AND f.bubble_id = $2`, feedID, bubbleID)
}

func (s *FeedStore) getOne(ctx context.Context, query string, args ...any) (*models.Feed, error) {
	var f models.Feed
	if err := scanFeed(s.pool.QueryRow(ctx, query, args...), &f); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get feed: %w", err)
	}

	tags, err := s.tags.ListByFeed(ctx, f.ID)
	if err != nil {
		return nil, err
	}
	f.Tags = tags
	return &f, nil
}

func (s *FeedStore) List(ctx context.Context) ([]models.Feed, error) {
	return s.list(ctx, feedSelect+feedOrder)
}

func (s *FeedStore) ListByBubble(ctx context.Context, bubbleID int64) ([]models.Feed, error) {
	return s.list(ctx, feedSelect+` WHERE f.bubble_id = $1`+feedOrder, bubbleID)
}

func (s *FeedStore) TopByBubble(ctx context.Context, bubbleID int64, minLikes, limit int) ([]models.Feed, error) {
	return s.list(ctx, feedSelect+` WHERE f.bubble_id = $1 AND f.like_count > $2`+feedOrder+` LIMIT $3`,
		bubbleID, minLikes, limit)
}

func (s *FeedStore) list(ctx context.Context, query string, args ...any) ([]models.Feed, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	defer rows.Close()

	feeds := make([]models.Feed, 0)
	for rows.Next() {
		var f models.Feed
		if err := scanFeed(rows, &f); err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		feeds = append(feeds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feeds: %w", err)
	}

	if err := s.attachTags(ctx, feeds); err != nil {
		return nil, err
	}
	return feeds, nil
}

// attachTags loads the tags of every feed in one query.
func (s *FeedStore) attachTags(ctx context.Context, feeds []models.Feed) error {
	if len(feeds) == 0 {
		return nil
	}
	ids := make([]int64, len(feeds))
	index := make(map[int64]int, len(feeds))
	for i, f := range feeds {
		ids[i] = f.ID
		index[f.ID] = i
	}

	rows, err := s.pool.Query(ctx,
		`SELECT `+feedTagColumns+` FROM feed_tags WHERE feed_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return fmt.Errorf("list feed tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.FeedTag
		if err := scanFeedTag(rows, &t); err != nil {
			return fmt.Errorf("scan feed tag: %w", err)
		}
		i := index[t.FeedID]
		feeds[i].Tags = append(feeds[i].Tags, t)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate feed tags: %w", err)
	}
	return nil
}

func (s *FeedStore) Update(ctx context.Context, f *models.Feed) error {
	query := `
		UPDATE feeds
		SET content = $2, media_url = $3, media_type = $4, is_advertisement = $5,
		    view_count = $6, like_count = $7, is_liked = $8
		WHERE id = $1`

	_, err := s.pool.Exec(ctx, query,
		f.ID, f.Content, f.MediaURL, f.MediaType, f.IsAdvertisement,
		f.ViewCount, f.LikeCount, f.IsLiked,
	)
	if err != nil {
		return fmt.Errorf("update feed: %w", err)
	}
	return nil
}

// ToggleLike flips the like in a single UPDATE. The right-hand sides see
// the pre-update row, so the count moves in the direction of the old flag.
func (s *FeedStore) ToggleLike(ctx context.Context, id int64) (*models.Feed, error) {
	query := `
		UPDATE feeds
		SET like_count = like_count + CASE WHEN is_liked THEN -1 ELSE 1 END,
		    is_liked = NOT is_liked
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("toggle like: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return s.GetByID(ctx, id)
}

func (s *FeedStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM feeds WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete feed: %w", err)
	}
	return nil
}

func (s *FeedStore) HasTags(ctx context.Context, id int64) (bool, error) {
	return exists(ctx, s.pool, `SELECT EXISTS (SELECT 1 FROM feed_tags WHERE feed_id = $1)`, id)
}
