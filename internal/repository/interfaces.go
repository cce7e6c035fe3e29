package repository

import (
	"context"

	"github.com/lalith-99/bubblefeed/internal/models"
)

// Conventions shared by every repository:
//
//   - context.Context comes first on every method.
//   - Lookups return nil, nil when the row does not exist. Handlers turn
//     that into a 404.
//   - List methods return an empty slice, never nil, so JSON gets [].
//   - Create assigns an ID when the model's ID is 0 and keeps a
//     caller-supplied ID otherwise (fixture seeding). The model is updated
//     in place with the stored values.
//   - Update writes every mutable column of the given model. Callers fetch,
//     patch and then update.
//   - Foreign keys are plain columns. Nothing cascades on delete.

// UserRepository handles feed authors.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	Delete(ctx context.Context, id int64) error

	// HasFeeds reports whether any feed references the user.
	HasFeeds(ctx context.Context, id int64) (bool, error)
}

// BubbleRepository returns bubbles with their Tags populated.
type BubbleRepository interface {
	Create(ctx context.Context, b *models.Bubble) error
	GetByID(ctx context.Context, id int64) (*models.Bubble, error)
	List(ctx context.Context) ([]models.Bubble, error)
	Update(ctx context.Context, b *models.Bubble) error
	Delete(ctx context.Context, id int64) error

	// HasChildren reports whether any bubble tag or feed references the bubble.
	HasChildren(ctx context.Context, id int64) (bool, error)
}

type BubbleTagRepository interface {
	Create(ctx context.Context, t *models.BubbleTag) error

	// Get returns the tag only if it belongs to bubbleID.
	Get(ctx context.Context, bubbleID, tagID int64) (*models.BubbleTag, error)
	ListByBubble(ctx context.Context, bubbleID int64) ([]models.BubbleTag, error)
	Update(ctx context.Context, t *models.BubbleTag) error
	Delete(ctx context.Context, id int64) error
}

// FeedRepository returns feeds hydrated with their author and tags.
// Every list is ordered by like_count descending, ties by id ascending.
type FeedRepository interface {
	Create(ctx context.Context, f *models.Feed) error
	GetByID(ctx context.Context, id int64) (*models.Feed, error)

	// GetInBubble returns the feed only if it belongs to bubbleID.
	GetInBubble(ctx context.Context, bubbleID, feedID int64) (*models.Feed, error)
	List(ctx context.Context) ([]models.Feed, error)
	ListByBubble(ctx context.Context, bubbleID int64) ([]models.Feed, error)

	// TopByBubble returns at most limit feeds of the bubble whose
	// like_count is strictly greater than minLikes.
	TopByBubble(ctx context.Context, bubbleID int64, minLikes, limit int) ([]models.Feed, error)
	Update(ctx context.Context, f *models.Feed) error

	// ToggleLike atomically flips is_liked and moves like_count by one.
	// Returns nil, nil if the feed does not exist.
	ToggleLike(ctx context.Context, id int64) (*models.Feed, error)
	Delete(ctx context.Context, id int64) error

	// HasTags reports whether any feed tag references the feed.
	HasTags(ctx context.Context, id int64) (bool, error)
}

type FeedTagRepository interface {
	Create(ctx context.Context, t *models.FeedTag) error

	// Get returns the tag only if it belongs to feedID.
	Get(ctx context.Context, feedID, tagID int64) (*models.FeedTag, error)
	ListByFeed(ctx context.Context, feedID int64) ([]models.FeedTag, error)
	Update(ctx context.Context, t *models.FeedTag) error
	Delete(ctx context.Context, id int64) error
}

// Repositories bundles one implementation of every repository so the
// storage backend can be chosen in one place.
type Repositories struct {
	Users      UserRepository
	Bubbles    BubbleRepository
	BubbleTags BubbleTagRepository
	Feeds      FeedRepository
	FeedTags   FeedTagRepository
}
