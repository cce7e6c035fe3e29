package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/bubblefeed/internal/repository"
)

// NewRepositories returns every repository backed by the same pool.
// The pool is goroutine-safe, so sharing it is fine.
func NewRepositories(pool *pgxpool.Pool) repository.Repositories {
	return repository.Repositories{
		Users:      NewUserStore(pool),
		Bubbles:    NewBubbleStore(pool),
		BubbleTags: NewBubbleTagStore(pool),
		Feeds:      NewFeedStore(pool),
		FeedTags:   NewFeedTagStore(pool),
	}
}

var (
	_ repository.UserRepository      = (*UserStore)(nil)
	_ repository.BubbleRepository    = (*BubbleStore)(nil)
	_ repository.BubbleTagRepository = (*BubbleTagStore)(nil)
	_ repository.FeedRepository      = (*FeedStore)(nil)
	_ repository.FeedTagRepository   = (*FeedTagStore)(nil)
)
