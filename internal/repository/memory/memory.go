// Package memory keeps every table in process memory behind one RWMutex.
// It backs STORAGE_DRIVER=memory and the handler tests. Values are copied
// in and out, so callers never share state with the store.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/lalith-99/bubblefeed/internal/models"
	"github.com/lalith-99/bubblefeed/internal/repository"
)

type table[T any] struct {
	rows   map[int64]T
	nextID int64
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[int64]T), nextID: 1}
}

// assign returns id when set, otherwise the next free id. The counter
// always stays ahead of the largest id seen.
func (t *table[T]) assign(id int64) int64 {
	if id == 0 {
		id = t.nextID
	}
	if id >= t.nextID {
		t.nextID = id + 1
	}
	return id
}

// sortedIDs returns the row ids in ascending order.
func (t *table[T]) sortedIDs() []int64 {
	ids := make([]int64, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// DB is the shared state behind every memory store.
type DB struct {
	mu         sync.RWMutex
	users      *table[models.User]
	bubbles    *table[models.Bubble]
	bubbleTags *table[models.BubbleTag]
	feeds      *table[models.Feed]
	feedTags   *table[models.FeedTag]

	now func() time.Time
}

func New() *DB {
	return &DB{
		users:      newTable[models.User](),
		bubbles:    newTable[models.Bubble](),
		bubbleTags: newTable[models.BubbleTag](),
		feeds:      newTable[models.Feed](),
		feedTags:   newTable[models.FeedTag](),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Repositories returns every repository backed by db.
func (db *DB) Repositories() repository.Repositories {
	return repository.Repositories{
		Users:      NewUserStore(db),
		Bubbles:    NewBubbleStore(db),
		BubbleTags: NewBubbleTagStore(db),
		Feeds:      NewFeedStore(db),
		FeedTags:   NewFeedTagStore(db),
	}
}

// The helpers below expect db.mu to be held.

func (db *DB) bubbleTagsOf(bubbleID int64) []models.BubbleTag {
	tags := make([]models.BubbleTag, 0)
	for _, id := range db.bubbleTags.sortedIDs() {
		if t := db.bubbleTags.rows[id]; t.BubbleID == bubbleID {
			tags = append(tags, t)
		}
	}
	return tags
}

func (db *DB) feedTagsOf(feedID int64) []models.FeedTag {
	tags := make([]models.FeedTag, 0)
	for _, id := range db.feedTags.sortedIDs() {
		if t := db.feedTags.rows[id]; t.FeedID == feedID {
			tags = append(tags, t)
		}
	}
	return tags
}

func (db *DB) hydrateBubble(b models.Bubble) models.Bubble {
	b.Tags = db.bubbleTagsOf(b.ID)
	return b
}

// hydrateFeed joins the author and tags the way the SQL store does: a
// missing author leaves User nil.
func (db *DB) hydrateFeed(f models.Feed) models.Feed {
	f.User = nil
	if u, ok := db.users.rows[f.UserID]; ok {
		f.User = &u
	}
	f.Tags = db.feedTagsOf(f.ID)
	return f
}

var (
	_ repository.UserRepository      = (*UserStore)(nil)
	_ repository.BubbleRepository    = (*BubbleStore)(nil)
	_ repository.BubbleTagRepository = (*BubbleTagStore)(nil)
	_ repository.FeedRepository      = (*FeedStore)(nil)
	_ repository.FeedTagRepository   = (*FeedTagStore)(nil)
)
