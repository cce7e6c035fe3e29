package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/lalith-99/bubblefeed/internal/models"
)

type FeedStore struct {
	db *DB
}

func NewFeedStore(db *DB) *FeedStore {
	return &FeedStore{db: db}
}

// stored strips the joined fields before a feed goes into the table.
func stored(f models.Feed) models.Feed {
	f.User = nil
	f.Tags = nil
	return f
}

func (s *FeedStore) Create(_ context.Context, f *models.Feed) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, taken := s.db.feeds.rows[f.ID]; f.ID != 0 && taken {
		return fmt.Errorf("insert feed: id %d already exists", f.ID)
	}
	f.ID = s.db.feeds.assign(f.ID)
	if f.CreatedAt.IsZero() {
		f.CreatedAt = s.db.now()
	}
	f.CreatedAt = f.CreatedAt.UTC()
	s.db.feeds.rows[f.ID] = stored(*f)
	*f = s.db.hydrateFeed(s.db.feeds.rows[f.ID])
	return nil
}

func (s *FeedStore) GetByID(_ context.Context, id int64) (*models.Feed, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	f, ok := s.db.feeds.rows[id]
	if !ok {
		return nil, nil
	}
	f = s.db.hydrateFeed(f)
	return &f, nil
}

func (s *FeedStore) GetInBubble(_ context.Context, bubbleID, feedID int64) (*models.Feed, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	f, ok := s.db.feeds.rows[feedID]
	if !ok || f.BubbleID != bubbleID {
		return nil, nil
	}
	f = s.db.hydrateFeed(f)
	return &f, nil
}

func (s *FeedStore) List(_ context.Context) ([]models.Feed, error) {
	return s.filter(func(models.Feed) bool { return true }, 0), nil
}

func (s *FeedStore) ListByBubble(_ context.Context, bubbleID int64) ([]models.Feed, error) {
	return s.filter(func(f models.Feed) bool { return f.BubbleID == bubbleID }, 0), nil
}

func (s *FeedStore) TopByBubble(_ context.Context, bubbleID int64, minLikes, limit int) ([]models.Feed, error) {
	return s.filter(func(f models.Feed) bool {
		return f.BubbleID == bubbleID && f.LikeCount > minLikes
	}, limit), nil
}

// filter returns the matching feeds ordered by like_count descending, ties
// by id. A limit of 0 means no limit.
func (s *FeedStore) filter(keep func(models.Feed) bool, limit int) []models.Feed {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	feeds := make([]models.Feed, 0)
	for _, f := range s.db.feeds.rows {
		if keep(f) {
			feeds = append(feeds, s.db.hydrateFeed(f))
		}
	}
	sort.Slice(feeds, func(i, j int) bool {
		if feeds[i].LikeCount != feeds[j].LikeCount {
			return feeds[i].LikeCount > feeds[j].LikeCount
		}
		return feeds[i].ID < feeds[j].ID
	})
	if limit > 0 && len(feeds) > limit {
		feeds = feeds[:limit]
	}
	return feeds
}

// Update writes the mutable columns. bubble_id, user_id and created_at
// never change after insert.
func (s *FeedStore) Update(_ context.Context, f *models.Feed) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cur, ok := s.db.feeds.rows[f.ID]
	if !ok {
		return nil
	}
	cur.Content = f.Content
	cur.MediaURL = f.MediaURL
	cur.MediaType = f.MediaType
	cur.IsAdvertisement = f.IsAdvertisement
	cur.ViewCount = f.ViewCount
	cur.LikeCount = f.LikeCount
	cur.IsLiked = f.IsLiked
	s.db.feeds.rows[f.ID] = cur
	return nil
}

func (s *FeedStore) ToggleLike(_ context.Context, id int64) (*models.Feed, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	f, ok := s.db.feeds.rows[id]
	if !ok {
		return nil, nil
	}
	f.ToggleLike()
	s.db.feeds.rows[id] = f

	f = s.db.hydrateFeed(f)
	return &f, nil
}

func (s *FeedStore) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	delete(s.db.feeds.rows, id)
	return nil
}

func (s *FeedStore) HasTags(_ context.Context, id int64) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, t := range s.db.feedTags.rows {
		if t.FeedID == id {
			return true, nil
		}
	}
	return false, nil
}
