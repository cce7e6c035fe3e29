package memory

import (
	"context"
	"fmt"

	"github.com/lalith-99/bubblefeed/internal/models"
)

type BubbleTagStore struct {
	db *DB
}

func NewBubbleTagStore(db *DB) *BubbleTagStore {
	return &BubbleTagStore{db: db}
}

func (s *BubbleTagStore) Create(_ context.Context, t *models.BubbleTag) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, taken := s.db.bubbleTags.rows[t.ID]; t.ID != 0 && taken {
		return fmt.Errorf("insert bubble tag: id %d already exists", t.ID)
	}
	t.ID = s.db.bubbleTags.assign(t.ID)
	s.db.bubbleTags.rows[t.ID] = *t
	return nil
}

func (s *BubbleTagStore) Get(_ context.Context, bubbleID, tagID int64) (*models.BubbleTag, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	t, ok := s.db.bubbleTags.rows[tagID]
	if !ok || t.BubbleID != bubbleID {
		return nil, nil
	}
	return &t, nil
}

func (s *BubbleTagStore) ListByBubble(_ context.Context, bubbleID int64) ([]models.BubbleTag, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return s.db.bubbleTagsOf(bubbleID), nil
}

func (s *BubbleTagStore) Update(_ context.Context, t *models.BubbleTag) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if stored, ok := s.db.bubbleTags.rows[t.ID]; ok {
		stored.Content = t.Content
		stored.IsAdvertisement = t.IsAdvertisement
		stored.SizeLevel = t.SizeLevel
		s.db.bubbleTags.rows[t.ID] = stored
	}
	return nil
}

func (s *BubbleTagStore) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	delete(s.db.bubbleTags.rows, id)
	return nil
}

type FeedTagStore struct {
	db *DB
}

func NewFeedTagStore(db *DB) *FeedTagStore {
	return &FeedTagStore{db: db}
}

func (s *FeedTagStore) Create(_ context.Context, t *models.FeedTag) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, taken := s.db.feedTags.rows[t.ID]; t.ID != 0 && taken {
		return fmt.Errorf("insert feed tag: id %d already exists", t.ID)
	}
	t.ID = s.db.feedTags.assign(t.ID)
	s.db.feedTags.rows[t.ID] = *t
	return nil
}

func (s *FeedTagStore) Get(_ context.Context, feedID, tagID int64) (*models.FeedTag, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	t, ok := s.db.feedTags.rows[tagID]
	if !ok || t.FeedID != feedID {
		return nil, nil
	}
	return &t, nil
}

func (s *FeedTagStore) ListByFeed(_ context.Context, feedID int64) ([]models.FeedTag, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	return s.db.feedTagsOf(feedID), nil
}

func (s *FeedTagStore) Update(_ context.Context, t *models.FeedTag) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if stored, ok := s.db.feedTags.rows[t.ID]; ok {
		stored.Content = t.Content
		stored.IsAdvertisement = t.IsAdvertisement
		s.db.feedTags.rows[t.ID] = stored
	}
	return nil
}

func (s *FeedTagStore) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	delete(s.db.feedTags.rows, id)
	return nil
}
