package memory

import (
	"context"
	"fmt"

	"github.com/lalith-99/bubblefeed/internal/models"
)

type BubbleStore struct {
	db *DB
}

func NewBubbleStore(db *DB) *BubbleStore {
	return &BubbleStore{db: db}
}

func (s *BubbleStore) Create(_ context.Context, b *models.Bubble) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, taken := s.db.bubbles.rows[b.ID]; b.ID != 0 && taken {
		return fmt.Errorf("insert bubble: id %d already exists", b.ID)
	}
	b.ID = s.db.bubbles.assign(b.ID)
	b.Tags = nil
	s.db.bubbles.rows[b.ID] = *b
	*b = s.db.hydrateBubble(*b)
	return nil
}

func (s *BubbleStore) GetByID(_ context.Context, id int64) (*models.Bubble, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	b, ok := s.db.bubbles.rows[id]
	if !ok {
		return nil, nil
	}
	b = s.db.hydrateBubble(b)
	return &b, nil
}

func (s *BubbleStore) List(_ context.Context) ([]models.Bubble, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	bubbles := make([]models.Bubble, 0, len(s.db.bubbles.rows))
	for _, id := range s.db.bubbles.sortedIDs() {
		bubbles = append(bubbles, s.db.hydrateBubble(s.db.bubbles.rows[id]))
	}
	return bubbles, nil
}

func (s *BubbleStore) Update(_ context.Context, b *models.Bubble) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.bubbles.rows[b.ID]; ok {
		stored := *b
		stored.Tags = nil
		s.db.bubbles.rows[b.ID] = stored
	}
	return nil
}

func (s *BubbleStore) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	delete(s.db.bubbles.rows, id)
	return nil
}

func (s *BubbleStore) HasChildren(_ context.Context, id int64) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, t := range s.db.bubbleTags.rows {
		if t.BubbleID == id {
			return true, nil
		}
	}
	for _, f := range s.db.feeds.rows {
		if f.BubbleID == id {
			return true, nil
		}
	}
	return false, nil
}
