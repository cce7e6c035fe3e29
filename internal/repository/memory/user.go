package memory

import (
	"context"
	"fmt"

	"github.com/lalith-99/bubblefeed/internal/models"
)

type UserStore struct {
	db *DB
}

func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(_ context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, taken := s.db.users.rows[u.ID]; u.ID != 0 && taken {
		return fmt.Errorf("insert user: id %d already exists", u.ID)
	}
	u.ID = s.db.users.assign(u.ID)
	s.db.users.rows[u.ID] = *u
	return nil
}

func (s *UserStore) GetByID(_ context.Context, id int64) (*models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	u, ok := s.db.users.rows[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *UserStore) List(_ context.Context) ([]models.User, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	users := make([]models.User, 0, len(s.db.users.rows))
	for _, id := range s.db.users.sortedIDs() {
		users = append(users, s.db.users.rows[id])
	}
	return users, nil
}

func (s *UserStore) Update(_ context.Context, u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users.rows[u.ID]; ok {
		s.db.users.rows[u.ID] = *u
	}
	return nil
}

func (s *UserStore) Delete(_ context.Context, id int64) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	delete(s.db.users.rows, id)
	return nil
}

func (s *UserStore) HasFeeds(_ context.Context, id int64) (bool, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	for _, f := range s.db.feeds.rows {
		if f.UserID == id {
			return true, nil
		}
	}
	return false, nil
}
