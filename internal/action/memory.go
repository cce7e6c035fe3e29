package action

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
)

// subscriberBuffer bounds how far a slow subscriber may lag. Updates past
// that are dropped for that subscriber only; the slot itself is never lost.
const subscriberBuffer = 16

// MemoryStore keeps the slot in process memory. It is only shared by
// goroutines of one process.
type MemoryStore struct {
	mu      sync.RWMutex
	payload json.RawMessage

	subsMu sync.Mutex
	subs   map[chan json.RawMessage]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[chan json.RawMessage]struct{})}
}

func (s *MemoryStore) Get(_ context.Context) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(orDefault(s.payload)), nil
}

func (s *MemoryStore) Set(_ context.Context, payload json.RawMessage) error {
	p := clone(payload)

	s.mu.Lock()
	s.payload = p
	s.mu.Unlock()

	s.publish(orDefault(p))
	return nil
}

func (s *MemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	s.payload = nil
	s.mu.Unlock()

	s.publish(Default)
	return nil
}

func (s *MemoryStore) Subscribe(ctx context.Context) (<-chan json.RawMessage, error) {
	ch := make(chan json.RawMessage, subscriberBuffer)

	s.subsMu.Lock()
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	go func() {
		<-ctx.Done()
		s.subsMu.Lock()
		delete(s.subs, ch)
		close(ch)
		s.subsMu.Unlock()
	}()
	return ch, nil
}

func (s *MemoryStore) publish(payload json.RawMessage) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for ch := range s.subs {
		select {
		case ch <- clone(payload):
		default:
		}
	}
}

func clone(b json.RawMessage) json.RawMessage {
	if b == nil {
		return nil
	}
	out := make(json.RawMessage, len(b))
	copy(out, b)
	return out
}
