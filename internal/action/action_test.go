package action

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract runs against every Store implementation.
func storeContract(t *testing.T, s Store) {
	ctx := context.Background()

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"none","id":0}`, string(got))

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	updates, err := s.Subscribe(subCtx)
	require.NoError(t, err)

	payload := json.RawMessage(`{"action":"jump","id":7,"extra":[1,2]}`)
	require.NoError(t, s.Set(ctx, payload))

	got, err = s.Get(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, string(payload), string(got))
	assert.JSONEq(t, string(payload), string(receive(t, updates)))

	require.NoError(t, s.Set(ctx, json.RawMessage(`{"action":"spin"}`)))
	receive(t, updates)
	require.NoError(t, s.Reset(ctx))

	got, err = s.Get(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"none","id":0}`, string(got))
	assert.JSONEq(t, `{"action":"none","id":0}`, string(receive(t, updates)))

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-updates:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func receive(t *testing.T, ch <-chan json.RawMessage) json.RawMessage {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return nil
	}
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestMemoryStoreCopiesPayload(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	payload := json.RawMessage(`{"action":"a"}`)
	require.NoError(t, s.Set(ctx, payload))
	payload[2] = 'X'

	got, err := s.Get(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"a"}`, string(got))
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Set(ctx, json.RawMessage(`{"action":"x","id":1}`)))
		}()
		go func() {
			defer wg.Done()
			got, err := s.Get(ctx)
			assert.NoError(t, err)
			assert.True(t, json.Valid(got))
		}()
	}
	wg.Wait()
}

// TestRedisStore needs a live Redis, e.g. TEST_REDIS_URL=redis://localhost:6379/15.
func TestRedisStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	require.NoError(t, client.Del(ctx, redisKey).Err())

	s := NewRedisStoreFromClient(client)
	defer s.Close()

	storeContract(t, s)
}
