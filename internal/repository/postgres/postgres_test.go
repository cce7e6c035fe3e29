package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/lalith-99/bubblefeed/internal/db"
	"github.com/lalith-99/bubblefeed/internal/models"
	"github.com/lalith-99/bubblefeed/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// openTestRepos drops and recreates the schema in TEST_DATABASE_URL.
// Point it at a throwaway database.
func openTestRepos(t *testing.T) repository.Repositories {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	database, err := db.New(ctx, url, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(database.Close)
	require.NoError(t, database.ResetSchema(ctx))
	require.NoError(t, database.Health(ctx))
	return NewRepositories(database.Pool())
}

func TestPostgresRepositories(t *testing.T) {
	repos := openTestRepos(t)
	ctx := context.Background()

	u := models.User{Username: "alice", ProfileImageURL: "a.png"}
	require.NoError(t, repos.Users.Create(ctx, &u))
	assert.EqualValues(t, 1, u.ID)

	b := models.Bubble{ImageURL: "b.png", Title: "Cafe", SizeLevel: 2, PosX: 1, PosY: 2, PosZ: 3}
	require.NoError(t, repos.Bubbles.Create(ctx, &b))
	assert.NotNil(t, b.Tags)

	bt := models.BubbleTag{BubbleID: b.ID, Content: "coffee", SizeLevel: 1}
	require.NoError(t, repos.BubbleTags.Create(ctx, &bt))

	got, err := repos.Bubbles.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, got.Tags, 1)
	assert.Equal(t, "coffee", got.Tags[0].Content)

	missing, err := repos.BubbleTags.Get(ctx, b.ID+1, bt.ID)
	require.NoError(t, err)
	assert.Nil(t, missing)

	for _, likes := range []int{50, 101, 300, 150, 120, 200} {
		f := models.Feed{
			BubbleID: b.ID, UserID: u.ID, Content: "c", MediaURL: "m",
			MediaType: models.MediaTypeImage, LikeCount: likes,
		}
		require.NoError(t, repos.Feeds.Create(ctx, &f))
		require.NotNil(t, f.User)
		assert.Equal(t, "alice", f.User.Username)
		assert.False(t, f.CreatedAt.IsZero())
	}

	top, err := repos.Feeds.TopByBubble(ctx, b.ID, 100, 4)
	require.NoError(t, err)
	require.Len(t, top, 4)
	assert.Equal(t, 300, top[0].LikeCount)
	assert.Equal(t, 150, top[3].LikeCount)

	ft := models.FeedTag{FeedID: top[0].ID, Content: "sale"}
	require.NoError(t, repos.FeedTags.Create(ctx, &ft))
	has, err := repos.Feeds.HasTags(ctx, top[0].ID)
	require.NoError(t, err)
	assert.True(t, has)

	liked, err := repos.Feeds.ToggleLike(ctx, top[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 301, liked.LikeCount)
	assert.True(t, liked.IsLiked)
	require.Len(t, liked.Tags, 1)

	unliked, err := repos.Feeds.ToggleLike(ctx, top[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 300, unliked.LikeCount)
	assert.False(t, unliked.IsLiked)

	none, err := repos.Feeds.ToggleLike(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, none)

	// Deleting the author leaves feeds with no joined user.
	require.NoError(t, repos.Users.Delete(ctx, u.ID))
	orphan, err := repos.Feeds.GetByID(ctx, top[0].ID)
	require.NoError(t, err)
	require.NotNil(t, orphan)
	assert.Nil(t, orphan.User)
}

func TestPostgresExplicitIDs(t *testing.T) {
	repos := openTestRepos(t)
	ctx := context.Background()

	seeded := models.User{ID: 10, Username: "seeded"}
	require.NoError(t, repos.Users.Create(ctx, &seeded))

	next := models.User{Username: "next"}
	require.NoError(t, repos.Users.Create(ctx, &next))
	assert.EqualValues(t, 11, next.ID)

	b := models.Bubble{SizeLevel: 1}
	require.NoError(t, repos.Bubbles.Create(ctx, &b))
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f := models.Feed{ID: 5, BubbleID: b.ID, UserID: next.ID, MediaType: models.MediaTypeVideo, CreatedAt: at}
	require.NoError(t, repos.Feeds.Create(ctx, &f))
	assert.True(t, at.Equal(f.CreatedAt))
}
