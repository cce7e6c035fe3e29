// Package seed loads a JSON fixture into an empty store at startup.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/lalith-99/bubblefeed/internal/models"
	"github.com/lalith-99/bubblefeed/internal/repository"
	"go.uber.org/zap"
)

// Fixture is the seed file layout. Every entry may carry an explicit id.
// Feed tags are plain strings nested under their feed.
type Fixture struct {
	Users      []User      `json:"users"`
	Bubbles    []Bubble    `json:"bubbles"`
	BubbleTags []BubbleTag `json:"bubble_tags"`
	Feeds      []Feed      `json:"feeds"`
}

// Entries follow the same rules as the HTTP create bodies: the validate
// tags mirror the column limits and enums in db/schema.sql.
type User struct {
	ID              int64  `json:"id" validate:"gte=0"`
	Username        string `json:"username" validate:"max=150"`
	ProfileImageURL string `json:"profile_image_url" validate:"max=512"`
	IsSponsor       bool   `json:"is_sponsor"`
}

type Bubble struct {
	ID        int64   `json:"id" validate:"gte=0"`
	ImageURL  string  `json:"image_url" validate:"max=255"`
	Title     string  `json:"title" validate:"max=150"`
	SizeLevel int     `json:"size_level" validate:"oneof=1 2 3"`
	PosX      float64 `json:"pos_x"`
	PosY      float64 `json:"pos_y"`
	PosZ      float64 `json:"pos_z"`
}

type BubbleTag struct {
	ID              int64  `json:"id" validate:"gte=0"`
	BubbleID        int64  `json:"bubble_id" validate:"gt=0"`
	Content         string `json:"content" validate:"max=50"`
	IsAdvertisement bool   `json:"is_advertisement"`
	SizeLevel       int    `json:"size_level" validate:"oneof=1 2 3"`
}

type Feed struct {
	ID              int64      `json:"id" validate:"gte=0"`
	BubbleID        int64      `json:"bubble_id" validate:"gt=0"`
	UserID          int64      `json:"user_id" validate:"gt=0"`
	Content         string     `json:"content"`
	MediaURL        string     `json:"media_url" validate:"max=512"`
	MediaType       string     `json:"media_type" validate:"oneof=image video"`
	IsAdvertisement bool       `json:"is_advertisement"`
	CreatedAt       *time.Time `json:"created_at"`
	ViewCount       int        `json:"view_count" validate:"min=-2147483648,max=2147483647"`
	LikeCount       int        `json:"like_count" validate:"min=-2147483648,max=2147483647"`
	IsLiked         bool       `json:"is_liked"`
	Tags            []string   `json:"tags" validate:"dive,max=50"`
}

// validate reports fields by their fixture (JSON) names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Load reads and decodes a fixture file.
func Load(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a fixture. Unknown fields are rejected, so a misspelled
// section fails loudly instead of seeding nothing.
func Parse(raw []byte) (*Fixture, error) {
	var fx Fixture
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &fx, nil
}

// Counts summarizes what Apply inserted.
type Counts struct {
	Users, Bubbles, BubbleTags, Feeds, FeedTags int
}

// Apply inserts the fixture in dependency order: users, bubbles, bubble
// tags, then each feed followed by its tags. It stops at the first error.
//
// Every entry is validated before it is inserted. Bubble tags and feeds
// must name a bubble (and user) that already exists, from earlier in the
// fixture or from the store; the schema has no foreign keys to catch it.
func Apply(ctx context.Context, repos repository.Repositories, fx *Fixture, logger *zap.Logger) (Counts, error) {
	var c Counts

	for i, u := range fx.Users {
		if err := validate.Struct(u); err != nil {
			return c, fmt.Errorf("seed users[%d]: %w", i, err)
		}
		m := models.User{ID: u.ID, Username: u.Username, ProfileImageURL: u.ProfileImageURL, IsSponsor: u.IsSponsor}
		if err := repos.Users.Create(ctx, &m); err != nil {
			return c, fmt.Errorf("seed users[%d]: %w", i, err)
		}
		c.Users++
	}

	for i, b := range fx.Bubbles {
		if err := validate.Struct(b); err != nil {
			return c, fmt.Errorf("seed bubbles[%d]: %w", i, err)
		}
		m := models.Bubble{
			ID: b.ID, ImageURL: b.ImageURL, Title: b.Title, SizeLevel: b.SizeLevel,
			PosX: b.PosX, PosY: b.PosY, PosZ: b.PosZ,
		}
		if err := repos.Bubbles.Create(ctx, &m); err != nil {
			return c, fmt.Errorf("seed bubbles[%d]: %w", i, err)
		}
		c.Bubbles++
	}

	for i, t := range fx.BubbleTags {
		if err := validate.Struct(t); err != nil {
			return c, fmt.Errorf("seed bubble_tags[%d]: %w", i, err)
		}
		if err := requireBubble(ctx, repos, t.BubbleID); err != nil {
			return c, fmt.Errorf("seed bubble_tags[%d]: %w", i, err)
		}
		m := models.BubbleTag{
			ID: t.ID, BubbleID: t.BubbleID, Content: t.Content,
			IsAdvertisement: t.IsAdvertisement, SizeLevel: t.SizeLevel,
		}
		if err := repos.BubbleTags.Create(ctx, &m); err != nil {
			return c, fmt.Errorf("seed bubble_tags[%d]: %w", i, err)
		}
		c.BubbleTags++
	}

	for i, f := range fx.Feeds {
		if err := validate.Struct(f); err != nil {
			return c, fmt.Errorf("seed feeds[%d]: %w", i, err)
		}
		if err := requireBubble(ctx, repos, f.BubbleID); err != nil {
			return c, fmt.Errorf("seed feeds[%d]: %w", i, err)
		}
		if err := requireUser(ctx, repos, f.UserID); err != nil {
			return c, fmt.Errorf("seed feeds[%d]: %w", i, err)
		}
		m := models.Feed{
			ID: f.ID, BubbleID: f.BubbleID, UserID: f.UserID, Content: f.Content,
			MediaURL: f.MediaURL, MediaType: f.MediaType, IsAdvertisement: f.IsAdvertisement,
			ViewCount: f.ViewCount, LikeCount: f.LikeCount, IsLiked: f.IsLiked,
		}
		if f.CreatedAt != nil {
			m.CreatedAt = *f.CreatedAt
		}
		if err := repos.Feeds.Create(ctx, &m); err != nil {
			return c, fmt.Errorf("seed feeds[%d]: %w", i, err)
		}
		c.Feeds++

		// m.ID is the stored id now, generated or not.
		for j, content := range f.Tags {
			tag := models.FeedTag{FeedID: m.ID, Content: content}
			if err := repos.FeedTags.Create(ctx, &tag); err != nil {
				return c, fmt.Errorf("seed feeds[%d].tags[%d]: %w", i, j, err)
			}
			c.FeedTags++
		}
	}

	logger.Info("fixture seeded",
		zap.Int("users", c.Users),
		zap.Int("bubbles", c.Bubbles),
		zap.Int("bubble_tags", c.BubbleTags),
		zap.Int("feeds", c.Feeds),
		zap.Int("feed_tags", c.FeedTags),
	)
	return c, nil
}

// ErrMissingParent is returned when a fixture entry names a bubble or
// user that does not exist.
var ErrMissingParent = errors.New("parent not found")

func requireBubble(ctx context.Context, repos repository.Repositories, id int64) error {
	b, err := repos.Bubbles.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("look up bubble %d: %w", id, err)
	}
	if b == nil {
		return fmt.Errorf("bubble %d not found: %w", id, ErrMissingParent)
	}
	return nil
}

func requireUser(ctx context.Context, repos repository.Repositories, id int64) error {
	u, err := repos.Users.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("look up user %d: %w", id, err)
	}
	if u == nil {
		return fmt.Errorf("user %d not found: %w", id, ErrMissingParent)
	}
	return nil
}
