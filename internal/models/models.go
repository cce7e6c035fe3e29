package models

import (
	"time"
)

const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// User authors feeds. IsSponsor marks accounts whose feeds are paid placements.
type User struct {
	ID              int64  `json:"id"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
	IsSponsor       bool   `json:"is_sponsor"`
}

// Bubble is a spatial marker in the VR scene. Feeds and bubble tags hang
// off it by BubbleID.
//
// SizeLevel is 1, 2 or 3. Tags is filled by the repository on reads and is
// never nil after a read, so it serializes as [].
type Bubble struct {
	ID        int64       `json:"id"`
	ImageURL  string      `json:"image_url"`
	Title     string      `json:"title"`
	SizeLevel int         `json:"size_level"`
	Tags      []BubbleTag `json:"tags"`
	PosX      float64     `json:"pos_x"`
	PosY      float64     `json:"pos_y"`
	PosZ      float64     `json:"pos_z"`
}

type BubbleTag struct {
	ID              int64  `json:"id"`
	BubbleID        int64  `json:"bubble_id"`
	Content         string `json:"content"`
	IsAdvertisement bool   `json:"is_advertisement"`
	SizeLevel       int    `json:"size_level"`
}

// Feed is a media post inside a bubble.
//
// UserID is the stored foreign key. User is the joined author row and is
// nil when that row no longer exists. LikeCount moves in lockstep with
// IsLiked through the like toggle.
type Feed struct {
	ID              int64     `json:"id"`
	BubbleID        int64     `json:"bubble_id"`
	UserID          int64     `json:"-"`
	User            *User     `json:"user"`
	Content         string    `json:"content"`
	MediaURL        string    `json:"media_url"`
	MediaType       string    `json:"media_type"`
	IsAdvertisement bool      `json:"is_advertisement"`
	CreatedAt       time.Time `json:"created_at"`
	ViewCount       int       `json:"view_count"`
	LikeCount       int       `json:"like_count"`
	IsLiked         bool      `json:"is_liked"`
	Tags            []FeedTag `json:"tags"`
}

// ToggleLike flips IsLiked and moves LikeCount by one in the same direction.
// There is no floor: a count edited to 0 while liked goes to -1.
func (f *Feed) ToggleLike() {
	if f.IsLiked {
		f.LikeCount--
	} else {
		f.LikeCount++
	}
	f.IsLiked = !f.IsLiked
}

type FeedTag struct {
	ID              int64  `json:"id"`
	FeedID          int64  `json:"feed_id"`
	Content         string `json:"content"`
	IsAdvertisement bool   `json:"is_advertisement"`
}
