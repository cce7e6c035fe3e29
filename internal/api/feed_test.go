package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostAndLikeScenario(t *testing.T) {
	e := newTestEnv(t)

	u := e.create(t, "/users", `{"username":"ann","profile_image_url":"u.png"}`)
	assert.EqualValues(t, 1, u["id"])
	assert.Equal(t, false, u["is_sponsor"])

	b := e.create(t, "/bubbles", `{"image_url":"b.png","title":"t","size_level":1,"pos_x":0,"pos_y":1,"pos_z":2}`)
	assert.EqualValues(t, 1, b["id"])
	assert.Equal(t, []any{}, b["tags"])

	f := e.create(t, "/bubbles/1/feeds", `{"user_id":1,"content":"hi","media_url":"m.png","media_type":"image"}`)
	assert.EqualValues(t, 0, f["like_count"])
	assert.Equal(t, false, f["is_liked"])
	assert.Equal(t, []any{}, f["tags"])

	w := e.do(t, http.MethodPost, "/feeds/1/like", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.EqualValues(t, 1, got["like_count"])
	assert.Equal(t, true, got["is_liked"])

	w = e.do(t, http.MethodPost, "/feeds/1/like", "")
	require.Equal(t, http.StatusOK, w.Code)
	got = decode(t, w)
	assert.EqualValues(t, 0, got["like_count"])
	assert.Equal(t, false, got["is_liked"])
}

func TestFeedLifecycle(t *testing.T) {
	e := newTestEnv(t)
	e.create(t, "/users", aliceJSON)
	e.create(t, "/bubbles", bubbleJSON)

	f := e.create(t, "/bubbles/1/feeds", feedJSON(1, 150))
	assert.EqualValues(t, 1, f["id"])
	assert.EqualValues(t, 1, f["bubble_id"])
	assert.EqualValues(t, 150, f["like_count"])
	assert.Equal(t, false, f["is_liked"])
	assert.NotEmpty(t, f["created_at"])
	assert.NotContains(t, f, "user_id")
	author := f["user"].(map[string]any)
	assert.Equal(t, "alice", author["username"])

	w := e.do(t, http.MethodPost, "/feeds/1/like", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.EqualValues(t, 151, got["like_count"])
	assert.Equal(t, true, got["is_liked"])

	w = e.do(t, http.MethodGet, "/bubbles/1/feeds/top4", "")
	require.Equal(t, http.StatusOK, w.Code)
	top := decodeList(t, w)
	require.Len(t, top, 1)
	assert.EqualValues(t, 151, top[0]["like_count"])

	w = e.do(t, http.MethodPut, "/bubbles/1/feeds/1", `{"content":"edited","view_count":9}`)
	require.Equal(t, http.StatusOK, w.Code)
	got = decode(t, w)
	assert.Equal(t, "edited", got["content"])
	assert.EqualValues(t, 9, got["view_count"])
	assert.EqualValues(t, 151, got["like_count"])

	w = e.do(t, http.MethodDelete, "/bubbles/1/feeds/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Feed deleted successfully", decode(t, w)["message"])

	w = e.do(t, http.MethodGet, "/feeds/1", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "feed not found", decode(t, w)["error"])
}

func TestCreateFeedChecksParents(t *testing.T) {
	e := newTestEnv(t)
	e.create(t, "/users", aliceJSON)

	w := e.do(t, http.MethodPost, "/bubbles/1/feeds", feedJSON(1, 0))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "bubble not found", decode(t, w)["error"])

	e.create(t, "/bubbles", bubbleJSON)
	w = e.do(t, http.MethodPost, "/bubbles/1/feeds", feedJSON(42, 0))
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user not found", decode(t, w)["error"])
}

func TestCreateFeedValidation(t *testing.T) {
	e := newTestEnv(t)
	e.create(t, "/bubbles", bubbleJSON)

	w := e.do(t, http.MethodPost, "/bubbles/1/feeds",
		`{"user_id":1,"content":"c","media_url":"u","media_type":"gif"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	got := decode(t, w)
	assert.Equal(t, map[string]any{"media_type": "oneof=image video"}, got["fields"])

	w = e.do(t, http.MethodPost, "/bubbles/1/feeds", `{"content":"c"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]any)
	assert.Contains(t, fields, "user_id")
	assert.Contains(t, fields, "media_url")
	assert.Contains(t, fields, "media_type")
}

func TestToggleLikeIsSelfInverse(t *testing.T) {
	e := newTestEnv(t)
	e.create(t, "/users", aliceJSON)
	e.create(t, "/bubbles", bubbleJSON)
	e.create(t, "/bubbles/1/feeds", feedJSON(1, 10))

	for i := 0; i < 6; i++ {
		path := "/feeds/1/like"
		if i%2 == 1 {
			path = "/feed/1/like"
		}
		w := e.do(t, http.MethodPost, path, "")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := e.do(t, http.MethodGet, "/feeds/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.EqualValues(t, 10, got["like_count"])
	assert.Equal(t, false, got["is_liked"])

	w = e.do(t, http.MethodPost, "/feeds/7/like", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTopFeeds(t *testing.T) {
	e := newTestEnv(t)
	e.create(t, "/users", aliceJSON)
	e.create(t, "/bubbles", bubbleJSON)
	e.create(t, "/bubbles", bubbleJSON)

	for _, likes := range []int{50, 101, 200, 100, 150, 300, 120} {
		e.create(t, "/bubbles/1/feeds", feedJSON(1, likes))
	}
	e.create(t, "/bubbles/2/feeds", feedJSON(1, 999))

	w := e.do(t, http.MethodGet, "/bubbles/1/feeds/top4", "")
	require.Equal(t, http.StatusOK, w.Code)
	top := decodeList(t, w)
	require.Len(t, top, 4)
	var likes []float64
	for _, f := range top {
		likes = append(likes, f["like_count"].(float64))
		assert.EqualValues(t, 1, f["bubble_id"])
	}
	assert.Equal(t, []float64{300, 200, 150, 120}, likes)

	w = e.do(t, http.MethodGet, "/bubbles/1/feeds", "")
	require.Equal(t, http.StatusOK, w.Code)
	all := decodeList(t, w)
	require.Len(t, all, 7)
	assert.EqualValues(t, 300, all[0]["like_count"])
	assert.EqualValues(t, 50, all[6]["like_count"])

	w = e.do(t, http.MethodGet, "/feeds", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeList(t, w), 8)
}

func TestTopFeedsEmpty(t *testing.T) {
	e := newTestEnv(t)
	e.create(t, "/users", aliceJSON)
	e.create(t, "/bubbles", bubbleJSON)
	e.create(t, "/bubbles/1/feeds", feedJSON(1, 100))

	w := e.do(t, http.MethodGet, "/bubbles/1/feeds/top4", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = e.do(t, http.MethodGet, "/bubbles/5/feeds/top4", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestFeedScopedToBubble(t *testing.T) {
	e := newTestEnv(t)
	e.create(t, "/users", aliceJSON)
	e.create(t, "/bubbles", bubbleJSON)
	e.create(t, "/bubbles", bubbleJSON)
	e.create(t, "/bubbles/1/feeds", feedJSON(1, 0))

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := e.do(t, method, "/bubbles/2/feeds/1", "")
		require.Equal(t, http.StatusNotFound, w.Code, method)
	}
}

func TestDeletedAuthorLeavesNullUser(t *testing.T) {
	e := newTestEnv(t)
	e.create(t, "/users", aliceJSON)
	e.create(t, "/bubbles", bubbleJSON)
	e.create(t, "/bubbles/1/feeds", feedJSON(1, 0))

	w := e.do(t, http.MethodDelete, "/users/1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/bubbles/1/feeds/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.Contains(t, got, "user")
	assert.Nil(t, got["user"])
}

func TestFeedTags(t *testing.T) {
	e := newTestEnv(t)
	e.create(t, "/users", aliceJSON)
	e.create(t, "/bubbles", bubbleJSON)
	e.create(t, "/bubbles/1/feeds", feedJSON(1, 0))
	e.create(t, "/bubbles/1/feeds", feedJSON(1, 0))

	for i := 1; i <= 2; i++ {
		tag := e.create(t, "/feeds/1/tags", fmt.Sprintf(`{"content":"tag %d"}`, i))
		assert.EqualValues(t, 1, tag["feed_id"])
	}

	w := e.do(t, http.MethodGet, "/feeds/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["tags"], 2)

	w = e.do(t, http.MethodGet, "/feeds/2/tags/1", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, http.MethodPut, "/feeds/1/tags/2", `{"is_advertisement":true}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode(t, w)
	assert.Equal(t, true, got["is_advertisement"])
	assert.Equal(t, "tag 2", got["content"])

	w = e.do(t, http.MethodPost, "/feeds/1/tags", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, map[string]any{"content": "required"}, decode(t, w)["fields"])

	w = e.do(t, http.MethodDelete, "/feeds/1/tags/1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodGet, "/feeds/1/tags", "")
	require.Equal(t, http.StatusOK, w.Code)
	tags := decodeList(t, w)
	require.Len(t, tags, 1)
	assert.EqualValues(t, 2, tags[0]["id"])
}
