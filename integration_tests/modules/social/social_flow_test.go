package social_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairway-collective/links-backend/integration_tests/testutils"
)

type playerResponse struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id"`
}

type friendView struct {
	PlayerID   int64  `json:"player_id"`
	ExternalID string `json:"external_id"`
}

type requestView struct {
	ID          int64 `json:"id"`
	RequesterID int64 `json:"requester_id"`
}

type sendRequestView struct {
	Accepted bool         `json:"accepted"`
	Request  *requestView `json:"request"`
}

type activityView struct {
	PlayerID   int64  `json:"player_id"`
	RoundID    int64  `json:"round_id"`
	HoleNumber int    `json:"hole_number"`
	Kind       string `json:"kind"`
}

func TestFriendshipFlow(t *testing.T) {
	env := testutils.Setup(t)
	gen := testutils.NewDataGenerator(7)

	alice := gen.ExternalID()
	bob := gen.ExternalID()

	var aliceRow, bobRow playerResponse
	require.Equal(t, http.StatusOK, env.DoJSON(t, http.MethodGet, "/api/v1/players/me", alice, nil, &aliceRow))
	require.Equal(t, http.StatusOK, env.DoJSON(t, http.MethodGet, "/api/v1/players/me", bob, nil, &bobRow))

	var sent sendRequestView
	status := env.DoJSON(t, http.MethodPost, "/api/v1/friends/requests", alice, map[string]any{
		"ref": bob,
	}, &sent)
	require.Equal(t, http.StatusCreated, status)
	require.False(t, sent.Accepted)
	require.NotNil(t, sent.Request)

	t.Run("duplicate request conflicts", func(t *testing.T) {
		status, body := env.Do(t, http.MethodPost, "/api/v1/friends/requests", alice, map[string]any{
			"ref": bob,
		})
		assert.Equal(t, http.StatusConflict, status)
		assert.Contains(t, string(body), "already sent")
	})

	var incoming []requestView
	status = env.DoJSON(t, http.MethodGet, "/api/v1/friends/requests", bob, nil, &incoming)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, incoming, 1)
	assert.Equal(t, aliceRow.ID, incoming[0].RequesterID)

	t.Run("accepting an unknown request id", func(t *testing.T) {
		status, _ := env.Do(t, http.MethodPost, "/api/v1/friends/requests/999999/accept", bob, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	status, _ = env.Do(t, http.MethodPost, fmt.Sprintf("/api/v1/friends/requests/%d/accept", incoming[0].ID), bob, nil)
	require.Equal(t, http.StatusNoContent, status)

	var aliceFriends, bobFriends []friendView
	require.Equal(t, http.StatusOK, env.DoJSON(t, http.MethodGet, "/api/v1/friends", alice, nil, &aliceFriends))
	require.Equal(t, http.StatusOK, env.DoJSON(t, http.MethodGet, "/api/v1/friends", bob, nil, &bobFriends))
	require.Len(t, aliceFriends, 1)
	require.Len(t, bobFriends, 1)
	assert.Equal(t, bob, aliceFriends[0].ExternalID)
	assert.Equal(t, alice, bobFriends[0].ExternalID)

	t.Run("request to an existing friend is a no-op accept", func(t *testing.T) {
		var again sendRequestView
		status := env.DoJSON(t, http.MethodPost, "/api/v1/friends/requests", alice, map[string]any{
			"ref": bob,
		}, &again)
		assert.Equal(t, http.StatusOK, status)
		assert.True(t, again.Accepted)
		assert.Nil(t, again.Request)
	})

	t.Run("remove friend is idempotent", func(t *testing.T) {
		status, _ := env.Do(t, http.MethodDelete, "/api/v1/friends/"+bob, alice, nil)
		assert.Equal(t, http.StatusNoContent, status)

		status, _ = env.Do(t, http.MethodDelete, "/api/v1/friends/"+bob, alice, nil)
		assert.Equal(t, http.StatusNoContent, status)

		var friends []friendView
		require.Equal(t, http.StatusOK, env.DoJSON(t, http.MethodGet, "/api/v1/friends", bob, nil, &friends))
		assert.Empty(t, friends)
	})
}

func TestActivityProjection(t *testing.T) {
	env := testutils.Setup(t)
	gen := testutils.NewDataGenerator(11)

	golfer := gen.ExternalID()
	follower := gen.ExternalID()

	var golferRow, followerRow playerResponse
	require.Equal(t, http.StatusOK, env.DoJSON(t, http.MethodGet, "/api/v1/players/me", golfer, nil, &golferRow))
	require.Equal(t, http.StatusOK, env.DoJSON(t, http.MethodGet, "/api/v1/players/me", follower, nil, &followerRow))

	// Make them friends so the follower's feed carries the golfer's events.
	var sent sendRequestView
	require.Equal(t, http.StatusCreated, env.DoJSON(t, http.MethodPost, "/api/v1/friends/requests", follower, map[string]any{
		"ref": golfer,
	}, &sent))
	var incoming []requestView
	require.Equal(t, http.StatusOK, env.DoJSON(t, http.MethodGet, "/api/v1/friends/requests", golfer, nil, &incoming))
	require.Len(t, incoming, 1)
	status, _ := env.Do(t, http.MethodPost, fmt.Sprintf("/api/v1/friends/requests/%d/accept", incoming[0].ID), golfer, nil)
	require.Equal(t, http.StatusNoContent, status)

	var course struct {
		ID int64 `json:"id"`
	}
	require.Equal(t, http.StatusCreated, env.DoJSON(t, http.MethodPost, "/api/v1/courses", golfer, gen.CoursePayload(9), &course))

	var round struct {
		ID int64 `json:"id"`
	}
	require.Equal(t, http.StatusCreated, env.DoJSON(t, http.MethodPost, "/api/v1/rounds", golfer, map[string]any{
		"course_id": course.ID,
	}, &round))

	// A birdie on the par-4 first hole.
	status, _ = env.Do(t, http.MethodPost, fmt.Sprintf("/api/v1/rounds/%d/scores", round.ID), golfer, map[string]any{
		"hole_number": 1,
		"strokes":     3,
	})
	require.Equal(t, http.StatusOK, status)

	// The projection flows through NATS, so the feed entry shows up
	// asynchronously.
	var feed []activityView
	found := testutils.Eventually(t, 15*time.Second, func() bool {
		feed = nil
		if status := env.DoJSON(t, http.MethodGet, "/api/v1/friends/activity", follower, nil, &feed); status != http.StatusOK {
			return false
		}
		return len(feed) > 0
	})
	require.True(t, found, "expected a birdie event in the friend feed")

	assert.Equal(t, golferRow.ID, feed[0].PlayerID)
	assert.Equal(t, round.ID, feed[0].RoundID)
	assert.Equal(t, 1, feed[0].HoleNumber)
	assert.Equal(t, "birdie", feed[0].Kind)
}
