package socialdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Activity event kinds. Hole kinds carry the hole number; round kinds use
// hole number 0.
const (
	KindBirdie    = "birdie"
	KindEagle     = "eagle"
	KindAlbatross = "albatross"
	KindPBOverall = "pb_overall"
	KindPBCourse  = "pb_course"
)

// Friendship is one direction of an accepted friendship. Every friendship
// stores two rows, one per direction, so friend lists are a single equality
// scan.
type Friendship struct {
	bun.BaseModel `bun:"table:friends,alias:f"`

	ID        int64     `bun:"id,pk,autoincrement"`
	PlayerID  int64     `bun:"player_id,notnull"`
	FriendID  int64     `bun:"friend_id,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// FriendRequest is a directed pending request. Accepting it creates both
// friendship rows and removes the request.
type FriendRequest struct {
	bun.BaseModel `bun:"table:friend_requests,alias:fr"`

	ID          int64     `bun:"id,pk,autoincrement"`
	RequesterID int64     `bun:"requester_id,notnull"`
	RecipientID int64     `bun:"recipient_id,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// ActivityEvent is one noteworthy score: a birdie-or-better hole or a
// personal best on round completion. The unique key on (round, player, hole,
// kind) makes projection replays idempotent.
type ActivityEvent struct {
	bun.BaseModel `bun:"table:activity_events,alias:ae"`

	ID         int64     `bun:"id,pk,autoincrement"`
	PlayerID   int64     `bun:"player_id,notnull"`
	RoundID    int64     `bun:"round_id,notnull"`
	HoleNumber int       `bun:"hole_number,notnull"`
	Strokes    int       `bun:"strokes,notnull"`
	Par        int       `bun:"par,notnull"`
	Kind       string    `bun:"kind,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// FriendInfo is one friend list entry with profile fields joined in.
type FriendInfo struct {
	PlayerID   int64     `bun:"player_id"`
	ExternalID string    `bun:"external_id"`
	Username   *string   `bun:"username"`
	Name       *string   `bun:"name"`
	Handicap   *float64  `bun:"handicap"`
	FriendsAt  time.Time `bun:"friends_at"`
}

// RequestInfo is one incoming pending request with the requester's profile
// joined in.
type RequestInfo struct {
	ID                  int64     `bun:"id"`
	RequesterID         int64     `bun:"requester_id"`
	RequesterExternalID string    `bun:"requester_external_id"`
	RequesterUsername   *string   `bun:"requester_username"`
	RequesterName       *string   `bun:"requester_name"`
	CreatedAt           time.Time `bun:"created_at"`
}

// ActivityInfo is one feed entry: an activity event with the actor and
// course joined in.
type ActivityInfo struct {
	ID                 int64     `bun:"id"`
	PlayerID           int64     `bun:"player_id"`
	PlayerExternalID   string    `bun:"player_external_id"`
	PlayerUsername     *string   `bun:"player_username"`
	PlayerName         *string   `bun:"player_name"`
	RoundID            int64     `bun:"round_id"`
	CourseID           int64     `bun:"course_id"`
	CourseName         string    `bun:"course_name"`
	HoleNumber         int       `bun:"hole_number"`
	Strokes            int       `bun:"strokes"`
	Par                int       `bun:"par"`
	Kind               string    `bun:"kind"`
	CreatedAt          time.Time `bun:"created_at"`
}
