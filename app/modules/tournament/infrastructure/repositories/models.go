package tournamentdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Tournament is a multi-group competition on a single course. Pausing and
// finishing lock the scorecards of every bound round; deleting detaches the
// rounds and leaves them standing.
type Tournament struct {
	bun.BaseModel `bun:"table:tournaments,alias:t"`

	ID            int64      `bun:"id,pk,autoincrement" json:"id"`
	OwnerPlayerID int64      `bun:"owner_player_id,notnull" json:"owner_player_id"`
	CourseID      int64      `bun:"course_id,notnull" json:"course_id"`
	Name          string     `bun:"name,notnull" json:"name"`
	IsPublic      bool       `bun:"is_public,notnull,default:false" json:"is_public"`
	PausedAt      *time.Time `bun:"paused_at,nullzero" json:"paused_at,omitempty"`
	PauseMessage  *string    `bun:"pause_message,nullzero" json:"pause_message,omitempty"`
	CompletedAt   *time.Time `bun:"completed_at,nullzero" json:"completed_at,omitempty"`
	CreatedAt     time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`

	Groups []TournamentGroup `bun:"rel:has-many,join:id=tournament_id" json:"groups,omitempty"`
}

// IsFinished reports whether the tournament has been finished. Finishing is
// terminal.
func (t *Tournament) IsFinished() bool {
	return t.CompletedAt != nil
}

// IsPaused reports whether the tournament is currently paused.
func (t *Tournament) IsPaused() bool {
	return t.PausedAt != nil
}

// TournamentGroup is a named slot that holds at most one round; the unique
// index on rounds.tournament_group_id enforces the bound.
type TournamentGroup struct {
	bun.BaseModel `bun:"table:tournament_groups,alias:tg"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	TournamentID int64     `bun:"tournament_id,notnull" json:"tournament_id"`
	Name         string    `bun:"name,notnull" json:"name"`
	Position     int       `bun:"position,notnull" json:"position"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// TournamentMember marks a player as belonging to a tournament. The owner is
// always a member; playing or accepting an invite adds the rest.
type TournamentMember struct {
	bun.BaseModel `bun:"table:tournament_members,alias:tm"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	TournamentID int64     `bun:"tournament_id,notnull" json:"tournament_id"`
	PlayerID     int64     `bun:"player_id,notnull" json:"player_id"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// TournamentInvite is a pending membership offer. A player holds at most one
// pending invite per tournament; accepting or declining removes the row.
type TournamentInvite struct {
	bun.BaseModel `bun:"table:tournament_invites,alias:ti"`

	ID           int64     `bun:"id,pk,autoincrement" json:"id"`
	TournamentID int64     `bun:"tournament_id,notnull" json:"tournament_id"`
	RequesterID  int64     `bun:"requester_id,notnull" json:"requester_id"`
	RecipientID  int64     `bun:"recipient_id,notnull" json:"recipient_id"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// TournamentSummary is the list projection with the course name and group
// count joined in.
type TournamentSummary struct {
	ID            int64      `bun:"id" json:"id"`
	Name          string     `bun:"name" json:"name"`
	CourseID      int64      `bun:"course_id" json:"course_id"`
	CourseName    string     `bun:"course_name" json:"course_name"`
	OwnerPlayerID int64      `bun:"owner_player_id" json:"owner_player_id"`
	IsPublic      bool       `bun:"is_public" json:"is_public"`
	PausedAt      *time.Time `bun:"paused_at" json:"paused_at,omitempty"`
	CompletedAt   *time.Time `bun:"completed_at" json:"completed_at,omitempty"`
	CreatedAt     time.Time  `bun:"created_at" json:"created_at"`
	GroupsCount   int        `bun:"groups_count" json:"groups_count"`
}

// GroupRound is a round bound to the tournament, as seen from the tournament
// side.
type GroupRound struct {
	RoundID           int64      `bun:"round_id"`
	GroupID           *int64     `bun:"group_id"`
	OwnerPlayerID     int64      `bun:"owner_player_id"`
	StartedAt         time.Time  `bun:"started_at"`
	CompletedAt       *time.Time `bun:"completed_at"`
	ParticipantsCount int        `bun:"participants_count"`
}

// ParticipantRow is one participant of a bound round with the player columns
// joined in, the leaderboard's raw material.
type ParticipantRow struct {
	ID         int64   `bun:"id"`
	RoundID    int64   `bun:"round_id"`
	GroupID    *int64  `bun:"group_id"`
	Kind       string  `bun:"kind"`
	PlayerID   *int64  `bun:"player_id"`
	GuestKey   *string `bun:"guest_key"`
	GuestName  *string `bun:"guest_name"`
	ExternalID *string `bun:"external_id"`
	Username   *string `bun:"username"`
	Email      *string `bun:"email"`
	PlayerName *string `bun:"player_name"`
}

// Ref returns the stable reference of the participant: the player's external
// id for registered players, the guest key for guests.
func (p *ParticipantRow) Ref() string {
	if p.Kind == "guest" {
		if p.GuestKey != nil {
			return *p.GuestKey
		}
		return ""
	}
	if p.ExternalID != nil {
		return *p.ExternalID
	}
	return ""
}

// DisplayName picks the best available label for the participant.
func (p *ParticipantRow) DisplayName() string {
	if p.Kind == "guest" {
		if p.GuestName != nil && *p.GuestName != "" {
			return *p.GuestName
		}
		return "Guest"
	}
	for _, candidate := range []*string{p.PlayerName, p.Username, p.Email, p.ExternalID} {
		if candidate != nil && *candidate != "" {
			return *candidate
		}
	}
	return "Player"
}

// ScoreRow is one recorded cell of a bound round.
type ScoreRow struct {
	ParticipantID int64 `bun:"participant_id"`
	HoleNumber    int   `bun:"hole_number"`
	Strokes       int   `bun:"strokes"`
}

// InviteInfo is the pending-invite projection for the recipient's inbox.
type InviteInfo struct {
	ID             int64     `bun:"id" json:"id"`
	TournamentID   int64     `bun:"tournament_id" json:"tournament_id"`
	TournamentName string    `bun:"tournament_name" json:"tournament_name"`
	RequesterID    int64     `bun:"requester_id" json:"requester_id"`
	RequesterLabel string    `bun:"requester_label" json:"requester_label"`
	CreatedAt      time.Time `bun:"created_at" json:"created_at"`
}
