package rounddb

import (
	"time"

	"github.com/uptrace/bun"
)

// Participant kinds.
const (
	KindPlayer = "player"
	KindGuest  = "guest"
)

// Fairway and green-in-regulation outcome values.
const (
	OutcomeHit   = "hit"
	OutcomeLeft  = "left"
	OutcomeRight = "right"
	OutcomeShort = "short"
	OutcomeLong  = "long"
)

// Round represents one playing of a course by up to four participants.
type Round struct {
	bun.BaseModel `bun:"table:rounds,alias:r"`

	ID                int64      `bun:"id,pk,autoincrement"`
	OwnerPlayerID     int64      `bun:"owner_player_id,notnull"`
	CourseID          int64      `bun:"course_id,notnull"`
	TeeID             *int64     `bun:"tee_id,nullzero"`
	TournamentID      *int64     `bun:"tournament_id,nullzero"`
	TournamentGroupID *int64     `bun:"tournament_group_id,nullzero"`
	StatsEnabled      bool       `bun:"stats_enabled,notnull,default:false"`
	StartedAt         time.Time  `bun:"started_at,notnull,default:current_timestamp"`
	CompletedAt       *time.Time `bun:"completed_at,nullzero"`
	CreatedAt         time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt         time.Time  `bun:"updated_at,notnull,default:current_timestamp"`

	Participants []RoundParticipant `bun:"rel:has-many,join:id=round_id"`
	Cells        []ScoreCell        `bun:"rel:has-many,join:id=round_id"`
}

// IsCompleted reports whether the round has been closed out.
func (r *Round) IsCompleted() bool {
	return r.CompletedAt != nil
}

// RoundParticipant is one scorecard column: a registered player or a guest.
type RoundParticipant struct {
	bun.BaseModel `bun:"table:round_participants,alias:rp"`

	ID            int64     `bun:"id,pk,autoincrement"`
	RoundID       int64     `bun:"round_id,notnull"`
	Kind          string    `bun:"kind,notnull"`
	PlayerID      *int64    `bun:"player_id,nullzero"`
	GuestKey      *string   `bun:"guest_key,nullzero"`
	GuestName     *string   `bun:"guest_name,nullzero"`
	GuestHandicap *float64  `bun:"guest_handicap,nullzero"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// ScoreCell holds one participant's result on one hole. Cells reference holes
// by number, not by hole row id, so course holes can be replaced without
// touching existing scorecards.
type ScoreCell struct {
	bun.BaseModel `bun:"table:score_cells,alias:sc"`

	ID            int64     `bun:"id,pk,autoincrement"`
	RoundID       int64     `bun:"round_id,notnull"`
	ParticipantID int64     `bun:"participant_id,notnull"`
	HoleNumber    int       `bun:"hole_number,notnull"`
	Strokes       int       `bun:"strokes,notnull"`
	Putts         *int      `bun:"putts,nullzero"`
	Fairway       *string   `bun:"fairway,nullzero"`
	Gir           *string   `bun:"gir,nullzero"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// RoundSummary is the list-view projection of a round.
type RoundSummary struct {
	ID                int64      `bun:"id"`
	CourseID          int64      `bun:"course_id"`
	CourseName        string     `bun:"course_name"`
	OwnerPlayerID     int64      `bun:"owner_player_id"`
	TournamentID      *int64     `bun:"tournament_id"`
	StartedAt         time.Time  `bun:"started_at"`
	CompletedAt       *time.Time `bun:"completed_at"`
	ParticipantsCount int        `bun:"participants_count"`
	HolesCount        int        `bun:"holes_count"`
	TotalPar          int        `bun:"total_par"`
}

// ParticipantInfo joins a participant row with its player profile so display
// labels can be resolved in one query.
type ParticipantInfo struct {
	ID            int64    `bun:"id"`
	RoundID       int64    `bun:"round_id"`
	Kind          string   `bun:"kind"`
	PlayerID      *int64   `bun:"player_id"`
	GuestKey      *string  `bun:"guest_key"`
	GuestName     *string  `bun:"guest_name"`
	GuestHandicap *float64 `bun:"guest_handicap"`
	ExternalID    *string  `bun:"external_id"`
	Username      *string  `bun:"username"`
	Email         *string  `bun:"email"`
	PlayerName    *string  `bun:"player_name"`
	Handicap      *float64 `bun:"handicap"`
}

// Ref returns the stable reference clients use to address this participant:
// the player's external id, or the guest key for guests.
func (p ParticipantInfo) Ref() string {
	if p.Kind == KindGuest {
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
func (p ParticipantInfo) DisplayName() string {
	if p.Kind == KindGuest {
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

// TournamentLockState carries the pause/finish markers of the tournament a
// round is bound to. Both nil means scoring is unrestricted.
type TournamentLockState struct {
	PausedAt    *time.Time `bun:"paused_at"`
	CompletedAt *time.Time `bun:"completed_at"`
}
