package playerdb

import (
	"time"

	"github.com/uptrace/bun"
)

// Player represents a registered identity (source of truth). Guests never
// get a row here; they live on round_participants.
type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	ExternalID string    `bun:"external_id,unique,notnull" json:"external_id"`
	Username   *string   `bun:"username,unique,nullzero" json:"username,omitempty"`
	Email      *string   `bun:"email,unique,nullzero" json:"email,omitempty"`
	Name       *string   `bun:"name,nullzero" json:"name,omitempty"`
	Handicap   *float64  `bun:"handicap,nullzero" json:"handicap,omitempty"`
	Gender     *string   `bun:"gender,nullzero" json:"gender,omitempty"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

// Label returns the display name used in leaderboards and pickers.
func (p *Player) Label() string {
	switch {
	case p.Name != nil && *p.Name != "":
		return *p.Name
	case p.Username != nil && *p.Username != "":
		return *p.Username
	case p.Email != nil && *p.Email != "":
		return *p.Email
	default:
		return p.ExternalID
	}
}

// RoundAggregate is one completed round's totals for a player, used by the
// stats and chart endpoints.
type RoundAggregate struct {
	RoundID      int64     `bun:"round_id"`
	CourseID     int64     `bun:"course_id"`
	CourseName   string    `bun:"course_name"`
	HolesPlayed  int       `bun:"holes_played"`
	TotalStrokes int       `bun:"total_strokes"`
	TotalPar     int       `bun:"total_par"`
	CompletedAt  time.Time `bun:"completed_at"`
}

// ScoreToPar is the round total relative to par.
func (a RoundAggregate) ScoreToPar() int {
	return a.TotalStrokes - a.TotalPar
}

// ScoringAverages aggregates per-hole stats over completed rounds.
type ScoringAverages struct {
	HolesPlayed     int      `bun:"holes_played"`
	AvgPutts        *float64 `bun:"avg_putts"`
	FairwayRecorded int      `bun:"fairway_recorded"`
	FairwayHit      int      `bun:"fairway_hit"`
	GIRRecorded     int      `bun:"gir_recorded"`
	GIRHit          int      `bun:"gir_hit"`
}
