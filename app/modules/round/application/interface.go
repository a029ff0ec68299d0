package roundservice

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	rounddb "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/repositories"
)

// Round states. Locked rounds belong to a paused or finished tournament and
// re-open when the tournament resumes; completed is terminal.
const (
	StateOpen      = "open"
	StateLocked    = "locked"
	StateCompleted = "completed"
)

// CourseCatalog is the slice of the course repository the round module reads.
type CourseCatalog interface {
	GetDetail(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error)
}

// PlayerDirectory resolves player references when building participant lists.
type PlayerDirectory interface {
	GetByRef(ctx context.Context, db bun.IDB, ref string) (*playerdb.Player, error)
}

// ExpiryScheduler queues the job that removes a round left without scores.
type ExpiryScheduler interface {
	ScheduleRoundExpiry(ctx context.Context, roundID int64, runAt time.Time) error
	CancelRoundExpiry(ctx context.Context, roundID int64) error
}

// GuestInput describes an unregistered participant.
type GuestInput struct {
	Name     string
	Handicap *float64
}

// StartRoundInput carries everything needed to open a round.
type StartRoundInput struct {
	CourseID     int64
	TeeID        *int64
	StatsEnabled bool
	PlayerRefs   []string
	Guests       []GuestInput

	// Tournament binding is set by the tournament module when it starts a
	// group round, never from request payloads.
	TournamentID      *int64
	TournamentGroupID *int64
}

// ScoreInput is one scorecard cell write. PlayerRef addresses a registered
// participant by reference; ParticipantID addresses any participant,
// including guests. Both empty targets the caller's own row.
type ScoreInput struct {
	HoleNumber    int
	Strokes       int
	Putts         *int
	Fairway       *string
	Gir           *string
	PlayerRef     string
	ParticipantID *int64
}

// AddParticipantsInput adds players or guests to an open round.
type AddParticipantsInput struct {
	PlayerRefs []string
	Guests     []GuestInput
}

// ScoredHole is a recorded cell enriched with the hole's par and class.
type ScoredHole struct {
	HoleNumber int
	Par        int
	Strokes    int
	Putts      *int
	Fairway    *string
	Gir        *string
	Class      string
}

// ParticipantScorecard is one participant with read-time derived values.
// Totals are nil until the participant has at least one recorded cell.
type ParticipantScorecard struct {
	Info           rounddb.ParticipantInfo
	Cells          []ScoredHole
	HolesCompleted int
	TotalStrokes   *int
	ScoreToPar     *int
	FrontNine      *int
	BackNine       *int
	PuttsTotal     *int
	FairwayHitPct  *float64
	GirHitPct      *float64
}

// RoundHole is a course hole as played in this round: distance reflects the
// selected tee when one is set.
type RoundHole struct {
	Number   int
	Par      int
	Distance *int
	Hcp      *int
}

// RoundDetail is the full scorecard view of one round.
type RoundDetail struct {
	Round        *rounddb.Round
	CourseName   string
	State        string
	TotalPar     int
	Holes        []RoundHole
	TeeName      *string
	Participants []ParticipantScorecard
}

// ScoreResult reports a cell write and whether it completed the round.
type ScoreResult struct {
	ParticipantID  int64
	HoleNumber     int
	Strokes        int
	Putts          *int
	Fairway        *string
	Gir            *string
	RoundCompleted bool
}

// Service is the application-facing contract of the round module.
type Service interface {
	// StartRound opens a round on a course with the caller as first participant.
	StartRound(ctx context.Context, callerID int64, input StartRoundInput) (*RoundDetail, error)

	// SubmitScore records one participant's result on one hole.
	SubmitScore(ctx context.Context, callerID int64, roundID int64, input ScoreInput) (*ScoreResult, error)

	// AddParticipants adds players or guests to an open round.
	AddParticipants(ctx context.Context, callerID int64, roundID int64, input AddParticipantsInput) (*RoundDetail, error)

	// JoinRound adds the caller to an open round. Plain rounds take
	// participants only through the owner; this is the tournament join path.
	JoinRound(ctx context.Context, callerID int64, roundID int64) (*RoundDetail, error)

	// DeleteRound removes an open round and its cells.
	DeleteRound(ctx context.Context, callerID int64, roundID int64) error

	// ListRounds returns the caller's rounds, newest first.
	ListRounds(ctx context.Context, callerID int64) ([]rounddb.RoundSummary, error)

	// GetRound returns the scorecard detail of one round.
	GetRound(ctx context.Context, callerID int64, roundID int64) (*RoundDetail, error)

	// ImportScorecard creates a completed round from an uploaded XLSX sheet.
	ImportScorecard(ctx context.Context, callerID int64, courseID int64, data []byte) (*RoundDetail, error)
}
