package tournamentservice

import (
	"context"

	"github.com/uptrace/bun"

	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	roundservice "github.com/fairway-collective/links-backend/app/modules/round/application"
	tournamentdb "github.com/fairway-collective/links-backend/app/modules/tournament/infrastructure/repositories"
)

// CourseCatalog is the slice of the course repository the tournament module
// reads.
type CourseCatalog interface {
	GetDetail(ctx context.Context, db bun.IDB, id int64) (*coursedb.Course, error)
}

// PlayerDirectory resolves player references for invites.
type PlayerDirectory interface {
	GetByRef(ctx context.Context, db bun.IDB, ref string) (*playerdb.Player, error)
}

// GroupRounds is the slice of the round service the tournament module drives
// when starting and joining group rounds.
type GroupRounds interface {
	StartRound(ctx context.Context, callerID int64, input roundservice.StartRoundInput) (*roundservice.RoundDetail, error)
	JoinRound(ctx context.Context, callerID int64, roundID int64) (*roundservice.RoundDetail, error)
}

// CreateTournamentInput carries everything needed to open a tournament.
type CreateTournamentInput struct {
	CourseID   int64
	Name       string
	IsPublic   bool
	GroupNames []string
}

// UpdateTournamentInput holds the mutable tournament fields; nil means leave
// unchanged.
type UpdateTournamentInput struct {
	Name *string
}

// StartGroupInput opens a round bound to a tournament group. A nil GroupID
// picks the first group without a round.
type StartGroupInput struct {
	GroupID      *int64
	TeeID        *int64
	StatsEnabled bool
	PlayerRefs   []string
	Guests       []roundservice.GuestInput
}

// GroupView is one group with its bound round, when started.
type GroupView struct {
	Group tournamentdb.TournamentGroup
	Round *tournamentdb.GroupRound
}

// LeaderboardEntry is one participant's standing across the tournament.
// CurrentHole is nil once every hole has been scored.
type LeaderboardEntry struct {
	ParticipantID  int64
	PlayerRef      string
	PlayerName     string
	GroupRoundID   int64
	GroupID        *int64
	HolesCompleted int
	CurrentHole    *int
	Strokes        int
	Par            int
	ScoreToPar     int
}

// TournamentDetail is the full view of one tournament. MyGroupRoundID points
// at the round the caller plays in, when there is one.
type TournamentDetail struct {
	Tournament     *tournamentdb.Tournament
	CourseName     string
	Groups         []GroupView
	Leaderboard    []LeaderboardEntry
	MyGroupRoundID *int64
}

// Service is the application-facing contract of the tournament module.
type Service interface {
	// CreateTournament opens a tournament with named empty groups; the owner
	// becomes a member.
	CreateTournament(ctx context.Context, callerID int64, input CreateTournamentInput) (*TournamentDetail, error)

	// UpdateTournament renames the tournament. Owner only.
	UpdateTournament(ctx context.Context, callerID int64, tournamentID int64, input UpdateTournamentInput) (*TournamentDetail, error)

	// ListTournaments returns the tournaments visible to the caller, newest
	// first.
	ListTournaments(ctx context.Context, callerID int64) ([]tournamentdb.TournamentSummary, error)

	// GetTournament returns the detail view with groups, leaderboard, and the
	// caller's round.
	GetTournament(ctx context.Context, callerID int64, tournamentID int64) (*TournamentDetail, error)

	// DeleteTournament removes the tournament. Without force it refuses while
	// any group round is uncompleted; bound rounds are detached, not deleted.
	DeleteTournament(ctx context.Context, callerID int64, tournamentID int64, force bool) error

	// StartGroupRound opens a round bound to one of the tournament's groups
	// and makes the caller a member.
	StartGroupRound(ctx context.Context, callerID int64, tournamentID int64, input StartGroupInput) (*roundservice.RoundDetail, error)

	// JoinGroupRound adds the caller to a started group round and makes the
	// caller a member.
	JoinGroupRound(ctx context.Context, callerID int64, tournamentID int64, roundID int64) (*roundservice.RoundDetail, error)

	// PauseTournament locks all group rounds until resume. Owner only.
	PauseTournament(ctx context.Context, callerID int64, tournamentID int64, message string) (*TournamentDetail, error)

	// ResumeTournament re-opens a paused tournament. Owner only.
	ResumeTournament(ctx context.Context, callerID int64, tournamentID int64) (*TournamentDetail, error)

	// FinishTournament closes the tournament for good. Owner only.
	FinishTournament(ctx context.Context, callerID int64, tournamentID int64) (*TournamentDetail, error)

	// GetLeaderboard returns the tournament standings.
	GetLeaderboard(ctx context.Context, callerID int64, tournamentID int64) ([]LeaderboardEntry, error)

	// InvitePlayer creates a pending membership invite.
	InvitePlayer(ctx context.Context, callerID int64, tournamentID int64, ref string) (*tournamentdb.TournamentInvite, error)

	// ListMyInvites returns the caller's pending invites, newest first.
	ListMyInvites(ctx context.Context, callerID int64) ([]tournamentdb.InviteInfo, error)

	// AcceptInvite adds the caller as a member and removes the invite.
	AcceptInvite(ctx context.Context, callerID int64, inviteID int64) error

	// DeclineInvite removes the invite without joining.
	DeclineInvite(ctx context.Context, callerID int64, inviteID int64) error
}
