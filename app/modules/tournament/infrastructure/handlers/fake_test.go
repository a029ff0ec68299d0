package tournamenthandlers

import (
	"context"
	"errors"

	roundservice "github.com/fairway-collective/links-backend/app/modules/round/application"
	tournamentservice "github.com/fairway-collective/links-backend/app/modules/tournament/application"
	tournamentdb "github.com/fairway-collective/links-backend/app/modules/tournament/infrastructure/repositories"
)

// FakeService is a programmable tournamentservice.Service.
type FakeService struct {
	CreateTournamentFunc func(ctx context.Context, callerID int64, input tournamentservice.CreateTournamentInput) (*tournamentservice.TournamentDetail, error)
	UpdateTournamentFunc func(ctx context.Context, callerID int64, tournamentID int64, input tournamentservice.UpdateTournamentInput) (*tournamentservice.TournamentDetail, error)
	ListTournamentsFunc  func(ctx context.Context, callerID int64) ([]tournamentdb.TournamentSummary, error)
	GetTournamentFunc    func(ctx context.Context, callerID int64, tournamentID int64) (*tournamentservice.TournamentDetail, error)
	DeleteTournamentFunc func(ctx context.Context, callerID int64, tournamentID int64, force bool) error
	StartGroupRoundFunc  func(ctx context.Context, callerID int64, tournamentID int64, input tournamentservice.StartGroupInput) (*roundservice.RoundDetail, error)
	JoinGroupRoundFunc   func(ctx context.Context, callerID int64, tournamentID int64, roundID int64) (*roundservice.RoundDetail, error)
	PauseTournamentFunc  func(ctx context.Context, callerID int64, tournamentID int64, message string) (*tournamentservice.TournamentDetail, error)
	ResumeTournamentFunc func(ctx context.Context, callerID int64, tournamentID int64) (*tournamentservice.TournamentDetail, error)
	FinishTournamentFunc func(ctx context.Context, callerID int64, tournamentID int64) (*tournamentservice.TournamentDetail, error)
	GetLeaderboardFunc   func(ctx context.Context, callerID int64, tournamentID int64) ([]tournamentservice.LeaderboardEntry, error)
	InvitePlayerFunc     func(ctx context.Context, callerID int64, tournamentID int64, ref string) (*tournamentdb.TournamentInvite, error)
	ListMyInvitesFunc    func(ctx context.Context, callerID int64) ([]tournamentdb.InviteInfo, error)
	AcceptInviteFunc     func(ctx context.Context, callerID int64, inviteID int64) error
	DeclineInviteFunc    func(ctx context.Context, callerID int64, inviteID int64) error
}

func (f *FakeService) CreateTournament(ctx context.Context, callerID int64, input tournamentservice.CreateTournamentInput) (*tournamentservice.TournamentDetail, error) {
	if f.CreateTournamentFunc != nil {
		return f.CreateTournamentFunc(ctx, callerID, input)
	}
	return nil, errors.New("CreateTournamentFunc not set")
}

func (f *FakeService) UpdateTournament(ctx context.Context, callerID int64, tournamentID int64, input tournamentservice.UpdateTournamentInput) (*tournamentservice.TournamentDetail, error) {
	if f.UpdateTournamentFunc != nil {
		return f.UpdateTournamentFunc(ctx, callerID, tournamentID, input)
	}
	return nil, errors.New("UpdateTournamentFunc not set")
}

func (f *FakeService) ListTournaments(ctx context.Context, callerID int64) ([]tournamentdb.TournamentSummary, error) {
	if f.ListTournamentsFunc != nil {
		return f.ListTournamentsFunc(ctx, callerID)
	}
	return []tournamentdb.TournamentSummary{}, nil
}

func (f *FakeService) GetTournament(ctx context.Context, callerID int64, tournamentID int64) (*tournamentservice.TournamentDetail, error) {
	if f.GetTournamentFunc != nil {
		return f.GetTournamentFunc(ctx, callerID, tournamentID)
	}
	return nil, errors.New("GetTournamentFunc not set")
}

func (f *FakeService) DeleteTournament(ctx context.Context, callerID int64, tournamentID int64, force bool) error {
	if f.DeleteTournamentFunc != nil {
		return f.DeleteTournamentFunc(ctx, callerID, tournamentID, force)
	}
	return nil
}

func (f *FakeService) StartGroupRound(ctx context.Context, callerID int64, tournamentID int64, input tournamentservice.StartGroupInput) (*roundservice.RoundDetail, error) {
	if f.StartGroupRoundFunc != nil {
		return f.StartGroupRoundFunc(ctx, callerID, tournamentID, input)
	}
	return nil, errors.New("StartGroupRoundFunc not set")
}

func (f *FakeService) JoinGroupRound(ctx context.Context, callerID int64, tournamentID int64, roundID int64) (*roundservice.RoundDetail, error) {
	if f.JoinGroupRoundFunc != nil {
		return f.JoinGroupRoundFunc(ctx, callerID, tournamentID, roundID)
	}
	return nil, errors.New("JoinGroupRoundFunc not set")
}

func (f *FakeService) PauseTournament(ctx context.Context, callerID int64, tournamentID int64, message string) (*tournamentservice.TournamentDetail, error) {
	if f.PauseTournamentFunc != nil {
		return f.PauseTournamentFunc(ctx, callerID, tournamentID, message)
	}
	return nil, errors.New("PauseTournamentFunc not set")
}

func (f *FakeService) ResumeTournament(ctx context.Context, callerID int64, tournamentID int64) (*tournamentservice.TournamentDetail, error) {
	if f.ResumeTournamentFunc != nil {
		return f.ResumeTournamentFunc(ctx, callerID, tournamentID)
	}
	return nil, errors.New("ResumeTournamentFunc not set")
}

func (f *FakeService) FinishTournament(ctx context.Context, callerID int64, tournamentID int64) (*tournamentservice.TournamentDetail, error) {
	if f.FinishTournamentFunc != nil {
		return f.FinishTournamentFunc(ctx, callerID, tournamentID)
	}
	return nil, errors.New("FinishTournamentFunc not set")
}

func (f *FakeService) GetLeaderboard(ctx context.Context, callerID int64, tournamentID int64) ([]tournamentservice.LeaderboardEntry, error) {
	if f.GetLeaderboardFunc != nil {
		return f.GetLeaderboardFunc(ctx, callerID, tournamentID)
	}
	return []tournamentservice.LeaderboardEntry{}, nil
}

func (f *FakeService) InvitePlayer(ctx context.Context, callerID int64, tournamentID int64, ref string) (*tournamentdb.TournamentInvite, error) {
	if f.InvitePlayerFunc != nil {
		return f.InvitePlayerFunc(ctx, callerID, tournamentID, ref)
	}
	return nil, errors.New("InvitePlayerFunc not set")
}

func (f *FakeService) ListMyInvites(ctx context.Context, callerID int64) ([]tournamentdb.InviteInfo, error) {
	if f.ListMyInvitesFunc != nil {
		return f.ListMyInvitesFunc(ctx, callerID)
	}
	return []tournamentdb.InviteInfo{}, nil
}

func (f *FakeService) AcceptInvite(ctx context.Context, callerID int64, inviteID int64) error {
	if f.AcceptInviteFunc != nil {
		return f.AcceptInviteFunc(ctx, callerID, inviteID)
	}
	return nil
}

func (f *FakeService) DeclineInvite(ctx context.Context, callerID int64, inviteID int64) error {
	if f.DeclineInviteFunc != nil {
		return f.DeclineInviteFunc(ctx, callerID, inviteID)
	}
	return nil
}

var _ tournamentservice.Service = (*FakeService)(nil)
