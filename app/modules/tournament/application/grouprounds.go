package tournamentservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	roundservice "github.com/fairway-collective/links-backend/app/modules/round/application"
	tournamentdb "github.com/fairway-collective/links-backend/app/modules/tournament/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/observability/attr"
	"github.com/fairway-collective/links-backend/app/shared/results"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// StartGroupRound opens a round bound to one of the tournament's groups and
// makes the caller a member. The round itself is created by the round module
// under its own rules; the unique index on rounds.tournament_group_id settles
// concurrent binds to the same group.
func (s *TournamentService) StartGroupRound(ctx context.Context, callerID int64, tournamentID int64, input StartGroupInput) (*roundservice.RoundDetail, error) {
	result, err := withTelemetry(s, ctx, "StartGroupRound", fmt.Sprintf("%d", tournamentID), func(ctx context.Context) (results.OperationResult[*roundservice.RoundDetail, error], error) {
		return s.startGroupRound(ctx, callerID, tournamentID, input)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *TournamentService) startGroupRound(ctx context.Context, callerID int64, tournamentID int64, input StartGroupInput) (results.OperationResult[*roundservice.RoundDetail, error], error) {
	fail := func(err error) (results.OperationResult[*roundservice.RoundDetail, error], error) {
		return results.FailureResult[*roundservice.RoundDetail, error](err), nil
	}

	tournament, err := s.repo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return fail(types.NewNotFoundError("Tournament not found"))
		}
		return results.OperationResult[*roundservice.RoundDetail, error]{}, err
	}

	allowed, err := s.canPlay(ctx, nil, tournament, callerID)
	if err != nil {
		return results.OperationResult[*roundservice.RoundDetail, error]{}, err
	}
	if !allowed {
		return fail(types.NewAuthorizationError("Not allowed"))
	}
	if conflict := activeConflict(tournament); conflict != nil {
		return fail(conflict)
	}

	groups, err := s.repo.ListGroups(ctx, nil, tournamentID)
	if err != nil {
		return results.OperationResult[*roundservice.RoundDetail, error]{}, err
	}
	rounds, err := s.repo.ListGroupRounds(ctx, nil, tournamentID)
	if err != nil {
		return results.OperationResult[*roundservice.RoundDetail, error]{}, err
	}
	bound := make(map[int64]bool, len(rounds))
	for _, round := range rounds {
		if round.GroupID != nil {
			bound[*round.GroupID] = true
		}
	}

	var group *tournamentdb.TournamentGroup
	if input.GroupID != nil {
		for i := range groups {
			if groups[i].ID == *input.GroupID {
				group = &groups[i]
				break
			}
		}
		if group == nil {
			return fail(types.NewNotFoundError("Group not found"))
		}
		if bound[group.ID] {
			return fail(types.NewConflictError("Group already has a round"))
		}
	} else {
		for i := range groups {
			if !bound[groups[i].ID] {
				group = &groups[i]
				break
			}
		}
		if group == nil {
			return fail(types.NewConflictError("No open groups"))
		}
	}

	playing, err := s.repo.FindPlayerRound(ctx, nil, tournamentID, callerID)
	if err != nil {
		return results.OperationResult[*roundservice.RoundDetail, error]{}, err
	}
	if playing != nil {
		return fail(types.NewConflictError("Already playing in this tournament"))
	}

	detail, err := s.rounds.StartRound(ctx, callerID, roundservice.StartRoundInput{
		CourseID:          tournament.CourseID,
		TeeID:             input.TeeID,
		StatsEnabled:      input.StatsEnabled,
		PlayerRefs:        input.PlayerRefs,
		Guests:            input.Guests,
		TournamentID:      &tournament.ID,
		TournamentGroupID: &group.ID,
	})
	if err != nil {
		if domainFailure(err) {
			return fail(err)
		}
		return results.OperationResult[*roundservice.RoundDetail, error]{}, err
	}

	s.becomeMember(ctx, tournamentID, callerID)
	return results.SuccessResult[*roundservice.RoundDetail, error](detail), nil
}

// JoinGroupRound adds the caller to a started group round and makes the
// caller a member.
func (s *TournamentService) JoinGroupRound(ctx context.Context, callerID int64, tournamentID int64, roundID int64) (*roundservice.RoundDetail, error) {
	result, err := withTelemetry(s, ctx, "JoinGroupRound", fmt.Sprintf("%d", tournamentID), func(ctx context.Context) (results.OperationResult[*roundservice.RoundDetail, error], error) {
		return s.joinGroupRound(ctx, callerID, tournamentID, roundID)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *TournamentService) joinGroupRound(ctx context.Context, callerID int64, tournamentID int64, roundID int64) (results.OperationResult[*roundservice.RoundDetail, error], error) {
	fail := func(err error) (results.OperationResult[*roundservice.RoundDetail, error], error) {
		return results.FailureResult[*roundservice.RoundDetail, error](err), nil
	}

	tournament, err := s.repo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return fail(types.NewNotFoundError("Tournament not found"))
		}
		return results.OperationResult[*roundservice.RoundDetail, error]{}, err
	}

	allowed, err := s.canPlay(ctx, nil, tournament, callerID)
	if err != nil {
		return results.OperationResult[*roundservice.RoundDetail, error]{}, err
	}
	if !allowed {
		return fail(types.NewAuthorizationError("Not allowed"))
	}
	if conflict := activeConflict(tournament); conflict != nil {
		return fail(conflict)
	}

	rounds, err := s.repo.ListGroupRounds(ctx, nil, tournamentID)
	if err != nil {
		return results.OperationResult[*roundservice.RoundDetail, error]{}, err
	}
	found := false
	for _, round := range rounds {
		if round.RoundID == roundID {
			found = true
			break
		}
	}
	if !found {
		return fail(types.NewNotFoundError("Round not found"))
	}

	playing, err := s.repo.FindPlayerRound(ctx, nil, tournamentID, callerID)
	if err != nil {
		return results.OperationResult[*roundservice.RoundDetail, error]{}, err
	}
	if playing != nil {
		return fail(types.NewConflictError("Already playing in this tournament"))
	}

	detail, err := s.rounds.JoinRound(ctx, callerID, roundID)
	if err != nil {
		if domainFailure(err) {
			return fail(err)
		}
		return results.OperationResult[*roundservice.RoundDetail, error]{}, err
	}

	s.becomeMember(ctx, tournamentID, callerID)
	return results.SuccessResult[*roundservice.RoundDetail, error](detail), nil
}

// canPlay grants the start and join flows to the owner, members, and anyone
// on public tournaments.
func (s *TournamentService) canPlay(ctx context.Context, db bun.IDB, tournament *tournamentdb.Tournament, callerID int64) (bool, error) {
	if tournament.OwnerPlayerID == callerID || tournament.IsPublic {
		return true, nil
	}
	return s.repo.IsMember(ctx, db, tournament.ID, callerID)
}

// activeConflict returns the conflict blocking starts and joins, or nil while
// the tournament is active.
func activeConflict(tournament *tournamentdb.Tournament) error {
	if tournament.IsFinished() {
		return types.NewConflictError("Tournament has finished")
	}
	if tournament.IsPaused() {
		return types.NewConflictError("Tournament is paused")
	}
	return nil
}

// becomeMember records membership after a successful start or join. Round
// participation already grants access, so a failure here only logs.
func (s *TournamentService) becomeMember(ctx context.Context, tournamentID, playerID int64) {
	if err := s.repo.AddMember(ctx, nil, tournamentID, playerID); err != nil {
		s.logger.WarnContext(ctx, "Failed to record tournament membership",
			attr.ExtractCorrelationID(ctx),
			attr.Int64("tournament_id", tournamentID),
			attr.Int64("player_id", playerID),
			attr.Error(err),
		)
	}
}
