package tournamentservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
	tournamentdb "github.com/fairway-collective/links-backend/app/modules/tournament/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/results"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// CreateTournament opens a tournament with named empty groups; the owner
// becomes a member.
func (s *TournamentService) CreateTournament(ctx context.Context, callerID int64, input CreateTournamentInput) (*TournamentDetail, error) {
	result, err := withTelemetry(s, ctx, "CreateTournament", fmt.Sprintf("course:%d", input.CourseID), func(ctx context.Context) (results.OperationResult[*TournamentDetail, error], error) {
		if validationErr := validateCreateInput(&input); validationErr != nil {
			return results.FailureResult[*TournamentDetail, error](validationErr), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*TournamentDetail, error], error) {
			return s.createTournament(ctx, db, callerID, input)
		})
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *TournamentService) createTournament(ctx context.Context, db bun.IDB, callerID int64, input CreateTournamentInput) (results.OperationResult[*TournamentDetail, error], error) {
	fail := func(err error) (results.OperationResult[*TournamentDetail, error], error) {
		return results.FailureResult[*TournamentDetail, error](err), nil
	}

	course, err := s.courses.GetDetail(ctx, db, input.CourseID)
	if err != nil {
		if errors.Is(err, coursedb.ErrNotFound) {
			return fail(types.NewNotFoundError("Course not found"))
		}
		return results.OperationResult[*TournamentDetail, error]{}, err
	}
	if course.IsArchived() {
		return fail(types.NewNotFoundError("Course not found"))
	}

	tournament := &tournamentdb.Tournament{
		OwnerPlayerID: callerID,
		CourseID:      input.CourseID,
		Name:          input.Name,
		IsPublic:      input.IsPublic,
	}
	if err := s.repo.Create(ctx, db, tournament); err != nil {
		return results.OperationResult[*TournamentDetail, error]{}, err
	}

	groups := make([]tournamentdb.TournamentGroup, 0, len(input.GroupNames))
	for i, name := range input.GroupNames {
		groups = append(groups, tournamentdb.TournamentGroup{
			TournamentID: tournament.ID,
			Name:         name,
			Position:     i,
		})
	}
	if err := s.repo.AddGroups(ctx, db, groups); err != nil {
		return results.OperationResult[*TournamentDetail, error]{}, err
	}

	if err := s.repo.AddMember(ctx, db, tournament.ID, callerID); err != nil {
		return results.OperationResult[*TournamentDetail, error]{}, err
	}

	detail, err := s.loadDetail(ctx, db, tournament, callerID)
	if err != nil {
		return results.OperationResult[*TournamentDetail, error]{}, err
	}
	return results.SuccessResult[*TournamentDetail, error](detail), nil
}

// UpdateTournament renames the tournament. Owner only.
func (s *TournamentService) UpdateTournament(ctx context.Context, callerID int64, tournamentID int64, input UpdateTournamentInput) (*TournamentDetail, error) {
	result, err := withTelemetry(s, ctx, "UpdateTournament", fmt.Sprintf("%d", tournamentID), func(ctx context.Context) (results.OperationResult[*TournamentDetail, error], error) {
		if validationErr := validateUpdateInput(&input); validationErr != nil {
			return results.FailureResult[*TournamentDetail, error](validationErr), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*TournamentDetail, error], error) {
			return s.updateTournament(ctx, db, callerID, tournamentID, input)
		})
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *TournamentService) updateTournament(ctx context.Context, db bun.IDB, callerID int64, tournamentID int64, input UpdateTournamentInput) (results.OperationResult[*TournamentDetail, error], error) {
	fail := func(err error) (results.OperationResult[*TournamentDetail, error], error) {
		return results.FailureResult[*TournamentDetail, error](err), nil
	}

	tournament, err := s.repo.GetByID(ctx, db, tournamentID)
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return fail(types.NewNotFoundError("Tournament not found"))
		}
		return results.OperationResult[*TournamentDetail, error]{}, err
	}
	if tournament.OwnerPlayerID != callerID {
		return fail(types.NewAuthorizationError("Not allowed"))
	}

	if input.Name != nil {
		tournament.Name = *input.Name
		if err := s.repo.Update(ctx, db, tournament); err != nil {
			return results.OperationResult[*TournamentDetail, error]{}, err
		}
	}

	detail, err := s.loadDetail(ctx, db, tournament, callerID)
	if err != nil {
		return results.OperationResult[*TournamentDetail, error]{}, err
	}
	return results.SuccessResult[*TournamentDetail, error](detail), nil
}

// ListTournaments returns the tournaments visible to the caller, newest first.
func (s *TournamentService) ListTournaments(ctx context.Context, callerID int64) ([]tournamentdb.TournamentSummary, error) {
	result, err := withTelemetry(s, ctx, "ListTournaments", fmt.Sprintf("player:%d", callerID), func(ctx context.Context) (results.OperationResult[[]tournamentdb.TournamentSummary, error], error) {
		summaries, repoErr := s.repo.ListVisible(ctx, nil, callerID)
		if repoErr != nil {
			return results.OperationResult[[]tournamentdb.TournamentSummary, error]{}, repoErr
		}
		return results.SuccessResult[[]tournamentdb.TournamentSummary, error](summaries), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// GetTournament returns the detail view with groups, leaderboard, and the
// caller's round. Private tournaments are limited to the owner, members, and
// round participants.
func (s *TournamentService) GetTournament(ctx context.Context, callerID int64, tournamentID int64) (*TournamentDetail, error) {
	result, err := withTelemetry(s, ctx, "GetTournament", fmt.Sprintf("%d", tournamentID), func(ctx context.Context) (results.OperationResult[*TournamentDetail, error], error) {
		fail := func(err error) (results.OperationResult[*TournamentDetail, error], error) {
			return results.FailureResult[*TournamentDetail, error](err), nil
		}

		tournament, repoErr := s.repo.GetByID(ctx, nil, tournamentID)
		if repoErr != nil {
			if errors.Is(repoErr, tournamentdb.ErrNotFound) {
				return fail(types.NewNotFoundError("Tournament not found"))
			}
			return results.OperationResult[*TournamentDetail, error]{}, repoErr
		}

		allowed, repoErr := s.canView(ctx, nil, tournament, callerID)
		if repoErr != nil {
			return results.OperationResult[*TournamentDetail, error]{}, repoErr
		}
		if !allowed {
			return fail(types.NewAuthorizationError("Not allowed"))
		}

		detail, repoErr := s.loadDetail(ctx, nil, tournament, callerID)
		if repoErr != nil {
			return results.OperationResult[*TournamentDetail, error]{}, repoErr
		}
		return results.SuccessResult[*TournamentDetail, error](detail), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// DeleteTournament removes the tournament. Without force it refuses while any
// group round is uncompleted; bound rounds are detached, not deleted.
func (s *TournamentService) DeleteTournament(ctx context.Context, callerID int64, tournamentID int64, force bool) error {
	result, err := withTelemetry(s, ctx, "DeleteTournament", fmt.Sprintf("%d", tournamentID), func(ctx context.Context) (results.OperationResult[*tournamentdb.Tournament, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*tournamentdb.Tournament, error], error) {
			return s.deleteTournament(ctx, db, callerID, tournamentID, force)
		})
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}
	return nil
}

func (s *TournamentService) deleteTournament(ctx context.Context, db bun.IDB, callerID int64, tournamentID int64, force bool) (results.OperationResult[*tournamentdb.Tournament, error], error) {
	fail := func(err error) (results.OperationResult[*tournamentdb.Tournament, error], error) {
		return results.FailureResult[*tournamentdb.Tournament, error](err), nil
	}

	tournament, err := s.repo.GetByID(ctx, db, tournamentID)
	if err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return fail(types.NewNotFoundError("Tournament not found"))
		}
		return results.OperationResult[*tournamentdb.Tournament, error]{}, err
	}
	if tournament.OwnerPlayerID != callerID {
		return fail(types.NewAuthorizationError("Not allowed"))
	}

	if !force {
		open, err := s.repo.HasOpenRounds(ctx, db, tournamentID)
		if err != nil {
			return results.OperationResult[*tournamentdb.Tournament, error]{}, err
		}
		if open {
			return fail(types.NewConflictError("Tournament has active rounds"))
		}
	}

	// Bound rounds survive the tournament; clear their binding before the
	// group rows go away.
	if err := s.repo.DetachRounds(ctx, db, tournamentID); err != nil {
		return results.OperationResult[*tournamentdb.Tournament, error]{}, err
	}
	if err := s.repo.Delete(ctx, db, tournamentID); err != nil {
		if errors.Is(err, tournamentdb.ErrNotFound) {
			return fail(types.NewNotFoundError("Tournament not found"))
		}
		return results.OperationResult[*tournamentdb.Tournament, error]{}, err
	}
	return results.SuccessResult[*tournamentdb.Tournament, error](tournament), nil
}

// canView grants access to the owner, members, round participants, and
// anyone on public tournaments.
func (s *TournamentService) canView(ctx context.Context, db bun.IDB, tournament *tournamentdb.Tournament, callerID int64) (bool, error) {
	if tournament.OwnerPlayerID == callerID || tournament.IsPublic {
		return true, nil
	}
	member, err := s.repo.IsMember(ctx, db, tournament.ID, callerID)
	if err != nil {
		return false, err
	}
	if member {
		return true, nil
	}
	roundID, err := s.repo.FindPlayerRound(ctx, db, tournament.ID, callerID)
	if err != nil {
		return false, err
	}
	return roundID != nil, nil
}

// loadDetail assembles the detail view for an already-fetched tournament.
func (s *TournamentService) loadDetail(ctx context.Context, db bun.IDB, tournament *tournamentdb.Tournament, callerID int64) (*TournamentDetail, error) {
	course, err := s.courses.GetDetail(ctx, db, tournament.CourseID)
	if err != nil {
		return nil, err
	}
	groups, err := s.repo.ListGroups(ctx, db, tournament.ID)
	if err != nil {
		return nil, err
	}
	rounds, err := s.repo.ListGroupRounds(ctx, db, tournament.ID)
	if err != nil {
		return nil, err
	}
	participants, err := s.repo.ListParticipants(ctx, db, tournament.ID)
	if err != nil {
		return nil, err
	}
	scores, err := s.repo.ListScores(ctx, db, tournament.ID)
	if err != nil {
		return nil, err
	}
	myRound, err := s.repo.FindPlayerRound(ctx, db, tournament.ID, callerID)
	if err != nil {
		return nil, err
	}

	byGroup := make(map[int64]*tournamentdb.GroupRound, len(rounds))
	for i := range rounds {
		if rounds[i].GroupID != nil {
			byGroup[*rounds[i].GroupID] = &rounds[i]
		}
	}
	views := make([]GroupView, 0, len(groups))
	for _, group := range groups {
		views = append(views, GroupView{Group: group, Round: byGroup[group.ID]})
	}

	return &TournamentDetail{
		Tournament:     tournament,
		CourseName:     course.Name,
		Groups:         views,
		Leaderboard:    buildLeaderboard(course.Holes, participants, scores),
		MyGroupRoundID: myRound,
	}, nil
}
