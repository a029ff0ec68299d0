package tournamentservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	tournamentdb "github.com/fairway-collective/links-backend/app/modules/tournament/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/events"
	"github.com/fairway-collective/links-backend/app/shared/results"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// PauseTournament locks all group rounds until resume. Owner only. The lock
// is derived: rounds read the pause marker, nothing is written to them.
func (s *TournamentService) PauseTournament(ctx context.Context, callerID int64, tournamentID int64, message string) (*TournamentDetail, error) {
	result, err := withTelemetry(s, ctx, "PauseTournament", fmt.Sprintf("%d", tournamentID), func(ctx context.Context) (results.OperationResult[*TournamentDetail, error], error) {
		stored, validationErr := validatePauseMessage(message)
		if validationErr != nil {
			return results.FailureResult[*TournamentDetail, error](validationErr), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*TournamentDetail, error], error) {
			return s.pauseTournament(ctx, db, callerID, tournamentID, stored)
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

func (s *TournamentService) pauseTournament(ctx context.Context, db bun.IDB, callerID int64, tournamentID int64, message *string) (results.OperationResult[*TournamentDetail, error], error) {
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
	if tournament.IsFinished() {
		return fail(types.NewConflictError("Tournament has finished"))
	}
	if tournament.IsPaused() {
		return fail(types.NewConflictError("Tournament is already paused"))
	}

	now := time.Now()
	tournament.PausedAt = &now
	tournament.PauseMessage = message
	if err := s.repo.Update(ctx, db, tournament); err != nil {
		return results.OperationResult[*TournamentDetail, error]{}, err
	}

	detail, err := s.loadDetail(ctx, db, tournament, callerID)
	if err != nil {
		return results.OperationResult[*TournamentDetail, error]{}, err
	}
	return results.SuccessResult[*TournamentDetail, error](detail), nil
}

// ResumeTournament re-opens a paused tournament; cells recorded before the
// pause stay put. Owner only.
func (s *TournamentService) ResumeTournament(ctx context.Context, callerID int64, tournamentID int64) (*TournamentDetail, error) {
	result, err := withTelemetry(s, ctx, "ResumeTournament", fmt.Sprintf("%d", tournamentID), func(ctx context.Context) (results.OperationResult[*TournamentDetail, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*TournamentDetail, error], error) {
			return s.resumeTournament(ctx, db, callerID, tournamentID)
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

func (s *TournamentService) resumeTournament(ctx context.Context, db bun.IDB, callerID int64, tournamentID int64) (results.OperationResult[*TournamentDetail, error], error) {
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
	if tournament.IsFinished() {
		return fail(types.NewConflictError("Tournament has finished"))
	}
	if !tournament.IsPaused() {
		return fail(types.NewConflictError("Tournament is not paused"))
	}

	tournament.PausedAt = nil
	tournament.PauseMessage = nil
	if err := s.repo.Update(ctx, db, tournament); err != nil {
		return results.OperationResult[*TournamentDetail, error]{}, err
	}

	detail, err := s.loadDetail(ctx, db, tournament, callerID)
	if err != nil {
		return results.OperationResult[*TournamentDetail, error]{}, err
	}
	return results.SuccessResult[*TournamentDetail, error](detail), nil
}

// FinishTournament closes the tournament for good, groups in progress
// included. Owner only.
func (s *TournamentService) FinishTournament(ctx context.Context, callerID int64, tournamentID int64) (*TournamentDetail, error) {
	result, err := withTelemetry(s, ctx, "FinishTournament", fmt.Sprintf("%d", tournamentID), func(ctx context.Context) (results.OperationResult[*TournamentDetail, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*TournamentDetail, error], error) {
			return s.finishTournament(ctx, db, callerID, tournamentID)
		})
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}

	detail := *result.Success
	tournament := detail.Tournament
	s.publish(ctx, events.TournamentFinishedV1, events.TournamentFinishedPayloadV1{
		TournamentID: tournament.ID,
		CourseID:     tournament.CourseID,
		Name:         tournament.Name,
		FinishedAt:   *tournament.CompletedAt,
	})
	return detail, nil
}

func (s *TournamentService) finishTournament(ctx context.Context, db bun.IDB, callerID int64, tournamentID int64) (results.OperationResult[*TournamentDetail, error], error) {
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
	if tournament.IsFinished() {
		return fail(types.NewConflictError("Tournament has finished"))
	}

	now := time.Now()
	tournament.CompletedAt = &now
	if err := s.repo.Update(ctx, db, tournament); err != nil {
		return results.OperationResult[*TournamentDetail, error]{}, err
	}

	detail, err := s.loadDetail(ctx, db, tournament, callerID)
	if err != nil {
		return results.OperationResult[*TournamentDetail, error]{}, err
	}
	return results.SuccessResult[*TournamentDetail, error](detail), nil
}
