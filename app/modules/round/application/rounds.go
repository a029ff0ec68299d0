package roundservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	rounddb "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/events"
	"github.com/fairway-collective/links-backend/app/shared/observability/attr"
	"github.com/fairway-collective/links-backend/app/shared/results"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// StartRound opens a round on a course with the caller as first participant.
func (s *RoundService) StartRound(ctx context.Context, callerID int64, input StartRoundInput) (*RoundDetail, error) {
	result, err := withTelemetry(s, ctx, "StartRound", fmt.Sprintf("course:%d", input.CourseID), func(ctx context.Context) (results.OperationResult[*RoundDetail, error], error) {
		if validationErr := validateStartInput(&input); validationErr != nil {
			return results.FailureResult[*RoundDetail, error](validationErr), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*RoundDetail, error], error) {
			return s.startRound(ctx, db, callerID, input)
		})
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}

	detail := *result.Success
	s.afterStart(ctx, detail.Round)
	return detail, nil
}

func (s *RoundService) startRound(ctx context.Context, db bun.IDB, callerID int64, input StartRoundInput) (results.OperationResult[*RoundDetail, error], error) {
	fail := func(err error) (results.OperationResult[*RoundDetail, error], error) {
		return results.FailureResult[*RoundDetail, error](err), nil
	}

	course, err := s.courses.GetDetail(ctx, db, input.CourseID)
	if err != nil {
		if errors.Is(err, coursedb.ErrNotFound) {
			return fail(types.NewNotFoundError("Course not found"))
		}
		return results.OperationResult[*RoundDetail, error]{}, err
	}
	if course.IsArchived() {
		return fail(types.NewNotFoundError("Course not found"))
	}

	if input.TeeID != nil {
		found := false
		for _, tee := range course.Tees {
			if tee.ID == *input.TeeID {
				found = true
				break
			}
		}
		if !found {
			return fail(types.NewValidationError("Invalid tee_id for course"))
		}
	}

	active, err := s.repo.HasActiveRound(ctx, db, callerID)
	if err != nil {
		return results.OperationResult[*RoundDetail, error]{}, err
	}
	if active {
		return fail(types.NewConflictError("You already have an active round"))
	}

	players := make([]*playerdb.Player, 0, len(input.PlayerRefs))
	seen := map[int64]bool{callerID: true}
	for _, ref := range input.PlayerRefs {
		player, err := s.players.GetByRef(ctx, db, ref)
		if err != nil {
			if errors.Is(err, playerdb.ErrNotFound) {
				return fail(types.NewNotFoundError(fmt.Sprintf("Player not found: %s", ref)))
			}
			return results.OperationResult[*RoundDetail, error]{}, err
		}
		if player.ID == callerID {
			return fail(types.NewValidationError("Cannot add yourself"))
		}
		if seen[player.ID] {
			return fail(types.NewValidationError(fmt.Sprintf("Duplicate player: %s", ref)))
		}
		seen[player.ID] = true
		players = append(players, player)
	}

	round := &rounddb.Round{
		OwnerPlayerID:     callerID,
		CourseID:          input.CourseID,
		TeeID:             input.TeeID,
		TournamentID:      input.TournamentID,
		TournamentGroupID: input.TournamentGroupID,
		StatsEnabled:      input.StatsEnabled,
		StartedAt:         time.Now(),
	}
	if err := s.repo.Create(ctx, db, round); err != nil {
		return results.OperationResult[*RoundDetail, error]{}, err
	}

	participants := make([]rounddb.RoundParticipant, 0, 1+len(players)+len(input.Guests))
	participants = append(participants, rounddb.RoundParticipant{
		RoundID:  round.ID,
		Kind:     rounddb.KindPlayer,
		PlayerID: &callerID,
	})
	for _, player := range players {
		id := player.ID
		participants = append(participants, rounddb.RoundParticipant{
			RoundID:  round.ID,
			Kind:     rounddb.KindPlayer,
			PlayerID: &id,
		})
	}
	for _, guest := range input.Guests {
		participants = append(participants, newGuestParticipant(round.ID, guest))
	}
	if err := s.repo.AddParticipants(ctx, db, participants); err != nil {
		return results.OperationResult[*RoundDetail, error]{}, err
	}

	infos, err := s.repo.GetParticipants(ctx, db, round.ID)
	if err != nil {
		return results.OperationResult[*RoundDetail, error]{}, err
	}
	return results.SuccessResult[*RoundDetail, error](buildDetail(round, course, infos, nil, nil)), nil
}

func newGuestParticipant(roundID int64, guest GuestInput) rounddb.RoundParticipant {
	key := fmt.Sprintf("guest:%s", uuid.NewString())
	name := guest.Name
	return rounddb.RoundParticipant{
		RoundID:       roundID,
		Kind:          rounddb.KindGuest,
		GuestKey:      &key,
		GuestName:     &name,
		GuestHandicap: guest.Handicap,
	}
}

// afterStart runs the post-commit side effects: the expiry job and the
// started event.
func (s *RoundService) afterStart(ctx context.Context, round *rounddb.Round) {
	if s.scheduler != nil {
		runAt := round.StartedAt.Add(s.abandonAfter)
		if err := s.scheduler.ScheduleRoundExpiry(ctx, round.ID, runAt); err != nil {
			s.logger.ErrorContext(ctx, "Failed to schedule round expiry",
				attr.ExtractCorrelationID(ctx),
				attr.Int64("round_id", round.ID),
				attr.Error(err),
			)
		}
	}
	s.publish(ctx, events.RoundStartedV1, events.RoundStartedPayloadV1{
		RoundID:      round.ID,
		CourseID:     round.CourseID,
		OwnerID:      round.OwnerPlayerID,
		TournamentID: round.TournamentID,
		StartedAt:    round.StartedAt,
	})
}

// AddParticipants adds players or guests to an open round.
func (s *RoundService) AddParticipants(ctx context.Context, callerID int64, roundID int64, input AddParticipantsInput) (*RoundDetail, error) {
	result, err := withTelemetry(s, ctx, "AddParticipants", fmt.Sprintf("%d", roundID), func(ctx context.Context) (results.OperationResult[*RoundDetail, error], error) {
		if validationErr := validateAddInput(&input); validationErr != nil {
			return results.FailureResult[*RoundDetail, error](validationErr), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*RoundDetail, error], error) {
			return s.addParticipants(ctx, db, callerID, roundID, input)
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

func (s *RoundService) addParticipants(ctx context.Context, db bun.IDB, callerID int64, roundID int64, input AddParticipantsInput) (results.OperationResult[*RoundDetail, error], error) {
	fail := func(err error) (results.OperationResult[*RoundDetail, error], error) {
		return results.FailureResult[*RoundDetail, error](err), nil
	}

	round, err := s.repo.GetByID(ctx, db, roundID)
	if err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return fail(types.NewNotFoundError("Round not found"))
		}
		return results.OperationResult[*RoundDetail, error]{}, err
	}
	if round.OwnerPlayerID != callerID {
		return fail(types.NewAuthorizationError("Not allowed"))
	}

	conflict, err := s.openForWrites(ctx, db, round)
	if err != nil {
		return results.OperationResult[*RoundDetail, error]{}, err
	}
	if conflict != nil {
		return fail(conflict)
	}

	existing, err := s.repo.GetParticipants(ctx, db, roundID)
	if err != nil {
		return results.OperationResult[*RoundDetail, error]{}, err
	}
	if len(existing)+len(input.PlayerRefs)+len(input.Guests) > maxParticipants {
		return fail(types.NewConflictError("max 4 players"))
	}

	inRound := make(map[int64]bool, len(existing))
	for _, p := range existing {
		if p.PlayerID != nil {
			inRound[*p.PlayerID] = true
		}
	}

	additions := make([]rounddb.RoundParticipant, 0, len(input.PlayerRefs)+len(input.Guests))
	for _, ref := range input.PlayerRefs {
		player, err := s.players.GetByRef(ctx, db, ref)
		if err != nil {
			if errors.Is(err, playerdb.ErrNotFound) {
				return fail(types.NewNotFoundError(fmt.Sprintf("Player not found: %s", ref)))
			}
			return results.OperationResult[*RoundDetail, error]{}, err
		}
		if inRound[player.ID] {
			return fail(types.NewConflictError("Player already in round"))
		}
		inRound[player.ID] = true
		id := player.ID
		additions = append(additions, rounddb.RoundParticipant{
			RoundID:  roundID,
			Kind:     rounddb.KindPlayer,
			PlayerID: &id,
		})
	}
	for _, guest := range input.Guests {
		additions = append(additions, newGuestParticipant(roundID, guest))
	}

	if err := s.repo.AddParticipants(ctx, db, additions); err != nil {
		return results.OperationResult[*RoundDetail, error]{}, err
	}

	detail, err := s.loadDetail(ctx, db, round)
	if err != nil {
		return results.OperationResult[*RoundDetail, error]{}, err
	}
	return results.SuccessResult[*RoundDetail, error](detail), nil
}

// JoinRound adds the caller to an open round. Plain rounds take participants
// only through the owner; this is the tournament join path.
func (s *RoundService) JoinRound(ctx context.Context, callerID int64, roundID int64) (*RoundDetail, error) {
	result, err := withTelemetry(s, ctx, "JoinRound", fmt.Sprintf("%d", roundID), func(ctx context.Context) (results.OperationResult[*RoundDetail, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*RoundDetail, error], error) {
			return s.joinRound(ctx, db, callerID, roundID)
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

func (s *RoundService) joinRound(ctx context.Context, db bun.IDB, callerID int64, roundID int64) (results.OperationResult[*RoundDetail, error], error) {
	fail := func(err error) (results.OperationResult[*RoundDetail, error], error) {
		return results.FailureResult[*RoundDetail, error](err), nil
	}

	round, err := s.repo.GetByID(ctx, db, roundID)
	if err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return fail(types.NewNotFoundError("Round not found"))
		}
		return results.OperationResult[*RoundDetail, error]{}, err
	}

	conflict, err := s.openForWrites(ctx, db, round)
	if err != nil {
		return results.OperationResult[*RoundDetail, error]{}, err
	}
	if conflict != nil {
		return fail(conflict)
	}

	existing, err := s.repo.GetParticipants(ctx, db, roundID)
	if err != nil {
		return results.OperationResult[*RoundDetail, error]{}, err
	}
	for _, p := range existing {
		if p.PlayerID != nil && *p.PlayerID == callerID {
			return fail(types.NewConflictError("Player already in round"))
		}
	}
	if len(existing)+1 > maxParticipants {
		return fail(types.NewConflictError("max 4 players"))
	}

	addition := []rounddb.RoundParticipant{{
		RoundID:  roundID,
		Kind:     rounddb.KindPlayer,
		PlayerID: &callerID,
	}}
	if err := s.repo.AddParticipants(ctx, db, addition); err != nil {
		return results.OperationResult[*RoundDetail, error]{}, err
	}

	detail, err := s.loadDetail(ctx, db, round)
	if err != nil {
		return results.OperationResult[*RoundDetail, error]{}, err
	}
	return results.SuccessResult[*RoundDetail, error](detail), nil
}

// DeleteRound removes an open round and its cells.
func (s *RoundService) DeleteRound(ctx context.Context, callerID int64, roundID int64) error {
	result, err := withTelemetry(s, ctx, "DeleteRound", fmt.Sprintf("%d", roundID), func(ctx context.Context) (results.OperationResult[*rounddb.Round, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*rounddb.Round, error], error) {
			return s.deleteRound(ctx, db, callerID, roundID)
		})
	})
	if err != nil {
		return err
	}
	if result.IsFailure() {
		return *result.Failure
	}

	if s.scheduler != nil {
		if err := s.scheduler.CancelRoundExpiry(ctx, roundID); err != nil {
			s.logger.WarnContext(ctx, "Failed to cancel round expiry job",
				attr.ExtractCorrelationID(ctx),
				attr.Int64("round_id", roundID),
				attr.Error(err),
			)
		}
	}
	return nil
}

func (s *RoundService) deleteRound(ctx context.Context, db bun.IDB, callerID int64, roundID int64) (results.OperationResult[*rounddb.Round, error], error) {
	fail := func(err error) (results.OperationResult[*rounddb.Round, error], error) {
		return results.FailureResult[*rounddb.Round, error](err), nil
	}

	round, err := s.repo.GetByID(ctx, db, roundID)
	if err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return fail(types.NewNotFoundError("Round not found"))
		}
		return results.OperationResult[*rounddb.Round, error]{}, err
	}
	if round.OwnerPlayerID != callerID {
		return fail(types.NewAuthorizationError("Not allowed"))
	}

	conflict, err := s.openForWrites(ctx, db, round)
	if err != nil {
		return results.OperationResult[*rounddb.Round, error]{}, err
	}
	if conflict != nil {
		return fail(conflict)
	}

	if err := s.repo.Delete(ctx, db, roundID); err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return fail(types.NewNotFoundError("Round not found"))
		}
		return results.OperationResult[*rounddb.Round, error]{}, err
	}
	return results.SuccessResult[*rounddb.Round, error](round), nil
}

// ListRounds returns the caller's rounds, newest first.
func (s *RoundService) ListRounds(ctx context.Context, callerID int64) ([]rounddb.RoundSummary, error) {
	result, err := withTelemetry(s, ctx, "ListRounds", fmt.Sprintf("player:%d", callerID), func(ctx context.Context) (results.OperationResult[[]rounddb.RoundSummary, error], error) {
		summaries, repoErr := s.repo.ListSummariesForPlayer(ctx, nil, callerID)
		if repoErr != nil {
			return results.OperationResult[[]rounddb.RoundSummary, error]{}, repoErr
		}
		return results.SuccessResult[[]rounddb.RoundSummary, error](summaries), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// GetRound returns the scorecard detail of one round. Access is limited to
// the owner and participants.
func (s *RoundService) GetRound(ctx context.Context, callerID int64, roundID int64) (*RoundDetail, error) {
	result, err := withTelemetry(s, ctx, "GetRound", fmt.Sprintf("%d", roundID), func(ctx context.Context) (results.OperationResult[*RoundDetail, error], error) {
		fail := func(err error) (results.OperationResult[*RoundDetail, error], error) {
			return results.FailureResult[*RoundDetail, error](err), nil
		}

		round, repoErr := s.repo.GetByID(ctx, nil, roundID)
		if repoErr != nil {
			if errors.Is(repoErr, rounddb.ErrNotFound) {
				return fail(types.NewNotFoundError("Round not found"))
			}
			return results.OperationResult[*RoundDetail, error]{}, repoErr
		}

		detail, repoErr := s.loadDetail(ctx, nil, round)
		if repoErr != nil {
			return results.OperationResult[*RoundDetail, error]{}, repoErr
		}

		if !canViewRound(callerID, round, detail.Participants) {
			return fail(types.NewAuthorizationError("Not allowed"))
		}
		return results.SuccessResult[*RoundDetail, error](detail), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// canViewRound grants access to the owner and any registered participant.
func canViewRound(callerID int64, round *rounddb.Round, participants []ParticipantScorecard) bool {
	if round.OwnerPlayerID == callerID {
		return true
	}
	for _, p := range participants {
		if p.Info.PlayerID != nil && *p.Info.PlayerID == callerID {
			return true
		}
	}
	return false
}

// loadDetail assembles the detail view for an already-fetched round.
func (s *RoundService) loadDetail(ctx context.Context, db bun.IDB, round *rounddb.Round) (*RoundDetail, error) {
	course, err := s.courses.GetDetail(ctx, db, round.CourseID)
	if err != nil {
		return nil, err
	}
	participants, err := s.repo.GetParticipants(ctx, db, round.ID)
	if err != nil {
		return nil, err
	}
	cells, err := s.repo.GetCells(ctx, db, round.ID)
	if err != nil {
		return nil, err
	}
	lock, err := s.tournamentLock(ctx, db, round)
	if err != nil {
		return nil, err
	}
	return buildDetail(round, course, participants, cells, lock), nil
}

// tournamentLock loads the parent tournament's lock markers; a missing
// tournament reads as unlocked.
func (s *RoundService) tournamentLock(ctx context.Context, db bun.IDB, round *rounddb.Round) (*rounddb.TournamentLockState, error) {
	if round.TournamentID == nil {
		return nil, nil
	}
	lock, err := s.repo.GetTournamentLockState(ctx, db, *round.TournamentID)
	if err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return lock, nil
}

// openForWrites returns the conflict blocking scorecard writes, or nil while
// the round is open.
func (s *RoundService) openForWrites(ctx context.Context, db bun.IDB, round *rounddb.Round) (conflict error, err error) {
	if round.IsCompleted() {
		return types.NewConflictError("Round is completed"), nil
	}
	lock, err := s.tournamentLock(ctx, db, round)
	if err != nil {
		return nil, err
	}
	if lock != nil {
		if lock.CompletedAt != nil {
			return types.NewConflictError("Tournament has finished"), nil
		}
		if lock.PausedAt != nil {
			return types.NewConflictError("Tournament is paused"), nil
		}
	}
	return nil, nil
}
