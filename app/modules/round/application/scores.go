package roundservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	rounddb "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/events"
	"github.com/fairway-collective/links-backend/app/shared/results"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// scoreOutcome carries a cell write out of the transaction together with the
// events to publish once it has committed.
type scoreOutcome struct {
	result         *ScoreResult
	scoreEvent     events.ScoreSubmittedPayloadV1
	completedEvent *events.RoundCompletedPayloadV1
}

// SubmitScore records one participant's result on one hole. The write is an
// upsert: resubmitting a hole overwrites the previous cell.
func (s *RoundService) SubmitScore(ctx context.Context, callerID int64, roundID int64, input ScoreInput) (*ScoreResult, error) {
	result, err := withTelemetry(s, ctx, "SubmitScore", fmt.Sprintf("%d", roundID), func(ctx context.Context) (results.OperationResult[*scoreOutcome, error], error) {
		if validationErr := validateScoreInput(&input); validationErr != nil {
			return results.FailureResult[*scoreOutcome, error](validationErr), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*scoreOutcome, error], error) {
			return s.submitScore(ctx, db, callerID, roundID, input)
		})
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}

	outcome := *result.Success
	s.publish(ctx, events.RoundScoreSubmittedV1, outcome.scoreEvent)
	if outcome.completedEvent != nil {
		s.publish(ctx, events.RoundCompletedV1, *outcome.completedEvent)
	}
	return outcome.result, nil
}

func (s *RoundService) submitScore(ctx context.Context, db bun.IDB, callerID int64, roundID int64, input ScoreInput) (results.OperationResult[*scoreOutcome, error], error) {
	fail := func(err error) (results.OperationResult[*scoreOutcome, error], error) {
		return results.FailureResult[*scoreOutcome, error](err), nil
	}

	round, err := s.repo.GetByID(ctx, db, roundID)
	if err != nil {
		if errors.Is(err, rounddb.ErrNotFound) {
			return fail(types.NewNotFoundError("Round not found"))
		}
		return results.OperationResult[*scoreOutcome, error]{}, err
	}

	participants, err := s.repo.GetParticipants(ctx, db, roundID)
	if err != nil {
		return results.OperationResult[*scoreOutcome, error]{}, err
	}

	isOwner := round.OwnerPlayerID == callerID
	var caller *rounddb.ParticipantInfo
	for i := range participants {
		if participants[i].PlayerID != nil && *participants[i].PlayerID == callerID {
			caller = &participants[i]
			break
		}
	}
	if !isOwner && caller == nil {
		return fail(types.NewAuthorizationError("Not allowed"))
	}

	var refPlayerID *int64
	if input.ParticipantID == nil && input.PlayerRef != "" {
		player, err := s.players.GetByRef(ctx, db, input.PlayerRef)
		if err != nil {
			if errors.Is(err, playerdb.ErrNotFound) {
				return fail(types.NewNotFoundError("Participant not found"))
			}
			return results.OperationResult[*scoreOutcome, error]{}, err
		}
		refPlayerID = &player.ID
	}
	target, targetErr := findTarget(participants, caller, input.ParticipantID, refPlayerID)
	if targetErr != nil {
		return fail(targetErr)
	}
	if !isOwner && target.ID != caller.ID {
		return fail(types.NewAuthorizationError("Not allowed"))
	}

	conflict, err := s.openForWrites(ctx, db, round)
	if err != nil {
		return results.OperationResult[*scoreOutcome, error]{}, err
	}
	if conflict != nil {
		return fail(conflict)
	}

	course, err := s.courses.GetDetail(ctx, db, round.CourseID)
	if err != nil {
		return results.OperationResult[*scoreOutcome, error]{}, err
	}
	var hole *coursedb.Hole
	for i := range course.Holes {
		if course.Holes[i].Number == input.HoleNumber {
			hole = &course.Holes[i]
			break
		}
	}
	if hole == nil {
		return fail(types.NewValidationError("Invalid hole_number for course"))
	}
	if input.Fairway != nil && hole.Par == 3 {
		return fail(types.NewValidationError("Fairway is not tracked on par 3 holes"))
	}

	cell := &rounddb.ScoreCell{
		RoundID:       roundID,
		ParticipantID: target.ID,
		HoleNumber:    input.HoleNumber,
		Strokes:       input.Strokes,
		Putts:         input.Putts,
		Fairway:       input.Fairway,
		Gir:           input.Gir,
	}
	if err := s.repo.UpsertCell(ctx, db, cell); err != nil {
		return results.OperationResult[*scoreOutcome, error]{}, err
	}

	outcome := &scoreOutcome{
		result: &ScoreResult{
			ParticipantID: target.ID,
			HoleNumber:    input.HoleNumber,
			Strokes:       input.Strokes,
			Putts:         input.Putts,
			Fairway:       input.Fairway,
			Gir:           input.Gir,
		},
		scoreEvent: events.ScoreSubmittedPayloadV1{
			RoundID:       roundID,
			CourseID:      round.CourseID,
			ParticipantID: target.ID,
			PlayerID:      target.PlayerID,
			HoleNumber:    input.HoleNumber,
			Strokes:       input.Strokes,
			Par:           hole.Par,
			SubmittedAt:   time.Now(),
		},
	}

	count, err := s.repo.CountCells(ctx, db, roundID)
	if err != nil {
		return results.OperationResult[*scoreOutcome, error]{}, err
	}
	if count == len(course.Holes)*len(participants) {
		completedAt := time.Now()
		if err := s.repo.SetCompleted(ctx, db, roundID, completedAt); err != nil {
			return results.OperationResult[*scoreOutcome, error]{}, err
		}
		round.CompletedAt = &completedAt
		outcome.result.RoundCompleted = true

		cells, err := s.repo.GetCells(ctx, db, roundID)
		if err != nil {
			return results.OperationResult[*scoreOutcome, error]{}, err
		}
		outcome.completedEvent = completedPayload(round, course, participants, cells, completedAt)
	}

	return results.SuccessResult[*scoreOutcome, error](outcome), nil
}

// findTarget resolves the participant a score write addresses. Priority:
// explicit participant id, then resolved player reference, then the caller's
// own row. The returned error is always a domain failure.
func findTarget(
	participants []rounddb.ParticipantInfo,
	caller *rounddb.ParticipantInfo,
	participantID *int64,
	refPlayerID *int64,
) (*rounddb.ParticipantInfo, error) {
	if participantID != nil {
		for i := range participants {
			if participants[i].ID == *participantID {
				return &participants[i], nil
			}
		}
		return nil, types.NewNotFoundError("Participant not found")
	}

	if refPlayerID != nil {
		for i := range participants {
			if participants[i].PlayerID != nil && *participants[i].PlayerID == *refPlayerID {
				return &participants[i], nil
			}
		}
		return nil, types.NewNotFoundError("Participant not found")
	}

	if caller == nil {
		return nil, types.NewValidationError("participant_id or player_id required")
	}
	return caller, nil
}

// completedPayload builds the final-results event from the committed cells.
func completedPayload(
	round *rounddb.Round,
	course *coursedb.Course,
	participants []rounddb.ParticipantInfo,
	cells []rounddb.ScoreCell,
	completedAt time.Time,
) *events.RoundCompletedPayloadV1 {
	pars := make(map[int]int, len(course.Holes))
	for _, hole := range course.Holes {
		pars[hole.Number] = hole.Par
	}
	byParticipant := make(map[int64][]rounddb.ScoreCell, len(participants))
	for _, cell := range cells {
		byParticipant[cell.ParticipantID] = append(byParticipant[cell.ParticipantID], cell)
	}

	lines := make([]events.ParticipantResultV1, 0, len(participants))
	for _, info := range participants {
		var strokes, par int
		recorded := byParticipant[info.ID]
		for _, cell := range recorded {
			strokes += cell.Strokes
			par += pars[cell.HoleNumber]
		}
		guestName := ""
		if info.Kind == rounddb.KindGuest && info.GuestName != nil {
			guestName = *info.GuestName
		}
		lines = append(lines, events.ParticipantResultV1{
			ParticipantID:  info.ID,
			PlayerID:       info.PlayerID,
			GuestName:      guestName,
			TotalStrokes:   strokes,
			TotalPar:       par,
			ScoreToPar:     strokes - par,
			HolesCompleted: len(recorded),
		})
	}

	return &events.RoundCompletedPayloadV1{
		RoundID:      round.ID,
		CourseID:     round.CourseID,
		TournamentID: round.TournamentID,
		CompletedAt:  completedAt,
		Results:      lines,
	}
}
