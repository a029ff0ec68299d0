package socialservice

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	socialdb "github.com/fairway-collective/links-backend/app/modules/social/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/events"
	"github.com/fairway-collective/links-backend/app/shared/results"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// Feed size bounds.
const (
	defaultFeedLimit = 20
	maxFeedLimit     = 100
)

// GetActivityFeed returns the caller's friends' activity, newest first. A
// zero limit means the default page size.
func (s *SocialService) GetActivityFeed(ctx context.Context, callerID int64, limit int) ([]socialdb.ActivityInfo, error) {
	result, err := withTelemetry(s, ctx, "GetActivityFeed", fmt.Sprintf("%d", callerID), func(ctx context.Context) (results.OperationResult[[]socialdb.ActivityInfo, error], error) {
		if limit == 0 {
			limit = defaultFeedLimit
		}
		if limit < 1 || limit > maxFeedLimit {
			return results.FailureResult[[]socialdb.ActivityInfo, error](types.NewValidationError(fmt.Sprintf("Limit must be between 1 and %d", maxFeedLimit))), nil
		}
		entries, err := s.repo.ListFriendActivity(ctx, nil, callerID, limit)
		if err != nil {
			return results.OperationResult[[]socialdb.ActivityInfo, error]{}, err
		}
		return results.SuccessResult[[]socialdb.ActivityInfo, error](entries), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// holeKindFor classifies a scored hole relative to par. Empty means the
// score is not feed-worthy.
func holeKindFor(strokes, par int) string {
	switch diff := strokes - par; {
	case diff <= -3:
		return socialdb.KindAlbatross
	case diff == -2:
		return socialdb.KindEagle
	case diff == -1:
		return socialdb.KindBirdie
	default:
		return ""
	}
}

// RecordScoreActivity projects one submitted score into the activity feed
// when it is a birdie or better by a registered player. The unique key on
// activity events absorbs replays and rescored holes.
func (s *SocialService) RecordScoreActivity(ctx context.Context, payload *events.ScoreSubmittedPayloadV1) ([]socialdb.ActivityEvent, error) {
	result, err := withTelemetry(s, ctx, "RecordScoreActivity", fmt.Sprintf("round %d hole %d", payload.RoundID, payload.HoleNumber), func(ctx context.Context) (results.OperationResult[[]socialdb.ActivityEvent, error], error) {
		if payload.PlayerID == nil {
			return results.SuccessResult[[]socialdb.ActivityEvent, error](nil), nil
		}
		kind := holeKindFor(payload.Strokes, payload.Par)
		if kind == "" {
			return results.SuccessResult[[]socialdb.ActivityEvent, error](nil), nil
		}

		event := &socialdb.ActivityEvent{
			PlayerID:   *payload.PlayerID,
			RoundID:    payload.RoundID,
			HoleNumber: payload.HoleNumber,
			Strokes:    payload.Strokes,
			Par:        payload.Par,
			Kind:       kind,
		}
		inserted, err := s.repo.InsertActivityEvent(ctx, nil, event)
		if err != nil {
			return results.OperationResult[[]socialdb.ActivityEvent, error]{}, err
		}
		if !inserted {
			return results.SuccessResult[[]socialdb.ActivityEvent, error](nil), nil
		}
		return results.SuccessResult[[]socialdb.ActivityEvent, error]([]socialdb.ActivityEvent{*event}), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// RecordRoundCompletion projects personal bests for each registered
// participant of a completed round. A best requires at least one prior
// completed round with the same hole count; the first comparable round only
// sets the baseline.
func (s *SocialService) RecordRoundCompletion(ctx context.Context, payload *events.RoundCompletedPayloadV1) ([]socialdb.ActivityEvent, error) {
	result, err := withTelemetry(s, ctx, "RecordRoundCompletion", fmt.Sprintf("%d", payload.RoundID), func(ctx context.Context) (results.OperationResult[[]socialdb.ActivityEvent, error], error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[[]socialdb.ActivityEvent, error], error) {
			recorded := make([]socialdb.ActivityEvent, 0)
			for _, res := range payload.Results {
				if res.PlayerID == nil || res.HolesCompleted == 0 {
					continue
				}
				playerEvents, err := s.projectPersonalBests(ctx, db, payload, res)
				if err != nil {
					return results.OperationResult[[]socialdb.ActivityEvent, error]{}, err
				}
				recorded = append(recorded, playerEvents...)
			}
			return results.SuccessResult[[]socialdb.ActivityEvent, error](recorded), nil
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

func (s *SocialService) projectPersonalBests(ctx context.Context, db bun.IDB, payload *events.RoundCompletedPayloadV1, res events.ParticipantResultV1) ([]socialdb.ActivityEvent, error) {
	playerID := *res.PlayerID
	holes := res.HolesCompleted

	recorded := make([]socialdb.ActivityEvent, 0, 2)
	record := func(kind string) error {
		event := &socialdb.ActivityEvent{
			PlayerID:   playerID,
			RoundID:    payload.RoundID,
			HoleNumber: 0,
			Strokes:    res.TotalStrokes,
			Par:        res.TotalPar,
			Kind:       kind,
		}
		inserted, err := s.repo.InsertActivityEvent(ctx, db, event)
		if err != nil {
			return err
		}
		if inserted {
			recorded = append(recorded, *event)
		}
		return nil
	}

	bestOverall, err := s.repo.BestCompletedTotal(ctx, db, playerID, 0, holes, payload.RoundID)
	if err != nil {
		return nil, err
	}
	if bestOverall != nil && res.TotalStrokes < *bestOverall {
		if err := record(socialdb.KindPBOverall); err != nil {
			return nil, err
		}
	}

	bestCourse, err := s.repo.BestCompletedTotal(ctx, db, playerID, payload.CourseID, holes, payload.RoundID)
	if err != nil {
		return nil, err
	}
	if bestCourse != nil && res.TotalStrokes < *bestCourse {
		if err := record(socialdb.KindPBCourse); err != nil {
			return nil, err
		}
	}

	return recorded, nil
}
