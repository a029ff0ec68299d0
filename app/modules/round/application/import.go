package roundservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"

	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	rounddb "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/events"
	"github.com/fairway-collective/links-backend/app/shared/results"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// parsedScorecard is an uploaded sheet reduced to a par row and player rows.
type parsedScorecard struct {
	pars []int
	rows []scorecardRow
}

// scorecardRow is one player line; strokes are positional per hole, nil where
// the cell was left blank.
type scorecardRow struct {
	label   string
	strokes []*int
}

// importOutcome carries the created round out of the transaction with the
// completion event to publish after commit.
type importOutcome struct {
	detail         *RoundDetail
	completedEvent *events.RoundCompletedPayloadV1
}

// ImportScorecard creates a completed round from an uploaded XLSX sheet. The
// sheet needs a Par row matching the course and one row per player; labels
// that resolve to registered players are linked, the rest become guests.
func (s *RoundService) ImportScorecard(ctx context.Context, callerID int64, courseID int64, data []byte) (*RoundDetail, error) {
	result, err := withTelemetry(s, ctx, "ImportScorecard", fmt.Sprintf("course:%d", courseID), func(ctx context.Context) (results.OperationResult[*importOutcome, error], error) {
		parsed, parseErr := parseScorecard(data)
		if parseErr != nil {
			return results.FailureResult[*importOutcome, error](parseErr), nil
		}
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (results.OperationResult[*importOutcome, error], error) {
			return s.importScorecard(ctx, db, callerID, courseID, parsed)
		})
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}

	outcome := *result.Success
	s.publish(ctx, events.RoundCompletedV1, *outcome.completedEvent)
	return outcome.detail, nil
}

func (s *RoundService) importScorecard(ctx context.Context, db bun.IDB, callerID int64, courseID int64, parsed *parsedScorecard) (results.OperationResult[*importOutcome, error], error) {
	fail := func(err error) (results.OperationResult[*importOutcome, error], error) {
		return results.FailureResult[*importOutcome, error](err), nil
	}

	course, err := s.courses.GetDetail(ctx, db, courseID)
	if err != nil {
		if errors.Is(err, coursedb.ErrNotFound) {
			return fail(types.NewNotFoundError("Course not found"))
		}
		return results.OperationResult[*importOutcome, error]{}, err
	}
	if course.IsArchived() {
		return fail(types.NewNotFoundError("Course not found"))
	}

	if len(parsed.pars) != len(course.Holes) {
		return fail(types.NewValidationError("Par row does not match course"))
	}
	for i, hole := range course.Holes {
		if parsed.pars[i] != hole.Par {
			return fail(types.NewValidationError("Par row does not match course"))
		}
	}
	if len(parsed.rows) > maxParticipants {
		return fail(types.NewValidationError("max 4 players"))
	}

	now := time.Now()
	round := &rounddb.Round{
		OwnerPlayerID: callerID,
		CourseID:      courseID,
		StartedAt:     now,
		CompletedAt:   &now,
	}
	if err := s.repo.Create(ctx, db, round); err != nil {
		return results.OperationResult[*importOutcome, error]{}, err
	}

	participants := make([]rounddb.RoundParticipant, 0, len(parsed.rows))
	seen := make(map[int64]bool, len(parsed.rows))
	for _, row := range parsed.rows {
		player, err := s.players.GetByRef(ctx, db, row.label)
		if err != nil {
			if errors.Is(err, playerdb.ErrNotFound) {
				participants = append(participants, newGuestParticipant(round.ID, GuestInput{Name: row.label}))
				continue
			}
			return results.OperationResult[*importOutcome, error]{}, err
		}
		if seen[player.ID] {
			return fail(types.NewValidationError(fmt.Sprintf("Duplicate player: %s", row.label)))
		}
		seen[player.ID] = true
		id := player.ID
		participants = append(participants, rounddb.RoundParticipant{
			RoundID:  round.ID,
			Kind:     rounddb.KindPlayer,
			PlayerID: &id,
		})
	}
	if err := s.repo.AddParticipants(ctx, db, participants); err != nil {
		return results.OperationResult[*importOutcome, error]{}, err
	}

	cells := make([]rounddb.ScoreCell, 0, len(parsed.rows)*len(course.Holes))
	for i, row := range parsed.rows {
		for j, strokes := range row.strokes {
			if strokes == nil || j >= len(course.Holes) {
				continue
			}
			cells = append(cells, rounddb.ScoreCell{
				RoundID:       round.ID,
				ParticipantID: participants[i].ID,
				HoleNumber:    course.Holes[j].Number,
				Strokes:       *strokes,
			})
		}
	}
	if err := s.repo.InsertCells(ctx, db, cells); err != nil {
		return results.OperationResult[*importOutcome, error]{}, err
	}

	infos, err := s.repo.GetParticipants(ctx, db, round.ID)
	if err != nil {
		return results.OperationResult[*importOutcome, error]{}, err
	}
	stored, err := s.repo.GetCells(ctx, db, round.ID)
	if err != nil {
		return results.OperationResult[*importOutcome, error]{}, err
	}

	outcome := &importOutcome{
		detail:         buildDetail(round, course, infos, stored, nil),
		completedEvent: completedPayload(round, course, infos, stored, now),
	}
	return results.SuccessResult[*importOutcome, error](outcome), nil
}

// parseScorecard reads the first sheet: a Par row plus one row per player.
// Blank cells and "-" read as unscored; a Hole header row is ignored.
func parseScorecard(data []byte) (*parsedScorecard, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, types.NewValidationError("Not a valid XLSX file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, types.NewValidationError("Workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, types.NewValidationError("Could not read the first sheet")
	}

	parsed := &parsedScorecard{}
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		label := strings.TrimSpace(row[0])
		if label == "" || strings.EqualFold(label, "Hole") {
			continue
		}

		if strings.EqualFold(label, "Par") {
			if parsed.pars != nil {
				return nil, types.NewValidationError("Multiple Par rows")
			}
			for _, raw := range row[1:] {
				value := strings.TrimSpace(raw)
				if value == "" {
					break
				}
				par, err := strconv.Atoi(value)
				if err != nil {
					return nil, types.NewValidationError(fmt.Sprintf("Invalid par value: %s", value))
				}
				parsed.pars = append(parsed.pars, par)
			}
			continue
		}

		line := scorecardRow{label: label}
		for _, raw := range row[1:] {
			value := strings.TrimSpace(raw)
			if value == "" || value == "-" {
				line.strokes = append(line.strokes, nil)
				continue
			}
			strokes, err := strconv.Atoi(value)
			if err != nil || strokes < 1 {
				return nil, types.NewValidationError(fmt.Sprintf("Invalid strokes for %s: %s", label, value))
			}
			line.strokes = append(line.strokes, &strokes)
		}
		parsed.rows = append(parsed.rows, line)
	}

	if parsed.pars == nil {
		return nil, types.NewValidationError("No Par row found")
	}
	if len(parsed.rows) == 0 {
		return nil, types.NewValidationError("No player rows found")
	}
	return parsed, nil
}
