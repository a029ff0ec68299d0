package tournamentservice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
	tournamentdb "github.com/fairway-collective/links-backend/app/modules/tournament/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/results"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// GetLeaderboard returns the tournament standings, one entry per participant
// with at least one recorded cell.
func (s *TournamentService) GetLeaderboard(ctx context.Context, callerID int64, tournamentID int64) ([]LeaderboardEntry, error) {
	result, err := withTelemetry(s, ctx, "GetLeaderboard", fmt.Sprintf("%d", tournamentID), func(ctx context.Context) (results.OperationResult[[]LeaderboardEntry, error], error) {
		fail := func(err error) (results.OperationResult[[]LeaderboardEntry, error], error) {
			return results.FailureResult[[]LeaderboardEntry, error](err), nil
		}

		tournament, repoErr := s.repo.GetByID(ctx, nil, tournamentID)
		if repoErr != nil {
			if errors.Is(repoErr, tournamentdb.ErrNotFound) {
				return fail(types.NewNotFoundError("Tournament not found"))
			}
			return results.OperationResult[[]LeaderboardEntry, error]{}, repoErr
		}

		allowed, repoErr := s.canView(ctx, nil, tournament, callerID)
		if repoErr != nil {
			return results.OperationResult[[]LeaderboardEntry, error]{}, repoErr
		}
		if !allowed {
			return fail(types.NewAuthorizationError("Not allowed"))
		}

		course, repoErr := s.courses.GetDetail(ctx, nil, tournament.CourseID)
		if repoErr != nil {
			return results.OperationResult[[]LeaderboardEntry, error]{}, repoErr
		}
		participants, repoErr := s.repo.ListParticipants(ctx, nil, tournamentID)
		if repoErr != nil {
			return results.OperationResult[[]LeaderboardEntry, error]{}, repoErr
		}
		scores, repoErr := s.repo.ListScores(ctx, nil, tournamentID)
		if repoErr != nil {
			return results.OperationResult[[]LeaderboardEntry, error]{}, repoErr
		}
		return results.SuccessResult[[]LeaderboardEntry, error](buildLeaderboard(course.Holes, participants, scores)), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// buildLeaderboard derives the standings from recorded cells. Strokes and par
// count scored holes only, so partially played rounds compare on score to
// par; current hole is the lowest hole still waiting for a score.
func buildLeaderboard(holes []coursedb.Hole, participants []tournamentdb.ParticipantRow, scores []tournamentdb.ScoreRow) []LeaderboardEntry {
	parByHole := make(map[int]int, len(holes))
	order := make([]int, 0, len(holes))
	for _, hole := range holes {
		parByHole[hole.Number] = hole.Par
		order = append(order, hole.Number)
	}
	sort.Ints(order)

	cellsByParticipant := make(map[int64]map[int]int, len(participants))
	for _, score := range scores {
		cells := cellsByParticipant[score.ParticipantID]
		if cells == nil {
			cells = make(map[int]int)
			cellsByParticipant[score.ParticipantID] = cells
		}
		cells[score.HoleNumber] = score.Strokes
	}

	entries := make([]LeaderboardEntry, 0, len(participants))
	for i := range participants {
		participant := &participants[i]
		cells := cellsByParticipant[participant.ID]
		if len(cells) == 0 {
			continue
		}

		strokes, par := 0, 0
		for hole, count := range cells {
			strokes += count
			par += parByHole[hole]
		}
		var current *int
		for _, number := range order {
			if _, scored := cells[number]; !scored {
				n := number
				current = &n
				break
			}
		}

		entries = append(entries, LeaderboardEntry{
			ParticipantID:  participant.ID,
			PlayerRef:      participant.Ref(),
			PlayerName:     participant.DisplayName(),
			GroupRoundID:   participant.RoundID,
			GroupID:        participant.GroupID,
			HolesCompleted: len(cells),
			CurrentHole:    current,
			Strokes:        strokes,
			Par:            par,
			ScoreToPar:     strokes - par,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.ScoreToPar != b.ScoreToPar {
			return a.ScoreToPar < b.ScoreToPar
		}
		if a.HolesCompleted != b.HolesCompleted {
			return a.HolesCompleted > b.HolesCompleted
		}
		an, bn := strings.ToLower(a.PlayerName), strings.ToLower(b.PlayerName)
		if an != bn {
			return an < bn
		}
		return a.ParticipantID < b.ParticipantID
	})
	return entries
}
