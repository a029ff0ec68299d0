package playerservice

import (
	"context"
	"fmt"
	"math"
	"time"

	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/results"
)

// PlayerStats aggregates a player's completed rounds.
type PlayerStats struct {
	RoundsCount     int        `json:"rounds_count"`
	HolesPlayed     int        `json:"holes_played"`
	AvgStrokesPer18 *float64   `json:"avg_strokes_per_18"`
	AvgPutts        *float64   `json:"avg_putts"`
	FairwayHitPct   *float64   `json:"fairway_hit_pct"`
	GIRPct          *float64   `json:"gir_pct"`
	BestRound       *BestRound `json:"best_round"`
	Birdies         int        `json:"birdies"`
	Eagles          int        `json:"eagles"`
	Albatrosses     int        `json:"albatrosses"`
}

// BestRound is the player's lowest completed round relative to par.
type BestRound struct {
	RoundID      int64     `json:"round_id"`
	CourseID     int64     `json:"course_id"`
	CourseName   string    `json:"course_name"`
	TotalStrokes int       `json:"total_strokes"`
	ScoreToPar   int       `json:"score_to_par"`
	CompletedAt  time.Time `json:"completed_at"`
}

// GetStats computes aggregate statistics over the player's completed rounds.
func (s *PlayerService) GetStats(ctx context.Context, playerID int64) (*PlayerStats, error) {
	result, err := withTelemetry(s, ctx, "GetPlayerStats", fmt.Sprintf("%d", playerID), func(ctx context.Context) (results.OperationResult[*PlayerStats, error], error) {
		return s.getStats(ctx, playerID)
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

func (s *PlayerService) getStats(ctx context.Context, playerID int64) (results.OperationResult[*PlayerStats, error], error) {
	aggregates, err := s.repo.GetCompletedRoundAggregates(ctx, nil, playerID)
	if err != nil {
		return results.OperationResult[*PlayerStats, error]{}, err
	}

	averages, err := s.repo.GetScoringAverages(ctx, nil, playerID)
	if err != nil {
		return results.OperationResult[*PlayerStats, error]{}, err
	}

	kinds, err := s.repo.CountActivityKinds(ctx, nil, playerID)
	if err != nil {
		return results.OperationResult[*PlayerStats, error]{}, err
	}

	stats := &PlayerStats{
		RoundsCount: len(aggregates),
		Birdies:     kinds["birdie"],
		Eagles:      kinds["eagle"],
		Albatrosses: kinds["albatross"],
	}

	var normalizedSum float64
	var best *BestRound
	for _, agg := range aggregates {
		stats.HolesPlayed += agg.HolesPlayed

		// Nine-hole totals count double towards the 18-hole average.
		normalized := float64(agg.TotalStrokes)
		if agg.HolesPlayed > 0 && agg.HolesPlayed <= 9 {
			normalized *= 2
		}
		normalizedSum += normalized

		toPar := agg.ScoreToPar()
		if best == nil || toPar < best.ScoreToPar ||
			(toPar == best.ScoreToPar && agg.TotalStrokes < best.TotalStrokes) {
			best = &BestRound{
				RoundID:      agg.RoundID,
				CourseID:     agg.CourseID,
				CourseName:   agg.CourseName,
				TotalStrokes: agg.TotalStrokes,
				ScoreToPar:   toPar,
				CompletedAt:  agg.CompletedAt,
			}
		}
	}
	stats.BestRound = best

	if len(aggregates) > 0 {
		avg := roundTo1(normalizedSum / float64(len(aggregates)))
		stats.AvgStrokesPer18 = &avg
	}

	if averages.AvgPutts != nil {
		putts := roundTo1(*averages.AvgPutts)
		stats.AvgPutts = &putts
	}
	if averages.FairwayRecorded > 0 {
		pct := roundTo1(float64(averages.FairwayHit) / float64(averages.FairwayRecorded) * 100)
		stats.FairwayHitPct = &pct
	}
	if averages.GIRRecorded > 0 {
		pct := roundTo1(float64(averages.GIRHit) / float64(averages.GIRRecorded) * 100)
		stats.GIRPct = &pct
	}

	return results.SuccessResult[*PlayerStats, error](stats), nil
}

func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}

// scoreTrendPoints converts completed-round aggregates into the chart series.
func scoreTrendPoints(aggregates []playerdb.RoundAggregate) ([]time.Time, []float64) {
	xValues := make([]time.Time, 0, len(aggregates))
	yValues := make([]float64, 0, len(aggregates))
	for _, agg := range aggregates {
		xValues = append(xValues, agg.CompletedAt)
		yValues = append(yValues, float64(agg.ScoreToPar()))
	}
	return xValues, yValues
}
