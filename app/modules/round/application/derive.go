package roundservice

import (
	"math"

	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
	rounddb "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/repositories"
)

// Score-to-par classes.
const (
	ClassEagle       = "eagle"
	ClassBirdie      = "birdie"
	ClassPar         = "par"
	ClassBogey       = "bogey"
	ClassDoubleBogey = "double_bogey"
)

// scoreClass buckets a hole result relative to par. Everything at or below
// two under collapses into eagle, everything at or above two over into
// double_bogey.
func scoreClass(strokes, par int) string {
	switch diff := strokes - par; {
	case diff <= -2:
		return ClassEagle
	case diff == -1:
		return ClassBirdie
	case diff == 0:
		return ClassPar
	case diff == 1:
		return ClassBogey
	default:
		return ClassDoubleBogey
	}
}

// roundState derives the lifecycle state from the round row and, for
// tournament rounds, the parent's lock markers.
func roundState(round *rounddb.Round, lock *rounddb.TournamentLockState) string {
	if round.IsCompleted() {
		return StateCompleted
	}
	if lock != nil && (lock.PausedAt != nil || lock.CompletedAt != nil) {
		return StateLocked
	}
	return StateOpen
}

// buildScorecard computes a participant's derived values from its recorded
// cells. Cells are expected ordered by hole number; totals stay nil until at
// least one cell exists.
func buildScorecard(info rounddb.ParticipantInfo, cells []rounddb.ScoreCell, pars map[int]int) ParticipantScorecard {
	card := ParticipantScorecard{Info: info, Cells: []ScoredHole{}}

	var strokes, par int
	var front, frontCount, back, backCount int
	var putts, puttsRecorded int
	var fairwayRecorded, fairwayHit, girRecorded, girHit int

	for _, cell := range cells {
		holePar := pars[cell.HoleNumber]
		card.Cells = append(card.Cells, ScoredHole{
			HoleNumber: cell.HoleNumber,
			Par:        holePar,
			Strokes:    cell.Strokes,
			Putts:      cell.Putts,
			Fairway:    cell.Fairway,
			Gir:        cell.Gir,
			Class:      scoreClass(cell.Strokes, holePar),
		})

		strokes += cell.Strokes
		par += holePar
		if cell.HoleNumber <= 9 {
			front += cell.Strokes
			frontCount++
		} else {
			back += cell.Strokes
			backCount++
		}
		if cell.Putts != nil {
			putts += *cell.Putts
			puttsRecorded++
		}
		if cell.Fairway != nil {
			fairwayRecorded++
			if *cell.Fairway == rounddb.OutcomeHit {
				fairwayHit++
			}
		}
		if cell.Gir != nil {
			girRecorded++
			if *cell.Gir == rounddb.OutcomeHit {
				girHit++
			}
		}
	}

	card.HolesCompleted = len(cells)
	if len(cells) == 0 {
		return card
	}

	toPar := strokes - par
	card.TotalStrokes = &strokes
	card.ScoreToPar = &toPar
	if frontCount > 0 {
		card.FrontNine = &front
	}
	if backCount > 0 {
		card.BackNine = &back
	}
	if puttsRecorded > 0 {
		card.PuttsTotal = &putts
	}
	if fairwayRecorded > 0 {
		pct := roundPct(fairwayHit, fairwayRecorded)
		card.FairwayHitPct = &pct
	}
	if girRecorded > 0 {
		pct := roundPct(girHit, girRecorded)
		card.GirHitPct = &pct
	}
	return card
}

// roundPct converts hit/recorded into a percentage with one decimal.
func roundPct(hit, recorded int) float64 {
	return math.Round(float64(hit)/float64(recorded)*1000) / 10
}

// buildDetail assembles the scorecard view: holes carry the selected tee's
// distances when one is set, and cells are grouped per participant.
func buildDetail(
	round *rounddb.Round,
	course *coursedb.Course,
	participants []rounddb.ParticipantInfo,
	cells []rounddb.ScoreCell,
	lock *rounddb.TournamentLockState,
) *RoundDetail {
	detail := &RoundDetail{
		Round:      round,
		CourseName: course.Name,
		State:      roundState(round, lock),
		TotalPar:   course.TotalPar(),
	}

	var teeDistances map[int]int
	if round.TeeID != nil {
		for i := range course.Tees {
			tee := &course.Tees[i]
			if tee.ID != *round.TeeID {
				continue
			}
			detail.TeeName = &tee.TeeName
			teeDistances = make(map[int]int, len(tee.HoleDistances))
			for _, d := range tee.HoleDistances {
				teeDistances[d.HoleNumber] = d.Distance
			}
			break
		}
	}

	pars := make(map[int]int, len(course.Holes))
	detail.Holes = make([]RoundHole, 0, len(course.Holes))
	for _, hole := range course.Holes {
		pars[hole.Number] = hole.Par
		distance := hole.Distance
		if teeDistances != nil {
			if d, ok := teeDistances[hole.Number]; ok {
				distance = &d
			}
		}
		detail.Holes = append(detail.Holes, RoundHole{
			Number:   hole.Number,
			Par:      hole.Par,
			Distance: distance,
			Hcp:      hole.Hcp,
		})
	}

	byParticipant := make(map[int64][]rounddb.ScoreCell, len(participants))
	for _, cell := range cells {
		byParticipant[cell.ParticipantID] = append(byParticipant[cell.ParticipantID], cell)
	}

	detail.Participants = make([]ParticipantScorecard, 0, len(participants))
	for _, info := range participants {
		detail.Participants = append(detail.Participants, buildScorecard(info, byParticipant[info.ID], pars))
	}
	return detail
}
