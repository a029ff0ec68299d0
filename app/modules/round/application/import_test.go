package roundservice

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/xuri/excelize/v2"

	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	rounddb "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/events"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// workbookBytes builds a single-sheet XLSX from literal rows.
func workbookBytes(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func parRow(par, holes int) []interface{} {
	row := make([]interface{}, 0, holes+1)
	row = append(row, "Par")
	for i := 0; i < holes; i++ {
		row = append(row, par)
	}
	return row
}

func TestImportScorecardParsing(t *testing.T) {
	tests := []struct {
		name    string
		data    func(t *testing.T) []byte
		wantMsg string
	}{
		{
			name:    "not an xlsx",
			data:    func(t *testing.T) []byte { return []byte("strokes,4,5") },
			wantMsg: "Not a valid XLSX file",
		},
		{
			name: "no par row",
			data: func(t *testing.T) []byte {
				return workbookBytes(t, []interface{}{"Alice", 4, 5})
			},
			wantMsg: "No Par row found",
		},
		{
			name: "no player rows",
			data: func(t *testing.T) []byte {
				return workbookBytes(t, parRow(4, 9))
			},
			wantMsg: "No player rows found",
		},
		{
			name: "two par rows",
			data: func(t *testing.T) []byte {
				return workbookBytes(t, parRow(4, 9), parRow(4, 9))
			},
			wantMsg: "Multiple Par rows",
		},
		{
			name: "par is not a number",
			data: func(t *testing.T) []byte {
				return workbookBytes(t, []interface{}{"Par", 4, "x"}, []interface{}{"Alice", 4, 5})
			},
			wantMsg: "Invalid par value: x",
		},
		{
			name: "strokes are not a number",
			data: func(t *testing.T) []byte {
				return workbookBytes(t, parRow(4, 9), []interface{}{"Alice", "abc"})
			},
			wantMsg: "Invalid strokes for Alice: abc",
		},
		{
			name: "zero strokes",
			data: func(t *testing.T) []byte {
				return workbookBytes(t, parRow(4, 9), []interface{}{"Alice", 0})
			},
			wantMsg: "Invalid strokes for Alice: 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newTestDeps()
			svc := newTestService(deps)

			_, err := svc.ImportScorecard(context.Background(), 1, 10, tt.data(t))

			var invalid types.ValidationError
			assert.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.wantMsg, invalid.Message)
			assert.Empty(t, deps.repo.Trace(), "unparseable sheets must not hit the repository")
		})
	}
}

func TestImportScorecard(t *testing.T) {
	t.Run("unknown course", func(t *testing.T) {
		deps := newTestDeps()
		svc := newTestService(deps)

		_, err := svc.ImportScorecard(context.Background(), 1, 10, workbookBytes(t, parRow(4, 9), []interface{}{"Alice", 4}))

		var missing types.NotFoundError
		assert.ErrorAs(t, err, &missing)
		assert.Equal(t, "Course not found", missing.Message)
	})

	t.Run("par row shorter than course", func(t *testing.T) {
		deps := newTestDeps()
		serveCourse(deps, nineHoleCourse())
		svc := newTestService(deps)

		_, err := svc.ImportScorecard(context.Background(), 1, 10, workbookBytes(t, parRow(4, 6), []interface{}{"Alice", 4}))

		var invalid types.ValidationError
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, "Par row does not match course", invalid.Message)
	})

	t.Run("par values disagree with course", func(t *testing.T) {
		deps := newTestDeps()
		serveCourse(deps, nineHoleCourse())
		svc := newTestService(deps)

		_, err := svc.ImportScorecard(context.Background(), 1, 10, workbookBytes(t, parRow(5, 9), []interface{}{"Alice", 4}))

		var invalid types.ValidationError
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, "Par row does not match course", invalid.Message)
	})

	t.Run("five player rows rejected", func(t *testing.T) {
		deps := newTestDeps()
		serveCourse(deps, nineHoleCourse())
		svc := newTestService(deps)

		_, err := svc.ImportScorecard(context.Background(), 1, 10, workbookBytes(t,
			parRow(4, 9),
			[]interface{}{"P1", 4},
			[]interface{}{"P2", 4},
			[]interface{}{"P3", 4},
			[]interface{}{"P4", 4},
			[]interface{}{"P5", 4},
		))

		var invalid types.ValidationError
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, "max 4 players", invalid.Message)
	})

	t.Run("two labels resolving to one player rejected", func(t *testing.T) {
		deps := newTestDeps()
		serveCourse(deps, nineHoleCourse())
		deps.players.GetByRefFunc = func(ctx context.Context, db bun.IDB, ref string) (*playerdb.Player, error) {
			return &playerdb.Player{ID: 2, ExternalID: "bob"}, nil
		}
		svc := newTestService(deps)

		_, err := svc.ImportScorecard(context.Background(), 1, 10, workbookBytes(t,
			parRow(4, 9),
			[]interface{}{"bob", 4},
			[]interface{}{"robert", 4},
		))

		var invalid types.ValidationError
		assert.ErrorAs(t, err, &invalid)
		assert.Equal(t, "Duplicate player: robert", invalid.Message)
	})

	t.Run("imports a completed round", func(t *testing.T) {
		deps := newTestDeps()
		serveCourse(deps, nineHoleCourse())
		deps.players.GetByRefFunc = func(ctx context.Context, db bun.IDB, ref string) (*playerdb.Player, error) {
			if ref == "bob" {
				return &playerdb.Player{ID: 2, ExternalID: "bob"}, nil
			}
			return nil, playerdb.ErrNotFound
		}
		deps.repo.CreateFunc = func(ctx context.Context, db bun.IDB, round *rounddb.Round) error {
			round.ID = 77
			return nil
		}
		var inserted []rounddb.ScoreCell
		deps.repo.InsertCellsFunc = func(ctx context.Context, db bun.IDB, cells []rounddb.ScoreCell) error {
			inserted = cells
			return nil
		}
		deps.repo.GetParticipantsFunc = func(ctx context.Context, db bun.IDB, roundID int64) ([]rounddb.ParticipantInfo, error) {
			return []rounddb.ParticipantInfo{
				playerEntry(1, 77, 2, "Bob"),
				guestEntry(2, 77, "Charlie"),
			}, nil
		}
		deps.repo.GetCellsFunc = func(ctx context.Context, db bun.IDB, roundID int64) ([]rounddb.ScoreCell, error) {
			return inserted, nil
		}
		svc := newTestService(deps)

		detail, err := svc.ImportScorecard(context.Background(), 1, 10, workbookBytes(t,
			[]interface{}{"Hole", 1, 2, 3, 4, 5, 6, 7, 8, 9},
			parRow(4, 9),
			[]interface{}{"bob", 4, 5, 3, 4, 6, 4, 5, 4, 3},
			[]interface{}{"Charlie", 5, "", 4, "-", 6},
		))

		assert.NoError(t, err)
		assert.Equal(t, int64(77), detail.Round.ID)
		assert.Equal(t, int64(1), detail.Round.OwnerPlayerID)
		assert.NotNil(t, detail.Round.CompletedAt)
		assert.Equal(t, StateCompleted, detail.State)

		// Bob fills all nine holes, Charlie only holes 1, 3 and 5; blank and
		// "-" cells stay unscored.
		assert.Len(t, inserted, 12)
		assert.Equal(t, rounddb.ScoreCell{RoundID: 77, ParticipantID: 1, HoleNumber: 1, Strokes: 4}, inserted[0])
		charlie := inserted[9:]
		assert.Equal(t, 1, charlie[0].HoleNumber)
		assert.Equal(t, 3, charlie[1].HoleNumber)
		assert.Equal(t, 5, charlie[2].HoleNumber)

		assert.Equal(t, []string{"Create", "AddParticipants", "InsertCells", "GetParticipants", "GetCells"}, deps.repo.Trace())

		if assert.Len(t, detail.Participants, 2) {
			bob := detail.Participants[0]
			assert.Equal(t, 38, *bob.TotalStrokes)
			assert.Equal(t, 2, *bob.ScoreToPar)
			assert.Equal(t, 9, bob.HolesCompleted)

			guest := detail.Participants[1]
			assert.Equal(t, rounddb.KindGuest, guest.Info.Kind)
			assert.Equal(t, 15, *guest.TotalStrokes)
			assert.Equal(t, 3, *guest.ScoreToPar)
			assert.Equal(t, 3, guest.HolesCompleted)
		}

		published := deps.bus.Published(events.RoundCompletedV1)
		if assert.Len(t, published, 1) {
			var payload events.RoundCompletedPayloadV1
			assert.NoError(t, json.Unmarshal(published[0].Payload, &payload))
			assert.Equal(t, int64(77), payload.RoundID)
			if assert.Len(t, payload.Results, 2) {
				assert.Equal(t, int64(2), *payload.Results[0].PlayerID)
				assert.Equal(t, "Charlie", payload.Results[1].GuestName)
				assert.Equal(t, 15, payload.Results[1].TotalStrokes)
			}
		}
		assert.Empty(t, deps.bus.Published(events.RoundScoreSubmittedV1))
	})
}
