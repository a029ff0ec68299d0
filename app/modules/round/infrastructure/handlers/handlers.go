package roundhandlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	roundservice "github.com/fairway-collective/links-backend/app/modules/round/application"
	rounddb "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/httputils"
	"github.com/fairway-collective/links-backend/app/shared/identity"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// maxImportBytes caps scorecard uploads.
const maxImportBytes = 5 << 20

// RoundHandlers serves the round HTTP routes.
type RoundHandlers struct {
	service roundservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewRoundHandlers creates a new RoundHandlers instance.
func NewRoundHandlers(service roundservice.Service, logger *slog.Logger, tracer trace.Tracer) *RoundHandlers {
	return &RoundHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// roundPayload is the start-round request body. Player ids are references
// resolved by external id, email, or username.
type roundPayload struct {
	CourseID     int64          `json:"course_id"`
	TeeID        *int64         `json:"tee_id"`
	StatsEnabled bool           `json:"stats_enabled"`
	PlayerIDs    []string       `json:"player_ids"`
	GuestPlayers []guestPayload `json:"guest_players"`
}

type guestPayload struct {
	Name     string   `json:"name"`
	Handicap *float64 `json:"handicap"`
}

// scorePayload is one scorecard cell write.
type scorePayload struct {
	HoleNumber    int     `json:"hole_number"`
	Strokes       int     `json:"strokes"`
	PlayerID      string  `json:"player_id"`
	ParticipantID *int64  `json:"participant_id"`
	Putts         *int    `json:"putts"`
	Fairway       *string `json:"fairway"`
	Gir           *string `json:"gir"`
}

// participantsPayload adds players or guests to a round.
type participantsPayload struct {
	PlayerIDs    []string       `json:"player_ids"`
	GuestPlayers []guestPayload `json:"guest_players"`
}

// roundSummaryResponse is one list entry.
type roundSummaryResponse struct {
	ID                int64      `json:"id"`
	CourseID          int64      `json:"course_id"`
	CourseName        string     `json:"course_name"`
	OwnerPlayerID     int64      `json:"owner_player_id"`
	TournamentID      *int64     `json:"tournament_id"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at"`
	ParticipantsCount int        `json:"participants_count"`
	HolesCount        int        `json:"holes_count"`
	TotalPar          int        `json:"total_par"`
}

// roundDetailResponse is the full scorecard view.
type roundDetailResponse struct {
	ID            int64                 `json:"id"`
	CourseID      int64                 `json:"course_id"`
	CourseName    string                `json:"course_name"`
	OwnerPlayerID int64                 `json:"owner_player_id"`
	TournamentID  *int64                `json:"tournament_id"`
	State         string                `json:"state"`
	StatsEnabled  bool                  `json:"stats_enabled"`
	TeeID         *int64                `json:"tee_id"`
	TeeName       *string               `json:"tee_name"`
	StartedAt     time.Time             `json:"started_at"`
	CompletedAt   *time.Time            `json:"completed_at"`
	TotalPar      int                   `json:"total_par"`
	Holes         []roundHoleResponse   `json:"holes"`
	Participants  []participantResponse `json:"participants"`
}

// roundHoleResponse is a course hole as played: distance reflects the
// selected tee when one is set.
type roundHoleResponse struct {
	Number   int  `json:"number"`
	Par      int  `json:"par"`
	Distance *int `json:"distance"`
	Hcp      *int `json:"hcp"`
}

// participantResponse is one scorecard column with derived values. Totals
// are null until the participant has at least one recorded cell.
type participantResponse struct {
	ID             int64               `json:"id"`
	Kind           string              `json:"kind"`
	Ref            string              `json:"ref"`
	PlayerID       *int64              `json:"player_id"`
	DisplayName    string              `json:"display_name"`
	Handicap       *float64            `json:"handicap"`
	Cells          []scoreCellResponse `json:"cells"`
	HolesCompleted int                 `json:"holes_completed"`
	TotalStrokes   *int                `json:"total_strokes"`
	ScoreToPar     *int                `json:"score_to_par"`
	FrontNine      *int                `json:"front_nine"`
	BackNine       *int                `json:"back_nine"`
	PuttsTotal     *int                `json:"putts_total"`
	FairwayHitPct  *float64            `json:"fairway_hit_pct"`
	GirHitPct      *float64            `json:"gir_hit_pct"`
}

type scoreCellResponse struct {
	HoleNumber int     `json:"hole_number"`
	Par        int     `json:"par"`
	Strokes    int     `json:"strokes"`
	Putts      *int    `json:"putts"`
	Fairway    *string `json:"fairway"`
	Gir        *string `json:"gir"`
	Class      string  `json:"class"`
}

// scoreResponse confirms one cell write.
type scoreResponse struct {
	ParticipantID  int64   `json:"participant_id"`
	HoleNumber     int     `json:"hole_number"`
	Strokes        int     `json:"strokes"`
	Putts          *int    `json:"putts"`
	Fairway        *string `json:"fairway"`
	Gir            *string `json:"gir"`
	RoundCompleted bool    `json:"round_completed"`
}

func toStartInput(payload roundPayload) roundservice.StartRoundInput {
	input := roundservice.StartRoundInput{
		CourseID:     payload.CourseID,
		TeeID:        payload.TeeID,
		StatsEnabled: payload.StatsEnabled,
		PlayerRefs:   payload.PlayerIDs,
	}
	for _, g := range payload.GuestPlayers {
		input.Guests = append(input.Guests, roundservice.GuestInput{
			Name:     g.Name,
			Handicap: g.Handicap,
		})
	}
	return input
}

func toAddInput(payload participantsPayload) roundservice.AddParticipantsInput {
	input := roundservice.AddParticipantsInput{PlayerRefs: payload.PlayerIDs}
	for _, g := range payload.GuestPlayers {
		input.Guests = append(input.Guests, roundservice.GuestInput{
			Name:     g.Name,
			Handicap: g.Handicap,
		})
	}
	return input
}

func toRoundSummaryResponse(s *rounddb.RoundSummary) roundSummaryResponse {
	return roundSummaryResponse{
		ID:                s.ID,
		CourseID:          s.CourseID,
		CourseName:        s.CourseName,
		OwnerPlayerID:     s.OwnerPlayerID,
		TournamentID:      s.TournamentID,
		StartedAt:         s.StartedAt,
		CompletedAt:       s.CompletedAt,
		ParticipantsCount: s.ParticipantsCount,
		HolesCount:        s.HolesCount,
		TotalPar:          s.TotalPar,
	}
}

func toRoundDetailResponse(d *roundservice.RoundDetail) roundDetailResponse {
	resp := roundDetailResponse{
		ID:            d.Round.ID,
		CourseID:      d.Round.CourseID,
		CourseName:    d.CourseName,
		OwnerPlayerID: d.Round.OwnerPlayerID,
		TournamentID:  d.Round.TournamentID,
		State:         d.State,
		StatsEnabled:  d.Round.StatsEnabled,
		TeeID:         d.Round.TeeID,
		TeeName:       d.TeeName,
		StartedAt:     d.Round.StartedAt,
		CompletedAt:   d.Round.CompletedAt,
		TotalPar:      d.TotalPar,
		Holes:         make([]roundHoleResponse, 0, len(d.Holes)),
		Participants:  make([]participantResponse, 0, len(d.Participants)),
	}
	for _, h := range d.Holes {
		resp.Holes = append(resp.Holes, roundHoleResponse{
			Number:   h.Number,
			Par:      h.Par,
			Distance: h.Distance,
			Hcp:      h.Hcp,
		})
	}
	for _, p := range d.Participants {
		resp.Participants = append(resp.Participants, toParticipantResponse(p))
	}
	return resp
}

func toParticipantResponse(p roundservice.ParticipantScorecard) participantResponse {
	handicap := p.Info.Handicap
	if p.Info.Kind == rounddb.KindGuest {
		handicap = p.Info.GuestHandicap
	}
	out := participantResponse{
		ID:             p.Info.ID,
		Kind:           p.Info.Kind,
		Ref:            p.Info.Ref(),
		PlayerID:       p.Info.PlayerID,
		DisplayName:    p.Info.DisplayName(),
		Handicap:       handicap,
		Cells:          make([]scoreCellResponse, 0, len(p.Cells)),
		HolesCompleted: p.HolesCompleted,
		TotalStrokes:   p.TotalStrokes,
		ScoreToPar:     p.ScoreToPar,
		FrontNine:      p.FrontNine,
		BackNine:       p.BackNine,
		PuttsTotal:     p.PuttsTotal,
		FairwayHitPct:  p.FairwayHitPct,
		GirHitPct:      p.GirHitPct,
	}
	for _, c := range p.Cells {
		out.Cells = append(out.Cells, scoreCellResponse{
			HoleNumber: c.HoleNumber,
			Par:        c.Par,
			Strokes:    c.Strokes,
			Putts:      c.Putts,
			Fairway:    c.Fairway,
			Gir:        c.Gir,
			Class:      c.Class,
		})
	}
	return out
}

func toScoreResponse(res *roundservice.ScoreResult) scoreResponse {
	return scoreResponse{
		ParticipantID:  res.ParticipantID,
		HoleNumber:     res.HoleNumber,
		Strokes:        res.Strokes,
		Putts:          res.Putts,
		Fairway:        res.Fairway,
		Gir:            res.Gir,
		RoundCompleted: res.RoundCompleted,
	}
}

func roundIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "roundID"), 10, 64)
	if err != nil {
		return 0, types.NewValidationError("Invalid round id")
	}
	return id, nil
}

// HandleListRounds returns the caller's rounds, newest first.
func (h *RoundHandlers) HandleListRounds(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	summaries, err := h.service.ListRounds(ctx, caller.ID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	out := make([]roundSummaryResponse, 0, len(summaries))
	for i := range summaries {
		out = append(out, toRoundSummaryResponse(&summaries[i]))
	}
	httputils.RespondJSON(w, http.StatusOK, out)
}

// HandleStartRound opens a round with the caller as first participant.
func (h *RoundHandlers) HandleStartRound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	var payload roundPayload
	if err := httputils.DecodeJSON(r, &payload); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	detail, err := h.service.StartRound(ctx, caller.ID, toStartInput(payload))
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusCreated, toRoundDetailResponse(detail))
}

// HandleGetRound returns the scorecard detail of one round.
func (h *RoundHandlers) HandleGetRound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	roundID, err := roundIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	detail, err := h.service.GetRound(ctx, caller.ID, roundID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusOK, toRoundDetailResponse(detail))
}

// HandleSubmitScore records one participant's result on one hole.
func (h *RoundHandlers) HandleSubmitScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	roundID, err := roundIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	var payload scorePayload
	if err := httputils.DecodeJSON(r, &payload); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	result, err := h.service.SubmitScore(ctx, caller.ID, roundID, roundservice.ScoreInput{
		HoleNumber:    payload.HoleNumber,
		Strokes:       payload.Strokes,
		Putts:         payload.Putts,
		Fairway:       payload.Fairway,
		Gir:           payload.Gir,
		PlayerRef:     payload.PlayerID,
		ParticipantID: payload.ParticipantID,
	})
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusOK, toScoreResponse(result))
}

// HandleAddParticipants adds players or guests to an open round.
func (h *RoundHandlers) HandleAddParticipants(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	roundID, err := roundIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	var payload participantsPayload
	if err := httputils.DecodeJSON(r, &payload); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	detail, err := h.service.AddParticipants(ctx, caller.ID, roundID, toAddInput(payload))
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusOK, toRoundDetailResponse(detail))
}

// HandleDeleteRound removes an open round and its cells.
func (h *RoundHandlers) HandleDeleteRound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	roundID, err := roundIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	if err := h.service.DeleteRound(ctx, caller.ID, roundID); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleImportScorecard creates a completed round from an uploaded XLSX
// sheet. The course is picked with the course_id query parameter and the
// workbook travels as the "file" multipart field.
func (h *RoundHandlers) HandleImportScorecard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	courseID, err := strconv.ParseInt(r.URL.Query().Get("course_id"), 10, 64)
	if err != nil {
		httputils.RespondError(w, r, h.logger, types.NewValidationError("Invalid course id"))
		return
	}

	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		httputils.RespondError(w, r, h.logger, types.NewValidationError("Invalid multipart form"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httputils.RespondError(w, r, h.logger, types.NewValidationError("Missing file upload"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportBytes))
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	detail, err := h.service.ImportScorecard(ctx, caller.ID, courseID, data)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusCreated, toRoundDetailResponse(detail))
}
