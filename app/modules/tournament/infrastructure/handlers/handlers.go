package tournamenthandlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	roundservice "github.com/fairway-collective/links-backend/app/modules/round/application"
	tournamentservice "github.com/fairway-collective/links-backend/app/modules/tournament/application"
	tournamentdb "github.com/fairway-collective/links-backend/app/modules/tournament/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/httputils"
	"github.com/fairway-collective/links-backend/app/shared/identity"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// TournamentHandlers serves the tournament HTTP routes.
type TournamentHandlers struct {
	service tournamentservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewTournamentHandlers creates a new TournamentHandlers instance.
func NewTournamentHandlers(service tournamentservice.Service, logger *slog.Logger, tracer trace.Tracer) *TournamentHandlers {
	return &TournamentHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// tournamentPayload is the create request body.
type tournamentPayload struct {
	CourseID   int64    `json:"course_id"`
	Name       string   `json:"name"`
	IsPublic   bool     `json:"is_public"`
	GroupNames []string `json:"group_names"`
}

// tournamentPatchPayload carries the mutable fields; absent fields stay put.
type tournamentPatchPayload struct {
	Name *string `json:"name"`
}

// startGroupPayload opens a round in one of the tournament's groups. A nil
// group_id picks the first group without a round.
type startGroupPayload struct {
	GroupID      *int64         `json:"group_id"`
	TeeID        *int64         `json:"tee_id"`
	StatsEnabled bool           `json:"stats_enabled"`
	PlayerIDs    []string       `json:"player_ids"`
	GuestPlayers []guestPayload `json:"guest_players"`
}

type guestPayload struct {
	Name     string   `json:"name"`
	Handicap *float64 `json:"handicap"`
}

type pausePayload struct {
	Message string `json:"message"`
}

type invitePayload struct {
	Recipient string `json:"recipient"`
}

// tournamentSummaryResponse is one list entry.
type tournamentSummaryResponse struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	CourseID      int64      `json:"course_id"`
	CourseName    string     `json:"course_name"`
	OwnerPlayerID int64      `json:"owner_player_id"`
	IsPublic      bool       `json:"is_public"`
	PausedAt      *time.Time `json:"paused_at"`
	CompletedAt   *time.Time `json:"completed_at"`
	CreatedAt     time.Time  `json:"created_at"`
	GroupsCount   int        `json:"groups_count"`
}

// tournamentDetailResponse is the full tournament view.
type tournamentDetailResponse struct {
	ID             int64                      `json:"id"`
	Name           string                     `json:"name"`
	CourseID       int64                      `json:"course_id"`
	CourseName     string                     `json:"course_name"`
	OwnerPlayerID  int64                      `json:"owner_player_id"`
	IsPublic       bool                       `json:"is_public"`
	PausedAt       *time.Time                 `json:"paused_at"`
	PauseMessage   *string                    `json:"pause_message"`
	CompletedAt    *time.Time                 `json:"completed_at"`
	CreatedAt      time.Time                  `json:"created_at"`
	Groups         []groupResponse            `json:"groups"`
	Leaderboard    []leaderboardRowResponse   `json:"leaderboard"`
	MyGroupRoundID *int64                     `json:"my_group_round_id"`
}

// groupResponse is one group with its bound round, when started.
type groupResponse struct {
	ID           int64               `json:"id"`
	Name         string              `json:"name"`
	Position     int                 `json:"position"`
	Round        *groupRoundResponse `json:"round"`
	PlayersCount int                 `json:"players_count"`
}

type groupRoundResponse struct {
	RoundID           int64      `json:"round_id"`
	OwnerPlayerID     int64      `json:"owner_player_id"`
	StartedAt         time.Time  `json:"started_at"`
	CompletedAt       *time.Time `json:"completed_at"`
	ParticipantsCount int        `json:"participants_count"`
}

// leaderboardRowResponse is one participant's standing. player_id carries the
// participant reference: external id for registered players, guest key for
// guests.
type leaderboardRowResponse struct {
	ParticipantID  int64  `json:"participant_id"`
	PlayerID       string `json:"player_id"`
	PlayerName     string `json:"player_name"`
	GroupRoundID   int64  `json:"group_round_id"`
	GroupID        *int64 `json:"group_id"`
	HolesCompleted int    `json:"holes_completed"`
	CurrentHole    *int   `json:"current_hole"`
	Strokes        int    `json:"strokes"`
	Par            int    `json:"par"`
	ScoreToPar     int    `json:"score_to_par"`
}

// roundRefResponse points the client at the started or joined round.
type roundRefResponse struct {
	RoundID int64 `json:"round_id"`
}

// inviteResponse confirms a created invite.
type inviteResponse struct {
	ID           int64     `json:"id"`
	TournamentID int64     `json:"tournament_id"`
	RequesterID  int64     `json:"requester_id"`
	RecipientID  int64     `json:"recipient_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// inviteInfoResponse is one entry of the caller's invite inbox.
type inviteInfoResponse struct {
	ID             int64     `json:"id"`
	TournamentID   int64     `json:"tournament_id"`
	TournamentName string    `json:"tournament_name"`
	RequesterID    int64     `json:"requester_id"`
	RequesterLabel string    `json:"requester_label"`
	CreatedAt      time.Time `json:"created_at"`
}

func toCreateInput(payload tournamentPayload) tournamentservice.CreateTournamentInput {
	return tournamentservice.CreateTournamentInput{
		CourseID:   payload.CourseID,
		Name:       payload.Name,
		IsPublic:   payload.IsPublic,
		GroupNames: payload.GroupNames,
	}
}

func toStartGroupInput(payload startGroupPayload) tournamentservice.StartGroupInput {
	input := tournamentservice.StartGroupInput{
		GroupID:      payload.GroupID,
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

func toSummaryResponse(s *tournamentdb.TournamentSummary) tournamentSummaryResponse {
	return tournamentSummaryResponse{
		ID:            s.ID,
		Name:          s.Name,
		CourseID:      s.CourseID,
		CourseName:    s.CourseName,
		OwnerPlayerID: s.OwnerPlayerID,
		IsPublic:      s.IsPublic,
		PausedAt:      s.PausedAt,
		CompletedAt:   s.CompletedAt,
		CreatedAt:     s.CreatedAt,
		GroupsCount:   s.GroupsCount,
	}
}

func toDetailResponse(d *tournamentservice.TournamentDetail) tournamentDetailResponse {
	t := d.Tournament
	resp := tournamentDetailResponse{
		ID:             t.ID,
		Name:           t.Name,
		CourseID:       t.CourseID,
		CourseName:     d.CourseName,
		OwnerPlayerID:  t.OwnerPlayerID,
		IsPublic:       t.IsPublic,
		PausedAt:       t.PausedAt,
		PauseMessage:   t.PauseMessage,
		CompletedAt:    t.CompletedAt,
		CreatedAt:      t.CreatedAt,
		Groups:         make([]groupResponse, 0, len(d.Groups)),
		Leaderboard:    toLeaderboardResponse(d.Leaderboard),
		MyGroupRoundID: d.MyGroupRoundID,
	}
	for _, view := range d.Groups {
		group := groupResponse{
			ID:       view.Group.ID,
			Name:     view.Group.Name,
			Position: view.Group.Position,
		}
		if view.Round != nil {
			group.Round = &groupRoundResponse{
				RoundID:           view.Round.RoundID,
				OwnerPlayerID:     view.Round.OwnerPlayerID,
				StartedAt:         view.Round.StartedAt,
				CompletedAt:       view.Round.CompletedAt,
				ParticipantsCount: view.Round.ParticipantsCount,
			}
			group.PlayersCount = view.Round.ParticipantsCount
		}
		resp.Groups = append(resp.Groups, group)
	}
	return resp
}

func toLeaderboardResponse(entries []tournamentservice.LeaderboardEntry) []leaderboardRowResponse {
	out := make([]leaderboardRowResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, leaderboardRowResponse{
			ParticipantID:  e.ParticipantID,
			PlayerID:       e.PlayerRef,
			PlayerName:     e.PlayerName,
			GroupRoundID:   e.GroupRoundID,
			GroupID:        e.GroupID,
			HolesCompleted: e.HolesCompleted,
			CurrentHole:    e.CurrentHole,
			Strokes:        e.Strokes,
			Par:            e.Par,
			ScoreToPar:     e.ScoreToPar,
		})
	}
	return out
}

func tournamentIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "tournamentID"), 10, 64)
	if err != nil {
		return 0, types.NewValidationError("Invalid tournament id")
	}
	return id, nil
}

func roundIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "roundID"), 10, 64)
	if err != nil {
		return 0, types.NewValidationError("Invalid round id")
	}
	return id, nil
}

func inviteIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "inviteID"), 10, 64)
	if err != nil {
		return 0, types.NewValidationError("Invalid invite id")
	}
	return id, nil
}

// HandleListTournaments returns the tournaments visible to the caller.
func (h *TournamentHandlers) HandleListTournaments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	summaries, err := h.service.ListTournaments(ctx, caller.ID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	out := make([]tournamentSummaryResponse, 0, len(summaries))
	for i := range summaries {
		out = append(out, toSummaryResponse(&summaries[i]))
	}
	httputils.RespondJSON(w, http.StatusOK, out)
}

// HandleCreateTournament opens a tournament with named empty groups.
func (h *TournamentHandlers) HandleCreateTournament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	var payload tournamentPayload
	if err := httputils.DecodeJSON(r, &payload); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	detail, err := h.service.CreateTournament(ctx, caller.ID, toCreateInput(payload))
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusCreated, toDetailResponse(detail))
}

// HandleGetTournament returns the detail view with groups and leaderboard.
func (h *TournamentHandlers) HandleGetTournament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	detail, err := h.service.GetTournament(ctx, caller.ID, tournamentID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusOK, toDetailResponse(detail))
}

// HandleUpdateTournament renames the tournament. Owner only.
func (h *TournamentHandlers) HandleUpdateTournament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	var payload tournamentPatchPayload
	if err := httputils.DecodeJSON(r, &payload); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	detail, err := h.service.UpdateTournament(ctx, caller.ID, tournamentID, tournamentservice.UpdateTournamentInput{
		Name: payload.Name,
	})
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusOK, toDetailResponse(detail))
}

// HandleDeleteTournament removes the tournament. Bound rounds are detached,
// not deleted; ?force=true overrides the open-round guard.
func (h *TournamentHandlers) HandleDeleteTournament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	if err := h.service.DeleteTournament(ctx, caller.ID, tournamentID, force); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleStartGroupRound opens a round bound to one of the tournament's
// groups.
func (h *TournamentHandlers) HandleStartGroupRound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	var payload startGroupPayload
	if err := httputils.DecodeJSON(r, &payload); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	detail, err := h.service.StartGroupRound(ctx, caller.ID, tournamentID, toStartGroupInput(payload))
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusCreated, roundRefResponse{RoundID: detail.Round.ID})
}

// HandleJoinGroupRound adds the caller to a started group round.
func (h *TournamentHandlers) HandleJoinGroupRound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}
	roundID, err := roundIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	detail, err := h.service.JoinGroupRound(ctx, caller.ID, tournamentID, roundID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusOK, roundRefResponse{RoundID: detail.Round.ID})
}

// HandlePauseTournament locks all group rounds until resume. Owner only.
func (h *TournamentHandlers) HandlePauseTournament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	payload := pausePayload{}
	if r.ContentLength != 0 {
		if err := httputils.DecodeJSON(r, &payload); err != nil {
			httputils.RespondError(w, r, h.logger, err)
			return
		}
	}

	detail, err := h.service.PauseTournament(ctx, caller.ID, tournamentID, payload.Message)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusOK, toDetailResponse(detail))
}

// HandleResumeTournament re-opens a paused tournament. Owner only.
func (h *TournamentHandlers) HandleResumeTournament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	detail, err := h.service.ResumeTournament(ctx, caller.ID, tournamentID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusOK, toDetailResponse(detail))
}

// HandleFinishTournament closes the tournament for good. Owner only.
func (h *TournamentHandlers) HandleFinishTournament(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	detail, err := h.service.FinishTournament(ctx, caller.ID, tournamentID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusOK, toDetailResponse(detail))
}

// HandleGetLeaderboard returns the tournament standings.
func (h *TournamentHandlers) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	entries, err := h.service.GetLeaderboard(ctx, caller.ID, tournamentID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusOK, toLeaderboardResponse(entries))
}

// HandleCreateInvite creates a pending membership invite.
func (h *TournamentHandlers) HandleCreateInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	tournamentID, err := tournamentIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	var payload invitePayload
	if err := httputils.DecodeJSON(r, &payload); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	invite, err := h.service.InvitePlayer(ctx, caller.ID, tournamentID, payload.Recipient)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusCreated, inviteResponse{
		ID:           invite.ID,
		TournamentID: invite.TournamentID,
		RequesterID:  invite.RequesterID,
		RecipientID:  invite.RecipientID,
		CreatedAt:    invite.CreatedAt,
	})
}

// HandleListInvites returns the caller's pending invites.
func (h *TournamentHandlers) HandleListInvites(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	invites, err := h.service.ListMyInvites(ctx, caller.ID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	out := make([]inviteInfoResponse, 0, len(invites))
	for _, invite := range invites {
		out = append(out, inviteInfoResponse{
			ID:             invite.ID,
			TournamentID:   invite.TournamentID,
			TournamentName: invite.TournamentName,
			RequesterID:    invite.RequesterID,
			RequesterLabel: invite.RequesterLabel,
			CreatedAt:      invite.CreatedAt,
		})
	}
	httputils.RespondJSON(w, http.StatusOK, out)
}

// HandleAcceptInvite adds the caller as a member and removes the invite.
func (h *TournamentHandlers) HandleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	inviteID, err := inviteIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	if err := h.service.AcceptInvite(ctx, caller.ID, inviteID); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleDeclineInvite removes the invite without joining.
func (h *TournamentHandlers) HandleDeclineInvite(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	inviteID, err := inviteIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	if err := h.service.DeclineInvite(ctx, caller.ID, inviteID); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
