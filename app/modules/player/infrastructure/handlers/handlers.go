package playerhandlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	playerservice "github.com/fairway-collective/links-backend/app/modules/player/application"
	playerdb "github.com/fairway-collective/links-backend/app/modules/player/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/httputils"
	"github.com/fairway-collective/links-backend/app/shared/identity"
)

// PlayerHandlers serves the player HTTP routes.
type PlayerHandlers struct {
	service playerservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewPlayerHandlers creates a new PlayerHandlers instance.
func NewPlayerHandlers(service playerservice.Service, logger *slog.Logger, tracer trace.Tracer) *PlayerHandlers {
	return &PlayerHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// profileResponse is the caller's own profile.
type profileResponse struct {
	ID         int64     `json:"id"`
	ExternalID string    `json:"external_id"`
	Username   *string   `json:"username"`
	Email      *string   `json:"email"`
	Name       *string   `json:"name"`
	Handicap   *float64  `json:"handicap"`
	Gender     *string   `json:"gender"`
	Label      string    `json:"label"`
	CreatedAt  time.Time `json:"created_at"`
}

// publicProfileResponse is what other players get to see.
type publicProfileResponse struct {
	ID         int64    `json:"id"`
	ExternalID string   `json:"external_id"`
	Username   *string  `json:"username"`
	Name       *string  `json:"name"`
	Handicap   *float64 `json:"handicap"`
	Label      string   `json:"label"`
}

type updateProfileRequest struct {
	Username *string  `json:"username"`
	Name     *string  `json:"name"`
	Email    *string  `json:"email"`
	Handicap *float64 `json:"handicap"`
	Gender   *string  `json:"gender"`
}

func toProfileResponse(p *playerdb.Player) profileResponse {
	return profileResponse{
		ID:         p.ID,
		ExternalID: p.ExternalID,
		Username:   p.Username,
		Email:      p.Email,
		Name:       p.Name,
		Handicap:   p.Handicap,
		Gender:     p.Gender,
		Label:      p.Label(),
		CreatedAt:  p.CreatedAt,
	}
}

func toPublicProfileResponse(p *playerdb.Player) publicProfileResponse {
	return publicProfileResponse{
		ID:         p.ID,
		ExternalID: p.ExternalID,
		Username:   p.Username,
		Name:       p.Name,
		Handicap:   p.Handicap,
		Label:      p.Label(),
	}
}

// HandleGetMe returns the caller's profile.
func (h *PlayerHandlers) HandleGetMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	player, err := h.service.GetByID(ctx, caller.ID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusOK, toProfileResponse(player))
}

// HandleUpdateMe applies a partial update to the caller's profile.
func (h *PlayerHandlers) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	var req updateProfileRequest
	if err := httputils.DecodeJSON(r, &req); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	player, err := h.service.UpdateProfile(ctx, caller.ID, playerservice.ProfileUpdate{
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Handicap: req.Handicap,
		Gender:   req.Gender,
	})
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusOK, toProfileResponse(player))
}

// HandleSearch finds players matching the q prefix, excluding the caller.
func (h *PlayerHandlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	players, err := h.service.SearchPlayers(ctx, caller.ID, r.URL.Query().Get("q"))
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	out := make([]publicProfileResponse, 0, len(players))
	for i := range players {
		out = append(out, toPublicProfileResponse(&players[i]))
	}
	httputils.RespondJSON(w, http.StatusOK, out)
}

// HandleGetPlayer returns another player's public profile.
func (h *PlayerHandlers) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	externalID := chi.URLParam(r, "externalID")

	player, err := h.service.GetByExternalID(ctx, externalID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusOK, toPublicProfileResponse(player))
}

// HandleGetStats returns completed-round aggregates for a player.
func (h *PlayerHandlers) HandleGetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	externalID := chi.URLParam(r, "externalID")

	player, err := h.service.GetByExternalID(ctx, externalID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	stats, err := h.service.GetStats(ctx, player.ID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusOK, stats)
}

// HandleGetStatsChart renders the player's score trend as a PNG.
func (h *PlayerHandlers) HandleGetStatsChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	externalID := chi.URLParam(r, "externalID")

	player, err := h.service.GetByExternalID(ctx, externalID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	png, err := h.service.RenderScoreTrendChart(ctx, player.ID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
