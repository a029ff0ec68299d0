package socialhandlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	socialservice "github.com/fairway-collective/links-backend/app/modules/social/application"
	socialdb "github.com/fairway-collective/links-backend/app/modules/social/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/httputils"
	"github.com/fairway-collective/links-backend/app/shared/identity"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// SocialHandlers serves the friends and activity HTTP routes.
type SocialHandlers struct {
	service socialservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewSocialHandlers creates a new SocialHandlers instance.
func NewSocialHandlers(service socialservice.Service, logger *slog.Logger, tracer trace.Tracer) *SocialHandlers {
	return &SocialHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// friendRequestPayload carries the friend reference: external id, email, or
// username.
type friendRequestPayload struct {
	Ref string `json:"ref"`
}

// friendResponse is one friend list entry.
type friendResponse struct {
	PlayerID   int64     `json:"player_id"`
	ExternalID string    `json:"external_id"`
	Username   *string   `json:"username"`
	Name       *string   `json:"name"`
	Handicap   *float64  `json:"handicap"`
	FriendsAt  time.Time `json:"friends_at"`
}

// friendRequestResponse reports what a send-request call did. Request is nil
// when the call short-circuited to an accepted friendship.
type friendRequestResponse struct {
	Accepted bool                 `json:"accepted"`
	Request  *requestInfoResponse `json:"request,omitempty"`
}

// requestInfoResponse is one pending incoming request.
type requestInfoResponse struct {
	ID                  int64     `json:"id"`
	RequesterID         int64     `json:"requester_id"`
	RequesterExternalID string    `json:"requester_external_id,omitempty"`
	RequesterUsername   *string   `json:"requester_username,omitempty"`
	RequesterName       *string   `json:"requester_name,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

// activityResponse is one feed entry.
type activityResponse struct {
	ID               int64     `json:"id"`
	PlayerID         int64     `json:"player_id"`
	PlayerExternalID string    `json:"player_external_id"`
	PlayerUsername   *string   `json:"player_username"`
	PlayerName       *string   `json:"player_name"`
	RoundID          int64     `json:"round_id"`
	CourseID         int64     `json:"course_id"`
	CourseName       string    `json:"course_name"`
	HoleNumber       int       `json:"hole_number"`
	Strokes          int       `json:"strokes"`
	Par              int       `json:"par"`
	Kind             string    `json:"kind"`
	CreatedAt        time.Time `json:"created_at"`
}

func toFriendResponse(f socialdb.FriendInfo) friendResponse {
	return friendResponse{
		PlayerID:   f.PlayerID,
		ExternalID: f.ExternalID,
		Username:   f.Username,
		Name:       f.Name,
		Handicap:   f.Handicap,
		FriendsAt:  f.FriendsAt,
	}
}

func toRequestInfoResponse(r socialdb.RequestInfo) requestInfoResponse {
	return requestInfoResponse{
		ID:                  r.ID,
		RequesterID:         r.RequesterID,
		RequesterExternalID: r.RequesterExternalID,
		RequesterUsername:   r.RequesterUsername,
		RequesterName:       r.RequesterName,
		CreatedAt:           r.CreatedAt,
	}
}

func toActivityResponse(a socialdb.ActivityInfo) activityResponse {
	return activityResponse{
		ID:               a.ID,
		PlayerID:         a.PlayerID,
		PlayerExternalID: a.PlayerExternalID,
		PlayerUsername:   a.PlayerUsername,
		PlayerName:       a.PlayerName,
		RoundID:          a.RoundID,
		CourseID:         a.CourseID,
		CourseName:       a.CourseName,
		HoleNumber:       a.HoleNumber,
		Strokes:          a.Strokes,
		Par:              a.Par,
		Kind:             a.Kind,
		CreatedAt:        a.CreatedAt,
	}
}

func requestIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "requestID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, types.NewValidationError("Invalid friend request id")
	}
	return id, nil
}

// HandleListFriends serves GET /friends.
func (h *SocialHandlers) HandleListFriends(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	friends, err := h.service.ListFriends(ctx, caller.ID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	out := make([]friendResponse, 0, len(friends))
	for _, f := range friends {
		out = append(out, toFriendResponse(f))
	}
	httputils.RespondJSON(w, http.StatusOK, out)
}

// HandleSendFriendRequest serves POST /friends/requests.
func (h *SocialHandlers) HandleSendFriendRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	var payload friendRequestPayload
	if err := httputils.DecodeJSON(r, &payload); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	outcome, err := h.service.SendFriendRequest(ctx, caller.ID, payload.Ref)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	response := friendRequestResponse{Accepted: outcome.Accepted}
	status := http.StatusOK
	if outcome.Request != nil {
		status = http.StatusCreated
		response.Request = &requestInfoResponse{
			ID:          outcome.Request.ID,
			RequesterID: outcome.Request.RequesterID,
			CreatedAt:   outcome.Request.CreatedAt,
		}
	}
	httputils.RespondJSON(w, status, response)
}

// HandleListFriendRequests serves GET /friends/requests.
func (h *SocialHandlers) HandleListFriendRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	requests, err := h.service.ListIncomingRequests(ctx, caller.ID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	out := make([]requestInfoResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, toRequestInfoResponse(req))
	}
	httputils.RespondJSON(w, http.StatusOK, out)
}

// HandleAcceptFriendRequest serves POST /friends/requests/{requestID}/accept.
func (h *SocialHandlers) HandleAcceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveRequest(w, r, h.service.AcceptFriendRequest)
}

// HandleDeclineFriendRequest serves POST /friends/requests/{requestID}/decline.
func (h *SocialHandlers) HandleDeclineFriendRequest(w http.ResponseWriter, r *http.Request) {
	h.resolveRequest(w, r, h.service.DeclineFriendRequest)
}

func (h *SocialHandlers) resolveRequest(w http.ResponseWriter, r *http.Request, resolve func(ctx context.Context, callerID, requestID int64) error) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	requestID, err := requestIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	if err := resolve(ctx, caller.ID, requestID); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveFriend serves DELETE /friends/{externalID}.
func (h *SocialHandlers) HandleRemoveFriend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	externalID := chi.URLParam(r, "externalID")
	if externalID == "" {
		httputils.RespondError(w, r, h.logger, types.NewValidationError("Player id is required"))
		return
	}

	if err := h.service.RemoveFriend(ctx, caller.ID, externalID); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleGetActivity serves GET /friends/activity.
func (h *SocialHandlers) HandleGetActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			httputils.RespondError(w, r, h.logger, types.NewValidationError("Invalid limit"))
			return
		}
		limit = parsed
	}

	entries, err := h.service.GetActivityFeed(ctx, caller.ID, limit)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	out := make([]activityResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toActivityResponse(entry))
	}
	httputils.RespondJSON(w, http.StatusOK, out)
}
