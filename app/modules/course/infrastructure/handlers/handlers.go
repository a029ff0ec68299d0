package coursehandlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"

	courseservice "github.com/fairway-collective/links-backend/app/modules/course/application"
	coursedb "github.com/fairway-collective/links-backend/app/modules/course/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/httputils"
	"github.com/fairway-collective/links-backend/app/shared/identity"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// CourseHandlers serves the course HTTP routes.
type CourseHandlers struct {
	service courseservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewCourseHandlers creates a new CourseHandlers instance.
func NewCourseHandlers(service courseservice.Service, logger *slog.Logger, tracer trace.Tracer) *CourseHandlers {
	return &CourseHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// coursePayload is the create/update request body.
type coursePayload struct {
	Name  string        `json:"name"`
	Holes []holePayload `json:"holes"`
	Tees  []teePayload  `json:"tees"`
}

type holePayload struct {
	Number   int  `json:"number"`
	Par      int  `json:"par"`
	Distance *int `json:"distance"`
	Hcp      *int `json:"hcp"`
}

type teePayload struct {
	ID                *int64                   `json:"id"`
	TeeName           string                   `json:"tee_name"`
	CourseRating      *float64                 `json:"course_rating"`
	SlopeRating       *int                     `json:"slope_rating"`
	CourseRatingMen   *float64                 `json:"course_rating_men"`
	SlopeRatingMen    *int                     `json:"slope_rating_men"`
	CourseRatingWomen *float64                 `json:"course_rating_women"`
	SlopeRatingWomen  *int                     `json:"slope_rating_women"`
	HoleDistances     []teeHoleDistancePayload `json:"hole_distances"`
}

type teeHoleDistancePayload struct {
	HoleNumber int `json:"hole_number"`
	Distance   int `json:"distance"`
}

// courseSummaryResponse is one list entry.
type courseSummaryResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	OwnerPlayerID int64     `json:"owner_player_id"`
	HolesCount    int       `json:"holes_count"`
	TotalPar      int       `json:"total_par"`
	CreatedAt     time.Time `json:"created_at"`
}

// courseDetailResponse includes holes and tees.
type courseDetailResponse struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	OwnerPlayerID int64          `json:"owner_player_id"`
	Holes         []holeResponse `json:"holes"`
	Tees          []teeResponse  `json:"tees"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type holeResponse struct {
	Number   int  `json:"number"`
	Par      int  `json:"par"`
	Distance *int `json:"distance"`
	Hcp      *int `json:"hcp"`
}

type teeResponse struct {
	ID                int64                     `json:"id"`
	TeeName           string                    `json:"tee_name"`
	CourseRating      *float64                  `json:"course_rating"`
	SlopeRating       *int                      `json:"slope_rating"`
	CourseRatingMen   *float64                  `json:"course_rating_men"`
	SlopeRatingMen    *int                      `json:"slope_rating_men"`
	CourseRatingWomen *float64                  `json:"course_rating_women"`
	SlopeRatingWomen  *int                      `json:"slope_rating_women"`
	HoleDistances     []teeHoleDistanceResponse `json:"hole_distances"`
}

type teeHoleDistanceResponse struct {
	HoleNumber int `json:"hole_number"`
	Distance   int `json:"distance"`
}

func toCourseInput(payload coursePayload) courseservice.CourseInput {
	input := courseservice.CourseInput{Name: payload.Name}
	for _, h := range payload.Holes {
		input.Holes = append(input.Holes, courseservice.HoleInput{
			Number:   h.Number,
			Par:      h.Par,
			Distance: h.Distance,
			Hcp:      h.Hcp,
		})
	}
	for _, t := range payload.Tees {
		tee := courseservice.TeeInput{
			ID:                t.ID,
			TeeName:           t.TeeName,
			CourseRating:      t.CourseRating,
			SlopeRating:       t.SlopeRating,
			CourseRatingMen:   t.CourseRatingMen,
			SlopeRatingMen:    t.SlopeRatingMen,
			CourseRatingWomen: t.CourseRatingWomen,
			SlopeRatingWomen:  t.SlopeRatingWomen,
		}
		for _, d := range t.HoleDistances {
			tee.HoleDistances = append(tee.HoleDistances, courseservice.TeeHoleDistanceInput{
				HoleNumber: d.HoleNumber,
				Distance:   d.Distance,
			})
		}
		input.Tees = append(input.Tees, tee)
	}
	return input
}

func toCourseSummaryResponse(c *coursedb.Course) courseSummaryResponse {
	return courseSummaryResponse{
		ID:            c.ID,
		Name:          c.Name,
		OwnerPlayerID: c.OwnerPlayerID,
		HolesCount:    len(c.Holes),
		TotalPar:      c.TotalPar(),
		CreatedAt:     c.CreatedAt,
	}
}

func toCourseDetailResponse(c *coursedb.Course) courseDetailResponse {
	resp := courseDetailResponse{
		ID:            c.ID,
		Name:          c.Name,
		OwnerPlayerID: c.OwnerPlayerID,
		Holes:         make([]holeResponse, 0, len(c.Holes)),
		Tees:          make([]teeResponse, 0, len(c.Tees)),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	for _, h := range c.Holes {
		resp.Holes = append(resp.Holes, holeResponse{
			Number:   h.Number,
			Par:      h.Par,
			Distance: h.Distance,
			Hcp:      h.Hcp,
		})
	}
	for _, t := range c.Tees {
		tee := teeResponse{
			ID:                t.ID,
			TeeName:           t.TeeName,
			CourseRating:      t.CourseRating,
			SlopeRating:       t.SlopeRating,
			CourseRatingMen:   t.CourseRatingMen,
			SlopeRatingMen:    t.SlopeRatingMen,
			CourseRatingWomen: t.CourseRatingWomen,
			SlopeRatingWomen:  t.SlopeRatingWomen,
			HoleDistances:     make([]teeHoleDistanceResponse, 0, len(t.HoleDistances)),
		}
		for _, d := range t.HoleDistances {
			tee.HoleDistances = append(tee.HoleDistances, teeHoleDistanceResponse{
				HoleNumber: d.HoleNumber,
				Distance:   d.Distance,
			})
		}
		resp.Tees = append(resp.Tees, tee)
	}
	return resp
}

func courseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "courseID"), 10, 64)
	if err != nil {
		return 0, types.NewValidationError("Invalid course id")
	}
	return id, nil
}

// HandleListCourses returns all non-archived courses.
func (h *CourseHandlers) HandleListCourses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	courses, err := h.service.ListCourses(ctx)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	out := make([]courseSummaryResponse, 0, len(courses))
	for i := range courses {
		out = append(out, toCourseSummaryResponse(&courses[i]))
	}
	httputils.RespondJSON(w, http.StatusOK, out)
}

// HandleCreateCourse creates a course owned by the caller.
func (h *CourseHandlers) HandleCreateCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	var payload coursePayload
	if err := httputils.DecodeJSON(r, &payload); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	course, err := h.service.CreateCourse(ctx, caller.ID, toCourseInput(payload))
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusCreated, toCourseDetailResponse(course))
}

// HandleGetCourse returns course detail with holes and tees.
func (h *CourseHandlers) HandleGetCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	courseID, err := courseIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	course, err := h.service.GetCourse(ctx, courseID)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusOK, toCourseDetailResponse(course))
}

// HandleUpdateCourse replaces the course definition.
func (h *CourseHandlers) HandleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	courseID, err := courseIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	var payload coursePayload
	if err := httputils.DecodeJSON(r, &payload); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	course, err := h.service.UpdateCourse(ctx, caller.ID, courseID, toCourseInput(payload))
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	httputils.RespondJSON(w, http.StatusOK, toCourseDetailResponse(course))
}

// HandleDeleteCourse archives the course.
func (h *CourseHandlers) HandleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	caller, ok := identity.PlayerFromContext(ctx)
	if !ok {
		httputils.RespondJSON(w, http.StatusUnauthorized, httputils.ErrorResponse{Detail: "Not authenticated"})
		return
	}

	courseID, err := courseIDParam(r)
	if err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	if err := h.service.DeleteCourse(ctx, caller.ID, courseID); err != nil {
		httputils.RespondError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
