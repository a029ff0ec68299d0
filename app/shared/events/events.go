// Package events defines the topics and payloads carried on the golf
// JetStream stream. Topics are versioned so payload changes can roll out
// side by side.
package events

import "time"

// Stream configuration for the NATS JetStream event bus.
const (
	StreamName    = "golf"
	StreamSubject = "golf.>"
)

// Round lifecycle topics.
const (
	RoundStartedV1        = "golf.round.started.v1"
	RoundScoreSubmittedV1 = "golf.round.score.submitted.v1"
	RoundCompletedV1      = "golf.round.completed.v1"
)

// Tournament topics.
const (
	TournamentFinishedV1 = "golf.tournament.finished.v1"
)

// ActivityRecordedV1 is published by the social module after it projects
// round traffic into the activity feed.
const ActivityRecordedV1 = "golf.activity.recorded.v1"

// RoundStartedPayloadV1 announces a newly started round.
type RoundStartedPayloadV1 struct {
	RoundID      int64     `json:"round_id"`
	CourseID     int64     `json:"course_id"`
	OwnerID      int64     `json:"owner_id"`
	TournamentID *int64    `json:"tournament_id,omitempty"`
	StartedAt    time.Time `json:"started_at"`
}

// ScoreSubmittedPayloadV1 carries one scored hole. PlayerID is nil when the
// participant is a guest.
type ScoreSubmittedPayloadV1 struct {
	RoundID       int64     `json:"round_id"`
	CourseID      int64     `json:"course_id"`
	ParticipantID int64     `json:"participant_id"`
	PlayerID      *int64    `json:"player_id,omitempty"`
	HoleNumber    int       `json:"hole_number"`
	Strokes       int       `json:"strokes"`
	Par           int       `json:"par"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// ParticipantResultV1 is one participant's final line on a completed round.
type ParticipantResultV1 struct {
	ParticipantID  int64  `json:"participant_id"`
	PlayerID       *int64 `json:"player_id,omitempty"`
	GuestName      string `json:"guest_name,omitempty"`
	TotalStrokes   int    `json:"total_strokes"`
	TotalPar       int    `json:"total_par"`
	ScoreToPar     int    `json:"score_to_par"`
	HolesCompleted int    `json:"holes_completed"`
}

// RoundCompletedPayloadV1 announces a completed round with final results.
type RoundCompletedPayloadV1 struct {
	RoundID      int64                 `json:"round_id"`
	CourseID     int64                 `json:"course_id"`
	TournamentID *int64                `json:"tournament_id,omitempty"`
	CompletedAt  time.Time             `json:"completed_at"`
	Results      []ParticipantResultV1 `json:"results"`
}

// TournamentFinishedPayloadV1 announces a tournament closed by its owner.
type TournamentFinishedPayloadV1 struct {
	TournamentID int64     `json:"tournament_id"`
	CourseID     int64     `json:"course_id"`
	Name         string    `json:"name"`
	FinishedAt   time.Time `json:"finished_at"`
}

// ActivityRecordedPayloadV1 confirms a projected activity event.
type ActivityRecordedPayloadV1 struct {
	RoundID    int64  `json:"round_id"`
	PlayerID   int64  `json:"player_id"`
	HoleNumber int    `json:"hole_number"`
	Kind       string `json:"kind"`
}
