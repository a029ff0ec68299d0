package roundservice

import (
	"strings"

	rounddb "github.com/fairway-collective/links-backend/app/modules/round/infrastructure/repositories"
	"github.com/fairway-collective/links-backend/app/shared/types"
)

// maxParticipants caps a scorecard at four columns.
const maxParticipants = 4

// validateStartInput normalizes refs and guest names in place and checks
// everything that needs no database access.
func validateStartInput(input *StartRoundInput) error {
	if input.CourseID <= 0 {
		return types.NewValidationError("Course id is required")
	}
	if err := normalizeAdditions(&input.PlayerRefs, &input.Guests); err != nil {
		return err
	}
	if 1+len(input.PlayerRefs)+len(input.Guests) > maxParticipants {
		return types.NewValidationError("max 4 players")
	}
	return nil
}

// validateAddInput normalizes the additions; capacity is checked in the
// transaction where it conflicts instead of failing validation.
func validateAddInput(input *AddParticipantsInput) error {
	if len(input.PlayerRefs) == 0 && len(input.Guests) == 0 {
		return types.NewValidationError("No participants to add")
	}
	return normalizeAdditions(&input.PlayerRefs, &input.Guests)
}

// normalizeAdditions trims refs and guest names, rejecting empties.
func normalizeAdditions(refs *[]string, guests *[]GuestInput) error {
	for i, ref := range *refs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			return types.NewValidationError("Player reference is required")
		}
		(*refs)[i] = ref
	}
	for i, guest := range *guests {
		name := strings.TrimSpace(guest.Name)
		if name == "" {
			return types.NewValidationError("Guest name is required")
		}
		(*guests)[i].Name = name
	}
	return nil
}

// validateScoreInput checks the cell payload against the rules that need no
// course data. Hole existence and the par-3 fairway rule are checked in the
// transaction.
func validateScoreInput(input *ScoreInput) error {
	if input.HoleNumber < 1 {
		return types.NewValidationError("Invalid hole_number for course")
	}
	if input.Strokes < 1 {
		return types.NewValidationError("Strokes must be at least 1")
	}
	if input.Putts != nil && *input.Putts < 0 {
		return types.NewValidationError("Putts cannot be negative")
	}
	if input.Fairway != nil && !validFairway(*input.Fairway) {
		return types.NewValidationError("Invalid fairway value")
	}
	if input.Gir != nil && !validGir(*input.Gir) {
		return types.NewValidationError("Invalid gir value")
	}
	input.PlayerRef = strings.TrimSpace(input.PlayerRef)
	return nil
}

func validFairway(v string) bool {
	switch v {
	case rounddb.OutcomeHit, rounddb.OutcomeLeft, rounddb.OutcomeRight, rounddb.OutcomeShort:
		return true
	}
	return false
}

func validGir(v string) bool {
	switch v {
	case rounddb.OutcomeHit, rounddb.OutcomeLeft, rounddb.OutcomeRight, rounddb.OutcomeShort, rounddb.OutcomeLong:
		return true
	}
	return false
}
