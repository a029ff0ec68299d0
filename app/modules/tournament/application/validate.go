package tournamentservice

import (
	"fmt"
	"strings"

	"github.com/fairway-collective/links-backend/app/shared/types"
)

const (
	maxTournamentNameLen = 128
	maxPauseMessageLen   = 280
)

// validateCreateInput checks the payload: a course reference, a name of at
// most 128 characters, and non-empty group names. Names are trimmed in place.
func validateCreateInput(input *CreateTournamentInput) error {
	if input.CourseID == 0 {
		return types.NewValidationError("Course id is required")
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return types.NewValidationError("Tournament name is required")
	}
	if len(input.Name) > maxTournamentNameLen {
		return types.NewValidationError(fmt.Sprintf("Tournament name must be at most %d characters", maxTournamentNameLen))
	}
	for i, name := range input.GroupNames {
		name = strings.TrimSpace(name)
		if name == "" {
			return types.NewValidationError("Group name is required")
		}
		if len(name) > maxTournamentNameLen {
			return types.NewValidationError(fmt.Sprintf("Group name must be at most %d characters", maxTournamentNameLen))
		}
		input.GroupNames[i] = name
	}
	return nil
}

// validateUpdateInput checks the rename payload; a nil name means no change.
func validateUpdateInput(input *UpdateTournamentInput) error {
	if input.Name == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*input.Name)
	if trimmed == "" {
		return types.NewValidationError("Tournament name is required")
	}
	if len(trimmed) > maxTournamentNameLen {
		return types.NewValidationError(fmt.Sprintf("Tournament name must be at most %d characters", maxTournamentNameLen))
	}
	input.Name = &trimmed
	return nil
}

// validatePauseMessage trims and bounds the optional pause message, returning
// the stored form: nil when empty.
func validatePauseMessage(message string) (*string, error) {
	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > maxPauseMessageLen {
		return nil, types.NewValidationError(fmt.Sprintf("Pause message must be at most %d characters", maxPauseMessageLen))
	}
	return &trimmed, nil
}
