package courseservice

import (
	"fmt"
	"strings"

	"github.com/fairway-collective/links-backend/app/shared/types"
)

const maxCourseNameLen = 200

// validateCourseInput checks the payload against the catalog rules: 9 or 18
// holes numbered contiguously from 1, par between 3 and 5, hcp on all holes
// or none and forming a permutation of 1..N, non-empty tee names unique
// ignoring case, and tee distances covering every hole. It returns a
// ValidationError describing the first violation, or nil.
func validateCourseInput(input *CourseInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return types.NewValidationError("Course name is required")
	}
	if len(input.Name) > maxCourseNameLen {
		return types.NewValidationError(fmt.Sprintf("Course name must be at most %d characters", maxCourseNameLen))
	}

	n := len(input.Holes)
	if n != 9 && n != 18 {
		return types.NewValidationError("Course must have 9 or 18 holes")
	}

	numbers := make(map[int]bool, n)
	hcpValues := make(map[int]bool, n)
	hcpCount := 0
	for _, h := range input.Holes {
		if numbers[h.Number] {
			return types.NewValidationError(fmt.Sprintf("Duplicate hole number: %d", h.Number))
		}
		numbers[h.Number] = true
		if h.Par < 3 || h.Par > 5 {
			return types.NewValidationError(fmt.Sprintf("Hole %d par must be between 3 and 5", h.Number))
		}
		if h.Hcp != nil {
			hcpCount++
			hcpValues[*h.Hcp] = true
		}
	}
	for number := 1; number <= n; number++ {
		if !numbers[number] {
			return types.NewValidationError(fmt.Sprintf("Hole numbers must run from 1 to %d without gaps", n))
		}
	}

	// Hcp is all-or-none: when any hole carries one, every hole must, and
	// together they must form a permutation of 1..N.
	if hcpCount > 0 {
		if hcpCount != n {
			return types.NewValidationError("Hcp must be set on all holes or none")
		}
		for value := 1; value <= n; value++ {
			if !hcpValues[value] {
				return types.NewValidationError(fmt.Sprintf("Hcp values must be a permutation of 1..%d", n))
			}
		}
	}

	seenTeeNames := make(map[string]bool, len(input.Tees))
	for i := range input.Tees {
		tee := &input.Tees[i]
		tee.TeeName = strings.TrimSpace(tee.TeeName)
		if tee.TeeName == "" {
			return types.NewValidationError("Tee name is required")
		}
		lowered := strings.ToLower(tee.TeeName)
		if seenTeeNames[lowered] {
			return types.NewValidationError(fmt.Sprintf("Duplicate tee name: %s", tee.TeeName))
		}
		seenTeeNames[lowered] = true

		// Each tee carries exactly one distance per hole.
		if len(tee.HoleDistances) != n {
			return types.NewValidationError(fmt.Sprintf("Tee %s must have one distance per hole", tee.TeeName))
		}
		covered := make(map[int]bool, len(tee.HoleDistances))
		for _, d := range tee.HoleDistances {
			if !numbers[d.HoleNumber] {
				return types.NewValidationError(fmt.Sprintf("Tee %s has a distance for unknown hole %d", tee.TeeName, d.HoleNumber))
			}
			if covered[d.HoleNumber] {
				return types.NewValidationError(fmt.Sprintf("Tee %s has duplicate distances for hole %d", tee.TeeName, d.HoleNumber))
			}
			covered[d.HoleNumber] = true
		}
	}

	return nil
}
