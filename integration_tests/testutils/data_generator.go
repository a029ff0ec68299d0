package testutils

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
)

// DataGenerator produces deterministic fake domain data for integration
// tests. The same seed always yields the same sequence.
type DataGenerator struct {
	faker   *gofakeit.Faker
	counter int
}

// NewDataGenerator creates a generator seeded for reproducibility.
func NewDataGenerator(seed uint64) *DataGenerator {
	return &DataGenerator{faker: gofakeit.New(seed)}
}

// ExternalID returns a unique auth-provider style user id.
func (g *DataGenerator) ExternalID() string {
	g.counter++
	return fmt.Sprintf("auth0|%s%d", g.faker.LetterN(12), g.counter)
}

// GuestName returns a display name for an unregistered participant.
func (g *DataGenerator) GuestName() string {
	return g.faker.Name()
}

// CoursePayload builds a create-course request body with the given number of
// par-4 holes, shaped like the course API payload.
func (g *DataGenerator) CoursePayload(holes int) map[string]any {
	return g.CoursePayloadWithPars(makePars(holes, 4))
}

// CoursePayloadWithPars builds a create-course request body with one hole
// per entry of pars.
func (g *DataGenerator) CoursePayloadWithPars(pars []int) map[string]any {
	holePayloads := make([]map[string]any, 0, len(pars))
	for i, par := range pars {
		holePayloads = append(holePayloads, map[string]any{
			"number": i + 1,
			"par":    par,
		})
	}
	g.counter++
	return map[string]any{
		"name":  fmt.Sprintf("%s Golf Club %d", g.faker.City(), g.counter),
		"holes": holePayloads,
	}
}

func makePars(holes, par int) []int {
	pars := make([]int, holes)
	for i := range pars {
		pars[i] = par
	}
	return pars
}
