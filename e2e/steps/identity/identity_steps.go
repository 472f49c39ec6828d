package identity

import (
	"context"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
}

// RegisterSteps registers identity validation step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &identitySteps{tc: tc}

	ctx.Step(`^I validate "([^"]*)" as "([^"]*)"$`, steps.validate)
}

type identitySteps struct {
	tc TestContext
}

func (s *identitySteps) validate(ctx context.Context, value, idType string) error {
	return s.tc.POST("/identity/validate", map[string]interface{}{
		"id_type": idType,
		"value":   value,
	})
}
