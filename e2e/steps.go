package e2e

import (
	"github.com/cucumber/godog"

	"fieldforce/e2e/steps/agents"
	"fieldforce/e2e/steps/common"
	"fieldforce/e2e/steps/identity"
)

// RegisterSteps registers all step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	identity.RegisterSteps(ctx, tc)
	agents.RegisterSteps(ctx, tc)
}
