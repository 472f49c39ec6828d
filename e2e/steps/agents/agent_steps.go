package agents

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body interface{}) error
	AdminPOST(path string, body interface{}) error
	AdminPUT(path string, body interface{}) error
	AdminDELETE(path string) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (interface{}, error)
	GetAgentID() string
	SetAgentID(agentID string)
}

// RegisterSteps registers agent record step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &agentSteps{tc: tc}

	// Capture
	ctx.Step(`^I create an agent "([^"]*)" "([^"]*)" with SA ID "([^"]*)"$`, steps.createWithNationalID)
	ctx.Step(`^I create an agent "([^"]*)" "([^"]*)" with passport "([^"]*)"$`, steps.createWithPassport)
	ctx.Step(`^I create an agent "([^"]*)" "([^"]*)" with SA ID "([^"]*)" without admin token$`, steps.createWithoutAdminToken)
	ctx.Step(`^I save the agent ID from the response$`, steps.saveAgentIDFromResponse)

	// Saved agent
	ctx.Step(`^I get the saved agent$`, steps.getSavedAgent)
	ctx.Step(`^I update the saved agent to "([^"]*)" "([^"]*)" with SA ID "([^"]*)"$`, steps.updateSavedAgent)
	ctx.Step(`^I deactivate the saved agent$`, steps.deactivateSavedAgent)
	ctx.Step(`^I reactivate the saved agent$`, steps.reactivateSavedAgent)
	ctx.Step(`^I delete the saved agent$`, steps.deleteSavedAgent)

	// Listing
	ctx.Step(`^I list agents matching "([^"]*)"$`, steps.listMatching)
}

type agentSteps struct {
	tc TestContext
}

func nationalIDBody(firstName, surname, number string) map[string]interface{} {
	return map[string]interface{}{
		"first_name": firstName,
		"surname":    surname,
		"id_type":    "sa_id",
		"sa_id_no":   number,
	}
}

func (s *agentSteps) createWithNationalID(ctx context.Context, firstName, surname, number string) error {
	return s.tc.AdminPOST("/agents", nationalIDBody(firstName, surname, number))
}

func (s *agentSteps) createWithPassport(ctx context.Context, firstName, surname, number string) error {
	return s.tc.AdminPOST("/agents", map[string]interface{}{
		"first_name":  firstName,
		"surname":     surname,
		"id_type":     "passport",
		"passport_no": number,
	})
}

func (s *agentSteps) createWithoutAdminToken(ctx context.Context, firstName, surname, number string) error {
	return s.tc.POST("/agents", nationalIDBody(firstName, surname, number))
}

func (s *agentSteps) saveAgentIDFromResponse(ctx context.Context) error {
	agentID, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.SetAgentID(fmt.Sprint(agentID))
	return nil
}

func (s *agentSteps) savedAgentPath() (string, error) {
	agentID := s.tc.GetAgentID()
	if agentID == "" {
		return "", fmt.Errorf("no agent ID saved; use \"I save the agent ID from the response\" first")
	}
	return "/agents/" + agentID, nil
}

func (s *agentSteps) getSavedAgent(ctx context.Context) error {
	path, err := s.savedAgentPath()
	if err != nil {
		return err
	}
	return s.tc.GET(path, nil)
}

func (s *agentSteps) updateSavedAgent(ctx context.Context, firstName, surname, number string) error {
	path, err := s.savedAgentPath()
	if err != nil {
		return err
	}
	return s.tc.AdminPUT(path, nationalIDBody(firstName, surname, number))
}

func (s *agentSteps) deactivateSavedAgent(ctx context.Context) error {
	path, err := s.savedAgentPath()
	if err != nil {
		return err
	}
	return s.tc.AdminPOST(path+"/deactivate", nil)
}

func (s *agentSteps) reactivateSavedAgent(ctx context.Context) error {
	path, err := s.savedAgentPath()
	if err != nil {
		return err
	}
	return s.tc.AdminPOST(path+"/reactivate", nil)
}

func (s *agentSteps) deleteSavedAgent(ctx context.Context) error {
	path, err := s.savedAgentPath()
	if err != nil {
		return err
	}
	return s.tc.AdminDELETE(path)
}

func (s *agentSteps) listMatching(ctx context.Context, query string) error {
	return s.tc.GET("/agents?q="+query, nil)
}
