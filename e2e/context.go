package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	adminmw "fieldforce/pkg/platform/middleware/admin"
)

const defaultAdminToken = "e2e-admin-token"

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	AdminToken       string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte
	AgentID          string
}

// AdminToken is ADMIN_TOKEN, or the token of the in-process server when unset.
func AdminToken() string {
	if token := os.Getenv("ADMIN_TOKEN"); token != "" {
		return token
	}
	return defaultAdminToken
}

// NewTestContext creates a new test context against baseURL.
func NewTestContext(baseURL string) *TestContext {
	return &TestContext{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AdminToken: AdminToken(),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// POST makes a POST request and stores the response
func (tc *TestContext) POST(path string, body interface{}) error {
	return tc.do(http.MethodPost, path, body, nil)
}

// AdminPOST makes a POST request carrying the admin token.
func (tc *TestContext) AdminPOST(path string, body interface{}) error {
	return tc.do(http.MethodPost, path, body, tc.adminHeaders())
}

// AdminPUT makes a PUT request carrying the admin token.
func (tc *TestContext) AdminPUT(path string, body interface{}) error {
	return tc.do(http.MethodPut, path, body, tc.adminHeaders())
}

// AdminDELETE makes a DELETE request carrying the admin token.
func (tc *TestContext) AdminDELETE(path string) error {
	return tc.do(http.MethodDelete, path, nil, tc.adminHeaders())
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string, headers map[string]string) error {
	return tc.do(http.MethodGet, path, nil, headers)
}

func (tc *TestContext) adminHeaders() map[string]string {
	return map[string]string{
		adminmw.HeaderToken: tc.AdminToken,
		adminmw.HeaderActor: "e2e",
	}
}

func (tc *TestContext) do(method, path string, body interface{}, headers map[string]string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	return nil
}

// GetResponseField extracts a field from the JSON response. Dotted paths
// ("fields.sa_id_no") descend into nested objects.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	parts := strings.Split(field, ".")
	current := data
	for i, part := range parts {
		value, ok := current[part]
		if !ok {
			return nil, fmt.Errorf("field %s not found in response", field)
		}
		if i == len(parts)-1 {
			return value, nil
		}
		next, ok := value.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("field %s is not an object", strings.Join(parts[:i+1], "."))
		}
		current = next
	}
	return nil, fmt.Errorf("field %s not found in response", field)
}

// ResponseContains checks if the response body contains a field or text
func (tc *TestContext) ResponseContains(text string) bool {
	return strings.Contains(string(tc.LastResponseBody), text)
}

// Getter methods for step package interfaces

func (tc *TestContext) GetAgentID() string {
	return tc.AgentID
}

func (tc *TestContext) SetAgentID(agentID string) {
	tc.AgentID = agentID
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}
