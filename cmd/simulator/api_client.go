package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dom/hades-build-planner/internal/api/handlers"
	"github.com/dom/hades-build-planner/internal/catalog"
	"github.com/dom/hades-build-planner/internal/service"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RegisterUser creates a new user account with a unique name derived from baseName
func (c *APIClient) RegisterUser(baseName string) (*handlers.UserResponse, string, error) {
	displayName := fmt.Sprintf("%s_%d", baseName, time.Now().UnixNano()%100000)

	body := handlers.RegisterRequest{
		DisplayName: displayName,
		Password:    "testpassword123",
	}

	var result handlers.AuthResponse
	if err := c.do("POST", "/auth/register", body, "", http.StatusOK, &result); err != nil {
		return nil, "", fmt.Errorf("register: %w", err)
	}

	return &result.User, result.AccessToken, nil
}

// Weapons lists every weapon with its aspects
func (c *APIClient) Weapons() ([]service.WeaponDetails, error) {
	var result handlers.WeaponsResponse
	if err := c.do("GET", "/weapons", nil, "", http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("list weapons: %w", err)
	}
	return result.Weapons, nil
}

// Available asks the engine which boons may be added to sel
func (c *APIClient) Available(sel handlers.SelectionRequest) (*catalog.Availability, error) {
	var result catalog.Availability
	if err := c.do("POST", "/builder/available", sel, "", http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("available: %w", err)
	}
	return &result, nil
}

// Validate checks a finished selection
func (c *APIClient) Validate(sel handlers.SelectionRequest) (*service.ValidationResult, error) {
	var result service.ValidationResult
	if err := c.do("POST", "/builder/validate", sel, "", http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}
	return &result, nil
}

// CreateBuild saves a build for the token's user
func (c *APIClient) CreateBuild(token string, req handlers.BuildRequest) (*handlers.BuildResponse, error) {
	var result handlers.BuildResponse
	if err := c.do("POST", "/builds", req, token, http.StatusCreated, &result); err != nil {
		return nil, fmt.Errorf("create build: %w", err)
	}
	return &result, nil
}

// PublicBuilds lists the most liked public builds
func (c *APIClient) PublicBuilds(limit int) ([]handlers.BuildResponse, error) {
	var result handlers.BuildsResponse
	path := fmt.Sprintf("/builds?limit=%d", limit)
	if err := c.do("GET", path, nil, "", http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	return result.Builds, nil
}

// LikeBuild likes a build as the token's user
func (c *APIClient) LikeBuild(token, buildID string) error {
	if err := c.do("POST", "/builds/"+buildID+"/like", nil, token, http.StatusOK, nil); err != nil {
		return fmt.Errorf("like build: %w", err)
	}
	return nil
}

// Prerequisites fetches the explanation for one boon
func (c *APIClient) Prerequisites(boonID int) (*catalog.PrerequisiteDetails, error) {
	var result catalog.PrerequisiteDetails
	path := fmt.Sprintf("/boons/%d/prerequisites", boonID)
	if err := c.do("GET", path, nil, "", http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("prerequisites: %w", err)
	}
	return &result, nil
}

// HTTP helpers

// do sends body as JSON and decodes the response into out when the status
// matches want. out may be nil.
func (c *APIClient) do(method, path string, body interface{}, token string, want int, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
