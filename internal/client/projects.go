package client

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/http"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

var projectIDPattern = regexp.MustCompile(constants.ProjectIDPattern)

// ProjectsClient implements luna.ProjectsClient.
type ProjectsClient struct {
	httpClient *http.Client
}

// NewProjectsClient creates a new projects client.
func NewProjectsClient(httpClient *http.Client) *ProjectsClient {
	return &ProjectsClient{
		httpClient: httpClient,
	}
}

// List implements luna.ProjectsClient.List.
func (c *ProjectsClient) List(ctx context.Context, params *luna.ListParams) (*luna.ListResponse[luna.Project], error) {
	return list[luna.Project](ctx, c.httpClient, constants.ProjectsPath, params, "projects")
}

// Iterate implements luna.ProjectsClient.Iterate.
func (c *ProjectsClient) Iterate(ctx context.Context, params *luna.ListParams) *luna.Iterator[luna.Project] {
	return iterate[luna.Project](ctx, c.httpClient, constants.ProjectsPath, params, "projects")
}

// Get implements luna.ProjectsClient.Get.
func (c *ProjectsClient) Get(ctx context.Context, projectID string) (*luna.Project, error) {
	err := checkID(projectIDPattern, projectID, constants.ErrInvalidProjectID)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, projectPath(projectID), nil)
	if err != nil {
		return nil, fmt.Errorf("getting project: %w", err)
	}

	return decode[luna.Project](resp, "project")
}

// Create implements luna.ProjectsClient.Create.
func (c *ProjectsClient) Create(ctx context.Context, project *luna.ProjectCreate) (*luna.Project, error) {
	resp, err := c.httpClient.Post(ctx, constants.ProjectsPath, project)
	if err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	return decode[luna.Project](resp, "project")
}

// Update implements luna.ProjectsClient.Update.
func (c *ProjectsClient) Update(ctx context.Context, projectID string, update *luna.ProjectUpdate) (*luna.Project, error) {
	err := checkID(projectIDPattern, projectID, constants.ErrInvalidProjectID)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Patch(ctx, projectPath(projectID), update)
	if err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}

	return decode[luna.Project](resp, "project")
}

// Delete implements luna.ProjectsClient.Delete.
func (c *ProjectsClient) Delete(ctx context.Context, projectID string) error {
	err := checkID(projectIDPattern, projectID, constants.ErrInvalidProjectID)
	if err != nil {
		return err
	}

	_, err = c.httpClient.Delete(ctx, projectPath(projectID))
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	return nil
}

func projectPath(projectID string) string {
	return constants.ProjectsPath + "/" + projectID
}
