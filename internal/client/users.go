package client

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/http"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

var userIDPattern = regexp.MustCompile(constants.UserIDPattern)

// UsersClient implements luna.UsersClient.
type UsersClient struct {
	httpClient *http.Client
}

// NewUsersClient creates a new users client.
func NewUsersClient(httpClient *http.Client) *UsersClient {
	return &UsersClient{
		httpClient: httpClient,
	}
}

// List implements luna.UsersClient.List.
func (c *UsersClient) List(ctx context.Context, params *luna.ListParams) (*luna.ListResponse[luna.User], error) {
	return list[luna.User](ctx, c.httpClient, constants.UsersPath, params, "users")
}

// Iterate implements luna.UsersClient.Iterate.
func (c *UsersClient) Iterate(ctx context.Context, params *luna.ListParams) *luna.Iterator[luna.User] {
	return iterate[luna.User](ctx, c.httpClient, constants.UsersPath, params, "users")
}

// Get implements luna.UsersClient.Get.
func (c *UsersClient) Get(ctx context.Context, userID string) (*luna.User, error) {
	err := checkID(userIDPattern, userID, constants.ErrInvalidUserID)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Get(ctx, userPath(userID), nil)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	return decode[luna.User](resp, "user")
}

// Create implements luna.UsersClient.Create.
func (c *UsersClient) Create(ctx context.Context, user *luna.UserCreate) (*luna.User, error) {
	resp, err := c.httpClient.Post(ctx, constants.UsersPath, user)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return decode[luna.User](resp, "user")
}

// Update implements luna.UsersClient.Update.
func (c *UsersClient) Update(ctx context.Context, userID string, update *luna.UserUpdate) (*luna.User, error) {
	err := checkID(userIDPattern, userID, constants.ErrInvalidUserID)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Patch(ctx, userPath(userID), update)
	if err != nil {
		return nil, fmt.Errorf("updating user: %w", err)
	}

	return decode[luna.User](resp, "user")
}

// Delete implements luna.UsersClient.Delete.
func (c *UsersClient) Delete(ctx context.Context, userID string) error {
	err := checkID(userIDPattern, userID, constants.ErrInvalidUserID)
	if err != nil {
		return err
	}

	_, err = c.httpClient.Delete(ctx, userPath(userID))
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	return nil
}

func userPath(userID string) string {
	return constants.UsersPath + "/" + userID
}
