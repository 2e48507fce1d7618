package client

import (
	"context"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/testutil"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// MockLogger collects messages.
type MockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *MockLogger) add(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, msg)
}

func (l *MockLogger) Debug(msg string, _ map[string]interface{}) { l.add(msg) }
func (l *MockLogger) Info(msg string, _ map[string]interface{})  { l.add(msg) }
func (l *MockLogger) Warn(msg string, _ map[string]interface{})  { l.add(msg) }
func (l *MockLogger) Error(msg string, _ map[string]interface{}) { l.add(msg) }

func (l *MockLogger) Count(msg string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0

	for _, m := range l.messages {
		if m == msg {
			count++
		}
	}

	return count
}

func fastPolicy() *luna.RetryPolicy {
	return &luna.RetryPolicy{
		MaxRetries:     3,
		InitialDelay:   5 * time.Millisecond,
		MaxDelay:       20 * time.Millisecond,
		Multiplier:     2,
		JitterFraction: 0.1,
	}
}

func newTestClient(t *testing.T, server *testutil.Server, logger luna.Logger) *Client {
	t.Helper()

	if logger == nil {
		logger = &MockLogger{}
	}

	client, err := New(context.Background(), &luna.Config{
		BaseURL:     server.URL,
		APIKey:      testutil.TestAPIKey,
		RetryPolicy: fastPolicy(),
		Logger:      logger,
	})
	require.NoError(t, err)

	return client
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNew(t *testing.T) {
	t.Parallel()

	negative := &luna.RetryPolicy{MaxRetries: -1, InitialDelay: time.Second, MaxDelay: time.Second, Multiplier: 2}

	tests := []struct {
		name    string
		config  *luna.Config
		wantErr error
	}{
		{name: "nil config", config: nil, wantErr: luna.ErrConfigRequired},
		{name: "no base URL", config: &luna.Config{APIKey: testutil.TestAPIKey}, wantErr: ErrBaseURLRequired},
		{name: "no credentials", config: &luna.Config{BaseURL: "https://api.example.com"}, wantErr: constants.ErrNoCredentials},
		{
			name:    "malformed API key",
			config:  &luna.Config{BaseURL: "https://api.example.com", APIKey: "sk_live_nope"},
			wantErr: constants.ErrInvalidAPIKeyFormat,
		},
		{
			name:    "negative timeout",
			config:  &luna.Config{BaseURL: "https://api.example.com", APIKey: testutil.TestAPIKey, Timeout: -time.Second},
			wantErr: constants.ErrInvalidTimeout,
		},
		{
			name:    "invalid retry policy",
			config:  &luna.Config{BaseURL: "https://api.example.com", APIKey: testutil.TestAPIKey, RetryPolicy: negative},
			wantErr: luna.ErrInvalidRetryPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := New(context.Background(), tt.config)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, client)
		})
	}

	t.Run("API key takes precedence", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &luna.Config{
			BaseURL:     "https://api.example.com",
			APIKey:      testutil.TestAPIKey,
			AccessToken: "ignored",
			Logger:      &MockLogger{},
		})
		require.NoError(t, err)

		_, err = client.Tokens()
		require.ErrorIs(t, err, ErrNotRefreshable)

		_, err = client.RefreshTokens(context.Background())
		require.ErrorIs(t, err, ErrNotRefreshable)
	})

	t.Run("log file", func(t *testing.T) {
		t.Parallel()

		client, err := New(context.Background(), &luna.Config{
			BaseURL: "https://api.example.com",
			APIKey:  testutil.TestAPIKey,
			LogFile: filepath.Join(t.TempDir(), "logs", "luna.log"),
		})
		require.NoError(t, err)
		require.NoError(t, client.Close())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestUsersClient(t *testing.T) {
	t.Parallel()

	server := testutil.NewServer()
	defer server.Close()

	client := newTestClient(t, server, nil)
	users := client.Users()
	ctx := context.Background()

	created, err := users.Create(ctx, &luna.UserCreate{Email: "naledi@example.com", Name: "Naledi"})
	require.NoError(t, err)
	assert.Regexp(t, `^usr_`, created.ID)
	assert.Equal(t, "Naledi", created.Name)

	fetched, err := users.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Email, fetched.Email)

	name := "Naledi M."
	updated, err := users.Update(ctx, created.ID, &luna.UserUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	_, err = users.Create(ctx, &luna.UserCreate{Email: "naledi@example.com", Name: "Again"})
	require.Error(t, err)
	assert.True(t, luna.IsConflict(err))

	_, err = users.Create(ctx, &luna.UserCreate{Name: "No email"})
	require.Error(t, err)
	assert.True(t, luna.IsValidation(err))

	require.NoError(t, users.Delete(ctx, created.ID))

	_, err = users.Get(ctx, created.ID)
	require.Error(t, err)
	assert.True(t, luna.IsNotFound(err))

	lunaErr, ok := luna.AsError(err)
	require.True(t, ok)
	assert.Equal(t, luna.CodeResourceNotFound, lunaErr.Code)
	assert.NotEmpty(t, lunaErr.RequestID)
}

func TestUsersClient_InvalidIDs(t *testing.T) {
	t.Parallel()

	server := testutil.NewServer()
	defer server.Close()

	users := newTestClient(t, server, nil).Users()
	ctx := context.Background()

	for _, id := range []string{"", "123", "prj_abc", "usr_", "usr_a-b"} {
		_, err := users.Get(ctx, id)
		require.ErrorIs(t, err, constants.ErrInvalidUserID, id)
		assert.True(t, luna.IsValidation(err))

		_, err = users.Update(ctx, id, &luna.UserUpdate{})
		require.ErrorIs(t, err, constants.ErrInvalidUserID, id)

		require.ErrorIs(t, users.Delete(ctx, id), constants.ErrInvalidUserID, id)
	}

	_, err := users.List(ctx, &luna.ListParams{Limit: 101})
	require.ErrorIs(t, err, constants.ErrInvalidPageLimit)

	assert.Equal(t, 0, server.Requests())
}

func TestUsersClient_Pagination(t *testing.T) {
	t.Parallel()

	server := testutil.NewServer()
	defer server.Close()

	seeded := server.SeedUsers(45)
	users := newTestClient(t, server, nil).Users()
	ctx := context.Background()

	first, err := users.List(ctx, &luna.ListParams{Limit: 20})
	require.NoError(t, err)
	assert.Len(t, first.Data, 20)
	assert.True(t, first.HasMore)
	require.NotNil(t, first.NextCursor)

	it := users.Iterate(ctx, &luna.ListParams{Limit: 20})

	all, err := it.All()
	require.NoError(t, err)
	require.Len(t, all, 45)
	assert.Equal(t, 3, it.Fetches())

	for i := range seeded {
		assert.Equal(t, seeded[i].ID, all[i].ID)
	}

	resumed, err := users.Iterate(ctx, &luna.ListParams{Limit: 20, Cursor: *first.NextCursor}).All()
	require.NoError(t, err)
	assert.Len(t, resumed, 25)
	assert.Equal(t, seeded[20].ID, resumed[0].ID)
}

func TestProjectsClient(t *testing.T) {
	t.Parallel()

	server := testutil.NewServer()
	defer server.Close()

	server.SeedProjects(3, "usr_owner")
	projects := newTestClient(t, server, nil).Projects()
	ctx := context.Background()

	description := "Field data collection"
	created, err := projects.Create(ctx, &luna.ProjectCreate{Name: "Karoo", Description: &description})
	require.NoError(t, err)
	assert.Regexp(t, `^prj_`, created.ID)

	count := 0

	for project, err := range projects.Iterate(ctx, &luna.ListParams{Limit: 2}).Seq() {
		require.NoError(t, err)
		assert.NotEmpty(t, project.Name)

		count++
	}

	assert.Equal(t, 4, count)

	renamed := "Karoo Survey"
	updated, err := projects.Update(ctx, created.ID, &luna.ProjectUpdate{Name: &renamed})
	require.NoError(t, err)
	assert.Equal(t, renamed, updated.Name)
	require.NotNil(t, updated.Description)
	assert.Equal(t, description, *updated.Description)

	require.NoError(t, projects.Delete(ctx, created.ID))
	require.ErrorIs(t, projects.Delete(ctx, "usr_123"), constants.ErrInvalidProjectID)

	_, err = projects.Get(ctx, created.ID)
	assert.True(t, luna.IsNotFound(err))
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	server := testutil.NewServer()
	defer server.Close()

	server.SeedUsers(2)
	server.FailNext(http.StatusServiceUnavailable, http.StatusServiceUnavailable)

	logger := &MockLogger{}
	client := newTestClient(t, server, logger)

	list, err := client.Users().List(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, list.Data, 2)
	assert.Equal(t, 3, server.Requests())
	assert.Equal(t, 2, logger.Count("Retrying request"))
}

func TestClient_Request(t *testing.T) {
	t.Parallel()

	server := testutil.NewServer()
	defer server.Close()

	server.SeedUsers(1)
	client := newTestClient(t, server, nil)

	resp, err := client.Request(luna.WithRequestID(context.Background(), "req_raw"), &luna.Request{
		Path: "/v1/users",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req_raw", resp.RequestID)
	assert.Contains(t, string(resp.Body), `"has_more":false`)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_RefreshableSession(t *testing.T) {
	t.Parallel()

	server := testutil.NewServer()
	defer server.Close()

	server.SeedUsers(3)
	server.AllowToken("stale-access")
	server.AllowRefreshToken("refresh-0")

	var (
		callbacks atomic.Int32
		persisted atomic.Value
	)

	expiresAt := time.Now().Add(time.Minute)
	client, err := New(context.Background(), &luna.Config{
		BaseURL:        server.URL,
		AccessToken:    "stale-access",
		RefreshToken:   "refresh-0",
		TokenExpiresAt: &expiresAt,
		RetryPolicy:    fastPolicy(),
		Logger:         &MockLogger{},
		OnTokenRefresh: func(pair luna.TokenPair) error {
			callbacks.Add(1)
			persisted.Store(pair)

			return nil
		},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup

	errs := make(chan error, 10)

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := client.Users().List(context.Background(), nil)
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 1, server.Refreshes())
	assert.Equal(t, int32(1), callbacks.Load())

	tokens, err := client.Tokens()
	require.NoError(t, err)
	assert.Equal(t, "access-1", tokens.AccessToken)
	assert.Equal(t, "refresh-1", tokens.RefreshToken)
	assert.Equal(t, tokens.AccessToken, persisted.Load().(luna.TokenPair).AccessToken)

	result, err := client.RefreshTokens(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Refreshed)
	assert.Equal(t, "access-2", result.Tokens.AccessToken)
	assert.Equal(t, 2, server.Refreshes())
}

func TestClient_RefreshFailureIsAuthentication(t *testing.T) {
	t.Parallel()

	server := testutil.NewServer()
	defer server.Close()

	expiresAt := time.Now().Add(-time.Minute)
	client, err := New(context.Background(), &luna.Config{
		BaseURL:        server.URL,
		AccessToken:    "expired",
		RefreshToken:   "revoked",
		TokenExpiresAt: &expiresAt,
		RetryPolicy:    fastPolicy(),
		Logger:         &MockLogger{},
	})
	require.NoError(t, err)

	_, err = client.Users().List(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, luna.IsAuthentication(err))
	assert.Equal(t, 1, server.Requests())
}
