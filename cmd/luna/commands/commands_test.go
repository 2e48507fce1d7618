package commands_test

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/cmd/luna/commands"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/json"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/testutil"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// run executes the CLI against server and returns stdout and stderr.
func run(t *testing.T, server *testutil.Server, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	root := commands.NewRootCommand("1.2.3", "abc123", "2026-01-01")
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	if server != nil {
		args = append([]string{"--base-url", server.URL, "--api-key", testutil.TestAPIKey}, args...)
	}

	root.SetArgs(args)

	err := root.Execute()

	return stdout.String(), stderr.String(), err
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	root := commands.NewRootCommand("dev", "none", "unknown")
	assert.Equal(t, "luna", root.Use)

	for _, flag := range []string{"config", "env-file", "api-key", "base-url", "output", "log-level", "verbose"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), "Flag %s should exist", flag)
	}

	for _, name := range []string{"version", "config", "users", "projects", "request"} {
		assert.NotNil(t, findSubcommand(root, name), "Command %s should exist", name)
	}

	users := findSubcommand(root, "users")
	require.NotNil(t, users)
	assert.Equal(t, []string{"user"}, users.Aliases)
	assert.NotNil(t, findSubcommand(users, "list"))
	assert.NotNil(t, findSubcommand(users, "get"))

	list := findSubcommand(users, "list")
	require.NotNil(t, list)
	assert.Equal(t, "20", list.Flags().Lookup("limit").DefValue)
	assert.NotNil(t, list.Flags().Lookup("all"))
	assert.NotNil(t, list.Flags().Lookup("cursor"))
}

func TestUsersCommands(t *testing.T) {
	t.Parallel()

	server := testutil.NewServer()
	t.Cleanup(server.Close)

	seeded := server.SeedUsers(5)

	t.Run("list one page as JSON", func(t *testing.T) {
		t.Parallel()

		stdout, stderr, err := run(t, server, "-o", "json", "users", "list", "--limit", "2")
		require.NoError(t, err)

		var page luna.ListResponse[luna.User]
		require.NoError(t, json.Unmarshal([]byte(stdout), &page))
		assert.Len(t, page.Data, 2)
		assert.True(t, page.HasMore)
		assert.Contains(t, stderr, "--cursor 2")
	})

	t.Run("list all as YAML", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, server, "-o", "yaml", "users", "list", "--all", "--limit", "2")
		require.NoError(t, err)

		var users []luna.User
		require.NoError(t, yaml.Unmarshal([]byte(stdout), &users))
		require.Len(t, users, 5)
		assert.Equal(t, seeded[4].Email, users[4].Email)
	})

	t.Run("get as table", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, server, "-o", "table", "users", "get", seeded[0].ID)
		require.NoError(t, err)
		assert.Contains(t, stdout, seeded[0].Email)
		assert.Contains(t, stdout, commands.NotAvailable)
	})

	t.Run("get rejects malformed ID", func(t *testing.T) {
		t.Parallel()

		_, _, err := run(t, server, "users", "get", "42")
		require.ErrorIs(t, err, constants.ErrInvalidUserID)
	})

	t.Run("get unknown user", func(t *testing.T) {
		t.Parallel()

		_, _, err := run(t, server, "users", "get", "usr_missing")
		require.Error(t, err)
		assert.True(t, luna.IsNotFound(err))
	})
}

func TestProjectsCommands(t *testing.T) {
	t.Parallel()

	server := testutil.NewServer()
	defer server.Close()

	seeded := server.SeedProjects(3, "usr_000042")

	stdout, _, err := run(t, server, "-o", "table", "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Project 1")
	assert.Contains(t, stdout, "usr_000042")

	stdout, _, err = run(t, server, "-o", "json", "projects", "get", seeded[2].ID)
	require.NoError(t, err)

	var project luna.Project
	require.NoError(t, json.Unmarshal([]byte(stdout), &project))
	assert.Equal(t, seeded[2].Name, project.Name)
}

func TestRequestCommand(t *testing.T) {
	t.Parallel()

	server := testutil.NewServer()
	t.Cleanup(server.Close)

	seeded := server.SeedUsers(3)

	t.Run("select", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, server, "-o", "json", "request", "v1/users", "--select", "data.#.id")
		require.NoError(t, err)

		var ids []string
		require.NoError(t, json.Unmarshal([]byte(stdout), &ids))
		assert.Equal(t, []string{seeded[0].ID, seeded[1].ID, seeded[2].ID}, ids)
	})

	t.Run("post body", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, server, "-o", "json", "request", "/v1/projects", "-X", "post", "-d", `{"name":"Karoo"}`)
		require.NoError(t, err)
		assert.Contains(t, stdout, `"Karoo"`)
	})

	t.Run("selector without match", func(t *testing.T) {
		t.Parallel()

		_, _, err := run(t, server, "-o", "json", "request", "/v1/users", "--select", "nothing.here")
		require.ErrorIs(t, err, commands.ErrSelectNoMatch)
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()

		_, _, err := run(t, server, "request", "/v1/users", "-q", "novalue")
		require.ErrorIs(t, err, commands.ErrInvalidQueryParam)

		_, _, err = run(t, server, "request", "/v1/users", "-X", "POST", "-d", "{broken")
		require.ErrorIs(t, err, commands.ErrInvalidJSONBody)

		_, _, err = run(t, server, "request", " ")
		require.ErrorIs(t, err, constants.ErrPathRequired)

		_, _, err = run(t, server, "request", "/v1/users", "-X", "TRACE")
		require.ErrorIs(t, err, luna.ErrInvalidRequest)
	})
}

func TestConfigShowCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, nil, "--api-key", testutil.TestAPIKey, "--base-url", "https://eu.eclipse.dev",
		"-o", "json", "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, stdout, testutil.TestAPIKey)
	assert.Contains(t, stdout, constants.RedactedValue)
	assert.Contains(t, stdout, "https://eu.eclipse.dev")
	assert.Contains(t, stdout, `"warn"`)
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, nil, "-o", "json", "version")
	require.NoError(t, err)

	var info commands.VersionInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "abc123", info.Commit)
	assert.Equal(t, constants.SDKVersion, info.SDKVersion)

	stdout, _, err = run(t, nil, "-o", "table", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "abc123")

	_, _, err = run(t, nil, "-o", "xml", "version")
	require.ErrorIs(t, err, constants.ErrUnsupportedOutput)
}
