package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/auth"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/client"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/config"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/json"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/lunaclient"
)

const (
	// NotAvailable is shown for empty optional fields.
	NotAvailable = "N/A"

	timeLayout = "2006-01-02 15:04:05"
)

// Common static errors used throughout the commands package.
var (
	ErrInvalidQueryParam = errors.New("invalid query parameter, expected key=value")
	ErrInvalidJSONBody   = errors.New("request body is not valid JSON")
)

// outputFormat resolves --output. Without it, a terminal gets a table and
// anything else gets JSON.
func (a *app) outputFormat(w io.Writer) (string, error) {
	format := strings.ToLower(strings.TrimSpace(a.v.GetString(keyOutput)))
	if format == "" {
		format = constants.FormatJSON

		if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
			format = constants.FormatTable
		}
	}

	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q", constants.ErrUnsupportedOutput, format)
	}
}

// render writes value as JSON or YAML, or calls table for the table format.
func (a *app) render(w io.Writer, value interface{}, table func(*tablewriter.Table)) error {
	format, err := a.outputFormat(w)
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(w)
		defer func() { _ = encoder.Close() }()

		return encoder.Encode(value)
	default:
		t := tablewriter.NewWriter(w)
		table(t)

		if err := t.Render(); err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// newClient builds a client from the resolved settings. When LUNA_NATS_URL is
// set and no API key is configured, the token pair is loaded from and saved
// to the NATS key-value store. The returned func releases everything.
func (a *app) newClient(ctx context.Context) (*client.Client, func(), error) {
	settings, err := config.Load(a.v)
	if err != nil {
		return nil, nil, err
	}

	cfg := settings.Config()
	cfg.BaseURL = lunaclient.NormalizeBaseURL(cfg.BaseURL)

	closeStore := func() {}

	if settings.NATSURL != "" && settings.APIKey == "" {
		store, closeFn, err := auth.ConnectNATSTokenStore(settings.NATSURL, settings.NATSBucket, constants.DefaultTokenKey)
		if err != nil {
			return nil, nil, err
		}

		if cfg.AccessToken == "" {
			pair, err := store.Load()

			switch {
			case err == nil:
				cfg.AccessToken = pair.AccessToken
				cfg.RefreshToken = pair.RefreshToken
				cfg.TokenExpiresAt = pair.ExpiresAt
			case !errors.Is(err, constants.ErrNoStoredTokens):
				closeFn()

				return nil, nil, err
			}
		}

		cfg.OnTokenRefresh = store.Save
		closeStore = closeFn
	}

	c, err := client.New(ctx, cfg)
	if err != nil {
		closeStore()

		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}

	return c, func() {
		_ = c.Close()

		closeStore()
	}, nil
}

// printNextCursor tells the user how to fetch the following page.
func printNextCursor(cmd *cobra.Command, hasMore bool, next *string) {
	if hasMore && next != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "More results available, continue with --cursor %s\n", *next)
	}
}

func valueOrNA(value *string) string {
	if value == nil || *value == "" {
		return NotAvailable
	}

	return *value
}
