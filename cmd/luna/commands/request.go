package commands

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/json"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// ErrSelectNoMatch is returned when --select matches nothing in the response.
var ErrSelectNoMatch = errors.New("selector matched nothing in the response")

func (a *app) newRequestCommand() *cobra.Command {
	var (
		method   string
		data     string
		query    []string
		selector string
	)

	cmd := &cobra.Command{
		Use:   "request PATH",
		Short: "Send a raw API request",
		Long: `Send a request to any API path through the retrying client and print the
JSON response. --select extracts part of the response with a gjson path,
for example "data.#.email".`,
		Example: `  luna request /v1/users --query limit=5
  luna request /v1/projects -X POST -d '{"name":"Karoo"}'
  luna request /v1/users --select 'data.#.id'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildRawRequest(method, args[0], data, query)
			if err != nil {
				return err
			}

			c, done, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			resp, err := c.Request(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}

			body := resp.Body
			if selector != "" {
				result := gjson.GetBytes(body, selector)
				if !result.Exists() {
					return fmt.Errorf("%w: %s", ErrSelectNoMatch, selector)
				}

				body = []byte(result.Raw)
			}

			var value interface{}
			if len(body) > 0 {
				err = json.Unmarshal(body, &value)
				if err != nil {
					return fmt.Errorf("decoding response: %w", err)
				}
			}

			return a.render(cmd.OutOrStdout(), value, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Status", strconv.Itoa(resp.StatusCode))
				_ = table.Append("Request ID", resp.RequestID)
				_ = table.Append("Body", string(body))
			})
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body")
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&selector, "select", "", "gjson path to extract from the response")

	return cmd
}

func buildRawRequest(method, path, data string, query []string) (*luna.Request, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, constants.ErrPathRequired
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req := &luna.Request{
		Method: strings.ToUpper(method),
		Path:   path,
	}

	if len(query) > 0 {
		req.Query = url.Values{}

		for _, pair := range query {
			key, value, ok := strings.Cut(pair, "=")
			if !ok || key == "" {
				return nil, fmt.Errorf("%w: %q", ErrInvalidQueryParam, pair)
			}

			req.Query.Add(key, value)
		}
	}

	if data != "" {
		if !json.Valid([]byte(data)) {
			return nil, ErrInvalidJSONBody
		}

		req.RawBody = []byte(data)
		req.ContentType = constants.ContentTypeJSON
	}

	err := req.Validate()
	if err != nil {
		return nil, err
	}

	return req, nil
}
