package client

import (
	"context"
	"fmt"
	"regexp"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/http"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/json"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// decode parses a response body into a new T.
func decode[T any](resp *luna.Response, what string) (*T, error) {
	var value T

	err := json.Unmarshal(resp.Body, &value)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", what, err)
	}

	return &value, nil
}

// list fetches one page of the collection at path.
func list[T any](ctx context.Context, httpClient *http.Client, path string, params *luna.ListParams, what string) (*luna.ListResponse[T], error) {
	err := params.Validate()
	if err != nil {
		return nil, validationError(err)
	}

	resp, err := httpClient.Get(ctx, path, params.Values())
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", what, err)
	}

	return decode[luna.ListResponse[T]](resp, what+" list")
}

// iterate returns a lazy iterator over the collection at path, starting at
// the cursor in params.
func iterate[T any](ctx context.Context, httpClient *http.Client, path string, params *luna.ListParams, what string) *luna.Iterator[T] {
	var (
		limit int
		start string
	)

	if params != nil {
		limit = params.Limit
		start = params.Cursor
	}

	fetch := func(ctx context.Context, cursor string) (luna.Page[T], error) {
		page, err := list[T](ctx, httpClient, path, &luna.ListParams{Limit: limit, Cursor: cursor}, what)
		if err != nil {
			return luna.Page[T]{}, err
		}

		return page.Page(), nil
	}

	return luna.NewIteratorFrom(ctx, fetch, start)
}

func checkID(pattern *regexp.Regexp, id string, invalid error) error {
	if !pattern.MatchString(id) {
		return validationError(fmt.Errorf("%w: %q", invalid, id))
	}

	return nil
}

func validationError(err error) *luna.Error {
	return &luna.Error{
		Kind:    luna.KindValidation,
		Code:    luna.CodeValidationFailed,
		Message: err.Error(),
		Err:     err,
	}
}
