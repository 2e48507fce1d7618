package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/oauth2"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/json"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

const maxRefreshResponseBytes = 1 << 20

// Refresher exchanges a refresh token for a new token pair.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (luna.TokenPair, error)
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context, refreshToken string) (luna.TokenPair, error)

// Refresh calls f.
func (f RefresherFunc) Refresh(ctx context.Context, refreshToken string) (luna.TokenPair, error) {
	return f(ctx, refreshToken)
}

// HTTPRefresher renews tokens through the API's own refresh endpoint. It
// posts {"refresh_token": ...} and expects {access_token, refresh_token,
// expires_in} back.
type HTTPRefresher struct {
	url        string
	httpClient *http.Client
	now        func() time.Time
}

// NewHTTPRefresher creates a refresher for the API at baseURL. A nil client
// uses a pooled default.
func NewHTTPRefresher(baseURL string, httpClient *http.Client) *HTTPRefresher {
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}

	return &HTTPRefresher{
		url:        strings.TrimSuffix(baseURL, "/") + constants.RefreshPath,
		httpClient: httpClient,
		now:        time.Now,
	}
}

type refreshResponse struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token"`
	ExpiresIn    int64      `json:"expires_in"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

// Refresh implements Refresher.
func (r *HTTPRefresher) Refresh(ctx context.Context, refreshToken string) (luna.TokenPair, error) {
	payload, err := json.Marshal(map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return luna.TokenPair{}, fmt.Errorf("encoding refresh request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return luna.TokenPair{}, fmt.Errorf("creating refresh request: %w", err)
	}

	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	req.Header.Set(constants.HeaderAccept, constants.ContentTypeJSON)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return luna.TokenPair{}, fmt.Errorf("%w: %w", constants.ErrFailedRetrieveToken, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRefreshResponseBytes))
	if err != nil {
		return luna.TokenPair{}, fmt.Errorf("reading refresh response: %w", err)
	}

	if classified := luna.ClassifyResponse(resp.StatusCode, resp.Header, body, ""); classified != nil {
		return luna.TokenPair{}, &luna.Error{
			Kind:      luna.KindAuthentication,
			Code:      luna.CodeAuthTokenExpired,
			Message:   fmt.Sprintf("token refresh failed with status %d: %s", resp.StatusCode, classified.Message),
			Status:    resp.StatusCode,
			RequestID: classified.RequestID,
			Details:   classified.Details,
			Err:       classified,
		}
	}

	var decoded refreshResponse

	err = json.Unmarshal(body, &decoded)
	if err != nil {
		return luna.TokenPair{}, fmt.Errorf("decoding refresh response: %w", err)
	}

	if decoded.AccessToken == "" {
		return luna.TokenPair{}, constants.ErrEmptyRefreshResponse
	}

	pair := luna.TokenPair{
		AccessToken:  decoded.AccessToken,
		RefreshToken: decoded.RefreshToken,
		ExpiresAt:    decoded.ExpiresAt,
	}

	if decoded.ExpiresIn > 0 {
		expiresAt := r.now().Add(time.Duration(decoded.ExpiresIn) * time.Second)
		pair.ExpiresAt = &expiresAt
	}

	return pair, nil
}

// OAuth2Refresher renews tokens with the OAuth2 refresh_token grant.
type OAuth2Refresher struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewOAuth2Refresher creates a refresher for the given token endpoint and client.
func NewOAuth2Refresher(tokenURL, clientID, clientSecret string, httpClient *http.Client) *OAuth2Refresher {
	return &OAuth2Refresher{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: tokenURL,
			},
		},
		httpClient: httpClient,
	}
}

// Refresh implements Refresher.
func (r *OAuth2Refresher) Refresh(ctx context.Context, refreshToken string) (luna.TokenPair, error) {
	if r.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	}

	token, err := r.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return luna.TokenPair{}, &luna.Error{
				Kind:      luna.KindAuthentication,
				Code:      luna.CodeAuthTokenExpired,
				Message:   fmt.Sprintf("token refresh failed with status %d: %s", retrieveErr.Response.StatusCode, retrieveErr.ErrorCode),
				Status:    retrieveErr.Response.StatusCode,
				RequestID: retrieveErr.Response.Header.Get(constants.HeaderRequestID),
				Err:       err,
			}
		}

		return luna.TokenPair{}, fmt.Errorf("%w: %w", constants.ErrFailedRetrieveToken, err)
	}

	pair := luna.TokenPair{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}

	if !token.Expiry.IsZero() {
		expiresAt := token.Expiry
		pair.ExpiresAt = &expiresAt
	}

	return pair, nil
}
