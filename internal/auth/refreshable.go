package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/telemetry"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

const refreshKey = "refresh"

// RefreshResult reports the outcome of a refresh. A refresh can succeed while
// the notification callback fails; CallbackErr carries that failure.
type RefreshResult struct {
	Tokens luna.TokenPair
	// Refreshed is false when the pair was already fresh and no exchange ran.
	Refreshed   bool
	CallbackErr error
}

// TokenProvider authenticates with a refreshable token pair. At most one
// refresh is in flight at a time; concurrent callers that need a refresh wait
// for it and share its result.
type TokenProvider struct {
	store          *TokenStore
	refresher      Refresher
	onRefresh      func(luna.TokenPair) error
	logger         *telemetry.Logger
	group          singleflight.Group
	leadWindow     time.Duration
	refreshTimeout time.Duration
	now            func() time.Time
}

// TokenOption configures a TokenProvider.
type TokenOption func(*TokenProvider)

// WithRefresher sets the exchange used to renew the pair.
func WithRefresher(refresher Refresher) TokenOption {
	return func(p *TokenProvider) {
		p.refresher = refresher
	}
}

// WithRefreshCallback sets a function called with every refreshed pair.
func WithRefreshCallback(callback func(luna.TokenPair) error) TokenOption {
	return func(p *TokenProvider) {
		p.onRefresh = callback
	}
}

// WithLogger sets the logger.
func WithLogger(logger *telemetry.Logger) TokenOption {
	return func(p *TokenProvider) {
		p.logger = logger
	}
}

// WithLeadWindow sets how long before expiry the token is refreshed.
func WithLeadWindow(window time.Duration) TokenOption {
	return func(p *TokenProvider) {
		p.leadWindow = window
	}
}

// WithRefreshTimeout bounds a single refresh exchange.
func WithRefreshTimeout(timeout time.Duration) TokenOption {
	return func(p *TokenProvider) {
		p.refreshTimeout = timeout
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) TokenOption {
	return func(p *TokenProvider) {
		p.now = now
	}
}

// NewTokenProvider creates a provider for pair. When the pair carries no
// expiry and the access token is a JWT, the exp claim is used.
func NewTokenProvider(pair luna.TokenPair, opts ...TokenOption) (*TokenProvider, error) {
	if pair.AccessToken == "" {
		return nil, constants.ErrAccessTokenRequired
	}

	provider := &TokenProvider{
		store:          NewTokenStore(),
		leadWindow:     constants.TokenRefreshLeadWindow,
		refreshTimeout: constants.RefreshTimeout,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(provider)
	}

	provider.store.Set(withInferredExpiry(pair))

	return provider, nil
}

// Tokens returns a snapshot of the current pair.
func (p *TokenProvider) Tokens() luna.TokenPair {
	return *p.store.Get()
}

// SetTokens replaces the pair, for example after an out-of-band login.
func (p *TokenProvider) SetTokens(pair luna.TokenPair) {
	p.store.Set(withInferredExpiry(pair))
}

// NeedsRefresh reports whether the access token expires within the lead
// window. It is false when the expiry is unknown.
func (p *TokenProvider) NeedsRefresh() bool {
	return p.needsRefresh(p.store.Get())
}

func (p *TokenProvider) needsRefresh(pair *luna.TokenPair) bool {
	if pair == nil || pair.ExpiresAt == nil {
		return false
	}

	return !p.now().Add(p.leadWindow).Before(*pair.ExpiresAt)
}

// GetHeaders returns the Authorization header, refreshing the pair first when
// it is about to expire.
func (p *TokenProvider) GetHeaders(ctx context.Context) (map[string]string, error) {
	if p.NeedsRefresh() {
		_, err := p.refreshShared(ctx, false)
		if err != nil {
			return nil, err
		}
	}

	pair := p.store.Get()

	return map[string]string{constants.HeaderAuthorization: "Bearer " + pair.AccessToken}, nil
}

// Refresh exchanges the refresh token for a new pair, even if the current one
// is still fresh. It joins a refresh already in flight.
func (p *TokenProvider) Refresh(ctx context.Context) (RefreshResult, error) {
	return p.refreshShared(ctx, true)
}

// refreshShared runs or joins the single in-flight refresh. The exchange
// itself is detached from the caller's cancellation so that one caller giving
// up does not fail the others; each caller still stops waiting when its own
// context ends.
func (p *TokenProvider) refreshShared(ctx context.Context, force bool) (RefreshResult, error) {
	resultCh := p.group.DoChan(refreshKey, func() (interface{}, error) {
		// Another flight may have refreshed since the caller looked.
		if !force && !p.NeedsRefresh() {
			return RefreshResult{Tokens: p.Tokens()}, nil
		}

		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.refreshTimeout)
		defer cancel()

		return p.refresh(refreshCtx)
	})

	select {
	case <-ctx.Done():
		return RefreshResult{}, ctx.Err()
	case result := <-resultCh:
		if result.Err != nil {
			// Every waiter receives the flight's error; hand out copies.
			if lunaErr, ok := result.Err.(*luna.Error); ok {
				return RefreshResult{}, lunaErr.WithRequestID(lunaErr.RequestID)
			}

			return RefreshResult{}, result.Err
		}

		refreshResult, _ := result.Val.(RefreshResult)

		return refreshResult, nil
	}
}

func (p *TokenProvider) refresh(ctx context.Context) (RefreshResult, error) {
	current := p.store.Get()

	if current.RefreshToken == "" {
		p.logger.Warn("Token refresh skipped", map[string]interface{}{"reason": "no refresh token"})

		return RefreshResult{}, authError(luna.CodeAuthInvalidKey, "no refresh token available", constants.ErrNoRefreshToken)
	}

	if p.refresher == nil {
		return RefreshResult{}, authError(luna.CodeAuthInvalidKey, "no token refresher configured", constants.ErrNoRefresher)
	}

	p.logger.Debug("Refreshing access token", nil)

	pair, err := p.refresher.Refresh(ctx, current.RefreshToken)
	if err != nil {
		p.logger.Warn("Token refresh failed", map[string]interface{}{"error": err.Error()})

		return RefreshResult{}, asAuthError(err)
	}

	if pair.RefreshToken == "" {
		pair.RefreshToken = current.RefreshToken
	}

	pair = withInferredExpiry(pair)
	p.store.Set(pair)

	fields := map[string]interface{}{}
	if pair.ExpiresAt != nil {
		fields["expires_at"] = pair.ExpiresAt.UTC().Format(time.RFC3339)
	}

	p.logger.Info("Access token refreshed", fields)

	result := RefreshResult{Tokens: *copyPair(pair), Refreshed: true}
	result.CallbackErr = p.notify(pair)

	return result, nil
}

// notify runs the refresh callback after the new pair is committed. Its
// failure is logged and reported but never undoes the refresh.
func (p *TokenProvider) notify(pair luna.TokenPair) (err error) {
	if p.onRefresh == nil {
		return nil
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("%w: %v", constants.ErrRefreshCallbackPanic, recovered)
		}

		if err != nil {
			p.logger.Warn("Token refresh callback failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	return p.onRefresh(*copyPair(pair))
}

func asAuthError(err error) *luna.Error {
	if lunaErr, ok := luna.AsError(err); ok && lunaErr.Kind == luna.KindAuthentication {
		return lunaErr
	}

	classified := authError(luna.CodeAuthTokenExpired, "token refresh failed: "+err.Error(), err)
	if lunaErr, ok := luna.AsError(err); ok {
		classified.Status = lunaErr.Status
		classified.RequestID = lunaErr.RequestID
	}

	return classified
}

func withInferredExpiry(pair luna.TokenPair) luna.TokenPair {
	if pair.ExpiresAt != nil {
		return pair
	}

	if expiresAt, err := ExpiryFromJWT(pair.AccessToken); err == nil {
		pair.ExpiresAt = &expiresAt
	}

	return pair
}
