package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/itchan-dev/blogfeed/shared/config"
	internal_errors "github.com/itchan-dev/blogfeed/shared/errors"
	"github.com/itchan-dev/blogfeed/shared/middleware"
)

// APIClient struct handles all communication with the managed backend:
// queries and mutations over HTTP, push events over a websocket.
type APIClient struct {
	BaseURL         string
	SubscriptionURL string
	HttpClient      *http.Client
	Dialer          *websocket.Dialer
	Subscription    config.Subscription
	// Token is sent when the request context carries no access token of its own.
	Token string
}

func New(cfg config.Public, token string) *APIClient {
	return &APIClient{
		BaseURL:         cfg.ApiURL,
		SubscriptionURL: cfg.SubscriptionURL,
		HttpClient:      &http.Client{Timeout: cfg.HttpTimeout},
		Dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HttpTimeout,
		},
		Subscription: cfg.Subscription,
		Token:        token,
	}
}

type tokenKey struct{}

// WithAccessToken makes requests issued with ctx act as the owner of token.
func WithAccessToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func (c *APIClient) accessToken(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey{}).(string); ok && token != "" {
		return token
	}
	return c.Token
}

func (c *APIClient) authHeader(ctx context.Context) http.Header {
	header := http.Header{}
	if token := c.accessToken(ctx); token != "" {
		header.Add("Cookie", (&http.Cookie{Name: middleware.AccessTokenCookie, Value: token}).String())
	}
	return header
}

// do is the single, unified helper for making API requests.
func (c *APIClient) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header = c.authHeader(ctx)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.HttpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend unavailable: %w", err)
	}
	return resp, nil
}

// responseError turns a non-success response into an ErrorWithStatusCode
// carrying the backend's message.
func responseError(resp *http.Response, action string) error {
	bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := string(bodyBytes)
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return internal_errors.New(fmt.Sprintf("failed to %s: %s", action, msg), resp.StatusCode)
}
