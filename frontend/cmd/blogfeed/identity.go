package main

import (
	"context"

	"github.com/itchan-dev/blogfeed/frontend/internal/apiclient"
	"github.com/itchan-dev/blogfeed/shared/domain"
	"github.com/itchan-dev/blogfeed/shared/jwt"
	"github.com/itchan-dev/blogfeed/shared/session"
)

// tokenUserInfo reads the identity straight from the configured token. Used
// when no auth endpoint is configured (direct pg mode).
type tokenUserInfo struct {
	jwt   jwt.JwtService
	token string
}

func (t tokenUserInfo) CurrentUserInfo(ctx context.Context) (domain.Session, error) {
	if t.token == "" {
		return domain.Session{}, session.ErrNoSession
	}
	return t.jwt.DecodeSession(t.token)
}

func newSessionProvider() *session.Provider {
	var fetcher session.UserInfoFetcher
	if cfg.Public.ApiURL != "" {
		fetcher = apiclient.New(cfg.Public, cfg.Private.ApiToken)
	} else {
		fetcher = tokenUserInfo{jwt: jwt.New(cfg.JwtKey()), token: cfg.Private.ApiToken}
	}
	return session.NewProvider(fetcher, cfg.Public.SessionRefreshSkew)
}

// signedIn returns ctx carrying the identity of the configured token.
func signedIn(ctx context.Context) (context.Context, error) {
	return newSessionProvider().Context(ctx)
}
