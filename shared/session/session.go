// Package session carries the signed-in user's identity through a
// context.Context and keeps it fresh against the managed auth service.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/itchan-dev/blogfeed/shared/domain"
	"github.com/itchan-dev/blogfeed/shared/logger"
)

var (
	ErrNoSession      = errors.New("no session")
	ErrSessionExpired = errors.New("session expired")
)

type key int

const sessionKey key = 0

func WithSession(ctx context.Context, s domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session stored in ctx, checking it against now.
func FromContext(ctx context.Context, now time.Time) (domain.Session, error) {
	s, ok := ctx.Value(sessionKey).(domain.Session)
	if !ok || !s.Valid() {
		return domain.Session{}, ErrNoSession
	}
	if s.Expired(now) {
		return s, ErrSessionExpired
	}
	return s, nil
}

// UserInfoFetcher asks the managed auth service who the current user is.
type UserInfoFetcher interface {
	CurrentUserInfo(ctx context.Context) (domain.Session, error)
}

// Provider caches the identity returned by a UserInfoFetcher and fetches it
// again once it is within skew of expiring.
type Provider struct {
	fetcher UserInfoFetcher
	skew    time.Duration
	now     func() time.Time

	mu      sync.Mutex
	current domain.Session
	loaded  bool
}

func NewProvider(fetcher UserInfoFetcher, skew time.Duration) *Provider {
	return &Provider{fetcher: fetcher, skew: skew, now: time.Now}
}

func (p *Provider) CurrentUserInfo(ctx context.Context) (domain.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loaded && !p.current.Stale(p.now(), p.skew) {
		return p.current, nil
	}

	s, err := p.fetcher.CurrentUserInfo(ctx)
	if err != nil {
		if p.loaded && !p.current.Expired(p.now()) {
			logger.Log.Warn("session refresh failed, using cached identity",
				"component", "session", "user", p.current.UserId, "error", err)
			return p.current, nil
		}
		return domain.Session{}, err
	}
	if !s.Valid() {
		return domain.Session{}, ErrNoSession
	}
	if s.Expired(p.now()) {
		return domain.Session{}, ErrSessionExpired
	}

	p.current = s
	p.loaded = true
	logger.Log.Debug("session loaded", "component", "session", "user", s.UserId, "expires_at", s.ExpiresAt)
	return s, nil
}

// Context returns ctx carrying the current identity.
func (p *Provider) Context(ctx context.Context) (context.Context, error) {
	s, err := p.CurrentUserInfo(ctx)
	if err != nil {
		return ctx, err
	}
	return WithSession(ctx, s), nil
}
