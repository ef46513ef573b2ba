package domain

import "time"

// Session is the identity of the signed-in user as reported by the managed auth service.
type Session struct {
	UserId    UserId
	Username  Username
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer usable at now.
// A zero ExpiresAt never expires.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Stale reports whether the session expires within skew of now.
func (s Session) Stale(now time.Time, skew time.Duration) bool {
	return !s.ExpiresAt.IsZero() && !now.Add(skew).Before(s.ExpiresAt)
}

func (s Session) Valid() bool {
	return s.UserId != ""
}
