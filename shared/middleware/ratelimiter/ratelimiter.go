package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	timer    *time.Timer
}

// UserRateLimiter keeps one token bucket per identity. Each bucket carries its
// own expiration timer and is dropped once idle for longer than expiration.
type UserRateLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*entry
	limit      rate.Limit
	burst      int
	expiration time.Duration
	now        func() time.Time
}

// New creates a limiter allowing rps events per second per identity with the given burst.
func New(rps float64, burst int, expiration time.Duration) *UserRateLimiter {
	return &UserRateLimiter{
		limiters:   make(map[string]*entry),
		limit:      rate.Limit(rps),
		burst:      burst,
		expiration: expiration,
		now:        time.Now,
	}
}

// evict removes e if it is still the bucket for identity and has not been
// touched since its timer was armed.
func (u *UserRateLimiter) evict(identity string, e *entry) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if cur, ok := u.limiters[identity]; !ok || cur != e {
		return
	}
	// timer fired while get was resetting it
	if u.now().Sub(e.lastSeen) < u.expiration {
		return
	}
	delete(u.limiters, identity)
}

func (u *UserRateLimiter) get(identity string) *rate.Limiter {
	u.mu.Lock()
	defer u.mu.Unlock()

	e, ok := u.limiters[identity]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(u.limit, u.burst)}
		e.timer = time.AfterFunc(u.expiration, func() { u.evict(identity, e) })
		u.limiters[identity] = e
	} else {
		e.timer.Reset(u.expiration)
	}
	e.lastSeen = u.now()
	return e.limiter
}

// Allow reports whether identity may perform one more event now.
func (u *UserRateLimiter) Allow(identity string) bool {
	return u.get(identity).AllowN(u.now(), 1)
}

// Stop cancels every pending expiration timer and drops all buckets.
func (u *UserRateLimiter) Stop() {
	u.mu.Lock()
	defer u.mu.Unlock()

	for identity, e := range u.limiters {
		e.timer.Stop()
		delete(u.limiters, identity)
	}
}

func (u *UserRateLimiter) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.limiters)
}

func Rps10() *UserRateLimiter {
	return New(10, 10, time.Hour)
}

func OnceInSecond() *UserRateLimiter {
	return New(1, 1, time.Hour)
}
