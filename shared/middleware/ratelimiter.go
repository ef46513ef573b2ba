package middleware

import (
	"errors"
	"net"
	"net/http"

	"github.com/itchan-dev/blogfeed/shared/logger"
	"github.com/itchan-dev/blogfeed/shared/middleware/ratelimiter"
	"github.com/itchan-dev/blogfeed/shared/utils"
)

func RateLimit(rl *ratelimiter.UserRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !rl.Allow(identity) {
				logger.Log.Info("rate limited", "component", "ratelimit", "identity", identity, "path", r.URL.Path)
				http.Error(w, "Rate limit exceeded, try again later", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext identifies the caller by the session set by the auth middleware.
func GetUserIDFromContext(r *http.Request) (string, error) {
	s := GetSessionFromContext(r)
	if s == nil {
		return "", errors.New("Can't get user id")
	}
	return "user_" + s.UserId, nil
}

// GetIP extracts the client IP from RemoteAddr. Forwarding headers are not trusted.
func GetIP(r *http.Request) (string, error) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if net.ParseIP(ip) == nil {
		return "", errors.New("invalid IP address: " + ip)
	}
	return ip, nil
}
