package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/itchan-dev/blogfeed/shared/domain"
	jwt_internal "github.com/itchan-dev/blogfeed/shared/jwt"
	"github.com/itchan-dev/blogfeed/shared/logger"
	"github.com/itchan-dev/blogfeed/shared/session"
	"github.com/itchan-dev/blogfeed/shared/utils"
)

// AccessTokenCookie is the cookie the managed auth service sets on sign-in.
const AccessTokenCookie = "accessToken"

// Auth resolves the session from the access token issued by the managed auth
// service and stores it in the request context.
type Auth struct {
	jwtService    jwt_internal.JwtService
	secureCookies bool
}

func NewAuth(jwtService jwt_internal.JwtService, secureCookies bool) *Auth {
	return &Auth{
		jwtService:    jwtService,
		secureCookies: secureCookies,
	}
}

// NeedAuth returns middleware that requires a valid, unexpired session.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := a.extractSession(r)
			if err != nil {
				switch err {
				case errNoToken:
					http.Error(w, "Please sign-in", http.StatusUnauthorized)
				default:
					a.clearToken(w)
					utils.WriteErrorAndStatusCode(w, err)
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithSession(r.Context(), s)))
		})
	}
}

// OptionalAuth populates the session if the token is valid, but doesn't require it.
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if s, err := a.extractSession(r); err == nil {
				r = r.WithContext(session.WithSession(r.Context(), s))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Auth) extractSession(r *http.Request) (domain.Session, error) {
	var tokenString string
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		tokenString = cookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}
	if tokenString == "" {
		return domain.Session{}, errNoToken
	}

	s, err := a.jwtService.DecodeSession(tokenString)
	if err != nil {
		logger.Log.Debug("rejected access token", "component", "auth", "error", err)
		return domain.Session{}, err
	}
	return s, nil
}

func (a *Auth) clearToken(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Path:     "/",
		Name:     AccessTokenCookie,
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

var errNoToken = errorString("no token")

type errorString string

func (e errorString) Error() string { return string(e) }

// GetSessionFromContext returns the session stored by the auth middleware,
// or nil when the request is anonymous or the session has expired since.
func GetSessionFromContext(r *http.Request) *domain.Session {
	s, err := session.FromContext(r.Context(), time.Now())
	if err != nil {
		return nil
	}
	return &s
}
