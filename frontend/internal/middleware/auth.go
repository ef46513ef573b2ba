package middleware

import (
	"encoding/base64"
	"net/http"
	"net/url"

	"github.com/itchan-dev/blogfeed/frontend/internal/apiclient"
	mw "github.com/itchan-dev/blogfeed/shared/middleware"
)

const (
	flashCookieError = "flash_error"
)

// Auth wraps shared auth middleware with redirect behavior for the page.
type Auth struct {
	sharedAuth    *mw.Auth
	secureCookies bool
	loginURL      string
}

func NewAuth(sharedAuth *mw.Auth, secureCookies bool, loginURL string) *Auth {
	return &Auth{
		sharedAuth:    sharedAuth,
		secureCookies: secureCookies,
		loginURL:      loginURL,
	}
}

// NeedAuth returns middleware that sends anonymous or expired sessions to the
// managed sign-in page.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return a.wrapWithRedirect(a.sharedAuth.NeedAuth())
}

// OptionalAuth returns middleware that populates the session if available.
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return a.sharedAuth.OptionalAuth()
}

// ForwardAccessToken makes backend calls issued while serving r act as the
// signed-in user.
func ForwardAccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(mw.AccessTokenCookie); err == nil && cookie.Value != "" {
			r = r.WithContext(apiclient.WithAccessToken(r.Context(), cookie.Value))
		}
		next.ServeHTTP(w, r)
	})
}

// authRedirectWriter intercepts 401 errors and redirects to sign-in.
type authRedirectWriter struct {
	http.ResponseWriter
	request       *http.Request
	secureCookies bool
	loginURL      string
	redirected    bool
}

func (w *authRedirectWriter) WriteHeader(statusCode int) {
	if w.redirected {
		return
	}

	if statusCode == http.StatusUnauthorized {
		w.redirected = true
		redirectToLogin(w.ResponseWriter, w.request, w.secureCookies, w.loginURL, "Please sign in to continue")
		return
	}

	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *authRedirectWriter) Write(data []byte) (int, error) {
	if w.redirected {
		return len(data), nil // Discard body after redirect
	}
	return w.ResponseWriter.Write(data)
}

func redirectToLogin(w http.ResponseWriter, r *http.Request, secureCookies bool, loginURL, errorMsg string) {
	encodedMessage := base64.StdEncoding.EncodeToString([]byte(errorMsg))
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieError,
		Value:    encodedMessage,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	target := loginURL
	if u, err := url.Parse(loginURL); err == nil {
		q := u.Query()
		q.Set("redirect", "/")
		u.RawQuery = q.Encode()
		target = u.String()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (a *Auth) wrapWithRedirect(authMiddleware func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			wrapper := &authRedirectWriter{
				ResponseWriter: w,
				request:        r,
				secureCookies:  a.secureCookies,
				loginURL:       a.loginURL,
			}
			authMiddleware(next).ServeHTTP(wrapper, r)
		})
	}
}
