package handler

import (
	"encoding/base64"
	"net/http"

	frontend_domain "github.com/itchan-dev/blogfeed/frontend/internal/domain"
	"github.com/itchan-dev/blogfeed/frontend/internal/middleware"
	mw "github.com/itchan-dev/blogfeed/shared/middleware"
)

const (
	flashCookieError   = "flash_error"
	flashCookieSuccess = "flash_success"
)

// redirectWithFlash stores msg in a short-lived cookie (base64 encoded for
// safe storage of special characters) and redirects to targetURL.
func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, targetURL, cookieName, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.StdEncoding.EncodeToString([]byte(msg)),
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, targetURL, http.StatusSeeOther)
}

// consumeFlash reads and clears a flash cookie.
func (h *Handler) consumeFlash(w http.ResponseWriter, r *http.Request, cookieName string) string {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	decoded, err := base64.StdEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(decoded)
}

func (h *Handler) initCommonTemplateData(w http.ResponseWriter, r *http.Request) frontend_domain.CommonTemplateData {
	return frontend_domain.CommonTemplateData{
		Error:     h.consumeFlash(w, r, flashCookieError),
		Success:   h.consumeFlash(w, r, flashCookieSuccess),
		Session:   mw.GetSessionFromContext(r),
		CSRFToken: middleware.GetCSRFTokenFromContext(r),
		Validation: frontend_domain.ValidationData{
			PostTitleMaxLen: h.Public.PostTitleMaxLen,
			PostBodyMaxLen:  h.Public.PostBodyMaxLen,
		},
	}
}
