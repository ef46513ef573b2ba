package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/blogfeed/frontend/internal/feedctl"
	"github.com/itchan-dev/blogfeed/shared/utils"
)

// LikePostHandler sends a like. A locally rejected like is shown through the
// viewer's error message on the next render, so every outcome redirects to
// the feed.
func (h *Handler) LikePostHandler(w http.ResponseWriter, r *http.Request) {
	v, ok := h.viewer(w, r)
	if !ok {
		return
	}
	err := v.Like(r.Context(), chi.URLParam(r, "postId"))
	if feedctl.IsSessionError(err) {
		h.redirectWithFlash(w, r, h.Public.LoginURL, flashCookieError, "Please sign in to continue")
		return
	}
	// rejected and pending likes need nothing more, backend failures are logged by the viewer
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) HoverHandler(w http.ResponseWriter, r *http.Request) {
	v, ok := h.viewer(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, v.Hover(chi.URLParam(r, "postId")))
}

func (h *Handler) HoverLeaveHandler(w http.ResponseWriter, r *http.Request) {
	v, ok := h.viewer(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, v.Leave())
}
