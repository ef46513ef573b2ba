package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/blogfeed/frontend/internal/feedctl"
	"github.com/itchan-dev/blogfeed/shared/domain"
	mw "github.com/itchan-dev/blogfeed/shared/middleware"
)

// viewer returns the Viewer of the signed-in user. Routes using it sit behind
// NeedAuth, so a missing session only happens if it expired mid-request.
func (h *Handler) viewer(w http.ResponseWriter, r *http.Request) (*feedctl.Viewer, bool) {
	s := mw.GetSessionFromContext(r)
	if s == nil {
		h.redirectWithFlash(w, r, h.Public.LoginURL, flashCookieError, "Please sign in to continue")
		return nil, false
	}
	return h.Viewers.For(s.UserId), true
}

// finish redirects back to the feed, with err as an error flash if set.
func (h *Handler) finish(w http.ResponseWriter, r *http.Request, err error, success string) {
	switch {
	case err == nil:
		h.redirectWithFlash(w, r, "/", flashCookieSuccess, success)
	case feedctl.IsSessionError(err):
		h.redirectWithFlash(w, r, h.Public.LoginURL, flashCookieError, "Please sign in to continue")
	default:
		h.redirectWithFlash(w, r, "/", flashCookieError, userMessage(err))
	}
}

func (h *Handler) EditPostHandler(w http.ResponseWriter, r *http.Request) {
	v, ok := h.viewer(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.redirectWithFlash(w, r, "/", flashCookieError, "Invalid form data")
		return
	}
	err := v.UpdatePost(r.Context(), domain.PostUpdateData{
		Id:    chi.URLParam(r, "postId"),
		Title: r.PostFormValue("title"),
		Body:  r.PostFormValue("body"),
	})
	h.finish(w, r, err, "Post updated")
}

func (h *Handler) DeletePostHandler(w http.ResponseWriter, r *http.Request) {
	v, ok := h.viewer(w, r)
	if !ok {
		return
	}
	err := v.DeletePost(r.Context(), chi.URLParam(r, "postId"))
	h.finish(w, r, err, "Post deleted")
}
