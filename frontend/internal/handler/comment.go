package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	v, ok := h.viewer(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.redirectWithFlash(w, r, "/", flashCookieError, "Invalid form data")
		return
	}
	err := v.Comment(r.Context(), chi.URLParam(r, "postId"), r.PostFormValue("content"))
	h.finish(w, r, err, "Comment added")
}
