package handler

import (
	"errors"
	"net/http"

	"github.com/itchan-dev/blogfeed/frontend/internal/composer"
	frontend_domain "github.com/itchan-dev/blogfeed/frontend/internal/domain"
	"github.com/itchan-dev/blogfeed/frontend/internal/feedctl"
	"github.com/itchan-dev/blogfeed/shared/domain"
	internal_errors "github.com/itchan-dev/blogfeed/shared/errors"
	"github.com/itchan-dev/blogfeed/shared/logger"
	mw "github.com/itchan-dev/blogfeed/shared/middleware"
)

func (h *Handler) feedPageData(r *http.Request) frontend_domain.FeedPageData {
	var userId domain.UserId
	data := frontend_domain.FeedPageData{}
	if s := mw.GetSessionFromContext(r); s != nil {
		userId = s.UserId
		data.LikeError = h.Viewers.For(userId).Error()
	}
	data.Posts = renderPosts(h.TextProcessor, h.Feed.Posts(), userId)
	return data
}

func (h *Handler) FeedGetHandler(w http.ResponseWriter, r *http.Request) {
	h.renderTemplate(w, r, "feed.html", http.StatusOK, h.feedPageData(r), "")
}

func (h *Handler) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirectWithFlash(w, r, "/", flashCookieError, "Invalid form data")
		return
	}
	draft := &composer.Draft{
		Title: r.PostFormValue("title"),
		Body:  r.PostFormValue("body"),
	}

	if _, err := h.Composer.Submit(r.Context(), draft); err != nil {
		if feedctl.IsSessionError(err) {
			h.redirectWithFlash(w, r, h.Public.LoginURL, flashCookieError, "Please sign in to continue")
			return
		}
		// keep what the user typed
		data := h.feedPageData(r)
		data.Draft = frontend_domain.Draft{Title: draft.Title, Body: draft.Body}
		h.renderTemplate(w, r, "feed.html", internal_errors.StatusCode(err), data, userMessage(err))
		return
	}
	h.redirectWithFlash(w, r, "/", flashCookieSuccess, "Post published")
}

// userMessage hides internal error details from the page.
func userMessage(err error) string {
	var e *internal_errors.ErrorWithStatusCode
	if errors.As(err, &e) && e.StatusCode < http.StatusInternalServerError {
		return e.Message
	}
	logger.Log.Error("backend request failed", "error", err)
	return "Something went wrong, please try again"
}
