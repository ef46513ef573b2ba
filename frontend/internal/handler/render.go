package handler

import (
	"bytes"
	"fmt"
	"net/http"

	frontend_domain "github.com/itchan-dev/blogfeed/frontend/internal/domain"
	"github.com/itchan-dev/blogfeed/frontend/internal/markdown"
	"github.com/itchan-dev/blogfeed/shared/domain"
	"github.com/itchan-dev/blogfeed/shared/feed"
	"github.com/itchan-dev/blogfeed/shared/logger"
)

// TemplateData wraps page-specific data with common template data.
// Templates access page data via .Data and common data via .Common.
type TemplateData struct {
	Data   any
	Common frontend_domain.CommonTemplateData
}

func (h *Handler) renderTemplate(w http.ResponseWriter, r *http.Request, name string, status int, data any, errMsg string) {
	tmpl, ok := h.template(name)
	if !ok {
		http.Error(w, fmt.Sprintf("Template %s not found", name), http.StatusInternalServerError)
		return
	}

	common := h.initCommonTemplateData(w, r)
	if errMsg != "" {
		common.Error = errMsg
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, TemplateData{Data: data, Common: common}); err != nil {
		logger.Log.Error("error executing template", "template", name, "error", err)
		http.Error(w, "Internal Server Error rendering template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderPosts transforms the feed snapshot into view models for userId.
func renderPosts(tp *markdown.TextProcessor, posts []domain.Post, userId domain.UserId) []*frontend_domain.Post {
	rendered := make([]*frontend_domain.Post, len(posts))
	for i := range posts {
		p := &posts[i]
		view := &frontend_domain.Post{
			Post:      *p,
			BodyHTML:  tp.Render(p.Body),
			Comments:  make([]*frontend_domain.Comment, len(p.Comments)),
			LikeCount: len(p.Likes),
			CanEdit:   p.IsOwnedBy(userId),
			CanLike:   !feed.Liked(posts, p.Id, userId),
		}
		for j, c := range p.Comments {
			view.Comments[j] = &frontend_domain.Comment{Comment: c, ContentHTML: tp.Render(c.Content)}
		}
		rendered[i] = view
	}
	return rendered
}
