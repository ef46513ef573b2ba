package handler

import (
	"html/template"
	"sync/atomic"

	"github.com/itchan-dev/blogfeed/frontend/internal/composer"
	"github.com/itchan-dev/blogfeed/frontend/internal/feedctl"
	"github.com/itchan-dev/blogfeed/frontend/internal/markdown"
	"github.com/itchan-dev/blogfeed/shared/config"
)

type Handler struct {
	// templates is swapped whole by the development reloader.
	templates     atomic.Pointer[map[string]*template.Template]
	Public        config.Public
	TextProcessor *markdown.TextProcessor
	Feed          *feedctl.Controller
	Viewers       *feedctl.Viewers
	Composer      *composer.Composer
}

func New(templates map[string]*template.Template, publicCfg config.Public, textProcessor *markdown.TextProcessor, feed *feedctl.Controller, composer *composer.Composer) *Handler {
	h := &Handler{
		Public:        publicCfg,
		TextProcessor: textProcessor,
		Feed:          feed,
		Viewers:       feedctl.NewViewers(feed, publicCfg.LikePreviewAccumulate),
		Composer:      composer,
	}
	h.SetTemplates(templates)
	return h
}

// SetTemplates replaces the parsed page templates. Safe to call while
// requests are being served.
func (h *Handler) SetTemplates(templates map[string]*template.Template) {
	h.templates.Store(&templates)
}

func (h *Handler) template(name string) (*template.Template, bool) {
	templates := h.templates.Load()
	if templates == nil {
		return nil, false
	}
	tmpl, ok := (*templates)[name]
	return tmpl, ok
}
