package setup

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/itchan-dev/blogfeed/frontend/internal/apiclient"
	"github.com/itchan-dev/blogfeed/frontend/internal/composer"
	"github.com/itchan-dev/blogfeed/frontend/internal/feedctl"
	"github.com/itchan-dev/blogfeed/frontend/internal/handler"
	"github.com/itchan-dev/blogfeed/frontend/internal/markdown"
	"github.com/itchan-dev/blogfeed/frontend/internal/middleware"
	"github.com/itchan-dev/blogfeed/shared/config"
	"github.com/itchan-dev/blogfeed/shared/jwt"
	"github.com/itchan-dev/blogfeed/shared/logger"
	mw "github.com/itchan-dev/blogfeed/shared/middleware"
	"github.com/itchan-dev/blogfeed/shared/storage/pg"
)

const (
	baseTemplate           = "base.html"
	partialsTemplate       = "partials.html"
	templateReloadInterval = 5 * time.Second
)

type Dependencies struct {
	Handler *handler.Handler
	Auth    *middleware.Auth
	Public  config.Public
	Feed    *feedctl.Controller
	// StaticDir is served under /static/.
	StaticDir string

	cleanup func()
	closers  []func()
}

// Paths locates the page assets on disk.
type Paths struct {
	Templates string
	Static    string
}

// NewBackend builds the adapter selected by cfg.Public.Backend. The returned
// func releases it.
func NewBackend(ctx context.Context, cfg *config.Config) (feedctl.Backend, func(), error) {
	switch cfg.Public.Backend {
	case "pg":
		store, err := pg.New(ctx, cfg.Public.Pg, cfg.Public.Subscription)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		return store, func() {
			if err := store.Cleanup(); err != nil {
				logger.Log.Error("failed to close storage", "error", err)
			}
		}, nil
	default:
		return apiclient.New(cfg.Public, cfg.Private.ApiToken), func() {}, nil
	}
}

func SetupDependencies(ctx context.Context, cfg *config.Config, paths Paths) (*Dependencies, error) {
	backend, closeBackend, err := NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	templates, err := loadTemplates(paths.Templates)
	if err != nil {
		closeBackend()
		return nil, err
	}

	feedCtrl := feedctl.New(backend)
	if err := feedCtrl.Start(ctx); err != nil {
		closeBackend()
		return nil, fmt.Errorf("failed to start feed: %w", err)
	}

	postComposer := composer.New(backend, composer.Limits{
		TitleMaxLen: cfg.Public.PostTitleMaxLen,
		BodyMaxLen:  cfg.Public.PostBodyMaxLen,
	})
	h := handler.New(templates, cfg.Public, markdown.New(), feedCtrl, postComposer)
	stopReloader := startTemplateReloader(h, paths.Templates)

	sharedAuth := mw.NewAuth(jwt.New(cfg.JwtKey()), cfg.Public.SecureCookies)

	return &Dependencies{
		Handler:   h,
		Auth:      middleware.NewAuth(sharedAuth, cfg.Public.SecureCookies, cfg.Public.LoginURL),
		Public:    cfg.Public,
		Feed:      feedCtrl,
		StaticDir: paths.Static,
		cleanup: func() {
			stopReloader()
			feedCtrl.Close()
			closeBackend()
		},
	}, nil
}

// OnClose registers f to run on Close, before the feed is torn down.
func (d *Dependencies) OnClose(f func()) {
	d.closers = append(d.closers, f)
}

// Close tears down the feed subscription and releases the backend.
func (d *Dependencies) Close() {
	for _, f := range d.closers {
		f()
	}
	d.closers = nil
	if d.cleanup != nil {
		d.cleanup()
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func dict(values ...any) (map[string]any, error) {
	if len(values)%2 != 0 {
		return nil, fmt.Errorf("invalid dict call: number of arguments must be even")
	}
	m := make(map[string]any, len(values)/2)
	for i := 0; i < len(values); i += 2 {
		key, ok := values[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings")
		}
		m[key] = values[i+1]
	}
	return m, nil
}

var funcMap = template.FuncMap{
	"dict":       dict,
	"formatTime": formatTime,
}

// loadTemplates parses every page in tmplPath together with the base layout
// and the shared partials.
func loadTemplates(tmplPath string) (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)
	files, err := os.ReadDir(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}

	for _, f := range files {
		if filepath.Ext(f.Name()) != ".html" || f.Name() == baseTemplate || f.Name() == partialsTemplate {
			continue
		}
		tmpl, err := template.New(baseTemplate).Funcs(funcMap).ParseFiles(
			path.Join(tmplPath, baseTemplate),
			path.Join(tmplPath, f.Name()),
			path.Join(tmplPath, partialsTemplate),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", f.Name(), err)
		}
		templates[f.Name()] = tmpl
	}
	return templates, nil
}

// startTemplateReloader re-reads templates in development. The returned func
// stops it.
func startTemplateReloader(h *handler.Handler, tmplPath string) func() {
	if os.Getenv("ENV") != "development" {
		return func() {}
	}
	ticker := time.NewTicker(templateReloadInterval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				templates, err := loadTemplates(tmplPath)
				if err != nil {
					logger.Log.Error("template reload failed", "error", err)
					continue
				}
				h.SetTemplates(templates)
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(done)
	}
}
