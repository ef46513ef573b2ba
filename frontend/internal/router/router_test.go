package router

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/itchan-dev/blogfeed/frontend/internal/composer"
	"github.com/itchan-dev/blogfeed/frontend/internal/feedctl"
	"github.com/itchan-dev/blogfeed/frontend/internal/handler"
	"github.com/itchan-dev/blogfeed/frontend/internal/markdown"
	"github.com/itchan-dev/blogfeed/frontend/internal/middleware"
	"github.com/itchan-dev/blogfeed/frontend/internal/setup"
	"github.com/itchan-dev/blogfeed/shared/config"
	"github.com/itchan-dev/blogfeed/shared/domain"
	"github.com/itchan-dev/blogfeed/shared/feed"
	"github.com/itchan-dev/blogfeed/shared/jwt"
	mw "github.com/itchan-dev/blogfeed/shared/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jwtKey   = "test-secret"
	loginURL = "https://auth.example.com/login"
)

// stubBackend serves one post and accepts every mutation.
type stubBackend struct{}

func (stubBackend) ListPosts(ctx context.Context) ([]domain.Post, error) {
	return []domain.Post{{Id: "p1", OwnerId: "u1", OwnerUsername: "alice", Title: "hello"}}, nil
}
func (stubBackend) CreatePost(ctx context.Context, data domain.PostCreationData) (domain.PostId, error) {
	return "p2", nil
}
func (stubBackend) UpdatePost(ctx context.Context, data domain.PostUpdateData) error { return nil }
func (stubBackend) DeletePost(ctx context.Context, id domain.PostId) error           { return nil }
func (stubBackend) CreateLike(ctx context.Context, data domain.LikeCreationData) (domain.LikeId, error) {
	return "l1", nil
}
func (stubBackend) CreateComment(ctx context.Context, data domain.CommentCreationData) (domain.CommentId, error) {
	return "c1", nil
}
func (stubBackend) Subscribe(ctx context.Context) (<-chan feed.Event, error) {
	return make(chan feed.Event), nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctrl := feedctl.New(stubBackend{})
	require.NoError(t, ctrl.Start(context.Background()))
	t.Cleanup(ctrl.Close)

	public := config.Public{LoginURL: loginURL, AllowedOrigins: []string{"https://blog.example.com"}}
	templates := map[string]*template.Template{
		"feed.html": template.Must(template.New("feed.html").Parse(`{{range .Data.Posts}}{{.Title}}{{end}}|{{with .Common.Session}}{{.Username}}{{end}}`)),
	}
	h := handler.New(templates, public, markdown.New(), ctrl, composer.New(stubBackend{}, composer.Limits{}))
	auth := middleware.NewAuth(mw.NewAuth(jwt.New(jwtKey), false), false, loginURL)

	deps := &setup.Dependencies{
		Handler:   h,
		Auth:      auth,
		Public:    public,
		Feed:      ctrl,
		StaticDir: t.TempDir(),
	}
	t.Cleanup(deps.Close)
	return New(deps)
}

func accessToken(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := jwt.New(jwtKey).NewToken(domain.Session{UserId: "u2", Username: "bob", ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	return &http.Cookie{Name: mw.AccessTokenCookie, Value: token}
}

func TestRouter(t *testing.T) {
	r := newTestRouter(t)

	t.Run("health", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	})

	t.Run("metrics", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "blogfeed_feed_events_total")
	})

	t.Run("feed is public and sets the csrf cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "hello|", rr.Body.String())

		var names []string
		for _, c := range rr.Result().Cookies() {
			names = append(names, c.Name)
		}
		assert.Contains(t, names, "csrf_token")
	})

	t.Run("feed shows the signed-in user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(accessToken(t))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, "hello|bob", rr.Body.String())
	})

	t.Run("mutation without csrf token is refused", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts/p1/like", nil)
		req.AddCookie(accessToken(t))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("anonymous mutation goes to sign-in", func(t *testing.T) {
		form := url.Values{"csrf_token": {"tok"}}
		req := httptest.NewRequest(http.MethodPost, "/posts/p1/like", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "tok"})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.True(t, strings.HasPrefix(rr.Header().Get("Location"), loginURL))
	})

	t.Run("signed-in like with csrf header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/posts/p1/like", nil)
		req.Header.Set(middleware.CSRFHeader, "tok")
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: "tok"})
		req.AddCookie(accessToken(t))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusSeeOther, rr.Code)
		assert.Equal(t, "/", rr.Header().Get("Location"))
	})

	t.Run("hover preflight from an allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/posts/p1/hover", nil)
		req.Header.Set("Origin", "https://blog.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", middleware.CSRFHeader)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, "https://blog.example.com", rr.Header().Get("Access-Control-Allow-Origin"))
	})
}
