// Package composer turns a post draft into a create request for the managed
// backend.
package composer

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/itchan-dev/blogfeed/shared/api"
	"github.com/itchan-dev/blogfeed/shared/domain"
	internal_errors "github.com/itchan-dev/blogfeed/shared/errors"
	"github.com/itchan-dev/blogfeed/shared/logger"
	"github.com/itchan-dev/blogfeed/shared/session"
	"github.com/itchan-dev/blogfeed/shared/utils"
)

// Draft holds the composer's input fields.
type Draft struct {
	Title string
	Body  string
}

type PostCreator interface {
	CreatePost(ctx context.Context, data domain.PostCreationData) (domain.PostId, error)
}

type Limits struct {
	TitleMaxLen int
	BodyMaxLen  int
}

type Composer struct {
	backend PostCreator
	limits  Limits
	now     func() time.Time
}

func New(backend PostCreator, limits Limits) *Composer {
	return &Composer{backend: backend, limits: limits, now: time.Now}
}

// Check validates title and body lengths. Empty fields are left to the
// request validation.
func (c *Composer) Check(title, body string) error {
	if c.limits.TitleMaxLen > 0 && utf8.RuneCountInString(title) > c.limits.TitleMaxLen {
		return internal_errors.BadRequest(fmt.Sprintf("Title is too long (max %d characters)", c.limits.TitleMaxLen))
	}
	if c.limits.BodyMaxLen > 0 && utf8.RuneCountInString(body) > c.limits.BodyMaxLen {
		return internal_errors.BadRequest(fmt.Sprintf("Body is too long (max %d characters)", c.limits.BodyMaxLen))
	}
	return nil
}

// Submit creates a post from draft as the session user found in ctx. The
// draft is cleared only when the backend accepts the post; the post itself
// shows up once its create event arrives.
func (c *Composer) Submit(ctx context.Context, draft *Draft) (domain.PostId, error) {
	log := logger.Component("composer")
	now := c.now()
	s, err := session.FromContext(ctx, now)
	if err != nil {
		return "", err
	}

	data := domain.PostCreationData{
		OwnerId:       s.UserId,
		OwnerUsername: s.Username,
		Title:         draft.Title,
		Body:          draft.Body,
		CreatedAt:     now.UTC(),
	}
	if err := utils.Validate(api.NewCreatePostRequest(data)); err != nil {
		return "", err
	}
	if err := c.Check(draft.Title, draft.Body); err != nil {
		return "", err
	}

	id, err := c.backend.CreatePost(ctx, data)
	if err != nil {
		log.Error("create post failed", "user", s.UserId, "error", err)
		return "", err
	}
	log.Info("post created", "post", id, "user", s.UserId)

	draft.Title = ""
	draft.Body = ""
	return id, nil
}
