// Package feedctl keeps the local post feed in sync with the managed backend
// and hosts the per-user controls (like, hover preview, edit, delete, comment)
// that act on it.
package feedctl

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/itchan-dev/blogfeed/shared/domain"
	"github.com/itchan-dev/blogfeed/shared/feed"
	"github.com/itchan-dev/blogfeed/shared/logger"
)

// Backend is the managed backend as seen by the feed: one query, the
// mutations, and one channel multiplexing the five push topics.
type Backend interface {
	ListPosts(ctx context.Context) ([]domain.Post, error)
	CreatePost(ctx context.Context, data domain.PostCreationData) (domain.PostId, error)
	UpdatePost(ctx context.Context, data domain.PostUpdateData) error
	DeletePost(ctx context.Context, id domain.PostId) error
	CreateLike(ctx context.Context, data domain.LikeCreationData) (domain.LikeId, error)
	CreateComment(ctx context.Context, data domain.CommentCreationData) (domain.CommentId, error)
	Subscribe(ctx context.Context) (<-chan feed.Event, error)
}

var ErrAlreadyStarted = errors.New("feed controller already started")

// Controller owns the post list. A single goroutine folds inbound events into
// it; readers get immutable snapshots.
type Controller struct {
	backend  Backend
	onChange func([]domain.Post)

	mu      sync.RWMutex
	posts   []domain.Post
	started bool
	closed  bool

	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

type Option func(*Controller)

// WithOnChange registers fn to be called with the new snapshot after every
// applied event. fn runs on the fold goroutine and must not block for long.
func WithOnChange(fn func([]domain.Post)) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

func New(backend Backend, opts ...Option) *Controller {
	c := &Controller{backend: backend, done: make(chan struct{})}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start subscribes, then loads the initial posts and applies them as a
// Snapshot. Events published while the load is in flight are already queued
// on the subscription and are folded afterwards. ctx bounds the initial load
// only; the subscription lives until Close.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.started = true
	subCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	events, err := c.backend.Subscribe(subCtx)
	if err != nil {
		cancel()
		close(c.done)
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	posts, err := c.backend.ListPosts(ctx)
	if err != nil {
		cancel()
		close(c.done)
		return fmt.Errorf("failed to load posts: %w", err)
	}
	c.apply(feed.NewSnapshot(posts))
	logger.Log.Info("feed started", "component", "feedctl", "posts", len(posts))

	go c.loop(subCtx, events)
	return nil
}

func (c *Controller) loop(ctx context.Context, events <-chan feed.Event) {
	defer close(c.done)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				if ctx.Err() == nil {
					logger.Log.Warn("event stream ended", "component", "feedctl")
				}
				return
			}
			c.apply(ev)
		}
	}
}

func (c *Controller) apply(ev feed.Event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.posts = feed.Apply(c.posts, ev)
	posts := c.posts
	c.mu.Unlock()

	eventsTotal.WithLabelValues(ev.Kind.String()).Inc()
	postsGauge.Set(float64(len(posts)))
	logger.Log.Debug("event applied", "component", "feedctl", "kind", ev.Kind, "post", ev.PostId(), "posts", len(posts))

	if c.onChange != nil {
		c.onChange(posts)
	}
}

// Posts returns the current snapshot. Callers must not modify it.
func (c *Controller) Posts() []domain.Post {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.posts
}

func (c *Controller) Post(id domain.PostId) (domain.Post, bool) {
	return feed.Find(c.Posts(), id)
}

// Close tears the subscription down. Once Close returns the post list no
// longer changes, even for events that were already queued. Close is
// idempotent.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		cancel := c.cancel
		c.mu.Unlock()

		if cancel != nil {
			cancel()
			<-c.done
		}
		logger.Log.Info("feed closed", "component", "feedctl")
	})
}
