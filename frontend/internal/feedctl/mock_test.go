package feedctl

import (
	"context"
	"sync"

	"github.com/itchan-dev/blogfeed/shared/domain"
	"github.com/itchan-dev/blogfeed/shared/feed"
)

type MockBackend struct {
	ListPostsFunc     func(ctx context.Context) ([]domain.Post, error)
	CreatePostFunc    func(ctx context.Context, data domain.PostCreationData) (domain.PostId, error)
	UpdatePostFunc    func(ctx context.Context, data domain.PostUpdateData) error
	DeletePostFunc    func(ctx context.Context, id domain.PostId) error
	CreateLikeFunc    func(ctx context.Context, data domain.LikeCreationData) (domain.LikeId, error)
	CreateCommentFunc func(ctx context.Context, data domain.CommentCreationData) (domain.CommentId, error)
	SubscribeFunc     func(ctx context.Context) (<-chan feed.Event, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockBackend) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, name)
}

func (m *MockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockBackend) ListPosts(ctx context.Context) ([]domain.Post, error) {
	m.record("ListPosts")
	if m.ListPostsFunc != nil {
		return m.ListPostsFunc(ctx)
	}
	return nil, nil
}

func (m *MockBackend) CreatePost(ctx context.Context, data domain.PostCreationData) (domain.PostId, error) {
	m.record("CreatePost")
	if m.CreatePostFunc != nil {
		return m.CreatePostFunc(ctx, data)
	}
	return "new", nil
}

func (m *MockBackend) UpdatePost(ctx context.Context, data domain.PostUpdateData) error {
	m.record("UpdatePost")
	if m.UpdatePostFunc != nil {
		return m.UpdatePostFunc(ctx, data)
	}
	return nil
}

func (m *MockBackend) DeletePost(ctx context.Context, id domain.PostId) error {
	m.record("DeletePost")
	if m.DeletePostFunc != nil {
		return m.DeletePostFunc(ctx, id)
	}
	return nil
}

func (m *MockBackend) CreateLike(ctx context.Context, data domain.LikeCreationData) (domain.LikeId, error) {
	m.record("CreateLike")
	if m.CreateLikeFunc != nil {
		return m.CreateLikeFunc(ctx, data)
	}
	return "like", nil
}

func (m *MockBackend) CreateComment(ctx context.Context, data domain.CommentCreationData) (domain.CommentId, error) {
	m.record("CreateComment")
	if m.CreateCommentFunc != nil {
		return m.CreateCommentFunc(ctx, data)
	}
	return "comment", nil
}

func (m *MockBackend) Subscribe(ctx context.Context) (<-chan feed.Event, error) {
	m.record("Subscribe")
	if m.SubscribeFunc != nil {
		return m.SubscribeFunc(ctx)
	}
	return make(chan feed.Event), nil
}

// channelBackend returns a backend whose subscription is fed from events and
// closed when the subscription context ends.
func channelBackend(initial []domain.Post) (*MockBackend, chan feed.Event) {
	events := make(chan feed.Event, 16)
	m := &MockBackend{
		ListPostsFunc: func(ctx context.Context) ([]domain.Post, error) { return initial, nil },
		SubscribeFunc: func(ctx context.Context) (<-chan feed.Event, error) {
			out := make(chan feed.Event)
			go func() {
				defer close(out)
				for {
					select {
					case <-ctx.Done():
						return
					case ev := <-events:
						select {
						case out <- ev:
						case <-ctx.Done():
							return
						}
					}
				}
			}()
			return out, nil
		},
	}
	return m, events
}
