package handler

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

// Subscribe never delivers; the handler tests work on the initial snapshot.
func (m *MockBackend) Subscribe(ctx context.Context) (<-chan feed.Event, error) {
	return make(chan feed.Event), nil
}
