package feedctl

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/itchan-dev/blogfeed/shared/api"
	"github.com/itchan-dev/blogfeed/shared/domain"
	internal_errors "github.com/itchan-dev/blogfeed/shared/errors"
	"github.com/itchan-dev/blogfeed/shared/feed"
	"github.com/itchan-dev/blogfeed/shared/logger"
	"github.com/itchan-dev/blogfeed/shared/session"
	"github.com/itchan-dev/blogfeed/shared/utils"
)

// CannotLikeMessage is shown when a like is rejected locally.
const CannotLikeMessage = "Can't Like Your Own Post."

var (
	ErrCannotLike  = internal_errors.New(CannotLikeMessage, http.StatusForbidden)
	ErrLikePending = internal_errors.New("Like already in progress", http.StatusConflict)
)

// Viewer is one signed-in user's view of a shared Controller: the like
// control with its error message, the hover preview, and the owner-only
// post actions.
type Viewer struct {
	ctrl *Controller
	now  func() time.Time

	mu      sync.Mutex
	errMsg  string
	preview feed.LikePreview
	pending map[domain.PostId]bool
}

func NewViewer(ctrl *Controller, accumulatePreview bool) *Viewer {
	return &Viewer{
		ctrl:    ctrl,
		now:     time.Now,
		preview: feed.LikePreview{Accumulate: accumulatePreview},
		pending: make(map[domain.PostId]bool),
	}
}

func (v *Viewer) busy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.pending) > 0
}

func (v *Viewer) session(ctx context.Context) (domain.Session, error) {
	return session.FromContext(ctx, v.now())
}

// Like submits a like for postId unless the user owns the post or already
// liked it, in which case the error message is set and nothing is sent.
func (v *Viewer) Like(ctx context.Context, postId domain.PostId) error {
	log := logger.Component("like")
	s, err := v.session(ctx)
	if err != nil {
		return err
	}

	v.mu.Lock()
	if feed.Liked(v.ctrl.Posts(), postId, s.UserId) {
		v.errMsg = CannotLikeMessage
		v.mu.Unlock()
		log.Debug("like rejected", "post", postId, "user", s.UserId)
		return ErrCannotLike
	}
	if v.pending[postId] {
		v.mu.Unlock()
		return ErrLikePending
	}
	v.pending[postId] = true
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		delete(v.pending, postId)
		v.mu.Unlock()
	}()

	_, err = v.ctrl.backend.CreateLike(ctx, domain.LikeCreationData{
		PostId:        postId,
		OwnerId:       s.UserId,
		OwnerUsername: s.Username,
	})
	if err != nil {
		log.Error("like failed", "post", postId, "user", s.UserId, "error", err)
		return err
	}
	log.Info("like sent", "post", postId, "user", s.UserId)
	return nil
}

// Error returns the last like error message. It stays until another rejected
// like replaces it.
func (v *Viewer) Error() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.errMsg
}

func (v *Viewer) Hover(postId domain.PostId) api.LikedByResponse {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.preview.Enter(v.ctrl.Posts(), postId)
	return v.previewResponse()
}

func (v *Viewer) Leave() api.LikedByResponse {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.preview.Leave()
	return v.previewResponse()
}

func (v *Viewer) previewResponse() api.LikedByResponse {
	return api.LikedByResponse{
		Hovering: v.preview.Hovering(),
		Label:    v.preview.Label(),
		Names:    v.preview.Names(),
	}
}

// ownedPost returns the post if userId owns it.
func (v *Viewer) ownedPost(postId domain.PostId, userId domain.UserId) (domain.Post, error) {
	post, ok := v.ctrl.Post(postId)
	if !ok {
		return post, internal_errors.NotFound("Post not found")
	}
	if !post.IsOwnedBy(userId) {
		return post, internal_errors.Forbidden("Only the author can change this post")
	}
	return post, nil
}

func (v *Viewer) UpdatePost(ctx context.Context, data domain.PostUpdateData) error {
	s, err := v.session(ctx)
	if err != nil {
		return err
	}
	if _, err := v.ownedPost(data.Id, s.UserId); err != nil {
		return err
	}
	if err := utils.Validate(api.UpdatePostRequest{Id: data.Id, Title: data.Title, Body: data.Body}); err != nil {
		return err
	}
	if err := v.ctrl.backend.UpdatePost(ctx, data); err != nil {
		logger.Log.Error("update failed", "component", "feedctl", "post", data.Id, "error", err)
		return err
	}
	return nil
}

func (v *Viewer) DeletePost(ctx context.Context, postId domain.PostId) error {
	s, err := v.session(ctx)
	if err != nil {
		return err
	}
	if _, err := v.ownedPost(postId, s.UserId); err != nil {
		return err
	}
	if err := v.ctrl.backend.DeletePost(ctx, postId); err != nil {
		logger.Log.Error("delete failed", "component", "feedctl", "post", postId, "error", err)
		return err
	}
	return nil
}

func (v *Viewer) Comment(ctx context.Context, postId domain.PostId, content string) error {
	s, err := v.session(ctx)
	if err != nil {
		return err
	}
	if _, ok := v.ctrl.Post(postId); !ok {
		return internal_errors.NotFound("Post not found")
	}
	data := domain.CommentCreationData{
		PostId:         postId,
		AuthorId:       s.UserId,
		AuthorUsername: s.Username,
		Content:        content,
	}
	if err := utils.Validate(api.NewCreateCommentRequest(data)); err != nil {
		return err
	}
	if _, err := v.ctrl.backend.CreateComment(ctx, data); err != nil {
		logger.Log.Error("comment failed", "component", "feedctl", "post", postId, "error", err)
		return err
	}
	return nil
}

// IsSessionError reports whether err comes from a missing or expired session.
func IsSessionError(err error) bool {
	return errors.Is(err, session.ErrNoSession) || errors.Is(err, session.ErrSessionExpired)
}

// ViewerIdleTTL is how long a Viewer is kept after its user's last request.
const ViewerIdleTTL = 30 * time.Minute

type viewerEntry struct {
	viewer   *Viewer
	lastUsed time.Time
}

// Viewers hands out one Viewer per user id over a shared Controller. Viewers
// idle for longer than ViewerIdleTTL are dropped, which resets their error
// message and hover preview.
type Viewers struct {
	ctrl       *Controller
	accumulate bool
	idleTTL    time.Duration
	now        func() time.Time

	mu        sync.Mutex
	byUser    map[domain.UserId]*viewerEntry
	lastSweep time.Time
}

func NewViewers(ctrl *Controller, accumulatePreview bool) *Viewers {
	return &Viewers{
		ctrl:       ctrl,
		accumulate: accumulatePreview,
		idleTTL:    ViewerIdleTTL,
		now:        time.Now,
		byUser:     make(map[domain.UserId]*viewerEntry),
	}
}

func (vs *Viewers) For(userId domain.UserId) *Viewer {
	vs.mu.Lock()
	defer vs.mu.Unlock()

	now := vs.now()
	if now.Sub(vs.lastSweep) >= vs.idleTTL {
		vs.sweep(now)
		vs.lastSweep = now
	}

	e, ok := vs.byUser[userId]
	if !ok {
		e = &viewerEntry{viewer: NewViewer(vs.ctrl, vs.accumulate)}
		vs.byUser[userId] = e
	}
	e.lastUsed = now
	return e.viewer
}

// sweep drops idle viewers. A viewer with a like still in flight is kept.
// Callers hold vs.mu.
func (vs *Viewers) sweep(now time.Time) {
	for userId, e := range vs.byUser {
		if now.Sub(e.lastUsed) < vs.idleTTL || e.viewer.busy() {
			continue
		}
		delete(vs.byUser, userId)
	}
}

func (vs *Viewers) Len() int {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	return len(vs.byUser)
}
