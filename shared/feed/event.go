// Package feed holds the reconciliation logic for the post feed: the inbound
// event variant and the fold that turns a post list plus one event into the
// next post list.
package feed

import (
	"fmt"

	"github.com/itchan-dev/blogfeed/shared/domain"
)

type EventKind int

const (
	Snapshot EventKind = iota
	PostCreated
	PostUpdated
	PostDeleted
	CommentAdded
	LikeAdded
)

var kindNames = [...]string{
	Snapshot:     "snapshot",
	PostCreated:  "post_created",
	PostUpdated:  "post_updated",
	PostDeleted:  "post_deleted",
	CommentAdded: "comment_added",
	LikeAdded:    "like_added",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("unknown(%d)", int(k))
	}
	return kindNames[k]
}

// Event is a single change pushed by the backend. Exactly one payload field is
// set, matching Kind.
type Event struct {
	Kind    EventKind
	Posts   []domain.Post   // Snapshot
	Post    *domain.Post    // PostCreated, PostUpdated, PostDeleted
	Comment *domain.Comment // CommentAdded
	Like    *domain.Like    // LikeAdded
}

func NewSnapshot(posts []domain.Post) Event {
	return Event{Kind: Snapshot, Posts: posts}
}

func NewPostCreated(post domain.Post) Event {
	return Event{Kind: PostCreated, Post: &post}
}

func NewPostUpdated(post domain.Post) Event {
	return Event{Kind: PostUpdated, Post: &post}
}

func NewPostDeleted(post domain.Post) Event {
	return Event{Kind: PostDeleted, Post: &post}
}

func NewCommentAdded(comment domain.Comment) Event {
	return Event{Kind: CommentAdded, Comment: &comment}
}

func NewLikeAdded(like domain.Like) Event {
	return Event{Kind: LikeAdded, Like: &like}
}

// PostId returns the id of the post the event refers to, or "" for snapshots.
func (e Event) PostId() domain.PostId {
	switch {
	case e.Post != nil:
		return e.Post.Id
	case e.Comment != nil:
		return e.Comment.PostId
	case e.Like != nil:
		return e.Like.PostId
	}
	return ""
}
