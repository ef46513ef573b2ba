package feed

import (
	"sort"

	"github.com/itchan-dev/blogfeed/shared/domain"
)

// Apply folds ev into posts and returns the resulting list. posts and the
// posts in it are never modified; a post touched by ev is rebuilt.
// The list is kept newest first: snapshots are sorted by CreatedAt and
// created posts are prepended.
func Apply(posts []domain.Post, ev Event) []domain.Post {
	switch ev.Kind {
	case Snapshot:
		return snapshot(ev.Posts)
	case PostCreated:
		if ev.Post == nil {
			return posts
		}
		return create(posts, *ev.Post)
	case PostUpdated:
		if ev.Post == nil {
			return posts
		}
		return update(posts, *ev.Post)
	case PostDeleted:
		if ev.Post == nil {
			return posts
		}
		return remove(posts, ev.Post.Id)
	case CommentAdded:
		if ev.Comment == nil {
			return posts
		}
		return addComment(posts, *ev.Comment)
	case LikeAdded:
		if ev.Like == nil {
			return posts
		}
		return addLike(posts, *ev.Like)
	}
	return posts
}

// Fold applies events in order starting from posts.
func Fold(posts []domain.Post, events ...Event) []domain.Post {
	for _, ev := range events {
		posts = Apply(posts, ev)
	}
	return posts
}

func snapshot(items []domain.Post) []domain.Post {
	out := make([]domain.Post, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func indexOf(posts []domain.Post, id domain.PostId) int {
	for i := range posts {
		if posts[i].Id == id {
			return i
		}
	}
	return -1
}

func create(posts []domain.Post, post domain.Post) []domain.Post {
	out := make([]domain.Post, 0, len(posts)+1)
	out = append(out, post.Clone())
	for _, p := range posts {
		if p.Id != post.Id { // redelivered create
			out = append(out, p)
		}
	}
	return out
}

func update(posts []domain.Post, post domain.Post) []domain.Post {
	i := indexOf(posts, post.Id)
	if i < 0 {
		return posts
	}
	replacement := post.Clone()
	if replacement.Comments == nil {
		replacement.Comments = append(domain.Comments(nil), posts[i].Comments...)
	}
	if replacement.Likes == nil {
		replacement.Likes = append(domain.Likes(nil), posts[i].Likes...)
	}
	out := append([]domain.Post(nil), posts...)
	out[i] = replacement
	return out
}

func remove(posts []domain.Post, id domain.PostId) []domain.Post {
	if indexOf(posts, id) < 0 {
		return posts
	}
	out := make([]domain.Post, 0, len(posts)-1)
	for _, p := range posts {
		if p.Id != id {
			out = append(out, p)
		}
	}
	return out
}

// replaceAt returns a copy of posts with posts[i] substituted by rebuilt.
func replaceAt(posts []domain.Post, i int, rebuilt domain.Post) []domain.Post {
	out := append([]domain.Post(nil), posts...)
	out[i] = rebuilt
	return out
}

func addComment(posts []domain.Post, comment domain.Comment) []domain.Post {
	i := indexOf(posts, comment.PostId)
	if i < 0 {
		return posts
	}
	if comment.Id != "" {
		for _, c := range posts[i].Comments {
			if c.Id == comment.Id {
				return posts
			}
		}
	}
	rebuilt := posts[i].Clone()
	rebuilt.Comments = append(rebuilt.Comments, comment)
	return replaceAt(posts, i, rebuilt)
}

func addLike(posts []domain.Post, like domain.Like) []domain.Post {
	i := indexOf(posts, like.PostId)
	if i < 0 {
		return posts
	}
	if like.Id != "" {
		for _, l := range posts[i].Likes {
			if l.Id == like.Id {
				return posts
			}
		}
	}
	rebuilt := posts[i].Clone()
	rebuilt.Likes = append(rebuilt.Likes, like)
	return replaceAt(posts, i, rebuilt)
}
