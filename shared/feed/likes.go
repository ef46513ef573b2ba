package feed

import "github.com/itchan-dev/blogfeed/shared/domain"

// Liked reports whether userId is NOT allowed to like postId: either the user
// owns the post or already liked it. The check runs against local state only
// and is not atomic with the like request.
func Liked(posts []domain.Post, postId domain.PostId, userId domain.UserId) bool {
	i := indexOf(posts, postId)
	if i < 0 {
		return false
	}
	post := &posts[i]
	return post.IsOwnedBy(userId) || post.LikedBy(userId)
}

// Find returns the post with the given id.
func Find(posts []domain.Post, id domain.PostId) (domain.Post, bool) {
	i := indexOf(posts, id)
	if i < 0 {
		return domain.Post{}, false
	}
	return posts[i], true
}
